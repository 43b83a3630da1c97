package vm

func opInitSSlot(e *Engine, in *Instruction) error {
	ctx := e.Context()
	if ctx.static != nil {
		return opError(ErrInvalidOperation, in.Opcode, "static fields already initialized")
	}
	n := int(in.Uint8())
	if n == 0 {
		return opError(ErrInvalidOperation, in.Opcode, "zero fields")
	}
	ctx.static = NewSlot(e.rc, n)
	ctx.staticOwner = true
	return nil
}

// opInitSlot creates the local and argument slots of the frame. Arguments
// are popped from the stack, topmost first.
func opInitSlot(e *Engine, in *Instruction) error {
	ctx := e.Context()
	if ctx.local != nil || ctx.args != nil {
		return opError(ErrInvalidOperation, in.Opcode, "slots already initialized")
	}
	locals := int(in.Operand[0])
	argc := int(in.Operand[1])
	if locals == 0 && argc == 0 {
		return opError(ErrInvalidOperation, in.Opcode, "zero locals and arguments")
	}
	if locals > 0 {
		ctx.local = NewSlot(e.rc, locals)
	}
	if argc > 0 {
		items := make([]StackItem, argc)
		for i := 0; i < argc; i++ {
			item, err := e.Pop()
			if err != nil {
				return err
			}
			items[i] = item
		}
		ctx.args = newSlotFrom(e.rc, items)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Loads and stores
// ---------------------------------------------------------------------------

func loadSlot(e *Engine, in *Instruction, s *Slot, index int) error {
	if s == nil {
		return opError(ErrInvalidOperation, in.Opcode, "slot not initialized")
	}
	item, err := s.Get(index)
	if err != nil {
		return err
	}
	e.Push(item)
	return nil
}

func storeSlot(e *Engine, in *Instruction, s *Slot, index int) error {
	if s == nil {
		return opError(ErrInvalidOperation, in.Opcode, "slot not initialized")
	}
	item, err := e.Pop()
	if err != nil {
		return err
	}
	return s.Set(index, item)
}

func opLdSFldN(e *Engine, in *Instruction) error {
	return loadSlot(e, in, e.Context().static, int(in.Opcode-OpLDSFLD0))
}

func opLdSFld(e *Engine, in *Instruction) error {
	return loadSlot(e, in, e.Context().static, int(in.Uint8()))
}

func opStSFldN(e *Engine, in *Instruction) error {
	return storeSlot(e, in, e.Context().static, int(in.Opcode-OpSTSFLD0))
}

func opStSFld(e *Engine, in *Instruction) error {
	return storeSlot(e, in, e.Context().static, int(in.Uint8()))
}

func opLdLocN(e *Engine, in *Instruction) error {
	return loadSlot(e, in, e.Context().local, int(in.Opcode-OpLDLOC0))
}

func opLdLoc(e *Engine, in *Instruction) error {
	return loadSlot(e, in, e.Context().local, int(in.Uint8()))
}

func opStLocN(e *Engine, in *Instruction) error {
	return storeSlot(e, in, e.Context().local, int(in.Opcode-OpSTLOC0))
}

func opStLoc(e *Engine, in *Instruction) error {
	return storeSlot(e, in, e.Context().local, int(in.Uint8()))
}

func opLdArgN(e *Engine, in *Instruction) error {
	return loadSlot(e, in, e.Context().args, int(in.Opcode-OpLDARG0))
}

func opLdArg(e *Engine, in *Instruction) error {
	return loadSlot(e, in, e.Context().args, int(in.Uint8()))
}

func opStArgN(e *Engine, in *Instruction) error {
	return storeSlot(e, in, e.Context().args, int(in.Opcode-OpSTARG0))
}

func opStArg(e *Engine, in *Instruction) error {
	return storeSlot(e, in, e.Context().args, int(in.Uint8()))
}

package vm

// ---------------------------------------------------------------------------
// Constants
// ---------------------------------------------------------------------------

func opPushInt(e *Engine, in *Instruction) error {
	return e.pushInt(in.BigInt())
}

func opPushTrue(e *Engine, in *Instruction) error {
	e.Push(Boolean(true))
	return nil
}

func opPushFalse(e *Engine, in *Instruction) error {
	e.Push(Boolean(false))
	return nil
}

func opPushA(e *Engine, in *Instruction) error {
	target := in.Offset() + int(in.Int32())
	e.Push(Pointer{script: e.Context().script, position: target})
	return nil
}

func opPushNull(e *Engine, in *Instruction) error {
	e.Push(Null{})
	return nil
}

func opPushData(e *Engine, in *Instruction) error {
	if len(in.Operand) > e.limits.MaxItemSize {
		return opError(ErrItemTooLarge, in.Opcode, "%d bytes, limit %d",
			len(in.Operand), e.limits.MaxItemSize)
	}
	data := make([]byte, len(in.Operand))
	copy(data, in.Operand)
	e.Push(ByteString(data))
	return nil
}

// opPushConst handles PUSHM1 through PUSH16; the value is encoded in the
// opcode itself.
func opPushConst(e *Engine, in *Instruction) error {
	v := int64(in.Opcode) - int64(OpPush0)
	e.Push(IntFromInt64(v))
	return nil
}

// ---------------------------------------------------------------------------
// Constructors for compound items
// ---------------------------------------------------------------------------

func opNewBuffer(e *Engine, in *Instruction) error {
	n, err := e.popInt()
	if err != nil {
		return err
	}
	if !n.IsInt64() || n.Sign() < 0 || n.Int64() > int64(e.limits.MaxItemSize) {
		return opError(ErrItemTooLarge, in.Opcode, "size %s, limit %d", n, e.limits.MaxItemSize)
	}
	e.Push(NewBuffer(e.rc, make([]byte, n.Int64())))
	return nil
}

func opNewMap(e *Engine, in *Instruction) error {
	e.Push(NewMap(e.rc))
	return nil
}

func opNewArray0(e *Engine, in *Instruction) error {
	e.Push(NewArray(e.rc, nil))
	return nil
}

func opNewStruct0(e *Engine, in *Instruction) error {
	e.Push(NewStruct(e.rc, nil))
	return nil
}

func opNewArray(e *Engine, in *Instruction) error {
	items, err := popDefaultItems(e, in, AnyType)
	if err != nil {
		return err
	}
	e.Push(NewArray(e.rc, items))
	return nil
}

func opNewArrayT(e *Engine, in *Instruction) error {
	t := ItemType(in.Operand[0])
	items, err := popDefaultItems(e, in, t)
	if err != nil {
		return err
	}
	e.Push(NewArray(e.rc, items))
	return nil
}

func opNewStruct(e *Engine, in *Instruction) error {
	items, err := popDefaultItems(e, in, AnyType)
	if err != nil {
		return err
	}
	e.Push(NewStruct(e.rc, items))
	return nil
}

// popDefaultItems pops the element count and builds a slice of per-type
// default values.
func popDefaultItems(e *Engine, in *Instruction, t ItemType) ([]StackItem, error) {
	n, err := e.popInt()
	if err != nil {
		return nil, err
	}
	if !n.IsInt64() || n.Sign() < 0 || n.Int64() > int64(e.limits.MaxStackItemCount) {
		return nil, opError(ErrTooManyItems, in.Opcode, "count %s", n)
	}
	var def StackItem
	switch t {
	case AnyType:
		def = Null{}
	case BooleanType:
		def = Boolean(false)
	case IntegerType:
		def = IntFromInt64(0)
	case ByteStringType:
		def = ByteString(nil)
	default:
		return nil, opError(ErrInvalidType, in.Opcode, "no default for %s", t)
	}
	items := make([]StackItem, n.Int64())
	for i := range items {
		items[i] = def
	}
	return items, nil
}

package vm

func opDepth(e *Engine, in *Instruction) error {
	e.Push(IntFromInt64(int64(e.Context().stack.Len())))
	return nil
}

func opDrop(e *Engine, in *Instruction) error {
	_, err := e.Pop()
	return err
}

func opNip(e *Engine, in *Instruction) error {
	_, err := e.Context().stack.Remove(1)
	return err
}

// opXDrop pops n, then removes the item n positions below the new top.
func opXDrop(e *Engine, in *Instruction) error {
	n, err := e.popInt()
	if err != nil {
		return err
	}
	if !n.IsInt64() || n.Sign() < 0 {
		return opError(ErrInvalidOperation, in.Opcode, "bad index %s", n)
	}
	_, err = e.Context().stack.Remove(int(n.Int64()))
	return err
}

func opClear(e *Engine, in *Instruction) error {
	e.Context().stack.Clear()
	return nil
}

func opDup(e *Engine, in *Instruction) error {
	item, err := e.Context().stack.Peek(0)
	if err != nil {
		return err
	}
	e.Push(item)
	return nil
}

func opOver(e *Engine, in *Instruction) error {
	item, err := e.Context().stack.Peek(1)
	if err != nil {
		return err
	}
	e.Push(item)
	return nil
}

func opPick(e *Engine, in *Instruction) error {
	n, err := e.popInt()
	if err != nil {
		return err
	}
	if !n.IsInt64() || n.Sign() < 0 {
		return opError(ErrInvalidOperation, in.Opcode, "bad index %s", n)
	}
	item, err := e.Context().stack.Peek(int(n.Int64()))
	if err != nil {
		return err
	}
	e.Push(item)
	return nil
}

// opTuck copies the top item below the second one.
func opTuck(e *Engine, in *Instruction) error {
	item, err := e.Context().stack.Peek(0)
	if err != nil {
		return err
	}
	return e.Context().stack.Insert(2, item)
}

func opSwap(e *Engine, in *Instruction) error {
	item, err := e.Context().stack.Remove(1)
	if err != nil {
		return err
	}
	e.Push(item)
	return nil
}

// opRot moves the third item to the top.
func opRot(e *Engine, in *Instruction) error {
	item, err := e.Context().stack.Remove(2)
	if err != nil {
		return err
	}
	e.Push(item)
	return nil
}

func opRoll(e *Engine, in *Instruction) error {
	n, err := e.popInt()
	if err != nil {
		return err
	}
	if !n.IsInt64() || n.Sign() < 0 {
		return opError(ErrInvalidOperation, in.Opcode, "bad index %s", n)
	}
	if n.Sign() == 0 {
		return nil
	}
	item, err := e.Context().stack.Remove(int(n.Int64()))
	if err != nil {
		return err
	}
	e.Push(item)
	return nil
}

func opReverse3(e *Engine, in *Instruction) error {
	return e.Context().stack.Reverse(3)
}

func opReverse4(e *Engine, in *Instruction) error {
	return e.Context().stack.Reverse(4)
}

func opReverseN(e *Engine, in *Instruction) error {
	n, err := e.popInt()
	if err != nil {
		return err
	}
	if !n.IsInt64() || n.Sign() < 0 {
		return opError(ErrInvalidOperation, in.Opcode, "bad count %s", n)
	}
	return e.Context().stack.Reverse(int(n.Int64()))
}

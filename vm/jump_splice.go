package vm

// popIndex pops a non-negative integer small enough to index a byte slice.
func popIndex(e *Engine, in *Instruction) (int, error) {
	n, err := e.popInt()
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() || n.Sign() < 0 || n.Int64() > int64(e.limits.MaxItemSize) {
		return 0, opError(ErrInvalidOperation, in.Opcode, "bad index %s", n)
	}
	return int(n.Int64()), nil
}

// opMemCpy copies count bytes from a source into a buffer:
// dst di src si count -> (nothing).
func opMemCpy(e *Engine, in *Instruction) error {
	count, err := popIndex(e, in)
	if err != nil {
		return err
	}
	si, err := popIndex(e, in)
	if err != nil {
		return err
	}
	src, err := e.popBytes()
	if err != nil {
		return err
	}
	di, err := popIndex(e, in)
	if err != nil {
		return err
	}
	item, err := e.Pop()
	if err != nil {
		return err
	}
	dst, ok := item.(*Buffer)
	if !ok {
		return opError(ErrInvalidType, in.Opcode, "destination is %s, not a buffer", item.Type())
	}
	if si+count > len(src) {
		return opError(ErrInvalidOperation, in.Opcode, "source range [%d, %d) exceeds %d bytes",
			si, si+count, len(src))
	}
	if di+count > len(dst.data) {
		return opError(ErrInvalidOperation, in.Opcode, "destination range [%d, %d) exceeds %d bytes",
			di, di+count, len(dst.data))
	}
	copy(dst.data[di:di+count], src[si:si+count])
	return nil
}

// opCat concatenates two byte sequences into a new buffer.
func opCat(e *Engine, in *Instruction) error {
	x2, err := e.popBytes()
	if err != nil {
		return err
	}
	x1, err := e.popBytes()
	if err != nil {
		return err
	}
	if len(x1)+len(x2) > e.limits.MaxItemSize {
		return opError(ErrItemTooLarge, in.Opcode, "%d bytes, limit %d",
			len(x1)+len(x2), e.limits.MaxItemSize)
	}
	data := make([]byte, 0, len(x1)+len(x2))
	data = append(data, x1...)
	data = append(data, x2...)
	e.Push(NewBuffer(e.rc, data))
	return nil
}

// opSubStr extracts count bytes starting at index: x index count -> buffer.
func opSubStr(e *Engine, in *Instruction) error {
	count, err := popIndex(e, in)
	if err != nil {
		return err
	}
	index, err := popIndex(e, in)
	if err != nil {
		return err
	}
	x, err := e.popBytes()
	if err != nil {
		return err
	}
	if index+count > len(x) {
		return opError(ErrInvalidOperation, in.Opcode, "range [%d, %d) exceeds %d bytes",
			index, index+count, len(x))
	}
	data := make([]byte, count)
	copy(data, x[index:index+count])
	e.Push(NewBuffer(e.rc, data))
	return nil
}

func opLeft(e *Engine, in *Instruction) error {
	count, err := popIndex(e, in)
	if err != nil {
		return err
	}
	x, err := e.popBytes()
	if err != nil {
		return err
	}
	if count > len(x) {
		return opError(ErrInvalidOperation, in.Opcode, "%d bytes requested of %d", count, len(x))
	}
	data := make([]byte, count)
	copy(data, x[:count])
	e.Push(NewBuffer(e.rc, data))
	return nil
}

func opRight(e *Engine, in *Instruction) error {
	count, err := popIndex(e, in)
	if err != nil {
		return err
	}
	x, err := e.popBytes()
	if err != nil {
		return err
	}
	if count > len(x) {
		return opError(ErrInvalidOperation, in.Opcode, "%d bytes requested of %d", count, len(x))
	}
	data := make([]byte, count)
	copy(data, x[len(x)-count:])
	e.Push(NewBuffer(e.rc, data))
	return nil
}

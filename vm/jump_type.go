package vm

func opIsNull(e *Engine, in *Instruction) error {
	item, err := e.Pop()
	if err != nil {
		return err
	}
	e.Push(Boolean(item.Type() == AnyType))
	return nil
}

func opIsType(e *Engine, in *Instruction) error {
	t := ItemType(in.Operand[0])
	if t == AnyType || !IsValidType(t) {
		return opError(ErrInvalidOperation, in.Opcode, "bad type 0x%02X", byte(t))
	}
	item, err := e.Pop()
	if err != nil {
		return err
	}
	e.Push(Boolean(item.Type() == t))
	return nil
}

func opConvert(e *Engine, in *Instruction) error {
	t := ItemType(in.Operand[0])
	if t == AnyType || !IsValidType(t) {
		return opError(ErrInvalidOperation, in.Opcode, "bad type 0x%02X", byte(t))
	}
	item, err := e.Pop()
	if err != nil {
		return err
	}
	converted, err := convertItem(e, item, t)
	if err != nil {
		return err
	}
	e.Push(converted)
	return nil
}

// convertItem applies the CONVERT coercion matrix. Conversion to the item's
// own type is the identity; every non-Null item converts to Boolean through
// its truth value.
func convertItem(e *Engine, item StackItem, t ItemType) (StackItem, error) {
	if item.Type() == t {
		return item, nil
	}
	if _, isNull := item.(Null); !isNull && t == BooleanType {
		b, err := item.Bool()
		if err != nil {
			return nil, err
		}
		return Boolean(b), nil
	}
	switch item.(type) {
	case Null:
		return nil, opError(ErrInvalidCast, OpCONVERT, "Null to %s", t)
	case Boolean, Integer, ByteString, *Buffer:
		switch t {
		case IntegerType:
			n, err := item.Int()
			if err != nil {
				return nil, err
			}
			return NewInteger(n)
		case ByteStringType:
			b, err := item.Bytes()
			if err != nil {
				return nil, err
			}
			data := make([]byte, len(b))
			copy(data, b)
			return ByteString(data), nil
		case BufferType:
			b, err := item.Bytes()
			if err != nil {
				return nil, err
			}
			data := make([]byte, len(b))
			copy(data, b)
			return NewBuffer(e.rc, data), nil
		}
	case *Array:
		if t == StructType {
			a := item.(*Array)
			return NewStruct(e.rc, append([]StackItem(nil), a.Items()...)), nil
		}
	case *Struct:
		if t == ArrayType {
			s := item.(*Struct)
			return NewArray(e.rc, append([]StackItem(nil), s.Items()...)), nil
		}
	}
	return nil, opError(ErrInvalidCast, OpCONVERT, "%s to %s", item.Type(), t)
}

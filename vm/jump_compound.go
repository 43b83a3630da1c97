package vm

// popCount pops a non-negative element count bounded by the item limit.
func popCount(e *Engine, in *Instruction) (int, error) {
	n, err := e.popInt()
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() || n.Sign() < 0 || n.Int64() > int64(e.limits.MaxStackItemCount) {
		return 0, opError(ErrTooManyItems, in.Opcode, "count %s", n)
	}
	return int(n.Int64()), nil
}

// opPackMap pops n key/value pairs into a new map: vN kN ... v1 k1 n -> map.
func opPackMap(e *Engine, in *Instruction) error {
	n, err := popCount(e, in)
	if err != nil {
		return err
	}
	m := NewMap(e.rc)
	for i := 0; i < n; i++ {
		key, err := e.Pop()
		if err != nil {
			return err
		}
		value, err := e.Pop()
		if err != nil {
			return err
		}
		value, err = deepCopyIfStruct(value, e.limits)
		if err != nil {
			return err
		}
		if err := m.Set(key, value); err != nil {
			return err
		}
	}
	e.Push(m)
	return nil
}

func popPacked(e *Engine, in *Instruction) ([]StackItem, error) {
	n, err := popCount(e, in)
	if err != nil {
		return nil, err
	}
	items := make([]StackItem, n)
	for i := 0; i < n; i++ {
		item, err := e.Pop()
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	return items, nil
}

func opPack(e *Engine, in *Instruction) error {
	items, err := popPacked(e, in)
	if err != nil {
		return err
	}
	e.Push(NewArray(e.rc, items))
	return nil
}

func opPackStruct(e *Engine, in *Instruction) error {
	items, err := popPacked(e, in)
	if err != nil {
		return err
	}
	e.Push(NewStruct(e.rc, items))
	return nil
}

// opUnpack spreads a compound onto the stack followed by its count. Arrays
// leave their first element on top; maps interleave key over value.
func opUnpack(e *Engine, in *Instruction) error {
	item, err := e.Pop()
	if err != nil {
		return err
	}
	switch c := item.(type) {
	case *Array:
		for i := c.Len() - 1; i >= 0; i-- {
			e.Push(c.Get(i))
		}
		e.Push(IntFromInt64(int64(c.Len())))
	case *Struct:
		for i := c.Len() - 1; i >= 0; i-- {
			e.Push(c.Get(i))
		}
		e.Push(IntFromInt64(int64(c.Len())))
	case *Map:
		entries := c.Entries()
		for i := len(entries) - 1; i >= 0; i-- {
			e.Push(entries[i].Value)
			e.Push(entries[i].Key)
		}
		e.Push(IntFromInt64(int64(len(entries))))
	default:
		return opError(ErrInvalidType, in.Opcode, "cannot unpack %s", item.Type())
	}
	return nil
}

func opSize(e *Engine, in *Instruction) error {
	item, err := e.Pop()
	if err != nil {
		return err
	}
	switch c := item.(type) {
	case *Array:
		e.Push(IntFromInt64(int64(c.Len())))
	case *Struct:
		e.Push(IntFromInt64(int64(c.Len())))
	case *Map:
		e.Push(IntFromInt64(int64(c.Len())))
	case *Buffer:
		e.Push(IntFromInt64(int64(len(c.data))))
	case Boolean, Integer, ByteString:
		b, err := item.Bytes()
		if err != nil {
			return err
		}
		e.Push(IntFromInt64(int64(len(b))))
	default:
		return opError(ErrInvalidType, in.Opcode, "no size for %s", item.Type())
	}
	return nil
}

// opHasKey tests membership: collection key -> bool. For sequences the key
// is an index, tested against the length.
func opHasKey(e *Engine, in *Instruction) error {
	key, err := e.Pop()
	if err != nil {
		return err
	}
	item, err := e.Pop()
	if err != nil {
		return err
	}
	switch c := item.(type) {
	case *Map:
		_, ok, err := c.Get(key)
		if err != nil {
			return err
		}
		e.Push(Boolean(ok))
		return nil
	}
	index, err := key.Int()
	if err != nil {
		return err
	}
	if index.Sign() < 0 || !index.IsInt64() {
		return opError(ErrInvalidOperation, in.Opcode, "bad index %s", index)
	}
	i := index.Int64()
	switch c := item.(type) {
	case *Array:
		e.Push(Boolean(i < int64(c.Len())))
	case *Struct:
		e.Push(Boolean(i < int64(c.Len())))
	case *Buffer:
		e.Push(Boolean(i < int64(len(c.data))))
	case ByteString:
		e.Push(Boolean(i < int64(len(c))))
	default:
		return opError(ErrInvalidType, in.Opcode, "cannot index %s", item.Type())
	}
	return nil
}

func opKeys(e *Engine, in *Instruction) error {
	item, err := e.Pop()
	if err != nil {
		return err
	}
	m, ok := item.(*Map)
	if !ok {
		return opError(ErrInvalidType, in.Opcode, "needs a map, got %s", item.Type())
	}
	keys := NewArray(e.rc, nil)
	for _, entry := range m.Entries() {
		keys.Append(entry.Key)
	}
	e.Push(keys)
	return nil
}

func opValues(e *Engine, in *Instruction) error {
	item, err := e.Pop()
	if err != nil {
		return err
	}
	var source []StackItem
	switch c := item.(type) {
	case *Array:
		source = c.Items()
	case *Struct:
		source = c.Items()
	case *Map:
		for _, entry := range c.Entries() {
			source = append(source, entry.Value)
		}
	default:
		return opError(ErrInvalidType, in.Opcode, "no values in %s", item.Type())
	}
	values := NewArray(e.rc, nil)
	for _, v := range source {
		v, err := deepCopyIfStruct(v, e.limits)
		if err != nil {
			return err
		}
		values.Append(v)
	}
	e.Push(values)
	return nil
}

// opPickItem reads one element: collection key -> value. Byte sequences
// yield the byte at the index as an integer.
func opPickItem(e *Engine, in *Instruction) error {
	key, err := e.Pop()
	if err != nil {
		return err
	}
	item, err := e.Pop()
	if err != nil {
		return err
	}
	if m, ok := item.(*Map); ok {
		value, ok, err := m.Get(key)
		if err != nil {
			return err
		}
		if !ok {
			return opError(ErrInvalidOperation, in.Opcode, "key not found")
		}
		e.Push(value)
		return nil
	}
	index, err := key.Int()
	if err != nil {
		return err
	}
	if index.Sign() < 0 || !index.IsInt64() {
		return opError(ErrInvalidOperation, in.Opcode, "bad index %s", index)
	}
	i := int(index.Int64())
	switch c := item.(type) {
	case *Array:
		if i >= c.Len() {
			return opError(ErrInvalidOperation, in.Opcode, "index %d of %d", i, c.Len())
		}
		e.Push(c.Get(i))
	case *Struct:
		if i >= c.Len() {
			return opError(ErrInvalidOperation, in.Opcode, "index %d of %d", i, c.Len())
		}
		e.Push(c.Get(i))
	case *Buffer:
		if i >= len(c.data) {
			return opError(ErrInvalidOperation, in.Opcode, "index %d of %d", i, len(c.data))
		}
		e.Push(IntFromInt64(int64(c.data[i])))
	case ByteString:
		if i >= len(c) {
			return opError(ErrInvalidOperation, in.Opcode, "index %d of %d", i, len(c))
		}
		e.Push(IntFromInt64(int64(c[i])))
	default:
		return opError(ErrInvalidType, in.Opcode, "cannot index %s", item.Type())
	}
	return nil
}

// opAppend adds an item to an array: array item -> (nothing). Structs are
// copied in.
func opAppend(e *Engine, in *Instruction) error {
	item, err := e.Pop()
	if err != nil {
		return err
	}
	target, err := e.Pop()
	if err != nil {
		return err
	}
	item, err = deepCopyIfStruct(item, e.limits)
	if err != nil {
		return err
	}
	switch c := target.(type) {
	case *Struct:
		c.Append(item)
	case *Array:
		c.Append(item)
	default:
		return opError(ErrInvalidType, in.Opcode, "cannot append to %s", target.Type())
	}
	return nil
}

// opSetItem writes one element: collection key value -> (nothing).
func opSetItem(e *Engine, in *Instruction) error {
	value, err := e.Pop()
	if err != nil {
		return err
	}
	key, err := e.Pop()
	if err != nil {
		return err
	}
	target, err := e.Pop()
	if err != nil {
		return err
	}
	value, err = deepCopyIfStruct(value, e.limits)
	if err != nil {
		return err
	}
	if m, ok := target.(*Map); ok {
		return m.Set(key, value)
	}
	index, err := key.Int()
	if err != nil {
		return err
	}
	if index.Sign() < 0 || !index.IsInt64() {
		return opError(ErrInvalidOperation, in.Opcode, "bad index %s", index)
	}
	i := int(index.Int64())
	switch c := target.(type) {
	case *Array:
		if i >= c.Len() {
			return opError(ErrInvalidOperation, in.Opcode, "index %d of %d", i, c.Len())
		}
		c.Set(i, value)
	case *Struct:
		if i >= c.Len() {
			return opError(ErrInvalidOperation, in.Opcode, "index %d of %d", i, c.Len())
		}
		c.Set(i, value)
	case *Buffer:
		if i >= len(c.data) {
			return opError(ErrInvalidOperation, in.Opcode, "index %d of %d", i, len(c.data))
		}
		b, err := value.Int()
		if err != nil {
			return err
		}
		if !b.IsInt64() || b.Int64() < -128 || b.Int64() > 255 {
			return opError(ErrInvalidOperation, in.Opcode, "value %s does not fit a byte", b)
		}
		c.data[i] = byte(b.Int64())
	default:
		return opError(ErrInvalidType, in.Opcode, "cannot write into %s", target.Type())
	}
	return nil
}

func opReverseItems(e *Engine, in *Instruction) error {
	item, err := e.Pop()
	if err != nil {
		return err
	}
	switch c := item.(type) {
	case *Array:
		c.Reverse()
	case *Struct:
		c.Reverse()
	case *Buffer:
		for i, j := 0, len(c.data)-1; i < j; i, j = i+1, j-1 {
			c.data[i], c.data[j] = c.data[j], c.data[i]
		}
	default:
		return opError(ErrInvalidType, in.Opcode, "cannot reverse %s", item.Type())
	}
	return nil
}

// opRemove deletes one element: collection key -> (nothing).
func opRemove(e *Engine, in *Instruction) error {
	key, err := e.Pop()
	if err != nil {
		return err
	}
	target, err := e.Pop()
	if err != nil {
		return err
	}
	if m, ok := target.(*Map); ok {
		return m.Delete(key)
	}
	index, err := key.Int()
	if err != nil {
		return err
	}
	if index.Sign() < 0 || !index.IsInt64() {
		return opError(ErrInvalidOperation, in.Opcode, "bad index %s", index)
	}
	i := int(index.Int64())
	switch c := target.(type) {
	case *Array:
		if i >= c.Len() {
			return opError(ErrInvalidOperation, in.Opcode, "index %d of %d", i, c.Len())
		}
		c.Remove(i)
	case *Struct:
		if i >= c.Len() {
			return opError(ErrInvalidOperation, in.Opcode, "index %d of %d", i, c.Len())
		}
		c.Remove(i)
	default:
		return opError(ErrInvalidType, in.Opcode, "cannot remove from %s", target.Type())
	}
	return nil
}

func opClearItems(e *Engine, in *Instruction) error {
	item, err := e.Pop()
	if err != nil {
		return err
	}
	switch c := item.(type) {
	case *Array:
		c.Clear()
	case *Struct:
		c.Clear()
	case *Map:
		c.Clear()
	default:
		return opError(ErrInvalidType, in.Opcode, "cannot clear %s", item.Type())
	}
	return nil
}

// opPopItem removes the last element of an array and pushes it.
func opPopItem(e *Engine, in *Instruction) error {
	item, err := e.Pop()
	if err != nil {
		return err
	}
	var c *Array
	switch t := item.(type) {
	case *Struct:
		c = &t.Array
	case *Array:
		c = t
	default:
		return opError(ErrInvalidType, in.Opcode, "cannot pop from %s", item.Type())
	}
	if c.Len() == 0 {
		return opError(ErrInvalidOperation, in.Opcode, "empty collection")
	}
	last := c.Get(c.Len() - 1)
	e.Push(last)
	c.Remove(c.Len() - 1)
	return nil
}

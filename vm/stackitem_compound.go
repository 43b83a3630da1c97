package vm

import (
	"fmt"
	"math/big"
)

// ---------------------------------------------------------------------------
// Compound items: Array, Struct, Map
// ---------------------------------------------------------------------------
//
// A compound item exclusively owns the storage slot of its children, but the
// children themselves are globally reference-counted: the same child may be
// reachable from several containers and stacks at once. Every mutation goes
// through the owning ReferenceCounter so the contains graph stays accurate
// for the cycle sweep.

// Array is an ordered, identity-compared sequence of items.
type Array struct {
	rc    *ReferenceCounter
	id    int
	items []StackItem
}

// NewArray creates an array owning the given items.
func NewArray(rc *ReferenceCounter, items []StackItem) *Array {
	a := &Array{rc: rc, items: items}
	if rc != nil {
		a.id = rc.register()
		for _, item := range items {
			rc.addChildReference(item, a.id)
		}
	}
	return a
}

// Type implements StackItem.
func (a *Array) Type() ItemType { return ArrayType }

// Bool implements StackItem. A compound item is true when it has elements.
func (a *Array) Bool() (bool, error) { return len(a.items) > 0, nil }

// Int implements StackItem.
func (a *Array) Int() (*big.Int, error) {
	return nil, fmt.Errorf("%w: %s to Integer", ErrInvalidCast, a.Type())
}

// Bytes implements StackItem.
func (a *Array) Bytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: %s to ByteString", ErrInvalidCast, a.Type())
}

// Len returns the element count.
func (a *Array) Len() int { return len(a.items) }

// Get returns the element at index i.
func (a *Array) Get(i int) StackItem { return a.items[i] }

// Items returns the backing slice. Callers must not mutate it directly.
func (a *Array) Items() []StackItem { return a.items }

// Append adds an item at the end.
func (a *Array) Append(item StackItem) {
	a.items = append(a.items, item)
	if a.rc != nil {
		a.rc.addChildReference(item, a.id)
	}
}

// Set replaces the element at index i.
func (a *Array) Set(i int, item StackItem) {
	old := a.items[i]
	a.items[i] = item
	if a.rc != nil {
		a.rc.addChildReference(item, a.id)
		a.rc.removeChildReference(old, a.id)
	}
}

// Remove deletes the element at index i, preserving order.
func (a *Array) Remove(i int) {
	old := a.items[i]
	a.items = append(a.items[:i], a.items[i+1:]...)
	if a.rc != nil {
		a.rc.removeChildReference(old, a.id)
	}
}

// Clear removes all elements.
func (a *Array) Clear() {
	if a.rc != nil {
		for _, item := range a.items {
			a.rc.removeChildReference(item, a.id)
		}
	}
	a.items = a.items[:0]
}

// Reverse reverses the element order in place.
func (a *Array) Reverse() {
	for i, j := 0, len(a.items)-1; i < j; i, j = i+1, j-1 {
		a.items[i], a.items[j] = a.items[j], a.items[i]
	}
}

func (a *Array) refID() int { return a.id }

func (a *Array) String() string { return fmt.Sprintf("Array[%d]", len(a.items)) }

// ---------------------------------------------------------------------------
// Struct
// ---------------------------------------------------------------------------

// Struct is an Array with value semantics: it is cloned when stored into a
// container and compared by deep structural equality.
type Struct struct {
	Array
}

// NewStruct creates a struct owning the given items.
func NewStruct(rc *ReferenceCounter, items []StackItem) *Struct {
	s := &Struct{Array{rc: rc, items: items}}
	if rc != nil {
		s.id = rc.register()
		for _, item := range items {
			rc.addChildReference(item, s.id)
		}
	}
	return s
}

// Type implements StackItem.
func (s *Struct) Type() ItemType { return StructType }

// Clone deep-copies the struct. Nested structs are copied recursively up to
// the engine's item-count limit; other children are shared by reference.
func (s *Struct) Clone(limits Limits) (*Struct, error) {
	budget := limits.MaxStackItemCount
	return s.cloneInternal(&budget)
}

func (s *Struct) cloneInternal(budget *int) (*Struct, error) {
	result := NewStruct(s.rc, nil)
	for _, item := range s.items {
		*budget--
		if *budget <= 0 {
			return nil, fmt.Errorf("%w: struct clone too deep", ErrTooManyItems)
		}
		if sub, ok := item.(*Struct); ok {
			c, err := sub.cloneInternal(budget)
			if err != nil {
				return nil, err
			}
			result.Append(c)
		} else {
			result.Append(item)
		}
	}
	return result, nil
}

func (s *Struct) String() string { return fmt.Sprintf("Struct[%d]", len(s.items)) }

// ---------------------------------------------------------------------------
// Map
// ---------------------------------------------------------------------------

// MapEntry is one key/value pair of a Map.
type MapEntry struct {
	Key   StackItem
	Value StackItem
}

// Map is an insertion-ordered dictionary with primitive keys. Iteration
// order is part of consensus, which is why a plain Go map cannot back it.
type Map struct {
	rc      *ReferenceCounter
	id      int
	entries []MapEntry
	index   map[string]int
}

// NewMap creates an empty map.
func NewMap(rc *ReferenceCounter) *Map {
	m := &Map{rc: rc, index: make(map[string]int)}
	if rc != nil {
		m.id = rc.register()
	}
	return m
}

// mapKey derives the lookup key for a primitive item. Only Boolean, Integer
// and ByteString may key a map.
func mapKey(item StackItem) (string, error) {
	switch item.Type() {
	case BooleanType, IntegerType, ByteStringType:
		b, err := item.Bytes()
		if err != nil {
			return "", err
		}
		return string(byte(item.Type())) + string(b), nil
	default:
		return "", fmt.Errorf("%w: %s cannot key a map", ErrInvalidType, item.Type())
	}
}

// Type implements StackItem.
func (m *Map) Type() ItemType { return MapType }

// Bool implements StackItem. A compound item is true when it has entries.
func (m *Map) Bool() (bool, error) { return len(m.entries) > 0, nil }

// Int implements StackItem.
func (m *Map) Int() (*big.Int, error) {
	return nil, fmt.Errorf("%w: Map to Integer", ErrInvalidCast)
}

// Bytes implements StackItem.
func (m *Map) Bytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: Map to ByteString", ErrInvalidCast)
}

// Len returns the entry count.
func (m *Map) Len() int { return len(m.entries) }

// Entries returns the entries in insertion order. Callers must not mutate.
func (m *Map) Entries() []MapEntry { return m.entries }

// Get returns the value for key, if present.
func (m *Map) Get(key StackItem) (StackItem, bool, error) {
	k, err := mapKey(key)
	if err != nil {
		return nil, false, err
	}
	i, ok := m.index[k]
	if !ok {
		return nil, false, nil
	}
	return m.entries[i].Value, true, nil
}

// Set inserts or replaces the value for key.
func (m *Map) Set(key, value StackItem) error {
	k, err := mapKey(key)
	if err != nil {
		return err
	}
	if i, ok := m.index[k]; ok {
		old := m.entries[i].Value
		m.entries[i].Value = value
		if m.rc != nil {
			m.rc.addChildReference(value, m.id)
			m.rc.removeChildReference(old, m.id)
		}
		return nil
	}
	m.index[k] = len(m.entries)
	m.entries = append(m.entries, MapEntry{Key: key, Value: value})
	if m.rc != nil {
		m.rc.addChildReference(key, m.id)
		m.rc.addChildReference(value, m.id)
	}
	return nil
}

// Delete removes the entry for key, if present.
func (m *Map) Delete(key StackItem) error {
	k, err := mapKey(key)
	if err != nil {
		return err
	}
	i, ok := m.index[k]
	if !ok {
		return nil
	}
	entry := m.entries[i]
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	delete(m.index, k)
	for j := i; j < len(m.entries); j++ {
		ek, _ := mapKey(m.entries[j].Key)
		m.index[ek] = j
	}
	if m.rc != nil {
		m.rc.removeChildReference(entry.Key, m.id)
		m.rc.removeChildReference(entry.Value, m.id)
	}
	return nil
}

// Clear removes all entries.
func (m *Map) Clear() {
	if m.rc != nil {
		for _, e := range m.entries {
			m.rc.removeChildReference(e.Key, m.id)
			m.rc.removeChildReference(e.Value, m.id)
		}
	}
	m.entries = m.entries[:0]
	m.index = make(map[string]int)
}

func (m *Map) refID() int { return m.id }

func (m *Map) String() string { return fmt.Sprintf("Map[%d]", len(m.entries)) }

// ---------------------------------------------------------------------------
// Equality
// ---------------------------------------------------------------------------

// ItemEquals implements the EQUAL semantics: primitives compare by their
// byte representation, Buffer/Array/Map by identity, Struct by deep
// structural equality bounded by the item-count limit, with an equal-identity
// short-circuit that also guards against self-referential structures.
func ItemEquals(a, b StackItem, limits Limits) (bool, error) {
	budget := limits.MaxStackItemCount
	return itemEquals(a, b, &budget)
}

func itemEquals(a, b StackItem, budget *int) (bool, error) {
	*budget--
	if *budget <= 0 {
		return false, fmt.Errorf("%w: comparison too deep", ErrTooManyItems)
	}
	if a == nil || b == nil {
		return a == nil && b == nil, nil
	}
	// Identity short-circuit; also the cycle guard for self-referential
	// structs.
	if sameItem(a, b) {
		return true, nil
	}
	sa, aok := a.(*Struct)
	sb, bok := b.(*Struct)
	if aok && bok {
		if sa.Len() != sb.Len() {
			return false, nil
		}
		for i := 0; i < sa.Len(); i++ {
			eq, err := itemEquals(sa.Get(i), sb.Get(i), budget)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	}
	if aok != bok {
		return false, nil
	}
	switch a.Type() {
	case AnyType:
		return b.Type() == AnyType, nil
	case BooleanType, IntegerType, ByteStringType:
		switch b.Type() {
		case BooleanType, IntegerType, ByteStringType:
			ab, err := a.Bytes()
			if err != nil {
				return false, err
			}
			bb, err := b.Bytes()
			if err != nil {
				return false, err
			}
			return bytesEqual(ab, bb), nil
		}
		return false, nil
	case PointerType:
		pa, ok := a.(Pointer)
		if !ok {
			return false, nil
		}
		pb, ok := b.(Pointer)
		if !ok {
			return false, nil
		}
		return pa.script == pb.script && pa.position == pb.position, nil
	case InteropType:
		ia, ok := a.(Interop)
		if !ok {
			return false, nil
		}
		ib, ok := b.(Interop)
		if !ok {
			return false, nil
		}
		return ia.value == ib.value, nil
	default:
		// Buffer, Array, Map: identity only, already handled above.
		return false, nil
	}
}

// sameItem reports identity equality where it is meaningful.
func sameItem(a, b StackItem) bool {
	switch x := a.(type) {
	case *Array:
		y, ok := b.(*Array)
		return ok && x == y
	case *Struct:
		y, ok := b.(*Struct)
		return ok && x == y
	case *Map:
		y, ok := b.(*Map)
		return ok && x == y
	case *Buffer:
		y, ok := b.(*Buffer)
		return ok && x == y
	case Null:
		_, ok := b.(Null)
		return ok
	default:
		return false
	}
}

// deepCopyIfStruct applies struct value semantics at container boundaries.
func deepCopyIfStruct(item StackItem, limits Limits) (StackItem, error) {
	if s, ok := item.(*Struct); ok {
		return s.Clone(limits)
	}
	return item, nil
}

package vm

import "fmt"

// Slot is a fixed-size variable store used for static fields, locals and
// arguments. Every slot position always holds an item; unassigned positions
// hold Null.
type Slot struct {
	rc    *ReferenceCounter
	items []StackItem
}

// NewSlot creates a slot of the given size with every position set to Null.
func NewSlot(rc *ReferenceCounter, size int) *Slot {
	s := &Slot{rc: rc, items: make([]StackItem, size)}
	for i := range s.items {
		s.items[i] = Null{}
		rc.AddStackReference(s.items[i])
	}
	return s
}

// newSlotFrom creates a slot holding the given items, which must already be
// referenced elsewhere; the slot takes its own reference to each.
func newSlotFrom(rc *ReferenceCounter, items []StackItem) *Slot {
	s := &Slot{rc: rc, items: items}
	for _, item := range items {
		rc.AddStackReference(item)
	}
	return s
}

// Size returns the number of positions.
func (s *Slot) Size() int { return len(s.items) }

// Get returns the item at position i.
func (s *Slot) Get(i int) (StackItem, error) {
	if i < 0 || i >= len(s.items) {
		return nil, fmt.Errorf("%w: slot index %d out of range [0, %d)", ErrInvalidOperation, i, len(s.items))
	}
	return s.items[i], nil
}

// Set stores item at position i, releasing the previous occupant.
func (s *Slot) Set(i int, item StackItem) error {
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("%w: slot index %d out of range [0, %d)", ErrInvalidOperation, i, len(s.items))
	}
	old := s.items[i]
	s.items[i] = item
	s.rc.AddStackReference(item)
	s.rc.RemoveStackReference(old)
	return nil
}

// ClearReferences releases every position. Called when the owning context
// is unloaded.
func (s *Slot) ClearReferences() {
	for _, item := range s.items {
		s.rc.RemoveStackReference(item)
	}
	s.items = nil
}

package vm

import (
	"fmt"
	"strings"
)

// EvaluationStack is the per-context operand stack. Index 0 addresses the
// top item throughout. Every insertion and removal is reported to the
// reference counter.
type EvaluationStack struct {
	rc    *ReferenceCounter
	items []StackItem
}

// NewEvaluationStack creates an empty stack tied to rc.
func NewEvaluationStack(rc *ReferenceCounter) *EvaluationStack {
	return &EvaluationStack{rc: rc}
}

// Len returns the number of items on the stack.
func (st *EvaluationStack) Len() int { return len(st.items) }

// Push places item on top.
func (st *EvaluationStack) Push(item StackItem) {
	st.items = append(st.items, item)
	st.rc.AddStackReference(item)
}

// Pop removes and returns the top item.
func (st *EvaluationStack) Pop() (StackItem, error) {
	if len(st.items) == 0 {
		return nil, fmt.Errorf("%w: pop on empty stack", ErrStackUnderflow)
	}
	item := st.items[len(st.items)-1]
	st.items = st.items[:len(st.items)-1]
	st.rc.RemoveStackReference(item)
	return item, nil
}

// Peek returns the item n positions below the top without removing it.
func (st *EvaluationStack) Peek(n int) (StackItem, error) {
	if n < 0 || n >= len(st.items) {
		return nil, fmt.Errorf("%w: peek %d with depth %d", ErrStackUnderflow, n, len(st.items))
	}
	return st.items[len(st.items)-1-n], nil
}

// Insert places item n positions below the top. Insert(0, x) equals Push(x).
func (st *EvaluationStack) Insert(n int, item StackItem) error {
	if n < 0 || n > len(st.items) {
		return fmt.Errorf("%w: insert at %d with depth %d", ErrStackUnderflow, n, len(st.items))
	}
	i := len(st.items) - n
	st.items = append(st.items, nil)
	copy(st.items[i+1:], st.items[i:])
	st.items[i] = item
	st.rc.AddStackReference(item)
	return nil
}

// Remove extracts and returns the item n positions below the top.
func (st *EvaluationStack) Remove(n int) (StackItem, error) {
	if n < 0 || n >= len(st.items) {
		return nil, fmt.Errorf("%w: remove %d with depth %d", ErrStackUnderflow, n, len(st.items))
	}
	i := len(st.items) - 1 - n
	item := st.items[i]
	st.items = append(st.items[:i], st.items[i+1:]...)
	st.rc.RemoveStackReference(item)
	return item, nil
}

// Reverse reverses the order of the top n items in place.
func (st *EvaluationStack) Reverse(n int) error {
	if n < 0 || n > len(st.items) {
		return fmt.Errorf("%w: reverse %d with depth %d", ErrStackUnderflow, n, len(st.items))
	}
	if n < 2 {
		return nil
	}
	top := st.items[len(st.items)-n:]
	for i, j := 0, len(top)-1; i < j; i, j = i+1, j-1 {
		top[i], top[j] = top[j], top[i]
	}
	return nil
}

// Clear removes every item.
func (st *EvaluationStack) Clear() {
	for _, item := range st.items {
		st.rc.RemoveStackReference(item)
	}
	st.items = st.items[:0]
}

// MoveTo transfers the top n items of st onto target, preserving their
// order. n of -1 moves everything.
func (st *EvaluationStack) MoveTo(target *EvaluationStack, n int) error {
	if n == -1 {
		n = len(st.items)
	}
	if n < 0 || n > len(st.items) {
		return fmt.Errorf("%w: move %d with depth %d", ErrStackUnderflow, n, len(st.items))
	}
	if n == 0 {
		return nil
	}
	moved := st.items[len(st.items)-n:]
	for _, item := range moved {
		target.items = append(target.items, item)
		if target.rc != st.rc {
			st.rc.RemoveStackReference(item)
			target.rc.AddStackReference(item)
		}
	}
	st.items = st.items[:len(st.items)-n]
	return nil
}

func (st *EvaluationStack) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i := len(st.items) - 1; i >= 0; i-- {
		if i != len(st.items)-1 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v", st.items[i])
	}
	b.WriteByte(']')
	return b.String()
}

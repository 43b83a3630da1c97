package vm

import (
	"errors"
	"testing"
)

func TestEvalStackPushPop(t *testing.T) {
	st := NewEvaluationStack(NewReferenceCounter())
	st.Push(IntFromInt64(1))
	st.Push(IntFromInt64(2))
	if st.Len() != 2 {
		t.Fatalf("Len = %d, want 2", st.Len())
	}
	item, err := st.Pop()
	if err != nil {
		t.Fatalf("Pop failed: %v", err)
	}
	if n, _ := item.Int(); n.Int64() != 2 {
		t.Errorf("Pop = %v, want 2", item)
	}
	if _, err := st.Pop(); err != nil {
		t.Fatalf("Pop failed: %v", err)
	}
	if _, err := st.Pop(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("Pop on empty error = %v, want ErrStackUnderflow", err)
	}
}

func TestEvalStackPeek(t *testing.T) {
	st := NewEvaluationStack(NewReferenceCounter())
	st.Push(IntFromInt64(1))
	st.Push(IntFromInt64(2))
	st.Push(IntFromInt64(3))

	for i, want := range []int64{3, 2, 1} {
		item, err := st.Peek(i)
		if err != nil {
			t.Fatalf("Peek(%d) failed: %v", i, err)
		}
		if n, _ := item.Int(); n.Int64() != want {
			t.Errorf("Peek(%d) = %v, want %d", i, item, want)
		}
	}
	if _, err := st.Peek(3); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("Peek(3) error = %v, want ErrStackUnderflow", err)
	}
}

func TestEvalStackInsertRemove(t *testing.T) {
	st := NewEvaluationStack(NewReferenceCounter())
	st.Push(IntFromInt64(1))
	st.Push(IntFromInt64(3))
	if err := st.Insert(1, IntFromInt64(2)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	// Stack is now 1 2 3 bottom to top.
	item, err := st.Remove(1)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if n, _ := item.Int(); n.Int64() != 2 {
		t.Errorf("Remove(1) = %v, want 2", item)
	}
	if st.Len() != 2 {
		t.Errorf("Len = %d, want 2", st.Len())
	}
}

func TestEvalStackReverse(t *testing.T) {
	st := NewEvaluationStack(NewReferenceCounter())
	for i := int64(1); i <= 4; i++ {
		st.Push(IntFromInt64(i))
	}
	if err := st.Reverse(3); err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}
	// Bottom to top was 1 2 3 4; now 1 4 3 2.
	for i, want := range []int64{2, 3, 4, 1} {
		item, _ := st.Peek(i)
		if n, _ := item.Int(); n.Int64() != want {
			t.Errorf("Peek(%d) = %v, want %d", i, item, want)
		}
	}
	if err := st.Reverse(5); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("Reverse(5) error = %v, want ErrStackUnderflow", err)
	}
}

func TestEvalStackMoveTo(t *testing.T) {
	rc := NewReferenceCounter()
	src := NewEvaluationStack(rc)
	dst := NewEvaluationStack(rc)
	for i := int64(1); i <= 3; i++ {
		src.Push(IntFromInt64(i))
	}
	if err := src.MoveTo(dst, -1); err != nil {
		t.Fatalf("MoveTo failed: %v", err)
	}
	if src.Len() != 0 || dst.Len() != 3 {
		t.Fatalf("lengths = %d/%d, want 0/3", src.Len(), dst.Len())
	}
	// Order is preserved: 3 still on top.
	top, _ := dst.Peek(0)
	if n, _ := top.Int(); n.Int64() != 3 {
		t.Errorf("top = %v, want 3", top)
	}
	if rc.Count() != 3 {
		t.Errorf("Count = %d, want 3", rc.Count())
	}
}

func TestSlotDefaultsToNull(t *testing.T) {
	rc := NewReferenceCounter()
	s := NewSlot(rc, 2)
	item, err := s.Get(0)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if item.Type() != AnyType {
		t.Errorf("fresh slot holds %s, want Null", item.Type())
	}
	if err := s.Set(1, IntFromInt64(7)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := s.Get(5); err == nil {
		t.Error("out-of-range Get should fail")
	}
	if rc.Count() != 2 {
		t.Errorf("Count = %d, want 2", rc.Count())
	}
	s.ClearReferences()
	if rc.Count() != 0 {
		t.Errorf("Count after clear = %d, want 0", rc.Count())
	}
}

package vm

import "testing"

func TestRefCountTotals(t *testing.T) {
	rc := NewReferenceCounter()
	if rc.Count() != 0 {
		t.Fatalf("fresh counter Count = %d, want 0", rc.Count())
	}

	n := IntFromInt64(1)
	rc.AddStackReference(n)
	rc.AddStackReference(n)
	if rc.Count() != 2 {
		t.Fatalf("Count = %d, want 2", rc.Count())
	}
	rc.RemoveStackReference(n)
	rc.RemoveStackReference(n)
	if rc.Count() != 0 {
		t.Fatalf("Count = %d, want 0", rc.Count())
	}
}

func TestRefCountContainerChildren(t *testing.T) {
	rc := NewReferenceCounter()
	a := NewArray(rc, nil)
	rc.AddStackReference(a)
	// One for the array on the stack, one per appended child.
	a.Append(IntFromInt64(1))
	a.Append(ByteString("x"))
	if rc.Count() != 3 {
		t.Fatalf("Count = %d, want 3", rc.Count())
	}
	a.Remove(0)
	if rc.Count() != 2 {
		t.Fatalf("Count after remove = %d, want 2", rc.Count())
	}
	rc.RemoveStackReference(a)
	if got := rc.CheckZeroReferred(); got != 0 {
		t.Fatalf("CheckZeroReferred = %d, want 0", got)
	}
}

func TestRefCountSelfReferenceReclaimed(t *testing.T) {
	rc := NewReferenceCounter()
	a := NewArray(rc, nil)
	rc.AddStackReference(a)
	a.Append(a)
	if rc.Count() != 2 {
		t.Fatalf("Count = %d, want 2", rc.Count())
	}

	// Still stack-referenced: nothing to reclaim.
	rc.RemoveStackReference(a)
	if got := rc.CheckZeroReferred(); got != 0 {
		t.Fatalf("self-referential cycle not reclaimed: Count = %d", got)
	}
}

func TestRefCountTwoNodeCycle(t *testing.T) {
	rc := NewReferenceCounter()
	a := NewArray(rc, nil)
	b := NewArray(rc, nil)
	rc.AddStackReference(a)
	rc.AddStackReference(b)
	a.Append(b)
	b.Append(a)
	rc.RemoveStackReference(b)
	if got := rc.CheckZeroReferred(); got != 3 {
		// a on the stack plus two cycle edges are all live.
		t.Fatalf("Count = %d, want 3", got)
	}
	rc.RemoveStackReference(a)
	if got := rc.CheckZeroReferred(); got != 0 {
		t.Fatalf("cycle not reclaimed: Count = %d", got)
	}
}

func TestRefCountExternalParentKeepsChild(t *testing.T) {
	rc := NewReferenceCounter()
	parent := NewArray(rc, nil)
	child := NewArray(rc, nil)
	rc.AddStackReference(parent)
	rc.AddStackReference(child)
	parent.Append(child)
	// The child leaves the stack but stays inside the live parent.
	rc.RemoveStackReference(child)
	if got := rc.CheckZeroReferred(); got != 2 {
		t.Fatalf("Count = %d, want 2", got)
	}
	// Reading it back out must still work.
	if parent.Get(0) != StackItem(child) {
		t.Fatal("child lost while parent was live")
	}
}

func TestRefCountDeadParentFreesPrimitives(t *testing.T) {
	rc := NewReferenceCounter()
	a := NewArray(rc, []StackItem{IntFromInt64(1), IntFromInt64(2)})
	rc.AddStackReference(a)
	if rc.Count() != 3 {
		t.Fatalf("Count = %d, want 3", rc.Count())
	}
	rc.RemoveStackReference(a)
	if got := rc.CheckZeroReferred(); got != 0 {
		t.Fatalf("Count = %d, want 0", got)
	}
}

package vm

import "testing"

func TestTryCatch(t *testing.T) {
	// 0: TRY(catch=5)  3: PUSH1  4: THROW  5: ENDTRY +2 (to 7)  7: PUSH9
	e := run(t, []byte{
		byte(OpTRY), 0x05, 0x00,
		byte(OpPush1),
		byte(OpTHROW),
		byte(OpENDTRY), 0x02,
		byte(OpPush9),
	})
	wantHalt(t, e)
	if e.ResultStack().Len() != 2 {
		t.Fatalf("result stack len = %d, want 2", e.ResultStack().Len())
	}
	// The thrown value was pushed into the catch block.
	if got := resultInt(t, e, 1); got.Int64() != 1 {
		t.Errorf("caught value = %s, want 1", got)
	}
	if got := resultInt(t, e, 0); got.Int64() != 9 {
		t.Errorf("continuation value = %s, want 9", got)
	}
}

func TestTryFinallyNormalPath(t *testing.T) {
	// 0: TRY(finally=6)  3: PUSH1  4: ENDTRY +4 (to 8)
	// 6: PUSH2  7: ENDFINALLY  8: PUSH3
	e := run(t, []byte{
		byte(OpTRY), 0x00, 0x06,
		byte(OpPush1),
		byte(OpENDTRY), 0x04,
		byte(OpPush2),
		byte(OpENDFINALLY),
		byte(OpPush3),
	})
	wantHalt(t, e)
	want := []int64{3, 2, 1} // top to bottom
	if e.ResultStack().Len() != len(want) {
		t.Fatalf("result stack len = %d, want %d", e.ResultStack().Len(), len(want))
	}
	for i, w := range want {
		if got := resultInt(t, e, i); got.Int64() != w {
			t.Errorf("result %d = %s, want %d", i, got, w)
		}
	}
}

func TestThrowUncaught(t *testing.T) {
	e := run(t, []byte{byte(OpPush1), byte(OpTHROW)})
	wantFault(t, e, ErrUnhandledException)
}

func TestThrowCrossesFrames(t *testing.T) {
	// 0: TRY(catch=5)  3: CALL +6 (to 9)  5: ENDTRY +3 (to 8)
	// 7: NOP  8: RET  9: PUSH1  10: THROW
	e := run(t, []byte{
		byte(OpTRY), 0x05, 0x00,
		byte(OpCALL), 0x06,
		byte(OpENDTRY), 0x03,
		byte(OpNOP),
		byte(OpRET),
		byte(OpPush1),
		byte(OpTHROW),
	})
	wantHalt(t, e)
	if e.ResultStack().Len() != 1 {
		t.Fatalf("result stack len = %d, want 1", e.ResultStack().Len())
	}
	if got := resultInt(t, e, 0); got.Int64() != 1 {
		t.Errorf("caught value = %s, want 1", got)
	}
}

func TestFinallyRunsDuringUnwind(t *testing.T) {
	// 0: TRY(finally=5)  3: PUSH1  4: THROW  5: PUSH2  6: ENDFINALLY
	var tracer Tracer
	e, err := NewEngine(DefaultLimits(), nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	e.SetInstructionHook(tracer.Hook())
	if _, err := e.LoadScript([]byte{
		byte(OpTRY), 0x00, 0x05,
		byte(OpPush1),
		byte(OpTHROW),
		byte(OpPush2),
		byte(OpENDFINALLY),
	}); err != nil {
		t.Fatalf("LoadScript failed: %v", err)
	}
	e.Execute()
	wantFault(t, e, ErrUnhandledException)

	// The finally body executed on the way out.
	sawFinally := false
	for _, entry := range tracer.Entries {
		if entry.Offset == 5 && entry.Opcode == OpPush2 {
			sawFinally = true
		}
	}
	if !sawFinally {
		t.Error("finally block did not run before the fault")
	}
}

func TestThrowInCatchRunsFinally(t *testing.T) {
	// 0: TRY(catch=5, finally=8)  3: PUSH1  4: THROW
	// 5: DROP  6: PUSH2  7: THROW  8: PUSH3  9: ENDFINALLY
	var tracer Tracer
	e, err := NewEngine(DefaultLimits(), nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	e.SetInstructionHook(tracer.Hook())
	if _, err := e.LoadScript([]byte{
		byte(OpTRY), 0x05, 0x08,
		byte(OpPush1),
		byte(OpTHROW),
		byte(OpDROP),
		byte(OpPush2),
		byte(OpTHROW),
		byte(OpPush3),
		byte(OpENDFINALLY),
	}); err != nil {
		t.Fatalf("LoadScript failed: %v", err)
	}
	e.Execute()
	// The second throw escapes: finally runs, then the fault surfaces.
	wantFault(t, e, ErrUnhandledException)

	sawFinally := false
	for _, entry := range tracer.Entries {
		if entry.Offset == 8 && entry.Opcode == OpPush3 {
			sawFinally = true
		}
	}
	if !sawFinally {
		t.Error("finally block did not run after a throw inside catch")
	}
}

func TestTryNestingLimit(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxTryNestingDepth = 2
	e, err := NewEngine(limits, nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	// Three nested TRYs, all pointing their catch at the trailing RET.
	if _, err := e.LoadScript([]byte{
		byte(OpTRY), 0x09, 0x00,
		byte(OpTRY), 0x06, 0x00,
		byte(OpTRY), 0x03, 0x00,
		byte(OpRET),
	}); err != nil {
		t.Fatalf("LoadScript failed: %v", err)
	}
	e.Execute()
	wantFault(t, e, ErrInvalidOperation)
}

func TestEndTryOutsideRegion(t *testing.T) {
	e := run(t, []byte{byte(OpENDTRY), 0x02})
	wantFault(t, e, ErrInvalidOperation)
}

func TestEndFinallyOutsideRegion(t *testing.T) {
	e := run(t, []byte{byte(OpENDFINALLY)})
	wantFault(t, e, ErrInvalidOperation)
}

package wire

import (
	"bytes"
	"testing"

	"github.com/chazu/ledgervm/vm"
)

func runScript(t *testing.T, code []byte) *vm.Engine {
	t.Helper()
	e, err := vm.NewEngine(vm.DefaultLimits(), nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if _, err := e.LoadScript(code); err != nil {
		t.Fatalf("LoadScript failed: %v", err)
	}
	e.Execute()
	return e
}

func additionScript(t *testing.T) []byte {
	t.Helper()
	code, err := vm.NewScriptBuilder().
		EmitPushInt(20).EmitPushInt(22).
		Emit(vm.OpADD).
		Bytes()
	if err != nil {
		t.Fatalf("build script: %v", err)
	}
	return code
}

func TestNewReceipt(t *testing.T) {
	code := additionScript(t)
	e := runScript(t, code)
	if e.State() != vm.StateHalted {
		t.Fatalf("engine state = %s, want HALT", e.State())
	}

	r, err := NewReceipt(e, code)
	if err != nil {
		t.Fatalf("NewReceipt failed: %v", err)
	}
	if r.State != vm.StateHalted.String() {
		t.Errorf("receipt state = %q, want %q", r.State, vm.StateHalted.String())
	}
	if r.EngineID != e.ID().String() {
		t.Errorf("receipt engine id = %q, want %q", r.EngineID, e.ID())
	}
	if r.ScriptHash != ScriptHash(code) {
		t.Error("receipt script hash does not match script")
	}
	if r.FaultMessage != "" {
		t.Errorf("fault message = %q, want empty", r.FaultMessage)
	}
	if r.Instructions == 0 {
		t.Error("instruction count should not be zero")
	}
	if len(r.Results) != 1 {
		t.Fatalf("results = %d entries, want 1", len(r.Results))
	}

	items, err := r.ResultItems(vm.NewReferenceCounter(), vm.DefaultLimits())
	if err != nil {
		t.Fatalf("ResultItems failed: %v", err)
	}
	v, err := items[0].Int()
	if err != nil || v.Int64() != 42 {
		t.Errorf("result = %s (%v), want 42", v, err)
	}
}

func TestNewReceiptRejectsRunningEngine(t *testing.T) {
	e, err := vm.NewEngine(vm.DefaultLimits(), nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	code := additionScript(t)
	if _, err := e.LoadScript(code); err != nil {
		t.Fatalf("LoadScript failed: %v", err)
	}
	// Loaded but never executed: not a terminal state.
	if _, err := NewReceipt(e, code); err == nil {
		t.Error("NewReceipt should reject a non-terminal engine")
	}
}

func TestReceiptFaultMessage(t *testing.T) {
	code, err := vm.NewScriptBuilder().
		EmitPushInt(1).EmitPushInt(0).
		Emit(vm.OpDIV).
		Bytes()
	if err != nil {
		t.Fatalf("build script: %v", err)
	}
	e := runScript(t, code)
	if e.State() != vm.StateFaulted {
		t.Fatalf("engine state = %s, want FAULT", e.State())
	}

	r, err := NewReceipt(e, code)
	if err != nil {
		t.Fatalf("NewReceipt failed: %v", err)
	}
	if r.State != vm.StateFaulted.String() {
		t.Errorf("receipt state = %q, want %q", r.State, vm.StateFaulted.String())
	}
	if r.FaultMessage == "" {
		t.Error("fault message should not be empty")
	}
}

func TestReceiptRoundTrip(t *testing.T) {
	code := additionScript(t)
	r, err := NewReceipt(runScript(t, code), code)
	if err != nil {
		t.Fatalf("NewReceipt failed: %v", err)
	}

	data, err := MarshalReceipt(r)
	if err != nil {
		t.Fatalf("MarshalReceipt failed: %v", err)
	}
	out, err := UnmarshalReceipt(data)
	if err != nil {
		t.Fatalf("UnmarshalReceipt failed: %v", err)
	}

	if out.EngineID != r.EngineID || out.State != r.State ||
		out.ScriptHash != r.ScriptHash || out.Instructions != r.Instructions {
		t.Errorf("round trip mismatch: %+v vs %+v", out, r)
	}
	if len(out.Results) != len(r.Results) {
		t.Fatalf("results = %d entries, want %d", len(out.Results), len(r.Results))
	}
	for i := range r.Results {
		if !bytes.Equal(out.Results[i], r.Results[i]) {
			t.Errorf("result %d changed in round trip", i)
		}
	}
}

func TestReceiptEncodingDeterministic(t *testing.T) {
	code := additionScript(t)
	r, err := NewReceipt(runScript(t, code), code)
	if err != nil {
		t.Fatalf("NewReceipt failed: %v", err)
	}
	a, err := MarshalReceipt(r)
	if err != nil {
		t.Fatalf("MarshalReceipt failed: %v", err)
	}
	b, err := MarshalReceipt(r)
	if err != nil {
		t.Fatalf("MarshalReceipt failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("receipt encoding is not deterministic")
	}
}

func TestResultOrderBottomFirst(t *testing.T) {
	code, err := vm.NewScriptBuilder().
		EmitPushInt(1).EmitPushInt(2).EmitPushInt(3).
		Bytes()
	if err != nil {
		t.Fatalf("build script: %v", err)
	}
	r, err := NewReceipt(runScript(t, code), code)
	if err != nil {
		t.Fatalf("NewReceipt failed: %v", err)
	}
	items, err := r.ResultItems(vm.NewReferenceCounter(), vm.DefaultLimits())
	if err != nil {
		t.Fatalf("ResultItems failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("results = %d items, want 3", len(items))
	}
	for i, want := range []int64{1, 2, 3} {
		v, err := items[i].Int()
		if err != nil || v.Int64() != want {
			t.Errorf("result %d = %s (%v), want %d", i, v, err, want)
		}
	}
}

package vm

import (
	"bytes"
	"testing"
)

func TestPackAndSize(t *testing.T) {
	b := NewScriptBuilder().
		EmitPushInt(10).EmitPushInt(20).EmitPushInt(30).
		EmitPushInt(3).Emit(OpPACK).
		Emit(OpSIZE)
	e := run(t, mustBytes(t, b))
	wantHalt(t, e)
	if got := resultInt(t, e, 0); got.Int64() != 3 {
		t.Errorf("SIZE = %s, want 3", got)
	}
}

func TestPackOrderAndPickItem(t *testing.T) {
	// PACK makes the topmost stack item element 0.
	b := NewScriptBuilder().
		EmitPushInt(10).EmitPushInt(20).EmitPushInt(30).
		EmitPushInt(3).Emit(OpPACK).
		EmitPushInt(0).Emit(OpPICKITEM)
	e := run(t, mustBytes(t, b))
	wantHalt(t, e)
	if got := resultInt(t, e, 0); got.Int64() != 30 {
		t.Errorf("element 0 = %s, want 30", got)
	}
}

func TestUnpackRoundTrip(t *testing.T) {
	b := NewScriptBuilder().
		EmitPushInt(10).EmitPushInt(20).
		EmitPushInt(2).Emit(OpPACK).
		Emit(OpUNPACK)
	e := run(t, mustBytes(t, b))
	wantHalt(t, e)
	// Top down: count, element 0, element 1.
	if got := resultInt(t, e, 0); got.Int64() != 2 {
		t.Errorf("count = %s, want 2", got)
	}
	if got := resultInt(t, e, 1); got.Int64() != 20 {
		t.Errorf("element 0 = %s, want 20", got)
	}
	if got := resultInt(t, e, 2); got.Int64() != 10 {
		t.Errorf("element 1 = %s, want 10", got)
	}
}

func TestMapSetGet(t *testing.T) {
	b := NewScriptBuilder().
		Emit(OpNEWMAP).Emit(OpDUP).
		EmitPushBytes([]byte("k")).EmitPushInt(42).Emit(OpSETITEM).
		EmitPushBytes([]byte("k")).Emit(OpPICKITEM)
	e := run(t, mustBytes(t, b))
	wantHalt(t, e)
	if got := resultInt(t, e, 0); got.Int64() != 42 {
		t.Errorf("map[k] = %s, want 42", got)
	}
}

func TestMapMissingKeyFaults(t *testing.T) {
	b := NewScriptBuilder().
		Emit(OpNEWMAP).
		EmitPushBytes([]byte("absent")).Emit(OpPICKITEM)
	e := run(t, mustBytes(t, b))
	wantFault(t, e, ErrInvalidOperation)
}

func TestHasKey(t *testing.T) {
	b := NewScriptBuilder().
		Emit(OpNEWMAP).Emit(OpDUP).
		EmitPushInt(7).EmitPushInt(1).Emit(OpSETITEM).
		EmitPushInt(7).Emit(OpHASKEY)
	e := run(t, mustBytes(t, b))
	wantHalt(t, e)
	item, err := e.ResultStack().Peek(0)
	if err != nil {
		t.Fatalf("no result: %v", err)
	}
	if ok, _ := item.Bool(); !ok {
		t.Error("HASKEY = false, want true")
	}
}

func TestHasKeyIndexBounds(t *testing.T) {
	b := NewScriptBuilder().
		EmitPushInt(1).EmitPushInt(1).Emit(OpPACK).
		EmitPushInt(5).Emit(OpHASKEY)
	e := run(t, mustBytes(t, b))
	wantHalt(t, e)
	item, err := e.ResultStack().Peek(0)
	if err != nil {
		t.Fatalf("no result: %v", err)
	}
	if ok, _ := item.Bool(); ok {
		t.Error("HASKEY past end = true, want false")
	}
}

func TestAppendCopiesStructs(t *testing.T) {
	// Appending a struct stores a clone, so mutating the original
	// afterwards must not leak into the array.
	sb := NewScriptBuilder().
		EmitPushInt(0).Emit(OpNEWARRAY).  // [arr]
		Emit(OpDUP).                      // [arr, arr]
		EmitPushInt(99).
		EmitPushInt(1).Emit(OpPACKSTRUCT). // [arr, arr, struct{99}]
		Emit(OpAPPEND).                   // [arr]
		EmitPushInt(0).Emit(OpPICKITEM).  // [struct{99}]
		EmitPushInt(0).Emit(OpPICKITEM)   // [99]
	e := run(t, mustBytes(t, sb))
	wantHalt(t, e)
	if got := resultInt(t, e, 0); got.Int64() != 99 {
		t.Errorf("appended struct member = %s, want 99", got)
	}
}

func TestPickItemOnByteString(t *testing.T) {
	b := NewScriptBuilder().
		EmitPushBytes([]byte{0x0A, 0x0B, 0x0C}).
		EmitPushInt(1).Emit(OpPICKITEM)
	e := run(t, mustBytes(t, b))
	wantHalt(t, e)
	if got := resultInt(t, e, 0); got.Int64() != 0x0B {
		t.Errorf("byte at 1 = %s, want 11", got)
	}
}

func TestPopItem(t *testing.T) {
	b := NewScriptBuilder().
		EmitPushInt(5).EmitPushInt(9).
		EmitPushInt(2).Emit(OpPACK).
		Emit(OpDUP).Emit(OpPOPITEM).
		Emit(OpSWAP).Emit(OpSIZE)
	e := run(t, mustBytes(t, b))
	wantHalt(t, e)
	// PACK puts the top push at index 0, so the last element is 5.
	if got := resultInt(t, e, 1); got.Int64() != 5 {
		t.Errorf("popped item = %s, want 5", got)
	}
	if got := resultInt(t, e, 0); got.Int64() != 1 {
		t.Errorf("remaining size = %s, want 1", got)
	}
}

func TestCatProducesBuffer(t *testing.T) {
	b := NewScriptBuilder().
		EmitPushBytes([]byte("foo")).
		EmitPushBytes([]byte("bar")).
		Emit(OpCAT)
	e := run(t, mustBytes(t, b))
	wantHalt(t, e)
	item, err := e.ResultStack().Peek(0)
	if err != nil {
		t.Fatalf("no result: %v", err)
	}
	buf, ok := item.(*Buffer)
	if !ok {
		t.Fatalf("CAT result is %s, want Buffer", item.Type())
	}
	if !bytes.Equal(buf.Data(), []byte("foobar")) {
		t.Errorf("CAT = %q, want \"foobar\"", buf.Data())
	}
}

func TestSubstrLeftRight(t *testing.T) {
	cases := []struct {
		name string
		emit func(b *ScriptBuilder) *ScriptBuilder
		want string
	}{
		{"SUBSTR", func(b *ScriptBuilder) *ScriptBuilder {
			return b.EmitPushInt(1).EmitPushInt(3).Emit(OpSUBSTR)
		}, "bcd"},
		{"LEFT", func(b *ScriptBuilder) *ScriptBuilder {
			return b.EmitPushInt(2).Emit(OpLEFT)
		}, "ab"},
		{"RIGHT", func(b *ScriptBuilder) *ScriptBuilder {
			return b.EmitPushInt(2).Emit(OpRIGHT)
		}, "de"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := tc.emit(NewScriptBuilder().EmitPushBytes([]byte("abcde")))
			e := run(t, mustBytes(t, b))
			wantHalt(t, e)
			item, err := e.ResultStack().Peek(0)
			if err != nil {
				t.Fatalf("no result: %v", err)
			}
			data, err := item.Bytes()
			if err != nil || string(data) != tc.want {
				t.Errorf("result = %q (%v), want %q", data, err, tc.want)
			}
		})
	}
}

func TestSubstrOutOfRange(t *testing.T) {
	b := NewScriptBuilder().
		EmitPushBytes([]byte("ab")).
		EmitPushInt(1).EmitPushInt(5).Emit(OpSUBSTR)
	e := run(t, mustBytes(t, b))
	wantFault(t, e, ErrInvalidOperation)
}

func TestBufferSetItem(t *testing.T) {
	b := NewScriptBuilder().
		EmitPushInt(3).Emit(OpNEWBUFFER).
		Emit(OpDUP).
		EmitPushInt(1).EmitPushInt(0xFF).Emit(OpSETITEM).
		EmitPushInt(1).Emit(OpPICKITEM)
	e := run(t, mustBytes(t, b))
	wantHalt(t, e)
	if got := resultInt(t, e, 0); got.Int64() != 0xFF {
		t.Errorf("buffer[1] = %s, want 255", got)
	}
}

func TestMemCpy(t *testing.T) {
	b := NewScriptBuilder().
		EmitPushInt(4).Emit(OpNEWBUFFER).
		Emit(OpDUP).
		EmitPushInt(1).                     // dst index
		EmitPushBytes([]byte{0xAA, 0xBB}). // src
		EmitPushInt(0).                     // src index
		EmitPushInt(2).                     // count
		Emit(OpMEMCPY)
	e := run(t, mustBytes(t, b))
	wantHalt(t, e)
	item, err := e.ResultStack().Peek(0)
	if err != nil {
		t.Fatalf("no result: %v", err)
	}
	buf, ok := item.(*Buffer)
	if !ok {
		t.Fatalf("result is %s, want Buffer", item.Type())
	}
	if !bytes.Equal(buf.Data(), []byte{0x00, 0xAA, 0xBB, 0x00}) {
		t.Errorf("buffer = %x, want 00aabb00", buf.Data())
	}
}

func TestReverseItems(t *testing.T) {
	b := NewScriptBuilder().
		EmitPushInt(1).EmitPushInt(2).EmitPushInt(3).
		EmitPushInt(3).Emit(OpPACK).
		Emit(OpDUP).Emit(OpREVERSEITEMS).
		EmitPushInt(0).Emit(OpPICKITEM)
	e := run(t, mustBytes(t, b))
	wantHalt(t, e)
	// PACK order: [3, 2, 1]; reversed: [1, 2, 3].
	if got := resultInt(t, e, 0); got.Int64() != 1 {
		t.Errorf("reversed element 0 = %s, want 1", got)
	}
}

func TestIsNullAndIsType(t *testing.T) {
	b := NewScriptBuilder().
		EmitPushNull().Emit(OpISNULL).
		EmitPushInt(5).Emit(OpISTYPE, byte(IntegerType)).
		EmitPushInt(5).Emit(OpISTYPE, byte(ArrayType))
	e := run(t, mustBytes(t, b))
	wantHalt(t, e)
	wantBools := []bool{false, true, true} // top down
	for i, want := range wantBools {
		item, err := e.ResultStack().Peek(i)
		if err != nil {
			t.Fatalf("no result %d: %v", i, err)
		}
		got, err := item.Bool()
		if err != nil || got != want {
			t.Errorf("result %d = %v (%v), want %v", i, got, err, want)
		}
	}
}

func TestIsTypeRejectsAny(t *testing.T) {
	b := NewScriptBuilder().
		EmitPushInt(5).Emit(OpISTYPE, byte(AnyType))
	e := run(t, mustBytes(t, b))
	wantFault(t, e, ErrInvalidOperation)
}

func TestConvert(t *testing.T) {
	b := NewScriptBuilder().
		EmitPushInt(258).Emit(OpCONVERT, byte(ByteStringType))
	e := run(t, mustBytes(t, b))
	wantHalt(t, e)
	item, err := e.ResultStack().Peek(0)
	if err != nil {
		t.Fatalf("no result: %v", err)
	}
	if item.Type() != ByteStringType {
		t.Fatalf("converted type = %s, want ByteString", item.Type())
	}
	data, _ := item.Bytes()
	if !bytes.Equal(data, []byte{0x02, 0x01}) {
		t.Errorf("converted bytes = %x, want 0201", data)
	}
}

func TestConvertArrayToStruct(t *testing.T) {
	b := NewScriptBuilder().
		EmitPushInt(7).
		EmitPushInt(1).Emit(OpPACK).
		Emit(OpCONVERT, byte(StructType)).
		EmitPushInt(0).Emit(OpPICKITEM)
	e := run(t, mustBytes(t, b))
	wantHalt(t, e)
	if got := resultInt(t, e, 0); got.Int64() != 7 {
		t.Errorf("struct member = %s, want 7", got)
	}
}

func TestConvertNullFails(t *testing.T) {
	b := NewScriptBuilder().
		EmitPushNull().Emit(OpCONVERT, byte(IntegerType))
	e := run(t, mustBytes(t, b))
	wantFault(t, e, ErrInvalidCast)
}

func TestNewArrayT(t *testing.T) {
	b := NewScriptBuilder().
		EmitPushInt(2).Emit(OpNEWARRAYT, byte(IntegerType)).
		EmitPushInt(0).Emit(OpPICKITEM)
	e := run(t, mustBytes(t, b))
	wantHalt(t, e)
	if got := resultInt(t, e, 0); got.Sign() != 0 {
		t.Errorf("default element = %s, want 0", got)
	}
}

func TestConvertBufferToInteger(t *testing.T) {
	b := NewScriptBuilder().
		EmitPushInt(3).Emit(OpNEWBUFFER).
		Emit(OpCONVERT, byte(IntegerType))
	e := run(t, mustBytes(t, b))
	wantHalt(t, e)
	if got := resultInt(t, e, 0); got.Sign() != 0 {
		t.Errorf("zeroed buffer converts to %s, want 0", got)
	}

	// 0x012C in little-endian two's complement.
	b = NewScriptBuilder().
		EmitPushBytes([]byte{0x2C, 0x01}).
		Emit(OpCONVERT, byte(BufferType)).
		Emit(OpCONVERT, byte(IntegerType))
	e = run(t, mustBytes(t, b))
	wantHalt(t, e)
	if got := resultInt(t, e, 0); got.Int64() != 300 {
		t.Errorf("buffer converts to %s, want 300", got)
	}
}

func TestConvertCompoundToBoolean(t *testing.T) {
	b := NewScriptBuilder().
		Emit(OpNEWARRAY0).Emit(OpCONVERT, byte(BooleanType)).
		EmitPushInt(1).EmitPushInt(1).Emit(OpPACK).Emit(OpCONVERT, byte(BooleanType)).
		Emit(OpNEWMAP).Emit(OpCONVERT, byte(BooleanType))
	e := run(t, mustBytes(t, b))
	wantHalt(t, e)
	// Top down: empty map, one-element array, empty array.
	wantBools := []bool{false, true, false}
	for i, want := range wantBools {
		item, err := e.ResultStack().Peek(i)
		if err != nil {
			t.Fatalf("no result %d: %v", i, err)
		}
		if item.Type() != BooleanType {
			t.Fatalf("result %d is %s, want Boolean", i, item.Type())
		}
		got, _ := item.Bool()
		if got != want {
			t.Errorf("result %d = %v, want %v", i, got, want)
		}
	}
}

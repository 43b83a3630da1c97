package vm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"
)

// ScriptBuilder assembles byte code. Emission errors stick: the first one is
// reported by Bytes or Script and later calls are no-ops.
type ScriptBuilder struct {
	buf bytes.Buffer
	err error
}

// NewScriptBuilder creates an empty builder.
func NewScriptBuilder() *ScriptBuilder {
	return &ScriptBuilder{}
}

// Len returns the number of bytes emitted so far.
func (b *ScriptBuilder) Len() int { return b.buf.Len() }

// Emit appends op followed by raw operand bytes.
func (b *ScriptBuilder) Emit(op Opcode, operand ...byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	if !op.IsValid() {
		b.err = fmt.Errorf("%w: 0x%02X", ErrInvalidOpcode, byte(op))
		return b
	}
	b.buf.WriteByte(byte(op))
	b.buf.Write(operand)
	return b
}

// EmitPush emits the shortest encoding of v: the constant opcodes for
// [-1, 16], a PUSHINT otherwise.
func (b *ScriptBuilder) EmitPush(v *big.Int) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	if v.IsInt64() {
		if n := v.Int64(); n >= -1 && n <= 16 {
			return b.Emit(Opcode(int(OpPush0) + int(n)))
		}
	}
	var op Opcode
	var width int
	switch n := intByteLen(v); {
	case n <= 1:
		op, width = OpPushInt8, 1
	case n <= 2:
		op, width = OpPushInt16, 2
	case n <= 4:
		op, width = OpPushInt32, 4
	case n <= 8:
		op, width = OpPushInt64, 8
	case n <= 16:
		op, width = OpPushInt128, 16
	case n <= 32:
		op, width = OpPushInt256, 32
	default:
		b.err = fmt.Errorf("%w: integer needs %d bytes", ErrOverflow, intByteLen(v))
		return b
	}
	operand := make([]byte, width)
	if v.Sign() >= 0 {
		fillLittleEndian(operand, v)
	} else {
		c := new(big.Int).Lsh(big.NewInt(1), uint(width*8))
		c.Add(c, v)
		fillLittleEndian(operand, c)
	}
	return b.Emit(op, operand...)
}

// EmitPushInt emits a small-integer push.
func (b *ScriptBuilder) EmitPushInt(v int64) *ScriptBuilder {
	return b.EmitPush(big.NewInt(v))
}

// EmitPushBool emits PUSHT or PUSHF.
func (b *ScriptBuilder) EmitPushBool(v bool) *ScriptBuilder {
	if v {
		return b.Emit(OpPushTrue)
	}
	return b.Emit(OpPushFalse)
}

// EmitPushNull emits PUSHNULL.
func (b *ScriptBuilder) EmitPushNull() *ScriptBuilder {
	return b.Emit(OpPushNull)
}

// EmitPushBytes emits the shortest PUSHDATA form for data.
func (b *ScriptBuilder) EmitPushBytes(data []byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	switch {
	case len(data) < 0x100:
		b.Emit(OpPushData1, byte(len(data)))
	case len(data) < 0x10000:
		var prefix [2]byte
		binary.LittleEndian.PutUint16(prefix[:], uint16(len(data)))
		b.Emit(OpPushData2, prefix[:]...)
	default:
		var prefix [4]byte
		binary.LittleEndian.PutUint32(prefix[:], uint32(len(data)))
		b.Emit(OpPushData4, prefix[:]...)
	}
	if b.err == nil {
		b.buf.Write(data)
	}
	return b
}

// EmitJump emits a short branch with a displacement relative to the opcode.
func (b *ScriptBuilder) EmitJump(op Opcode, displacement int8) *ScriptBuilder {
	return b.Emit(op, byte(displacement))
}

// EmitJumpL emits a long branch with a displacement relative to the opcode.
func (b *ScriptBuilder) EmitJumpL(op Opcode, displacement int32) *ScriptBuilder {
	var operand [4]byte
	binary.LittleEndian.PutUint32(operand[:], uint32(displacement))
	return b.Emit(op, operand[:]...)
}

// EmitTry emits TRY with catch and finally displacements; zero means the
// handler is absent.
func (b *ScriptBuilder) EmitTry(catch, finally int8) *ScriptBuilder {
	return b.Emit(OpTRY, byte(catch), byte(finally))
}

// EmitSyscall emits SYSCALL with the identifier of name.
func (b *ScriptBuilder) EmitSyscall(name string) *ScriptBuilder {
	var operand [4]byte
	binary.LittleEndian.PutUint32(operand[:], InteropNameToID(name))
	return b.Emit(OpSYSCALL, operand[:]...)
}

// Bytes returns the assembled code.
func (b *ScriptBuilder) Bytes() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.buf.Bytes(), nil
}

// Script validates the assembled code and returns it as a Script.
func (b *ScriptBuilder) Script() (*Script, error) {
	code, err := b.Bytes()
	if err != nil {
		return nil, err
	}
	return NewScript(code)
}

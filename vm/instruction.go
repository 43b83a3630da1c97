package vm

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// Instruction is one decoded opcode with its operand bytes.
type Instruction struct {
	Opcode  Opcode
	Operand []byte
	offset  int
}

// Offset returns the position of the opcode byte within its script.
func (in *Instruction) Offset() int { return in.offset }

// Size returns the full encoded size: opcode, length prefix and operand.
func (in *Instruction) Size() int {
	info, _ := in.Opcode.Info()
	return 1 + info.PrefixBytes + len(in.Operand)
}

// NextOffset returns the offset of the following instruction.
func (in *Instruction) NextOffset() int { return in.offset + in.Size() }

func (in *Instruction) String() string {
	if len(in.Operand) == 0 {
		return in.Opcode.String()
	}
	return fmt.Sprintf("%s %x", in.Opcode, in.Operand)
}

// ---------------------------------------------------------------------------
// Operand accessors
// ---------------------------------------------------------------------------

// Int8 reads the operand as a signed 8-bit value.
func (in *Instruction) Int8() int8 { return int8(in.Operand[0]) }

// Uint8 reads the operand as an unsigned 8-bit value.
func (in *Instruction) Uint8() uint8 { return in.Operand[0] }

// Int16 reads the operand as a signed little-endian 16-bit value.
func (in *Instruction) Int16() int16 {
	return int16(binary.LittleEndian.Uint16(in.Operand))
}

// Uint16 reads the operand as an unsigned little-endian 16-bit value.
func (in *Instruction) Uint16() uint16 {
	return binary.LittleEndian.Uint16(in.Operand)
}

// Int32 reads the operand as a signed little-endian 32-bit value.
func (in *Instruction) Int32() int32 {
	return int32(binary.LittleEndian.Uint32(in.Operand))
}

// Uint32 reads the operand as an unsigned little-endian 32-bit value.
func (in *Instruction) Uint32() uint32 {
	return binary.LittleEndian.Uint32(in.Operand)
}

// Int64 reads the operand as a signed little-endian 64-bit value.
func (in *Instruction) Int64() int64 {
	return int64(binary.LittleEndian.Uint64(in.Operand))
}

// BigInt reads the full operand as a little-endian two's-complement integer.
func (in *Instruction) BigInt() *big.Int {
	return bytesToInt(in.Operand)
}

// JumpTarget resolves the absolute target of a branch instruction: one
// signed byte for the short forms, four for the _L forms, both relative to
// the opcode offset.
func (in *Instruction) JumpTarget() int {
	if len(in.Operand) == 1 {
		return in.offset + int(in.Int8())
	}
	return in.offset + int(in.Int32())
}

// TryTargets resolves the absolute catch and finally targets of TRY and
// TRY_L. A zero displacement means the handler is absent.
func (in *Instruction) TryTargets() (catch, finally int) {
	var dc, df int
	if len(in.Operand) == 2 {
		dc, df = int(int8(in.Operand[0])), int(int8(in.Operand[1]))
	} else {
		dc = int(int32(binary.LittleEndian.Uint32(in.Operand[:4])))
		df = int(int32(binary.LittleEndian.Uint32(in.Operand[4:])))
	}
	catch, finally = -1, -1
	if dc != 0 {
		catch = in.offset + dc
	}
	if df != 0 {
		finally = in.offset + df
	}
	return catch, finally
}

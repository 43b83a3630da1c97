package vm

import (
	"bytes"
	"fmt"
	"math/big"
)

// ---------------------------------------------------------------------------
// StackItem: the tagged value model
// ---------------------------------------------------------------------------

// ItemType tags a StackItem variant. The byte values double as the type tags
// of the binary stack-item encoding, so they must never change.
type ItemType byte

const (
	AnyType        ItemType = 0x00
	PointerType    ItemType = 0x10
	BooleanType    ItemType = 0x20
	IntegerType    ItemType = 0x21
	ByteStringType ItemType = 0x28
	BufferType     ItemType = 0x30
	ArrayType      ItemType = 0x40
	StructType     ItemType = 0x41
	MapType        ItemType = 0x48
	InteropType    ItemType = 0x60
)

// String implements the Stringer interface.
func (t ItemType) String() string {
	switch t {
	case AnyType:
		return "Any"
	case PointerType:
		return "Pointer"
	case BooleanType:
		return "Boolean"
	case IntegerType:
		return "Integer"
	case ByteStringType:
		return "ByteString"
	case BufferType:
		return "Buffer"
	case ArrayType:
		return "Array"
	case StructType:
		return "Struct"
	case MapType:
		return "Map"
	case InteropType:
		return "InteropInterface"
	default:
		return fmt.Sprintf("ItemType(%02X)", byte(t))
	}
}

// IsValidType reports whether the byte names a concrete item type.
func IsValidType(t ItemType) bool {
	switch t {
	case AnyType, PointerType, BooleanType, IntegerType, ByteStringType,
		BufferType, ArrayType, StructType, MapType, InteropType:
		return true
	}
	return false
}

// StackItem is a value manipulated by the VM. Coercions follow fixed rules:
// Null converts to false and the empty byte string; Boolean, Integer and
// ByteString convert among each other; compound types and interop handles
// have no numeric or byte conversion and fail with ErrInvalidCast.
type StackItem interface {
	Type() ItemType
	// Bool coerces the item to a boolean.
	Bool() (bool, error)
	// Int coerces the item to an integer. The result aliases no caller
	// state and may be mutated freely.
	Int() (*big.Int, error)
	// Bytes coerces the item to its byte representation.
	Bytes() ([]byte, error)
}

// tracked is implemented by items registered with a ReferenceCounter.
type tracked interface {
	StackItem
	refID() int
}

// ---------------------------------------------------------------------------
// Null
// ---------------------------------------------------------------------------

// Null is the null reference item.
type Null struct{}

// Type implements StackItem.
func (Null) Type() ItemType { return AnyType }

// Bool implements StackItem. Null is false.
func (Null) Bool() (bool, error) { return false, nil }

// Int implements StackItem. Null has no numeric value.
func (Null) Int() (*big.Int, error) {
	return nil, fmt.Errorf("%w: Null to Integer", ErrInvalidCast)
}

// Bytes implements StackItem. Null is the empty byte string.
func (Null) Bytes() ([]byte, error) { return []byte{}, nil }

func (Null) String() string { return "Null" }

// ---------------------------------------------------------------------------
// Boolean
// ---------------------------------------------------------------------------

// Boolean is a boolean item.
type Boolean bool

// Type implements StackItem.
func (Boolean) Type() ItemType { return BooleanType }

// Bool implements StackItem.
func (b Boolean) Bool() (bool, error) { return bool(b), nil }

// Int implements StackItem. True is 1, false is 0.
func (b Boolean) Int() (*big.Int, error) {
	if b {
		return big.NewInt(1), nil
	}
	return big.NewInt(0), nil
}

// Bytes implements StackItem. True is {1}, false is {0}.
func (b Boolean) Bytes() ([]byte, error) {
	if b {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}

func (b Boolean) String() string {
	if b {
		return "Boolean(true)"
	}
	return "Boolean(false)"
}

// ---------------------------------------------------------------------------
// Integer
// ---------------------------------------------------------------------------

// maxIntegerBytes is the hard cap on integer width; Limits.MaxIntegerSize
// may only tighten it.
const maxIntegerBytes = 32

// Integer is an arbitrary-precision integer item, size-capped at creation.
type Integer struct {
	value *big.Int
}

// NewInteger creates an Integer item. The value must fit the hard cap;
// arithmetic handlers enforce the configured limit before calling this.
func NewInteger(value *big.Int) (Integer, error) {
	if intByteLen(value) > maxIntegerBytes {
		return Integer{}, fmt.Errorf("%w: integer exceeds %d bytes", ErrOverflow, maxIntegerBytes)
	}
	return Integer{value: value}, nil
}

// IntFromInt64 creates an Integer item from a native integer.
func IntFromInt64(v int64) Integer {
	return Integer{value: big.NewInt(v)}
}

// Type implements StackItem.
func (Integer) Type() ItemType { return IntegerType }

// Bool implements StackItem. Nonzero is true.
func (i Integer) Bool() (bool, error) { return i.value.Sign() != 0, nil }

// Int implements StackItem.
func (i Integer) Int() (*big.Int, error) { return new(big.Int).Set(i.value), nil }

// Bytes implements StackItem: minimal little-endian two's complement.
func (i Integer) Bytes() ([]byte, error) { return intToBytes(i.value), nil }

// Value returns the integer value without copying. Callers must not mutate it.
func (i Integer) Value() *big.Int { return i.value }

func (i Integer) String() string { return "Integer(" + i.value.String() + ")" }

// ---------------------------------------------------------------------------
// ByteString
// ---------------------------------------------------------------------------

// ByteString is an immutable byte string item.
type ByteString []byte

// Type implements StackItem.
func (ByteString) Type() ItemType { return ByteStringType }

// Bool implements StackItem. Any nonzero byte makes the string true. Strings
// wider than the integer cap have no boolean interpretation.
func (b ByteString) Bool() (bool, error) {
	if len(b) > maxIntegerBytes {
		return false, fmt.Errorf("%w: ByteString of %d bytes to Boolean", ErrInvalidCast, len(b))
	}
	for _, c := range b {
		if c != 0 {
			return true, nil
		}
	}
	return false, nil
}

// Int implements StackItem: little-endian two's complement, size-capped.
func (b ByteString) Int() (*big.Int, error) {
	if len(b) > maxIntegerBytes {
		return nil, fmt.Errorf("%w: ByteString of %d bytes to Integer", ErrInvalidCast, len(b))
	}
	return bytesToInt(b), nil
}

// Bytes implements StackItem.
func (b ByteString) Bytes() ([]byte, error) { return b, nil }

func (b ByteString) String() string { return fmt.Sprintf("ByteString(%x)", []byte(b)) }

// ---------------------------------------------------------------------------
// Buffer
// ---------------------------------------------------------------------------

// Buffer is a mutable byte buffer item. Buffers compare by identity and are
// tracked by the reference counter so their memory is charged against the
// item-count limit.
type Buffer struct {
	data []byte
	id   int
}

// NewBuffer creates a Buffer of the given content, registering it with the
// reference counter when one is supplied.
func NewBuffer(rc *ReferenceCounter, data []byte) *Buffer {
	b := &Buffer{data: data}
	if rc != nil {
		b.id = rc.register()
	}
	return b
}

// Type implements StackItem.
func (*Buffer) Type() ItemType { return BufferType }

// Bool implements StackItem. A buffer is always true, even when empty.
func (*Buffer) Bool() (bool, error) { return true, nil }

// Int implements StackItem: little-endian two's complement, size-capped.
func (b *Buffer) Int() (*big.Int, error) {
	if len(b.data) > maxIntegerBytes {
		return nil, fmt.Errorf("%w: Buffer of %d bytes to Integer", ErrInvalidCast, len(b.data))
	}
	return bytesToInt(b.data), nil
}

// Bytes implements StackItem. The returned slice aliases the buffer.
func (b *Buffer) Bytes() ([]byte, error) { return b.data, nil }

// Len returns the buffer length.
func (b *Buffer) Len() int { return len(b.data) }

// Data returns the mutable backing slice.
func (b *Buffer) Data() []byte { return b.data }

func (b *Buffer) refID() int { return b.id }

func (b *Buffer) String() string { return fmt.Sprintf("Buffer(%x)", b.data) }

// ---------------------------------------------------------------------------
// Pointer
// ---------------------------------------------------------------------------

// Pointer is an instruction address within a specific script, produced by
// PUSHA and consumed by CALLA.
type Pointer struct {
	script   *Script
	position int
}

// NewPointer creates a Pointer into the given script.
func NewPointer(script *Script, position int) Pointer {
	return Pointer{script: script, position: position}
}

// Type implements StackItem.
func (Pointer) Type() ItemType { return PointerType }

// Bool implements StackItem. A pointer is always true.
func (Pointer) Bool() (bool, error) { return true, nil }

// Int implements StackItem. Pointers are opaque.
func (Pointer) Int() (*big.Int, error) {
	return nil, fmt.Errorf("%w: Pointer to Integer", ErrInvalidCast)
}

// Bytes implements StackItem. Pointers are opaque.
func (Pointer) Bytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: Pointer to ByteString", ErrInvalidCast)
}

// Script returns the script the pointer addresses.
func (p Pointer) Script() *Script { return p.script }

// Position returns the instruction position.
func (p Pointer) Position() int { return p.position }

func (p Pointer) String() string { return fmt.Sprintf("Pointer(%d)", p.position) }

// ---------------------------------------------------------------------------
// InteropInterface
// ---------------------------------------------------------------------------

// Interop wraps an opaque host handle. The VM never inspects the value; it
// only moves it between stacks, slots and syscall handlers.
type Interop struct {
	value any
}

// NewInterop wraps a host value.
func NewInterop(value any) Interop { return Interop{value: value} }

// Type implements StackItem.
func (Interop) Type() ItemType { return InteropType }

// Bool implements StackItem. A handle is always true.
func (Interop) Bool() (bool, error) { return true, nil }

// Int implements StackItem.
func (Interop) Int() (*big.Int, error) {
	return nil, fmt.Errorf("%w: InteropInterface to Integer", ErrInvalidCast)
}

// Bytes implements StackItem.
func (Interop) Bytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: InteropInterface to ByteString", ErrInvalidCast)
}

// Value returns the wrapped host value.
func (i Interop) Value() any { return i.value }

func (Interop) String() string { return "InteropInterface" }

// ---------------------------------------------------------------------------
// Integer encoding helpers
// ---------------------------------------------------------------------------

// intByteLen returns the minimal two's-complement byte length of v.
func intByteLen(v *big.Int) int {
	if v.Sign() == 0 {
		return 0
	}
	bits := v.BitLen()
	if v.Sign() < 0 {
		// A negative power of two fits exactly: -(2^(n-1)) needs n bits.
		if v.TrailingZeroBits() == uint(bits-1) {
			return (bits + 7) / 8
		}
	}
	return bits/8 + 1
}

// intToBytes encodes v as minimal little-endian two's complement.
func intToBytes(v *big.Int) []byte {
	n := intByteLen(v)
	if n == 0 {
		return []byte{}
	}
	out := make([]byte, n)
	if v.Sign() > 0 {
		fillLittleEndian(out, v)
		return out
	}
	// Two's complement: encode v + 2^(8n).
	c := new(big.Int).Lsh(big.NewInt(1), uint(n*8))
	c.Add(c, v)
	fillLittleEndian(out, c)
	return out
}

// fillLittleEndian writes the absolute value of the non-negative v into out.
func fillLittleEndian(out []byte, v *big.Int) {
	be := v.Bytes()
	for i, b := range be {
		out[len(be)-1-i] = b
	}
}

// bytesToInt decodes minimal little-endian two's complement.
func bytesToInt(data []byte) *big.Int {
	if len(data) == 0 {
		return big.NewInt(0)
	}
	be := make([]byte, len(data))
	for i, b := range data {
		be[len(data)-1-i] = b
	}
	v := new(big.Int).SetBytes(be)
	if be[0]&0x80 != 0 {
		c := new(big.Int).Lsh(big.NewInt(1), uint(len(data)*8))
		v.Sub(v, c)
	}
	return v
}

// bytesEqual reports byte equality of two slices.
func bytesEqual(a, b []byte) bool { return bytes.Equal(a, b) }

package vm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// ---------------------------------------------------------------------------
// Stack item serialization
// ---------------------------------------------------------------------------
//
// The wire form is one type tag byte followed by the payload. Counts and
// byte lengths are unsigned varints. Pointers and interop handles carry
// engine-local state and never serialize. Circular structures are rejected.

// SerializeItem encodes item, honoring the size limit.
func SerializeItem(item StackItem, limits Limits) ([]byte, error) {
	var buf bytes.Buffer
	seen := make(map[StackItem]struct{})
	if err := serializeItem(&buf, item, seen, limits); err != nil {
		return nil, err
	}
	if buf.Len() > limits.MaxItemSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrItemTooLarge, buf.Len(), limits.MaxItemSize)
	}
	return buf.Bytes(), nil
}

func serializeItem(buf *bytes.Buffer, item StackItem, seen map[StackItem]struct{}, limits Limits) error {
	if item == nil {
		return fmt.Errorf("%w: nil item", ErrSerialization)
	}
	buf.WriteByte(byte(item.Type()))
	switch v := item.(type) {
	case Null:
		return nil
	case Boolean:
		if v {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		return nil
	case Integer:
		return writeChunk(buf, intToBytes(v.value), limits)
	case ByteString:
		return writeChunk(buf, v, limits)
	case *Buffer:
		return writeChunk(buf, v.data, limits)
	case *Array:
		return serializeSequence(buf, v, v.Items(), seen, limits)
	case *Struct:
		return serializeSequence(buf, v, v.Items(), seen, limits)
	case *Map:
		if _, circular := seen[v]; circular {
			return fmt.Errorf("%w: circular reference", ErrSerialization)
		}
		seen[v] = struct{}{}
		writeUvarint(buf, uint64(v.Len()))
		for _, entry := range v.Entries() {
			if err := serializeItem(buf, entry.Key, seen, limits); err != nil {
				return err
			}
			if err := serializeItem(buf, entry.Value, seen, limits); err != nil {
				return err
			}
		}
		delete(seen, v)
		return nil
	default:
		return fmt.Errorf("%w: %s is not serializable", ErrSerialization, item.Type())
	}
}

func serializeSequence(buf *bytes.Buffer, marker StackItem, items []StackItem, seen map[StackItem]struct{}, limits Limits) error {
	if _, circular := seen[marker]; circular {
		return fmt.Errorf("%w: circular reference", ErrSerialization)
	}
	seen[marker] = struct{}{}
	writeUvarint(buf, uint64(len(items)))
	for _, item := range items {
		if err := serializeItem(buf, item, seen, limits); err != nil {
			return err
		}
	}
	delete(seen, marker)
	return nil
}

func writeChunk(buf *bytes.Buffer, data []byte, limits Limits) error {
	if len(data) > limits.MaxItemSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrItemTooLarge, len(data), limits.MaxItemSize)
	}
	writeUvarint(buf, uint64(len(data)))
	buf.Write(data)
	return nil
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

// DeserializeItem decodes one item, registering compounds and buffers with
// rc. The whole input must be consumed.
func DeserializeItem(data []byte, rc *ReferenceCounter, limits Limits) (StackItem, error) {
	if len(data) > limits.MaxItemSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrItemTooLarge, len(data), limits.MaxItemSize)
	}
	r := bytes.NewReader(data)
	remaining := limits.MaxStackItemCount
	item, err := deserializeItem(r, rc, limits, &remaining)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSerialization, r.Len())
	}
	return item, nil
}

func deserializeItem(r *bytes.Reader, rc *ReferenceCounter, limits Limits, remaining *int) (StackItem, error) {
	*remaining--
	if *remaining < 0 {
		return nil, fmt.Errorf("%w: more than %d items", ErrTooManyItems, limits.MaxStackItemCount)
	}
	tag, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: missing type tag", ErrSerialization)
	}
	switch ItemType(tag) {
	case AnyType:
		return Null{}, nil
	case BooleanType:
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: truncated boolean", ErrSerialization)
		}
		switch b {
		case 0:
			return Boolean(false), nil
		case 1:
			return Boolean(true), nil
		default:
			return nil, fmt.Errorf("%w: boolean byte 0x%02X", ErrSerialization, b)
		}
	case IntegerType:
		data, err := readChunk(r, limits.MaxIntegerSize)
		if err != nil {
			return nil, err
		}
		return NewInteger(bytesToInt(data))
	case ByteStringType:
		data, err := readChunk(r, limits.MaxItemSize)
		if err != nil {
			return nil, err
		}
		return ByteString(data), nil
	case BufferType:
		data, err := readChunk(r, limits.MaxItemSize)
		if err != nil {
			return nil, err
		}
		return NewBuffer(rc, data), nil
	case ArrayType, StructType:
		n, err := readCount(r, limits)
		if err != nil {
			return nil, err
		}
		items := make([]StackItem, 0, n)
		for i := 0; i < n; i++ {
			item, err := deserializeItem(r, rc, limits, remaining)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if ItemType(tag) == StructType {
			return NewStruct(rc, items), nil
		}
		return NewArray(rc, items), nil
	case MapType:
		n, err := readCount(r, limits)
		if err != nil {
			return nil, err
		}
		m := NewMap(rc)
		for i := 0; i < n; i++ {
			key, err := deserializeItem(r, rc, limits, remaining)
			if err != nil {
				return nil, err
			}
			value, err := deserializeItem(r, rc, limits, remaining)
			if err != nil {
				return nil, err
			}
			if err := m.Set(key, value); err != nil {
				return nil, err
			}
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: type tag 0x%02X", ErrSerialization, tag)
	}
}

func readChunk(r *bytes.Reader, limit int) ([]byte, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("%w: bad length prefix", ErrSerialization)
	}
	if n > uint64(limit) {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrItemTooLarge, n, limit)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%w: truncated payload", ErrSerialization)
	}
	return data, nil
}

func readCount(r *bytes.Reader, limits Limits) (int, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, fmt.Errorf("%w: bad element count", ErrSerialization)
	}
	if n > uint64(limits.MaxStackItemCount) {
		return 0, fmt.Errorf("%w: %d elements", ErrTooManyItems, n)
	}
	return int(n), nil
}

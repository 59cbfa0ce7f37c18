// Package binary provides type-safe binary reading primitives with bounds checking.
package binary

import (
	"encoding/binary"
	"fmt"
)

// SafeReader wraps a byte buffer with bounds checking and helpful error
// messages. Container walkers use it so a truncated or adversarial file
// produces a descriptive error instead of a panic.
type SafeReader struct {
	data []byte
	path string
}

// NewSafeReader creates a new SafeReader over data.
func NewSafeReader(data []byte, path string) *SafeReader {
	return &SafeReader{data: data, path: path}
}

// Path returns the file path associated with this reader.
func (sr *SafeReader) Path() string {
	return sr.path
}

// Size returns the total buffer size.
func (sr *SafeReader) Size() int64 {
	return int64(len(sr.data))
}

// Bytes returns a sub-slice [off, off+n) with context for error messages.
// The returned slice aliases the underlying buffer and must not be modified.
func (sr *SafeReader) Bytes(off int64, n int, what string) ([]byte, error) {
	if off < 0 || off >= int64(len(sr.data)) {
		return nil, fmt.Errorf("%s: offset %d out of bounds (size: %d) while reading %s",
			sr.path, off, len(sr.data), what)
	}
	if n < 0 || off+int64(n) > int64(len(sr.data)) {
		return nil, fmt.Errorf("%s: read of %d bytes at offset %d would exceed size %d while reading %s",
			sr.path, n, off, len(sr.data), what)
	}
	return sr.data[off : off+int64(n)], nil
}

// Read reads a big-endian value of type T from the given offset.
func Read[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string) (T, error) {
	return readOrder[T](sr, off, what, binary.BigEndian)
}

// ReadLE reads a little-endian value of type T from the given offset.
// RIFF chunk sizes and Intel-order TIFF data are little-endian.
func ReadLE[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string) (T, error) {
	return readOrder[T](sr, off, what, binary.LittleEndian)
}

func readOrder[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string, order binary.ByteOrder) (T, error) {
	var zero T
	var size int
	switch any(zero).(type) {
	case uint8:
		size = 1
	case uint16:
		size = 2
	case uint32:
		size = 4
	case uint64:
		size = 8
	}

	buf, err := sr.Bytes(off, size, what)
	if err != nil {
		return zero, err
	}

	var val T
	switch any(zero).(type) {
	case uint8:
		val = T(buf[0])
	case uint16:
		val = T(order.Uint16(buf))
	case uint32:
		val = T(order.Uint32(buf))
	case uint64:
		val = T(order.Uint64(buf))
	}
	return val, nil
}

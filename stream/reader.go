// Package stream implements the byte cursor underneath every factosave codec.
//
// A Reader walks an in-memory buffer and a Writer appends to a pooled one.
// Both track the logical byte offset from the start of their sub-stream and
// stamp every error with the offset of the start of the offending field, so
// a failure deep inside a nested struct still points at the exact byte that
// could not be decoded.
//
// All multi-byte values are little-endian. Besides the fixed-width scalars,
// the package implements the variable-width encodings of the save format:
//
//   - opt varints (ReadOptU16/U32/U64): one byte below 0xFF, otherwise the
//     escape byte 0xFF followed by the full-width value;
//   - the size-optimized u32 (ReadSizeOptimizedU32): a 1-5 byte varint with a
//     unary length prefix in the top bits of the first byte;
//   - compacted sorted indices (ReadCompactedIndices): run-length encoded
//     strictly ascending u32 sequences;
//   - length-prefixed UTF-8 strings.
//
// Decoders reject non-canonical forms (for example an escaped opt varint
// holding a value below 0xFF). Such input could not be re-encoded to the
// same bytes, and byte-for-byte re-encoding is the only correctness check
// the format offers.
package stream

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/arloliu/factosave/errs"
)

// engine is the byte order of the save format. The format is always
// little-endian, independent of the host.
var engine interface {
	binary.ByteOrder
	binary.AppendByteOrder
} = binary.LittleEndian

// Reader is a seekable little-endian cursor over an in-memory buffer.
//
// Reader is not safe for concurrent use; create one per decode call.
type Reader struct {
	data []byte
	pos  int
}

var _ io.Seeker = (*Reader)(nil)

// NewReader creates a Reader positioned at the start of data.
// The Reader does not copy data; the caller must not modify it while decoding.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the current byte offset from the start of the buffer.
func (r *Reader) Offset() int64 {
	return int64(r.pos)
}

// Len returns the total length of the underlying buffer.
func (r *Reader) Len() int {
	return len(r.data)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// EOF reports whether every byte has been consumed.
func (r *Reader) EOF() bool {
	return r.pos >= len(r.data)
}

// Seek implements io.Seeker. Offsets are relative to the start of this
// sub-stream; seeking outside [0, Len()] is an error.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(r.pos) + offset
	case io.SeekEnd:
		abs = int64(len(r.data)) + offset
	default:
		return int64(r.pos), fmt.Errorf("stream: invalid whence %d", whence)
	}

	if abs < 0 || abs > int64(len(r.data)) {
		return int64(r.pos), errs.New(int64(r.pos), errs.ErrValueOutOfRange, "seek to %d outside buffer of %d bytes", abs, len(r.data))
	}
	r.pos = int(abs)

	return abs, nil
}

// take consumes n bytes and returns them without copying.
func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, errs.New(int64(r.pos), errs.ErrShortBuffer, "need %d bytes, have %d", n, r.Remaining())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n

	return b, nil
}

// ReadU8 reads an unsigned byte.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// ReadI8 reads a signed byte.
func (r *Reader) ReadI8() (int8, error) {
	v, err := r.ReadU8()
	return int8(v), err //nolint:gosec
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}

	return engine.Uint16(b), nil
}

// ReadI16 reads a little-endian int16.
func (r *Reader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err //nolint:gosec
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}

	return engine.Uint32(b), nil
}

// ReadI32 reads a little-endian int32.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err //nolint:gosec
}

// ReadU64 reads a little-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}

	return engine.Uint64(b), nil
}

// ReadI64 reads a little-endian int64.
func (r *Reader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err //nolint:gosec
}

// ReadF32 reads a little-endian IEEE 754 float32.
func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	return math.Float32frombits(v), err
}

// ReadF64 reads a little-endian IEEE 754 float64.
func (r *Reader) ReadF64() (float64, error) {
	v, err := r.ReadU64()
	return math.Float64frombits(v), err
}

// ReadBool reads a strict boolean. Only the bytes 0 and 1 are accepted; any
// other value is errs.ErrInvalidBool stamped with the offset of that byte.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadU8()
	if err != nil {
		return false, err
	}

	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errs.New(r.Offset()-1, errs.ErrInvalidBool, "byte 0x%02x", v)
	}
}

// ReadBytes reads n bytes and returns a copy of them.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}

	out := make([]byte, n)
	copy(out, b)

	return out, nil
}

// Rest consumes and returns a copy of every remaining byte.
func (r *Reader) Rest() []byte {
	out := make([]byte, r.Remaining())
	copy(out, r.data[r.pos:])
	r.pos = len(r.data)

	return out
}

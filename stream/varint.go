package stream

import (
	"github.com/arloliu/factosave/errs"
)

// optEscape marks an opt varint whose full-width value follows.
const optEscape = 0xFF

// Size-optimized u32 width boundaries.
const (
	sizeOpt1Max = 0x7F
	sizeOpt2Max = 0x3FFF
	sizeOpt3Max = 0x1FFFFF
	sizeOpt4Max = 0xFFFFFFF

	sizeOptEscape = 0xF0
)

// readOptEscape reads the leading byte of an opt varint and reports whether
// the full-width value follows.
func (r *Reader) readOptEscape() (uint8, bool, error) {
	b, err := r.ReadU8()
	if err != nil {
		return 0, false, err
	}

	return b, b == optEscape, nil
}

// ReadOptU16 reads an opt_u16: one byte if the value is below 0xFF, else
// 0xFF followed by a u16.
func (r *Reader) ReadOptU16() (uint16, error) {
	start := r.Offset()
	b, escaped, err := r.readOptEscape()
	if err != nil || !escaped {
		return uint16(b), err
	}

	v, err := r.ReadU16()
	if err != nil {
		return 0, err
	}
	if v < optEscape {
		return 0, errs.New(start, errs.ErrNonCanonical, "opt_u16 escape holding %d", v)
	}

	return v, nil
}

// ReadOptU32 reads an opt_u32: one byte if the value is below 0xFF, else
// 0xFF followed by a u32.
func (r *Reader) ReadOptU32() (uint32, error) {
	start := r.Offset()
	b, escaped, err := r.readOptEscape()
	if err != nil || !escaped {
		return uint32(b), err
	}

	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	if v < optEscape {
		return 0, errs.New(start, errs.ErrNonCanonical, "opt_u32 escape holding %d", v)
	}

	return v, nil
}

// ReadOptU64 reads an opt_u64: one byte if the value is below 0xFF, else
// 0xFF followed by a u64.
func (r *Reader) ReadOptU64() (uint64, error) {
	start := r.Offset()
	b, escaped, err := r.readOptEscape()
	if err != nil || !escaped {
		return uint64(b), err
	}

	v, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	if v < optEscape {
		return 0, errs.New(start, errs.ErrNonCanonical, "opt_u64 escape holding %d", v)
	}

	return v, nil
}

// WriteOptU16 writes v as an opt_u16.
func (w *Writer) WriteOptU16(v uint16) {
	if v < optEscape {
		w.WriteU8(uint8(v))
		return
	}
	w.WriteU8(optEscape)
	w.WriteU16(v)
}

// WriteOptU32 writes v as an opt_u32.
func (w *Writer) WriteOptU32(v uint32) {
	if v < optEscape {
		w.WriteU8(uint8(v))
		return
	}
	w.WriteU8(optEscape)
	w.WriteU32(v)
}

// WriteOptU64 writes v as an opt_u64.
func (w *Writer) WriteOptU64(v uint64) {
	if v < optEscape {
		w.WriteU8(uint8(v))
		return
	}
	w.WriteU8(optEscape)
	w.WriteU64(v)
}

// SizeOptimizedLen returns the encoded width of v as a size-optimized u32.
func SizeOptimizedLen(v uint32) int {
	switch {
	case v <= sizeOpt1Max:
		return 1
	case v <= sizeOpt2Max:
		return 2
	case v <= sizeOpt3Max:
		return 3
	case v <= sizeOpt4Max:
		return 4
	default:
		return 5
	}
}

// ReadSizeOptimizedU32 reads a size-optimized u32.
//
// The number of leading one bits of the first byte selects the width:
//
//	0xxxxxxx                   7-bit value
//	10xxxxxx b1                14-bit value, big-endian
//	110xxxxx b1 b2             21-bit value, big-endian
//	1110xxxx b1 b2 b3          28-bit value, big-endian
//	11110000 u32le             full 32-bit value
//
// First bytes 0xF1-0xFF and values stored in a wider form than necessary
// are rejected.
func (r *Reader) ReadSizeOptimizedU32() (uint32, error) {
	start := r.Offset()
	first, err := r.ReadU8()
	if err != nil {
		return 0, err
	}

	var (
		v     uint32
		width int
	)
	switch {
	case first&0x80 == 0:
		return uint32(first), nil
	case first&0xC0 == 0x80:
		v, width = uint32(first&0x3F), 2
	case first&0xE0 == 0xC0:
		v, width = uint32(first&0x1F), 3
	case first&0xF0 == 0xE0:
		v, width = uint32(first&0x0F), 4
	case first == sizeOptEscape:
		v, err = r.ReadU32()
		if err != nil {
			return 0, err
		}
		width = 5
	default:
		return 0, errs.New(start, errs.ErrNonCanonical, "invalid size-optimized prefix 0x%02x", first)
	}

	if width < 5 {
		tail, err := r.take(width - 1)
		if err != nil {
			return 0, err
		}
		for _, b := range tail {
			v = v<<8 | uint32(b)
		}
	}

	if SizeOptimizedLen(v) != width {
		return 0, errs.New(start, errs.ErrNonCanonical, "value %d stored in %d bytes", v, width)
	}

	return v, nil
}

// WriteSizeOptimizedU32 writes v in the narrowest size-optimized form.
func (w *Writer) WriteSizeOptimizedU32(v uint32) {
	switch SizeOptimizedLen(v) {
	case 1:
		w.WriteU8(uint8(v))
	case 2:
		w.WriteU8(0x80 | uint8(v>>8))
		w.WriteU8(uint8(v))
	case 3:
		w.WriteU8(0xC0 | uint8(v>>16))
		w.WriteU8(uint8(v >> 8))
		w.WriteU8(uint8(v))
	case 4:
		w.WriteU8(0xE0 | uint8(v>>24))
		w.WriteU8(uint8(v >> 16))
		w.WriteU8(uint8(v >> 8))
		w.WriteU8(uint8(v))
	default:
		w.WriteU8(sizeOptEscape)
		w.WriteU32(v)
	}
}

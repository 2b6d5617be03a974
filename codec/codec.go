// Package codec is the declarative rule engine behind every save buffer.
//
// A Codec[T] decodes and encodes one value of T against a Decoder or Encoder
// context. Primitive codecs cover the wire scalars; Struct composes field
// descriptors into record codecs and Union dispatches tagged variants. The
// same schema value drives both directions, so a decode followed by an encode
// reproduces the input bytes.
//
// Codecs are stateless and safe to share between goroutines. All mutable
// state (the cursor, the position register, the resolver) lives in the
// Decoder or Encoder, which belongs to a single traversal.
package codec

import (
	"sync"

	"github.com/arloliu/factosave/errs"
	"github.com/arloliu/factosave/fixed"
	"github.com/arloliu/factosave/format"
)

// Codec decodes and encodes values of T.
type Codec[T any] interface {
	Decode(d *Decoder) (T, error)
	Encode(e *Encoder, v T) error
}

type funcCodec[T any] struct {
	dec func(*Decoder) (T, error)
	enc func(*Encoder, T) error
}

func (c funcCodec[T]) Decode(d *Decoder) (T, error) { return c.dec(d) }

func (c funcCodec[T]) Encode(e *Encoder, v T) error { return c.enc(e, v) }

// New builds a codec from a decode and an encode function.
func New[T any](dec func(*Decoder) (T, error), enc func(*Encoder, T) error) Codec[T] {
	return funcCodec[T]{dec: dec, enc: enc}
}

// Wire scalars. Integers and floats are little-endian.
var (
	U8 = New(
		func(d *Decoder) (uint8, error) { return d.r.ReadU8() },
		func(e *Encoder, v uint8) error { e.w.WriteU8(v); return nil },
	)
	I8 = New(
		func(d *Decoder) (int8, error) { return d.r.ReadI8() },
		func(e *Encoder, v int8) error { e.w.WriteI8(v); return nil },
	)
	U16 = New(
		func(d *Decoder) (uint16, error) { return d.r.ReadU16() },
		func(e *Encoder, v uint16) error { e.w.WriteU16(v); return nil },
	)
	I16 = New(
		func(d *Decoder) (int16, error) { return d.r.ReadI16() },
		func(e *Encoder, v int16) error { e.w.WriteI16(v); return nil },
	)
	U32 = New(
		func(d *Decoder) (uint32, error) { return d.r.ReadU32() },
		func(e *Encoder, v uint32) error { e.w.WriteU32(v); return nil },
	)
	I32 = New(
		func(d *Decoder) (int32, error) { return d.r.ReadI32() },
		func(e *Encoder, v int32) error { e.w.WriteI32(v); return nil },
	)
	U64 = New(
		func(d *Decoder) (uint64, error) { return d.r.ReadU64() },
		func(e *Encoder, v uint64) error { e.w.WriteU64(v); return nil },
	)
	I64 = New(
		func(d *Decoder) (int64, error) { return d.r.ReadI64() },
		func(e *Encoder, v int64) error { e.w.WriteI64(v); return nil },
	)
	F32 = New(
		func(d *Decoder) (float32, error) { return d.r.ReadF32() },
		func(e *Encoder, v float32) error { e.w.WriteF32(v); return nil },
	)
	F64 = New(
		func(d *Decoder) (float64, error) { return d.r.ReadF64() },
		func(e *Encoder, v float64) error { e.w.WriteF64(v); return nil },
	)
	// Bool accepts only 0x00 and 0x01.
	Bool = New(
		func(d *Decoder) (bool, error) { return d.r.ReadBool() },
		func(e *Encoder, v bool) error { e.w.WriteBool(v); return nil },
	)
	// NegatedBool stores the logical negation of the value.
	NegatedBool = New(
		func(d *Decoder) (bool, error) {
			v, err := d.r.ReadBool()
			return !v, err
		},
		func(e *Encoder, v bool) error { e.w.WriteBool(!v); return nil },
	)
)

// Space-optimized integers.
var (
	OptU16 = New(
		func(d *Decoder) (uint16, error) { return d.r.ReadOptU16() },
		func(e *Encoder, v uint16) error { e.w.WriteOptU16(v); return nil },
	)
	OptU32 = New(
		func(d *Decoder) (uint32, error) { return d.r.ReadOptU32() },
		func(e *Encoder, v uint32) error { e.w.WriteOptU32(v); return nil },
	)
	OptU64 = New(
		func(d *Decoder) (uint64, error) { return d.r.ReadOptU64() },
		func(e *Encoder, v uint64) error { e.w.WriteOptU64(v); return nil },
	)
	SizeOptimizedU32 = New(
		func(d *Decoder) (uint32, error) { return d.r.ReadSizeOptimizedU32() },
		func(e *Encoder, v uint32) error { e.w.WriteSizeOptimizedU32(v); return nil },
	)
)

// String is a UTF-8 string framed by the profile's string length codec.
var String = New(readString, writeString)

// NullableString is a bool null flag followed, when clear, by a profile
// string. A nil pointer is null.
var NullableString = New(
	func(d *Decoder) (*string, error) {
		null, err := d.r.ReadBool()
		if err != nil || null {
			return nil, err
		}
		s, err := readString(d)
		if err != nil {
			return nil, err
		}

		return &s, nil
	},
	func(e *Encoder, v *string) error {
		e.w.WriteBool(v == nil)
		if v == nil {
			return nil
		}

		return writeString(e, *v)
	},
)

// CompactedIndices is a run-length encoded ascending index list.
var CompactedIndices = New(
	func(d *Decoder) ([]uint32, error) { return d.r.ReadCompactedIndices() },
	func(e *Encoder, v []uint32) error { return e.w.WriteCompactedIndices(v) },
)

// Position is a map coordinate in the profile's position form.
var Position = New(readPosition, writePosition)

// Point is a coordinate pair that is always stored as two absolute i32s.
var Point = New(
	func(d *Decoder) (fixed.Vector, error) {
		x, err := d.r.ReadI32()
		if err != nil {
			return fixed.Vector{}, err
		}
		y, err := d.r.ReadI32()

		return fixed.Vector{X: fixed.Fixed32(x), Y: fixed.Fixed32(y)}, err
	},
	func(e *Encoder, v fixed.Vector) error {
		e.w.WriteI32(int32(v.X))
		e.w.WriteI32(int32(v.Y))

		return nil
	},
)

// ChunkPosition is a chunk coordinate stored as two i32s.
var ChunkPosition = New(
	func(d *Decoder) (fixed.ChunkPosition, error) {
		x, err := d.r.ReadI32()
		if err != nil {
			return fixed.ChunkPosition{}, err
		}
		y, err := d.r.ReadI32()

		return fixed.ChunkPosition{X: x, Y: y}, err
	},
	func(e *Encoder, v fixed.ChunkPosition) error {
		e.w.WriteI32(v.X)
		e.w.WriteI32(v.Y)

		return nil
	},
)

// Blob returns a codec for raw bytes framed by length.
func Blob(length LengthCodec) Codec[[]byte] {
	return New(
		func(d *Decoder) ([]byte, error) {
			n, err := length.Read(d)
			if err != nil {
				return nil, err
			}

			return d.r.ReadBytes(n)
		},
		func(e *Encoder, v []byte) error {
			if err := length.Write(e, len(v)); err != nil {
				return err
			}
			e.w.WriteBytes(v)

			return nil
		},
	)
}

// ContentID returns the codec for a session-local ID of kind. The wire width
// follows the kind. When the context carries a Resolver, IDs the session
// never introduced are rejected in both directions.
func ContentID(kind format.ContentKind) Codec[format.ContentID] {
	wide := kind.IDWidth() == 2

	return New(
		func(d *Decoder) (format.ContentID, error) {
			start := d.Offset()

			var id format.ContentID
			if wide {
				v, err := d.r.ReadU16()
				if err != nil {
					return 0, err
				}
				id = format.ContentID(v)
			} else {
				v, err := d.r.ReadU8()
				if err != nil {
					return 0, err
				}
				id = format.ContentID(v)
			}

			if d.resolver != nil && !d.resolver.Known(kind, id) {
				return 0, errs.New(start, errs.ErrUnknownContentID, "%s id %d", kind, id)
			}

			return id, nil
		},
		func(e *Encoder, id format.ContentID) error {
			if e.resolver != nil && !e.resolver.Known(kind, id) {
				return errs.New(e.Offset(), errs.ErrUnknownContentID, "%s id %d", kind, id)
			}
			if wide {
				e.w.WriteU16(uint16(id))
				return nil
			}
			if id > 0xFF {
				return errs.New(e.Offset(), errs.ErrValueOutOfRange, "%s id %d exceeds one byte", kind, id)
			}
			e.w.WriteU8(uint8(id))

			return nil
		},
	)
}

// Slice returns a codec for a length-prefixed sequence of elem. Element
// failures are annotated with the element index.
func Slice[T any](elem Codec[T], length LengthCodec) Codec[[]T] {
	return New(
		func(d *Decoder) ([]T, error) {
			n, err := length.Read(d)
			if err != nil {
				return nil, err
			}

			if n == 0 {
				return nil, nil
			}

			// Every element occupies at least one byte in practice, but a
			// corrupt length must not drive a huge allocation.
			out := make([]T, 0, min(n, d.r.Remaining()))
			for i := 0; i < n; i++ {
				v, err := elem.Decode(d)
				if err != nil {
					return nil, errs.InField(err, errs.Index(i))
				}
				out = append(out, v)
			}

			return out, nil
		},
		func(e *Encoder, v []T) error {
			if err := length.Write(e, len(v)); err != nil {
				return err
			}
			for i := range v {
				if err := elem.Encode(e, v[i]); err != nil {
					return errs.InField(err, errs.Index(i))
				}
			}

			return nil
		},
	)
}

// Lazy defers building a codec until first use, for recursive schemas.
// Every pass through a Lazy codec counts as one nesting level; a value
// nested deeper than MaxDepth is errs.ErrValueOutOfRange.
func Lazy[T any](build func() Codec[T]) Codec[T] {
	get := sync.OnceValue(build)

	return New(
		func(d *Decoder) (T, error) {
			if err := d.enter(); err != nil {
				var zero T
				return zero, err
			}
			defer d.leave()

			return get().Decode(d)
		},
		func(e *Encoder, v T) error {
			if err := e.enter(); err != nil {
				return err
			}
			defer e.leave()

			return get().Encode(e, v)
		},
	)
}

type integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Cast adapts an integer codec to a named type with the same width, such as
// an enum declared over uint8.
func Cast[U, T integer](c Codec[T]) Codec[U] {
	return New(
		func(d *Decoder) (U, error) {
			v, err := c.Decode(d)
			return U(v), err
		},
		func(e *Encoder, v U) error { return c.Encode(e, T(v)) },
	)
}

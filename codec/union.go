package codec

import (
	"fmt"

	"github.com/arloliu/factosave/errs"
)

// Variant decodes and encodes the payload of one union case. Decode
// receives the offset of the discriminant so payloads can report errors
// against the start of the whole value.
type Variant[V any] struct {
	Decode func(d *Decoder, start int64) (V, error)
	Encode func(e *Encoder, v V) error
}

// Union is a tagged-variant codec: an integer discriminant of type T selects the
// payload codec. kindOf maps a value back to its discriminant, which keeps
// a value and its tag consistent in both directions.
type Union[T integer, V any] struct {
	name     string
	tag      Codec[T]
	kindOf   func(V) T
	variants map[T]Variant[V]
	order    []T
}

// NewUnion creates an empty union; add cases with Register.
func NewUnion[T integer, V any](name string, tag Codec[T], kindOf func(V) T) *Union[T, V] {
	return &Union[T, V]{
		name:     name,
		tag:      tag,
		kindOf:   kindOf,
		variants: make(map[T]Variant[V]),
	}
}

// Register adds the case for tag. Registering a tag twice panics.
func (u *Union[T, V]) Register(tag T, v Variant[V]) *Union[T, V] {
	if _, dup := u.variants[tag]; dup {
		panic(fmt.Sprintf("codec: union %s registers tag %v twice", u.name, tag))
	}
	u.variants[tag] = v
	u.order = append(u.order, tag)

	return u
}

// Tags returns the registered discriminants in registration order.
func (u *Union[T, V]) Tags() []T {
	return append([]T(nil), u.order...)
}

// Validate checks that the registered cases are exactly tags.
func (u *Union[T, V]) Validate(tags ...T) error {
	want := make(map[T]struct{}, len(tags))
	for _, t := range tags {
		want[t] = struct{}{}
		if _, ok := u.variants[t]; !ok {
			return fmt.Errorf("union %s: missing case %v", u.name, t)
		}
	}
	for _, t := range u.order {
		if _, ok := want[t]; !ok {
			return fmt.Errorf("union %s: unexpected case %v", u.name, t)
		}
	}

	return nil
}

// MustValidate is Validate for package initialization: a union that does
// not cover exactly tags is a schema bug, so it panics.
func (u *Union[T, V]) MustValidate(tags ...T) {
	if err := u.Validate(tags...); err != nil {
		panic("codec: " + err.Error())
	}
}

// ReadTag reads and checks the discriminant. It returns the offset of the
// discriminant for DecodeVariant. Formats that place header fields between
// the tag and the payload call ReadTag, read the header, then DecodeVariant.
func (u *Union[T, V]) ReadTag(d *Decoder) (T, int64, error) {
	start := d.Offset()
	tag, err := u.tag.Decode(d)
	if err != nil {
		return tag, start, err
	}
	if _, ok := u.variants[tag]; !ok {
		return tag, start, errs.New(start, errs.ErrUnknownTag, "%s tag %d", u.name, tag)
	}

	return tag, start, nil
}

// DecodeVariant decodes the payload selected by tag.
func (u *Union[T, V]) DecodeVariant(d *Decoder, tag T, start int64) (V, error) {
	var zero V
	variant, ok := u.variants[tag]
	if !ok {
		return zero, errs.New(start, errs.ErrUnknownTag, "%s tag %d", u.name, tag)
	}

	v, err := variant.Decode(d, start)
	if err != nil {
		return zero, errs.InField(err, fmt.Sprint(tag))
	}
	if got := u.kindOf(v); got != tag {
		return zero, errs.Mismatch(start, errs.ErrTagMismatch, tag, got)
	}

	return v, nil
}

// WriteTag writes the discriminant of v and returns it.
func (u *Union[T, V]) WriteTag(e *Encoder, v V) (T, error) {
	if any(v) == nil {
		var zero T
		return zero, errs.New(e.Offset(), errs.ErrUnknownTag, "%s without value", u.name)
	}
	tag := u.kindOf(v)
	if _, ok := u.variants[tag]; !ok {
		return tag, errs.New(e.Offset(), errs.ErrUnknownTag, "%s tag %d", u.name, tag)
	}

	return tag, u.tag.Encode(e, tag)
}

// EncodeVariant writes the payload of v under tag.
func (u *Union[T, V]) EncodeVariant(e *Encoder, tag T, v V) error {
	variant, ok := u.variants[tag]
	if !ok {
		return errs.New(e.Offset(), errs.ErrUnknownTag, "%s tag %d", u.name, tag)
	}
	if err := variant.Encode(e, v); err != nil {
		return errs.InField(err, fmt.Sprint(tag))
	}

	return nil
}

// Decode reads a discriminant followed by its payload.
func (u *Union[T, V]) Decode(d *Decoder) (V, error) {
	tag, start, err := u.ReadTag(d)
	if err != nil {
		var zero V
		return zero, err
	}

	return u.DecodeVariant(d, tag, start)
}

// Encode writes the discriminant of v followed by its payload.
func (u *Union[T, V]) Encode(e *Encoder, v V) error {
	tag, err := u.WriteTag(e, v)
	if err != nil {
		return err
	}

	return u.EncodeVariant(e, tag, v)
}

// Payload adapts a codec of the concrete payload type P to a case of a
// union over V, typically an interface that P implements.
// It panics if P does not implement V.
func Payload[V, P any](c Codec[P]) Variant[V] {
	var probe P
	if _, ok := any(probe).(V); !ok {
		panic(fmt.Sprintf("codec: %T does not implement %T", probe, (*V)(nil)))
	}

	return Variant[V]{
		Decode: func(d *Decoder, _ int64) (V, error) {
			p, err := c.Decode(d)
			if err != nil {
				var zero V
				return zero, err
			}

			return any(p).(V), nil //nolint:forcetypeassert
		},
		Encode: func(e *Encoder, v V) error {
			p, ok := any(v).(P)
			if !ok {
				return errs.New(e.Offset(), errs.ErrTagMismatch, "payload %T, want %T", v, *new(P))
			}

			return c.Encode(e, p)
		},
	}
}

// Bare is a case without payload bytes; build returns the value.
func Bare[V any](build func() V) Variant[V] {
	return Variant[V]{
		Decode: func(*Decoder, int64) (V, error) { return build(), nil },
		Encode: func(*Encoder, V) error { return nil },
	}
}

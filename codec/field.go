package codec

import (
	"github.com/arloliu/factosave/errs"
)

// Rule names the serialization rule a field descriptor applies.
type Rule uint8

const (
	RulePlain Rule = iota + 1
	RuleNegatedBool
	RuleSpaceOptimized
	RuleConditional
	RuleArray
	RuleVector
	RuleConst
)

func (r Rule) String() string {
	switch r {
	case RulePlain:
		return "plain"
	case RuleNegatedBool:
		return "negated-bool"
	case RuleSpaceOptimized:
		return "space-optimized"
	case RuleConditional:
		return "conditional"
	case RuleArray:
		return "array"
	case RuleVector:
		return "vector"
	case RuleConst:
		return "const"
	default:
		return "unknown"
	}
}

// Field describes how one field of S is serialized. Fields are built with
// the constructors in this file and composed with NewStruct.
type Field[S any] interface {
	Name() string
	Rule() Rule

	decode(d *Decoder, s *S) error
	encode(e *Encoder, s *S) error
}

type plainField[S, F any] struct {
	name string
	rule Rule
	get  func(*S) *F
	c    Codec[F]
}

func (f plainField[S, F]) Name() string { return f.name }
func (f plainField[S, F]) Rule() Rule   { return f.rule }

func (f plainField[S, F]) decode(d *Decoder, s *S) error {
	v, err := f.c.Decode(d)
	if err != nil {
		return err
	}
	*f.get(s) = v

	return nil
}

func (f plainField[S, F]) encode(e *Encoder, s *S) error {
	return f.c.Encode(e, *f.get(s))
}

// Plain serializes the field at get with c.
func Plain[S, F any](name string, get func(*S) *F, c Codec[F]) Field[S] {
	return plainField[S, F]{name: name, rule: RulePlain, get: get, c: c}
}

// Negated stores a bool field as its logical negation.
func Negated[S any](name string, get func(*S) *bool) Field[S] {
	return plainField[S, bool]{name: name, rule: RuleNegatedBool, get: get, c: NegatedBool}
}

// Opt16 stores a uint16 field as a space-optimized integer.
func Opt16[S any](name string, get func(*S) *uint16) Field[S] {
	return plainField[S, uint16]{name: name, rule: RuleSpaceOptimized, get: get, c: OptU16}
}

// Opt32 stores a uint32 field as a space-optimized integer.
func Opt32[S any](name string, get func(*S) *uint32) Field[S] {
	return plainField[S, uint32]{name: name, rule: RuleSpaceOptimized, get: get, c: OptU32}
}

// Opt64 stores a uint64 field as a space-optimized integer.
func Opt64[S any](name string, get func(*S) *uint64) Field[S] {
	return plainField[S, uint64]{name: name, rule: RuleSpaceOptimized, get: get, c: OptU64}
}

// SizeOptimized stores a uint32 field in the prefix-tagged form.
func SizeOptimized[S any](name string, get func(*S) *uint32) Field[S] {
	return plainField[S, uint32]{name: name, rule: RuleSpaceOptimized, get: get, c: SizeOptimizedU32}
}

type whenField[S any] struct {
	present func(*S) bool
	inner   Field[S]
}

func (f whenField[S]) Name() string { return f.inner.Name() }
func (f whenField[S]) Rule() Rule   { return RuleConditional }

func (f whenField[S]) decode(d *Decoder, s *S) error {
	if !f.present(s) {
		return nil
	}

	return f.inner.decode(d, s)
}

func (f whenField[S]) encode(e *Encoder, s *S) error {
	if !f.present(s) {
		return nil
	}

	return f.inner.encode(e, s)
}

// When serializes inner only if present reports true. The predicate sees
// the fields that precede it, already decoded; an absent field keeps its
// zero value.
func When[S any](present func(*S) bool, inner Field[S]) Field[S] {
	return whenField[S]{present: present, inner: inner}
}

type arrayField[S, F any] struct {
	name string
	get  func(*S) []F
	c    Codec[F]
}

func (f arrayField[S, F]) Name() string { return f.name }
func (f arrayField[S, F]) Rule() Rule   { return RuleArray }

func (f arrayField[S, F]) decode(d *Decoder, s *S) error {
	elems := f.get(s)
	for i := range elems {
		v, err := f.c.Decode(d)
		if err != nil {
			return errs.InField(err, errs.Index(i))
		}
		elems[i] = v
	}

	return nil
}

func (f arrayField[S, F]) encode(e *Encoder, s *S) error {
	elems := f.get(s)
	for i := range elems {
		if err := f.c.Encode(e, elems[i]); err != nil {
			return errs.InField(err, errs.Index(i))
		}
	}

	return nil
}

// Array serializes a fixed-size array field with no length prefix. get
// returns a slice aliasing the array inside S, e.g. s.Versions[:].
func Array[S, F any](name string, get func(*S) []F, c Codec[F]) Field[S] {
	return arrayField[S, F]{name: name, get: get, c: c}
}

// Vector serializes a slice field as a length followed by its elements.
func Vector[S, F any](name string, get func(*S) *[]F, c Codec[F], length LengthCodec) Field[S] {
	return plainField[S, []F]{name: name, rule: RuleVector, get: get, c: Slice(c, length)}
}

type constField[S any, V comparable] struct {
	name string
	c    Codec[V]
	want V
}

func (f constField[S, V]) Name() string { return f.name }
func (f constField[S, V]) Rule() Rule   { return RuleConst }

func (f constField[S, V]) decode(d *Decoder, _ *S) error {
	start := d.Offset()
	got, err := f.c.Decode(d)
	if err != nil {
		return err
	}
	if got != f.want {
		return errs.Mismatch(start, errs.ErrConstantMismatch, f.want, got)
	}

	return nil
}

func (f constField[S, V]) encode(e *Encoder, _ *S) error {
	return f.c.Encode(e, f.want)
}

// Const is a placeholder for a part of the format that is not modeled: the
// wire value must equal want, and want is written back on encode.
func Const[S any, V comparable](name string, c Codec[V], want V) Field[S] {
	return constField[S, V]{name: name, c: c, want: want}
}

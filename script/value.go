package script

import (
	"github.com/arloliu/factosave/codec"
)

// ValueKind is the discriminant of a script value.
type ValueKind uint8

const (
	KindNil ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindTable
	KindReference
)

// ValueKinds lists every script value kind.
var ValueKinds = []ValueKind{KindNil, KindBool, KindNumber, KindString, KindTable, KindReference}

func (k ValueKind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindTable:
		return "table"
	case KindReference:
		return "reference"
	default:
		return "unknown"
	}
}

// Value is one node of a script value tree.
type Value interface {
	Kind() ValueKind
}

type (
	Nil    struct{}
	Bool   bool
	Number float64
	String string
	// Table is an ordered list of key/value pairs. Keys are values too, so
	// both array-like and record-like tables share one shape.
	Table []Pair
	// Reference points back at a table already written earlier in the same
	// blob, which is how shared and cyclic tables are stored.
	Reference uint32
)

// Pair is one table entry.
type Pair struct {
	Key   Value
	Value Value
}

func (Nil) Kind() ValueKind       { return KindNil }
func (Bool) Kind() ValueKind      { return KindBool }
func (Number) Kind() ValueKind    { return KindNumber }
func (String) Kind() ValueKind    { return KindString }
func (Table) Kind() ValueKind     { return KindTable }
func (Reference) Kind() ValueKind { return KindReference }

// Get returns the value stored under a string key, scanning in order.
func (t Table) Get(key string) (Value, bool) {
	for _, p := range t {
		if s, ok := p.Key.(String); ok && string(s) == key {
			return p.Value, true
		}
	}

	return nil, false
}

// valueUnion is assigned in init because table pairs refer back to values.
var valueUnion *codec.Union[ValueKind, Value]

// valueCodec is the entry point for every value; each nested table passes
// through it once, which bounds the nesting at codec.MaxDepth.
var valueCodec = codec.Lazy(func() codec.Codec[Value] { return valueUnion })

var pairCodec = codec.NewStruct("Pair",
	codec.Plain("key", func(p *Pair) *Value { return &p.Key }, valueCodec),
	codec.Plain("value", func(p *Pair) *Value { return &p.Value }, valueCodec),
)

var (
	boolCodec = codec.New(
		func(d *codec.Decoder) (Bool, error) {
			v, err := codec.Bool.Decode(d)
			return Bool(v), err
		},
		func(e *codec.Encoder, v Bool) error { return codec.Bool.Encode(e, bool(v)) },
	)
	numberCodec = codec.New(
		func(d *codec.Decoder) (Number, error) {
			v, err := codec.F64.Decode(d)
			return Number(v), err
		},
		func(e *codec.Encoder, v Number) error { return codec.F64.Encode(e, float64(v)) },
	)
	stringCodec = codec.New(
		func(d *codec.Decoder) (String, error) {
			v, err := codec.String.Decode(d)
			return String(v), err
		},
		func(e *codec.Encoder, v String) error { return codec.String.Encode(e, string(v)) },
	)
	tableCodec = codec.New(
		func(d *codec.Decoder) (Table, error) {
			v, err := pairsCodec.Decode(d)
			return Table(v), err
		},
		func(e *codec.Encoder, v Table) error { return pairsCodec.Encode(e, []Pair(v)) },
	)
	referenceCodec = codec.Cast[Reference](codec.OptU32)

	pairsCodec = codec.Slice(pairCodec, codec.LenProfile)
)

func init() {
	valueUnion = codec.NewUnion("Value", codec.Cast[ValueKind](codec.U8), Value.Kind).
		Register(KindNil, codec.Bare(func() Value { return Nil{} })).
		Register(KindBool, codec.Payload[Value](boolCodec)).
		Register(KindNumber, codec.Payload[Value](numberCodec)).
		Register(KindString, codec.Payload[Value](stringCodec)).
		Register(KindTable, codec.Payload[Value](tableCodec)).
		Register(KindReference, codec.Payload[Value](referenceCodec))
	valueUnion.MustValidate(ValueKinds...)
}

package codec

import (
	"fmt"

	"github.com/arloliu/factosave/errs"
)

// FieldInfo describes one field of a Struct for inspection tools.
type FieldInfo struct {
	Name string
	Rule Rule
}

// Struct is a record codec: an ordered list of field descriptors applied
// in declaration order in both directions.
type Struct[S any] struct {
	name   string
	fields []Field[S]
}

// NewStruct builds a record codec for S. It panics on duplicate field
// names, since a schema with two equal names cannot report paths.
func NewStruct[S any](name string, fields ...Field[S]) *Struct[S] {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name()]; dup {
			panic(fmt.Sprintf("codec: struct %s declares field %q twice", name, f.Name()))
		}
		seen[f.Name()] = struct{}{}
	}

	return &Struct[S]{name: name, fields: fields}
}

// Name returns the record name.
func (s *Struct[S]) Name() string { return s.name }

// Fields lists the fields in wire order.
func (s *Struct[S]) Fields() []FieldInfo {
	out := make([]FieldInfo, len(s.fields))
	for i, f := range s.fields {
		out[i] = FieldInfo{Name: f.Name(), Rule: f.Rule()}
	}

	return out
}

// Decode reads every field into a fresh S.
func (s *Struct[S]) Decode(d *Decoder) (S, error) {
	var v S
	for _, f := range s.fields {
		if err := f.decode(d, &v); err != nil {
			var zero S
			return zero, errs.InField(err, f.Name())
		}
	}

	return v, nil
}

// Encode writes every field of v.
func (s *Struct[S]) Encode(e *Encoder, v S) error {
	for _, f := range s.fields {
		if err := f.encode(e, &v); err != nil {
			return errs.InField(err, f.Name())
		}
	}

	return nil
}

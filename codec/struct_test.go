package codec

import (
	"testing"

	"github.com/arloliu/factosave/errs"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string
	Enabled  bool
	Disabled bool
	Count    uint32
	HasExtra bool
	Extra    uint16
	Pair     [2]uint8
	Items    []uint16
}

var sampleCodec = NewStruct("Sample",
	Plain("name", func(s *sample) *string { return &s.Name }, String),
	Plain("enabled", func(s *sample) *bool { return &s.Enabled }, Bool),
	Negated("disabled", func(s *sample) *bool { return &s.Disabled }),
	Opt32("count", func(s *sample) *uint32 { return &s.Count }),
	Plain("has_extra", func(s *sample) *bool { return &s.HasExtra }, Bool),
	When(func(s *sample) bool { return s.HasExtra },
		Plain("extra", func(s *sample) *uint16 { return &s.Extra }, U16)),
	Array("pair", func(s *sample) []uint8 { return s.Pair[:] }, U8),
	Vector("items", func(s *sample) *[]uint16 { return &s.Items }, U16, LenU8),
	Const[sample]("legacy", U32, 0),
)

var sampleWire = []byte{
	0x02, 'a', 'b', // name
	0x01,                         // enabled
	0x01,                         // disabled=false, negated
	0xFF, 0x2C, 0x01, 0x00, 0x00, // count 300
	0x01,       // has_extra
	0x02, 0x01, // extra
	0x07, 0x08, // pair
	0x02, 0x01, 0x00, 0x02, 0x00, // items
	0x00, 0x00, 0x00, 0x00, // legacy
}

func TestStruct_RoundTrip(t *testing.T) {
	v := sample{
		Name:     "ab",
		Enabled:  true,
		Count:    300,
		HasExtra: true,
		Extra:    0x0102,
		Pair:     [2]uint8{7, 8},
		Items:    []uint16{1, 2},
	}

	require.Equal(t, sampleWire, roundTrip(t, MapProfile, sampleCodec, v))
}

func TestStruct_ConditionalAbsent(t *testing.T) {
	v := sample{Name: "", Disabled: true}
	wire := roundTrip(t, MapProfile, sampleCodec, v)
	require.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00,
		0x00,
		0x00, 0x00, 0x00, 0x00,
	}, wire)
}

func TestStruct_ConstMismatch(t *testing.T) {
	wire := append([]byte(nil), sampleWire...)
	wire[20] = 0x07

	err := decodeErr(MapProfile, sampleCodec, wire)
	e := errAt(t, err, errs.ErrConstantMismatch)
	require.Equal(t, int64(20), e.Offset)
	require.Equal(t, "legacy", e.FieldPath())
	require.Contains(t, err.Error(), "expected 0, got 7")
}

func TestStruct_FieldPathOnNestedFailure(t *testing.T) {
	type outer struct{ Inner sample }
	c := NewStruct("Outer", Plain("inner", func(o *outer) *sample { return &o.Inner }, Codec[sample](sampleCodec)))

	wire := append([]byte(nil), sampleWire...)
	wire[3] = 0x02

	err := decodeErr(MapProfile, c, wire)
	e := errAt(t, err, errs.ErrInvalidBool)
	require.Equal(t, "inner.enabled", e.FieldPath())
	require.Equal(t, int64(3), e.Offset)
}

func TestStruct_Truncated(t *testing.T) {
	err := decodeErr(MapProfile, sampleCodec, sampleWire[:12])
	e := errAt(t, err, errs.ErrShortBuffer)
	require.Equal(t, "extra", e.FieldPath())
}

func TestStruct_Fields(t *testing.T) {
	fields := sampleCodec.Fields()
	require.Len(t, fields, 9)
	require.Equal(t, FieldInfo{Name: "disabled", Rule: RuleNegatedBool}, fields[2])
	require.Equal(t, FieldInfo{Name: "extra", Rule: RuleConditional}, fields[5])
	require.Equal(t, RuleConst, fields[8].Rule)
	require.Equal(t, "vector", fields[7].Rule.String())
}

func TestNewStruct_DuplicateFieldPanics(t *testing.T) {
	require.Panics(t, func() {
		NewStruct("Dup",
			Plain("x", func(s *sample) *bool { return &s.Enabled }, Bool),
			Plain("x", func(s *sample) *bool { return &s.HasExtra }, Bool),
		)
	})
}

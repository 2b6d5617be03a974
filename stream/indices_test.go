package stream

import (
	"testing"

	"github.com/arloliu/factosave/errs"
	"github.com/stretchr/testify/require"
)

func roundTripIndices(t *testing.T, indices []uint32) []byte {
	t.Helper()

	w := NewWriter()
	defer w.Release()
	require.NoError(t, w.WriteCompactedIndices(indices))
	wire := append([]byte(nil), w.Bytes()...)

	r := NewReader(wire)
	got, err := r.ReadCompactedIndices()
	require.NoError(t, err)
	require.True(t, r.EOF())
	if len(indices) == 0 {
		require.Empty(t, got)
	} else {
		require.Equal(t, indices, got)
	}

	return wire
}

func TestCompactedIndices_Empty(t *testing.T) {
	wire := roundTripIndices(t, nil)
	require.Equal(t, []byte{0x00}, wire)
}

func TestCompactedIndices_Single(t *testing.T) {
	wire := roundTripIndices(t, []uint32{5})
	require.Equal(t, []byte{0x01, 0x0B}, wire) // count 1, head 5*2+1
}

func TestCompactedIndices_RunSplitAt100(t *testing.T) {
	indices := make([]uint32, 150)
	for i := range indices {
		indices[i] = uint32(10 + i) //nolint:gosec
	}

	wire := roundTripIndices(t, indices)
	// count=150 (2 bytes), run(delta 10, 100), run(delta 1, 50)
	require.Equal(t, []byte{
		0x80, 0x96,
		0x14, 0x63,
		0x02, 0x31,
	}, wire)
}

func TestCompactedIndices_IrregularGaps(t *testing.T) {
	indices := []uint32{0, 1, 2, 7, 9, 10, 300, 100000, 100001, 0x7FFFFFFF}
	roundTripIndices(t, indices)
}

func TestCompactedIndices_FirstIsZero(t *testing.T) {
	wire := roundTripIndices(t, []uint32{0, 3})
	require.Equal(t, []byte{0x02, 0x01, 0x07}, wire)
}

func TestCompactedIndices_Exactly100(t *testing.T) {
	indices := make([]uint32, 201)
	for i := range indices {
		indices[i] = uint32(i) //nolint:gosec
	}
	roundTripIndices(t, indices)
}

func TestWriteCompactedIndices_NotAscending(t *testing.T) {
	w := NewWriter()
	defer w.Release()

	require.ErrorIs(t, w.WriteCompactedIndices([]uint32{1, 3, 3}), errs.ErrNotAscending)
	require.ErrorIs(t, w.WriteCompactedIndices([]uint32{4, 2}), errs.ErrNotAscending)
	require.ErrorIs(t, w.WriteCompactedIndices([]uint32{0, 0xFFFFFFFF}), errs.ErrValueOutOfRange)
	require.Equal(t, int64(0), w.Offset(), "rejected lists write nothing")
}

func TestReadCompactedIndices_Invalid(t *testing.T) {
	tests := []struct {
		name string
		wire []byte
		err  error
	}{
		{"repeated index", []byte{0x02, 0x0B, 0x01}, errs.ErrNotAscending},
		{"split short run", []byte{0x03, 0x0A, 0x01, 0x03}, errs.ErrNonCanonical},
		{"split singleton", []byte{0x02, 0x0B, 0x03}, errs.ErrNonCanonical},
		{"run too long", []byte{0x80, 0xC8, 0x00, 0x80, 0xC7}, errs.ErrNonCanonical},
		{"run of one", []byte{0x01, 0x00, 0x00}, errs.ErrNonCanonical},
		{"run overflows count", []byte{0x02, 0x00, 0x02}, errs.ErrValueOutOfRange},
		{"truncated", []byte{0x02, 0x0B}, errs.ErrShortBuffer},
		{"absurd count", []byte{0xF0, 0xFF, 0xFF, 0xFF, 0x7F}, errs.ErrShortBuffer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(tt.wire).ReadCompactedIndices()
			require.ErrorIs(t, err, tt.err)
		})
	}
}

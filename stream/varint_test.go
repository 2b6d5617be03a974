package stream

import (
	"math"
	"testing"

	"github.com/arloliu/factosave/errs"
	"github.com/stretchr/testify/require"
)

func TestOptU32_Boundaries(t *testing.T) {
	tests := []struct {
		value uint32
		size  int
	}{
		{0, 1},
		{0xFE, 1},
		{0xFF, 5},
		{0x100, 5},
		{math.MaxUint32, 5},
	}

	for _, tt := range tests {
		w := NewWriter()
		w.WriteOptU32(tt.value)
		require.Len(t, w.Bytes(), tt.size, "value 0x%x", tt.value)

		r := NewReader(w.Bytes())
		got, err := r.ReadOptU32()
		require.NoError(t, err)
		require.Equal(t, tt.value, got)
		require.True(t, r.EOF())
		w.Release()
	}
}

func TestOptU16_Boundaries(t *testing.T) {
	for _, v := range []uint16{0, 0xFE, 0xFF, 0x100, math.MaxUint16} {
		w := NewWriter()
		w.WriteOptU16(v)

		got, err := NewReader(w.Bytes()).ReadOptU16()
		require.NoError(t, err)
		require.Equal(t, v, got)
		w.Release()
	}
}

func TestOptU64_Boundaries(t *testing.T) {
	for _, v := range []uint64{0, 0xFE, 0xFF, math.MaxUint32 + 1, math.MaxUint64} {
		w := NewWriter()
		w.WriteOptU64(v)

		got, err := NewReader(w.Bytes()).ReadOptU64()
		require.NoError(t, err)
		require.Equal(t, v, got)
		w.Release()
	}
}

func TestOptU32_Wire(t *testing.T) {
	w := NewWriter()
	defer w.Release()

	w.WriteOptU32(0x12)
	w.WriteOptU32(0x1234)
	require.Equal(t, []byte{0x12, 0xFF, 0x34, 0x12, 0x00, 0x00}, w.Bytes())
}

func TestOptVarint_NonCanonical(t *testing.T) {
	_, err := NewReader([]byte{0xFF, 0x10, 0x00, 0x00, 0x00}).ReadOptU32()
	require.ErrorIs(t, err, errs.ErrNonCanonical)

	_, err = NewReader([]byte{0xFF, 0xFE, 0x00}).ReadOptU16()
	require.ErrorIs(t, err, errs.ErrNonCanonical)

	_, err = NewReader([]byte{0xFF, 0, 0, 0, 0, 0, 0, 0, 0}).ReadOptU64()
	require.ErrorIs(t, err, errs.ErrNonCanonical)
}

func TestOptVarint_Truncated(t *testing.T) {
	_, err := NewReader([]byte{0xFF, 0x00}).ReadOptU32()
	require.ErrorIs(t, err, errs.ErrShortBuffer)

	_, err = NewReader(nil).ReadOptU16()
	require.ErrorIs(t, err, errs.ErrShortBuffer)
}

func TestSizeOptimizedU32_Boundaries(t *testing.T) {
	tests := []struct {
		value uint32
		size  int
	}{
		{0, 1},
		{0x7F, 1},
		{0x80, 2},
		{0x3FFF, 2},
		{0x4000, 3},
		{0x1FFFFF, 3},
		{0x200000, 4},
		{0xFFFFFFF, 4},
		{0x10000000, 5},
		{math.MaxUint32, 5},
	}

	for _, tt := range tests {
		require.Equal(t, tt.size, SizeOptimizedLen(tt.value), "value 0x%x", tt.value)

		w := NewWriter()
		w.WriteSizeOptimizedU32(tt.value)
		require.Len(t, w.Bytes(), tt.size, "value 0x%x", tt.value)

		r := NewReader(w.Bytes())
		got, err := r.ReadSizeOptimizedU32()
		require.NoError(t, err)
		require.Equal(t, tt.value, got)
		require.True(t, r.EOF())
		w.Release()
	}
}

func TestSizeOptimizedU32_Wire(t *testing.T) {
	tests := []struct {
		value uint32
		wire  []byte
	}{
		{0x05, []byte{0x05}},
		{0x80, []byte{0x80, 0x80}},
		{0x3FFF, []byte{0xBF, 0xFF}},
		{0x4000, []byte{0xC0, 0x40, 0x00}},
		{0x200000, []byte{0xE0, 0x20, 0x00, 0x00}},
		{0x10000000, []byte{0xF0, 0x00, 0x00, 0x00, 0x10}},
	}

	for _, tt := range tests {
		w := NewWriter()
		w.WriteSizeOptimizedU32(tt.value)
		require.Equal(t, tt.wire, w.Bytes(), "value 0x%x", tt.value)
		w.Release()
	}
}

func TestSizeOptimizedU32_Invalid(t *testing.T) {
	_, err := NewReader([]byte{0xF1, 0, 0, 0, 0}).ReadSizeOptimizedU32()
	require.ErrorIs(t, err, errs.ErrNonCanonical)

	// 0x05 stored in the two-byte form
	_, err = NewReader([]byte{0x80, 0x05}).ReadSizeOptimizedU32()
	require.ErrorIs(t, err, errs.ErrNonCanonical)

	// 0x7F stored in the escape form
	_, err = NewReader([]byte{0xF0, 0x7F, 0, 0, 0}).ReadSizeOptimizedU32()
	require.ErrorIs(t, err, errs.ErrNonCanonical)

	_, err = NewReader([]byte{0xC0, 0x40}).ReadSizeOptimizedU32()
	require.ErrorIs(t, err, errs.ErrShortBuffer)
}

package stream

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/arloliu/factosave/errs"
	"github.com/stretchr/testify/require"
)

func errOffset(t *testing.T, err error) int64 {
	t.Helper()

	var e *errs.Error
	require.True(t, errors.As(err, &e), "expected *errs.Error, got %T: %v", err, err)

	return e.Offset
}

func TestReaderWriter_Scalars(t *testing.T) {
	w := NewWriter()
	defer w.Release()

	w.WriteU8(0xAB)
	w.WriteI8(-2)
	w.WriteU16(0xBEEF)
	w.WriteI16(-300)
	w.WriteU32(0xDEADBEEF)
	w.WriteI32(math.MinInt32)
	w.WriteU64(math.MaxUint64)
	w.WriteI64(-1)
	w.WriteF32(1.5)
	w.WriteF64(-0.25)
	w.WriteBool(true)
	w.WriteBool(false)
	require.Equal(t, int64(1+1+2+2+4+4+8+8+4+8+1+1), w.Offset())

	r := NewReader(w.Bytes())

	u8, err := r.ReadU8()
	require.NoError(t, err)
	require.Equal(t, uint8(0xAB), u8)

	i8, err := r.ReadI8()
	require.NoError(t, err)
	require.Equal(t, int8(-2), i8)

	u16, err := r.ReadU16()
	require.NoError(t, err)
	require.Equal(t, uint16(0xBEEF), u16)

	i16, err := r.ReadI16()
	require.NoError(t, err)
	require.Equal(t, int16(-300), i16)

	u32, err := r.ReadU32()
	require.NoError(t, err)
	require.Equal(t, uint32(0xDEADBEEF), u32)

	i32, err := r.ReadI32()
	require.NoError(t, err)
	require.Equal(t, int32(math.MinInt32), i32)

	u64, err := r.ReadU64()
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), u64)

	i64, err := r.ReadI64()
	require.NoError(t, err)
	require.Equal(t, int64(-1), i64)

	f32, err := r.ReadF32()
	require.NoError(t, err)
	require.InDelta(t, 1.5, f32, 0)

	f64, err := r.ReadF64()
	require.NoError(t, err)
	require.InDelta(t, -0.25, f64, 0)

	b, err := r.ReadBool()
	require.NoError(t, err)
	require.True(t, b)

	b, err = r.ReadBool()
	require.NoError(t, err)
	require.False(t, b)

	require.True(t, r.EOF())
}

func TestReader_LittleEndian(t *testing.T) {
	r := NewReader([]byte{0x34, 0x12, 0x78, 0x56, 0x34, 0x12})

	u16, err := r.ReadU16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), u16)

	u32, err := r.ReadU32()
	require.NoError(t, err)
	require.Equal(t, uint32(0x12345678), u32)
}

func TestReader_ReadBool_Invalid(t *testing.T) {
	r := NewReader([]byte{0x01, 0x00, 0x02})

	_, err := r.ReadBool()
	require.NoError(t, err)
	_, err = r.ReadBool()
	require.NoError(t, err)

	_, err = r.ReadBool()
	require.ErrorIs(t, err, errs.ErrInvalidBool)
	require.Equal(t, int64(2), errOffset(t, err), "offset points at the bad byte")
	require.Contains(t, err.Error(), "0x02")
}

func TestReader_ShortRead(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03})

	_, err := r.ReadU8()
	require.NoError(t, err)

	_, err = r.ReadU32()
	require.ErrorIs(t, err, errs.ErrShortBuffer)
	require.Equal(t, int64(1), errOffset(t, err))
	require.Equal(t, int64(1), r.Offset(), "failed reads do not advance")
}

func TestReader_Seek(t *testing.T) {
	r := NewReader([]byte{0, 1, 2, 3, 4, 5})

	pos, err := r.Seek(4, io.SeekStart)
	require.NoError(t, err)
	require.Equal(t, int64(4), pos)

	pos, err = r.Seek(-1, io.SeekCurrent)
	require.NoError(t, err)
	require.Equal(t, int64(3), pos)

	v, err := r.ReadU8()
	require.NoError(t, err)
	require.Equal(t, uint8(3), v)

	pos, err = r.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(6), pos)
	require.True(t, r.EOF())

	_, err = r.Seek(7, io.SeekStart)
	require.ErrorIs(t, err, errs.ErrValueOutOfRange)

	_, err = r.Seek(0, 42)
	require.Error(t, err)
}

func TestReader_ReadBytesAndRest(t *testing.T) {
	data := []byte{9, 8, 7, 6, 5}
	r := NewReader(data)

	b, err := r.ReadBytes(2)
	require.NoError(t, err)
	require.Equal(t, []byte{9, 8}, b)

	b[0] = 0
	require.Equal(t, byte(9), data[0], "ReadBytes returns a copy")

	require.Equal(t, 3, r.Remaining())
	rest := r.Rest()
	require.Equal(t, []byte{7, 6, 5}, rest)
	require.Equal(t, 0, r.Remaining())
	require.Empty(t, r.Rest())
}

func TestWriter_Finish(t *testing.T) {
	w := NewMapWriter()
	w.WriteBytes([]byte("level"))

	out := w.Finish()
	require.Equal(t, []byte("level"), out)
}

type failingSink struct{ accept int }

func (f *failingSink) Write(p []byte) (int, error) {
	if len(p) > f.accept {
		return f.accept, errors.New("disk full")
	}

	return len(p), nil
}

func TestWriter_WriteTo(t *testing.T) {
	w := NewWriter()
	defer w.Release()
	w.WriteU32(0x01020304)

	var buf bytes.Buffer
	n, err := w.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)
	require.Equal(t, []byte{4, 3, 2, 1}, buf.Bytes())

	n, err = w.WriteTo(&failingSink{accept: 2})
	require.ErrorIs(t, err, errs.ErrWrite)
	require.Equal(t, int64(2), n)
	require.Equal(t, int64(2), errOffset(t, err))
}

func TestStrings(t *testing.T) {
	w := NewWriter()
	defer w.Release()

	w.WriteString("iron-plate")
	w.WriteStringU32("")
	w.WriteString("日本語")

	r := NewReader(w.Bytes())

	s, err := r.ReadString()
	require.NoError(t, err)
	require.Equal(t, "iron-plate", s)

	s, err = r.ReadStringU32()
	require.NoError(t, err)
	require.Empty(t, s)

	s, err = r.ReadString()
	require.NoError(t, err)
	require.Equal(t, "日本語", s)
	require.True(t, r.EOF())
}

func TestStrings_InvalidUTF8(t *testing.T) {
	r := NewReader([]byte{0xAA, 0x02, 0xC3, 0x28})
	_, err := r.ReadU8()
	require.NoError(t, err)

	_, err = r.ReadString()
	require.ErrorIs(t, err, errs.ErrInvalidUTF8)
	require.Equal(t, int64(1), errOffset(t, err), "reported at the start of the string")
}

func TestStrings_Truncated(t *testing.T) {
	r := NewReader([]byte{0x05, 'a', 'b'})

	_, err := r.ReadString()
	require.ErrorIs(t, err, errs.ErrShortBuffer)
}

package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBuffer_MustWrite(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.MustWrite([]byte{1, 2})
	require.NoError(t, bb.WriteByte(3))

	require.Equal(t, []byte{1, 2, 3}, bb.Bytes())
	require.Equal(t, 3, bb.Len())
}

func TestByteBuffer_Reset(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.MustWrite([]byte("level.dat"))
	originalCap := cap(bb.B)

	bb.Reset()

	require.Equal(t, 0, bb.Len())
	require.Equal(t, originalCap, cap(bb.B))
}

func TestByteBuffer_Grow(t *testing.T) {
	bb := NewByteBuffer(2)
	bb.MustWrite([]byte{0xAA, 0xBB})

	bb.Grow(10)
	require.GreaterOrEqual(t, cap(bb.B)-bb.Len(), 10)
	require.Equal(t, []byte{0xAA, 0xBB}, bb.Bytes(), "grow must keep contents")

	before := cap(bb.B)
	bb.Grow(1)
	require.Equal(t, before, cap(bb.B), "grow with enough room is a no-op")
}

func TestByteBuffer_GrowLarge(t *testing.T) {
	bb := NewByteBuffer(8 * StreamBufferDefaultSize)
	bb.B = bb.B[:cap(bb.B)]

	bb.Grow(1)
	require.Equal(t, 10*StreamBufferDefaultSize, cap(bb.B), "large buffers grow by a quarter")
}

func TestByteBufferPool_PutGet(t *testing.T) {
	p := NewByteBufferPool(32, 64)

	bb := p.Get()
	require.NotNil(t, bb)
	bb.MustWrite([]byte("replay"))
	p.Put(bb)

	again := p.Get()
	require.Equal(t, 0, again.Len(), "pooled buffers come back empty")

	p.Put(nil)
}

func TestByteBufferPool_DropsOversized(t *testing.T) {
	p := NewByteBufferPool(8, 16)

	big := NewByteBuffer(1024)
	p.Put(big)

	got := p.Get()
	require.NotSame(t, big, got)
}

func TestDefaultPools(t *testing.T) {
	s := GetStreamBuffer()
	require.Equal(t, 0, s.Len())
	PutStreamBuffer(s)

	m := GetMapBuffer()
	require.GreaterOrEqual(t, cap(m.B), 0)
	PutMapBuffer(m)
}

package stream

import (
	"io"
	"math"

	"github.com/arloliu/factosave/errs"
	"github.com/arloliu/factosave/internal/pool"
)

// Writer appends little-endian values to a pooled in-memory buffer.
//
// Writes to memory cannot be short, so the scalar Write methods do not return
// errors. Call Release when the encoded bytes are no longer needed, or use
// Finish to take an owned copy and release in one step.
type Writer struct {
	buf     *pool.ByteBuffer
	release func(*pool.ByteBuffer)
}

// NewWriter creates a Writer backed by a buffer sized for replay and script data.
func NewWriter() *Writer {
	return &Writer{buf: pool.GetStreamBuffer(), release: pool.PutStreamBuffer}
}

// NewMapWriter creates a Writer backed by a buffer sized for map snapshots.
func NewMapWriter() *Writer {
	return &Writer{buf: pool.GetMapBuffer(), release: pool.PutMapBuffer}
}

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() int64 {
	return int64(w.buf.Len())
}

// Bytes returns the encoded bytes. The slice is only valid until Release.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Finish returns an owned copy of the encoded bytes and releases the buffer.
func (w *Writer) Finish() []byte {
	out := make([]byte, w.buf.Len())
	copy(out, w.buf.Bytes())
	w.Release()

	return out
}

// Release returns the backing buffer to its pool. The Writer must not be
// used afterwards.
func (w *Writer) Release() {
	if w.buf != nil {
		w.release(w.buf)
		w.buf = nil
	}
}

// WriteTo flushes the encoded bytes to dst. A failing sink is reported as
// errs.ErrWrite at the offset where the sink stopped accepting data.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	n, err := dst.Write(w.buf.Bytes())
	if err == nil && n < w.buf.Len() {
		err = io.ErrShortWrite
	}
	if err != nil {
		return int64(n), errs.New(int64(n), errs.ErrWrite, "%v", err)
	}

	return int64(n), nil
}

// WriteU8 appends an unsigned byte.
func (w *Writer) WriteU8(v uint8) {
	_ = w.buf.WriteByte(v)
}

// WriteI8 appends a signed byte.
func (w *Writer) WriteI8(v int8) {
	w.WriteU8(uint8(v)) //nolint:gosec
}

// WriteU16 appends a little-endian uint16.
func (w *Writer) WriteU16(v uint16) {
	w.buf.B = engine.AppendUint16(w.buf.B, v)
}

// WriteI16 appends a little-endian int16.
func (w *Writer) WriteI16(v int16) {
	w.WriteU16(uint16(v)) //nolint:gosec
}

// WriteU32 appends a little-endian uint32.
func (w *Writer) WriteU32(v uint32) {
	w.buf.B = engine.AppendUint32(w.buf.B, v)
}

// WriteI32 appends a little-endian int32.
func (w *Writer) WriteI32(v int32) {
	w.WriteU32(uint32(v)) //nolint:gosec
}

// WriteU64 appends a little-endian uint64.
func (w *Writer) WriteU64(v uint64) {
	w.buf.B = engine.AppendUint64(w.buf.B, v)
}

// WriteI64 appends a little-endian int64.
func (w *Writer) WriteI64(v int64) {
	w.WriteU64(uint64(v)) //nolint:gosec
}

// WriteF32 appends a little-endian IEEE 754 float32.
func (w *Writer) WriteF32(v float32) {
	w.WriteU32(math.Float32bits(v))
}

// WriteF64 appends a little-endian IEEE 754 float64.
func (w *Writer) WriteF64(v float64) {
	w.WriteU64(math.Float64bits(v))
}

// WriteBool appends a boolean as 0 or 1.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteU8(1)
		return
	}
	w.WriteU8(0)
}

// WriteBytes appends raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.buf.Grow(len(b))
	w.buf.MustWrite(b)
}

package stream

import (
	"unicode/utf8"

	"github.com/arloliu/factosave/errs"
)

// readUTF8 reads n bytes as a UTF-8 string. start is the offset of the
// string's length prefix, which is where an encoding error is reported.
func (r *Reader) readUTF8(n int, start int64) (string, error) {
	b, err := r.take(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errs.New(start, errs.ErrInvalidUTF8, "%d-byte string", n)
	}

	return string(b), nil
}

// ReadString reads an opt_u32 length-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	start := r.Offset()
	n, err := r.ReadOptU32()
	if err != nil {
		return "", err
	}

	return r.readUTF8(int(n), start)
}

// ReadStringU32 reads a u32 length-prefixed UTF-8 string.
func (r *Reader) ReadStringU32() (string, error) {
	start := r.Offset()
	n, err := r.ReadU32()
	if err != nil {
		return "", err
	}

	return r.readUTF8(int(n), start)
}

// WriteString writes s with an opt_u32 length prefix.
func (w *Writer) WriteString(s string) {
	w.WriteOptU32(uint32(len(s))) //nolint:gosec
	w.WriteBytes([]byte(s))
}

// WriteStringU32 writes s with a u32 length prefix.
func (w *Writer) WriteStringU32(s string) {
	w.WriteU32(uint32(len(s))) //nolint:gosec
	w.WriteBytes([]byte(s))
}

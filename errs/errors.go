// Package errs defines the error taxonomy shared by every codec in factosave.
//
// Decoding failures are reported as *Error values that carry the byte offset
// of the offending field (the start of the field, not the position after it),
// the dotted field path collected while the error propagates out of nested
// structs, and a wrapped sentinel describing the class of failure. Callers
// match the class with errors.Is and extract the location with errors.As:
//
//	var e *errs.Error
//	if errors.As(err, &e) {
//	    fmt.Printf("bad field %s at 0x%x\n", e.FieldPath(), e.Offset)
//	}
//	if errors.Is(err, errs.ErrConstantMismatch) {
//	    // the sample exercised an unmodeled part of the format
//	}
package errs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// I/O errors.
var (
	// ErrShortBuffer is returned when the data ends before a field is complete.
	ErrShortBuffer = errors.New("unexpected end of data")
	// ErrWrite is returned when flushing an encoded buffer to a sink fails.
	ErrWrite = errors.New("write failed")
)

// Invalid-encoding errors.
var (
	ErrInvalidBool        = errors.New("invalid boolean byte")
	ErrUnknownTag         = errors.New("unknown discriminant")
	ErrUnknownContentID   = errors.New("unknown content id")
	ErrDuplicateContentID = errors.New("duplicate content id")
	ErrNonCanonical       = errors.New("non-canonical encoding")
	ErrNotAscending       = errors.New("indices not strictly ascending")
	ErrValueOutOfRange    = errors.New("value out of range")
)

// ErrConstantMismatch is returned when a placeholder field does not hold its
// expected constant. It means the sample uses a part of the format that is
// not modeled yet.
var ErrConstantMismatch = errors.New("constant mismatch")

// ErrInvalidUTF8 is returned when a string field is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid utf-8 string")

// Invariant-violation errors.
var (
	ErrTagMismatch      = errors.New("discriminant does not match decoded value")
	ErrPaletteRunLength = errors.New("palette block run lengths do not sum to 1024")
	ErrPaletteIndex     = errors.New("palette index not introduced")
	ErrDeltaOutOfRange  = errors.New("relative position delta out of range")
	ErrVersionMismatch  = errors.New("nested buffer version mismatch")
)

// Error is a codec failure stamped with the offset where it was detected.
type Error struct {
	// Offset is the byte offset of the start of the offending field,
	// relative to the start of the stream being processed.
	Offset int64
	// Path holds the field names from the outermost struct inwards.
	Path []string
	// Err wraps the sentinel and the expected/actual detail.
	Err error
}

// New returns an *Error at offset wrapping sentinel with a formatted detail.
func New(offset int64, sentinel error, format string, args ...any) *Error {
	if format == "" {
		return &Error{Offset: offset, Err: sentinel}
	}

	return &Error{
		Offset: offset,
		Err:    fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...)),
	}
}

// Mismatch returns an *Error describing an expected/actual disagreement.
func Mismatch(offset int64, sentinel error, expected, actual any) *Error {
	return New(offset, sentinel, "expected %v, got %v", expected, actual)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "offset 0x%x", e.Offset)
	if len(e.Path) > 0 {
		sb.WriteString(" (")
		sb.WriteString(e.FieldPath())
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())

	return sb.String()
}

// Unwrap returns the wrapped sentinel chain.
func (e *Error) Unwrap() error {
	return e.Err
}

// FieldPath returns the dotted field path, or "" when unknown. Element
// indices such as "[3]" attach to the preceding name without a dot.
func (e *Error) FieldPath() string {
	var sb strings.Builder
	for i, name := range e.Path {
		if i > 0 && !strings.HasPrefix(name, "[") {
			sb.WriteByte('.')
		}
		sb.WriteString(name)
	}

	return sb.String()
}

// Index returns the path element for the i-th element of a sequence.
func Index(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

// InField records that err happened inside the named field. Errors that are
// not *Error are returned unchanged.
func InField(err error, name string) error {
	if err == nil || name == "" {
		return err
	}

	var e *Error
	if errors.As(err, &e) {
		e.Path = append([]string{name}, e.Path...)
	}

	return err
}

// Rebase shifts the offset of err by base. Decoders of buffers embedded in an
// outer stream use it to report offsets relative to the outer stream.
func Rebase(err error, base int64) error {
	var e *Error
	if errors.As(err, &e) {
		e.Offset += base
	}

	return err
}

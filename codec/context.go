package codec

import (
	"github.com/arloliu/factosave/errs"
	"github.com/arloliu/factosave/fixed"
	"github.com/arloliu/factosave/format"
	"github.com/arloliu/factosave/stream"
)

// MaxDepth bounds the nesting of recursive codecs built with Lazy.
const MaxDepth = 256

// Resolver answers whether a session-local content ID was introduced by the
// migration tables of the current session. migration.Session implements it.
type Resolver interface {
	Known(kind format.ContentKind, id format.ContentID) bool
}

// Decoder is the decoding context of one stream: the cursor, the profile,
// the last-position register used by delta-encoded positions and the
// optional content resolver.
//
// A Decoder is owned by a single traversal. Fields must be decoded in the
// same order the matching Encoder writes them, or the position register
// drifts and every later relative position decodes wrong.
type Decoder struct {
	r        *stream.Reader
	profile  Profile
	last     fixed.Vector
	resolver Resolver
	depth    int
}

// NewDecoder creates a decoding context over r with a zeroed position register.
func NewDecoder(r *stream.Reader, profile Profile) *Decoder {
	return &Decoder{r: r, profile: profile}
}

// Reader returns the underlying cursor.
func (d *Decoder) Reader() *stream.Reader { return d.r }

// Profile returns the framing profile of this stream.
func (d *Decoder) Profile() Profile { return d.profile }

// Offset returns the current byte offset.
func (d *Decoder) Offset() int64 { return d.r.Offset() }

// LastPosition returns the position register.
func (d *Decoder) LastPosition() fixed.Vector { return d.last }

// SetResolver installs the resolver used to validate content IDs.
func (d *Decoder) SetResolver(r Resolver) { d.resolver = r }

// Resolver returns the installed resolver, or nil.
func (d *Decoder) Resolver() Resolver { return d.resolver }

func (d *Decoder) enter() error {
	if d.depth >= MaxDepth {
		return errs.New(d.Offset(), errs.ErrValueOutOfRange, "nesting deeper than %d", MaxDepth)
	}
	d.depth++

	return nil
}

func (d *Decoder) leave() { d.depth-- }

// Encoder is the encoding context of one stream, mirroring Decoder.
type Encoder struct {
	w        *stream.Writer
	profile  Profile
	last     fixed.Vector
	resolver Resolver
	depth    int
}

// NewEncoder creates an encoding context over w with a zeroed position register.
func NewEncoder(w *stream.Writer, profile Profile) *Encoder {
	return &Encoder{w: w, profile: profile}
}

// Writer returns the underlying cursor.
func (e *Encoder) Writer() *stream.Writer { return e.w }

// Profile returns the framing profile of this stream.
func (e *Encoder) Profile() Profile { return e.profile }

// Offset returns the number of bytes written so far.
func (e *Encoder) Offset() int64 { return e.w.Offset() }

// LastPosition returns the position register.
func (e *Encoder) LastPosition() fixed.Vector { return e.last }

// SetResolver installs the resolver used to validate content IDs.
func (e *Encoder) SetResolver(r Resolver) { e.resolver = r }

// Resolver returns the installed resolver, or nil.
func (e *Encoder) Resolver() Resolver { return e.resolver }

func (e *Encoder) enter() error {
	if e.depth >= MaxDepth {
		return errs.New(e.Offset(), errs.ErrValueOutOfRange, "nesting deeper than %d", MaxDepth)
	}
	e.depth++

	return nil
}

func (e *Encoder) leave() { e.depth-- }

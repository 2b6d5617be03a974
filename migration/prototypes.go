package migration

import (
	"github.com/arloliu/factosave/codec"
	"github.com/arloliu/factosave/errs"
	"github.com/arloliu/factosave/format"
	"github.com/arloliu/factosave/internal/collision"
)

// Prototypes holds one table per content kind, in format.ContentKinds order.
type Prototypes []Table

// Table returns the table of kind, or an empty table.
func (p Prototypes) Table(kind format.ContentKind) Table {
	for _, t := range p {
		if t.Kind == kind {
			return t
		}
	}

	return Table{Kind: kind}
}

// Session indexes the tables.
func (p Prototypes) Session() (*Session, error) {
	return NewSession(p...)
}

// NewPrototypes returns an empty table for every content kind.
func NewPrototypes() Prototypes {
	p := make(Prototypes, len(format.ContentKinds))
	for i, kind := range format.ContentKinds {
		p[i] = Table{Kind: kind}
	}

	return p
}

var tableCodecs = func() []tableCodec {
	out := make([]tableCodec, len(format.ContentKinds))
	for i, kind := range format.ContentKinds {
		out[i] = newTableCodec(kind)
	}

	return out
}()

// PrototypesCodec reads the table of every content kind in wire order and
// installs the resulting Session as the context's resolver, so content
// references later in the same stream are checked against it. Encode does
// the same before returning.
var PrototypesCodec = codec.New(decodePrototypes, encodePrototypes)

func decodePrototypes(d *codec.Decoder) (Prototypes, error) {
	start := d.Offset()
	p := make(Prototypes, len(format.ContentKinds))
	tracker := collision.NewTracker()
	for i, kind := range format.ContentKinds {
		tracker.Reset()
		t, err := tableCodecs[i].decode(d, tracker)
		if err != nil {
			return nil, errs.InField(err, kind.String())
		}
		p[i] = t
	}

	session, err := p.Session()
	if err != nil {
		return nil, &errs.Error{Offset: start, Err: err}
	}
	d.SetResolver(session)

	return p, nil
}

func encodePrototypes(e *codec.Encoder, p Prototypes) error {
	if len(p) != len(format.ContentKinds) {
		return errs.Mismatch(e.Offset(), errs.ErrValueOutOfRange, len(format.ContentKinds), len(p))
	}

	start := e.Offset()
	for i, kind := range format.ContentKinds {
		if p[i].Kind != kind {
			return errs.Mismatch(e.Offset(), errs.ErrTagMismatch, kind, p[i].Kind)
		}
		if err := tableCodecs[i].Encode(e, p[i]); err != nil {
			return errs.InField(err, kind.String())
		}
	}

	session, err := p.Session()
	if err != nil {
		return &errs.Error{Offset: start, Err: err}
	}
	e.SetResolver(session)

	return nil
}

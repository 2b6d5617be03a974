// Package migration implements the migration tables that map stable
// (source, name) content identities to the numeric IDs a save session
// assigned them.
//
// Numeric IDs are only meaningful inside the stream that defined them.
// Anything that outlives a decode call should key content by Key or by
// Session.Fingerprint, never by ContentID.
package migration

import (
	"math"

	"github.com/arloliu/factosave/codec"
	"github.com/arloliu/factosave/errs"
	"github.com/arloliu/factosave/format"
	"github.com/arloliu/factosave/internal/collision"
	"github.com/arloliu/factosave/internal/hash"
)

// Entry maps one content name to its session-local ID.
type Entry struct {
	Name string
	ID   format.ContentID
}

// Group lists the entries contributed by one source, usually a mod.
type Group struct {
	Source  string
	Entries []Entry
}

// Table is the migration table of one content kind. Group and entry order
// are part of the wire format.
type Table struct {
	Kind   format.ContentKind
	Groups []Group
}

// Len returns the number of entries over all groups.
func (t Table) Len() int {
	n := 0
	for _, g := range t.Groups {
		n += len(g.Entries)
	}

	return n
}

// idCodec stores a raw table ID in the kind's width. Table IDs are
// definitions, so unlike codec.ContentID they are never checked against
// a resolver.
func idCodec(kind format.ContentKind) codec.Codec[format.ContentID] {
	if kind.IDWidth() == 2 {
		return codec.Cast[format.ContentID](codec.U16)
	}

	return codec.New(
		func(d *codec.Decoder) (format.ContentID, error) {
			v, err := codec.U8.Decode(d)
			return format.ContentID(v), err
		},
		func(e *codec.Encoder, id format.ContentID) error {
			if id > math.MaxUint8 {
				return errs.New(e.Offset(), errs.ErrValueOutOfRange, "%s id %d exceeds one byte", kind, id)
			}

			return codec.U8.Encode(e, uint8(id))
		},
	)
}

type tableCodec struct {
	kind   format.ContentKind
	entry  *codec.Struct[Entry]
	groups codec.Codec[[]Group]
}

// TableCodec returns the codec for the table of kind. Counts use the
// profile's vector length and names the profile's string framing. An ID
// or qualified name listed twice is errs.ErrDuplicateContentID.
func TableCodec(kind format.ContentKind) codec.Codec[Table] {
	return newTableCodec(kind)
}

func newTableCodec(kind format.ContentKind) tableCodec {
	entry := codec.NewStruct("Entry",
		codec.Plain("name", func(e *Entry) *string { return &e.Name }, codec.String),
		codec.Plain("id", func(e *Entry) *format.ContentID { return &e.ID }, idCodec(kind)),
	)
	group := codec.NewStruct("Group",
		codec.Plain("source", func(g *Group) *string { return &g.Source }, codec.String),
		codec.Vector("entries", func(g *Group) *[]Entry { return &g.Entries }, codec.Codec[Entry](entry), codec.LenProfile),
	)

	return tableCodec{kind: kind, entry: entry, groups: codec.Slice[Group](group, codec.LenProfile)}
}

func (c tableCodec) Decode(d *codec.Decoder) (Table, error) {
	return c.decode(d, collision.NewTracker())
}

// decode reads one table, tracking its IDs in tracker, which must be empty.
func (c tableCodec) decode(d *codec.Decoder, tracker *collision.Tracker) (Table, error) {
	n, err := codec.LenProfile.Read(d)
	if err != nil {
		return Table{}, err
	}

	t := Table{Kind: c.kind}
	if n > 0 {
		t.Groups = make([]Group, 0, min(n, d.Reader().Remaining()))
	}
	for i := 0; i < n; i++ {
		g, err := c.decodeGroup(d, tracker)
		if err != nil {
			return Table{}, errs.InField(err, errs.Index(i))
		}
		t.Groups = append(t.Groups, g)
	}

	return t, nil
}

func (c tableCodec) decodeGroup(d *codec.Decoder, tracker *collision.Tracker) (Group, error) {
	var g Group
	var err error
	if g.Source, err = codec.String.Decode(d); err != nil {
		return Group{}, errs.InField(err, "source")
	}

	m, err := codec.LenProfile.Read(d)
	if err != nil {
		return Group{}, errs.InField(err, "entries")
	}

	if m > 0 {
		g.Entries = make([]Entry, 0, min(m, d.Reader().Remaining()))
	}
	for j := 0; j < m; j++ {
		start := d.Offset()
		e, err := c.entry.Decode(d)
		if err != nil {
			return Group{}, errs.InField(errs.InField(err, errs.Index(j)), "entries")
		}
		if err := tracker.Track(e.ID, g.Source+"/"+e.Name, hash.ContentKey(g.Source, e.Name)); err != nil {
			return Group{}, &errs.Error{Offset: start, Path: []string{"entries", errs.Index(j)}, Err: err}
		}
		g.Entries = append(g.Entries, e)
	}

	return g, nil
}

func (c tableCodec) Encode(e *codec.Encoder, t Table) error {
	return c.groups.Encode(e, t.Groups)
}

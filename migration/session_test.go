package migration

import (
	"testing"

	"github.com/arloliu/factosave/codec"
	"github.com/arloliu/factosave/errs"
	"github.com/arloliu/factosave/format"
	"github.com/arloliu/factosave/internal/hash"
	"github.com/arloliu/factosave/stream"
	"github.com/stretchr/testify/require"
)

func sampleTables() []Table {
	return []Table{
		{Kind: format.KindItem, Groups: []Group{{Source: "base", Entries: []Entry{
			{Name: "iron-plate", ID: 1},
			{Name: "copper-plate", ID: 2},
		}}}},
		{Kind: format.KindRecipe, Groups: []Group{{Source: "base", Entries: []Entry{
			{Name: "iron-gear-wheel", ID: 1},
		}}}},
	}
}

func TestSession_Lookup(t *testing.T) {
	s, err := NewSession(sampleTables()...)
	require.NoError(t, err)

	id, ok := s.Lookup(format.KindItem, "base", "copper-plate")
	require.True(t, ok)
	require.Equal(t, format.ContentID(2), id)

	_, ok = s.Lookup(format.KindItem, "mod", "copper-plate")
	require.False(t, ok)

	require.True(t, s.Known(format.KindRecipe, 1))
	require.False(t, s.Known(format.KindRecipe, 2))
	require.False(t, s.Known(format.KindTile, 1))

	require.Equal(t, 2, s.Len(format.KindItem))
	require.Equal(t, 0, s.Len(format.KindTechnology))
	require.Equal(t, []string{"base/iron-plate", "base/copper-plate"}, s.Names(format.KindItem))
	require.False(t, s.HasFingerprintCollision())
}

func TestSession_Fingerprint(t *testing.T) {
	s, err := NewSession(sampleTables()...)
	require.NoError(t, err)

	fp, ok := s.Fingerprint(format.KindItem, 1)
	require.True(t, ok)
	require.Equal(t, hash.ContentKey("base", "iron-plate"), fp)

	// The same identity under another ID in another session keeps its fingerprint.
	other, err := NewSession(Table{Kind: format.KindItem, Groups: []Group{{Source: "base", Entries: []Entry{{Name: "iron-plate", ID: 40}}}}})
	require.NoError(t, err)
	fp2, ok := other.Fingerprint(format.KindItem, 40)
	require.True(t, ok)
	require.Equal(t, fp, fp2)

	_, ok = s.Fingerprint(format.KindItem, 99)
	require.False(t, ok)
}

func TestNewSession_Duplicate(t *testing.T) {
	_, err := NewSession(Table{Kind: format.KindItem, Groups: []Group{
		{Source: "base", Entries: []Entry{{Name: "a", ID: 1}}},
		{Source: "mod", Entries: []Entry{{Name: "b", ID: 1}}},
	}})
	require.ErrorIs(t, err, errs.ErrDuplicateContentID)
}

func TestPrototypesCodec_InstallsResolver(t *testing.T) {
	p := NewPrototypes()
	for _, table := range sampleTables() {
		for i := range p {
			if p[i].Kind == table.Kind {
				p[i] = table
			}
		}
	}

	w := stream.NewWriter()
	enc := codec.NewEncoder(w, codec.MapProfile)
	require.NoError(t, PrototypesCodec.Encode(enc, p))
	require.NotNil(t, enc.Resolver())
	require.NoError(t, codec.ContentID(format.KindRecipe).Encode(enc, 1))
	require.ErrorIs(t, codec.ContentID(format.KindRecipe).Encode(enc, 7), errs.ErrUnknownContentID)
	wire := w.Finish()

	dec := codec.NewDecoder(stream.NewReader(wire), codec.MapProfile)
	got, err := PrototypesCodec.Decode(dec)
	require.NoError(t, err)
	require.Equal(t, p, got)
	require.True(t, dec.Resolver().Known(format.KindItem, 2))

	id, err := codec.ContentID(format.KindRecipe).Decode(dec)
	require.NoError(t, err)
	require.Equal(t, format.ContentID(1), id)
	require.Equal(t, "iron-plate", got.Table(format.KindItem).Groups[0].Entries[0].Name)
	require.Empty(t, got.Table(format.KindTile).Groups)
}

func TestPrototypesCodec_WrongOrder(t *testing.T) {
	p := NewPrototypes()
	p[0], p[1] = p[1], p[0]

	w := stream.NewWriter()
	defer w.Release()
	err := PrototypesCodec.Encode(codec.NewEncoder(w, codec.MapProfile), p)
	require.ErrorIs(t, err, errs.ErrTagMismatch)
}

func TestPrototypesCodec_DuplicatesArePerTable(t *testing.T) {
	item := concat([]byte{0x01}, str("base"), []byte{0x01}, str("a"), []byte{0x03, 0x00})
	fluid := concat([]byte{0x01}, str("base"), []byte{0x02}, str("w"), []byte{0x03}, str("x"), []byte{0x04})
	empty := []byte{0x00}

	// The same ID in two kinds is fine.
	wire := concat(item, fluid, empty, empty, empty, empty)
	got, err := PrototypesCodec.Decode(codec.NewDecoder(stream.NewReader(wire), codec.MapProfile))
	require.NoError(t, err)
	require.Len(t, got.Table(format.KindFluid).Groups[0].Entries, 2)

	fluid[len(fluid)-1] = 0x03
	wire = concat(item, fluid, empty, empty, empty, empty)
	_, err = PrototypesCodec.Decode(codec.NewDecoder(stream.NewReader(wire), codec.MapProfile))
	require.ErrorIs(t, err, errs.ErrDuplicateContentID)

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, "fluid[0].entries[1]", e.FieldPath())
	require.Equal(t, int64(len(item)+10), e.Offset)
}

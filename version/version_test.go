package version

import (
	"testing"

	"github.com/arloliu/factosave/codec"
	"github.com/arloliu/factosave/errs"
	"github.com/arloliu/factosave/stream"
	"github.com/stretchr/testify/require"
)

func TestHeader_Ordinal(t *testing.T) {
	h := Header{Major: 1, Minor: 1, Patch: 110, Dev: 3}
	require.Equal(t, uint64(0x0001_0001_006E_0003), h.Ordinal())
	require.Equal(t, Header{Major: 1, Minor: 1, Patch: 110, Dev: 3}, FromOrdinal(h.Ordinal()))
	require.Equal(t, "1.1.110-3", h.String())
}

func TestHeader_Compare(t *testing.T) {
	older := Header{Major: 1, Minor: 0, Patch: 900}
	newer := Header{Major: 1, Minor: 1}

	require.Equal(t, -1, older.Compare(newer))
	require.Equal(t, 1, newer.Compare(older))
	require.Equal(t, 0, newer.Compare(Header{Major: 1, Minor: 1, Quality: true}))
	require.True(t, newer.AtLeast(older))
	require.False(t, older.AtLeast(newer))
}

func TestCodec_Wire(t *testing.T) {
	h := Header{Major: 1, Minor: 1, Patch: 110, Dev: 3, Quality: true}

	w := stream.NewWriter()
	require.NoError(t, Codec.Encode(codec.NewEncoder(w, codec.MapProfile), h))
	wire := w.Finish()
	require.Equal(t, []byte{1, 0, 1, 0, 110, 0, 3, 0, 1}, wire)

	got, err := Codec.Decode(codec.NewDecoder(stream.NewReader(wire), codec.MapProfile))
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestCodec_InvalidQuality(t *testing.T) {
	_, err := Codec.Decode(codec.NewDecoder(stream.NewReader([]byte{1, 0, 1, 0, 110, 0, 3, 0, 2}), codec.MapProfile))
	require.ErrorIs(t, err, errs.ErrInvalidBool)
}

func TestParse(t *testing.T) {
	h, err := Parse("1.1.110-3")
	require.NoError(t, err)
	require.Equal(t, Header{Major: 1, Minor: 1, Patch: 110, Dev: 3}, h)

	h, err = Parse("0.17.79")
	require.NoError(t, err)
	require.Equal(t, "0.17.79-0", h.String())

	for _, bad := range []string{"", "1.1", "1.1.1.1", "1.x.0", "1.1.70000", "1.1.1-"} {
		_, err := Parse(bad)
		require.Error(t, err, bad)
	}
}

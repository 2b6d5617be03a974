package bundle

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/arloliu/factosave/errs"
	"github.com/arloliu/factosave/fixed"
	"github.com/arloliu/factosave/format"
	"github.com/arloliu/factosave/mapfile"
	"github.com/arloliu/factosave/migration"
	"github.com/arloliu/factosave/replay"
	"github.com/arloliu/factosave/script"
	"github.com/arloliu/factosave/version"
	"github.com/stretchr/testify/require"
)

var v110 = version.Header{Major: 1, Minor: 1, Patch: 110}

func sampleMap(tick uint32) *mapfile.File {
	protos := migration.NewPrototypes()
	for i := range protos {
		if protos[i].Kind == format.KindRecipe {
			protos[i].Groups = []migration.Group{{
				Source:  "base",
				Entries: []migration.Entry{{Name: "iron-gear-wheel", ID: 1}},
			}}
		}
	}

	return &mapfile.File{
		Version: v110,
		World: mapfile.World{
			Mods:       []mapfile.Mod{{Name: "base", Version: [3]uint16{1, 1, 110}}},
			Prototypes: protos,
			Tick:       tick,
			Players:    []mapfile.Player{{Name: "alice", Position: fixed.Abs(fixed.Vec(1, 2))}},
		},
		Trailing: []byte{},
	}
}

func sampleDecoded() *Decoded {
	var log replay.Log
	log.Append(0, 0, replay.SingleplayerInit{})
	log.Append(60, 0, replay.CraftItem{Recipe: 1, Count: 5})

	return &Decoded{
		LevelInit: sampleMap(0),
		Level:     sampleMap(3600),
		Replay:    &log,
		Script: &script.State{
			Version: v110,
			Scripts: []script.Script{{Name: "level", Data: script.Table{{Key: script.String("wave"), Value: script.Number(3)}}}},
		},
	}
}

func sampleBundle(t *testing.T) *Bundle {
	t.Helper()

	b, err := Encode(sampleDecoded())
	require.NoError(t, err)

	return b
}

func TestBundle_Blob(t *testing.T) {
	b := &Bundle{}
	for _, name := range Names {
		_, ok := b.Blob(name)
		require.False(t, ok)
		require.NoError(t, b.SetBlob(name, []byte(name)))

		data, ok := b.Blob(name)
		require.True(t, ok)
		require.Equal(t, []byte(name), data)
		require.NotZero(t, b.Digest(name))
	}

	require.Error(t, b.SetBlob("control.lua", nil))
	_, ok := b.Blob("control.lua")
	require.False(t, ok)
	require.Zero(t, (&Bundle{}).Digest(LevelName))
}

func TestDirRoundTrip_EveryCompression(t *testing.T) {
	want := sampleBundle(t)

	for _, ct := range []format.CompressionType{
		format.CompressionNone, format.CompressionZlib, format.CompressionZstd,
		format.CompressionS2, format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, WriteDir(dir, want, WithCompression(ct)))

			got, err := ReadDir(os.DirFS(dir), WithCompression(ct))
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestWriteDir_Chunked(t *testing.T) {
	want := sampleBundle(t)
	dir := t.TempDir()

	require.NoError(t, WriteDir(dir, want, WithChunkSize(16)))

	_, err := os.Stat(filepath.Join(dir, LevelName))
	require.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(dir, "level.dat1"))
	require.NoError(t, err)

	got, err := ReadDir(os.DirFS(dir))
	require.NoError(t, err)
	require.Equal(t, want.Level, got.Level)
	require.Equal(t, want.Replay, got.Replay)
}

func TestReadDir_OptionalBlobs(t *testing.T) {
	level := sampleBundle(t).Level

	got, err := ReadDir(fstest.MapFS{LevelName: {Data: level}})
	require.NoError(t, err)
	require.Equal(t, level, got.Level)
	require.Nil(t, got.LevelInit)
	require.Nil(t, got.Replay)
	require.Nil(t, got.Script)

	_, err = ReadDir(fstest.MapFS{ReplayName: {Data: []byte{}}})
	require.ErrorIs(t, err, ErrMissingBlob)

	_, err = ReadDir(fstest.MapFS{LevelName: {Data: []byte("junk")}}, WithCompression(format.CompressionZlib))
	require.ErrorContains(t, err, "read level.dat")
}

func TestChunks(t *testing.T) {
	data := bytes.Repeat([]byte{1, 2, 3, 4}, 8)

	for _, size := range []int{1, 7, 32, 1000} {
		chunks, err := SplitChunks(data, size)
		require.NoError(t, err)
		require.Len(t, chunks, (len(data)+size-1)/size)

		joined, err := JoinChunks(chunks)
		require.NoError(t, err)
		require.Equal(t, data, joined)
	}

	chunks, err := SplitChunks(nil, 8)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	joined, err := JoinChunks(chunks)
	require.NoError(t, err)
	require.Empty(t, joined)

	_, err = SplitChunks(data, 0)
	require.Error(t, err)

	_, err = JoinChunks([][]byte{chunks[0], []byte("junk")})
	require.ErrorContains(t, err, "chunk 1")
}

func TestDecode_RoundTrip(t *testing.T) {
	b := sampleBundle(t)

	d, err := Decode(b)
	require.NoError(t, err)
	require.Equal(t, sampleDecoded().Script, d.Script)
	require.Equal(t, uint32(60), d.Replay.LastTick())

	again, err := Encode(d)
	require.NoError(t, err)
	require.Equal(t, b, again)
}

func TestDecode_ReplayCheckedAgainstSession(t *testing.T) {
	d := sampleDecoded()
	b := sampleBundle(t)

	d.Replay.Append(120, 0, replay.CraftItem{Recipe: 9, Count: 1})
	_, err := Encode(d)
	require.ErrorIs(t, err, errs.ErrUnknownContentID)

	b.Replay, err = replay.Encode(d.Replay)
	require.NoError(t, err)
	_, err = Decode(b)
	require.ErrorIs(t, err, errs.ErrUnknownContentID)
	require.ErrorContains(t, err, ReplayName)
}

func TestDecode_MissingLevel(t *testing.T) {
	_, err := Decode(&Bundle{Replay: []byte{}})
	require.ErrorIs(t, err, ErrMissingBlob)

	_, err = Encode(&Decoded{})
	require.ErrorIs(t, err, ErrMissingBlob)

	_, err = (&Decoded{}).Session()
	require.ErrorIs(t, err, ErrMissingBlob)
}

func TestVerify(t *testing.T) {
	b := sampleBundle(t)

	report, err := Verify(b)
	require.NoError(t, err)
	require.True(t, report.OK())
	require.Len(t, report.Blobs, 4)
	for _, br := range report.Blobs {
		require.Equal(t, br.Digest, br.Reencoded, br.Name)
	}

	b.Script = b.Script[:len(b.Script)-1]
	report, err = Verify(b)
	require.NoError(t, err)
	require.False(t, report.OK())

	failed := report.Failed()
	require.Len(t, failed, 1)
	require.Equal(t, ScriptName, failed[0].Name)
	require.ErrorIs(t, failed[0].Err, errs.ErrShortBuffer)
	require.Zero(t, failed[0].Reencoded)
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	require.NoError(t, WriteDir(t.TempDir(), sampleBundle(t), WithLogger(logger), WithCompression(format.CompressionS2)))
	require.Contains(t, buf.String(), "blob stored")
	require.Contains(t, buf.String(), "compression=S2")
}

func TestOptions_Invalid(t *testing.T) {
	b := sampleBundle(t)
	dir := t.TempDir()

	require.Error(t, WriteDir(dir, b, WithChunkSize(0)))
	require.Error(t, WriteDir(dir, b, WithLogger(nil)))
	require.Error(t, WriteDir(dir, b, WithCompression(format.CompressionType(0x7F))))
	require.ErrorIs(t, WriteDir(dir, &Bundle{}), ErrMissingBlob)
}

func TestDecode_MapOptions(t *testing.T) {
	b := sampleBundle(t)

	_, err := Decode(b, WithMapOptions(mapfile.WithMinVersion(version.Header{Major: 2})))
	require.ErrorIs(t, err, errs.ErrValueOutOfRange)
	require.ErrorContains(t, err, LevelInitName)

	d, err := Decode(b, WithScriptOptions(script.WithRawBlobs()))
	require.NoError(t, err)
	require.Nil(t, d.Script.Scripts[0].Data)
	require.NotEmpty(t, d.Script.Scripts[0].Raw)
}

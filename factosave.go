// Package factosave decodes and encodes the binary buffers of a
// simulation-game save: map snapshots (level.dat, level-init.dat), replay
// logs (replay.dat) and script state (script.dat).
//
// Every decoder is paired with an encoder, and decoding then encoding a
// buffer reproduces it byte for byte. Failures are *errs.Error values that
// carry the byte offset and field path of the offending field.
//
// # Basic Usage
//
// Decoding a map buffer and resolving a content ID:
//
//	f, err := factosave.DecodeMap(data)
//	if err != nil {
//	    var e *errs.Error
//	    if errors.As(err, &e) {
//	        log.Printf("bad field %s at 0x%x", e.FieldPath(), e.Offset)
//	    }
//	    return err
//	}
//	session, _ := f.Session()
//	key, ok := session.Resolve(format.KindEntity, 42)
//
// Decoding a replay against the map's content tables:
//
//	log, err := factosave.DecodeReplay(replayData, replay.WithResolver(session))
//
// Checking a whole unpacked save:
//
//	report, err := factosave.VerifyDir("saves/my-factory")
//
// # Package Structure
//
// This package wraps the format packages for the common cases. The
// mapfile, replay, script and bundle packages expose the full options, and
// codec holds the encoding engine the formats are built from.
package factosave

import (
	"os"

	"github.com/arloliu/factosave/bundle"
	"github.com/arloliu/factosave/internal/hash"
	"github.com/arloliu/factosave/mapfile"
	"github.com/arloliu/factosave/replay"
	"github.com/arloliu/factosave/script"
)

// DecodeMap decodes a level.dat or level-init.dat buffer.
func DecodeMap(data []byte, opts ...mapfile.Option) (*mapfile.File, error) {
	return mapfile.Decode(data, opts...)
}

// EncodeMap encodes a map buffer.
func EncodeMap(f *mapfile.File) ([]byte, error) {
	return mapfile.Encode(f)
}

// DecodeReplay decodes a replay.dat buffer.
func DecodeReplay(data []byte, opts ...replay.Option) (*replay.Log, error) {
	return replay.Decode(data, opts...)
}

// EncodeReplay encodes a replay buffer.
func EncodeReplay(l *replay.Log, opts ...replay.Option) ([]byte, error) {
	return replay.Encode(l, opts...)
}

// DecodeScript decodes a script.dat buffer.
func DecodeScript(data []byte, opts ...script.Option) (*script.State, error) {
	return script.Decode(data, opts...)
}

// EncodeScript encodes a script-state buffer.
func EncodeScript(s *script.State) ([]byte, error) {
	return script.Encode(s)
}

// LoadDir reads and decodes the save unpacked in dir.
func LoadDir(dir string, opts ...bundle.Option) (*bundle.Decoded, error) {
	b, err := bundle.ReadDir(os.DirFS(dir), opts...)
	if err != nil {
		return nil, err
	}

	return bundle.Decode(b, opts...)
}

// VerifyDir checks that every blob of the save unpacked in dir round-trips.
func VerifyDir(dir string, opts ...bundle.Option) (*bundle.Report, error) {
	b, err := bundle.ReadDir(os.DirFS(dir), opts...)
	if err != nil {
		return nil, err
	}

	return bundle.Verify(b, opts...)
}

// ContentKey returns the stable 64-bit identity of a prototype, independent
// of the session-local IDs a save assigns.
func ContentKey(source, name string) uint64 {
	return hash.ContentKey(source, name)
}

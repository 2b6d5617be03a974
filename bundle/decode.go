package bundle

import (
	"bytes"
	"fmt"

	"github.com/arloliu/factosave/internal/hash"
	"github.com/arloliu/factosave/mapfile"
	"github.com/arloliu/factosave/migration"
	"github.com/arloliu/factosave/replay"
	"github.com/arloliu/factosave/script"
)

// Decoded holds the decoded blobs of a bundle. Fields of absent blobs are nil.
type Decoded struct {
	LevelInit *mapfile.File
	Level     *mapfile.File
	Replay    *replay.Log
	Script    *script.State
}

// Session returns the content session replay actions refer to: the one of
// level-init.dat when present, else the one of level.dat.
func (d *Decoded) Session() (*migration.Session, error) {
	switch {
	case d.LevelInit != nil:
		return d.LevelInit.Session()
	case d.Level != nil:
		return d.Level.Session()
	default:
		return nil, fmt.Errorf("%w: %s", ErrMissingBlob, LevelName)
	}
}

// Decode decodes every present blob of b. Replay content IDs are checked
// against the session of the map blobs.
func Decode(b *Bundle, opts ...Option) (*Decoded, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if b.Level == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingBlob, LevelName)
	}

	d := &Decoded{}
	if b.LevelInit != nil {
		if d.LevelInit, err = mapfile.Decode(b.LevelInit, cfg.mapOptions...); err != nil {
			return nil, fmt.Errorf("%s: %w", LevelInitName, err)
		}
	}
	if d.Level, err = mapfile.Decode(b.Level, cfg.mapOptions...); err != nil {
		return nil, fmt.Errorf("%s: %w", LevelName, err)
	}
	if b.Replay != nil {
		session, err := d.Session()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ReplayName, err)
		}
		if d.Replay, err = replay.Decode(b.Replay, replay.WithResolver(session)); err != nil {
			return nil, fmt.Errorf("%s: %w", ReplayName, err)
		}
	}
	if b.Script != nil {
		if d.Script, err = script.Decode(b.Script, cfg.scriptOptions...); err != nil {
			return nil, fmt.Errorf("%s: %w", ScriptName, err)
		}
	}
	cfg.logger.Debug("bundle decoded", "level_init", d.LevelInit != nil,
		"replay", d.Replay != nil, "script", d.Script != nil)

	return d, nil
}

// Encode encodes every present part of d.
func Encode(d *Decoded, opts ...Option) (*Bundle, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if d.Level == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingBlob, LevelName)
	}

	b := &Bundle{}
	if d.LevelInit != nil {
		if b.LevelInit, err = mapfile.Encode(d.LevelInit); err != nil {
			return nil, fmt.Errorf("%s: %w", LevelInitName, err)
		}
	}
	if b.Level, err = mapfile.Encode(d.Level); err != nil {
		return nil, fmt.Errorf("%s: %w", LevelName, err)
	}
	if d.Replay != nil {
		session, err := d.Session()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ReplayName, err)
		}
		if b.Replay, err = replay.Encode(d.Replay, replay.WithResolver(session)); err != nil {
			return nil, fmt.Errorf("%s: %w", ReplayName, err)
		}
	}
	if d.Script != nil {
		if b.Script, err = script.Encode(d.Script); err != nil {
			return nil, fmt.Errorf("%s: %w", ScriptName, err)
		}
	}
	cfg.logger.Debug("bundle encoded", "level", len(b.Level))

	return b, nil
}

// BlobReport is the verification result of one blob.
type BlobReport struct {
	Name string
	Size int
	// Digest is the xxHash64 of the input blob; Reencoded the one of the
	// re-encoded blob, zero when decoding failed.
	Digest    uint64
	Reencoded uint64
	Identical bool
	Err       error
}

// Report is the verification result of a bundle.
type Report struct {
	Blobs []BlobReport
}

// OK reports whether every present blob decoded and re-encoded to identical
// bytes.
func (r *Report) OK() bool {
	for _, b := range r.Blobs {
		if !b.Identical {
			return false
		}
	}

	return true
}

// Failed returns the reports of blobs that did not round-trip.
func (r *Report) Failed() []BlobReport {
	var out []BlobReport
	for _, b := range r.Blobs {
		if !b.Identical {
			out = append(out, b)
		}
	}

	return out
}

// Verify decodes and re-encodes every present blob independently and
// compares the bytes. A blob that fails does not stop the others; its error
// lands in the report.
//
// Parameters:
//   - b: the raw blobs; absent blobs are skipped
//   - opts: map and script options apply to the round trips
//
// Returns:
//   - *Report: one BlobReport per present blob, in Names order
//   - error: invalid options only
func Verify(b *Bundle, opts ...Option) (*Report, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	var session *migration.Session
	mapRoundTrip := func(data []byte) ([]byte, error) {
		f, err := mapfile.Decode(data, cfg.mapOptions...)
		if err != nil {
			return nil, err
		}
		if session == nil {
			if s, err := f.Session(); err == nil {
				session = s
			}
		}

		return mapfile.Encode(f)
	}
	replayRoundTrip := func(data []byte) ([]byte, error) {
		var ropts []replay.Option
		if session != nil {
			ropts = append(ropts, replay.WithResolver(session))
		}
		l, err := replay.Decode(data, ropts...)
		if err != nil {
			return nil, err
		}

		return replay.Encode(l, ropts...)
	}
	scriptRoundTrip := func(data []byte) ([]byte, error) {
		s, err := script.Decode(data, cfg.scriptOptions...)
		if err != nil {
			return nil, err
		}

		return script.Encode(s)
	}

	steps := []struct {
		name string
		run  func([]byte) ([]byte, error)
	}{
		{LevelInitName, mapRoundTrip},
		{LevelName, mapRoundTrip},
		{ReplayName, replayRoundTrip},
		{ScriptName, scriptRoundTrip},
	}

	report := &Report{}
	for _, step := range steps {
		data, ok := b.Blob(step.name)
		if !ok {
			continue
		}

		br := BlobReport{Name: step.name, Size: len(data), Digest: hash.Digest(data)}
		out, err := step.run(data)
		if err != nil {
			br.Err = err
		} else {
			br.Reencoded = hash.Digest(out)
			br.Identical = bytes.Equal(data, out)
		}
		cfg.logger.Debug("blob verified", "name", br.Name, "size", br.Size,
			"identical", br.Identical, "error", br.Err)
		report.Blobs = append(report.Blobs, br)
	}

	return report, nil
}

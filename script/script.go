// Package script decodes and encodes script-state buffers (script.dat).
//
// The outer layer uses the Generic profile: a version header and a table of
// named entries, one per script that saved state. Each entry carries a
// nested blob in the Map profile that repeats the version header and holds a
// single script value tree.
package script

import (
	"fmt"

	"github.com/arloliu/factosave/codec"
	"github.com/arloliu/factosave/errs"
	"github.com/arloliu/factosave/internal/options"
	"github.com/arloliu/factosave/stream"
	"github.com/arloliu/factosave/version"
)

// State is a decoded script-state buffer.
type State struct {
	Version version.Header
	Scripts []Script
}

// Script is the saved state of one script.
type Script struct {
	Name string
	// Data is the decoded value tree. It is nil when the state was decoded
	// with WithRawBlobs.
	Data Value
	// Raw holds the nested blob verbatim when decoded with WithRawBlobs.
	// Encode writes Raw as is when it is set.
	Raw []byte
	// HadPrior marks a script that carried state from an earlier save.
	HadPrior bool
}

// Lookup returns the script named name.
func (s *State) Lookup(name string) (*Script, bool) {
	for i := range s.Scripts {
		if s.Scripts[i].Name == name {
			return &s.Scripts[i], true
		}
	}

	return nil, false
}

// Config holds the script codec settings.
type Config struct {
	rawBlobs bool
}

// Option configures Decode.
type Option = options.Option[*Config]

// WithRawBlobs keeps each nested blob undecoded after checking its version
// header. Scripts whose value encoding is not modeled still round-trip.
func WithRawBlobs() Option {
	return options.NoError(func(c *Config) {
		c.rawBlobs = true
	})
}

var (
	nameCodec = codec.String
	blobCodec = codec.Blob(codec.LenU32)
)

// Decode parses a script-state buffer.
//
// Parameters:
//   - data: script.dat contents
//   - opts: WithRawBlobs to keep nested blobs undecoded
//
// Returns:
//   - *State: the named scripts with their value trees
//   - error: an *errs.Error; offsets inside nested blobs are relative to data
func Decode(data []byte, opts ...Option) (*State, error) {
	cfg := &Config{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	d := codec.NewDecoder(stream.NewReader(data), codec.GenericProfile)

	var s State
	var err error
	if s.Version, err = version.Codec.Decode(d); err != nil {
		return nil, fmt.Errorf("decode script: %w", errs.InField(err, "version"))
	}

	n, err := codec.LenProfile.Read(d)
	if err != nil {
		return nil, fmt.Errorf("decode script: %w", errs.InField(err, "scripts"))
	}
	if n > 0 {
		s.Scripts = make([]Script, 0, min(n, d.Reader().Remaining()))
	}
	for i := 0; i < n; i++ {
		sc, err := decodeScript(d, s.Version, cfg)
		if err != nil {
			return nil, fmt.Errorf("decode script: %w", errs.InField(errs.InField(err, errs.Index(i)), "scripts"))
		}
		s.Scripts = append(s.Scripts, sc)
	}

	if rest := d.Reader().Remaining(); rest > 0 {
		return nil, fmt.Errorf("decode script: %w", errs.New(d.Offset(), errs.ErrValueOutOfRange, "%d trailing bytes", rest))
	}

	return &s, nil
}

func decodeScript(d *codec.Decoder, outer version.Header, cfg *Config) (Script, error) {
	var sc Script
	var err error
	if sc.Name, err = nameCodec.Decode(d); err != nil {
		return Script{}, errs.InField(err, "name")
	}

	// The blob payload starts after its u32 length.
	base := d.Offset() + 4
	blob, err := blobCodec.Decode(d)
	if err != nil {
		return Script{}, errs.InField(err, "data")
	}
	if cfg.rawBlobs {
		err = checkBlobVersion(blob, outer)
		sc.Raw = blob
	} else {
		sc.Data, err = decodeBlob(blob, outer)
	}
	if err != nil {
		return Script{}, errs.InField(errs.Rebase(err, base), "data")
	}

	if sc.HadPrior, err = codec.Bool.Decode(d); err != nil {
		return Script{}, errs.InField(err, "had_prior")
	}

	return sc, nil
}

func readBlobVersion(d *codec.Decoder, outer version.Header) error {
	v, err := version.Codec.Decode(d)
	if err != nil {
		return errs.InField(err, "version")
	}
	if v != outer {
		return errs.InField(errs.Mismatch(0, errs.ErrVersionMismatch, outer, v), "version")
	}

	return nil
}

func checkBlobVersion(blob []byte, outer version.Header) error {
	return readBlobVersion(codec.NewDecoder(stream.NewReader(blob), codec.MapProfile), outer)
}

func decodeBlob(blob []byte, outer version.Header) (Value, error) {
	r := stream.NewReader(blob)
	d := codec.NewDecoder(r, codec.MapProfile)
	if err := readBlobVersion(d, outer); err != nil {
		return nil, err
	}

	v, err := valueCodec.Decode(d)
	if err != nil {
		return nil, errs.InField(err, "value")
	}
	if !r.EOF() {
		return nil, errs.New(r.Offset(), errs.ErrValueOutOfRange, "%d bytes after script value", r.Remaining())
	}

	return v, nil
}

// Encode serializes s. Every nested blob repeats s.Version.
func Encode(s *State) ([]byte, error) {
	w := stream.NewWriter()
	e := codec.NewEncoder(w, codec.GenericProfile)

	if err := version.Codec.Encode(e, s.Version); err != nil {
		w.Release()
		return nil, fmt.Errorf("encode script: %w", errs.InField(err, "version"))
	}
	if err := codec.LenProfile.Write(e, len(s.Scripts)); err != nil {
		w.Release()
		return nil, fmt.Errorf("encode script: %w", errs.InField(err, "scripts"))
	}
	for i := range s.Scripts {
		if err := encodeScript(e, s.Version, &s.Scripts[i]); err != nil {
			w.Release()
			return nil, fmt.Errorf("encode script: %w", errs.InField(errs.InField(err, errs.Index(i)), "scripts"))
		}
	}

	return w.Finish(), nil
}

func encodeScript(e *codec.Encoder, outer version.Header, sc *Script) error {
	if err := nameCodec.Encode(e, sc.Name); err != nil {
		return errs.InField(err, "name")
	}

	blob := sc.Raw
	if blob == nil {
		var err error
		if blob, err = encodeBlob(outer, sc.Data); err != nil {
			return errs.InField(errs.Rebase(err, e.Offset()+4), "data")
		}
	}
	if err := blobCodec.Encode(e, blob); err != nil {
		return errs.InField(err, "data")
	}

	if err := codec.Bool.Encode(e, sc.HadPrior); err != nil {
		return errs.InField(err, "had_prior")
	}

	return nil
}

func encodeBlob(outer version.Header, v Value) ([]byte, error) {
	if v == nil {
		return nil, errs.New(0, errs.ErrUnknownTag, "script without data")
	}

	w := stream.NewWriter()
	e := codec.NewEncoder(w, codec.MapProfile)
	if err := version.Codec.Encode(e, outer); err != nil {
		w.Release()
		return nil, errs.InField(err, "version")
	}
	if err := valueCodec.Encode(e, v); err != nil {
		w.Release()
		return nil, errs.InField(err, "value")
	}

	return w.Finish(), nil
}

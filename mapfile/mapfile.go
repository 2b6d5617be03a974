// Package mapfile decodes and encodes map buffers (level.dat and
// level-init.dat): a version header, the world tree in the Map profile and
// a trailing region that is kept verbatim.
//
// Content IDs inside the world are resolved against the prototype tables
// decoded earlier in the same buffer; an ID the tables never introduced is
// errs.ErrUnknownContentID.
package mapfile

import (
	"fmt"

	"github.com/arloliu/factosave/codec"
	"github.com/arloliu/factosave/errs"
	"github.com/arloliu/factosave/internal/options"
	"github.com/arloliu/factosave/migration"
	"github.com/arloliu/factosave/stream"
	"github.com/arloliu/factosave/version"
)

func init() {
	entityUnion.MustValidate(EntityKinds...)
	modifierUnion.MustValidate(ModifierKinds...)
	ingredientUnion.MustValidate(IngredientKinds...)
	productUnion.MustValidate(ProductKinds...)
	achievementUnion.MustValidate(AchievementKinds...)
}

// File is a decoded map buffer.
type File struct {
	Version version.Header
	World   World
	// Trailing holds the unparsed bytes after the world tree.
	Trailing []byte
}

// Session indexes the prototype tables of the file.
func (f *File) Session() (*migration.Session, error) {
	return f.World.Prototypes.Session()
}

// Config holds the decode settings.
type Config struct {
	trailingLimit int
	minVersion    version.Header
}

// Option configures Decode.
type Option = options.Option[*Config]

// WithTrailingLimit rejects buffers with more than n trailing bytes. A
// negative n disables the check, which is the default.
func WithTrailingLimit(n int) Option {
	return options.NoError(func(c *Config) {
		c.trailingLimit = n
	})
}

// WithMinVersion rejects buffers written by a version older than h.
func WithMinVersion(h version.Header) Option {
	return options.NoError(func(c *Config) {
		c.minVersion = h
	})
}

// Decode parses a map buffer.
//
// Parameters:
//   - data: level.dat or level-init.dat contents, already extracted from the container
//   - opts: decode options (WithTrailingLimit, WithMinVersion)
//
// Returns:
//   - *File: the decoded tree; Trailing aliases data
//   - error: an *errs.Error carrying the offset and field path of the failure
func Decode(data []byte, opts ...Option) (*File, error) {
	cfg := &Config{trailingLimit: -1}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	r := stream.NewReader(data)
	d := codec.NewDecoder(r, codec.MapProfile)

	var f File
	var err error
	if f.Version, err = version.Codec.Decode(d); err != nil {
		return nil, fmt.Errorf("decode map: %w", errs.InField(err, "version"))
	}
	if !f.Version.AtLeast(cfg.minVersion) {
		return nil, fmt.Errorf("decode map: %w", errs.InField(
			errs.Mismatch(0, errs.ErrValueOutOfRange, "at least "+cfg.minVersion.String(), f.Version), "version"))
	}

	if f.World, err = worldCodec.Decode(d); err != nil {
		return nil, fmt.Errorf("decode map: %w", errs.InField(err, "world"))
	}

	if cfg.trailingLimit >= 0 && r.Remaining() > cfg.trailingLimit {
		return nil, fmt.Errorf("decode map: %w",
			errs.New(r.Offset(), errs.ErrValueOutOfRange, "%d trailing bytes, limit %d", r.Remaining(), cfg.trailingLimit))
	}
	f.Trailing = r.Rest()

	return &f, nil
}

// Encode serializes f. For a File produced by Decode the result equals the
// decoded bytes.
func Encode(f *File) ([]byte, error) {
	w := stream.NewMapWriter()
	e := codec.NewEncoder(w, codec.MapProfile)

	if err := version.Codec.Encode(e, f.Version); err != nil {
		w.Release()
		return nil, fmt.Errorf("encode map: %w", errs.InField(err, "version"))
	}
	if err := worldCodec.Encode(e, f.World); err != nil {
		w.Release()
		return nil, fmt.Errorf("encode map: %w", errs.InField(err, "world"))
	}
	w.WriteBytes(f.Trailing)

	return w.Finish(), nil
}

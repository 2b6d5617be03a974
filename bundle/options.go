package bundle

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/factosave/compress"
	"github.com/arloliu/factosave/format"
	"github.com/arloliu/factosave/internal/options"
	"github.com/arloliu/factosave/mapfile"
	"github.com/arloliu/factosave/script"
)

// Config holds the bundle settings.
type Config struct {
	compression   format.CompressionType
	chunkSize     int
	logger        *slog.Logger
	mapOptions    []mapfile.Option
	scriptOptions []script.Option
}

// Option configures bundle operations.
type Option = options.Option[*Config]

func newConfig(opts []Option) (*Config, error) {
	cfg := &Config{
		compression: format.CompressionNone,
		logger:      defaultLogger,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithCompression sets the compression of blob files on disk. The default
// is none.
func WithCompression(ct format.CompressionType) Option {
	return options.New(func(c *Config) error {
		if _, err := compress.GetCodec(ct); err != nil {
			return err
		}
		c.compression = ct

		return nil
	})
}

// WithChunkSize writes level.dat as zlib chunks of at most n uncompressed
// bytes each.
func WithChunkSize(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("invalid chunk size %d", n)
		}
		c.chunkSize = n

		return nil
	})
}

// WithLogger sets the logger for debug output about blob sizes and
// compression. Without it nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return options.New(func(c *Config) error {
		if l == nil {
			return fmt.Errorf("nil logger")
		}
		c.logger = l

		return nil
	})
}

// WithMapOptions passes opts to mapfile.Decode for both map blobs.
func WithMapOptions(opts ...mapfile.Option) Option {
	return options.NoError(func(c *Config) {
		c.mapOptions = append(c.mapOptions, opts...)
	})
}

// WithScriptOptions passes opts to script.Decode.
func WithScriptOptions(opts ...script.Option) Option {
	return options.NoError(func(c *Config) {
		c.scriptOptions = append(c.scriptOptions, opts...)
	})
}

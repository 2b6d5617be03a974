// Package config loads the YAML configuration of the savecheck tool.
//
// Defaults come from Default; a file only needs the keys it changes.
// Unknown keys are rejected so typos do not silently fall back to defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/factosave/bundle"
	"github.com/arloliu/factosave/format"
	"github.com/arloliu/factosave/mapfile"
	"github.com/arloliu/factosave/script"
	"github.com/arloliu/factosave/version"
)

// Config is the savecheck configuration.
type Config struct {
	// Bundle configures how blobs are stored on disk.
	Bundle BundleConfig `yaml:"bundle"`

	// Decode configures the format decoders.
	Decode DecodeConfig `yaml:"decode"`

	// Log configures diagnostic output.
	Log LogConfig `yaml:"log"`
}

// BundleConfig configures bundle storage.
type BundleConfig struct {
	// Compression of blob files: none, zlib, zstd, s2 or lz4.
	// Default: none
	Compression string `yaml:"compression"`

	// ChunkSize writes level.dat as zlib chunks of this many bytes when
	// positive. Default: 0 (single file)
	ChunkSize int `yaml:"chunk_size"`
}

// DecodeConfig configures the decoders.
type DecodeConfig struct {
	// TrailingLimit rejects map buffers with more trailing bytes.
	// Default: -1 (no limit)
	TrailingLimit int `yaml:"trailing_limit"`

	// MinVersion rejects map buffers written by an older game, as
	// "major.minor.patch". Default: "" (any)
	MinVersion string `yaml:"min_version"`

	// RawScripts keeps script blobs undecoded. Default: false
	RawScripts bool `yaml:"raw_scripts"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error. Default: info
	Level string `yaml:"level"`

	// Format is text or json. Default: text
	Format string `yaml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Bundle: BundleConfig{Compression: "none"},
		Decode: DecodeConfig{TrailingLimit: -1},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// LoadFile reads the configuration at path on top of the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Parse reads a YAML document on top of the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every enumerated and parsed value.
func (c *Config) Validate() error {
	if _, ok := format.ParseCompressionType(c.Bundle.Compression); !ok {
		return fmt.Errorf("bundle.compression: unknown value %q", c.Bundle.Compression)
	}
	if c.Bundle.ChunkSize < 0 {
		return fmt.Errorf("bundle.chunk_size: must not be negative, got %d", c.Bundle.ChunkSize)
	}
	if c.Decode.MinVersion != "" {
		if _, err := version.Parse(c.Decode.MinVersion); err != nil {
			return fmt.Errorf("decode.min_version: %w", err)
		}
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown value %q", c.Log.Format)
	}

	return nil
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}

	return level, nil
}

// NewLogger builds the logger described by the log section.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.LogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}

	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// BundleOptions translates the configuration into bundle options.
func (c *Config) BundleOptions() ([]bundle.Option, error) {
	ct, ok := format.ParseCompressionType(c.Bundle.Compression)
	if !ok {
		return nil, fmt.Errorf("bundle.compression: unknown value %q", c.Bundle.Compression)
	}

	opts := []bundle.Option{bundle.WithCompression(ct)}
	if c.Bundle.ChunkSize > 0 {
		opts = append(opts, bundle.WithChunkSize(c.Bundle.ChunkSize))
	}

	mapOpts := []mapfile.Option{mapfile.WithTrailingLimit(c.Decode.TrailingLimit)}
	if c.Decode.MinVersion != "" {
		v, err := version.Parse(c.Decode.MinVersion)
		if err != nil {
			return nil, fmt.Errorf("decode.min_version: %w", err)
		}
		mapOpts = append(mapOpts, mapfile.WithMinVersion(v))
	}
	opts = append(opts, bundle.WithMapOptions(mapOpts...))

	if c.Decode.RawScripts {
		opts = append(opts, bundle.WithScriptOptions(script.WithRawBlobs()))
	}

	return opts, nil
}

// Package bundle groups the four named blobs of one save and moves them
// between a directory and the format decoders.
//
// A save container holds level-init.dat, level.dat, replay.dat and
// script.dat. level.dat may be stored as zlib chunks named level.dat0,
// level.dat1 and so on, which are inflated and concatenated on load.
// Bundle blobs always hold the uncompressed buffers.
package bundle

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/arloliu/factosave/compress"
	"github.com/arloliu/factosave/format"
	"github.com/arloliu/factosave/internal/hash"
)

// Blob names inside a save container.
const (
	LevelInitName = "level-init.dat"
	LevelName     = "level.dat"
	ReplayName    = "replay.dat"
	ScriptName    = "script.dat"
)

// Names lists the blob names in container order.
var Names = []string{LevelInitName, LevelName, ReplayName, ScriptName}

// ErrMissingBlob is returned when a required blob is absent.
var ErrMissingBlob = errors.New("missing blob")

// Bundle holds the uncompressed blobs of one save. Absent blobs are nil;
// only Level is required.
type Bundle struct {
	LevelInit []byte
	Level     []byte
	Replay    []byte
	Script    []byte
}

// Blob returns the blob called name.
func (b *Bundle) Blob(name string) ([]byte, bool) {
	switch name {
	case LevelInitName:
		return b.LevelInit, b.LevelInit != nil
	case LevelName:
		return b.Level, b.Level != nil
	case ReplayName:
		return b.Replay, b.Replay != nil
	case ScriptName:
		return b.Script, b.Script != nil
	default:
		return nil, false
	}
}

// SetBlob stores data under name.
func (b *Bundle) SetBlob(name string, data []byte) error {
	switch name {
	case LevelInitName:
		b.LevelInit = data
	case LevelName:
		b.Level = data
	case ReplayName:
		b.Replay = data
	case ScriptName:
		b.Script = data
	default:
		return fmt.Errorf("unknown blob name %q", name)
	}

	return nil
}

// Digest returns the xxHash64 of the blob called name, or 0 when absent.
func (b *Bundle) Digest(name string) uint64 {
	data, ok := b.Blob(name)
	if !ok {
		return 0
	}

	return hash.Digest(data)
}

// ReadDir loads a bundle from fsys. Blob files are decompressed with the
// configured compression; chunked level.dat files are always zlib.
func ReadDir(fsys fs.FS, opts ...Option) (*Bundle, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	b := &Bundle{}
	for _, name := range Names {
		data, err := readBlob(fsys, name, cfg)
		if errors.Is(err, fs.ErrNotExist) {
			if name == LevelName {
				return nil, fmt.Errorf("%w: %s", ErrMissingBlob, name)
			}
			cfg.logger.Debug("blob absent", "name", name)

			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		_ = b.SetBlob(name, data)
	}

	return b, nil
}

func readBlob(fsys fs.FS, name string, cfg *Config) ([]byte, error) {
	if name == LevelName {
		chunks, err := readChunks(fsys)
		if err != nil {
			return nil, err
		}
		if len(chunks) > 0 {
			data, err := JoinChunks(chunks)
			if err != nil {
				return nil, err
			}
			cfg.logger.Debug("blob loaded", "name", name, "chunks", len(chunks), "size", len(data))

			return data, nil
		}
	}

	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	data, err := compress.Decompress(cfg.compression, raw)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	cfg.logger.Debug("blob loaded", "name", name, "compression", cfg.compression, "stored", len(raw), "size", len(data))

	return data, nil
}

func chunkName(i int) string {
	return LevelName + strconv.Itoa(i)
}

func readChunks(fsys fs.FS) ([][]byte, error) {
	var chunks [][]byte
	for i := 0; ; i++ {
		data, err := fs.ReadFile(fsys, chunkName(i))
		if errors.Is(err, fs.ErrNotExist) {
			return chunks, nil
		}
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, data)
	}
}

// WriteDir stores b under dir, creating it if needed. Blobs are compressed
// with the configured compression. With WithChunkSize, level.dat is written
// as zlib chunks instead.
func WriteDir(dir string, b *Bundle, opts ...Option) error {
	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}
	if b.Level == nil {
		return fmt.Errorf("%w: %s", ErrMissingBlob, LevelName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, name := range Names {
		data, ok := b.Blob(name)
		if !ok {
			continue
		}
		if name == LevelName && cfg.chunkSize > 0 {
			if err := writeChunks(dir, data, cfg); err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}

			continue
		}

		out, stats, err := compress.Compress(cfg.compression, data)
		if err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), out, 0o644); err != nil { //nolint:gosec
			return fmt.Errorf("write %s: %w", name, err)
		}
		cfg.logger.Debug("blob stored", "name", name, "compression", cfg.compression,
			"size", stats.OriginalSize, "stored", stats.CompressedSize, "ratio", stats.Ratio())
	}

	return nil
}

func writeChunks(dir string, data []byte, cfg *Config) error {
	chunks, err := SplitChunks(data, cfg.chunkSize)
	if err != nil {
		return err
	}
	for i, c := range chunks {
		if err := os.WriteFile(filepath.Join(dir, chunkName(i)), c, 0o644); err != nil { //nolint:gosec
			return err
		}
	}
	cfg.logger.Debug("blob stored", "name", LevelName, "compression", format.CompressionZlib,
		"size", len(data), "chunks", len(chunks))

	return nil
}

// SplitChunks cuts data into pieces of at most size bytes and zlib
// compresses each one, the layout of chunked level.dat files.
func SplitChunks(data []byte, size int) ([][]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid chunk size %d", size)
	}

	codec := compress.NewZlibCompressor()
	chunks := make([][]byte, 0, len(data)/size+1)
	for start := 0; ; start += size {
		end := min(start+size, len(data))
		c, err := codec.Compress(data[start:end])
		if err != nil {
			return nil, err
		}
		if c == nil {
			// An empty level still needs one valid stream.
			c = append([]byte(nil), emptyZlib...)
		}
		chunks = append(chunks, c)
		if end == len(data) {
			break
		}
	}

	return chunks, nil
}

// JoinChunks inflates each zlib chunk and concatenates the results.
func JoinChunks(chunks [][]byte) ([]byte, error) {
	codec := compress.NewZlibCompressor()

	var out []byte
	for i, c := range chunks {
		data, err := codec.Decompress(c)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		if len(out)+len(data) > compress.MaxDecompressedSize {
			return nil, fmt.Errorf("chunk %d: %w", i, compress.ErrTooLarge)
		}
		out = append(out, data...)
	}
	if out == nil {
		out = []byte{}
	}

	return out, nil
}

// emptyZlib is a zlib stream with no payload.
var emptyZlib = []byte{0x78, 0x9C, 0x03, 0x00, 0x00, 0x00, 0x00, 0x01}

// defaultLogger discards everything; library code stays silent unless the
// caller passes WithLogger.
var defaultLogger = slog.New(slog.DiscardHandler)

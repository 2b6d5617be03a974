package compress

import (
	"errors"
	"fmt"

	"github.com/arloliu/factosave/format"
)

// MaxDecompressedSize bounds the output of codecs that cannot learn the
// decompressed size up front. Decoded map snapshots stay well below it.
const MaxDecompressedSize = 1 << 30

// ErrTooLarge is returned when decompressed output would exceed
// MaxDecompressedSize.
var ErrTooLarge = errors.New("decompressed size exceeds limit")

// Compressor compresses one blob.
type Compressor interface {
	// Compress returns a newly allocated compressed copy of data. Empty input
	// compresses to nil.
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor of the same algorithm.
//
// Decompress validates the input and returns an error for corrupt data or
// data produced by another algorithm. Empty input decompresses to nil.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// Stats describes one compression, for logging.
type Stats struct {
	Algorithm      format.CompressionType
	OriginalSize   int
	CompressedSize int
}

// Ratio returns compressed size / original size, or 0 for empty input.
func (s Stats) Ratio() float64 {
	if s.OriginalSize == 0 {
		return 0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the saved space in percent.
func (s Stats) SpaceSavings() float64 {
	if s.OriginalSize == 0 {
		return 0
	}

	return (1 - s.Ratio()) * 100
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZlib: NewZlibCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the built-in codec for compressionType.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}

// Compress compresses data with the built-in codec for compressionType and
// reports the sizes.
func Compress(compressionType format.CompressionType, data []byte) ([]byte, Stats, error) {
	stats := Stats{Algorithm: compressionType, OriginalSize: len(data)}

	codec, err := GetCodec(compressionType)
	if err != nil {
		return nil, stats, err
	}
	out, err := codec.Compress(data)
	if err != nil {
		return nil, stats, fmt.Errorf("%s compression failed: %w", compressionType, err)
	}
	stats.CompressedSize = len(out)

	return out, stats, nil
}

// Decompress reverses Compress.
func Decompress(compressionType format.CompressionType, data []byte) ([]byte, error) {
	codec, err := GetCodec(compressionType)
	if err != nil {
		return nil, err
	}
	out, err := codec.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("%s decompression failed: %w", compressionType, err)
	}

	return out, nil
}

package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// ZlibCompressor uses zlib streams, the codec of chunked level.dat entries.
type ZlibCompressor struct {
	level int
}

var _ Codec = (*ZlibCompressor)(nil)

// NewZlibCompressor creates a zlib codec at the default level.
func NewZlibCompressor() ZlibCompressor {
	return ZlibCompressor{level: zlib.DefaultCompression}
}

// NewZlibCompressorLevel creates a zlib codec at level, one of the
// zlib.*Compression constants.
func NewZlibCompressorLevel(level int) (ZlibCompressor, error) {
	if level < zlib.HuffmanOnly || level > zlib.BestCompression {
		return ZlibCompressor{}, fmt.Errorf("invalid zlib level %d", level)
	}

	return ZlibCompressor{level: level}, nil
}

// Compress compresses data into one zlib stream.
func (c ZlibCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress inflates one zlib stream and verifies its checksum.
func (c ZlibCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, MaxDecompressedSize+1))
	if err != nil {
		return nil, err
	}
	if len(out) > MaxDecompressedSize {
		return nil, ErrTooLarge
	}

	return out, nil
}

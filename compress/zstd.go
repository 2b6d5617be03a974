package compress

// ZstdCompressor uses Zstandard frames. The implementation is selected at
// build time, see the package documentation.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a zstd codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

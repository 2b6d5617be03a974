// Package compress provides the compression codecs applied to save bundle
// blobs.
//
// Save containers store level.dat as zlib chunks, so zlib is the codec the
// format itself uses. The other codecs exist for tooling that keeps decoded
// bundles on disk or ships them across the network:
//   - None: bytes pass through unchanged
//   - Zlib: the container's own codec
//   - Zstd: best ratio, moderate speed
//   - S2: balanced ratio and speed
//   - LZ4: fastest decompression
//
// Codecs are looked up by format.CompressionType:
//
//	c, err := compress.GetCodec(format.CompressionZlib)
//	if err != nil {
//	    return err
//	}
//	raw, err := c.Decompress(chunk)
//
// Every codec is stateless or pools its internal state and is safe for
// concurrent use.
//
// The zstd codec uses the pure Go klauspost/compress implementation. Build
// with the gozstd tag and cgo enabled to switch to the libzstd binding.
package compress

package compress

import (
	"bytes"
	"sync"
	"testing"

	"github.com/arloliu/factosave/format"
	"github.com/stretchr/testify/require"
)

func allCodecs() map[format.CompressionType]Codec {
	out := make(map[format.CompressionType]Codec, len(builtinCodecs))
	for k, v := range builtinCodecs {
		out[k] = v
	}

	return out
}

func testPayloads() map[string][]byte {
	semi := make([]byte, 4096)
	for i := range semi {
		if i%100 < 50 {
			semi[i] = byte(i % 256)
		} else {
			semi[i] = byte((i*7 + i*i) % 256)
		}
	}

	return map[string][]byte{
		"single_byte": {0x42},
		"header":      {0x01, 0x00, 0x01, 0x00, 0x6E, 0x00, 0x00, 0x00, 0x00},
		"strings":     bytes.Repeat([]byte("\x0airon-plate\x0ccopper-plate"), 200),
		"semi_random": semi,
		"zeros":       make([]byte, 1<<20),
	}
}

func TestGetCodec(t *testing.T) {
	for _, ct := range []format.CompressionType{
		format.CompressionNone, format.CompressionZlib, format.CompressionZstd,
		format.CompressionS2, format.CompressionLZ4,
	} {
		c, err := GetCodec(ct)
		require.NoError(t, err, ct.String())
		require.NotNil(t, c)
	}

	_, err := GetCodec(format.CompressionType(0x7F))
	require.ErrorContains(t, err, "unsupported compression type")
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for ct, c := range allCodecs() {
		t.Run(ct.String(), func(t *testing.T) {
			out, err := c.Compress(nil)
			require.NoError(t, err)
			require.Nil(t, out)

			out, err = c.Compress([]byte{})
			require.NoError(t, err)
			require.Nil(t, out)

			out, err = c.Decompress(nil)
			require.NoError(t, err)
			require.Nil(t, out)
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	for ct, c := range allCodecs() {
		t.Run(ct.String(), func(t *testing.T) {
			for name, data := range testPayloads() {
				compressed, err := c.Compress(data)
				require.NoError(t, err, name)
				require.NotEmpty(t, compressed, name)

				out, err := c.Decompress(compressed)
				require.NoError(t, err, name)
				require.Equal(t, data, out, name)
			}
		})
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	inputs := [][]byte{
		{0xFF, 0xFF, 0xFF, 0xFF},
		[]byte("this is not compressed data"),
	}

	for ct, c := range allCodecs() {
		if ct == format.CompressionNone {
			continue
		}
		t.Run(ct.String(), func(t *testing.T) {
			for _, in := range inputs {
				_, err := c.Decompress(in)
				require.Error(t, err, "%x", in)
			}
		})
	}
}

func TestAllCodecs_Concurrent(t *testing.T) {
	data := bytes.Repeat([]byte("nauvis"), 500)

	for ct, c := range allCodecs() {
		t.Run(ct.String(), func(t *testing.T) {
			var wg sync.WaitGroup
			errs := make(chan error, 16)
			for range 16 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					compressed, err := c.Compress(data)
					if err != nil {
						errs <- err
						return
					}
					out, err := c.Decompress(compressed)
					if err == nil && !bytes.Equal(out, data) {
						err = ErrTooLarge
					}
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}
		})
	}
}

func TestLZ4_LargeExpansion(t *testing.T) {
	data := make([]byte, 4<<20)
	c := NewLZ4Compressor()

	compressed, err := c.Compress(data)
	require.NoError(t, err)
	require.Less(t, len(compressed)*4, len(data))

	out, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestZlibCompressorLevel(t *testing.T) {
	c, err := NewZlibCompressorLevel(9)
	require.NoError(t, err)

	data := bytes.Repeat([]byte("level.dat"), 100)
	compressed, err := c.Compress(data)
	require.NoError(t, err)
	require.Equal(t, byte(0x78), compressed[0], "zlib stream header")

	out, err := NewZlibCompressor().Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, out)

	_, err = NewZlibCompressorLevel(42)
	require.Error(t, err)
}

func TestCompress_Stats(t *testing.T) {
	data := make([]byte, 10000)

	out, stats, err := Compress(format.CompressionZlib, data)
	require.NoError(t, err)
	require.Equal(t, len(data), stats.OriginalSize)
	require.Equal(t, len(out), stats.CompressedSize)
	require.Less(t, stats.Ratio(), 0.1)
	require.Greater(t, stats.SpaceSavings(), 90.0)

	back, err := Decompress(format.CompressionZlib, out)
	require.NoError(t, err)
	require.Equal(t, data, back)

	require.Zero(t, Stats{}.Ratio())
	require.Zero(t, Stats{}.SpaceSavings())

	_, err = Decompress(format.CompressionS2, []byte{0xFF, 0xFF})
	require.ErrorContains(t, err, "S2 decompression failed")
}

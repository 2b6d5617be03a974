package compress

import (
	"bytes"
	"testing"
)

func BenchmarkAllCodecs_Compress(b *testing.B) {
	data := bytes.Repeat([]byte("\x0airon-plate\x0ccopper-plate"), 4096)

	for ct, c := range allCodecs() {
		b.Run(ct.String(), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for b.Loop() {
				_, _ = c.Compress(data)
			}
		})
	}
}

func BenchmarkAllCodecs_Decompress(b *testing.B) {
	data := bytes.Repeat([]byte("\x0airon-plate\x0ccopper-plate"), 4096)

	for ct, c := range allCodecs() {
		compressed, err := c.Compress(data)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(ct.String(), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for b.Loop() {
				_, _ = c.Decompress(compressed)
			}
		})
	}
}

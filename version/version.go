// Package version implements the version header that opens map and script
// buffers.
package version

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/factosave/codec"
)

// Header is the game version a buffer was written by.
type Header struct {
	Major   uint16
	Minor   uint16
	Patch   uint16
	Dev     uint16
	Quality bool
}

// Ordinal packs the four components into one comparable number.
func (h Header) Ordinal() uint64 {
	return uint64(h.Major)<<48 | uint64(h.Minor)<<32 | uint64(h.Patch)<<16 | uint64(h.Dev)
}

// FromOrdinal unpacks an ordinal; Quality is left false.
func FromOrdinal(o uint64) Header {
	return Header{
		Major: uint16(o >> 48),
		Minor: uint16(o >> 32),
		Patch: uint16(o >> 16),
		Dev:   uint16(o),
	}
}

// Compare orders headers by ordinal. Quality does not take part.
func (h Header) Compare(o Header) int {
	return cmp.Compare(h.Ordinal(), o.Ordinal())
}

// AtLeast reports whether h is o or newer.
func (h Header) AtLeast(o Header) bool {
	return h.Compare(o) >= 0
}

func (h Header) String() string {
	return fmt.Sprintf("%d.%d.%d-%d", h.Major, h.Minor, h.Patch, h.Dev)
}

// Parse reads "major.minor.patch" with an optional "-dev" suffix, the
// format String produces.
func Parse(s string) (Header, error) {
	base, dev, hasDev := strings.Cut(s, "-")
	parts := strings.Split(base, ".")
	if len(parts) != 3 {
		return Header{}, fmt.Errorf("invalid version %q", s)
	}
	if hasDev {
		parts = append(parts, dev)
	}

	var out [4]uint16
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return Header{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		out[i] = uint16(n)
	}

	return Header{Major: out[0], Minor: out[1], Patch: out[2], Dev: out[3]}, nil
}

// Codec reads four u16 components followed by the quality flag.
var Codec = codec.NewStruct("Version",
	codec.Plain("major", func(h *Header) *uint16 { return &h.Major }, codec.U16),
	codec.Plain("minor", func(h *Header) *uint16 { return &h.Minor }, codec.U16),
	codec.Plain("patch", func(h *Header) *uint16 { return &h.Patch }, codec.U16),
	codec.Plain("dev", func(h *Header) *uint16 { return &h.Dev }, codec.U16),
	codec.Plain("quality", func(h *Header) *bool { return &h.Quality }, codec.Bool),
)

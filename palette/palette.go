// Package palette implements the palette-compressed pixel blocks used by
// surface chart data. A block covers 32×32 cells and is stored as a list
// of runs, each either introducing a new color or reusing an index of the
// block's palette.
package palette

import (
	"fmt"

	"github.com/arloliu/factosave/codec"
	"github.com/arloliu/factosave/errs"
)

const (
	// Side is the edge length of a block in cells.
	Side = 32
	// Cells is the number of cells every block covers.
	Cells = Side * Side
	// Overflow is the index of a new color that does not enter the palette.
	// It marks a block with more colors than the palette can hold.
	Overflow = 0xFF
)

// RGB is a chart color.
type RGB struct {
	R, G, B uint8
}

// Run is one command of a block. New runs carry their color on the wire;
// other runs reference Index of the palette built so far and have Color
// filled in on decode.
type Run struct {
	Index  uint8
	Color  RGB
	Length uint16
	New    bool
}

// Block is one 32×32 chart tile.
type Block struct {
	Runs []Run
}

// Palette returns the colors the block introduces, by index.
func (b Block) Palette() []RGB {
	var colors []RGB
	for _, r := range b.Runs {
		if r.New && r.Index != Overflow {
			colors = append(colors, r.Color)
		}
	}

	return colors
}

// Pixels expands the runs into row-major cells. Runs beyond Cells are
// ignored.
func (b Block) Pixels() [Cells]RGB {
	var px [Cells]RGB
	i := 0
	for _, r := range b.Runs {
		for n := 0; n < int(r.Length) && i < Cells; n++ {
			px[i] = r.Color
			i++
		}
	}

	return px
}

// Fill returns a block of one color.
func Fill(c RGB) Block {
	return Block{Runs: []Run{{Index: 0, Color: c, Length: Cells, New: true}}}
}

// Codec reads and writes a Block. Decoding stops once the runs cover
// exactly Cells cells; overshooting is errs.ErrPaletteRunLength.
var Codec = codec.New(decode, encode)

func decode(d *codec.Decoder) (Block, error) {
	var (
		b       Block
		palette []RGB
		total   int
	)

	for total < Cells {
		start := d.Offset()
		idx, err := codec.U8.Decode(d)
		if err != nil {
			return Block{}, err
		}

		run := Run{Index: idx}
		if int(idx) < len(palette) {
			run.Color = palette[idx]
		} else {
			run.New = true
			if run.Color, err = readRGB(d); err != nil {
				return Block{}, err
			}
			if idx != Overflow {
				palette = append(palette, run.Color)
			}
		}

		if run.Length, err = codec.U16.Decode(d); err != nil {
			return Block{}, err
		}
		total += int(run.Length)
		if total > Cells {
			return Block{}, errs.Mismatch(start, errs.ErrPaletteRunLength, Cells, total)
		}
		b.Runs = append(b.Runs, run)
	}

	return b, nil
}

func encode(e *codec.Encoder, b Block) error {
	if err := b.Validate(); err != nil {
		return &errs.Error{Offset: e.Offset(), Err: err}
	}

	for _, r := range b.Runs {
		if err := codec.U8.Encode(e, r.Index); err != nil {
			return err
		}
		if r.New {
			writeRGB(e, r.Color)
		}
		if err := codec.U16.Encode(e, r.Length); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks that the runs cover exactly Cells cells and that every
// run's kind agrees with the palette size at that point, which is what
// makes the block re-decode to itself.
func (b Block) Validate() error {
	size, total := 0, 0
	for i, r := range b.Runs {
		switch {
		case !r.New && int(r.Index) >= size:
			return fmt.Errorf("%w: run %d references index %d of %d colors", errs.ErrPaletteIndex, i, r.Index, size)
		case r.New && int(r.Index) < size:
			return fmt.Errorf("%w: run %d introduces index %d already in the palette", errs.ErrPaletteIndex, i, r.Index)
		case r.New && r.Index != Overflow:
			size++
		}
		total += int(r.Length)
		if total >= Cells && i != len(b.Runs)-1 {
			return fmt.Errorf("%w: %d runs follow the last cell", errs.ErrPaletteRunLength, len(b.Runs)-1-i)
		}
	}
	if total != Cells {
		return fmt.Errorf("%w: expected %d, got %d", errs.ErrPaletteRunLength, Cells, total)
	}

	return nil
}

func readRGB(d *codec.Decoder) (RGB, error) {
	var c RGB
	for _, ch := range []*uint8{&c.R, &c.G, &c.B} {
		v, err := codec.U8.Decode(d)
		if err != nil {
			return RGB{}, err
		}
		*ch = v
	}

	return c, nil
}

func writeRGB(e *codec.Encoder, c RGB) {
	w := e.Writer()
	w.WriteU8(c.R)
	w.WriteU8(c.G)
	w.WriteU8(c.B)
}

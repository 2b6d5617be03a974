// Package fixed implements the fixed-point coordinates used by map and
// replay data. Arithmetic operates on the raw integers, so values
// round-trip exactly.
package fixed

import (
	"fmt"
	"math"
)

// Scale is the number of raw units per tile.
const Scale = 256

// Fixed32 is a signed fixed-point value in units of 1/256 tile.
type Fixed32 int32

// FromFloat converts a tile coordinate to Fixed32, rounding to the nearest unit.
func FromFloat(f float64) Fixed32 {
	return Fixed32(math.Round(f * Scale))
}

// Float returns the value in tiles.
func (f Fixed32) Float() float64 {
	return float64(f) / Scale
}

func (f Fixed32) String() string {
	return fmt.Sprintf("%g", f.Float())
}

// Vector is a 2D fixed-point coordinate pair.
type Vector struct {
	X Fixed32
	Y Fixed32
}

// Vec builds a Vector from tile coordinates.
func Vec(x, y float64) Vector {
	return Vector{X: FromFloat(x), Y: FromFloat(y)}
}

// Add returns v+o.
func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v-o.
func (v Vector) Sub(o Vector) Vector {
	return Vector{X: v.X - o.X, Y: v.Y - o.Y}
}

// Neg returns -v.
func (v Vector) Neg() Vector {
	return Vector{X: -v.X, Y: -v.Y}
}

func (v Vector) String() string {
	return fmt.Sprintf("[%s, %s]", v.X, v.Y)
}

// Position is a map coordinate together with its wire form. When Relative
// is set the Map profile stores it as a 16-bit delta from the previously
// processed position on the same stream; otherwise it is stored absolute.
// Decoding sets Relative to match the bytes read.
type Position struct {
	Vector
	Relative bool
}

// Abs returns an absolutely encoded position at v.
func Abs(v Vector) Position {
	return Position{Vector: v}
}

// Rel returns a delta-encoded position at v.
func Rel(v Vector) Position {
	return Position{Vector: v, Relative: true}
}

// ChunkPosition addresses a 32×32 tile chunk.
type ChunkPosition struct {
	X int32
	Y int32
}

// ChunkSize is the edge length of a chunk in tiles.
const ChunkSize = 32

// Chunk returns the chunk containing v.
func (v Vector) Chunk() ChunkPosition {
	const unitsPerChunk = ChunkSize * Scale
	return ChunkPosition{
		X: int32(math.Floor(float64(v.X) / unitsPerChunk)),
		Y: int32(math.Floor(float64(v.Y) / unitsPerChunk)),
	}
}

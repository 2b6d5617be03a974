package codec

import (
	"math"
	"unicode/utf8"

	"github.com/arloliu/factosave/errs"
	"github.com/arloliu/factosave/fixed"
	"github.com/arloliu/factosave/format"
)

// LengthCodec selects how the length of a vector, string or blob is framed.
type LengthCodec uint8

const (
	// LenProfile defers to the profile's vector length codec.
	LenProfile LengthCodec = iota
	LenU8
	LenU16
	LenU32
	LenOptU16
	LenOptU32
)

func (l LengthCodec) String() string {
	switch l {
	case LenProfile:
		return "profile"
	case LenU8:
		return "u8"
	case LenU16:
		return "u16"
	case LenU32:
		return "u32"
	case LenOptU16:
		return "opt_u16"
	case LenOptU32:
		return "opt_u32"
	default:
		return "unknown"
	}
}

// max returns the largest length representable by l.
func (l LengthCodec) max() uint64 {
	switch l {
	case LenU8:
		return math.MaxUint8
	case LenU16, LenOptU16:
		return math.MaxUint16
	default:
		return math.MaxUint32
	}
}

// Read reads a length framed by l.
func (l LengthCodec) Read(d *Decoder) (int, error) {
	r := d.r
	switch l {
	case LenU8:
		v, err := r.ReadU8()
		return int(v), err
	case LenU16:
		v, err := r.ReadU16()
		return int(v), err
	case LenU32:
		v, err := r.ReadU32()
		return int(v), err
	case LenOptU16:
		v, err := r.ReadOptU16()
		return int(v), err
	case LenOptU32:
		v, err := r.ReadOptU32()
		return int(v), err
	default:
		return d.profile.vectorLength().Read(d)
	}
}

// Write writes n framed by l, rejecting lengths l cannot represent.
func (l LengthCodec) Write(e *Encoder, n int) error {
	if l == LenProfile {
		return e.profile.vectorLength().Write(e, n)
	}
	if n < 0 || uint64(n) > l.max() {
		return errs.New(e.Offset(), errs.ErrValueOutOfRange, "length %d does not fit %s", n, l)
	}

	w := e.w
	switch l {
	case LenU8:
		w.WriteU8(uint8(n))
	case LenU16:
		w.WriteU16(uint16(n))
	case LenU32:
		w.WriteU32(uint32(n))
	case LenOptU16:
		w.WriteOptU16(uint16(n))
	default:
		w.WriteOptU32(uint32(n))
	}

	return nil
}

// Profile is the capability set that distinguishes the framing conventions
// of the save buffers: how vector lengths and strings are prefixed and how
// positions are stored. All codecs are written against a Profile, so one
// schema serves every buffer kind.
type Profile interface {
	// Kind identifies the profile.
	Kind() format.Profile
	// DeltaPositions reports whether positions may be delta encoded.
	DeltaPositions() bool

	vectorLength() LengthCodec
	stringLength() LengthCodec
}

type profile struct {
	kind      format.Profile
	vectorLen LengthCodec
	stringLen LengthCodec
	delta     bool
}

func (p profile) Kind() format.Profile { return p.kind }
func (p profile) DeltaPositions() bool { return p.delta }
func (p profile) vectorLength() LengthCodec { return p.vectorLen }
func (p profile) stringLength() LengthCodec { return p.stringLen }
func (p profile) String() string { return p.kind.String() }

// The three profiles of the save format.
var (
	// MapProfile frames level.dat, level-init.dat and nested script blobs:
	// opt_u32 lengths and delta-encoded positions.
	MapProfile Profile = profile{kind: format.ProfileMap, vectorLen: LenOptU32, stringLen: LenOptU32, delta: true}
	// ReplayProfile frames replay.dat: opt_u32 lengths, absolute positions.
	ReplayProfile Profile = profile{kind: format.ProfileReplay, vectorLen: LenOptU32, stringLen: LenOptU32}
	// GenericProfile frames the outer script.dat table: u32 lengths,
	// absolute positions.
	GenericProfile Profile = profile{kind: format.ProfileGeneric, vectorLen: LenU32, stringLen: LenU32}
)

// ProfileOf returns the profile for kind, or nil for an unknown kind.
func ProfileOf(kind format.Profile) Profile {
	switch kind {
	case format.ProfileMap:
		return MapProfile
	case format.ProfileReplay:
		return ReplayProfile
	case format.ProfileGeneric:
		return GenericProfile
	default:
		return nil
	}
}

func readString(d *Decoder) (string, error) {
	if d.profile.stringLength() == LenU32 {
		return d.r.ReadStringU32()
	}

	return d.r.ReadString()
}

func writeString(e *Encoder, s string) error {
	if !utf8.ValidString(s) {
		return errs.New(e.Offset(), errs.ErrInvalidUTF8, "%d-byte string", len(s))
	}
	if uint64(len(s)) > math.MaxUint32 {
		return errs.New(e.Offset(), errs.ErrValueOutOfRange, "string of %d bytes", len(s))
	}

	if e.profile.stringLength() == LenU32 {
		e.w.WriteStringU32(s)
	} else {
		e.w.WriteString(s)
	}

	return nil
}

// Position wire constants of the Map profile.
const (
	// PositionAbsolute is the 16-bit marker preceding an absolute position.
	PositionAbsolute = 0x7FFF
	// MaxPositionDelta bounds the magnitude of a relative delta (exclusive).
	MaxPositionDelta = 0x7FFE
)

func readPosition(d *Decoder) (fixed.Position, error) {
	r := d.r
	if !d.profile.DeltaPositions() {
		x, err := r.ReadI32()
		if err != nil {
			return fixed.Position{}, err
		}
		y, err := r.ReadI32()
		if err != nil {
			return fixed.Position{}, err
		}

		return fixed.Abs(fixed.Vector{X: fixed.Fixed32(x), Y: fixed.Fixed32(y)}), nil
	}

	start := r.Offset()
	dx, err := r.ReadI16()
	if err != nil {
		return fixed.Position{}, err
	}

	var pos fixed.Position
	if dx == PositionAbsolute {
		x, err := r.ReadI32()
		if err != nil {
			return fixed.Position{}, err
		}
		y, err := r.ReadI32()
		if err != nil {
			return fixed.Position{}, err
		}
		pos = fixed.Abs(fixed.Vector{X: fixed.Fixed32(x), Y: fixed.Fixed32(y)})
	} else {
		dy, err := r.ReadI16()
		if err != nil {
			return fixed.Position{}, err
		}
		// Only deltas the encoder would emit are accepted, so every decoded
		// position re-encodes to the same bytes.
		x, y := int64(d.last.X)+int64(dx), int64(d.last.Y)+int64(dy)
		if !deltaFits(int64(dx)) || !deltaFits(int64(dy)) ||
			x < math.MinInt32 || x > math.MaxInt32 || y < math.MinInt32 || y > math.MaxInt32 {
			return fixed.Position{}, errs.New(start, errs.ErrNonCanonical,
				"relative position delta (%d, %d) from %s", dx, dy, d.last)
		}
		pos = fixed.Rel(fixed.Vector{X: fixed.Fixed32(x), Y: fixed.Fixed32(y)})
	}
	d.last = pos.Vector

	return pos, nil
}

func writePosition(e *Encoder, pos fixed.Position) error {
	w := e.w
	if !e.profile.DeltaPositions() {
		w.WriteI32(int32(pos.X))
		w.WriteI32(int32(pos.Y))

		return nil
	}

	if pos.Relative {
		delta := pos.Vector.Sub(e.last)
		if !deltaFits(int64(pos.X)-int64(e.last.X)) || !deltaFits(int64(pos.Y)-int64(e.last.Y)) {
			return errs.New(e.Offset(), errs.ErrDeltaOutOfRange, "delta %s from %s", delta, e.last)
		}
		w.WriteI16(int16(delta.X)) //nolint:gosec
		w.WriteI16(int16(delta.Y)) //nolint:gosec
	} else {
		w.WriteI16(PositionAbsolute)
		w.WriteI32(int32(pos.X))
		w.WriteI32(int32(pos.Y))
	}
	e.last = pos.Vector

	return nil
}

func deltaFits(d int64) bool {
	return d > -MaxPositionDelta && d < MaxPositionDelta
}

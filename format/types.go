package format

type (
	// Profile identifies one of the framing conventions shared by the save buffers.
	Profile uint8
	// CompressionType identifies the compression applied to a bundle blob.
	CompressionType uint8
	// ContentKind identifies a prototype category that owns a migration table.
	ContentKind uint8
	// ContentID is a session-local numeric content identifier. It is only
	// meaningful together with the migration table read in the same session.
	ContentID uint16
)

const (
	ProfileMap     Profile = 0x1 // ProfileMap frames level.dat and nested script blobs.
	ProfileReplay  Profile = 0x2 // ProfileReplay frames replay.dat.
	ProfileGeneric Profile = 0x3 // ProfileGeneric frames the outer script.dat table.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
	CompressionZlib CompressionType = 0x5 // CompressionZlib represents zlib, as used by chunked level.dat.
)

const (
	KindItem ContentKind = iota
	KindFluid
	KindEntity
	KindRecipe
	KindTile
	KindTechnology
)

// ContentKinds lists every content kind in wire order.
var ContentKinds = []ContentKind{KindItem, KindFluid, KindEntity, KindRecipe, KindTile, KindTechnology}

func (p Profile) String() string {
	switch p {
	case ProfileMap:
		return "Map"
	case ProfileReplay:
		return "Replay"
	case ProfileGeneric:
		return "Generic"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionZlib:
		return "Zlib"
	default:
		return "Unknown"
	}
}

// ParseCompressionType maps a lower-case name ("none", "zstd", "s2", "lz4",
// "zlib") to its CompressionType.
func ParseCompressionType(name string) (CompressionType, bool) {
	switch name {
	case "none", "":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	case "zlib":
		return CompressionZlib, true
	default:
		return 0, false
	}
}

func (k ContentKind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindFluid:
		return "fluid"
	case KindEntity:
		return "entity"
	case KindRecipe:
		return "recipe"
	case KindTile:
		return "tile"
	case KindTechnology:
		return "technology"
	default:
		return "unknown"
	}
}

// IDWidth returns the wire width in bytes of content IDs of this kind.
// Tiles and fluids never exceed 255 prototypes and use a single byte.
func (k ContentKind) IDWidth() int {
	switch k {
	case KindTile, KindFluid:
		return 1
	default:
		return 2
	}
}

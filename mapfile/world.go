package mapfile

import (
	"github.com/arloliu/factosave/codec"
	"github.com/arloliu/factosave/fixed"
	"github.com/arloliu/factosave/migration"
	"github.com/arloliu/factosave/palette"
)

// Scenario describes the scenario the map was started from.
type Scenario struct {
	Campaign        string
	Name            string
	BaseMod         string
	Difficulty      uint8
	Finished        bool
	PlayerWon       bool
	NextLevel       string
	CanContinue     bool
	LoadedFrom      [4]uint16
	LoadedFromBuild uint32
	AllowedCommands uint8
	DebugDisabled   bool
}

var scenarioCodec = codec.NewStruct("Scenario",
	codec.Plain("campaign", func(s *Scenario) *string { return &s.Campaign }, codec.String),
	codec.Plain("name", func(s *Scenario) *string { return &s.Name }, codec.String),
	codec.Plain("base_mod", func(s *Scenario) *string { return &s.BaseMod }, codec.String),
	codec.Plain("difficulty", func(s *Scenario) *uint8 { return &s.Difficulty }, codec.U8),
	codec.Plain("finished", func(s *Scenario) *bool { return &s.Finished }, codec.Bool),
	codec.Plain("player_won", func(s *Scenario) *bool { return &s.PlayerWon }, codec.Bool),
	codec.Plain("next_level", func(s *Scenario) *string { return &s.NextLevel }, codec.String),
	codec.Plain("can_continue", func(s *Scenario) *bool { return &s.CanContinue }, codec.Bool),
	codec.Array("loaded_from", func(s *Scenario) []uint16 { return s.LoadedFrom[:] }, codec.U16),
	codec.Plain("loaded_from_build", func(s *Scenario) *uint32 { return &s.LoadedFromBuild }, codec.U32),
	codec.Plain("allowed_commands", func(s *Scenario) *uint8 { return &s.AllowedCommands }, codec.U8),
	codec.Negated("debug_disabled", func(s *Scenario) *bool { return &s.DebugDisabled }),
)

// Mod is one mod active when the map was saved.
type Mod struct {
	Name    string
	Version [3]uint16
	CRC     uint32
}

var modCodec = codec.NewStruct("Mod",
	codec.Plain("name", func(m *Mod) *string { return &m.Name }, codec.String),
	codec.Array("version", func(m *Mod) []uint16 { return m.Version[:] }, codec.OptU16),
	codec.Plain("crc", func(m *Mod) *uint32 { return &m.CRC }, codec.U32),
)

// CliffSettings configures cliff generation.
type CliffSettings struct {
	Name              string
	Elevation0        float32
	ElevationInterval float32
	Richness          float32
}

var cliffCodec = codec.NewStruct("CliffSettings",
	codec.Plain("name", func(c *CliffSettings) *string { return &c.Name }, codec.String),
	codec.Plain("elevation_0", func(c *CliffSettings) *float32 { return &c.Elevation0 }, codec.F32),
	codec.Plain("elevation_interval", func(c *CliffSettings) *float32 { return &c.ElevationInterval }, codec.F32),
	codec.Plain("richness", func(c *CliffSettings) *float32 { return &c.Richness }, codec.F32),
)

// Settings holds the map generation settings. Cliffs is only present on
// the wire when HasCliffs is set.
type Settings struct {
	Seed              uint32
	Width             uint32
	Height            uint32
	AutoplaceControls uint32
	Peaceful          bool
	EnemiesEnabled    bool
	HasCliffs         bool
	Cliffs            CliffSettings
}

var settingsCodec = codec.NewStruct("Settings",
	codec.Plain("seed", func(s *Settings) *uint32 { return &s.Seed }, codec.U32),
	codec.Plain("width", func(s *Settings) *uint32 { return &s.Width }, codec.U32),
	codec.Plain("height", func(s *Settings) *uint32 { return &s.Height }, codec.U32),
	codec.SizeOptimized("autoplace_controls", func(s *Settings) *uint32 { return &s.AutoplaceControls }),
	codec.Plain("peaceful", func(s *Settings) *bool { return &s.Peaceful }, codec.Bool),
	codec.Negated("enemies_enabled", func(s *Settings) *bool { return &s.EnemiesEnabled }),
	codec.Plain("has_cliffs", func(s *Settings) *bool { return &s.HasCliffs }, codec.Bool),
	codec.When(func(s *Settings) bool { return s.HasCliffs },
		codec.Plain("cliffs", func(s *Settings) *CliffSettings { return &s.Cliffs }, codec.Codec[CliffSettings](cliffCodec))),
)

// Chunk is one 32×32 tile chunk of a surface.
type Chunk struct {
	Position      fixed.ChunkPosition
	Status        uint8
	LayerVersions [4]uint32
	Entities      []Entity
}

var chunkCodec = codec.NewStruct("Chunk",
	codec.Plain("position", func(c *Chunk) *fixed.ChunkPosition { return &c.Position }, codec.ChunkPosition),
	codec.Plain("status", func(c *Chunk) *uint8 { return &c.Status }, codec.U8),
	codec.Array("layer_versions", func(c *Chunk) []uint32 { return c.LayerVersions[:] }, codec.U32),
	codec.Vector("entities", func(c *Chunk) *[]Entity { return &c.Entities }, codec.Codec[Entity](entityUnion), codec.LenProfile),
)

// Surface is one world surface.
type Surface struct {
	Name   string
	Index  uint16
	Seed   uint32
	Chunks []Chunk
	// Generated lists the indices of chunks that finished generation.
	Generated []uint32
	Chart     []palette.Block
}

var surfaceCodec = codec.NewStruct("Surface",
	codec.Plain("name", func(s *Surface) *string { return &s.Name }, codec.String),
	codec.Opt16("index", func(s *Surface) *uint16 { return &s.Index }),
	codec.Plain("seed", func(s *Surface) *uint32 { return &s.Seed }, codec.U32),
	codec.Vector("chunks", func(s *Surface) *[]Chunk { return &s.Chunks }, codec.Codec[Chunk](chunkCodec), codec.LenProfile),
	codec.Plain("generated", func(s *Surface) *[]uint32 { return &s.Generated }, codec.CompactedIndices),
	codec.Vector("chart", func(s *Surface) *[]palette.Block { return &s.Chart }, palette.Codec, codec.LenProfile),
)

// Player is one player known to the map.
type Player struct {
	Name       string
	Index      uint16
	Position   fixed.Position
	Force      uint8
	Admin      bool
	LastOnline uint32
	Color      [4]float32
	// Tag is the player's tag, or nil when unset.
	Tag *string
}

var playerCodec = codec.NewStruct("Player",
	codec.Plain("name", func(p *Player) *string { return &p.Name }, codec.String),
	codec.Opt16("index", func(p *Player) *uint16 { return &p.Index }),
	codec.Plain("position", func(p *Player) *fixed.Position { return &p.Position }, codec.Position),
	codec.Plain("force", func(p *Player) *uint8 { return &p.Force }, codec.U8),
	codec.Plain("admin", func(p *Player) *bool { return &p.Admin }, codec.Bool),
	codec.Plain("last_online", func(p *Player) *uint32 { return &p.LastOnline }, codec.U32),
	codec.Array("color", func(p *Player) []float32 { return p.Color[:] }, codec.F32),
	codec.Plain("tag", func(p *Player) **string { return &p.Tag }, codec.NullableString),
)

// World is the state tree of a map buffer.
type World struct {
	Scenario     Scenario
	Mods         []Mod
	Prototypes   migration.Prototypes
	Settings     Settings
	Tick         uint32
	TicksPlayed  uint64
	GameSpeed    float64
	Modifiers    []Modifier
	Recipes      []RecipeState
	Achievements []AchievementStat
	Surfaces     []Surface
	Players      []Player
}

var worldCodec = codec.NewStruct("World",
	codec.Plain("scenario", func(w *World) *Scenario { return &w.Scenario }, codec.Codec[Scenario](scenarioCodec)),
	codec.Vector("mods", func(w *World) *[]Mod { return &w.Mods }, codec.Codec[Mod](modCodec), codec.LenProfile),
	codec.Plain("prototypes", func(w *World) *migration.Prototypes { return &w.Prototypes }, migration.PrototypesCodec),
	codec.Plain("settings", func(w *World) *Settings { return &w.Settings }, codec.Codec[Settings](settingsCodec)),
	codec.Plain("tick", func(w *World) *uint32 { return &w.Tick }, codec.U32),
	codec.Plain("ticks_played", func(w *World) *uint64 { return &w.TicksPlayed }, codec.U64),
	codec.Plain("game_speed", func(w *World) *float64 { return &w.GameSpeed }, codec.F64),
	codec.Vector("modifiers", func(w *World) *[]Modifier { return &w.Modifiers }, codec.Codec[Modifier](modifierUnion), codec.LenProfile),
	codec.Vector("recipes", func(w *World) *[]RecipeState { return &w.Recipes }, codec.Codec[RecipeState](recipeStateCodec), codec.LenProfile),
	codec.Vector("achievements", func(w *World) *[]AchievementStat { return &w.Achievements }, codec.Codec[AchievementStat](achievementUnion), codec.LenProfile),
	codec.Vector("surfaces", func(w *World) *[]Surface { return &w.Surfaces }, codec.Codec[Surface](surfaceCodec), codec.LenProfile),
	codec.Vector("players", func(w *World) *[]Player { return &w.Players }, codec.Codec[Player](playerCodec), codec.LenProfile),
	// Circuit networks and the legacy flag byte are always empty in known
	// saves.
	codec.Const[World]("circuit_networks", codec.OptU32, 0),
	codec.Const[World]("legacy_flags", codec.U8, 0),
)

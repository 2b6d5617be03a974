package mapfile

import (
	"github.com/arloliu/factosave/codec"
	"github.com/arloliu/factosave/fixed"
	"github.com/arloliu/factosave/format"
)

// EntityKind is the discriminant of a chunk entity record.
type EntityKind uint8

const (
	EntitySimple EntityKind = iota
	EntityContainer
	EntityBelt
	EntityAssembler
	EntityResource
	EntityTree
)

// EntityKinds lists every entity record kind.
var EntityKinds = []EntityKind{
	EntitySimple, EntityContainer, EntityBelt, EntityAssembler, EntityResource, EntityTree,
}

func (k EntityKind) String() string {
	switch k {
	case EntitySimple:
		return "simple"
	case EntityContainer:
		return "container"
	case EntityBelt:
		return "belt"
	case EntityAssembler:
		return "assembler"
	case EntityResource:
		return "resource"
	case EntityTree:
		return "tree"
	default:
		return "unknown"
	}
}

// Entity is one entity record of a chunk. Positions are delta encoded
// against the previous position of the stream when Relative is set.
type Entity interface {
	Kind() EntityKind
}

// SimpleEntity is an entity without state beyond its placement.
type SimpleEntity struct {
	Prototype format.ContentID
	Position  fixed.Position
}

// ItemStack is a stack of items held by an inventory.
type ItemStack struct {
	Item  format.ContentID
	Count uint32
}

// Container is a chest-like entity with an inventory.
type Container struct {
	Prototype format.ContentID
	Position  fixed.Position
	Direction uint8
	Items     []ItemStack
}

// Belt is a transport belt segment.
type Belt struct {
	Prototype format.ContentID
	Position  fixed.Position
	Direction uint8
	// LaneItems holds the item count of the left and right lane.
	LaneItems [2]uint16
}

// Assembler is a crafting machine. Recipe is only present when HasRecipe
// is set.
type Assembler struct {
	Prototype format.ContentID
	Position  fixed.Position
	Direction uint8
	HasRecipe bool
	Recipe    format.ContentID
	Progress  float32
}

// Resource is an ore patch tile.
type Resource struct {
	Prototype format.ContentID
	Position  fixed.Position
	Amount    uint32
}

// Tree is a tree with its growth stage.
type Tree struct {
	Prototype format.ContentID
	Position  fixed.Position
	Stage     uint8
}

func (SimpleEntity) Kind() EntityKind { return EntitySimple }
func (Container) Kind() EntityKind    { return EntityContainer }
func (Belt) Kind() EntityKind         { return EntityBelt }
func (Assembler) Kind() EntityKind    { return EntityAssembler }
func (Resource) Kind() EntityKind     { return EntityResource }
func (Tree) Kind() EntityKind         { return EntityTree }

var (
	entityRef = codec.ContentID(format.KindEntity)
	itemRef   = codec.ContentID(format.KindItem)
	fluidRef  = codec.ContentID(format.KindFluid)
	recipeRef = codec.ContentID(format.KindRecipe)
	techRef   = codec.ContentID(format.KindTechnology)
)

var itemStackCodec = codec.NewStruct("ItemStack",
	codec.Plain("item", func(s *ItemStack) *format.ContentID { return &s.Item }, itemRef),
	codec.Opt32("count", func(s *ItemStack) *uint32 { return &s.Count }),
)

var entityUnion = codec.NewUnion("Entity", codec.Cast[EntityKind](codec.U8), Entity.Kind).
	Register(EntitySimple, codec.Payload[Entity](codec.NewStruct("SimpleEntity",
		codec.Plain("prototype", func(e *SimpleEntity) *format.ContentID { return &e.Prototype }, entityRef),
		codec.Plain("position", func(e *SimpleEntity) *fixed.Position { return &e.Position }, codec.Position),
	))).
	Register(EntityContainer, codec.Payload[Entity](codec.NewStruct("Container",
		codec.Plain("prototype", func(e *Container) *format.ContentID { return &e.Prototype }, entityRef),
		codec.Plain("position", func(e *Container) *fixed.Position { return &e.Position }, codec.Position),
		codec.Plain("direction", func(e *Container) *uint8 { return &e.Direction }, codec.U8),
		codec.Vector("items", func(e *Container) *[]ItemStack { return &e.Items }, codec.Codec[ItemStack](itemStackCodec), codec.LenU16),
	))).
	Register(EntityBelt, codec.Payload[Entity](codec.NewStruct("Belt",
		codec.Plain("prototype", func(e *Belt) *format.ContentID { return &e.Prototype }, entityRef),
		codec.Plain("position", func(e *Belt) *fixed.Position { return &e.Position }, codec.Position),
		codec.Plain("direction", func(e *Belt) *uint8 { return &e.Direction }, codec.U8),
		codec.Array("lane_items", func(e *Belt) []uint16 { return e.LaneItems[:] }, codec.OptU16),
	))).
	Register(EntityAssembler, codec.Payload[Entity](codec.NewStruct("Assembler",
		codec.Plain("prototype", func(e *Assembler) *format.ContentID { return &e.Prototype }, entityRef),
		codec.Plain("position", func(e *Assembler) *fixed.Position { return &e.Position }, codec.Position),
		codec.Plain("direction", func(e *Assembler) *uint8 { return &e.Direction }, codec.U8),
		codec.Plain("has_recipe", func(e *Assembler) *bool { return &e.HasRecipe }, codec.Bool),
		codec.When(func(e *Assembler) bool { return e.HasRecipe },
			codec.Plain("recipe", func(e *Assembler) *format.ContentID { return &e.Recipe }, recipeRef)),
		codec.Plain("progress", func(e *Assembler) *float32 { return &e.Progress }, codec.F32),
	))).
	Register(EntityResource, codec.Payload[Entity](codec.NewStruct("Resource",
		codec.Plain("prototype", func(e *Resource) *format.ContentID { return &e.Prototype }, entityRef),
		codec.Plain("position", func(e *Resource) *fixed.Position { return &e.Position }, codec.Position),
		codec.Plain("amount", func(e *Resource) *uint32 { return &e.Amount }, codec.U32),
	))).
	Register(EntityTree, codec.Payload[Entity](codec.NewStruct("Tree",
		codec.Plain("prototype", func(e *Tree) *format.ContentID { return &e.Prototype }, entityRef),
		codec.Plain("position", func(e *Tree) *fixed.Position { return &e.Position }, codec.Position),
		codec.Plain("stage", func(e *Tree) *uint8 { return &e.Stage }, codec.U8),
	)))

package mapfile

import (
	"github.com/arloliu/factosave/codec"
	"github.com/arloliu/factosave/format"
)

// ModifierKind is the discriminant of a force modifier record.
type ModifierKind uint8

const (
	ModifierInserterStackBonus ModifierKind = iota
	ModifierMiningDrillProductivity
	ModifierGiveItem
	ModifierUnlockRecipe
	ModifierNothing
	ModifierGunSpeed
)

// ModifierKinds lists every modifier kind.
var ModifierKinds = []ModifierKind{
	ModifierInserterStackBonus, ModifierMiningDrillProductivity, ModifierGiveItem,
	ModifierUnlockRecipe, ModifierNothing, ModifierGunSpeed,
}

func (k ModifierKind) String() string {
	switch k {
	case ModifierInserterStackBonus:
		return "inserter-stack-size-bonus"
	case ModifierMiningDrillProductivity:
		return "mining-drill-productivity-bonus"
	case ModifierGiveItem:
		return "give-item"
	case ModifierUnlockRecipe:
		return "unlock-recipe"
	case ModifierNothing:
		return "nothing"
	case ModifierGunSpeed:
		return "gun-speed"
	default:
		return "unknown"
	}
}

// Modifier is an effect researched technologies applied to the force.
type Modifier interface {
	Kind() ModifierKind
}

// InserterStackBonus raises the stack size inserters move.
type InserterStackBonus struct{ Value float64 }

// MiningDrillProductivity adds to the output of every mining drill.
type MiningDrillProductivity struct{ Value float64 }

// GiveItem hands Count items to every player of the force.
type GiveItem struct {
	Item  format.ContentID
	Count uint32
}

// UnlockRecipe enables a recipe for the force.
type UnlockRecipe struct{ Recipe format.ContentID }

// Nothing is a modifier that only carries a description.
type Nothing struct{ Description string }

// GunSpeed scales the firing rate of one ammo category.
type GunSpeed struct {
	Ammo  string
	Value float64
}

func (InserterStackBonus) Kind() ModifierKind      { return ModifierInserterStackBonus }
func (MiningDrillProductivity) Kind() ModifierKind { return ModifierMiningDrillProductivity }
func (GiveItem) Kind() ModifierKind                { return ModifierGiveItem }
func (UnlockRecipe) Kind() ModifierKind            { return ModifierUnlockRecipe }
func (Nothing) Kind() ModifierKind                 { return ModifierNothing }
func (GunSpeed) Kind() ModifierKind                { return ModifierGunSpeed }

var modifierUnion = codec.NewUnion("Modifier", codec.Cast[ModifierKind](codec.U8), Modifier.Kind).
	Register(ModifierInserterStackBonus, codec.Payload[Modifier](codec.NewStruct("InserterStackBonus",
		codec.Plain("value", func(m *InserterStackBonus) *float64 { return &m.Value }, codec.F64),
	))).
	Register(ModifierMiningDrillProductivity, codec.Payload[Modifier](codec.NewStruct("MiningDrillProductivity",
		codec.Plain("value", func(m *MiningDrillProductivity) *float64 { return &m.Value }, codec.F64),
	))).
	Register(ModifierGiveItem, codec.Payload[Modifier](codec.NewStruct("GiveItem",
		codec.Plain("item", func(m *GiveItem) *format.ContentID { return &m.Item }, itemRef),
		codec.Opt32("count", func(m *GiveItem) *uint32 { return &m.Count }),
	))).
	Register(ModifierUnlockRecipe, codec.Payload[Modifier](codec.NewStruct("UnlockRecipe",
		codec.Plain("recipe", func(m *UnlockRecipe) *format.ContentID { return &m.Recipe }, recipeRef),
	))).
	Register(ModifierNothing, codec.Payload[Modifier](codec.NewStruct("Nothing",
		codec.Plain("description", func(m *Nothing) *string { return &m.Description }, codec.String),
	))).
	Register(ModifierGunSpeed, codec.Payload[Modifier](codec.NewStruct("GunSpeed",
		codec.Plain("ammo", func(m *GunSpeed) *string { return &m.Ammo }, codec.String),
		codec.Plain("value", func(m *GunSpeed) *float64 { return &m.Value }, codec.F64),
	)))

// StackKind discriminates recipe ingredients and products.
type StackKind uint8

const (
	StackItem StackKind = iota
	StackFluid
	StackItemRange
)

// IngredientKinds and ProductKinds list the stack kinds each side of a
// recipe can hold. Ranges only occur as products.
var (
	IngredientKinds = []StackKind{StackItem, StackFluid}
	ProductKinds    = []StackKind{StackItem, StackFluid, StackItemRange}
)

func (k StackKind) String() string {
	switch k {
	case StackItem:
		return "item"
	case StackFluid:
		return "fluid"
	case StackItemRange:
		return "item-range"
	default:
		return "unknown"
	}
}

// Ingredient is a recipe input.
type Ingredient interface {
	Kind() StackKind
}

// Product is a recipe output.
type Product interface {
	Kind() StackKind
}

// ItemIngredient consumes Amount items.
type ItemIngredient struct {
	Item   format.ContentID
	Amount uint16
}

// FluidIngredient consumes Amount units of fluid.
type FluidIngredient struct {
	Fluid  format.ContentID
	Amount float64
}

// ItemProduct yields Amount items with the given probability.
type ItemProduct struct {
	Item        format.ContentID
	Amount      uint16
	Probability float64
}

// FluidProduct yields Amount units of fluid.
type FluidProduct struct {
	Fluid  format.ContentID
	Amount float64
}

// ItemRangeProduct yields a random amount between Min and Max.
type ItemRangeProduct struct {
	Item     format.ContentID
	Min, Max uint16
}

func (ItemIngredient) Kind() StackKind   { return StackItem }
func (FluidIngredient) Kind() StackKind  { return StackFluid }
func (ItemProduct) Kind() StackKind      { return StackItem }
func (FluidProduct) Kind() StackKind     { return StackFluid }
func (ItemRangeProduct) Kind() StackKind { return StackItemRange }

var ingredientUnion = codec.NewUnion("Ingredient", codec.Cast[StackKind](codec.U8), Ingredient.Kind).
	Register(StackItem, codec.Payload[Ingredient](codec.NewStruct("ItemIngredient",
		codec.Plain("item", func(i *ItemIngredient) *format.ContentID { return &i.Item }, itemRef),
		codec.Plain("amount", func(i *ItemIngredient) *uint16 { return &i.Amount }, codec.U16),
	))).
	Register(StackFluid, codec.Payload[Ingredient](codec.NewStruct("FluidIngredient",
		codec.Plain("fluid", func(i *FluidIngredient) *format.ContentID { return &i.Fluid }, fluidRef),
		codec.Plain("amount", func(i *FluidIngredient) *float64 { return &i.Amount }, codec.F64),
	)))

var productUnion = codec.NewUnion("Product", codec.Cast[StackKind](codec.U8), Product.Kind).
	Register(StackItem, codec.Payload[Product](codec.NewStruct("ItemProduct",
		codec.Plain("item", func(p *ItemProduct) *format.ContentID { return &p.Item }, itemRef),
		codec.Plain("amount", func(p *ItemProduct) *uint16 { return &p.Amount }, codec.U16),
		codec.Plain("probability", func(p *ItemProduct) *float64 { return &p.Probability }, codec.F64),
	))).
	Register(StackFluid, codec.Payload[Product](codec.NewStruct("FluidProduct",
		codec.Plain("fluid", func(p *FluidProduct) *format.ContentID { return &p.Fluid }, fluidRef),
		codec.Plain("amount", func(p *FluidProduct) *float64 { return &p.Amount }, codec.F64),
	))).
	Register(StackItemRange, codec.Payload[Product](codec.NewStruct("ItemRangeProduct",
		codec.Plain("item", func(p *ItemRangeProduct) *format.ContentID { return &p.Item }, itemRef),
		codec.Plain("min", func(p *ItemRangeProduct) *uint16 { return &p.Min }, codec.U16),
		codec.Plain("max", func(p *ItemRangeProduct) *uint16 { return &p.Max }, codec.U16),
	)))

// RecipeState is the per-force state of one recipe.
type RecipeState struct {
	Recipe      format.ContentID
	Enabled     bool
	Ingredients []Ingredient
	Products    []Product
}

var recipeStateCodec = codec.NewStruct("RecipeState",
	codec.Plain("recipe", func(r *RecipeState) *format.ContentID { return &r.Recipe }, recipeRef),
	codec.Plain("enabled", func(r *RecipeState) *bool { return &r.Enabled }, codec.Bool),
	codec.Vector("ingredients", func(r *RecipeState) *[]Ingredient { return &r.Ingredients }, codec.Codec[Ingredient](ingredientUnion), codec.LenU8),
	codec.Vector("products", func(r *RecipeState) *[]Product { return &r.Products }, codec.Codec[Product](productUnion), codec.LenU8),
)

// AchievementKind is the discriminant of an achievement statistic.
type AchievementKind uint8

const (
	AchievementBuildEntity AchievementKind = iota
	AchievementProduceItem
	AchievementResearch
	AchievementDontUseEntity
	AchievementKillEnemies
)

// AchievementKinds lists every achievement statistic kind.
var AchievementKinds = []AchievementKind{
	AchievementBuildEntity, AchievementProduceItem, AchievementResearch,
	AchievementDontUseEntity, AchievementKillEnemies,
}

func (k AchievementKind) String() string {
	switch k {
	case AchievementBuildEntity:
		return "build-entity"
	case AchievementProduceItem:
		return "produce-item"
	case AchievementResearch:
		return "research"
	case AchievementDontUseEntity:
		return "dont-use-entity"
	case AchievementKillEnemies:
		return "kill-enemies"
	default:
		return "unknown"
	}
}

// AchievementStat is the progress recorded towards one achievement.
type AchievementStat interface {
	Kind() AchievementKind
}

// BuildEntityStat counts placed entities of one prototype.
type BuildEntityStat struct {
	Entity format.ContentID
	Count  uint32
}

// ProduceItemStat is the produced amount of one item.
type ProduceItemStat struct {
	Item   format.ContentID
	Amount float64
}

// ResearchStat records a finished technology.
type ResearchStat struct {
	Technology format.ContentID
}

// DontUseEntityStat tracks whether a forbidden entity was used.
type DontUseEntityStat struct {
	Entity format.ContentID
	Used   bool
}

// KillEnemiesStat counts killed enemies.
type KillEnemiesStat struct {
	Count uint32
}

func (BuildEntityStat) Kind() AchievementKind   { return AchievementBuildEntity }
func (ProduceItemStat) Kind() AchievementKind   { return AchievementProduceItem }
func (ResearchStat) Kind() AchievementKind      { return AchievementResearch }
func (DontUseEntityStat) Kind() AchievementKind { return AchievementDontUseEntity }
func (KillEnemiesStat) Kind() AchievementKind   { return AchievementKillEnemies }

var achievementUnion = codec.NewUnion("AchievementStat", codec.Cast[AchievementKind](codec.U8), AchievementStat.Kind).
	Register(AchievementBuildEntity, codec.Payload[AchievementStat](codec.NewStruct("BuildEntityStat",
		codec.Plain("entity", func(s *BuildEntityStat) *format.ContentID { return &s.Entity }, entityRef),
		codec.Plain("count", func(s *BuildEntityStat) *uint32 { return &s.Count }, codec.U32),
	))).
	Register(AchievementProduceItem, codec.Payload[AchievementStat](codec.NewStruct("ProduceItemStat",
		codec.Plain("item", func(s *ProduceItemStat) *format.ContentID { return &s.Item }, itemRef),
		codec.Plain("amount", func(s *ProduceItemStat) *float64 { return &s.Amount }, codec.F64),
	))).
	Register(AchievementResearch, codec.Payload[AchievementStat](codec.NewStruct("ResearchStat",
		codec.Plain("technology", func(s *ResearchStat) *format.ContentID { return &s.Technology }, techRef),
	))).
	Register(AchievementDontUseEntity, codec.Payload[AchievementStat](codec.NewStruct("DontUseEntityStat",
		codec.Plain("entity", func(s *DontUseEntityStat) *format.ContentID { return &s.Entity }, entityRef),
		codec.Plain("used", func(s *DontUseEntityStat) *bool { return &s.Used }, codec.Bool),
	))).
	Register(AchievementKillEnemies, codec.Payload[AchievementStat](codec.NewStruct("KillEnemiesStat",
		codec.Plain("count", func(s *KillEnemiesStat) *uint32 { return &s.Count }, codec.U32),
	)))

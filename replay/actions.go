package replay

import (
	"github.com/arloliu/factosave/codec"
	"github.com/arloliu/factosave/fixed"
	"github.com/arloliu/factosave/format"
)

// ActionKind is the discriminant of an input action.
type ActionKind uint8

const (
	ActionStopWalking ActionKind = iota
	ActionBeginMining
	ActionStopMining
	ActionToggleDriving
	ActionOpenInventory
	ActionCloseGui
	ActionStartWalking
	ActionChangeShootingState
	ActionBuild
	ActionSelectedEntityChanged
	ActionCraftItem
	ActionWriteToConsole
	ActionChangeActiveQuickBar
	ActionSetFilter
	ActionPlayerJoinGame
	ActionServerCommand
	ActionSingleplayerInit
)

var actionNames = [...]string{
	ActionStopWalking:           "StopWalking",
	ActionBeginMining:           "BeginMining",
	ActionStopMining:            "StopMining",
	ActionToggleDriving:         "ToggleDriving",
	ActionOpenInventory:         "OpenInventory",
	ActionCloseGui:              "CloseGui",
	ActionStartWalking:          "StartWalking",
	ActionChangeShootingState:   "ChangeShootingState",
	ActionBuild:                 "Build",
	ActionSelectedEntityChanged: "SelectedEntityChanged",
	ActionCraftItem:             "CraftItem",
	ActionWriteToConsole:        "WriteToConsole",
	ActionChangeActiveQuickBar:  "ChangeActiveQuickBar",
	ActionSetFilter:             "SetFilter",
	ActionPlayerJoinGame:        "PlayerJoinGame",
	ActionServerCommand:         "ServerCommand",
	ActionSingleplayerInit:      "SingleplayerInit",
}

func (k ActionKind) String() string {
	if int(k) < len(actionNames) {
		return actionNames[k]
	}

	return "unknown"
}

// ActionKinds lists every known action kind.
func ActionKinds() []ActionKind {
	out := make([]ActionKind, len(actionNames))
	for i := range out {
		out[i] = ActionKind(i)
	}

	return out
}

// Action is the payload of one replay record.
type Action interface {
	Kind() ActionKind
}

// Payload-free actions: the tag alone says what the player did.
type (
	StopWalking   struct{}
	BeginMining   struct{}
	StopMining    struct{}
	ToggleDriving struct{}
	OpenInventory struct{}
	CloseGui      struct{}
)

// StartWalking starts moving the character in one of eight directions.
type StartWalking struct {
	Direction uint8
}

// ChangeShootingState starts or stops shooting at Target.
type ChangeShootingState struct {
	State  uint8
	Target fixed.Position
}

// Build places the item in hand at Position. SkipFogOfWar is stored
// negated.
type Build struct {
	Position     fixed.Position
	Direction    uint8
	Ghost        bool
	SkipFogOfWar bool
}

// SelectedEntityChanged moves the cursor selection to the entity at
// Position.
type SelectedEntityChanged struct {
	Position fixed.Position
}

// CraftItem queues Count crafts of a recipe.
type CraftItem struct {
	Recipe format.ContentID
	Count  uint32
}

// WriteToConsole sends a chat message or console command.
type WriteToConsole struct {
	Message string
}

// ChangeActiveQuickBar switches the visible quick bar page.
type ChangeActiveQuickBar struct {
	Index uint8
}

// SetFilter sets or clears the filter of an inventory slot. Item is only
// on the wire when HasItem is set.
type SetFilter struct {
	Slot    uint16
	HasItem bool
	Item    format.ContentID
}

// PlayerJoinGame records a peer joining a multiplayer session.
type PlayerJoinGame struct {
	PeerID   uint16
	Username string
	Admin    bool
}

// ServerCommand is a command issued through the server console.
type ServerCommand struct {
	Command      string
	ConnectionID uint64
}

// SingleplayerInit opens every single-player replay.
type SingleplayerInit struct{}

func (StopWalking) Kind() ActionKind           { return ActionStopWalking }
func (BeginMining) Kind() ActionKind           { return ActionBeginMining }
func (StopMining) Kind() ActionKind            { return ActionStopMining }
func (ToggleDriving) Kind() ActionKind         { return ActionToggleDriving }
func (OpenInventory) Kind() ActionKind         { return ActionOpenInventory }
func (CloseGui) Kind() ActionKind              { return ActionCloseGui }
func (StartWalking) Kind() ActionKind          { return ActionStartWalking }
func (ChangeShootingState) Kind() ActionKind   { return ActionChangeShootingState }
func (Build) Kind() ActionKind                 { return ActionBuild }
func (SelectedEntityChanged) Kind() ActionKind { return ActionSelectedEntityChanged }
func (CraftItem) Kind() ActionKind             { return ActionCraftItem }
func (WriteToConsole) Kind() ActionKind        { return ActionWriteToConsole }
func (ChangeActiveQuickBar) Kind() ActionKind  { return ActionChangeActiveQuickBar }
func (SetFilter) Kind() ActionKind             { return ActionSetFilter }
func (PlayerJoinGame) Kind() ActionKind        { return ActionPlayerJoinGame }
func (ServerCommand) Kind() ActionKind         { return ActionServerCommand }
func (SingleplayerInit) Kind() ActionKind      { return ActionSingleplayerInit }

var (
	itemRef   = codec.ContentID(format.KindItem)
	recipeRef = codec.ContentID(format.KindRecipe)
)

var actionUnion = codec.NewUnion("Action", codec.Cast[ActionKind](codec.U8), Action.Kind).
	Register(ActionStopWalking, codec.Bare(func() Action { return StopWalking{} })).
	Register(ActionBeginMining, codec.Bare(func() Action { return BeginMining{} })).
	Register(ActionStopMining, codec.Bare(func() Action { return StopMining{} })).
	Register(ActionToggleDriving, codec.Bare(func() Action { return ToggleDriving{} })).
	Register(ActionOpenInventory, codec.Bare(func() Action { return OpenInventory{} })).
	Register(ActionCloseGui, codec.Bare(func() Action { return CloseGui{} })).
	Register(ActionStartWalking, codec.Payload[Action](codec.NewStruct("StartWalking",
		codec.Plain("direction", func(a *StartWalking) *uint8 { return &a.Direction }, codec.U8),
	))).
	Register(ActionChangeShootingState, codec.Payload[Action](codec.NewStruct("ChangeShootingState",
		codec.Plain("state", func(a *ChangeShootingState) *uint8 { return &a.State }, codec.U8),
		codec.Plain("target", func(a *ChangeShootingState) *fixed.Position { return &a.Target }, codec.Position),
	))).
	Register(ActionBuild, codec.Payload[Action](codec.NewStruct("Build",
		codec.Plain("position", func(a *Build) *fixed.Position { return &a.Position }, codec.Position),
		codec.Plain("direction", func(a *Build) *uint8 { return &a.Direction }, codec.U8),
		codec.Plain("ghost", func(a *Build) *bool { return &a.Ghost }, codec.Bool),
		codec.Negated("skip_fog_of_war", func(a *Build) *bool { return &a.SkipFogOfWar }),
	))).
	Register(ActionSelectedEntityChanged, codec.Payload[Action](codec.NewStruct("SelectedEntityChanged",
		codec.Plain("position", func(a *SelectedEntityChanged) *fixed.Position { return &a.Position }, codec.Position),
	))).
	Register(ActionCraftItem, codec.Payload[Action](codec.NewStruct("CraftItem",
		codec.Plain("recipe", func(a *CraftItem) *format.ContentID { return &a.Recipe }, recipeRef),
		codec.Opt32("count", func(a *CraftItem) *uint32 { return &a.Count }),
	))).
	Register(ActionWriteToConsole, codec.Payload[Action](codec.NewStruct("WriteToConsole",
		codec.Plain("message", func(a *WriteToConsole) *string { return &a.Message }, codec.String),
	))).
	Register(ActionChangeActiveQuickBar, codec.Payload[Action](codec.NewStruct("ChangeActiveQuickBar",
		codec.Plain("index", func(a *ChangeActiveQuickBar) *uint8 { return &a.Index }, codec.U8),
	))).
	Register(ActionSetFilter, codec.Payload[Action](codec.NewStruct("SetFilter",
		codec.Opt16("slot", func(a *SetFilter) *uint16 { return &a.Slot }),
		codec.Plain("has_item", func(a *SetFilter) *bool { return &a.HasItem }, codec.Bool),
		codec.When(func(a *SetFilter) bool { return a.HasItem },
			codec.Plain("item", func(a *SetFilter) *format.ContentID { return &a.Item }, itemRef)),
	))).
	Register(ActionPlayerJoinGame, codec.Payload[Action](codec.NewStruct("PlayerJoinGame",
		codec.Opt16("peer_id", func(a *PlayerJoinGame) *uint16 { return &a.PeerID }),
		codec.Plain("username", func(a *PlayerJoinGame) *string { return &a.Username }, codec.String),
		codec.Plain("admin", func(a *PlayerJoinGame) *bool { return &a.Admin }, codec.Bool),
	))).
	Register(ActionServerCommand, codec.Payload[Action](codec.NewStruct("ServerCommand",
		codec.Plain("command", func(a *ServerCommand) *string { return &a.Command }, codec.String),
		codec.Plain("connection_id", func(a *ServerCommand) *uint64 { return &a.ConnectionID }, codec.U64),
	))).
	Register(ActionSingleplayerInit, codec.Payload[Action](codec.NewStruct("SingleplayerInit",
		codec.Const[SingleplayerInit]("legacy", codec.U32, 0),
	)))

func init() {
	actionUnion.MustValidate(ActionKinds()...)
}

package systems

import (
	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/storage"
)

// GameContext is the read-only view of the world a system resolves
// against. It is built fresh at the start of every turn and discarded at
// the end; nothing else runs inside a turn, so it stays consistent
// without locking.
type GameContext struct {
	Game         *storage.Game
	Character    *storage.Character
	Location     *storage.Location
	Entities     []*storage.Entity
	Combat       *storage.CombatState
	Inventory    *storage.Inventory
	RecentEvents []action.Event
	Quests       []*storage.Quest
	Companions   []*storage.Entity

	// VisitedLocations backs safe-respawn and region-change decisions.
	VisitedLocations []*storage.Location
}

// EntityByID finds an entity present at the current location.
func (c *GameContext) EntityByID(id string) *storage.Entity {
	for _, e := range c.Entities {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// EntityNamed finds an entity present at the current location by a
// case-exact name match.
func (c *GameContext) EntityNamed(name string) *storage.Entity {
	for _, e := range c.Entities {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// InCombat reports whether an encounter is running.
func (c *GameContext) InCombat() bool {
	return c.Combat != nil && c.Combat.Active
}

// ActionDescriptor advertises one action a system could resolve right
// now. Advisory only; dispatch never consults it.
type ActionDescriptor struct {
	Type        action.Type
	Description string
}

// System is the contract every gameplay module implements. Resolve must
// not write to storage: durable effects are expressed only as mutations
// and events on the returned result. A system may mutate its own
// ephemeral state, such as the running combat encounter.
type System interface {
	ID() string
	CanHandle(a *action.Action) bool
	Resolve(a *action.Action, ctx *GameContext) (*action.Result, error)
	AvailableActions(ctx *GameContext) []ActionDescriptor
}

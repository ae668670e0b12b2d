package action

import (
	"github.com/google/uuid"
)

// Type identifies what kind of intention an Action carries. Rule systems
// claim actions by type; unrecognized input is tagged TypeUnrecognized so
// the dispatcher can short-circuit it.
type Type string

const (
	TypeAttack       Type = "attack"
	TypeDodge        Type = "dodge"
	TypeDash         Type = "dash"
	TypeDisengage    Type = "disengage"
	TypeFlee         Type = "flee"
	TypeCombatItem   Type = "combat_item"
	TypeCombatSpell  Type = "combat_spell"
	TypeMove         Type = "move"
	TypeLook         Type = "look"
	TypeSearch       Type = "search"
	TypeTalk         Type = "talk"
	TypeUseItem      Type = "use_item"
	TypeEquip        Type = "equip"
	TypeUnequip      Type = "unequip"
	TypeRest         Type = "rest"
	TypeCustom       Type = "custom"
	TypeUnrecognized Type = "unrecognized"
)

// Action is one tagged intention to change world state, produced from a
// player input or an NPC decision. Immutable once built.
type Action struct {
	ID         string
	Type       Type
	ActorID    string
	TargetID   string
	Parameters map[string]string
	RawInput   string
}

// New builds an Action with a generated id.
func New(t Type, actorID string) Action {
	return Action{
		ID:      uuid.NewString(),
		Type:    t,
		ActorID: actorID,
	}
}

// Param returns a parameter value, or the fallback when absent.
func (a Action) Param(key, fallback string) string {
	if v, ok := a.Parameters[key]; ok && v != "" {
		return v
	}
	return fallback
}

// DiceRoll records one dice expression resolved during action resolution,
// kept for the mechanical summary shown alongside the narrative.
type DiceRoll struct {
	Expression   string
	Rolls        []int
	Modifier     int
	Total        int
	Purpose      string
	Advantage    bool
	Disadvantage bool
}

// Result is the outcome of resolving an Action. Only its mutations and
// events survive beyond the turn; everything else is presentation input.
type Result struct {
	ActionID  string
	Success   bool
	Outcome   string
	DiceRolls []DiceRoll
	Mutations []Mutation
	Events    []Event
	XPGained  int

	// Unresolved marks the neutral result returned when no system claims
	// the action, leaving room for a free-form fallback.
	Unresolved bool
}

// Failed builds a failed result carrying only a description.
func Failed(actionID, outcome string) Result {
	return Result{ActionID: actionID, Outcome: outcome}
}

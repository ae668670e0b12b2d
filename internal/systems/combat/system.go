package combat

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/content"
	"github.com/pixil98/go-rpg/internal/dice"
	"github.com/pixil98/go-rpg/internal/mechanics"
	"github.com/pixil98/go-rpg/internal/storage"
	"github.com/pixil98/go-rpg/internal/systems"
)

// ItemUser resolves a combat item use. The inventory system implements
// it; combat consumes the turn but delegates the item semantics.
type ItemUser interface {
	UseInCombat(a *action.Action, ctx *systems.GameContext) (*action.Result, error)
}

// System is the turn-based combat rule module. It owns the encounter
// state machine: no combat, combat active, and combat ended by victory,
// defeat or flee.
type System struct {
	roller   dice.Roller
	repo     *storage.CombatRepo
	items    content.Storer[*content.ItemSpec]
	loot     content.Storer[*content.LootTableSpec]
	delegate ItemUser
}

func NewSystem(roller dice.Roller, repo *storage.CombatRepo, stores *content.Stores, delegate ItemUser) *System {
	s := &System{roller: roller, repo: repo, delegate: delegate}
	if stores != nil {
		s.items = stores.Items
		s.loot = stores.Loot
	}
	return s
}

func (s *System) ID() string { return "combat" }

func (s *System) CanHandle(a *action.Action) bool {
	switch a.Type {
	case action.TypeAttack, action.TypeFlee, action.TypeDodge,
		action.TypeDash, action.TypeDisengage,
		action.TypeCombatItem, action.TypeCombatSpell:
		return true
	}
	return false
}

func (s *System) AvailableActions(ctx *systems.GameContext) []systems.ActionDescriptor {
	if !ctx.InCombat() {
		if hostilesPresent(ctx) {
			return []systems.ActionDescriptor{
				{Type: action.TypeAttack, Description: "attack a hostile creature"},
			}
		}
		return nil
	}
	return []systems.ActionDescriptor{
		{Type: action.TypeAttack, Description: "attack an enemy"},
		{Type: action.TypeDodge, Description: "focus on dodging until your next turn"},
		{Type: action.TypeDash, Description: "move quickly around the battlefield"},
		{Type: action.TypeDisengage, Description: "withdraw carefully from melee"},
		{Type: action.TypeFlee, Description: "try to escape the fight"},
		{Type: action.TypeCombatItem, Description: "use an item"},
	}
}

// Resolve drives one full combat exchange: the player's chosen action,
// then every other combatant's turn, then the round counter. The
// encounter is persisted before returning so a crash mid-session resumes
// cleanly.
func (s *System) Resolve(a *action.Action, ctx *systems.GameContext) (*action.Result, error) {
	cs := ctx.Combat
	opened := false
	if cs == nil || !cs.Active {
		if a.Type != action.TypeAttack {
			// Combat-only actions outside combat are a no-op, not an error.
			return &action.Result{ActionID: a.ID, Success: true,
				Outcome: "There is no fight to speak of here."}, nil
		}

		var err error
		cs, err = s.initiate(a, ctx)
		if err != nil {
			return nil, err
		}
		if cs == nil {
			return &action.Result{ActionID: a.ID, Success: false,
				Outcome: "There is nothing here to attack."}, nil
		}
		ctx.Combat = cs
		opened = true
	}

	res := &action.Result{ActionID: a.ID, Success: true}
	if opened {
		s.openingEvents(ctx, cs, res)
	}

	player := cs.Find(ctx.Character.ID)
	if player == nil {
		return nil, fmt.Errorf("player %s missing from encounter %s", ctx.Character.ID, cs.ID)
	}
	// Dodging lasts until the player acts again.
	player.Conditions = mechanics.WithoutCondition(player.Conditions, "dodging")

	switch a.Type {
	case action.TypeAttack:
		s.playerAttack(a, ctx, cs, res)
	case action.TypeFlee:
		s.playerFlee(a, ctx, cs, res)
	case action.TypeDodge:
		player.Conditions = append(player.Conditions, "dodging")
		res.Outcome = "You raise your guard, watching every strike."
	case action.TypeDash:
		res.Outcome = "You dash across the field, gaining ground."
	case action.TypeDisengage:
		res.Outcome = "You pull back carefully, out of reach."
	case action.TypeCombatItem:
		s.useItem(a, ctx, res)
	case action.TypeCombatSpell:
		res.Success = false
		res.Outcome = "No spell comes to mind in the chaos of battle."
	}

	if cs.Active {
		s.npcTurns(ctx, cs, res)
	}
	if cs.Active {
		cs.Round++
	}

	if err := s.repo.SaveCombat(cs); err != nil {
		return nil, fmt.Errorf("persisting combat %s: %w", cs.ID, err)
	}
	return res, nil
}

func hostilesPresent(ctx *systems.GameContext) bool {
	for _, e := range ctx.Entities {
		if e.Hostile && e.Alive {
			return true
		}
	}
	return false
}

func (s *System) event(ctx *systems.GameContext, typ action.EventType, actorID, targetID, desc string) action.Event {
	locID := ""
	if ctx.Location != nil {
		locID = ctx.Location.ID
	}
	return action.Event{
		ID:          uuid.NewString(),
		GameID:      ctx.Game.ID,
		Type:        typ,
		TurnNumber:  ctx.Game.TurnNumber,
		Timestamp:   time.Now(),
		ActorID:     actorID,
		TargetID:    targetID,
		LocationID:  locID,
		Description: desc,
		Canonical:   true,
	}
}

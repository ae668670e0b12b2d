// Package rest resolves short and long rests. A long rest restores hit
// points, spell slots and morale; the orchestrator watches for the REST
// event to trigger a snapshot afterwards.
package rest

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/dice"
	"github.com/pixil98/go-rpg/internal/mechanics"
	"github.com/pixil98/go-rpg/internal/systems"
)

// DurationLong marks the REST event detail for a full night's sleep.
const (
	DurationShort = "short"
	DurationLong  = "long"
)

type System struct {
	roller dice.Roller
}

func NewSystem(roller dice.Roller) *System {
	return &System{roller: roller}
}

func (s *System) ID() string { return "rest" }

func (s *System) CanHandle(a *action.Action) bool {
	return a.Type == action.TypeRest
}

func (s *System) AvailableActions(ctx *systems.GameContext) []systems.ActionDescriptor {
	if ctx.InCombat() {
		return nil
	}
	return []systems.ActionDescriptor{
		{Type: action.TypeRest, Description: "take a short or long rest"},
	}
}

func (s *System) Resolve(a *action.Action, ctx *systems.GameContext) (*action.Result, error) {
	duration := a.Param("duration", DurationShort)
	switch duration {
	case DurationShort:
		return s.shortRest(a, ctx)
	case DurationLong:
		return s.longRest(a, ctx)
	}
	return &action.Result{ActionID: a.ID, Success: false,
		Outcome: "You can rest a while, or make camp for the night."}, nil
}

// shortRest rolls one hit die plus CON.
func (s *System) shortRest(a *action.Action, ctx *systems.GameContext) (*action.Result, error) {
	ch := ctx.Character
	res := &action.Result{ActionID: a.ID, Success: true}

	if ch.HPCurrent >= ch.HPMax {
		res.Outcome = "You catch your breath, already feeling fine."
		res.Events = append(res.Events, s.event(ctx, DurationShort, "Took a short rest."))
		return res, nil
	}

	conMod := mechanics.Modifier(ch.Abilities.Score(mechanics.Constitution))
	healed := mechanics.RollHitPoints(s.roller, ch.Class, conMod)

	newHP := ch.HPCurrent + healed
	if newHP > ch.HPMax {
		newHP = ch.HPMax
	}
	res.Mutations = append(res.Mutations, action.Mutation{
		TargetType: action.TargetCharacter,
		TargetID:   ch.ID,
		Field:      "hp_current",
		OldValue:   ch.HPCurrent,
		NewValue:   newHP,
	})
	res.Outcome = fmt.Sprintf("You rest for a while and recover %d hit points.", newHP-ch.HPCurrent)
	res.Events = append(res.Events, s.event(ctx, DurationShort, "Took a short rest."))
	return res, nil
}

// longRest restores everything and lifts morale.
func (s *System) longRest(a *action.Action, ctx *systems.GameContext) (*action.Result, error) {
	ch := ctx.Character
	res := &action.Result{ActionID: a.ID, Success: true,
		Outcome: "You make camp and sleep through the night, waking restored."}

	if ch.HPCurrent < ch.HPMax {
		res.Mutations = append(res.Mutations, action.Mutation{
			TargetType: action.TargetCharacter,
			TargetID:   ch.ID,
			Field:      "hp_current",
			OldValue:   ch.HPCurrent,
			NewValue:   ch.HPMax,
		})
	}

	if slots := mechanics.SpellSlots(ch.Class, ch.Level); len(slots) > 0 {
		res.Mutations = append(res.Mutations, action.Mutation{
			TargetType: action.TargetCharacter,
			TargetID:   ch.ID,
			Field:      "spell_slots",
			OldValue:   ch.SpellSlots,
			NewValue:   slots,
		})
	}

	needs := ch.Needs
	needs.Morale = 100
	res.Mutations = append(res.Mutations, action.Mutation{
		TargetType: action.TargetCharacter,
		TargetID:   ch.ID,
		Field:      "needs",
		OldValue:   ch.Needs,
		NewValue:   needs,
	})

	res.Events = append(res.Events, s.event(ctx, DurationLong, "Slept through the night."))
	return res, nil
}

func (s *System) event(ctx *systems.GameContext, duration, desc string) action.Event {
	return action.Event{
		ID:          uuid.NewString(),
		GameID:      ctx.Game.ID,
		Type:        action.EventRest,
		TurnNumber:  ctx.Game.TurnNumber,
		Timestamp:   time.Now(),
		ActorID:     ctx.Character.ID,
		LocationID:  ctx.Location.ID,
		Description: desc,
		Details:     map[string]any{"duration": duration},
		Canonical:   true,
	}
}

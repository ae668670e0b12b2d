// Package exploration resolves movement and looking around. Moving into
// an undefined direction asks the procedural-content director for a new
// location; region changes are flagged so the orchestrator can trigger a
// snapshot.
package exploration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/dice"
	"github.com/pixil98/go-rpg/internal/director"
	"github.com/pixil98/go-rpg/internal/mechanics"
	"github.com/pixil98/go-rpg/internal/storage"
	"github.com/pixil98/go-rpg/internal/systems"
)

const searchDC = 12

type System struct {
	roller    dice.Roller
	locations *storage.LocationRepo
	director  director.Director
}

func NewSystem(roller dice.Roller, locations *storage.LocationRepo, d director.Director) *System {
	if d == nil {
		d = director.NoOp{}
	}
	return &System{roller: roller, locations: locations, director: d}
}

func (s *System) ID() string { return "exploration" }

func (s *System) CanHandle(a *action.Action) bool {
	switch a.Type {
	case action.TypeMove, action.TypeLook, action.TypeSearch:
		return true
	}
	return false
}

func (s *System) AvailableActions(ctx *systems.GameContext) []systems.ActionDescriptor {
	out := []systems.ActionDescriptor{
		{Type: action.TypeLook, Description: "look around"},
		{Type: action.TypeSearch, Description: "search the area"},
	}
	if ctx.Location != nil {
		for _, c := range ctx.Location.Connections {
			out = append(out, systems.ActionDescriptor{
				Type:        action.TypeMove,
				Description: fmt.Sprintf("go %s", c.Direction),
			})
		}
	}
	return out
}

func (s *System) Resolve(a *action.Action, ctx *systems.GameContext) (*action.Result, error) {
	switch a.Type {
	case action.TypeMove:
		return s.move(a, ctx)
	case action.TypeLook:
		return s.look(a, ctx)
	case action.TypeSearch:
		return s.search(a, ctx)
	}
	return nil, fmt.Errorf("exploration cannot resolve %q", a.Type)
}

func (s *System) move(a *action.Action, ctx *systems.GameContext) (*action.Result, error) {
	direction := strings.ToLower(a.Param("direction", a.TargetID))
	if direction == "" {
		return &action.Result{ActionID: a.ID, Success: false,
			Outcome: "Which way?"}, nil
	}

	var destID string
	if conn := ctx.Location.ConnectionTo(direction); conn != nil {
		destID = conn.TargetID
	} else {
		// Undefined direction: the director may open new ground. It
		// persists whatever it generates.
		generated, err := s.director.GenerateLocation(context.Background(), direction, ctx)
		if err != nil || generated == nil {
			return &action.Result{ActionID: a.ID, Success: false,
				Outcome: "There is no path that way."}, nil
		}
		destID = generated.ID
	}

	dest, err := s.locations.Get(destID)
	if err != nil {
		return nil, fmt.Errorf("looking up destination %s: %w", destID, err)
	}

	res := &action.Result{
		ActionID: a.ID,
		Success:  true,
		Outcome:  fmt.Sprintf("You travel %s to %s.", direction, dest.Name),
	}

	res.Mutations = append(res.Mutations, action.Mutation{
		TargetType: action.TargetCharacter,
		TargetID:   ctx.Character.ID,
		Field:      "location_id",
		OldValue:   ctx.Location.ID,
		NewValue:   dest.ID,
	})
	if !dest.Visited {
		res.Mutations = append(res.Mutations, action.Mutation{
			TargetType: action.TargetLocation,
			TargetID:   dest.ID,
			Field:      "visited",
			OldValue:   false,
			NewValue:   true,
		})
	}

	ev := s.event(ctx, action.EventMove, fmt.Sprintf("Traveled %s to %s.", direction, dest.Name))
	ev.TargetID = dest.ID
	ev.Details = map[string]any{
		"direction":     direction,
		"from":          ctx.Location.ID,
		"to":            dest.ID,
		"region_change": dest.Region != ctx.Location.Region,
	}
	res.Events = append(res.Events, ev)

	if !dest.Visited {
		res.Events = append(res.Events, s.event(ctx, action.EventDiscovery,
			fmt.Sprintf("Discovered %s.", dest.Name)))
	}
	return res, nil
}

func (s *System) look(a *action.Action, ctx *systems.GameContext) (*action.Result, error) {
	loc := ctx.Location

	var sb strings.Builder
	sb.WriteString(loc.Description)
	if sb.Len() == 0 {
		sb.WriteString(fmt.Sprintf("You are at %s.", loc.Name))
	}

	for _, e := range ctx.Entities {
		if !e.Alive {
			continue
		}
		sb.WriteString(fmt.Sprintf(" %s is here.", e.Name))
	}
	if len(loc.Connections) > 0 {
		dirs := make([]string, len(loc.Connections))
		for i, c := range loc.Connections {
			dirs[i] = c.Direction
		}
		sb.WriteString(fmt.Sprintf(" Paths lead %s.", strings.Join(dirs, ", ")))
	}

	return &action.Result{ActionID: a.ID, Success: true, Outcome: sb.String()}, nil
}

func (s *System) search(a *action.Action, ctx *systems.GameContext) (*action.Result, error) {
	ch := ctx.Character
	ok, roll := mechanics.SkillCheck(s.roller,
		ch.Abilities.Score(mechanics.SkillAbility("perception")),
		mechanics.ProficiencyBonus(ch.Level),
		hasProficiency(ch, "perception"),
		searchDC)

	res := &action.Result{ActionID: a.ID, Success: ok}
	res.DiceRolls = append(res.DiceRolls, action.DiceRoll{
		Expression: "1d20",
		Rolls:      roll.Rolls,
		Modifier:   roll.Modifier,
		Total:      roll.Total,
		Purpose:    "search",
	})

	if !ok {
		res.Outcome = "You search the area but find nothing of note."
		res.Events = append(res.Events, s.event(ctx, action.EventExplorationFail, "Found nothing while searching."))
		return res, nil
	}

	res.Outcome = "Your careful search turns up traces others would have missed."
	ev := s.event(ctx, action.EventDiscovery, fmt.Sprintf("Searched %s thoroughly.", ctx.Location.Name))
	ev.Details = map[string]any{"roll": roll.Total, "dc": searchDC}
	res.Events = append(res.Events, ev)
	return res, nil
}

func hasProficiency(ch *storage.Character, skill string) bool {
	for _, p := range ch.Proficiencies {
		if p == skill {
			return true
		}
	}
	return false
}

func (s *System) event(ctx *systems.GameContext, typ action.EventType, desc string) action.Event {
	return action.Event{
		ID:          uuid.NewString(),
		GameID:      ctx.Game.ID,
		Type:        typ,
		TurnNumber:  ctx.Game.TurnNumber,
		Timestamp:   time.Now(),
		ActorID:     ctx.Character.ID,
		LocationID:  ctx.Location.ID,
		Description: desc,
		Canonical:   true,
	}
}

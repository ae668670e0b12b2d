// Package social resolves talking to NPCs. A successful talk emits a
// DIALOGUE event, which the orchestrator reads as entering conversation
// mode with that NPC.
package social

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/storage"
	"github.com/pixil98/go-rpg/internal/systems"
)

type System struct{}

func NewSystem() *System { return &System{} }

func (s *System) ID() string { return "social" }

func (s *System) CanHandle(a *action.Action) bool {
	return a.Type == action.TypeTalk
}

func (s *System) AvailableActions(ctx *systems.GameContext) []systems.ActionDescriptor {
	for _, e := range ctx.Entities {
		if e.Alive && !e.Hostile && e.Kind == storage.EntityNPC {
			return []systems.ActionDescriptor{
				{Type: action.TypeTalk, Description: "talk to someone here"},
			}
		}
	}
	return nil
}

func (s *System) Resolve(a *action.Action, ctx *systems.GameContext) (*action.Result, error) {
	npc := s.findNPC(a, ctx)
	if npc == nil {
		return &action.Result{ActionID: a.ID, Success: false,
			Outcome: "There is no one here to talk to."}, nil
	}
	if npc.Hostile {
		return &action.Result{ActionID: a.ID, Success: false,
			Outcome: fmt.Sprintf("%s snarls. Words won't help here.", npc.Name)}, nil
	}

	res := &action.Result{
		ActionID: a.ID,
		Success:  true,
		Outcome:  fmt.Sprintf("%s turns to face you.", npc.Name),
	}

	ev := action.Event{
		ID:          uuid.NewString(),
		GameID:      ctx.Game.ID,
		Type:        action.EventDialogue,
		TurnNumber:  ctx.Game.TurnNumber,
		Timestamp:   time.Now(),
		ActorID:     ctx.Character.ID,
		TargetID:    npc.ID,
		LocationID:  ctx.Location.ID,
		Description: fmt.Sprintf("Started a conversation with %s.", npc.Name),
		Details:     map[string]any{"npc_id": npc.ID, "npc_name": npc.Name},
		Canonical:   true,
	}
	res.Events = append(res.Events, ev)
	return res, nil
}

// findNPC matches the target id, then a case-insensitive name, then the
// only NPC present.
func (s *System) findNPC(a *action.Action, ctx *systems.GameContext) *storage.Entity {
	if a.TargetID != "" {
		if e := ctx.EntityByID(a.TargetID); e != nil && e.Alive {
			return e
		}
	}

	name := strings.ToLower(a.Param("target", ""))
	var candidates []*storage.Entity
	for _, e := range ctx.Entities {
		if !e.Alive || e.Kind != storage.EntityNPC {
			continue
		}
		if name != "" && strings.Contains(strings.ToLower(e.Name), name) {
			return e
		}
		candidates = append(candidates, e)
	}

	if name == "" && len(candidates) == 1 {
		return candidates[0]
	}
	return nil
}

// Package director defines the seam for the procedural-content
// collaborator: the component that injects NPCs, quests, locations and
// world events into a running game. The engine only depends on the
// interface; a language-model-backed implementation can be swapped in
// without touching the turn pipeline.
package director

import (
	"context"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/storage"
	"github.com/pixil98/go-rpg/internal/systems"
)

// Plausibility grades a free-form action attempt and names the check
// that would resolve it.
type Plausibility struct {
	// Score is in [0, 1]; below ~0.2 the attempt is rejected outright.
	Score   float64
	Skill   string
	Ability string
	DC      int
	Reason  string
}

// Director is invoked once per turn after mutations apply, and on demand
// when the player walks into undefined map territory.
type Director interface {
	// Evaluate may inject follow-up events after a resolved turn. Each
	// content kind is expected to cooldown-gate itself.
	Evaluate(ctx context.Context, game *systems.GameContext, res *action.Result) ([]action.Event, error)

	// GenerateLocation builds and persists a location for an undefined
	// direction, or returns nil when the world should stay closed there.
	GenerateLocation(ctx context.Context, direction string, game *systems.GameContext) (*storage.Location, error)

	// EvaluatePlausibility grades a creative free-form action.
	EvaluatePlausibility(ctx context.Context, a *action.Action, game *systems.GameContext) (Plausibility, error)
}

// NoOp is the default Director: it never injects content and keeps the
// map closed. Games run fine without procedural content.
type NoOp struct{}

func (NoOp) Evaluate(context.Context, *systems.GameContext, *action.Result) ([]action.Event, error) {
	return nil, nil
}

func (NoOp) GenerateLocation(context.Context, string, *systems.GameContext) (*storage.Location, error) {
	return nil, nil
}

func (NoOp) EvaluatePlausibility(context.Context, *action.Action, *systems.GameContext) (Plausibility, error) {
	return Plausibility{Score: 0.5, Skill: "athletics", Ability: "strength", DC: 12}, nil
}

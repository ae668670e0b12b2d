package systems

import (
	"log/slog"

	"github.com/pixil98/go-rpg/internal/action"
)

// Registry routes actions to rule systems. Registration order is the
// dispatch order: the first system whose CanHandle accepts the action
// resolves it. No two systems should claim the same action type; that is
// a wiring-time invariant, not checked at runtime.
type Registry struct {
	systems []System
}

func NewRegistry(systems ...System) *Registry {
	return &Registry{systems: systems}
}

func (r *Registry) Register(s System) {
	r.systems = append(r.systems, s)
}

// Dispatch finds the owning system and resolves the action. A resolver
// error becomes a failed result with a generic description so a broken
// system can never abort the turn. An unclaimed action yields a neutral
// unresolved result.
func (r *Registry) Dispatch(a *action.Action, ctx *GameContext) action.Result {
	for _, s := range r.systems {
		if !s.CanHandle(a) {
			continue
		}

		res, err := s.Resolve(a, ctx)
		if err != nil {
			slog.Error("system failed to resolve action",
				"system", s.ID(),
				"action_type", string(a.Type),
				"error", err)
			return action.Failed(a.ID, "Something interferes and the attempt goes nowhere.")
		}
		return *res
	}

	res := action.Failed(a.ID, "Nothing comes of it.")
	res.Unresolved = true
	return res
}

// AvailableActions collects every system's advertised actions.
func (r *Registry) AvailableActions(ctx *GameContext) []ActionDescriptor {
	var out []ActionDescriptor
	for _, s := range r.systems {
		out = append(out, s.AvailableActions(ctx)...)
	}
	return out
}

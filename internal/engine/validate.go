package engine

import (
	"log/slog"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/mechanics"
	"github.com/pixil98/go-rpg/internal/systems"
)

// validateAction is the pre-dispatch gate. A failure short-circuits the
// turn with a reason before any system runs; the turn still completes
// but world time does not advance.
func validateAction(a *action.Action, gctx *systems.GameContext) (bool, string) {
	ch := gctx.Character

	if !ch.Alive {
		return false, "You are in no state to act."
	}
	if !mechanics.CanTakeActions(ch.Conditions) {
		return false, "You are incapacitated and cannot take actions."
	}

	if gctx.InCombat() {
		switch a.Type {
		case action.TypeAttack, action.TypeDodge, action.TypeDash, action.TypeDisengage,
			action.TypeFlee, action.TypeCombatItem, action.TypeCombatSpell,
			action.TypeUseItem, action.TypeLook:
		default:
			return false, "Not while you're fighting for your life."
		}
	}
	return true, ""
}

var mutationTargets = map[action.TargetType]bool{
	action.TargetCharacter: true,
	action.TargetEntity:    true,
	action.TargetLocation:  true,
	action.TargetInventory: true,
	action.TargetGame:      true,
}

// validateMutations filters and clamps a result's mutations before they
// apply. Unknown targets are dropped with a warning rather than failing
// the turn; hp_current is clamped to [0, max] and gold never goes
// negative.
func validateMutations(muts []action.Mutation, gctx *systems.GameContext) []action.Mutation {
	out := make([]action.Mutation, 0, len(muts))
	for _, m := range muts {
		if !mutationTargets[m.TargetType] {
			slog.Warn("dropping mutation with unknown target",
				"target_type", m.TargetType, "field", m.Field)
			continue
		}

		if m.Field == "hp_current" {
			if v, ok := asInt(m.NewValue); ok {
				m.NewValue = clampHP(v, m, gctx)
			}
		}
		if m.Field == "gold" {
			if v, ok := asInt(m.NewValue); ok && v < 0 {
				m.NewValue = 0
			}
		}
		out = append(out, m)
	}
	return out
}

func clampHP(v int, m action.Mutation, gctx *systems.GameContext) int {
	max := 0
	switch m.TargetType {
	case action.TargetCharacter:
		max = gctx.Character.HPMax
	case action.TargetEntity:
		if ent := gctx.EntityByID(m.TargetID); ent != nil {
			max = ent.HPMax
		}
	}

	if v < 0 {
		return 0
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/mechanics"
	"github.com/pixil98/go-rpg/internal/systems"
)

// resolveCreative grades a free-form attempt through the director's
// plausibility check, then resolves it as a skill check. No system owns
// these actions; the orchestrator is their rule module.
func (e *Engine) resolveCreative(ctx context.Context, a *action.Action, gctx *systems.GameContext) *action.Result {
	p, err := e.director.EvaluatePlausibility(ctx, a, gctx)
	if err != nil {
		slog.Warn("plausibility evaluation failed", "err", err)
		res := action.Failed(a.ID, "Nothing comes of it.")
		res.Unresolved = true
		return &res
	}

	if p.Score < plausibilityFloor {
		reason := p.Reason
		if reason == "" {
			reason = "That simply isn't possible here."
		}
		res := action.Failed(a.ID, reason)
		res.Events = append(res.Events, e.creativeEvent(gctx, action.EventCreativeFail,
			fmt.Sprintf("Attempted the impossible: %s", a.RawInput), p.Skill, p.DC, 0))
		return &res
	}

	ch := gctx.Character
	ok, roll := mechanics.SkillCheck(e.roller,
		ch.Abilities.Score(p.Ability),
		mechanics.ProficiencyBonus(ch.Level),
		hasProficiency(ch.Proficiencies, p.Skill),
		p.DC)

	res := &action.Result{ActionID: a.ID, Success: ok}
	res.DiceRolls = append(res.DiceRolls, action.DiceRoll{
		Expression: "1d20",
		Rolls:      roll.Rolls,
		Modifier:   roll.Modifier,
		Total:      roll.Total,
		Purpose:    p.Skill,
	})

	if ok {
		res.Outcome = "Improbably, it works."
		res.Events = append(res.Events, e.creativeEvent(gctx, action.EventCreativeAction,
			fmt.Sprintf("Pulled off a stunt: %s", a.RawInput), p.Skill, p.DC, roll.Total))
	} else {
		res.Outcome = "You give it an honest try, but it doesn't come together."
		res.Events = append(res.Events, e.creativeEvent(gctx, action.EventCreativeFail,
			fmt.Sprintf("Failed a stunt: %s", a.RawInput), p.Skill, p.DC, roll.Total))
	}
	return res
}

func (e *Engine) creativeEvent(gctx *systems.GameContext, typ action.EventType, desc, skill string, dc, roll int) action.Event {
	return action.Event{
		ID:          uuid.NewString(),
		GameID:      gctx.Game.ID,
		Type:        typ,
		TurnNumber:  gctx.Game.TurnNumber,
		Timestamp:   time.Now(),
		ActorID:     gctx.Character.ID,
		LocationID:  gctx.Location.ID,
		Description: desc,
		Details:     map[string]any{"skill": skill, "dc": dc, "roll": roll},
		Canonical:   true,
	}
}

func hasProficiency(proficiencies []string, skill string) bool {
	for _, p := range proficiencies {
		if p == skill {
			return true
		}
	}
	return false
}

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/mechanics"
	"github.com/pixil98/go-rpg/internal/storage"
	"github.com/pixil98/go-rpg/internal/systems"
)

var titler = cases.Title(language.English)

// LevelUp is the payload handed to the renderer when the player gains a
// level this turn.
type LevelUp struct {
	NewLevel int
	HPGained int
	NewHPMax int
}

// awardXP adds earned XP and resolves at most one level-up. Each write
// failure is logged; a half-applied level-up is tolerated over losing
// the turn.
func (e *Engine) awardXP(gctx *systems.GameContext, xp int) *LevelUp {
	ch := gctx.Character
	newXP := ch.XP + xp
	if err := e.store.Characters.UpdateField(ch.ID, "xp", newXP); err != nil {
		slog.Error("writing xp", "err", err)
		return nil
	}
	ch.XP = newXP

	if !mechanics.CanLevelUp(ch.Level, newXP) {
		return nil
	}

	newLevel := ch.Level + 1
	conMod := mechanics.Modifier(ch.Abilities.Score(mechanics.Constitution))
	gained := mechanics.RollHitPoints(e.roller, ch.Class, conMod)

	up := &LevelUp{NewLevel: newLevel, HPGained: gained, NewHPMax: ch.HPMax + gained}

	writes := map[string]any{
		"level":      newLevel,
		"hp_max":     up.NewHPMax,
		"hp_current": ch.HPCurrent + gained,
	}
	if slots := mechanics.SpellSlots(ch.Class, newLevel); len(slots) > 0 {
		writes["spell_slots"] = slots
	}
	for field, v := range writes {
		if err := e.store.Characters.UpdateField(ch.ID, field, v); err != nil {
			slog.Error("applying level-up", "field", field, "err", err)
		}
	}

	ev := action.Event{
		ID:          uuid.NewString(),
		GameID:      gctx.Game.ID,
		Type:        action.EventLevelUp,
		TurnNumber:  gctx.Game.TurnNumber,
		Timestamp:   time.Now(),
		ActorID:     ch.ID,
		LocationID:  gctx.Location.ID,
		Description: fmt.Sprintf("%s reached level %d.", ch.Name, newLevel),
		Details:     map[string]any{"new_level": newLevel, "hp_gained": gained},
		Canonical:   true,
	}
	e.recordEvents([]action.Event{ev})
	return up
}

// tickSurvival decays needs one turn and reports threshold crossings.
func (e *Engine) tickSurvival(gctx *systems.GameContext) []string {
	ch := gctx.Character
	conMod := mechanics.Modifier(ch.Abilities.Score(mechanics.Constitution))

	old := ch.Needs
	updated := mechanics.TickNeeds(old, gctx.Location.Climate, conMod)
	if updated == old {
		return nil
	}

	if err := e.store.Characters.UpdateField(ch.ID, "needs", updated); err != nil {
		slog.Error("writing needs", "err", err)
		return nil
	}
	ch.Needs = updated

	var warnings []string
	checks := []struct {
		name     string
		old, cur int
	}{
		{"hunger", old.Hunger, updated.Hunger},
		{"thirst", old.Thirst, updated.Thirst},
		{"warmth", old.Warmth, updated.Warmth},
		{"morale", old.Morale, updated.Morale},
	}
	for _, c := range checks {
		before := mechanics.ClassifyNeed(c.name, c.old)
		after := mechanics.ClassifyNeed(c.name, c.cur)
		if after.Penalty < before.Penalty {
			warnings = append(warnings, fmt.Sprintf("You feel %s. (%s: %d/100)",
				strings.ToLower(after.Label), titler.String(c.name), c.cur))
		}
	}
	return warnings
}

// tickWeakened counts down the post-death penalty and lifts the
// condition when it expires.
func (e *Engine) tickWeakened(gctx *systems.GameContext) {
	ch := gctx.Character
	if ch.WeakenedTurns <= 0 {
		return
	}

	remaining := ch.WeakenedTurns - 1
	if err := e.store.Characters.UpdateField(ch.ID, "weakened_turns", remaining); err != nil {
		slog.Error("writing weakened counter", "err", err)
		return
	}
	ch.WeakenedTurns = remaining

	if remaining == 0 {
		conditions := mechanics.WithoutCondition(ch.Conditions, "weakened")
		if err := e.store.Characters.UpdateField(ch.ID, "conditions", conditions); err != nil {
			slog.Error("clearing weakened condition", "err", err)
			return
		}
		ch.Conditions = conditions
	}
}

// evaluateDirector runs the procedural-content hook and records anything
// it injects. Failures never block the turn.
func (e *Engine) evaluateDirector(ctx context.Context, gctx *systems.GameContext, res *action.Result) {
	events, err := e.director.Evaluate(ctx, gctx, res)
	if err != nil {
		slog.Warn("director evaluation failed", "err", err)
		return
	}
	if len(events) > 0 {
		e.recordEvents(events)
	}
}

// snapshotTrigger decides whether this turn warrants a snapshot.
func (e *Engine) snapshotTrigger(gctx *systems.GameContext, res *action.Result) string {
	for _, ev := range res.Events {
		if ev.Type == action.EventRest && ev.Detail("duration") == "long" {
			return storage.TriggerLongRest
		}
		if ev.Type == action.EventMove {
			if changed, ok := ev.Details["region_change"].(bool); ok && changed {
				return storage.TriggerRegionChange
			}
		}
	}

	if gctx.Game.TurnNumber-gctx.Game.LastSnapshotTurn >= e.snapshotInterval {
		return storage.TriggerInterval
	}
	return ""
}

// maybeSnapshot captures a snapshot when a trigger fires and prunes old
// ones.
func (e *Engine) maybeSnapshot(gctx *systems.GameContext, res *action.Result) {
	trigger := e.snapshotTrigger(gctx, res)
	if trigger == "" {
		return
	}

	snap, err := e.serializer.Capture(gctx.Game.ID, trigger)
	if err != nil {
		slog.Warn("snapshot capture failed", "trigger", trigger, "err", err)
		return
	}
	if err := e.store.Snapshots.DeleteOld(gctx.Game.ID, e.snapshotKeep); err != nil {
		slog.Warn("pruning snapshots", "err", err)
	}

	gctx.Game.LastSnapshotTurn = gctx.Game.TurnNumber
	slog.Info("snapshot created", "trigger", trigger, "snapshot_id", snap.ID,
		"turn", gctx.Game.TurnNumber)
}

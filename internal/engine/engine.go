// Package engine is the turn orchestrator: it builds a fresh context,
// classifies input, drives dispatch, validates and applies mutations,
// records events, runs secondary effects and produces a render-ready
// result. Nothing below the orchestrator may prevent a turn from
// producing a result; every collaborator call degrades.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/classify"
	"github.com/pixil98/go-rpg/internal/dice"
	"github.com/pixil98/go-rpg/internal/director"
	"github.com/pixil98/go-rpg/internal/llm"
	"github.com/pixil98/go-rpg/internal/mechanics"
	"github.com/pixil98/go-rpg/internal/storage"
	"github.com/pixil98/go-rpg/internal/systems"
)

const (
	defaultSnapshotInterval = 20
	defaultSnapshotKeep     = 10

	// Creative attempts below this plausibility are rejected outright.
	plausibilityFloor = 0.2
)

// EventPublisher pushes recorded events to subscribers. The ledger is
// authoritative; publication is best effort.
type EventPublisher interface {
	Publish(ev action.Event) error
}

// TurnResult is everything the rendering collaborator needs to show one
// resolved turn.
type TurnResult struct {
	Narrative         string
	MechanicalSummary string
	Result            *action.Result
	Events            []action.Event
	LevelUp           *LevelUp
	NeedWarnings      []string
	TurnNumber        int
}

// Options carries the optional collaborators. Zero values disable the
// model-backed narration, procedural content and event publication.
type Options struct {
	Provider         llm.Provider
	Director         director.Director
	Publisher        EventPublisher
	SnapshotInterval int
	SnapshotKeep     int
}

type Engine struct {
	store      *storage.Store
	registry   *systems.Registry
	classifier classify.Classifier
	roller     dice.Roller
	serializer *Serializer

	provider  llm.Provider
	director  director.Director
	publisher EventPublisher

	snapshotInterval int
	snapshotKeep     int
}

func New(store *storage.Store, registry *systems.Registry, classifier classify.Classifier, roller dice.Roller, opts Options) *Engine {
	if opts.Director == nil {
		opts.Director = director.NoOp{}
	}
	if opts.SnapshotInterval <= 0 {
		opts.SnapshotInterval = defaultSnapshotInterval
	}
	if opts.SnapshotKeep <= 0 {
		opts.SnapshotKeep = defaultSnapshotKeep
	}
	return &Engine{
		store:            store,
		registry:         registry,
		classifier:       classifier,
		roller:           roller,
		serializer:       NewSerializer(store),
		provider:         opts.Provider,
		director:         opts.Director,
		publisher:        opts.Publisher,
		snapshotInterval: opts.SnapshotInterval,
		snapshotKeep:     opts.SnapshotKeep,
	}
}

// Serializer exposes snapshot capture/restore for callers outside the
// turn pipeline (manual rewinds).
func (e *Engine) Serializer() *Serializer {
	return e.serializer
}

// ProcessTurn resolves one raw player input into a completed turn. It
// only errors when storage itself is unusable; everything else comes
// back as a playable result.
func (e *Engine) ProcessTurn(ctx context.Context, gameID, rawInput string) (*TurnResult, error) {
	gctx, err := e.buildContext(gameID)
	if err != nil {
		return nil, err
	}

	// Conversation short-circuit: free text routes to dialogue until the
	// player says goodbye or does something that breaks the exchange.
	var a action.Action
	if npcID := gctx.Game.ConversationNPCID; npcID != "" {
		if classify.ExitsConversation(rawInput) {
			gctx.Game.ConversationNPCID = ""
			return e.finishTurn(gctx, &TurnResult{
				Narrative: e.conversationExitLine(npcID),
			})
		}

		a = e.classifier.Classify(ctx, rawInput, gctx)
		if !classify.BreaksConversation(a.Type) {
			return e.dialogueTurn(ctx, gctx, npcID, rawInput)
		}
		gctx.Game.ConversationNPCID = ""
	} else {
		a = e.classifier.Classify(ctx, rawInput, gctx)
	}

	if a.Type == action.TypeUnrecognized {
		return e.finishTurn(gctx, &TurnResult{
			Narrative: "You're not sure how to go about that.",
		})
	}

	if ok, reason := validateAction(&a, gctx); !ok {
		return e.finishTurn(gctx, &TurnResult{Narrative: reason})
	}

	// Items used mid-fight resolve through the combat system so the
	// round advances.
	if gctx.InCombat() && a.Type == action.TypeUseItem {
		a.Type = action.TypeCombatItem
	}

	var res *action.Result
	if a.Type == action.TypeCustom {
		res = e.resolveCreative(ctx, &a, gctx)
	} else {
		dispatched := e.registry.Dispatch(&a, gctx)
		res = &dispatched
	}

	res.Mutations = validateMutations(res.Mutations, gctx)
	e.applyMutations(res.Mutations, gctx)
	e.recordEvents(res.Events)

	out := &TurnResult{
		Result:            res,
		Events:            res.Events,
		MechanicalSummary: mechanicalSummary(res),
	}

	if res.XPGained > 0 {
		out.LevelUp = e.awardXP(gctx, res.XPGained)
	}

	// Secondary effects run only outside combat, each fault-isolated.
	if !gctx.InCombat() {
		gctx.Game.WorldTime = int64(mechanics.AdvanceClock(int(gctx.Game.WorldTime), 1))
		e.evaluateDirector(ctx, gctx, res)
		e.maybeSnapshot(gctx, res)
		out.NeedWarnings = e.tickSurvival(gctx)
		e.tickWeakened(gctx)
	}

	// A dialogue event this turn enters conversation mode with that NPC.
	for _, ev := range res.Events {
		if ev.Type == action.EventDialogue {
			gctx.Game.ConversationNPCID = ev.TargetID
			break
		}
	}

	out.Narrative = e.narrate(ctx, gctx, res)
	return e.finishTurn(gctx, out)
}

// finishTurn advances the turn counter and persists the game row. Every
// processed input counts as a turn, including rejected ones; world time
// only moves for resolved actions.
func (e *Engine) finishTurn(gctx *systems.GameContext, out *TurnResult) (*TurnResult, error) {
	gctx.Game.TurnNumber++
	out.TurnNumber = gctx.Game.TurnNumber

	if err := e.store.Games.Save(gctx.Game); err != nil {
		return nil, fmt.Errorf("saving game row: %w", err)
	}
	return out, nil
}

// recordEvents appends to the ledger and publishes. Ledger failures are
// logged; publication is fire-and-forget.
func (e *Engine) recordEvents(events []action.Event) {
	for _, ev := range events {
		if err := e.store.Events.Append(ev); err != nil {
			slog.Error("recording event", "type", ev.Type, "err", err)
			continue
		}
		if e.publisher != nil {
			if err := e.publisher.Publish(ev); err != nil {
				slog.Warn("publishing event", "type", ev.Type, "err", err)
			}
		}
	}
}

func mechanicalSummary(res *action.Result) string {
	if len(res.DiceRolls) == 0 {
		return ""
	}
	parts := make([]string, len(res.DiceRolls))
	for i, dr := range res.DiceRolls {
		parts[i] = fmt.Sprintf("%s: %s = %d", dr.Purpose, dr.Expression, dr.Total)
	}
	return strings.Join(parts, " | ")
}

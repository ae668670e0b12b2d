package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/llm"
	"github.com/pixil98/go-rpg/internal/systems"
)

func (e *Engine) conversationExitLine(npcID string) string {
	npc, err := e.store.Entities.Get(npcID)
	if err != nil || npc == nil {
		return "You end the conversation."
	}
	return fmt.Sprintf("You end your conversation with %s.", npc.Name)
}

// dialogueTurn resolves conversational free text as an NPC exchange.
// It records the line on the ledger but never advances the world clock.
func (e *Engine) dialogueTurn(ctx context.Context, gctx *systems.GameContext, npcID, rawInput string) (*TurnResult, error) {
	npc := gctx.EntityByID(npcID)
	if npc == nil {
		var err error
		npc, err = e.store.Entities.Get(npcID)
		if err != nil || npc == nil {
			gctx.Game.ConversationNPCID = ""
			return e.finishTurn(gctx, &TurnResult{
				Narrative: "There's no one here to talk to anymore.",
			})
		}
	}

	line, mood := e.npcReply(ctx, gctx, npc.Name, npcID, rawInput)

	ev := action.Event{
		ID:          uuid.NewString(),
		GameID:      gctx.Game.ID,
		Type:        action.EventDialogue,
		TurnNumber:  gctx.Game.TurnNumber,
		Timestamp:   time.Now(),
		ActorID:     gctx.Character.ID,
		TargetID:    npc.ID,
		LocationID:  gctx.Character.LocationID,
		Description: fmt.Sprintf("Spoke with %s.", npc.Name),
		Details: map[string]any{
			"npc_id":   npc.ID,
			"npc_name": npc.Name,
			"player":   rawInput,
			"line":     line,
			"mood":     mood,
		},
	}
	e.recordEvents([]action.Event{ev})

	return e.finishTurn(gctx, &TurnResult{
		Narrative: fmt.Sprintf("**%s:** %q", npc.Name, line),
		Events:    []action.Event{ev},
	})
}

// npcReply asks the model for the NPC's next line, folding recent
// exchange turns back into the prompt. Degrades to a canned line.
func (e *Engine) npcReply(ctx context.Context, gctx *systems.GameContext, npcName, npcID, input string) (line, mood string) {
	line = "Hmm? Oh, hello there."
	mood = "neutral"
	if e.provider == nil {
		return line, mood
	}

	var history []string
	for _, ev := range gctx.RecentEvents {
		if ev.Type != action.EventDialogue || ev.Detail("npc_id") != npcID {
			continue
		}
		if p := ev.Detail("player"); p != "" {
			history = append(history, fmt.Sprintf("%s: %s", gctx.Character.Name, p))
		}
		if l := ev.Detail("line"); l != "" {
			history = append(history, fmt.Sprintf("%s: %s", npcName, l))
		}
	}

	prompt, err := llm.RenderPrompt("dialogue.tmpl", map[string]any{
		"NPCName":        npcName,
		"NPCDescription": "",
		"CharacterName":  gctx.Character.Name,
		"LocationName":   gctx.Location.Name,
		"History":        history,
		"Input":          input,
	})
	if err != nil {
		slog.Error("rendering dialogue prompt", "err", err)
		return line, mood
	}

	raw, err := e.provider.Generate(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		slog.Warn("dialogue generation failed", "npc", npcName, "err", err)
		return line, mood
	}
	return llm.ParseDialogue(raw)
}

// narrate turns a mechanical result into prose. With no provider, or
// when generation fails, the system's own outcome line stands.
func (e *Engine) narrate(ctx context.Context, gctx *systems.GameContext, res *action.Result) string {
	// Talk actions render as the NPC's opening line rather than a
	// description of the exchange starting.
	for _, ev := range res.Events {
		if ev.Type == action.EventDialogue && res.Success {
			name := ev.Detail("npc_name")
			line, _ := e.npcReply(ctx, gctx, name, ev.TargetID, "Hello.")
			return fmt.Sprintf("%s\n\n**%s:** %q", res.Outcome, name, line)
		}
	}

	if e.provider == nil || !res.Success {
		return res.Outcome
	}

	events := make([]string, 0, len(res.Events))
	for _, ev := range res.Events {
		events = append(events, ev.Description)
	}
	recent := make([]string, 0, len(gctx.RecentEvents))
	for _, ev := range gctx.RecentEvents {
		recent = append(recent, ev.Description)
	}

	prompt, err := llm.RenderPrompt("narration.tmpl", map[string]any{
		"LocationName":        gctx.Location.Name,
		"LocationDescription": gctx.Location.Description,
		"Outcome":             res.Outcome,
		"Events":              events,
		"Recent":              recent,
	})
	if err != nil {
		slog.Error("rendering narration prompt", "err", err)
		return res.Outcome
	}

	raw, err := e.provider.Generate(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		slog.Warn("narration failed", "err", err)
		return res.Outcome
	}

	text, hooks := llm.ParseNarrative(raw)
	if len(hooks) > 0 {
		slog.Debug("narration hooks", "hooks", hooks)
	}
	if text == "" {
		return res.Outcome
	}
	return text
}

// Package classify turns raw player text into tagged actions. An ordered
// regex pattern table handles the common verbs; anything it misses can
// fall through to a language-model classifier gated by a confidence
// floor. Unrecognizable input is tagged, never dropped; the engine turns
// it into a neutral result.
package classify

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/llm"
	"github.com/pixil98/go-rpg/internal/systems"
)

// ConfidenceFloor is the minimum model confidence for a fallback
// classification to be trusted.
const ConfidenceFloor = 0.4

// Classifier maps player input to an Action. Implementations never fail
// a turn: input that cannot be classified comes back TypeUnrecognized.
type Classifier interface {
	Classify(ctx context.Context, raw string, game *systems.GameContext) action.Action
}

type rule struct {
	typ     action.Type
	pattern *regexp.Regexp
	apply   func(a *action.Action, groups []string)
}

func target(a *action.Action, groups []string) {
	if len(groups) > 1 && groups[1] != "" {
		a.Parameters = map[string]string{"target": strings.TrimSpace(groups[1])}
	}
}

func item(a *action.Action, groups []string) {
	if len(groups) > 1 && groups[1] != "" {
		a.Parameters = map[string]string{"item": strings.TrimSpace(groups[1])}
	}
}

var directions = map[string]string{
	"n": "north", "s": "south", "e": "east", "w": "west",
	"ne": "northeast", "nw": "northwest", "se": "southeast", "sw": "southwest",
	"u": "up", "d": "down",
}

// NormalizeDirection expands single-letter compass shorthand.
func NormalizeDirection(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	if full, ok := directions[d]; ok {
		return full
	}
	return d
}

func direction(a *action.Action, groups []string) {
	if len(groups) > 1 && groups[1] != "" {
		a.Parameters = map[string]string{"direction": NormalizeDirection(groups[1])}
	}
}

// rules is ordered: specific verbs first, the greedy look/search patterns
// last so "examine the altar" is not swallowed by movement.
var rules = []rule{
	{action.TypeMove, regexp.MustCompile(`(?i)^(?:go|move|walk|head|travel)\s+(?:to\s+)?(.+)$`), direction},
	{action.TypeMove, regexp.MustCompile(`(?i)^(north|south|east|west|northeast|northwest|southeast|southwest|n|s|e|w|up|down|ne|nw|se|sw)$`), direction},

	{action.TypeAttack, regexp.MustCompile(`(?i)^(?:attack|hit|strike|fight|kill|stab|slash)\s+(.+)$`), target},
	{action.TypeTalk, regexp.MustCompile(`(?i)^(?:can\s+i\s+|let\s+me\s+|i\s+want\s+to\s+|i(?:'d|\s+would)\s+like\s+to\s+)?(?:talk|speak|chat)\s+(?:to|with)\s+(.+?)[\s?.!]*$`), target},
	{action.TypeEquip, regexp.MustCompile(`(?i)^(?:equip|wear|wield|put\s+on)\s+(.+)$`), item},
	{action.TypeUnequip, regexp.MustCompile(`(?i)^(?:unequip|remove|take\s+off|doff)\s+(.+)$`), unequipSlot},
	{action.TypeUseItem, regexp.MustCompile(`(?i)^(?:use|drink|eat|consume|apply)\s+(.+)$`), item},
	{action.TypeRest, regexp.MustCompile(`(?i)^(?:rest|sleep|camp)(?:\s+(short|long))?$`), restDuration},
	{action.TypeDodge, regexp.MustCompile(`(?i)^(?:dodge|evade)$`), nil},
	{action.TypeDash, regexp.MustCompile(`(?i)^(?:dash|run|sprint)$`), nil},
	{action.TypeFlee, regexp.MustCompile(`(?i)^(?:flee|escape|retreat)$`), nil},
	{action.TypeDisengage, regexp.MustCompile(`(?i)^(?:disengage|withdraw)$`), nil},

	// Numbered combat menu.
	{action.TypeAttack, regexp.MustCompile(`^1$`), nil},
	{action.TypeCombatSpell, regexp.MustCompile(`^2$`), nil},
	{action.TypeCombatItem, regexp.MustCompile(`^3$`), nil},
	{action.TypeFlee, regexp.MustCompile(`^4$`), nil},
	{action.TypeDodge, regexp.MustCompile(`^5$`), nil},

	// Greedy patterns stay last: they match nearly anything.
	{action.TypeLook, regexp.MustCompile(`(?i)^(?:look|examine|inspect|observe)(?:\s+(?:at|around)\s*)?(.*)$`), target},
	{action.TypeSearch, regexp.MustCompile(`(?i)^(?:search|investigate|check|look\s+for)(?:\s+(.+))?$`), target},
}

func restDuration(a *action.Action, groups []string) {
	d := "short"
	if len(groups) > 1 && groups[1] != "" {
		d = strings.ToLower(groups[1])
	}
	a.Parameters = map[string]string{"duration": d}
}

var slots = map[string]bool{"weapon": true, "armor": true, "offhand": true}

func unequipSlot(a *action.Action, groups []string) {
	if len(groups) < 2 || groups[1] == "" {
		return
	}
	got := strings.ToLower(strings.TrimSpace(groups[1]))
	if slots[got] {
		a.Parameters = map[string]string{"slot": got}
	}
}

// Pattern is the default classifier: the regex table, with an optional
// model fallback for input no pattern claims.
type Pattern struct {
	provider llm.Provider
}

// NewPattern builds the classifier. A nil provider disables the model
// fallback; unmatched input then comes back unrecognized.
func NewPattern(provider llm.Provider) *Pattern {
	return &Pattern{provider: provider}
}

func (p *Pattern) Classify(ctx context.Context, raw string, game *systems.GameContext) action.Action {
	text := strings.TrimSpace(raw)
	actorID := game.Character.ID

	if text == "" {
		a := action.New(action.TypeUnrecognized, actorID)
		a.RawInput = raw
		return a
	}

	for _, r := range rules {
		m := r.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		a := action.New(r.typ, actorID)
		a.RawInput = raw
		if r.apply != nil {
			r.apply(&a, m)
		}
		return a
	}

	if p.provider != nil {
		return p.fallback(ctx, raw, game)
	}

	a := action.New(action.TypeUnrecognized, actorID)
	a.RawInput = raw
	return a
}

// knownTypes are the classifications the model may hand back directly;
// everything else becomes a custom action.
var knownTypes = map[string]action.Type{
	"attack":    action.TypeAttack,
	"move":      action.TypeMove,
	"look":      action.TypeLook,
	"search":    action.TypeSearch,
	"talk":      action.TypeTalk,
	"use_item":  action.TypeUseItem,
	"equip":     action.TypeEquip,
	"unequip":   action.TypeUnequip,
	"rest":      action.TypeRest,
	"flee":      action.TypeFlee,
	"dodge":     action.TypeDodge,
	"dash":      action.TypeDash,
	"disengage": action.TypeDisengage,
	"custom":    action.TypeCustom,
}

func (p *Pattern) fallback(ctx context.Context, raw string, game *systems.GameContext) action.Action {
	unrecognized := action.New(action.TypeUnrecognized, game.Character.ID)
	unrecognized.RawInput = raw

	var targets []string
	for _, e := range game.Entities {
		if e.Alive {
			targets = append(targets, e.Name)
		}
	}

	prompt, err := llm.RenderPrompt("classify.tmpl", map[string]any{
		"Input":         raw,
		"CharacterName": game.Character.Name,
		"Class":         game.Character.Class,
		"Level":         game.Character.Level,
		"LocationName":  game.Location.Name,
		"Targets":       targets,
		"ActionTypes":   typeNames(),
	})
	if err != nil {
		slog.Error("building classifier prompt", "err", err)
		return unrecognized
	}

	fields, err := p.provider.GenerateStructured(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		slog.Warn("classifier fallback failed", "err", err)
		return unrecognized
	}

	c := llm.ParseClassification(fields)
	if c.Confidence < ConfidenceFloor {
		return unrecognized
	}

	typ, ok := knownTypes[strings.ToLower(c.ActionType)]
	if !ok {
		typ = action.TypeCustom
	}

	a := action.New(typ, game.Character.ID)
	a.RawInput = raw
	a.Parameters = c.Parameters
	if c.Target != "" {
		// The model hands back a name, not an id; systems resolve names
		// through the target parameter.
		if a.Parameters == nil {
			a.Parameters = map[string]string{}
		}
		a.Parameters["target"] = c.Target
	}
	return a
}

func typeNames() []string {
	out := make([]string, 0, len(knownTypes))
	for name := range knownTypes {
		out = append(out, name)
	}
	return out
}

package session

import (
	"context"
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-rpg/internal/engine"
)

type scriptedEngine struct {
	inputs  []string
	results map[string]*engine.TurnResult
}

func (s *scriptedEngine) ProcessTurn(_ context.Context, _, rawInput string) (*engine.TurnResult, error) {
	s.inputs = append(s.inputs, rawInput)
	if res, ok := s.results[rawInput]; ok {
		return res, nil
	}
	return &engine.TurnResult{Narrative: "Nothing happens."}, nil
}

func TestSessionLoop(t *testing.T) {
	eng := &scriptedEngine{results: map[string]*engine.TurnResult{
		"look": {Narrative: "A quiet square."},
	}}
	in := strings.NewReader("look\n\nquit\n")
	var out strings.Builder

	s := New(eng, "g1", in, &out)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("running session: %v", err)
	}

	testutil.AssertEqual(t, "turns processed", len(eng.inputs), 1)
	testutil.AssertEqual(t, "input", eng.inputs[0], "look")
	if !strings.Contains(out.String(), "A quiet square.") {
		t.Errorf("narrative missing from output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Farewell.") {
		t.Errorf("quit farewell missing from output:\n%s", out.String())
	}
}

func TestRenderIncludesMechanicsAndWarnings(t *testing.T) {
	got := Render(&engine.TurnResult{
		Narrative:         "Your blade bites deep.",
		MechanicalSummary: "attack: 1d20 = 18",
		LevelUp:           &engine.LevelUp{NewLevel: 2, HPGained: 6, NewHPMax: 16},
		NeedWarnings:      []string{"You feel hungry. (Hunger: 40/100)"},
	})

	for _, want := range []string{
		"Your blade bites deep.",
		"[attack: 1d20 = 18]",
		"*** You reached level 2! (+6 HP, now 16 max) ***",
		"! You feel hungry. (Hunger: 40/100)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("rendered turn missing %q:\n%s", want, got)
		}
	}
}

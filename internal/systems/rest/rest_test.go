package rest

import (
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/dice"
	"github.com/pixil98/go-rpg/internal/mechanics"
	"github.com/pixil98/go-rpg/internal/storage"
	"github.com/pixil98/go-rpg/internal/systems"
)

func testContext(ch *storage.Character) *systems.GameContext {
	return &systems.GameContext{
		Game:      &storage.Game{ID: "g1", TurnNumber: 1},
		Character: ch,
		Location:  &storage.Location{ID: "camp", GameID: "g1", Name: "Roadside Camp"},
	}
}

func TestShortRestHealsHitDie(t *testing.T) {
	ch := &storage.Character{ID: "player", GameID: "g1", Name: "Aldric",
		Class: "rogue", Level: 1, HPCurrent: 2, HPMax: 10, Alive: true,
		Abilities: mechanics.AbilityScores{mechanics.Constitution: 14},
	}

	s := NewSystem(&dice.Stub{Faces: []int{5}})
	a := action.New(action.TypeRest, "player")

	res, err := s.Resolve(&a, testContext(ch))
	if err != nil {
		t.Fatalf("resolving rest: %v", err)
	}

	testutil.AssertEqual(t, "success", res.Success, true)
	testutil.AssertEqual(t, "mutation count", len(res.Mutations), 1)

	// 1d8 (5) + CON (2) on 2/10 hp.
	hp := res.Mutations[0]
	testutil.AssertEqual(t, "field", hp.Field, "hp_current")
	testutil.AssertEqual(t, "healed to", hp.NewValue.(int), 9)

	ev := res.Events[0]
	testutil.AssertEqual(t, "event type", ev.Type, action.EventRest)
	testutil.AssertEqual(t, "duration", ev.Details["duration"].(string), DurationShort)
}

func TestShortRestAtFullHealth(t *testing.T) {
	ch := &storage.Character{ID: "player", GameID: "g1", Name: "Aldric",
		Class: "rogue", Level: 1, HPCurrent: 10, HPMax: 10, Alive: true}

	s := NewSystem(&dice.Stub{})
	a := action.New(action.TypeRest, "player")

	res, err := s.Resolve(&a, testContext(ch))
	if err != nil {
		t.Fatalf("resolving rest: %v", err)
	}

	testutil.AssertEqual(t, "success", res.Success, true)
	testutil.AssertEqual(t, "mutations", len(res.Mutations), 0)
	testutil.AssertEqual(t, "events", len(res.Events), 1)
}

func TestLongRestRestoresEverything(t *testing.T) {
	ch := &storage.Character{ID: "player", GameID: "g1", Name: "Selene",
		Class: "wizard", Level: 3, HPCurrent: 4, HPMax: 14, Alive: true,
		SpellSlots: map[int]int{1: 0, 2: 1},
		Needs:      mechanics.Needs{Hunger: 40, Thirst: 30, Morale: 20},
	}

	s := NewSystem(&dice.Stub{})
	a := action.New(action.TypeRest, "player")
	a.Parameters = map[string]string{"duration": "long"}

	res, err := s.Resolve(&a, testContext(ch))
	if err != nil {
		t.Fatalf("resolving rest: %v", err)
	}

	testutil.AssertEqual(t, "success", res.Success, true)

	var hp, slots, needs bool
	for _, m := range res.Mutations {
		switch m.Field {
		case "hp_current":
			hp = true
			testutil.AssertEqual(t, "restored hp", m.NewValue.(int), 14)
		case "spell_slots":
			slots = true
			got := m.NewValue.(map[int]int)
			testutil.AssertEqual(t, "level 1 slots", got[1], 4)
			testutil.AssertEqual(t, "level 2 slots", got[2], 2)
		case "needs":
			needs = true
			got := m.NewValue.(mechanics.Needs)
			testutil.AssertEqual(t, "morale", got.Morale, 100)
			testutil.AssertEqual(t, "hunger untouched", got.Hunger, 40)
		}
	}
	if !hp || !slots || !needs {
		t.Errorf("expected hp, spell slot and needs mutations, got %v", res.Mutations)
	}

	ev := res.Events[0]
	testutil.AssertEqual(t, "duration", ev.Details["duration"].(string), DurationLong)
}

func TestLongRestNonCasterSkipsSlots(t *testing.T) {
	ch := &storage.Character{ID: "player", GameID: "g1", Name: "Aldric",
		Class: "fighter", Level: 2, HPCurrent: 14, HPMax: 14, Alive: true}

	s := NewSystem(&dice.Stub{})
	a := action.New(action.TypeRest, "player")
	a.Parameters = map[string]string{"duration": "long"}

	res, err := s.Resolve(&a, testContext(ch))
	if err != nil {
		t.Fatalf("resolving rest: %v", err)
	}

	for _, m := range res.Mutations {
		if m.Field == "spell_slots" || m.Field == "hp_current" {
			t.Errorf("unexpected mutation %q", m.Field)
		}
	}
}

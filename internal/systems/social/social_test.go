package social

import (
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/storage"
	"github.com/pixil98/go-rpg/internal/systems"
)

func testContext(entities ...*storage.Entity) *systems.GameContext {
	return &systems.GameContext{
		Game:      &storage.Game{ID: "g1", TurnNumber: 1},
		Character: &storage.Character{ID: "player", GameID: "g1", Name: "Aldric", Alive: true},
		Location:  &storage.Location{ID: "village", GameID: "g1", Name: "Thornbury"},
		Entities:  entities,
	}
}

func TestTalkEmitsDialogueEvent(t *testing.T) {
	mira := &storage.Entity{ID: "npc1", GameID: "g1", Name: "Mira",
		Kind: storage.EntityNPC, Alive: true}

	s := NewSystem()
	a := action.New(action.TypeTalk, "player")
	a.Parameters = map[string]string{"target": "mira"}

	res, err := s.Resolve(&a, testContext(mira))
	if err != nil {
		t.Fatalf("resolving talk: %v", err)
	}

	testutil.AssertEqual(t, "success", res.Success, true)
	testutil.AssertEqual(t, "event count", len(res.Events), 1)

	ev := res.Events[0]
	testutil.AssertEqual(t, "event type", ev.Type, action.EventDialogue)
	testutil.AssertEqual(t, "target", ev.TargetID, "npc1")
	testutil.AssertEqual(t, "npc id detail", ev.Details["npc_id"].(string), "npc1")
}

func TestTalkDefaultsToOnlyNPC(t *testing.T) {
	mira := &storage.Entity{ID: "npc1", GameID: "g1", Name: "Mira",
		Kind: storage.EntityNPC, Alive: true}
	wolf := &storage.Entity{ID: "mon1", GameID: "g1", Name: "Wolf",
		Kind: storage.EntityMonster, Hostile: true, Alive: true}

	s := NewSystem()
	a := action.New(action.TypeTalk, "player")

	res, err := s.Resolve(&a, testContext(mira, wolf))
	if err != nil {
		t.Fatalf("resolving talk: %v", err)
	}

	testutil.AssertEqual(t, "success", res.Success, true)
	testutil.AssertEqual(t, "target", res.Events[0].TargetID, "npc1")
}

func TestTalkAmbiguousWithoutName(t *testing.T) {
	a1 := &storage.Entity{ID: "npc1", GameID: "g1", Name: "Mira",
		Kind: storage.EntityNPC, Alive: true}
	a2 := &storage.Entity{ID: "npc2", GameID: "g1", Name: "Tom",
		Kind: storage.EntityNPC, Alive: true}

	s := NewSystem()
	a := action.New(action.TypeTalk, "player")

	res, err := s.Resolve(&a, testContext(a1, a2))
	if err != nil {
		t.Fatalf("resolving talk: %v", err)
	}
	testutil.AssertEqual(t, "success", res.Success, false)
}

func TestTalkToHostileFails(t *testing.T) {
	bandit := &storage.Entity{ID: "npc1", GameID: "g1", Name: "Bandit",
		Kind: storage.EntityNPC, Hostile: true, Alive: true}

	s := NewSystem()
	a := action.New(action.TypeTalk, "player")
	a.TargetID = "npc1"

	res, err := s.Resolve(&a, testContext(bandit))
	if err != nil {
		t.Fatalf("resolving talk: %v", err)
	}

	testutil.AssertEqual(t, "success", res.Success, false)
	testutil.AssertEqual(t, "events", len(res.Events), 0)
}

func TestTalkWithNobodyAround(t *testing.T) {
	s := NewSystem()
	a := action.New(action.TypeTalk, "player")

	res, err := s.Resolve(&a, testContext())
	if err != nil {
		t.Fatalf("resolving talk: %v", err)
	}
	testutil.AssertEqual(t, "success", res.Success, false)
}

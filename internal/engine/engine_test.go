package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/dice"
	"github.com/pixil98/go-rpg/internal/director"
	"github.com/pixil98/go-rpg/internal/llm"
	"github.com/pixil98/go-rpg/internal/mechanics"
	"github.com/pixil98/go-rpg/internal/storage"
	"github.com/pixil98/go-rpg/internal/systems"
)

type stubClassifier map[string]action.Action

func (s stubClassifier) Classify(_ context.Context, raw string, _ *systems.GameContext) action.Action {
	if a, ok := s[raw]; ok {
		return a
	}
	return action.New(action.TypeUnrecognized, "player")
}

type stubSystem struct {
	handles map[action.Type]bool
	result  action.Result
	got     []action.Action
}

func (s *stubSystem) ID() string { return "stub" }

func (s *stubSystem) CanHandle(a *action.Action) bool { return s.handles[a.Type] }

func (s *stubSystem) Resolve(a *action.Action, _ *systems.GameContext) (*action.Result, error) {
	s.got = append(s.got, *a)
	res := s.result
	res.ActionID = a.ID
	return &res, nil
}

func (s *stubSystem) AvailableActions(*systems.GameContext) []systems.ActionDescriptor {
	return nil
}

type stubProvider struct {
	reply string
	err   error
}

func (p *stubProvider) Generate(context.Context, llm.Request) (string, error) {
	return p.reply, p.err
}

func (p *stubProvider) GenerateStructured(context.Context, llm.Request) (map[string]json.RawMessage, error) {
	return nil, nil
}

type capturePublisher struct {
	events []action.Event
}

func (p *capturePublisher) Publish(ev action.Event) error {
	p.events = append(p.events, ev)
	return nil
}

type stubDirector struct {
	inject    []action.Event
	evaluated int
}

func (d *stubDirector) Evaluate(_ context.Context, _ *systems.GameContext, _ *action.Result) ([]action.Event, error) {
	d.evaluated++
	return d.inject, nil
}

func (d *stubDirector) GenerateLocation(context.Context, string, *systems.GameContext) (*storage.Location, error) {
	return nil, nil
}

func (d *stubDirector) EvaluatePlausibility(context.Context, *action.Action, *systems.GameContext) (director.Plausibility, error) {
	return director.Plausibility{}, nil
}

func seedWorld(t *testing.T) *storage.Store {
	t.Helper()

	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	game := &storage.Game{ID: "g1", Name: "test", TurnNumber: 5, WorldTime: 480}
	if err := store.Games.Save(game); err != nil {
		t.Fatalf("saving game: %v", err)
	}

	square := &storage.Location{
		ID: "square", GameID: "g1", Name: "Village Square",
		Description: "A quiet square.", Region: "heartlands",
		Kind: "settlement", Safe: true, Visited: true,
	}
	if err := store.Locations.Save(square); err != nil {
		t.Fatalf("saving location: %v", err)
	}

	ch := &storage.Character{
		ID: "player", GameID: "g1", Name: "Aldric", Class: "fighter",
		Level: 1, HPCurrent: 4, HPMax: 10, AC: 14, Gold: 10,
		LocationID: "square", Alive: true,
		Abilities: mechanics.AbilityScores{mechanics.Constitution: 10},
		Needs:     mechanics.Needs{Hunger: 100, Thirst: 100, Warmth: 100, Morale: 100},
	}
	if err := store.Characters.Save(ch); err != nil {
		t.Fatalf("saving character: %v", err)
	}

	mira := &storage.Entity{
		ID: "npc1", GameID: "g1", Name: "Mira", Kind: "npc",
		LocationID: "square", HPCurrent: 8, HPMax: 8, Alive: true,
	}
	if err := store.Entities.Save(mira); err != nil {
		t.Fatalf("saving entity: %v", err)
	}

	return store
}

func TestProcessTurnAppliesAndClampsMutations(t *testing.T) {
	store := seedWorld(t)
	sys := &stubSystem{
		handles: map[action.Type]bool{action.TypeUseItem: true},
		result: action.Result{
			Success: true,
			Outcome: "You quaff the potion.",
			Mutations: []action.Mutation{
				{TargetType: action.TargetCharacter, TargetID: "player", Field: "hp_current", NewValue: 50},
				{TargetType: action.TargetCharacter, TargetID: "player", Field: "gold", NewValue: -5},
				{TargetType: "faction", TargetID: "x", Field: "standing", NewValue: 3},
			},
			Events: []action.Event{
				{ID: "ev1", GameID: "g1", Type: action.EventItemUse, ActorID: "player", Description: "Drank a potion."},
			},
		},
	}
	pub := &capturePublisher{}

	e := New(store, systems.NewRegistry(sys), stubClassifier{
		"drink the potion": action.New(action.TypeUseItem, "player"),
	}, &dice.Stub{}, Options{Publisher: pub})

	out, err := e.ProcessTurn(context.Background(), "g1", "drink the potion")
	if err != nil {
		t.Fatalf("processing turn: %v", err)
	}

	testutil.AssertEqual(t, "turn number", out.TurnNumber, 6)
	testutil.AssertEqual(t, "kept mutations", len(out.Result.Mutations), 2)

	ch, err := store.Characters.GetByGame("g1")
	if err != nil {
		t.Fatalf("reloading character: %v", err)
	}
	testutil.AssertEqual(t, "hp clamped to max", ch.HPCurrent, 10)
	testutil.AssertEqual(t, "gold floored at zero", ch.Gold, 0)

	game, err := store.Games.Get("g1")
	if err != nil {
		t.Fatalf("reloading game: %v", err)
	}
	testutil.AssertEqual(t, "world time advanced", game.WorldTime, int64(490))

	testutil.AssertEqual(t, "published events", len(pub.events), 1)
	recent, err := store.Events.Recent("g1", 10)
	if err != nil {
		t.Fatalf("reading ledger: %v", err)
	}
	testutil.AssertEqual(t, "ledger entries", len(recent), 1)
}

func TestProcessTurnTicksSurvival(t *testing.T) {
	store := seedWorld(t)
	sys := &stubSystem{
		handles: map[action.Type]bool{action.TypeLook: true},
		result:  action.Result{Success: true, Outcome: "You look around."},
	}

	e := New(store, systems.NewRegistry(sys), stubClassifier{
		"look": action.New(action.TypeLook, "player"),
	}, &dice.Stub{}, Options{})

	if _, err := e.ProcessTurn(context.Background(), "g1", "look"); err != nil {
		t.Fatalf("processing turn: %v", err)
	}

	ch, err := store.Characters.GetByGame("g1")
	if err != nil {
		t.Fatalf("reloading character: %v", err)
	}
	testutil.AssertEqual(t, "hunger decayed", ch.Needs.Hunger, 99)
	testutil.AssertEqual(t, "thirst decayed", ch.Needs.Thirst, 98)
}

func TestNarrationComesFromProvider(t *testing.T) {
	store := seedWorld(t)
	sys := &stubSystem{
		handles: map[action.Type]bool{action.TypeLook: true},
		result:  action.Result{Success: true, Outcome: "You look around."},
	}
	provider := &stubProvider{reply: "[HOOK: ambush] The square hums with evening light."}

	e := New(store, systems.NewRegistry(sys), stubClassifier{
		"look": action.New(action.TypeLook, "player"),
	}, &dice.Stub{}, Options{Provider: provider})

	out, err := e.ProcessTurn(context.Background(), "g1", "look")
	if err != nil {
		t.Fatalf("processing turn: %v", err)
	}
	testutil.AssertEqual(t, "narrative", out.Narrative, "The square hums with evening light.")
}

func TestNarrationDegradesOnProviderError(t *testing.T) {
	store := seedWorld(t)
	sys := &stubSystem{
		handles: map[action.Type]bool{action.TypeLook: true},
		result:  action.Result{Success: true, Outcome: "You look around."},
	}
	provider := &stubProvider{err: context.DeadlineExceeded}

	e := New(store, systems.NewRegistry(sys), stubClassifier{
		"look": action.New(action.TypeLook, "player"),
	}, &dice.Stub{}, Options{Provider: provider})

	out, err := e.ProcessTurn(context.Background(), "g1", "look")
	if err != nil {
		t.Fatalf("processing turn: %v", err)
	}
	testutil.AssertEqual(t, "fallback narrative", out.Narrative, "You look around.")
}

func TestConfiguredDirectorInjectsLedgerEvents(t *testing.T) {
	store := seedWorld(t)
	sys := &stubSystem{
		handles: map[action.Type]bool{action.TypeLook: true},
		result:  action.Result{Success: true, Outcome: "You look around."},
	}
	dir := &stubDirector{inject: []action.Event{
		{ID: "ev-dir", GameID: "g1", Type: action.EventWorldEvent,
			ActorID: "player", Description: "A cold wind picks up.", Canonical: true},
	}}
	pub := &capturePublisher{}

	e := New(store, systems.NewRegistry(sys), stubClassifier{
		"look": action.New(action.TypeLook, "player"),
	}, &dice.Stub{}, Options{Director: dir, Publisher: pub})

	if _, err := e.ProcessTurn(context.Background(), "g1", "look"); err != nil {
		t.Fatalf("processing turn: %v", err)
	}

	testutil.AssertEqual(t, "director evaluated", dir.evaluated, 1)
	testutil.AssertEqual(t, "published events", len(pub.events), 1)

	recent, err := store.Events.Recent("g1", 10)
	if err != nil {
		t.Fatalf("reading ledger: %v", err)
	}
	testutil.AssertEqual(t, "ledger entries", len(recent), 1)
	testutil.AssertEqual(t, "event type", recent[0].Type, action.EventWorldEvent)
}

func TestUnrecognizedInputStillCountsATurn(t *testing.T) {
	store := seedWorld(t)
	sys := &stubSystem{handles: map[action.Type]bool{}}

	e := New(store, systems.NewRegistry(sys), stubClassifier{}, &dice.Stub{}, Options{})

	out, err := e.ProcessTurn(context.Background(), "g1", "flimflam the wozzle")
	if err != nil {
		t.Fatalf("processing turn: %v", err)
	}

	testutil.AssertEqual(t, "narrative", out.Narrative, "You're not sure how to go about that.")
	testutil.AssertEqual(t, "turn number", out.TurnNumber, 6)
	testutil.AssertEqual(t, "no system consulted", len(sys.got), 0)

	game, err := store.Games.Get("g1")
	if err != nil {
		t.Fatalf("reloading game: %v", err)
	}
	testutil.AssertEqual(t, "world time unchanged", game.WorldTime, int64(480))
}

func TestDeadCharacterCannotAct(t *testing.T) {
	store := seedWorld(t)
	if err := store.Characters.UpdateField("player", "alive", false); err != nil {
		t.Fatalf("killing character: %v", err)
	}
	sys := &stubSystem{handles: map[action.Type]bool{action.TypeLook: true}}

	e := New(store, systems.NewRegistry(sys), stubClassifier{
		"look": action.New(action.TypeLook, "player"),
	}, &dice.Stub{}, Options{})

	out, err := e.ProcessTurn(context.Background(), "g1", "look")
	if err != nil {
		t.Fatalf("processing turn: %v", err)
	}

	testutil.AssertEqual(t, "narrative", out.Narrative, "You are in no state to act.")
	testutil.AssertEqual(t, "no system consulted", len(sys.got), 0)
}

func startCombat(t *testing.T, store *storage.Store) {
	t.Helper()
	cs := &storage.CombatState{
		ID: "c1", GameID: "g1", Active: true, Round: 1,
		Combatants: []storage.Combatant{{EntityID: "player", Name: "Aldric", Type: "player"}},
		TurnOrder:  []string{"player"},
	}
	if err := store.Combat.SaveCombat(cs); err != nil {
		t.Fatalf("saving combat: %v", err)
	}
}

func TestCombatGatesNonCombatActions(t *testing.T) {
	store := seedWorld(t)
	startCombat(t, store)
	sys := &stubSystem{handles: map[action.Type]bool{action.TypeRest: true}}

	e := New(store, systems.NewRegistry(sys), stubClassifier{
		"rest": action.New(action.TypeRest, "player"),
	}, &dice.Stub{}, Options{})

	out, err := e.ProcessTurn(context.Background(), "g1", "rest")
	if err != nil {
		t.Fatalf("processing turn: %v", err)
	}

	testutil.AssertEqual(t, "narrative", out.Narrative, "Not while you're fighting for your life.")
	testutil.AssertEqual(t, "no system consulted", len(sys.got), 0)
}

func TestUseItemPromotesToCombatItemInCombat(t *testing.T) {
	store := seedWorld(t)
	startCombat(t, store)
	sys := &stubSystem{
		handles: map[action.Type]bool{action.TypeCombatItem: true},
		result:  action.Result{Success: true, Outcome: "You drink mid-swing."},
	}

	e := New(store, systems.NewRegistry(sys), stubClassifier{
		"drink potion": action.New(action.TypeUseItem, "player"),
	}, &dice.Stub{}, Options{})

	if _, err := e.ProcessTurn(context.Background(), "g1", "drink potion"); err != nil {
		t.Fatalf("processing turn: %v", err)
	}

	if len(sys.got) != 1 {
		t.Fatalf("expected one dispatched action, got %d", len(sys.got))
	}
	testutil.AssertEqual(t, "promoted type", string(sys.got[0].Type), "combat_item")

	// Combat turns never advance the world clock.
	game, err := store.Games.Get("g1")
	if err != nil {
		t.Fatalf("reloading game: %v", err)
	}
	testutil.AssertEqual(t, "world time unchanged", game.WorldTime, int64(480))
}

func TestConversationLifecycle(t *testing.T) {
	store := seedWorld(t)
	talk := action.New(action.TypeTalk, "player")
	talk.Parameters = map[string]string{"target": "mira"}
	sys := &stubSystem{
		handles: map[action.Type]bool{action.TypeTalk: true},
		result: action.Result{
			Success: true,
			Outcome: "You approach Mira.",
			Events: []action.Event{{
				ID: "ev-d1", GameID: "g1", Type: action.EventDialogue,
				ActorID: "player", TargetID: "npc1",
				Description: "Started a conversation with Mira.",
				Details:     map[string]any{"npc_id": "npc1", "npc_name": "Mira"},
			}},
		},
	}

	e := New(store, systems.NewRegistry(sys), stubClassifier{
		"talk to mira": talk,
	}, &dice.Stub{}, Options{})

	out, err := e.ProcessTurn(context.Background(), "g1", "talk to mira")
	if err != nil {
		t.Fatalf("talk turn: %v", err)
	}
	testutil.AssertEqual(t, "opening line",
		out.Narrative, "You approach Mira.\n\n**Mira:** \"Hmm? Oh, hello there.\"")

	game, err := store.Games.Get("g1")
	if err != nil {
		t.Fatalf("reloading game: %v", err)
	}
	testutil.AssertEqual(t, "conversation partner", game.ConversationNPCID, "npc1")

	// Free text now routes to dialogue without consulting any system.
	out, err = e.ProcessTurn(context.Background(), "g1", "how is business these days?")
	if err != nil {
		t.Fatalf("dialogue turn: %v", err)
	}
	testutil.AssertEqual(t, "npc reply", out.Narrative, "**Mira:** \"Hmm? Oh, hello there.\"")
	testutil.AssertEqual(t, "system untouched", len(sys.got), 1)

	game, err = store.Games.Get("g1")
	if err != nil {
		t.Fatalf("reloading game: %v", err)
	}
	testutil.AssertEqual(t, "dialogue skips world clock", game.WorldTime, int64(490))

	out, err = e.ProcessTurn(context.Background(), "g1", "goodbye")
	if err != nil {
		t.Fatalf("exit turn: %v", err)
	}
	testutil.AssertEqual(t, "exit line", out.Narrative, "You end your conversation with Mira.")

	game, err = store.Games.Get("g1")
	if err != nil {
		t.Fatalf("reloading game: %v", err)
	}
	testutil.AssertEqual(t, "conversation cleared", game.ConversationNPCID, "")
}

func TestDialogueUsesProviderReply(t *testing.T) {
	store := seedWorld(t)
	if err := store.Games.UpdateField("g1", "conversation_npc_id", "npc1"); err != nil {
		t.Fatalf("seeding conversation: %v", err)
	}
	provider := &stubProvider{reply: "[warm] Business is booming, friend."}

	e := New(store, systems.NewRegistry(), stubClassifier{}, &dice.Stub{},
		Options{Provider: provider})

	out, err := e.ProcessTurn(context.Background(), "g1", "how is business?")
	if err != nil {
		t.Fatalf("dialogue turn: %v", err)
	}
	testutil.AssertEqual(t, "npc reply", out.Narrative, "**Mira:** \"Business is booming, friend.\"")
}

func TestWeakenedCountdownLiftsCondition(t *testing.T) {
	store := seedWorld(t)
	if err := store.Characters.UpdateField("player", "weakened_turns", 1); err != nil {
		t.Fatalf("seeding counter: %v", err)
	}
	if err := store.Characters.UpdateField("player", "conditions", []string{"weakened"}); err != nil {
		t.Fatalf("seeding condition: %v", err)
	}
	sys := &stubSystem{
		handles: map[action.Type]bool{action.TypeLook: true},
		result:  action.Result{Success: true, Outcome: "You look around."},
	}

	e := New(store, systems.NewRegistry(sys), stubClassifier{
		"look": action.New(action.TypeLook, "player"),
	}, &dice.Stub{}, Options{})

	if _, err := e.ProcessTurn(context.Background(), "g1", "look"); err != nil {
		t.Fatalf("processing turn: %v", err)
	}

	ch, err := store.Characters.GetByGame("g1")
	if err != nil {
		t.Fatalf("reloading character: %v", err)
	}
	testutil.AssertEqual(t, "counter", ch.WeakenedTurns, 0)
	testutil.AssertEqual(t, "conditions cleared", len(ch.Conditions), 0)
}

func TestXPAwardTriggersLevelUp(t *testing.T) {
	store := seedWorld(t)
	sys := &stubSystem{
		handles: map[action.Type]bool{action.TypeAttack: true},
		result:  action.Result{Success: true, Outcome: "The goblin falls.", XPGained: 300},
	}

	e := New(store, systems.NewRegistry(sys), stubClassifier{
		"attack": action.New(action.TypeAttack, "player"),
	}, &dice.Stub{Faces: []int{6}}, Options{})

	out, err := e.ProcessTurn(context.Background(), "g1", "attack")
	if err != nil {
		t.Fatalf("processing turn: %v", err)
	}

	if out.LevelUp == nil {
		t.Fatal("expected a level-up")
	}
	testutil.AssertEqual(t, "new level", out.LevelUp.NewLevel, 2)
	testutil.AssertEqual(t, "hp gained", out.LevelUp.HPGained, 6)
	testutil.AssertEqual(t, "new hp max", out.LevelUp.NewHPMax, 16)

	ch, err := store.Characters.GetByGame("g1")
	if err != nil {
		t.Fatalf("reloading character: %v", err)
	}
	testutil.AssertEqual(t, "level", ch.Level, 2)
	testutil.AssertEqual(t, "xp", ch.XP, 300)
	testutil.AssertEqual(t, "hp max", ch.HPMax, 16)
	testutil.AssertEqual(t, "hp current", ch.HPCurrent, 10)
}

func TestIntervalSnapshotTrigger(t *testing.T) {
	store := seedWorld(t)
	if err := store.Games.UpdateField("g1", "turn_number", 25); err != nil {
		t.Fatalf("seeding turn number: %v", err)
	}
	sys := &stubSystem{
		handles: map[action.Type]bool{action.TypeLook: true},
		result:  action.Result{Success: true, Outcome: "You look around."},
	}

	e := New(store, systems.NewRegistry(sys), stubClassifier{
		"look": action.New(action.TypeLook, "player"),
	}, &dice.Stub{}, Options{})

	if _, err := e.ProcessTurn(context.Background(), "g1", "look"); err != nil {
		t.Fatalf("processing turn: %v", err)
	}

	snap, err := store.Snapshots.Latest("g1")
	if err != nil {
		t.Fatalf("loading snapshot: %v", err)
	}
	if snap == nil {
		t.Fatal("expected an interval snapshot")
	}
	testutil.AssertEqual(t, "trigger", snap.Trigger, storage.TriggerInterval)

	game, err := store.Games.Get("g1")
	if err != nil {
		t.Fatalf("reloading game: %v", err)
	}
	testutil.AssertEqual(t, "snapshot turn recorded", game.LastSnapshotTurn, 25)
}

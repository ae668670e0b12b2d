package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/mechanics"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGameRoundTrip(t *testing.T) {
	s := openTestStore(t)

	g := &Game{ID: "g1", Name: "test", TurnNumber: 3, WorldTime: 510, LoopCount: 1}
	if err := s.Games.Save(g); err != nil {
		t.Fatalf("saving game: %v", err)
	}

	got, err := s.Games.Get("g1")
	if err != nil {
		t.Fatalf("getting game: %v", err)
	}
	testutil.AssertEqual(t, "name", got.Name, "test")
	testutil.AssertEqual(t, "turn number", got.TurnNumber, 3)
	testutil.AssertEqual(t, "world time", got.WorldTime, int64(510))
	testutil.AssertEqual(t, "loop count", got.LoopCount, 1)
}

func TestGameGet_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Games.Get("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCharacterRoundTrip(t *testing.T) {
	s := openTestStore(t)

	c := &Character{
		ID:        "c1",
		GameID:    "g1",
		Name:      "Aldric",
		Class:     "fighter",
		Level:     2,
		HPCurrent: 14,
		HPMax:     18,
		AC:        16,
		Gold:      120,
		Alive:     true,
		Abilities: mechanics.AbilityScores{
			mechanics.Strength:  16,
			mechanics.Dexterity: 12,
		},
		Conditions: []string{"poisoned"},
		SpellSlots: map[int]int{1: 2},
		Needs:      mechanics.Needs{Hunger: 80, Thirst: 90, Warmth: 100, Morale: 70},
	}
	if err := s.Characters.Save(c); err != nil {
		t.Fatalf("saving character: %v", err)
	}

	got, err := s.Characters.GetByGame("g1")
	if err != nil {
		t.Fatalf("getting character: %v", err)
	}
	testutil.AssertEqual(t, "name", got.Name, "Aldric")
	testutil.AssertEqual(t, "hp", got.HPCurrent, 14)
	testutil.AssertEqual(t, "strength", got.Abilities.Score(mechanics.Strength), 16)
	testutil.AssertEqual(t, "conditions", len(got.Conditions), 1)
	testutil.AssertEqual(t, "slots", got.SpellSlots[1], 2)
	testutil.AssertEqual(t, "hunger", got.Needs.Hunger, 80)
}

func TestCharacterUpdateField(t *testing.T) {
	s := openTestStore(t)

	c := &Character{ID: "c1", GameID: "g1", Name: "Aldric", Class: "fighter",
		HPCurrent: 10, HPMax: 10, AC: 12, Alive: true}
	if err := s.Characters.Save(c); err != nil {
		t.Fatalf("saving character: %v", err)
	}

	tests := map[string]struct {
		field   string
		value   any
		wantErr bool
	}{
		"scalar column":     {field: "hp_current", value: 6},
		"bool column":       {field: "alive", value: false},
		"json column":       {field: "conditions", value: []string{"weakened"}},
		"unknown column":    {field: "password", value: "x", wantErr: true},
		"unlisted column":   {field: "game_id", value: "g2", wantErr: true},
		"sql injection bid": {field: "hp_current = 0; --", value: 1, wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := s.Characters.UpdateField("c1", tt.field, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	got, err := s.Characters.Get("c1")
	if err != nil {
		t.Fatalf("getting character: %v", err)
	}
	testutil.AssertEqual(t, "hp after update", got.HPCurrent, 6)
	testutil.AssertEqual(t, "alive after update", got.Alive, false)
	testutil.AssertEqual(t, "conditions after update", len(got.Conditions), 1)
}

func TestEntityQueries(t *testing.T) {
	s := openTestStore(t)

	entities := []*Entity{
		{ID: "e1", GameID: "g1", Name: "Goblin", Kind: EntityMonster, LocationID: "loc1",
			HPCurrent: 7, HPMax: 7, AC: 13, Hostile: true, Alive: true},
		{ID: "e2", GameID: "g1", Name: "Innkeeper", Kind: EntityNPC, LocationID: "loc2",
			HPCurrent: 4, HPMax: 4, AC: 10, Alive: true},
		{ID: "e3", GameID: "g2", Name: "Wolf", Kind: EntityMonster, LocationID: "loc1",
			HPCurrent: 11, HPMax: 11, AC: 12, Hostile: true, Alive: true},
	}
	for _, e := range entities {
		if err := s.Entities.Save(e); err != nil {
			t.Fatalf("saving entity %s: %v", e.ID, err)
		}
	}

	byGame, err := s.Entities.GetByGame("g1")
	if err != nil {
		t.Fatalf("getting by game: %v", err)
	}
	testutil.AssertEqual(t, "entities in game", len(byGame), 2)

	byLoc, err := s.Entities.GetByLocation("g1", "loc1")
	if err != nil {
		t.Fatalf("getting by location: %v", err)
	}
	testutil.AssertEqual(t, "entities at location", len(byLoc), 1)
	testutil.AssertEqual(t, "entity name", byLoc[0].Name, "Goblin")
}

func TestLocationConnections(t *testing.T) {
	s := openTestStore(t)

	l := &Location{
		ID: "loc1", GameID: "g1", Name: "Crossroads", Kind: "wilderness",
		Connections: []Connection{
			{Direction: "north", TargetID: "loc2"},
			{Direction: "east", TargetID: "loc3"},
		},
	}
	if err := s.Locations.Save(l); err != nil {
		t.Fatalf("saving location: %v", err)
	}

	got, err := s.Locations.Get("loc1")
	if err != nil {
		t.Fatalf("getting location: %v", err)
	}
	testutil.AssertEqual(t, "connections", len(got.Connections), 2)

	conn := got.ConnectionTo("north")
	if conn == nil {
		t.Fatal("expected north connection")
	}
	testutil.AssertEqual(t, "north target", conn.TargetID, "loc2")

	if got.ConnectionTo("down") != nil {
		t.Error("expected no down connection")
	}
}

func TestInventoryOperations(t *testing.T) {
	inv := &Inventory{OwnerID: "c1", GameID: "g1"}

	inv.Add("potion", 2)
	inv.Add("sword", 1)
	inv.Add("potion", 1)
	testutil.AssertEqual(t, "stacked quantity", inv.Count("potion"), 3)
	testutil.AssertEqual(t, "slots", len(inv.Items), 2)

	if !inv.RemoveOne("potion") {
		t.Error("expected remove one to succeed")
	}
	testutil.AssertEqual(t, "after remove one", inv.Count("potion"), 2)

	if inv.RemoveOne("shield") {
		t.Error("expected remove of missing item to fail")
	}

	if !inv.Transform("sword", "sword+1") {
		t.Error("expected transform to succeed")
	}
	testutil.AssertEqual(t, "removed original", inv.Count("sword"), 0)
	testutil.AssertEqual(t, "added upgrade", inv.Count("sword+1"), 1)

	if !inv.RemoveAll("potion") {
		t.Error("expected remove all to succeed")
	}
	testutil.AssertEqual(t, "after remove all", inv.Count("potion"), 0)
}

func TestInventoryRoundTrip(t *testing.T) {
	s := openTestStore(t)

	// First access creates an empty inventory.
	inv, err := s.Inventories.GetInventory("g1", "c1")
	if err != nil {
		t.Fatalf("getting inventory: %v", err)
	}
	testutil.AssertEqual(t, "empty items", len(inv.Items), 0)

	inv.Add("rope", 1)
	inv.Equipped["weapon"] = "sword"
	if err := s.Inventories.UpdateInventory(inv); err != nil {
		t.Fatalf("saving inventory: %v", err)
	}

	got, err := s.Inventories.GetInventory("g1", "c1")
	if err != nil {
		t.Fatalf("getting inventory again: %v", err)
	}
	testutil.AssertEqual(t, "rope count", got.Count("rope"), 1)
	testutil.AssertEqual(t, "equipped weapon", got.Equipped["weapon"], "sword")
}

func TestEventAppendAndRecent(t *testing.T) {
	s := openTestStore(t)

	base := time.Now()
	for i := 0; i < 5; i++ {
		ev := action.Event{
			ID:          string(rune('a' + i)),
			GameID:      "g1",
			Type:        action.EventAttack,
			TurnNumber:  i + 1,
			Timestamp:   base.Add(time.Duration(i) * time.Second),
			Description: "swing",
			Canonical:   true,
		}
		if err := s.Events.Append(ev); err != nil {
			t.Fatalf("appending event: %v", err)
		}
	}

	recent, err := s.Events.Recent("g1", 3)
	if err != nil {
		t.Fatalf("getting recent events: %v", err)
	}
	testutil.AssertEqual(t, "recent count", len(recent), 3)
	testutil.AssertEqual(t, "newest first", recent[0].TurnNumber, 5)
}

func TestActiveCombatLifecycle(t *testing.T) {
	s := openTestStore(t)

	cs, err := s.Combat.ActiveCombat("g1")
	if err != nil {
		t.Fatalf("querying active combat: %v", err)
	}
	if cs != nil {
		t.Fatal("expected no active combat")
	}

	state := &CombatState{
		ID: "cb1", GameID: "g1", Active: true, Round: 1,
		Combatants: []Combatant{
			{EntityID: "c1", Name: "Aldric", Type: CombatantPlayer, Initiative: 15, HPCurrent: 10, HPMax: 10, AC: 12, Active: true},
			{EntityID: "e1", Name: "Goblin", Type: CombatantEnemy, Initiative: 12, HPCurrent: 7, HPMax: 7, AC: 13, Active: true},
		},
		TurnOrder: []string{"c1", "e1"},
	}
	if err := s.Combat.SaveCombat(state); err != nil {
		t.Fatalf("saving combat: %v", err)
	}

	got, err := s.Combat.ActiveCombat("g1")
	if err != nil {
		t.Fatalf("querying active combat: %v", err)
	}
	if got == nil {
		t.Fatal("expected active combat")
	}
	testutil.AssertEqual(t, "round", got.Round, 1)
	testutil.AssertEqual(t, "active enemies", got.ActiveEnemies(), 1)

	got.Active = false
	if err := s.Combat.UpdateCombat(got); err != nil {
		t.Fatalf("updating combat: %v", err)
	}

	ended, err := s.Combat.ActiveCombat("g1")
	if err != nil {
		t.Fatalf("querying after end: %v", err)
	}
	if ended != nil {
		t.Error("expected combat to be inactive")
	}
}

func TestSnapshotLatestAndPrune(t *testing.T) {
	s := openTestStore(t)

	for i := 1; i <= 3; i++ {
		snap := &Snapshot{
			ID:          string(rune('0' + i)),
			GameID:      "g1",
			TurnNumber:  i * 10,
			WorldTime:   int64(480 + i),
			Trigger:     TriggerInterval,
			PlayerState: []byte(`{"hp":10}`),
		}
		if err := s.Snapshots.Create(snap); err != nil {
			t.Fatalf("creating snapshot: %v", err)
		}
	}

	latest, err := s.Snapshots.Latest("g1")
	if err != nil {
		t.Fatalf("getting latest: %v", err)
	}
	testutil.AssertEqual(t, "latest turn", latest.TurnNumber, 30)

	if err := s.Snapshots.DeleteOld("g1", 1); err != nil {
		t.Fatalf("pruning: %v", err)
	}

	latest, err = s.Snapshots.Latest("g1")
	if err != nil {
		t.Fatalf("getting latest after prune: %v", err)
	}
	testutil.AssertEqual(t, "latest survives prune", latest.TurnNumber, 30)

	if _, err := s.Snapshots.Get("1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected oldest snapshot pruned, got %v", err)
	}
}

func TestCanonChain(t *testing.T) {
	s := openTestStore(t)

	base := time.Now()
	for i := 0; i < 3; i++ {
		e := &CanonEntry{
			ID:          string(rune('a' + i)),
			GameID:      "g1",
			Timestamp:   base.Add(time.Duration(i) * time.Second),
			Description: "rewind",
			SnapshotID:  string(rune('0' + i)),
		}
		if err := s.Canon.Append(e); err != nil {
			t.Fatalf("appending canon entry: %v", err)
		}
	}

	entries, err := s.Canon.Entries("g1")
	if err != nil {
		t.Fatalf("getting entries: %v", err)
	}
	testutil.AssertEqual(t, "entry count", len(entries), 3)
	testutil.AssertEqual(t, "genesis link", entries[0].PreviousHash, GenesisHash)

	for i := 1; i < len(entries); i++ {
		testutil.AssertEqual(t, "chain link", entries[i].PreviousHash, entries[i-1].EntryHash)
	}
	for _, e := range entries {
		testutil.AssertEqual(t, "entry hash", e.EntryHash, EntryHash(e.PreviousHash, e.SnapshotID))
	}

	if err := s.Canon.Verify("g1"); err != nil {
		t.Errorf("expected valid chain: %v", err)
	}
}

func TestReputationAdjust(t *testing.T) {
	s := openTestStore(t)

	if err := s.Reputation.Adjust("g1", "guards", 5); err != nil {
		t.Fatalf("adjusting: %v", err)
	}
	if err := s.Reputation.Adjust("g1", "guards", -2); err != nil {
		t.Fatalf("adjusting: %v", err)
	}

	reps, err := s.Reputation.GetByGame("g1")
	if err != nil {
		t.Fatalf("getting reputation: %v", err)
	}
	testutil.AssertEqual(t, "faction count", len(reps), 1)
	testutil.AssertEqual(t, "score", reps[0].Score, 3)
}

func TestCompanionActive(t *testing.T) {
	s := openTestStore(t)

	companions := []*Companion{
		{ID: "cp1", GameID: "g1", EntityID: "e1", Active: true, Loyalty: 60},
		{ID: "cp2", GameID: "g1", EntityID: "e2", Active: false, Loyalty: 10},
	}
	for _, c := range companions {
		if err := s.Companions.Save(c); err != nil {
			t.Fatalf("saving companion: %v", err)
		}
	}

	active, err := s.Companions.Active("g1")
	if err != nil {
		t.Fatalf("getting active companions: %v", err)
	}
	testutil.AssertEqual(t, "active count", len(active), 1)
	testutil.AssertEqual(t, "active companion", active[0].ID, "cp1")
}

func TestPropsRoundTrip(t *testing.T) {
	s := openTestStore(t)

	g := &Game{ID: "g1", Name: "test"}
	if err := g.Props.Set("difficulty", "hard"); err != nil {
		t.Fatalf("setting prop: %v", err)
	}
	if err := s.Games.Save(g); err != nil {
		t.Fatalf("saving game: %v", err)
	}

	got, err := s.Games.Get("g1")
	if err != nil {
		t.Fatalf("getting game: %v", err)
	}

	var difficulty string
	found, err := got.Props.Get("difficulty", &difficulty)
	if err != nil {
		t.Fatalf("getting prop: %v", err)
	}
	testutil.AssertEqual(t, "prop found", found, true)
	testutil.AssertEqual(t, "prop value", difficulty, "hard")
}

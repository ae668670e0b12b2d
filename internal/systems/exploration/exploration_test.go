package exploration

import (
	"context"
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/dice"
	"github.com/pixil98/go-rpg/internal/director"
	"github.com/pixil98/go-rpg/internal/mechanics"
	"github.com/pixil98/go-rpg/internal/storage"
	"github.com/pixil98/go-rpg/internal/systems"
)

// stubDirector opens new ground on demand, persisting what it generates
// the way a real content director would.
type stubDirector struct {
	locations *storage.LocationRepo
	generated *storage.Location
	askedDir  string
}

func (d *stubDirector) Evaluate(context.Context, *systems.GameContext, *action.Result) ([]action.Event, error) {
	return nil, nil
}

func (d *stubDirector) GenerateLocation(_ context.Context, direction string, _ *systems.GameContext) (*storage.Location, error) {
	d.askedDir = direction
	if d.generated == nil {
		return nil, nil
	}
	if err := d.locations.Save(d.generated); err != nil {
		return nil, err
	}
	return d.generated, nil
}

func (d *stubDirector) EvaluatePlausibility(context.Context, *action.Action, *systems.GameContext) (director.Plausibility, error) {
	return director.Plausibility{}, nil
}

func testWorld(t *testing.T) (*storage.Store, *systems.GameContext) {
	t.Helper()

	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	village := &storage.Location{
		ID: "village", GameID: "g1", Name: "Thornbury", Region: "heartlands",
		Kind: "settlement", Safe: true, Visited: true,
		Connections: []storage.Connection{{Direction: "north", TargetID: "forest"}},
	}
	forest := &storage.Location{
		ID: "forest", GameID: "g1", Name: "Darkwood", Region: "wilds",
		Kind: "wilderness",
	}
	for _, l := range []*storage.Location{village, forest} {
		if err := store.Locations.Save(l); err != nil {
			t.Fatalf("saving location: %v", err)
		}
	}

	ctx := &systems.GameContext{
		Game: &storage.Game{ID: "g1", TurnNumber: 3},
		Character: &storage.Character{ID: "player", GameID: "g1", Name: "Aldric",
			Class: "rogue", Level: 1, LocationID: "village", Alive: true,
			Abilities:     mechanics.AbilityScores{mechanics.Wisdom: 14},
			Proficiencies: []string{"perception"},
		},
		Location: village,
	}
	return store, ctx
}

func TestMoveKnownDirection(t *testing.T) {
	store, ctx := testWorld(t)
	s := NewSystem(&dice.Stub{}, store.Locations, nil)

	a := action.New(action.TypeMove, "player")
	a.Parameters = map[string]string{"direction": "north"}

	res, err := s.Resolve(&a, ctx)
	if err != nil {
		t.Fatalf("resolving move: %v", err)
	}

	testutil.AssertEqual(t, "success", res.Success, true)

	var moved, visited bool
	for _, m := range res.Mutations {
		switch m.Field {
		case "location_id":
			moved = true
			testutil.AssertEqual(t, "destination", m.NewValue.(string), "forest")
		case "visited":
			visited = true
			testutil.AssertEqual(t, "visited target", m.TargetID, "forest")
		}
	}
	if !moved || !visited {
		t.Errorf("expected location and visited mutations, got %v", res.Mutations)
	}

	move := res.Events[0]
	testutil.AssertEqual(t, "event type", move.Type, action.EventMove)
	testutil.AssertEqual(t, "region change", move.Details["region_change"].(bool), true)

	testutil.AssertEqual(t, "event count", len(res.Events), 2)
	testutil.AssertEqual(t, "discovery", res.Events[1].Type, action.EventDiscovery)
}

func TestMoveToVisitedLocation(t *testing.T) {
	store, ctx := testWorld(t)

	forest, err := store.Locations.Get("forest")
	if err != nil {
		t.Fatalf("loading forest: %v", err)
	}
	forest.Visited = true
	if err := store.Locations.Save(forest); err != nil {
		t.Fatalf("saving forest: %v", err)
	}

	s := NewSystem(&dice.Stub{}, store.Locations, nil)
	a := action.New(action.TypeMove, "player")
	a.Parameters = map[string]string{"direction": "north"}

	res, err := s.Resolve(&a, ctx)
	if err != nil {
		t.Fatalf("resolving move: %v", err)
	}

	testutil.AssertEqual(t, "mutation count", len(res.Mutations), 1)
	testutil.AssertEqual(t, "event count", len(res.Events), 1)
}

func TestMoveUnknownDirectionClosedWorld(t *testing.T) {
	store, ctx := testWorld(t)
	s := NewSystem(&dice.Stub{}, store.Locations, nil)

	a := action.New(action.TypeMove, "player")
	a.Parameters = map[string]string{"direction": "west"}

	res, err := s.Resolve(&a, ctx)
	if err != nil {
		t.Fatalf("resolving move: %v", err)
	}

	testutil.AssertEqual(t, "success", res.Success, false)
	testutil.AssertEqual(t, "mutations", len(res.Mutations), 0)
}

func TestMoveUndefinedDirectionUsesDirector(t *testing.T) {
	store, ctx := testWorld(t)
	dir := &stubDirector{
		locations: store.Locations,
		generated: &storage.Location{ID: "cliffs", GameID: "g1",
			Name: "Windward Cliffs", Region: "wilds", Kind: "wilderness"},
	}
	s := NewSystem(&dice.Stub{}, store.Locations, dir)

	a := action.New(action.TypeMove, "player")
	a.Parameters = map[string]string{"direction": "west"}

	res, err := s.Resolve(&a, ctx)
	if err != nil {
		t.Fatalf("resolving move: %v", err)
	}

	testutil.AssertEqual(t, "asked direction", dir.askedDir, "west")
	testutil.AssertEqual(t, "success", res.Success, true)
	testutil.AssertEqual(t, "outcome", res.Outcome, "You travel west to Windward Cliffs.")

	var dest string
	for _, m := range res.Mutations {
		if m.Field == "location_id" {
			dest = m.NewValue.(string)
		}
	}
	testutil.AssertEqual(t, "destination", dest, "cliffs")
	testutil.AssertEqual(t, "discovery", res.Events[1].Type, action.EventDiscovery)
}

func TestLookListsEntitiesAndPaths(t *testing.T) {
	store, ctx := testWorld(t)
	ctx.Location.Description = "A quiet village square."
	ctx.Entities = []*storage.Entity{
		{ID: "npc1", Name: "Mira", Kind: storage.EntityNPC, Alive: true},
		{ID: "npc2", Name: "Old Tom", Kind: storage.EntityNPC, Alive: false},
	}

	s := NewSystem(&dice.Stub{}, store.Locations, nil)
	a := action.New(action.TypeLook, "player")

	res, err := s.Resolve(&a, ctx)
	if err != nil {
		t.Fatalf("resolving look: %v", err)
	}

	testutil.AssertEqual(t, "outcome",
		res.Outcome, "A quiet village square. Mira is here. Paths lead north.")
}

func TestSearch(t *testing.T) {
	tests := map[string]struct {
		face      int
		wantOK    bool
		wantEvent action.EventType
	}{
		"success": {face: 8, wantOK: true, wantEvent: action.EventDiscovery},
		"failure": {face: 5, wantOK: false, wantEvent: action.EventExplorationFail},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			store, ctx := testWorld(t)

			// WIS 14 and perception proficiency give +4 against DC 12.
			s := NewSystem(&dice.Stub{Faces: []int{tt.face}}, store.Locations, nil)
			a := action.New(action.TypeSearch, "player")

			res, err := s.Resolve(&a, ctx)
			if err != nil {
				t.Fatalf("resolving search: %v", err)
			}

			testutil.AssertEqual(t, "success", res.Success, tt.wantOK)
			testutil.AssertEqual(t, "event type", res.Events[0].Type, tt.wantEvent)
			testutil.AssertEqual(t, "roll total", res.DiceRolls[0].Total, tt.face+4)
		})
	}
}

package engine

import (
	"fmt"

	"github.com/pixil98/go-rpg/internal/storage"
	"github.com/pixil98/go-rpg/internal/systems"
)

const recentEventWindow = 10

// buildContext assembles the read-only turn context from storage. The
// game and character must exist; everything else degrades to empty.
func (e *Engine) buildContext(gameID string) (*systems.GameContext, error) {
	game, err := e.store.Games.Get(gameID)
	if err != nil {
		return nil, fmt.Errorf("loading game %s: %w", gameID, err)
	}

	ch, err := e.store.Characters.GetByGame(gameID)
	if err != nil {
		return nil, fmt.Errorf("loading character for game %s: %w", gameID, err)
	}

	loc, err := e.store.Locations.Get(ch.LocationID)
	if err != nil {
		loc = &storage.Location{ID: ch.LocationID, GameID: gameID, Name: "Unknown"}
	}

	gctx := &systems.GameContext{
		Game:      game,
		Character: ch,
		Location:  loc,
	}

	if gctx.Entities, err = e.store.Entities.GetByLocation(gameID, loc.ID); err != nil {
		return nil, fmt.Errorf("loading entities: %w", err)
	}
	if gctx.Combat, err = e.store.Combat.ActiveCombat(gameID); err != nil {
		return nil, fmt.Errorf("loading combat state: %w", err)
	}
	if gctx.Inventory, err = e.store.Inventories.GetInventory(gameID, ch.ID); err != nil {
		return nil, fmt.Errorf("loading inventory: %w", err)
	}
	if gctx.RecentEvents, err = e.store.Events.Recent(gameID, recentEventWindow); err != nil {
		return nil, fmt.Errorf("loading recent events: %w", err)
	}
	if gctx.Quests, err = e.store.Quests.Active(gameID); err != nil {
		return nil, fmt.Errorf("loading quests: %w", err)
	}

	companions, err := e.store.Companions.Active(gameID)
	if err != nil {
		return nil, fmt.Errorf("loading companions: %w", err)
	}
	for _, c := range companions {
		ent, err := e.store.Entities.Get(c.EntityID)
		if err != nil {
			continue
		}
		gctx.Companions = append(gctx.Companions, ent)
	}

	all, err := e.store.Locations.GetByGame(gameID)
	if err != nil {
		return nil, fmt.Errorf("loading locations: %w", err)
	}
	for _, l := range all {
		if l.Visited {
			gctx.VisitedLocations = append(gctx.VisitedLocations, l)
		}
	}
	return gctx, nil
}

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Game is the top-level save: turn counter, world clock, rewind loop
// count and the conversation-mode marker all live here.
type Game struct {
	ID                string
	Name              string
	TurnNumber        int
	WorldTime         int64
	LoopCount         int
	ConversationNPCID string
	LastSnapshotTurn  int
	Props             Props
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type GameRepo struct {
	db *sql.DB
}

var gameFields = map[string]bool{
	"name":                true,
	"turn_number":         true,
	"world_time":          true,
	"loop_count":          true,
	"conversation_npc_id": true,
	"last_snapshot_turn":  true,
	"props":               true,
}

func (r *GameRepo) Get(id string) (*Game, error) {
	row := r.db.QueryRow(`SELECT id, name, turn_number, world_time, loop_count,
		conversation_npc_id, last_snapshot_turn, props, created_at, updated_at
		FROM games WHERE id = ?`, id)

	var g Game
	var created, updated int64
	err := row.Scan(&g.ID, &g.Name, &g.TurnNumber, &g.WorldTime, &g.LoopCount,
		&g.ConversationNPCID, &g.LastSnapshotTurn, &g.Props, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting game %s: %w", id, err)
	}
	g.CreatedAt = fromMillis(created)
	g.UpdatedAt = fromMillis(updated)
	return &g, nil
}

func (r *GameRepo) Save(g *Game) error {
	now := time.Now()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now

	_, err := r.db.Exec(`INSERT INTO games
		(id, name, turn_number, world_time, loop_count, conversation_npc_id, last_snapshot_turn, props, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			turn_number = excluded.turn_number,
			world_time = excluded.world_time,
			loop_count = excluded.loop_count,
			conversation_npc_id = excluded.conversation_npc_id,
			last_snapshot_turn = excluded.last_snapshot_turn,
			props = excluded.props,
			updated_at = excluded.updated_at`,
		g.ID, g.Name, g.TurnNumber, g.WorldTime, g.LoopCount,
		g.ConversationNPCID, g.LastSnapshotTurn, g.Props, toMillis(g.CreatedAt), toMillis(g.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving game %s: %w", g.ID, err)
	}
	return nil
}

func (r *GameRepo) UpdateField(id, field string, value any) error {
	return updateField(r.db, "games", gameFields, id, field, value)
}

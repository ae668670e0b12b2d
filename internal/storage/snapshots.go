package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Snapshot triggers.
const (
	TriggerLongRest     = "long_rest"
	TriggerRegionChange = "region_change"
	TriggerInterval     = "interval"
	TriggerManual       = "manual"
)

// Snapshot is a point-in-time copy of restorable state. The five state
// blobs are opaque here; the serializer owns their shape.
type Snapshot struct {
	ID             string
	GameID         string
	TurnNumber     int
	WorldTime      int64
	Trigger        string
	LocationID     string
	PlayerState    json.RawMessage
	InventoryState json.RawMessage
	WorldState     json.RawMessage
	QuestState     json.RawMessage
	SocialState    json.RawMessage
	CreatedAt      time.Time
}

type SnapshotRepo struct {
	db *sql.DB
}

func (r *SnapshotRepo) Create(s *Snapshot) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(`INSERT INTO snapshots
		(id, game_id, turn_number, world_time, "trigger", location_id,
		 player_state, inventory_state, world_state, quest_state, social_state, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.GameID, s.TurnNumber, s.WorldTime, s.Trigger, s.LocationID,
		string(s.PlayerState), string(s.InventoryState), string(s.WorldState),
		string(s.QuestState), string(s.SocialState), toMillis(s.CreatedAt))
	if err != nil {
		return fmt.Errorf("creating snapshot %s: %w", s.ID, err)
	}
	return nil
}

func (r *SnapshotRepo) Get(id string) (*Snapshot, error) {
	row := r.db.QueryRow(snapshotQuery+` WHERE id = ?`, id)
	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting snapshot %s: %w", id, err)
	}
	return s, nil
}

// Latest returns the game's most recent snapshot, nil when none exists.
func (r *SnapshotRepo) Latest(gameID string) (*Snapshot, error) {
	row := r.db.QueryRow(snapshotQuery+` WHERE game_id = ? ORDER BY turn_number DESC, created_at DESC LIMIT 1`, gameID)
	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest snapshot for game %s: %w", gameID, err)
	}
	return s, nil
}

// DeleteOld keeps the newest keep snapshots for a game and removes the
// rest.
func (r *SnapshotRepo) DeleteOld(gameID string, keep int) error {
	if keep < 1 {
		keep = 1
	}
	_, err := r.db.Exec(`DELETE FROM snapshots WHERE game_id = ? AND id NOT IN (
		SELECT id FROM snapshots WHERE game_id = ?
		ORDER BY turn_number DESC, created_at DESC LIMIT ?)`,
		gameID, gameID, keep)
	if err != nil {
		return fmt.Errorf("pruning snapshots for game %s: %w", gameID, err)
	}
	return nil
}

const snapshotQuery = `SELECT id, game_id, turn_number, world_time, "trigger", location_id,
	player_state, inventory_state, world_state, quest_state, social_state, created_at
	FROM snapshots`

func scanSnapshot(row interface{ Scan(...any) error }) (*Snapshot, error) {
	var s Snapshot
	var player, inventory, world, quest, social string
	var created int64
	err := row.Scan(&s.ID, &s.GameID, &s.TurnNumber, &s.WorldTime, &s.Trigger, &s.LocationID,
		&player, &inventory, &world, &quest, &social, &created)
	if err != nil {
		return nil, err
	}
	s.PlayerState = json.RawMessage(player)
	s.InventoryState = json.RawMessage(inventory)
	s.WorldState = json.RawMessage(world)
	s.QuestState = json.RawMessage(quest)
	s.SocialState = json.RawMessage(social)
	s.CreatedAt = fromMillis(created)
	return &s, nil
}

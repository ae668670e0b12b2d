package storage

import (
	"database/sql"
	"fmt"
)

// FactionReputation is the player's standing with one faction.
type FactionReputation struct {
	GameID  string `json:"game_id"`
	Faction string `json:"faction"`
	Score   int    `json:"score"`
}

type ReputationRepo struct {
	db *sql.DB
}

func (r *ReputationRepo) GetByGame(gameID string) ([]FactionReputation, error) {
	rows, err := r.db.Query(`SELECT game_id, faction, score FROM reputation
		WHERE game_id = ? ORDER BY faction`, gameID)
	if err != nil {
		return nil, fmt.Errorf("querying reputation: %w", err)
	}
	defer rows.Close()

	var out []FactionReputation
	for rows.Next() {
		var fr FactionReputation
		if err := rows.Scan(&fr.GameID, &fr.Faction, &fr.Score); err != nil {
			return nil, fmt.Errorf("scanning reputation: %w", err)
		}
		out = append(out, fr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reputation: %w", err)
	}
	return out, nil
}

func (r *ReputationRepo) Set(gameID, faction string, score int) error {
	_, err := r.db.Exec(`INSERT INTO reputation (game_id, faction, score)
		VALUES (?, ?, ?)
		ON CONFLICT(game_id, faction) DO UPDATE SET score = excluded.score`,
		gameID, faction, score)
	if err != nil {
		return fmt.Errorf("setting reputation %s/%s: %w", gameID, faction, err)
	}
	return nil
}

// Adjust shifts a faction score by delta, creating the row at delta when
// the faction is new.
func (r *ReputationRepo) Adjust(gameID, faction string, delta int) error {
	_, err := r.db.Exec(`INSERT INTO reputation (game_id, faction, score)
		VALUES (?, ?, ?)
		ON CONFLICT(game_id, faction) DO UPDATE SET score = score + ?`,
		gameID, faction, delta, delta)
	if err != nil {
		return fmt.Errorf("adjusting reputation %s/%s: %w", gameID, faction, err)
	}
	return nil
}

// Companion links a game to an entity travelling with the player.
type Companion struct {
	ID       string `json:"id"`
	GameID   string `json:"game_id"`
	EntityID string `json:"entity_id"`
	Active   bool   `json:"active"`
	Loyalty  int    `json:"loyalty"`
}

type CompanionRepo struct {
	db *sql.DB
}

func (r *CompanionRepo) GetByGame(gameID string) ([]Companion, error) {
	rows, err := r.db.Query(`SELECT id, game_id, entity_id, active, loyalty
		FROM companions WHERE game_id = ? ORDER BY id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("querying companions: %w", err)
	}
	defer rows.Close()

	var out []Companion
	for rows.Next() {
		var c Companion
		if err := rows.Scan(&c.ID, &c.GameID, &c.EntityID, &c.Active, &c.Loyalty); err != nil {
			return nil, fmt.Errorf("scanning companion: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating companions: %w", err)
	}
	return out, nil
}

// Active returns the companions currently travelling with the player.
func (r *CompanionRepo) Active(gameID string) ([]Companion, error) {
	all, err := r.GetByGame(gameID)
	if err != nil {
		return nil, err
	}
	var out []Companion
	for _, c := range all {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *CompanionRepo) Save(c *Companion) error {
	_, err := r.db.Exec(`INSERT INTO companions (id, game_id, entity_id, active, loyalty)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			entity_id = excluded.entity_id,
			active = excluded.active,
			loyalty = excluded.loyalty`,
		c.ID, c.GameID, c.EntityID, c.Active, c.Loyalty)
	if err != nil {
		return fmt.Errorf("saving companion %s: %w", c.ID, err)
	}
	return nil
}

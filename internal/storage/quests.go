package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// Quest statuses.
const (
	QuestActive    = "active"
	QuestCompleted = "completed"
	QuestFailed    = "failed"
)

type QuestObjective struct {
	Description string `json:"description"`
	Done        bool   `json:"done"`
}

type Quest struct {
	ID          string
	GameID      string
	Name        string
	Description string
	Status      string
	Stage       int
	Objectives  []QuestObjective
	Props       Props
}

type QuestRepo struct {
	db *sql.DB
}

var questFields = map[string]bool{
	"name":        true,
	"description": true,
	"status":      true,
	"stage":       true,
	"objectives":  true,
	"props":       true,
}

const questColumns = `id, game_id, name, description, status, stage, objectives, props`

func scanQuest(row interface{ Scan(...any) error }) (*Quest, error) {
	var q Quest
	var objectives string
	err := row.Scan(&q.ID, &q.GameID, &q.Name, &q.Description, &q.Status, &q.Stage, &objectives, &q.Props)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSON(objectives, &q.Objectives); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestRepo) Get(id string) (*Quest, error) {
	row := r.db.QueryRow(`SELECT `+questColumns+` FROM quests WHERE id = ?`, id)
	q, err := scanQuest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quest %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting quest %s: %w", id, err)
	}
	return q, nil
}

func (r *QuestRepo) GetByGame(gameID string) ([]*Quest, error) {
	rows, err := r.db.Query(`SELECT `+questColumns+` FROM quests WHERE game_id = ? ORDER BY id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("querying quests: %w", err)
	}
	defer rows.Close()

	var out []*Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning quest: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quests: %w", err)
	}
	return out, nil
}

// Active returns the game's quests still in progress.
func (r *QuestRepo) Active(gameID string) ([]*Quest, error) {
	all, err := r.GetByGame(gameID)
	if err != nil {
		return nil, err
	}
	var out []*Quest
	for _, q := range all {
		if q.Status == QuestActive {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *QuestRepo) Save(q *Quest) error {
	objectives, err := marshalJSON(q.Objectives)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`INSERT INTO quests (`+questColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			status = excluded.status,
			stage = excluded.stage,
			objectives = excluded.objectives,
			props = excluded.props`,
		q.ID, q.GameID, q.Name, q.Description, q.Status, q.Stage, objectives, q.Props)
	if err != nil {
		return fmt.Errorf("saving quest %s: %w", q.ID, err)
	}
	return nil
}

func (r *QuestRepo) UpdateField(id, field string, value any) error {
	return updateField(r.db, "quests", questFields, id, field, value)
}

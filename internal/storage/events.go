package storage

import (
	"database/sql"
	"fmt"

	"github.com/pixil98/go-rpg/internal/action"
)

// EventRepo is the append-only ledger of what happened. Rows are never
// updated; a restore rewrites world state but not history.
type EventRepo struct {
	db *sql.DB
}

func (r *EventRepo) Append(ev action.Event) error {
	details, err := marshalJSON(ev.Details)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`INSERT INTO events
		(id, game_id, event_type, turn_number, timestamp, actor_id, target_id, location_id, description, details, canonical)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.GameID, string(ev.Type), ev.TurnNumber, toMillis(ev.Timestamp),
		ev.ActorID, ev.TargetID, ev.LocationID, ev.Description, details, ev.Canonical)
	if err != nil {
		return fmt.Errorf("appending event %s: %w", ev.ID, err)
	}
	return nil
}

// Recent returns the newest events for a game, most recent first.
func (r *EventRepo) Recent(gameID string, limit int) ([]action.Event, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(`SELECT id, game_id, event_type, turn_number, timestamp,
		actor_id, target_id, location_id, description, details, canonical
		FROM events WHERE game_id = ?
		ORDER BY turn_number DESC, timestamp DESC LIMIT ?`, gameID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var out []action.Event
	for rows.Next() {
		var ev action.Event
		var typ, details string
		var ts int64
		err := rows.Scan(&ev.ID, &ev.GameID, &typ, &ev.TurnNumber, &ts,
			&ev.ActorID, &ev.TargetID, &ev.LocationID, &ev.Description, &details, &ev.Canonical)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		ev.Type = action.EventType(typ)
		ev.Timestamp = fromMillis(ts)
		if err := unmarshalJSON(details, &ev.Details); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return out, nil
}

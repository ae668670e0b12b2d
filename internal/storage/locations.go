package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// Connection is a one-way exit from a location.
type Connection struct {
	Direction string `json:"direction"`
	TargetID  string `json:"target_id"`
}

type Location struct {
	ID          string
	GameID      string
	Name        string
	Description string
	Region      string
	Kind        string
	Climate     string
	Safe        bool
	Visited     bool
	Connections []Connection
	Props       Props
}

// Connection lookup by direction, nil if the exit is undefined.
func (l *Location) ConnectionTo(direction string) *Connection {
	for i := range l.Connections {
		if l.Connections[i].Direction == direction {
			return &l.Connections[i]
		}
	}
	return nil
}

type LocationRepo struct {
	db *sql.DB
}

var locationFields = map[string]bool{
	"name":        true,
	"description": true,
	"region":      true,
	"kind":        true,
	"climate":     true,
	"safe":        true,
	"visited":     true,
	"connections": true,
	"props":       true,
}

const locationColumns = `id, game_id, name, description, region, kind, climate, safe, visited, connections, props`

func scanLocation(row interface{ Scan(...any) error }) (*Location, error) {
	var l Location
	var conns string
	err := row.Scan(&l.ID, &l.GameID, &l.Name, &l.Description, &l.Region,
		&l.Kind, &l.Climate, &l.Safe, &l.Visited, &conns, &l.Props)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSON(conns, &l.Connections); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LocationRepo) Get(id string) (*Location, error) {
	row := r.db.QueryRow(`SELECT `+locationColumns+` FROM locations WHERE id = ?`, id)
	l, err := scanLocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("location %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting location %s: %w", id, err)
	}
	return l, nil
}

func (r *LocationRepo) GetByGame(gameID string) ([]*Location, error) {
	rows, err := r.db.Query(`SELECT `+locationColumns+` FROM locations WHERE game_id = ? ORDER BY id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer rows.Close()

	var out []*Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating locations: %w", err)
	}
	return out, nil
}

func (r *LocationRepo) Save(l *Location) error {
	conns, err := marshalJSON(l.Connections)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`INSERT INTO locations (`+locationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			region = excluded.region,
			kind = excluded.kind,
			climate = excluded.climate,
			safe = excluded.safe,
			visited = excluded.visited,
			connections = excluded.connections,
			props = excluded.props`,
		l.ID, l.GameID, l.Name, l.Description, l.Region,
		l.Kind, l.Climate, l.Safe, l.Visited, conns, l.Props)
	if err != nil {
		return fmt.Errorf("saving location %s: %w", l.ID, err)
	}
	return nil
}

func (r *LocationRepo) UpdateField(id, field string, value any) error {
	return updateField(r.db, "locations", locationFields, id, field, value)
}

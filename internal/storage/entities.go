package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/pixil98/go-rpg/internal/mechanics"
)

// Entity kinds.
const (
	EntityNPC       = "npc"
	EntityMonster   = "monster"
	EntityCompanion = "companion"
)

// Entity is any non-player actor: an NPC, a monster or a companion.
type Entity struct {
	ID              string
	GameID          string
	Name            string
	Kind            string
	LocationID      string
	HPCurrent       int
	HPMax           int
	AC              int
	AttackBonus     int
	DamageDice      string
	DamageBonus     int
	ChallengeRating float64
	Hostile         bool
	Alive           bool
	LootTableID     string
	Abilities       mechanics.AbilityScores
	Conditions      []string
	Props           Props
}

type EntityRepo struct {
	db *sql.DB
}

var entityFields = map[string]bool{
	"name":             true,
	"kind":             true,
	"location_id":      true,
	"hp_current":       true,
	"hp_max":           true,
	"ac":               true,
	"attack_bonus":     true,
	"damage_dice":      true,
	"damage_bonus":     true,
	"challenge_rating": true,
	"hostile":          true,
	"alive":            true,
	"loot_table_id":    true,
	"abilities":        true,
	"conditions":       true,
	"props":            true,
}

const entityColumns = `id, game_id, name, kind, location_id, hp_current, hp_max, ac,
	attack_bonus, damage_dice, damage_bonus, challenge_rating, hostile, alive,
	loot_table_id, abilities, conditions, props`

func scanEntity(row interface{ Scan(...any) error }) (*Entity, error) {
	var e Entity
	var abilities, conds string
	err := row.Scan(&e.ID, &e.GameID, &e.Name, &e.Kind, &e.LocationID,
		&e.HPCurrent, &e.HPMax, &e.AC, &e.AttackBonus, &e.DamageDice, &e.DamageBonus,
		&e.ChallengeRating, &e.Hostile, &e.Alive, &e.LootTableID,
		&abilities, &conds, &e.Props)
	if err != nil {
		return nil, err
	}

	if err := unmarshalJSON(abilities, &e.Abilities); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(conds, &e.Conditions); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EntityRepo) Get(id string) (*Entity, error) {
	row := r.db.QueryRow(`SELECT `+entityColumns+` FROM entities WHERE id = ?`, id)
	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entity %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting entity %s: %w", id, err)
	}
	return e, nil
}

func (r *EntityRepo) GetByGame(gameID string) ([]*Entity, error) {
	return r.query(`SELECT `+entityColumns+` FROM entities WHERE game_id = ? ORDER BY id`, gameID)
}

func (r *EntityRepo) GetByLocation(gameID, locationID string) ([]*Entity, error) {
	return r.query(`SELECT `+entityColumns+` FROM entities WHERE game_id = ? AND location_id = ? ORDER BY id`,
		gameID, locationID)
}

func (r *EntityRepo) query(q string, args ...any) ([]*Entity, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	var out []*Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}
	return out, nil
}

func (r *EntityRepo) Save(e *Entity) error {
	abilities, err := marshalJSON(e.Abilities)
	if err != nil {
		return err
	}
	conds, err := marshalJSON(e.Conditions)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`INSERT INTO entities (`+entityColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			location_id = excluded.location_id,
			hp_current = excluded.hp_current,
			hp_max = excluded.hp_max,
			ac = excluded.ac,
			attack_bonus = excluded.attack_bonus,
			damage_dice = excluded.damage_dice,
			damage_bonus = excluded.damage_bonus,
			challenge_rating = excluded.challenge_rating,
			hostile = excluded.hostile,
			alive = excluded.alive,
			loot_table_id = excluded.loot_table_id,
			abilities = excluded.abilities,
			conditions = excluded.conditions,
			props = excluded.props`,
		e.ID, e.GameID, e.Name, e.Kind, e.LocationID,
		e.HPCurrent, e.HPMax, e.AC, e.AttackBonus, e.DamageDice, e.DamageBonus,
		e.ChallengeRating, e.Hostile, e.Alive, e.LootTableID,
		abilities, conds, e.Props)
	if err != nil {
		return fmt.Errorf("saving entity %s: %w", e.ID, err)
	}
	return nil
}

func (r *EntityRepo) UpdateField(id, field string, value any) error {
	return updateField(r.db, "entities", entityFields, id, field, value)
}

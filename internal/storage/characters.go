package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/pixil98/go-rpg/internal/mechanics"
)

// Character is the player record. Authoritative HP, gold and progression
// live here; combat only caches them.
type Character struct {
	ID            string
	GameID        string
	Name          string
	Class         string
	Level         int
	XP            int
	HPCurrent     int
	HPMax         int
	HPTemp        int
	AC            int
	AttackBonus   int
	Gold          int
	LocationID    string
	Alive         bool
	WeakenedTurns int
	Abilities     mechanics.AbilityScores
	Proficiencies []string
	Conditions    []string
	SpellSlots    map[int]int
	Needs         mechanics.Needs
	Props         Props
}

type CharacterRepo struct {
	db *sql.DB
}

var characterFields = map[string]bool{
	"name":           true,
	"class":          true,
	"level":          true,
	"xp":             true,
	"hp_current":     true,
	"hp_max":         true,
	"hp_temp":        true,
	"ac":             true,
	"attack_bonus":   true,
	"gold":           true,
	"location_id":    true,
	"alive":          true,
	"weakened_turns": true,
	"abilities":      true,
	"proficiencies":  true,
	"conditions":     true,
	"spell_slots":    true,
	"needs":          true,
	"props":          true,
}

const characterColumns = `id, game_id, name, class, level, xp, hp_current, hp_max, hp_temp,
	ac, attack_bonus, gold, location_id, alive, weakened_turns,
	abilities, proficiencies, conditions, spell_slots, needs, props`

func scanCharacter(row interface{ Scan(...any) error }) (*Character, error) {
	var c Character
	var abilities, profs, conds, slots, needs string
	err := row.Scan(&c.ID, &c.GameID, &c.Name, &c.Class, &c.Level, &c.XP,
		&c.HPCurrent, &c.HPMax, &c.HPTemp, &c.AC, &c.AttackBonus, &c.Gold,
		&c.LocationID, &c.Alive, &c.WeakenedTurns,
		&abilities, &profs, &conds, &slots, &needs, &c.Props)
	if err != nil {
		return nil, err
	}

	if err := unmarshalJSON(abilities, &c.Abilities); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(profs, &c.Proficiencies); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(conds, &c.Conditions); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(slots, &c.SpellSlots); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(needs, &c.Needs); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CharacterRepo) Get(id string) (*Character, error) {
	row := r.db.QueryRow(`SELECT `+characterColumns+` FROM characters WHERE id = ?`, id)
	c, err := scanCharacter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("character %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting character %s: %w", id, err)
	}
	return c, nil
}

// GetByGame returns the game's player character. Single-player, so the
// first row wins.
func (r *CharacterRepo) GetByGame(gameID string) (*Character, error) {
	row := r.db.QueryRow(`SELECT `+characterColumns+` FROM characters WHERE game_id = ? LIMIT 1`, gameID)
	c, err := scanCharacter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("character for game %s: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting character for game %s: %w", gameID, err)
	}
	return c, nil
}

func (r *CharacterRepo) Save(c *Character) error {
	abilities, err := marshalJSON(c.Abilities)
	if err != nil {
		return err
	}
	profs, err := marshalJSON(c.Proficiencies)
	if err != nil {
		return err
	}
	conds, err := marshalJSON(c.Conditions)
	if err != nil {
		return err
	}
	slots, err := marshalJSON(c.SpellSlots)
	if err != nil {
		return err
	}
	needs, err := marshalJSON(c.Needs)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`INSERT INTO characters (`+characterColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			class = excluded.class,
			level = excluded.level,
			xp = excluded.xp,
			hp_current = excluded.hp_current,
			hp_max = excluded.hp_max,
			hp_temp = excluded.hp_temp,
			ac = excluded.ac,
			attack_bonus = excluded.attack_bonus,
			gold = excluded.gold,
			location_id = excluded.location_id,
			alive = excluded.alive,
			weakened_turns = excluded.weakened_turns,
			abilities = excluded.abilities,
			proficiencies = excluded.proficiencies,
			conditions = excluded.conditions,
			spell_slots = excluded.spell_slots,
			needs = excluded.needs,
			props = excluded.props`,
		c.ID, c.GameID, c.Name, c.Class, c.Level, c.XP,
		c.HPCurrent, c.HPMax, c.HPTemp, c.AC, c.AttackBonus, c.Gold,
		c.LocationID, c.Alive, c.WeakenedTurns,
		abilities, profs, conds, slots, needs, c.Props)
	if err != nil {
		return fmt.Errorf("saving character %s: %w", c.ID, err)
	}
	return nil
}

func (r *CharacterRepo) UpdateField(id, field string, value any) error {
	return updateField(r.db, "characters", characterFields, id, field, value)
}

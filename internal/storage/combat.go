package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// Combatant types.
const (
	CombatantPlayer    = "player"
	CombatantCompanion = "companion"
	CombatantEnemy     = "enemy"
)

// Combatant is the ephemeral in-combat copy of a participant. HP here is
// a working cache; the authoritative value lives on the persistent record
// and is synced by a mutation at the point of each change.
type Combatant struct {
	EntityID        string   `json:"entity_id"`
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	Initiative      int      `json:"initiative"`
	HPCurrent       int      `json:"hp_current"`
	HPMax           int      `json:"hp_max"`
	HPTemp          int      `json:"hp_temp"`
	AC              int      `json:"ac"`
	AttackBonus     int      `json:"attack_bonus"`
	DamageDice      string   `json:"damage_dice"`
	DamageBonus     int      `json:"damage_bonus"`
	ChallengeRating float64  `json:"challenge_rating"`
	LootTableID     string   `json:"loot_table_id,omitempty"`
	Active          bool     `json:"active"`
	Fleeing         bool     `json:"fleeing"`
	Conditions      []string `json:"conditions,omitempty"`
}

// CombatState is one encounter: created on the first hostile action,
// mutated every round, ended on victory, defeat or flee.
type CombatState struct {
	ID         string
	GameID     string
	Active     bool
	Round      int
	Combatants []Combatant
	TurnOrder  []string
}

// Find returns the combatant with the given entity id, nil if absent.
func (cs *CombatState) Find(entityID string) *Combatant {
	for i := range cs.Combatants {
		if cs.Combatants[i].EntityID == entityID {
			return &cs.Combatants[i]
		}
	}
	return nil
}

// ActiveEnemies counts enemy combatants still standing.
func (cs *CombatState) ActiveEnemies() int {
	n := 0
	for i := range cs.Combatants {
		if cs.Combatants[i].Type == CombatantEnemy && cs.Combatants[i].Active {
			n++
		}
	}
	return n
}

type CombatRepo struct {
	db *sql.DB
}

// ActiveCombat returns the game's running encounter, or nil when the game
// is out of combat.
func (r *CombatRepo) ActiveCombat(gameID string) (*CombatState, error) {
	row := r.db.QueryRow(`SELECT id, game_id, active, round_number, combatants, turn_order
		FROM combat_states WHERE game_id = ? AND active = 1 LIMIT 1`, gameID)

	cs, err := scanCombat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting active combat for game %s: %w", gameID, err)
	}
	return cs, nil
}

func scanCombat(row interface{ Scan(...any) error }) (*CombatState, error) {
	var cs CombatState
	var combatants, order string
	err := row.Scan(&cs.ID, &cs.GameID, &cs.Active, &cs.Round, &combatants, &order)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSON(combatants, &cs.Combatants); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(order, &cs.TurnOrder); err != nil {
		return nil, err
	}
	return &cs, nil
}

func (r *CombatRepo) SaveCombat(cs *CombatState) error {
	combatants, err := marshalJSON(cs.Combatants)
	if err != nil {
		return err
	}
	order, err := marshalJSON(cs.TurnOrder)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`INSERT INTO combat_states (id, game_id, active, round_number, combatants, turn_order)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			active = excluded.active,
			round_number = excluded.round_number,
			combatants = excluded.combatants,
			turn_order = excluded.turn_order`,
		cs.ID, cs.GameID, cs.Active, cs.Round, combatants, order)
	if err != nil {
		return fmt.Errorf("saving combat %s: %w", cs.ID, err)
	}
	return nil
}

// UpdateCombat is SaveCombat for an encounter already known to exist.
func (r *CombatRepo) UpdateCombat(cs *CombatState) error {
	return r.SaveCombat(cs)
}

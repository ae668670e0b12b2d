package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store bundles the per-kind repositories over a single SQLite handle.
// One game runs one turn at a time, so no extra locking is layered on top
// of the driver's own serialization.
type Store struct {
	db *sql.DB

	Games       *GameRepo
	Characters  *CharacterRepo
	Entities    *EntityRepo
	Locations   *LocationRepo
	Inventories *InventoryRepo
	Quests      *QuestRepo
	Events      *EventRepo
	Combat      *CombatRepo
	Snapshots   *SnapshotRepo
	Canon       *CanonRepo
	Reputation  *ReputationRepo
	Companions  *CompanionRepo
}

// Open opens (or creates) the game database at path and bootstraps the
// schema. Pass ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := path
	if path != ":memory:" {
		dsn = path + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrapping schema: %w", err)
	}

	s := &Store{db: db}
	s.Games = &GameRepo{db: db}
	s.Characters = &CharacterRepo{db: db}
	s.Entities = &EntityRepo{db: db}
	s.Locations = &LocationRepo{db: db}
	s.Inventories = &InventoryRepo{db: db}
	s.Quests = &QuestRepo{db: db}
	s.Events = &EventRepo{db: db}
	s.Combat = &CombatRepo{db: db}
	s.Snapshots = &SnapshotRepo{db: db}
	s.Canon = &CanonRepo{db: db}
	s.Reputation = &ReputationRepo{db: db}
	s.Companions = &CompanionRepo{db: db}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Timestamps are stored as UTC millisecond INTEGER columns so they
// round-trip without driver-specific time parsing.
func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	turn_number   INTEGER NOT NULL DEFAULT 0,
	world_time    INTEGER NOT NULL DEFAULT 480,
	loop_count    INTEGER NOT NULL DEFAULT 0,
	conversation_npc_id TEXT NOT NULL DEFAULT '',
	last_snapshot_turn  INTEGER NOT NULL DEFAULT 0,
	props         TEXT NOT NULL DEFAULT '{}',
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS characters (
	id             TEXT PRIMARY KEY,
	game_id        TEXT NOT NULL,
	name           TEXT NOT NULL,
	class          TEXT NOT NULL,
	level          INTEGER NOT NULL DEFAULT 1,
	xp             INTEGER NOT NULL DEFAULT 0,
	hp_current     INTEGER NOT NULL,
	hp_max         INTEGER NOT NULL,
	hp_temp        INTEGER NOT NULL DEFAULT 0,
	ac             INTEGER NOT NULL,
	attack_bonus   INTEGER NOT NULL DEFAULT 0,
	gold           INTEGER NOT NULL DEFAULT 0,
	location_id    TEXT NOT NULL DEFAULT '',
	alive          INTEGER NOT NULL DEFAULT 1,
	weakened_turns INTEGER NOT NULL DEFAULT 0,
	abilities      TEXT NOT NULL DEFAULT '{}',
	proficiencies  TEXT NOT NULL DEFAULT '[]',
	conditions     TEXT NOT NULL DEFAULT '[]',
	spell_slots    TEXT NOT NULL DEFAULT '{}',
	needs          TEXT NOT NULL DEFAULT '{}',
	props          TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_characters_game ON characters(game_id);

CREATE TABLE IF NOT EXISTS entities (
	id               TEXT PRIMARY KEY,
	game_id          TEXT NOT NULL,
	name             TEXT NOT NULL,
	kind             TEXT NOT NULL,
	location_id      TEXT NOT NULL DEFAULT '',
	hp_current       INTEGER NOT NULL,
	hp_max           INTEGER NOT NULL,
	ac               INTEGER NOT NULL,
	attack_bonus     INTEGER NOT NULL DEFAULT 0,
	damage_dice      TEXT NOT NULL DEFAULT '1d4',
	damage_bonus     INTEGER NOT NULL DEFAULT 0,
	challenge_rating REAL NOT NULL DEFAULT 0,
	hostile          INTEGER NOT NULL DEFAULT 0,
	alive            INTEGER NOT NULL DEFAULT 1,
	loot_table_id    TEXT NOT NULL DEFAULT '',
	abilities        TEXT NOT NULL DEFAULT '{}',
	conditions       TEXT NOT NULL DEFAULT '[]',
	props            TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_entities_game ON entities(game_id);
CREATE INDEX IF NOT EXISTS idx_entities_location ON entities(game_id, location_id);

CREATE TABLE IF NOT EXISTS locations (
	id          TEXT PRIMARY KEY,
	game_id     TEXT NOT NULL,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	region      TEXT NOT NULL DEFAULT '',
	kind        TEXT NOT NULL DEFAULT 'wilderness',
	climate     TEXT NOT NULL DEFAULT 'temperate',
	safe        INTEGER NOT NULL DEFAULT 0,
	visited     INTEGER NOT NULL DEFAULT 0,
	connections TEXT NOT NULL DEFAULT '[]',
	props       TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_locations_game ON locations(game_id);

CREATE TABLE IF NOT EXISTS inventories (
	owner_id TEXT PRIMARY KEY,
	game_id  TEXT NOT NULL,
	items    TEXT NOT NULL DEFAULT '[]',
	equipped TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_inventories_game ON inventories(game_id);

CREATE TABLE IF NOT EXISTS quests (
	id          TEXT PRIMARY KEY,
	game_id     TEXT NOT NULL,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'active',
	stage       INTEGER NOT NULL DEFAULT 0,
	objectives  TEXT NOT NULL DEFAULT '[]',
	props       TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_quests_game ON quests(game_id);

CREATE TABLE IF NOT EXISTS events (
	id          TEXT PRIMARY KEY,
	game_id     TEXT NOT NULL,
	event_type  TEXT NOT NULL,
	turn_number INTEGER NOT NULL,
	timestamp   INTEGER NOT NULL,
	actor_id    TEXT NOT NULL DEFAULT '',
	target_id   TEXT NOT NULL DEFAULT '',
	location_id TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	details     TEXT NOT NULL DEFAULT '{}',
	canonical   INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_events_game_turn ON events(game_id, turn_number);

CREATE TABLE IF NOT EXISTS combat_states (
	id           TEXT PRIMARY KEY,
	game_id      TEXT NOT NULL,
	active       INTEGER NOT NULL DEFAULT 1,
	round_number INTEGER NOT NULL DEFAULT 1,
	combatants   TEXT NOT NULL DEFAULT '[]',
	turn_order   TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_combat_game_active ON combat_states(game_id, active);

CREATE TABLE IF NOT EXISTS snapshots (
	id              TEXT PRIMARY KEY,
	game_id         TEXT NOT NULL,
	turn_number     INTEGER NOT NULL,
	world_time      INTEGER NOT NULL,
	"trigger"       TEXT NOT NULL,
	location_id     TEXT NOT NULL DEFAULT '',
	player_state    TEXT NOT NULL DEFAULT '{}',
	inventory_state TEXT NOT NULL DEFAULT '{}',
	world_state     TEXT NOT NULL DEFAULT '{}',
	quest_state     TEXT NOT NULL DEFAULT '{}',
	social_state    TEXT NOT NULL DEFAULT '{}',
	created_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_game ON snapshots(game_id, turn_number);

CREATE TABLE IF NOT EXISTS canon_entries (
	id            TEXT PRIMARY KEY,
	game_id       TEXT NOT NULL,
	timestamp     INTEGER NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	changes       TEXT NOT NULL DEFAULT '{}',
	snapshot_id   TEXT NOT NULL,
	previous_hash TEXT NOT NULL,
	entry_hash    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_canon_game ON canon_entries(game_id, timestamp);

CREATE TABLE IF NOT EXISTS reputation (
	game_id TEXT NOT NULL,
	faction TEXT NOT NULL,
	score   INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (game_id, faction)
);

CREATE TABLE IF NOT EXISTS companions (
	id        TEXT PRIMARY KEY,
	game_id   TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	active    INTEGER NOT NULL DEFAULT 1,
	loyalty   INTEGER NOT NULL DEFAULT 50
);
CREATE INDEX IF NOT EXISTS idx_companions_game ON companions(game_id);
`

package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pixil98/go-rpg/internal/storage"
)

// RestoreConfig marks what survives a rewind. Flags gate what is KEPT:
// a kept slice of state is left at its current values while the rest of
// the world reverts to the snapshot.
type RestoreConfig struct {
	KeepPlayerStats bool
	KeepInventory   bool
	KeepSocial      bool
}

// Preset restore configs by rewind cause.
var (
	// RestoreArtifact is the willing rewind: the player remembers and
	// carries everything back.
	RestoreArtifact = RestoreConfig{KeepPlayerStats: true, KeepInventory: true}

	// RestoreDeath keeps hard-won stats but not possessions.
	RestoreDeath = RestoreConfig{KeepPlayerStats: true}

	// RestoreFullReset reverts everything.
	RestoreFullReset = RestoreConfig{}
)

type worldState struct {
	Entities  []*storage.Entity   `json:"entities"`
	Locations []*storage.Location `json:"locations"`
}

type questState struct {
	Quests []*storage.Quest `json:"quests"`
}

type socialState struct {
	Reputation []storage.FactionReputation `json:"reputation"`
	Companions []storage.Companion         `json:"companions"`
}

// Serializer captures and restores point-in-time game state. Restores
// append to the hash-chained canon ledger so rewind history is tamper
// evident.
type Serializer struct {
	store *storage.Store
}

func NewSerializer(store *storage.Store) *Serializer {
	return &Serializer{store: store}
}

// Capture freezes the current player, inventory, world, quest and social
// state into one snapshot record and persists it.
func (s *Serializer) Capture(gameID, trigger string) (*storage.Snapshot, error) {
	game, err := s.store.Games.Get(gameID)
	if err != nil {
		return nil, fmt.Errorf("loading game: %w", err)
	}
	ch, err := s.store.Characters.GetByGame(gameID)
	if err != nil {
		return nil, fmt.Errorf("loading character: %w", err)
	}
	inv, err := s.store.Inventories.GetInventory(gameID, ch.ID)
	if err != nil {
		return nil, fmt.Errorf("loading inventory: %w", err)
	}

	entities, err := s.store.Entities.GetByGame(gameID)
	if err != nil {
		return nil, fmt.Errorf("loading entities: %w", err)
	}
	locations, err := s.store.Locations.GetByGame(gameID)
	if err != nil {
		return nil, fmt.Errorf("loading locations: %w", err)
	}
	quests, err := s.store.Quests.GetByGame(gameID)
	if err != nil {
		return nil, fmt.Errorf("loading quests: %w", err)
	}
	reputation, err := s.store.Reputation.GetByGame(gameID)
	if err != nil {
		return nil, fmt.Errorf("loading reputation: %w", err)
	}
	companions, err := s.store.Companions.GetByGame(gameID)
	if err != nil {
		return nil, fmt.Errorf("loading companions: %w", err)
	}

	snap := &storage.Snapshot{
		ID:         uuid.NewString(),
		GameID:     gameID,
		TurnNumber: game.TurnNumber,
		WorldTime:  game.WorldTime,
		Trigger:    trigger,
		LocationID: ch.LocationID,
		CreatedAt:  time.Now(),
	}

	blobs := []struct {
		out *json.RawMessage
		v   any
	}{
		{&snap.PlayerState, ch},
		{&snap.InventoryState, inv},
		{&snap.WorldState, worldState{Entities: entities, Locations: locations}},
		{&snap.QuestState, questState{Quests: quests}},
		{&snap.SocialState, socialState{Reputation: reputation, Companions: companions}},
	}
	for _, b := range blobs {
		data, err := json.Marshal(b.v)
		if err != nil {
			return nil, fmt.Errorf("encoding snapshot state: %w", err)
		}
		*b.out = data
	}

	if err := s.store.Snapshots.Create(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Restore rewinds the game to a snapshot. World and quest state always
// revert; player stats, inventory and social state revert only when not
// kept. Afterwards loop_count increments and a canon entry is chained.
func (s *Serializer) Restore(gameID, snapshotID string, cfg RestoreConfig) error {
	snap, err := s.store.Snapshots.Get(snapshotID)
	if err != nil {
		return fmt.Errorf("loading snapshot %s: %w", snapshotID, err)
	}
	if snap.GameID != gameID {
		return fmt.Errorf("snapshot %s belongs to another game", snapshotID)
	}

	if err := s.restoreWorld(snap); err != nil {
		return err
	}
	if err := s.restoreQuests(snap); err != nil {
		return err
	}
	if !cfg.KeepPlayerStats {
		if err := s.restorePlayer(snap); err != nil {
			return err
		}
	}
	if !cfg.KeepInventory {
		if err := s.restoreInventory(snap); err != nil {
			return err
		}
	}
	if !cfg.KeepSocial {
		if err := s.restoreSocial(snap); err != nil {
			return err
		}
	}

	game, err := s.store.Games.Get(gameID)
	if err != nil {
		return fmt.Errorf("loading game: %w", err)
	}
	game.WorldTime = snap.WorldTime
	game.TurnNumber = snap.TurnNumber
	game.LoopCount++
	game.ConversationNPCID = ""
	if err := s.store.Games.Save(game); err != nil {
		return fmt.Errorf("rewinding game row: %w", err)
	}

	// The player stands where the snapshot was taken, whatever was kept.
	if err := s.relocatePlayer(gameID, snap.LocationID); err != nil {
		return err
	}

	entry := &storage.CanonEntry{
		ID:          uuid.NewString(),
		GameID:      gameID,
		Description: fmt.Sprintf("Timeline diverged. Loop %d.", game.LoopCount),
		Changes: map[string]any{
			"trigger":     snap.Trigger,
			"snapshot_id": snap.ID,
			"loop_count":  game.LoopCount,
		},
		SnapshotID: snap.ID,
	}
	if err := s.store.Canon.Append(entry); err != nil {
		return fmt.Errorf("chaining canon entry: %w", err)
	}
	return nil
}

func (s *Serializer) relocatePlayer(gameID, locationID string) error {
	ch, err := s.store.Characters.GetByGame(gameID)
	if err != nil {
		return fmt.Errorf("loading character: %w", err)
	}
	if ch.LocationID == locationID {
		return nil
	}
	return s.store.Characters.UpdateField(ch.ID, "location_id", locationID)
}

// restoreWorld reverts entities and locations by field-level
// diff-and-write: only values that differ from the snapshot are written.
func (s *Serializer) restoreWorld(snap *storage.Snapshot) error {
	var world worldState
	if err := json.Unmarshal(snap.WorldState, &world); err != nil {
		return fmt.Errorf("decoding world state: %w", err)
	}

	for _, want := range world.Entities {
		have, err := s.store.Entities.Get(want.ID)
		if err != nil {
			slog.Warn("skipping vanished entity on restore", "entity_id", want.ID)
			continue
		}
		diffEntity(have, want, func(field string, v any) {
			if err := s.store.Entities.UpdateField(want.ID, field, v); err != nil {
				slog.Error("restoring entity field", "entity_id", want.ID, "field", field, "err", err)
			}
		})
	}

	for _, want := range world.Locations {
		have, err := s.store.Locations.Get(want.ID)
		if err != nil {
			slog.Warn("skipping vanished location on restore", "location_id", want.ID)
			continue
		}
		diffLocation(have, want, func(field string, v any) {
			if err := s.store.Locations.UpdateField(want.ID, field, v); err != nil {
				slog.Error("restoring location field", "location_id", want.ID, "field", field, "err", err)
			}
		})
	}
	return nil
}

func diffEntity(have, want *storage.Entity, write func(field string, v any)) {
	if have.Name != want.Name {
		write("name", want.Name)
	}
	if have.LocationID != want.LocationID {
		write("location_id", want.LocationID)
	}
	if have.HPCurrent != want.HPCurrent {
		write("hp_current", want.HPCurrent)
	}
	if have.HPMax != want.HPMax {
		write("hp_max", want.HPMax)
	}
	if have.AC != want.AC {
		write("ac", want.AC)
	}
	if have.Hostile != want.Hostile {
		write("hostile", want.Hostile)
	}
	if have.Alive != want.Alive {
		write("alive", want.Alive)
	}
	if !jsonEqual(have.Conditions, want.Conditions) {
		write("conditions", want.Conditions)
	}
	if !jsonEqual(have.Props, want.Props) {
		write("props", want.Props)
	}
}

func diffLocation(have, want *storage.Location, write func(field string, v any)) {
	if have.Name != want.Name {
		write("name", want.Name)
	}
	if have.Description != want.Description {
		write("description", want.Description)
	}
	if have.Safe != want.Safe {
		write("safe", want.Safe)
	}
	if have.Visited != want.Visited {
		write("visited", want.Visited)
	}
	if !jsonEqual(have.Connections, want.Connections) {
		write("connections", want.Connections)
	}
	if !jsonEqual(have.Props, want.Props) {
		write("props", want.Props)
	}
}

func jsonEqual(a, b any) bool {
	ja, err := json.Marshal(a)
	if err != nil {
		return false
	}
	jb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(ja) == string(jb)
}

func (s *Serializer) restoreQuests(snap *storage.Snapshot) error {
	var qs questState
	if err := json.Unmarshal(snap.QuestState, &qs); err != nil {
		return fmt.Errorf("decoding quest state: %w", err)
	}
	for _, q := range qs.Quests {
		if err := s.store.Quests.Save(q); err != nil {
			slog.Error("restoring quest", "quest_id", q.ID, "err", err)
		}
	}
	return nil
}

// restorePlayer is a field-level diff-and-write against the snapshot's
// character record.
func (s *Serializer) restorePlayer(snap *storage.Snapshot) error {
	var want storage.Character
	if err := json.Unmarshal(snap.PlayerState, &want); err != nil {
		return fmt.Errorf("decoding player state: %w", err)
	}
	have, err := s.store.Characters.Get(want.ID)
	if err != nil {
		return fmt.Errorf("loading character %s: %w", want.ID, err)
	}

	write := func(field string, v any) {
		if err := s.store.Characters.UpdateField(want.ID, field, v); err != nil {
			slog.Error("restoring character field", "field", field, "err", err)
		}
	}
	if have.Level != want.Level {
		write("level", want.Level)
	}
	if have.XP != want.XP {
		write("xp", want.XP)
	}
	if have.HPCurrent != want.HPCurrent {
		write("hp_current", want.HPCurrent)
	}
	if have.HPMax != want.HPMax {
		write("hp_max", want.HPMax)
	}
	if have.AC != want.AC {
		write("ac", want.AC)
	}
	if have.AttackBonus != want.AttackBonus {
		write("attack_bonus", want.AttackBonus)
	}
	if have.Gold != want.Gold {
		write("gold", want.Gold)
	}
	if have.Alive != want.Alive {
		write("alive", want.Alive)
	}
	if have.WeakenedTurns != want.WeakenedTurns {
		write("weakened_turns", want.WeakenedTurns)
	}
	if !jsonEqual(have.Abilities, want.Abilities) {
		write("abilities", want.Abilities)
	}
	if !jsonEqual(have.Conditions, want.Conditions) {
		write("conditions", want.Conditions)
	}
	if !jsonEqual(have.SpellSlots, want.SpellSlots) {
		write("spell_slots", want.SpellSlots)
	}
	if !jsonEqual(have.Needs, want.Needs) {
		write("needs", want.Needs)
	}
	return nil
}

func (s *Serializer) restoreInventory(snap *storage.Snapshot) error {
	var inv storage.Inventory
	if err := json.Unmarshal(snap.InventoryState, &inv); err != nil {
		return fmt.Errorf("decoding inventory state: %w", err)
	}
	return s.store.Inventories.UpdateInventory(&inv)
}

func (s *Serializer) restoreSocial(snap *storage.Snapshot) error {
	var soc socialState
	if err := json.Unmarshal(snap.SocialState, &soc); err != nil {
		return fmt.Errorf("decoding social state: %w", err)
	}
	for _, rep := range soc.Reputation {
		if err := s.store.Reputation.Set(rep.GameID, rep.Faction, rep.Score); err != nil {
			slog.Error("restoring reputation", "faction", rep.Faction, "err", err)
		}
	}
	for i := range soc.Companions {
		if err := s.store.Companions.Save(&soc.Companions[i]); err != nil {
			slog.Error("restoring companion", "companion_id", soc.Companions[i].ID, "err", err)
		}
	}
	return nil
}

package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// GenesisHash seeds the first entry of every game's canon chain.
const GenesisHash = "genesis"

// CanonEntry is one link of the hash-chained rewind ledger. The chain
// makes tampering with rewind history detectable: each entry hashes the
// previous entry's hash together with the restored snapshot id.
type CanonEntry struct {
	ID           string
	GameID       string
	Timestamp    time.Time
	Description  string
	Changes      map[string]any
	SnapshotID   string
	PreviousHash string
	EntryHash    string
}

// EntryHash derives the chain hash for a link.
func EntryHash(previousHash, snapshotID string) string {
	sum := sha256.Sum256([]byte(previousHash + snapshotID))
	return hex.EncodeToString(sum[:])
}

type CanonRepo struct {
	db *sql.DB
}

// Append chains and stores a new entry. The previous and entry hashes are
// computed here so callers cannot write an unlinked row.
func (r *CanonRepo) Append(e *CanonEntry) error {
	prev, err := r.LatestHash(e.GameID)
	if err != nil {
		return err
	}
	e.PreviousHash = prev
	e.EntryHash = EntryHash(prev, e.SnapshotID)
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	changes, err := marshalJSON(e.Changes)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`INSERT INTO canon_entries
		(id, game_id, timestamp, description, changes, snapshot_id, previous_hash, entry_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.GameID, toMillis(e.Timestamp), e.Description, changes,
		e.SnapshotID, e.PreviousHash, e.EntryHash)
	if err != nil {
		return fmt.Errorf("appending canon entry %s: %w", e.ID, err)
	}
	return nil
}

// LatestHash returns the newest entry hash for a game, or the genesis
// sentinel when the chain is empty.
func (r *CanonRepo) LatestHash(gameID string) (string, error) {
	row := r.db.QueryRow(`SELECT entry_hash FROM canon_entries
		WHERE game_id = ? ORDER BY timestamp DESC, id DESC LIMIT 1`, gameID)

	var hash string
	err := row.Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return GenesisHash, nil
	}
	if err != nil {
		return "", fmt.Errorf("getting latest canon hash for game %s: %w", gameID, err)
	}
	return hash, nil
}

// Entries returns the game's chain in append order.
func (r *CanonRepo) Entries(gameID string) ([]CanonEntry, error) {
	rows, err := r.db.Query(`SELECT id, game_id, timestamp, description, changes, snapshot_id, previous_hash, entry_hash
		FROM canon_entries WHERE game_id = ? ORDER BY timestamp ASC, id ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("querying canon entries: %w", err)
	}
	defer rows.Close()

	var out []CanonEntry
	for rows.Next() {
		var e CanonEntry
		var ts int64
		var changes string
		err := rows.Scan(&e.ID, &e.GameID, &ts, &e.Description, &changes,
			&e.SnapshotID, &e.PreviousHash, &e.EntryHash)
		if err != nil {
			return nil, fmt.Errorf("scanning canon entry: %w", err)
		}
		e.Timestamp = fromMillis(ts)
		if err := unmarshalJSON(changes, &e.Changes); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating canon entries: %w", err)
	}
	return out, nil
}

// Verify walks the chain and reports the first broken link, if any.
func (r *CanonRepo) Verify(gameID string) error {
	entries, err := r.Entries(gameID)
	if err != nil {
		return err
	}

	prev := GenesisHash
	for _, e := range entries {
		if e.PreviousHash != prev {
			return fmt.Errorf("canon entry %s: previous hash mismatch", e.ID)
		}
		if e.EntryHash != EntryHash(e.PreviousHash, e.SnapshotID) {
			return fmt.Errorf("canon entry %s: entry hash mismatch", e.ID)
		}
		prev = e.EntryHash
	}
	return nil
}

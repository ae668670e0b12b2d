package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// bindField prepares a mutation value for a column bind. Scalars pass
// through; anything structured is stored as JSON text.
func bindField(v any) (any, error) {
	switch v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, []byte:
		return v, nil
	case json.RawMessage:
		return string(v.(json.RawMessage)), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshalling field value: %w", err)
		}
		return string(b), nil
	}
}

// updateField writes one whitelisted column. The whitelist is the guard
// against mutation fields reaching columns they were never meant for.
func updateField(db *sql.DB, table string, allowed map[string]bool, id, field string, value any) error {
	if !allowed[field] {
		return fmt.Errorf("field %q not updatable on %s", field, table)
	}

	bound, err := bindField(value)
	if err != nil {
		return err
	}

	res, err := db.Exec(fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?", table, field), bound, id)
	if err != nil {
		return fmt.Errorf("updating %s.%s: %w", table, field, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("updating %s.%s: no row %s", table, field, id)
	}
	return nil
}

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshalling json column: %w", err)
	}
	return string(b), nil
}

func unmarshalJSON(data string, out any) error {
	if data == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("unmarshalling json column: %w", err)
	}
	return nil
}

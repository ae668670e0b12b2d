package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Props holds open-ended extension data a record carries but the engine
// does not interpret. It persists as a JSON text column.
type Props map[string]json.RawMessage

// Set stores v under key after marshalling it to JSON.
func (p *Props) Set(k string, v any) error {
	if *p == nil {
		*p = Props{}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal prop %q: %w", k, err)
	}

	(*p)[k] = json.RawMessage(b)
	return nil
}

// Get unmarshals the value at key into out.
// Returns (found=false, nil) if not present.
func (p Props) Get(key string, out any) (bool, error) {
	if p == nil {
		return false, nil
	}

	raw, ok := p[key]
	if !ok || len(raw) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("unmarshal prop %q: %w", key, err)
	}
	return true, nil
}

// Delete removes the key, if present.
func (p Props) Delete(key string) {
	if p == nil {
		return
	}
	delete(p, key)
}

func (p Props) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal props: %w", err)
	}
	return string(b), nil
}

func (p *Props) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("scanning props: unsupported type %T", src)
	}

	if len(b) == 0 {
		*p = nil
		return nil
	}
	return json.Unmarshal(b, p)
}

package content

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// LootEntry is one independently-rolled drop.
type LootEntry struct {
	Item     SmartIdentifier[*ItemSpec] `json:"item"`
	Chance   float64                    `json:"chance"`
	Quantity int                        `json:"quantity,omitempty"`
}

// LootTableSpec configures what a defeated enemy drops: each entry rolls
// independently against its chance, and gold is drawn uniformly from the
// configured range.
type LootTableSpec struct {
	Entries []LootEntry `json:"entries,omitempty"`
	GoldMin int         `json:"gold_min"`
	GoldMax int         `json:"gold_max"`
}

func (l *LootTableSpec) Validate() error {
	el := errors.NewErrorList()

	for i := range l.Entries {
		e := &l.Entries[i]
		el.Add(e.Item.Validate())
		if e.Chance < 0 || e.Chance > 1 {
			el.Add(fmt.Errorf("entry %d: chance must be within [0, 1]", i))
		}
		if e.Quantity < 0 {
			el.Add(fmt.Errorf("entry %d: quantity must not be negative", i))
		}
	}

	if l.GoldMin < 0 {
		el.Add(fmt.Errorf("gold_min must not be negative"))
	}
	if l.GoldMax < l.GoldMin {
		el.Add(fmt.Errorf("gold_max must not be below gold_min"))
	}

	return el.Err()
}

// Resolve links every entry's item reference against the item store.
func (l *LootTableSpec) Resolve(items Storer[*ItemSpec]) error {
	el := errors.NewErrorList()
	for i := range l.Entries {
		el.Add(l.Entries[i].Item.Resolve(items))
	}
	return el.Err()
}

// Stores bundles the loaded content trees handed to the rule systems.
type Stores struct {
	Items Storer[*ItemSpec]
	Loot  Storer[*LootTableSpec]
}

// Load reads both content trees and resolves cross-references.
func Load(itemsPath, lootPath string) (*Stores, error) {
	items, err := NewFileStore[*ItemSpec](itemsPath)
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}

	loot, err := NewFileStore[*LootTableSpec](lootPath)
	if err != nil {
		return nil, fmt.Errorf("loading loot tables: %w", err)
	}

	el := errors.NewErrorList()
	for id, table := range loot.GetAll() {
		if err := table.Resolve(items); err != nil {
			el.Add(fmt.Errorf("loot table %s: %w", id, err))
		}
	}
	if err := el.Err(); err != nil {
		return nil, err
	}

	return &Stores{Items: items, Loot: loot}, nil
}

package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// ItemStack is one slot of an ordered inventory list.
type ItemStack struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Inventory is an ordered item list plus equipped slots, keyed by the
// owning character or entity.
type Inventory struct {
	OwnerID  string
	GameID   string
	Items    []ItemStack
	Equipped map[string]string
}

// Add stacks onto an existing slot or appends a new one.
func (inv *Inventory) Add(itemID string, qty int) {
	if qty <= 0 {
		return
	}
	for i := range inv.Items {
		if inv.Items[i].ItemID == itemID {
			inv.Items[i].Quantity += qty
			return
		}
	}
	inv.Items = append(inv.Items, ItemStack{ItemID: itemID, Quantity: qty})
}

// RemoveOne decrements a stack, dropping the slot when it empties.
// Returns false if the item is not held.
func (inv *Inventory) RemoveOne(itemID string) bool {
	for i := range inv.Items {
		if inv.Items[i].ItemID != itemID {
			continue
		}
		inv.Items[i].Quantity--
		if inv.Items[i].Quantity <= 0 {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
		}
		return true
	}
	return false
}

// RemoveAll drops the whole stack. Returns false if the item is not held.
func (inv *Inventory) RemoveAll(itemID string) bool {
	for i := range inv.Items {
		if inv.Items[i].ItemID == itemID {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Transform removes one of removeID and adds one addID in its place.
// Used by crafting upgrades; fails without side effects if removeID is
// not held.
func (inv *Inventory) Transform(removeID, addID string) bool {
	if !inv.RemoveOne(removeID) {
		return false
	}
	inv.Add(addID, 1)
	return true
}

// Count returns the held quantity of itemID.
func (inv *Inventory) Count(itemID string) int {
	for i := range inv.Items {
		if inv.Items[i].ItemID == itemID {
			return inv.Items[i].Quantity
		}
	}
	return 0
}

type InventoryRepo struct {
	db *sql.DB
}

// GetInventory returns the owner's inventory, creating an empty one on
// first access so callers never handle a missing row.
func (r *InventoryRepo) GetInventory(gameID, ownerID string) (*Inventory, error) {
	row := r.db.QueryRow(`SELECT owner_id, game_id, items, equipped FROM inventories WHERE owner_id = ?`, ownerID)

	var inv Inventory
	var items, equipped string
	err := row.Scan(&inv.OwnerID, &inv.GameID, &items, &equipped)
	if errors.Is(err, sql.ErrNoRows) {
		return &Inventory{OwnerID: ownerID, GameID: gameID, Equipped: map[string]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting inventory %s: %w", ownerID, err)
	}

	if err := unmarshalJSON(items, &inv.Items); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(equipped, &inv.Equipped); err != nil {
		return nil, err
	}
	if inv.Equipped == nil {
		inv.Equipped = map[string]string{}
	}
	return &inv, nil
}

func (r *InventoryRepo) UpdateInventory(inv *Inventory) error {
	items, err := marshalJSON(inv.Items)
	if err != nil {
		return err
	}
	equipped, err := marshalJSON(inv.Equipped)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`INSERT INTO inventories (owner_id, game_id, items, equipped)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
			items = excluded.items,
			equipped = excluded.equipped`,
		inv.OwnerID, inv.GameID, items, equipped)
	if err != nil {
		return fmt.Errorf("saving inventory %s: %w", inv.OwnerID, err)
	}
	return nil
}

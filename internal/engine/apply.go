package engine

import (
	"fmt"
	"log/slog"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/systems"
)

// applyMutations writes validated mutations in order, best effort. A
// failing mutation is logged and skipped; siblings still land. This is
// not a transaction, an accepted trade-off for a single-writer game.
func (e *Engine) applyMutations(muts []action.Mutation, gctx *systems.GameContext) {
	for _, m := range muts {
		if err := e.applyMutation(m, gctx); err != nil {
			slog.Error("applying mutation",
				"target_type", m.TargetType, "target_id", m.TargetID,
				"field", m.Field, "err", err)
		}
	}
}

func (e *Engine) applyMutation(m action.Mutation, gctx *systems.GameContext) error {
	switch m.TargetType {
	case action.TargetCharacter:
		return e.store.Characters.UpdateField(m.TargetID, m.Field, m.NewValue)
	case action.TargetEntity:
		return e.store.Entities.UpdateField(m.TargetID, m.Field, m.NewValue)
	case action.TargetLocation:
		return e.store.Locations.UpdateField(m.TargetID, m.Field, m.NewValue)
	case action.TargetGame:
		return e.store.Games.UpdateField(m.TargetID, m.Field, m.NewValue)
	case action.TargetInventory:
		return e.applyInventoryMutation(m, gctx)
	}
	return fmt.Errorf("unroutable target type %q", m.TargetType)
}

// applyInventoryMutation reloads the owner's inventory, applies one item
// operation and writes it back. Equip changes live on the same record.
func (e *Engine) applyInventoryMutation(m action.Mutation, gctx *systems.GameContext) error {
	inv, err := e.store.Inventories.GetInventory(gctx.Game.ID, m.TargetID)
	if err != nil {
		return fmt.Errorf("loading inventory %s: %w", m.TargetID, err)
	}

	switch m.Field {
	case action.FieldItemsAdd:
		change, ok := m.NewValue.(action.ItemChange)
		if !ok {
			return fmt.Errorf("items_add payload is %T", m.NewValue)
		}
		qty := change.Quantity
		if qty <= 0 {
			qty = 1
		}
		inv.Add(change.ItemID, qty)

	case action.FieldItemsRemoveOne:
		change, ok := m.NewValue.(action.ItemChange)
		if !ok {
			return fmt.Errorf("items_remove_one payload is %T", m.NewValue)
		}
		if !inv.RemoveOne(change.ItemID) {
			return fmt.Errorf("item %s not held", change.ItemID)
		}

	case action.FieldItemsRemove:
		change, ok := m.NewValue.(action.ItemChange)
		if !ok {
			return fmt.Errorf("items_remove payload is %T", m.NewValue)
		}
		if !inv.RemoveAll(change.ItemID) {
			return fmt.Errorf("item %s not held", change.ItemID)
		}

	case action.FieldItemsTransform:
		tr, ok := m.NewValue.(action.ItemTransform)
		if !ok {
			return fmt.Errorf("items_transform payload is %T", m.NewValue)
		}
		if !inv.Transform(tr.RemoveID, tr.AddID) {
			return fmt.Errorf("item %s not held", tr.RemoveID)
		}

	case action.FieldEquip:
		change, ok := m.NewValue.(action.EquipChange)
		if !ok {
			return fmt.Errorf("equip payload is %T", m.NewValue)
		}
		if inv.Equipped == nil {
			inv.Equipped = map[string]string{}
		}
		inv.Equipped[change.Slot] = change.ItemID

	case action.FieldUnequip:
		change, ok := m.NewValue.(action.EquipChange)
		if !ok {
			return fmt.Errorf("unequip payload is %T", m.NewValue)
		}
		delete(inv.Equipped, change.Slot)

	default:
		return fmt.Errorf("unknown inventory operation %q", m.Field)
	}

	return e.store.Inventories.UpdateInventory(inv)
}

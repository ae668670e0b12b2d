// Package inventory resolves item actions: using consumables, equipping
// and unequipping gear. It also backs the combat system's item delegation
// so a potion drunk mid-fight runs through the same rules.
package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/content"
	"github.com/pixil98/go-rpg/internal/dice"
	"github.com/pixil98/go-rpg/internal/systems"
)

var titler = cases.Title(language.English)

type System struct {
	roller dice.Roller
	items  content.Storer[*content.ItemSpec]
}

func NewSystem(roller dice.Roller, items content.Storer[*content.ItemSpec]) *System {
	return &System{roller: roller, items: items}
}

func (s *System) ID() string { return "inventory" }

func (s *System) CanHandle(a *action.Action) bool {
	switch a.Type {
	case action.TypeUseItem, action.TypeEquip, action.TypeUnequip:
		return true
	}
	return false
}

func (s *System) AvailableActions(ctx *systems.GameContext) []systems.ActionDescriptor {
	if ctx.Inventory == nil || len(ctx.Inventory.Items) == 0 {
		return nil
	}
	return []systems.ActionDescriptor{
		{Type: action.TypeUseItem, Description: "use an item from your pack"},
		{Type: action.TypeEquip, Description: "equip a weapon or armor"},
		{Type: action.TypeUnequip, Description: "remove equipped gear"},
	}
}

func (s *System) Resolve(a *action.Action, ctx *systems.GameContext) (*action.Result, error) {
	switch a.Type {
	case action.TypeUseItem:
		return s.useItem(a, ctx)
	case action.TypeEquip:
		return s.equip(a, ctx)
	case action.TypeUnequip:
		return s.unequip(a, ctx)
	}
	return nil, fmt.Errorf("inventory cannot resolve %q", a.Type)
}

// UseInCombat satisfies the combat system's item delegation.
func (s *System) UseInCombat(a *action.Action, ctx *systems.GameContext) (*action.Result, error) {
	return s.useItem(a, ctx)
}

func (s *System) useItem(a *action.Action, ctx *systems.GameContext) (*action.Result, error) {
	itemID, item, res := s.lookup(a, ctx)
	if res != nil {
		return res, nil
	}

	res = &action.Result{ActionID: a.ID, Success: true}

	switch item.Kind {
	case content.ItemConsumable:
		healed := 0
		if item.HealDice != "" {
			roll, err := s.roller.Roll(item.HealDice)
			if err == nil {
				healed = roll.Total
				res.DiceRolls = append(res.DiceRolls, action.DiceRoll{
					Expression: item.HealDice,
					Rolls:      roll.Rolls,
					Total:      roll.Total,
					Purpose:    "healing",
				})
			}
		}

		if healed > 0 {
			ch := ctx.Character
			newHP := ch.HPCurrent + healed
			if newHP > ch.HPMax {
				newHP = ch.HPMax
			}
			res.Mutations = append(res.Mutations, action.Mutation{
				TargetType: action.TargetCharacter,
				TargetID:   ch.ID,
				Field:      "hp_current",
				OldValue:   ch.HPCurrent,
				NewValue:   newHP,
			})
			res.Outcome = fmt.Sprintf("You use the %s and recover %d hit points.", item.Name, newHP-ch.HPCurrent)
		} else {
			res.Outcome = fmt.Sprintf("You use the %s.", item.Name)
		}

		res.Mutations = append(res.Mutations, action.Mutation{
			TargetType: action.TargetInventory,
			TargetID:   ctx.Character.ID,
			Field:      action.FieldItemsRemoveOne,
			NewValue:   action.ItemChange{ItemID: itemID, Quantity: 1},
		})
	default:
		res.Outcome = fmt.Sprintf("%s is not something you can use like that.", titler.String(item.Name))
		res.Success = false
		return res, nil
	}

	ev := s.event(ctx, action.EventItemUse, fmt.Sprintf("Used %s.", item.Name))
	ev.Details = map[string]any{"item_id": itemID}
	res.Events = append(res.Events, ev)
	return res, nil
}

func (s *System) equip(a *action.Action, ctx *systems.GameContext) (*action.Result, error) {
	itemID, item, res := s.lookup(a, ctx)
	if res != nil {
		return res, nil
	}

	var slot string
	switch item.Kind {
	case content.ItemWeapon:
		slot = "weapon"
	case content.ItemArmor:
		slot = item.Slot
	default:
		return &action.Result{ActionID: a.ID, Success: false,
			Outcome: fmt.Sprintf("You can't wear or wield the %s.", item.Name)}, nil
	}

	res = &action.Result{
		ActionID: a.ID,
		Success:  true,
		Outcome:  fmt.Sprintf("You equip the %s.", item.Name),
		Mutations: []action.Mutation{{
			TargetType: action.TargetInventory,
			TargetID:   ctx.Character.ID,
			Field:      action.FieldEquip,
			OldValue:   ctx.Inventory.Equipped[slot],
			NewValue:   action.EquipChange{Slot: slot, ItemID: itemID},
		}},
	}

	if item.Kind == content.ItemArmor && item.ACBonus != 0 {
		res.Mutations = append(res.Mutations, action.Mutation{
			TargetType: action.TargetCharacter,
			TargetID:   ctx.Character.ID,
			Field:      "ac",
			OldValue:   ctx.Character.AC,
			NewValue:   ctx.Character.AC + item.ACBonus,
		})
	}

	res.Events = append(res.Events, s.event(ctx, action.EventEquip, fmt.Sprintf("Equipped %s.", item.Name)))
	return res, nil
}

func (s *System) unequip(a *action.Action, ctx *systems.GameContext) (*action.Result, error) {
	slot := a.Param("slot", "weapon")
	itemID := ctx.Inventory.Equipped[slot]
	if itemID == "" {
		return &action.Result{ActionID: a.ID, Success: false,
			Outcome: "You have nothing equipped there."}, nil
	}

	res := &action.Result{
		ActionID: a.ID,
		Success:  true,
		Outcome:  "You stow your gear.",
		Mutations: []action.Mutation{{
			TargetType: action.TargetInventory,
			TargetID:   ctx.Character.ID,
			Field:      action.FieldUnequip,
			OldValue:   itemID,
			NewValue:   action.EquipChange{Slot: slot},
		}},
	}

	if item := s.items.Get(itemID); item != nil {
		res.Outcome = fmt.Sprintf("You remove the %s.", item.Name)
		if item.Kind == content.ItemArmor && item.ACBonus != 0 {
			res.Mutations = append(res.Mutations, action.Mutation{
				TargetType: action.TargetCharacter,
				TargetID:   ctx.Character.ID,
				Field:      "ac",
				OldValue:   ctx.Character.AC,
				NewValue:   ctx.Character.AC - item.ACBonus,
			})
		}
	}

	res.Events = append(res.Events, s.event(ctx, action.EventUnequip, "Removed equipped gear."))
	return res, nil
}

// lookup finds the acted-on item in the inventory and the content store.
// A non-nil result is the failure to return as-is.
func (s *System) lookup(a *action.Action, ctx *systems.GameContext) (string, *content.ItemSpec, *action.Result) {
	itemID := a.TargetID
	if itemID == "" {
		itemID = a.Param("item", "")
	}
	if itemID == "" {
		return "", nil, &action.Result{ActionID: a.ID, Success: false,
			Outcome: "Which item did you mean?"}
	}

	if ctx.Inventory == nil || ctx.Inventory.Count(itemID) == 0 {
		return "", nil, &action.Result{ActionID: a.ID, Success: false,
			Outcome: "You don't have that."}
	}

	item := s.items.Get(itemID)
	if item == nil {
		return "", nil, &action.Result{ActionID: a.ID, Success: false,
			Outcome: "You turn it over in your hands, unsure what it even is."}
	}
	return itemID, item, nil
}

func (s *System) event(ctx *systems.GameContext, typ action.EventType, desc string) action.Event {
	locID := ""
	if ctx.Location != nil {
		locID = ctx.Location.ID
	}
	return action.Event{
		ID:          uuid.NewString(),
		GameID:      ctx.Game.ID,
		Type:        typ,
		TurnNumber:  ctx.Game.TurnNumber,
		Timestamp:   time.Now(),
		ActorID:     ctx.Character.ID,
		LocationID:  locID,
		Description: desc,
		Canonical:   true,
	}
}

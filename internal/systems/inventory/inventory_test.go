package inventory

import (
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/content"
	"github.com/pixil98/go-rpg/internal/dice"
	"github.com/pixil98/go-rpg/internal/storage"
	"github.com/pixil98/go-rpg/internal/systems"
)

type mockItems map[string]*content.ItemSpec

func (m mockItems) Save(string, *content.ItemSpec) error { return nil }
func (m mockItems) Get(id string) *content.ItemSpec      { return m[id] }
func (m mockItems) GetAll() map[string]*content.ItemSpec { return m }

func testItems() mockItems {
	return mockItems{
		"potion": {Name: "Healing Potion", Kind: content.ItemConsumable, HealDice: "2d4"},
		"sword":  {Name: "Shortsword", Kind: content.ItemWeapon, DamageDice: "1d6"},
		"shield": {Name: "Shield", Kind: content.ItemArmor, Slot: "offhand", ACBonus: 2},
		"rock":   {Name: "Rock", Kind: content.ItemMisc},
	}
}

func testContext() *systems.GameContext {
	inv := &storage.Inventory{OwnerID: "player", GameID: "g1", Equipped: map[string]string{}}
	inv.Add("potion", 2)
	inv.Add("sword", 1)
	inv.Add("shield", 1)
	inv.Add("rock", 1)

	return &systems.GameContext{
		Game: &storage.Game{ID: "g1", TurnNumber: 1},
		Character: &storage.Character{ID: "player", GameID: "g1", Name: "Aldric",
			Class: "fighter", HPCurrent: 4, HPMax: 12, AC: 12, Alive: true},
		Location:  &storage.Location{ID: "loc1", GameID: "g1", Name: "Camp"},
		Inventory: inv,
	}
}

func TestUsePotionHealsAndConsumes(t *testing.T) {
	s := NewSystem(&dice.Stub{Faces: []int{3, 2}}, testItems())
	ctx := testContext()

	a := action.New(action.TypeUseItem, "player")
	a.TargetID = "potion"

	res, err := s.Resolve(&a, ctx)
	if err != nil {
		t.Fatalf("resolving use: %v", err)
	}

	testutil.AssertEqual(t, "success", res.Success, true)

	var hp, removed bool
	for _, m := range res.Mutations {
		switch m.Field {
		case "hp_current":
			hp = true
			testutil.AssertEqual(t, "healed to", m.NewValue.(int), 9)
		case action.FieldItemsRemoveOne:
			removed = true
			testutil.AssertEqual(t, "consumed item", m.NewValue.(action.ItemChange).ItemID, "potion")
		}
	}
	if !hp || !removed {
		t.Errorf("expected heal and consume mutations, got %v", res.Mutations)
	}
}

func TestHealClampsAtMax(t *testing.T) {
	s := NewSystem(&dice.Stub{Faces: []int{4, 4}}, testItems())
	ctx := testContext()
	ctx.Character.HPCurrent = 11

	a := action.New(action.TypeUseItem, "player")
	a.TargetID = "potion"

	res, err := s.Resolve(&a, ctx)
	if err != nil {
		t.Fatalf("resolving use: %v", err)
	}

	for _, m := range res.Mutations {
		if m.Field == "hp_current" {
			testutil.AssertEqual(t, "clamped heal", m.NewValue.(int), 12)
		}
	}
}

func TestUseMissingItemFails(t *testing.T) {
	s := NewSystem(&dice.Stub{}, testItems())

	a := action.New(action.TypeUseItem, "player")
	a.TargetID = "wand"

	res, err := s.Resolve(&a, testContext())
	if err != nil {
		t.Fatalf("resolving use: %v", err)
	}
	testutil.AssertEqual(t, "success", res.Success, false)
}

func TestUseMiscItemFails(t *testing.T) {
	s := NewSystem(&dice.Stub{}, testItems())

	a := action.New(action.TypeUseItem, "player")
	a.TargetID = "rock"

	res, err := s.Resolve(&a, testContext())
	if err != nil {
		t.Fatalf("resolving use: %v", err)
	}
	testutil.AssertEqual(t, "success", res.Success, false)
}

func TestEquipArmorRaisesAC(t *testing.T) {
	s := NewSystem(&dice.Stub{}, testItems())

	a := action.New(action.TypeEquip, "player")
	a.TargetID = "shield"

	res, err := s.Resolve(&a, testContext())
	if err != nil {
		t.Fatalf("resolving equip: %v", err)
	}

	testutil.AssertEqual(t, "success", res.Success, true)

	var equip, ac bool
	for _, m := range res.Mutations {
		switch m.Field {
		case action.FieldEquip:
			equip = true
			change := m.NewValue.(action.EquipChange)
			testutil.AssertEqual(t, "slot", change.Slot, "offhand")
			testutil.AssertEqual(t, "item", change.ItemID, "shield")
		case "ac":
			ac = true
			testutil.AssertEqual(t, "new ac", m.NewValue.(int), 14)
		}
	}
	if !equip || !ac {
		t.Errorf("expected equip and ac mutations, got %v", res.Mutations)
	}
}

func TestUnequipEmptySlotFails(t *testing.T) {
	s := NewSystem(&dice.Stub{}, testItems())

	a := action.New(action.TypeUnequip, "player")
	res, err := s.Resolve(&a, testContext())
	if err != nil {
		t.Fatalf("resolving unequip: %v", err)
	}
	testutil.AssertEqual(t, "success", res.Success, false)
}

package content

import (
	"fmt"
	"regexp"

	"github.com/pixil98/go-errors"
)

// Item kinds.
const (
	ItemWeapon     = "weapon"
	ItemArmor      = "armor"
	ItemConsumable = "consumable"
	ItemMisc       = "misc"
)

var diceExprPattern = regexp.MustCompile(`^\d+[dD]\d+$`)

// ItemSpec is a static item definition loaded from the content tree.
// Inventories reference items by id only; quantities live on the owner.
type ItemSpec struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`

	// Weapon fields.
	DamageDice  string `json:"damage_dice,omitempty"`
	DamageBonus int    `json:"damage_bonus,omitempty"`

	// Armor fields.
	Slot    string `json:"slot,omitempty"`
	ACBonus int    `json:"ac_bonus,omitempty"`

	// Consumable fields.
	HealDice string `json:"heal_dice,omitempty"`

	Value int `json:"value,omitempty"`
}

func (i *ItemSpec) Validate() error {
	el := errors.NewErrorList()

	if i.Name == "" {
		el.Add(fmt.Errorf("name must be set"))
	}

	switch i.Kind {
	case ItemWeapon:
		if !diceExprPattern.MatchString(i.DamageDice) {
			el.Add(fmt.Errorf("weapon damage dice %q invalid", i.DamageDice))
		}
	case ItemArmor:
		if i.Slot == "" {
			el.Add(fmt.Errorf("armor slot must be set"))
		}
	case ItemConsumable:
		if i.HealDice != "" && !diceExprPattern.MatchString(i.HealDice) {
			el.Add(fmt.Errorf("heal dice %q invalid", i.HealDice))
		}
	case ItemMisc:
	default:
		el.Add(fmt.Errorf("unknown item kind %q", i.Kind))
	}

	if i.Value < 0 {
		el.Add(fmt.Errorf("value must not be negative"))
	}

	return el.Err()
}

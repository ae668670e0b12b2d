package mechanics

import "github.com/pixil98/go-rpg/internal/dice"

// xpThresholds[level] is the total XP required to reach that level.
var xpThresholds = map[int]int{
	1: 0, 2: 300, 3: 900, 4: 2700, 5: 6500,
	6: 14000, 7: 23000, 8: 34000, 9: 48000, 10: 64000,
	11: 85000, 12: 100000, 13: 120000, 14: 140000, 15: 165000,
	16: 195000, 17: 225000, 18: 265000, 19: 305000, 20: 355000,
}

var hitDice = map[string]string{
	"fighter": "1d10",
	"wizard":  "1d6",
	"rogue":   "1d8",
	"cleric":  "1d8",
}

// XPForLevel returns the total XP required to reach level.
func XPForLevel(level int) int {
	return xpThresholds[level]
}

// ProficiencyBonus for a given level, clamped to [1, 20].
func ProficiencyBonus(level int) int {
	if level < 1 {
		level = 1
	}
	if level > 20 {
		level = 20
	}
	return 2 + (level-1)/4
}

// CanLevelUp reports whether currentXP crosses the next level threshold.
func CanLevelUp(currentLevel, currentXP int) bool {
	if currentLevel >= 20 {
		return false
	}
	return currentXP >= XPForLevel(currentLevel+1)
}

// RollHitPoints rolls the class hit die plus CON modifier for a level-up,
// minimum 1.
func RollHitPoints(r dice.Roller, class string, conModifier int) int {
	die, ok := hitDice[class]
	if !ok {
		die = "1d8"
	}
	res, _ := r.Roll(die)
	gained := res.Total + conModifier
	if gained < 1 {
		gained = 1
	}
	return gained
}

// SpellSlots returns max spell slots by slot level for a caster class at
// the given character level. Non-casters return nil.
func SpellSlots(class string, level int) map[int]int {
	switch class {
	case "wizard", "cleric":
	default:
		return nil
	}

	// Full-caster progression, slot levels 1-5.
	slots := map[int]int{}
	switch {
	case level >= 9:
		slots[1], slots[2], slots[3], slots[4], slots[5] = 4, 3, 3, 3, 1
	case level >= 7:
		slots[1], slots[2], slots[3], slots[4] = 4, 3, 3, 1
	case level >= 5:
		slots[1], slots[2], slots[3] = 4, 3, 2
	case level >= 3:
		slots[1], slots[2] = 4, 2
	case level >= 1:
		slots[1] = 2
	}
	return slots
}

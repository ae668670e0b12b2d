package mechanics

import "github.com/pixil98/go-rpg/internal/dice"

// skillAbility maps each skill to the ability score behind it.
var skillAbility = map[string]string{
	"acrobatics":      Dexterity,
	"animal_handling": Wisdom,
	"arcana":          Intelligence,
	"athletics":       Strength,
	"deception":       Charisma,
	"history":         Intelligence,
	"insight":         Wisdom,
	"intimidation":    Charisma,
	"investigation":   Intelligence,
	"medicine":        Wisdom,
	"nature":          Intelligence,
	"perception":      Wisdom,
	"performance":     Charisma,
	"persuasion":      Charisma,
	"religion":        Intelligence,
	"sleight_of_hand": Dexterity,
	"stealth":         Dexterity,
	"survival":        Wisdom,
}

// SkillAbility returns the ability a skill keys off, defaulting to
// strength for unknown skills.
func SkillAbility(skill string) string {
	if a, ok := skillAbility[skill]; ok {
		return a
	}
	return Strength
}

// SkillCheck rolls 1d20 + ability modifier (+ proficiency when
// proficient) against a DC. Returns success and the roll.
func SkillCheck(r dice.Roller, abilityScore, proficiencyBonus int, proficient bool, dc int) (bool, dice.Result) {
	mod := Modifier(abilityScore)
	if proficient {
		mod += proficiencyBonus
	}
	res := r.D20(mod)
	return res.Total >= dc, res
}

package mechanics

// Ability names as stored on character and entity records.
const (
	Strength     = "strength"
	Dexterity    = "dexterity"
	Constitution = "constitution"
	Intelligence = "intelligence"
	Wisdom       = "wisdom"
	Charisma     = "charisma"
)

// AbilityScores maps ability name to score. Missing abilities read as 10.
type AbilityScores map[string]int

// Score returns the score for an ability, defaulting to 10.
func (s AbilityScores) Score(ability string) int {
	if v, ok := s[ability]; ok {
		return v
	}
	return 10
}

// Modifier converts an ability score to its modifier: (score-10)/2,
// rounded down (floor division, so 8 -> -1).
func Modifier(score int) int {
	d := score - 10
	if d < 0 {
		// Go integer division truncates toward zero; ability modifiers
		// round down.
		return -((-d + 1) / 2)
	}
	return d / 2
}

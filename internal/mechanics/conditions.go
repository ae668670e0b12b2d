package mechanics

// conditionEffects describes the mechanical weight of each status
// condition this core reads. Conditions not listed here are carried as
// opaque strings and have no mechanical effect.
type conditionEffects struct {
	attackAdvantage    bool
	attackDisadvantage bool
	grantsAdvantage    bool // attackers against this creature get advantage
	cannotAct          bool
}

var conditionTable = map[string]conditionEffects{
	"blinded":       {attackDisadvantage: true, grantsAdvantage: true},
	"frightened":    {attackDisadvantage: true},
	"invisible":     {attackAdvantage: true},
	"paralyzed":     {cannotAct: true, grantsAdvantage: true},
	"petrified":     {cannotAct: true, grantsAdvantage: true},
	"poisoned":      {attackDisadvantage: true},
	"prone":         {attackDisadvantage: true},
	"restrained":    {attackDisadvantage: true, grantsAdvantage: true},
	"stunned":       {cannotAct: true, grantsAdvantage: true},
	"unconscious":   {cannotAct: true, grantsAdvantage: true},
	"incapacitated": {cannotAct: true},
	// Dodging is ephemeral combat state, cleared when the dodger is next
	// attacked. Attackers roll with disadvantage.
	"dodging": {},
}

// HasAttackAdvantage reports whether any condition grants the bearer
// advantage on attack rolls.
func HasAttackAdvantage(conditions []string) bool {
	for _, c := range conditions {
		if conditionTable[c].attackAdvantage {
			return true
		}
	}
	return false
}

// HasAttackDisadvantage reports whether any condition imposes
// disadvantage on the bearer's attack rolls.
func HasAttackDisadvantage(conditions []string) bool {
	for _, c := range conditions {
		if conditionTable[c].attackDisadvantage {
			return true
		}
	}
	return false
}

// GrantsAdvantageToAttackers reports whether attackers against a creature
// with these conditions roll with advantage.
func GrantsAdvantageToAttackers(conditions []string) bool {
	for _, c := range conditions {
		if conditionTable[c].grantsAdvantage {
			return true
		}
	}
	return false
}

// CanTakeActions reports whether a creature with these conditions may act
// at all. Incapacitating conditions fail pre-dispatch validation.
func CanTakeActions(conditions []string) bool {
	for _, c := range conditions {
		if conditionTable[c].cannotAct {
			return false
		}
	}
	return true
}

// HasCondition reports whether the named condition is present.
func HasCondition(conditions []string, name string) bool {
	for _, c := range conditions {
		if c == name {
			return true
		}
	}
	return false
}

// WithoutCondition returns conditions with every instance of name removed.
func WithoutCondition(conditions []string, name string) []string {
	out := make([]string, 0, len(conditions))
	for _, c := range conditions {
		if c != name {
			out = append(out, c)
		}
	}
	return out
}

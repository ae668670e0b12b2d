package mechanics

// Survival needs are integers 0-100; 100 is fully satisfied. Decay runs
// once per non-combat turn.
const (
	hungerDecayPerTurn = 1
	thirstDecayPerTurn = 2
)

var climateWarmthDecay = map[string]int{
	"freezing": 3,
	"cold":     2,
	"cool":     1,
}

// Needs bundles the four survival gauges.
type Needs struct {
	Hunger int
	Thirst int
	Warmth int
	Morale int
}

// NeedStatus classifies one need into a severity tier.
type NeedStatus struct {
	Name    string
	Value   int
	Label   string
	Penalty int
}

var needLabels = map[string][4]string{
	"hunger": {"starving", "very hungry", "hungry", "satisfied"},
	"thirst": {"parched", "dehydrated", "thirsty", "hydrated"},
	"warmth": {"freezing", "cold", "chilly", "warm"},
	"morale": {"broken", "despondent", "low spirits", "good spirits"},
}

// TickNeeds decays needs by one turn. High constitution slows hunger and
// thirst slightly; cold climates drain warmth.
func TickNeeds(n Needs, climate string, conModifier int) Needs {
	reduction := 0
	if conModifier >= 4 {
		reduction = 1
	}

	n.Hunger = clampNeed(n.Hunger - max(hungerDecayPerTurn-reduction, 0))
	n.Thirst = clampNeed(n.Thirst - max(thirstDecayPerTurn-reduction, 0))
	n.Warmth = clampNeed(n.Warmth - climateWarmthDecay[climate])
	n.Morale = clampNeed(n.Morale)
	return n
}

// ClassifyNeed grades a need value into a tier with its check penalty.
func ClassifyNeed(name string, value int) NeedStatus {
	labels, ok := needLabels[name]
	if !ok {
		labels = [4]string{"critical", "low", "moderate", "good"}
	}
	switch {
	case value < 25:
		return NeedStatus{name, value, labels[0], -5}
	case value < 50:
		return NeedStatus{name, value, labels[1], -2}
	case value < 75:
		return NeedStatus{name, value, labels[2], -1}
	default:
		return NeedStatus{name, value, labels[3], 0}
	}
}

// NeedsPenalty is the worst single penalty across all needs; penalties do
// not stack.
func NeedsPenalty(n Needs) int {
	worst := 0
	for name, v := range map[string]int{
		"hunger": n.Hunger, "thirst": n.Thirst, "warmth": n.Warmth, "morale": n.Morale,
	} {
		if p := ClassifyNeed(name, v).Penalty; p < worst {
			worst = p
		}
	}
	return worst
}

func clampNeed(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

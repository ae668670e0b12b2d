package mechanics

import (
	"fmt"
	"sort"

	"github.com/pixil98/go-rpg/internal/dice"
)

// AttackOutcome is the result of a single attack roll.
type AttackOutcome struct {
	Hit      bool
	Critical bool
	Roll     dice.Result
	// Natural is the raw d20 face before modifiers.
	Natural int
}

// AttackRoll resolves one attack: 1d20 + bonus vs AC. Under advantage the
// higher of two d20s is kept, under disadvantage the lower; both at once
// cancel out. A natural 20 always hits and is critical, a natural 1
// always misses.
func AttackRoll(r dice.Roller, attackBonus, targetAC int, advantage, disadvantage bool) AttackOutcome {
	var res dice.Result
	switch {
	case advantage && !disadvantage:
		res, _, _, _ = dice.WithAdvantage(r, "1d20")
	case disadvantage && !advantage:
		res, _, _, _ = dice.WithDisadvantage(r, "1d20")
	default:
		res, _ = r.Roll("1d20")
	}

	natural := res.Rolls[0]
	res.Modifier = attackBonus
	res.Total = natural + attackBonus

	out := AttackOutcome{Roll: res, Natural: natural}
	switch {
	case natural == 1:
		// always a miss
	case natural == 20:
		out.Hit = true
		out.Critical = true
	default:
		out.Hit = res.Total >= targetAC
	}
	return out
}

// DamageRoll rolls weapon damage. A critical doubles the dice count, not
// the modifier. The result never goes below zero.
func DamageRoll(r dice.Roller, damageDice string, modifier int, critical bool) dice.Result {
	expr := damageDice
	if critical {
		if count, sides, ok := splitDice(damageDice); ok {
			expr = fmt.Sprintf("%dd%d", count*2, sides)
		}
	}

	res, err := r.Roll(expr)
	if err != nil {
		res, _ = r.Roll("1d4")
	}
	res.Modifier = modifier
	total := modifier
	for _, v := range res.Rolls {
		total += v
	}
	if total < 0 {
		total = 0
	}
	res.Total = total
	return res
}

func splitDice(expr string) (count, sides int, ok bool) {
	if _, err := fmt.Sscanf(expr, "%dd%d", &count, &sides); err != nil {
		return 0, 0, false
	}
	return count, sides, count > 0 && sides > 0
}

// InitiativeRoll rolls 1d20 + DEX modifier.
func InitiativeRoll(r dice.Roller, dexModifier int) dice.Result {
	return r.D20(dexModifier)
}

// InitiativeEntry pairs a combatant with its rolled initiative total.
type InitiativeEntry struct {
	EntityID   string
	Initiative int
}

// TurnOrder sorts entries by initiative descending. Ties preserve the
// order combatants were registered in, keeping ordering reproducible for
// a fixed die stub.
func TurnOrder(entries []InitiativeEntry) []string {
	sorted := append([]InitiativeEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Initiative > sorted[j].Initiative
	})
	order := make([]string, len(sorted))
	for i, e := range sorted {
		order[i] = e.EntityID
	}
	return order
}

// FleeDC scales the escape difficulty with the number of active enemies:
// 10 + 2 per enemy, minimum one enemy.
func FleeDC(enemyCount int) int {
	if enemyCount < 1 {
		enemyCount = 1
	}
	return 10 + 2*enemyCount
}

// ThreatLevel grades an enemy against the player by level difference.
func ThreatLevel(playerLevel, enemyLevel int) string {
	switch diff := enemyLevel - playerLevel; {
	case diff <= -5:
		return "trivial"
	case diff <= -2:
		return "easy"
	case diff <= 1:
		return "normal"
	case diff <= 3:
		return "hard"
	case diff <= 5:
		return "deadly"
	default:
		return "overwhelming"
	}
}

// NPCAction is what a non-player combatant decided to do this round.
type NPCAction struct {
	Action   string // "attack", "flee", "dodge"
	TargetID string
}

// NPCTarget is a candidate target as seen by the NPC decider.
type NPCTarget struct {
	EntityID  string
	HPCurrent int
}

// ChooseNPCAction is the autonomous combatant decider: flee below 25% of
// max HP, otherwise attack the weakest living target, dodge when no
// target remains.
func ChooseNPCAction(hpCurrent, hpMax int, targets []NPCTarget) NPCAction {
	if hpMax > 0 && hpCurrent*4 < hpMax {
		return NPCAction{Action: "flee"}
	}

	var pick *NPCTarget
	for i := range targets {
		if targets[i].HPCurrent <= 0 {
			continue
		}
		if pick == nil || targets[i].HPCurrent < pick.HPCurrent {
			pick = &targets[i]
		}
	}
	if pick == nil {
		return NPCAction{Action: "dodge"}
	}
	return NPCAction{Action: "attack", TargetID: pick.EntityID}
}

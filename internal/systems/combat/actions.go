package combat

import (
	"fmt"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/content"
	"github.com/pixil98/go-rpg/internal/dice"
	"github.com/pixil98/go-rpg/internal/mechanics"
	"github.com/pixil98/go-rpg/internal/storage"
	"github.com/pixil98/go-rpg/internal/systems"
)

// playerAttack resolves the player's swing against a chosen or default
// enemy.
func (s *System) playerAttack(a *action.Action, ctx *systems.GameContext, cs *storage.CombatState, res *action.Result) {
	player := cs.Find(ctx.Character.ID)
	target := s.pickTarget(a, cs)
	if target == nil {
		res.Success = false
		res.Outcome = "There is no enemy left to strike."
		return
	}

	adv := mechanics.HasAttackAdvantage(player.Conditions) ||
		mechanics.GrantsAdvantageToAttackers(target.Conditions)
	dis := mechanics.HasAttackDisadvantage(player.Conditions) ||
		mechanics.HasCondition(player.Conditions, mechanics.WeakenedCondition) ||
		mechanics.HasCondition(target.Conditions, "dodging")

	outcome := mechanics.AttackRoll(s.roller, player.AttackBonus, target.AC, adv, dis)
	res.DiceRolls = append(res.DiceRolls, attackDiceRoll(outcome, adv, dis))

	if !outcome.Hit {
		res.Outcome = fmt.Sprintf("Your attack goes wide of %s.", target.Name)
		res.Events = append(res.Events, s.event(ctx, action.EventAttack, player.EntityID, target.EntityID,
			fmt.Sprintf("%s attacks %s and misses.", player.Name, target.Name)))
		return
	}

	dmg := mechanics.DamageRoll(s.roller, player.DamageDice, player.DamageBonus, outcome.Critical)
	res.DiceRolls = append(res.DiceRolls, damageDiceRoll(player.DamageDice, dmg))

	if outcome.Critical {
		res.Outcome = fmt.Sprintf("A perfect strike! You crit %s for %d damage.", target.Name, dmg.Total)
	} else {
		res.Outcome = fmt.Sprintf("You hit %s for %d damage.", target.Name, dmg.Total)
	}

	s.applyDamage(ctx, cs, player, target, dmg.Total, outcome.Critical, res)
}

// pickTarget honors an explicit target id or name, else the first active
// enemy in initiative order.
func (s *System) pickTarget(a *action.Action, cs *storage.CombatState) *storage.Combatant {
	if a.TargetID != "" {
		if c := cs.Find(a.TargetID); c != nil && c.Type == storage.CombatantEnemy && c.Active {
			return c
		}
	}
	if name := a.Param("target", ""); name != "" {
		for i := range cs.Combatants {
			c := &cs.Combatants[i]
			if c.Type == storage.CombatantEnemy && c.Active && c.Name == name {
				return c
			}
		}
	}

	for _, id := range cs.TurnOrder {
		if c := cs.Find(id); c != nil && c.Type == storage.CombatantEnemy && c.Active {
			return c
		}
	}
	return nil
}

// playerFlee attempts escape: a DEX check against a DC scaling with the
// number of active enemies. Failure consumes the turn and the fight goes
// on.
func (s *System) playerFlee(a *action.Action, ctx *systems.GameContext, cs *storage.CombatState, res *action.Result) {
	enemies := cs.ActiveEnemies()
	if enemies == 0 {
		// Nothing to run from; treat as a harmless no-op.
		cs.Active = false
		res.Outcome = "You back away, but no one gives chase."
		return
	}

	dc := mechanics.FleeDC(enemies)
	ch := ctx.Character
	ok, roll := mechanics.SkillCheck(s.roller,
		ch.Abilities.Score(mechanics.Dexterity),
		mechanics.ProficiencyBonus(ch.Level),
		false, dc)

	res.DiceRolls = append(res.DiceRolls, action.DiceRoll{
		Expression: "1d20",
		Rolls:      roll.Rolls,
		Modifier:   roll.Modifier,
		Total:      roll.Total,
		Purpose:    "flee",
	})

	if ok {
		cs.Active = false
		res.Outcome = "You successfully flee from combat."
		ev := s.event(ctx, action.EventCombatFlee, ch.ID, "", "You escaped the fight.")
		ev.Details = map[string]any{"dc": dc, "roll": roll.Total}
		res.Events = append(res.Events, ev)
		return
	}

	res.Success = false
	res.Outcome = "You look for an opening to run, but your enemies cut you off."
	ev := s.event(ctx, action.EventCombatFleeFail, ch.ID, "", "Your escape attempt failed.")
	ev.Details = map[string]any{"dc": dc, "roll": roll.Total}
	res.Events = append(res.Events, ev)
}

// useItem hands the item semantics to the inventory system while combat
// keeps ownership of the turn.
func (s *System) useItem(a *action.Action, ctx *systems.GameContext, res *action.Result) {
	if s.delegate == nil {
		res.Success = false
		res.Outcome = "You fumble through your pack and find nothing useful."
		return
	}

	inner, err := s.delegate.UseInCombat(a, ctx)
	if err != nil {
		res.Success = false
		res.Outcome = "The item slips from your fingers in the chaos."
		return
	}

	res.Success = inner.Success
	res.Outcome = inner.Outcome
	res.DiceRolls = append(res.DiceRolls, inner.DiceRolls...)
	res.Mutations = append(res.Mutations, inner.Mutations...)
	res.Events = append(res.Events, inner.Events...)
}

// playerDamageDice reads the equipped weapon's damage, unarmed 1d4
// otherwise.
func (s *System) playerDamageDice(ctx *systems.GameContext) string {
	if ctx.Inventory == nil || s.items == nil {
		return "1d4"
	}
	weaponID := ctx.Inventory.Equipped["weapon"]
	if weaponID == "" {
		return "1d4"
	}
	item := s.items.Get(weaponID)
	if item == nil || item.Kind != content.ItemWeapon {
		return "1d4"
	}
	return item.DamageDice
}

func attackDiceRoll(outcome mechanics.AttackOutcome, adv, dis bool) action.DiceRoll {
	return action.DiceRoll{
		Expression:   "1d20",
		Rolls:        outcome.Roll.Rolls,
		Modifier:     outcome.Roll.Modifier,
		Total:        outcome.Roll.Total,
		Purpose:      "attack",
		Advantage:    adv && !dis,
		Disadvantage: dis && !adv,
	}
}

func damageDiceRoll(expression string, dmg dice.Result) action.DiceRoll {
	return action.DiceRoll{
		Expression: expression,
		Rolls:      dmg.Rolls,
		Modifier:   dmg.Modifier,
		Total:      dmg.Total,
		Purpose:    "damage",
	}
}

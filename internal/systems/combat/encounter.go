package combat

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/pixil98/go-rpg/internal/action"
	"github.com/pixil98/go-rpg/internal/mechanics"
	"github.com/pixil98/go-rpg/internal/storage"
	"github.com/pixil98/go-rpg/internal/systems"
)

// initiate rolls initiative for everyone present and opens the
// encounter. Returns nil when no enemy can be engaged.
func (s *System) initiate(a *action.Action, ctx *systems.GameContext) (*storage.CombatState, error) {
	enemies := s.pickEnemies(a, ctx)
	if len(enemies) == 0 {
		return nil, nil
	}

	cs := &storage.CombatState{
		ID:     uuid.NewString(),
		GameID: ctx.Game.ID,
		Active: true,
		Round:  1,
	}

	// Registration order is player, companions, then enemies. Initiative
	// ties fall back to this order.
	ch := ctx.Character
	playerInit := mechanics.InitiativeRoll(s.roller, mechanics.Modifier(ch.Abilities.Score(mechanics.Dexterity)))
	cs.Combatants = append(cs.Combatants, storage.Combatant{
		EntityID:    ch.ID,
		Name:        ch.Name,
		Type:        storage.CombatantPlayer,
		Initiative:  playerInit.Total,
		HPCurrent:   ch.HPCurrent,
		HPMax:       ch.HPMax,
		HPTemp:      ch.HPTemp,
		AC:          ch.AC,
		AttackBonus: ch.AttackBonus,
		DamageDice:  s.playerDamageDice(ctx),
		DamageBonus: mechanics.Modifier(ch.Abilities.Score(mechanics.Strength)),
		Active:      true,
		Conditions:  append([]string(nil), ch.Conditions...),
	})

	for _, comp := range ctx.Companions {
		if !comp.Alive {
			continue
		}
		init := mechanics.InitiativeRoll(s.roller, mechanics.Modifier(comp.Abilities.Score(mechanics.Dexterity)))
		cs.Combatants = append(cs.Combatants, combatantFromEntity(comp, storage.CombatantCompanion, init.Total))
	}

	for _, e := range enemies {
		init := mechanics.InitiativeRoll(s.roller, mechanics.Modifier(e.Abilities.Score(mechanics.Dexterity)))
		cs.Combatants = append(cs.Combatants, combatantFromEntity(e, storage.CombatantEnemy, init.Total))
	}

	entries := make([]mechanics.InitiativeEntry, len(cs.Combatants))
	for i, c := range cs.Combatants {
		entries[i] = mechanics.InitiativeEntry{EntityID: c.EntityID, Initiative: c.Initiative}
	}
	cs.TurnOrder = mechanics.TurnOrder(entries)

	return cs, nil
}

// pickEnemies gathers the hostile entities joining the encounter. An
// explicit target joins even if it was not hostile before; attacking it
// makes it so.
func (s *System) pickEnemies(a *action.Action, ctx *systems.GameContext) []*storage.Entity {
	var enemies []*storage.Entity
	for _, e := range ctx.Entities {
		if e.Alive && e.Hostile {
			enemies = append(enemies, e)
		}
	}

	if a.TargetID != "" {
		if target := ctx.EntityByID(a.TargetID); target != nil && target.Alive && !target.Hostile {
			target.Hostile = true
			enemies = append(enemies, target)
		}
	}
	return enemies
}

func combatantFromEntity(e *storage.Entity, typ string, initiative int) storage.Combatant {
	return storage.Combatant{
		EntityID:        e.ID,
		Name:            e.Name,
		Type:            typ,
		Initiative:      initiative,
		HPCurrent:       e.HPCurrent,
		HPMax:           e.HPMax,
		AC:              e.AC,
		AttackBonus:     e.AttackBonus,
		DamageDice:      e.DamageDice,
		DamageBonus:     e.DamageBonus,
		ChallengeRating: e.ChallengeRating,
		LootTableID:     e.LootTableID,
		Active:          true,
		Conditions:      append([]string(nil), e.Conditions...),
	}
}

// openingEvents announces the encounter and grades each enemy against
// the player.
func (s *System) openingEvents(ctx *systems.GameContext, cs *storage.CombatState, res *action.Result) {
	start := s.event(ctx, action.EventCombatStart, ctx.Character.ID, "", "Combat begins.")
	start.Details = map[string]any{"round": cs.Round, "combatants": len(cs.Combatants)}
	res.Events = append(res.Events, start)

	for i := range cs.Combatants {
		c := &cs.Combatants[i]
		if c.Type != storage.CombatantEnemy {
			continue
		}
		threat := mechanics.ThreatLevel(ctx.Character.Level, int(c.ChallengeRating))
		if threat == "hard" || threat == "deadly" || threat == "overwhelming" {
			ev := s.event(ctx, action.EventThreatWarning, c.EntityID, ctx.Character.ID,
				fmt.Sprintf("%s looks like a %s opponent.", c.Name, threat))
			ev.Details = map[string]any{"threat": threat}
			res.Events = append(res.Events, ev)
		}
	}
}

// npcTurns runs every non-player combatant once, in initiative order.
func (s *System) npcTurns(ctx *systems.GameContext, cs *storage.CombatState, res *action.Result) {
	for _, id := range cs.TurnOrder {
		if !cs.Active {
			return
		}

		c := cs.Find(id)
		if c == nil || c.Type == storage.CombatantPlayer || !c.Active || c.Fleeing {
			continue
		}
		if !mechanics.CanTakeActions(c.Conditions) {
			continue
		}
		c.Conditions = mechanics.WithoutCondition(c.Conditions, "dodging")

		decision := mechanics.ChooseNPCAction(c.HPCurrent, c.HPMax, s.targetsFor(c, cs))
		switch decision.Action {
		case "flee":
			s.npcFlee(ctx, cs, c, res)
		case "dodge":
			c.Conditions = append(c.Conditions, "dodging")
		case "attack":
			s.npcAttack(ctx, cs, c, cs.Find(decision.TargetID), res)
		}
	}
}

// targetsFor lists the opposing side still standing. Enemies press the
// weakest of the player and companions; companions do the same to
// enemies.
func (s *System) targetsFor(c *storage.Combatant, cs *storage.CombatState) []mechanics.NPCTarget {
	var out []mechanics.NPCTarget
	for i := range cs.Combatants {
		t := &cs.Combatants[i]
		if !t.Active || t.Fleeing {
			continue
		}
		opposing := (c.Type == storage.CombatantEnemy) != (t.Type == storage.CombatantEnemy)
		if opposing {
			out = append(out, mechanics.NPCTarget{EntityID: t.EntityID, HPCurrent: t.HPCurrent})
		}
	}
	return out
}

func (s *System) npcFlee(ctx *systems.GameContext, cs *storage.CombatState, c *storage.Combatant, res *action.Result) {
	c.Fleeing = true
	c.Active = false
	res.Events = append(res.Events, s.event(ctx, action.EventNPCFlee, c.EntityID, "",
		fmt.Sprintf("%s breaks and runs from the fight.", c.Name)))

	if c.Type == storage.CombatantEnemy && cs.ActiveEnemies() == 0 {
		// The last enemy ran; no loot or XP from cowards.
		cs.Active = false
		res.Events = append(res.Events, s.event(ctx, action.EventCombatEnd, ctx.Character.ID, "",
			"The last of your foes has fled. The fight is over."))
	}
}

// npcAttack resolves one autonomous attack. Damage mirrors into a
// mutation on the persistent record at the point of change.
func (s *System) npcAttack(ctx *systems.GameContext, cs *storage.CombatState, attacker, target *storage.Combatant, res *action.Result) {
	if target == nil {
		return
	}

	adv := mechanics.HasAttackAdvantage(attacker.Conditions) ||
		mechanics.GrantsAdvantageToAttackers(target.Conditions)
	dis := mechanics.HasAttackDisadvantage(attacker.Conditions) ||
		mechanics.HasCondition(target.Conditions, "dodging")

	outcome := mechanics.AttackRoll(s.roller, attacker.AttackBonus, target.AC, adv, dis)
	res.DiceRolls = append(res.DiceRolls, attackDiceRoll(outcome, adv, dis))

	if !outcome.Hit {
		res.Events = append(res.Events, s.event(ctx, action.EventAttack, attacker.EntityID, target.EntityID,
			fmt.Sprintf("%s attacks %s and misses.", attacker.Name, target.Name)))
		return
	}

	dmg := mechanics.DamageRoll(s.roller, attacker.DamageDice, attacker.DamageBonus, outcome.Critical)
	res.DiceRolls = append(res.DiceRolls, damageDiceRoll(attacker.DamageDice, dmg))

	s.applyDamage(ctx, cs, attacker, target, dmg.Total, outcome.Critical, res)
}

// applyDamage lowers the working HP copy and emits the matching
// mutation, then handles defeat of either side.
func (s *System) applyDamage(ctx *systems.GameContext, cs *storage.CombatState, attacker, target *storage.Combatant, amount int, critical bool, res *action.Result) {
	old := target.HPCurrent
	target.HPCurrent -= amount
	if target.HPCurrent < 0 {
		target.HPCurrent = 0
	}

	targetType := action.TargetEntity
	if target.Type == storage.CombatantPlayer {
		targetType = action.TargetCharacter
	}
	res.Mutations = append(res.Mutations, action.Mutation{
		TargetType: targetType,
		TargetID:   target.EntityID,
		Field:      "hp_current",
		OldValue:   old,
		NewValue:   target.HPCurrent,
	})

	desc := fmt.Sprintf("%s hits %s for %d damage.", attacker.Name, target.Name, amount)
	if critical {
		desc = fmt.Sprintf("%s lands a critical hit on %s for %d damage!", attacker.Name, target.Name, amount)
	}
	ev := s.event(ctx, action.EventAttack, attacker.EntityID, target.EntityID, desc)
	ev.Details = map[string]any{"damage": amount, "critical": critical, "hp_remaining": target.HPCurrent}
	res.Events = append(res.Events, ev)

	if target.HPCurrent > 0 {
		return
	}

	if target.Type == storage.CombatantPlayer {
		s.playerDefeat(ctx, cs, res)
		return
	}

	target.Active = false
	res.Mutations = append(res.Mutations, action.Mutation{
		TargetType: action.TargetEntity,
		TargetID:   target.EntityID,
		Field:      "alive",
		OldValue:   true,
		NewValue:   false,
	})
	res.Events = append(res.Events, s.event(ctx, action.EventDeath, attacker.EntityID, target.EntityID,
		fmt.Sprintf("%s falls.", target.Name)))

	if target.Type == storage.CombatantEnemy {
		res.XPGained += int(target.ChallengeRating * 100)
		if cs.ActiveEnemies() == 0 {
			s.victory(ctx, cs, res)
		}
	}
}

// victory closes the encounter and rolls loot: every table entry rolls
// independently against its chance, gold is uniform over the configured
// range.
func (s *System) victory(ctx *systems.GameContext, cs *storage.CombatState, res *action.Result) {
	cs.Active = false

	goldTotal := 0
	for i := range cs.Combatants {
		c := &cs.Combatants[i]
		if c.Type != storage.CombatantEnemy || c.Active || c.Fleeing || c.LootTableID == "" || s.loot == nil {
			continue
		}
		table := s.loot.Get(c.LootTableID)
		if table == nil {
			continue
		}

		for _, entry := range table.Entries {
			roll, err := s.roller.Roll("1d100")
			if err != nil || float64(roll.Total) > entry.Chance*100 {
				continue
			}
			qty := entry.Quantity
			if qty <= 0 {
				qty = 1
			}
			res.Mutations = append(res.Mutations, action.Mutation{
				TargetType: action.TargetInventory,
				TargetID:   ctx.Character.ID,
				Field:      action.FieldItemsAdd,
				NewValue:   action.ItemChange{ItemID: entry.Item.Key(), Quantity: qty},
			})
			res.Events = append(res.Events, s.event(ctx, action.EventItemPickup, ctx.Character.ID, "",
				fmt.Sprintf("You claim %s from the fallen.", entry.Item.Key())))
		}

		goldTotal += s.rollGold(table.GoldMin, table.GoldMax)
	}

	if goldTotal > 0 {
		res.Mutations = append(res.Mutations, action.Mutation{
			TargetType: action.TargetCharacter,
			TargetID:   ctx.Character.ID,
			Field:      "gold",
			OldValue:   ctx.Character.Gold,
			NewValue:   ctx.Character.Gold + goldTotal,
		})
	}

	ev := s.event(ctx, action.EventCombatEnd, ctx.Character.ID, "", "The fight is won.")
	ev.Details = map[string]any{"result": "victory", "gold": goldTotal, "xp": res.XPGained}
	res.Events = append(res.Events, ev)
}

func (s *System) rollGold(min, max int) int {
	if max <= min {
		return min
	}
	span := max - min + 1
	roll, err := s.roller.Roll(fmt.Sprintf("1d%d", span))
	if err != nil {
		return min
	}
	return min + roll.Total - 1
}

// playerDefeat applies the death penalty: a quarter of gold lost, HP
// revived to one, a five-turn weakened condition and relocation to the
// nearest safe, already-visited location.
func (s *System) playerDefeat(ctx *systems.GameContext, cs *storage.CombatState, res *action.Result) {
	cs.Active = false
	ch := ctx.Character

	penalty := mechanics.DeathGoldPenalty(ch.Gold)
	if penalty > 0 {
		res.Mutations = append(res.Mutations, action.Mutation{
			TargetType: action.TargetCharacter,
			TargetID:   ch.ID,
			Field:      "gold",
			OldValue:   ch.Gold,
			NewValue:   ch.Gold - penalty,
		})
	}

	res.Mutations = append(res.Mutations, action.Mutation{
		TargetType: action.TargetCharacter,
		TargetID:   ch.ID,
		Field:      "hp_current",
		OldValue:   0,
		NewValue:   1,
	})

	if !mechanics.HasCondition(ch.Conditions, mechanics.WeakenedCondition) {
		res.Mutations = append(res.Mutations, action.Mutation{
			TargetType: action.TargetCharacter,
			TargetID:   ch.ID,
			Field:      "conditions",
			OldValue:   ch.Conditions,
			NewValue:   append(append([]string(nil), ch.Conditions...), mechanics.WeakenedCondition),
		})
	}
	res.Mutations = append(res.Mutations, action.Mutation{
		TargetType: action.TargetCharacter,
		TargetID:   ch.ID,
		Field:      "weakened_turns",
		OldValue:   ch.WeakenedTurns,
		NewValue:   mechanics.WeakenedTurns,
	})

	if safe := s.safeLocation(ctx); safe != "" && safe != ch.LocationID {
		res.Mutations = append(res.Mutations, action.Mutation{
			TargetType: action.TargetCharacter,
			TargetID:   ch.ID,
			Field:      "location_id",
			OldValue:   ch.LocationID,
			NewValue:   safe,
		})
	}

	res.Success = false
	res.Outcome = "Darkness takes you. You wake later, battered and lighter of coin."
	res.Events = append(res.Events,
		s.event(ctx, action.EventPlayerDefeat, ch.ID, "", "You were defeated in battle."),
		s.event(ctx, action.EventCombatEnd, ch.ID, "", "The fight is lost."))
}

func (s *System) safeLocation(ctx *systems.GameContext) string {
	candidates := make([]mechanics.SafeLocationCandidate, 0, len(ctx.VisitedLocations))
	for _, l := range ctx.VisitedLocations {
		kind := l.Kind
		if l.Safe {
			kind = "settlement"
		}
		candidates = append(candidates, mechanics.SafeLocationCandidate{
			ID:      l.ID,
			Name:    l.Name,
			Kind:    kind,
			Visited: l.Visited,
		})
	}
	return mechanics.FindSafeLocation(candidates)
}

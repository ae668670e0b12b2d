package mechanics

import (
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-rpg/internal/dice"
)

func TestModifier(t *testing.T) {
	tests := map[string]struct {
		score int
		exp   int
	}{
		"average": {score: 10, exp: 0},
		"eleven":  {score: 11, exp: 0},
		"high":    {score: 18, exp: 4},
		"low":     {score: 8, exp: -1},
		"seven":   {score: 7, exp: -2},
		"three":   {score: 3, exp: -4},
		"twenty":  {score: 20, exp: 5},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "modifier", Modifier(tt.score), tt.exp)
		})
	}
}

func TestConditionPredicates(t *testing.T) {
	testutil.AssertEqual(t, "poisoned disadvantage", HasAttackDisadvantage([]string{"poisoned"}), true)
	testutil.AssertEqual(t, "invisible advantage", HasAttackAdvantage([]string{"invisible"}), true)
	testutil.AssertEqual(t, "stunned cannot act", CanTakeActions([]string{"stunned"}), false)
	testutil.AssertEqual(t, "prone grants nothing", GrantsAdvantageToAttackers([]string{"prone"}), false)
	testutil.AssertEqual(t, "restrained grants advantage", GrantsAdvantageToAttackers([]string{"restrained"}), true)
	testutil.AssertEqual(t, "unknown condition inert", CanTakeActions([]string{"soggy"}), true)

	removed := WithoutCondition([]string{"weakened", "prone", "weakened"}, "weakened")
	testutil.AssertEqual(t, "removed length", len(removed), 1)
	testutil.AssertEqual(t, "kept", removed[0], "prone")
}

func TestLeveling(t *testing.T) {
	testutil.AssertEqual(t, "level 2 threshold", XPForLevel(2), 300)
	testutil.AssertEqual(t, "can level", CanLevelUp(1, 300), true)
	testutil.AssertEqual(t, "cannot level", CanLevelUp(1, 299), false)
	testutil.AssertEqual(t, "capped at 20", CanLevelUp(20, 10000000), false)

	testutil.AssertEqual(t, "prof level 1", ProficiencyBonus(1), 2)
	testutil.AssertEqual(t, "prof level 5", ProficiencyBonus(5), 3)
	testutil.AssertEqual(t, "prof level 17", ProficiencyBonus(17), 6)

	hp := RollHitPoints(&dice.Stub{Faces: []int{1}}, "wizard", -3)
	testutil.AssertEqual(t, "hp floor", hp, 1)

	hp = RollHitPoints(&dice.Stub{Faces: []int{7}}, "fighter", 2)
	testutil.AssertEqual(t, "hp gained", hp, 9)
}

func TestSpellSlots(t *testing.T) {
	testutil.AssertEqual(t, "fighter has none", len(SpellSlots("fighter", 5)), 0)

	slots := SpellSlots("wizard", 5)
	testutil.AssertEqual(t, "first level slots", slots[1], 4)
	testutil.AssertEqual(t, "third level slots", slots[3], 2)
}

func TestClock(t *testing.T) {
	testutil.AssertEqual(t, "advance", AdvanceClock(480, 1), 490)
	testutil.AssertEqual(t, "day one", ClockDay(480), 1)
	testutil.AssertEqual(t, "hour", ClockHour(480), 8)
	testutil.AssertEqual(t, "period", ClockPeriod(480), "morning")
	testutil.AssertEqual(t, "late night wraps", ClockPeriod(23*60), "late_night")
	testutil.AssertEqual(t, "daytime", IsDaytime(480), true)
	testutil.AssertEqual(t, "night", IsDaytime(2), false)
	testutil.AssertEqual(t, "format", FormatClock(1440+510), "morning, day 2 (08:30)")
}

func TestTickNeeds(t *testing.T) {
	n := TickNeeds(Needs{Hunger: 50, Thirst: 50, Warmth: 50, Morale: 50}, "temperate", 0)
	testutil.AssertEqual(t, "hunger", n.Hunger, 49)
	testutil.AssertEqual(t, "thirst", n.Thirst, 48)
	testutil.AssertEqual(t, "warmth stable", n.Warmth, 50)

	n = TickNeeds(Needs{Hunger: 0, Thirst: 1, Warmth: 2, Morale: 50}, "freezing", 0)
	testutil.AssertEqual(t, "hunger floor", n.Hunger, 0)
	testutil.AssertEqual(t, "warmth drains", n.Warmth, 0)

	n = TickNeeds(Needs{Hunger: 50, Thirst: 50, Warmth: 50, Morale: 50}, "temperate", 4)
	testutil.AssertEqual(t, "tough constitution", n.Hunger, 50)
}

func TestClassifyNeed(t *testing.T) {
	testutil.AssertEqual(t, "starving", ClassifyNeed("hunger", 10).Label, "starving")
	testutil.AssertEqual(t, "starving penalty", ClassifyNeed("hunger", 10).Penalty, -5)
	testutil.AssertEqual(t, "satisfied", ClassifyNeed("hunger", 90).Penalty, 0)
	testutil.AssertEqual(t, "worst wins", NeedsPenalty(Needs{Hunger: 10, Thirst: 60, Warmth: 90, Morale: 90}), -5)
}

func TestDeathPenalty(t *testing.T) {
	testutil.AssertEqual(t, "quarter of gold", DeathGoldPenalty(100), 25)
	testutil.AssertEqual(t, "rounds down", DeathGoldPenalty(3), 0)
}

func TestFindSafeLocation(t *testing.T) {
	locs := []SafeLocationCandidate{
		{ID: "cave", Name: "Dark Cave", Kind: "dungeon", Visited: true},
		{ID: "mill", Name: "Greenfield Village", Kind: "wilderness", Visited: true},
		{ID: "keep", Name: "Royal Keep", Kind: "city", Visited: false},
	}
	testutil.AssertEqual(t, "village by name", FindSafeLocation(locs), "mill")

	testutil.AssertEqual(t, "falls back to visited", FindSafeLocation([]SafeLocationCandidate{
		{ID: "cave", Kind: "dungeon", Visited: true},
	}), "cave")

	testutil.AssertEqual(t, "nothing visited", FindSafeLocation([]SafeLocationCandidate{
		{ID: "keep", Kind: "city"},
	}), "")
}

func TestSkillCheck(t *testing.T) {
	ok, res := SkillCheck(&dice.Stub{Faces: []int{12}}, 14, 2, true, 15)
	testutil.AssertEqual(t, "success", ok, true)
	testutil.AssertEqual(t, "total", res.Total, 16)

	ok, _ = SkillCheck(&dice.Stub{Faces: []int{12}}, 14, 2, false, 15)
	testutil.AssertEqual(t, "failure without proficiency", ok, false)
}

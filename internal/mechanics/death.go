package mechanics

import "strings"

// WeakenedTurns is how long the post-defeat condition lasts, counted in
// non-combat turns.
const WeakenedTurns = 5

// WeakenedCondition is the condition name attached after a player defeat.
const WeakenedCondition = "weakened"

// DeathGoldPenalty returns the gold lost when the player is defeated:
// a quarter of current gold, rounded down.
func DeathGoldPenalty(gold int) int {
	return gold / 4
}

// SafeLocationCandidate is the slice of location facts the respawn picker
// needs.
type SafeLocationCandidate struct {
	ID      string
	Name    string
	Kind    string
	Visited bool
}

// FindSafeLocation picks where a defeated player wakes up: the first
// visited settlement, falling back to any visited location.
func FindSafeLocation(locations []SafeLocationCandidate) string {
	firstVisited := ""
	for _, loc := range locations {
		if !loc.Visited {
			continue
		}
		if firstVisited == "" {
			firstVisited = loc.ID
		}
		switch strings.ToLower(loc.Kind) {
		case "village", "town", "settlement", "city":
			return loc.ID
		}
		name := strings.ToLower(loc.Name)
		if strings.Contains(name, "village") || strings.Contains(name, "town") {
			return loc.ID
		}
	}
	return firstVisited
}

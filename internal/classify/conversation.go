package classify

import (
	"regexp"

	"github.com/pixil98/go-rpg/internal/action"
)

// exitPhrases match input that ends a conversation outright.
var exitPhrases = regexp.MustCompile(`(?i)^(?:goodbye|bye|farewell|see\s+you|see\s+ya|later|` +
	`leave|walk\s+away|end\s+conversation|stop\s+talking|` +
	`nevermind|never\s+mind|nothing|forget\s+it|` +
	`i(?:'ll|\s+will)?\s+(?:go|leave|be\s+going))[\s.!]*$`)

// ExitsConversation reports whether the input is an explicit goodbye.
func ExitsConversation(raw string) bool {
	return exitPhrases.MatchString(raw)
}

// breakingTypes are actions that pull the player out of a conversation
// and fall through to normal turn processing.
var breakingTypes = map[action.Type]bool{
	action.TypeMove:        true,
	action.TypeAttack:      true,
	action.TypeUseItem:     true,
	action.TypeEquip:       true,
	action.TypeUnequip:     true,
	action.TypeRest:        true,
	action.TypeDodge:       true,
	action.TypeDash:        true,
	action.TypeDisengage:   true,
	action.TypeTalk:        true,
	action.TypeFlee:        true,
	action.TypeCombatItem:  true,
	action.TypeCombatSpell: true,
}

// BreaksConversation reports whether an action type belongs to the set
// that interrupts dialogue. Talking is included: addressing someone else
// restarts conversation with them.
func BreaksConversation(t action.Type) bool {
	return breakingTypes[t]
}

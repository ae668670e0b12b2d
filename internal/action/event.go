package action

import "time"

// EventType tags ledger entries by what happened.
type EventType string

const (
	EventCombatStart    EventType = "COMBAT_START"
	EventCombatEnd      EventType = "COMBAT_END"
	EventAttack         EventType = "ATTACK"
	EventDamage         EventType = "DAMAGE"
	EventHeal           EventType = "HEAL"
	EventDeath          EventType = "DEATH"
	EventPlayerDefeat   EventType = "PLAYER_DEFEAT"
	EventCombatFlee     EventType = "COMBAT_FLEE"
	EventCombatFleeFail EventType = "COMBAT_FLEE_FAIL"
	EventNPCFlee        EventType = "NPC_FLEE"
	EventThreatWarning  EventType = "THREAT_WARNING"
	EventSkillCheck     EventType = "SKILL_CHECK"

	EventMove            EventType = "MOVE"
	EventDiscovery       EventType = "DISCOVERY"
	EventExplorationFail EventType = "EXPLORATION_FAIL"

	EventDialogue         EventType = "DIALOGUE"
	EventItemPickup       EventType = "ITEM_PICKUP"
	EventItemDrop         EventType = "ITEM_DROP"
	EventItemUse          EventType = "ITEM_USE"
	EventEquip            EventType = "EQUIP"
	EventUnequip          EventType = "UNEQUIP"
	EventQuestStart       EventType = "QUEST_START"
	EventQuestComplete    EventType = "QUEST_COMPLETE"
	EventLevelUp          EventType = "LEVEL_UP"
	EventRest             EventType = "REST"
	EventWorldEvent       EventType = "WORLD_EVENT"
	EventTimeTravel       EventType = "TIME_TRAVEL"
	EventSnapshotCreated  EventType = "SNAPSHOT_CREATED"
	EventCreativeAction   EventType = "CREATIVE_ACTION"
	EventCreativeFail     EventType = "CREATIVE_ACTION_FAIL"
	EventCustom           EventType = "CUSTOM"
)

// Event is one append-only ledger entry. Events are never mutated after
// recording; a full restore rewrites world state but not history.
type Event struct {
	ID          string
	GameID      string
	Type        EventType
	TurnNumber  int
	Timestamp   time.Time
	ActorID     string
	TargetID    string
	LocationID  string
	Description string
	// Details holds the mechanical payload (damage numbers, DCs, npc
	// names). The ledger stores it as JSON.
	Details map[string]any

	Canonical bool
}

// Detail returns a string detail value, or empty when absent.
func (e Event) Detail(key string) string {
	if e.Details == nil {
		return ""
	}
	if v, ok := e.Details[key].(string); ok {
		return v
	}
	return ""
}

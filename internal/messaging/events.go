package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-rpg/internal/action"
)

// Bus is the subset of NatsServer the event publisher needs.
type Bus interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// EventPublisher mirrors ledger events onto a per-game NATS subject so
// renderers and tooling can follow a game live. The ledger stays the
// source of truth; a lost message is never replayed.
type EventPublisher struct {
	bus Bus
}

func NewEventPublisher(bus Bus) *EventPublisher {
	return &EventPublisher{bus: bus}
}

func (p *EventPublisher) Publish(ev action.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event %s: %w", ev.ID, err)
	}
	return p.bus.Publish(eventSubject(ev.GameID), data)
}

// SubscribeGame delivers every event published for a game. Undecodable
// payloads are dropped with a warning.
func SubscribeGame(bus Bus, gameID string, handler func(ev action.Event)) (func(), error) {
	return bus.Subscribe(eventSubject(gameID), func(data []byte) {
		var ev action.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			slog.Warn("dropping undecodable event", "game_id", gameID, "err", err)
			return
		}
		handler(ev)
	})
}

func eventSubject(gameID string) string {
	return fmt.Sprintf("game.%s.events", gameID)
}

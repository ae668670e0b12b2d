package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-rpg/internal/classify"
	"github.com/pixil98/go-rpg/internal/dice"
	"github.com/pixil98/go-rpg/internal/director"
	"github.com/pixil98/go-rpg/internal/engine"
	"github.com/pixil98/go-rpg/internal/messaging"
	"github.com/pixil98/go-rpg/internal/session"
	"github.com/pixil98/go-rpg/internal/systems"
	"github.com/pixil98/go-rpg/internal/systems/combat"
	"github.com/pixil98/go-rpg/internal/systems/exploration"
	"github.com/pixil98/go-rpg/internal/systems/inventory"
	"github.com/pixil98/go-rpg/internal/systems/rest"
	"github.com/pixil98/go-rpg/internal/systems/social"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	store, err := cfg.Storage.buildStore()
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	stores, err := cfg.Content.buildStores()
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}

	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	provider := cfg.LLM.buildProvider()
	roller := dice.NewRoller(cfg.Game.Seed)

	// The exploration system and the engine share one director so map
	// generation and turn evaluation see the same content policy.
	var dir director.Director = director.NoOp{}

	// Combat delegates item use so an encounter round still advances.
	inventorySystem := inventory.NewSystem(roller, stores.Items)
	registry := systems.NewRegistry(
		combat.NewSystem(roller, store.Combat, stores, inventorySystem),
		inventorySystem,
		exploration.NewSystem(roller, store.Locations, dir),
		social.NewSystem(),
		rest.NewSystem(roller),
	)

	eng := engine.New(store, registry, classify.NewPattern(provider), roller, engine.Options{
		Provider:         provider,
		Director:         dir,
		Publisher:        messaging.NewEventPublisher(natsServer),
		SnapshotInterval: cfg.Game.SnapshotInterval,
		SnapshotKeep:     cfg.Game.SnapshotKeep,
	})

	return service.WorkerList{
		"nats":    natsServer,
		"session": session.New(eng, cfg.Game.ID, os.Stdin, os.Stdout),
	}, nil
}

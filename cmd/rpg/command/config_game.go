package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

type GameConfig struct {
	ID               string `json:"id"`
	Seed             uint64 `json:"seed"`
	SnapshotInterval int    `json:"snapshot_interval"`
	SnapshotKeep     int    `json:"snapshot_keep"`
}

func (c *GameConfig) validate() error {
	el := errors.NewErrorList()

	if c.ID == "" {
		el.Add(fmt.Errorf("game: id is required"))
	}
	if c.SnapshotInterval < 0 {
		el.Add(fmt.Errorf("game: snapshot_interval must not be negative"))
	}
	if c.SnapshotKeep < 0 {
		el.Add(fmt.Errorf("game: snapshot_keep must not be negative"))
	}

	return el.Err()
}

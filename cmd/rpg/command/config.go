package command

import (
	"github.com/pixil98/go-errors"
)

type Config struct {
	Storage StorageConfig `json:"storage"`
	Content ContentConfig `json:"content"`
	Nats    NatsConfig    `json:"nats"`
	LLM     LLMConfig     `json:"llm"`
	Game    GameConfig    `json:"game"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	el.Add(c.Storage.validate())
	el.Add(c.Content.validate())
	el.Add(c.Nats.validate())
	el.Add(c.LLM.validate())
	el.Add(c.Game.validate())

	return el.Err()
}

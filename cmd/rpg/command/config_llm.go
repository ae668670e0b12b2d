package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-rpg/internal/llm"
)

type LLMConfig struct {
	// Enabled turns on model-backed classification and narration. The
	// game is fully playable without it.
	Enabled bool   `json:"enabled"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	NumCtx  int    `json:"num_ctx"`
}

func (c *LLMConfig) validate() error {
	el := errors.NewErrorList()

	if c.Enabled && c.Model == "" {
		el.Add(fmt.Errorf("llm: model is required when enabled"))
	}
	if c.NumCtx < 0 {
		el.Add(fmt.Errorf("llm: num_ctx must not be negative"))
	}

	return el.Err()
}

// buildProvider returns nil when the model layer is disabled; callers
// treat a nil provider as "rules only".
func (c *LLMConfig) buildProvider() llm.Provider {
	if !c.Enabled {
		return nil
	}
	return llm.NewOllama(c.BaseURL, c.Model, c.NumCtx)
}

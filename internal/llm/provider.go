// Package llm wraps the language-model collaborator: a Provider interface,
// an Ollama-backed implementation, and prompt construction from embedded
// templates. Callers treat every failure as degradable; the engine falls
// back to mechanical text when a call errors.
package llm

import (
	"context"
	"encoding/json"
)

// Request is one generation call. Temperature and MaxTokens of zero pick
// provider defaults.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Provider generates text or structured JSON from a prompt. Calls are
// synchronous and honor the context deadline.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
	GenerateStructured(ctx context.Context, req Request) (map[string]json.RawMessage, error)
}

// Classification is the structured output of the model-backed input
// classifier.
type Classification struct {
	ActionType string            `json:"action_type"`
	Target     string            `json:"target"`
	Parameters map[string]string `json:"parameters"`
	Confidence float64           `json:"confidence"`
}

// ParseClassification decodes a structured response into a
// Classification, clamping confidence to [0, 1] and defaulting missing
// fields the way a lenient reader must.
func ParseClassification(fields map[string]json.RawMessage) Classification {
	c := Classification{ActionType: "custom", Confidence: 0.5}

	if raw, ok := fields["action_type"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil && s != "" {
			c.ActionType = s
		}
	}
	if raw, ok := fields["target"]; ok {
		var s string
		_ = json.Unmarshal(raw, &s)
		c.Target = s
	}
	if raw, ok := fields["parameters"]; ok {
		_ = json.Unmarshal(raw, &c.Parameters)
	}
	if raw, ok := fields["confidence"]; ok {
		var f float64
		if json.Unmarshal(raw, &f) == nil {
			c.Confidence = f
		}
	}

	if c.Confidence < 0 {
		c.Confidence = 0
	}
	if c.Confidence > 1 {
		c.Confidence = 1
	}
	return c
}

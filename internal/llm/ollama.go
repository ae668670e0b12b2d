package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTemperature = 0.8
	defaultMaxTokens   = 1024
)

// Ollama talks to a local Ollama server over its native HTTP API.
type Ollama struct {
	baseURL string
	model   string
	numCtx  int
	client  *http.Client
}

func NewOllama(baseURL, model string, numCtx int) *Ollama {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "mistral"
	}
	if numCtx <= 0 {
		numCtx = 4096
	}
	return &Ollama{
		baseURL: baseURL,
		model:   model,
		numCtx:  numCtx,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
	NumCtx      int     `json:"num_ctx"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func (o *Ollama) Generate(ctx context.Context, req Request) (string, error) {
	temp := req.Temperature
	if temp == 0 {
		temp = defaultTemperature
	}
	max := req.MaxTokens
	if max == 0 {
		max = defaultMaxTokens
	}

	body, err := json.Marshal(generateRequest{
		Model:  o.model,
		Prompt: req.Prompt,
		System: req.System,
		Stream: false,
		Options: generateOptions{
			Temperature: temp,
			NumPredict:  max,
			NumCtx:      o.numCtx,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("model returned %d: %s", resp.StatusCode, msg)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("model error: %s", out.Error)
	}
	return out.Response, nil
}

func (o *Ollama) GenerateStructured(ctx context.Context, req Request) (map[string]json.RawMessage, error) {
	req.System = req.System + "\n\nYou MUST respond with valid JSON only. No other text."
	if req.Temperature == 0 {
		req.Temperature = 0.7
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 512
	}

	text, err := o.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return ParseStructured(text)
}

// Available reports whether the server is reachable and serves the
// configured model.
func (o *Ollama) Available(ctx context.Context) bool {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if json.NewDecoder(resp.Body).Decode(&tags) != nil {
		return false
	}
	for _, m := range tags.Models {
		// Model names carry a tag suffix, e.g. "mistral:7b".
		name, _, _ := strings.Cut(m.Name, ":")
		if name == o.model {
			return true
		}
	}
	return false
}

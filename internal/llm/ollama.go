// Package llm holds the conversational model backends. Each backend returns
// an opaque continuation token that must be handed back on the next call.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	log "log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const DefaultOllamaURL = "http://localhost:11434/api/generate"

// Ollama talks to the /api/generate endpoint. Its token is the "context"
// array returned by the server.
type Ollama struct {
	url    string
	model  string
	client *http.Client
}

type ollamaRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Stream  bool            `json:"stream"`
	Context json.RawMessage `json:"context,omitempty"`
}

func NewOllama(url, model string, client *http.Client) *Ollama {
	if url == "" {
		url = DefaultOllamaURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Ollama{url: url, model: model, client: client}
}

func (o *Ollama) Complete(ctx context.Context, prompt, system string, token []byte) (string, []byte, error) {
	payload, err := json.Marshal(ollamaRequest{
		Model:   o.model,
		Prompt:  prompt,
		System:  system,
		Stream:  false,
		Context: token,
	})
	if err != nil {
		return "", nil, fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(payload))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("read ollama response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", nil, fmt.Errorf("ollama request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	if !gjson.ValidBytes(body) {
		return "", nil, fmt.Errorf("ollama returned invalid json")
	}
	if e := gjson.GetBytes(body, "error"); e.Exists() {
		return "", nil, fmt.Errorf("ollama error: %s", e.String())
	}

	reply := gjson.GetBytes(body, "response")
	if !reply.Exists() {
		return "", nil, fmt.Errorf("ollama response without text")
	}

	var next []byte
	if c := gjson.GetBytes(body, "context"); c.IsArray() {
		next = []byte(c.Raw)
	}

	log.Debug("Ollama replied", "model", o.model, "chars", len(reply.String()), "context", next != nil)

	return strings.TrimSpace(reply.String()), next, nil
}

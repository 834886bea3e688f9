package llm

import (
	"context"
	"encoding/json"
	"fmt"
	log "log/slog"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// maxTurns bounds the history carried in the token.
const maxTurns = 20

type turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAI keeps the dialogue in its token as a JSON list of turns, since the
// chat completions API is stateless.
type OpenAI struct {
	client openai.Client
	model  string
}

func NewOpenAI(apiKey, baseURL, model string, httpClient *http.Client) *OpenAI {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	if model == "" {
		model = string(openai.ChatModelGPT5Nano)
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (o *OpenAI) Complete(ctx context.Context, prompt, system string, token []byte) (string, []byte, error) {
	history := decodeTurns(token)

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	if system != "" {
		msgs = append(msgs, openai.SystemMessage(system))
	}
	for _, t := range history {
		switch t.Role {
		case "user":
			msgs = append(msgs, openai.UserMessage(t.Content))
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(t.Content))
		}
	}
	msgs = append(msgs, openai.UserMessage(prompt))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: msgs,
		Model:    openai.ChatModel(o.model),
	})
	if err != nil {
		return "", nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil, fmt.Errorf("no choices in response")
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", nil, fmt.Errorf("empty message content")
	}

	history = append(history, turn{Role: "user", Content: prompt}, turn{Role: "assistant", Content: reply})
	if len(history) > 2*maxTurns {
		history = history[len(history)-2*maxTurns:]
	}

	next, err := json.Marshal(history)
	if err != nil {
		return "", nil, fmt.Errorf("marshal history: %w", err)
	}

	return reply, next, nil
}

func decodeTurns(token []byte) []turn {
	if len(token) == 0 {
		return nil
	}
	var out []turn
	if err := json.Unmarshal(token, &out); err != nil {
		log.Warn("Ignoring unreadable chat history", "err", err)
		return nil
	}
	return out
}

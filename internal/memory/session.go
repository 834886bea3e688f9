// Package memory threads the conversational model's continuation token
// through every exchange and persists it after each successful reply.
package memory

import (
	"context"
	"fmt"
	log "log/slog"
	"strings"
)

const (
	Apology  = "Estou com dor de cabeça (erro de conexão)."
	NoAnswer = "Desculpe, não sei responder isso."
)

// Model is a conversational backend. token is nil when there is no prior context.
type Model interface {
	Complete(ctx context.Context, prompt, system string, token []byte) (reply string, next []byte, err error)
}

type Persister interface {
	LoadMemory() []byte
	SaveMemory(token []byte) error
}

// Session holds the single live continuation token.
type Session struct {
	model  Model
	store  Persister
	system string
	token  []byte
}

// NewSession loads the persisted token once.
func NewSession(model Model, st Persister, systemPrompt string) *Session {
	token := st.LoadMemory()
	log.Debug("Loaded conversation memory", "present", token != nil)

	return &Session{
		model:  model,
		store:  st,
		system: systemPrompt,
		token:  token,
	}
}

// Converse sends utterance with the current token. On failure the reply is
// Apology, the error is returned for logging, and the token is left untouched.
// On success the new token is persisted before returning; an empty reply is
// spoken as NoAnswer.
func (s *Session) Converse(ctx context.Context, utterance string) (string, error) {
	reply, next, err := s.model.Complete(ctx, utterance, s.system, s.token)
	if err != nil {
		return Apology, fmt.Errorf("complete: %w", err)
	}

	s.token = next
	if err := s.store.SaveMemory(next); err != nil {
		log.Error("Failed to persist conversation memory", "err", err)
	}

	if strings.TrimSpace(reply) == "" {
		log.Warn("Conversational model returned an empty reply")
		return NoAnswer, nil
	}

	return reply, nil
}

// Token returns the live token, nil when absent.
func (s *Session) Token() []byte {
	return s.token
}

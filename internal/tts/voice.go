// Package tts speaks replies through espeak-ng.
package tts

import (
	"context"
	log "log/slog"
	"strings"
)

const DefaultVoice = "pt-br"

// Ducker lowers other playback while the voice is speaking.
type Ducker interface {
	Duck(ctx context.Context) error
	Unduck(ctx context.Context) error
}

type Voice struct {
	name string
	duck Ducker
}

// New returns a voice using the espeak-ng voice name, falling back to any
// Portuguese voice. duck may be nil.
func New(name string, duck Ducker) *Voice {
	if name == "" {
		name = DefaultVoice
	}
	return &Voice{name: name, duck: duck}
}

// Speak blocks until text has been played.
func (v *Voice) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if v.duck != nil {
		if err := v.duck.Duck(ctx); err != nil {
			log.Warn("Duck failed", "err", err)
		}
		defer func() {
			if err := v.duck.Unduck(context.WithoutCancel(ctx)); err != nil {
				log.Warn("Unduck failed", "err", err)
			}
		}()
	}

	return say(v.name, text)
}

package assistant

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"

	"astra/internal/bus"
	"astra/internal/intent"
)

type State int

const (
	IdlePolling State = iota
	Listening
	Shutdown
)

func (s State) String() string {
	switch s {
	case IdlePolling:
		return "idle-polling"
	case Listening:
		return "listening"
	case Shutdown:
		return "shutdown"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Loop is strictly sequential: a reminder poll, one listen, one reply, then
// the next iteration.
type Loop struct {
	deps  Deps
	opt   Options
	state State
}

func New(deps Deps, opt Options) *Loop {
	opt.setDefaults()
	return &Loop{deps: deps, opt: opt, state: IdlePolling}
}

func (l *Loop) State() State { return l.state }

// Run greets and iterates until an exit intent or until ctx is cancelled.
// Both are a clean stop and return nil.
func (l *Loop) Run(ctx context.Context) error {
	l.say(ctx, Greeting)

	for l.state != Shutdown {
		if ctx.Err() != nil {
			l.state = Shutdown
			break
		}
		if err := l.Step(ctx); err != nil {
			return err
		}
	}

	log.Info("Loop stopped")
	return nil
}

// Step runs one iteration. Timeouts, silence and collaborator failures are
// handled inside; the returned error is reserved for faults outside them.
func (l *Loop) Step(ctx context.Context) error {
	if l.state == Shutdown {
		return nil
	}

	l.state = IdlePolling
	if task, ok := l.deps.Reminders.PollDue(); ok {
		l.deliver(ctx, task)
	}

	l.state = Listening
	utterance, err := l.hear(ctx)
	switch {
	case ctx.Err() != nil:
		l.state = Shutdown
		return nil
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrUnintelligible):
		log.Debug("Nothing heard", "reason", err)
		l.state = IdlePolling
		return nil
	case errors.Is(err, ErrServiceUnavailable):
		log.Error("Hearing failed", "err", err)
		l.say(ctx, HearingDown)
		l.state = IdlePolling
		return nil
	case err != nil:
		return err
	}

	if l.deps.Transcript != nil {
		l.deps.Transcript.Heard(utterance)
	}

	action := l.deps.Router.Route(utterance)
	reply, stop := l.dispatch(ctx, action)
	l.say(ctx, reply)
	l.publish("exchange", utterance, reply, action)

	if stop {
		l.state = Shutdown
	} else {
		l.state = IdlePolling
	}
	return nil
}

// hear captures and transcribes one utterance.
func (l *Loop) hear(ctx context.Context) (string, error) {
	if l.deps.Cue != nil {
		if err := l.deps.Cue.Play(); err != nil {
			log.Debug("Cue failed", "err", err)
		}
	}
	if l.deps.Transcript != nil {
		l.deps.Transcript.Listening()
	}

	pcm, err := l.deps.Listener.Listen(ctx, l.opt.ListenTimeout, l.opt.PhraseLimit)
	if err != nil {
		if errors.Is(err, ErrTimeout) || ctx.Err() != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: listen: %v", ErrServiceUnavailable, err)
	}

	text, err := l.deps.Transcriber.Transcribe(ctx, pcm)
	if err != nil {
		if ctx.Err() != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: transcribe: %v", ErrServiceUnavailable, err)
	}

	utterance := cleanTranscript(text)
	if utterance == "" {
		return "", ErrUnintelligible
	}
	return utterance, nil
}

func (l *Loop) deliver(ctx context.Context, task string) {
	msg := "Lembrete: " + task
	l.say(ctx, msg)

	if l.deps.Notifier != nil {
		if err := l.deps.Notifier.Notify(ctx, "Astra", msg); err != nil {
			log.Warn("Notification failed", "err", err)
		}
	}
	l.publish("reminder", "", msg, nil)
}

func (l *Loop) say(ctx context.Context, text string) {
	if text == "" {
		return
	}
	if l.deps.Transcript != nil {
		l.deps.Transcript.Said(text)
	}
	if err := l.deps.Speaker.Speak(ctx, text); err != nil {
		log.Error("Speak failed", "err", err)
	}
}

func (l *Loop) publish(kind, utterance, reply string, a intent.Action) {
	if l.deps.Mirror == nil {
		return
	}
	err := l.deps.Mirror.Publish(bus.Exchange{
		Kind:      kind,
		Utterance: utterance,
		Reply:     reply,
		Intent:    actionName(a),
		At:        l.opt.Now(),
	})
	if err != nil {
		log.Warn("Mirror publish failed", "err", err)
	}
}

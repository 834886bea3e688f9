// Package assistant runs the conversation loop: poll reminders, listen,
// route the utterance, carry out the action and speak the result.
package assistant

import (
	"context"
	"errors"
	"time"

	"astra/internal/bus"
	"astra/internal/intent"
)

var (
	// ErrTimeout is returned by a Listener when nobody spoke in time.
	ErrTimeout = errors.New("listen timeout")
	// ErrUnintelligible marks a transcription with no usable words.
	ErrUnintelligible = errors.New("unintelligible speech")
	// ErrServiceUnavailable wraps capture and transcription failures.
	ErrServiceUnavailable = errors.New("speech service unavailable")
)

const (
	Greeting    = "Sistemas online. O que deseja, senhor?"
	Farewell    = "Desligando sistemas."
	HearingDown = "Minha audição está fora do ar."
)

type Speaker interface {
	Speak(ctx context.Context, text string) error
}

type Listener interface {
	Listen(ctx context.Context, timeout, phraseLimit time.Duration) ([]float32, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, pcm []float32) (string, error)
}

type Router interface {
	Route(utterance string) intent.Action
}

type Reminders interface {
	Schedule(task string, minutes int) (string, error)
	PollDue() (string, bool)
}

type Converser interface {
	Converse(ctx context.Context, utterance string) (string, error)
}

type Weather interface {
	Geocode(ctx context.Context, city string) (lat, lon float64, err error)
	CurrentTemperature(ctx context.Context, lat, lon float64) (float64, error)
}

type Encyclopedia interface {
	Summarize(ctx context.Context, topic, lang string, sentences int) (string, error)
}

type Media interface {
	Play(ctx context.Context, query string) error
}

// OS is the desktop control surface.
type OS interface {
	SetVolume(ctx context.Context, percent int) error
	StepVolume(ctx context.Context, up bool) error
	ToggleMute(ctx context.Context) error
	SetBrightness(ctx context.Context, percent int) error
	Screenshot(ctx context.Context) (string, error)
	EmptyTrash(ctx context.Context) error
	Lock(ctx context.Context) error
	Shutdown(ctx context.Context) (time.Duration, error)
	OpenApp(ctx context.Context, name string) (string, error)
}

type Transcript interface {
	Said(text string)
	Heard(text string)
	Listening()
}

type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

type Mirror interface {
	Publish(bus.Exchange) error
}

type Cue interface {
	Play() error
}

// Deps are the collaborators of a Loop. Transcript, Notifier, Mirror and Cue
// are optional.
type Deps struct {
	Speaker      Speaker
	Listener     Listener
	Transcriber  Transcriber
	Router       Router
	Reminders    Reminders
	Converser    Converser
	Weather      Weather
	Encyclopedia Encyclopedia
	Media        Media
	OS           OS

	Transcript Transcript
	Notifier   Notifier
	Mirror     Mirror
	Cue        Cue
}

type Options struct {
	ListenTimeout time.Duration
	PhraseLimit   time.Duration
	WikiLanguage  string
	WikiSentences int
	Now           func() time.Time
}

func (o *Options) setDefaults() {
	if o.ListenTimeout <= 0 {
		o.ListenTimeout = 5 * time.Second
	}
	if o.PhraseLimit <= 0 {
		o.PhraseLimit = 10 * time.Second
	}
	if o.WikiLanguage == "" {
		o.WikiLanguage = "pt"
	}
	if o.WikiSentences <= 0 {
		o.WikiSentences = 2
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

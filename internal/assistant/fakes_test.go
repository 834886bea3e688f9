package assistant

import (
	"context"
	"fmt"
	"time"

	"astra/internal/bus"
)

// turn is one scripted listen: either a listen error or a transcription.
type turn struct {
	listenErr error
	text      string
	textErr   error
}

type fakeEar struct {
	turns  []turn
	next   int
	cancel context.CancelFunc
}

func (f *fakeEar) Listen(ctx context.Context, _, _ time.Duration) ([]float32, error) {
	if f.next >= len(f.turns) {
		if f.cancel != nil {
			f.cancel()
			return nil, ctx.Err()
		}
		return nil, ErrTimeout
	}
	if t := f.turns[f.next]; t.listenErr != nil {
		f.next++
		return nil, t.listenErr
	}
	return []float32{0.1, -0.1}, nil
}

func (f *fakeEar) Transcribe(_ context.Context, _ []float32) (string, error) {
	t := f.turns[f.next]
	f.next++
	return t.text, t.textErr
}

type fakeSpeaker struct{ said []string }

func (f *fakeSpeaker) Speak(_ context.Context, text string) error {
	f.said = append(f.said, text)
	return nil
}

type fakeOS struct {
	calls   []string
	err     error
	appName string
	appErr  error
}

func (f *fakeOS) record(format string, args ...any) error {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return f.err
}

func (f *fakeOS) SetVolume(_ context.Context, p int) error { return f.record("volume %d", p) }
func (f *fakeOS) StepVolume(_ context.Context, up bool) error {
	return f.record("step up=%t", up)
}
func (f *fakeOS) ToggleMute(context.Context) error             { return f.record("mute") }
func (f *fakeOS) SetBrightness(_ context.Context, p int) error { return f.record("brightness %d", p) }
func (f *fakeOS) Screenshot(context.Context) (string, error) {
	return "/tmp/shot.png", f.record("screenshot")
}
func (f *fakeOS) EmptyTrash(context.Context) error { return f.record("trash") }
func (f *fakeOS) Lock(context.Context) error       { return f.record("lock") }
func (f *fakeOS) Shutdown(context.Context) (time.Duration, error) {
	return time.Minute, f.record("shutdown")
}
func (f *fakeOS) OpenApp(_ context.Context, name string) (string, error) {
	f.calls = append(f.calls, "open "+name)
	return f.appName, f.appErr
}

type fakeWeather struct {
	lat, lon float64
	temp     float64
	geoErr   error
	tempErr  error
	cities   []string
}

func (f *fakeWeather) Geocode(_ context.Context, city string) (float64, float64, error) {
	f.cities = append(f.cities, city)
	return f.lat, f.lon, f.geoErr
}

func (f *fakeWeather) CurrentTemperature(_ context.Context, lat, lon float64) (float64, error) {
	if lat != f.lat || lon != f.lon {
		return 0, fmt.Errorf("unexpected coordinates %v,%v", lat, lon)
	}
	return f.temp, f.tempErr
}

type fakeWiki struct {
	summary string
	err     error
	topics  []string
}

func (f *fakeWiki) Summarize(_ context.Context, topic, _ string, _ int) (string, error) {
	f.topics = append(f.topics, topic)
	return f.summary, f.err
}

type fakeMedia struct {
	queries []string
	err     error
}

func (f *fakeMedia) Play(_ context.Context, q string) error {
	f.queries = append(f.queries, q)
	return f.err
}

type fakeConverser struct {
	reply string
	err   error
	got   []string
}

func (f *fakeConverser) Converse(_ context.Context, u string) (string, error) {
	f.got = append(f.got, u)
	return f.reply, f.err
}

type fakeReminders struct {
	due       []string
	scheduled []string
	polls     int
}

func (f *fakeReminders) Schedule(task string, minutes int) (string, error) {
	f.scheduled = append(f.scheduled, fmt.Sprintf("%s/%d", task, minutes))
	return "ok", nil
}

func (f *fakeReminders) PollDue() (string, bool) {
	f.polls++
	if len(f.due) == 0 {
		return "", false
	}
	t := f.due[0]
	f.due = f.due[1:]
	return t, true
}

type fakeNotifier struct{ bodies []string }

func (f *fakeNotifier) Notify(_ context.Context, _, body string) error {
	f.bodies = append(f.bodies, body)
	return nil
}

type fakeMirror struct{ got []bus.Exchange }

func (f *fakeMirror) Publish(ex bus.Exchange) error {
	f.got = append(f.got, ex)
	return nil
}

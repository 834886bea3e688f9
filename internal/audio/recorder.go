// Package audio captures single utterances, either live from the default
// input device or from a directory of recorded files.
package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"astra/pkg/audioconv"
)

// ErrTimeout means no speech started before the listen timeout.
var ErrTimeout = errors.New("no speech before timeout")

const (
	frameSize    = 320 // 20ms at 16 kHz
	frameMillis  = 20
	endOfPhrase  = 600 * time.Millisecond
	defaultLevel = 0.015
)

// Microphone records from the default portaudio input.
type Microphone struct {
	// Threshold is the frame RMS above which a frame counts as speech.
	Threshold float64

	once    sync.Once
	ready   bool
	initErr error
}

func NewMicrophone() *Microphone { return &Microphone{Threshold: defaultLevel} }

func (m *Microphone) init() error {
	m.once.Do(func() {
		m.initErr = portaudio.Initialize()
		m.ready = m.initErr == nil
	})
	return m.initErr
}

func (m *Microphone) Close() error {
	if !m.ready {
		return nil
	}
	return portaudio.Terminate()
}

// Listen waits up to timeout for speech to begin and then records until a
// short silence or until phraseLimit elapses. The result is 16 kHz mono PCM.
func (m *Microphone) Listen(ctx context.Context, timeout, phraseLimit time.Duration) ([]float32, error) {
	if err := m.init(); err != nil {
		return nil, fmt.Errorf("portaudio: %w", err)
	}

	buf := make([]float32, frameSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, audioconv.SampleRate, len(buf), buf)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("start input: %w", err)
	}
	defer stream.Stop()

	var (
		waitFrames   = int(timeout.Milliseconds() / frameMillis)
		phraseFrames = int(phraseLimit.Milliseconds() / frameMillis)
		quietFrames  = int(endOfPhrase.Milliseconds() / frameMillis)
		out          = make([]float32, 0, audioconv.SampleRate*3)
		speaking     bool
		silent       int
		spoken       int
	)

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !speaking && i >= waitFrames {
			return nil, ErrTimeout
		}
		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}

		loud := frameRMS(buf) > m.Threshold
		if !speaking {
			if !loud {
				continue
			}
			speaking = true
		}

		out = append(out, buf...)
		spoken++

		if loud {
			silent = 0
		} else {
			silent++
		}
		if silent >= quietFrames || spoken >= phraseFrames {
			return out, nil
		}
	}
}

func frameRMS(f []float32) float64 {
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}

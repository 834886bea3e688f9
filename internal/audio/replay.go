package audio

import (
	"context"
	"fmt"
	log "log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"astra/pkg/audioconv"
)

// Replay serves recorded utterances from a directory in name order. Once
// every file has been served, Listen waits out the timeout like a silent
// room and reports ErrTimeout.
type Replay struct {
	files []string
	next  int
}

func NewReplay(dir string) (*Replay, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("replay dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !audioconv.Supported(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	slices.Sort(files)

	log.Info("Replay capture", "dir", dir, "files", len(files))
	return &Replay{files: files}, nil
}

func (r *Replay) Listen(ctx context.Context, timeout, phraseLimit time.Duration) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.next >= len(r.files) {
		t := time.NewTimer(timeout)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
			return nil, ErrTimeout
		}
	}

	path := r.files[r.next]
	r.next++

	limit := int(phraseLimit.Seconds() * audioconv.SampleRate)
	return audioconv.DecodeFile(path, audioconv.Options{MaxSamples: limit})
}

func (r *Replay) Remaining() int { return len(r.files) - r.next }

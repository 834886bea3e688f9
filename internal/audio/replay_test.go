package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWAV(t *testing.T, path string, samples int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, 16000, 16, 1, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 16000},
		Data:           make([]int, samples),
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
}

func TestReplayInNameOrder(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, filepath.Join(dir, "02.wav"), 320)
	writeWAV(t, filepath.Join(dir, "01.wav"), 160)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notas.txt"), []byte("x"), 0o644))

	r, err := NewReplay(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Remaining())

	ctx := context.Background()
	pcm, err := r.Listen(ctx, time.Second, 10*time.Second)
	require.NoError(t, err)
	assert.Len(t, pcm, 160)

	pcm, err = r.Listen(ctx, time.Second, 10*time.Second)
	require.NoError(t, err)
	assert.Len(t, pcm, 320)

	_, err = r.Listen(ctx, 10*time.Millisecond, 10*time.Second)
	assert.ErrorIs(t, err, ErrTimeout)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = r.Listen(cancelled, time.Hour, 10*time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReplayPhraseLimit(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, filepath.Join(dir, "longa.wav"), 32000)

	r, err := NewReplay(dir)
	require.NoError(t, err)

	pcm, err := r.Listen(context.Background(), time.Second, time.Second)
	require.NoError(t, err)
	assert.Len(t, pcm, 16000)
}

func TestReplayMissingDir(t *testing.T) {
	_, err := NewReplay(filepath.Join(t.TempDir(), "nada"))
	assert.Error(t, err)
}

func TestFrameRMS(t *testing.T) {
	assert.InDelta(t, 0.5, frameRMS([]float32{0.5, -0.5, 0.5, -0.5}), 1e-9)
}

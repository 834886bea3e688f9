package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	return New(b, "", ""), dir
}

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "astra.db"))
	require.NoError(t, err)
	s := New(b, "", "")
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func forEachBackend(t *testing.T, fn func(t *testing.T, s *Store)) {
	t.Run("file", func(t *testing.T) {
		s, _ := newFileStore(t)
		fn(t, s)
	})
	t.Run("sqlite", func(t *testing.T) {
		fn(t, newSQLiteStore(t))
	})
}

func TestStore_MissingRecords(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		assert.Nil(t, s.LoadMemory())

		reminders, err := s.LoadReminders()
		require.NoError(t, err)
		assert.Empty(t, reminders)
	})
}

func TestStore_MemoryRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Store) {
		require.NoError(t, s.SaveMemory([]byte(`[1,2,3]`)))
		assert.JSONEq(t, `[1,2,3]`, string(s.LoadMemory()))

		require.NoError(t, s.SaveMemory([]byte(`[4]`)))
		assert.JSONEq(t, `[4]`, string(s.LoadMemory()))

		require.NoError(t, s.SaveMemory(nil))
		assert.Nil(t, s.LoadMemory())
	})
}

func TestStore_SaveMemoryRejectsInvalidJSON(t *testing.T) {
	s, _ := newFileStore(t)
	require.NoError(t, s.SaveMemory([]byte(`[7]`)))

	assert.Error(t, s.SaveMemory([]byte(`{oops`)))
	assert.JSONEq(t, `[7]`, string(s.LoadMemory()))
}

func TestStore_CorruptMemoryIsAbsent(t *testing.T) {
	s, dir := newFileStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultMemoryRecord), []byte("{oops"), 0o644))

	assert.Nil(t, s.LoadMemory())
}

func TestStore_CorruptRemindersIsError(t *testing.T) {
	s, dir := newFileStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultRemindersRecord), []byte("- task: [unterminated"), 0o644))

	_, err := s.LoadReminders()
	assert.Error(t, err)
}

func TestStore_RemindersRoundTrip(t *testing.T) {
	due := time.Date(2026, 10, 19, 10, 15, 42, 0, time.UTC)

	forEachBackend(t, func(t *testing.T, s *Store) {
		in := []Reminder{
			{Task: "regar as plantas", DueAt: due},
			{Task: "ligar para a mãe", DueAt: due.Add(time.Hour)},
		}
		require.NoError(t, s.SaveReminders(in))

		out, err := s.LoadReminders()
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "regar as plantas", out[0].Task)
		assert.True(t, out[0].DueAt.Equal(due.Truncate(time.Minute)), "got %v", out[0].DueAt)
		assert.Equal(t, "ligar para a mãe", out[1].Task)
	})
}

func TestStore_SaveOfLoadIsIdempotent(t *testing.T) {
	s, dir := newFileStore(t)
	path := filepath.Join(dir, DefaultRemindersRecord)

	require.NoError(t, s.SaveReminders([]Reminder{
		{Task: "tomar remédio", DueAt: time.Date(2026, 10, 19, 8, 0, 0, 0, time.FixedZone("BRT", -3*3600))},
	}))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	loaded, err := s.LoadReminders()
	require.NoError(t, err)
	require.NoError(t, s.SaveReminders(loaded))

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestStore_RemindersFileIsReadable(t *testing.T) {
	s, dir := newFileStore(t)
	require.NoError(t, s.SaveReminders([]Reminder{
		{Task: "regar as plantas", DueAt: time.Date(2026, 10, 19, 10, 15, 0, 0, time.UTC)},
	}))

	data, err := os.ReadFile(filepath.Join(dir, DefaultRemindersRecord))
	require.NoError(t, err)
	assert.Contains(t, string(data), "task: regar as plantas")
	assert.Contains(t, string(data), "due_at: 2026-10-19T10:15:00Z")
}

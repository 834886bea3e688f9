package reminder

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astra/internal/store"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type memPersister struct {
	saved   []store.Reminder
	saves   int
	loadErr error
	saveErr error
}

func (m *memPersister) LoadReminders() ([]store.Reminder, error) {
	return append([]store.Reminder(nil), m.saved...), m.loadErr
}

func (m *memPersister) SaveReminders(r []store.Reminder) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append([]store.Reminder(nil), r...)
	return nil
}

func newScheduler(t *testing.T, start time.Time) (*Scheduler, *memPersister, *clock) {
	t.Helper()
	p := &memPersister{}
	c := &clock{t: start}
	s, err := New(p, c.now)
	require.NoError(t, err)
	return s, p, c
}

func TestSchedule_RoundsToMinuteAndPersists(t *testing.T) {
	s, p, _ := newScheduler(t, time.Date(2026, 10, 19, 10, 5, 37, 0, time.Local))

	msg, err := s.Schedule("regar as plantas", 10)
	require.NoError(t, err)
	assert.Contains(t, msg, "regar as plantas")
	assert.Contains(t, msg, "10:15")

	require.Len(t, p.saved, 1)
	assert.Equal(t, "regar as plantas", p.saved[0].Task)
	assert.Equal(t, time.Date(2026, 10, 19, 10, 15, 0, 0, time.Local), p.saved[0].DueAt)
}

func TestSchedule_RejectsNegative(t *testing.T) {
	s, p, _ := newScheduler(t, time.Now())

	_, err := s.Schedule("x", -1)
	assert.ErrorIs(t, err, ErrNegativeDelay)
	assert.Empty(t, s.Pending())
	assert.Zero(t, p.saves)
}

func TestPollDue_DeliversExactlyOnce(t *testing.T) {
	start := time.Date(2026, 10, 19, 10, 5, 12, 0, time.Local)
	s, p, c := newScheduler(t, start)

	_, err := s.Schedule("regar as plantas", 3)
	require.NoError(t, err)

	c.advance(2 * time.Minute)
	_, ok := s.PollDue()
	assert.False(t, ok, "must never fire early")

	c.advance(time.Minute)
	task, ok := s.PollDue()
	require.True(t, ok)
	assert.Equal(t, "regar as plantas", task)
	assert.Empty(t, p.saved)

	_, ok = s.PollDue()
	assert.False(t, ok)
	c.advance(10 * time.Minute)
	_, ok = s.PollDue()
	assert.False(t, ok)
}

func TestPollDue_ZeroMinutesFiresOnNextPoll(t *testing.T) {
	s, _, _ := newScheduler(t, time.Date(2026, 10, 19, 10, 5, 59, 0, time.Local))

	_, err := s.Schedule("beber água", 0)
	require.NoError(t, err)

	task, ok := s.PollDue()
	require.True(t, ok)
	assert.Equal(t, "beber água", task)
}

func TestPollDue_OnePerPollInStoredOrder(t *testing.T) {
	s, _, c := newScheduler(t, time.Date(2026, 10, 19, 10, 0, 0, 0, time.Local))

	for _, task := range []string{"primeiro", "segundo", "terceiro"} {
		_, err := s.Schedule(task, 1)
		require.NoError(t, err)
	}
	c.advance(time.Minute)

	var got []string
	for i := 0; i < 4; i++ {
		if task, ok := s.PollDue(); ok {
			got = append(got, task)
		}
	}
	assert.Equal(t, []string{"primeiro", "segundo", "terceiro"}, got)
}

func TestPollDue_LatePollStillDelivers(t *testing.T) {
	s, _, c := newScheduler(t, time.Date(2026, 10, 19, 10, 0, 0, 0, time.Local))

	_, err := s.Schedule("reunião", 1)
	require.NoError(t, err)

	c.advance(4 * time.Minute)
	task, ok := s.PollDue()
	require.True(t, ok)
	assert.Equal(t, "reunião", task)
}

func TestPollDue_SkipsNotYetDue(t *testing.T) {
	s, _, c := newScheduler(t, time.Date(2026, 10, 19, 10, 0, 0, 0, time.Local))

	_, _ = s.Schedule("depois", 30)
	_, _ = s.Schedule("agora", 1)
	c.advance(time.Minute)

	task, ok := s.PollDue()
	require.True(t, ok)
	assert.Equal(t, "agora", task)
	require.Len(t, s.Pending(), 1)
	assert.Equal(t, "depois", s.Pending()[0].Task)
}

func TestScheduler_SaveFailureKeepsQueue(t *testing.T) {
	s, p, c := newScheduler(t, time.Date(2026, 10, 19, 10, 0, 0, 0, time.Local))
	p.saveErr = errors.New("disk full")

	_, err := s.Schedule("tarefa", 1)
	require.NoError(t, err)
	assert.Len(t, s.Pending(), 1)

	c.advance(time.Minute)
	task, ok := s.PollDue()
	require.True(t, ok)
	assert.Equal(t, "tarefa", task)
}

func TestNew_LoadErrorPropagates(t *testing.T) {
	_, err := New(&memPersister{loadErr: errors.New("corrupt")}, nil)
	assert.Error(t, err)
}

func TestScheduler_SurvivesRestart(t *testing.T) {
	b, err := store.NewFileBackend(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	st := store.New(b, "", "")
	c := &clock{t: time.Date(2026, 10, 19, 10, 0, 0, 0, time.Local)}

	first, err := New(st, c.now)
	require.NoError(t, err)
	_, err = first.Schedule("regar as plantas", 10)
	require.NoError(t, err)

	second, err := New(st, c.now)
	require.NoError(t, err)
	require.Len(t, second.Pending(), 1)

	c.advance(10 * time.Minute)
	task, ok := second.PollDue()
	require.True(t, ok)
	assert.Equal(t, "regar as plantas", task)

	third, err := New(st, c.now)
	require.NoError(t, err)
	assert.Empty(t, third.Pending())
}

func TestSchedule_RejectsDelayOverAYear(t *testing.T) {
	s, p, c := newScheduler(t, time.Date(2026, 10, 19, 10, 5, 0, 0, time.Local))

	for _, minutes := range []int{MaxMinutes + 1, math.MaxInt} {
		_, err := s.Schedule("pagar a conta", minutes)
		assert.ErrorIs(t, err, ErrDelayTooLong)
	}
	assert.Empty(t, s.Pending())
	assert.Zero(t, p.saves)

	_, ok := s.PollDue()
	assert.False(t, ok)

	_, err := s.Schedule("pagar a conta", MaxMinutes)
	require.NoError(t, err)
	c.advance(MaxMinutes*time.Minute - time.Minute)
	_, ok = s.PollDue()
	assert.False(t, ok, "must never fire early")
}

func TestSchedule_NamesTheDayWhenNotToday(t *testing.T) {
	s, _, _ := newScheduler(t, time.Date(2026, 10, 19, 10, 5, 30, 0, time.Local))

	msg, err := s.Schedule("ligar para a ana", 1500)
	require.NoError(t, err)
	assert.Equal(t, "Certo, vou te lembrar de ligar para a ana em 20/10 às 11:05.", msg)

	msg, err = s.Schedule("regar as plantas", 10)
	require.NoError(t, err)
	assert.Equal(t, "Certo, vou te lembrar de regar as plantas às 10:15.", msg)
}

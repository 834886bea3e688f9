// Package reminder keeps the queue of pending reminders and surfaces the ones
// that are due, one per poll.
package reminder

import (
	"errors"
	"fmt"
	log "log/slog"
	"time"

	"astra/internal/store"
)

// MaxMinutes bounds a delay to one year.
const MaxMinutes = 365 * 24 * 60

var (
	ErrNegativeDelay = errors.New("negative reminder delay")
	ErrDelayTooLong  = errors.New("reminder delay longer than a year")
)

// Persister is the part of the store the scheduler needs.
type Persister interface {
	LoadReminders() ([]store.Reminder, error)
	SaveReminders([]store.Reminder) error
}

type Scheduler struct {
	store Persister
	now   func() time.Time
	queue []store.Reminder
}

// New loads the persisted queue. now defaults to time.Now.
func New(st Persister, now func() time.Time) (*Scheduler, error) {
	if now == nil {
		now = time.Now
	}

	queue, err := st.LoadReminders()
	if err != nil {
		return nil, fmt.Errorf("load reminders: %w", err)
	}

	log.Debug("Loaded reminders", "pending", len(queue))

	return &Scheduler{store: st, now: now, queue: queue}, nil
}

// Schedule queues task to fire minutes from now, at minute resolution, and
// returns the spoken confirmation.
func (s *Scheduler) Schedule(task string, minutes int) (string, error) {
	if minutes < 0 {
		return "", ErrNegativeDelay
	}
	if minutes > MaxMinutes {
		return "", ErrDelayTooLong
	}

	now := s.now()
	due := now.Truncate(time.Minute).Add(time.Duration(minutes) * time.Minute)
	s.queue = append(s.queue, store.Reminder{Task: task, DueAt: due})
	s.persist()

	log.Info("Reminder scheduled", "task", task, "due", due.Format(time.DateTime))

	return fmt.Sprintf("Certo, vou te lembrar de %s %s.", task, spokenDue(now, due)), nil
}

// spokenDue names the date only when the reminder falls on another day.
func spokenDue(now, due time.Time) string {
	y1, m1, d1 := now.Date()
	y2, m2, d2 := due.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return "às " + due.Format("15:04")
	}
	return "em " + due.Format("02/01 às 15:04")
}

// PollDue removes and returns the first reminder in stored order whose minute
// has been reached. Overdue reminders are delivered late, never dropped.
func (s *Scheduler) PollDue() (string, bool) {
	current := s.now().Truncate(time.Minute)

	for i, r := range s.queue {
		if r.DueAt.After(current) {
			continue
		}

		s.queue = append(s.queue[:i:i], s.queue[i+1:]...)
		s.persist()

		log.Info("Reminder due", "task", r.Task, "due", r.DueAt.Format("15:04"))
		return r.Task, true
	}

	return "", false
}

// Pending returns a copy of the queue.
func (s *Scheduler) Pending() []store.Reminder {
	return append([]store.Reminder(nil), s.queue...)
}

// persist writes after mutating; a failed write keeps the in-memory queue so
// delivery still happens while the process runs.
func (s *Scheduler) persist() {
	if err := s.store.SaveReminders(s.queue); err != nil {
		log.Error("Failed to persist reminders", "pending", len(s.queue), "err", err)
	}
}

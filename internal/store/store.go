// Package store persists the conversation memory and the reminder queue as two
// independent records. Every save fully replaces the previous content.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultMemoryRecord    = "memoria.json"
	DefaultRemindersRecord = "lembretes.yaml"
)

// Reminder is a pending task with a minute-resolution due time.
type Reminder struct {
	Task  string    `yaml:"task"`
	DueAt time.Time `yaml:"due_at"`
}

type memoryRecord struct {
	Token   json.RawMessage `json:"token"`
	SavedAt time.Time       `json:"saved_at"`
}

type Store struct {
	backend   Backend
	memory    string
	reminders string
}

func New(backend Backend, memoryRecord, remindersRecord string) *Store {
	if memoryRecord == "" {
		memoryRecord = DefaultMemoryRecord
	}
	if remindersRecord == "" {
		remindersRecord = DefaultRemindersRecord
	}
	return &Store{
		backend:   backend,
		memory:    memoryRecord,
		reminders: remindersRecord,
	}
}

// LoadMemory returns the saved continuation token, or nil when the record is
// missing or unreadable. A broken record starts a fresh session.
func (s *Store) LoadMemory() []byte {
	data, err := s.backend.Read(s.memory)
	if err != nil {
		if !errors.Is(err, ErrNoRecord) {
			log.Warn("Failed to read memory, starting fresh", "record", s.memory, "err", err)
		}
		return nil
	}

	var rec memoryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		log.Warn("Corrupt memory record, starting fresh", "record", s.memory, "err", err)
		return nil
	}
	if len(rec.Token) == 0 || string(rec.Token) == "null" {
		return nil
	}

	return []byte(rec.Token)
}

// SaveMemory overwrites the memory record. A nil token is stored as null.
func (s *Store) SaveMemory(token []byte) error {
	rec := memoryRecord{SavedAt: time.Now().UTC().Truncate(time.Second)}
	if len(token) > 0 {
		if !json.Valid(token) {
			return fmt.Errorf("memory token is not valid json")
		}
		rec.Token = json.RawMessage(token)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal memory: %w", err)
	}
	if err := s.backend.Write(s.memory, data); err != nil {
		return fmt.Errorf("save memory: %w", err)
	}
	return nil
}

// LoadReminders returns the stored queue. A missing record is an empty queue;
// an unparsable one is an error so that it is never silently overwritten.
func (s *Store) LoadReminders() ([]Reminder, error) {
	data, err := s.backend.Read(s.reminders)
	if err != nil {
		if errors.Is(err, ErrNoRecord) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reminders: %w", err)
	}

	var out []Reminder
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse reminders %s: %w", s.reminders, err)
	}
	return out, nil
}

func (s *Store) SaveReminders(reminders []Reminder) error {
	out := make([]Reminder, len(reminders))
	for i, r := range reminders {
		out[i] = Reminder{Task: r.Task, DueAt: r.DueAt.Truncate(time.Minute)}
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal reminders: %w", err)
	}
	if err := s.backend.Write(s.reminders, data); err != nil {
		return fmt.Errorf("save reminders: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.backend.Close()
}

package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrNoRecord = errors.New("record not found")

// Backend reads and fully overwrites named records.
type Backend interface {
	Read(name string) ([]byte, error)
	Write(name string, data []byte) error
	Close() error
}

// FileBackend keeps every record in its own file under Dir.
type FileBackend struct {
	Dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, errors.New("empty data dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileBackend{Dir: dir}, nil
}

func (b *FileBackend) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(b.Dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoRecord
		}
		return nil, err
	}
	return data, nil
}

// Write replaces the record through a temp file and a rename so a crash
// leaves either the old or the new content.
func (b *FileBackend) Write(name string, data []byte) error {
	tmp, err := os.CreateTemp(b.Dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}

	return os.Rename(tmp.Name(), filepath.Join(b.Dir, name))
}

func (b *FileBackend) Close() error { return nil }

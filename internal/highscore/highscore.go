// Package highscore persists the best interaction count across sessions.
package highscore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Store loads and saves the high score
type Store interface {
	Load() (int, error)
	Save(score int) error
}

// record is the on-disk layout
type record struct {
	HighScore int       `toml:"high_score"`
	UpdatedAt time.Time `toml:"updated_at"`
}

// FileStore keeps the high score in a TOML file
type FileStore struct {
	path string
	now  func() time.Time
}

// NewFileStore creates a store backed by path. The file is created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// Path returns the backing file
func (s *FileStore) Path() string { return s.path }

// Load returns the stored high score, or 0 if nothing was saved yet
func (s *FileStore) Load() (int, error) {
	r, err := s.read()
	if err != nil {
		return 0, err
	}
	return r.HighScore, nil
}

// UpdatedAt returns when the high score was last saved
func (s *FileStore) UpdatedAt() (time.Time, error) {
	r, err := s.read()
	if err != nil {
		return time.Time{}, err
	}
	return r.UpdatedAt, nil
}

func (s *FileStore) read() (record, error) {
	var r record
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return r, fmt.Errorf("failed to read high score: %w", err)
	}
	if err := toml.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("failed to parse high score: %w", err)
	}
	if r.HighScore < 0 {
		r.HighScore = 0
	}
	return r, nil
}

// Save writes the high score atomically
func (s *FileStore) Save(score int) error {
	data, err := toml.Marshal(record{HighScore: score, UpdatedAt: s.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal high score: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write high score: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace high score: %w", err)
	}
	return nil
}

// Reset deletes the stored high score
func (s *FileStore) Reset() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove high score: %w", err)
	}
	return nil
}

// MemoryStore keeps the high score in memory. Used for headless runs and tests.
type MemoryStore struct {
	Score int
	Saves int
	Err   error // Returned by Save when set
}

// Load returns the in-memory score
func (m *MemoryStore) Load() (int, error) { return m.Score, nil }

// Save records score unless Err is set
func (m *MemoryStore) Save(score int) error {
	if m.Err != nil {
		return m.Err
	}
	m.Score = score
	m.Saves++
	return nil
}

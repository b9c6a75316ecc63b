package highscore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_MissingFileIsZero(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "highscore.toml"))
	score, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, score)
}

func TestFileStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "highscore.toml")
	s := NewFileStore(path)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.Save(42))

	score, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 42, score)

	at, err := s.UpdatedAt()
	require.NoError(t, err)
	assert.True(t, fixed.Equal(at))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "high_score = 42")

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "highscore.toml")
	require.NoError(t, os.WriteFile(path, []byte("high_score = [oops"), 0644))

	_, err := NewFileStore(path).Load()
	assert.Error(t, err)
}

func TestFileStore_NegativeClampedToZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "highscore.toml")
	require.NoError(t, os.WriteFile(path, []byte("high_score = -3\n"), 0644))

	score, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 0, score)
}

func TestFileStore_Reset(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "highscore.toml"))
	require.NoError(t, s.Save(7))
	require.NoError(t, s.Reset())
	require.NoError(t, s.Reset(), "reset of a missing file is fine")

	score, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, score)
}

func TestMemoryStore(t *testing.T) {
	var s Store = &MemoryStore{Score: 3}
	score, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 3, score)

	require.NoError(t, s.Save(5))
	assert.Equal(t, 5, s.(*MemoryStore).Score)
	assert.Equal(t, 1, s.(*MemoryStore).Saves)
}

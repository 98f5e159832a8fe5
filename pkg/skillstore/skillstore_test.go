package skillstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad(t *testing.T) {
	store := NewStore(t.TempDir())

	def := &Definition{
		Description: "Writes long-form articles",
		Version:     "1.2.3",
		CorePrompt:  "You are a writer.",
		Modules: map[string]string{
			"validation": "v2",
			"output":     "v1",
		},
		FitnessHistory: []HistoryRecord{
			{Timestamp: "2026-08-01T10:00:00Z", Mutation: "validation: v1 → v2"},
		},
	}

	require.NoError(t, store.Save("writer", def))
	require.True(t, store.Exists("writer"))

	loaded, err := store.Load("writer")
	require.NoError(t, err)
	assert.Equal(t, def, loaded)
}

func TestLoadMissingReturnsErrNotFound(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Load("ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "ghost")
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("modules: [oops"), 0o644))

	_, err := store.Load("bad")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestLoadInitializesModulesMap(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bare.yaml"), []byte("description: bare\nversion: 1.0.0\n"), 0o644))

	def, err := store.Load("bare")
	require.NoError(t, err)
	assert.NotNil(t, def.Modules)
	assert.Empty(t, def.Modules)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, store.Save("writer", &Definition{Version: "1.0.0", Modules: map[string]string{}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "writer.yaml", entries[0].Name())
}

func TestList(t *testing.T) {
	store := NewStore(t.TempDir())

	for _, name := range []string{"writer", "reviewer", "planner"} {
		require.NoError(t, store.Save(name, &Definition{Version: "1.0.0", Modules: map[string]string{}}))
	}

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"planner", "reviewer", "writer"}, names)
}

func TestListEmptyDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "does-not-exist"))

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

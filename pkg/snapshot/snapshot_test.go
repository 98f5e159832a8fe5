package snapshot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/darwinhq/darwin/pkg/evaluator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *evaluator.Report {
	return &evaluator.Report{
		TotalInvocations: 42,
		Skills: []evaluator.SkillFitness{
			{Skill: "writer", Fitness: 0.30, Invocations: 12},
			{Skill: "reviewer", Fitness: 0.82, Invocations: 30},
		},
	}
}

func TestISOWeek(t *testing.T) {
	assert.Equal(t, "2026-W36", ISOWeek(time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)))
	// Jan 1st can belong to the previous ISO year
	assert.Equal(t, "2020-W53", ISOWeek(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSaveAndLoad(t *testing.T) {
	store := NewStore(t.TempDir())
	store.now = func() time.Time {
		return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	}

	path, err := store.Save(context.Background(), sampleReport(), "run-1234")
	require.NoError(t, err)
	assert.Equal(t, "2026-W36.json", filepath.Base(path))

	snap, err := store.Load("2026-W36")
	require.NoError(t, err)

	assert.Equal(t, 42, snap.TotalInvocations)
	assert.Len(t, snap.Skills, 2)
	assert.Equal(t, "2026-08-31T12:00:00Z", snap.SnapshotTime)
	assert.Equal(t, "run-1234", snap.RunID)
}

func TestSaveOverwritesSameWeek(t *testing.T) {
	store := NewStore(t.TempDir())
	store.now = func() time.Time {
		return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	}

	_, err := store.Save(context.Background(), sampleReport(), "run-1")
	require.NoError(t, err)
	_, err = store.Save(context.Background(), sampleReport(), "run-2")
	require.NoError(t, err)

	snap, err := store.Load("2026-W36")
	require.NoError(t, err)
	assert.Equal(t, "run-2", snap.RunID)

	weeks, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-W36"}, weeks)
}

func TestLoadMissing(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.Load("2026-W01")
	assert.Error(t, err)
}

func TestListEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing"))
	weeks, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, weeks)
}

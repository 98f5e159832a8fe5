package changelog

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecorder(t *testing.T) *Recorder {
	t.Helper()
	r := NewRecorder(t.TempDir())
	r.now = func() time.Time {
		return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	}
	return r
}

func sampleMutation() Mutation {
	return Mutation{
		Kind:        "absorb",
		Module:      "validation",
		FromVersion: "v2",
		ToVersion:   "v3",
		Reason:      "Absorb from top performer /reviewer (fitness: 0.82)",
	}
}

func TestRecordSynthesizesHeader(t *testing.T) {
	r := testRecorder(t)

	newFitness := 0.55
	require.NoError(t, r.Record(context.Background(), "writer", "1.0.1", []Mutation{sampleMutation()}, 0.30, &newFitness))

	data, err := os.ReadFile(r.Path("writer"))
	require.NoError(t, err)
	content := string(data)

	assert.True(t, strings.HasPrefix(content, "# /writer Evolution Changelog\n"))
	assert.Contains(t, content, "## v1.0.1 (2026-08-31 12:00 UTC)")
	assert.Contains(t, content, "**Fitness:** 0.30 → 0.55 (+0.25)")
	assert.Contains(t, content, "- `validation`: v2 → v3 (absorb)")
	assert.Contains(t, content, "  - Reason: Absorb from top performer /reviewer (fitness: 0.82)")
	assert.Contains(t, content, "\n---\n")
}

func TestRecordPrependsNewestFirst(t *testing.T) {
	r := testRecorder(t)
	ctx := context.Background()

	require.NoError(t, r.Record(ctx, "writer", "1.0.1", []Mutation{sampleMutation()}, 0.30, nil))
	require.NoError(t, r.Record(ctx, "writer", "1.0.2", []Mutation{sampleMutation()}, 0.35, nil))

	data, err := os.ReadFile(r.Path("writer"))
	require.NoError(t, err)
	content := string(data)

	headerIdx := strings.Index(content, "# /writer Evolution Changelog")
	secondIdx := strings.Index(content, "## v1.0.2")
	firstIdx := strings.Index(content, "## v1.0.1")

	require.NotEqual(t, -1, headerIdx)
	require.NotEqual(t, -1, secondIdx)
	require.NotEqual(t, -1, firstIdx)
	assert.Less(t, headerIdx, secondIdx, "header stays on top")
	assert.Less(t, secondIdx, firstIdx, "newest entry comes first")
}

func TestRecordNegativeDelta(t *testing.T) {
	r := testRecorder(t)

	newFitness := 0.20
	require.NoError(t, r.Record(context.Background(), "writer", "1.0.1", []Mutation{sampleMutation()}, 0.30, &newFitness))

	data, err := os.ReadFile(r.Path("writer"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "**Fitness:** 0.30 → 0.20 (-0.10)")
}

func TestRecordWithoutNewFitness(t *testing.T) {
	r := testRecorder(t)

	require.NoError(t, r.Record(context.Background(), "writer", "1.0.1", []Mutation{sampleMutation()}, 0.30, nil))

	data, err := os.ReadFile(r.Path("writer"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "**Fitness:** 0.30\n")
	assert.NotContains(t, string(data), "0.30 →")
}

// Package snapshot persists dated evaluation reports, one JSON document
// per ISO week, for trend analysis across evolution cycles.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/darwinhq/darwin/pkg/evaluator"
	"github.com/darwinhq/darwin/pkg/logger"
	"github.com/pkg/errors"
)

// Snapshot is a persisted evaluation report plus capture metadata
type Snapshot struct {
	TotalInvocations int                      `json:"total_invocations"`
	Skills           []evaluator.SkillFitness `json:"skills"`
	SnapshotTime     string                   `json:"snapshot_time"`
	RunID            string                   `json:"run_id,omitempty"`
}

// Store reads and writes weekly snapshots under a single directory
type Store struct {
	dir string
	now func() time.Time
}

// NewStore creates a snapshot store rooted at dir
func NewStore(dir string) *Store {
	return &Store{
		dir: dir,
		now: time.Now,
	}
}

// ISOWeek formats a time as the snapshot key, e.g. "2026-W35"
func ISOWeek(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Save persists the report keyed by the current ISO week and returns the
// snapshot file path. A snapshot written twice in one week is overwritten;
// the latest capture wins.
func (s *Store) Save(ctx context.Context, report *evaluator.Report, runID string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create evaluations directory '%s'", s.dir)
	}

	captured := s.now().UTC()
	snap := Snapshot{
		TotalInvocations: report.TotalInvocations,
		Skills:           report.Skills,
		SnapshotTime:     captured.Format("2006-01-02T15:04:05Z"),
		RunID:            runID,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal snapshot")
	}

	path := filepath.Join(s.dir, ISOWeek(captured)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write snapshot '%s'", path)
	}

	logger.G(ctx).WithField("snapshot", path).Info("Evaluation snapshot saved")

	return path, nil
}

// Load reads the snapshot for an ISO week key, e.g. "2026-W35"
func (s *Store) Load(week string) (*Snapshot, error) {
	path := filepath.Join(s.dir, week+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read snapshot '%s'", path)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrapf(err, "failed to parse snapshot '%s'", path)
	}

	return &snap, nil
}

// List returns the ISO week keys of all stored snapshots, sorted
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to list snapshots in '%s'", s.dir)
	}

	var weeks []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		weeks = append(weeks, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(weeks)

	return weeks, nil
}

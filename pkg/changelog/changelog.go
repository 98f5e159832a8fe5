// Package changelog records human-readable evolution history, one
// markdown document per skill with the newest entry first.
package changelog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/darwinhq/darwin/pkg/logger"
	"github.com/pkg/errors"
)

// Mutation is one applied mutation to record in a changelog entry
type Mutation struct {
	Kind        string
	Module      string
	FromVersion string
	ToVersion   string
	Reason      string
}

// Recorder writes per-skill changelog documents
type Recorder struct {
	dir string
	now func() time.Time
}

// NewRecorder creates a recorder writing under dir
func NewRecorder(dir string) *Recorder {
	return &Recorder{
		dir: dir,
		now: time.Now,
	}
}

// Path returns the changelog file path for a skill
func (r *Recorder) Path(skillName string) string {
	return filepath.Join(r.dir, skillName+".md")
}

// Record prepends a dated entry for the given mutations. A header is
// synthesized the first time a skill's changelog is written. newFitness
// is optional; when present the entry shows the signed fitness delta.
func (r *Recorder) Record(ctx context.Context, skillName, version string, mutations []Mutation, oldFitness float64, newFitness *float64) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create changelogs directory '%s'", r.dir)
	}

	path := r.Path(skillName)

	content := fmt.Sprintf("# /%s Evolution Changelog\n\n", skillName)
	if data, err := os.ReadFile(path); err == nil {
		content = string(data)
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to read changelog '%s'", path)
	}

	entry := r.renderEntry(version, mutations, oldFitness, newFitness)

	// Prepend the entry before the first existing section so the log
	// reads newest-first.
	if idx := strings.Index(content, "\n## "); idx != -1 {
		content = content[:idx] + entry + content[idx:]
	} else {
		content = content + entry
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write changelog '%s'", path)
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"skill":     skillName,
		"mutations": len(mutations),
	}).Debug("Changelog entry recorded")

	return nil
}

func (r *Recorder) renderEntry(version string, mutations []Mutation, oldFitness float64, newFitness *float64) string {
	var b strings.Builder

	timestamp := r.now().UTC().Format("2006-01-02 15:04 UTC")
	fmt.Fprintf(&b, "\n## v%s (%s)\n\n", version, timestamp)

	fmt.Fprintf(&b, "**Fitness:** %.2f", oldFitness)
	if newFitness != nil {
		fmt.Fprintf(&b, " → %.2f (%+.2f)", *newFitness, *newFitness-oldFitness)
	}
	b.WriteString("\n\n")

	b.WriteString("**Mutations:**\n")
	for _, m := range mutations {
		fmt.Fprintf(&b, "- `%s`: %s → %s (%s)\n", m.Module, m.FromVersion, m.ToVersion, m.Kind)
		fmt.Fprintf(&b, "  - Reason: %s\n", m.Reason)
	}

	b.WriteString("\n---\n")

	return b.String()
}

package evolution

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/darwinhq/darwin/pkg/logger"
	"github.com/darwinhq/darwin/pkg/skillstore"
	"github.com/pkg/errors"
)

// ApplyResult describes a committed mutation
type ApplyResult struct {
	Skill       string
	Module      string
	FromVersion string
	ToVersion   string
	NewVersion  string
	Descriptor  string
}

// Applier commits suggestions to persisted skill definitions
type Applier struct {
	store *skillstore.Store
	now   func() time.Time
}

// NewApplier creates an applier backed by the given store
func NewApplier(store *skillstore.Store) *Applier {
	return &Applier{
		store: store,
		now:   time.Now,
	}
}

// Apply mutates a skill's definition: sets the module version, bumps the
// patch component of the semantic version, and appends a history record,
// then rewrites the whole document. The definition is either fully
// rewritten or left untouched.
func (a *Applier) Apply(ctx context.Context, skillName, moduleType, newVersion string) (*ApplyResult, error) {
	def, err := a.store.Load(skillName)
	if err != nil {
		return nil, err
	}

	oldVersion, ok := def.Modules[moduleType]
	if !ok || oldVersion == "" {
		oldVersion = "unknown"
	}
	def.Modules[moduleType] = newVersion

	bumped, err := bumpPatch(def.Version)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to bump version for skill '%s'", skillName)
	}
	def.Version = bumped

	descriptor := FormatMutation(moduleType, oldVersion, newVersion)
	def.FitnessHistory = append(def.FitnessHistory, skillstore.HistoryRecord{
		Timestamp: a.now().UTC().Format("2006-01-02T15:04:05Z"),
		Mutation:  descriptor,
	})

	if err := a.store.Save(skillName, def); err != nil {
		return nil, err
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"skill":   skillName,
		"module":  moduleType,
		"from":    oldVersion,
		"to":      newVersion,
		"version": def.Version,
	}).Info("Mutation applied")

	return &ApplyResult{
		Skill:       skillName,
		Module:      moduleType,
		FromVersion: oldVersion,
		ToVersion:   newVersion,
		NewVersion:  def.Version,
		Descriptor:  descriptor,
	}, nil
}

// bumpPatch increments the trailing dot-separated numeric component of a
// semantic version. Major and minor are never touched here.
func bumpPatch(version string) (string, error) {
	if version == "" {
		version = "1.0.0"
	}

	parts := strings.Split(version, ".")
	patch, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return "", errors.Errorf("malformed version '%s'", version)
	}

	parts[len(parts)-1] = strconv.Itoa(patch + 1)
	return strings.Join(parts, "."), nil
}

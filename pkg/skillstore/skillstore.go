// Package skillstore persists skill definitions: one YAML document per
// skill holding its module selection, semantic version, and mutation
// history. Writes always rewrite the whole document through a temp file
// so a definition is either fully updated or left untouched.
package skillstore

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrNotFound indicates a skill definition document is missing
var ErrNotFound = errors.New("skill definition not found")

// HistoryRecord is one applied mutation in a skill's fitness history.
// The descriptor keeps the "<module>: <old> → <new>" encoding of the
// on-disk format; insertion order is significant.
type HistoryRecord struct {
	Timestamp string `yaml:"timestamp"`
	Mutation  string `yaml:"mutation"`
}

// Definition is the persisted record for a single skill
type Definition struct {
	Description    string            `yaml:"description"`
	Version        string            `yaml:"version"`
	CorePrompt     string            `yaml:"core_prompt,omitempty"`
	Modules        map[string]string `yaml:"modules"`
	FitnessHistory []HistoryRecord   `yaml:"fitness_history,omitempty"`
	LastCompiled   string            `yaml:"last_compiled,omitempty"`
}

// Store reads and writes skill definitions under a single directory
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's root directory
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the definition file path for a skill
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".yaml")
}

// Exists reports whether a definition document exists for the skill
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// Load reads the definition for a skill, returning ErrNotFound when the
// document is absent
func (s *Store) Load(name string) (*Definition, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "skill '%s'", name)
		}
		return nil, errors.Wrapf(err, "failed to read skill definition '%s'", name)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, errors.Wrapf(err, "failed to parse skill definition '%s'", name)
	}

	if def.Modules == nil {
		def.Modules = map[string]string{}
	}

	return &def, nil
}

// Save rewrites the full definition document for a skill. The write goes
// through a temp file and rename so readers never observe a partial write.
func (s *Store) Save(name string, def *Definition) error {
	data, err := yaml.Marshal(def)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal skill definition '%s'", name)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create skills directory '%s'", s.dir)
	}

	tmp, err := os.CreateTemp(s.dir, name+"-*.yaml.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to write skill definition '%s'", name)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to close temp file for '%s'", name)
	}

	if err := os.Rename(tmpName, s.Path(name)); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to persist skill definition '%s'", name)
	}

	return nil
}

// List returns the names of all skill definitions in the store, sorted
func (s *Store) List() ([]string, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(s.dir, "*.yaml"))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list skill definitions in '%s'", s.dir)
	}

	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(match), ".yaml"))
	}
	sort.Strings(names)

	return names, nil
}

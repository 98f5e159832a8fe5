// Package registry loads the module registry document: the catalog of
// reusable prompt fragments, keyed by module type and version label.
// Fragment text is opaque to the evolution engine; only the compiler
// interprets it.
package registry

import (
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Variant is a single registered version of a module fragment
type Variant struct {
	Prompt string `yaml:"prompt"`
}

// Registry maps module type -> version label -> fragment
type Registry struct {
	Modules map[string]map[string]Variant `yaml:"modules"`
}

// Load reads and parses the registry document at path
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read module registry '%s'", path)
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse module registry '%s'", path)
	}

	if reg.Modules == nil {
		reg.Modules = map[string]map[string]Variant{}
	}

	return &reg, nil
}

// Variants returns the version labels registered for a module type,
// sorted for deterministic iteration
func (r *Registry) Variants(moduleType string) []string {
	module, ok := r.Modules[moduleType]
	if !ok {
		return nil
	}

	variants := make([]string, 0, len(module))
	for version := range module {
		variants = append(variants, version)
	}
	sort.Strings(variants)

	return variants
}

// Types returns all registered module types, sorted
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.Modules))
	for moduleType := range r.Modules {
		types = append(types, moduleType)
	}
	sort.Strings(types)

	return types
}

// Prompt returns the fragment text for a module type and version
func (r *Registry) Prompt(moduleType, version string) (string, bool) {
	module, ok := r.Modules[moduleType]
	if !ok {
		return "", false
	}

	variant, ok := module[version]
	if !ok {
		return "", false
	}

	return variant.Prompt, true
}

package evolution

import (
	"fmt"
	"sort"

	"github.com/darwinhq/darwin/pkg/registry"
	"github.com/darwinhq/darwin/pkg/skillstore"
)

// Kind distinguishes the two mutation strategies
type Kind string

const (
	// KindAbsorb copies a module version from a top performer
	KindAbsorb Kind = "absorb"
	// KindMutate tries an alternative registered version
	KindMutate Kind = "mutate"
)

// Suggestion is a transient candidate mutation. It is never persisted;
// only applied mutations reach the history and changelog.
type Suggestion struct {
	Kind        Kind
	Skill       string
	Module      string
	FromVersion string
	ToVersion   string
	Reason      string
}

// Performer is a top-performing skill whose module selection can be
// absorbed by underperformers
type Performer struct {
	Skill   string
	Fitness float64
	Modules map[string]string
}

// SuggestMutations produces the ordered candidate list for a skill.
// Absorb candidates come first, visiting performers in caller order;
// duplicates across donors are intentionally preserved. Mutate candidates
// follow, deduplicated only against the absorb pass. Healthy and
// top-performing skills never get suggestions. An empty result for an
// underperformer means its variants are exhausted, which is a valid
// terminal state.
func SuggestMutations(skillName string, def *skillstore.Definition, fitness float64, reg *registry.Registry, topPerformers []Performer) []Suggestion {
	if !Classify(fitness).NeedsEvolution() {
		return nil
	}

	recentlyTried := RecentlyTried(def.FitnessHistory)

	var suggestions []Suggestion
	absorbed := make(map[string]struct{})

	for _, top := range topPerformers {
		for _, moduleType := range sortedKeys(top.Modules) {
			topVersion := top.Modules[moduleType]
			if _, tried := recentlyTried[variantKey(moduleType, topVersion)]; tried {
				continue
			}
			if def.Modules[moduleType] == topVersion {
				continue
			}

			fromVersion := def.Modules[moduleType]
			if fromVersion == "" {
				fromVersion = "unknown"
			}

			suggestions = append(suggestions, Suggestion{
				Kind:        KindAbsorb,
				Skill:       skillName,
				Module:      moduleType,
				FromVersion: fromVersion,
				ToVersion:   topVersion,
				Reason:      fmt.Sprintf("Absorb from top performer /%s (fitness: %.2f)", top.Skill, top.Fitness),
			})
			absorbed[variantKey(moduleType, topVersion)] = struct{}{}
		}
	}

	for _, moduleType := range sortedKeys(def.Modules) {
		currentVersion := def.Modules[moduleType]
		for _, variant := range reg.Variants(moduleType) {
			if variant == currentVersion {
				continue
			}
			if _, tried := recentlyTried[variantKey(moduleType, variant)]; tried {
				continue
			}
			if _, seen := absorbed[variantKey(moduleType, variant)]; seen {
				continue
			}

			suggestions = append(suggestions, Suggestion{
				Kind:        KindMutate,
				Skill:       skillName,
				Module:      moduleType,
				FromVersion: currentVersion,
				ToVersion:   variant,
				Reason:      "Try alternative variant (not recently tried)",
			})
		}
	}

	return suggestions
}

// TopSuggestion picks the suggestion an automated apply should commit:
// the first absorb candidate when one exists, otherwise the first overall
func TopSuggestion(suggestions []Suggestion) (Suggestion, bool) {
	if len(suggestions) == 0 {
		return Suggestion{}, false
	}

	for _, s := range suggestions {
		if s.Kind == KindAbsorb {
			return s, true
		}
	}

	return suggestions[0], true
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

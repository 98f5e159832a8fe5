package evolution

import (
	"testing"

	"github.com/darwinhq/darwin/pkg/registry"
	"github.com/darwinhq/darwin/pkg/skillstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *registry.Registry {
	return &registry.Registry{
		Modules: map[string]map[string]registry.Variant{
			"validation": {
				"v1": {Prompt: "strict"},
				"v2": {Prompt: "lenient"},
				"v3": {Prompt: "suggest fixes"},
			},
			"output": {
				"v1": {Prompt: "markdown"},
				"v2": {Prompt: "plain"},
			},
		},
	}
}

func TestNoSuggestionsForSuccessfulSkills(t *testing.T) {
	def := &skillstore.Definition{Modules: map[string]string{"validation": "v1"}}
	performers := []Performer{{Skill: "reviewer", Fitness: 0.9, Modules: map[string]string{"validation": "v3"}}}

	for _, fitness := range []float64{0.50, 0.69, 0.70, 1.0} {
		assert.Empty(t, SuggestMutations("writer", def, fitness, testRegistry(), performers), "fitness %v", fitness)
	}
}

func TestAbsorbBeforeMutate(t *testing.T) {
	def := &skillstore.Definition{Modules: map[string]string{"validation": "v2"}}
	performers := []Performer{{Skill: "reviewer", Fitness: 0.82, Modules: map[string]string{"validation": "v3"}}}

	suggestions := SuggestMutations("writer", def, 0.30, testRegistry(), performers)
	require.NotEmpty(t, suggestions)

	first := suggestions[0]
	assert.Equal(t, KindAbsorb, first.Kind)
	assert.Equal(t, "validation", first.Module)
	assert.Equal(t, "v2", first.FromVersion)
	assert.Equal(t, "v3", first.ToVersion)
	assert.Contains(t, first.Reason, "/reviewer")
	assert.Contains(t, first.Reason, "0.82")

	// Mutate candidates follow the absorb block
	for i, s := range suggestions {
		if s.Kind == KindMutate {
			for _, later := range suggestions[i:] {
				assert.Equal(t, KindMutate, later.Kind, "absorb suggestions must precede mutate suggestions")
			}
			break
		}
	}
}

func TestAbsorbSkipsMatchingVersion(t *testing.T) {
	def := &skillstore.Definition{Modules: map[string]string{"validation": "v3"}}
	performers := []Performer{{Skill: "reviewer", Fitness: 0.82, Modules: map[string]string{"validation": "v3"}}}

	suggestions := SuggestMutations("writer", def, 0.30, testRegistry(), performers)
	for _, s := range suggestions {
		assert.NotEqual(t, KindAbsorb, s.Kind, "a donor matching the current version has nothing to absorb")
	}
}

func TestRecentlyTriedNeverResuggested(t *testing.T) {
	def := &skillstore.Definition{
		Modules: map[string]string{"validation": "v2"},
		FitnessHistory: []skillstore.HistoryRecord{
			{Mutation: "validation: v2 → v3"},
		},
	}
	performers := []Performer{{Skill: "reviewer", Fitness: 0.82, Modules: map[string]string{"validation": "v3"}}}

	suggestions := SuggestMutations("writer", def, 0.30, testRegistry(), performers)
	for _, s := range suggestions {
		assert.NotEqual(t, "validation:v3", s.Module+":"+s.ToVersion, "recently tried pairs must not reappear")
	}
}

func TestCrossDonorDuplicatesPreserved(t *testing.T) {
	def := &skillstore.Definition{Modules: map[string]string{"validation": "v1"}}
	performers := []Performer{
		{Skill: "reviewer", Fitness: 0.90, Modules: map[string]string{"validation": "v3"}},
		{Skill: "planner", Fitness: 0.75, Modules: map[string]string{"validation": "v2"}},
	}

	suggestions := SuggestMutations("writer", def, 0.30, testRegistry(), performers)

	var absorbs []Suggestion
	for _, s := range suggestions {
		if s.Kind == KindAbsorb {
			absorbs = append(absorbs, s)
		}
	}
	require.Len(t, absorbs, 2, "later donors may re-suggest the same module type with a different version")
	assert.Equal(t, "v3", absorbs[0].ToVersion)
	assert.Equal(t, "v2", absorbs[1].ToVersion)
}

func TestMutatePassDedupsAgainstAbsorbOnly(t *testing.T) {
	def := &skillstore.Definition{Modules: map[string]string{"validation": "v1"}}
	performers := []Performer{{Skill: "reviewer", Fitness: 0.90, Modules: map[string]string{"validation": "v3"}}}

	suggestions := SuggestMutations("writer", def, 0.30, testRegistry(), performers)

	seen := map[string]int{}
	for _, s := range suggestions {
		seen[string(s.Kind)+"/"+s.Module+":"+s.ToVersion]++
	}
	assert.Equal(t, 1, seen["absorb/validation:v3"])
	assert.Equal(t, 0, seen["mutate/validation:v3"], "the absorb pair must not be re-proposed as a mutate")
	assert.Equal(t, 1, seen["mutate/validation:v2"])
}

func TestMutateSkipsCurrentVersion(t *testing.T) {
	def := &skillstore.Definition{Modules: map[string]string{"output": "v1"}}

	suggestions := SuggestMutations("writer", def, 0.30, testRegistry(), nil)
	require.Len(t, suggestions, 1)
	assert.Equal(t, KindMutate, suggestions[0].Kind)
	assert.Equal(t, "v2", suggestions[0].ToVersion)
}

func TestExhaustedVariantsIsTerminal(t *testing.T) {
	def := &skillstore.Definition{
		Modules: map[string]string{"output": "v1"},
		FitnessHistory: []skillstore.HistoryRecord{
			{Mutation: "output: v1 → v2"},
		},
	}

	suggestions := SuggestMutations("writer", def, 0.30, testRegistry(), nil)
	assert.Empty(t, suggestions, "an exhausted skill gets no forced suggestion")
}

func TestAbsorbFromUnsetModule(t *testing.T) {
	def := &skillstore.Definition{Modules: map[string]string{}}
	performers := []Performer{{Skill: "reviewer", Fitness: 0.82, Modules: map[string]string{"validation": "v3"}}}

	suggestions := SuggestMutations("writer", def, 0.30, testRegistry(), performers)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "unknown", suggestions[0].FromVersion)
}

func TestTopSuggestion(t *testing.T) {
	t.Run("prefers absorb", func(t *testing.T) {
		suggestions := []Suggestion{
			{Kind: KindMutate, Module: "output", ToVersion: "v2"},
			{Kind: KindAbsorb, Module: "validation", ToVersion: "v3"},
		}
		top, ok := TopSuggestion(suggestions)
		require.True(t, ok)
		assert.Equal(t, KindAbsorb, top.Kind)
	})

	t.Run("falls back to first", func(t *testing.T) {
		suggestions := []Suggestion{
			{Kind: KindMutate, Module: "output", ToVersion: "v2"},
			{Kind: KindMutate, Module: "output", ToVersion: "v3"},
		}
		top, ok := TopSuggestion(suggestions)
		require.True(t, ok)
		assert.Equal(t, "v2", top.ToVersion)
	})

	t.Run("empty", func(t *testing.T) {
		_, ok := TopSuggestion(nil)
		assert.False(t, ok)
	})
}

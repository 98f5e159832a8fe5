package compiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/darwinhq/darwin/pkg/skillstore"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestRegistry(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`modules:
  input:
    v1:
      prompt: "## Input\nParse the request."
  research:
    v1:
      prompt: "## Research\nGather sources."
  output:
    v1:
      prompt: "## Output\nRender markdown."
  workflow:
    v1:
      prompt: "## Workflow\nPlan, then write."
  validation:
    v2:
      prompt: "## Validation\nCheck the draft."
    v3:
      prompt: "## Validation\nCheck and fix the draft."
`), 0o644))
	return path
}

func newTestCompiler(t *testing.T) (*SkillCompiler, *skillstore.Store) {
	t.Helper()
	store := skillstore.NewStore(t.TempDir())
	c := New(store, writeTestRegistry(t), filepath.Join(t.TempDir(), "compiled"))
	c.now = func() time.Time {
		return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	}
	return c, store
}

func TestCompileAssemblesArtifact(t *testing.T) {
	c, store := newTestCompiler(t)

	require.NoError(t, store.Save("writer", &skillstore.Definition{
		Description: "Writes long-form articles",
		Version:     "1.2.3",
		CorePrompt:  "You are a writer.",
		Modules:     map[string]string{"validation": "v2"},
	}))

	require.NoError(t, c.Compile(context.Background(), "writer"))

	data, err := os.ReadFile(c.OutputPath("writer"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "description: Writes long-form articles")
	assert.Contains(t, content, "darwin_version: 1.2.3")
	assert.Contains(t, content, "validation: v2")
	assert.Contains(t, content, "input: v1")
	assert.Contains(t, content, "You are a writer.")
	assert.Contains(t, content, "Check the draft.")
	assert.Contains(t, content, "Plan, then write.")
}

func TestCompileStampsLastCompiled(t *testing.T) {
	c, store := newTestCompiler(t)

	require.NoError(t, store.Save("writer", &skillstore.Definition{
		Version: "1.0.0",
		Modules: map[string]string{},
	}))

	require.NoError(t, c.Compile(context.Background(), "writer"))

	def, err := store.Load("writer")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31T12:00:00Z", def.LastCompiled)
}

func TestCompileMissingSkill(t *testing.T) {
	c, _ := newTestCompiler(t)

	err := c.Compile(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, skillstore.ErrNotFound))
}

func TestCompileMissingRegistry(t *testing.T) {
	store := skillstore.NewStore(t.TempDir())
	c := New(store, filepath.Join(t.TempDir(), "missing.yaml"), t.TempDir())

	err := c.Compile(context.Background(), "writer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "module registry")
}

func TestCompileAll(t *testing.T) {
	c, store := newTestCompiler(t)

	for _, name := range []string{"writer", "reviewer"} {
		require.NoError(t, store.Save(name, &skillstore.Definition{
			Version: "1.0.0",
			Modules: map[string]string{},
		}))
	}

	compiled, err := c.CompileAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, compiled)

	for _, name := range []string{"writer", "reviewer"} {
		_, err := os.Stat(c.OutputPath(name))
		assert.NoError(t, err)
	}
}

func TestInspectRoundTrip(t *testing.T) {
	c, store := newTestCompiler(t)

	require.NoError(t, store.Save("writer", &skillstore.Definition{
		Description: "Writes long-form articles",
		Version:     "1.2.3",
		CorePrompt:  "You are a writer.",
		Modules:     map[string]string{"validation": "v3"},
	}))
	require.NoError(t, c.Compile(context.Background(), "writer"))

	info, err := Inspect(c.OutputPath("writer"))
	require.NoError(t, err)

	assert.Equal(t, "Writes long-form articles", info.Description)
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "v3", info.Modules["validation"])
	assert.Equal(t, "v1", info.Modules["input"])
}

func TestInspectMissingFrontmatter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.md")
	require.NoError(t, os.WriteFile(path, []byte("# Just markdown\n"), 0o644))

	_, err := Inspect(path)
	assert.Error(t, err)
}

func TestInspectMissingFile(t *testing.T) {
	_, err := Inspect(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}

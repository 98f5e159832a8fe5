// Package compiler assembles skill definitions into executable prompt
// artifacts. A compiled artifact is a markdown document whose YAML
// frontmatter records the definition version and the exact module
// versions it was assembled from.
package compiler

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/darwinhq/darwin/pkg/logger"
	"github.com/darwinhq/darwin/pkg/registry"
	"github.com/darwinhq/darwin/pkg/skillstore"
	"github.com/pkg/errors"
)

// Compiler is the port the evolution orchestrator uses to recompile a
// skill after a mutation
type Compiler interface {
	Compile(ctx context.Context, skillName string) error
}

// defaultVersions fill in module types a definition leaves unset
var defaultVersions = map[string]string{
	"input":      "v1",
	"research":   "v1",
	"structure":  "v1",
	"output":     "v1",
	"workflow":   "v1",
	"validation": "v3",
}

// promptOrder is the assembly order of module fragments in the artifact
// body. The structure module shapes the frontmatter only.
var promptOrder = []string{"input", "research", "output", "workflow", "validation"}

var artifactTemplate = template.Must(template.New("artifact").Parse(`---
description: {{ .Description }}
darwin_version: {{ .Version }}
darwin_modules:
  input: {{ index .Modules "input" }}
  research: {{ index .Modules "research" }}
  structure: {{ index .Modules "structure" }}
  output: {{ index .Modules "output" }}
  workflow: {{ index .Modules "workflow" }}
  validation: {{ index .Modules "validation" }}
---

{{ .CorePrompt }}
{{ range .Prompts }}
{{ . }}
{{ end }}`))

type artifactData struct {
	Description string
	Version     string
	Modules     map[string]string
	CorePrompt  string
	Prompts     []string
}

// SkillCompiler compiles skill definitions against a module registry
type SkillCompiler struct {
	store        *skillstore.Store
	registryPath string
	outputDir    string
	now          func() time.Time
}

// New creates a compiler reading definitions from store, resolving
// fragments from the registry at registryPath, and writing artifacts
// under outputDir
func New(store *skillstore.Store, registryPath, outputDir string) *SkillCompiler {
	return &SkillCompiler{
		store:        store,
		registryPath: registryPath,
		outputDir:    outputDir,
		now:          time.Now,
	}
}

// OutputPath returns the artifact path for a skill
func (c *SkillCompiler) OutputPath(skillName string) string {
	return filepath.Join(c.outputDir, skillName+".md")
}

// Compile assembles one skill and writes its artifact, then stamps
// last_compiled into the definition
func (c *SkillCompiler) Compile(ctx context.Context, skillName string) error {
	reg, err := registry.Load(c.registryPath)
	if err != nil {
		return err
	}

	return c.compileWithRegistry(ctx, skillName, reg)
}

// CompileAll compiles every skill in the store, returning the number of
// skills compiled. The registry is loaded once for the batch.
func (c *SkillCompiler) CompileAll(ctx context.Context) (int, error) {
	reg, err := registry.Load(c.registryPath)
	if err != nil {
		return 0, err
	}

	names, err := c.store.List()
	if err != nil {
		return 0, err
	}

	compiled := 0
	for _, name := range names {
		if err := c.compileWithRegistry(ctx, name, reg); err != nil {
			return compiled, errors.Wrapf(err, "failed to compile skill '%s'", name)
		}
		compiled++
	}

	return compiled, nil
}

func (c *SkillCompiler) compileWithRegistry(ctx context.Context, skillName string, reg *registry.Registry) error {
	def, err := c.store.Load(skillName)
	if err != nil {
		return err
	}

	versions := make(map[string]string, len(defaultVersions))
	for moduleType, fallback := range defaultVersions {
		versions[moduleType] = fallback
		if v, ok := def.Modules[moduleType]; ok && v != "" {
			versions[moduleType] = v
		}
	}

	prompts := make([]string, 0, len(promptOrder))
	for _, moduleType := range promptOrder {
		prompt, _ := reg.Prompt(moduleType, versions[moduleType])
		prompts = append(prompts, prompt)
	}

	var buf bytes.Buffer
	err = artifactTemplate.Execute(&buf, artifactData{
		Description: def.Description,
		Version:     def.Version,
		Modules:     versions,
		CorePrompt:  def.CorePrompt,
		Prompts:     prompts,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to assemble skill '%s'", skillName)
	}

	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create output directory '%s'", c.outputDir)
	}

	outputPath := c.OutputPath(skillName)
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write compiled skill '%s'", outputPath)
	}

	def.LastCompiled = c.now().UTC().Format("2006-01-02T15:04:05Z")
	if err := c.store.Save(skillName, def); err != nil {
		return err
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"skill":    skillName,
		"artifact": outputPath,
	}).Info("Skill compiled")

	return nil
}

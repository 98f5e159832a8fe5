// Package config resolves the directory layout and collaborator commands
// used by every darwin component. All paths live under a single base
// directory by default but can be overridden individually, which keeps
// test fixtures fully isolated.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds the resolved paths and collaborator commands for a darwin run
type Config struct {
	// BaseDir is the root of the darwin state directory (default ~/.darwin)
	BaseDir string
	// RegistryPath points at the module registry document
	RegistryPath string
	// SkillsDir holds one skill definition document per skill
	SkillsDir string
	// OutputDir receives compiled skill artifacts
	OutputDir string
	// ChangelogsDir holds one evolution changelog per skill
	ChangelogsDir string
	// EvaluationsDir holds ISO-week evaluation snapshots
	EvaluationsDir string
	// EvaluateCommand is the external evaluator invocation (argv form).
	// Empty means <BaseDir>/bin/evaluate.sh.
	EvaluateCommand []string
}

// New builds a Config rooted at baseDir with the standard layout
func New(baseDir string) *Config {
	return &Config{
		BaseDir:        baseDir,
		RegistryPath:   filepath.Join(baseDir, "modules", "registry.yaml"),
		SkillsDir:      filepath.Join(baseDir, "skills"),
		OutputDir:      filepath.Join(baseDir, "compiled"),
		ChangelogsDir:  filepath.Join(baseDir, "changelogs"),
		EvaluationsDir: filepath.Join(baseDir, "evaluations"),
	}
}

// FromViper resolves a Config from viper settings, falling back to
// ~/.darwin for anything not explicitly configured
func FromViper() (*Config, error) {
	baseDir := viper.GetString("base_dir")
	if baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get user home directory")
		}
		baseDir = filepath.Join(homeDir, ".darwin")
	}

	c := New(baseDir)

	if p := viper.GetString("registry"); p != "" {
		c.RegistryPath = p
	}
	if p := viper.GetString("skills_dir"); p != "" {
		c.SkillsDir = p
	}
	if p := viper.GetString("output_dir"); p != "" {
		c.OutputDir = p
	}
	if p := viper.GetString("changelogs_dir"); p != "" {
		c.ChangelogsDir = p
	}
	if p := viper.GetString("evaluations_dir"); p != "" {
		c.EvaluationsDir = p
	}
	if cmd := viper.GetStringSlice("evaluate_command"); len(cmd) > 0 {
		c.EvaluateCommand = cmd
	}

	return c, nil
}

// ResolveEvaluateCommand returns the evaluator argv, defaulting to the
// evaluate script shipped alongside the darwin state directory
func (c *Config) ResolveEvaluateCommand() []string {
	if len(c.EvaluateCommand) > 0 {
		return c.EvaluateCommand
	}
	return []string{filepath.Join(c.BaseDir, "bin", "evaluate.sh")}
}

package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/darwinhq/darwin/pkg/compiler"
	"github.com/darwinhq/darwin/pkg/config"
	"github.com/darwinhq/darwin/pkg/presenter"
	"github.com/darwinhq/darwin/pkg/skillstore"
	"github.com/spf13/cobra"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Inspect skill definitions and compiled artifacts",
	Long:  `List skill definitions or show the details of a single skill.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var skillsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all skill definitions",
	Long:  `List all skill definitions with their versions, module selections, and compile status.`,
	Run: func(_ *cobra.Command, _ []string) {
		listSkills()
	},
}

var skillsShowCmd = &cobra.Command{
	Use:   "show <skill>",
	Short: "Show one skill's definition and compiled artifact",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		showSkill(args[0])
	},
}

func init() {
	skillsCmd.AddCommand(skillsListCmd)
	skillsCmd.AddCommand(skillsShowCmd)
	rootCmd.AddCommand(skillsCmd)
}

func listSkills() {
	cfg, err := config.FromViper()
	if err != nil {
		presenter.Error(err, "Failed to load configuration")
		os.Exit(1)
	}

	store := skillstore.NewStore(cfg.SkillsDir)

	names, err := store.List()
	if err != nil {
		presenter.Error(err, "Failed to list skills")
		os.Exit(1)
	}

	if len(names) == 0 {
		presenter.Info("No skill definitions found")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SKILL\tVERSION\tMODULES\tMUTATIONS\tLAST COMPILED")
	fmt.Fprintln(tw, "-----\t-------\t-------\t---------\t-------------")

	for _, name := range names {
		def, err := store.Load(name)
		if err != nil {
			presenter.Warning(fmt.Sprintf("Skipping unreadable definition '%s': %v", name, err))
			continue
		}

		lastCompiled := def.LastCompiled
		if lastCompiled == "" {
			lastCompiled = "never"
		}
		fmt.Fprintf(tw, "/%s\t%s\t%s\t%d\t%s\n", name, def.Version, formatModules(def.Modules), len(def.FitnessHistory), lastCompiled)
	}
	tw.Flush()
}

func showSkill(name string) {
	cfg, err := config.FromViper()
	if err != nil {
		presenter.Error(err, "Failed to load configuration")
		os.Exit(1)
	}

	store := skillstore.NewStore(cfg.SkillsDir)
	comp := compiler.New(store, cfg.RegistryPath, cfg.OutputDir)

	def, err := store.Load(name)
	if err != nil {
		presenter.Error(err, fmt.Sprintf("Failed to load skill '%s'", name))
		os.Exit(1)
	}

	presenter.Section(fmt.Sprintf("/%s v%s", name, def.Version))
	if def.Description != "" {
		presenter.Info(def.Description)
	}
	presenter.Info("")

	presenter.Info("Modules:")
	for _, module := range sortedKeys(def.Modules) {
		presenter.Info(fmt.Sprintf("  %-12s %s", module, def.Modules[module]))
	}

	if len(def.FitnessHistory) > 0 {
		presenter.Info("")
		presenter.Info("Mutation history:")
		for _, record := range def.FitnessHistory {
			presenter.Info(fmt.Sprintf("  %s  %s", record.Timestamp, record.Mutation))
		}
	}

	presenter.Info("")
	artifactPath := comp.OutputPath(name)
	info, err := compiler.Inspect(artifactPath)
	if err != nil {
		presenter.Warning(fmt.Sprintf("No compiled artifact at %s", artifactPath))
		return
	}

	presenter.Info(fmt.Sprintf("Compiled artifact: %s (v%s)", info.Path, info.Version))
	if info.Version != def.Version {
		presenter.Warning("Compiled artifact is stale; run 'darwin compile' to refresh")
	}
}

func formatModules(modules map[string]string) string {
	keys := sortedKeys(modules)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ","
		}
		out += k + ":" + modules[k]
	}
	if out == "" {
		out = "-"
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

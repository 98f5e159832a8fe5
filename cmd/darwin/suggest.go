package main

import (
	"fmt"
	"os"

	"github.com/darwinhq/darwin/pkg/presenter"
	"github.com/spf13/cobra"
)

// SuggestConfig holds configuration for the suggest command
type SuggestConfig struct {
	Limit int
}

// NewSuggestConfig creates a SuggestConfig with default values
func NewSuggestConfig() *SuggestConfig {
	return &SuggestConfig{
		Limit: 3,
	}
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Show mutation suggestions without applying them",
	Long: `Evaluate all skills and print candidate mutations for the
underperforming and failing ones. Nothing is written; re-running
suggest never mutates any persisted file.`,
	Run: func(cmd *cobra.Command, _ []string) {
		config := getSuggestConfigFromFlags(cmd)

		o, _, err := newOrchestrator()
		if err != nil {
			presenter.Error(err, "Failed to initialize")
			os.Exit(1)
		}

		suggestions, err := o.Suggest(cmd.Context())
		if err != nil {
			presenter.Error(err, "Failed to generate suggestions")
			os.Exit(1)
		}

		presenter.Section("DARWIN EVOLUTION SUGGESTIONS")
		presenter.Info("")

		if len(suggestions) == 0 {
			presenter.Info("No mutations needed. All skills are healthy or top performers.")
			return
		}

		total := 0
		for _, skill := range suggestions {
			presenter.Section(fmt.Sprintf("/%s (fitness: %.2f, %s)", skill.Skill, skill.Fitness, skill.Class))

			shown := skill.Suggestions
			if len(shown) > config.Limit {
				shown = shown[:config.Limit]
			}
			for _, s := range shown {
				presenter.Info(fmt.Sprintf("  [%s] %s: %s → %s", s.Kind, s.Module, s.FromVersion, s.ToVersion))
				presenter.Info(fmt.Sprintf("           %s", s.Reason))
			}
			total += len(shown)
			presenter.Info("")
		}

		presenter.Info(fmt.Sprintf("Total suggestions: %d", total))
		presenter.Info("")
		presenter.Info("Run 'darwin apply' to apply the top suggestion per skill.")
	},
}

func init() {
	defaults := NewSuggestConfig()
	suggestCmd.Flags().IntP("limit", "n", defaults.Limit, "Maximum suggestions to show per skill")
	rootCmd.AddCommand(suggestCmd)
}

func getSuggestConfigFromFlags(cmd *cobra.Command) *SuggestConfig {
	config := NewSuggestConfig()
	if limit, err := cmd.Flags().GetInt("limit"); err == nil && limit > 0 {
		config.Limit = limit
	}
	return config
}

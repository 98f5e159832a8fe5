package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/darwinhq/darwin/pkg/evolution"
	"github.com/darwinhq/darwin/pkg/presenter"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show classified fitness for all skills",
	Long:  `Run the evaluator and print every skill's fitness score, invocation count, and classification band.`,
	Run: func(cmd *cobra.Command, _ []string) {
		o, _, err := newOrchestrator()
		if err != nil {
			presenter.Error(err, "Failed to initialize")
			os.Exit(1)
		}

		status, err := o.Status(cmd.Context())
		if err != nil {
			presenter.Error(err, "Evaluation failed")
			os.Exit(1)
		}

		renderStatus(status)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func renderStatus(status *evolution.Status) {
	presenter.Section("DARWIN EVOLUTION STATUS")
	presenter.Info("")
	presenter.Info(fmt.Sprintf("DATA: %d skill invocations | Period: last 7 days", status.TotalInvocations))
	presenter.Info("")

	if len(status.Entries) == 0 {
		presenter.Info("No skills to evaluate.")
		return
	}

	presenter.Section("SKILL FITNESS")
	for i, entry := range status.Entries {
		presenter.Info(fmt.Sprintf(" %2d. /%-12s %s  %.2f  [%2d uses] %s",
			i+1, entry.Skill, fitnessBar(entry.Fitness), entry.Fitness, entry.Invocations, entry.Class.Symbol()))
	}

	presenter.Info("")
	presenter.Info("LEGEND: ★ top performer  ✓ healthy  ↓ underperforming  ✗ failing")
}

// fitnessBar renders a ten-segment bar for a fitness score
func fitnessBar(fitness float64) string {
	filled := int(fitness * 10)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

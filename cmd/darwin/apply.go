package main

import (
	"fmt"
	"os"

	"github.com/darwinhq/darwin/pkg/evolution"
	"github.com/darwinhq/darwin/pkg/presenter"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply the top mutation suggestion to each struggling skill",
	Long: `Evaluate all skills, pick the top suggestion for each
underperforming or failing one, mutate its definition, recompile the
artifact, re-evaluate, and record the outcome in the skill's changelog.`,
	Run: func(cmd *cobra.Command, _ []string) {
		o, _, err := newOrchestrator()
		if err != nil {
			presenter.Error(err, "Failed to initialize")
			os.Exit(1)
		}

		report, err := o.ApplyAll(cmd.Context())
		if err != nil {
			presenter.Error(err, "Failed to apply mutations")
			os.Exit(1)
		}

		renderApplyReport(report)

		if report.Errs != nil {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func renderApplyReport(report *evolution.ApplyReport) {
	presenter.Section("DARWIN EVOLUTION APPLY")
	presenter.Info("")

	if len(report.Outcomes) == 0 && report.Errs == nil {
		presenter.Info("No mutations applied. All skills are healthy or top performers.")
		return
	}

	for _, outcome := range report.Outcomes {
		renderOutcome(outcome)
	}

	if report.Errs != nil {
		presenter.Info("")
		presenter.Error(report.Errs, "Some mutations failed")
	}
}

func renderOutcome(outcome evolution.MutationOutcome) {
	s := outcome.Suggestion
	presenter.Info(fmt.Sprintf("/%s → v%s", outcome.Skill, outcome.NewVersion))
	presenter.Info(fmt.Sprintf("  [%s] %s: %s → %s", s.Kind, s.Module, s.FromVersion, s.ToVersion))
	presenter.Info(fmt.Sprintf("  %s", s.Reason))

	switch outcome.Verdict {
	case evolution.VerdictImproved:
		presenter.Success(fmt.Sprintf("  Fitness improved: %.2f → %.2f", outcome.OldFitness, *outcome.NewFitness))
	case evolution.VerdictDropped:
		presenter.Warning(fmt.Sprintf("  Fitness dropped: %.2f → %.2f (consider a manual rollback)", outcome.OldFitness, *outcome.NewFitness))
	case evolution.VerdictUnchanged:
		presenter.Info(fmt.Sprintf("  Fitness unchanged at %.2f", outcome.OldFitness))
	case evolution.VerdictUnverified:
		presenter.Warning("  Post-mutation fitness unavailable; verdict unverified")
	}

	if !outcome.ChangelogWritten {
		presenter.Warning("  Changelog entry not written")
	}
	presenter.Info("")
}

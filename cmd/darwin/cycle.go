package main

import (
	"fmt"
	"os"

	"github.com/darwinhq/darwin/pkg/evolution"
	"github.com/darwinhq/darwin/pkg/presenter"
	"github.com/spf13/cobra"
)

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run a full evolution cycle",
	Long: `Evaluate all skills, write a weekly fitness snapshot, then apply
the top mutation suggestion to each underperforming or failing skill.
When every skill is healthy no mutations are attempted.`,
	Run: func(cmd *cobra.Command, _ []string) {
		o, _, err := newOrchestrator()
		if err != nil {
			presenter.Error(err, "Failed to initialize")
			os.Exit(1)
		}

		result, err := o.Cycle(cmd.Context())
		if err != nil {
			presenter.Error(err, "Evolution cycle failed")
			os.Exit(1)
		}

		presenter.Section("DARWIN EVOLUTION CYCLE")
		presenter.Info(fmt.Sprintf("Run ID: %s", result.RunID))
		presenter.Info("")

		renderCensus(result.Census)
		presenter.Info("")
		presenter.Info(fmt.Sprintf("Snapshot written to %s", result.SnapshotPath))
		presenter.Info("")

		if len(result.Apply.Outcomes) == 0 && result.Apply.Errs == nil {
			presenter.Success("All skills healthy. No mutations needed.")
			return
		}

		renderApplyReport(result.Apply)

		if result.Apply.Errs != nil {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(cycleCmd)
}

func renderCensus(census map[evolution.Classification]int) {
	order := []evolution.Classification{
		evolution.TopPerformer,
		evolution.Healthy,
		evolution.Underperforming,
		evolution.Failing,
	}
	for _, class := range order {
		presenter.Info(fmt.Sprintf("  %s %-16s %d", class.Symbol(), class, census[class]))
	}
}

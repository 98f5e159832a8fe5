// Package evaluator defines the fitness evaluation port and its
// command-backed implementation. Fitness scoring itself happens in an
// external evaluator process; this package only invokes it and parses
// the structured report it prints.
package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"

	"github.com/darwinhq/darwin/pkg/logger"
	"github.com/pkg/errors"
)

// SkillFitness is one skill's entry in an evaluation report
type SkillFitness struct {
	Skill       string  `json:"skill"`
	Fitness     float64 `json:"fitness"`
	Invocations int     `json:"invocations"`
}

// Report is a point-in-time evaluation of all skills
type Report struct {
	TotalInvocations int            `json:"total_invocations"`
	Skills           []SkillFitness `json:"skills"`
}

// Fitness returns the fitness score for a specific skill in the report
func (r *Report) Fitness(name string) (float64, bool) {
	for _, s := range r.Skills {
		if s.Skill == name {
			return s.Fitness, true
		}
	}
	return 0, false
}

// Evaluator is the port the orchestrator uses to measure skill fitness
type Evaluator interface {
	Evaluate(ctx context.Context) (*Report, error)
}

// CommandEvaluator runs an external evaluation command and parses its
// JSON output. The command is invoked with no arguments; a non-zero exit
// is an evaluation failure carrying the command's stderr as diagnostic.
type CommandEvaluator struct {
	argv []string
}

// NewCommandEvaluator creates an evaluator backed by the given argv
func NewCommandEvaluator(argv []string) (*CommandEvaluator, error) {
	if len(argv) == 0 {
		return nil, errors.New("evaluate command must not be empty")
	}
	return &CommandEvaluator{argv: argv}, nil
}

// Evaluate runs the evaluation command and parses its report
func (e *CommandEvaluator) Evaluate(ctx context.Context) (*Report, error) {
	logger.G(ctx).WithField("command", strings.Join(e.argv, " ")).Debug("Running evaluator")

	cmd := exec.CommandContext(ctx, e.argv[0], e.argv[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diagnostic := strings.TrimSpace(stderr.String())
		if diagnostic == "" {
			diagnostic = err.Error()
		}
		return nil, errors.Errorf("evaluation failed: %s", diagnostic)
	}

	var report Report
	if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
		return nil, errors.Wrap(err, "failed to parse evaluation report")
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"skills":            len(report.Skills),
		"total_invocations": report.TotalInvocations,
	}).Debug("Evaluation complete")

	return &report, nil
}

package evolution

import (
	"context"

	"github.com/darwinhq/darwin/pkg/changelog"
	"github.com/darwinhq/darwin/pkg/compiler"
	"github.com/darwinhq/darwin/pkg/config"
	"github.com/darwinhq/darwin/pkg/evaluator"
	"github.com/darwinhq/darwin/pkg/logger"
	"github.com/darwinhq/darwin/pkg/registry"
	"github.com/darwinhq/darwin/pkg/skillstore"
	"github.com/darwinhq/darwin/pkg/snapshot"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Verdict classifies the fitness change measured after a mutation. It is
// reporting only; no automated action follows from it.
type Verdict string

const (
	// VerdictImproved means post-mutation fitness went up
	VerdictImproved Verdict = "improved"
	// VerdictDropped means post-mutation fitness went down; rollback is
	// left to the operator
	VerdictDropped Verdict = "dropped"
	// VerdictUnchanged means fitness did not move
	VerdictUnchanged Verdict = "unchanged"
	// VerdictUnverified means the post-mutation evaluation was unavailable
	VerdictUnverified Verdict = "unverified"
)

// StatusEntry is one skill's classified fitness
type StatusEntry struct {
	Skill       string
	Fitness     float64
	Invocations int
	Class       Classification
}

// Status is the classified fitness table for all skills
type Status struct {
	TotalInvocations int
	Entries          []StatusEntry
}

// SkillSuggestions groups the candidate mutations for one skill
type SkillSuggestions struct {
	Skill       string
	Fitness     float64
	Class       Classification
	Suggestions []Suggestion
}

// MutationOutcome is the result of one apply attempt within a batch
type MutationOutcome struct {
	Skill            string
	Suggestion       Suggestion
	NewVersion       string
	OldFitness       float64
	NewFitness       *float64
	Verdict          Verdict
	Recompiled       bool
	ChangelogWritten bool
}

// ApplyReport aggregates a batch apply pass. Errs collects per-skill
// failures that did not abort the batch.
type ApplyReport struct {
	Outcomes []MutationOutcome
	Errs     error
}

// CycleResult is the outcome of a full evolution cycle
type CycleResult struct {
	RunID        string
	Census       map[Classification]int
	SnapshotPath string
	Apply        *ApplyReport
}

// Orchestrator sequences evaluation, suggestion, mutation, recompilation,
// verification, and changelog recording. It assumes single-run,
// single-operator access to the skill store.
type Orchestrator struct {
	store        *skillstore.Store
	registryPath string
	evaluator    evaluator.Evaluator
	compiler     compiler.Compiler
	applier      *Applier
	changelogs   *changelog.Recorder
	snapshots    *snapshot.Store
}

// NewOrchestrator wires an orchestrator from the resolved configuration
// and the evaluator and compiler ports
func NewOrchestrator(cfg *config.Config, eval evaluator.Evaluator, comp compiler.Compiler) *Orchestrator {
	store := skillstore.NewStore(cfg.SkillsDir)
	return &Orchestrator{
		store:        store,
		registryPath: cfg.RegistryPath,
		evaluator:    eval,
		compiler:     comp,
		applier:      NewApplier(store),
		changelogs:   changelog.NewRecorder(cfg.ChangelogsDir),
		snapshots:    snapshot.NewStore(cfg.EvaluationsDir),
	}
}

// Status evaluates all skills and classifies them
func (o *Orchestrator) Status(ctx context.Context) (*Status, error) {
	report, err := o.evaluator.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	status := &Status{TotalInvocations: report.TotalInvocations}
	for _, s := range report.Skills {
		status.Entries = append(status.Entries, StatusEntry{
			Skill:       s.Skill,
			Fitness:     s.Fitness,
			Invocations: s.Invocations,
			Class:       Classify(s.Fitness),
		})
	}

	return status, nil
}

// Suggest evaluates all skills and produces candidate mutations for the
// underperforming and failing ones. It never writes anything.
func (o *Orchestrator) Suggest(ctx context.Context) ([]SkillSuggestions, error) {
	report, err := o.evaluator.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	reg, err := registry.Load(o.registryPath)
	if err != nil {
		return nil, err
	}

	topPerformers := o.topPerformers(ctx, report)

	var all []SkillSuggestions
	for _, s := range report.Skills {
		class := Classify(s.Fitness)
		if !class.NeedsEvolution() {
			continue
		}

		def, err := o.store.Load(s.Skill)
		if err != nil {
			// An evaluated skill without a definition file is skipped;
			// other skills are unaffected.
			logger.G(ctx).WithError(err).WithField("skill", s.Skill).Warn("Skipping skill without definition")
			continue
		}

		suggestions := SuggestMutations(s.Skill, def, s.Fitness, reg, topPerformers)
		if len(suggestions) == 0 {
			continue
		}

		all = append(all, SkillSuggestions{
			Skill:       s.Skill,
			Fitness:     s.Fitness,
			Class:       class,
			Suggestions: suggestions,
		})
	}

	return all, nil
}

// ApplyAll runs one apply pass: evaluate, then for every underperforming
// or failing skill commit the top suggestion, recompile, verify, and
// record the changelog. An evaluation failure aborts before any mutation;
// per-skill failures are collected and the batch continues.
func (o *Orchestrator) ApplyAll(ctx context.Context) (*ApplyReport, error) {
	report, err := o.evaluator.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	return o.applyWithReport(ctx, report)
}

// Cycle runs a full evolution cycle: evaluate, snapshot the report by ISO
// week, then apply mutations against the same evaluation
func (o *Orchestrator) Cycle(ctx context.Context) (*CycleResult, error) {
	runID := uuid.NewString()
	ctx = logger.WithLogger(ctx, logger.G(ctx).WithField("run_id", runID))

	report, err := o.evaluator.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	census := map[Classification]int{}
	for _, s := range report.Skills {
		census[Classify(s.Fitness)]++
	}

	snapshotPath, err := o.snapshots.Save(ctx, report, runID)
	if err != nil {
		return nil, err
	}

	result := &CycleResult{
		RunID:        runID,
		Census:       census,
		SnapshotPath: snapshotPath,
	}

	if census[Underperforming]+census[Failing] == 0 {
		result.Apply = &ApplyReport{}
		return result, nil
	}

	applyReport, err := o.applyWithReport(ctx, report)
	if err != nil {
		return nil, err
	}
	result.Apply = applyReport

	return result, nil
}

func (o *Orchestrator) applyWithReport(ctx context.Context, report *evaluator.Report) (*ApplyReport, error) {
	reg, err := registry.Load(o.registryPath)
	if err != nil {
		return nil, err
	}

	topPerformers := o.topPerformers(ctx, report)

	applied := &ApplyReport{}
	for _, s := range report.Skills {
		if !Classify(s.Fitness).NeedsEvolution() {
			continue
		}
		if !o.store.Exists(s.Skill) {
			continue
		}

		def, err := o.store.Load(s.Skill)
		if err != nil {
			applied.Errs = multierror.Append(applied.Errs, err)
			continue
		}

		suggestions := SuggestMutations(s.Skill, def, s.Fitness, reg, topPerformers)
		suggestion, ok := TopSuggestion(suggestions)
		if !ok {
			// All variants exhausted: a legitimate terminal state.
			logger.G(ctx).WithField("skill", s.Skill).Debug("No viable mutations")
			continue
		}

		outcome, err := o.applyOne(ctx, suggestion, s.Fitness)
		if err != nil {
			applied.Errs = multierror.Append(applied.Errs, err)
		}
		if outcome != nil {
			applied.Outcomes = append(applied.Outcomes, *outcome)
		}
	}

	return applied, nil
}

// applyOne commits a single suggestion. It may return both an outcome and
// an error: a recompile failure leaves the mutated definition in place
// and intentionally skips the changelog, so the outcome records the
// inconsistency for the operator to reconcile.
func (o *Orchestrator) applyOne(ctx context.Context, suggestion Suggestion, oldFitness float64) (*MutationOutcome, error) {
	result, err := o.applier.Apply(ctx, suggestion.Skill, suggestion.Module, suggestion.ToVersion)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to apply mutation to skill '%s'", suggestion.Skill)
	}

	outcome := &MutationOutcome{
		Skill:      suggestion.Skill,
		Suggestion: suggestion,
		NewVersion: result.NewVersion,
		OldFitness: oldFitness,
		Verdict:    VerdictUnverified,
	}

	if err := o.compiler.Compile(ctx, suggestion.Skill); err != nil {
		return outcome, errors.Wrapf(err, "failed to recompile skill '%s' (definition remains mutated, changelog not written)", suggestion.Skill)
	}
	outcome.Recompiled = true

	// Post-mutation verification: reporting only, no auto-rollback.
	if verification, err := o.evaluator.Evaluate(ctx); err == nil {
		if newFitness, ok := verification.Fitness(suggestion.Skill); ok {
			outcome.NewFitness = &newFitness
			switch {
			case newFitness > oldFitness:
				outcome.Verdict = VerdictImproved
			case newFitness < oldFitness:
				outcome.Verdict = VerdictDropped
			default:
				outcome.Verdict = VerdictUnchanged
			}
		}
	} else {
		logger.G(ctx).WithError(err).WithField("skill", suggestion.Skill).Warn("Could not verify post-mutation fitness")
	}

	mutation := changelog.Mutation{
		Kind:        string(suggestion.Kind),
		Module:      suggestion.Module,
		FromVersion: result.FromVersion,
		ToVersion:   suggestion.ToVersion,
		Reason:      suggestion.Reason,
	}
	if err := o.changelogs.Record(ctx, suggestion.Skill, result.NewVersion, []changelog.Mutation{mutation}, oldFitness, outcome.NewFitness); err != nil {
		return outcome, err
	}
	outcome.ChangelogWritten = true

	return outcome, nil
}

// topPerformers resolves the module selections of the report's
// top-performing skills, in report order. Performers without a definition
// file are skipped.
func (o *Orchestrator) topPerformers(ctx context.Context, report *evaluator.Report) []Performer {
	var performers []Performer
	for _, s := range report.Skills {
		if Classify(s.Fitness) != TopPerformer {
			continue
		}

		def, err := o.store.Load(s.Skill)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("skill", s.Skill).Debug("Skipping top performer without definition")
			continue
		}

		performers = append(performers, Performer{
			Skill:   s.Skill,
			Fitness: s.Fitness,
			Modules: def.Modules,
		})
	}

	return performers
}

// Package evolution implements the skill evolution engine: fitness
// classification, oscillation-aware mutation suggestions, mutation
// application with version and history bookkeeping, and the cycle
// orchestrator that ties them to the evaluator and compiler.
package evolution

// Classification is a fitness band derived at evaluation time. It is
// never persisted; stale classifications are worse than recomputing.
type Classification string

const (
	// TopPerformer marks skills whose modules are worth absorbing
	TopPerformer Classification = "top_performer"
	// Healthy skills are left alone
	Healthy Classification = "healthy"
	// Underperforming skills are candidates for mutation
	Underperforming Classification = "underperforming"
	// Failing skills are candidates for mutation
	Failing Classification = "failing"
)

// Fitness thresholds, inclusive on the lower bound of each band
const (
	ThresholdTopPerformer    = 0.70
	ThresholdHealthy         = 0.50
	ThresholdUnderperforming = 0.35
)

// Classify maps a fitness score in [0,1] to its band. Values outside the
// range are not validated here.
func Classify(fitness float64) Classification {
	switch {
	case fitness >= ThresholdTopPerformer:
		return TopPerformer
	case fitness >= ThresholdHealthy:
		return Healthy
	case fitness >= ThresholdUnderperforming:
		return Underperforming
	default:
		return Failing
	}
}

// Rank orders bands from worst (0) to best (3)
func (c Classification) Rank() int {
	switch c {
	case TopPerformer:
		return 3
	case Healthy:
		return 2
	case Underperforming:
		return 1
	default:
		return 0
	}
}

// NeedsEvolution reports whether skills in this band should be mutated
func (c Classification) NeedsEvolution() bool {
	return c == Underperforming || c == Failing
}

// Symbol returns the single-character status indicator used in the
// fitness table
func (c Classification) Symbol() string {
	switch c {
	case TopPerformer:
		return "★"
	case Healthy:
		return "✓"
	case Underperforming:
		return "↓"
	default:
		return "✗"
	}
}

package evolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBands(t *testing.T) {
	tests := []struct {
		fitness  float64
		expected Classification
	}{
		{0.70, TopPerformer},
		{0.95, TopPerformer},
		{0.6999, Healthy},
		{0.50, Healthy},
		{0.4999, Underperforming},
		{0.35, Underperforming},
		{0.3499, Failing},
		{0.0, Failing},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Classify(tt.fitness), "fitness %v", tt.fitness)
	}
}

func TestClassifyMonotonic(t *testing.T) {
	prev := -1
	for fitness := 0.0; fitness <= 1.0; fitness += 0.01 {
		rank := Classify(fitness).Rank()
		assert.GreaterOrEqual(t, rank, prev, "rank must never drop as fitness rises (fitness %v)", fitness)
		prev = rank
	}
}

func TestNeedsEvolution(t *testing.T) {
	assert.False(t, TopPerformer.NeedsEvolution())
	assert.False(t, Healthy.NeedsEvolution())
	assert.True(t, Underperforming.NeedsEvolution())
	assert.True(t, Failing.NeedsEvolution())
}

func TestSymbols(t *testing.T) {
	assert.Equal(t, "★", TopPerformer.Symbol())
	assert.Equal(t, "✓", Healthy.Symbol())
	assert.Equal(t, "↓", Underperforming.Symbol())
	assert.Equal(t, "✗", Failing.Symbol())
}

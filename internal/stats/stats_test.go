package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.InDelta(t, 0.015, Mean([]float64{0.01, 0.02}), 1e-9)
}

func TestStdDev(t *testing.T) {
	// Fewer than two values has no spread
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{5}))

	// Sample standard deviation: {2,4,4,4,5,5,7,9} has variance 32/7
	got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 2.13809, got, 1e-4)

	// Constant series
	assert.Equal(t, 0.0, StdDev([]float64{3, 3, 3, 3}))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 42.4, Round(42.375, 1))
	assert.Equal(t, 42.38, Round(42.375, 2))
	assert.Equal(t, -1.5, Round(-1.45, 1))
}

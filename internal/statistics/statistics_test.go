package statistics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatistics_Empty(t *testing.T) {
	stats := &Statistics{}

	assert.Zero(t, stats.Mean())
	assert.Zero(t, stats.Variance())
	assert.Zero(t, stats.StdDev())
	assert.Zero(t, stats.StdError())
	assert.Zero(t, stats.Median())
	assert.Zero(t, stats.Percentile(0.5))
	assert.Zero(t, stats.WinRate())
	assert.Error(t, stats.Validate())
}

func TestStatistics_SingleValue(t *testing.T) {
	stats := &Statistics{}
	stats.Add(NewRecord(1, 1.5, 1))

	assert.Equal(t, 1, stats.Episodes)
	assert.Equal(t, 1.5, stats.Mean())
	assert.Zero(t, stats.Variance())
	assert.Equal(t, 1.5, stats.Median())
	assert.Equal(t, 1.0, stats.WinRate())
	require.NoError(t, stats.Validate())
}

func TestStatistics_MultipleValues(t *testing.T) {
	stats := &Statistics{}
	rewards := []float64{1, -1, 2, 0, -1}
	for i, r := range rewards {
		require.NoError(t, stats.Record(NewRecord(i+1, r, 2)))
	}

	assert.Equal(t, 5, stats.Episodes)
	assert.InDelta(t, 0.2, stats.Mean(), 1e-12)
	// Sample variance: sum of squared deviations 6.8 over 4.
	assert.InDelta(t, 1.7, stats.Variance(), 1e-12)
	assert.InDelta(t, math.Sqrt(1.7), stats.StdDev(), 1e-12)
	assert.InDelta(t, math.Sqrt(1.7)/math.Sqrt(5), stats.StdError(), 1e-12)
	assert.Equal(t, 0.0, stats.Median())
	assert.Equal(t, -1.0, stats.Percentile(0))
	assert.Equal(t, 2.0, stats.Percentile(1))
	assert.Equal(t, 2.0, stats.AvgSteps())

	assert.InDelta(t, 0.4, stats.WinRate(), 1e-12)
	assert.InDelta(t, 0.2, stats.PushRate(), 1e-12)
	assert.InDelta(t, 0.4, stats.LossRate(), 1e-12)
	assert.InDelta(t, 1.0, stats.WinRate()+stats.PushRate()+stats.LossRate(), 1e-12)
	require.NoError(t, stats.Validate())

	lo, hi := stats.ConfidenceInterval95()
	assert.Less(t, lo, stats.Mean())
	assert.Greater(t, hi, stats.Mean())
	assert.InDelta(t, stats.Mean(), (lo+hi)/2, 1e-12)
}

func TestStatistics_PercentileInterpolates(t *testing.T) {
	stats := &Statistics{}
	for i, r := range []float64{4, 1, 3, 2} {
		stats.Add(NewRecord(i+1, r, 1))
	}
	assert.InDelta(t, 2.5, stats.Median(), 1e-12)
	assert.InDelta(t, 1.75, stats.Percentile(0.25), 1e-12)
	assert.Equal(t, []float64{4, 1, 3, 2}, stats.Values, "percentile must not reorder values")
}

func TestNewRecordWin(t *testing.T) {
	assert.True(t, NewRecord(1, 0.5, 1).Win)
	assert.False(t, NewRecord(1, 0, 1).Win)
	assert.False(t, NewRecord(1, -0.8, 2).Win)
}

func TestSummary(t *testing.T) {
	stats := &Statistics{}
	for i, r := range []float64{1, 1, -1, 1.5} {
		stats.Add(NewRecord(i+1, r, 1))
	}

	s := stats.Summary("basic_strategy", 420)
	assert.Equal(t, "basic_strategy", s.Label)
	assert.Equal(t, 4, s.Episodes)
	assert.InDelta(t, 0.625, s.AvgReward, 1e-12)
	assert.InDelta(t, 62.5, s.ProfitPerHour, 1e-9)
	assert.InDelta(t, 0.75, s.WinRate, 1e-12)
	assert.Equal(t, 420, s.QTableSize)
	assert.Contains(t, s.String(), "basic_strategy: 4 episodes")
}

func TestValidateDetectsMismatch(t *testing.T) {
	stats := &Statistics{}
	stats.Add(NewRecord(1, 1, 1))
	stats.Wins++
	assert.Error(t, stats.Validate())
}

func TestRolling(t *testing.T) {
	r := NewRolling(3)
	assert.Zero(t, r.Mean())

	r.Push(1)
	r.Push(2)
	assert.Equal(t, 2, r.Len())
	assert.InDelta(t, 1.5, r.Mean(), 1e-12)

	r.Push(3)
	r.Push(10)
	assert.Equal(t, 3, r.Len())
	assert.InDelta(t, 5.0, r.Mean(), 1e-12)

	one := NewRolling(0)
	one.Push(4)
	one.Push(-2)
	assert.Equal(t, -2.0, one.Mean())
}

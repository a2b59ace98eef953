// Package statistics aggregates per-episode rewards into summary figures.
package statistics

import (
	"fmt"
	"math"
	"sort"
)

// HandsPerHour is the dealing rate used to express the average reward as
// profit per hour.
const HandsPerHour = 100

// EpisodeRecord is the outcome of one finished episode.
type EpisodeRecord struct {
	Episode     int     // 1-based episode number
	TotalReward float64 // Sum of step rewards, in betting units
	Steps       int     // Number of Step calls, at least 1
	Win         bool    // TotalReward > 0
}

// NewRecord builds a record, deriving Win from the reward.
func NewRecord(episode int, totalReward float64, steps int) EpisodeRecord {
	return EpisodeRecord{
		Episode:     episode,
		TotalReward: totalReward,
		Steps:       steps,
		Win:         totalReward > 0,
	}
}

// Statistics accumulates episode results. The zero value is ready to use.
type Statistics struct {
	Episodes int
	Sum      float64
	SumSq    float64   // Sum of squares for variance calculation
	Values   []float64 // All rewards, kept for median/percentile calculation
	Steps    int

	Wins   int
	Pushes int // Zero-reward episodes
	Losses int
}

// Add incorporates one episode.
func (s *Statistics) Add(r EpisodeRecord) {
	s.Episodes++
	s.Sum += r.TotalReward
	s.SumSq += r.TotalReward * r.TotalReward
	s.Values = append(s.Values, r.TotalReward)
	s.Steps += r.Steps

	switch {
	case r.TotalReward > 0:
		s.Wins++
	case r.TotalReward == 0:
		s.Pushes++
	default:
		s.Losses++
	}
}

// Record lets Statistics act as an episode recorder.
func (s *Statistics) Record(r EpisodeRecord) error {
	s.Add(r)
	return nil
}

// Mean returns the average reward per episode.
func (s *Statistics) Mean() float64 {
	if s.Episodes == 0 {
		return 0
	}
	return s.Sum / float64(s.Episodes)
}

// Variance returns the sample variance of the rewards.
func (s *Statistics) Variance() float64 {
	if s.Episodes < 2 {
		return 0
	}
	mean := s.Mean()
	v := (s.SumSq - float64(s.Episodes)*mean*mean) / float64(s.Episodes-1)
	return math.Max(0, v)
}

// StdDev returns the sample standard deviation.
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean.
func (s *Statistics) StdError() float64 {
	if s.Episodes == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Episodes))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median reward.
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the linearly interpolated value at p (0.0 to 1.0).
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	p = math.Min(1, math.Max(0, p))
	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// WinRate returns the fraction of episodes with a positive reward.
func (s *Statistics) WinRate() float64 {
	return s.rate(s.Wins)
}

// PushRate returns the fraction of episodes with zero reward.
func (s *Statistics) PushRate() float64 {
	return s.rate(s.Pushes)
}

// LossRate returns the fraction of episodes with a negative reward.
func (s *Statistics) LossRate() float64 {
	return s.rate(s.Losses)
}

// AvgSteps returns the mean number of steps per episode.
func (s *Statistics) AvgSteps() float64 {
	if s.Episodes == 0 {
		return 0
	}
	return float64(s.Steps) / float64(s.Episodes)
}

func (s *Statistics) rate(n int) float64 {
	if s.Episodes == 0 {
		return 0
	}
	return float64(n) / float64(s.Episodes)
}

// Validate checks that the counters agree with each other.
func (s *Statistics) Validate() error {
	if s.Episodes <= 0 {
		return fmt.Errorf("invalid episode count: %d", s.Episodes)
	}
	if len(s.Values) != s.Episodes {
		return fmt.Errorf("values length (%d) does not match episode count (%d)", len(s.Values), s.Episodes)
	}
	if total := s.Wins + s.Pushes + s.Losses; total != s.Episodes {
		return fmt.Errorf("win/push/loss total (%d) does not match episode count (%d)", total, s.Episodes)
	}
	if s.Steps < s.Episodes {
		return fmt.Errorf("steps (%d) fewer than episodes (%d)", s.Steps, s.Episodes)
	}
	return nil
}

// Summary is the per-run report record.
type Summary struct {
	Label         string
	Episodes      int
	AvgReward     float64
	StdDev        float64
	CI95Low       float64
	CI95High      float64
	WinRate       float64
	PushRate      float64
	LossRate      float64
	AvgSteps      float64
	ProfitPerHour float64
	QTableSize    int
}

// Summary condenses the accumulated results. qtableSize is the number of
// states the agent has visited, or zero when unknown.
func (s *Statistics) Summary(label string, qtableSize int) Summary {
	lo, hi := s.ConfidenceInterval95()
	mean := s.Mean()
	return Summary{
		Label:         label,
		Episodes:      s.Episodes,
		AvgReward:     mean,
		StdDev:        s.StdDev(),
		CI95Low:       lo,
		CI95High:      hi,
		WinRate:       s.WinRate(),
		PushRate:      s.PushRate(),
		LossRate:      s.LossRate(),
		AvgSteps:      s.AvgSteps(),
		ProfitPerHour: mean * HandsPerHour,
		QTableSize:    qtableSize,
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("%s: %d episodes, avg %.4f, win %.2f%%, profit/hour %.2f",
		s.Label, s.Episodes, s.AvgReward, s.WinRate*100, s.ProfitPerHour)
}

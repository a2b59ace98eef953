package trainer

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjackrl/internal/agent"
	"github.com/lox/blackjackrl/internal/randutil"
	"github.com/lox/blackjackrl/internal/shoe"
	"github.com/lox/blackjackrl/internal/statistics"
	"github.com/lox/blackjackrl/internal/table"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func newPair(t *testing.T, seed int64) (*table.Table, *agent.Agent) {
	t.Helper()
	tbl, err := table.NewTable(table.DefaultRules(), randutil.New(seed), quietLogger())
	require.NoError(t, err)
	cfg := agent.DefaultConfig()
	cfg.Seed = seed
	ag, err := agent.New(cfg, quietLogger())
	require.NoError(t, err)
	return tbl, ag
}

type sliceRecorder struct {
	records []statistics.EpisodeRecord
}

func (s *sliceRecorder) Record(r statistics.EpisodeRecord) error {
	s.records = append(s.records, r)
	return nil
}

type failingRecorder struct{}

func (failingRecorder) Record(statistics.EpisodeRecord) error {
	return errors.New("disk full")
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig(10).Validate())

	c := DefaultConfig(10)
	c.MaxStepsPerEpisode = 0
	assert.Error(t, c.Validate())

	c = DefaultConfig(10)
	c.CheckpointEvery = 5
	assert.Error(t, c.Validate())

	c = DefaultConfig(-1)
	assert.Error(t, c.Validate())
}

func TestTrainRecordsEveryEpisode(t *testing.T) {
	tbl, ag := newPair(t, 3)
	rec := &sliceRecorder{}
	stats := &statistics.Statistics{}

	tr, err := New(DefaultConfig(500), tbl, ag,
		WithLogger(quietLogger()),
		WithRecorders(rec, stats),
		WithLabel("basic_strategy"))
	require.NoError(t, err)

	got, err := tr.Train(context.Background())
	require.NoError(t, err)

	require.Len(t, rec.records, 500)
	for i, r := range rec.records {
		assert.Equal(t, i+1, r.Episode)
		assert.GreaterOrEqual(t, r.Steps, 1)
		assert.Equal(t, r.TotalReward > 0, r.Win)
	}
	assert.Equal(t, 500, got.Episodes)
	assert.Equal(t, got.Sum, stats.Sum)
	require.NoError(t, got.Validate())

	assert.Equal(t, 500, ag.Episodes())
	assert.Less(t, ag.Epsilon(), 1.0)
	assert.Positive(t, ag.Table().Len())
	assert.Equal(t, 500, tbl.Rounds())
}

func TestTrainIsDeterministicForASeed(t *testing.T) {
	run := func() *statistics.Statistics {
		tbl, ag := newPair(t, 11)
		tr, err := New(DefaultConfig(300), tbl, ag)
		require.NoError(t, err)
		stats, err := tr.Train(context.Background())
		require.NoError(t, err)
		return stats
	}
	assert.Equal(t, run().Values, run().Values)
}

func TestTrainProgressUsesClock(t *testing.T) {
	ctx := context.Background()
	clock := quartz.NewMock(t)
	tbl, ag := newPair(t, 5)

	var updates []Progress
	cfg := DefaultConfig(100)
	cfg.ProgressEvery = 25
	cfg.Window = 10
	tr, err := New(cfg, tbl, ag,
		WithClock(clock),
		WithProgress(func(p Progress) {
			updates = append(updates, p)
			clock.Advance(time.Second).MustWait(ctx)
		}))
	require.NoError(t, err)

	_, err = tr.Train(ctx)
	require.NoError(t, err)

	require.Len(t, updates, 4)
	for i, p := range updates {
		assert.Equal(t, 25*(i+1), p.Episode)
		assert.Equal(t, 100, p.Episodes)
		assert.Equal(t, time.Duration(i)*time.Second, p.Elapsed)
		assert.Equal(t, "default", p.Label)
	}
	last := updates[3]
	assert.Equal(t, 1.0, last.Fraction())
	assert.Equal(t, ag.Epsilon(), last.Epsilon)
	assert.Equal(t, ag.Table().Len(), last.QTableSize)
	assert.InDelta(t, 100.0/3.0, last.Rate(), 1e-9)
	assert.Zero(t, updates[0].Rate())
}

func TestTrainStopsOnCancel(t *testing.T) {
	tbl, ag := newPair(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	tr, err := New(DefaultConfig(1000), tbl, ag, WithRecorders(recorderFunc(func(r statistics.EpisodeRecord) error {
		if r.Episode == 10 {
			cancel()
		}
		return nil
	})))
	require.NoError(t, err)

	stats, err := tr.Train(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 10, stats.Episodes)
}

type recorderFunc func(statistics.EpisodeRecord) error

func (f recorderFunc) Record(r statistics.EpisodeRecord) error { return f(r) }

func TestTrainSurfacesRecorderErrors(t *testing.T) {
	tbl, ag := newPair(t, 1)
	tr, err := New(DefaultConfig(10), tbl, ag, WithRecorders(failingRecorder{}))
	require.NoError(t, err)
	_, err = tr.Train(context.Background())
	assert.ErrorContains(t, err, "disk full")
}

func TestStepLimit(t *testing.T) {
	rules := table.DefaultRules()
	s, err := shoe.NewStacked(rules.ShoeConfig(), randutil.New(1), 2, 3, 10, 7, 2)
	require.NoError(t, err)
	tbl, err := table.NewTableWithShoe(rules, s, quietLogger())
	require.NoError(t, err)

	cfg := agent.DefaultConfig()
	cfg.Epsilon, cfg.EpsilonMin = 0, 0
	ag, err := agent.New(cfg, quietLogger())
	require.NoError(t, err)
	ag.Table().Row(agent.StateKey{PlayerTotal: 5, DealerUpcard: 10})[table.Hit] = 1

	tc := DefaultConfig(1)
	tc.MaxStepsPerEpisode = 1
	tr, err := New(tc, tbl, ag)
	require.NoError(t, err)

	_, err = tr.Train(context.Background())
	assert.ErrorIs(t, err, ErrStepLimit)
}

func TestEvaluateIsGreedyAndDoesNotLearn(t *testing.T) {
	tbl, ag := newPair(t, 9)
	rec := &sliceRecorder{}
	tr, err := New(DefaultConfig(200), tbl, ag, WithRecorders(rec))
	require.NoError(t, err)
	_, err = tr.Train(context.Background())
	require.NoError(t, err)

	before := ag.Table().Snapshot()
	epsilon := ag.Epsilon()
	updates := ag.Updates()

	stats, err := tr.Evaluate(context.Background(), 300)
	require.NoError(t, err)
	assert.Equal(t, 300, stats.Episodes)
	assert.Equal(t, epsilon, ag.Epsilon(), "exploration restored")
	assert.Equal(t, updates, ag.Updates())
	assert.Len(t, rec.records, 200, "evaluation is not recorded")

	after := ag.Table().Snapshot()
	for k, v := range before {
		assert.Equal(t, v, after[k])
	}
}

func TestCheckpoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "basic_qtable.json")
	tbl, ag := newPair(t, 2)
	cfg := DefaultConfig(50)
	cfg.CheckpointPath = path
	cfg.CheckpointEvery = 20
	tr, err := New(cfg, tbl, ag)
	require.NoError(t, err)
	_, err = tr.Train(context.Background())
	require.NoError(t, err)

	loaded, rules, err := agent.Load(path, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, table.DefaultRules(), rules)
	assert.Equal(t, 50, loaded.Episodes())
	assert.True(t, ag.Table().Equal(loaded.Table()))
}

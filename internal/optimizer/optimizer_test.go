package optimizer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	o, err := New(nil, sampleEntries())
	require.NoError(t, err)
	assert.Equal(t, DefaultParameters().PopulationSize, o.params.PopulationSize)
	assert.NotZero(t, o.seed)
}

func TestNewInvalidParameters(t *testing.T) {
	p := testParams()
	p.CoolingRate = 1.5
	_, err := New(p, sampleEntries())
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestNewCopiesBase(t *testing.T) {
	base := sampleEntries()
	o := newTestOptimizer(t, testParams(), base)

	base[0].EntryTime = 15
	base[0].Speed[0] = 59
	assert.InDelta(t, 8.0, o.Base()[0].EntryTime, 1e-9)
	assert.InDelta(t, 35.0, o.Base()[0].Speed[0], 1e-9)
}

func TestNewNormalizesBase(t *testing.T) {
	p := testParams()
	base := []Entry{
		entry(1, 20.0, 2.0),
		entry(2, 4.96, 1.0),
		entry(3, 9.04, 1.5),
	}
	base[0].Congestion = []int{-1, 9}
	base[0].Speed = []float64{10, 90}

	o := newTestOptimizer(t, p, base)
	got := o.Base()
	assert.InDelta(t, p.WindowEnd, got[0].EntryTime, 1e-9)
	assert.InDelta(t, p.WindowStart, got[1].EntryTime, 1e-9)
	assert.InDelta(t, 9.0, got[2].EntryTime, 1e-9)
	assert.Equal(t, []int{p.CongestionMin, p.CongestionMax}, got[0].Congestion)
	assert.Equal(t, []float64{p.SpeedMin, p.SpeedMax}, got[0].Speed)
	requireInDomain(t, p, got)

	for _, strategy := range []Strategy{StrategySA, StrategyPSO} {
		r, err := o.Run(context.Background(), strategy)
		require.NoError(t, err, strategy)
		requireInDomain(t, p, r.Schedule)
	}
}

func TestNewRejectsNonPositiveTripTime(t *testing.T) {
	for _, tripTime := range []float64{0, -1.5} {
		_, err := New(testParams(), []Entry{entry(1, 8, 2), entry(2, 9, tripTime)})
		assert.ErrorIs(t, err, ErrMalformedTrip)
	}
}

func TestRunSANormalizesSeed(t *testing.T) {
	p := testParams()
	o := newTestOptimizer(t, p, sampleEntries())

	seed := Candidate(sampleEntries())
	seed[0].EntryTime = 18.3
	r, err := o.RunSA(context.Background(), seed)
	require.NoError(t, err)
	requireInDomain(t, p, r.Schedule)
	assert.InDelta(t, 18.3, seed[0].EntryTime, 1e-9)

	seed[1].TripTime = 0
	_, err = o.RunSA(context.Background(), seed)
	assert.ErrorIs(t, err, ErrMalformedTrip)
}

func TestRunEmptyInput(t *testing.T) {
	o := newTestOptimizer(t, testParams(), nil)

	for _, s := range AllStrategies {
		r, err := o.Run(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, s, r.Strategy)
		assert.Empty(t, r.Schedule)
		assert.Zero(t, r.Fitness)
		assert.Equal(t, Breakdown{}, r.Breakdown)
	}
}

func TestRunUnknownStrategy(t *testing.T) {
	o := newTestOptimizer(t, testParams(), sampleEntries())

	_, err := o.Run(context.Background(), "tabu")
	assert.ErrorIs(t, err, ErrUnknownStrategy)

	_, err = o.RunAll(context.Background(), []Strategy{StrategyGA, "tabu"})
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestRunAll(t *testing.T) {
	p := testParams()
	o := newTestOptimizer(t, p, sampleEntries())

	strategies := []Strategy{StrategyPSO, StrategyGA, StrategyHybrid, StrategySA}
	results, err := o.RunAll(context.Background(), strategies)
	require.NoError(t, err)
	require.Len(t, results, len(strategies))

	for i, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, strategies[i], r.Strategy)
		requireInDomain(t, p, r.Schedule)
	}

	// 并发运行与单独运行的结果一致
	single, err := newTestOptimizer(t, p, sampleEntries()).RunGA(context.Background())
	require.NoError(t, err)
	assert.Equal(t, single.Schedule, results[1].Schedule)

	best, err := Compare(results)
	require.NoError(t, err)
	for _, r := range results {
		assert.LessOrEqual(t, best.Fitness, r.Fitness)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newTestOptimizer(t, testParams(), sampleEntries())
	for _, s := range AllStrategies {
		r, err := o.Run(ctx, s)
		require.ErrorIs(t, err, context.Canceled)
		require.NotNil(t, r)
		assert.Equal(t, StopCanceled, r.StopReason)
		assert.Len(t, r.Schedule, len(sampleEntries()))
	}
}

func TestRunIterationBudget(t *testing.T) {
	p := testParams()
	p.MaxIterations = 3
	o := newTestOptimizer(t, p, sampleEntries())

	for _, s := range []Strategy{StrategyGA, StrategySA, StrategyPSO} {
		r, err := o.Run(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, StopIterationBudget, r.StopReason)
		assert.Equal(t, 3, r.Iterations)
	}

	// 混合算法的两个阶段分别计数
	r, err := o.RunHybrid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StopIterationBudget, r.StopReason)
	assert.Equal(t, 6, r.Iterations)
}

func TestRunTimeLimit(t *testing.T) {
	p := testParams()
	p.Generations = 1_000_000
	p.TimeLimit = 20 * time.Millisecond
	o := newTestOptimizer(t, p, sampleEntries())

	r, err := o.RunGA(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StopTimeLimit, r.StopReason)
	assert.Less(t, r.Iterations, p.Generations)
	assert.Len(t, r.Schedule, len(sampleEntries()))
}

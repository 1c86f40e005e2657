package handler

import (
	"testing"
	"time"

	"github.com/safari-ops/entry-scheduler/backend/internal/domain"
	"github.com/safari-ops/entry-scheduler/backend/internal/optimizer"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestBuildParameters(t *testing.T) {
	base := optimizer.DefaultParameters()
	original := *base

	p := buildParameters(base, parameterOverrides{
		PopulationSize:   ptr(20),
		CoolingRate:      ptr(0.95),
		TimeLimitSeconds: ptr(5),
		Seed:             ptr(int64(42)),
	})

	require.Equal(t, 20, p.PopulationSize)
	require.Equal(t, 0.95, p.CoolingRate)
	require.Equal(t, 5*time.Second, p.TimeLimit)
	require.Equal(t, int64(42), p.Seed)

	// 未覆盖的字段保持默认值
	require.Equal(t, base.Generations, p.Generations)
	require.Equal(t, base.Weights, p.Weights)
	require.NoError(t, p.Validate())

	require.Equal(t, original, *base)
}

func TestBuildParametersWithoutOverrides(t *testing.T) {
	base := optimizer.DefaultParameters()
	p := buildParameters(base, parameterOverrides{})

	require.Equal(t, *base, *p)
	require.NotSame(t, base, p)
}

func TestBuildParametersInvalidOverride(t *testing.T) {
	p := buildParameters(optimizer.DefaultParameters(), parameterOverrides{PopulationSize: ptr(1)})
	require.ErrorIs(t, p.Validate(), optimizer.ErrInvalidParameters)
}

func TestToStrategies(t *testing.T) {
	require.Equal(t, optimizer.AllStrategies, toStrategies(nil))
	require.Equal(t, []optimizer.Strategy{optimizer.StrategySA, optimizer.StrategyGA}, toStrategies([]string{"sa", "ga"}))
}

func TestDayRange(t *testing.T) {
	loc := time.FixedZone("EAT", 3*3600)
	from, to := dayRange(time.Date(2026, 3, 1, 17, 45, 0, 0, loc))

	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, loc), from)
	require.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, loc), to)
}

func TestNewOptimizationRun(t *testing.T) {
	runDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	trips := []*domain.Trip{
		{ID: 1, DriverID: "driver-1"},
		{ID: 2, DriverID: "driver-2"},
	}

	best := &optimizer.Result{
		Strategy: optimizer.StrategyHybrid,
		Schedule: optimizer.Candidate{
			{TripID: 1, EntryTime: 8.5, TripTime: 2},
			{TripID: 2, EntryTime: 9.25, TripTime: 1.5},
		},
		Fitness:    12.5,
		Breakdown:  optimizer.Breakdown{TotalTime: 3.5, Congestion: 4, Speed: 0, Violations: 0, Fitness: 12.5},
		Iterations: 30,
		Duration:   1500 * time.Millisecond,
		StopReason: optimizer.StopCompleted,
	}
	ga := &optimizer.Result{
		Strategy:   optimizer.StrategyGA,
		Fitness:    20,
		Iterations: 20,
		Duration:   time.Second,
		StopReason: optimizer.StopTimeLimit,
	}

	run := newOptimizationRun(best, []*optimizer.Result{ga, nil, best}, trips, runDate, 3, 9)

	require.Equal(t, "hybrid", run.Strategy)
	require.Equal(t, 12.5, run.Fitness)
	require.Equal(t, 3.5, run.Breakdown.TotalTime)
	require.Equal(t, 3, run.Rejected)
	require.Equal(t, int64(9), run.CreatedBy)

	require.Len(t, run.Entries, 2)
	require.Equal(t, "driver-1", run.Entries[0].DriverID)
	require.Equal(t, time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC), run.Entries[0].ScheduledEntryTime)
	require.Equal(t, time.Date(2026, 3, 1, 9, 15, 0, 0, time.UTC), run.Entries[1].ScheduledEntryTime)

	require.Len(t, run.Candidates, 2)
	require.Equal(t, domain.OptimizationRunCandidate{
		Strategy:   "ga",
		Fitness:    20,
		Iterations: 20,
		DurationMs: 1000,
		StopReason: "time_limit",
	}, run.Candidates[0])
	require.Equal(t, int64(1500), run.Candidates[1].DurationMs)
}

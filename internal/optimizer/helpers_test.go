package optimizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testParams() *Parameters {
	p := DefaultParameters()
	p.PopulationSize = 10
	p.Generations = 20
	p.CoolingRate = 0.9
	p.NumParticles = 5
	p.PSOIterations = 20
	p.Workers = 2
	p.Seed = 42
	return p
}

func entry(id int64, entryTime, tripTime float64) Entry {
	return Entry{
		TripID:     id,
		EntryTime:  entryTime,
		TripTime:   tripTime,
		Congestion: []int{2, 3},
		Speed:      []float64{35, 45, 50},
	}
}

func sampleEntries() []Entry {
	return []Entry{
		entry(1, 8.0, 2.0),
		entry(2, 8.0, 1.5),
		entry(3, 8.5, 3.0),
		entry(4, 9.0, 1.0),
		entry(5, 9.0, 2.5),
		entry(6, 13.2, 2.0),
	}
}

func newTestOptimizer(t *testing.T, p *Parameters, base []Entry) *Optimizer {
	t.Helper()
	o, err := New(p, base)
	require.NoError(t, err)
	return o
}

// requireInDomain 检查候选方案中的每个字段都在合法范围内
func requireInDomain(t *testing.T, p *Parameters, c Candidate) {
	t.Helper()
	for _, e := range c {
		require.GreaterOrEqual(t, e.EntryTime, p.WindowStart)
		require.LessOrEqual(t, e.EntryTime, p.WindowEnd)
		for _, v := range e.Congestion {
			require.GreaterOrEqual(t, v, p.CongestionMin)
			require.LessOrEqual(t, v, p.CongestionMax)
		}
		for _, v := range e.Speed {
			require.GreaterOrEqual(t, v, p.SpeedMin)
			require.LessOrEqual(t, v, p.SpeedMax)
		}
	}
}

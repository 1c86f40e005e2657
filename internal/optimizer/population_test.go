package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceEntryTime(t *testing.T) {
	p := DefaultParameters()

	t.Run("空闲位置", func(t *testing.T) {
		used := map[int64]int{}
		assert.InDelta(t, 8.3, p.placeEntryTime(8.26, used), 1e-9)
		assert.Equal(t, 1, used[83])
	})

	t.Run("冲突后向后推移", func(t *testing.T) {
		used := map[int64]int{80: 1}
		assert.InDelta(t, 8.5, p.placeEntryTime(8.0, used), 1e-9)
	})

	t.Run("超过窗口后回到窗口开始", func(t *testing.T) {
		used := map[int64]int{165: 1}
		assert.InDelta(t, 5.5, p.placeEntryTime(16.5, used), 1e-9)
	})

	t.Run("限制在窗口内", func(t *testing.T) {
		used := map[int64]int{}
		assert.InDelta(t, 5.5, p.placeEntryTime(3.0, used), 1e-9)
		assert.InDelta(t, 16.5, p.placeEntryTime(20.0, used), 1e-9)
	})

	t.Run("没有空位时保留原时间", func(t *testing.T) {
		used := map[int64]int{}
		for k := int64(55); k <= 165; k += 5 {
			used[k] = 1
		}
		assert.InDelta(t, 8.0, p.placeEntryTime(8.0, used), 1e-9)
		assert.Equal(t, 2, used[80])
	})
}

func TestInitPopulation(t *testing.T) {
	p := testParams()
	base := Candidate{entry(1, 8.0, 2), entry(2, 8.0, 2), entry(3, 8.0, 2), entry(4, 8.0, 2), entry(5, 16.5, 1)}
	pop := p.InitPopulation(base, 30, deriveRNG(7, 1))
	require.Len(t, pop, 30)

	for _, c := range pop {
		require.Len(t, c, len(base))
		requireInDomain(t, p, c)

		// 同一个候选方案内不能有取整后相同的入园时间
		seen := map[int64]bool{}
		for _, e := range c {
			_, key := p.roundTime(e.EntryTime)
			require.False(t, seen[key], "入园时间 %v 重复", e.EntryTime)
			seen[key] = true
		}
	}

	// 候选方案之间以及与 base 之间不能共享切片
	pop[0][0].Speed[0] = 59
	pop[0][0].Congestion[0] = 5
	assert.InDelta(t, 35.0, base[0].Speed[0], 1e-9)
	assert.Equal(t, 2, base[0].Congestion[0])
	for _, c := range pop[1:] {
		assert.InDelta(t, 35.0, c[0].Speed[0], 1e-9)
		assert.Equal(t, 2, c[0].Congestion[0])
	}
}

func TestMutateDomainClosure(t *testing.T) {
	p := testParams()
	rng := deriveRNG(3, 1)
	c := Candidate{
		{TripID: 1, EntryTime: 5.5, TripTime: 1, Congestion: []int{0, 5}, Speed: []float64{30, 60}},
		{TripID: 2, EntryTime: 16.5, TripTime: 2, Congestion: []int{5}, Speed: []float64{60}},
		{TripID: 3, EntryTime: 10, TripTime: 3, Congestion: []int{0}, Speed: []float64{30}},
	}

	for range 200 {
		p.mutate(c, 1, rng)
		requireInDomain(t, p, c)
	}
}

func TestMutateZeroRate(t *testing.T) {
	p := testParams()
	c := Candidate(sampleEntries())
	before := c.Clone()

	p.mutate(c, 0, deriveRNG(3, 1))
	assert.Equal(t, before, c)
}

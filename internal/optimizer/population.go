package optimizer

import (
	"fmt"
	"math"
	"math/rand"
)

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func (p *Parameters) scale() float64 {
	return math.Pow10(p.TimePrecision)
}

// roundTime 按 TimePrecision 取整，返回取整后的时间和用于冲突检测的键
func (p *Parameters) roundTime(t float64) (float64, int64) {
	key := int64(math.Round(t * p.scale()))
	return float64(key) / p.scale(), key
}

func (p *Parameters) clampWindow(t float64) float64 {
	return clamp(t, p.WindowStart, p.WindowEnd)
}

// snap 取整并保证结果仍在窗口内
func (p *Parameters) snap(t float64) (float64, int64) {
	rounded, _ := p.roundTime(t)
	return p.roundTime(p.clampWindow(rounded))
}

// normalizeEntry 原地修正 e：入园时间限制在窗口内并取整，采样值限制在合法范围内
// 时长不为正数或入园时间不是有限值时返回 ErrMalformedTrip
func (p *Parameters) normalizeEntry(e *Entry) error {
	if !(e.TripTime > 0) || math.IsInf(e.TripTime, 0) {
		return fmt.Errorf("%w: 行程 %d 的时长 %v 不是正数", ErrMalformedTrip, e.TripID, e.TripTime)
	}
	if math.IsNaN(e.EntryTime) || math.IsInf(e.EntryTime, 0) {
		return fmt.Errorf("%w: 行程 %d 的入园时间 %v 无效", ErrMalformedTrip, e.TripID, e.EntryTime)
	}

	e.EntryTime, _ = p.snap(e.EntryTime)
	for i := range e.Congestion {
		e.Congestion[i] = clampInt(e.Congestion[i], p.CongestionMin, p.CongestionMax)
	}
	for i := range e.Speed {
		e.Speed[i] = clamp(e.Speed[i], p.SpeedMin, p.SpeedMax)
	}
	return nil
}

/**
 * placeEntryTime 在同一个候选方案内为入园时间找一个空闲的位置
 * 1. 先把时间限制在窗口内并取整
 * 2. 如果取整后的时间已经被占用，则向后推移 CollisionStep，超过窗口结束时间后回到窗口开始时间
 * 3. 窗口内所有位置都被占满时保留原时间（冲突是软约束）
 * used 记录每个取整时间被占用的次数
 */
func (p *Parameters) placeEntryTime(t float64, used map[int64]int) float64 {
	t = p.clampWindow(t)

	slots := int(math.Ceil((p.WindowEnd-p.WindowStart)/p.CollisionStep)) + 1
	cur := t
	for range 2 * slots {
		rounded, key := p.snap(cur)
		if used[key] == 0 {
			used[key]++
			return rounded
		}

		cur += p.CollisionStep
		if cur > p.WindowEnd {
			cur = p.WindowStart
		}
	}

	rounded, key := p.snap(t)
	used[key]++
	return rounded
}

// InitPopulation 以 base 为模板生成 size 个互相独立的候选方案
func (p *Parameters) InitPopulation(base Candidate, size int, rng *rand.Rand) []Candidate {
	pop := make([]Candidate, size)

	for i := range pop {
		c := base.Clone()
		used := make(map[int64]int, len(c))
		for j := range c {
			t := c[j].EntryTime + uniform(rng, -p.InitJitter, p.InitJitter)
			c[j].EntryTime = p.placeEntryTime(t, used)
		}
		pop[i] = c
	}

	return pop
}

// mutate 以 rate 的概率逐个修改候选方案中的行程，会直接修改 c，调用方需要保证 c 是自己持有的拷贝
func (p *Parameters) mutate(c Candidate, rate float64, rng *rand.Rand) {
	used := make(map[int64]int, len(c))
	for _, e := range c {
		_, key := p.roundTime(e.EntryTime)
		used[key]++
	}

	for i := range c {
		if rng.Float64() >= rate {
			continue
		}

		e := &c[i]

		// 入园时间：在取整后的时间上加减 TimeJitter 以内的随机数，然后重新找空位
		rounded, key := p.roundTime(e.EntryTime)
		used[key]--
		t := rounded + uniform(rng, -p.TimeJitter, p.TimeJitter)
		e.EntryTime = p.placeEntryTime(t, used)

		for j := range e.Congestion {
			d := rng.Intn(2*p.CongestionJitter+1) - p.CongestionJitter
			e.Congestion[j] = clampInt(e.Congestion[j]+d, p.CongestionMin, p.CongestionMax)
		}

		for j := range e.Speed {
			d := float64(rng.Intn(2*p.SpeedJitter+1) - p.SpeedJitter)
			e.Speed[j] = clamp(e.Speed[j]+d, p.SpeedMin, p.SpeedMax)
		}
	}
}

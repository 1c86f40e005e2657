package optimizer

import (
	"math"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Evaluator 计算候选排班的适应度，本身不持有任何可变状态
type Evaluator struct {
	weights    WeightSchedule
	capacity   int
	speedFloor float64
}

func NewEvaluator(params *Parameters) *Evaluator {
	return &Evaluator{
		weights:    params.Weights,
		capacity:   params.Capacity,
		speedFloor: params.SpeedFloor,
	}
}

/**
 * 计算候选排班的适应度（越小越好）
 * fitness = w_time * totalTime + w_congestion * congestion + w_speed * speed + w_violation * violations
 * 其中:
 * 		1. totalTime 为所有行程时长之和
 * 		2. congestion 为所有拥堵采样之和
 * 		3. speed 为平均车速低于下限的平方惩罚之和
 * 		4. violations 为同时在园行程数超过容量上限的部分
 * 权重随进度 progress 变化，越到后期越看重拥堵，越不看重车速
 */
func (ev *Evaluator) Evaluate(c Candidate, progress float64) Breakdown {
	if len(c) == 0 {
		return Breakdown{}
	}

	var b Breakdown
	for _, e := range c {
		b.TotalTime += e.TripTime

		for _, v := range e.Congestion {
			b.Congestion += float64(v)
		}

		// 没有车速采样时按 0 处理
		avg := 0.0
		if len(e.Speed) > 0 {
			for _, v := range e.Speed {
				avg += v
			}
			avg /= float64(len(e.Speed))
		}
		b.Speed += math.Pow(math.Max(0, ev.speedFloor-avg), 2)
	}
	b.Violations = Violations(c, ev.capacity)

	w := ev.weights.At(progress)
	b.Fitness = w.Time*b.TotalTime +
		w.Congestion*b.Congestion +
		w.Speed*b.Speed +
		w.Violation*float64(b.Violations)

	return b
}

func (ev *Evaluator) Fitness(c Candidate, progress float64) float64 {
	return ev.Evaluate(c, progress).Fitness
}

type event struct {
	time  float64
	delta int
}

// Violations 扫描所有入园/出园事件，返回同时在园行程数的峰值超出 capacity 的部分
// 同一时刻先处理出园再处理入园，首尾相接的两趟行程不算重叠
func Violations(c Candidate, capacity int) int {
	events := make([]event, 0, 2*len(c))
	for _, e := range c {
		events = append(events, event{e.EntryTime, 1}, event{e.EntryTime + e.TripTime, -1})
	}
	slices.SortFunc(events, func(a, b event) int {
		if a.time != b.time {
			if a.time < b.time {
				return -1
			}
			return 1
		}
		return a.delta - b.delta
	})

	active, peak := 0, 0
	for _, ev := range events {
		active += ev.delta
		peak = max(peak, active)
	}

	return max(0, peak-capacity)
}

// evaluatePopulation 并行计算整个种群的适应度，不使用随机数
func (ev *Evaluator) evaluatePopulation(pop []*scored, progress float64, workers int) {
	var g errgroup.Group
	g.SetLimit(max(1, workers))

	for _, s := range pop {
		g.Go(func() error {
			s.fitness = ev.Fitness(s.c, progress)
			return nil
		})
	}

	_ = g.Wait()
}

package optimizer

import (
	"context"
	"math"
	"math/rand"
)

// diversity 返回种群中所有入园时间的标准差（总体标准差）
func diversity(pop []*scored) float64 {
	n := 0
	sum := 0.0
	for _, s := range pop {
		for _, e := range s.c {
			sum += e.EntryTime
			n++
		}
	}
	if n == 0 {
		return 0
	}

	mean := sum / float64(n)
	variance := 0.0
	for _, s := range pop {
		for _, e := range s.c {
			variance += (e.EntryTime - mean) * (e.EntryTime - mean)
		}
	}

	return math.Sqrt(variance / float64(n))
}

// adaptiveMutationRate 种群多样性过低时提高变异率，避免过早收敛
func (p *Parameters) adaptiveMutationRate(gen int, pop []*scored) float64 {
	if diversity(pop) < p.DiversityThreshold {
		progress := float64(gen) / float64(p.Generations)
		return math.Min(p.MutationRateMax, p.MutationRateMin*(1+progress))
	}
	return p.MutationRateMin
}

// hybrid 先用自适应变异率的遗传算法搜索，再以其最优解为起点做模拟退火
// 两个阶段共享同一个截止时间，迭代次数上限对每个阶段分别生效
func (o *Optimizer) hybrid(ctx context.Context, rng *rand.Rand, b *budget) (Candidate, int, StopReason, error) {
	gaBest, gaSteps, reason, err := o.evolve(ctx, rng, b, o.params.adaptiveMutationRate)
	if reason == StopCanceled || reason == StopTimeLimit {
		return gaBest, gaSteps, reason, err
	}

	o.logger.Debug("混合算法遗传阶段结束", "steps", gaSteps, "fitness", o.eval.Fitness(gaBest, 0))

	best, saSteps, reason, err := o.anneal(ctx, rng, b, gaBest)
	return best, gaSteps + saSteps, reason, err
}

package optimizer

import (
	"context"
	"math"
	"math/rand"
)

// anneal 从 seed 出发进行模拟退火，返回搜索过程中遇到的最优方案
// 初始温度不高于最低温度时不做任何搜索，直接返回 seed 的拷贝
func (o *Optimizer) anneal(ctx context.Context, rng *rand.Rand, b *budget, seed Candidate) (Candidate, int, StopReason, error) {
	p := o.params

	current := seed.Clone()
	currentFit := o.eval.Fitness(current, 0)
	best, bestFit := current, currentFit

	steps := 0
	for t := p.InitialTemperature; t > p.MinTemperature; t *= p.CoolingRate {
		if reason, err := b.check(ctx, steps); reason != "" {
			return best.Clone(), steps, reason, err
		}

		neighbor := current.Clone()
		p.mutate(neighbor, p.SAMutationRate, rng)
		neighborFit := o.eval.Fitness(neighbor, 0)

		// Metropolis 准则：更好的解一定接受，更差的解以 exp(-Δ/T) 的概率接受
		delta := neighborFit - currentFit
		if delta < 0 || rng.Float64() < math.Exp(-delta/t) {
			current, currentFit = neighbor, neighborFit
		}

		if currentFit < bestFit {
			best, bestFit = current, currentFit
		}

		steps++
	}

	return best.Clone(), steps, StopCompleted, nil
}

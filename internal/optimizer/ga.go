package optimizer

import (
	"context"
	"math"
	"math/rand"
	"slices"
	"strconv"
	"strings"
)

// rateFunc 根据当前代数和种群返回本代的变异率
type rateFunc func(gen int, pop []*scored) float64

// gaMutationRate 随代数线性下降，从 MutationRateMax 降到 MutationRateMin
func (p *Parameters) gaMutationRate(gen int, _ []*scored) float64 {
	return math.Max(p.MutationRateMin, p.MutationRateMax*(1-float64(gen)/float64(p.Generations)))
}

// 使用轮盘赌选出 max(2, len(pop)/2) 个父本（可重复），适应度越小被选中的概率越大
func selectParents(pop []*scored, rng *rand.Rand) []*scored {
	weights := make([]float64, len(pop))
	sum := 0.0
	for i, s := range pop {
		weights[i] = 1 / (1 + math.Max(0, s.fitness))
		sum += weights[i]
	}

	k := max(2, len(pop)/2)
	parents := make([]*scored, 0, k)
	for range k {
		pick := rng.Float64() * sum
		partial := 0.0
		chosen := pop[len(pop)-1]
		for i, s := range pop {
			partial += weights[i]
			if partial >= pick {
				chosen = s
				break
			}
		}
		parents = append(parents, chosen)
	}

	return parents
}

// 均匀交叉，每个位置各以 0.5 的概率交换，子代中的行程全部是拷贝
func uniformCrossover(a, b Candidate, rng *rand.Rand) (Candidate, Candidate) {
	c1 := make(Candidate, len(a))
	c2 := make(Candidate, len(b))
	for i := range a {
		if rng.Float64() < 0.5 {
			c1[i], c2[i] = a[i].clone(), b[i].clone()
		} else {
			c1[i], c2[i] = b[i].clone(), a[i].clone()
		}
	}
	return c1, c2
}

// signature 由入园时间、行程时长和车速采样组成，用于去重
func signature(c Candidate) string {
	var sb strings.Builder
	for _, e := range c {
		sb.WriteString(strconv.FormatFloat(e.EntryTime, 'g', -1, 64))
		sb.WriteByte('|')
		sb.WriteString(strconv.FormatFloat(e.TripTime, 'g', -1, 64))
		for _, v := range e.Speed {
			sb.WriteByte(',')
			sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		sb.WriteByte(';')
	}
	return sb.String()
}

// dedupe 去掉签名相同的候选方案，保留第一次出现的那个
func dedupe(pop []*scored) []*scored {
	seen := make(map[string]struct{}, len(pop))
	out := make([]*scored, 0, len(pop))
	for _, s := range pop {
		sig := signature(s.c)
		if _, exists := seen[sig]; exists {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, s)
	}
	return out
}

func sortByFitness(pop []*scored) {
	slices.SortStableFunc(pop, func(a, b *scored) int {
		switch {
		case a.fitness < b.fitness:
			return -1
		case a.fitness > b.fitness:
			return 1
		}
		return 0
	})
}

// evolve 是遗传算法的主循环，混合算法也会使用它，只是变异率的计算方式不同
func (o *Optimizer) evolve(ctx context.Context, rng *rand.Rand, b *budget, rate rateFunc) (Candidate, int, StopReason, error) {
	p := o.params

	pop := make([]*scored, 0, p.PopulationSize)
	for _, c := range p.InitPopulation(o.base, p.PopulationSize, rng) {
		pop = append(pop, &scored{c: c})
	}
	o.eval.evaluatePopulation(pop, 0, p.Workers)
	sortByFitness(pop)

	for gen := 0; gen < p.Generations; gen++ {
		if reason, err := b.check(ctx, gen); reason != "" {
			return pop[0].c, gen, reason, err
		}

		progress := float64(gen) / float64(p.Generations)
		mutationRate := rate(gen, pop)
		parents := selectParents(pop, rng)

		offspring := make([]*scored, 0, p.PopulationSize)

		// 保留精英
		for _, s := range pop[:min(p.EliteCount, len(pop))] {
			offspring = append(offspring, &scored{c: s.c.Clone()})
		}

		for len(offspring) < p.PopulationSize {
			// 从父本池中选出两个不同的位置
			i := rng.Intn(len(parents))
			j := rng.Intn(len(parents) - 1)
			if j >= i {
				j++
			}

			c1, c2 := uniformCrossover(parents[i].c, parents[j].c, rng)
			p.mutate(c1, mutationRate, rng)
			p.mutate(c2, mutationRate, rng)

			offspring = append(offspring, &scored{c: c1})
			if len(offspring) < p.PopulationSize {
				offspring = append(offspring, &scored{c: c2})
			}
		}

		o.eval.evaluatePopulation(offspring, progress, p.Workers)
		sortByFitness(offspring)
		pop = dedupe(offspring)
	}

	return pop[0].c, p.Generations, StopCompleted, nil
}

package optimizer

import (
	"context"
	"math/rand"
)

// particle: 粒子只在入园时间这一维上移动
type particle struct {
	position Candidate
	velocity []float64
	fitness  float64

	best    Candidate
	bestFit float64
}

func (o *Optimizer) newParticle(rng *rand.Rand) *particle {
	p := o.params

	pt := &particle{
		position: o.base.Clone(),
		velocity: make([]float64, len(o.base)),
	}
	for i := range pt.velocity {
		pt.velocity[i] = uniform(rng, -p.InitialVelocity, p.InitialVelocity)
	}
	pt.fitness = o.eval.Fitness(pt.position, 0)
	pt.best, pt.bestFit = pt.position.Clone(), pt.fitness

	return pt
}

/**
 * swarm 粒子群优化
 * v = w * v + c1 * r1 * (pbest - x) + c2 * r2 * (gbest - x)
 * x = clamp(x + v, origin - band, origin + band)，再限制在窗口内
 * gbest 从原始排班开始，只有严格更优时才更新，所以结果不会比原始排班差
 */
func (o *Optimizer) swarm(ctx context.Context, rng *rand.Rand, b *budget) (Candidate, int, StopReason, error) {
	p := o.params

	particles := make([]*particle, p.NumParticles)
	for i := range particles {
		particles[i] = o.newParticle(rng)
	}

	gbest := o.base.Clone()
	gbestFit := o.eval.Fitness(gbest, 0)

	for iter := 0; iter < p.PSOIterations; iter++ {
		if reason, err := b.check(ctx, iter); reason != "" {
			return gbest.Clone(), iter, reason, err
		}

		for _, pt := range particles {
			for i := range pt.position {
				e := &pt.position[i]
				r1, r2 := rng.Float64(), rng.Float64()

				pt.velocity[i] = p.Inertia*pt.velocity[i] +
					p.Cognitive*r1*(pt.best[i].EntryTime-e.EntryTime) +
					p.Social*r2*(gbest[i].EntryTime-e.EntryTime)

				t := clamp(e.EntryTime+pt.velocity[i], e.origin-p.PositionBand, e.origin+p.PositionBand)
				e.EntryTime = p.clampWindow(t)
			}

			pt.fitness = o.eval.Fitness(pt.position, 0)
			if pt.fitness < pt.bestFit {
				pt.best, pt.bestFit = pt.position.Clone(), pt.fitness
			}
			if pt.bestFit < gbestFit {
				gbest, gbestFit = pt.best.Clone(), pt.bestFit
			}
		}
	}

	return gbest.Clone(), p.PSOIterations, StopCompleted, nil
}

package optimizer

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"
)

type Optimizer struct {
	params *Parameters
	base   Candidate
	eval   *Evaluator
	seed   int64
	logger *slog.Logger
}

type Option func(*Optimizer)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Optimizer) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New 创建优化器，params 为 nil 时使用默认参数
// base 会被深拷贝并修正到合法范围内，之后对 base 的修改不会影响优化器
// 任何一个行程的时长不为正数时返回 ErrMalformedTrip
func New(params *Parameters, base []Entry, opts ...Option) (*Optimizer, error) {
	if params == nil {
		params = DefaultParameters()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	o := &Optimizer{
		params: params,
		base:   Candidate(base).Clone(),
		eval:   NewEvaluator(params),
		seed:   resolveSeed(params.Seed),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	for i := range o.base {
		if err := params.normalizeEntry(&o.base[i]); err != nil {
			return nil, err
		}
		o.base[i].origin = o.base[i].EntryTime
	}

	return o, nil
}

// Base 返回原始排班的拷贝
func (o *Optimizer) Base() Candidate {
	return o.base.Clone()
}

func (o *Optimizer) Evaluator() *Evaluator {
	return o.eval
}

// budget: 每一步开始前检查是否被取消、是否超时、是否超过迭代次数上限
type budget struct {
	deadline time.Time
	maxSteps int
}

func (o *Optimizer) newBudget() *budget {
	b := &budget{maxSteps: o.params.MaxIterations}
	if o.params.TimeLimit > 0 {
		b.deadline = time.Now().Add(o.params.TimeLimit)
	}
	return b
}

func (b *budget) check(ctx context.Context, step int) (StopReason, error) {
	if err := ctx.Err(); err != nil {
		return StopCanceled, err
	}
	if b.maxSteps > 0 && step >= b.maxSteps {
		return StopIterationBudget, nil
	}
	if !b.deadline.IsZero() && time.Now().After(b.deadline) {
		return StopTimeLimit, nil
	}
	return "", nil
}

type engine func(ctx context.Context, rng *rand.Rand, b *budget) (Candidate, int, StopReason, error)

// run 负责计时、日志和结果整理
// 结果的适应度统一按 progress = 0 重新计算，保证不同算法之间可以比较
// 被调用方取消时返回目前为止的最优结果以及 ctx.Err()
func (o *Optimizer) run(ctx context.Context, strategy Strategy, fn engine) (*Result, error) {
	start := time.Now()

	if len(o.base) == 0 {
		return &Result{
			Strategy:   strategy,
			Schedule:   Candidate{},
			StopReason: StopCompleted,
		}, nil
	}

	o.logger.Debug("开始运行优化算法", "strategy", strategy, "entries", len(o.base), "seed", o.seed)

	rng := deriveRNG(o.seed, strategy.stream())
	best, iterations, reason, err := fn(ctx, rng, o.newBudget())

	breakdown := o.eval.Evaluate(best, 0)
	result := &Result{
		Strategy:   strategy,
		Schedule:   best,
		Fitness:    breakdown.Fitness,
		Breakdown:  breakdown,
		Iterations: iterations,
		Duration:   time.Since(start),
		StopReason: reason,
	}

	o.logger.Info("优化算法运行结束",
		"strategy", strategy,
		"fitness", result.Fitness,
		"violations", breakdown.Violations,
		"iterations", iterations,
		"stopReason", reason,
		"duration", result.Duration,
	)

	return result, err
}

func (o *Optimizer) RunGA(ctx context.Context) (*Result, error) {
	return o.run(ctx, StrategyGA, func(ctx context.Context, rng *rand.Rand, b *budget) (Candidate, int, StopReason, error) {
		return o.evolve(ctx, rng, b, o.params.gaMutationRate)
	})
}

// RunSA 从 seed 开始退火，seed 为 nil 时从原始排班开始
func (o *Optimizer) RunSA(ctx context.Context, seed Candidate) (*Result, error) {
	if seed == nil {
		seed = o.base
	}
	if len(seed) != len(o.base) {
		return nil, fmt.Errorf("%w: 初始解的长度 %d 与行程数 %d 不一致", ErrInvalidParameters, len(seed), len(o.base))
	}

	seed = seed.Clone()
	for i := range seed {
		if err := o.params.normalizeEntry(&seed[i]); err != nil {
			return nil, err
		}
	}

	return o.run(ctx, StrategySA, func(ctx context.Context, rng *rand.Rand, b *budget) (Candidate, int, StopReason, error) {
		return o.anneal(ctx, rng, b, seed)
	})
}

func (o *Optimizer) RunPSO(ctx context.Context) (*Result, error) {
	return o.run(ctx, StrategyPSO, o.swarm)
}

func (o *Optimizer) RunHybrid(ctx context.Context) (*Result, error) {
	return o.run(ctx, StrategyHybrid, o.hybrid)
}

func (o *Optimizer) Run(ctx context.Context, strategy Strategy) (*Result, error) {
	switch strategy {
	case StrategyGA:
		return o.RunGA(ctx)
	case StrategySA:
		return o.RunSA(ctx, nil)
	case StrategyPSO:
		return o.RunPSO(ctx)
	case StrategyHybrid:
		return o.RunHybrid(ctx)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
}

// RunAll 并发运行多个算法，每个算法使用独立的随机数流，结果的顺序与 strategies 一致
func (o *Optimizer) RunAll(ctx context.Context, strategies []Strategy) ([]*Result, error) {
	for _, s := range strategies {
		if !s.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
		}
	}

	results := make([]*Result, len(strategies))
	g, ctx := errgroup.WithContext(ctx)

	for i, s := range strategies {
		g.Go(func() error {
			r, err := o.Run(ctx, s)
			results[i] = r
			return err
		})
	}

	return results, g.Wait()
}

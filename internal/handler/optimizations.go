package handler

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/safari-ops/entry-scheduler/backend/internal/domain"
	"github.com/safari-ops/entry-scheduler/backend/internal/optimizer"
)

// 同一时间只允许运行一个优化任务
const optimizationLockKey = "optimization_lock"

// parameterOverrides 每次请求可以覆盖的参数，未提供的字段使用配置中的默认值
type parameterOverrides struct {
	Capacity   *int     `json:"capacity" validate:"omitempty,min=1"`
	SpeedFloor *float64 `json:"speedFloor" validate:"omitempty,gte=0"`

	PopulationSize  *int     `json:"populationSize" validate:"omitempty,min=2"`
	Generations     *int     `json:"generations" validate:"omitempty,min=1"`
	MutationRateMax *float64 `json:"mutationRateMax" validate:"omitempty,gte=0,lte=1"`
	MutationRateMin *float64 `json:"mutationRateMin" validate:"omitempty,gte=0,lte=1"`
	EliteCount      *int     `json:"eliteCount" validate:"omitempty,gte=0"`

	InitialTemperature *float64 `json:"initialTemperature" validate:"omitempty,gt=0"`
	CoolingRate        *float64 `json:"coolingRate" validate:"omitempty,gt=0,lt=1"`
	MinTemperature     *float64 `json:"minTemperature" validate:"omitempty,gt=0"`

	NumParticles  *int     `json:"numParticles" validate:"omitempty,min=1"`
	PSOIterations *int     `json:"psoIterations" validate:"omitempty,min=1"`
	Inertia       *float64 `json:"inertia" validate:"omitempty,gte=0"`
	Cognitive     *float64 `json:"cognitive" validate:"omitempty,gte=0"`
	Social        *float64 `json:"social" validate:"omitempty,gte=0"`

	MaxIterations    *int   `json:"maxIterations" validate:"omitempty,gte=0"`
	TimeLimitSeconds *int   `json:"timeLimitSeconds" validate:"omitempty,gte=0"`
	Seed             *int64 `json:"seed"`
}

func override[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// buildParameters 在 base 的拷贝上应用覆盖项，base 本身不会被修改
func buildParameters(base *optimizer.Parameters, o parameterOverrides) *optimizer.Parameters {
	p := *base

	override(&p.Capacity, o.Capacity)
	override(&p.SpeedFloor, o.SpeedFloor)

	override(&p.PopulationSize, o.PopulationSize)
	override(&p.Generations, o.Generations)
	override(&p.MutationRateMax, o.MutationRateMax)
	override(&p.MutationRateMin, o.MutationRateMin)
	override(&p.EliteCount, o.EliteCount)

	override(&p.InitialTemperature, o.InitialTemperature)
	override(&p.CoolingRate, o.CoolingRate)
	override(&p.MinTemperature, o.MinTemperature)

	override(&p.NumParticles, o.NumParticles)
	override(&p.PSOIterations, o.PSOIterations)
	override(&p.Inertia, o.Inertia)
	override(&p.Cognitive, o.Cognitive)
	override(&p.Social, o.Social)

	override(&p.MaxIterations, o.MaxIterations)
	override(&p.Seed, o.Seed)
	if o.TimeLimitSeconds != nil {
		p.TimeLimit = time.Duration(*o.TimeLimitSeconds) * time.Second
	}

	return &p
}

// newOptimizationRun 把胜出的结果以及所有参与比较的结果整理成需要保存的记录
func newOptimizationRun(best *optimizer.Result, results []*optimizer.Result, trips []*domain.Trip, runDate time.Time, rejected int, createdBy int64) *domain.OptimizationRun {
	run := &domain.OptimizationRun{
		RunDate:  runDate,
		Strategy: string(best.Strategy),
		Fitness:  best.Fitness,
		Breakdown: domain.OptimizationBreakdown{
			TotalTime:  best.Breakdown.TotalTime,
			Congestion: best.Breakdown.Congestion,
			Speed:      best.Breakdown.Speed,
			Violations: best.Breakdown.Violations,
		},
		Entries:    optimizer.ToAssignments(best.Schedule, trips, runDate),
		Candidates: make([]domain.OptimizationRunCandidate, 0, len(results)),
		Rejected:   rejected,
		CreatedBy:  createdBy,
	}

	for _, r := range results {
		if r == nil {
			continue
		}
		run.Candidates = append(run.Candidates, domain.OptimizationRunCandidate{
			Strategy:   string(r.Strategy),
			Fitness:    r.Fitness,
			Iterations: r.Iterations,
			DurationMs: r.Duration.Milliseconds(),
			StopReason: string(r.StopReason),
		})
	}

	return run
}

func toStrategies(names []string) []optimizer.Strategy {
	if len(names) == 0 {
		return optimizer.AllStrategies
	}
	strategies := make([]optimizer.Strategy, len(names))
	for i, name := range names {
		strategies[i] = optimizer.Strategy(name)
	}
	return strategies
}

func (h *Handler) acquireOptimizationLock() (bool, error) {
	ctx, cancel := h.redisContext(context.Background())
	defer cancel()

	return h.redisClient.SetNX(ctx, optimizationLockKey, time.Now().Unix(), time.Duration(h.config.Redis.LockExpiration)*time.Second).Result()
}

func (h *Handler) releaseOptimizationLock() {
	ctx, cancel := h.redisContext(context.Background())
	defer cancel()

	if err := h.redisClient.Del(ctx, optimizationLockKey).Err(); err != nil {
		slog.Error("释放优化任务锁失败", "error", err)
	}
}

/**
 * CreateOptimization 为 runDate 当天的行程安排入园时间
 * 1. 读取当天指定状态的行程，跳过不合法的行程
 * 2. 并发运行请求中的各个算法，选出适应度最低的结果
 * 3. 保存结果以及每个算法的运行情况
 */
func (h *Handler) CreateOptimization(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Strategies []string           `json:"strategies" validate:"omitempty,unique,dive,oneof=ga sa pso hybrid"`
		RunDate    string             `json:"runDate" validate:"required,datetime=2006-01-02"`
		Status     string             `json:"status" validate:"omitempty,oneof=pending ongoing completed"`
		Parameters parameterOverrides `json:"parameters"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	runDate, err := time.ParseInLocation(dateLayout, req.RunDate, time.Local)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	status := domain.TripStatus(req.Status)
	if status == "" {
		status = domain.TripStatusPending
	}

	params := buildParameters(h.config.Optimizer.Parameters(), req.Parameters)
	if err := params.Validate(); err != nil {
		h.badRequest(w, r, err)
		return
	}

	acquired, err := h.acquireOptimizationLock()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !acquired {
		h.errorResponse(w, r, "已有优化任务正在运行，请稍后重试")
		return
	}
	defer h.releaseOptimizationLock()

	from, to := dayRange(runDate)
	trips, err := h.repository.GetTrips(status, from, to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	entries, rejected := optimizer.EntriesFromTrips(trips, params)
	for _, err := range rejected {
		slog.Warn("跳过不合法的行程", "runDate", req.RunDate, "error", err)
	}
	if len(entries) == 0 {
		h.errorResponse(w, r, "当天没有可以优化的行程")
		return
	}

	logger := slog.Default().With("runDate", req.RunDate)
	opt, err := optimizer.New(params, entries, optimizer.WithLogger(logger))
	if err != nil {
		if errors.Is(err, optimizer.ErrInvalidParameters) {
			h.badRequest(w, r, err)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	results, err := opt.RunAll(r.Context(), toStrategies(req.Strategies))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	best, err := optimizer.Compare(results)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	run := newOptimizationRun(best, results, trips, runDate, len(rejected), myInfo.ID)
	if err := h.repository.InsertOptimizationRun(run); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	logger.Info("优化任务完成", "id", run.ID, "strategy", run.Strategy, "fitness", run.Fitness, "rejected", run.Rejected)
	h.successResponse(w, r, "优化完成", run)
}

func (h *Handler) GetAllOptimizationRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.repository.GetAllOptimizationRuns()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取优化结果列表成功", runs)
}

func (h *Handler) GetLatestOptimizationRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.repository.GetLatestOptimizationRun()
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.successResponse(w, r, "暂无优化结果", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取最新优化结果成功", run)
}

func (h *Handler) GetOptimizationRun(w http.ResponseWriter, r *http.Request) {
	run := r.Context().Value(OptimizationRunCtx).(*domain.OptimizationRun)
	h.successResponse(w, r, "获取优化结果成功", run)
}

// PublishOptimizationRun 发布优化结果，并通过邮件通知每位司机安排的入园时间
func (h *Handler) PublishOptimizationRun(w http.ResponseWriter, r *http.Request) {
	run := r.Context().Value(OptimizationRunCtx).(*domain.OptimizationRun)

	if err := h.repository.MarkOptimizationRunPublished(run); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "该优化结果已发布")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	driverIDs := make([]string, 0, len(run.Entries))
	for _, entry := range run.Entries {
		driverIDs = append(driverIDs, entry.DriverID)
	}

	drivers, err := h.repository.GetDriversByIDs(driverIDs)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 已经标记为发布，单封邮件失败只记录日志
	sent := 0
	for _, entry := range run.Entries {
		driver, ok := drivers[entry.DriverID]
		if !ok {
			slog.Warn("找不到行程对应的司机", "optimizationRunID", run.ID, "tripID", entry.TripID, "driverID", entry.DriverID)
			continue
		}

		if err := h.publishMail(domain.MailMessage{
			Type: domain.MailTypeScheduleAssigned,
			To:   driver.Email,
			Data: domain.ScheduleAssignedMailData{
				DriverName:         driver.Name,
				VehicleID:          driver.VehicleID,
				ScheduledEntryTime: entry.ScheduledEntryTime,
				TripHours:          entry.TripHours,
			},
		}); err != nil {
			slog.Error("发送入园时间通知失败", "optimizationRunID", run.ID, "driverID", driver.ID, "error", err)
			continue
		}
		sent++
	}

	h.successResponse(w, r, "优化结果已发布", struct {
		Run      *domain.OptimizationRun `json:"run"`
		Notified int                     `json:"notified"`
	}{
		Run:      run,
		Notified: sent,
	})
}

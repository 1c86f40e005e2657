package optimizer

import (
	"slices"
	"time"
)

// Entry: 候选排班中某一趟行程的可变部分，每个候选方案持有自己的一份拷贝
type Entry struct {
	TripID     int64
	EntryTime  float64 // 当天的小时数，例如 8.5 表示 08:30
	TripTime   float64 // 行程时长（小时）
	Congestion []int
	Speed      []float64

	origin float64 // 入园时间的初始值，PSO 只允许在它附近移动
}

func (e Entry) clone() Entry {
	e.Congestion = slices.Clone(e.Congestion)
	e.Speed = slices.Clone(e.Speed)
	return e
}

// Candidate: 一个完整的候选排班，长度在一次运行中固定
type Candidate []Entry

// Clone 深拷贝，保证不同候选方案之间不会共享任何切片
func (c Candidate) Clone() Candidate {
	if c == nil {
		return nil
	}
	out := make(Candidate, len(c))
	for i := range c {
		out[i] = c[i].clone()
	}
	return out
}

// scored 是带适应度的候选方案
type scored struct {
	c       Candidate
	fitness float64
}

type Strategy string

const (
	StrategyGA     Strategy = "ga"
	StrategySA     Strategy = "sa"
	StrategyPSO    Strategy = "pso"
	StrategyHybrid Strategy = "hybrid"
)

var AllStrategies = []Strategy{StrategyGA, StrategySA, StrategyPSO, StrategyHybrid}

func (s Strategy) Valid() bool {
	return slices.Contains(AllStrategies, s)
}

// 每种算法使用独立的随机数流，编号不能随意修改，否则同一个种子得到的结果会变化
func (s Strategy) stream() uint64 {
	switch s {
	case StrategyGA:
		return 1
	case StrategySA:
		return 2
	case StrategyPSO:
		return 3
	case StrategyHybrid:
		return 4
	}
	return 0
}

type StopReason string

const (
	StopCompleted       StopReason = "completed"
	StopTimeLimit       StopReason = "time_limit"
	StopIterationBudget StopReason = "iteration_budget"
	StopCanceled        StopReason = "canceled"
)

// Breakdown: 适应度及其各个组成部分
type Breakdown struct {
	TotalTime  float64 `json:"totalTime"`
	Congestion float64 `json:"congestion"`
	Speed      float64 `json:"speed"`
	Violations int     `json:"violations"`
	Fitness    float64 `json:"fitness"`
}

type Result struct {
	Strategy   Strategy      `json:"strategy"`
	Schedule   Candidate     `json:"-"`
	Fitness    float64       `json:"fitness"`
	Breakdown  Breakdown     `json:"breakdown"`
	Iterations int           `json:"iterations"`
	Duration   time.Duration `json:"duration"`
	StopReason StopReason    `json:"stopReason"`
}

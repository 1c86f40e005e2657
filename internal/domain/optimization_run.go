package domain

import "time"

type OptimizationBreakdown struct {
	TotalTime  float64 `json:"totalTime"`
	Congestion float64 `json:"congestion"`
	Speed      float64 `json:"speed"`
	Violations int     `json:"violations"`
}

// OptimizationRunEntry 为某一趟行程安排的入园时间
type OptimizationRunEntry struct {
	TripID             int64     `json:"tripID"`
	DriverID           string    `json:"driverID"`
	ScheduledEntryTime time.Time `json:"scheduledEntryTime"`
	TripHours          float64   `json:"tripHours"`
}

// OptimizationRunCandidate 记录参与比较的每一种算法的结果
type OptimizationRunCandidate struct {
	Strategy   string  `json:"strategy"`
	Fitness    float64 `json:"fitness"`
	Iterations int     `json:"iterations"`
	DurationMs int64   `json:"durationMs"`
	StopReason string  `json:"stopReason"`
}

type OptimizationRun struct {
	ID         int64                      `json:"id"`
	RunDate    time.Time                  `json:"runDate"`
	Strategy   string                     `json:"strategy"` // 胜出的算法
	Fitness    float64                    `json:"fitness"`
	Breakdown  OptimizationBreakdown      `json:"breakdown"`
	Entries    []OptimizationRunEntry     `json:"entries"`
	Candidates []OptimizationRunCandidate `json:"candidates"`
	Rejected   int                        `json:"rejected"` // 因数据不合法而被跳过的行程数
	Published  bool                       `json:"published"`
	CreatedBy  int64                      `json:"createdBy"`
	CreatedAt  time.Time                  `json:"createdAt"`
	Version    int32                      `json:"-"`
}

package optimizer

import (
	"fmt"
	"math"
	"time"
)

// WeightSchedule: 适应度各项权重随进度 p ∈ [0, 1] 的变化规则
//
//	time       = TimeBase
//	congestion = CongestionBase * (1 + CongestionSlope * p)
//	speed      = SpeedBase * (1 - SpeedSlope * p)
//	violation  = Violation
type WeightSchedule struct {
	TimeBase        float64
	CongestionBase  float64
	CongestionSlope float64
	SpeedBase       float64
	SpeedSlope      float64
	Violation       float64
}

type Weights struct {
	Time       float64
	Congestion float64
	Speed      float64
	Violation  float64
}

// nonNegative 所有权重都是非负的有限值
func (ws WeightSchedule) nonNegative() bool {
	for _, w := range []float64{ws.TimeBase, ws.CongestionBase, ws.CongestionSlope, ws.SpeedBase, ws.SpeedSlope, ws.Violation} {
		if !(w >= 0) || math.IsInf(w, 0) {
			return false
		}
	}
	return true
}

func (ws WeightSchedule) At(progress float64) Weights {
	p := clamp(progress, 0, 1)
	return Weights{
		Time:       ws.TimeBase,
		Congestion: ws.CongestionBase * (1 + ws.CongestionSlope*p),
		Speed:      ws.SpeedBase * (1 - ws.SpeedSlope*p),
		Violation:  ws.Violation,
	}
}

// 优化参数
type Parameters struct {
	// 入园时间窗口（当天小时数）
	WindowStart   float64
	WindowEnd     float64
	TimePrecision int     // 入园时间保留的小数位数，冲突检测基于取整后的时间
	CollisionStep float64 // 入园时间冲突时每次向后推移的小时数

	Capacity   int     // 园区内同时进行的行程数上限 K
	SpeedFloor float64 // 平均车速低于该值时产生惩罚

	// 各字段的取值范围
	CongestionMin int
	CongestionMax int
	SpeedMin      float64
	SpeedMax      float64

	// 变异幅度
	TimeJitter       float64 // 入园时间 ±U(0, TimeJitter)
	CongestionJitter int     // 拥堵采样 ±CongestionJitter
	SpeedJitter      int     // 车速采样 ±SpeedJitter
	InitJitter       float64 // 初始化种群时入园时间的扰动幅度

	// 遗传算法
	PopulationSize  int
	Generations     int
	MutationRateMax float64
	MutationRateMin float64
	EliteCount      int // 每一代保留的精英数量，0 表示不保留

	// 模拟退火
	InitialTemperature float64
	CoolingRate        float64
	MinTemperature     float64
	SAMutationRate     float64

	// 粒子群
	NumParticles    int
	PSOIterations   int
	Inertia         float64
	Cognitive       float64
	Social          float64
	InitialVelocity float64 // 初始速度 U(-InitialVelocity, InitialVelocity)
	PositionBand    float64 // 位置只能在初始入园时间 ±PositionBand 内移动

	// 混合算法：种群多样性低于该阈值时提高变异率
	DiversityThreshold float64

	Weights WeightSchedule

	MaxIterations int           // 每个算法（阶段）最多执行的步数，0 表示不限制
	TimeLimit     time.Duration // 每次运行的时间上限，0 表示不限制
	Workers       int           // 并行计算适应度的协程数
	Seed          int64         // 随机数种子，0 表示使用当前时间
}

func DefaultParameters() *Parameters {
	return &Parameters{
		WindowStart:   5.5,
		WindowEnd:     16.5,
		TimePrecision: 1,
		CollisionStep: 0.5,

		Capacity:   4,
		SpeedFloor: 30,

		CongestionMin: 0,
		CongestionMax: 5,
		SpeedMin:      30,
		SpeedMax:      60,

		TimeJitter:       1,
		CongestionJitter: 1,
		SpeedJitter:      5,
		InitJitter:       0.2,

		PopulationSize:  50,
		Generations:     300,
		MutationRateMax: 0.1,
		MutationRateMin: 0.01,
		EliteCount:      0,

		InitialTemperature: 1000,
		CoolingRate:        0.99,
		MinTemperature:     1,
		SAMutationRate:     0.1,

		NumParticles:    50,
		PSOIterations:   500,
		Inertia:         0.5,
		Cognitive:       1.5,
		Social:          1.5,
		InitialVelocity: 0.5,
		PositionBand:    0.2,

		DiversityThreshold: 0.1,

		Weights: WeightSchedule{
			TimeBase:        5.0,
			CongestionBase:  2.0,
			CongestionSlope: 1.0,
			SpeedBase:       1.5,
			SpeedSlope:      1.0,
			Violation:       15.0,
		},

		Workers: 4,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameters, fmt.Sprintf(format, args...))
}

// Validate 检查参数是否合法
func (p *Parameters) Validate() error {
	switch {
	case math.IsNaN(p.WindowStart) || math.IsNaN(p.WindowEnd) || p.WindowStart >= p.WindowEnd:
		return invalid("入园时间窗口 [%v, %v] 无效", p.WindowStart, p.WindowEnd)
	case p.WindowStart < 0 || p.WindowEnd > 24:
		return invalid("入园时间窗口必须位于 0 到 24 点之间")
	case p.TimePrecision < 0 || p.TimePrecision > 6:
		return invalid("时间精度必须在 0 到 6 之间")
	case p.CollisionStep <= 0:
		return invalid("冲突推移步长必须大于 0")
	case p.Capacity < 0:
		return invalid("容量上限不能为负数")
	case p.CongestionMin > p.CongestionMax:
		return invalid("拥堵取值范围无效")
	case p.SpeedMin > p.SpeedMax:
		return invalid("车速取值范围无效")
	case p.TimeJitter < 0 || p.InitJitter < 0 || p.CongestionJitter < 0 || p.SpeedJitter < 0:
		return invalid("变异幅度不能为负数")
	case p.PopulationSize < 2:
		return invalid("种群大小必须不小于 2，当前为 %d", p.PopulationSize)
	case p.Generations < 1:
		return invalid("迭代代数必须不小于 1")
	case p.MutationRateMin < 0 || p.MutationRateMax > 1 || p.MutationRateMin > p.MutationRateMax:
		return invalid("变异率范围 [%v, %v] 无效", p.MutationRateMin, p.MutationRateMax)
	case p.EliteCount < 0 || p.EliteCount >= p.PopulationSize:
		return invalid("精英数量必须在 0 到种群大小之间")
	case p.InitialTemperature <= 0:
		return invalid("初始温度必须大于 0，当前为 %v", p.InitialTemperature)
	case p.MinTemperature <= 0:
		return invalid("最低温度必须大于 0")
	case p.CoolingRate <= 0 || p.CoolingRate >= 1:
		return invalid("降温系数必须在 (0, 1) 之间，当前为 %v", p.CoolingRate)
	case p.SAMutationRate < 0 || p.SAMutationRate > 1:
		return invalid("模拟退火变异率必须在 [0, 1] 之间")
	case p.NumParticles < 1:
		return invalid("粒子数量必须不小于 1")
	case p.PSOIterations < 1:
		return invalid("粒子群迭代次数必须不小于 1")
	case p.InitialVelocity < 0 || p.PositionBand < 0:
		return invalid("粒子初始速度和位置范围不能为负数")
	case p.DiversityThreshold < 0:
		return invalid("多样性阈值不能为负数")
	case !p.Weights.nonNegative():
		return invalid("适应度权重不能为负数")
	case p.Weights.SpeedSlope > 1:
		return invalid("车速权重斜率不能大于 1，当前为 %v", p.Weights.SpeedSlope)
	case p.MaxIterations < 0 || p.TimeLimit < 0:
		return invalid("迭代预算和时间上限不能为负数")
	case p.Workers < 1:
		return invalid("并行协程数必须不小于 1")
	}

	return nil
}

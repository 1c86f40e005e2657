package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultParametersValid(t *testing.T) {
	assert.NoError(t, DefaultParameters().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *Parameters)
	}{
		{"窗口颠倒", func(p *Parameters) { p.WindowStart, p.WindowEnd = 16.5, 5.5 }},
		{"窗口超出一天", func(p *Parameters) { p.WindowEnd = 25 }},
		{"推移步长为 0", func(p *Parameters) { p.CollisionStep = 0 }},
		{"种群太小", func(p *Parameters) { p.PopulationSize = 1 }},
		{"代数为 0", func(p *Parameters) { p.Generations = 0 }},
		{"变异率范围颠倒", func(p *Parameters) { p.MutationRateMin, p.MutationRateMax = 0.2, 0.1 }},
		{"精英数量过多", func(p *Parameters) { p.EliteCount = p.PopulationSize }},
		{"初始温度为 0", func(p *Parameters) { p.InitialTemperature = 0 }},
		{"最低温度为负数", func(p *Parameters) { p.MinTemperature = -1 }},
		{"降温系数为 1", func(p *Parameters) { p.CoolingRate = 1 }},
		{"降温系数为 0", func(p *Parameters) { p.CoolingRate = 0 }},
		{"没有粒子", func(p *Parameters) { p.NumParticles = 0 }},
		{"位置范围为负数", func(p *Parameters) { p.PositionBand = -0.1 }},
		{"时间上限为负数", func(p *Parameters) { p.TimeLimit = -1 }},
		{"没有协程", func(p *Parameters) { p.Workers = 0 }},
		{"时间权重为负数", func(p *Parameters) { p.Weights.TimeBase = -1 }},
		{"拥堵权重斜率为负数", func(p *Parameters) { p.Weights.CongestionSlope = -0.5 }},
		{"违规惩罚为负数", func(p *Parameters) { p.Weights.Violation = -15 }},
		{"车速权重斜率大于 1", func(p *Parameters) { p.Weights.SpeedSlope = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParameters()
			tt.modify(p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidParameters)
		})
	}
}

func TestValidateAllowsNoCooling(t *testing.T) {
	p := DefaultParameters()
	p.InitialTemperature = 1
	p.MinTemperature = 1
	assert.NoError(t, p.Validate())
}

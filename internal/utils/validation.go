package utils

import (
	"errors"
	"fmt"
	"math"

	"github.com/safari-ops/entry-scheduler/backend/internal/domain"
)

const (
	MinCongestion = 0
	MaxCongestion = 5
)

// ValidateTripTelemetry 检查行程上报的采样数据
// 车速只要求为正数，超出 [30, 60] 的部分在优化前会被截断
func ValidateTripTelemetry(trip *domain.Trip) error {
	if trip.TripHours < 0 || math.IsNaN(trip.TripHours) || math.IsInf(trip.TripHours, 0) {
		return errors.New("行程时长不能为负数")
	}

	for i, c := range trip.Congestion {
		if c < MinCongestion || c > MaxCongestion {
			return fmt.Errorf("第 %d 个拥堵采样超出范围 [%d, %d]", i+1, MinCongestion, MaxCongestion)
		}
	}

	for i, s := range trip.Speed {
		if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("第 %d 个车速采样必须为正数", i+1)
		}
	}

	if len(trip.Locations)%2 != 0 {
		return errors.New("位置采样必须成对出现")
	}
	for i := 0; i < len(trip.Locations); i += 2 {
		lat, lng := trip.Locations[i], trip.Locations[i+1]
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return fmt.Errorf("第 %d 个位置采样不合法", i/2+1)
		}
	}

	return nil
}

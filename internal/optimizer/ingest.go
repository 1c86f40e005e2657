package optimizer

import (
	"fmt"
	"slices"
	"time"

	"github.com/safari-ops/entry-scheduler/backend/internal/domain"
)

// hourOfDay 把时间转换为当天的小时数，例如 08:30 转换为 8.5
func hourOfDay(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

/**
 * EntriesFromTrips 把行程转换为优化器的输入
 * 不合法的行程（没有司机、时长不为正、没有车速采样）会被单独跳过，其余行程照常处理
 * 入园时间限制在窗口内并取整，拥堵和车速采样限制在合法范围内
 */
func EntriesFromTrips(trips []*domain.Trip, params *Parameters) ([]Entry, []error) {
	if params == nil {
		params = DefaultParameters()
	}

	entries := make([]Entry, 0, len(trips))
	var errs []error

	for _, trip := range trips {
		if trip == nil {
			continue
		}

		switch {
		case trip.DriverID == "":
			errs = append(errs, fmt.Errorf("%w: 行程 %d 没有司机", ErrMalformedTrip, trip.ID))
			continue
		case len(trip.Speed) == 0:
			errs = append(errs, fmt.Errorf("%w: 行程 %d 没有车速采样", ErrMalformedTrip, trip.ID))
			continue
		}

		e := Entry{
			TripID:     trip.ID,
			EntryTime:  hourOfDay(trip.EntryTime),
			TripTime:   trip.TripHours,
			Congestion: slices.Clone(trip.Congestion),
			Speed:      slices.Clone(trip.Speed),
		}
		if err := params.normalizeEntry(&e); err != nil {
			errs = append(errs, err)
			continue
		}

		entries = append(entries, e)
	}

	return entries, errs
}

// ToAssignments 把优化结果转换为 runDate 当天的入园时间，精确到分钟
func ToAssignments(c Candidate, trips []*domain.Trip, runDate time.Time) []domain.OptimizationRunEntry {
	byID := make(map[int64]*domain.Trip, len(trips))
	for _, trip := range trips {
		if trip != nil {
			byID[trip.ID] = trip
		}
	}

	midnight := time.Date(runDate.Year(), runDate.Month(), runDate.Day(), 0, 0, 0, 0, runDate.Location())

	assignments := make([]domain.OptimizationRunEntry, 0, len(c))
	for _, e := range c {
		a := domain.OptimizationRunEntry{
			TripID:             e.TripID,
			ScheduledEntryTime: midnight.Add(time.Duration(e.EntryTime * float64(time.Hour))).Round(time.Minute),
			TripHours:          e.TripTime,
		}
		if trip, ok := byID[e.TripID]; ok {
			a.DriverID = trip.DriverID
		}
		assignments = append(assignments, a)
	}

	return assignments
}

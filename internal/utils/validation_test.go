package utils

import (
	"math"
	"testing"

	"github.com/safari-ops/entry-scheduler/backend/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestValidateTripTelemetry(t *testing.T) {
	valid := func() *domain.Trip {
		return &domain.Trip{
			TripHours:  2,
			Congestion: []int{0, 3, 5},
			Speed:      []float64{30, 45.5, 60},
			Locations:  []float64{-1.4, 35.1, -1.5, 35.2},
		}
	}

	tests := []struct {
		name    string
		modify  func(*domain.Trip)
		wantErr bool
	}{
		{"valid", func(*domain.Trip) {}, false},
		{"empty samples", func(tr *domain.Trip) { tr.Congestion, tr.Speed, tr.Locations = nil, nil, nil }, false},
		{"negative trip hours", func(tr *domain.Trip) { tr.TripHours = -1 }, true},
		{"congestion too high", func(tr *domain.Trip) { tr.Congestion = []int{6} }, true},
		{"congestion negative", func(tr *domain.Trip) { tr.Congestion = []int{-1} }, true},
		{"zero speed", func(tr *domain.Trip) { tr.Speed = []float64{0} }, true},
		{"nan speed", func(tr *domain.Trip) { tr.Speed = []float64{math.NaN()} }, true},
		{"odd locations", func(tr *domain.Trip) { tr.Locations = []float64{1, 2, 3} }, true},
		{"latitude out of range", func(tr *domain.Trip) { tr.Locations = []float64{91, 0} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := valid()
			tt.modify(trip)
			err := ValidateTripTelemetry(trip)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

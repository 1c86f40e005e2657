package seed

import (
	"strings"
	"testing"
	"time"

	"github.com/safari-ops/entry-scheduler/backend/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestParseTripsCSV(t *testing.T) {
	data := `driver_id,entry_time,trip_hours,congestion,speed,status
d1,2026-03-01 08:30,2,2;3;1,35;40.5;50,
d2,2026-03-01 09:00,1.5,,45,pending
`
	trips, err := ParseTripsCSV(strings.NewReader(data), time.UTC)
	require.NoError(t, err)
	require.Len(t, trips, 2)

	first := trips[0]
	require.Equal(t, "d1", first.DriverID)
	require.Equal(t, time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC), first.EntryTime)
	require.Equal(t, 2.0, first.TripHours)
	require.Equal(t, []int{2, 3, 1}, first.Congestion)
	require.Equal(t, []float64{35, 40.5, 50}, first.Speed)
	require.Equal(t, domain.TripStatusCompleted, first.Status)
	require.NotNil(t, first.EndTime)
	require.Equal(t, time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC), *first.EndTime)

	second := trips[1]
	require.Empty(t, second.Congestion)
	require.Equal(t, domain.TripStatusPending, second.Status)
	require.Nil(t, second.EndTime)
}

func TestParseTripsCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"missing column", "driver_id,entry_time,trip_hours,speed\n", "缺少列 congestion"},
		{"bad entry time", "driver_id,entry_time,trip_hours,congestion,speed\nd1,08:30,2,1,40\n", "第 2 行入园时间格式错误"},
		{"bad speed", "driver_id,entry_time,trip_hours,congestion,speed\nd1,2026-03-01 08:30,2,1,fast\n", "第 2 行车速采样格式错误"},
		{"bad status", "driver_id,entry_time,trip_hours,congestion,speed,status\nd1,2026-03-01 08:30,2,1,40,done\n", "第 2 行状态 done 不合法"},
		{"empty", "", "读取表头失败"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTripsCSV(strings.NewReader(tt.data), time.UTC)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

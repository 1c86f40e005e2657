package domain

import "time"

type TripStatus string

const (
	TripStatusPending   TripStatus = "pending"
	TripStatusOngoing   TripStatus = "ongoing"
	TripStatusCompleted TripStatus = "completed"
)

// Trip 表示一次入园游览行程
type Trip struct {
	ID         int64      `json:"id"`
	DriverID   string     `json:"driverID"`
	VehicleID  string     `json:"vehicleID"`
	EntryTime  time.Time  `json:"entryTime"`
	TripHours  float64    `json:"tripHours"`  // 行程时长，单位为小时
	Congestion []int      `json:"congestion"` // 拥堵采样值，取值范围 [0, 5]
	Speed      []float64  `json:"speed"`      // 车速采样值，取值范围 [30, 60]
	Locations  []float64  `json:"locations"`  // [纬度, 经度, 纬度, 经度, ...]
	Status     TripStatus `json:"status"`
	EndTime    *time.Time `json:"endTime"` // 行程尚未结束时为 nil
	CreatedAt  time.Time  `json:"createdAt"`
	Version    int32      `json:"-"`
}

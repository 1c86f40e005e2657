package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/safari-ops/entry-scheduler/backend/internal/domain"
	"github.com/safari-ops/entry-scheduler/backend/internal/utils"
)

const dateLayout = "2006-01-02"

// dayRange 返回 date 当天的 [00:00, 次日 00:00)
func dayRange(date time.Time) (time.Time, time.Time) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return from, from.AddDate(0, 0, 1)
}

func (h *Handler) loadDriver(w http.ResponseWriter, r *http.Request, driverID string) (*domain.Driver, bool) {
	driver, err := h.repository.GetDriverByID(driverID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "司机不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return nil, false
	}
	return driver, true
}

// CreateTrip 登记一趟计划中的行程，等待优化安排入园时间
func (h *Handler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DriverID   string    `json:"driverID" validate:"required,uuid"`
		EntryTime  time.Time `json:"entryTime" validate:"required"`
		TripHours  float64   `json:"tripHours" validate:"required,gt=0"`
		Congestion []int     `json:"congestion"`
		Speed      []float64 `json:"speed" validate:"required,min=1"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	driver, ok := h.loadDriver(w, r, req.DriverID)
	if !ok {
		return
	}

	trip := &domain.Trip{
		DriverID:   driver.ID,
		VehicleID:  driver.VehicleID,
		EntryTime:  req.EntryTime,
		TripHours:  req.TripHours,
		Congestion: req.Congestion,
		Speed:      req.Speed,
		Status:     domain.TripStatusPending,
	}
	if err := utils.ValidateTripTelemetry(trip); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateTrip(trip); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "行程登记成功", trip)
}

// StartTrip 司机扫码入园，入园时间为当前时间
func (h *Handler) StartTrip(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DriverID string `json:"driverID" validate:"required,uuid"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	driver, ok := h.loadDriver(w, r, req.DriverID)
	if !ok {
		return
	}

	trip := &domain.Trip{
		DriverID:  driver.ID,
		VehicleID: driver.VehicleID,
		EntryTime: time.Now(),
		Status:    domain.TripStatusOngoing,
	}

	if err := h.repository.CreateTrip(trip); err != nil {
		switch {
		case violatesConstraint(err, "trips_driver_ongoing_key"):
			h.errorResponse(w, r, "该司机已有进行中的行程")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "行程已开始", trip)
}

// EndTrip 结束司机进行中的行程，可以同时上报行程中采集到的数据
func (h *Handler) EndTrip(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DriverID   string    `json:"driverID" validate:"required,uuid"`
		Congestion []int     `json:"congestion"`
		Speed      []float64 `json:"speed"`
		Locations  []float64 `json:"locations"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	trip, err := h.repository.GetOngoingTripByDriverID(req.DriverID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "该司机没有进行中的行程")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	endTime := time.Now()
	trip.EndTime = &endTime
	trip.TripHours = endTime.Sub(trip.EntryTime).Hours()
	trip.Status = domain.TripStatusCompleted
	if req.Congestion != nil {
		trip.Congestion = req.Congestion
	}
	if req.Speed != nil {
		trip.Speed = req.Speed
	}
	if req.Locations != nil {
		trip.Locations = req.Locations
	}

	if err := utils.ValidateTripTelemetry(trip); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateTrip(trip); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "行程已被修改，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "行程已结束", trip)
}

// GetTrips 支持按状态和入园日期过滤
func (h *Handler) GetTrips(w http.ResponseWriter, r *http.Request) {
	var query struct {
		Status string `validate:"omitempty,oneof=pending ongoing completed"`
		Date   string `validate:"omitempty,datetime=2006-01-02"`
	}
	query.Status = r.URL.Query().Get("status")
	query.Date = r.URL.Query().Get("date")

	if err := h.validate.Struct(query); err != nil {
		h.badRequest(w, r, err)
		return
	}

	var from, to time.Time
	if query.Date != "" {
		date, err := time.ParseInLocation(dateLayout, query.Date, time.Local)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		from, to = dayRange(date)
	}

	trips, err := h.repository.GetTrips(domain.TripStatus(query.Status), from, to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取行程列表成功", trips)
}

func (h *Handler) GetTrip(w http.ResponseWriter, r *http.Request) {
	trip := r.Context().Value(TripCtx).(*domain.Trip)
	h.successResponse(w, r, "获取行程信息成功", trip)
}

// UpdateTripTelemetry 替换行程的采样数据，未提供的字段保持不变
func (h *Handler) UpdateTripTelemetry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TripHours  *float64  `json:"tripHours" validate:"omitempty,gt=0"`
		Congestion []int     `json:"congestion"`
		Speed      []float64 `json:"speed"`
		Locations  []float64 `json:"locations"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	trip := r.Context().Value(TripCtx).(*domain.Trip)
	if req.TripHours != nil {
		trip.TripHours = *req.TripHours
	}
	if req.Congestion != nil {
		trip.Congestion = req.Congestion
	}
	if req.Speed != nil {
		trip.Speed = req.Speed
	}
	if req.Locations != nil {
		trip.Locations = req.Locations
	}

	if err := utils.ValidateTripTelemetry(trip); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateTrip(trip); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "行程已被修改，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新行程数据成功", trip)
}

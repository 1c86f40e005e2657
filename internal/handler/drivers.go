package handler

import (
	"errors"
	"net/http"

	"github.com/safari-ops/entry-scheduler/backend/internal/domain"
	"github.com/safari-ops/entry-scheduler/backend/internal/utils"
)

// RegisterDriver 登记司机并生成司机专属的二维码
func (h *Handler) RegisterDriver(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name" validate:"required,max=64"`
		Email     string `json:"email" validate:"required,email"`
		Phone     string `json:"phone" validate:"required,e164|numeric"`
		VehicleID string `json:"vehicleID" validate:"required,max=32"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	driver, err := utils.NewDriver(req.Name, req.Email, req.Phone, req.VehicleID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.CreateDriver(driver); err != nil {
		switch {
		case violatesConstraint(err, "drivers_email_key"):
			h.badRequest(w, r, errors.New("邮箱已被其他司机使用"))
		case violatesConstraint(err, "drivers_vehicle_id_key"):
			h.badRequest(w, r, errors.New("车辆已登记给其他司机"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "司机登记成功", driver)
}

func (h *Handler) GetAllDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.repository.GetAllDrivers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取司机列表成功", drivers)
}

func (h *Handler) GetDriver(w http.ResponseWriter, r *http.Request) {
	driver := r.Context().Value(DriverCtx).(*domain.Driver)
	h.successResponse(w, r, "获取司机信息成功", driver)
}

func (h *Handler) GetDriverQRCode(w http.ResponseWriter, r *http.Request) {
	driver := r.Context().Value(DriverCtx).(*domain.Driver)

	h.successResponse(w, r, "获取二维码成功", struct {
		QRCode      string `json:"qrCode"`
		QRCodeImage string `json:"qrCodeImage"`
	}{
		QRCode:      driver.QRCode,
		QRCodeImage: driver.QRCodeImage,
	})
}

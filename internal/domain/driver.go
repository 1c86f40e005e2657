package domain

import "time"

type Driver struct {
	ID          string    `json:"id"` // uuid
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	VehicleID   string    `json:"vehicleID"`
	QRCode      string    `json:"qrCode"`      // 形如 QR-<uuid>
	QRCodeImage string    `json:"qrCodeImage"` // base64 编码的 PNG
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Version     int32     `json:"-"`
}

package domain

import "time"

const (
	MailTypeCreateUser       = "create_user"
	MailTypeResetPassword    = "reset_password"
	MailTypeChangeEmail      = "change_email"
	MailTypeScheduleAssigned = "schedule_assigned"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type ChangeEmailMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type ScheduleAssignedMailData struct {
	DriverName         string    `json:"driverName"`
	VehicleID          string    `json:"vehicleID"`
	ScheduledEntryTime time.Time `json:"scheduledEntryTime"`
	TripHours          float64   `json:"tripHours"`
}

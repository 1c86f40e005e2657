package utils

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/safari-ops/entry-scheduler/backend/internal/domain"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateRandomOTP(t *testing.T) {
	for range 100 {
		otp := GenerateRandomOTP()
		require.Len(t, otp, 6)
		for _, c := range otp {
			require.True(t, c >= '0' && c <= '9')
		}
	}
}

func TestGenerateRandomPassword(t *testing.T) {
	require.Len(t, []rune(GenerateRandomPassword(12)), 12)
	require.Empty(t, GenerateRandomPassword(0))
}

func TestGenerateRandomUser(t *testing.T) {
	user, err := GenerateRandomUser("password123", "example.com")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(user.Email, "@example.com"))
	require.Contains(t, []domain.Role{domain.RoleDispatcher, domain.RoleAdmin}, user.Role)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
}

func TestNewDriver(t *testing.T) {
	driver, err := NewDriver("张伟", "zw@example.com", "13800000000", "SV-0001")
	require.NoError(t, err)

	_, err = uuid.Parse(driver.ID)
	require.NoError(t, err)
	require.Equal(t, "QR-"+driver.ID, driver.QRCode)

	png, err := base64.StdEncoding.DecodeString(driver.QRCodeImage)
	require.NoError(t, err)
	require.Equal(t, []byte("\x89PNG"), png[:4])
}

func TestGenerateRandomTrip(t *testing.T) {
	driver := &domain.Driver{ID: uuid.NewString(), VehicleID: "SV-0002"}
	day := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)

	for range 50 {
		trip := GenerateRandomTrip(driver, day)
		require.Equal(t, driver.ID, trip.DriverID)
		require.Equal(t, domain.TripStatusPending, trip.Status)

		hour := float64(trip.EntryTime.Hour()) + float64(trip.EntryTime.Minute())/60
		require.GreaterOrEqual(t, hour, 5.5)
		require.LessOrEqual(t, hour, 16.5)
		require.Equal(t, 1, trip.EntryTime.Day())

		require.GreaterOrEqual(t, trip.TripHours, 1.0)
		require.LessOrEqual(t, trip.TripHours, 3.0)
		require.NoError(t, ValidateTripTelemetry(trip))
	}
}

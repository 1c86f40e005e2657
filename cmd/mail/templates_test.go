package main

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/safari-ops/entry-scheduler/backend/internal/domain"
	"github.com/stretchr/testify/require"
)

func newTestMailer(t *testing.T) *mailer {
	t.Helper()

	m, err := loadMailer("../../templates", "noreply@example.com")
	require.NoError(t, err)
	return m
}

func encode(t *testing.T, msg domain.MailMessage) []byte {
	t.Helper()

	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return body
}

func TestLoadMailerParsesAllTemplates(t *testing.T) {
	m := newTestMailer(t)
	for typ := range mailKinds {
		require.Contains(t, m.templates, typ)
	}
}

func TestDecodeScheduleAssigned(t *testing.T) {
	m := newTestMailer(t)
	entry := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)

	typ, to, data, err := m.decode(encode(t, domain.MailMessage{
		Type: domain.MailTypeScheduleAssigned,
		To:   "driver@example.com",
		Data: domain.ScheduleAssignedMailData{
			DriverName:         "张伟",
			VehicleID:          "SV-0001",
			ScheduledEntryTime: entry,
			TripHours:          2.5,
		},
	}))
	require.NoError(t, err)
	require.Equal(t, domain.MailTypeScheduleAssigned, typ)
	require.Equal(t, "driver@example.com", to)

	var sb strings.Builder
	require.NoError(t, m.templates[typ].Execute(&sb, data))
	require.Contains(t, sb.String(), "张伟")
	require.Contains(t, sb.String(), "SV-0001")
	require.Contains(t, sb.String(), "2026-03-01 08:30")
	require.Contains(t, sb.String(), "2.5")
}

func TestBuild(t *testing.T) {
	m := newTestMailer(t)

	msg, err := m.build(encode(t, domain.MailMessage{
		Type: domain.MailTypeResetPassword,
		To:   "user@example.com",
		Data: domain.ResetPasswordMailData{FullName: "李娜", OTP: "123456", Expiration: 15},
	}))
	require.NoError(t, err)
	require.NotNil(t, msg)

	_, err = m.build(encode(t, domain.MailMessage{Type: "unknown", To: "user@example.com"}))
	require.ErrorContains(t, err, "不支持的邮件类型")

	_, err = m.build([]byte("not json"))
	require.Error(t, err)

	_, err = m.build(encode(t, domain.MailMessage{
		Type: domain.MailTypeCreateUser,
		To:   "not an address",
		Data: domain.CreateUserMailData{FullName: "李娜"},
	}))
	require.Error(t, err)
}

package attendance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storecrew/storecrew/internal/apiserver/database"
	"github.com/storecrew/storecrew/internal/common/cnst"
	"github.com/storecrew/storecrew/internal/common/config"
	"github.com/storecrew/storecrew/internal/common/errorx"
	"github.com/storecrew/storecrew/internal/core/authz"
)

func ptr(v float64) *float64 { return &v }

func setup(t *testing.T, channel *database.Channel) (database.Database, *Service, *database.User) {
	t.Helper()
	db, err := database.NewSQLite(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	user := &database.User{Email: "worker@example.com", Password: "x"}
	require.NoError(t, db.CreateUser(ctx, user))
	channel.OwnerID = user.ID
	require.NoError(t, db.CreateChannel(ctx, channel))

	return db, NewService(db, authz.NewOracle(db), zap.NewNop()), user
}

func TestHaversine(t *testing.T) {
	// ~70m apart
	near := Haversine(37.5000, 127.0000, 37.5005, 127.0005)
	assert.InDelta(t, 70, near, 10)

	// ~13km apart
	far := Haversine(37.5000, 127.0000, 37.6000, 127.1000)
	assert.InDelta(t, 14000, far, 1500)

	assert.Zero(t, Haversine(37.5, 127.0, 37.5, 127.0))
}

func TestClockInWithinRadius(t *testing.T) {
	channel := &database.Channel{Name: "store", AuthMode: cnst.AuthModeLocation, Latitude: ptr(37.5000), Longitude: ptr(127.0000)}
	db, svc, user := setup(t, channel)
	ctx := context.Background()

	log, err := svc.ClockIn(ctx, channel.ID, user.ID, Proof{Lat: ptr(37.5005), Lng: ptr(127.0005)})
	require.NoError(t, err)
	assert.True(t, log.IsVerified)
	assert.Equal(t, cnst.AttendanceMethodGPS, log.Method)

	status, err := svc.Status(ctx, channel.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, StateOn, status.State)

	// already on duty
	_, err = svc.ClockIn(ctx, channel.ID, user.ID, Proof{Lat: ptr(37.5005), Lng: ptr(127.0005)})
	assert.ErrorIs(t, err, errorx.ErrConflict)

	_, err = svc.ClockOut(ctx, channel.ID, user.ID)
	require.NoError(t, err)
	status, err = svc.Status(ctx, channel.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, StateOff, status.State)

	logs, err := svc.RecentLogs(ctx, channel.ID, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, cnst.AttendanceOut, logs[0].Type)

	_, err = db.LastAttendanceLog(ctx, user.ID, channel.ID)
	require.NoError(t, err)
}

func TestClockInTooFarWritesNoLog(t *testing.T) {
	channel := &database.Channel{Name: "store", AuthMode: cnst.AuthModeLocation, Latitude: ptr(37.5000), Longitude: ptr(127.0000)}
	db, svc, user := setup(t, channel)
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, channel.ID, user.ID, Proof{Lat: ptr(37.6000), Lng: ptr(127.1000)})
	require.ErrorIs(t, err, errorx.ErrVerificationFailed)

	var apiErr *errorx.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errorx.VerifyReasonDistance, apiErr.Details["reason"])
	assert.Greater(t, apiErr.Details["distance_m"].(float64), 10000.0)

	last, err := db.LastAttendanceLog(ctx, user.ID, channel.ID)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestClockInLocationUnconfigured(t *testing.T) {
	channel := &database.Channel{Name: "store", AuthMode: cnst.AuthModeLocation}
	_, svc, user := setup(t, channel)
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, channel.ID, user.ID, Proof{Lat: ptr(37.5), Lng: ptr(127.0)})
	require.ErrorIs(t, err, errorx.ErrVerificationFailed)
	var apiErr *errorx.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errorx.VerifyReasonUnconfigured, apiErr.Details["reason"])

	_, err = svc.ClockIn(ctx, channel.ID, user.ID, Proof{})
	assert.ErrorIs(t, err, errorx.ErrValidation)
}

func TestClockInWifi(t *testing.T) {
	channel := &database.Channel{Name: "store", AuthMode: cnst.AuthModeWifi, WifiSSID: "store-wifi"}
	_, svc, user := setup(t, channel)
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, channel.ID, user.ID, Proof{SSID: "neighbor-wifi"})
	require.ErrorIs(t, err, errorx.ErrVerificationFailed)
	var apiErr *errorx.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errorx.VerifyReasonSSIDMismatch, apiErr.Details["reason"])

	log, err := svc.ClockIn(ctx, channel.ID, user.ID, Proof{SSID: "store-wifi"})
	require.NoError(t, err)
	assert.True(t, log.IsVerified)
	assert.Equal(t, cnst.AttendanceMethodWifi, log.Method)
}

func TestClockInWifiUnconfiguredTrusted(t *testing.T) {
	channel := &database.Channel{Name: "store", AuthMode: cnst.AuthModeWifi}
	_, svc, user := setup(t, channel)
	ctx := context.Background()

	log, err := svc.ClockIn(ctx, channel.ID, user.ID, Proof{SSID: "anything"})
	require.NoError(t, err)
	assert.False(t, log.IsVerified)
}

func TestClockOutWithoutClockIn(t *testing.T) {
	channel := &database.Channel{Name: "store", AuthMode: cnst.AuthModeLocation}
	_, svc, user := setup(t, channel)

	_, err := svc.ClockOut(context.Background(), channel.ID, user.ID)
	assert.ErrorIs(t, err, errorx.ErrConflict)
}

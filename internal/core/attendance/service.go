package attendance

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/storecrew/storecrew/internal/apiserver/database"
	"github.com/storecrew/storecrew/internal/common/cnst"
	"github.com/storecrew/storecrew/internal/common/errorx"
	"github.com/storecrew/storecrew/internal/core/authz"
)

// States derived from the most recent log: no row or OUT means off duty.
const (
	StateOff = "OFF"
	StateOn  = "ON"
)

// Proof carries the client-supplied verification evidence for clock-in.
type Proof struct {
	Lat       *float64
	Lng       *float64
	SSID      string
	IPAddress string
}

// Status is the derived attendance state for a (user, channel) pair
type Status struct {
	State   string                  `json:"state"`
	LastLog *database.AttendanceLog `json:"last_log,omitempty"`
}

// Service runs the clock-in/out state machine with location or Wi-Fi
// proof.
type Service struct {
	db     database.Database
	oracle *authz.Oracle
	logger *zap.Logger
}

// NewService creates an attendance service
func NewService(db database.Database, oracle *authz.Oracle, logger *zap.Logger) *Service {
	return &Service{db: db, oracle: oracle, logger: logger.Named("core.attendance")}
}

// Status returns the caller's current attendance state in the channel
func (s *Service) Status(ctx context.Context, channelID uint, userID string) (*Status, error) {
	if err := s.oracle.RequireMember(ctx, channelID, userID); err != nil {
		return nil, err
	}
	last, err := s.db.LastAttendanceLog(ctx, userID, channelID)
	if err != nil {
		return nil, err
	}
	state := StateOff
	if last != nil && last.Type == cnst.AttendanceIn {
		state = StateOn
	}
	return &Status{State: state, LastLog: last}, nil
}

// ClockIn transitions OFF to ON after verifying the proof required by the
// channel's auth mode. A failed verification writes no log row.
func (s *Service) ClockIn(ctx context.Context, channelID uint, userID string, proof Proof) (*database.AttendanceLog, error) {
	status, err := s.Status(ctx, channelID, userID)
	if err != nil {
		return nil, err
	}
	if status.State == StateOn {
		return nil, errorx.ErrConflict.WithMessage("already clocked in")
	}

	channel, err := s.db.GetChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	log := &database.AttendanceLog{
		UserID:    userID,
		ChannelID: channelID,
		Type:      cnst.AttendanceIn,
		IPAddress: proof.IPAddress,
	}

	switch channel.AuthMode {
	case cnst.AuthModeWifi:
		log.Method = cnst.AttendanceMethodWifi
		if channel.WifiSSID == "" {
			// no SSID configured: accept on trust, recorded as
			// unverified
			log.IsVerified = false
		} else if proof.SSID == channel.WifiSSID {
			log.IsVerified = true
		} else {
			return nil, errorx.VerificationFailed(errorx.VerifyReasonSSIDMismatch)
		}
	default:
		log.Method = cnst.AttendanceMethodGPS
		if proof.Lat == nil || proof.Lng == nil {
			return nil, errorx.ErrValidation.WithMessage("location is required")
		}
		if channel.Latitude == nil || channel.Longitude == nil {
			return nil, errorx.VerificationFailed(errorx.VerifyReasonUnconfigured)
		}
		distance := Haversine(*proof.Lat, *proof.Lng, *channel.Latitude, *channel.Longitude)
		if distance > cnst.AttendanceRadiusMeters {
			return nil, errorx.VerificationFailed(errorx.VerifyReasonDistance).
				WithDetail("distance_m", math.Round(distance))
		}
		log.Lat = proof.Lat
		log.Lng = proof.Lng
		log.IsVerified = true
	}

	if err := s.db.CreateAttendanceLog(ctx, log); err != nil {
		return nil, err
	}
	s.logger.Info("clock in",
		zap.String("user_id", userID),
		zap.Uint("channel_id", channelID),
		zap.String("method", log.Method),
		zap.Bool("verified", log.IsVerified))
	return log, nil
}

// ClockOut transitions ON to OFF. Always accepted, no proof required.
func (s *Service) ClockOut(ctx context.Context, channelID uint, userID string) (*database.AttendanceLog, error) {
	status, err := s.Status(ctx, channelID, userID)
	if err != nil {
		return nil, err
	}
	if status.State != StateOn {
		return nil, errorx.ErrConflict.WithMessage("not clocked in")
	}

	log := &database.AttendanceLog{
		UserID:     userID,
		ChannelID:  channelID,
		Type:       cnst.AttendanceOut,
		Method:     status.LastLog.Method,
		IsVerified: true,
	}
	if err := s.db.CreateAttendanceLog(ctx, log); err != nil {
		return nil, err
	}
	s.logger.Info("clock out",
		zap.String("user_id", userID),
		zap.Uint("channel_id", channelID))
	return log, nil
}

// RecentLogs returns the caller's latest attendance rows, newest first
func (s *Service) RecentLogs(ctx context.Context, channelID uint, userID string, limit int) ([]*database.AttendanceLog, error) {
	if err := s.oracle.RequireMember(ctx, channelID, userID); err != nil {
		return nil, err
	}
	return s.db.ListAttendanceLogs(ctx, userID, channelID, limit)
}

const earthRadiusMeters = 6371000

// Haversine returns the great-circle distance in meters between two
// coordinates.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// CreateAttendanceLog appends a clock-in/out record
func (d *DB) CreateAttendanceLog(ctx context.Context, log *AttendanceLog) error {
	return d.db.WithContext(ctx).Create(log).Error
}

// LastAttendanceLog returns the most recent log for (user, channel), or nil
// when the user has never clocked in.
func (d *DB) LastAttendanceLog(ctx context.Context, userID string, channelID uint) (*AttendanceLog, error) {
	var log AttendanceLog
	err := d.db.WithContext(ctx).
		Where("user_id = ? AND channel_id = ?", userID, channelID).
		Order("created_at desc, id desc").
		First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// ListAttendanceLogs returns recent logs, newest first
func (d *DB) ListAttendanceLogs(ctx context.Context, userID string, channelID uint, limit int) ([]*AttendanceLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var logs []*AttendanceLog
	err := d.db.WithContext(ctx).
		Where("user_id = ? AND channel_id = ?", userID, channelID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

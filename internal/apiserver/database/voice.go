package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CreateVoiceMemo creates a voice memo
func (d *DB) CreateVoiceMemo(ctx context.Context, memo *VoiceMemo) error {
	if memo.ID == "" {
		memo.ID = uuid.NewString()
	}
	return d.db.WithContext(ctx).Create(memo).Error
}

// GetVoiceMemo retrieves a memo by id
func (d *DB) GetVoiceMemo(ctx context.Context, id string) (*VoiceMemo, error) {
	var memo VoiceMemo
	err := d.db.WithContext(ctx).First(&memo, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &memo, nil
}

// UpdateVoiceMemo updates a memo
func (d *DB) UpdateVoiceMemo(ctx context.Context, memo *VoiceMemo) error {
	return d.db.WithContext(ctx).Save(memo).Error
}

// DeleteVoiceMemo removes a memo
func (d *DB) DeleteVoiceMemo(ctx context.Context, id string) error {
	return d.db.WithContext(ctx).Delete(&VoiceMemo{}, "id = ?", id).Error
}

// ListVoiceMemos returns the memos visible to a user in a channel: their own
// private memos plus the channel's shared ones.
func (d *DB) ListVoiceMemos(ctx context.Context, userID string, channelID uint) ([]*VoiceMemo, error) {
	var memos []*VoiceMemo
	err := d.db.WithContext(ctx).
		Where("(user_id = ? AND is_private = ?) OR (channel_id = ? AND is_private = ?)",
			userID, true, channelID, false).
		Order("created_at desc").
		Find(&memos).Error
	return memos, err
}

// ListExpiredAudioMemos returns memos whose audio retention window has
// passed and still carry an audio url.
func (d *DB) ListExpiredAudioMemos(ctx context.Context, now time.Time) ([]*VoiceMemo, error) {
	var memos []*VoiceMemo
	err := d.db.WithContext(ctx).
		Where("audio_url IS NOT NULL AND audio_expires_at < ?", now).
		Find(&memos).Error
	return memos, err
}

// ClearAudioURLs nulls the audio url on the listed memos
func (d *DB) ClearAudioURLs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return d.db.WithContext(ctx).
		Model(&VoiceMemo{}).
		Where("id IN ?", ids).
		Update("audio_url", nil).Error
}

// DeleteExpiredTextMemos deletes memos whose text retention window has
// passed, returning the number of rows removed.
func (d *DB) DeleteExpiredTextMemos(ctx context.Context, now time.Time) (int64, error) {
	res := d.db.WithContext(ctx).
		Where("text_expires_at IS NOT NULL AND text_expires_at < ?", now).
		Delete(&VoiceMemo{})
	return res.RowsAffected, res.Error
}

package voice

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/storecrew/storecrew/internal/apiserver/database"
	"github.com/storecrew/storecrew/internal/common/cnst"
	"github.com/storecrew/storecrew/internal/common/errorx"
	"github.com/storecrew/storecrew/internal/core/authz"
)

// Retention windows per subscription tier. Audio always expires; the
// transcript is kept forever on paid tiers.
const (
	freeAudioRetention     = 3 * 24 * time.Hour
	freeTextRetention      = 30 * 24 * time.Hour
	standardAudioRetention = 30 * 24 * time.Hour
	premiumAudioRetention  = 365 * 24 * time.Hour
)

// Service manages transcribed voice memos and their tier-driven retention.
type Service struct {
	db     database.Database
	oracle *authz.Oracle
	logger *zap.Logger
}

// NewService creates a voice memo service
func NewService(db database.Database, oracle *authz.Oracle, logger *zap.Logger) *Service {
	return &Service{db: db, oracle: oracle, logger: logger.Named("core.voice")}
}

// Create stores a memo with expiry dates derived from the channel's
// subscription tier at creation time.
func (s *Service) Create(ctx context.Context, channelID uint, userID, content string, audioURL *string, isPrivate bool) (*database.VoiceMemo, error) {
	if err := s.oracle.RequireMember(ctx, channelID, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, errorx.ErrValidation.WithMessage("transcript is required")
	}
	channel, err := s.db.GetChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	memo := &database.VoiceMemo{
		UserID:    userID,
		ChannelID: channelID,
		Content:   strings.TrimSpace(content),
		AudioURL:  audioURL,
		IsPrivate: isPrivate,
	}
	switch channel.SubscriptionTier {
	case cnst.TierPremium:
		memo.AudioExpiresAt = now.Add(premiumAudioRetention)
	case cnst.TierStandard:
		memo.AudioExpiresAt = now.Add(standardAudioRetention)
	default:
		memo.AudioExpiresAt = now.Add(freeAudioRetention)
		textExpiry := now.Add(freeTextRetention)
		memo.TextExpiresAt = &textExpiry
	}

	if err := s.db.CreateVoiceMemo(ctx, memo); err != nil {
		return nil, err
	}
	return memo, nil
}

// List returns the caller's private memos plus the channel's shared ones
func (s *Service) List(ctx context.Context, channelID uint, userID string) ([]*database.VoiceMemo, error) {
	if err := s.oracle.RequireMember(ctx, channelID, userID); err != nil {
		return nil, err
	}
	return s.db.ListVoiceMemos(ctx, userID, channelID)
}

// UpdateContent edits the transcript. The author only.
func (s *Service) UpdateContent(ctx context.Context, memoID, userID, content string) (*database.VoiceMemo, error) {
	memo, err := s.getMemo(ctx, memoID)
	if err != nil {
		return nil, err
	}
	if err := s.oracle.RequireCreator(userID, memo.UserID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, errorx.ErrValidation.WithMessage("transcript is required")
	}
	memo.Content = strings.TrimSpace(content)
	if err := s.db.UpdateVoiceMemo(ctx, memo); err != nil {
		return nil, err
	}
	return memo, nil
}

// SetShared toggles channel-wide visibility. The author only.
func (s *Service) SetShared(ctx context.Context, memoID, userID string, shared bool) (*database.VoiceMemo, error) {
	memo, err := s.getMemo(ctx, memoID)
	if err != nil {
		return nil, err
	}
	if err := s.oracle.RequireCreator(userID, memo.UserID); err != nil {
		return nil, err
	}
	memo.IsPrivate = !shared
	if err := s.db.UpdateVoiceMemo(ctx, memo); err != nil {
		return nil, err
	}
	return memo, nil
}

// Delete removes a memo. The author only.
func (s *Service) Delete(ctx context.Context, memoID, userID string) error {
	memo, err := s.getMemo(ctx, memoID)
	if err != nil {
		return err
	}
	if err := s.oracle.RequireCreator(userID, memo.UserID); err != nil {
		return err
	}
	return s.db.DeleteVoiceMemo(ctx, memoID)
}

// Cleanup drops expired audio urls and deletes memos whose transcript
// retention has lapsed. Run periodically by the retention sweeper.
func (s *Service) Cleanup(ctx context.Context) error {
	now := time.Now()

	expired, err := s.db.ListExpiredAudioMemos(ctx, now)
	if err != nil {
		return err
	}
	if len(expired) > 0 {
		ids := make([]string, len(expired))
		for i, memo := range expired {
			ids[i] = memo.ID
		}
		if err := s.db.ClearAudioURLs(ctx, ids); err != nil {
			return err
		}
		s.logger.Info("expired audio cleared", zap.Int("count", len(ids)))
	}

	deleted, err := s.db.DeleteExpiredTextMemos(ctx, now)
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.logger.Info("expired memos deleted", zap.Int64("count", deleted))
	}
	return nil
}

func (s *Service) getMemo(ctx context.Context, memoID string) (*database.VoiceMemo, error) {
	memo, err := s.db.GetVoiceMemo(ctx, memoID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorx.ErrNotFound.WithMessage("memo not found")
	}
	if err != nil {
		return nil, err
	}
	return memo, nil
}

package handover

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/storecrew/storecrew/internal/apiserver/database"
	"github.com/storecrew/storecrew/internal/apiserver/notifier"
	"github.com/storecrew/storecrew/internal/common/cnst"
	"github.com/storecrew/storecrew/internal/common/errorx"
	"github.com/storecrew/storecrew/internal/core/authz"
)

// Service manages the channel's shared operational journal.
type Service struct {
	db       database.Database
	oracle   *authz.Oracle
	notifier notifier.Notifier
	logger   *zap.Logger
}

// NewService creates a handover service
func NewService(db database.Database, oracle *authz.Oracle, n notifier.Notifier, logger *zap.Logger) *Service {
	return &Service{db: db, oracle: oracle, notifier: n, logger: logger.Named("core.handover")}
}

func (s *Service) publish(ctx context.Context, kind string, record any) {
	if err := s.notifier.Publish(ctx, notifier.NewEvent(kind, cnst.TableHandovers, record)); err != nil {
		s.logger.Warn("failed to publish handover event", zap.Error(err))
	}
}

// Append writes a journal entry. Any channel member.
func (s *Service) Append(ctx context.Context, channelID uint, userID, category, content string) (*database.Handover, error) {
	if err := s.oracle.RequireMember(ctx, channelID, userID); err != nil {
		return nil, err
	}
	if category != cnst.HandoverCategoryHandover && category != cnst.HandoverCategoryOrder {
		return nil, errorx.ErrValidation.WithMessage("invalid category")
	}
	if strings.TrimSpace(content) == "" {
		return nil, errorx.ErrValidation.WithMessage("content is required")
	}
	entry := &database.Handover{
		ChannelID: channelID,
		UserID:    userID,
		Category:  category,
		Content:   strings.TrimSpace(content),
	}
	if err := s.db.CreateHandover(ctx, entry); err != nil {
		return nil, err
	}
	s.publish(ctx, cnst.EventInsert, entry)
	return entry, nil
}

// Update edits an entry's content. Any channel member may edit; the
// journal is a shared document.
func (s *Service) Update(ctx context.Context, entryID, userID, content string) (*database.Handover, error) {
	entry, err := s.getEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := s.oracle.RequireMember(ctx, entry.ChannelID, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, errorx.ErrValidation.WithMessage("content is required")
	}
	entry.Content = strings.TrimSpace(content)
	now := time.Now()
	entry.UpdatedAt = &now
	if err := s.db.UpdateHandover(ctx, entry); err != nil {
		return nil, err
	}
	s.publish(ctx, cnst.EventUpdate, entry)
	return entry, nil
}

// Delete removes an entry. The author only.
func (s *Service) Delete(ctx context.Context, entryID, userID string) error {
	entry, err := s.getEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if err := s.oracle.RequireCreator(userID, entry.UserID); err != nil {
		return err
	}
	return s.db.DeleteHandover(ctx, entryID)
}

// DayGroup is one day's journal entries, oldest day first so the feed
// tails like a journal.
type DayGroup struct {
	Date    string               `json:"date"`
	Entries []*database.Handover `json:"entries"`
}

// List returns the channel's journal grouped by day in ascending order
func (s *Service) List(ctx context.Context, channelID uint, userID string) ([]*DayGroup, error) {
	if err := s.oracle.RequireMember(ctx, channelID, userID); err != nil {
		return nil, err
	}
	entries, err := s.db.ListHandovers(ctx, channelID)
	if err != nil {
		return nil, err
	}

	var groups []*DayGroup
	byDate := make(map[string]*DayGroup)
	for _, entry := range entries {
		date := entry.CreatedAt.Format("2006-01-02")
		group, ok := byDate[date]
		if !ok {
			group = &DayGroup{Date: date}
			byDate[date] = group
			groups = append(groups, group)
		}
		group.Entries = append(group.Entries, entry)
	}
	return groups, nil
}

func (s *Service) getEntry(ctx context.Context, entryID string) (*database.Handover, error) {
	entry, err := s.db.GetHandover(ctx, entryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorx.ErrNotFound.WithMessage("entry not found")
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

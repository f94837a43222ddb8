package chat

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

// Service manages categories, topics, messages and read positions.
type Service struct {
	db       database.Database
	oracle   *authz.Oracle
	notifier notifier.Notifier
	logger   *zap.Logger
}

// NewService creates a chat service
func NewService(db database.Database, oracle *authz.Oracle, n notifier.Notifier, logger *zap.Logger) *Service {
	return &Service{db: db, oracle: oracle, notifier: n, logger: logger.Named("core.chat")}
}

// publish is best effort; a dropped notification only delays subscribers
// until their next poll.
func (s *Service) publish(ctx context.Context, kind, table string, record any) {
	if err := s.notifier.Publish(ctx, notifier.NewEvent(kind, table, record)); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("table", table),
			zap.String("event", kind),
			zap.Error(err))
	}
}

// ListCategories returns the channel's categories
func (s *Service) ListCategories(ctx context.Context, channelID uint, userID string) ([]*database.Category, error) {
	if err := s.oracle.RequireMember(ctx, channelID, userID); err != nil {
		return nil, err
	}
	return s.db.ListCategories(ctx, channelID)
}

// CreateCategory adds a category. Any channel member may create one.
func (s *Service) CreateCategory(ctx context.Context, channelID uint, userID, name string) (*database.Category, error) {
	if err := s.oracle.RequireMember(ctx, channelID, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, errorx.ErrValidation.WithMessage("category name is required")
	}
	category := &database.Category{ChannelID: channelID, Name: strings.TrimSpace(name)}
	if err := s.db.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	s.publish(ctx, cnst.EventInsert, cnst.TableCategories, category)
	return category, nil
}

// RenameCategory renames a category and rebinds its topics in one
// transaction. Owners and managers only.
func (s *Service) RenameCategory(ctx context.Context, categoryID, userID, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return errorx.ErrValidation.WithMessage("category name is required")
	}
	category, err := s.db.GetCategory(ctx, categoryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := s.oracle.RequireManager(ctx, category.ChannelID, userID); err != nil {
		return err
	}
	if err := s.db.RenameCategory(ctx, categoryID, strings.TrimSpace(newName)); err != nil {
		return err
	}
	s.publish(ctx, cnst.EventUpdate, cnst.TableCategories, category)
	return nil
}

// DeleteCategory removes a category. Topics that referenced it render as
// uncategorized. Owners and managers only.
func (s *Service) DeleteCategory(ctx context.Context, categoryID, userID string) error {
	category, err := s.db.GetCategory(ctx, categoryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := s.oracle.RequireManager(ctx, category.ChannelID, userID); err != nil {
		return err
	}
	if err := s.db.DeleteCategory(ctx, categoryID); err != nil {
		return err
	}
	s.publish(ctx, cnst.EventDelete, cnst.TableCategories, category)
	return nil
}

// CreateTopic creates a topic with the caller as its owner-level member.
// Any channel member may create topics.
func (s *Service) CreateTopic(ctx context.Context, channelID uint, userID, name string, category *string) (*database.Topic, error) {
	if err := s.oracle.RequireMember(ctx, channelID, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, errorx.ErrValidation.WithMessage("topic name is required")
	}
	topic := &database.Topic{
		ChannelID: channelID,
		Name:      strings.TrimSpace(name),
		Category:  category,
		CreatedBy: userID,
	}
	if err := s.db.CreateTopicWithOwner(ctx, topic); err != nil {
		return nil, err
	}
	s.publish(ctx, cnst.EventInsert, cnst.TableTopics, topic)
	return topic, nil
}

// UpdateTopic renames a topic or toggles its priority flag. Channel
// managers and the topic creator only.
func (s *Service) UpdateTopic(ctx context.Context, topicID, userID string, name *string, isPriority *bool) (*database.Topic, error) {
	topic, err := s.getTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if err := s.oracle.CanManageTopic(ctx, topic.ChannelID, userID, topic.CreatedBy); err != nil {
		return nil, err
	}
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return nil, errorx.ErrValidation.WithMessage("topic name is required")
		}
		topic.Name = strings.TrimSpace(*name)
	}
	if isPriority != nil {
		topic.IsPriority = *isPriority
	}
	if err := s.db.UpdateTopic(ctx, topic); err != nil {
		return nil, err
	}
	s.publish(ctx, cnst.EventUpdate, cnst.TableTopics, topic)
	return topic, nil
}

// DeleteTopic removes a topic with its messages, members and read
// positions. Channel managers and the topic creator only.
func (s *Service) DeleteTopic(ctx context.Context, topicID, userID string) error {
	topic, err := s.getTopic(ctx, topicID)
	if err != nil {
		return err
	}
	if err := s.oracle.CanManageTopic(ctx, topic.ChannelID, userID, topic.CreatedBy); err != nil {
		return err
	}
	if err := s.db.DeleteTopicCascade(ctx, topicID); err != nil {
		return err
	}
	s.publish(ctx, cnst.EventDelete, cnst.TableTopics, topic)
	return nil
}

// TopicSummary pairs a topic with the caller's unread count, capped for
// badge display.
type TopicSummary struct {
	*database.Topic
	UnreadCount int `json:"unread_count"`
}

// ListTopics returns the topics the caller is subscribed to, each with an
// unread count derived from the caller's read position.
func (s *Service) ListTopics(ctx context.Context, channelID uint, userID string) ([]*TopicSummary, error) {
	if err := s.oracle.RequireMember(ctx, channelID, userID); err != nil {
		return nil, err
	}
	topics, err := s.db.ListTopicsForUser(ctx, channelID, userID)
	if err != nil {
		return nil, err
	}
	topicIDs := make([]string, len(topics))
	for i, t := range topics {
		topicIDs[i] = t.ID
	}
	positions, err := s.db.GetReadPositions(ctx, userID, topicIDs)
	if err != nil {
		return nil, err
	}

	out := make([]*TopicSummary, 0, len(topics))
	for _, t := range topics {
		var since *time.Time
		if at, ok := positions[t.ID]; ok {
			sinceAt := at
			since = &sinceAt
		}
		count, err := s.db.CountMessagesAfter(ctx, t.ID, userID, since)
		if err != nil {
			return nil, err
		}
		if count > cnst.MaxUnreadCount {
			count = cnst.MaxUnreadCount
		}
		out = append(out, &TopicSummary{Topic: t, UnreadCount: int(count)})
	}
	return out, nil
}

// ListAllTopics returns every topic of the channel, subscribed or not.
// Owners and managers only.
func (s *Service) ListAllTopics(ctx context.Context, channelID uint, userID string) ([]*database.Topic, error) {
	if err := s.oracle.RequireManager(ctx, channelID, userID); err != nil {
		return nil, err
	}
	return s.db.ListAllTopics(ctx, channelID)
}

// Reorder moves a topic to a new position and optionally rebinds its
// category. Display orders are recomputed contiguously so the first topic
// carries the highest score. Owners and managers only.
func (s *Service) Reorder(ctx context.Context, topicID, userID string, newIndex int, newCategory *string) error {
	topic, err := s.getTopic(ctx, topicID)
	if err != nil {
		return err
	}
	if err := s.oracle.RequireManager(ctx, topic.ChannelID, userID); err != nil {
		return err
	}

	topics, err := s.db.ListAllTopics(ctx, topic.ChannelID)
	if err != nil {
		return err
	}
	ordered := make([]*database.Topic, 0, len(topics))
	for _, t := range topics {
		if t.ID != topicID {
			ordered = append(ordered, t)
		}
	}
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(ordered) {
		newIndex = len(ordered)
	}
	ordered = append(ordered[:newIndex], append([]*database.Topic{topic}, ordered[newIndex:]...)...)

	maxScore := len(ordered)
	for i, t := range ordered {
		var category *string
		if t.ID == topicID && newCategory != nil {
			category = newCategory
		}
		if err := s.db.UpdateTopicOrder(ctx, t.ID, maxScore-i, category); err != nil {
			return err
		}
	}
	s.publish(ctx, cnst.EventUpdate, cnst.TableTopics, topic)
	return nil
}

// TopicMembers lists a topic's subscriptions. Any subscriber may read it.
func (s *Service) TopicMembers(ctx context.Context, topicID, userID string) ([]*database.TopicMember, error) {
	topic, err := s.getTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if err := s.requireTopicMember(ctx, topic, userID); err != nil {
		return nil, err
	}
	return s.db.ListTopicMembers(ctx, topicID)
}

// AddTopicMember subscribes a channel member to the topic. Channel
// managers and the topic creator only.
func (s *Service) AddTopicMember(ctx context.Context, topicID, actorID, targetID string) error {
	topic, err := s.getTopic(ctx, topicID)
	if err != nil {
		return err
	}
	if err := s.oracle.CanManageTopic(ctx, topic.ChannelID, actorID, topic.CreatedBy); err != nil {
		return err
	}
	if err := s.oracle.RequireMember(ctx, topic.ChannelID, targetID); err != nil {
		return errorx.ErrValidation.WithMessage("target is not a channel member")
	}
	isMember, err := s.db.IsTopicMember(ctx, topicID, targetID)
	if err != nil {
		return err
	}
	if isMember {
		return errorx.ErrConflict.WithMessage("already a topic member")
	}
	return s.db.AddTopicMember(ctx, &database.TopicMember{
		TopicID:         topicID,
		UserID:          targetID,
		PermissionLevel: cnst.TopicPermissionMember,
	})
}

// RemoveTopicMember unsubscribes a user from the topic. The user loses
// read access immediately; past messages stay in the log. Channel managers
// and the topic creator only, though anyone may remove themselves.
func (s *Service) RemoveTopicMember(ctx context.Context, topicID, actorID, targetID string) error {
	topic, err := s.getTopic(ctx, topicID)
	if err != nil {
		return err
	}
	if actorID != targetID {
		if err := s.oracle.CanManageTopic(ctx, topic.ChannelID, actorID, topic.CreatedBy); err != nil {
			return err
		}
	}
	return s.db.RemoveTopicMember(ctx, topicID, targetID)
}

// AppendMessage writes a message to the topic log and fans it out. The
// caller must be a topic member and supply content, an attachment, or both.
func (s *Service) AppendMessage(ctx context.Context, topicID, userID, content string, imageURL *string, clientID string) (*database.Message, error) {
	topic, err := s.getTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if err := s.requireTopicMember(ctx, topic, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" && (imageURL == nil || *imageURL == "") {
		return nil, errorx.ErrValidation.WithMessage("message needs content or an attachment")
	}
	if strings.TrimSpace(content) == "" && imageURL != nil {
		content = attachmentLabel(*imageURL)
	}

	message := &database.Message{
		TopicID:   topicID,
		UserID:    userID,
		Content:   content,
		ImageURL:  imageURL,
		ClientID:  clientID,
		CreatedAt: time.Now(),
	}
	if err := s.db.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	event := notifier.NewEvent(cnst.EventInsert, cnst.TableMessages, message)
	event.ClientID = clientID
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish message event", zap.Error(err))
	}
	return message, nil
}

// ListMessages returns a page of the topic log, most recent first
func (s *Service) ListMessages(ctx context.Context, topicID, userID string, limit int, before *time.Time) ([]*database.Message, error) {
	topic, err := s.getTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if err := s.requireTopicMember(ctx, topic, userID); err != nil {
		return nil, err
	}
	return s.db.ListMessages(ctx, topicID, limit, before)
}

// SearchMessages runs a case-insensitive substring search over the
// channel's messages.
func (s *Service) SearchMessages(ctx context.Context, channelID uint, userID, query string) ([]*database.Message, error) {
	if err := s.oracle.RequireMember(ctx, channelID, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, errorx.ErrValidation.WithMessage("search query is required")
	}
	return s.db.SearchMessages(ctx, channelID, query, cnst.SearchMessageLimit)
}

// MarkRead advances the caller's read position on the topic. Idempotent.
func (s *Service) MarkRead(ctx context.Context, topicID, userID string) error {
	topic, err := s.getTopic(ctx, topicID)
	if err != nil {
		return err
	}
	if err := s.requireTopicMember(ctx, topic, userID); err != nil {
		return err
	}
	return s.db.UpsertReadPosition(ctx, topicID, userID, time.Now())
}

var (
	videoExtensions = []string{".mp4", ".mov", ".avi", ".wmv", ".mkv", ".webm"}
	imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
)

// attachmentLabel derives a placeholder body for attachment-only messages
// from the file extension.
func attachmentLabel(url string) string {
	clean := strings.ToLower(strings.SplitN(url, "?", 2)[0])
	for _, ext := range videoExtensions {
		if strings.HasSuffix(clean, ext) {
			return "[동영상]"
		}
	}
	for _, ext := range imageExtensions {
		if strings.HasSuffix(clean, ext) {
			return "[이미지]"
		}
	}
	return "[파일 첨부]"
}

func (s *Service) getTopic(ctx context.Context, topicID string) (*database.Topic, error) {
	topic, err := s.db.GetTopic(ctx, topicID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorx.ErrNotFound.WithMessage("topic not found")
	}
	if err != nil {
		return nil, err
	}
	return topic, nil
}

// requireTopicMember gates message access: channel membership is necessary
// but not sufficient.
func (s *Service) requireTopicMember(ctx context.Context, topic *database.Topic, userID string) error {
	if err := s.oracle.RequireMember(ctx, topic.ChannelID, userID); err != nil {
		return err
	}
	isMember, err := s.db.IsTopicMember(ctx, topic.ID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return errorx.ErrForbidden.WithMessage("not a topic member")
	}
	return nil
}

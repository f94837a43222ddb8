package database

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storecrew/storecrew/internal/common/cnst"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateCategory creates a new chat category
func (d *DB) CreateCategory(ctx context.Context, category *Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	return d.db.WithContext(ctx).Create(category).Error
}

// GetCategory retrieves a category by id
func (d *DB) GetCategory(ctx context.Context, id string) (*Category, error) {
	var category Category
	err := d.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ListCategories returns all categories of a channel
func (d *DB) ListCategories(ctx context.Context, channelID uint) ([]*Category, error) {
	var categories []*Category
	err := d.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("display_order desc").
		Find(&categories).Error
	return categories, err
}

// RenameCategory renames the category and rebinds every topic in the same
// channel referencing the old name, in one transaction.
func (d *DB) RenameCategory(ctx context.Context, id string, newName string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category Category
		if err := tx.First(&category, "id = ?", id).Error; err != nil {
			return err
		}
		oldName := category.Name
		if err := tx.Model(&Category{}).Where("id = ?", id).Update("name", newName).Error; err != nil {
			return err
		}
		return tx.Model(&Topic{}).
			Where("channel_id = ? AND category = ?", category.ChannelID, oldName).
			Update("category", newName).Error
	})
}

// DeleteCategory removes the category row. Topics keep their category name;
// dangling names render as uncategorized.
func (d *DB) DeleteCategory(ctx context.Context, id string) error {
	return d.db.WithContext(ctx).Delete(&Category{}, "id = ?", id).Error
}

// CreateTopicWithOwner inserts the topic and its creator's owner-level
// membership atomically.
func (d *DB) CreateTopicWithOwner(ctx context.Context, topic *Topic) error {
	if topic.ID == "" {
		topic.ID = uuid.NewString()
	}
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(topic).Error; err != nil {
			return err
		}
		member := &TopicMember{
			TopicID:         topic.ID,
			UserID:          topic.CreatedBy,
			PermissionLevel: cnst.TopicPermissionOwner,
		}
		return tx.Create(member).Error
	})
}

// GetTopic retrieves a topic by id
func (d *DB) GetTopic(ctx context.Context, id string) (*Topic, error) {
	var topic Topic
	err := d.db.WithContext(ctx).First(&topic, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// UpdateTopic updates an existing topic
func (d *DB) UpdateTopic(ctx context.Context, topic *Topic) error {
	return d.db.WithContext(ctx).Save(topic).Error
}

// DeleteTopicCascade removes the topic with its messages, members and read
// positions.
func (d *DB) DeleteTopicCascade(ctx context.Context, id string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("topic_id = ?", id).Delete(&Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("topic_id = ?", id).Delete(&TopicMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("topic_id = ?", id).Delete(&ReadPosition{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Topic{}, "id = ?", id).Error
	})
}

// ListTopicsForUser returns the channel topics the user is subscribed to.
// Ordering: display_order desc, then newest first.
func (d *DB) ListTopicsForUser(ctx context.Context, channelID uint, userID string) ([]*Topic, error) {
	var topics []*Topic
	err := d.db.WithContext(ctx).
		Joins("JOIN topic_members ON topic_members.topic_id = topics.id").
		Where("topics.channel_id = ? AND topic_members.user_id = ?", channelID, userID).
		Order("topics.display_order desc, topics.created_at desc").
		Find(&topics).Error
	return topics, err
}

// ListAllTopics returns every topic of a channel, subscribed or not
func (d *DB) ListAllTopics(ctx context.Context, channelID uint) ([]*Topic, error) {
	var topics []*Topic
	err := d.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("display_order desc, created_at desc").
		Find(&topics).Error
	return topics, err
}

// UpdateTopicOrder sets the display order and optionally rebinds the
// category of a topic.
func (d *DB) UpdateTopicOrder(ctx context.Context, id string, displayOrder int, category *string) error {
	updates := map[string]any{"display_order": displayOrder}
	if category != nil {
		updates["category"] = *category
	}
	return d.db.WithContext(ctx).
		Model(&Topic{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// IsTopicMember checks whether a user is subscribed to a topic
func (d *DB) IsTopicMember(ctx context.Context, topicID, userID string) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).
		Model(&TopicMember{}).
		Where("topic_id = ? AND user_id = ?", topicID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListTopicMembers returns all subscriptions of a topic
func (d *DB) ListTopicMembers(ctx context.Context, topicID string) ([]*TopicMember, error) {
	var members []*TopicMember
	err := d.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("created_at asc").
		Find(&members).Error
	return members, err
}

// AddTopicMember subscribes a user to a topic
func (d *DB) AddTopicMember(ctx context.Context, member *TopicMember) error {
	return d.db.WithContext(ctx).Create(member).Error
}

// RemoveTopicMember unsubscribes a user from a topic. Past messages remain
// in the log.
func (d *DB) RemoveTopicMember(ctx context.Context, topicID, userID string) error {
	return d.db.WithContext(ctx).
		Where("topic_id = ? AND user_id = ?", topicID, userID).
		Delete(&TopicMember{}).Error
}

// CreateMessage appends a message to the topic log
func (d *DB) CreateMessage(ctx context.Context, message *Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	return d.db.WithContext(ctx).Create(message).Error
}

// ListMessages returns messages most-recent first, paginated by created_at
func (d *DB) ListMessages(ctx context.Context, topicID string, limit int, before *time.Time) ([]*Message, error) {
	if limit <= 0 {
		limit = cnst.DefaultMessageLimit
	}
	query := d.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("created_at desc").
		Limit(limit)
	if before != nil {
		query = query.Where("created_at < ?", *before)
	}
	var messages []*Message
	err := query.Find(&messages).Error
	return messages, err
}

// SearchMessages runs a case-insensitive substring search over message
// content within a channel.
func (d *DB) SearchMessages(ctx context.Context, channelID uint, query string, limit int) ([]*Message, error) {
	if limit <= 0 {
		limit = cnst.SearchMessageLimit
	}
	var messages []*Message
	err := d.db.WithContext(ctx).
		Joins("JOIN topics ON topics.id = messages.topic_id").
		Where("topics.channel_id = ?", channelID).
		Where("LOWER(messages.content) LIKE ?", "%"+strings.ToLower(query)+"%").
		Order("messages.created_at desc").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// CountMessagesAfter counts messages by other users after since
func (d *DB) CountMessagesAfter(ctx context.Context, topicID, excludeUserID string, since *time.Time) (int64, error) {
	query := d.db.WithContext(ctx).
		Model(&Message{}).
		Where("topic_id = ? AND user_id <> ?", topicID, excludeUserID)
	if since != nil {
		query = query.Where("created_at > ?", *since)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// UpsertReadPosition records the last time a user opened a topic
func (d *DB) UpsertReadPosition(ctx context.Context, topicID, userID string, at time.Time) error {
	return d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "topic_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{"last_read_at": at}),
		}).
		Create(&ReadPosition{TopicID: topicID, UserID: userID, LastReadAt: at}).Error
}

// GetReadPositions returns the user's last-read timestamps per topic
func (d *DB) GetReadPositions(ctx context.Context, userID string, topicIDs []string) (map[string]time.Time, error) {
	result := make(map[string]time.Time, len(topicIDs))
	if len(topicIDs) == 0 {
		return result, nil
	}
	var rows []*ReadPosition
	err := d.db.WithContext(ctx).
		Where("user_id = ? AND topic_id IN ?", userID, topicIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.TopicID] = row.LastReadAt
	}
	return result, nil
}

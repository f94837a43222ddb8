package database

import (
	"context"
	"time"

	"github.com/storecrew/storecrew/internal/common/cnst"
	"gorm.io/gorm"
)

// CreateChannel inserts the channel and its owner membership in one
// transaction, so a channel never exists without exactly one owner row.
func (d *DB) CreateChannel(ctx context.Context, channel *Channel) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(channel).Error; err != nil {
			return err
		}
		member := &ChannelMember{
			ChannelID: channel.ID,
			UserID:    channel.OwnerID,
			Role:      cnst.RoleOwner,
			JoinedAt:  time.Now(),
		}
		return tx.Create(member).Error
	})
}

// GetChannel retrieves a channel by id
func (d *DB) GetChannel(ctx context.Context, id uint) (*Channel, error) {
	var channel Channel
	err := d.db.WithContext(ctx).First(&channel, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

// UpdateChannel updates an existing channel
func (d *DB) UpdateChannel(ctx context.Context, channel *Channel) error {
	return d.db.WithContext(ctx).Save(channel).Error
}

// DeleteChannel removes a channel and every channel-scoped entity
func (d *DB) DeleteChannel(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var topicIDs []string
		if err := tx.Model(&Topic{}).Where("channel_id = ?", id).Pluck("id", &topicIDs).Error; err != nil {
			return err
		}
		if len(topicIDs) > 0 {
			if err := tx.Where("topic_id IN ?", topicIDs).Delete(&Message{}).Error; err != nil {
				return err
			}
			if err := tx.Where("topic_id IN ?", topicIDs).Delete(&TopicMember{}).Error; err != nil {
				return err
			}
			if err := tx.Where("topic_id IN ?", topicIDs).Delete(&ReadPosition{}).Error; err != nil {
				return err
			}
		}
		for _, model := range []any{&Topic{}, &Category{}, &InviteCode{}, &CalendarEvent{}, &LaborContract{}, &AttendanceLog{}, &Handover{}, &VoiceMemo{}, &ChannelMember{}} {
			if err := tx.Where("channel_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&Channel{}, "id = ?", id).Error
	})
}

// ListUserChannels returns all channels the user belongs to, with their role
func (d *DB) ListUserChannels(ctx context.Context, userID string) ([]*ChannelWithRole, error) {
	var rows []*ChannelWithRole
	err := d.db.WithContext(ctx).
		Model(&Channel{}).
		Select("channels.*, channel_members.role AS role, channel_members.joined_at AS joined_at").
		Joins("JOIN channel_members ON channel_members.channel_id = channels.id").
		Where("channel_members.user_id = ?", userID).
		Order("channel_members.joined_at asc").
		Find(&rows).Error
	return rows, err
}

// GetMember retrieves a membership row
func (d *DB) GetMember(ctx context.Context, channelID uint, userID string) (*ChannelMember, error) {
	var member ChannelMember
	err := d.db.WithContext(ctx).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers returns all members of a channel
func (d *DB) ListMembers(ctx context.Context, channelID uint) ([]*ChannelMember, error) {
	var members []*ChannelMember
	err := d.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("joined_at asc").
		Find(&members).Error
	return members, err
}

// AddMember inserts a membership row
func (d *DB) AddMember(ctx context.Context, member *ChannelMember) error {
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now()
	}
	return d.db.WithContext(ctx).Create(member).Error
}

// UpdateMemberRole changes a member's role
func (d *DB) UpdateMemberRole(ctx context.Context, channelID uint, userID, role string) error {
	return d.db.WithContext(ctx).
		Model(&ChannelMember{}).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		Update("role", role).Error
}

// RemoveMember deletes a membership row
func (d *DB) RemoveMember(ctx context.Context, channelID uint, userID string) error {
	return d.db.WithContext(ctx).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		Delete(&ChannelMember{}).Error
}

// CountMembersWithRole counts members of a channel holding a role
func (d *DB) CountMembersWithRole(ctx context.Context, channelID uint, role string) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).
		Model(&ChannelMember{}).
		Where("channel_id = ? AND role = ?", channelID, role).
		Count(&count).Error
	return count, err
}

// TransferOwnership promotes toID to owner, demotes fromID to manager and
// rewrites the channel owner column, all in one transaction.
func (d *DB) TransferOwnership(ctx context.Context, channelID uint, fromID, toID string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&ChannelMember{}).
			Where("channel_id = ? AND user_id = ? AND role = ?", channelID, fromID, cnst.RoleOwner).
			Update("role", cnst.RoleManager)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		res = tx.Model(&ChannelMember{}).
			Where("channel_id = ? AND user_id = ?", channelID, toID).
			Update("role", cnst.RoleOwner)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&Channel{}).
			Where("id = ?", channelID).
			Update("owner_id", toID).Error
	})
}

// CreateInvite stores a new invite code
func (d *DB) CreateInvite(ctx context.Context, invite *InviteCode) error {
	return d.db.WithContext(ctx).Create(invite).Error
}

// GetValidInvite finds an invite by code that has not expired yet. Expired
// codes stay in storage but are invisible here.
func (d *DB) GetValidInvite(ctx context.Context, code string, now time.Time) (*InviteCode, error) {
	var invite InviteCode
	err := d.db.WithContext(ctx).
		Where("code = ? AND expires_at > ?", code, now).
		First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// RedeemInvite inserts the membership and increments the usage counter. The
// unique (channel_id, user_id) index makes concurrent redeems by the same
// user collapse to a single membership row.
func (d *DB) RedeemInvite(ctx context.Context, inviteID uint, member *ChannelMember) error {
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now()
	}
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		return tx.Model(&InviteCode{}).
			Where("id = ?", inviteID).
			Update("used_count", gorm.Expr("used_count + 1")).Error
	})
}

// ListActiveInvites returns non-expired invite codes for a channel
func (d *DB) ListActiveInvites(ctx context.Context, channelID uint, now time.Time) ([]*InviteCode, error) {
	var invites []*InviteCode
	err := d.db.WithContext(ctx).
		Where("channel_id = ? AND expires_at > ?", channelID, now).
		Order("created_at desc").
		Find(&invites).Error
	return invites, err
}

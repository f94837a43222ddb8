package database

import (
	"context"
	"time"
)

// Database defines the methods for database operations. All three supported
// drivers (postgres, mysql, sqlite) share one gorm-backed implementation.
type Database interface {
	// Close closes the database connection.
	Close() error

	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error

	// Channels. CreateChannel inserts the channel and its owner membership
	// atomically; DeleteChannel cascades to all channel-scoped entities.
	CreateChannel(ctx context.Context, channel *Channel) error
	GetChannel(ctx context.Context, id uint) (*Channel, error)
	UpdateChannel(ctx context.Context, channel *Channel) error
	DeleteChannel(ctx context.Context, id uint) error
	ListUserChannels(ctx context.Context, userID string) ([]*ChannelWithRole, error)

	// Membership
	GetMember(ctx context.Context, channelID uint, userID string) (*ChannelMember, error)
	ListMembers(ctx context.Context, channelID uint) ([]*ChannelMember, error)
	AddMember(ctx context.Context, member *ChannelMember) error
	UpdateMemberRole(ctx context.Context, channelID uint, userID, role string) error
	RemoveMember(ctx context.Context, channelID uint, userID string) error
	CountMembersWithRole(ctx context.Context, channelID uint, role string) (int64, error)
	// TransferOwnership atomically makes toID the owner, demotes fromID to
	// manager and updates the channel owner column.
	TransferOwnership(ctx context.Context, channelID uint, fromID, toID string) error

	// Invite codes. GetValidInvite only returns codes that have not expired;
	// RedeemInvite inserts the membership and bumps the usage counter in one
	// transaction.
	CreateInvite(ctx context.Context, invite *InviteCode) error
	GetValidInvite(ctx context.Context, code string, now time.Time) (*InviteCode, error)
	RedeemInvite(ctx context.Context, inviteID uint, member *ChannelMember) error
	ListActiveInvites(ctx context.Context, channelID uint, now time.Time) ([]*InviteCode, error)

	// Categories. RenameCategory rebinds every topic referencing the old
	// name within the same channel in one transaction.
	CreateCategory(ctx context.Context, category *Category) error
	GetCategory(ctx context.Context, id string) (*Category, error)
	ListCategories(ctx context.Context, channelID uint) ([]*Category, error)
	RenameCategory(ctx context.Context, id string, newName string) error
	DeleteCategory(ctx context.Context, id string) error

	// Topics. CreateTopicWithOwner inserts the topic and its creator's
	// owner-level TopicMember atomically; DeleteTopicCascade removes the
	// topic with its messages, members and read positions.
	CreateTopicWithOwner(ctx context.Context, topic *Topic) error
	GetTopic(ctx context.Context, id string) (*Topic, error)
	UpdateTopic(ctx context.Context, topic *Topic) error
	DeleteTopicCascade(ctx context.Context, id string) error
	ListTopicsForUser(ctx context.Context, channelID uint, userID string) ([]*Topic, error)
	ListAllTopics(ctx context.Context, channelID uint) ([]*Topic, error)
	UpdateTopicOrder(ctx context.Context, id string, displayOrder int, category *string) error

	// Topic membership
	IsTopicMember(ctx context.Context, topicID, userID string) (bool, error)
	ListTopicMembers(ctx context.Context, topicID string) ([]*TopicMember, error)
	AddTopicMember(ctx context.Context, member *TopicMember) error
	RemoveTopicMember(ctx context.Context, topicID, userID string) error

	// Messages
	CreateMessage(ctx context.Context, message *Message) error
	// ListMessages returns most-recent first; pass before to page backwards.
	ListMessages(ctx context.Context, topicID string, limit int, before *time.Time) ([]*Message, error)
	SearchMessages(ctx context.Context, channelID uint, query string, limit int) ([]*Message, error)
	// CountMessagesAfter counts messages in a topic by other users created
	// strictly after since; a nil since counts everything by others.
	CountMessagesAfter(ctx context.Context, topicID, excludeUserID string, since *time.Time) (int64, error)

	// Read positions
	UpsertReadPosition(ctx context.Context, topicID, userID string, at time.Time) error
	GetReadPositions(ctx context.Context, userID string, topicIDs []string) (map[string]time.Time, error)

	// Calendar
	CreateEvent(ctx context.Context, event *CalendarEvent) error
	GetEvent(ctx context.Context, id string) (*CalendarEvent, error)
	UpdateEvent(ctx context.Context, event *CalendarEvent) error
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context, channelID uint, from, to time.Time) ([]*CalendarEvent, error)
	ListWorkScheduleEvents(ctx context.Context, channelID uint, from, to time.Time) ([]*CalendarEvent, error)
	UpdateEventWage(ctx context.Context, ids []string, wage float64, at time.Time) error

	// Labor contracts
	CreateContract(ctx context.Context, contract *LaborContract) error
	GetContract(ctx context.Context, id uint) (*LaborContract, error)
	ListContracts(ctx context.Context, channelID uint) ([]*LaborContract, error)

	// Attendance. LastAttendanceLog returns nil without error when the user
	// has no rows for the channel.
	CreateAttendanceLog(ctx context.Context, log *AttendanceLog) error
	LastAttendanceLog(ctx context.Context, userID string, channelID uint) (*AttendanceLog, error)
	ListAttendanceLogs(ctx context.Context, userID string, channelID uint, limit int) ([]*AttendanceLog, error)

	// Handovers
	CreateHandover(ctx context.Context, entry *Handover) error
	GetHandover(ctx context.Context, id string) (*Handover, error)
	UpdateHandover(ctx context.Context, entry *Handover) error
	DeleteHandover(ctx context.Context, id string) error
	ListHandovers(ctx context.Context, channelID uint) ([]*Handover, error)

	// Voice memos
	CreateVoiceMemo(ctx context.Context, memo *VoiceMemo) error
	GetVoiceMemo(ctx context.Context, id string) (*VoiceMemo, error)
	UpdateVoiceMemo(ctx context.Context, memo *VoiceMemo) error
	DeleteVoiceMemo(ctx context.Context, id string) error
	ListVoiceMemos(ctx context.Context, userID string, channelID uint) ([]*VoiceMemo, error)
	ListExpiredAudioMemos(ctx context.Context, now time.Time) ([]*VoiceMemo, error)
	ClearAudioURLs(ctx context.Context, ids []string) error
	DeleteExpiredTextMemos(ctx context.Context, now time.Time) (int64, error)
}

package database

import "time"

// User is an authenticated principal. The id is immutable once created.
type User struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email       string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password    string    `json:"-" gorm:"not null"`
	DisplayName string    `json:"display_name" gorm:"type:varchar(100)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Channel is a store, the unit of multi-tenancy.
type Channel struct {
	ID               uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name             string    `json:"name" gorm:"type:varchar(100);not null"`
	OwnerID          string    `json:"owner_id" gorm:"type:varchar(36);index;not null"`
	InviteCode       string    `json:"invite_code" gorm:"type:varchar(16);uniqueIndex"`
	Latitude         *float64  `json:"latitude"`
	Longitude        *float64  `json:"longitude"`
	Address          string    `json:"address" gorm:"type:varchar(255)"`
	WifiSSID         string    `json:"wifi_ssid" gorm:"type:varchar(100)"`
	AuthMode         string    `json:"auth_mode" gorm:"type:varchar(16);not null;default:'location'"`
	SubscriptionTier string    `json:"subscription_tier" gorm:"type:varchar(16);not null;default:'free'"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ChannelMember maps a principal to a channel with a role. Exactly one row
// per channel carries the owner role.
type ChannelMember struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ChannelID uint      `json:"channel_id" gorm:"uniqueIndex:idx_channel_user;not null"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);uniqueIndex:idx_channel_user;not null"`
	Role      string    `json:"role" gorm:"type:varchar(16);not null;default:'staff'"`
	JoinedAt  time.Time `json:"joined_at"`
}

// ChannelWithRole is a channel joined with the caller's membership row.
type ChannelWithRole struct {
	Channel
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// InviteCode grants channel membership until it expires. Redeeming
// increments the usage counter but does not invalidate the code.
type InviteCode struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Code      string    `json:"code" gorm:"type:varchar(16);index;not null"`
	ChannelID uint      `json:"channel_id" gorm:"index;not null"`
	CreatedBy string    `json:"created_by" gorm:"type:varchar(36);not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	UsedCount int       `json:"used_count" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
}

// Category is a chat container grouping topics within a channel. Topics
// reference it softly by name.
type Category struct {
	ID           string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	ChannelID    uint      `json:"channel_id" gorm:"index;not null"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null"`
	DisplayOrder int       `json:"display_order" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
}

// Topic is a chat thread. Category is a soft reference by name; a dangling
// value renders as "uncategorized".
type Topic struct {
	ID           string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	ChannelID    uint      `json:"channel_id" gorm:"index;not null"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null"`
	Category     *string   `json:"category" gorm:"type:varchar(100)"`
	CreatedBy    string    `json:"created_by" gorm:"type:varchar(36);not null"`
	IsPriority   bool      `json:"is_priority" gorm:"not null;default:false"`
	DisplayOrder int       `json:"display_order" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
}

// TopicMember is an explicit per-user subscription to a topic. Channel
// membership is necessary but not sufficient to read a topic.
type TopicMember struct {
	ID              uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	TopicID         string    `json:"topic_id" gorm:"type:varchar(36);uniqueIndex:idx_topic_user;not null"`
	UserID          string    `json:"user_id" gorm:"type:varchar(36);uniqueIndex:idx_topic_user;not null"`
	PermissionLevel string    `json:"permission_level" gorm:"type:varchar(16);not null;default:'member'"`
	CreatedAt       time.Time `json:"created_at"`
}

// Message is one entry in the append-only log of a topic. At least one of
// Content and ImageURL is set. Immutable once written.
type Message struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	TopicID   string    `json:"topic_id" gorm:"type:varchar(36);index:idx_topic_created;not null"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);not null"`
	Content   string    `json:"content"`
	ImageURL  *string   `json:"image_url"`
	ClientID  string    `json:"client_id" gorm:"type:varchar(36)"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_topic_created"`
}

// ReadPosition tracks the last time a user opened a topic.
type ReadPosition struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	TopicID    string    `json:"topic_id" gorm:"type:varchar(36);uniqueIndex:idx_read_topic_user;not null"`
	UserID     string    `json:"user_id" gorm:"type:varchar(36);uniqueIndex:idx_read_topic_user;not null"`
	LastReadAt time.Time `json:"last_read_at" gorm:"not null"`
}

// CalendarEvent is visible to every member of its channel. Work-schedule
// events feed the payroll engine; HourlyWage overrides the contract wage.
type CalendarEvent struct {
	ID             string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	ChannelID      uint       `json:"channel_id" gorm:"index;not null"`
	Title          string     `json:"title" gorm:"type:varchar(255);not null"`
	StartDate      time.Time  `json:"start_date" gorm:"index;not null"`
	EndDate        time.Time  `json:"end_date" gorm:"not null"`
	IsAllDay       bool       `json:"is_all_day" gorm:"not null;default:false"`
	Color          string     `json:"color" gorm:"type:varchar(16)"`
	Location       string     `json:"location" gorm:"type:varchar(255)"`
	Link           string     `json:"link" gorm:"type:varchar(512)"`
	CreatedBy      string     `json:"created_by" gorm:"type:varchar(36);not null"`
	ParticipantIDs StringList `json:"participant_ids" gorm:"type:text"`
	IsWorkSchedule bool       `json:"is_work_schedule" gorm:"index;not null;default:false"`
	EmployeeID     *uint      `json:"employee_id"`
	HourlyWage     *float64   `json:"hourly_wage"`
	WageUpdatedAt  *time.Time `json:"wage_updated_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

/// LaborContract describes employment terms. UserID is nullable: ghost
// contracts cover staff who never registered an account.
type LaborContract struct {
	ID                uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	ChannelID         uint       `json:"channel_id" gorm:"index;not null"`
	UserID            *string    `json:"user_id" gorm:"type:varchar(36)"`
	EmployeeName      string     `json:"employee_name" gorm:"type:varchar(100);not null"`
	EmployeeType      string     `json:"employee_type" gorm:"type:varchar(16);not null;default:'part'"`
	WageType          string     `json:"wage_type" gorm:"type:varchar(16);not null;default:'hourly'"`
	HourlyWage        *float64   `json:"hourly_wage"`
	MonthlyWage       float64    `json:"monthly_wage" gorm:"not null;default:0"`
	DailyWorkHours    float64    `json:"daily_work_hours" gorm:"not null;default:8"`
	WorkDays          IntList    `json:"work_days" gorm:"type:text"`
	ContractStartDate time.Time  `json:"contract_start_date"`
	ContractEndDate   *time.Time `json:"contract_end_date"`
	CreatedAt         time.Time  `json:"created_at"`
}

// AttendanceLog is an append-only clock-in/out record with its proof.
type AttendanceLog struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     string    `json:"user_id" gorm:"type:varchar(36);index:idx_att_user_channel;not null"`
	ChannelID  uint      `json:"channel_id" gorm:"index:idx_att_user_channel;not null"`
	Type       string    `json:"type" gorm:"type:varchar(8);not null"`
	Method     string    `json:"method" gorm:"type:varchar(8);not null"`
	Lat        *float64  `json:"lat"`
	Lng        *float64  `json:"lng"`
	IPAddress  string    `json:"ip_address" gorm:"type:varchar(45)"`
	IsVerified bool      `json:"is_verified" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

// Handover is a flat journal entry, category handover or order.
type Handover struct {
	ID        string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	ChannelID uint       `json:"channel_id" gorm:"index;not null"`
	UserID    string     `json:"user_id" gorm:"type:varchar(36);not null"`
	Category  string     `json:"category" gorm:"type:varchar(16);not null"`
	Content   string     `json:"content" gorm:"not null"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// VoiceMemo is a transcribed recording. Retention windows are derived from
// the channel subscription tier at creation time.
type VoiceMemo struct {
	ID             string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID         string     `json:"user_id" gorm:"type:varchar(36);index;not null"`
	ChannelID      uint       `json:"channel_id" gorm:"index;not null"`
	Content        string     `json:"content"`
	AudioURL       *string    `json:"audio_url"`
	IsPrivate      bool       `json:"is_private" gorm:"not null;default:true"`
	AudioExpiresAt time.Time  `json:"audio_expires_at"`
	TextExpiresAt  *time.Time `json:"text_expires_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

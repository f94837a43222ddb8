package dto

import "time"

// Auth

type SignupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
}

type UserInfo struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type TokenResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// Channels

type CreateChannelRequest struct {
	Name      string   `json:"name" binding:"required"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	WifiSSID  string   `json:"wifi_ssid"`
	AuthMode  string   `json:"auth_mode"`
}

type UpdateChannelRequest struct {
	Name      *string  `json:"name"`
	Address   *string  `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	WifiSSID  *string  `json:"wifi_ssid"`
	AuthMode  *string  `json:"auth_mode"`
	Tier      *string  `json:"subscription_tier"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type TransferRequest struct {
	TargetUserID string `json:"target_user_id" binding:"required"`
}

type GenerateInviteRequest struct {
	TTLSeconds int `json:"ttl_seconds"`
}

type RedeemInviteRequest struct {
	Code string `json:"code" binding:"required"`
}

// Chat

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type RenameCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateTopicRequest struct {
	Name     string  `json:"name" binding:"required"`
	Category *string `json:"category"`
}

type UpdateTopicRequest struct {
	Name       *string `json:"name"`
	IsPriority *bool   `json:"is_priority"`
}

type ReorderTopicRequest struct {
	NewIndex    int     `json:"new_index"`
	NewCategory *string `json:"new_category"`
}

type TopicMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type AppendMessageRequest struct {
	Content  string  `json:"content"`
	ImageURL *string `json:"image_url"`
	ClientID string  `json:"client_id"`
}

// Calendar

type EventRequest struct {
	Title          string    `json:"title" binding:"required"`
	StartDate      time.Time `json:"start_date" binding:"required"`
	EndDate        time.Time `json:"end_date" binding:"required"`
	IsAllDay       bool      `json:"is_all_day"`
	Color          string    `json:"color"`
	Location       string    `json:"location"`
	Link           string    `json:"link"`
	ParticipantIDs []string  `json:"participant_ids"`
	IsWorkSchedule bool      `json:"is_work_schedule"`
	EmployeeID     *uint     `json:"employee_id"`
	HourlyWage     *float64  `json:"hourly_wage"`
}

type ContractRequest struct {
	EmployeeName      string     `json:"employee_name" binding:"required"`
	EmployeeType      string     `json:"employee_type"`
	WageType          string     `json:"wage_type"`
	HourlyWage        *float64   `json:"hourly_wage"`
	MonthlyWage       float64    `json:"monthly_wage"`
	DailyWorkHours    float64    `json:"daily_work_hours"`
	WorkDays          []int      `json:"work_days"`
	ContractStartDate time.Time  `json:"contract_start_date"`
	ContractEndDate   *time.Time `json:"contract_end_date"`
	UserID            *string    `json:"user_id"`
}

// Payroll

type WageOverrideRequest struct {
	EventIDs []string `json:"event_ids" binding:"required"`
	Wage     float64  `json:"wage"`
}

// Attendance

type ClockInRequest struct {
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
	SSID string   `json:"ssid"`
}

// Handover

type AppendHandoverRequest struct {
	Category string `json:"category" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

type UpdateHandoverRequest struct {
	Content string `json:"content" binding:"required"`
}

// Voice memos

type CreateMemoRequest struct {
	Content   string  `json:"content" binding:"required"`
	AudioPath *string `json:"audio_path"`
	IsPrivate *bool   `json:"is_private"`
}

type UpdateMemoRequest struct {
	Content string `json:"content" binding:"required"`
}

type ShareMemoRequest struct {
	Shared bool `json:"shared"`
}

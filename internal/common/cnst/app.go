package cnst

import "time"

// Channel roles. Every channel has exactly one owner at any moment.
const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// Topic permission levels
const (
	TopicPermissionOwner  = "owner"
	TopicPermissionMember = "member"
)

// Channel attendance verification modes
const (
	AuthModeLocation = "location"
	AuthModeWifi     = "wifi"
)

// Subscription tiers
const (
	TierFree     = "free"
	TierStandard = "standard"
	TierPremium  = "premium"
)

// Attendance log types and methods
const (
	AttendanceIn  = "IN"
	AttendanceOut = "OUT"

	AttendanceMethodGPS  = "GPS"
	AttendanceMethodWifi = "WIFI"
)

// Handover journal categories
const (
	HandoverCategoryHandover = "handover"
	HandoverCategoryOrder    = "order"
)

// Wage and employee types on labor contracts
const (
	WageTypeHourly  = "hourly"
	WageTypeMonthly = "monthly"

	EmployeeTypeFull = "full"
	EmployeeTypePart = "part"
)

const (
	// InviteCodeLength is the length of generated invite codes.
	InviteCodeLength = 8
	// InviteCodeTTL is the default validity window for invite codes.
	InviteCodeTTL = 10 * time.Minute

	// MaxUnreadCount caps per-topic unread badges.
	MaxUnreadCount = 99

	// DefaultMessageLimit is the page size for message history.
	DefaultMessageLimit = 50
	// SearchMessageLimit is the page size for message search.
	SearchMessageLimit = 30

	// AttendanceRadiusMeters is the maximum GPS distance from the channel
	// location accepted for clock-in.
	AttendanceRadiusMeters = 150.0
)

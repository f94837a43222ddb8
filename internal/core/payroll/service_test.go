package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storecrew/storecrew/internal/apiserver/database"
	"github.com/storecrew/storecrew/internal/common/cnst"
	"github.com/storecrew/storecrew/internal/common/config"
	"github.com/storecrew/storecrew/internal/common/errorx"
	"github.com/storecrew/storecrew/internal/core/authz"
)

func wagePtr(v float64) *float64 { return &v }

func weekdayContract(name string, wage float64) *database.LaborContract {
	return &database.LaborContract{
		EmployeeName:   name,
		WageType:       cnst.WageTypeHourly,
		HourlyWage:     wagePtr(wage),
		DailyWorkHours: 8,
		WorkDays:       database.IntList{0, 1, 2, 3, 4},
	}
}

func shift(title string, day, fromHour, toHour int, wage *float64, employeeID *uint) *database.CalendarEvent {
	start := time.Date(2026, time.January, day, fromHour, 0, 0, 0, time.UTC)
	return &database.CalendarEvent{
		Title:          title,
		StartDate:      start,
		EndDate:        time.Date(2026, time.January, day, toHour, 0, 0, 0, time.UTC),
		IsWorkSchedule: true,
		HourlyWage:     wage,
		EmployeeID:     employeeID,
	}
}

func TestCalculateStandardMonth(t *testing.T) {
	// January 2026 has 22 weekdays
	contracts := []*database.LaborContract{weekdayContract("민수", 10000)}

	summary := Calculate(contracts, nil, 2026, 1)
	require.Len(t, summary.Employees, 1)
	row := summary.Employees[0]

	assert.Equal(t, 22, row.StandardDays)
	assert.Equal(t, 1_760_000.0, row.StandardPay)
	require.NotNil(t, row.ActualPay)
	assert.Equal(t, 1_760_000.0, *row.ActualPay)
	assert.Equal(t, 0.0, row.Diff)
	assert.Equal(t, 0.0, summary.Diff)
}

func TestCalculateOverrideExtendsShift(t *testing.T) {
	contracts := []*database.LaborContract{weekdayContract("민수", 10000)}
	// Jan 5 2026 is a Monday; the override replaces the 8h standard day
	// with a 10h shift
	overrides := []*database.CalendarEvent{shift("민수", 5, 9, 19, nil, nil)}

	summary := Calculate(contracts, overrides, 2026, 1)
	row := summary.Employees[0]
	require.NotNil(t, row.ActualPay)
	assert.Equal(t, 1_780_000.0, *row.ActualPay)
	assert.Equal(t, 20_000.0, row.Diff)
	assert.Equal(t, 20_000.0, summary.Diff)
}

func TestCalculateOverrideWageReplacesAllHours(t *testing.T) {
	contracts := []*database.LaborContract{weekdayContract("민수", 10000)}
	overrides := []*database.CalendarEvent{shift("민수", 5, 9, 17, wagePtr(12000), nil)}

	summary := Calculate(contracts, overrides, 2026, 1)
	row := summary.Employees[0]
	// 22 workdays x 8h, all paid at the override wage
	require.NotNil(t, row.ActualPay)
	assert.Equal(t, 22*8*12000.0, *row.ActualPay)
}

func TestCalculateMidnightCrossingShift(t *testing.T) {
	overrides := []*database.CalendarEvent{
		{
			Title:          "야간 (심야)",
			StartDate:      time.Date(2026, time.January, 10, 22, 0, 0, 0, time.UTC),
			EndDate:        time.Date(2026, time.January, 11, 4, 0, 0, 0, time.UTC),
			IsWorkSchedule: true,
			HourlyWage:     wagePtr(10000),
		},
	}

	summary := Calculate(nil, overrides, 2026, 1)
	require.Len(t, summary.Employees, 1)
	row := summary.Employees[0]
	assert.Equal(t, "야간", row.Name)
	assert.Equal(t, 6.0, row.ActualHours)
	require.NotNil(t, row.ActualPay)
	assert.Equal(t, 60_000.0, *row.ActualPay)
}

func TestCalculateDefaultMinimumWage(t *testing.T) {
	contract := weekdayContract("지은", 0)
	contract.HourlyWage = nil

	summary := Calculate([]*database.LaborContract{contract}, nil, 2026, 1)
	row := summary.Employees[0]
	assert.Equal(t, 22*8*9860.0, row.StandardPay)
}

func TestCalculateMonthlyWageType(t *testing.T) {
	contract := &database.LaborContract{
		EmployeeName:   "점장",
		WageType:       cnst.WageTypeMonthly,
		MonthlyWage:    3_000_000,
		DailyWorkHours: 8,
		WorkDays:       database.IntList{0, 1, 2, 3, 4},
	}

	summary := Calculate([]*database.LaborContract{contract}, nil, 2026, 1)
	row := summary.Employees[0]
	assert.Equal(t, 3_000_000.0, row.StandardPay)
	require.NotNil(t, row.ActualPay)
	assert.Equal(t, 3_000_000.0, *row.ActualPay)
}

func TestCalculateUnknownWageIncomplete(t *testing.T) {
	// no contract and no override wage: hours exist but pay is unknown
	overrides := []*database.CalendarEvent{shift("알바생", 5, 9, 17, nil, nil)}

	summary := Calculate(nil, overrides, 2026, 1)
	row := summary.Employees[0]
	assert.True(t, row.Incomplete)
	assert.Nil(t, row.ActualPay)
	assert.True(t, summary.HasIncomplete)
	assert.Equal(t, 0.0, row.Diff)
}

func TestCalculateResignedContractSkipped(t *testing.T) {
	contract := weekdayContract("퇴사자", 10000)
	end := time.Date(2025, time.November, 30, 0, 0, 0, 0, time.UTC)
	contract.ContractEndDate = &end

	summary := Calculate([]*database.LaborContract{contract}, nil, 2026, 1)
	row := summary.Employees[0]
	assert.Equal(t, 0.0, row.StandardPay)
	assert.Equal(t, 0, row.StandardDays)
	assert.Nil(t, row.ActualPay)
	assert.False(t, row.Incomplete)
}

func TestCalculateTitleParsing(t *testing.T) {
	eid := uint(42)
	eidToName := map[uint]string{42: "김민수"}

	cases := map[string]string{
		"🟢지은(오픈)":  "지은",
		"❌현우 결근":   "현우",
		"⭐🔥수빈":     "수빈",
		"  민지 (마감)": "민지",
		"🟢":         "Unknown",
	}
	for title, want := range cases {
		got := EmployeeNameOf(&database.CalendarEvent{Title: title}, eidToName)
		assert.Equal(t, want, got, "title %q", title)
	}

	linked := EmployeeNameOf(&database.CalendarEvent{Title: "whatever", EmployeeID: &eid}, eidToName)
	assert.Equal(t, "김민수", linked)
}

func TestCalculateSummaryInvariant(t *testing.T) {
	contracts := []*database.LaborContract{
		weekdayContract("민수", 10000),
		weekdayContract("지은", 11000),
	}
	overrides := []*database.CalendarEvent{
		shift("민수", 5, 9, 19, nil, nil),
		shift("무명", 6, 9, 17, nil, nil), // incomplete row
	}

	summary := Calculate(contracts, overrides, 2026, 1)

	var diffs float64
	for _, row := range summary.Employees {
		if !row.Incomplete {
			diffs += row.Diff
		}
	}
	assert.InDelta(t, summary.TotalActual-summary.TotalStandard, diffs, 0.001)
}

func TestComputeRequiresManager(t *testing.T) {
	db, err := database.NewSQLite(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()

	owner := &database.User{Email: "owner@example.com", Password: "x"}
	staff := &database.User{Email: "staff@example.com", Password: "x"}
	require.NoError(t, db.CreateUser(ctx, owner))
	require.NoError(t, db.CreateUser(ctx, staff))
	channel := &database.Channel{Name: "store", OwnerID: owner.ID}
	require.NoError(t, db.CreateChannel(ctx, channel))
	require.NoError(t, db.AddMember(ctx, &database.ChannelMember{ChannelID: channel.ID, UserID: staff.ID, Role: cnst.RoleStaff}))

	svc := NewService(db, authz.NewOracle(db), zap.NewNop())
	_, err = svc.Compute(ctx, channel.ID, staff.ID, 2026, 1)
	assert.ErrorIs(t, err, errorx.ErrForbidden)

	summary, err := svc.Compute(ctx, channel.ID, owner.ID, 2026, 1)
	require.NoError(t, err)
	assert.Empty(t, summary.Employees)
}

func TestUpdateWageOverride(t *testing.T) {
	db, err := database.NewSQLite(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()

	owner := &database.User{Email: "owner@example.com", Password: "x"}
	require.NoError(t, db.CreateUser(ctx, owner))
	channel := &database.Channel{Name: "store", OwnerID: owner.ID}
	require.NoError(t, db.CreateChannel(ctx, channel))

	event := shift("민수", 5, 9, 17, nil, nil)
	event.ChannelID = channel.ID
	event.CreatedBy = owner.ID
	require.NoError(t, db.CreateEvent(ctx, event))

	svc := NewService(db, authz.NewOracle(db), zap.NewNop())

	assert.ErrorIs(t, svc.UpdateWageOverride(ctx, owner.ID, []string{event.ID}, -1), errorx.ErrValidation)
	assert.ErrorIs(t, svc.UpdateWageOverride(ctx, owner.ID, nil, 10000), errorx.ErrValidation)

	require.NoError(t, svc.UpdateWageOverride(ctx, owner.ID, []string{event.ID}, 12000))
	got, err := db.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	require.NotNil(t, got.HourlyWage)
	assert.Equal(t, 12000.0, *got.HourlyWage)
	assert.NotNil(t, got.WageUpdatedAt)
}

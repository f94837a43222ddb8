package payroll

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/storecrew/storecrew/internal/apiserver/database"
	"github.com/storecrew/storecrew/internal/common/cnst"
	"github.com/storecrew/storecrew/internal/common/errorx"
	"github.com/storecrew/storecrew/internal/core/authz"
	"github.com/storecrew/storecrew/internal/core/calendar"
)

// defaultHourlyWage is the statutory minimum applied when a contract has no
// hourly wage set.
const defaultHourlyWage = 9860

// titleEmojis are status markers stripped from event titles before the
// employee name is parsed out.
var titleEmojis = []string{"🟢", "❌", "⭐", "🔥"}

// EmployeeRow is one employee's monthly payroll line. ActualPay is nil when
// the wage is unknown and the row is marked incomplete.
type EmployeeRow struct {
	Name         string   `json:"name"`
	StandardPay  float64  `json:"std_pay"`
	StandardDays int      `json:"std_days"`
	ActualPay    *float64 `json:"act_pay"`
	ActualDays   int      `json:"act_days"`
	ActualHours  float64  `json:"act_hours"`
	Diff         float64  `json:"diff"`
	HourlyWage   *float64 `json:"h_wage"`
	WageType     string   `json:"wage_type"`
	Incomplete   bool     `json:"is_incomplete"`
	Registered   bool     `json:"is_registered"`
}

// Summary is the monthly payroll rollup for a channel
type Summary struct {
	TotalStandard float64        `json:"total_std"`
	TotalActual   float64        `json:"total_act"`
	Diff          float64        `json:"diff"`
	HasIncomplete bool           `json:"has_incomplete"`
	Employees     []*EmployeeRow `json:"employees"`
}

// Service computes monthly payroll from labor contracts and work-schedule
// events.
type Service struct {
	db     database.Database
	oracle *authz.Oracle
	logger *zap.Logger
}

// NewService creates a payroll service
func NewService(db database.Database, oracle *authz.Oracle, logger *zap.Logger) *Service {
	return &Service{db: db, oracle: oracle, logger: logger.Named("core.payroll")}
}

// Compute calculates the channel's payroll for a month. Owners and
// managers only.
func (s *Service) Compute(ctx context.Context, channelID uint, userID string, year, month int) (*Summary, error) {
	if err := s.oracle.RequireManager(ctx, channelID, userID); err != nil {
		return nil, err
	}
	contracts, err := s.db.ListContracts(ctx, channelID)
	if err != nil {
		return nil, err
	}
	from, to := calendar.MonthRange(year, time.Month(month))
	overrides, err := s.db.ListWorkScheduleEvents(ctx, channelID, from, to)
	if err != nil {
		return nil, err
	}
	return Calculate(contracts, overrides, year, month), nil
}

// UpdateWageOverride sets the override hourly wage on the listed
// work-schedule events. Owners and managers only.
func (s *Service) UpdateWageOverride(ctx context.Context, userID string, eventIDs []string, wage float64) error {
	if wage < 0 {
		return errorx.ErrValidation.WithMessage("wage must be non-negative")
	}
	if len(eventIDs) == 0 {
		return errorx.ErrValidation.WithMessage("no events selected")
	}
	event, err := s.db.GetEvent(ctx, eventIDs[0])
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.ErrNotFound.WithMessage("event not found")
	}
	if err != nil {
		return err
	}
	if err := s.oracle.RequireManager(ctx, event.ChannelID, userID); err != nil {
		return err
	}
	return s.db.UpdateEventWage(ctx, eventIDs, wage, time.Now())
}

// Calculate runs the payroll algorithm over contracts and override events.
//
// Standard pay assumes the contract's weekly pattern holds all month.
// Actual pay replaces overridden days with the event durations; if any
// override carries a wage, that wage applies to all of the employee's
// hours in the month.
func Calculate(contracts []*database.LaborContract, overrides []*database.CalendarEvent, year, month int) *Summary {
	eidToName := make(map[uint]string, len(contracts))
	historyByName := make(map[string][]*database.LaborContract)
	allNames := make(map[string]struct{})
	for _, c := range contracts {
		name := strings.TrimSpace(c.EmployeeName)
		eidToName[c.ID] = name
		historyByName[name] = append(historyByName[name], c)
		allNames[name] = struct{}{}
	}

	eventsByName := make(map[string][]*database.CalendarEvent)
	for _, o := range overrides {
		name := EmployeeNameOf(o, eidToName)
		if name == "" {
			continue
		}
		allNames[name] = struct{}{}
		eventsByName[name] = append(eventsByName[name], o)
	}

	names := make([]string, 0, len(allNames))
	for name := range allNames {
		names = append(names, name)
	}
	sort.Strings(names)

	daysInMonth := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	summary := &Summary{}

	for _, name := range names {
		row := &EmployeeRow{Name: name, WageType: cnst.WageTypeHourly}

		history := historyByName[name]
		var latest *database.LaborContract
		if len(history) > 0 {
			sort.Slice(history, func(i, j int) bool {
				return history[i].CreatedAt.After(history[j].CreatedAt)
			})
			latest = history[0]
		}
		row.Registered = latest != nil

		var hourlyWage *float64
		var monthlyWage, dailyHours float64
		var workDays database.IntList
		resigned := false

		if latest != nil {
			if ed := latest.ContractEndDate; ed != nil {
				if ed.Year() < year || (ed.Year() == year && int(ed.Month()) < month) {
					resigned = true
				}
			}
			if !resigned {
				row.WageType = latest.WageType
				wage := float64(defaultHourlyWage)
				if latest.HourlyWage != nil && *latest.HourlyWage > 0 {
					wage = *latest.HourlyWage
				}
				hourlyWage = &wage
				monthlyWage = latest.MonthlyWage
				dailyHours = latest.DailyWorkHours
				workDays = latest.WorkDays

				for d := 1; d <= daysInMonth; d++ {
					if workDays.Contains(mondayWeekday(year, month, d)) {
						row.StandardDays++
					}
				}
				if row.WageType == cnst.WageTypeMonthly {
					row.StandardPay = monthlyWage
				} else {
					row.StandardPay = float64(row.StandardDays) * dailyHours * wage
				}
			}
		}

		var overrideWage *float64
		overrideDays := make(map[int]struct{})
		for _, o := range eventsByName[name] {
			if o.HourlyWage != nil && *o.HourlyWage > 0 {
				w := *o.HourlyWage
				overrideWage = &w
			}
			overrideDays[o.StartDate.Day()] = struct{}{}
			row.ActualHours += shiftHours(o.StartDate, o.EndDate)
		}
		row.ActualDays = len(overrideDays)

		if latest != nil && !resigned {
			for d := 1; d <= daysInMonth; d++ {
				if _, overridden := overrideDays[d]; overridden {
					continue
				}
				if workDays.Contains(mondayWeekday(year, month, d)) {
					row.ActualHours += dailyHours
					row.ActualDays++
				}
			}
		}

		finalWage := hourlyWage
		if latest == nil {
			finalWage = overrideWage
			row.WageType = cnst.WageTypeHourly
		} else if overrideWage != nil {
			finalWage = overrideWage
		}
		row.HourlyWage = finalWage

		switch {
		case finalWage == nil && row.WageType == cnst.WageTypeHourly:
			if row.ActualHours > 0 {
				row.Incomplete = true
				summary.HasIncomplete = true
			}
		case row.WageType == cnst.WageTypeMonthly:
			pay := monthlyWage
			row.ActualPay = &pay
		default:
			pay := row.ActualHours * *finalWage
			row.ActualPay = &pay
		}

		summary.TotalStandard += row.StandardPay
		if row.ActualPay != nil {
			summary.TotalActual += *row.ActualPay
			row.Diff = *row.ActualPay - row.StandardPay
		}
		summary.Employees = append(summary.Employees, row)
	}

	summary.Diff = summary.TotalActual - summary.TotalStandard
	return summary
}

// EmployeeNameOf resolves the employee a work-schedule event belongs to:
// the linked contract's name when employee_id is set, otherwise the event
// title with status emojis, the first parenthesis and absence suffixes
// stripped.
func EmployeeNameOf(event *database.CalendarEvent, eidToName map[uint]string) string {
	if event.EmployeeID != nil {
		if name, ok := eidToName[*event.EmployeeID]; ok {
			return name
		}
	}
	title := event.Title
	for _, emoji := range titleEmojis {
		title = strings.ReplaceAll(title, emoji, "")
	}
	title = strings.SplitN(title, "(", 2)[0]
	title = strings.SplitN(title, "결근", 2)[0]
	title = strings.TrimSpace(title)
	if title == "" {
		return "Unknown"
	}
	return title
}

// shiftHours measures an override shift from the clock times only, adding
// a day when the shift crosses midnight.
func shiftHours(start, end time.Time) float64 {
	s := float64(start.Hour()) + float64(start.Minute())/60
	e := float64(end.Hour()) + float64(end.Minute())/60
	diff := e - s
	if diff < 0 {
		diff += 24
	}
	return diff
}

func mondayWeekday(year, month, day int) int {
	wd := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Weekday()
	return (int(wd) + 6) % 7
}

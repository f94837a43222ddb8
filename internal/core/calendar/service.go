package calendar

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

// defaultStartHour is the clock-in hour assumed for synthesized schedule
// entries when a contract carries no explicit start time.
const defaultStartHour = 9

// Service manages channel calendar events and labor contracts.
type Service struct {
	db       database.Database
	oracle   *authz.Oracle
	notifier notifier.Notifier
	logger   *zap.Logger
}

// NewService creates a calendar service
func NewService(db database.Database, oracle *authz.Oracle, n notifier.Notifier, logger *zap.Logger) *Service {
	return &Service{db: db, oracle: oracle, notifier: n, logger: logger.Named("core.calendar")}
}

func (s *Service) publish(ctx context.Context, kind string, record any) {
	if err := s.notifier.Publish(ctx, notifier.NewEvent(kind, cnst.TableCalendarEvents, record)); err != nil {
		s.logger.Warn("failed to publish calendar event", zap.Error(err))
	}
}

// EventInput holds the fields settable on an event
type EventInput struct {
	Title          string
	StartDate      time.Time
	EndDate        time.Time
	IsAllDay       bool
	Color          string
	Location       string
	Link           string
	ParticipantIDs []string
	IsWorkSchedule bool
	EmployeeID     *uint
	HourlyWage     *float64
}

func (in *EventInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return errorx.ErrValidation.WithMessage("event title is required")
	}
	if in.EndDate.Before(in.StartDate) {
		return errorx.ErrValidation.WithMessage("event ends before it starts")
	}
	if in.HourlyWage != nil && *in.HourlyWage < 0 {
		return errorx.ErrValidation.WithMessage("wage must be non-negative")
	}
	return nil
}

// Create adds an event. Any channel member may create one.
func (s *Service) Create(ctx context.Context, channelID uint, userID string, in EventInput) (*database.CalendarEvent, error) {
	if err := s.oracle.RequireMember(ctx, channelID, userID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	event := &database.CalendarEvent{
		ChannelID:      channelID,
		Title:          strings.TrimSpace(in.Title),
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		IsAllDay:       in.IsAllDay,
		Color:          in.Color,
		Location:       in.Location,
		Link:           in.Link,
		CreatedBy:      userID,
		ParticipantIDs: in.ParticipantIDs,
		IsWorkSchedule: in.IsWorkSchedule,
		EmployeeID:     in.EmployeeID,
		HourlyWage:     in.HourlyWage,
	}
	if err := s.db.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	s.publish(ctx, cnst.EventInsert, event)
	return event, nil
}

// Update edits an event. The creator only.
func (s *Service) Update(ctx context.Context, eventID, userID string, in EventInput) (*database.CalendarEvent, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.oracle.RequireCreator(userID, event.CreatedBy); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	event.Title = strings.TrimSpace(in.Title)
	event.StartDate = in.StartDate
	event.EndDate = in.EndDate
	event.IsAllDay = in.IsAllDay
	event.Color = in.Color
	event.Location = in.Location
	event.Link = in.Link
	event.ParticipantIDs = in.ParticipantIDs
	event.IsWorkSchedule = in.IsWorkSchedule
	event.EmployeeID = in.EmployeeID
	event.HourlyWage = in.HourlyWage
	if err := s.db.UpdateEvent(ctx, event); err != nil {
		return nil, err
	}
	s.publish(ctx, cnst.EventUpdate, event)
	return event, nil
}

// Delete removes an event. The creator only.
func (s *Service) Delete(ctx context.Context, eventID, userID string) error {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if err := s.oracle.RequireCreator(userID, event.CreatedBy); err != nil {
		return err
	}
	if err := s.db.DeleteEvent(ctx, eventID); err != nil {
		return err
	}
	s.publish(ctx, cnst.EventDelete, event)
	return nil
}

// ListMonth returns every channel event starting in the given month. All
// channel members see all events; participant lists are advisory.
func (s *Service) ListMonth(ctx context.Context, channelID uint, userID string, year, month int) ([]*database.CalendarEvent, error) {
	if err := s.oracle.RequireMember(ctx, channelID, userID); err != nil {
		return nil, err
	}
	from, to := MonthRange(year, time.Month(month))
	return s.db.ListEvents(ctx, channelID, from, to)
}

// StaffSchedule derives the virtual standard schedule for every contract
// active in the month. Entries are never persisted.
func (s *Service) StaffSchedule(ctx context.Context, channelID uint, userID string, year, month int) ([]*database.CalendarEvent, error) {
	if err := s.oracle.RequireMember(ctx, channelID, userID); err != nil {
		return nil, err
	}
	contracts, err := s.db.ListContracts(ctx, channelID)
	if err != nil {
		return nil, err
	}

	from, to := MonthRange(year, time.Month(month))
	var out []*database.CalendarEvent
	for _, contract := range contracts {
		if !contract.ContractStartDate.IsZero() && contract.ContractStartDate.After(to) {
			continue
		}
		if contract.ContractEndDate != nil && contract.ContractEndDate.Before(from) {
			continue
		}
		for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
			if !contract.WorkDays.Contains(mondayWeekday(day)) {
				continue
			}
			start := time.Date(day.Year(), day.Month(), day.Day(), defaultStartHour, 0, 0, 0, day.Location())
			out = append(out, &database.CalendarEvent{
				ChannelID:      channelID,
				Title:          contract.EmployeeName,
				StartDate:      start,
				EndDate:        start.Add(time.Duration(contract.DailyWorkHours * float64(time.Hour))),
				EmployeeID:     &contract.ID,
				IsWorkSchedule: true,
			})
		}
	}
	return out, nil
}

// CreateContract registers a labor contract. Owners and managers only.
func (s *Service) CreateContract(ctx context.Context, channelID uint, userID string, contract *database.LaborContract) (*database.LaborContract, error) {
	if err := s.oracle.RequireManager(ctx, channelID, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(contract.EmployeeName) == "" {
		return nil, errorx.ErrValidation.WithMessage("employee name is required")
	}
	if contract.HourlyWage != nil && *contract.HourlyWage < 0 {
		return nil, errorx.ErrValidation.WithMessage("wage must be non-negative")
	}
	contract.ChannelID = channelID
	contract.EmployeeName = strings.TrimSpace(contract.EmployeeName)
	if contract.WageType == "" {
		contract.WageType = cnst.WageTypeHourly
	}
	if contract.EmployeeType == "" {
		contract.EmployeeType = cnst.EmployeeTypePart
	}
	if err := s.db.CreateContract(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

// ListContracts returns the channel's contracts. Owners and managers only.
func (s *Service) ListContracts(ctx context.Context, channelID uint, userID string) ([]*database.LaborContract, error) {
	if err := s.oracle.RequireManager(ctx, channelID, userID); err != nil {
		return nil, err
	}
	return s.db.ListContracts(ctx, channelID)
}

func (s *Service) getEvent(ctx context.Context, eventID string) (*database.CalendarEvent, error) {
	event, err := s.db.GetEvent(ctx, eventID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorx.ErrNotFound.WithMessage("event not found")
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

// MonthRange returns the first instant of the month and the last instant
// before the next month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	return from, from.AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// mondayWeekday maps time.Weekday to the Monday=0 convention used by
// contract work_days.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

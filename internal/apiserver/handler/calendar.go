package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storecrew/storecrew/internal/apiserver/database"
	"github.com/storecrew/storecrew/internal/common/dto"
	"github.com/storecrew/storecrew/internal/common/errorx"
	"github.com/storecrew/storecrew/internal/core/calendar"
)

// Calendar handles event and labor contract endpoints
type Calendar struct {
	svc *calendar.Service
}

// NewCalendar creates a new calendar handler
func NewCalendar(svc *calendar.Service) *Calendar {
	return &Calendar{svc: svc}
}

func eventInput(req *dto.EventRequest) calendar.EventInput {
	return calendar.EventInput{
		Title:          req.Title,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		IsAllDay:       req.IsAllDay,
		Color:          req.Color,
		Location:       req.Location,
		Link:           req.Link,
		ParticipantIDs: req.ParticipantIDs,
		IsWorkSchedule: req.IsWorkSchedule,
		EmployeeID:     req.EmployeeID,
		HourlyWage:     req.HourlyWage,
	}
}

// CreateEvent adds an event to the channel calendar
func (h *Calendar) CreateEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	event, err := h.svc.Create(c.Request.Context(), channelID, userID, eventInput(&req))
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// UpdateEvent edits an event
func (h *Calendar) UpdateEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	event, err := h.svc.Update(c.Request.Context(), c.Param("eventId"), userID, eventInput(&req))
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// DeleteEvent removes an event
func (h *Calendar) DeleteEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), c.Param("eventId"), userID); err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ListMonth returns the channel's events for a month
func (h *Calendar) ListMonth(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	year, month, ok := yearMonthQuery(c)
	if !ok {
		return
	}
	events, err := h.svc.ListMonth(c.Request.Context(), channelID, userID, year, month)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// StaffSchedule returns the virtual standard schedule derived from
// contracts.
func (h *Calendar) StaffSchedule(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	year, month, ok := yearMonthQuery(c)
	if !ok {
		return
	}
	events, err := h.svc.StaffSchedule(c.Request.Context(), channelID, userID, year, month)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// CreateContract registers a labor contract
func (h *Calendar) CreateContract(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	var req dto.ContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	contract, err := h.svc.CreateContract(c.Request.Context(), channelID, userID, &database.LaborContract{
		EmployeeName:      req.EmployeeName,
		EmployeeType:      req.EmployeeType,
		WageType:          req.WageType,
		HourlyWage:        req.HourlyWage,
		MonthlyWage:       req.MonthlyWage,
		DailyWorkHours:    req.DailyWorkHours,
		WorkDays:          req.WorkDays,
		ContractStartDate: req.ContractStartDate,
		ContractEndDate:   req.ContractEndDate,
		UserID:            req.UserID,
	})
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}

// ListContracts returns the channel's labor contracts
func (h *Calendar) ListContracts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	contracts, err := h.svc.ListContracts(c.Request.Context(), channelID, userID)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/storecrew/storecrew/internal/common/dto"
	"github.com/storecrew/storecrew/internal/common/errorx"
	"github.com/storecrew/storecrew/internal/core/attendance"
)

// Attendance handles the clock-in/out endpoints
type Attendance struct {
	svc *attendance.Service
}

// NewAttendance creates a new attendance handler
func NewAttendance(svc *attendance.Service) *Attendance {
	return &Attendance{svc: svc}
}

// Status returns the caller's current attendance state
func (h *Attendance) Status(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	status, err := h.svc.Status(c.Request.Context(), channelID, userID)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// ClockIn records the start of a shift after proof verification
func (h *Attendance) ClockIn(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	var req dto.ClockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	log, err := h.svc.ClockIn(c.Request.Context(), channelID, userID, attendance.Proof{
		Lat:       req.Lat,
		Lng:       req.Lng,
		SSID:      req.SSID,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusCreated, log)
}

// ClockOut records the end of a shift
func (h *Attendance) ClockOut(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	log, err := h.svc.ClockOut(c.Request.Context(), channelID, userID)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusCreated, log)
}

// Logs returns the caller's recent attendance rows
func (h *Attendance) Logs(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	logs, err := h.svc.RecentLogs(c.Request.Context(), channelID, userID, limit)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

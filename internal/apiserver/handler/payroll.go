package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storecrew/storecrew/internal/common/dto"
	"github.com/storecrew/storecrew/internal/common/errorx"
	"github.com/storecrew/storecrew/internal/core/payroll"
)

// Payroll handles the monthly payroll endpoints
type Payroll struct {
	svc *payroll.Service
}

// NewPayroll creates a new payroll handler
func NewPayroll(svc *payroll.Service) *Payroll {
	return &Payroll{svc: svc}
}

// Compute returns the channel's payroll summary for a month
func (h *Payroll) Compute(c *gin.Context) {
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
	summary, err := h.svc.Compute(c.Request.Context(), channelID, userID, year, month)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// UpdateWageOverride sets the override wage on selected schedule events
func (h *Payroll) UpdateWageOverride(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.WageOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	if err := h.svc.UpdateWageOverride(c.Request.Context(), userID, req.EventIDs, req.Wage); err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storecrew/storecrew/internal/common/dto"
	"github.com/storecrew/storecrew/internal/common/errorx"
	"github.com/storecrew/storecrew/internal/core/handover"
)

// Handover handles the shared journal endpoints
type Handover struct {
	svc *handover.Service
}

// NewHandover creates a new handover handler
func NewHandover(svc *handover.Service) *Handover {
	return &Handover{svc: svc}
}

// Append writes a journal entry
func (h *Handover) Append(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	var req dto.AppendHandoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	entry, err := h.svc.Append(c.Request.Context(), channelID, userID, req.Category, req.Content)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// List returns the channel's journal grouped by day
func (h *Handover) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	groups, err := h.svc.List(c.Request.Context(), channelID, userID)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// Update edits a journal entry
func (h *Handover) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateHandoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	entry, err := h.svc.Update(c.Request.Context(), c.Param("entryId"), userID, req.Content)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Delete removes a journal entry
func (h *Handover) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), c.Param("entryId"), userID); err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

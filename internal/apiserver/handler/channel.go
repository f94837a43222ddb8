package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storecrew/storecrew/internal/common/dto"
	"github.com/storecrew/storecrew/internal/common/errorx"
	"github.com/storecrew/storecrew/internal/core/channel"
	"github.com/storecrew/storecrew/internal/geocode"
)

// Channel handles channel lifecycle, membership and invite endpoints
type Channel struct {
	svc      *channel.Service
	geocoder *geocode.Client
}

// NewChannel creates a new channel handler
func NewChannel(svc *channel.Service, geocoder *geocode.Client) *Channel {
	return &Channel{svc: svc, geocoder: geocoder}
}

// Create handles channel creation
func (h *Channel) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	created, err := h.svc.Create(c.Request.Context(), userID, channel.CreateInput{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		WifiSSID:  req.WifiSSID,
		AuthMode:  req.AuthMode,
	})
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// List returns the caller's channels with their role in each
func (h *Channel) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channels, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, channels)
}

// Get returns one channel
func (h *Channel) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	found, err := h.svc.Get(c.Request.Context(), channelID, userID)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

// Update handles channel settings changes
func (h *Channel) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	var req dto.UpdateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), channelID, userID, channel.UpdateInput{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		WifiSSID:  req.WifiSSID,
		AuthMode:  req.AuthMode,
		Tier:      req.Tier,
	})
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes a channel
func (h *Channel) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), channelID, userID); err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Members lists the channel roster
func (h *Channel) Members(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	members, err := h.svc.Members(c.Request.Context(), channelID, userID)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// UpdateMemberRole changes a member's role
func (h *Channel) UpdateMemberRole(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	if err := h.svc.UpdateMemberRole(c.Request.Context(), channelID, userID, c.Param("userId"), req.Role); err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// Kick removes a member from the channel
func (h *Channel) Kick(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	if err := h.svc.Kick(c.Request.Context(), channelID, userID, c.Param("userId")); err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// Transfer hands channel ownership to another member
func (h *Channel) Transfer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	if err := h.svc.Transfer(c.Request.Context(), channelID, userID, req.TargetUserID); err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "transferred"})
}

// Leave removes the caller's own membership
func (h *Channel) Leave(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	if err := h.svc.Leave(c.Request.Context(), channelID, userID); err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "left"})
}

// GenerateInvite mints a time-limited invite code
func (h *Channel) GenerateInvite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	var req dto.GenerateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	invite, err := h.svc.GenerateInvite(c.Request.Context(), channelID, userID,
		time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusCreated, invite)
}

// ListInvites returns the channel's unexpired invite codes
func (h *Channel) ListInvites(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	invites, err := h.svc.ListInvites(c.Request.Context(), channelID, userID)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, invites)
}

// RedeemInvite joins the caller to a channel by invite code
func (h *Channel) RedeemInvite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.RedeemInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	joined, err := h.svc.RedeemInvite(c.Request.Context(), req.Code, userID)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, joined)
}

// SearchAddress resolves a street address to coordinates
func (h *Channel) SearchAddress(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	results, err := h.geocoder.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

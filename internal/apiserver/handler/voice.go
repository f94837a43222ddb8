package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storecrew/storecrew/internal/common/dto"
	"github.com/storecrew/storecrew/internal/common/errorx"
	"github.com/storecrew/storecrew/internal/core/voice"
	"github.com/storecrew/storecrew/internal/storagex"
	"github.com/storecrew/storecrew/internal/transcribe"
)

// Voice handles voice memo endpoints, including upload transcription
type Voice struct {
	svc         *voice.Service
	transcriber *transcribe.Client
	urls        *storagex.URLBuilder
	logger      *zap.Logger
}

// NewVoice creates a new voice memo handler
func NewVoice(svc *voice.Service, transcriber *transcribe.Client, urls *storagex.URLBuilder, logger *zap.Logger) *Voice {
	return &Voice{svc: svc, transcriber: transcriber, urls: urls, logger: logger.Named("handler.voice")}
}

// Transcribe converts an uploaded recording to text without persisting a
// memo. Clients confirm or edit the transcript before saving.
func (h *Voice) Transcribe(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage("audio file is required"))
		return
	}
	defer func() { _ = file.Close() }()

	text, err := h.transcriber.Transcribe(c.Request.Context(), header.Filename, file, c.PostForm("prompt"))
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// Create stores a memo with tier-driven retention
func (h *Voice) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	var req dto.CreateMemoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	var audioURL *string
	if req.AudioPath != nil && *req.AudioPath != "" {
		url := h.urls.PublicURL(*req.AudioPath)
		audioURL = &url
	}
	isPrivate := true
	if req.IsPrivate != nil {
		isPrivate = *req.IsPrivate
	}
	memo, err := h.svc.Create(c.Request.Context(), channelID, userID, req.Content, audioURL, isPrivate)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusCreated, memo)
}

// List returns the caller's private memos plus the channel's shared ones
func (h *Voice) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	memos, err := h.svc.List(c.Request.Context(), channelID, userID)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, memos)
}

// Update edits a memo's transcript
func (h *Voice) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateMemoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	memo, err := h.svc.UpdateContent(c.Request.Context(), c.Param("memoId"), userID, req.Content)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, memo)
}

// Share toggles channel-wide visibility of a memo
func (h *Voice) Share(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.ShareMemoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	memo, err := h.svc.SetShared(c.Request.Context(), c.Param("memoId"), userID, req.Shared)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, memo)
}

// Delete removes a memo
func (h *Voice) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), c.Param("memoId"), userID); err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

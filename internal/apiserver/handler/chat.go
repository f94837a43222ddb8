package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storecrew/storecrew/internal/common/dto"
	"github.com/storecrew/storecrew/internal/common/errorx"
	"github.com/storecrew/storecrew/internal/core/chat"
)

// Chat handles category, topic, message and read-position endpoints
type Chat struct {
	svc *chat.Service
}

// NewChat creates a new chat handler
func NewChat(svc *chat.Service) *Chat {
	return &Chat{svc: svc}
}

// ListCategories returns the channel's categories
func (h *Chat) ListCategories(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	categories, err := h.svc.ListCategories(c.Request.Context(), channelID, userID)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// CreateCategory adds a category
func (h *Chat) CreateCategory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	category, err := h.svc.CreateCategory(c.Request.Context(), channelID, userID, req.Name)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// RenameCategory renames a category and rebinds its topics
func (h *Chat) RenameCategory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.RenameCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	if err := h.svc.RenameCategory(c.Request.Context(), c.Param("categoryId"), userID, req.Name); err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "renamed"})
}

// DeleteCategory removes a category
func (h *Chat) DeleteCategory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteCategory(c.Request.Context(), c.Param("categoryId"), userID); err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// CreateTopic creates a topic with the caller subscribed as its owner
func (h *Chat) CreateTopic(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	var req dto.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	topic, err := h.svc.CreateTopic(c.Request.Context(), channelID, userID, req.Name, req.Category)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusCreated, topic)
}

// ListTopics returns the caller's subscribed topics with unread counts
func (h *Chat) ListTopics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	topics, err := h.svc.ListTopics(c.Request.Context(), channelID, userID)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, topics)
}

// ListAllTopics returns every topic of the channel
func (h *Chat) ListAllTopics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	topics, err := h.svc.ListAllTopics(c.Request.Context(), channelID, userID)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, topics)
}

// UpdateTopic renames a topic or toggles its priority flag
func (h *Chat) UpdateTopic(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	topic, err := h.svc.UpdateTopic(c.Request.Context(), c.Param("topicId"), userID, req.Name, req.IsPriority)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, topic)
}

// DeleteTopic removes a topic and everything under it
func (h *Chat) DeleteTopic(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteTopic(c.Request.Context(), c.Param("topicId"), userID); err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ReorderTopic moves a topic to a new position
func (h *Chat) ReorderTopic(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.ReorderTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	if err := h.svc.Reorder(c.Request.Context(), c.Param("topicId"), userID, req.NewIndex, req.NewCategory); err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reordered"})
}

// TopicMembers lists a topic's subscriptions
func (h *Chat) TopicMembers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	members, err := h.svc.TopicMembers(c.Request.Context(), c.Param("topicId"), userID)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// AddTopicMember subscribes a channel member to the topic
func (h *Chat) AddTopicMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.TopicMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	if err := h.svc.AddTopicMember(c.Request.Context(), c.Param("topicId"), userID, req.UserID); err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "added"})
}

// RemoveTopicMember unsubscribes a user from the topic
func (h *Chat) RemoveTopicMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.svc.RemoveTopicMember(c.Request.Context(), c.Param("topicId"), userID, c.Param("userId")); err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// AppendMessage writes a message to the topic log
func (h *Chat) AppendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.AppendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	message, err := h.svc.AppendMessage(c.Request.Context(), c.Param("topicId"), userID,
		req.Content, req.ImageURL, req.ClientID)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

// ListMessages returns a page of the topic log, most recent first. The
// optional ?before cursor is an RFC 3339 timestamp.
func (h *Chat) ListMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			errorx.Send(c, errorx.ErrValidation.WithMessage("invalid before cursor"))
			return
		}
		before = &at
	}
	messages, err := h.svc.ListMessages(c.Request.Context(), c.Param("topicId"), userID, limit, before)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// SearchMessages runs a substring search over the channel's messages
func (h *Chat) SearchMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	channelID, ok := channelParam(c)
	if !ok {
		return
	}
	messages, err := h.svc.SearchMessages(c.Request.Context(), channelID, userID, c.Query("query"))
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// MarkRead advances the caller's read position on the topic
func (h *Chat) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), c.Param("topicId"), userID); err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

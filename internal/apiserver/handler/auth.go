package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/storecrew/storecrew/internal/apiserver/database"
	"github.com/storecrew/storecrew/internal/apiserver/middleware"
	"github.com/storecrew/storecrew/internal/auth/jwt"
	"github.com/storecrew/storecrew/internal/common/dto"
	"github.com/storecrew/storecrew/internal/common/errorx"
)

// Auth handles signup, login and the current-user endpoint
type Auth struct {
	db         database.Database
	jwtService *jwt.Service
	logger     *zap.Logger
}

// NewAuth creates a new authentication handler
func NewAuth(db database.Database, jwtService *jwt.Service, logger *zap.Logger) *Auth {
	return &Auth{db: db, jwtService: jwtService, logger: logger.Named("handler.auth")}
}

// Signup registers a new account and returns a session token
func (h *Auth) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := h.db.GetUserByEmail(c.Request.Context(), email); err == nil {
		errorx.Send(c, errorx.ErrConflict.WithMessage("email already registered"))
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		errorx.Send(c, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		errorx.Send(c, err)
		return
	}

	user := &database.User{
		Email:       email,
		Password:    string(hashed),
		DisplayName: strings.TrimSpace(req.DisplayName),
	}
	if err := h.db.CreateUser(c.Request.Context(), user); err != nil {
		errorx.Send(c, err)
		return
	}
	h.logger.Info("user registered", zap.String("user_id", user.ID))

	token, err := h.jwtService.GenerateToken(user.ID, user.Email, user.DisplayName)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.TokenResponse{
		Token: token,
		User:  userInfo(user),
	})
}

// Login authenticates by email and password
func (h *Auth) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}

	user, err := h.db.GetUserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		errorx.Send(c, errorx.ErrAuthRequired.WithMessage("invalid email or password"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		errorx.Send(c, errorx.ErrAuthRequired.WithMessage("invalid email or password"))
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Email, user.DisplayName)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TokenResponse{
		Token: token,
		User:  userInfo(user),
	})
}

// Me returns the authenticated user
func (h *Auth) Me(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		errorx.Send(c, errorx.ErrAuthRequired)
		return
	}
	user, err := h.db.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, userInfo(user))
}

// UpdateMe changes the caller's display name
func (h *Auth) UpdateMe(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		errorx.Send(c, errorx.ErrAuthRequired)
		return
	}
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage(err.Error()))
		return
	}
	user, err := h.db.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		errorx.Send(c, err)
		return
	}
	user.DisplayName = strings.TrimSpace(req.DisplayName)
	if user.DisplayName == "" {
		errorx.Send(c, errorx.ErrValidation.WithMessage("display name is required"))
		return
	}
	if err := h.db.UpdateUser(c.Request.Context(), user); err != nil {
		errorx.Send(c, err)
		return
	}
	c.JSON(http.StatusOK, userInfo(user))
}

func userInfo(user *database.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}
}

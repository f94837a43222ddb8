package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storecrew/storecrew/internal/apiserver/database"
	"github.com/storecrew/storecrew/internal/apiserver/middleware"
	"github.com/storecrew/storecrew/internal/auth/jwt"
	"github.com/storecrew/storecrew/internal/common/config"
	"github.com/storecrew/storecrew/internal/common/dto"
)

func newAuthRouter(t *testing.T) (*gin.Engine, database.Database) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewSQLite(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	jwtService, err := jwt.NewService(jwt.Config{
		SecretKey: "0123456789abcdef0123456789abcdef",
		Duration:  time.Hour,
	})
	require.NoError(t, err)

	h := NewAuth(db, jwtService, zap.NewNop())
	r := gin.New()
	r.POST("/api/auth/signup", h.Signup)
	r.POST("/api/auth/login", h.Login)
	r.GET("/api/auth/me", middleware.JWTAuthMiddleware(jwtService), h.Me)
	r.PUT("/api/auth/me", middleware.JWTAuthMiddleware(jwtService), h.UpdateMe)
	return r, db
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSignupLoginMe(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := doJSON(r, http.MethodPost, "/api/auth/signup", "", dto.SignupRequest{
		Email:       "owner@example.com",
		Password:    "supersecret",
		DisplayName: "Owner",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var signup dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signup))
	assert.NotEmpty(t, signup.Token)
	assert.Equal(t, "owner@example.com", signup.User.Email)

	w = doJSON(r, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{
		Email:    "owner@example.com",
		Password: "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var login dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = doJSON(r, http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me dto.UserInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, signup.User.ID, me.ID)
	assert.Equal(t, "Owner", me.DisplayName)
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	r, _ := newAuthRouter(t)

	req := dto.SignupRequest{Email: "dup@example.com", Password: "supersecret", DisplayName: "Dup"}
	w := doJSON(r, http.MethodPost, "/api/auth/signup", "", req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/api/auth/signup", "", req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := doJSON(r, http.MethodPost, "/api/auth/signup", "", dto.SignupRequest{
		Email:       "owner@example.com",
		Password:    "supersecret",
		DisplayName: "Owner",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{
		Email:    "owner@example.com",
		Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeRequiresToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := doJSON(r, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := doJSON(r, http.MethodPost, "/api/auth/signup", "", dto.SignupRequest{
		Email:       "owner@example.com",
		Password:    "supersecret",
		DisplayName: "Owner",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var signup dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signup))

	w = doJSON(r, http.MethodPut, "/api/auth/me", signup.Token, dto.UpdateProfileRequest{DisplayName: "Boss"})
	require.Equal(t, http.StatusOK, w.Code)

	var me dto.UserInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "Boss", me.DisplayName)
}

package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewServiceValidation(t *testing.T) {
	_, err := NewService(Config{SecretKey: "", Duration: time.Hour})
	assert.ErrorIs(t, err, ErrEmptySecretKey)

	_, err = NewService(Config{SecretKey: "short", Duration: time.Hour})
	assert.ErrorIs(t, err, ErrWeakSecretKey)

	_, err = NewService(Config{SecretKey: testSecret, Duration: 0})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc, err := NewService(Config{SecretKey: testSecret, Duration: time.Hour})
	require.NoError(t, err)

	token, err := svc.GenerateToken("u-1", "owner@store.test", "Owner")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "owner@store.test", claims.Email)
	assert.Equal(t, "Owner", claims.DisplayName)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, err := NewService(Config{SecretKey: testSecret, Duration: time.Hour})
	require.NoError(t, err)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	svc, err := NewService(Config{SecretKey: testSecret, Duration: time.Millisecond})
	require.NoError(t, err)

	token, err := svc.GenerateToken("u-1", "owner@store.test", "Owner")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

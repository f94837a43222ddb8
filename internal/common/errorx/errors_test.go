package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDetailDoesNotMutateSentinel(t *testing.T) {
	err := ErrVerificationFailed.WithDetail("reason", VerifyReasonDistance).
		WithDetail("distance_m", 13000.0)

	assert.Empty(t, ErrVerificationFailed.Details)
	assert.Equal(t, VerifyReasonDistance, err.Details["reason"])
	assert.Equal(t, 13000.0, err.Details["distance_m"])
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("redeem: %w", ErrConflict.WithMessage("already joined"))
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestVerificationFailedReason(t *testing.T) {
	err := VerificationFailed(VerifyReasonSSIDMismatch)
	assert.Equal(t, VerifyReasonSSIDMismatch, err.Details["reason"])
	assert.True(t, errors.Is(err, ErrVerificationFailed))
}

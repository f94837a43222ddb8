package errorx

import (
	"fmt"
	"net/http"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryValidation     ErrorCategory = "validation"
	CategoryAuthentication ErrorCategory = "authentication"
	CategoryAuthorization  ErrorCategory = "authorization"
	CategoryNotFound       ErrorCategory = "not_found"
	CategoryConflict       ErrorCategory = "conflict"
	CategoryVerification   ErrorCategory = "verification"
	CategoryTimeout        ErrorCategory = "timeout"
	CategoryTransport      ErrorCategory = "transport"
	CategoryInternal       ErrorCategory = "internal"
)

// APIError is a structured API error. The zero Details map is shared between
// callers, so WithDetail and WithMessage return a copy.
type APIError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Category   ErrorCategory  `json:"category"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Category, e.Message)
}

func (e *APIError) clone() *APIError {
	out := *e
	out.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		out.Details[k] = v
	}
	return &out
}

// WithDetail returns a copy of the error with an extra detail attached
func (e *APIError) WithDetail(key string, value any) *APIError {
	out := e.clone()
	out.Details[key] = value
	return out
}

// WithMessage returns a copy of the error with a replaced message
func (e *APIError) WithMessage(msg string) *APIError {
	out := e.clone()
	out.Message = msg
	return out
}

// Is makes errors.Is match on the error code, so wrapped and detailed
// copies still compare equal to the sentinel.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

var (
	// ErrAuthRequired: missing or invalid bearer token. The client is
	// expected to force logout and return to login.
	ErrAuthRequired = &APIError{
		Code:       "E2001",
		Message:    "authentication required",
		Category:   CategoryAuthentication,
		HTTPStatus: http.StatusUnauthorized,
	}

	// ErrForbidden: the authorization predicate denied the action.
	ErrForbidden = &APIError{
		Code:       "E3001",
		Message:    "access denied",
		Category:   CategoryAuthorization,
		HTTPStatus: http.StatusForbidden,
	}

	// ErrNotFound: row missing or expired.
	ErrNotFound = &APIError{
		Code:       "E4001",
		Message:    "resource not found",
		Category:   CategoryNotFound,
		HTTPStatus: http.StatusNotFound,
	}

	// ErrConflict: duplicate membership, already joined, etc.
	ErrConflict = &APIError{
		Code:       "E4091",
		Message:    "resource already exists",
		Category:   CategoryConflict,
		HTTPStatus: http.StatusConflict,
	}

	// ErrValidation: empty message, negative wage, malformed request.
	ErrValidation = &APIError{
		Code:       "E1001",
		Message:    "invalid input provided",
		Category:   CategoryValidation,
		HTTPStatus: http.StatusBadRequest,
	}

	// ErrVerificationFailed: attendance proof rejected. Carries a reason
	// detail and, for GPS, the measured distance.
	ErrVerificationFailed = &APIError{
		Code:       "E4221",
		Message:    "attendance verification failed",
		Category:   CategoryVerification,
		HTTPStatus: http.StatusUnprocessableEntity,
	}

	// ErrTimeout: operation exceeded its budget; retryable on user action.
	ErrTimeout = &APIError{
		Code:       "E5041",
		Message:    "operation timed out",
		Category:   CategoryTimeout,
		HTTPStatus: http.StatusGatewayTimeout,
	}

	// ErrTransport: network or socket failure talking to a dependency.
	ErrTransport = &APIError{
		Code:       "E5021",
		Message:    "upstream transport failure",
		Category:   CategoryTransport,
		HTTPStatus: http.StatusBadGateway,
	}

	// ErrServer: unexpected internal failure.
	ErrServer = &APIError{
		Code:       "E5001",
		Message:    "internal server error",
		Category:   CategoryInternal,
		HTTPStatus: http.StatusInternalServerError,
	}
)

// Verification failure reasons
const (
	VerifyReasonDistance     = "distance"
	VerifyReasonSSIDMismatch = "ssid_mismatch"
	VerifyReasonUnconfigured = "unconfigured"
)

// VerificationFailed builds an ErrVerificationFailed with a reason detail.
func VerificationFailed(reason string) *APIError {
	return ErrVerificationFailed.WithDetail("reason", reason)
}

package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bonesdao/onboarding/internal/domain"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeBadRequest       ErrorCode = "bad_request"
	ErrCodeNotFound         ErrorCode = "not_found"
	ErrCodeValidationFailed ErrorCode = "validation_failed"
	ErrCodeUnauthorized     ErrorCode = "unauthorized"
	ErrCodeForbidden        ErrorCode = "forbidden"
	ErrCodeConflict         ErrorCode = "conflict"
	ErrCodeRateLimited      ErrorCode = "rate_limited"

	// Server errors (5xx)
	ErrCodeInternalError ErrorCode = "internal_error"
	ErrCodeDatabaseError ErrorCode = "database_error"
)

// Conflict messages tell the review conflicts apart under the shared conflict code
const (
	MessageAlreadyPending    = "Submission already pending review"
	MessageAlreadyApproved   = "Submission already approved"
	MessageInvalidTransition = "Invalid status transition"
)

// APIError represents a structured API error that carries error code and details
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	jsonErr, _ := json.Marshal(e)
	return string(jsonErr)
}

// Error constructors for common error types
func NewBadRequestError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewNotFoundError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewValidationError(details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Message: "Validation failed",
		Details: strings.Join(details, ", "),
	}
}

func NewUnauthorizedError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewForbiddenError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeForbidden,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewConflictError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeConflict,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewRateLimitedError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeRateLimited,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewInternalError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeInternalError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewDatabaseError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeDatabaseError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

// FromError maps a domain error onto an HTTP status and envelope.
// Auth and persistence failures carry a generic message only.
func FromError(err error) (int, *APIError) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return statusOf(apiErr.Code), apiErr
	}

	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, NewValidationError(err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, NewUnauthorizedError("Invalid credentials")
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, NewUnauthorizedError("Token has expired")
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized, NewUnauthorizedError("Invalid token")
	case errors.Is(err, domain.ErrSubmissionNotFound):
		return http.StatusNotFound, NewNotFoundError("Submission not found")
	case errors.Is(err, domain.ErrAlreadyPending):
		return http.StatusConflict, NewConflictError(MessageAlreadyPending)
	case errors.Is(err, domain.ErrAlreadyApproved):
		return http.StatusConflict, NewConflictError(MessageAlreadyApproved)
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, NewConflictError(MessageInvalidTransition)
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, NewRateLimitedError("Too many requests")
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusInternalServerError, NewDatabaseError("Database error")
	}
	return http.StatusInternalServerError, NewInternalError("Internal server error")
}

func statusOf(code ErrorCode) int {
	switch code {
	case ErrCodeBadRequest, ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

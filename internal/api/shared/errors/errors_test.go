package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bonesdao/onboarding/internal/domain"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   ErrorCode
	}{
		{fmt.Errorf("%w: referrer is required", domain.ErrValidation), http.StatusBadRequest, ErrCodeValidationFailed},
		{domain.ErrInvalidAmount, http.StatusBadRequest, ErrCodeValidationFailed},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeUnauthorized},
		{fmt.Errorf("%w: exp", domain.ErrTokenExpired), http.StatusUnauthorized, ErrCodeUnauthorized},
		{domain.ErrTokenInvalid, http.StatusUnauthorized, ErrCodeUnauthorized},
		{domain.ErrSubmissionNotFound, http.StatusNotFound, ErrCodeNotFound},
		{domain.ErrAlreadyPending, http.StatusConflict, ErrCodeConflict},
		{domain.ErrAlreadyApproved, http.StatusConflict, ErrCodeConflict},
		{domain.ErrInvalidTransition, http.StatusConflict, ErrCodeConflict},
		{domain.ErrRateLimited, http.StatusTooManyRequests, ErrCodeRateLimited},
		{fmt.Errorf("%w: insert: connection reset", domain.ErrPersistence), http.StatusInternalServerError, ErrCodeDatabaseError},
		{fmt.Errorf("boom"), http.StatusInternalServerError, ErrCodeInternalError},
		{NewForbiddenError("nope"), http.StatusForbidden, ErrCodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, apiErr := FromError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}
}

func TestFromErrorHidesInternals(t *testing.T) {
	_, apiErr := FromError(fmt.Errorf("%w: insert: password=secret", domain.ErrPersistence))
	assert.Equal(t, "Database error", apiErr.Message)
	assert.Empty(t, apiErr.Details)

	_, apiErr = FromError(fmt.Errorf("%w: bcrypt mismatch", domain.ErrInvalidCredentials))
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.Empty(t, apiErr.Details)
}

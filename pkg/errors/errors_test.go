package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("pool closed")

	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"not found", NotFound("banner", "cart"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"invalid input", InvalidInput("bad callback"), "INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput},
		{"unauthorized", Unauthorized("bad secret"), "UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized},
		{"unavailable", Unavailable("queue closed"), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, ErrServiceUnavail},
		{"internal", Internal(cause), "INTERNAL_ERROR", http.StatusInternalServerError, cause},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestNotFound_Message(t *testing.T) {
	err := NotFound("banner", "payment")
	assert.Equal(t, "banner with id payment not found", err.Message)
	assert.Equal(t, "NOT_FOUND: banner with id payment not found: resource not found", err.Error())
}

func TestAppError_ErrorWithoutCause(t *testing.T) {
	err := &AppError{Code: "X", Message: "y"}
	assert.Equal(t, "X: y", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestAppError_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("resolve cart: %w", NotFound("banner", "cart"))

	var appErr *AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{InvalidInput("x"), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", Unavailable("x")), http.StatusServiceUnavailable},
		{ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("get user: %w", ErrNotFound), http.StatusNotFound},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrServiceUnavail, http.StatusServiceUnavailable},
		{ErrInternal, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "%v", tt.err)
	}
}

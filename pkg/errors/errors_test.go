package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodeMapping(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
		kind   string
	}{
		{NewValidation("bad input", nil), http.StatusBadRequest, "validation_error"},
		{NewNotFound("notification", nil), http.StatusNotFound, "not_found"},
		{NewUnauthorized("missing token", nil), http.StatusUnauthorized, "unauthorized"},
		{NewForbidden("wrong subject", nil), http.StatusForbidden, "forbidden"},
		{NewTransient("store unavailable", nil), http.StatusInternalServerError, "transient_store_error"},
		{NewInternal(errors.New("boom")), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode())
			assert.Equal(t, tt.kind, tt.err.Kind())
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "notification not found", NewNotFound("notification", nil).Error())
}

func TestClassificationThroughWrapping(t *testing.T) {
	err := fmt.Errorf("failed to load: %w", NewNotFound("user", nil))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))

	err = fmt.Errorf("store call: %w", NewTransient("timeout", errors.New("deadline exceeded")))
	assert.True(t, IsTransient(err))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewTransient("store unavailable", cause)
	assert.ErrorIs(t, err, cause)
}

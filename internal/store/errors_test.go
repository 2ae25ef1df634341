package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/munazzamapp/munazzam-server/internal/store"
)

func TestError_Error(t *testing.T) {
	err := &store.Error{Code: http.StatusNotFound, Message: "not found"}
	assert.Equal(t, "not found", err.Error())

	cause := errors.New("disk full")
	wrapped := &store.Error{Code: http.StatusInternalServerError, Message: "insert tag", Err: cause}
	assert.Equal(t, "insert tag: disk full", wrapped.Error())
	assert.Equal(t, cause, wrapped.Unwrap())
}

func TestError_WithMessageKeepsIdentity(t *testing.T) {
	err := store.ErrAlreadyExists.WithMessage(`tag "VIP" already exists`)

	assert.Equal(t, http.StatusConflict, err.HTTPCode())
	assert.Equal(t, `tag "VIP" already exists`, err.Error())
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
	assert.NotErrorIs(t, err, store.ErrNotFound)

	// Survives fmt wrapping.
	assert.ErrorIs(t, fmt.Errorf("create: %w", err), store.ErrAlreadyExists)

	// The sentinel itself is untouched.
	assert.Equal(t, "resource already exists", store.ErrAlreadyExists.Message)
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      *store.Error
		wantCode int
	}{
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"already exists", store.ErrAlreadyExists, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.HTTPCode())
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

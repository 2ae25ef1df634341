package errors_test

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	domainerrors "github.com/munazzamapp/munazzam-server/internal/errors"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code domainerrors.Code
		want int
	}{
		{domainerrors.CodeNotFound, http.StatusNotFound},
		{domainerrors.CodeAlreadyExists, http.StatusConflict},
		{domainerrors.CodeValidation, http.StatusBadRequest},
		{domainerrors.CodeUnsupportedFormat, http.StatusUnsupportedMediaType},
		{domainerrors.CodeRateLimited, http.StatusTooManyRequests},
		{domainerrors.CodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := domainerrors.AlreadyExistsf("tag %q already exists", "VIP")

	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
	assert.ErrorIs(t, fmt.Errorf("create tag: %w", err), domainerrors.ErrAlreadyExists)
	assert.NotErrorIs(t, err, domainerrors.ErrNotFound)
	assert.Equal(t, `tag "VIP" already exists`, err.Error())
}

func TestWrap(t *testing.T) {
	err := domainerrors.Wrap(io.ErrUnexpectedEOF, domainerrors.CodeValidation, "read spreadsheet")

	assert.Equal(t, "read spreadsheet: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
}

func TestWithDetails(t *testing.T) {
	details := map[string]string{"name": "required"}
	err := domainerrors.ErrValidation.WithDetails(details)

	assert.Equal(t, details, err.Details)
	assert.Nil(t, domainerrors.ErrValidation.Details)
}

package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/munazzamapp/munazzam-server/internal/errors"
	"github.com/munazzamapp/munazzam-server/internal/validation"
)

type templateRequest struct {
	Name string   `json:"name" validate:"required,notblank,max=100"`
	Body string   `json:"body" validate:"required,notblank"`
	Tags []string `json:"tags,omitempty" validate:"omitempty,dive,notblank,max=50"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(templateRequest{Name: "ترحيب", Body: "مرحبا [NAME]"})
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       templateRequest
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing name",
			req:       templateRequest{Body: "x"},
			wantField: "name",
			wantMsg:   "name is required",
		},
		{
			name:      "blank body",
			req:       templateRequest{Name: "n", Body: "   "},
			wantField: "body",
			wantMsg:   "body is required",
		},
		{
			name:      "name too long",
			req:       templateRequest{Name: strings.Repeat("ن", 101), Body: "x"},
			wantField: "name",
			wantMsg:   "name must not exceed 100 characters",
		},
		{
			name:      "blank tag",
			req:       templateRequest{Name: "n", Body: "x", Tags: []string{"ok", " "}},
			wantField: "tags[1]",
			wantMsg:   "tags[1] is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.wantMsg, domainErr.Message)

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.wantField)
		})
	}
}

func TestValidator_MaxCountsRunes(t *testing.T) {
	v := validation.New()

	// 100 Arabic letters are 200 bytes but within a 100 character limit.
	err := v.Validate(templateRequest{Name: strings.Repeat("ن", 100), Body: "x"})
	assert.NoError(t, err)
}

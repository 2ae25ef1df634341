package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/munazzamapp/munazzam-server/internal/errors"
	"github.com/munazzamapp/munazzam-server/internal/logger"
	"github.com/munazzamapp/munazzam-server/internal/store"
)

func TestTemplateService(t *testing.T) {
	s := newTestStore(t)
	templates := NewTemplateService(s, logger.Discard())
	ctx := context.Background()

	created, err := templates.CreateTemplate(ctx, TemplateRequest{Name: "Welcome", Body: "Hi [NAME]"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome", created.Name)

	_, err = templates.CreateTemplate(ctx, TemplateRequest{Name: "Welcome", Body: "dup"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = templates.CreateTemplate(ctx, TemplateRequest{Name: "No body"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	list, err := templates.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	updated, err := templates.UpdateTemplate(ctx, created.ID, TemplateRequest{Name: "Welcome v2", Body: "Hello [NAME]"})
	require.NoError(t, err)
	assert.Equal(t, "Hello [NAME]", updated.Body)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	_, err = templates.UpdateTemplate(ctx, "missing", TemplateRequest{Name: "x", Body: "y"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, templates.DeleteTemplate(ctx, created.ID))
	_, err = templates.GetTemplate(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

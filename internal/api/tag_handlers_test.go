package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTag(t *testing.T, ts *testServer, name string) TagResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/tags", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decodeEnvelope[TagResponse](t, resp).Data
}

func TestCreateTag(t *testing.T) {
	ts := newTestServer(t)

	tag := createTag(t, ts, "  عملاء  ")
	assert.NotEmpty(t, tag.ID)
	assert.Equal(t, "عملاء", tag.Name)

	t.Run("duplicate name conflicts", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/tags", map[string]any{"name": "عملاء"})
		require.Equal(t, http.StatusConflict, resp.Code)

		env := decodeEnvelope[any](t, resp)
		assert.Equal(t, "ALREADY_EXISTS", env.Code)
		assert.Contains(t, env.Error, "عملاء")
	})

	t.Run("blank name is a validation error", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/tags", map[string]any{"name": "   "})
		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION", decodeEnvelope[any](t, resp).Code)
	})

	t.Run("case differs is a new tag", func(t *testing.T) {
		createTag(t, ts, "VIP")
		createTag(t, ts, "vip")
	})
}

func TestListTags_ContactCounts(t *testing.T) {
	ts := newTestServer(t)

	for _, c := range []map[string]any{
		{"name": "A", "phone": "111", "tags": []string{"group-a"}},
		{"name": "B", "phone": "222", "tags": []string{"group-a", "group-b"}},
	} {
		resp := ts.api.Post("/api/v1/contacts", c)
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	}
	createTag(t, ts, "unused")

	resp := ts.api.Get("/api/v1/tags")
	require.Equal(t, http.StatusOK, resp.Code)

	counts := map[string]int{}
	for _, tag := range decodeEnvelope[[]TagResponse](t, resp).Data {
		counts[tag.Name] = tag.ContactCount
	}
	assert.Equal(t, map[string]int{"group-a": 2, "group-b": 1, "unused": 0}, counts)
}

func TestRenameTag(t *testing.T) {
	ts := newTestServer(t)

	tag := createTag(t, ts, "old")
	createTag(t, ts, "taken")

	resp := ts.api.Patch("/api/v1/tags/"+tag.ID, map[string]any{"name": "new"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "new", decodeEnvelope[TagResponse](t, resp).Data.Name)

	resp = ts.api.Patch("/api/v1/tags/"+tag.ID, map[string]any{"name": "taken"})
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = ts.api.Patch("/api/v1/tags/tag-missing", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteTag_DetachesContacts(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Post("/api/v1/contacts", map[string]any{"name": "A", "phone": "111", "tags": []string{"x", "y"}})
	require.Equal(t, http.StatusCreated, resp.Code)
	contact := decodeEnvelope[ContactResponse](t, resp).Data

	var tagID string
	for _, tag := range decodeEnvelope[[]TagResponse](t, ts.api.Get("/api/v1/tags")).Data {
		if tag.Name == "x" {
			tagID = tag.ID
		}
	}
	require.NotEmpty(t, tagID)

	resp = ts.api.Delete("/api/v1/tags/" + tagID)
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/contacts/" + contact.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"y"}, decodeEnvelope[ContactResponse](t, resp).Data.Tags)

	resp = ts.api.Delete("/api/v1/tags/" + tagID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createContact(t *testing.T, ts *testServer, name, phone string, tags ...string) ContactResponse {
	t.Helper()
	body := map[string]any{"name": name, "phone": phone}
	if len(tags) > 0 {
		body["tags"] = tags
	}
	resp := ts.api.Post("/api/v1/contacts", body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decodeEnvelope[ContactResponse](t, resp).Data
}

func TestCreateAndGetContact(t *testing.T) {
	ts := newTestServer(t)

	c := createContact(t, ts, "تاج السر", "0912345678", "customer")
	assert.Equal(t, []string{"customer"}, c.Tags)

	resp := ts.api.Get("/api/v1/contacts/" + c.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	got := decodeEnvelope[ContactResponse](t, resp).Data
	assert.Equal(t, "تاج السر", got.Name)
	assert.Equal(t, "0912345678", got.Phone)
}

func TestCreateContact_Errors(t *testing.T) {
	ts := newTestServer(t)
	createContact(t, ts, "A", "111")

	tests := []struct {
		name string
		body map[string]any
		want int
		code string
	}{
		{"missing phone", map[string]any{"name": "B"}, http.StatusBadRequest, "VALIDATION"},
		{"missing name", map[string]any{"phone": "222"}, http.StatusBadRequest, "VALIDATION"},
		{"duplicate phone", map[string]any{"name": "B", "phone": "111"}, http.StatusConflict, "ALREADY_EXISTS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/contacts", tt.body)
			require.Equal(t, tt.want, resp.Code, resp.Body.String())
			assert.Equal(t, tt.code, decodeEnvelope[any](t, resp).Code)
		})
	}

	resp := ts.api.Get("/api/v1/contacts")
	assert.Len(t, decodeEnvelope[[]ContactResponse](t, resp).Data, 1)
}

func TestListContacts_TagFilter(t *testing.T) {
	ts := newTestServer(t)

	createContact(t, ts, "A", "111", "group-a")
	createContact(t, ts, "B", "222", "group-b")
	createContact(t, ts, "AB", "333", "group-a", "group-b")

	resp := ts.api.Get("/api/v1/contacts")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeEnvelope[[]ContactResponse](t, resp).Data, 3)

	resp = ts.api.Get("/api/v1/contacts?tags=group-a,group-b")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	list := decodeEnvelope[[]ContactResponse](t, resp).Data
	require.Len(t, list, 1)
	assert.Equal(t, "333", list[0].Phone)
}

func TestSetContactTags(t *testing.T) {
	ts := newTestServer(t)
	c := createContact(t, ts, "A", "111", "old")

	resp := ts.api.Put("/api/v1/contacts/"+c.ID+"/tags", map[string]any{"tags": []string{"new", "vip"}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.ElementsMatch(t, []string{"new", "vip"}, decodeEnvelope[ContactResponse](t, resp).Data.Tags)

	resp = ts.api.Put("/api/v1/contacts/contact-missing/tags", map[string]any{"tags": []string{"x"}})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCountAudience(t *testing.T) {
	ts := newTestServer(t)
	createContact(t, ts, "A", "111", "customer")

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"existing tag", map[string]any{"tags": []string{"customer"}}, 1},
		{"unknown tag", map[string]any{"tags": []string{"nonexistent"}}, 0},
		{"no tags counts everyone", map[string]any{}, 1},
		{"blank tag", map[string]any{"tags": []string{""}}, 0},
		{"whitespace tag", map[string]any{"tags": []string{"  "}}, 0},
		{"unknown exclusion campaign", map[string]any{"tags": []string{"customer"}, "exclude_campaign_name": "nope"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/contacts/count", tt.body)
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
			assert.Equal(t, tt.want, decodeEnvelope[CountResponse](t, resp).Data.Count)
		})
	}
}

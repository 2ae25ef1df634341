package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/munazzamapp/munazzam-server/internal/domain"
	"github.com/munazzamapp/munazzam-server/internal/service"
)

func (s *Server) registerContactRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listContacts",
		Method:      http.MethodGet,
		Path:        "/api/v1/contacts",
		Summary:     "List contacts",
		Description: "Returns contacts newest first. With tags, returns only contacts carrying every listed tag",
		Tags:        []string{"Contacts"},
	}, s.handleListContacts)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createContact",
		Method:        http.MethodPost,
		Path:          "/api/v1/contacts",
		Summary:       "Create contact",
		Description:   "Adds a contact. Unknown tag names are created",
		Tags:          []string{"Contacts"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateContact)

	huma.Register(s.api, huma.Operation{
		OperationID: "getContact",
		Method:      http.MethodGet,
		Path:        "/api/v1/contacts/{id}",
		Summary:     "Get contact",
		Tags:        []string{"Contacts"},
	}, s.handleGetContact)

	huma.Register(s.api, huma.Operation{
		OperationID: "setContactTags",
		Method:      http.MethodPut,
		Path:        "/api/v1/contacts/{id}/tags",
		Summary:     "Replace contact tags",
		Description: "Replaces the contact's tag set. Unknown tag names are created",
		Tags:        []string{"Contacts"},
	}, s.handleSetContactTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "countAudience",
		Method:      http.MethodPost,
		Path:        "/api/v1/contacts/count",
		Summary:     "Count audience",
		Description: "Counts contacts carrying every listed tag, optionally excluding prior recipients of a campaign",
		Tags:        []string{"Contacts"},
	}, s.handleCountAudience)
}

// === DTOs ===

// ContactResponse contains contact data in API responses.
type ContactResponse struct {
	ID        string    `json:"id" doc:"Contact ID"`
	Name      string    `json:"name" doc:"Contact name"`
	Phone     string    `json:"phone" doc:"Phone number"`
	Source    string    `json:"source,omitempty" doc:"Where the contact came from"`
	Tags      []string  `json:"tags" doc:"Tag names"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

// ListContactsInput contains the optional tag filter.
type ListContactsInput struct {
	Tags []string `query:"tags" doc:"Only contacts carrying all of these tags"`
}

// ListContactsOutput wraps the list contacts response for Huma.
type ListContactsOutput struct {
	Body []ContactResponse
}

// CreateContactRequest is the request body for creating a contact.
type CreateContactRequest struct {
	Name   string   `json:"name,omitempty" doc:"Contact name"`
	Phone  string   `json:"phone,omitempty" doc:"Phone number, unique"`
	Source string   `json:"source,omitempty" doc:"Where the contact came from"`
	Tags   []string `json:"tags,omitempty" doc:"Tag names"`
}

// CreateContactInput wraps the create contact request for Huma.
type CreateContactInput struct {
	Body CreateContactRequest
}

// GetContactInput contains parameters for getting a contact.
type GetContactInput struct {
	ID string `path:"id" doc:"Contact ID"`
}

// SetContactTagsRequest is the request body for replacing contact tags.
type SetContactTagsRequest struct {
	Tags []string `json:"tags,omitempty" doc:"New tag set; empty clears all tags"`
}

// SetContactTagsInput wraps the set tags request for Huma.
type SetContactTagsInput struct {
	ID   string `path:"id" doc:"Contact ID"`
	Body SetContactTagsRequest
}

// ContactOutput wraps the contact response for Huma.
type ContactOutput struct {
	Body ContactResponse
}

// CountAudienceRequest is the request body for counting an audience.
type CountAudienceRequest struct {
	Tags                []string `json:"tags,omitempty" doc:"Required tags"`
	ExcludeCampaignName string   `json:"exclude_campaign_name,omitempty" doc:"Exclude prior recipients of this campaign"`
}

// CountAudienceInput wraps the count request for Huma.
type CountAudienceInput struct {
	Body CountAudienceRequest
}

// CountResponse contains an audience size.
type CountResponse struct {
	Count int `json:"count" doc:"Number of matching contacts"`
}

// CountAudienceOutput wraps the count response for Huma.
type CountAudienceOutput struct {
	Body CountResponse
}

func toContactResponse(c *domain.Contact) ContactResponse {
	return ContactResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Source:    c.Source,
		Tags:      domain.TagNames(c.Tags),
		CreatedAt: c.CreatedAt,
	}
}

func toContactResponses(contacts []*domain.Contact) []ContactResponse {
	resp := make([]ContactResponse, len(contacts))
	for i, c := range contacts {
		resp[i] = toContactResponse(c)
	}
	return resp
}

// === Handlers ===

func (s *Server) handleListContacts(ctx context.Context, input *ListContactsInput) (*ListContactsOutput, error) {
	var (
		contacts []*domain.Contact
		err      error
	)
	if tags := domain.NormalizeTagNames(input.Tags); len(tags) > 0 {
		contacts, err = s.services.Audience.Resolve(ctx, tags, "")
	} else {
		contacts, err = s.services.Contact.ListContacts(ctx)
	}
	if err != nil {
		return nil, err
	}
	return &ListContactsOutput{Body: toContactResponses(contacts)}, nil
}

func (s *Server) handleCreateContact(ctx context.Context, input *CreateContactInput) (*ContactOutput, error) {
	c, err := s.services.Contact.CreateContact(ctx, service.CreateContactRequest{
		Name:   input.Body.Name,
		Phone:  input.Body.Phone,
		Source: input.Body.Source,
		Tags:   input.Body.Tags,
	})
	if err != nil {
		return nil, err
	}
	return &ContactOutput{Body: toContactResponse(c)}, nil
}

func (s *Server) handleGetContact(ctx context.Context, input *GetContactInput) (*ContactOutput, error) {
	c, err := s.services.Contact.GetContact(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ContactOutput{Body: toContactResponse(c)}, nil
}

func (s *Server) handleSetContactTags(ctx context.Context, input *SetContactTagsInput) (*ContactOutput, error) {
	c, err := s.services.Contact.SetContactTags(ctx, input.ID, input.Body.Tags)
	if err != nil {
		return nil, err
	}
	return &ContactOutput{Body: toContactResponse(c)}, nil
}

func (s *Server) handleCountAudience(ctx context.Context, input *CountAudienceInput) (*CountAudienceOutput, error) {
	n, err := s.services.Audience.Count(ctx, input.Body.Tags, input.Body.ExcludeCampaignName)
	if err != nil {
		return nil, err
	}
	return &CountAudienceOutput{Body: CountResponse{Count: n}}, nil
}

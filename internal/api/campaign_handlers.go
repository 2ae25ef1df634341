package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/munazzamapp/munazzam-server/internal/domain"
)

func (s *Server) registerCampaignRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCampaigns",
		Method:      http.MethodGet,
		Path:        "/api/v1/campaigns",
		Summary:     "List campaigns",
		Description: "Returns campaigns newest first with their tags and recipient counts",
		Tags:        []string{"Campaigns"},
	}, s.handleListCampaigns)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCampaign",
		Method:      http.MethodGet,
		Path:        "/api/v1/campaigns/{id}",
		Summary:     "Get campaign",
		Tags:        []string{"Campaigns"},
	}, s.handleGetCampaign)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCampaignRecipients",
		Method:      http.MethodGet,
		Path:        "/api/v1/campaigns/{id}/recipients",
		Summary:     "List campaign recipients",
		Description: "Returns every contact the campaign was exported to, in delivery order",
		Tags:        []string{"Campaigns"},
	}, s.handleListCampaignRecipients)
}

// === DTOs ===

// CampaignResponse contains campaign data in API responses.
type CampaignResponse struct {
	ID             string    `json:"id" doc:"Campaign ID"`
	Name           string    `json:"name" doc:"Campaign name"`
	Message        string    `json:"message" doc:"Message body with name placeholder"`
	Tags           []string  `json:"tags" doc:"Target tag names"`
	RecipientCount int       `json:"recipient_count" doc:"Contacts the campaign was exported to"`
	CreatedAt      time.Time `json:"created_at" doc:"Creation time"`
}

// ListCampaignsOutput wraps the list campaigns response for Huma.
type ListCampaignsOutput struct {
	Body []CampaignResponse
}

// GetCampaignInput contains parameters for getting a campaign.
type GetCampaignInput struct {
	ID string `path:"id" doc:"Campaign ID"`
}

// CampaignOutput wraps the campaign response for Huma.
type CampaignOutput struct {
	Body CampaignResponse
}

// RecipientsOutput wraps the campaign recipients for Huma.
type RecipientsOutput struct {
	Body []ContactResponse
}

func toCampaignResponse(c *domain.Campaign) CampaignResponse {
	return CampaignResponse{
		ID:             c.ID,
		Name:           c.Name,
		Message:        c.Message,
		Tags:           domain.TagNames(c.Tags),
		RecipientCount: c.RecipientCount,
		CreatedAt:      c.CreatedAt,
	}
}

// === Handlers ===

func (s *Server) handleListCampaigns(ctx context.Context, _ *struct{}) (*ListCampaignsOutput, error) {
	campaigns, err := s.services.Campaign.ListCampaigns(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]CampaignResponse, len(campaigns))
	for i, c := range campaigns {
		resp[i] = toCampaignResponse(c)
	}
	return &ListCampaignsOutput{Body: resp}, nil
}

func (s *Server) handleGetCampaign(ctx context.Context, input *GetCampaignInput) (*CampaignOutput, error) {
	c, err := s.services.Campaign.GetCampaign(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &CampaignOutput{Body: toCampaignResponse(c)}, nil
}

func (s *Server) handleListCampaignRecipients(ctx context.Context, input *GetCampaignInput) (*RecipientsOutput, error) {
	contacts, err := s.services.Campaign.ListRecipients(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &RecipientsOutput{Body: toContactResponses(contacts)}, nil
}

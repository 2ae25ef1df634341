package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/munazzamapp/munazzam-server/internal/domain"
	"github.com/munazzamapp/munazzam-server/internal/service"
	"github.com/munazzamapp/munazzam-server/internal/store"
)

func (s *Server) registerTemplateRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTemplates",
		Method:      http.MethodGet,
		Path:        "/api/v1/templates",
		Summary:     "List templates",
		Description: "Returns all message templates in name order, or the one matching name",
		Tags:        []string{"Templates"},
	}, s.handleListTemplates)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createTemplate",
		Method:        http.MethodPost,
		Path:          "/api/v1/templates",
		Summary:       "Create template",
		Description:   "Creates a message template. Names are unique",
		Tags:          []string{"Templates"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateTemplate)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTemplate",
		Method:      http.MethodGet,
		Path:        "/api/v1/templates/{id}",
		Summary:     "Get template",
		Tags:        []string{"Templates"},
	}, s.handleGetTemplate)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTemplate",
		Method:      http.MethodPatch,
		Path:        "/api/v1/templates/{id}",
		Summary:     "Update template",
		Description: "Updates the name, the body, or both",
		Tags:        []string{"Templates"},
	}, s.handleUpdateTemplate)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteTemplate",
		Method:        http.MethodDelete,
		Path:          "/api/v1/templates/{id}",
		Summary:       "Delete template",
		Tags:          []string{"Templates"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteTemplate)
}

// === DTOs ===

// TemplateResponse contains template data in API responses.
type TemplateResponse struct {
	ID        string    `json:"id" doc:"Template ID"`
	Name      string    `json:"name" doc:"Template name"`
	Body      string    `json:"body" doc:"Message text"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// ListTemplatesInput contains the optional exact-name filter.
type ListTemplatesInput struct {
	Name string `query:"name" doc:"Only the template with exactly this name"`
}

// ListTemplatesOutput wraps the list templates response for Huma.
type ListTemplatesOutput struct {
	Body []TemplateResponse
}

// CreateTemplateRequest is the request body for creating a template.
type CreateTemplateRequest struct {
	Name string `json:"name,omitempty" doc:"Template name"`
	Body string `json:"body,omitempty" doc:"Message text"`
}

// CreateTemplateInput wraps the create template request for Huma.
type CreateTemplateInput struct {
	Body CreateTemplateRequest
}

// TemplateIDInput contains the template path parameter.
type TemplateIDInput struct {
	ID string `path:"id" doc:"Template ID"`
}

// UpdateTemplateRequest is the request body for updating a template.
type UpdateTemplateRequest struct {
	Name *string `json:"name,omitempty" doc:"Template name"`
	Body *string `json:"body,omitempty" doc:"Message text"`
}

// UpdateTemplateInput wraps the update template request for Huma.
type UpdateTemplateInput struct {
	ID   string `path:"id" doc:"Template ID"`
	Body UpdateTemplateRequest
}

// TemplateOutput wraps the template response for Huma.
type TemplateOutput struct {
	Body TemplateResponse
}

func toTemplateResponse(t *domain.MessageTemplate) TemplateResponse {
	return TemplateResponse{
		ID:        t.ID,
		Name:      t.Name,
		Body:      t.Body,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// === Handlers ===

func (s *Server) handleListTemplates(ctx context.Context, input *ListTemplatesInput) (*ListTemplatesOutput, error) {
	var templates []*domain.MessageTemplate
	if input.Name != "" {
		t, err := s.services.Template.GetTemplateByName(ctx, input.Name)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return nil, err
		default:
			templates = append(templates, t)
		}
	} else {
		var err error
		if templates, err = s.services.Template.ListTemplates(ctx); err != nil {
			return nil, err
		}
	}

	resp := make([]TemplateResponse, len(templates))
	for i, t := range templates {
		resp[i] = toTemplateResponse(t)
	}
	return &ListTemplatesOutput{Body: resp}, nil
}

func (s *Server) handleCreateTemplate(ctx context.Context, input *CreateTemplateInput) (*TemplateOutput, error) {
	t, err := s.services.Template.CreateTemplate(ctx, service.TemplateRequest{
		Name: input.Body.Name,
		Body: input.Body.Body,
	})
	if err != nil {
		return nil, err
	}
	return &TemplateOutput{Body: toTemplateResponse(t)}, nil
}

func (s *Server) handleGetTemplate(ctx context.Context, input *TemplateIDInput) (*TemplateOutput, error) {
	t, err := s.services.Template.GetTemplate(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &TemplateOutput{Body: toTemplateResponse(t)}, nil
}

func (s *Server) handleUpdateTemplate(ctx context.Context, input *UpdateTemplateInput) (*TemplateOutput, error) {
	current, err := s.services.Template.GetTemplate(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	req := service.TemplateRequest{Name: current.Name, Body: current.Body}
	if input.Body.Name != nil {
		req.Name = *input.Body.Name
	}
	if input.Body.Body != nil {
		req.Body = *input.Body.Body
	}

	t, err := s.services.Template.UpdateTemplate(ctx, input.ID, req)
	if err != nil {
		return nil, err
	}
	return &TemplateOutput{Body: toTemplateResponse(t)}, nil
}

func (s *Server) handleDeleteTemplate(ctx context.Context, input *TemplateIDInput) (*struct{}, error) {
	if err := s.services.Template.DeleteTemplate(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/munazzamapp/munazzam-server/internal/domain"
	"github.com/munazzamapp/munazzam-server/internal/id"
	"github.com/munazzamapp/munazzam-server/internal/store"
	"github.com/munazzamapp/munazzam-server/internal/validation"
)

// TemplateService manages reusable message templates.
type TemplateService struct {
	store     store.TemplateStore
	logger    *slog.Logger
	validator *validation.Validator
}

// NewTemplateService creates a new template service.
func NewTemplateService(store store.TemplateStore, logger *slog.Logger) *TemplateService {
	return &TemplateService{
		store:     store,
		logger:    logger,
		validator: validation.New(),
	}
}

// TemplateRequest contains fields for creating or updating a template.
type TemplateRequest struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
	Body string `json:"body" validate:"required,notblank"`
}

// ListTemplates returns all templates ordered by name.
func (s *TemplateService) ListTemplates(ctx context.Context) ([]*domain.MessageTemplate, error) {
	return s.store.ListTemplates(ctx)
}

// GetTemplate returns one template.
func (s *TemplateService) GetTemplate(ctx context.Context, templateID string) (*domain.MessageTemplate, error) {
	return s.store.GetTemplate(ctx, templateID)
}

// GetTemplateByName returns the template with exactly this name.
func (s *TemplateService) GetTemplateByName(ctx context.Context, name string) (*domain.MessageTemplate, error) {
	return s.store.GetTemplateByName(ctx, domain.NormalizeName(name))
}

// CreateTemplate stores a new template. Names are unique.
func (s *TemplateService) CreateTemplate(ctx context.Context, req TemplateRequest) (*domain.MessageTemplate, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	templateID, err := id.Generate(id.PrefixTemplate)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	t := &domain.MessageTemplate{
		ID:        templateID,
		Name:      domain.NormalizeName(req.Name),
		Body:      req.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("template created", "template", t.Name)
	return t, nil
}

// UpdateTemplate overwrites a template's name and body.
func (s *TemplateService) UpdateTemplate(ctx context.Context, templateID string, req TemplateRequest) (*domain.MessageTemplate, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	t, err := s.store.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	t.Name = domain.NormalizeName(req.Name)
	t.Body = req.Body
	t.Touch()

	if err := s.store.UpdateTemplate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTemplate removes a template.
func (s *TemplateService) DeleteTemplate(ctx context.Context, templateID string) error {
	return s.store.DeleteTemplate(ctx, templateID)
}

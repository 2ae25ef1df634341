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

// ContactService manages contacts and their tags.
type ContactService struct {
	store     store.Store
	logger    *slog.Logger
	validator *validation.Validator
}

// NewContactService creates a new contact service.
func NewContactService(store store.Store, logger *slog.Logger) *ContactService {
	return &ContactService{
		store:     store,
		logger:    logger,
		validator: validation.New(),
	}
}

// CreateContactRequest contains fields for adding a contact by hand.
type CreateContactRequest struct {
	Name   string   `json:"name" validate:"required,notblank,max=100"`
	Phone  string   `json:"phone" validate:"required,notblank,max=20"`
	Source string   `json:"source,omitempty" validate:"max=100"`
	Tags   []string `json:"tags,omitempty" validate:"dive,max=50"`
}

// ListContacts returns every contact, newest first.
func (s *ContactService) ListContacts(ctx context.Context) ([]*domain.Contact, error) {
	return s.store.ListContacts(ctx)
}

// GetContact returns one contact with its tags.
func (s *ContactService) GetContact(ctx context.Context, contactID string) (*domain.Contact, error) {
	return s.store.GetContact(ctx, contactID)
}

// CreateContact adds a contact, creating any named tags that do not exist.
// A phone already on file is a conflict and nothing is written.
func (s *ContactService) CreateContact(ctx context.Context, req CreateContactRequest) (*domain.Contact, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	contactID, err := id.Generate(id.PrefixContact)
	if err != nil {
		return nil, err
	}
	c := &domain.Contact{
		ID:        contactID,
		Name:      domain.NormalizeName(req.Name),
		Phone:     domain.NormalizePhone(req.Phone),
		Source:    domain.NormalizeName(req.Source),
		CreatedAt: time.Now(),
	}

	err = s.store.InTx(ctx, func(tx store.Store) error {
		tags, err := findOrCreateTags(ctx, tx, req.Tags)
		if err != nil {
			return err
		}
		c.Tags = tags
		return tx.CreateContact(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("contact created", "contact_id", c.ID, "tags", len(c.Tags))
	return s.store.GetContact(ctx, c.ID)
}

// SetContactTags replaces the contact's tags with the named set.
func (s *ContactService) SetContactTags(ctx context.Context, contactID string, names []string) (*domain.Contact, error) {
	err := s.store.InTx(ctx, func(tx store.Store) error {
		tags, err := findOrCreateTags(ctx, tx, names)
		if err != nil {
			return err
		}
		return tx.SetContactTags(ctx, contactID, tagIDs(tags))
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetContact(ctx, contactID)
}

// CountContacts returns the total number of contacts.
func (s *ContactService) CountContacts(ctx context.Context) (int, error) {
	return s.store.CountContacts(ctx)
}

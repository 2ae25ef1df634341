package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/munazzamapp/munazzam-server/internal/domain"
	"github.com/munazzamapp/munazzam-server/internal/id"
	"github.com/munazzamapp/munazzam-server/internal/store"
	"github.com/munazzamapp/munazzam-server/internal/validation"
)

// TagService manages the tag directory.
type TagService struct {
	store     store.Store
	logger    *slog.Logger
	validator *validation.Validator
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, logger *slog.Logger) *TagService {
	return &TagService{
		store:     store,
		logger:    logger,
		validator: validation.New(),
	}
}

// TagRequest carries a tag name for create and rename.
type TagRequest struct {
	Name string `json:"name" validate:"required,notblank,max=50"`
}

// ListTags returns all tags ordered by name, with contact counts.
func (s *TagService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	return s.store.ListTags(ctx)
}

// CreateTag creates a tag. A duplicate name is a conflict.
func (s *TagService) CreateTag(ctx context.Context, req TagRequest) (*domain.Tag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tagID, err := id.Generate(id.PrefixTag)
	if err != nil {
		return nil, err
	}
	t := &domain.Tag{
		ID:        tagID,
		Name:      domain.NormalizeName(req.Name),
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateTag(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("tag created", "tag", t.Name)
	return t, nil
}

// RenameTag changes a tag's name. The new name must not belong to another tag.
func (s *TagService) RenameTag(ctx context.Context, tagID string, req TagRequest) (*domain.Tag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	name := domain.NormalizeName(req.Name)
	if err := s.store.RenameTag(ctx, tagID, name); err != nil {
		return nil, err
	}

	s.logger.Info("tag renamed", "tag_id", tagID, "name", name)
	return s.store.GetTagByID(ctx, tagID)
}

// DeleteTag removes a tag from every contact and campaign, then deletes it.
// Contacts and campaigns themselves are kept.
func (s *TagService) DeleteTag(ctx context.Context, tagID string) error {
	if err := s.store.DeleteTag(ctx, tagID); err != nil {
		return err
	}
	s.logger.Info("tag deleted", "tag_id", tagID)
	return nil
}

// FindOrCreateTags resolves names to tags, creating any that are missing.
func (s *TagService) FindOrCreateTags(ctx context.Context, names []string) ([]*domain.Tag, error) {
	var tags []*domain.Tag
	err := s.store.InTx(ctx, func(tx store.Store) error {
		var err error
		tags, err = findOrCreateTags(ctx, tx, names)
		return err
	})
	return tags, err
}

// findOrCreateTags normalizes and dedupes names, then finds or creates each
// tag in order. Blank names are dropped.
func findOrCreateTags(ctx context.Context, st store.TagStore, names []string) ([]*domain.Tag, error) {
	normalized := domain.NormalizeTagNames(names)
	tags := make([]*domain.Tag, 0, len(normalized))
	for _, name := range normalized {
		t, _, err := st.FindOrCreateTag(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("find or create tag %q: %w", name, err)
		}
		tags = append(tags, t)
	}
	return tags, nil
}

func tagIDs(tags []*domain.Tag) []string {
	ids := make([]string, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}

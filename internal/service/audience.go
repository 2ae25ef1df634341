package service

import (
	"context"

	"github.com/munazzamapp/munazzam-server/internal/domain"
	"github.com/munazzamapp/munazzam-server/internal/store"
)

// AudienceService answers "who would receive this" without writing anything.
// Unknown tags match nobody; an unknown exclusion campaign excludes nobody.
type AudienceService struct {
	store store.AudienceStore
}

// NewAudienceService creates a new audience service.
func NewAudienceService(store store.AudienceStore) *AudienceService {
	return &AudienceService{store: store}
}

// Resolve returns contacts carrying every tag, minus prior recipients of
// excludeCampaign when it names an existing campaign.
func (s *AudienceService) Resolve(ctx context.Context, tags []string, excludeCampaign string) ([]*domain.Contact, error) {
	return s.store.ResolveAudience(ctx, store.AudienceQuery{Tags: tags, ExcludeCampaign: excludeCampaign})
}

// Count returns len(Resolve(...)).
func (s *AudienceService) Count(ctx context.Context, tags []string, excludeCampaign string) (int, error) {
	return s.store.CountAudience(ctx, store.AudienceQuery{Tags: tags, ExcludeCampaign: excludeCampaign})
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/munazzamapp/munazzam-server/internal/domain"
	"github.com/munazzamapp/munazzam-server/internal/store"
	"github.com/munazzamapp/munazzam-server/internal/validation"
)

// CampaignOptions configures the export pipeline.
type CampaignOptions struct {
	// Placeholder is the literal token replaced by each contact's name.
	Placeholder string
	// RollbackEmptyAudience discards the campaign upsert and tag replacement
	// when nobody would receive the message. When false they are kept as a draft.
	RollbackEmptyAudience bool
}

// CampaignService runs campaign exports and reads campaign history.
type CampaignService struct {
	store     store.Store
	opts      CampaignOptions
	logger    *slog.Logger
	validator *validation.Validator
}

// NewCampaignService creates a new campaign service.
func NewCampaignService(store store.Store, opts CampaignOptions, logger *slog.Logger) *CampaignService {
	if opts.Placeholder == "" {
		opts.Placeholder = domain.DefaultNamePlaceholder
	}
	return &CampaignService{
		store:     store,
		opts:      opts,
		logger:    logger,
		validator: validation.New(),
	}
}

// ExportRequest describes one export run.
type ExportRequest struct {
	CampaignName string   `json:"campaign_name" validate:"required,notblank,max=100"`
	Message      string   `json:"message" validate:"required,notblank"`
	Tags         []string `json:"tags,omitempty" validate:"dive,notblank,max=50"`
	// Shield excludes contacts who already received this campaign.
	Shield bool `json:"shield"`
}

// ExportResult is the outcome of an export run. NoNewRecipients is a normal
// outcome, not an error: Lines is empty and the delivery history is unchanged.
type ExportResult struct {
	ExportID        string
	Campaign        *domain.Campaign
	Lines           []domain.ExportLine
	NoNewRecipients bool
}

// errEmptyAudience aborts the export transaction under the rollback policy.
var errEmptyAudience = errors.New("empty audience")

// ListCampaigns returns all campaigns with tags and recipient counts.
func (s *CampaignService) ListCampaigns(ctx context.Context) ([]*domain.Campaign, error) {
	return s.store.ListCampaigns(ctx)
}

// GetCampaign returns one campaign.
func (s *CampaignService) GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	return s.store.GetCampaign(ctx, campaignID)
}

// ListRecipients returns the campaign's delivery history.
func (s *CampaignService) ListRecipients(ctx context.Context, campaignID string) ([]*domain.Contact, error) {
	if _, err := s.store.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.store.ListRecipients(ctx, campaignID)
}

// Export upserts the campaign, replaces its tags, resolves the audience,
// personalizes one message per contact and appends every contact to the
// delivery history. All writes commit together or not at all.
func (s *CampaignService) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	name := domain.NormalizeName(req.CampaignName)
	result := &ExportResult{ExportID: uuid.NewString()}

	var campaignID string
	err := s.store.InTx(ctx, func(tx store.Store) error {
		campaign, created, err := tx.UpsertCampaign(ctx, name, req.Message)
		if err != nil {
			return err
		}
		campaignID = campaign.ID

		tags, err := findOrCreateTags(ctx, tx, req.Tags)
		if err != nil {
			return err
		}
		if err := tx.SetCampaignTags(ctx, campaign.ID, tagIDs(tags)); err != nil {
			return err
		}

		q := store.AudienceQuery{Tags: domain.TagNames(tags)}
		if req.Shield {
			q.ExcludeCampaign = name
		}
		audience, err := tx.ResolveAudience(ctx, q)
		if err != nil {
			return err
		}

		if len(audience) == 0 {
			result.NoNewRecipients = true
			if s.opts.RollbackEmptyAudience {
				return errEmptyAudience
			}
			s.logger.Info("export produced no new recipients",
				"export_id", result.ExportID,
				"campaign", name,
				"campaign_created", created,
			)
			return nil
		}

		result.Lines = make([]domain.ExportLine, len(audience))
		contactIDs := make([]string, len(audience))
		for i, c := range audience {
			result.Lines[i] = domain.ExportLine{
				ContactID: c.ID,
				Phone:     c.Phone,
				Message:   domain.Personalize(req.Message, s.opts.Placeholder, c.Name),
			}
			contactIDs[i] = c.ID
		}
		return tx.AddRecipients(ctx, campaign.ID, contactIDs, time.Now())
	})

	switch {
	case errors.Is(err, errEmptyAudience):
		s.logger.Info("export produced no new recipients, campaign changes discarded",
			"export_id", result.ExportID,
			"campaign", name,
		)
		return result, nil
	case err != nil:
		s.logger.Error("export failed", "export_id", result.ExportID, "campaign", name, "error", err)
		return nil, err
	}

	result.Campaign, err = s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if !result.NoNewRecipients {
		s.logger.Info("campaign exported",
			"export_id", result.ExportID,
			"campaign", name,
			"recipients", len(result.Lines),
			"history", result.Campaign.RecipientCount,
		)
	}
	return result, nil
}

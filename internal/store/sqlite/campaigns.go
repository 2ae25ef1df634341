package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/munazzamapp/munazzam-server/internal/domain"
	"github.com/munazzamapp/munazzam-server/internal/id"
	"github.com/munazzamapp/munazzam-server/internal/store"
)

// campaignColumns must match the scan order in scanCampaign.
const campaignColumns = `cp.id, cp.name, cp.message, cp.created_at,
	(SELECT COUNT(*) FROM campaign_recipients cr WHERE cr.campaign_id = cp.id)`

func scanCampaign(scanner interface{ Scan(dest ...any) error }) (*domain.Campaign, error) {
	var (
		c         domain.Campaign
		createdAt string
	)
	if err := scanner.Scan(&c.ID, &c.Name, &c.Message, &createdAt, &c.RecipientCount); err != nil {
		return nil, err
	}

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	c.Tags = []*domain.Tag{}
	return &c, nil
}

// UpsertCampaign finds a campaign by name or creates it. An existing
// campaign's message is overwritten; its delivery history is kept.
func (s *Store) UpsertCampaign(ctx context.Context, name, message string) (*domain.Campaign, bool, error) {
	var (
		c       *domain.Campaign
		created bool
	)
	err := s.InTx(ctx, func(txs store.Store) error {
		tx := txs.(*Store)

		campaignID, err := id.Generate(id.PrefixCampaign)
		if err != nil {
			return fmt.Errorf("generate campaign id: %w", err)
		}
		now := formatTime(time.Now())

		res, err := tx.q.ExecContext(ctx, `
			INSERT INTO campaigns (id, name, message, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(name) DO NOTHING`,
			campaignID, name, message, now, now,
		)
		if err != nil {
			return fmt.Errorf("insert campaign: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		created = n == 1

		if !created {
			if _, err := tx.q.ExecContext(ctx,
				`UPDATE campaigns SET message = ?, updated_at = ? WHERE name = ?`,
				message, now, name); err != nil {
				return fmt.Errorf("update campaign message: %w", err)
			}
		}

		c, err = tx.GetCampaignByName(ctx, name)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return c, created, nil
}

// GetCampaign retrieves a campaign with tags and recipient count.
func (s *Store) GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	return s.getCampaign(ctx, `cp.id = ?`, campaignID)
}

// GetCampaignByName retrieves a campaign by exact name.
func (s *Store) GetCampaignByName(ctx context.Context, name string) (*domain.Campaign, error) {
	return s.getCampaign(ctx, `cp.name = ?`, name)
}

func (s *Store) getCampaign(ctx context.Context, where string, arg any) (*domain.Campaign, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns cp WHERE `+where, arg)

	c, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("campaign not found")
	}
	if err != nil {
		return nil, err
	}

	byCampaign, err := s.loadTags(ctx, "campaign_tags", "campaign_id", []string{c.ID})
	if err != nil {
		return nil, err
	}
	if tags, ok := byCampaign[c.ID]; ok {
		c.Tags = tags
	}
	return c, nil
}

// ListCampaigns returns all campaigns, newest first.
func (s *Store) ListCampaigns(ctx context.Context) ([]*domain.Campaign, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns cp ORDER BY cp.created_at DESC, cp.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query campaigns: %w", err)
	}

	campaigns := []*domain.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	ids := make([]string, len(campaigns))
	for i, c := range campaigns {
		ids[i] = c.ID
	}
	byCampaign, err := s.loadTags(ctx, "campaign_tags", "campaign_id", ids)
	if err != nil {
		return nil, err
	}
	for _, c := range campaigns {
		if tags, ok := byCampaign[c.ID]; ok {
			c.Tags = tags
		}
	}
	return campaigns, nil
}

// SetCampaignTags replaces all tags of a campaign.
func (s *Store) SetCampaignTags(ctx context.Context, campaignID string, tagIDs []string) error {
	return s.setTags(ctx, "campaign_tags", "campaign_id", campaignID, tagIDs, false)
}

// AddRecipients records contacts as having received the campaign.
// Already-recorded contacts are ignored; the history is never shrunk.
func (s *Store) AddRecipients(ctx context.Context, campaignID string, contactIDs []string, at time.Time) error {
	if len(contactIDs) == 0 {
		return nil
	}
	return s.InTx(ctx, func(txs store.Store) error {
		tx := txs.(*Store)

		deliveredAt := formatTime(at)
		for _, contactID := range contactIDs {
			_, err := tx.q.ExecContext(ctx, `
				INSERT INTO campaign_recipients (campaign_id, contact_id, delivered_at)
				VALUES (?, ?, ?)
				ON CONFLICT DO NOTHING`,
				campaignID, contactID, deliveredAt,
			)
			if err != nil {
				return fmt.Errorf("insert recipient: %w", err)
			}
		}
		return nil
	})
}

// ListRecipients returns the campaign's recorded recipients in the order
// they were recorded.
func (s *Store) ListRecipients(ctx context.Context, campaignID string) ([]*domain.Contact, error) {
	return s.queryContacts(ctx, `
		SELECT `+contactColumns+`
		FROM campaign_recipients cr
		JOIN contacts c ON c.id = cr.contact_id
		WHERE cr.campaign_id = ?
		ORDER BY cr.rowid ASC`, campaignID)
}

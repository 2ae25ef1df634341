// Package store defines the persistence capabilities used by the services.
// The SQLite implementation lives in store/sqlite.
package store

import (
	"context"
	"time"

	"github.com/munazzamapp/munazzam-server/internal/domain"
)

// Store is the full persistence capability set. Every method runs either
// against the database directly or, inside InTx, against one transaction.
type Store interface {
	TagStore
	ContactStore
	CampaignStore
	TemplateStore
	AudienceStore

	// InTx runs fn against a Store bound to a single transaction.
	// A non-nil error from fn rolls back every change fn made; nil commits.
	// Calling InTx on a transaction-bound Store reuses that transaction.
	InTx(ctx context.Context, fn func(tx Store) error) error
}

// TagStore persists the tag directory.
type TagStore interface {
	// CreateTag inserts a tag. Returns ErrAlreadyExists on a duplicate name.
	CreateTag(ctx context.Context, t *domain.Tag) error
	GetTagByID(ctx context.Context, tagID string) (*domain.Tag, error)
	GetTagByName(ctx context.Context, name string) (*domain.Tag, error)
	// ListTags returns all tags ordered by name with ContactCount populated.
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	// RenameTag returns ErrNotFound or ErrAlreadyExists.
	RenameTag(ctx context.Context, tagID, name string) error
	// DeleteTag removes the tag's contact and campaign associations, then the tag.
	DeleteTag(ctx context.Context, tagID string) error
	// FindOrCreateTag inserts the tag if absent and otherwise returns the
	// existing row. created reports whether this call inserted it.
	FindOrCreateTag(ctx context.Context, name string) (tag *domain.Tag, created bool, err error)
}

// ContactStore persists contacts and their tag associations.
type ContactStore interface {
	// CreateContact inserts the contact and associates c.Tags (which must
	// already exist). Returns ErrAlreadyExists on a duplicate phone.
	CreateContact(ctx context.Context, c *domain.Contact) error
	GetContact(ctx context.Context, contactID string) (*domain.Contact, error)
	GetContactByPhone(ctx context.Context, phone string) (*domain.Contact, error)
	// ListContacts returns every contact, newest first, with tags.
	ListContacts(ctx context.Context) ([]*domain.Contact, error)
	CountContacts(ctx context.Context) (int, error)
	// ListContactPhones returns every stored phone number.
	ListContactPhones(ctx context.Context) ([]string, error)
	// SetContactTags replaces the contact's tag set.
	SetContactTags(ctx context.Context, contactID string, tagIDs []string) error
}

// CampaignStore persists campaigns, their audience tags, and delivery history.
type CampaignStore interface {
	// UpsertCampaign finds the campaign by name, creating it when absent and
	// overwriting its message when present.
	UpsertCampaign(ctx context.Context, name, message string) (c *domain.Campaign, created bool, err error)
	GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error)
	GetCampaignByName(ctx context.Context, name string) (*domain.Campaign, error)
	ListCampaigns(ctx context.Context) ([]*domain.Campaign, error)
	// SetCampaignTags replaces the campaign's tag set.
	SetCampaignTags(ctx context.Context, campaignID string, tagIDs []string) error
	// AddRecipients appends contacts to the delivery history. Contacts
	// already recorded are left as they are. There is no removal operation.
	AddRecipients(ctx context.Context, campaignID string, contactIDs []string, at time.Time) error
	// ListRecipients returns recorded recipients in delivery order.
	ListRecipients(ctx context.Context, campaignID string) ([]*domain.Contact, error)
}

// TemplateStore persists message templates.
type TemplateStore interface {
	// CreateTemplate returns ErrAlreadyExists on a duplicate name.
	CreateTemplate(ctx context.Context, t *domain.MessageTemplate) error
	GetTemplate(ctx context.Context, templateID string) (*domain.MessageTemplate, error)
	GetTemplateByName(ctx context.Context, name string) (*domain.MessageTemplate, error)
	ListTemplates(ctx context.Context) ([]*domain.MessageTemplate, error)
	// UpdateTemplate returns ErrNotFound or ErrAlreadyExists.
	UpdateTemplate(ctx context.Context, t *domain.MessageTemplate) error
	DeleteTemplate(ctx context.Context, templateID string) error
}

// AudienceQuery selects contacts carrying every tag in Tags, minus the
// recorded recipients of ExcludeCampaign when that campaign exists.
type AudienceQuery struct {
	Tags            []string
	ExcludeCampaign string
}

// AudienceStore answers audience queries. Both methods are read-only.
type AudienceStore interface {
	// ResolveAudience returns matching contacts in insertion order.
	ResolveAudience(ctx context.Context, q AudienceQuery) ([]*domain.Contact, error)
	CountAudience(ctx context.Context, q AudienceQuery) (int, error)
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/munazzamapp/munazzam-server/internal/domain"
	"github.com/munazzamapp/munazzam-server/internal/store"
)

// contactColumns must match the scan order in scanContact.
const contactColumns = `c.id, c.name, c.phone, c.source, c.created_at`

func scanContact(scanner interface{ Scan(dest ...any) error }) (*domain.Contact, error) {
	var (
		c         domain.Contact
		source    sql.NullString
		createdAt string
	)
	if err := scanner.Scan(&c.ID, &c.Name, &c.Phone, &source, &createdAt); err != nil {
		return nil, err
	}
	c.Source = source.String

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	c.Tags = []*domain.Tag{}
	return &c, nil
}

// CreateContact inserts the contact and its tag associations.
// Returns store.ErrAlreadyExists on a duplicate phone.
func (s *Store) CreateContact(ctx context.Context, c *domain.Contact) error {
	return s.InTx(ctx, func(txs store.Store) error {
		tx := txs.(*Store)

		_, err := tx.q.ExecContext(ctx, `
			INSERT INTO contacts (id, name, phone, source, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			c.ID,
			c.Name,
			c.Phone,
			nullString(c.Source),
			formatTime(c.CreatedAt),
		)
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage(fmt.Sprintf("contact with phone %q already exists", c.Phone))
		}
		if err != nil {
			return fmt.Errorf("insert contact: %w", err)
		}

		if len(c.Tags) == 0 {
			return nil
		}
		tagIDs := make([]string, len(c.Tags))
		for i, t := range c.Tags {
			tagIDs[i] = t.ID
		}
		return tx.setTags(ctx, "contact_tags", "contact_id", c.ID, tagIDs, true)
	})
}

// GetContact retrieves a contact with its tags.
func (s *Store) GetContact(ctx context.Context, contactID string) (*domain.Contact, error) {
	return s.getContact(ctx, `c.id = ?`, contactID)
}

// GetContactByPhone retrieves a contact by exact phone match.
func (s *Store) GetContactByPhone(ctx context.Context, phone string) (*domain.Contact, error) {
	return s.getContact(ctx, `c.phone = ?`, phone)
}

func (s *Store) getContact(ctx context.Context, where string, arg any) (*domain.Contact, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts c WHERE `+where, arg)

	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("contact not found")
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachContactTags(ctx, []*domain.Contact{c}); err != nil {
		return nil, err
	}
	return c, nil
}

// ListContacts returns every contact, newest first.
func (s *Store) ListContacts(ctx context.Context) ([]*domain.Contact, error) {
	return s.queryContacts(ctx,
		`SELECT `+contactColumns+` FROM contacts c ORDER BY c.created_at DESC, c.rowid DESC`)
}

// CountContacts returns the total number of contacts.
func (s *Store) CountContacts(ctx context.Context) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&n)
	return n, err
}

// ListContactPhones returns every stored phone number.
func (s *Store) ListContactPhones(ctx context.Context) ([]string, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT phone FROM contacts`)
	if err != nil {
		return nil, fmt.Errorf("query phones: %w", err)
	}
	defer rows.Close()

	var phones []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan phone: %w", err)
		}
		phones = append(phones, p)
	}
	return phones, rows.Err()
}

// SetContactTags replaces all tags of a contact.
func (s *Store) SetContactTags(ctx context.Context, contactID string, tagIDs []string) error {
	return s.InTx(ctx, func(txs store.Store) error {
		tx := txs.(*Store)

		var exists int
		err := tx.q.QueryRowContext(ctx, `SELECT 1 FROM contacts WHERE id = ?`, contactID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound.WithMessage("contact not found")
		}
		if err != nil {
			return err
		}
		return tx.setTags(ctx, "contact_tags", "contact_id", contactID, tagIDs, true)
	})
}

// queryContacts runs a contact SELECT and attaches tags to the result.
func (s *Store) queryContacts(ctx context.Context, query string, args ...any) ([]*domain.Contact, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}

	contacts := []*domain.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if err := s.attachContactTags(ctx, contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (s *Store) attachContactTags(ctx context.Context, contacts []*domain.Contact) error {
	ids := make([]string, len(contacts))
	for i, c := range contacts {
		ids[i] = c.ID
	}
	byContact, err := s.loadTags(ctx, "contact_tags", "contact_id", ids)
	if err != nil {
		return err
	}
	for _, c := range contacts {
		if tags, ok := byContact[c.ID]; ok {
			c.Tags = tags
		}
	}
	return nil
}

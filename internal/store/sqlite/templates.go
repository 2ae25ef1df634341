package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/munazzamapp/munazzam-server/internal/domain"
	"github.com/munazzamapp/munazzam-server/internal/store"
)

const templateColumns = `id, name, body, created_at, updated_at`

func scanTemplate(scanner interface{ Scan(dest ...any) error }) (*domain.MessageTemplate, error) {
	var (
		t                    domain.MessageTemplate
		createdAt, updatedAt string
	)
	if err := scanner.Scan(&t.ID, &t.Name, &t.Body, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTemplate inserts a template.
// Returns store.ErrAlreadyExists on a duplicate name.
func (s *Store) CreateTemplate(ctx context.Context, t *domain.MessageTemplate) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO message_templates (id, name, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID,
		t.Name,
		t.Body,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage(fmt.Sprintf("template %q already exists", t.Name))
	}
	return err
}

// GetTemplate retrieves a template by ID.
func (s *Store) GetTemplate(ctx context.Context, templateID string) (*domain.MessageTemplate, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM message_templates WHERE id = ?`, templateID)

	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("template not found")
	}
	return t, err
}

// GetTemplateByName retrieves a template by exact name.
func (s *Store) GetTemplateByName(ctx context.Context, name string) (*domain.MessageTemplate, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM message_templates WHERE name = ?`, name)

	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("template not found")
	}
	return t, err
}

// ListTemplates returns all templates ordered by name.
func (s *Store) ListTemplates(ctx context.Context) ([]*domain.MessageTemplate, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM message_templates ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []*domain.MessageTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// UpdateTemplate overwrites name and body.
func (s *Store) UpdateTemplate(ctx context.Context, t *domain.MessageTemplate) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE message_templates SET name = ?, body = ?, updated_at = ?
		WHERE id = ?`,
		t.Name,
		t.Body,
		formatTime(t.UpdatedAt),
		t.ID,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage(fmt.Sprintf("template %q already exists", t.Name))
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("template not found")
	}
	return nil
}

// DeleteTemplate removes a template.
func (s *Store) DeleteTemplate(ctx context.Context, templateID string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM message_templates WHERE id = ?`, templateID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("template not found")
	}
	return nil
}

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

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, name, created_at`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
// ContactCount is left as 0.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var (
		t         domain.Tag
		createdAt string
	)
	if err := scanner.Scan(&t.ID, &t.Name, &createdAt); err != nil {
		return nil, err
	}

	var err error
	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTag inserts a new tag.
// Returns store.ErrAlreadyExists on a duplicate name.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO tags (id, name, created_at)
		VALUES (?, ?, ?)`,
		t.ID,
		t.Name,
		formatTime(t.CreatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage(fmt.Sprintf("tag %q already exists", t.Name))
	}
	return err
}

// GetTagByID retrieves a tag by its ID.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTagByID(ctx context.Context, tagID string) (*domain.Tag, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = ?`, tagID)

	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("tag not found")
	}
	return t, err
}

// GetTagByName retrieves a tag by its exact name.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE name = ?`, name)

	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("tag not found")
	}
	return t, err
}

// ListTags returns all tags ordered by name, each with its contact count.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT t.id, t.name, t.created_at, COUNT(ct.contact_id)
		FROM tags t
		LEFT JOIN contact_tags ct ON ct.tag_id = t.id
		GROUP BY t.id
		ORDER BY t.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		var (
			t         domain.Tag
			createdAt string
		)
		if err := rows.Scan(&t.ID, &t.Name, &createdAt, &t.ContactCount); err != nil {
			return nil, err
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		tags = append(tags, &t)
	}
	return tags, rows.Err()
}

// RenameTag changes a tag's name.
func (s *Store) RenameTag(ctx context.Context, tagID, name string) error {
	res, err := s.q.ExecContext(ctx, `UPDATE tags SET name = ? WHERE id = ?`, name, tagID)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage(fmt.Sprintf("tag %q already exists", name))
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("tag not found")
	}
	return nil
}

// DeleteTag detaches the tag from every contact and campaign, then removes it.
// All three steps share one transaction.
func (s *Store) DeleteTag(ctx context.Context, tagID string) error {
	return s.InTx(ctx, func(txs store.Store) error {
		tx := txs.(*Store)

		if _, err := tx.q.ExecContext(ctx, `DELETE FROM contact_tags WHERE tag_id = ?`, tagID); err != nil {
			return fmt.Errorf("delete contact_tags: %w", err)
		}
		if _, err := tx.q.ExecContext(ctx, `DELETE FROM campaign_tags WHERE tag_id = ?`, tagID); err != nil {
			return fmt.Errorf("delete campaign_tags: %w", err)
		}

		res, err := tx.q.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, tagID)
		if err != nil {
			return fmt.Errorf("delete tag: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound.WithMessage("tag not found")
		}
		return nil
	})
}

// FindOrCreateTag returns the tag with the given name, inserting it first if
// absent. The insert is conflict-tolerant: when a concurrent writer creates
// the same name, this call returns that row with created=false.
func (s *Store) FindOrCreateTag(ctx context.Context, name string) (*domain.Tag, bool, error) {
	tagID, err := id.Generate(id.PrefixTag)
	if err != nil {
		return nil, false, fmt.Errorf("generate tag id: %w", err)
	}

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO tags (id, name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO NOTHING`,
		tagID,
		name,
		formatTime(time.Now()),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert tag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	t, err := s.GetTagByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return t, n == 1, nil
}

// setTags replaces the rows of an owner->tag association table.
func (s *Store) setTags(ctx context.Context, table, ownerColumn, ownerID string, tagIDs []string, withCreatedAt bool) error {
	return s.InTx(ctx, func(txs store.Store) error {
		tx := txs.(*Store)

		if _, err := tx.q.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE `+ownerColumn+` = ?`, ownerID); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}

		now := formatTime(time.Now())
		for _, tagID := range tagIDs {
			var err error
			if withCreatedAt {
				_, err = tx.q.ExecContext(ctx, `
					INSERT INTO `+table+` (`+ownerColumn+`, tag_id, created_at)
					VALUES (?, ?, ?)
					ON CONFLICT DO NOTHING`, ownerID, tagID, now)
			} else {
				_, err = tx.q.ExecContext(ctx, `
					INSERT INTO `+table+` (`+ownerColumn+`, tag_id)
					VALUES (?, ?)
					ON CONFLICT DO NOTHING`, ownerID, tagID)
			}
			if err != nil {
				return fmt.Errorf("insert %s: %w", table, err)
			}
		}
		return nil
	})
}

// loadTags returns tags keyed by owner ID for the given association table.
// Tags within each owner are ordered by name.
func (s *Store) loadTags(ctx context.Context, table, ownerColumn string, ownerIDs []string) (map[string][]*domain.Tag, error) {
	out := make(map[string][]*domain.Tag, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}

	want := make(map[string]struct{}, len(ownerIDs))
	for _, oid := range ownerIDs {
		want[oid] = struct{}{}
	}

	query := `
		SELECT a.` + ownerColumn + `, t.id, t.name, t.created_at
		FROM ` + table + ` a
		JOIN tags t ON t.id = a.tag_id`
	var args []any
	// Small owner sets use an IN list; large ones scan the table and filter.
	if len(ownerIDs) <= 500 {
		query += ` WHERE a.` + ownerColumn + ` IN (` + placeholders(len(ownerIDs)) + `)`
		args = stringArgs(ownerIDs)
	}
	query += ` ORDER BY t.name ASC`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ownerID   string
			t         domain.Tag
			createdAt string
		)
		if err := rows.Scan(&ownerID, &t.ID, &t.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		if _, ok := want[ownerID]; !ok {
			continue
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out[ownerID] = append(out[ownerID], &t)
	}
	return out, rows.Err()
}

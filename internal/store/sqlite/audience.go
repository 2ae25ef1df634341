package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/munazzamapp/munazzam-server/internal/domain"
	"github.com/munazzamapp/munazzam-server/internal/store"
)

// audienceFilter builds the WHERE clause shared by ResolveAudience and
// CountAudience. A contact matches when it carries every required tag and
// is not a recorded recipient of the excluded campaign. Unknown or blank tag
// names match nothing; an unknown campaign excludes nothing.
func audienceFilter(q store.AudienceQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)

	// A blank name can never be a tag, so requiring one matches nobody.
	for _, name := range q.Tags {
		if domain.NormalizeName(name) == "" {
			return " WHERE 0", nil
		}
	}

	tags := domain.NormalizeTagNames(q.Tags)
	if len(tags) > 0 {
		// PK(contact_id, tag_id) and unique tag names make COUNT(*) a count of
		// distinct required tags held.
		conds = append(conds, `(
			SELECT COUNT(*) FROM contact_tags ct
			JOIN tags t ON t.id = ct.tag_id
			WHERE ct.contact_id = c.id AND t.name IN (`+placeholders(len(tags))+`)
		) = ?`)
		args = append(args, stringArgs(tags)...)
		args = append(args, len(tags))
	}

	if exclude := domain.NormalizeName(q.ExcludeCampaign); exclude != "" {
		conds = append(conds, `c.id NOT IN (
			SELECT cr.contact_id FROM campaign_recipients cr
			JOIN campaigns cp ON cp.id = cr.campaign_id
			WHERE cp.name = ?
		)`)
		args = append(args, exclude)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ResolveAudience returns the matching contacts in insertion order.
func (s *Store) ResolveAudience(ctx context.Context, q store.AudienceQuery) ([]*domain.Contact, error) {
	where, args := audienceFilter(q)
	contacts, err := s.queryContacts(ctx,
		`SELECT `+contactColumns+` FROM contacts c`+where+` ORDER BY c.rowid ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("resolve audience: %w", err)
	}
	return contacts, nil
}

// CountAudience returns how many contacts ResolveAudience would return.
func (s *Store) CountAudience(ctx context.Context, q store.AudienceQuery) (int, error) {
	where, args := audienceFilter(q)
	var n int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts c`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count audience: %w", err)
	}
	return n, nil
}

package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/munazzamapp/munazzam-server/internal/domain"
	"github.com/munazzamapp/munazzam-server/internal/logger"
	"github.com/munazzamapp/munazzam-server/internal/store/sqlite"
)

// newTestStore opens a fresh SQLite database for one test.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// hasAllTags reports whether c carries every named tag.
func hasAllTags(c *domain.Contact, required []string) bool {
	have := make(map[string]struct{}, len(c.Tags))
	for _, t := range c.Tags {
		have[t.Name] = struct{}{}
	}
	for _, name := range required {
		if _, ok := have[name]; !ok {
			return false
		}
	}
	return true
}

// addContact creates a contact through the contact service.
func addContact(t *testing.T, svc *ContactService, name, phone string, tags ...string) *domain.Contact {
	t.Helper()
	c, err := svc.CreateContact(context.Background(), CreateContactRequest{Name: name, Phone: phone, Tags: tags})
	require.NoError(t, err)
	return c
}

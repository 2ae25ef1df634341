package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/munazzamapp/munazzam-server/internal/domain"
	"github.com/munazzamapp/munazzam-server/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustContact creates a contact carrying the named tags, creating tags as needed.
func mustContact(t *testing.T, s *Store, id, name, phone string, tags ...string) *domain.Contact {
	t.Helper()
	ctx := context.Background()

	c := &domain.Contact{ID: id, Name: name, Phone: phone, CreatedAt: time.Now()}
	for _, n := range tags {
		tag, _, err := s.FindOrCreateTag(ctx, n)
		if err != nil {
			t.Fatalf("FindOrCreateTag(%q): %v", n, err)
		}
		c.Tags = append(c.Tags, tag)
	}
	if err := s.CreateContact(ctx, c); err != nil {
		t.Fatalf("CreateContact(%q): %v", phone, err)
	}
	return c
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	tables := []string{
		"tags", "contacts", "contact_tags",
		"campaigns", "campaign_tags", "campaign_recipients",
		"message_templates",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpenClose(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// Re-open should work (schema is idempotent).
	s2, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("re-open store: %v", err)
	}
	s2.Close()
}

func TestInTx_RollbackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx store.Store) error {
		if _, _, err := tx.FindOrCreateTag(ctx, "transient"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, err := s.GetTagByName(ctx, "transient"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected tag to be rolled back, got %v", err)
	}
}

func TestInTx_Commit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.InTx(ctx, func(tx store.Store) error {
		// Nested InTx joins the outer transaction.
		return tx.InTx(ctx, func(inner store.Store) error {
			_, _, err := inner.FindOrCreateTag(ctx, "kept")
			return err
		})
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}

	if _, err := s.GetTagByName(ctx, "kept"); err != nil {
		t.Errorf("expected committed tag, got %v", err)
	}
}

package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/munazzamapp/munazzam-server/internal/domain"
	"github.com/munazzamapp/munazzam-server/internal/store"
)

func makeTestTemplate(id, name, body string) *domain.MessageTemplate {
	now := time.Now()
	return &domain.MessageTemplate{ID: id, Name: name, Body: body, CreatedAt: now, UpdatedAt: now}
}

func TestTemplateCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateTemplate(ctx, makeTestTemplate("tpl-1", "welcome", "Hi [NAME]")); err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	if err := s.CreateTemplate(ctx, makeTestTemplate("tpl-2", "welcome", "dup")); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
	if err := s.CreateTemplate(ctx, makeTestTemplate("tpl-3", "another", "x")); err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}

	list, err := s.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("ListTemplates: %v", err)
	}
	if len(list) != 2 || list[0].Name != "another" {
		t.Errorf("expected two templates ordered by name, got %d", len(list))
	}

	tpl, err := s.GetTemplate(ctx, "tpl-1")
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	tpl.Name = "another"
	if err := s.UpdateTemplate(ctx, tpl); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists on rename clash, got %v", err)
	}
	tpl.Name = "welcome-v2"
	tpl.Body = "Hello [NAME]"
	tpl.Touch()
	if err := s.UpdateTemplate(ctx, tpl); err != nil {
		t.Fatalf("UpdateTemplate: %v", err)
	}

	got, err := s.GetTemplateByName(ctx, "welcome-v2")
	if err != nil {
		t.Fatalf("GetTemplateByName: %v", err)
	}
	if got.Body != "Hello [NAME]" {
		t.Errorf("expected updated body, got %q", got.Body)
	}

	if err := s.DeleteTemplate(ctx, "tpl-1"); err != nil {
		t.Fatalf("DeleteTemplate: %v", err)
	}
	if err := s.DeleteTemplate(ctx, "tpl-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

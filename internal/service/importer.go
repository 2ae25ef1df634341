package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/munazzamapp/munazzam-server/internal/domain"
	"github.com/munazzamapp/munazzam-server/internal/id"
	"github.com/munazzamapp/munazzam-server/internal/sheet"
	"github.com/munazzamapp/munazzam-server/internal/store"
)

// ImportService bulk-loads contacts from spreadsheet files.
type ImportService struct {
	store  store.Store
	logger *slog.Logger
}

// NewImportService creates a new import service.
func NewImportService(store store.Store, logger *slog.Logger) *ImportService {
	return &ImportService{store: store, logger: logger}
}

// ImportFile imports a .xlsx or .csv file. Other extensions are rejected
// before the file is read.
func (s *ImportService) ImportFile(ctx context.Context, filename string, r io.Reader, tagNames []string) (*domain.ImportResult, error) {
	format, err := sheet.FormatFromFilename(filename)
	if err != nil {
		return nil, err
	}

	rows, err := sheet.ReadImportRows(r, format)
	if err != nil {
		return nil, err
	}

	result, err := s.ImportRows(ctx, rows, tagNames)
	if err != nil {
		return nil, err
	}

	s.logger.Info("contacts imported",
		"file", filename,
		"imported", result.Imported,
		"skipped", result.Skipped,
	)
	return result, nil
}

// ImportRows creates one contact per row whose phone is present and not yet
// known, tagging each with tagNames. Phones are checked against a snapshot
// taken at the start plus the phones imported earlier in the same run.
// Either every new contact is committed or none are.
func (s *ImportService) ImportRows(ctx context.Context, rows []domain.ImportRow, tagNames []string) (*domain.ImportResult, error) {
	result := &domain.ImportResult{}

	err := s.store.InTx(ctx, func(tx store.Store) error {
		tags, err := findOrCreateTags(ctx, tx, tagNames)
		if err != nil {
			return err
		}

		existing, err := tx.ListContactPhones(ctx)
		if err != nil {
			return fmt.Errorf("snapshot phones: %w", err)
		}
		seen := make(map[string]struct{}, len(existing)+len(rows))
		for _, p := range existing {
			seen[p] = struct{}{}
		}

		now := time.Now()
		for i, row := range rows {
			phone := domain.NormalizePhone(row.Phone)
			if phone == "" {
				result.Skipped++
				continue
			}
			if _, dup := seen[phone]; dup {
				result.Skipped++
				continue
			}

			contactID, err := id.Generate(id.PrefixContact)
			if err != nil {
				return err
			}
			c := &domain.Contact{
				ID:        contactID,
				Name:      domain.NormalizeName(row.Name),
				Phone:     phone,
				Source:    domain.NormalizeName(row.Source),
				CreatedAt: now,
				Tags:      tags,
			}
			if err := tx.CreateContact(ctx, c); err != nil {
				return fmt.Errorf("row %d: %w", i+2, err)
			}
			seen[phone] = struct{}{}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

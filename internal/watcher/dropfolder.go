package watcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/munazzamapp/munazzam-server/internal/domain"
)

// Subdirectories of the drop folder that receive handled files.
const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

// Importer runs a bulk contact import from a file.
type Importer interface {
	ImportFile(ctx context.Context, filename string, r io.Reader, tagNames []string) (*domain.ImportResult, error)
}

// DropFolder imports every spreadsheet that lands in a directory, then moves
// it into processed/ or failed/ so it is never imported twice.
type DropFolder struct {
	dir      string
	tags     []string
	importer Importer
	watcher  *Watcher
	logger   *slog.Logger
	now      func() time.Time
}

// NewDropFolder prepares dir and its processed/ and failed/ subdirectories.
func NewDropFolder(dir string, tags []string, importer Importer, logger *slog.Logger, opts Options) (*DropFolder, error) {
	for _, d := range []string{dir, filepath.Join(dir, ProcessedDir), filepath.Join(dir, FailedDir)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create drop folder: %w", err)
		}
	}

	w, err := New(logger, opts)
	if err != nil {
		return nil, err
	}
	if err := w.Watch(dir); err != nil {
		_ = w.Stop()
		return nil, err
	}

	return &DropFolder{
		dir:      dir,
		tags:     domain.NormalizeTagNames(tags),
		importer: importer,
		watcher:  w,
		logger:   logger.With("component", "drop_folder"),
		now:      time.Now,
	}, nil
}

// Run imports files already waiting in the folder, then imports each new file
// as it settles. It blocks until ctx is cancelled.
func (d *DropFolder) Run(ctx context.Context) error {
	go func() { _ = d.watcher.Start(ctx) }()

	if err := d.importExisting(ctx); err != nil {
		d.logger.Warn("failed to scan drop folder", "error", err)
	}

	d.logger.Info("watching drop folder", "dir", d.dir, "tags", d.tags)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-d.watcher.Events():
			if !ok {
				return nil
			}
			d.process(ctx, ev.Path)
		case err, ok := <-d.watcher.Errors():
			if !ok {
				return nil
			}
			d.logger.Warn("drop folder watch error", "error", err)
		}
	}
}

// Stop releases the underlying watcher.
func (d *DropFolder) Stop() error {
	return d.watcher.Stop()
}

func (d *DropFolder) importExisting(ctx context.Context) error {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || d.watcher.opts.shouldIgnore(e.Name()) {
			continue
		}
		d.process(ctx, filepath.Join(d.dir, e.Name()))
	}
	return nil
}

// process imports one file and moves it out of the way. A file that has
// already gone (moved by a previous event) is skipped.
func (d *DropFolder) process(ctx context.Context, path string) {
	result, err := d.importFile(ctx, path)
	if errors.Is(err, os.ErrNotExist) {
		return
	}

	dest := ProcessedDir
	if err != nil {
		dest = FailedDir
		d.logger.Error("drop folder import failed", "file", filepath.Base(path), "error", err)
	} else {
		d.logger.Info("drop folder import finished",
			"file", filepath.Base(path),
			"imported", result.Imported,
			"skipped", result.Skipped,
		)
	}

	if moveErr := d.move(path, dest); moveErr != nil {
		d.logger.Error("failed to move imported file", "file", path, "error", moveErr)
	}
}

func (d *DropFolder) importFile(ctx context.Context, path string) (*domain.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return d.importer.ImportFile(ctx, filepath.Base(path), f, d.tags)
}

// move renames path into sub, prefixing a timestamp when the name is taken.
func (d *DropFolder) move(path, sub string) error {
	name := filepath.Base(path)
	target := filepath.Join(d.dir, sub, name)
	if _, err := os.Stat(target); err == nil {
		target = filepath.Join(d.dir, sub, d.now().Format("20060102-150405")+"_"+name)
	}
	return os.Rename(path, target)
}

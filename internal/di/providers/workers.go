package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/munazzamapp/munazzam-server/internal/config"
	"github.com/munazzamapp/munazzam-server/internal/ratelimit"
	"github.com/munazzamapp/munazzam-server/internal/service"
	"github.com/munazzamapp/munazzam-server/internal/watcher"
)

// RateLimiterHandle wraps the export/import rate limiter with shutdown capability.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideRateLimiter provides the per-client limiter for file transfer endpoints.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return &RateLimiterHandle{
		KeyedRateLimiter: ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	}, nil
}

// DropFolderHandle wraps the drop-folder importer with shutdown capability.
// DropFolder is nil when no watch directory is configured.
type DropFolderHandle struct {
	*watcher.DropFolder
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *DropFolderHandle) Shutdown() error {
	if h.DropFolder == nil {
		return nil
	}
	h.cancel()
	return h.DropFolder.Stop()
}

// ProvideDropFolder starts the drop-folder importer when IMPORT_WATCH_DIR is set.
func ProvideDropFolder(i do.Injector) (*DropFolderHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	if cfg.Import.WatchDir == "" {
		log.Info("Drop folder disabled")
		return &DropFolderHandle{}, nil
	}

	importService := do.MustInvoke[*service.ImportService](i)

	folder, err := watcher.NewDropFolder(cfg.Import.WatchDir, cfg.Import.WatchTags, importService, log, watcher.Options{})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := folder.Run(ctx); err != nil {
			log.Error("Drop folder stopped", "error", err)
		}
	}()

	return &DropFolderHandle{DropFolder: folder, cancel: cancel}, nil
}

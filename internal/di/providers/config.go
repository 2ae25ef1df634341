// Package providers contains dependency injection providers for the Munazzam server.
package providers

import (
	"log/slog"
	"os"

	"github.com/samber/do/v2"

	"github.com/munazzamapp/munazzam-server/internal/config"
	"github.com/munazzamapp/munazzam-server/internal/logger"
)

// ProvideConfig provides the application configuration built from the
// command-line flags registered in the container.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	flags := do.MustInvoke[config.Flags](i)
	return config.LoadConfig(flags)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*slog.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
		NoColor:     os.Getenv("NO_COLOR") != "",
	})

	log.Debug("configuration loaded",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.Path,
		"export_format", cfg.Campaign.ExportFormat,
		"empty_audience_policy", cfg.Campaign.EmptyAudiencePolicy,
	)

	return log, nil
}

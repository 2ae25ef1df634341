// Package di provides dependency injection configuration for the Munazzam server.
package di

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/munazzamapp/munazzam-server/internal/config"
	"github.com/munazzamapp/munazzam-server/internal/di/providers"
	"github.com/munazzamapp/munazzam-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
// Providers are lazy: commands only pay for what they invoke.
func NewContainer(flags config.Flags) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, flags)

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Business services
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideContactService)
	do.Provide(injector, providers.ProvideAudienceService)
	do.Provide(injector, providers.ProvideCampaignService)
	do.Provide(injector, providers.ProvideTemplateService)
	do.Provide(injector, providers.ProvideImportService)

	// Workers
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideDropFolder)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes everything the serve command needs.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*slog.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*service.TagService](injector)
	_ = do.MustInvoke[*service.ContactService](injector)
	_ = do.MustInvoke[*service.AudienceService](injector)
	_ = do.MustInvoke[*service.CampaignService](injector)
	_ = do.MustInvoke[*service.TemplateService](injector)
	_ = do.MustInvoke[*service.ImportService](injector)

	if _, err := do.Invoke[*providers.DropFolderHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}

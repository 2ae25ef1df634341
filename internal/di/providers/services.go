package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/munazzamapp/munazzam-server/internal/config"
	"github.com/munazzamapp/munazzam-server/internal/service"
)

// ProvideTagService provides the tag directory.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewTagService(storeHandle.Store, log), nil
}

// ProvideContactService provides the contact service.
func ProvideContactService(i do.Injector) (*service.ContactService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewContactService(storeHandle.Store, log), nil
}

// ProvideAudienceService provides the audience resolver.
func ProvideAudienceService(i do.Injector) (*service.AudienceService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewAudienceService(storeHandle.Store), nil
}

// ProvideCampaignService provides the campaign export pipeline.
func ProvideCampaignService(i do.Injector) (*service.CampaignService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewCampaignService(storeHandle.Store, service.CampaignOptions{
		Placeholder:           cfg.Campaign.NamePlaceholder,
		RollbackEmptyAudience: cfg.Campaign.EmptyAudiencePolicy == config.PolicyRollback,
	}, log), nil
}

// ProvideTemplateService provides the message template service.
func ProvideTemplateService(i do.Injector) (*service.TemplateService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewTemplateService(storeHandle.Store, log), nil
}

// ProvideImportService provides the bulk importer.
func ProvideImportService(i do.Injector) (*service.ImportService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewImportService(storeHandle.Store, log), nil
}

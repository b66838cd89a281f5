package wizard_fx

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"dossier/internal/models/wizard_models"
	"dossier/internal/repositories"
	"dossier/internal/services"
	"dossier/internal/wizard/config"
	"dossier/pkg/utils"
)

var Module = fx.Options(
	fx.Provide(
		provideWizardConfiguration,
		provideWizardSettings,
		provideWizardService),
	fx.Invoke(startSessionSweeper))

func provideWizardConfiguration(logger *zap.Logger) (*wizard_models.WizardConfiguration, error) {
	path := utils.GetEnvWithDefault("WIZARD_CONFIG_PATH", "")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	source := path
	if source == "" {
		source = "embedded default"
	}
	logger.Info("wizard configuration loaded", zap.String("source", source), zap.Int("modules", len(cfg.Modules)))
	return cfg, nil
}

func provideWizardSettings() services.WizardSettings {
	return services.WizardSettings{
		SaveDebounce:  utils.GetEnvDuration("WIZARD_SAVE_DEBOUNCE", time.Second),
		SessionTTL:    utils.GetEnvDuration("WIZARD_SESSION_TTL", 30*time.Minute),
		SweepInterval: utils.GetEnvDuration("WIZARD_SWEEP_INTERVAL", time.Minute),
		AppBaseURL:    utils.GetEnvWithDefault("APP_BASE_URL", "http://localhost:3000"),
	}
}

type wizardParams struct {
	fx.In

	Config      *wizard_models.WizardConfiguration
	Client      utils.CompletionClientInterface
	Projects    services.ProjectServiceInterface
	ProjectRepo repositories.ProjectRepository
	StateRepo   repositories.WizardStateRepository
	AccountRepo repositories.AccountRepository
	Refs        services.ReferenceServiceInterface
	Mail        services.IMailService
	Settings    services.WizardSettings
	Logger      *zap.Logger
}

func provideWizardService(p wizardParams) services.WizardServiceInterface {
	return services.NewWizardService(services.WizardServiceDeps{
		Config:      p.Config,
		Client:      p.Client,
		Projects:    p.Projects,
		ProjectRepo: p.ProjectRepo,
		StateRepo:   p.StateRepo,
		AccountRepo: p.AccountRepo,
		Refs:        p.Refs,
		Mail:        p.Mail,
		Settings:    p.Settings,
		Logger:      p.Logger,
	})
}

// startSessionSweeper evicts idle sessions and flushes every session on stop.
func startSessionSweeper(lc fx.Lifecycle, svc services.WizardServiceInterface, settings services.WizardSettings, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				services.RunSweeper(ctx, svc, settings.SweepInterval, logger)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			<-done
			svc.Shutdown(stopCtx)
			return nil
		},
	})
}

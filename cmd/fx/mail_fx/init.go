package mail_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"dossier/internal/services"
	"dossier/pkg/utils"
)

var Module = fx.Provide(provideMailService)

func provideMailService(logger *zap.Logger) (services.IMailService, error) {
	host := utils.GetEnvWithDefault("SMTP_HOST", "")
	if host == "" {
		logger.Warn("SMTP_HOST not set, mails are only logged")
		return services.NewLogMailService(logger), nil
	}

	port := utils.GetEnvInt("SMTP_PORT", 587)
	from := utils.GetEnvWithDefault("SMTP_FROM", utils.GetEnvWithDefault("SMTP_USERNAME", ""))
	cfg := services.SMTPConfig{
		Host:       host,
		Port:       port,
		Username:   utils.GetEnvWithDefault("SMTP_USERNAME", ""),
		Password:   utils.GetEnvWithDefault("SMTP_PASSWORD", ""),
		From:       from,
		FromName:   utils.GetEnvWithDefault("SMTP_FROM_NAME", "Dossier"),
		UseSSL:     port == 465,
		RequireTLS: utils.GetEnvWithDefault("SMTP_REQUIRE_TLS", "true") == "true",

		AppName:    utils.GetEnvWithDefault("APP_NAME", "Dossier"),
		AppBaseURL: utils.GetEnvWithDefault("APP_BASE_URL", "http://localhost:3000"),
	}
	return services.NewSMTPMailService(cfg, logger)
}

package logger_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"dossier/pkg/utils"
)

var Module = fx.Provide(provideLogger)

func provideLogger(lc fx.Lifecycle) (*zap.Logger, error) {
	logger, err := utils.NewLogger(utils.LoggerConfig{
		File:  utils.GetEnvWithDefault("LOG_FILE", "logs/dossier.log"),
		Level: utils.GetEnvWithDefault("LOG_LEVEL", "info"),
	})
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = logger.Sync()
			return nil
		},
	})
	return logger, nil
}

package db_fx

import (
	"context"
	"errors"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dossier/internal/infra"
	"dossier/pkg/utils"
)

var Module = fx.Provide(provideDB)

func provideDB(lc fx.Lifecycle, logger *zap.Logger) (*gorm.DB, error) {
	dsn := utils.GetEnvWithDefault("POSTGRES_URL", "")
	if dsn == "" {
		return nil, errors.New("POSTGRES_URL is not set")
	}
	db, err := infra.InitPostgresql(dsn, logger)
	if err != nil {
		return nil, err
	}
	if err := infra.Migrate(db); err != nil {
		return nil, err
	}
	logger.Info("postgres connected and migrated")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			infra.ClosePostgresql(db, logger)
			return nil
		},
	})
	return db, nil
}

// Command dossierctl is the operator tool for the dossier service: it checks
// wizard configurations, migrates the database and manages account roles.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dossier/internal/infra"
	"dossier/internal/repositories"
	"dossier/pkg/utils"
)

func main() {
	if err := utils.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(utils.LoggerConfig{
		File:  utils.GetEnvWithDefault("LOG_FILE", "logs/dossierctl.log"),
		Level: utils.GetEnvWithDefault("LOG_LEVEL", "info"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := newRootCmd(postgresBackend(logger)).Execute(); err != nil {
		os.Exit(1)
	}
}

// postgresBackend opens POSTGRES_URL for every command that touches the database.
func postgresBackend(logger *zap.Logger) backend {
	return backend{
		migrate: func(ctx context.Context) error {
			db, err := openPostgres(logger)
			if err != nil {
				return err
			}
			defer infra.ClosePostgresql(db, logger)
			return infra.Migrate(db.WithContext(ctx))
		},
		accounts: func(ctx context.Context) (repositories.AccountRepository, func(), error) {
			db, err := openPostgres(logger)
			if err != nil {
				return nil, nil, err
			}
			return repositories.NewAccountRepository(db), func() { infra.ClosePostgresql(db, logger) }, nil
		},
	}
}

func openPostgres(logger *zap.Logger) (*gorm.DB, error) {
	dsn := utils.GetEnvWithDefault("POSTGRES_URL", "")
	if dsn == "" {
		return nil, errors.New("POSTGRES_URL is not set")
	}
	return infra.InitPostgresql(dsn, logger)
}

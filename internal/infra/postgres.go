package infra

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"dossier/internal/models/db_models"
)

func InitPostgresql(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	connectionPool, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Error("error connecting to database", zap.Error(err))
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return connectionPool, nil
}

// Migrate enables pgvector and creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("enable pgvector: %w", err)
	}
	return db.AutoMigrate(
		&db_models.Account{},
		&db_models.Project{},
		&db_models.WizardAnswer{},
		&db_models.ModuleState{},
		&db_models.Section{},
		&db_models.SectionEmbedding{},
		&db_models.Feedback{},
	)
}

func ClosePostgresql(db *gorm.DB, logger *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("error getting database instance", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("error closing database connection", zap.Error(err))
	} else {
		logger.Info("postgres connection closed")
	}
}

func StartTransaction(db *gorm.DB) *gorm.DB {
	return db.Begin()
}

// ReleaseTransaction commits tx when err is nil and rolls it back otherwise.
// It returns the commit error, if any.
func ReleaseTransaction(tx *gorm.DB, err error) error {
	if err != nil {
		if rollbackErr := tx.Rollback().Error; rollbackErr != nil {
			return fmt.Errorf("rollback after %v: %w", err, rollbackErr)
		}
		return err
	}
	return tx.Commit().Error
}

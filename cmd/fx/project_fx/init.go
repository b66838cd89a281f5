package project_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dossier/internal/repositories"
	"dossier/internal/services"
)

var Module = fx.Provide(
	provideProjectRepo,
	provideWizardStateRepo,
	provideProjectService)

func provideProjectRepo(db *gorm.DB) repositories.ProjectRepository {
	return repositories.NewProjectRepository(db)
}

func provideWizardStateRepo(db *gorm.DB) repositories.WizardStateRepository {
	return repositories.NewWizardStateRepository(db)
}

func provideProjectService(
	projectRepo repositories.ProjectRepository,
	stateRepo repositories.WizardStateRepository,
	logger *zap.Logger,
) services.ProjectServiceInterface {
	return services.NewProjectService(projectRepo, stateRepo, logger)
}

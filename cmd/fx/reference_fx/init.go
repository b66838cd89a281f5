package reference_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dossier/internal/repositories"
	"dossier/internal/services"
	"dossier/pkg/utils"
)

var Module = fx.Provide(
	provideSectionEmbeddingRepo,
	provideReferenceService)

func provideSectionEmbeddingRepo(db *gorm.DB) repositories.SectionEmbeddingRepository {
	return repositories.NewSectionEmbeddingRepository(db)
}

func provideReferenceService(
	embedder utils.EmbeddingClientInterface,
	repo repositories.SectionEmbeddingRepository,
	logger *zap.Logger,
) services.ReferenceServiceInterface {
	return services.NewReferenceService(embedder, repo, logger)
}

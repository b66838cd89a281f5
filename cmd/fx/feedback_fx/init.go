package feedback_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dossier/internal/api/controllers"
	"dossier/internal/models/wizard_models"
	"dossier/internal/repositories"
	"dossier/internal/services"
)

var Module = fx.Provide(
	provideFeedbackRepo, provideFeedbackService, provideFeedbackController,
)

func provideFeedbackRepo(db *gorm.DB) repositories.FeedbackRepository {
	return repositories.NewFeedbackRepository(db)
}

func provideFeedbackService(
	feedbackRepo repositories.FeedbackRepository,
	projects services.ProjectServiceInterface,
	config *wizard_models.WizardConfiguration,
	logger *zap.Logger,
) services.FeedbackServiceInterface {
	return services.NewFeedbackService(feedbackRepo, projects, config, logger)
}

func provideFeedbackController(feedbackService services.FeedbackServiceInterface) *controllers.FeedbackController {
	return controllers.NewFeedbackController(feedbackService)
}

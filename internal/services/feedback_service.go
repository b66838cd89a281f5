package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"dossier/internal/models/db_models"
	"dossier/internal/models/request_models"
	"dossier/internal/models/response_models"
	"dossier/internal/models/wizard_models"
	"dossier/internal/repositories"
	"dossier/pkg/utils"
)

type FeedbackServiceInterface interface {
	AddFeedback(ctx context.Context, ownerID, projectID string, req request_models.AddFeedbackRequest) error
	GetFeedback(ctx context.Context, req request_models.ListFeedbackRequest) (*response_models.FeedbackReport, error)
}

type FeedbackService struct {
	feedbackRepo repositories.FeedbackRepository
	projects     ProjectServiceInterface
	config       *wizard_models.WizardConfiguration
	logger       *zap.Logger
}

func NewFeedbackService(
	feedbackRepo repositories.FeedbackRepository,
	projects ProjectServiceInterface,
	config *wizard_models.WizardConfiguration,
	logger *zap.Logger,
) FeedbackServiceInterface {
	return &FeedbackService{feedbackRepo: feedbackRepo, projects: projects, config: config, logger: logger}
}

// AddFeedback records a rating for a module with an assembled section.
func (s *FeedbackService) AddFeedback(ctx context.Context, ownerID, projectID string, req request_models.AddFeedbackRequest) error {
	if req.Rating < 1 || req.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", utils.ErrInvalidInput)
	}
	module, ok := s.config.Module(req.ModuleID)
	if !ok || !module.HasAssemblePrompt {
		return fmt.Errorf("%w: module %q has no generated section", utils.ErrInvalidInput, req.ModuleID)
	}
	project, err := s.projects.GetProject(ctx, ownerID, projectID)
	if err != nil {
		return err
	}

	feedback := &db_models.Feedback{
		UserID:    project.OwnerID,
		ProjectID: project.ID,
		ModuleID:  module.ID,
		Comment:   strings.TrimSpace(req.Comment),
		Rating:    req.Rating,
	}
	if err := s.feedbackRepo.CreateFeedback(ctx, feedback); err != nil {
		s.logger.Error("save feedback", zap.String("project_id", projectID), zap.Error(err))
		return utils.ErrDatabaseError
	}
	return nil
}

// GetFeedback pages through feedback, optionally for one module, with the
// per-module averages over all feedback.
func (s *FeedbackService) GetFeedback(ctx context.Context, req request_models.ListFeedbackRequest) (*response_models.FeedbackReport, error) {
	if req.Page <= 0 {
		return nil, utils.ErrInvalidPage
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		return nil, utils.ErrInvalidPageSize
	}
	if req.Module != "" {
		if _, ok := s.config.Module(req.Module); !ok {
			return nil, fmt.Errorf("%w: unknown module %q", utils.ErrInvalidInput, req.Module)
		}
	}
	feedbacks, total, err := s.feedbackRepo.ListFeedback(ctx, req.Module, req.Page, req.PageSize)
	if err != nil {
		s.logger.Error("list feedback", zap.Error(err))
		return nil, utils.ErrDatabaseError
	}
	ratings, err := s.feedbackRepo.ModuleRatings(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	report := &response_models.FeedbackReport{
		Items:    make([]response_models.FeedbackResponse, 0, len(feedbacks)),
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Modules:  make([]response_models.ModuleRating, 0, len(ratings)),
	}
	for _, f := range feedbacks {
		report.Items = append(report.Items, response_models.FeedbackResponse{
			ID:        f.ID.String(),
			UserID:    f.UserID.String(),
			ProjectID: f.ProjectID.String(),
			ModuleID:  f.ModuleID,
			Rating:    f.Rating,
			Comment:   f.Comment,
			CreatedAt: f.CreatedAt,
		})
	}
	for _, r := range ratings {
		report.Modules = append(report.Modules, response_models.ModuleRating{ModuleID: r.ModuleID, Average: r.Average, Count: r.Count})
	}
	return report, nil
}

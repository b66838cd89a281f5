package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"dossier/internal/models/db_models"
	"dossier/internal/models/wizard_models"
	"dossier/internal/repositories"
	"dossier/pkg/utils"
)

const maxReferenceSections = 3

// ReferenceServiceInterface finds validated sections of other projects that
// read like the module being drafted, and indexes newly validated ones.
type ReferenceServiceInterface interface {
	SimilarSections(ctx context.Context, projectID, moduleID, text string) ([]string, error)
	IndexSection(ctx context.Context, project *db_models.Project, section wizard_models.Section) error
}

type ReferenceService struct {
	embedder utils.EmbeddingClientInterface
	repo     repositories.SectionEmbeddingRepository
	logger   *zap.Logger
}

func NewReferenceService(embedder utils.EmbeddingClientInterface, repo repositories.SectionEmbeddingRepository, logger *zap.Logger) ReferenceServiceInterface {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceService{
		embedder: embedder,
		repo:     repo,
		logger:   logger,
	}
}

func (r *ReferenceService) SimilarSections(ctx context.Context, projectID, moduleID, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	vector, err := r.embedder.GetEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed reference query: %w", err)
	}
	rows, err := r.repo.FindSimilar(ctx, vector, moduleID, projectID, maxReferenceSections)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if c := strings.TrimSpace(row.Content); c != "" {
			out = append(out, c)
		}
	}
	r.logger.Debug("reference sections found",
		zap.String("project_id", projectID),
		zap.String("module_id", moduleID),
		zap.Int("count", len(out)))
	return out, nil
}

func sectionKey(projectID, moduleID string) string {
	return projectID + ":" + moduleID
}

func (r *ReferenceService) IndexSection(ctx context.Context, project *db_models.Project, section wizard_models.Section) error {
	vector, err := r.embedder.GetEmbedding(ctx, section.Content)
	if err != nil {
		return fmt.Errorf("embed section %s: %w", section.ID, err)
	}
	projectID := project.ID.String()
	return r.repo.Upsert(ctx, db_models.SectionEmbedding{
		SectionID: sectionKey(projectID, section.ID),
		ProjectID: projectID,
		ModuleID:  section.ID,
		NeedType:  project.NeedType,
		Content:   section.Content,
		Tags:      project.Tags,
		Embedding: vector,
	})
}

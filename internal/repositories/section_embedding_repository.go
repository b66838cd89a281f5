package repositories

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dossier/internal/models/db_models"
)

// MinReferenceSimilarity is the cosine similarity a section must exceed to be used as a reference.
const MinReferenceSimilarity = 0.7

type SectionEmbeddingRepository interface {
	Upsert(ctx context.Context, embedding db_models.SectionEmbedding) error
	FindSimilar(ctx context.Context, vector pgvector.Vector, moduleID, excludeProjectID string, limit int) ([]db_models.SectionEmbedding, error)
}

type sectionEmbeddingRepository struct {
	db *gorm.DB
}

func NewSectionEmbeddingRepository(db *gorm.DB) SectionEmbeddingRepository {
	return &sectionEmbeddingRepository{db: db}
}

func (s *sectionEmbeddingRepository) Upsert(ctx context.Context, embedding db_models.SectionEmbedding) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "section_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "need_type", "tags", "embedding"}),
	}).Create(&embedding).Error
}

func (s *sectionEmbeddingRepository) FindSimilar(ctx context.Context, vector pgvector.Vector, moduleID, excludeProjectID string, limit int) ([]db_models.SectionEmbedding, error) {
	var results []db_models.SectionEmbedding

	query := `
        SELECT *
        FROM section_embeddings
        WHERE module_id = ?
          AND project_id <> ?
          AND (1 - (embedding <=> ?)) > ?
        ORDER BY embedding <=> ?
        LIMIT ?
    `
	err := s.db.WithContext(ctx).
		Raw(query, moduleID, excludeProjectID, vector, MinReferenceSimilarity, vector, limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

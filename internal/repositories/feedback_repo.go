package repositories

import (
	"context"

	"gorm.io/gorm"

	"dossier/internal/models/db_models"
)

// ModuleRatingRow is the aggregate of every rating left on one module.
type ModuleRatingRow struct {
	ModuleID string  `gorm:"column:module_id"`
	Average  float64 `gorm:"column:average"`
	Count    int64   `gorm:"column:count"`
}

type FeedbackRepository interface {
	CreateFeedback(ctx context.Context, feedback *db_models.Feedback) error
	// ListFeedback pages through feedback, newest first. moduleID "" matches every module.
	ListFeedback(ctx context.Context, moduleID string, page, pageSize int) ([]db_models.Feedback, int64, error)
	ModuleRatings(ctx context.Context) ([]ModuleRatingRow, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) CreateFeedback(ctx context.Context, feedback *db_models.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *feedbackRepository) ListFeedback(ctx context.Context, moduleID string, page, pageSize int) ([]db_models.Feedback, int64, error) {
	q := r.db.WithContext(ctx).Model(&db_models.Feedback{})
	if moduleID != "" {
		q = q.Where("module_id = ?", moduleID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []db_models.Feedback
	err := q.Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&items).Error
	return items, total, err
}

// ModuleRatings averages ratings per module, lowest first so weak prompts surface.
func (r *feedbackRepository) ModuleRatings(ctx context.Context) ([]ModuleRatingRow, error) {
	var rows []ModuleRatingRow
	err := r.db.WithContext(ctx).
		Model(&db_models.Feedback{}).
		Select("module_id, AVG(rating) AS average, COUNT(*) AS count").
		Group("module_id").
		Order("average ASC").
		Scan(&rows).Error
	return rows, err
}

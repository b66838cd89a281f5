package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"dossier/internal/models/db_models"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *db_models.Project) error
	FindByID(ctx context.Context, id string) (*db_models.Project, error)
	ListByOwner(ctx context.Context, ownerID string, page, pageSize int) ([]db_models.Project, int64, error)
	UpdateStatus(ctx context.Context, id string, status db_models.ProjectStatus) error
	MarkExportReady(ctx context.Context, id string) (bool, error)
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (p *projectRepository) Create(ctx context.Context, project *db_models.Project) error {
	return p.db.WithContext(ctx).Create(project).Error
}

func (p *projectRepository) FindByID(ctx context.Context, id string) (*db_models.Project, error) {
	var project db_models.Project
	err := p.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

func (p *projectRepository) ListByOwner(ctx context.Context, ownerID string, page, pageSize int) ([]db_models.Project, int64, error) {
	var (
		projects []db_models.Project
		total    int64
	)
	query := p.db.WithContext(ctx).Model(&db_models.Project{}).Where("owner_id = ?", ownerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("updated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (p *projectRepository) UpdateStatus(ctx context.Context, id string, status db_models.ProjectStatus) error {
	return p.db.WithContext(ctx).Model(&db_models.Project{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// MarkExportReady flags the project once; it reports whether this call changed it.
func (p *projectRepository) MarkExportReady(ctx context.Context, id string) (bool, error) {
	now := time.Now().Unix()
	res := p.db.WithContext(ctx).Model(&db_models.Project{}).
		Where("id = ? AND status <> ?", id, db_models.ProjectReadyForExport).
		Updates(map[string]any{
			"status":          db_models.ProjectReadyForExport,
			"export_ready_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

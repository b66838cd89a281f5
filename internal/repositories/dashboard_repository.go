package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbm "dossier/internal/models/db_models"
)

// DashboardRepository aggregates one buyer's dossiers for the dashboard.
type DashboardRepository interface {
	// Counts
	CountProjectsByStatus(ctx context.Context, ownerID uuid.UUID) ([]StatusCountRow, error)
	CountNewProjects(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (int64, error)
	CountExportReadyInPeriod(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (int64, error)
	CountValidatedSections(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// Time series
	NewProjectsSeries(ctx context.Context, ownerID uuid.UUID, start, end time.Time, interval, tz string) ([]BucketSum, error)
	ValidatedModulesSeries(ctx context.Context, ownerID uuid.UUID, start, end time.Time, interval, tz string) ([]BucketSum, error)

	// Mix
	NeedTypeMix(ctx context.Context, ownerID uuid.UUID) ([]NeedTypeRow, error)
	TopTags(ctx context.Context, ownerID uuid.UUID, start, end time.Time, limit int) ([]TagCountRow, error)

	RecentProjects(ctx context.Context, ownerID uuid.UUID, limit int) ([]dbm.Project, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

// ---------- Row helpers ----------
type BucketSum struct {
	Bucket time.Time `gorm:"column:bucket"`
	Sum    int64     `gorm:"column:sum"`
}

type StatusCountRow struct {
	Status string `gorm:"column:status"`
	Count  int64  `gorm:"column:count"`
}

type NeedTypeRow struct {
	NeedType string `gorm:"column:need_type"`
	Count    int64  `gorm:"column:count"`
}

type TagCountRow struct {
	Tag   string `gorm:"column:tag"`
	Count int64  `gorm:"column:count"`
}

// ---------- Helpers ----------

// dateTrunc buckets a column holding UNIX seconds, optionally in a timezone.
func dateTrunc(tz string, unixColumn string) string {
	if tz == "" {
		return "date_trunc(?, to_timestamp(" + unixColumn + "))"
	}
	return "date_trunc(?, timezone(?, to_timestamp(" + unixColumn + ")))"
}

func truncArgs(interval, tz string) []interface{} {
	if tz == "" {
		return []interface{}{interval}
	}
	return []interface{}{interval, tz}
}

func (r *dashboardRepository) owned(ctx context.Context, ownerID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&dbm.Project{}).Where("owner_id = ?", ownerID)
}

// ---------- Counts ----------
func (r *dashboardRepository) CountProjectsByStatus(ctx context.Context, ownerID uuid.UUID) ([]StatusCountRow, error) {
	var rows []StatusCountRow
	err := r.owned(ctx, ownerID).
		Select("status, COUNT(*) AS count").
		Group("status").
		Find(&rows).Error
	return rows, err
}

func (r *dashboardRepository) CountNewProjects(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (int64, error) {
	var n int64
	err := r.owned(ctx, ownerID).
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountExportReadyInPeriod(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (int64, error) {
	var n int64
	err := r.owned(ctx, ownerID).
		Where("export_ready_at IS NOT NULL AND export_ready_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountValidatedSections(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("sections s").
		Joins("JOIN projects p ON p.id = s.project_id").
		Where("p.owner_id = ? AND p.deleted_at IS NULL AND s.deleted_at IS NULL", ownerID).
		Count(&n).Error
	return n, err
}

// ---------- Series ----------
func (r *dashboardRepository) NewProjectsSeries(ctx context.Context, ownerID uuid.UUID, start, end time.Time, interval, tz string) ([]BucketSum, error) {
	var rows []BucketSum
	err := r.db.WithContext(ctx).
		Table("projects").
		Select(dateTrunc(tz, "created_at")+" AS bucket, COUNT(*) AS sum", truncArgs(interval, tz)...).
		Where("owner_id = ? AND deleted_at IS NULL", ownerID).
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("bucket").
		Order("bucket ASC").
		Find(&rows).Error
	return rows, err
}

func (r *dashboardRepository) ValidatedModulesSeries(ctx context.Context, ownerID uuid.UUID, start, end time.Time, interval, tz string) ([]BucketSum, error) {
	var rows []BucketSum
	err := r.db.WithContext(ctx).
		Table("module_states m").
		Select(dateTrunc(tz, "m.validated_at")+" AS bucket, COUNT(*) AS sum", truncArgs(interval, tz)...).
		Joins("JOIN projects p ON p.id = m.project_id").
		Where("p.owner_id = ? AND p.deleted_at IS NULL", ownerID).
		Where("m.validated AND m.validated_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("bucket").
		Order("bucket ASC").
		Find(&rows).Error
	return rows, err
}

// ---------- Mix ----------
func (r *dashboardRepository) NeedTypeMix(ctx context.Context, ownerID uuid.UUID) ([]NeedTypeRow, error) {
	var rows []NeedTypeRow
	err := r.owned(ctx, ownerID).
		Select("need_type, COUNT(*) AS count").
		Group("need_type").
		Order("count DESC").
		Find(&rows).Error
	return rows, err
}

func (r *dashboardRepository) TopTags(ctx context.Context, ownerID uuid.UUID, start, end time.Time, limit int) ([]TagCountRow, error) {
	var rows []TagCountRow
	err := r.db.WithContext(ctx).
		Table("projects, unnest(projects.tags) AS tag").
		Select("tag, COUNT(*) AS count").
		Where("projects.owner_id = ? AND projects.deleted_at IS NULL", ownerID).
		Where("projects.created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("tag").
		Order("count DESC, tag ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ---------- Recent ----------
func (r *dashboardRepository) RecentProjects(ctx context.Context, ownerID uuid.UUID, limit int) ([]dbm.Project, error) {
	var projects []dbm.Project
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&projects).Error
	return projects, err
}

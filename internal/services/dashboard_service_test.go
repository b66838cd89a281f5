package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbm "dossier/internal/models/db_models"
	resp "dossier/internal/models/response_models"
	"dossier/internal/repositories"
	"dossier/pkg/utils"
)

type fakeDashboardRepo struct {
	repositories.DashboardRepository
	owner    uuid.UUID
	interval string
	start    time.Time
	end      time.Time
}

func (f *fakeDashboardRepo) CountProjectsByStatus(ctx context.Context, ownerID uuid.UUID) ([]repositories.StatusCountRow, error) {
	f.owner = ownerID
	return []repositories.StatusCountRow{
		{Status: string(dbm.ProjectDraft), Count: 1},
		{Status: string(dbm.ProjectInProgress), Count: 2},
		{Status: string(dbm.ProjectReadyForExport), Count: 1},
		{Status: string(dbm.ProjectArchived), Count: 4},
	}, nil
}

func (f *fakeDashboardRepo) CountNewProjects(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (int64, error) {
	f.start, f.end = start, end
	return 3, nil
}

func (f *fakeDashboardRepo) CountExportReadyInPeriod(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (int64, error) {
	return 1, nil
}

func (f *fakeDashboardRepo) CountValidatedSections(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return 9, nil
}

func (f *fakeDashboardRepo) NewProjectsSeries(ctx context.Context, ownerID uuid.UUID, start, end time.Time, interval, tz string) ([]repositories.BucketSum, error) {
	f.interval = interval
	day := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	return []repositories.BucketSum{{Bucket: day, Sum: 2}, {Bucket: day.AddDate(0, 0, 1), Sum: 1}}, nil
}

func (f *fakeDashboardRepo) ValidatedModulesSeries(ctx context.Context, ownerID uuid.UUID, start, end time.Time, interval, tz string) ([]repositories.BucketSum, error) {
	return nil, nil
}

func (f *fakeDashboardRepo) NeedTypeMix(ctx context.Context, ownerID uuid.UUID) ([]repositories.NeedTypeRow, error) {
	return []repositories.NeedTypeRow{{NeedType: "services", Count: 3}, {NeedType: "works", Count: 1}}, nil
}

func (f *fakeDashboardRepo) TopTags(ctx context.Context, ownerID uuid.UUID, start, end time.Time, limit int) ([]repositories.TagCountRow, error) {
	return []repositories.TagCountRow{{Tag: "it", Count: 2}}, nil
}

func (f *fakeDashboardRepo) RecentProjects(ctx context.Context, ownerID uuid.UUID, limit int) ([]dbm.Project, error) {
	return []dbm.Project{{BaseModel: dbm.BaseModel{ID: uuid.New()}, Title: "Room booking", Status: dbm.ProjectInProgress}}, nil
}

func TestBuildDashboard(t *testing.T) {
	repo := &fakeDashboardRepo{}
	svc := NewDashboardService(repo)
	owner := uuid.New()

	report, err := svc.BuildDashboard(context.Background(), owner.String(), resp.TimeRange{})
	require.NoError(t, err)

	assert.Equal(t, owner, repo.owner)
	assert.Equal(t, "day", repo.interval)
	assert.Equal(t, 30*24*time.Hour, repo.end.Sub(repo.start))

	assert.Equal(t, int64(8), report.KPIs.TotalProjects)
	assert.Equal(t, int64(4), report.KPIs.ArchivedProjects)
	assert.InDelta(t, 25.0, report.KPIs.CompletionPct, 0.001)
	assert.Equal(t, int64(9), report.KPIs.ValidatedSections)

	assert.Equal(t, int64(3), report.NewProjects.Total)
	assert.Len(t, report.NewProjects.Points, 2)
	assert.Empty(t, report.ValidatedModules.Points)

	require.Len(t, report.NeedTypeMix, 2)
	assert.InDelta(t, 75.0, report.NeedTypeMix[0].Percent, 0.001)
	require.Len(t, report.RecentProjects, 1)
	assert.Equal(t, []string{}, report.RecentProjects[0].Tags)
}

func TestBuildDashboardSwapsReversedRange(t *testing.T) {
	repo := &fakeDashboardRepo{}
	svc := NewDashboardService(repo)
	later := time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)
	earlier := later.AddDate(0, 0, -3)

	report, err := svc.BuildDashboard(context.Background(), uuid.NewString(), resp.TimeRange{Start: later, End: earlier, Interval: "week"})
	require.NoError(t, err)
	assert.Equal(t, earlier, report.Range.Start)
	assert.Equal(t, later, report.Range.End)
	assert.Equal(t, "week", repo.interval)

	_, err = svc.BuildDashboard(context.Background(), "not-a-uuid", resp.TimeRange{})
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
}

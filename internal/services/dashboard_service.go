package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	dbm "dossier/internal/models/db_models"
	resp "dossier/internal/models/response_models"
	"dossier/internal/repositories"
	"dossier/pkg/utils"
)

const (
	dashboardTopTags        = 10
	dashboardRecentProjects = 5
)

type DashboardService interface {
	BuildDashboard(ctx context.Context, ownerID string, rng resp.TimeRange) (*resp.DashboardReport, error)
}

type dashboardService struct {
	repo repositories.DashboardRepository
}

func NewDashboardService(repo repositories.DashboardRepository) DashboardService {
	return &dashboardService{repo: repo}
}

// normalizeRange ensures sane defaults and ordering
func normalizeRange(r resp.TimeRange) resp.TimeRange {
	out := r
	if out.Interval == "" {
		out.Interval = "day"
	}
	if out.End.IsZero() {
		out.End = time.Now().UTC()
	}
	if out.Start.IsZero() {
		out.Start = out.End.AddDate(0, 0, -30)
	}
	if out.Start.After(out.End) {
		out.Start, out.End = out.End, out.Start
	}
	return out
}

func toCountSeries(rows []repositories.BucketSum) resp.CountSeries {
	series := resp.CountSeries{Points: make([]resp.SeriesPoint, 0, len(rows))}
	for _, r := range rows {
		series.Points = append(series.Points, resp.SeriesPoint{Bucket: r.Bucket, Value: r.Sum})
		series.Total += r.Sum
	}
	return series
}

func (s *dashboardService) BuildDashboard(ctx context.Context, ownerID string, rng resp.TimeRange) (*resp.DashboardReport, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, utils.ErrInvalidCredentials
	}
	rng = normalizeRange(rng)

	// ---------- Core counts ----------
	statusRows, err := s.repo.CountProjectsByStatus(ctx, owner)
	if err != nil {
		return nil, err
	}
	var kpis resp.KPIBlock
	for _, r := range statusRows {
		kpis.TotalProjects += r.Count
		switch dbm.ProjectStatus(r.Status) {
		case dbm.ProjectDraft:
			kpis.DraftProjects = r.Count
		case dbm.ProjectInProgress:
			kpis.InProgressProjects = r.Count
		case dbm.ProjectReadyForExport:
			kpis.ReadyForExportProjects = r.Count
		case dbm.ProjectArchived:
			kpis.ArchivedProjects = r.Count
		}
	}
	if active := kpis.TotalProjects - kpis.ArchivedProjects; active > 0 {
		kpis.CompletionPct = float64(kpis.ReadyForExportProjects) * 100.0 / float64(active)
	}

	if kpis.NewProjects, err = s.repo.CountNewProjects(ctx, owner, rng.Start, rng.End); err != nil {
		return nil, err
	}
	if kpis.ExportReadyInPeriod, err = s.repo.CountExportReadyInPeriod(ctx, owner, rng.Start, rng.End); err != nil {
		return nil, err
	}
	if kpis.ValidatedSections, err = s.repo.CountValidatedSections(ctx, owner); err != nil {
		return nil, err
	}

	// ---------- Series ----------
	newRows, err := s.repo.NewProjectsSeries(ctx, owner, rng.Start, rng.End, rng.Interval, rng.Timezone)
	if err != nil {
		return nil, err
	}
	validatedRows, err := s.repo.ValidatedModulesSeries(ctx, owner, rng.Start, rng.End, rng.Interval, rng.Timezone)
	if err != nil {
		return nil, err
	}

	// ---------- Need type mix ----------
	mixRows, err := s.repo.NeedTypeMix(ctx, owner)
	if err != nil {
		return nil, err
	}
	var mixTotal float64
	for _, r := range mixRows {
		mixTotal += float64(r.Count)
	}
	mix := make([]resp.NeedTypeMixItem, 0, len(mixRows))
	for _, r := range mixRows {
		var pct float64
		if mixTotal > 0 {
			pct = float64(r.Count) * 100.0 / mixTotal
		}
		mix = append(mix, resp.NeedTypeMixItem{NeedType: r.NeedType, Count: r.Count, Percent: pct})
	}

	// ---------- Tags ----------
	tagRows, err := s.repo.TopTags(ctx, owner, rng.Start, rng.End, dashboardTopTags)
	if err != nil {
		return nil, err
	}
	tags := make([]resp.TagCount, 0, len(tagRows))
	for _, r := range tagRows {
		tags = append(tags, resp.TagCount{Tag: r.Tag, Count: r.Count})
	}

	// ---------- Recent dossiers ----------
	projects, err := s.repo.RecentProjects(ctx, owner, dashboardRecentProjects)
	if err != nil {
		return nil, err
	}
	recent := make([]resp.ProjectResponse, 0, len(projects))
	for i := range projects {
		recent = append(recent, *toProjectResponse(&projects[i]))
	}

	return &resp.DashboardReport{
		Range:            rng,
		KPIs:             kpis,
		NewProjects:      toCountSeries(newRows),
		ValidatedModules: toCountSeries(validatedRows),
		NeedTypeMix:      mix,
		TopTags:          tags,
		RecentProjects:   recent,
	}, nil
}

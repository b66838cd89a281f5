package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"dossier/internal/models/db_models"
	"dossier/internal/models/request_models"
	"dossier/internal/models/response_models"
	"dossier/internal/models/wizard_models"
	"dossier/internal/repositories"
	"dossier/pkg/utils"
)

type ProjectServiceInterface interface {
	CreateProject(ctx context.Context, ownerID string, request request_models.CreateProjectRequest) (*response_models.ProjectResponse, error)
	GetProject(ctx context.Context, ownerID, projectID string) (*db_models.Project, error)
	GetProjectResponse(ctx context.Context, ownerID, projectID string) (*response_models.ProjectResponse, error)
	ListProjects(ctx context.Context, ownerID string, page, pageSize int) (*response_models.ProjectListResponse, error)
	ListSections(ctx context.Context, ownerID, projectID string) ([]response_models.SectionResponse, error)
	Export(ctx context.Context, ownerID, projectID string) (*response_models.ExportResponse, error)
}

type ProjectService struct {
	projectRepo repositories.ProjectRepository
	stateRepo   repositories.WizardStateRepository
	logger      *zap.Logger
}

func NewProjectService(projectRepo repositories.ProjectRepository, stateRepo repositories.WizardStateRepository, logger *zap.Logger) ProjectServiceInterface {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{
		projectRepo: projectRepo,
		stateRepo:   stateRepo,
		logger:      logger,
	}
}

// ProjectContext extracts the prompt-shaping attributes of a project.
func ProjectContext(p *db_models.Project) wizard_models.ProjectContext {
	urgency := wizard_models.Urgency(p.Urgency)
	if urgency == "" {
		urgency = wizard_models.UrgencyNormal
	}
	return wizard_models.ProjectContext{
		ProjectID: p.ID.String(),
		Title:     p.Title,
		NeedType:  wizard_models.NeedType(p.NeedType),
		Urgency:   urgency,
	}
}

func toProjectResponse(p *db_models.Project) *response_models.ProjectResponse {
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	return &response_models.ProjectResponse{
		ID:            p.ID.String(),
		Title:         p.Title,
		Description:   p.Description,
		NeedType:      p.NeedType,
		Urgency:       p.Urgency,
		Status:        string(p.Status),
		Tags:          tags,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		ExportReadyAt: p.ExportReadyAt,
	}
}

func cleanTags(tags []string) pq.StringArray {
	seen := make(map[string]bool, len(tags))
	out := make(pq.StringArray, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func (s *ProjectService) CreateProject(ctx context.Context, ownerID string, request request_models.CreateProjectRequest) (*response_models.ProjectResponse, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: owner id", utils.ErrInvalidInput)
	}
	urgency := request.Urgency
	if urgency == "" {
		urgency = string(wizard_models.UrgencyNormal)
	}
	project := &db_models.Project{
		OwnerID:     owner,
		Title:       strings.TrimSpace(request.Title),
		Description: strings.TrimSpace(request.Description),
		NeedType:    request.NeedType,
		Urgency:     urgency,
		Status:      db_models.ProjectDraft,
		Tags:        cleanTags(request.Tags),
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		s.logger.Error("create project", zap.Error(err))
		return nil, utils.ErrDatabaseError
	}
	return toProjectResponse(project), nil
}

// GetProject loads a project owned by ownerID.
func (s *ProjectService) GetProject(ctx context.Context, ownerID, projectID string) (*db_models.Project, error) {
	if _, err := uuid.Parse(projectID); err != nil {
		return nil, utils.ErrProjectNotFound
	}
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		s.logger.Error("find project", zap.String("project_id", projectID), zap.Error(err))
		return nil, utils.ErrDatabaseError
	}
	if project == nil {
		return nil, utils.ErrProjectNotFound
	}
	if project.OwnerID.String() != ownerID {
		return nil, utils.ErrForbidden
	}
	return project, nil
}

func (s *ProjectService) GetProjectResponse(ctx context.Context, ownerID, projectID string) (*response_models.ProjectResponse, error) {
	project, err := s.GetProject(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

func (s *ProjectService) ListProjects(ctx context.Context, ownerID string, page, pageSize int) (*response_models.ProjectListResponse, error) {
	if page <= 0 {
		return nil, utils.ErrInvalidPage
	}
	if pageSize <= 0 || pageSize > 100 {
		return nil, utils.ErrInvalidPageSize
	}
	projects, total, err := s.projectRepo.ListByOwner(ctx, ownerID, page, pageSize)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	items := make([]response_models.ProjectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, *toProjectResponse(&projects[i]))
	}
	return &response_models.ProjectListResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *ProjectService) ListSections(ctx context.Context, ownerID, projectID string) ([]response_models.SectionResponse, error) {
	if _, err := s.GetProject(ctx, ownerID, projectID); err != nil {
		return nil, err
	}
	sections, err := s.stateRepo.ListSections(ctx, projectID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	out := make([]response_models.SectionResponse, 0, len(sections))
	for _, sec := range sections {
		out = append(out, response_models.SectionResponse{
			ModuleID: sec.ModuleID,
			Title:    sec.Title,
			Content:  sec.Content,
			Position: sec.Position,
		})
	}
	return out, nil
}

var unsafeFilename = regexp.MustCompile(`[^a-z0-9]+`)

func exportFilename(title string) string {
	slug := strings.Trim(unsafeFilename.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if slug == "" {
		slug = "dossier"
	}
	return slug + ".md"
}

// RenderMarkdown lays the sections out in module order under the project title.
func RenderMarkdown(title string, sections []db_models.Section) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", title)
	for _, sec := range sections {
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", sec.Title, strings.TrimSpace(sec.Content))
	}
	return b.String()
}

// Export renders the dossier once every module is complete.
func (s *ProjectService) Export(ctx context.Context, ownerID, projectID string) (*response_models.ExportResponse, error) {
	project, err := s.GetProject(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	if project.Status != db_models.ProjectReadyForExport {
		return nil, utils.ErrExportNotReady
	}
	sections, err := s.stateRepo.ListSections(ctx, projectID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return &response_models.ExportResponse{
		ProjectID: projectID,
		Filename:  exportFilename(project.Title),
		Markdown:  RenderMarkdown(project.Title, sections),
	}, nil
}

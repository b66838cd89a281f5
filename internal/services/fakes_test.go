package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"dossier/internal/models/db_models"
	"dossier/internal/models/wizard_models"
	"dossier/pkg/utils"
)

// scriptedClient answers completions from a queue.
type scriptedClient struct {
	mu      sync.Mutex
	replies []string
	calls   int
}

func (s *scriptedClient) Complete(ctx context.Context, messages []wizard_models.ChatMessage, opts utils.CompletionOptions) (*utils.CompletionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.replies) == 0 {
		return nil, utils.ErrGenerationFailed
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return &utils.CompletionResult{Content: r, Provider: "scripted"}, nil
}

func (s *scriptedClient) ProviderName() string { return "scripted" }

type memProjectRepo struct {
	mu       sync.Mutex
	projects map[string]*db_models.Project
	statuses []db_models.ProjectStatus
}

func newMemProjectRepo(projects ...*db_models.Project) *memProjectRepo {
	r := &memProjectRepo{projects: make(map[string]*db_models.Project)}
	for _, p := range projects {
		r.projects[p.ID.String()] = p
	}
	return r
}

func (r *memProjectRepo) Create(ctx context.Context, project *db_models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	r.projects[project.ID.String()] = project
	return nil
}

func (r *memProjectRepo) FindByID(ctx context.Context, id string) (*db_models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProjectRepo) ListByOwner(ctx context.Context, ownerID string, page, pageSize int) ([]db_models.Project, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []db_models.Project
	for _, p := range r.projects {
		if p.OwnerID.String() == ownerID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memProjectRepo) UpdateStatus(ctx context.Context, id string, status db_models.ProjectStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.projects[id]; ok {
		p.Status = status
	}
	r.statuses = append(r.statuses, status)
	return nil
}

func (r *memProjectRepo) MarkExportReady(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok || p.Status == db_models.ProjectReadyForExport {
		return false, nil
	}
	p.Status = db_models.ProjectReadyForExport
	r.statuses = append(r.statuses, p.Status)
	return true, nil
}

func (r *memProjectRepo) status(id string) db_models.ProjectStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.projects[id].Status
}

type memStateRepo struct {
	mu        sync.Mutex
	answers   map[string][]wizard_models.Answer
	sections  map[string][]wizard_models.Section
	validated map[string]map[string]bool
}

func newMemStateRepo() *memStateRepo {
	return &memStateRepo{
		answers:   make(map[string][]wizard_models.Answer),
		sections:  make(map[string][]wizard_models.Section),
		validated: make(map[string]map[string]bool),
	}
}

func (r *memStateRepo) LoadState(ctx context.Context, projectID string) (*wizard_models.WizardState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	validated := make(map[string]bool)
	for k, v := range r.validated[projectID] {
		validated[k] = v
	}
	return &wizard_models.WizardState{
		Answers:          append([]wizard_models.Answer(nil), r.answers[projectID]...),
		ValidatedModules: validated,
		Sections:         append([]wizard_models.Section(nil), r.sections[projectID]...),
	}, nil
}

func (r *memStateRepo) SaveAnswer(ctx context.Context, projectID string, answer wizard_models.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.answers[projectID]
	for i, a := range list {
		if a.ModuleID == answer.ModuleID && a.QuestionID == answer.QuestionID {
			list[i] = answer
			return nil
		}
	}
	r.answers[projectID] = append(list, answer)
	return nil
}

func (r *memStateRepo) PersistSection(ctx context.Context, projectID string, section wizard_models.Section) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sections[projectID] = append(r.sections[projectID], section)
	if r.validated[projectID] == nil {
		r.validated[projectID] = make(map[string]bool)
	}
	r.validated[projectID][section.ID] = true
	return nil
}

func (r *memStateRepo) ListSections(ctx context.Context, projectID string) ([]db_models.Section, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []db_models.Section
	for _, s := range r.sections[projectID] {
		out = append(out, db_models.Section{ModuleID: s.ID, Title: s.Title, Content: s.Content, Position: s.Order})
	}
	return out, nil
}

func (r *memStateRepo) FindSection(ctx context.Context, projectID, moduleID string) (*db_models.Section, error) {
	sections, _ := r.ListSections(ctx, projectID)
	for _, s := range sections {
		if s.ModuleID == moduleID {
			return &s, nil
		}
	}
	return nil, nil
}

func (r *memStateRepo) answerCount(projectID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.answers[projectID])
}

type memAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*db_models.Account
}

func newMemAccountRepo(accounts ...*db_models.Account) *memAccountRepo {
	r := &memAccountRepo{accounts: make(map[string]*db_models.Account)}
	for _, a := range accounts {
		r.accounts[a.ID.String()] = a
	}
	return r
}

func (r *memAccountRepo) InsertTx(account *db_models.Account, ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	r.accounts[account.ID.String()] = account
	return nil
}

func (r *memAccountRepo) FindById(ctx context.Context, id string) (*db_models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *memAccountRepo) FindByEmail(ctx context.Context, email string) (*db_models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAccountRepo) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		a.PasswordHash = passwordHash
	}
	return nil
}

func (r *memAccountRepo) UpdateRole(ctx context.Context, id string, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		a.Role = role
	}
	return nil
}

type sentMail struct {
	kind, to, subject, body string
}

type recordingMail struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMail) SendExportReady(to, projectTitle, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: "export", to: to, subject: projectTitle, body: link})
	return nil
}

func (m *recordingMail) SendPasswordResetCode(to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: "reset", to: to, body: code})
	return nil
}

func (m *recordingMail) messages() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type memEmbeddingRepo struct {
	mu      sync.Mutex
	rows    map[string]db_models.SectionEmbedding
	queries []string
}

func newMemEmbeddingRepo() *memEmbeddingRepo {
	return &memEmbeddingRepo{rows: make(map[string]db_models.SectionEmbedding)}
}

func (r *memEmbeddingRepo) Upsert(ctx context.Context, embedding db_models.SectionEmbedding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[embedding.SectionID] = embedding
	return nil
}

// FindSimilar returns rows of the module from other projects, ignoring the vector.
func (r *memEmbeddingRepo) FindSimilar(ctx context.Context, vector pgvector.Vector, moduleID, excludeProjectID string, limit int) ([]db_models.SectionEmbedding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, moduleID)
	var out []db_models.SectionEmbedding
	for _, row := range r.rows {
		if row.ModuleID == moduleID && row.ProjectID != excludeProjectID && len(out) < limit {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *memEmbeddingRepo) get(sectionID string) (db_models.SectionEmbedding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[sectionID]
	return row, ok
}

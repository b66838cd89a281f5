package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"dossier/internal/models/db_models"
	"dossier/internal/models/response_models"
	"dossier/internal/models/wizard_models"
	"dossier/internal/repositories"
	"dossier/internal/wizard"
	mem "dossier/pkg/memcache"
	"dossier/pkg/utils"
)

type WizardSettings struct {
	SaveDebounce  time.Duration
	SessionTTL    time.Duration
	SweepInterval time.Duration
	AppBaseURL    string
}

// WizardServiceInterface exposes the guided wizard of a project. Every call
// checks ownership and works on the project's open session, opening it on
// first use. Calls that fail after producing a screen return both.
type WizardServiceInterface interface {
	View(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error)
	Answer(ctx context.Context, ownerID, projectID string, value wizard_models.AnswerValue) (*response_models.WizardView, error)
	Next(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error)
	Previous(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error)
	Jump(ctx context.Context, ownerID, projectID string, moduleIndex int) (*response_models.WizardView, error)
	SetAIPanel(ctx context.Context, ownerID, projectID string, open bool) (*response_models.WizardView, error)

	RequestChoices(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error)
	ToggleChoice(ctx context.Context, ownerID, projectID, choice string) (*response_models.WizardView, error)
	AssembleChoices(ctx context.Context, ownerID, projectID, freeText string) (*response_models.WizardView, error)
	ApplyChoices(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error)

	StartChat(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error)
	ReplyChat(ctx context.Context, ownerID, projectID, text string) (*response_models.WizardView, error)
	AcceptChat(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error)

	GenerateDraft(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error)
	RegenerateDraft(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error)
	BeginEditDraft(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error)
	EditDraft(ctx context.Context, ownerID, projectID, content string) (*response_models.WizardView, error)
	DiscardDraft(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error)
	ValidateDraft(ctx context.Context, ownerID, projectID, content string) (*response_models.WizardView, error)

	Progress(ctx context.Context, ownerID, projectID string) (*wizard.ProgressReport, error)
	ExitToDashboard(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error)

	Sweep() int
	Shutdown(ctx context.Context)
}

type wizardSession struct {
	nav     *wizard.Navigator
	project *db_models.Project
}

type WizardService struct {
	config      *wizard_models.WizardConfiguration
	client      utils.CompletionClientInterface
	projects    ProjectServiceInterface
	projectRepo repositories.ProjectRepository
	stateRepo   repositories.WizardStateRepository
	accountRepo repositories.AccountRepository
	refs        ReferenceServiceInterface
	mail        IMailService
	settings    WizardSettings
	sessions    *mem.TTLStore[*wizardSession]
	logger      *zap.Logger
}

type WizardServiceDeps struct {
	Config      *wizard_models.WizardConfiguration
	Client      utils.CompletionClientInterface
	Projects    ProjectServiceInterface
	ProjectRepo repositories.ProjectRepository
	StateRepo   repositories.WizardStateRepository
	AccountRepo repositories.AccountRepository
	Refs        ReferenceServiceInterface
	Mail        IMailService
	Settings    WizardSettings
	Logger      *zap.Logger
}

func NewWizardService(deps WizardServiceDeps) WizardServiceInterface {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := deps.Settings
	if settings.SessionTTL <= 0 {
		settings.SessionTTL = 30 * time.Minute
	}
	s := &WizardService{
		config:      deps.Config,
		client:      deps.Client,
		projects:    deps.Projects,
		projectRepo: deps.ProjectRepo,
		stateRepo:   deps.StateRepo,
		accountRepo: deps.AccountRepo,
		refs:        deps.Refs,
		mail:        deps.Mail,
		settings:    settings,
		sessions:    mem.NewTTLStore[*wizardSession](),
		logger:      logger,
	}
	s.sessions.OnEvict(s.closeSession)
	return s
}

func (s *WizardService) closeSession(projectID string, sess *wizardSession) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sess.nav.Close(ctx); err != nil {
		s.logger.Error("flush wizard session on close", zap.String("project_id", projectID), zap.Error(err))
		return
	}
	s.logger.Debug("wizard session closed", zap.String("project_id", projectID))
}

func (s *WizardService) draftReplaced(projectID string, previous, next wizard_models.Draft) {
	change := wizard.DiffDrafts(previous, next)
	s.logger.Info("draft replaced",
		zap.String("project_id", projectID),
		zap.String("module_id", next.ModuleID),
		zap.String("from", string(change.From)),
		zap.String("to", string(change.To)),
		zap.Int("inserted", change.Inserted),
		zap.Int("deleted", change.Deleted),
	)
}

// session returns the open navigator of a project owned by ownerID.
func (s *WizardService) session(ctx context.Context, ownerID, projectID string) (*wizardSession, error) {
	project, err := s.projects.GetProject(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	if sess, ok := s.sessions.Touch(projectID, s.settings.SessionTTL); ok {
		return sess, nil
	}

	var refs wizard.ReferenceProvider
	if s.refs != nil {
		refs = s.refs
	}
	nav, err := wizard.OpenNavigator(ctx, wizard.NavigatorDeps{
		ProjectID:    projectID,
		Project:      ProjectContext(project),
		Config:       s.config,
		Client:       s.client,
		States:       s.stateRepo,
		Refs:         refs,
		Events:       &projectEvents{svc: s, project: project},
		SaveDebounce: s.settings.SaveDebounce,
		Logger:       s.logger,
		OnDraftReplaced: func(previous, next wizard_models.Draft) {
			s.draftReplaced(projectID, previous, next)
		},
	})
	if err != nil {
		return nil, err
	}
	sess, stored := s.sessions.SetIfAbsent(projectID, &wizardSession{nav: nav, project: project}, s.settings.SessionTTL)
	if !stored {
		return sess, nil
	}
	if project.Status == db_models.ProjectDraft {
		if err := s.projectRepo.UpdateStatus(ctx, projectID, db_models.ProjectInProgress); err != nil {
			s.logger.Warn("mark project in progress", zap.String("project_id", projectID), zap.Error(err))
		}
	}
	s.logger.Info("wizard session opened", zap.String("project_id", projectID))
	return sess, nil
}

func (s *WizardService) view(sess *wizardSession, screen wizard.Screen, actionErr error) *response_models.WizardView {
	nav := sess.nav
	m := nav.CurrentModule()
	v := &response_models.WizardView{
		ProjectID: nav.ProjectID(),
		Screen:    screen,
		Module: response_models.ModuleView{
			ID:            m.ID,
			Title:         m.Title,
			Index:         screen.ModuleIndex,
			QuestionCount: len(m.Questions),
			Generated:     m.HasAssemblePrompt,
		},
		Progress: nav.Progress(),
	}
	if screen.Kind != wizard.ScreenWizardComplete && screen.Kind != wizard.ScreenDashboard {
		if q := nav.CurrentQuestion(); q.ID != "" {
			v.Question = &q
			if value, ok := nav.Store().Get(m.ID, q.ID); ok {
				v.Answer = &value
			}
			v.Guidance = nav.Guidance()
		}
		choices, chat := nav.Assist()
		if choices != nil {
			snap := choices.Snapshot()
			v.Choices = &snap
		}
		if chat != nil {
			snap := chat.Snapshot()
			v.Chat = &snap
		}
	}
	if asm, ok := nav.Assembler(m.ID); ok {
		snap := asm.Snapshot()
		v.Assembler = &snap
	}
	if actionErr != nil {
		v.Error = actionErr.Error()
	}
	return v
}

// act runs fn on the project's session and wraps the result in a view.
func (s *WizardService) act(ctx context.Context, ownerID, projectID string, fn func(nav *wizard.Navigator) (wizard.Screen, error)) (*response_models.WizardView, error) {
	sess, err := s.session(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	screen, err := fn(sess.nav)
	return s.view(sess, screen, err), err
}

func (s *WizardService) View(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error) {
	return s.act(ctx, ownerID, projectID, func(nav *wizard.Navigator) (wizard.Screen, error) {
		return nav.Screen(), nil
	})
}

func (s *WizardService) Answer(ctx context.Context, ownerID, projectID string, value wizard_models.AnswerValue) (*response_models.WizardView, error) {
	return s.act(ctx, ownerID, projectID, func(nav *wizard.Navigator) (wizard.Screen, error) {
		return nav.AnswerChanged(ctx, value)
	})
}

func (s *WizardService) Next(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error) {
	return s.act(ctx, ownerID, projectID, func(nav *wizard.Navigator) (wizard.Screen, error) {
		return nav.Next(ctx)
	})
}

func (s *WizardService) Previous(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error) {
	return s.act(ctx, ownerID, projectID, func(nav *wizard.Navigator) (wizard.Screen, error) {
		return nav.Previous(), nil
	})
}

func (s *WizardService) Jump(ctx context.Context, ownerID, projectID string, moduleIndex int) (*response_models.WizardView, error) {
	return s.act(ctx, ownerID, projectID, func(nav *wizard.Navigator) (wizard.Screen, error) {
		return nav.JumpToModule(moduleIndex)
	})
}

func (s *WizardService) SetAIPanel(ctx context.Context, ownerID, projectID string, open bool) (*response_models.WizardView, error) {
	return s.act(ctx, ownerID, projectID, func(nav *wizard.Navigator) (wizard.Screen, error) {
		return nav.SetAIPanel(open), nil
	})
}

func (s *WizardService) RequestChoices(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error) {
	return s.act(ctx, ownerID, projectID, func(nav *wizard.Navigator) (wizard.Screen, error) {
		engine, err := nav.Choices()
		if err != nil {
			return nav.Screen(), err
		}
		_, err = engine.RequestChoices(ctx)
		return nav.Screen(), err
	})
}

func (s *WizardService) ToggleChoice(ctx context.Context, ownerID, projectID, choice string) (*response_models.WizardView, error) {
	return s.act(ctx, ownerID, projectID, func(nav *wizard.Navigator) (wizard.Screen, error) {
		engine, err := nav.Choices()
		if err != nil {
			return nav.Screen(), err
		}
		_, err = engine.Toggle(choice)
		return nav.Screen(), err
	})
}

func (s *WizardService) AssembleChoices(ctx context.Context, ownerID, projectID, freeText string) (*response_models.WizardView, error) {
	return s.act(ctx, ownerID, projectID, func(nav *wizard.Navigator) (wizard.Screen, error) {
		engine, err := nav.Choices()
		if err != nil {
			return nav.Screen(), err
		}
		_, err = engine.Assemble(ctx, freeText)
		return nav.Screen(), err
	})
}

func (s *WizardService) ApplyChoices(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error) {
	return s.act(ctx, ownerID, projectID, func(nav *wizard.Navigator) (wizard.Screen, error) {
		return nav.ApplyGuidedText(ctx)
	})
}

func (s *WizardService) StartChat(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error) {
	return s.act(ctx, ownerID, projectID, func(nav *wizard.Navigator) (wizard.Screen, error) {
		chat, err := nav.Chat()
		if err != nil {
			return nav.Screen(), err
		}
		_, err = chat.Start(ctx)
		return nav.Screen(), err
	})
}

func (s *WizardService) ReplyChat(ctx context.Context, ownerID, projectID, text string) (*response_models.WizardView, error) {
	return s.act(ctx, ownerID, projectID, func(nav *wizard.Navigator) (wizard.Screen, error) {
		chat, err := nav.Chat()
		if err != nil {
			return nav.Screen(), err
		}
		_, err = chat.Reply(ctx, text)
		return nav.Screen(), err
	})
}

func (s *WizardService) AcceptChat(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error) {
	return s.act(ctx, ownerID, projectID, func(nav *wizard.Navigator) (wizard.Screen, error) {
		return nav.AcceptChat(ctx)
	})
}

func (s *WizardService) GenerateDraft(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error) {
	return s.act(ctx, ownerID, projectID, func(nav *wizard.Navigator) (wizard.Screen, error) {
		return nav.GenerateDraft(ctx)
	})
}

func (s *WizardService) RegenerateDraft(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error) {
	return s.act(ctx, ownerID, projectID, func(nav *wizard.Navigator) (wizard.Screen, error) {
		return nav.Regenerate(ctx)
	})
}

func (s *WizardService) BeginEditDraft(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error) {
	return s.act(ctx, ownerID, projectID, func(nav *wizard.Navigator) (wizard.Screen, error) {
		return nav.BeginEditDraft()
	})
}

func (s *WizardService) EditDraft(ctx context.Context, ownerID, projectID, content string) (*response_models.WizardView, error) {
	return s.act(ctx, ownerID, projectID, func(nav *wizard.Navigator) (wizard.Screen, error) {
		return nav.EditDraft(content)
	})
}

func (s *WizardService) DiscardDraft(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error) {
	return s.act(ctx, ownerID, projectID, func(nav *wizard.Navigator) (wizard.Screen, error) {
		return nav.DiscardDraft()
	})
}

// ValidateDraft accepts the draft and indexes the resulting section as a
// style reference for other projects. Indexing failures are only logged.
func (s *WizardService) ValidateDraft(ctx context.Context, ownerID, projectID, content string) (*response_models.WizardView, error) {
	sess, err := s.session(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	screen, section, err := sess.nav.ValidateDraft(ctx, content)
	if err == nil && section != nil && s.refs != nil {
		if ierr := s.refs.IndexSection(ctx, sess.project, *section); ierr != nil {
			s.logger.Warn("index validated section",
				zap.String("project_id", projectID),
				zap.String("module_id", section.ID),
				zap.Error(ierr))
		}
	}
	return s.view(sess, screen, err), err
}

func (s *WizardService) Progress(ctx context.Context, ownerID, projectID string) (*wizard.ProgressReport, error) {
	sess, err := s.session(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	report := sess.nav.Progress()
	return &report, nil
}

// ExitToDashboard flushes the session, then closes it.
func (s *WizardService) ExitToDashboard(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error) {
	sess, err := s.session(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	screen, err := sess.nav.ExitToDashboard(ctx)
	view := s.view(sess, screen, err)
	if err == nil {
		s.sessions.Delete(projectID)
	}
	return view, err
}

// Sweep closes sessions idle for longer than the session TTL.
func (s *WizardService) Sweep() int {
	return s.sessions.Sweep()
}

// Shutdown flushes and closes every open session.
func (s *WizardService) Shutdown(ctx context.Context) {
	for _, projectID := range s.sessions.Keys() {
		if ctx.Err() != nil {
			s.logger.Warn("shutdown interrupted, sessions left open", zap.Int("remaining", s.sessions.Len()))
			return
		}
		s.sessions.Delete(projectID)
	}
}

// RunSweeper evicts idle sessions until ctx is done.
func RunSweeper(ctx context.Context, svc WizardServiceInterface, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := svc.Sweep(); n > 0 {
				logger.Info("idle wizard sessions closed", zap.Int("count", n))
			}
		}
	}
}

// projectEvents receives the wizard's shell signals for one project.
type projectEvents struct {
	svc     *WizardService
	project *db_models.Project
}

func (e *projectEvents) OnExportEnabled(projectID string) {
	s := e.svc
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changed, err := s.projectRepo.MarkExportReady(ctx, projectID)
	if err != nil {
		s.logger.Error("mark project ready for export", zap.String("project_id", projectID), zap.Error(err))
		return
	}
	s.logger.Info("dossier ready for export", zap.String("project_id", projectID), zap.Bool("changed", changed))
	if !changed || s.mail == nil || s.accountRepo == nil {
		return
	}

	ownerID := e.project.OwnerID.String()
	title := e.project.Title
	link := fmt.Sprintf("%s/projects/%s", strings.TrimRight(s.settings.AppBaseURL, "/"), projectID)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		owner, err := s.accountRepo.FindById(ctx, ownerID)
		if err != nil || owner == nil {
			s.logger.Warn("export mail skipped, owner not found", zap.String("project_id", projectID), zap.Error(err))
			return
		}
		if err := s.mail.SendExportReady(owner.Email, title, link); err != nil {
			s.logger.Error("send export mail", zap.String("project_id", projectID), zap.Error(err))
		}
	}()
}

func (e *projectEvents) OnSwitchToDashboard(projectID string) {
	e.svc.logger.Info("wizard left for dashboard", zap.String("project_id", projectID))
}

package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dossier/internal/models/wizard_models"
	"dossier/pkg/utils"

	"go.uber.org/zap"
)

type ScreenKind string

const (
	ScreenSameQuestion      ScreenKind = "same_question"
	ScreenNextQuestion      ScreenKind = "next_question"
	ScreenPreviousQuestion  ScreenKind = "previous_question"
	ScreenGenerationPending ScreenKind = "generation_pending"
	ScreenNextModule        ScreenKind = "next_module"
	ScreenPreviousModule    ScreenKind = "previous_module"
	ScreenWizardComplete    ScreenKind = "wizard_complete"
	ScreenDashboard         ScreenKind = "dashboard"
)

const (
	BlockedRequiredUnsatisfied = "required_unsatisfied"
	BlockedBusy                = "busy"
	BlockedAtStart             = "at_start"
)

const (
	NoticeIncompleteModules     = "incomplete_modules"
	NoticeProviderNotConfigured = "provider_not_configured"
	NoticeGenerationFailed      = "generation_failed"
)

// Screen describes where the wizard stands after an action.
type Screen struct {
	Kind          ScreenKind           `json:"kind"`
	ModuleIndex   int                  `json:"module_index"`
	QuestionIndex int                  `json:"question_index"`
	ModuleID      string               `json:"module_id,omitempty"`
	QuestionID    string               `json:"question_id,omitempty"`
	Blocked       string               `json:"blocked,omitempty"`
	Notice        string               `json:"notice,omitempty"`
	Draft         *wizard_models.Draft `json:"draft,omitempty"`
	AIPanelOpen   bool                 `json:"ai_panel_open"`
	Progress      int                  `json:"progress"`
}

type ProgressReport struct {
	Modules []wizard_models.ModuleProgress `json:"modules"`
	Overall int                            `json:"overall"`
	Export  bool                           `json:"export_enabled"`
}

type NavigatorDeps struct {
	ProjectID    string
	Project      wizard_models.ProjectContext
	Config       *wizard_models.WizardConfiguration
	Client       utils.CompletionClientInterface
	States       StateStore
	Refs         ReferenceProvider
	Events       ShellEvents
	SaveDebounce time.Duration
	Logger       *zap.Logger
	// OnDraftReplaced is installed on every generated module's assembler.
	OnDraftReplaced func(previous, next wizard_models.Draft)
}

// Navigator owns the position inside the wizard for one project and routes
// every user action to the store, the choice engine, chat or the assembler.
type Navigator struct {
	projectID string
	project   wizard_models.ProjectContext
	config    *wizard_models.WizardConfiguration
	client    utils.CompletionClientInterface
	store     *AnswerStore
	ledger    *ValidationLedger
	progress  *ProgressCalculator
	events    ShellEvents
	logger    *zap.Logger

	assemblers map[string]*ContentAssembler

	mu          sync.Mutex
	moduleIdx   int
	questionIdx int
	complete    bool
	aiPanel     bool
	choices     *ChoicesEngine
	chat        *ChatSession
	exportFired bool
}

// OpenNavigator loads the persisted state of a project and positions the
// wizard on the first incomplete module.
func OpenNavigator(ctx context.Context, deps NavigatorDeps) (*Navigator, error) {
	if deps.Config == nil || len(deps.Config.Modules) == 0 {
		return nil, fmt.Errorf("%w: no modules", wizard_models.ErrInvalidConfiguration)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	events := deps.Events
	if events == nil {
		events = noopEvents{}
	}

	var state *wizard_models.WizardState
	if deps.States != nil {
		loaded, err := deps.States.LoadState(ctx, deps.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("load wizard state: %w", err)
		}
		state = loaded
	}
	if state == nil {
		state = &wizard_models.WizardState{}
	}

	var saver AnswerSaver
	if deps.States != nil {
		saver = deps.States
	}
	store := NewAnswerStore(deps.ProjectID, deps.Config, saver, deps.SaveDebounce, logger)
	store.Hydrate(state.Answers)
	ledger := NewValidationLedger(state.ValidatedModules)

	n := &Navigator{
		projectID:  deps.ProjectID,
		project:    deps.Project,
		config:     deps.Config,
		client:     deps.Client,
		store:      store,
		ledger:     ledger,
		progress:   NewProgressCalculator(deps.Config, store, ledger),
		events:     events,
		logger:     logger.With(zap.String("project_id", deps.ProjectID)),
		assemblers: make(map[string]*ContentAssembler),
	}

	for i, m := range deps.Config.Modules {
		if !m.HasAssemblePrompt {
			continue
		}
		n.assemblers[m.ID] = NewContentAssembler(m, i, AssemblerDeps{
			ProjectID: deps.ProjectID,
			Project:   deps.Project,
			Client:    deps.Client,
			Store:     store,
			Sections:  deps.States,
			Refs:      deps.Refs,
			Ledger:    ledger,
			Logger:    n.logger,
			IsCurrent: n.isCurrentModule,
		})
		n.assemblers[m.ID].OnDraftReplaced = deps.OnDraftReplaced
	}

	if idx := n.progress.FirstIncomplete(); idx >= 0 {
		n.moduleIdx = idx
	} else {
		n.complete = true
		n.exportFired = true
	}
	n.resetQuestionScopedLocked()
	return n, nil
}

func (n *Navigator) ProjectID() string { return n.projectID }

func (n *Navigator) Config() *wizard_models.WizardConfiguration { return n.config }

func (n *Navigator) Store() *AnswerStore { return n.store }

func (n *Navigator) isCurrentModule(moduleID string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return !n.complete && n.config.Modules[n.moduleIdx].ID == moduleID
}

func (n *Navigator) currentLocked() (wizard_models.Module, wizard_models.Question) {
	m := n.config.Modules[n.moduleIdx]
	if len(m.Questions) == 0 {
		return m, wizard_models.Question{}
	}
	return m, m.Questions[n.questionIdx]
}

// Position returns the current module and question indexes.
func (n *Navigator) Position() (moduleIdx, questionIdx int, complete bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.moduleIdx, n.questionIdx, n.complete
}

func (n *Navigator) CurrentModule() wizard_models.Module {
	n.mu.Lock()
	defer n.mu.Unlock()
	m, _ := n.currentLocked()
	return m
}

func (n *Navigator) CurrentQuestion() wizard_models.Question {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, q := n.currentLocked()
	return q
}

// Assembler returns the draft lifecycle of a generated module.
func (n *Navigator) Assembler(moduleID string) (*ContentAssembler, bool) {
	a, ok := n.assemblers[moduleID]
	return a, ok
}

func (n *Navigator) screenLocked(kind ScreenKind) Screen {
	m, q := n.currentLocked()
	return Screen{
		Kind:          kind,
		ModuleIndex:   n.moduleIdx,
		QuestionIndex: n.questionIdx,
		ModuleID:      m.ID,
		QuestionID:    q.ID,
		AIPanelOpen:   n.aiPanel,
		Progress:      n.progress.OverallProgress(),
	}
}

// Screen reports the current position without changing it.
func (n *Navigator) Screen() Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.complete {
		return n.screenLocked(ScreenWizardComplete)
	}
	s := n.screenLocked(ScreenSameQuestion)
	if a, ok := n.assemblers[s.ModuleID]; ok {
		s.Draft = a.Snapshot().Draft
	}
	return s
}

func (n *Navigator) resetQuestionScopedLocked() {
	n.choices = nil
	n.chat = nil
	_, q := n.currentLocked()
	n.aiPanel = q.ShowAIByDefault
}

// fireExport emits OnExportEnabled the first time overall progress is 100.
func (n *Navigator) fireExport() {
	n.mu.Lock()
	fire := !n.exportFired && n.progress.OverallProgress() == 100
	if fire {
		n.exportFired = true
	}
	n.mu.Unlock()
	if fire {
		n.logger.Info("dossier ready for export")
		n.events.OnExportEnabled(n.projectID)
	}
}

// AnswerChanged stores value for the current question. Position is unchanged.
func (n *Navigator) AnswerChanged(ctx context.Context, value wizard_models.AnswerValue) (Screen, error) {
	n.mu.Lock()
	if n.complete {
		s := n.screenLocked(ScreenWizardComplete)
		n.mu.Unlock()
		return s, ErrWizardComplete
	}
	m, q := n.currentLocked()
	n.mu.Unlock()

	if err := n.store.Set(ctx, m.ID, q.ID, q.Label, value); err != nil {
		n.mu.Lock()
		s := n.screenLocked(ScreenSameQuestion)
		n.mu.Unlock()
		return s, err
	}
	n.fireExport()

	n.mu.Lock()
	defer n.mu.Unlock()
	s := n.screenLocked(ScreenSameQuestion)
	if !n.store.IsQuestionSatisfied(m.ID, q) {
		s.Blocked = BlockedRequiredUnsatisfied
	}
	return s, nil
}

// CanGoNext reports whether Next would leave the current question.
func (n *Navigator) CanGoNext() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.canGoNextLocked() == ""
}

func (n *Navigator) canGoNextLocked() string {
	m, q := n.currentLocked()
	if a, ok := n.assemblers[m.ID]; ok && a.Busy() {
		return BlockedBusy
	}
	if n.choices != nil && n.choices.Snapshot().Requesting {
		return BlockedBusy
	}
	if n.chat != nil && n.chat.Snapshot().Busy {
		return BlockedBusy
	}
	if len(m.Questions) > 0 && !n.store.IsQuestionSatisfied(m.ID, q) {
		return BlockedRequiredUnsatisfied
	}
	return ""
}

// Next advances the wizard. A blocked move is reported on the screen, not
// as an error. On the last question of a generated module the draft is
// produced and the screen waits for validation.
func (n *Navigator) Next(ctx context.Context) (Screen, error) {
	n.mu.Lock()
	if n.complete {
		s := n.screenLocked(ScreenWizardComplete)
		n.mu.Unlock()
		return s, nil
	}
	if reason := n.canGoNextLocked(); reason != "" {
		s := n.screenLocked(ScreenSameQuestion)
		s.Blocked = reason
		n.mu.Unlock()
		return s, nil
	}

	m, _ := n.currentLocked()
	if n.questionIdx < len(m.Questions)-1 {
		n.questionIdx++
		n.resetQuestionScopedLocked()
		s := n.screenLocked(ScreenNextQuestion)
		n.mu.Unlock()
		return s, nil
	}

	asm, generated := n.assemblers[m.ID]
	if !generated || asm.State() == AssemblerValidated {
		s := n.advanceModuleLocked()
		n.mu.Unlock()
		n.fireExport()
		return s, nil
	}

	n.mu.Unlock()
	return n.draftOrGenerate(ctx, asm)
}

// GenerateDraft produces the current module's draft without moving. Every
// required question must be satisfied first.
func (n *Navigator) GenerateDraft(ctx context.Context) (Screen, error) {
	asm, err := n.currentAssembler()
	if err != nil {
		return n.Screen(), err
	}
	return n.draftOrGenerate(ctx, asm)
}

func (n *Navigator) draftOrGenerate(ctx context.Context, asm *ContentAssembler) (Screen, error) {
	n.mu.Lock()
	m, _ := n.currentLocked()
	for i, q := range m.Questions {
		if !n.store.IsQuestionSatisfied(m.ID, q) {
			n.questionIdx = i
			n.resetQuestionScopedLocked()
			s := n.screenLocked(ScreenSameQuestion)
			s.Blocked = BlockedRequiredUnsatisfied
			n.mu.Unlock()
			return s, nil
		}
	}
	n.mu.Unlock()

	if snap := asm.Snapshot(); snap.Draft != nil {
		return n.pendingScreen(snap.Draft, ""), nil
	}
	return n.generate(ctx, asm, asm.Generate)
}

func (n *Navigator) generate(ctx context.Context, asm *ContentAssembler, run func(context.Context) (*wizard_models.Draft, error)) (Screen, error) {
	draft, err := run(ctx)
	switch {
	case err == nil:
		return n.pendingScreen(draft, ""), nil
	case errors.Is(err, utils.ErrNotConfigured):
		fallback, ferr := asm.FallbackDraft()
		if ferr != nil {
			return n.pendingScreen(nil, NoticeProviderNotConfigured), ferr
		}
		n.logger.Info("provider not configured, using answers-only draft",
			zap.String("module_id", asm.ModuleID()))
		return n.pendingScreen(fallback, NoticeProviderNotConfigured), nil
	case errors.Is(err, ErrStaleGeneration):
		return n.Screen(), err
	default:
		n.logger.Warn("draft generation failed",
			zap.String("module_id", asm.ModuleID()),
			zap.Error(err))
		return n.pendingScreen(asm.Snapshot().Draft, NoticeGenerationFailed), err
	}
}

func (n *Navigator) pendingScreen(draft *wizard_models.Draft, notice string) Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	s := n.screenLocked(ScreenGenerationPending)
	s.Draft = draft
	s.Notice = notice
	return s
}

func (n *Navigator) advanceModuleLocked() Screen {
	if n.moduleIdx < len(n.config.Modules)-1 {
		n.moduleIdx++
		n.questionIdx = 0
		n.resetQuestionScopedLocked()
		return n.screenLocked(ScreenNextModule)
	}
	if n.progress.AllCompleted() {
		n.complete = true
		n.choices = nil
		n.chat = nil
		n.aiPanel = false
		return n.screenLocked(ScreenWizardComplete)
	}
	n.moduleIdx = n.progress.FirstIncomplete()
	n.questionIdx = 0
	n.resetQuestionScopedLocked()
	s := n.screenLocked(ScreenNextModule)
	s.Notice = NoticeIncompleteModules
	return s
}

// Previous steps back one question, crossing into the previous module's
// last question when needed. It is blocked on the very first question.
func (n *Navigator) Previous() Screen {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.complete {
		n.complete = false
		n.moduleIdx = len(n.config.Modules) - 1
		n.questionIdx = lastQuestion(n.config.Modules[n.moduleIdx])
		n.resetQuestionScopedLocked()
		return n.screenLocked(ScreenPreviousModule)
	}
	if n.moduleIdx == 0 && n.questionIdx == 0 {
		s := n.screenLocked(ScreenSameQuestion)
		s.Blocked = BlockedAtStart
		return s
	}
	if n.questionIdx > 0 {
		n.questionIdx--
		n.resetQuestionScopedLocked()
		return n.screenLocked(ScreenPreviousQuestion)
	}
	n.moduleIdx--
	n.questionIdx = lastQuestion(n.config.Modules[n.moduleIdx])
	n.resetQuestionScopedLocked()
	return n.screenLocked(ScreenPreviousModule)
}

func lastQuestion(m wizard_models.Module) int {
	if len(m.Questions) == 0 {
		return 0
	}
	return len(m.Questions) - 1
}

// JumpToModule moves to the first question of any module. Skipping
// incomplete modules is allowed; export stays gated by progress.
func (n *Navigator) JumpToModule(idx int) (Screen, error) {
	n.mu.Lock()
	if idx < 0 || idx >= len(n.config.Modules) {
		s := n.screenLocked(ScreenSameQuestion)
		n.mu.Unlock()
		return s, fmt.Errorf("%w: index %d", ErrUnknownModule, idx)
	}
	leaving := n.config.Modules[n.moduleIdx].ID
	changed := n.complete || idx != n.moduleIdx
	n.complete = false
	n.moduleIdx = idx
	n.questionIdx = 0
	n.resetQuestionScopedLocked()
	s := n.screenLocked(ScreenNextModule)
	n.mu.Unlock()

	if changed {
		if a, ok := n.assemblers[leaving]; ok {
			a.Invalidate()
		}
	}
	if a, ok := n.assemblers[s.ModuleID]; ok {
		s.Draft = a.Snapshot().Draft
	}
	return s, nil
}

func (n *Navigator) currentAssembler() (*ContentAssembler, error) {
	n.mu.Lock()
	m, _ := n.currentLocked()
	complete := n.complete
	n.mu.Unlock()
	if complete {
		return nil, ErrWizardComplete
	}
	a, ok := n.assemblers[m.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoGenerationStep, m.ID)
	}
	return a, nil
}

// ValidateDraft accepts the current module's draft as finalContent and
// moves on to the next module.
func (n *Navigator) ValidateDraft(ctx context.Context, finalContent string) (Screen, *wizard_models.Section, error) {
	asm, err := n.currentAssembler()
	if err != nil {
		return n.Screen(), nil, err
	}
	section, err := asm.Validate(ctx, finalContent)
	if err != nil {
		return n.Screen(), nil, err
	}

	n.mu.Lock()
	var s Screen
	if n.isCurrentModuleLocked(asm.ModuleID()) {
		s = n.advanceModuleLocked()
	} else {
		s = n.screenLocked(ScreenSameQuestion)
	}
	n.mu.Unlock()
	n.fireExport()
	return s, section, nil
}

func (n *Navigator) isCurrentModuleLocked(moduleID string) bool {
	return !n.complete && n.config.Modules[n.moduleIdx].ID == moduleID
}

// Regenerate replaces the draft of the current module.
func (n *Navigator) Regenerate(ctx context.Context) (Screen, error) {
	asm, err := n.currentAssembler()
	if err != nil {
		return n.Screen(), err
	}
	return n.generate(ctx, asm, asm.Regenerate)
}

// BeginEditDraft opens the current module's draft for editing.
func (n *Navigator) BeginEditDraft() (Screen, error) {
	asm, err := n.currentAssembler()
	if err != nil {
		return n.Screen(), err
	}
	if err := asm.BeginEdit(); err != nil {
		return n.Screen(), err
	}
	return n.pendingScreen(asm.Snapshot().Draft, ""), nil
}

// EditDraft replaces the draft text with the user's version. A draft not yet
// opened for editing is opened first.
func (n *Navigator) EditDraft(content string) (Screen, error) {
	asm, err := n.currentAssembler()
	if err != nil {
		return n.Screen(), err
	}
	if asm.State() != AssemblerEditing {
		if err := asm.BeginEdit(); err != nil {
			return n.Screen(), err
		}
	}
	draft, err := asm.SaveEdit(content)
	if err != nil {
		return n.Screen(), err
	}
	return n.pendingScreen(draft, ""), nil
}

// DiscardDraft closes the draft and returns to the module's last question.
func (n *Navigator) DiscardDraft() (Screen, error) {
	asm, err := n.currentAssembler()
	if err != nil {
		return n.Screen(), err
	}
	asm.Discard()
	return n.Screen(), nil
}

// SetAIPanel opens or closes the assistance panel of the current question.
func (n *Navigator) SetAIPanel(open bool) Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.aiPanel = open
	return n.screenLocked(ScreenSameQuestion)
}

// Choices returns the guided-choices engine of the current question. The
// engine is dropped whenever the question changes.
func (n *Navigator) Choices() (*ChoicesEngine, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.complete {
		return nil, ErrWizardComplete
	}
	m, q := n.currentLocked()
	if err := assistable(m, q); err != nil {
		return nil, err
	}
	if n.choices == nil {
		n.choices = NewChoicesEngine(n.client, m, q, n.project, n.priorFor(m.ID, q.ID), n.logger)
	}
	return n.choices, nil
}

// Chat returns the free-form conversation of the current question.
func (n *Navigator) Chat() (*ChatSession, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.complete {
		return nil, ErrWizardComplete
	}
	m, q := n.currentLocked()
	if err := assistable(m, q); err != nil {
		return nil, err
	}
	if n.chat == nil {
		n.chat = NewChatSession(n.client, m, q, n.project, &n.config.Guidance, n.priorFor(m.ID, q.ID), n.logger)
	}
	return n.chat, nil
}

// assistable rejects questions whose answer cannot be the prose that guided
// choices and chat produce.
func assistable(m wizard_models.Module, q wizard_models.Question) error {
	if q.ID == "" {
		return fmt.Errorf("%w: module %s has no questions", ErrUnknownQuestion, m.ID)
	}
	switch q.Type {
	case wizard_models.QuestionText, wizard_models.QuestionTextarea, wizard_models.QuestionSelectOrText:
		return nil
	}
	return fmt.Errorf("%w: %s/%s is a %s question", ErrAssistUnsupported, m.ID, q.ID, q.Type)
}

// Assist returns the choices engine and conversation already opened on the
// current question, without creating either.
func (n *Navigator) Assist() (*ChoicesEngine, *ChatSession) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.choices, n.chat
}

// Guidance resolves the guidance text of the current question.
func (n *Navigator) Guidance() wizard_models.Guidance {
	n.mu.Lock()
	defer n.mu.Unlock()
	m, q := n.currentLocked()
	return n.config.Guidance.Resolve(m.ID, q.ID, n.project.NeedType)
}

func (n *Navigator) priorFor(moduleID, questionID string) func() []wizard_models.Answer {
	return func() []wizard_models.Answer {
		return n.store.AnswersBefore(moduleID, questionID)
	}
}

// ApplyGuidedText stores the assembled choice text as the answer, closes
// the assistance panel and advances.
func (n *Navigator) ApplyGuidedText(ctx context.Context) (Screen, error) {
	n.mu.Lock()
	engine := n.choices
	n.mu.Unlock()
	if engine == nil {
		return n.Screen(), ErrNoGeneratedText
	}
	text, ok := engine.GeneratedText()
	if !ok {
		return n.Screen(), ErrNoGeneratedText
	}
	return n.applyText(ctx, engine.QuestionID(), text)
}

// AcceptChat stores the conversation's integrated text as the answer and advances.
func (n *Navigator) AcceptChat(ctx context.Context) (Screen, error) {
	n.mu.Lock()
	session := n.chat
	n.mu.Unlock()
	if session == nil {
		return n.Screen(), ErrNoActiveChat
	}
	text := session.IntegratedText()
	if text == "" {
		return n.Screen(), ErrEmptyContent
	}
	return n.applyText(ctx, session.QuestionID(), text)
}

func (n *Navigator) applyText(ctx context.Context, questionID, text string) (Screen, error) {
	n.mu.Lock()
	m, q := n.currentLocked()
	if n.complete || q.ID != questionID {
		s := n.screenLocked(ScreenSameQuestion)
		n.mu.Unlock()
		return s, ErrStaleGeneration
	}
	n.mu.Unlock()

	if err := n.store.Set(ctx, m.ID, q.ID, q.Label, wizard_models.TextValue(text)); err != nil {
		return n.Screen(), err
	}

	n.mu.Lock()
	n.aiPanel = false
	n.mu.Unlock()
	n.fireExport()
	return n.Next(ctx)
}

// ExitToDashboard flushes pending answers and signals the shell.
func (n *Navigator) ExitToDashboard(ctx context.Context) (Screen, error) {
	if err := n.store.Flush(ctx); err != nil {
		return n.Screen(), err
	}
	n.events.OnSwitchToDashboard(n.projectID)
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.screenLocked(ScreenDashboard), nil
}

func (n *Navigator) Progress() ProgressReport {
	overall := n.progress.OverallProgress()
	return ProgressReport{
		Modules: n.progress.All(),
		Overall: overall,
		Export:  overall == 100,
	}
}

// Close flushes pending answers; the navigator must not be used afterwards.
func (n *Navigator) Close(ctx context.Context) error {
	return n.store.Flush(ctx)
}

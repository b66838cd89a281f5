package wizard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"dossier/internal/models/wizard_models"
	"dossier/internal/prompts"
	"dossier/pkg/utils"

	"go.uber.org/zap"
)

type AssemblerState string

const (
	AssemblerAnswering  AssemblerState = "answering"
	AssemblerAwaitSave  AssemblerState = "awaiting_pending_save"
	AssemblerGenerating AssemblerState = "generating"
	AssemblerDraftReady AssemblerState = "draft_ready"
	AssemblerEditing    AssemblerState = "editing"
	AssemblerValidated  AssemblerState = "validated"
	AssemblerFailed     AssemblerState = "failed"
)

type AssemblerSnapshot struct {
	ModuleID   string               `json:"module_id"`
	State      AssemblerState       `json:"state"`
	Draft      *wizard_models.Draft `json:"draft,omitempty"`
	LastChange *DraftChange         `json:"last_change,omitempty"`
	LastError  string               `json:"last_error,omitempty"`
}

// ContentAssembler drives the draft lifecycle of one generated module.
type ContentAssembler struct {
	projectID string
	module    wizard_models.Module
	order     int
	project   wizard_models.ProjectContext
	client    utils.CompletionClientInterface
	store     *AnswerStore
	sections  StateStore
	refs      ReferenceProvider
	ledger    *ValidationLedger
	logger    *zap.Logger

	// isCurrent reports whether the navigator still shows this module.
	isCurrent func(moduleID string) bool
	// OnDraftReplaced is called, outside the lock, when a regeneration or a
	// saved edit replaces an existing draft.
	OnDraftReplaced func(previous, next wizard_models.Draft)

	mu       sync.Mutex
	state    AssemblerState
	draft    *wizard_models.Draft
	change   *DraftChange
	epoch    uint64
	inFlight bool
	lastErr  error
}

type AssemblerDeps struct {
	ProjectID string
	Project   wizard_models.ProjectContext
	Client    utils.CompletionClientInterface
	Store     *AnswerStore
	Sections  StateStore
	Refs      ReferenceProvider
	Ledger    *ValidationLedger
	Logger    *zap.Logger
	IsCurrent func(moduleID string) bool
}

func NewContentAssembler(module wizard_models.Module, order int, deps AssemblerDeps) *ContentAssembler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	isCurrent := deps.IsCurrent
	if isCurrent == nil {
		isCurrent = func(string) bool { return true }
	}
	state := AssemblerAnswering
	if deps.Ledger != nil && deps.Ledger.IsValidated(module.ID) {
		state = AssemblerValidated
	}
	return &ContentAssembler{
		projectID: deps.ProjectID,
		module:    module,
		order:     order,
		project:   deps.Project,
		client:    deps.Client,
		store:     deps.Store,
		sections:  deps.Sections,
		refs:      deps.Refs,
		ledger:    deps.Ledger,
		logger:    logger.With(zap.String("module_id", module.ID)),
		isCurrent: isCurrent,
		state:     state,
	}
}

func (a *ContentAssembler) ModuleID() string { return a.module.ID }

func (a *ContentAssembler) Snapshot() AssemblerSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	snap := AssemblerSnapshot{ModuleID: a.module.ID, State: a.state}
	if a.draft != nil {
		d := *a.draft
		snap.Draft = &d
	}
	if a.change != nil {
		c := *a.change
		snap.LastChange = &c
	}
	if a.lastErr != nil {
		snap.LastError = a.lastErr.Error()
	}
	return snap
}

func (a *ContentAssembler) State() AssemblerState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *ContentAssembler) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inFlight
}

// Invalidate makes any in-flight generation result stale.
func (a *ContentAssembler) Invalidate() {
	a.mu.Lock()
	a.epoch++
	a.mu.Unlock()
}

// Generate produces the first draft from every answer of the module.
func (a *ContentAssembler) Generate(ctx context.Context) (*wizard_models.Draft, error) {
	return a.run(ctx, wizard_models.OriginInitial)
}

// Regenerate replaces the current draft. It is rejected while another
// generation for this module is in flight; on failure the previous draft stays.
func (a *ContentAssembler) Regenerate(ctx context.Context) (*wizard_models.Draft, error) {
	return a.run(ctx, wizard_models.OriginRegenerated)
}

func (a *ContentAssembler) run(ctx context.Context, origin wizard_models.DraftOrigin) (*wizard_models.Draft, error) {
	if !utils.IsConfigured(a.client) {
		return nil, utils.ErrNotConfigured
	}

	a.mu.Lock()
	if a.inFlight {
		a.mu.Unlock()
		return nil, ErrGenerationInProgress
	}
	a.inFlight = true
	a.epoch++
	epoch := a.epoch
	a.state = AssemblerAwaitSave
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.inFlight = false
		a.mu.Unlock()
	}()

	if err := a.store.Flush(ctx); err != nil {
		a.settleFailure(fmt.Errorf("flush answers before generation: %w", err))
		return nil, a.lastError()
	}

	a.mu.Lock()
	a.state = AssemblerGenerating
	a.mu.Unlock()

	answers := a.store.AllForModule(a.module.ID)
	var references []string
	if a.refs != nil {
		refs, err := a.refs.SimilarSections(ctx, a.projectID, a.module.ID, prompts.FormatAnswers(answers))
		if err != nil {
			a.logger.Warn("reference lookup failed", zap.Error(err))
		} else {
			references = refs
		}
	}

	prompt := prompts.BuildModuleDraftPrompt(prompts.DraftInput{
		Module:     a.module,
		Project:    a.project,
		Answers:    answers,
		References: references,
	})

	var parsed struct {
		Content string `json:"content"`
	}
	err := completeJSON(ctx, a.client, prompt, &parsed, func() error {
		if strings.TrimSpace(parsed.Content) == "" {
			return fmt.Errorf("%w: empty content", utils.ErrMalformedResponse)
		}
		return nil
	}, a.logger)

	current := a.isCurrent(a.module.ID)
	a.mu.Lock()
	if epoch != a.epoch || !current {
		a.restoreAfterStaleLocked()
		a.mu.Unlock()
		a.logger.Info("discarding stale generation result")
		return nil, ErrStaleGeneration
	}
	a.mu.Unlock()

	if err != nil {
		a.settleFailure(err)
		return nil, err
	}

	a.mu.Lock()
	previous := a.draft
	if previous != nil && origin == wizard_models.OriginInitial {
		origin = wizard_models.OriginRegenerated
	}
	next := &wizard_models.Draft{
		ModuleID: a.module.ID,
		Content:  strings.TrimSpace(parsed.Content),
		Origin:   origin,
	}
	a.draft = next
	a.change = nil
	if previous != nil {
		a.change = DiffDrafts(*previous, *next)
	}
	a.state = AssemblerDraftReady
	a.lastErr = nil
	hook := a.OnDraftReplaced
	a.mu.Unlock()

	if previous != nil && hook != nil {
		hook(*previous, *next)
	}
	d := *next
	return &d, nil
}

func (a *ContentAssembler) restoreAfterStaleLocked() {
	switch {
	case a.draft != nil:
		a.state = AssemblerDraftReady
	case a.ledger != nil && a.ledger.IsValidated(a.module.ID):
		a.state = AssemblerValidated
	default:
		a.state = AssemblerAnswering
	}
}

func (a *ContentAssembler) settleFailure(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastErr = err
	if a.draft != nil {
		a.state = AssemblerDraftReady
		return
	}
	a.state = AssemblerFailed
}

func (a *ContentAssembler) lastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// FallbackDraft builds an answers-only draft when no provider can be used.
func (a *ContentAssembler) FallbackDraft() (*wizard_models.Draft, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inFlight {
		return nil, ErrGenerationInProgress
	}

	var b strings.Builder
	for _, ans := range a.store.AllForModule(a.module.ID) {
		value := prompts.FormatAnswerValue(ans.Value)
		if value == "" {
			continue
		}
		fmt.Fprintf(&b, "%s\n%s\n\n", ans.QuestionLabel, value)
	}
	a.draft = &wizard_models.Draft{
		ModuleID: a.module.ID,
		Content:  strings.TrimSpace(b.String()),
		Origin:   wizard_models.OriginAnswersOnly,
	}
	a.change = nil
	a.state = AssemblerDraftReady
	d := *a.draft
	return &d, nil
}

// BeginEdit switches a ready draft into editing.
func (a *ContentAssembler) BeginEdit() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.draft == nil || (a.state != AssemblerDraftReady && a.state != AssemblerEditing) {
		return ErrNoDraft
	}
	a.state = AssemblerEditing
	return nil
}

// SaveEdit replaces the draft content with the user's text. The draft must
// be in editing (see BeginEdit); on success it is ready again.
func (a *ContentAssembler) SaveEdit(content string) (*wizard_models.Draft, error) {
	a.mu.Lock()
	if a.inFlight {
		a.mu.Unlock()
		return nil, ErrGenerationInProgress
	}
	if a.draft == nil {
		a.mu.Unlock()
		return nil, ErrNoDraft
	}
	if a.state != AssemblerEditing {
		a.mu.Unlock()
		return nil, ErrNotEditing
	}
	if strings.TrimSpace(content) == "" {
		a.mu.Unlock()
		return nil, ErrEmptyContent
	}
	previous := *a.draft
	edited := wizard_models.Draft{ModuleID: a.module.ID, Content: content, Origin: wizard_models.OriginEdited}
	a.change = DiffDrafts(previous, edited)
	a.draft = &edited
	a.state = AssemblerDraftReady
	hook := a.OnDraftReplaced
	a.mu.Unlock()

	if hook != nil {
		hook(previous, edited)
	}
	return &edited, nil
}

// Discard drops the draft. Answers are untouched so the draft can be rebuilt.
func (a *ContentAssembler) Discard() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.draft = nil
	a.change = nil
	a.lastErr = nil
	if a.ledger != nil && a.ledger.IsValidated(a.module.ID) {
		a.state = AssemblerValidated
		return
	}
	a.state = AssemblerAnswering
}

// Validate accepts finalContent, persists it as the module's section and
// records the acceptance. It is the only way a generated module completes.
func (a *ContentAssembler) Validate(ctx context.Context, finalContent string) (*wizard_models.Section, error) {
	a.mu.Lock()
	if a.inFlight {
		a.mu.Unlock()
		return nil, ErrGenerationInProgress
	}
	if a.draft == nil || (a.state != AssemblerDraftReady && a.state != AssemblerEditing) {
		a.mu.Unlock()
		return nil, ErrNoDraft
	}
	content := strings.TrimSpace(finalContent)
	if content == "" {
		a.mu.Unlock()
		return nil, ErrEmptyContent
	}
	// Held across the persist so a regeneration cannot start underneath it.
	a.inFlight = true
	a.mu.Unlock()

	section := wizard_models.Section{
		ID:      a.module.ID,
		Title:   a.module.Title,
		Content: content,
		Order:   a.order,
	}
	if a.sections != nil {
		if err := a.sections.PersistSection(ctx, a.projectID, section); err != nil {
			a.mu.Lock()
			a.inFlight = false
			a.mu.Unlock()
			return nil, fmt.Errorf("persist section %s: %w", a.module.ID, err)
		}
	}

	a.mu.Lock()
	a.inFlight = false
	a.draft = nil
	a.change = nil
	a.lastErr = nil
	a.state = AssemblerValidated
	a.mu.Unlock()
	if a.ledger != nil {
		a.ledger.MarkValidated(a.module.ID)
	}
	return &section, nil
}

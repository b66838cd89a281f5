package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"dossier/internal/models/db_models"
	"dossier/internal/models/wizard_models"
	"dossier/internal/wizard"
	"dossier/pkg/utils"
)

func serviceTestConfig() *wizard_models.WizardConfiguration {
	return &wizard_models.WizardConfiguration{
		Modules: []wizard_models.Module{
			{
				ID:    "context",
				Title: "Context",
				Questions: []wizard_models.Question{
					{ID: "situation", Label: "Current situation", Type: wizard_models.QuestionTextarea, Required: true},
				},
			},
			{
				ID:                "description",
				Title:             "Description of the need",
				HasAssemblePrompt: true,
				Questions: []wizard_models.Question{
					{ID: "objective", Label: "Objective", Type: wizard_models.QuestionText, Required: true},
				},
			},
		},
	}
}

type wizardFixture struct {
	svc      WizardServiceInterface
	projects *memProjectRepo
	states   *memStateRepo
	mail     *recordingMail
	embeds   *memEmbeddingRepo
	client   *scriptedClient
	logs     *observer.ObservedLogs
	owner    string
	id       string
}

func newWizardFixture(t *testing.T, ttl time.Duration) *wizardFixture {
	t.Helper()
	owner := &db_models.Account{BaseModel: db_models.BaseModel{ID: uuid.New()}, Email: "buyer@example.org"}
	project := &db_models.Project{
		BaseModel: db_models.BaseModel{ID: uuid.New()},
		OwnerID:   owner.ID,
		Title:     "Room booking",
		NeedType:  "services",
		Urgency:   "normal",
		Status:    db_models.ProjectDraft,
	}
	core, logs := observer.New(zap.InfoLevel)
	f := &wizardFixture{
		logs:     logs,
		projects: newMemProjectRepo(project),
		states:   newMemStateRepo(),
		mail:     &recordingMail{},
		embeds:   newMemEmbeddingRepo(),
		client:   &scriptedClient{},
		owner:    owner.ID.String(),
		id:       project.ID.String(),
	}
	f.svc = NewWizardService(WizardServiceDeps{
		Config:      serviceTestConfig(),
		Client:      f.client,
		Projects:    NewProjectService(f.projects, f.states, nil),
		ProjectRepo: f.projects,
		StateRepo:   f.states,
		AccountRepo: newMemAccountRepo(owner),
		Refs:        NewReferenceService(utils.HashEmbeddingClient{}, f.embeds, nil),
		Mail:        f.mail,
		Settings:    WizardSettings{SaveDebounce: time.Hour, SessionTTL: ttl, AppBaseURL: "https://dossier.test/"},
		Logger:      zap.New(core),
	})
	return f
}

func TestWizardServiceFullFlow(t *testing.T) {
	ctx := context.Background()
	f := newWizardFixture(t, time.Hour)
	f.client.replies = []string{`{"content": "Draft text"}`}

	view, err := f.svc.View(ctx, f.owner, f.id)
	require.NoError(t, err)
	assert.Equal(t, "context", view.Module.ID)
	require.NotNil(t, view.Question)
	assert.Equal(t, "situation", view.Question.ID)
	assert.Equal(t, db_models.ProjectInProgress, f.projects.status(f.id))

	view, err = f.svc.Next(ctx, f.owner, f.id)
	require.NoError(t, err)
	assert.Equal(t, wizard.BlockedRequiredUnsatisfied, view.Screen.Blocked)

	_, err = f.svc.Answer(ctx, f.owner, f.id, wizard_models.TextValue("Rooms are booked by phone"))
	require.NoError(t, err)
	view, err = f.svc.Next(ctx, f.owner, f.id)
	require.NoError(t, err)
	assert.Equal(t, wizard.ScreenNextModule, view.Screen.Kind)
	assert.True(t, view.Module.Generated)

	_, err = f.svc.Answer(ctx, f.owner, f.id, wizard_models.TextValue("Book rooms online"))
	require.NoError(t, err)
	view, err = f.svc.Next(ctx, f.owner, f.id)
	require.NoError(t, err)
	assert.Equal(t, wizard.ScreenGenerationPending, view.Screen.Kind)
	require.NotNil(t, view.Assembler)
	assert.Equal(t, wizard.AssemblerDraftReady, view.Assembler.State)
	assert.Equal(t, 2, f.states.answerCount(f.id), "answers were flushed before generation")

	view, err = f.svc.ValidateDraft(ctx, f.owner, f.id, "Final text")
	require.NoError(t, err)
	assert.Equal(t, 100, view.Progress.Overall)
	assert.True(t, view.Progress.Export)
	assert.Equal(t, db_models.ProjectReadyForExport, f.projects.status(f.id))

	_, indexed := f.embeds.get(f.id + ":description")
	assert.True(t, indexed, "validated sections become references")

	assert.Eventually(t, func() bool { return len(f.mail.messages()) == 1 }, time.Second, 10*time.Millisecond)
	sent := f.mail.messages()[0]
	assert.Equal(t, "export", sent.kind)
	assert.Equal(t, "buyer@example.org", sent.to)
	assert.Equal(t, "https://dossier.test/projects/"+f.id, sent.body)

	view, err = f.svc.Next(ctx, f.owner, f.id)
	require.NoError(t, err)
	assert.Equal(t, wizard.ScreenWizardComplete, view.Screen.Kind)
	assert.Nil(t, view.Question)
}

func TestWizardServiceOwnership(t *testing.T) {
	f := newWizardFixture(t, time.Hour)
	_, err := f.svc.View(context.Background(), uuid.New().String(), f.id)
	assert.ErrorIs(t, err, utils.ErrForbidden)
}

func TestWizardServiceErrorsKeepView(t *testing.T) {
	f := newWizardFixture(t, time.Hour)
	view, err := f.svc.Jump(context.Background(), f.owner, f.id, 9)
	assert.ErrorIs(t, err, wizard.ErrUnknownModule)
	require.NotNil(t, view)
	assert.Equal(t, "context", view.Module.ID)
	assert.NotEmpty(t, view.Error)
}

func TestWizardServiceExitFlushesAndCloses(t *testing.T) {
	ctx := context.Background()
	f := newWizardFixture(t, time.Hour)

	_, err := f.svc.Answer(ctx, f.owner, f.id, wizard_models.TextValue("pending"))
	require.NoError(t, err)
	assert.Zero(t, f.states.answerCount(f.id))

	view, err := f.svc.ExitToDashboard(ctx, f.owner, f.id)
	require.NoError(t, err)
	assert.Equal(t, wizard.ScreenDashboard, view.Screen.Kind)
	assert.Equal(t, 1, f.states.answerCount(f.id))

	// reopening reads the persisted answer back and resumes on the first incomplete module
	view, err = f.svc.View(ctx, f.owner, f.id)
	require.NoError(t, err)
	assert.Equal(t, "description", view.Module.ID)
	assert.Equal(t, wizard_models.StatusCompleted, view.Progress.Modules[0].Status)
}

func TestWizardServiceSweepClosesIdleSessions(t *testing.T) {
	ctx := context.Background()
	f := newWizardFixture(t, 10*time.Millisecond)

	_, err := f.svc.Answer(ctx, f.owner, f.id, wizard_models.TextValue("idle"))
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, f.svc.Sweep())
	assert.Equal(t, 1, f.states.answerCount(f.id))
	assert.Zero(t, f.svc.Sweep())
}

func TestWizardServiceShutdownFlushes(t *testing.T) {
	ctx := context.Background()
	f := newWizardFixture(t, time.Hour)

	_, err := f.svc.Answer(ctx, f.owner, f.id, wizard_models.TextValue("before stop"))
	require.NoError(t, err)
	f.svc.Shutdown(ctx)
	assert.Equal(t, 1, f.states.answerCount(f.id))
}

func TestWizardServiceLogsEditedDraft(t *testing.T) {
	ctx := context.Background()
	f := newWizardFixture(t, time.Hour)
	f.client.replies = []string{`{"content": "Draft text"}`}

	_, err := f.svc.Answer(ctx, f.owner, f.id, wizard_models.TextValue("Rooms are booked by phone"))
	require.NoError(t, err)
	_, err = f.svc.Next(ctx, f.owner, f.id)
	require.NoError(t, err)
	_, err = f.svc.Answer(ctx, f.owner, f.id, wizard_models.TextValue("Book rooms online"))
	require.NoError(t, err)
	_, err = f.svc.Next(ctx, f.owner, f.id)
	require.NoError(t, err)

	view, err := f.svc.BeginEditDraft(ctx, f.owner, f.id)
	require.NoError(t, err)
	require.NotNil(t, view.Assembler)
	assert.Equal(t, wizard.AssemblerEditing, view.Assembler.State)

	view, err = f.svc.EditDraft(ctx, f.owner, f.id, "Draft text, reviewed")
	require.NoError(t, err)
	assert.Equal(t, wizard.AssemblerDraftReady, view.Assembler.State)

	entries := f.logs.FilterMessage("draft replaced").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, f.id, fields["project_id"])
	assert.Equal(t, "description", fields["module_id"])
	assert.Equal(t, "initial", fields["from"])
	assert.Equal(t, "edited", fields["to"])
	assert.Equal(t, int64(len(", reviewed")), fields["inserted"])
	assert.Equal(t, int64(0), fields["deleted"])
}

package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dossier/internal/models/response_models"
	"dossier/internal/models/wizard_models"
	"dossier/internal/services"
	"dossier/internal/wizard"
	"dossier/pkg/utils"
)

// stubWizardService implements only what the tests call; anything else panics.
type stubWizardService struct {
	services.WizardServiceInterface
	answered wizard_models.AnswerValue
	owner    string
	nextErr  error
}

func (s *stubWizardService) view(projectID string, kind wizard.ScreenKind) *response_models.WizardView {
	return &response_models.WizardView{
		ProjectID: projectID,
		Screen:    wizard.Screen{Kind: kind, ModuleID: "context", QuestionID: "situation"},
	}
}

func (s *stubWizardService) Answer(ctx context.Context, ownerID, projectID string, value wizard_models.AnswerValue) (*response_models.WizardView, error) {
	s.owner = ownerID
	s.answered = value
	if strings.TrimSpace(value.Text) == "" {
		return s.view(projectID, wizard.ScreenSameQuestion), &wizard.ValidationRejectedError{ModuleID: "context", QuestionID: "situation", Reason: "empty"}
	}
	return s.view(projectID, wizard.ScreenSameQuestion), nil
}

func (s *stubWizardService) Next(ctx context.Context, ownerID, projectID string) (*response_models.WizardView, error) {
	if s.nextErr != nil {
		return s.view(projectID, wizard.ScreenSameQuestion), s.nextErr
	}
	return s.view(projectID, wizard.ScreenNextQuestion), nil
}

func (s *stubWizardService) Progress(ctx context.Context, ownerID, projectID string) (*wizard.ProgressReport, error) {
	return nil, utils.ErrForbidden
}

type stubProjectService struct {
	services.ProjectServiceInterface
	exportErr error
}

func (s *stubProjectService) Export(ctx context.Context, ownerID, projectID string) (*response_models.ExportResponse, error) {
	if s.exportErr != nil {
		return nil, s.exportErr
	}
	return &response_models.ExportResponse{ProjectID: projectID, Filename: "room-booking.md", Markdown: "# Room booking\n"}, nil
}

func newControllerRouter(w services.WizardServiceInterface, p services.ProjectServiceInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "owner-1")
		c.Set("trace_id", "trace-1")
	})
	projects := r.Group("/projects")
	pc := NewProjectController(p)
	projects.GET("/:id/export", pc.Export)
	RegisterWizardRoutes(projects.Group("/:id"), NewWizardController(w))
	return r
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) (utils.APIResponse, map[string]any) {
	t.Helper()
	var env utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	data, _ := env.Data.(map[string]any)
	return env, data
}

func TestWizardAnswer(t *testing.T) {
	svc := &stubWizardService{}
	r := newControllerRouter(svc, &stubProjectService{})

	t.Run("accepted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := `{"value": {"kind": "text", "text": "Phone bookings"}}`
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/projects/p-1/wizard/answer", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		env, data := decode(t, rec)
		assert.Equal(t, "trace-1", env.TraceID)
		assert.Equal(t, "p-1", data["project_id"])
		assert.Equal(t, "owner-1", svc.owner)
		assert.Equal(t, wizard_models.TextValue("Phone bookings"), svc.answered)
	})

	t.Run("rejected keeps the view", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := `{"value": {"kind": "text", "text": "  "}}`
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/projects/p-1/wizard/answer", strings.NewReader(body)))

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		env, data := decode(t, rec)
		assert.Equal(t, "error", env.Status)
		assert.Contains(t, env.Message, "empty")
		screen, _ := data["screen"].(map[string]any)
		assert.Equal(t, string(wizard.ScreenSameQuestion), screen["kind"])
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/projects/p-1/wizard/answer", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestWizardErrorStatuses(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{nil, http.StatusOK},
		{wizard.ErrGenerationInProgress, http.StatusConflict},
		{fmt.Errorf("draft: %w", utils.ErrNotConfigured), http.StatusServiceUnavailable},
		{wizard.ErrChoiceGenerationFailed, http.StatusBadGateway},
		{wizard.ErrUnknownModule, http.StatusBadRequest},
		{wizard.ErrNotEditing, http.StatusConflict},
		{fmt.Errorf("choices: %w", wizard.ErrAssistUnsupported), http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		name := "ok"
		if tc.err != nil {
			name = tc.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			r := newControllerRouter(&stubWizardService{nextErr: tc.err}, &stubProjectService{})
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/projects/p-1/wizard/next", nil))
			assert.Equal(t, tc.code, rec.Code)
			_, data := decode(t, rec)
			assert.Equal(t, "p-1", data["project_id"])
		})
	}

	t.Run("no view", func(t *testing.T) {
		r := newControllerRouter(&stubWizardService{}, &stubProjectService{})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/p-1/wizard/progress", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		env, _ := decode(t, rec)
		assert.Nil(t, env.Data)
	})
}

func TestProjectExport(t *testing.T) {
	t.Run("json envelope", func(t *testing.T) {
		r := newControllerRouter(&stubWizardService{}, &stubProjectService{})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/p-1/export", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		_, data := decode(t, rec)
		assert.Equal(t, "# Room booking\n", data["markdown"])
	})

	t.Run("download", func(t *testing.T) {
		r := newControllerRouter(&stubWizardService{}, &stubProjectService{})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/p-1/export?download=1", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `attachment; filename="room-booking.md"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "# Room booking\n", rec.Body.String())
	})

	t.Run("not ready", func(t *testing.T) {
		r := newControllerRouter(&stubWizardService{}, &stubProjectService{exportErr: utils.ErrExportNotReady})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/p-1/export", nil))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestParseRange(t *testing.T) {
	_, _, msg := parseRange("2026-10-01T00:00:00Z", "", "7")
	assert.NotEmpty(t, msg)

	_, _, msg = parseRange("", "", "zero")
	assert.NotEmpty(t, msg)

	start, end, msg := parseRange("", "", "7")
	assert.Empty(t, msg)
	assert.Equal(t, 7*24*time.Hour, end.Sub(start))

	start, end, msg = parseRange("2026-10-01T00:00:00Z", "", "")
	assert.Empty(t, msg)
	assert.Equal(t, 2026, start.Year())
	assert.True(t, end.IsZero())

	_, _, msg = parseRange("yesterday", "", "")
	assert.Contains(t, msg, "RFC3339")
}

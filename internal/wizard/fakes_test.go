package wizard

import (
	"context"
	"errors"
	"sync"

	"dossier/internal/models/wizard_models"
	"dossier/pkg/utils"
)

type fakeReply struct {
	content string
	err     error
}

// fakeClient replays queued replies in order. When gate is set, every call
// waits on it before answering.
type fakeClient struct {
	mu      sync.Mutex
	replies []fakeReply
	calls   [][]wizard_models.ChatMessage
	gate    chan struct{}
	entered chan struct{}
	onCall  func()
}

func newFakeClient(replies ...fakeReply) *fakeClient {
	return &fakeClient{replies: replies}
}

func reply(content string) fakeReply { return fakeReply{content: content} }

func failure(err error) fakeReply { return fakeReply{err: err} }

func (f *fakeClient) Complete(ctx context.Context, messages []wizard_models.ChatMessage, opts utils.CompletionOptions) (*utils.CompletionResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, messages)
	var r fakeReply
	if len(f.replies) == 0 {
		r = fakeReply{err: errors.New("fake: no reply queued")}
	} else {
		r = f.replies[0]
		f.replies = f.replies[1:]
	}
	gate, entered, onCall := f.gate, f.entered, f.onCall
	f.mu.Unlock()

	if onCall != nil {
		onCall()
	}
	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if r.err != nil {
		return nil, r.err
	}
	return &utils.CompletionResult{Content: r.content, Model: "fake-model", Provider: "fake"}, nil
}

func (f *fakeClient) ProviderName() string { return "fake" }

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeClient) enqueue(replies ...fakeReply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, replies...)
}

type fakeStateStore struct {
	mu       sync.Mutex
	state    *wizard_models.WizardState
	saved    []wizard_models.Answer
	sections map[string]wizard_models.Section
	saveErr  error
	loadErr  error
	// persistGate, when set, holds PersistSection until closed.
	persistGate    chan struct{}
	persistEntered chan struct{}
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{sections: make(map[string]wizard_models.Section)}
}

func (s *fakeStateStore) SaveAnswer(ctx context.Context, projectID string, answer wizard_models.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, answer)
	return nil
}

func (s *fakeStateStore) LoadState(ctx context.Context, projectID string) (*wizard_models.WizardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.state, nil
}

func (s *fakeStateStore) PersistSection(ctx context.Context, projectID string, section wizard_models.Section) error {
	s.mu.Lock()
	gate, entered := s.persistGate, s.persistEntered
	s.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections[section.ID] = section
	return nil
}

func (s *fakeStateStore) savedAnswers() []wizard_models.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]wizard_models.Answer(nil), s.saved...)
}

func (s *fakeStateStore) section(id string) (wizard_models.Section, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec, ok := s.sections[id]
	return sec, ok
}

type recordingEvents struct {
	mu        sync.Mutex
	exports   int
	dashboard int
}

func (e *recordingEvents) OnExportEnabled(string) {
	e.mu.Lock()
	e.exports++
	e.mu.Unlock()
}

func (e *recordingEvents) OnSwitchToDashboard(string) {
	e.mu.Lock()
	e.dashboard++
	e.mu.Unlock()
}

func (e *recordingEvents) counts() (exports, dashboard int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exports, e.dashboard
}

// testConfig has a plain module, a generated module and a checkbox module.
func testConfig() *wizard_models.WizardConfiguration {
	cfg := &wizard_models.WizardConfiguration{
		Modules: []wizard_models.Module{
			{
				ID:    "context",
				Title: "Context",
				Rules: []string{"Describe the situation, never a solution."},
				Questions: []wizard_models.Question{
					{ID: "situation", Label: "Current situation", Type: wizard_models.QuestionTextarea, Required: true},
					{ID: "stakeholders", Label: "Stakeholders", Type: wizard_models.QuestionText, Required: true},
				},
			},
			{
				ID:                "description",
				Title:             "Description of the need",
				HasAssemblePrompt: true,
				Questions: []wizard_models.Question{
					{ID: "objective", Label: "Objective", Type: wizard_models.QuestionTextarea, Required: true, ShowAIByDefault: true},
					{ID: "scope", Label: "Scope", Type: wizard_models.QuestionTextarea, Required: true},
					{ID: "functional", Label: "Functional expectations", Type: wizard_models.QuestionTextarea, Required: true},
				},
			},
			{
				ID:    "constraints",
				Title: "Constraints",
				Questions: []wizard_models.Question{
					{ID: "kinds", Label: "Kinds of constraints", Type: wizard_models.QuestionCheckbox, Required: true, MinSelect: 2,
						Options: []string{"Regulatory", "Technical", "Security"}},
				},
			},
		},
		Guidance: wizard_models.GuidanceTable{
			Default: wizard_models.Guidance{FirstQuestion: "Tell me more.", Example: "A short paragraph."},
		},
	}
	cfg.Guidance.Compile()
	return cfg
}

func testProject() wizard_models.ProjectContext {
	return wizard_models.ProjectContext{
		ProjectID: "p-1",
		Title:     "Meeting room booking",
		NeedType:  wizard_models.NeedServices,
		Urgency:   wizard_models.UrgencyNormal,
	}
}

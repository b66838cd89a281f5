package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dossier/internal/models/wizard_models"

	"go.uber.org/zap"
)

// DefaultSaveDebounce is the trailing-edge delay before answers are written out.
const DefaultSaveDebounce = time.Second

type answerKey struct {
	module   string
	question string
}

// AnswerStore is the single source of truth for answers of one project.
// Writes to the dossier store are debounced and coalesced per question;
// Flush is the acknowledgement that everything written before it is durable.
type AnswerStore struct {
	projectID string
	config    *wizard_models.WizardConfiguration
	saver     AnswerSaver
	delay     time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	answers map[answerKey]wizard_models.Answer
	pending map[answerKey]struct{}
	timer   *time.Timer

	// flushMu serializes flushes so a Flush returns only after any
	// timer-triggered flush that already took a batch has finished.
	flushMu sync.Mutex
}

func NewAnswerStore(projectID string, config *wizard_models.WizardConfiguration, saver AnswerSaver, delay time.Duration, logger *zap.Logger) *AnswerStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnswerStore{
		projectID: projectID,
		config:    config,
		saver:     saver,
		delay:     delay,
		logger:    logger,
		answers:   make(map[answerKey]wizard_models.Answer),
		pending:   make(map[answerKey]struct{}),
	}
}

// Hydrate loads previously persisted answers without scheduling writes.
// Answers for questions no longer in the configuration are ignored.
func (s *AnswerStore) Hydrate(answers []wizard_models.Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range answers {
		if _, ok := s.config.Question(a.ModuleID, a.QuestionID); !ok {
			continue
		}
		if a.Value.Kind == wizard_models.ValueSelection {
			a.Value = wizard_models.SelectionValue(a.Value.Selections, a.Value.DetailText())
		}
		s.answers[answerKey{a.ModuleID, a.QuestionID}] = a
	}
}

func (s *AnswerStore) Get(moduleID, questionID string) (wizard_models.AnswerValue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.answers[answerKey{moduleID, questionID}]
	return a.Value, ok
}

// Set validates the value shape and stores it, scheduling a debounced write.
func (s *AnswerStore) Set(ctx context.Context, moduleID, questionID, label string, value wizard_models.AnswerValue) error {
	q, ok := s.config.Question(moduleID, questionID)
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrUnknownQuestion, moduleID, questionID)
	}
	if value.Kind == wizard_models.ValueSelection {
		value = wizard_models.SelectionValue(value.Selections, value.DetailText())
	}
	if err := CheckShape(moduleID, q, value); err != nil {
		return err
	}
	if label == "" {
		label = q.Label
	}

	key := answerKey{moduleID, questionID}
	s.mu.Lock()
	s.answers[key] = wizard_models.Answer{
		ModuleID:      moduleID,
		QuestionID:    questionID,
		QuestionLabel: label,
		Value:         value,
	}
	s.pending[key] = struct{}{}
	if s.delay <= 0 {
		s.mu.Unlock()
		return s.Flush(ctx)
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.flushFromTimer)
	s.mu.Unlock()
	return nil
}

func (s *AnswerStore) flushFromTimer() {
	if err := s.Flush(context.Background()); err != nil {
		s.logger.Warn("debounced answer save failed",
			zap.String("project_id", s.projectID),
			zap.Error(err))
	}
}

// Flush writes every pending answer now and waits for completion. Answers
// whose write failed stay pending and the joined error is returned.
func (s *AnswerStore) Flush(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	batch := make([]wizard_models.Answer, 0, len(s.pending))
	for _, m := range s.config.Modules {
		for _, q := range m.Questions {
			key := answerKey{m.ID, q.ID}
			if _, ok := s.pending[key]; ok {
				batch = append(batch, s.answers[key])
			}
		}
	}
	s.pending = make(map[answerKey]struct{})
	s.mu.Unlock()

	if s.saver == nil {
		return nil
	}

	var errs []error
	for _, a := range batch {
		if err := s.saver.SaveAnswer(ctx, s.projectID, a); err != nil {
			s.mu.Lock()
			s.pending[answerKey{a.ModuleID, a.QuestionID}] = struct{}{}
			s.mu.Unlock()
			errs = append(errs, fmt.Errorf("save %s/%s: %w", a.ModuleID, a.QuestionID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *AnswerStore) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// IsValid applies the type-specific required rule to a candidate value.
func (s *AnswerStore) IsValid(q wizard_models.Question, value wizard_models.AnswerValue) bool {
	return IsAnswerValid(q, value, !value.IsZero())
}

// IsQuestionSatisfied checks the stored answer of a question against its rule.
func (s *AnswerStore) IsQuestionSatisfied(moduleID string, q wizard_models.Question) bool {
	v, ok := s.Get(moduleID, q.ID)
	return IsAnswerValid(q, v, ok)
}

// AllForModule returns the module's answers in question order.
func (s *AnswerStore) AllForModule(moduleID string) []wizard_models.Answer {
	m, ok := s.config.Module(moduleID)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []wizard_models.Answer
	for _, q := range m.Questions {
		if a, ok := s.answers[answerKey{moduleID, q.ID}]; ok {
			out = append(out, a)
		}
	}
	return out
}

// AnswersBefore returns answers of every question preceding (moduleID, questionID)
// in configuration order.
func (s *AnswerStore) AnswersBefore(moduleID, questionID string) []wizard_models.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []wizard_models.Answer
	for _, m := range s.config.Modules {
		for _, q := range m.Questions {
			if m.ID == moduleID && q.ID == questionID {
				return out
			}
			if a, ok := s.answers[answerKey{m.ID, q.ID}]; ok {
				out = append(out, a)
			}
		}
	}
	return out
}

// Clear drops every answer and any pending write.
func (s *AnswerStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.answers = make(map[answerKey]wizard_models.Answer)
	s.pending = make(map[answerKey]struct{})
}

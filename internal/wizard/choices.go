package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"dossier/internal/models/wizard_models"
	"dossier/internal/prompts"
	"dossier/pkg/utils"

	"go.uber.org/zap"
)

type ChoicesState string

const (
	ChoicesIdle       ChoicesState = "idle"
	ChoicesRequested  ChoicesState = "choices_requested"
	ChoicesShown      ChoicesState = "choices_shown"
	ChoicesSelecting  ChoicesState = "selecting"
	ChoicesAssembling ChoicesState = "assembling"
	ChoicesAssembled  ChoicesState = "assembled"
)

var ErrUnknownChoice = errors.New("choice was not proposed")

var genericChoices = map[string]bool{
	"other":          true,
	"others":         true,
	"none":           true,
	"n/a":            true,
	"not applicable": true,
	"autre":          true,
	"aucun":          true,
}

// ChoicesSnapshot is a read-only view of the engine for rendering.
type ChoicesSnapshot struct {
	State         ChoicesState `json:"state"`
	Choices       []string     `json:"choices"`
	Selected      []string     `json:"selected"`
	GeneratedText string       `json:"generated_text,omitempty"`
	Requesting    bool         `json:"requesting"`
}

// ChoicesEngine runs the guided-choices flow for a single question.
type ChoicesEngine struct {
	client  utils.CompletionClientInterface
	logger  *zap.Logger
	module  wizard_models.Module
	quest   wizard_models.Question
	project wizard_models.ProjectContext
	prior   func() []wizard_models.Answer

	mu         sync.Mutex
	state      ChoicesState
	shown      []string
	current    []string
	selected   []string
	generated  string
	requesting bool
	assembling bool
}

func NewChoicesEngine(
	client utils.CompletionClientInterface,
	module wizard_models.Module,
	question wizard_models.Question,
	project wizard_models.ProjectContext,
	prior func() []wizard_models.Answer,
	logger *zap.Logger,
) *ChoicesEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prior == nil {
		prior = func() []wizard_models.Answer { return nil }
	}
	return &ChoicesEngine{
		client:  client,
		logger:  logger,
		module:  module,
		quest:   question,
		project: project,
		prior:   prior,
		state:   ChoicesIdle,
	}
}

func (e *ChoicesEngine) QuestionID() string { return e.quest.ID }

func (e *ChoicesEngine) Snapshot() ChoicesSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ChoicesSnapshot{
		State:         e.state,
		Choices:       append([]string(nil), e.current...),
		Selected:      append([]string(nil), e.selected...),
		GeneratedText: e.generated,
		Requesting:    e.requesting || e.assembling,
	}
}

// RequestChoices asks the provider for a fresh batch of candidate phrases.
// Phrases shown earlier for this question are excluded from the new batch.
func (e *ChoicesEngine) RequestChoices(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	if e.requesting || e.assembling {
		e.mu.Unlock()
		return nil, ErrRequestInFlight
	}
	e.requesting = true
	previous := e.state
	e.state = ChoicesRequested
	prompt := prompts.BuildChoicesPrompt(prompts.ChoicesInput{
		Module:       e.module,
		Question:     e.quest,
		Project:      e.project,
		PriorAnswers: e.prior(),
		AlreadyShown: append([]string(nil), e.shown...),
	})
	exclude := make(map[string]bool, len(e.shown))
	for _, s := range e.shown {
		exclude[strings.ToLower(s)] = true
	}
	e.mu.Unlock()

	var parsed struct {
		Choices []string `json:"choices"`
	}
	var choices []string
	err := completeJSON(ctx, e.client, prompt, &parsed, func() error {
		choices = cleanChoices(parsed.Choices, exclude)
		if len(choices) == 0 {
			return fmt.Errorf("%w: no usable choices", utils.ErrMalformedResponse)
		}
		return nil
	}, e.logger)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.requesting = false
	if err != nil {
		e.state = previous
		if e.state == ChoicesRequested {
			e.state = ChoicesIdle
		}
		return nil, fmt.Errorf("%w: %w", ErrChoiceGenerationFailed, err)
	}

	e.current = choices
	e.shown = append(e.shown, choices...)
	if len(e.selected) > 0 {
		e.state = ChoicesSelecting
	} else {
		e.state = ChoicesShown
	}
	return append([]string(nil), choices...), nil
}

func cleanChoices(raw []string, exclude map[string]bool) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, prompts.ChoiceCount)
	for _, c := range raw {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if c == "" || genericChoices[key] || exclude[key] || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
		if len(out) == prompts.ChoiceCount {
			break
		}
	}
	return out
}

// Toggle adds or removes a proposed choice from the selection. Toggling the
// same choice twice restores the previous selection.
func (e *ChoicesEngine) Toggle(choice string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.assembling {
		return nil, ErrRequestInFlight
	}

	known := false
	for _, s := range e.shown {
		if s == choice {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChoice, choice)
	}

	members := make(map[string]bool, len(e.selected)+1)
	for _, s := range e.selected {
		members[s] = true
	}
	members[choice] = !members[choice]

	// Selection order follows proposal order so the same set always yields
	// the same assembly prompt.
	e.selected = e.selected[:0:0]
	for _, s := range e.shown {
		if members[s] {
			e.selected = append(e.selected, s)
		}
	}

	if len(e.selected) > 0 {
		e.state = ChoicesSelecting
	} else {
		e.state = ChoicesShown
	}
	return append([]string(nil), e.selected...), nil
}

func (e *ChoicesEngine) Selected() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.selected...)
}

// Assemble turns the current selection and optional free text into prose.
// It can be called again after changing the selection.
func (e *ChoicesEngine) Assemble(ctx context.Context, freeText string) (string, error) {
	e.mu.Lock()
	if e.requesting || e.assembling {
		e.mu.Unlock()
		return "", ErrRequestInFlight
	}
	if len(e.selected) == 0 && strings.TrimSpace(freeText) == "" {
		e.mu.Unlock()
		return "", ErrNothingSelected
	}
	e.assembling = true
	previous := e.state
	e.state = ChoicesAssembling
	prompt := prompts.BuildAssemblyPrompt(prompts.AssemblyInput{
		Module:   e.module,
		Question: e.quest,
		Project:  e.project,
		Selected: append([]string(nil), e.selected...),
		FreeText: freeText,
	})
	e.mu.Unlock()

	var parsed struct {
		GeneratedText string `json:"generatedText"`
	}
	err := completeJSON(ctx, e.client, prompt, &parsed, func() error {
		if strings.TrimSpace(parsed.GeneratedText) == "" {
			return fmt.Errorf("%w: empty generatedText", utils.ErrMalformedResponse)
		}
		return nil
	}, e.logger)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.assembling = false
	if err != nil {
		e.state = previous
		return "", err
	}
	e.generated = strings.TrimSpace(parsed.GeneratedText)
	e.state = ChoicesAssembled
	return e.generated, nil
}

// GeneratedText returns the last assembled text, if any.
func (e *ChoicesEngine) GeneratedText() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generated, e.state == ChoicesAssembled && e.generated != ""
}

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

// ChatTurn is what the assistant asks next.
type ChatTurn struct {
	Question   string   `json:"question"`
	Options    []string `json:"options,omitempty"`
	Example    string   `json:"example,omitempty"`
	InputType  string   `json:"input_type"`
	IsComplete bool     `json:"is_complete"`
}

type ChatSnapshot struct {
	History        []wizard_models.ChatMessage `json:"history"`
	IntegratedText string                      `json:"integrated_text"`
	Turn           *ChatTurn                   `json:"turn,omitempty"`
	Busy           bool                        `json:"busy"`
}

// ChatSession is the free-form conversation that builds one answer. It is
// scoped to one question and never persisted on its own.
type ChatSession struct {
	client   utils.CompletionClientInterface
	logger   *zap.Logger
	module   wizard_models.Module
	quest    wizard_models.Question
	project  wizard_models.ProjectContext
	guidance *wizard_models.GuidanceTable
	prior    func() []wizard_models.Answer

	mu         sync.Mutex
	history    []wizard_models.ChatMessage
	integrated string
	turn       *ChatTurn
	busy       bool
}

func NewChatSession(
	client utils.CompletionClientInterface,
	module wizard_models.Module,
	question wizard_models.Question,
	project wizard_models.ProjectContext,
	guidance *wizard_models.GuidanceTable,
	prior func() []wizard_models.Answer,
	logger *zap.Logger,
) *ChatSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prior == nil {
		prior = func() []wizard_models.Answer { return nil }
	}
	return &ChatSession{
		client:   client,
		logger:   logger,
		module:   module,
		quest:    question,
		project:  project,
		guidance: guidance,
		prior:    prior,
	}
}

func (c *ChatSession) QuestionID() string { return c.quest.ID }

func (c *ChatSession) Snapshot() ChatSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	var turn *ChatTurn
	if c.turn != nil {
		t := *c.turn
		turn = &t
	}
	return ChatSnapshot{
		History:        append([]wizard_models.ChatMessage(nil), c.history...),
		IntegratedText: c.integrated,
		Turn:           turn,
		Busy:           c.busy,
	}
}

func (c *ChatSession) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrRequestInFlight
	}
	c.busy = true
	return nil
}

func (c *ChatSession) end() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

// Start resets the conversation and asks for the opening question.
func (c *ChatSession) Start(ctx context.Context) (*ChatTurn, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	prompt := prompts.BuildInitialPrompt(prompts.InitialInput{
		Module:       c.module,
		Question:     c.quest,
		Project:      c.project,
		Guidance:     c.guidance,
		PriorAnswers: c.prior(),
	})

	var parsed struct {
		Question  string   `json:"question"`
		Options   []string `json:"options"`
		Example   string   `json:"example"`
		InputType string   `json:"inputType"`
	}
	err := completeJSON(ctx, c.client, prompt, &parsed, func() error {
		if strings.TrimSpace(parsed.Question) == "" {
			return fmt.Errorf("%w: missing question", utils.ErrMalformedResponse)
		}
		return nil
	}, c.logger)
	if err != nil {
		return nil, err
	}

	turn := &ChatTurn{
		Question:  parsed.Question,
		Options:   parsed.Options,
		Example:   parsed.Example,
		InputType: normalizeInputType(parsed.InputType),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = []wizard_models.ChatMessage{{Role: wizard_models.RoleAssistant, Content: turn.Question}}
	c.integrated = ""
	c.turn = turn
	t := *turn
	return &t, nil
}

// Reply integrates the user's reply into the running text and returns the
// next turn. A failed call leaves the conversation unchanged.
func (c *ChatSession) Reply(ctx context.Context, text string) (*ChatTurn, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyContent
	}
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	c.mu.Lock()
	if c.turn == nil {
		c.mu.Unlock()
		return nil, ErrNoActiveChat
	}
	history := append([]wizard_models.ChatMessage(nil), c.history...)
	current := c.integrated
	c.mu.Unlock()

	prompt := prompts.BuildIntegrationPrompt(prompts.IntegrationInput{
		Module:       c.module,
		Question:     c.quest,
		Project:      c.project,
		History:      history,
		CurrentText:  current,
		LatestReply:  text,
		PriorAnswers: c.prior(),
	})

	var parsed struct {
		IntegratedText string   `json:"integratedText"`
		Question       *string  `json:"question"`
		Options        []string `json:"options"`
		Example        *string  `json:"example"`
		InputType      string   `json:"inputType"`
		IsComplete     bool     `json:"isComplete"`
	}
	err := completeJSON(ctx, c.client, prompt, &parsed, func() error {
		if strings.TrimSpace(parsed.IntegratedText) == "" {
			return fmt.Errorf("%w: missing integratedText", utils.ErrMalformedResponse)
		}
		if !parsed.IsComplete && (parsed.Question == nil || strings.TrimSpace(*parsed.Question) == "") {
			return fmt.Errorf("%w: missing next question", utils.ErrMalformedResponse)
		}
		return nil
	}, c.logger)
	if err != nil {
		return nil, err
	}

	turn := &ChatTurn{
		Options:    parsed.Options,
		InputType:  normalizeInputType(parsed.InputType),
		IsComplete: parsed.IsComplete,
	}
	if parsed.Question != nil {
		turn.Question = *parsed.Question
	}
	if parsed.Example != nil {
		turn.Example = *parsed.Example
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, wizard_models.ChatMessage{Role: wizard_models.RoleUser, Content: text})
	if turn.Question != "" && !turn.IsComplete {
		c.history = append(c.history, wizard_models.ChatMessage{Role: wizard_models.RoleAssistant, Content: turn.Question})
	}
	c.integrated = strings.TrimSpace(parsed.IntegratedText)
	c.turn = turn
	t := *turn
	return &t, nil
}

// IntegratedText returns the text accumulated so far.
func (c *ChatSession) IntegratedText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.integrated
}

func normalizeInputType(t string) string {
	switch t {
	case "text", "textarea", "radio", "checkbox":
		return t
	}
	return "textarea"
}

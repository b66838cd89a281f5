package utils

import (
	"context"
	"fmt"
	"strings"

	"dossier/internal/models/wizard_models"
)

type CompletionOptions struct {
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
	JSONMode    bool    `json:"json_mode"`
}

type CompletionResult struct {
	Content  string `json:"content"`
	Model    string `json:"model"`
	Provider string `json:"provider"`
}

// CompletionClientInterface is the single contract the wizard needs from a
// language model backend. Implementations never retry.
type CompletionClientInterface interface {
	Complete(ctx context.Context, messages []wizard_models.ChatMessage, opts CompletionOptions) (*CompletionResult, error)
	ProviderName() string
}

// jsonModeInstruction is prepended as a system line whenever JSON mode is requested.
const jsonModeInstruction = "Respond with exactly one JSON object and nothing else. No markdown, no comments."

// NotConfiguredClient stands in when no provider credentials are present.
type NotConfiguredClient struct {
	Reason string
}

func (n *NotConfiguredClient) Complete(ctx context.Context, messages []wizard_models.ChatMessage, opts CompletionOptions) (*CompletionResult, error) {
	if n.Reason != "" {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, n.Reason)
	}
	return nil, ErrNotConfigured
}

func (n *NotConfiguredClient) ProviderName() string { return "none" }

// CompletionConfig selects and parameterizes a backend.
type CompletionConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// NewCompletionClient returns the backend named by cfg.Provider. A missing
// provider or key yields a NotConfiguredClient rather than an error so the
// wizard can degrade to answers-only modules.
func NewCompletionClient(ctx context.Context, cfg CompletionConfig) (CompletionClientInterface, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" || provider == "none" {
		return &NotConfiguredClient{Reason: "no provider selected"}, nil
	}
	if cfg.APIKey == "" {
		return &NotConfiguredClient{Reason: fmt.Sprintf("missing API key for %s", provider)}, nil
	}

	switch provider {
	case "openai":
		return NewOpenAICompletionClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case "gemini":
		return NewGeminiCompletionClient(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s. Use 'openai' or 'gemini'", cfg.Provider)
	}
}

func withJSONInstruction(messages []wizard_models.ChatMessage, jsonMode bool) []wizard_models.ChatMessage {
	if !jsonMode {
		return messages
	}
	out := make([]wizard_models.ChatMessage, 0, len(messages)+1)
	out = append(out, wizard_models.ChatMessage{Role: wizard_models.RoleSystem, Content: jsonModeInstruction})
	return append(out, messages...)
}

// IsConfigured reports whether client can reach a real backend.
func IsConfigured(client CompletionClientInterface) bool {
	if client == nil {
		return false
	}
	_, missing := client.(*NotConfiguredClient)
	return !missing
}

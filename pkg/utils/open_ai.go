package utils

import (
	"context"
	"fmt"
	"strings"

	"dossier/internal/models/wizard_models"

	"github.com/pgvector/pgvector-go"
	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = openai.GPT4oMini

// OpenAICompletionClient implements CompletionClientInterface and
// EmbeddingClientInterface on top of the OpenAI chat and embedding APIs.
type OpenAICompletionClient struct {
	client *openai.Client
	model  string
}

func NewOpenAICompletionClient(apiKey, model, baseURL string) *OpenAICompletionClient {
	if model == "" {
		model = defaultOpenAIModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAICompletionClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *OpenAICompletionClient) ProviderName() string { return "openai" }

func (c *OpenAICompletionClient) Complete(ctx context.Context, messages []wizard_models.ChatMessage, opts CompletionOptions) (*CompletionResult, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toOpenAIMessages(withJSONInstruction(messages, opts.JSONMode)),
		Temperature: opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}
	if opts.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %v", ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("%w: openai returned no content", ErrGenerationFailed)
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}
	return &CompletionResult{
		Content:  resp.Choices[0].Message.Content,
		Model:    model,
		Provider: c.ProviderName(),
	}, nil
}

func toOpenAIMessages(messages []wizard_models.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case wizard_models.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case wizard_models.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

// GetEmbedding returns a text-embedding-3-small vector for text.
func (c *OpenAICompletionClient) GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.SmallEmbedding3,
	})
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("openai embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return pgvector.Vector{}, fmt.Errorf("openai embedding: empty response")
	}
	return pgvector.NewVector(resp.Data[0].Embedding), nil
}

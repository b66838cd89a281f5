package utils

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"dossier/internal/models/wizard_models"

	"github.com/google/generative-ai-go/genai"
	"github.com/pgvector/pgvector-go"
	"google.golang.org/api/option"
)

const (
	defaultGeminiModel = "gemini-1.5-flash"
	embeddingDimension = 1536
)

// GeminiCompletionClient implements CompletionClientInterface using Google's Gemini models
type GeminiCompletionClient struct {
	client *genai.Client
	model  string
}

// NewGeminiCompletionClient creates a new Gemini client
func NewGeminiCompletionClient(ctx context.Context, apiKey, model string) (*GeminiCompletionClient, error) {
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiCompletionClient{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiCompletionClient) ProviderName() string { return "gemini" }

func (c *GeminiCompletionClient) Complete(ctx context.Context, messages []wizard_models.ChatMessage, opts CompletionOptions) (*CompletionResult, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: gemini: no messages", ErrGenerationFailed)
	}

	m := c.client.GenerativeModel(c.model)
	history, last := prepareGeminiChat(m, messages, opts)

	cs := m.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %v", ErrGenerationFailed, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: gemini returned no candidates", ErrGenerationFailed)
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	if strings.TrimSpace(out.String()) == "" {
		return nil, fmt.Errorf("%w: gemini returned no content", ErrGenerationFailed)
	}

	return &CompletionResult{
		Content:  out.String(),
		Model:    c.model,
		Provider: c.ProviderName(),
	}, nil
}

// prepareGeminiChat applies opts to m and returns the chat history and the
// final turn to send.
func prepareGeminiChat(m *genai.GenerativeModel, messages []wizard_models.ChatMessage, opts CompletionOptions) ([]*genai.Content, string) {
	m.SetTemperature(opts.Temperature)
	if opts.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if opts.JSONMode {
		// Force JSON-only output
		m.ResponseMIMEType = "application/json"
	}

	system, history, last := splitForGemini(withJSONInstruction(messages, opts.JSONMode))
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	return history, last
}

// splitForGemini folds system messages into one instruction, maps the rest to
// chat history and returns the final turn to send.
func splitForGemini(messages []wizard_models.ChatMessage) (string, []*genai.Content, string) {
	var system []string
	var turns []wizard_models.ChatMessage
	for _, msg := range messages {
		if msg.Role == wizard_models.RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		turns = append(turns, msg)
	}
	if len(turns) == 0 {
		return "", nil, strings.Join(system, "\n\n")
	}

	history := make([]*genai.Content, 0, len(turns)-1)
	for _, t := range turns[:len(turns)-1] {
		role := "user"
		if t.Role == wizard_models.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(t.Content)}})
	}
	return strings.Join(system, "\n\n"), history, turns[len(turns)-1].Content
}

// GetEmbedding generates a simple vector embedding for text.
// Gemini's free tier has no embedding endpoint compatible with the 1536-dim
// column, so this hashes words into a normalized vector.
func (c *GeminiCompletionClient) GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	return HashEmbedding(text), nil
}

// Close closes the Gemini client
func (c *GeminiCompletionClient) Close() error {
	return c.client.Close()
}

// HashEmbedding creates a deterministic, normalized bag-of-words vector.
func HashEmbedding(text string) pgvector.Vector {
	text = strings.ToLower(strings.TrimSpace(text))
	words := strings.Fields(text)

	vector := make([]float32, embeddingDimension)
	for _, word := range words {
		hash := hashWord(word)
		for i := 0; i < embeddingDimension; i++ {
			influence := math.Sin(float64(hash+uint32(i))) * 0.1
			vector[i] += float32(influence)
		}
	}

	magnitude := float32(0)
	for _, val := range vector {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))

	if magnitude > 0 {
		for i := range vector {
			vector[i] /= magnitude
		}
	}

	return pgvector.NewVector(vector)
}

func hashWord(word string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(word))
	return h.Sum32()
}

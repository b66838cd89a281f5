package utils

import (
	"context"

	"github.com/pgvector/pgvector-go"
)

type EmbeddingClientInterface interface {
	GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error)
}

// HashEmbeddingClient is used when the selected provider has no embedding API.
type HashEmbeddingClient struct{}

func (HashEmbeddingClient) GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	return HashEmbedding(text), nil
}

// EmbeddingClientFor reuses the completion backend for embeddings when it
// supports them and falls back to hashed vectors otherwise.
func EmbeddingClientFor(client CompletionClientInterface) EmbeddingClientInterface {
	if e, ok := client.(EmbeddingClientInterface); ok {
		return e
	}
	return HashEmbeddingClient{}
}

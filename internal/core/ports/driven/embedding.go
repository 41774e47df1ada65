package driven

import "context"

// EmbeddingService generates vector embeddings for clause text.
// Embeddings are optional; the pipeline proceeds without them when no
// provider is configured.
type EmbeddingService interface {
	// Embed generates embeddings for multiple texts.
	// Returns embeddings in the same order as input texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension size
	Dimensions() int

	// Model returns the model name being used
	Model() string

	// HealthCheck verifies the embedding service is available
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the embedding service
	Close() error
}

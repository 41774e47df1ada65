package mocks

import (
	"context"
	"sync"
)

// MockEmbeddingService is a deterministic EmbeddingService for testing
type MockEmbeddingService struct {
	mu    sync.Mutex
	calls int

	// Error injection
	EmbedErr error

	// Dims is the reported dimension count (default 4)
	Dims int
}

// NewMockEmbeddingService creates a new MockEmbeddingService
func NewMockEmbeddingService() *MockEmbeddingService {
	return &MockEmbeddingService{Dims: 4}
}

func (m *MockEmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.EmbedErr != nil {
		return nil, m.EmbedErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec := make([]float32, m.Dims)
		for j := range vec {
			vec[j] = float32(len(t)%7) + float32(j)
		}
		out[i] = vec
	}
	return out, nil
}

func (m *MockEmbeddingService) Dimensions() int { return m.Dims }

func (m *MockEmbeddingService) Model() string { return "mock-embedding" }

func (m *MockEmbeddingService) HealthCheck(ctx context.Context) error { return nil }

func (m *MockEmbeddingService) Close() error { return nil }

// EmbedCalls returns how many times Embed was invoked.
func (m *MockEmbeddingService) EmbedCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

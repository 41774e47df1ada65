package domain

import "sync"

// RuntimeConfig tracks which services are available at runtime.
// This is determined at startup and can be updated dynamically for AI services.
// Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	LockBackend  string // "redis" or "postgres"
	QueueBackend string // "redis" or "postgres"
	CacheEnabled bool   // redis result cache in front of postgres

	// Dynamic capability flags (updated when AI services change)
	analysisAvailable  bool
	embeddingAvailable bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(lockBackend, queueBackend string, cacheEnabled bool) *RuntimeConfig {
	return &RuntimeConfig{
		LockBackend:  lockBackend,
		QueueBackend: queueBackend,
		CacheEnabled: cacheEnabled,
	}
}

// AnalysisAvailable returns whether the analysis provider is configured
func (c *RuntimeConfig) AnalysisAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.analysisAvailable
}

// EmbeddingAvailable returns whether embedding service is available
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// SetAnalysisAvailable updates the analysis availability flag
func (c *RuntimeConfig) SetAnalysisAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.analysisAvailable = available
}

// SetEmbeddingAvailable updates the embedding availability flag
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// CanAnalyze returns true if documents can be sent for analysis
func (c *RuntimeConfig) CanAnalyze() bool {
	return c.AnalysisAvailable()
}

// CanEmbedClauses returns true if clause embeddings can be generated
func (c *RuntimeConfig) CanEmbedClauses() bool {
	return c.EmbeddingAvailable()
}

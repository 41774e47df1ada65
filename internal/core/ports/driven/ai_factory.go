package driven

// AISettings configures an AI provider connection.
type AISettings struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// IsConfigured reports whether the settings name a provider.
func (s *AISettings) IsConfigured() bool {
	return s != nil && s.Provider != ""
}

// AIServiceFactory creates AI services from settings.
type AIServiceFactory interface {
	// CreateAnalysisService builds the document analysis client.
	// Returns nil, nil when the settings are not configured.
	CreateAnalysisService(settings *AISettings) (AnalysisService, error)

	// CreateEmbeddingService builds the clause embedding client.
	// Returns nil, nil when the settings are not configured.
	CreateEmbeddingService(settings *AISettings) (EmbeddingService, error)
}

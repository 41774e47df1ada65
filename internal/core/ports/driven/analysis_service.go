package driven

import (
	"context"

	"github.com/custodia-labs/lexcore/internal/core/domain"
)

// AnalysisService is the AI provider boundary for document analysis.
// Implementations return normalized domain values; enum strings coming
// back from the model are validated and lowercased at this boundary.
// Any provider failure, malformed response, or context timeout must be
// reported wrapped in domain.ErrUpstreamService.
type AnalysisService interface {
	// RunExtraction extracts entities from the contract text
	RunExtraction(ctx context.Context, text string) ([]*domain.Entity, error)

	// RunJurisdictionAnalysis detects and assesses the governing jurisdiction
	RunJurisdictionAnalysis(ctx context.Context, text string) (*domain.JurisdictionAnalysis, error)

	// RunRiskAnalysis detects risky, unfair, or unusual clauses.
	// Clause numbers and titles are passed along so the model can cite them.
	RunRiskAnalysis(ctx context.Context, text string, clauses []*domain.Clause) ([]*domain.Risk, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the provider is reachable
	Ping(ctx context.Context) error

	// Close releases resources held by the service
	Close() error
}

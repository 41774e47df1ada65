package driven

import (
	"context"

	"github.com/custodia-labs/lexcore/internal/core/domain"
)

// AnalysisResultStore persists one payload per (document, kind).
type AnalysisResultStore interface {
	// Store writes a result with first-committer-wins semantics: if a
	// result for the same (document, kind) already exists the incoming
	// one is discarded and the stored winner is returned with
	// committed=false. Callers treat a lost race the same as a cache hit.
	Store(ctx context.Context, res *domain.AnalysisResult) (stored *domain.AnalysisResult, committed bool, err error)

	// GetCached retrieves the current result for (document, kind).
	// Returns domain.ErrNotFound on a miss.
	GetCached(ctx context.Context, documentID string, kind domain.AnalysisKind) (*domain.AnalysisResult, error)

	// Supersede removes the current result for (document, kind) so an
	// explicit re-analysis can commit a fresh one.
	Supersede(ctx context.Context, documentID string, kind domain.AnalysisKind) error

	// DeleteByDocument removes all results for a document
	DeleteByDocument(ctx context.Context, documentID string) error
}

// FindingStore persists the row-level outputs of analyses.
type FindingStore interface {
	// SaveBatch inserts findings in one transaction
	SaveBatch(ctx context.Context, findings []*domain.Finding) error

	// GetByDocument retrieves findings for a document, optionally
	// filtered by kind (empty kind means all)
	GetByDocument(ctx context.Context, documentID string, kind domain.AnalysisKind) ([]*domain.Finding, error)

	// DeleteByDocument removes all findings for a document
	DeleteByDocument(ctx context.Context, documentID string, kind domain.AnalysisKind) error
}

package driving

import (
	"context"

	"github.com/custodia-labs/lexcore/internal/core/domain"
)

// ProcessRequest submits a contract for segmentation and analysis.
type ProcessRequest struct {
	Title        string `json:"title"`
	Text         string `json:"text"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
}

// ProcessService drives the analysis pipeline.
type ProcessService interface {
	// ProcessDocument creates a document and runs the full pipeline
	// synchronously. Validation failures return domain.ErrInvalidInput
	// before anything is persisted.
	ProcessDocument(ctx context.Context, req ProcessRequest) (*domain.ProcessResult, error)

	// Reanalyze re-runs the analyses for an existing document using its
	// stored clauses. With supersede=true cached results are replaced;
	// otherwise cached kinds are served as-is. Returns
	// domain.ErrAnalysisInProgress if a run already holds the document.
	Reanalyze(ctx context.Context, documentID string, supersede bool) (*domain.ProcessResult, error)
}

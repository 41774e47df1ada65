package driving

import (
	"context"

	"github.com/custodia-labs/lexcore/internal/core/domain"
)

// ContractService exposes read and maintenance operations on stored
// contracts.
type ContractService interface {
	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// GetWithClauses retrieves a document and its clauses in document order
	GetWithClauses(ctx context.Context, id string) (*domain.DocumentWithClauses, error)

	// List retrieves documents matching the filter, newest first
	List(ctx context.Context, filter domain.DocumentFilter) ([]*domain.Document, error)

	// GetFindings retrieves findings for a document, optionally filtered
	// by kind (empty kind means all)
	GetFindings(ctx context.Context, documentID string, kind domain.AnalysisKind) ([]*domain.Finding, error)

	// GetAnalysis retrieves the stored raw payload for one analysis kind
	GetAnalysis(ctx context.Context, documentID string, kind domain.AnalysisKind) (*domain.AnalysisResult, error)

	// Segment splits contract text into clauses without persisting anything
	Segment(ctx context.Context, text string) ([]*domain.Clause, error)

	// Delete removes a document with its clauses, findings and results
	Delete(ctx context.Context, id string) error

	// EnqueueReanalysis schedules an asynchronous re-analysis task
	EnqueueReanalysis(ctx context.Context, documentID string, supersede bool) (*domain.Task, error)

	// GetTask retrieves a background task by ID
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)
}

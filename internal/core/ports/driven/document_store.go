package driven

import (
	"context"

	"github.com/custodia-labs/lexcore/internal/core/domain"
)

// DocumentStore handles document persistence (PostgreSQL)
type DocumentStore interface {
	// Save creates or updates a document
	Save(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List retrieves documents matching the filter, newest first
	List(ctx context.Context, filter domain.DocumentFilter) ([]*domain.Document, error)

	// UpdateStatus writes a status transition. ProcessedAt is set when the
	// new status is terminal.
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error

	// UpdateJurisdiction records the detected jurisdiction code
	UpdateJurisdiction(ctx context.Context, id string, jurisdiction string) error

	// Delete deletes a document and, via cascade, its clauses and findings
	Delete(ctx context.Context, id string) error

	// Count returns total document count
	Count(ctx context.Context) (int, error)
}

// ClauseStore handles clause persistence (PostgreSQL)
type ClauseStore interface {
	// SaveBatch inserts all clauses of a document in one transaction.
	// A unique-key collision on (document_id, id) surfaces
	// domain.ErrDuplicateClause and rolls back the whole batch.
	SaveBatch(ctx context.Context, clauses []*domain.Clause) error

	// GetByDocument retrieves all clauses for a document in document order
	GetByDocument(ctx context.Context, documentID string) ([]*domain.Clause, error)

	// Get retrieves a single clause by ID
	Get(ctx context.Context, id string) (*domain.Clause, error)

	// DeleteByDocument deletes all clauses for a document
	DeleteByDocument(ctx context.Context, documentID string) error
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/lexcore/internal/core/domain"
	"github.com/custodia-labs/lexcore/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements driven.DocumentStore using PostgreSQL
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new PostgreSQL document store
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Save creates or updates a document
func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (id, title, text, jurisdiction, status, uploaded_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			jurisdiction = EXCLUDED.jurisdiction,
			status = EXCLUDED.status,
			processed_at = EXCLUDED.processed_at`

	_, err := s.db.ExecContext(ctx, query,
		doc.ID, doc.Title, doc.Text, doc.Jurisdiction, doc.Status,
		doc.UploadedAt, NullTime(doc.ProcessedAt))
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Get retrieves a document by ID
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	query := `
		SELECT id, title, text, jurisdiction, status, uploaded_at, processed_at
		FROM documents WHERE id = $1`

	return scanDocument(s.db.QueryRowContext(ctx, query, id))
}

// List retrieves documents matching the filter, newest first
func (s *DocumentStore) List(ctx context.Context, filter domain.DocumentFilter) ([]*domain.Document, error) {
	query := `
		SELECT id, title, text, jurisdiction, status, uploaded_at, processed_at
		FROM documents
		WHERE ($1 = '' OR status = $1)
		ORDER BY uploaded_at DESC
		LIMIT $2 OFFSET $3`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, query, string(filter.Status), limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// UpdateStatus writes a status transition. The WHERE clause enforces the
// state machine in the database so a stale writer cannot move a document
// another run already finished or started.
func (s *DocumentStore) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: status %q", domain.ErrInvalidInput, status)
	}

	var query string
	switch status {
	case domain.StatusProcessing:
		// A new run may start from pending or any terminal state, never
		// over another run.
		query = `
			UPDATE documents SET status = $2
			WHERE id = $1 AND status <> 'processing'`
	default:
		query = `
			UPDATE documents SET status = $2, processed_at = now()
			WHERE id = $1 AND status = 'processing'`
	}

	res, err := s.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n == 0 {
		exists, cerr := s.exists(ctx, id)
		if cerr != nil {
			return cerr
		}
		if !exists {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%w: illegal transition to %s", domain.ErrInvalidInput, status)
	}
	return nil
}

// UpdateJurisdiction records the detected jurisdiction code
func (s *DocumentStore) UpdateJurisdiction(ctx context.Context, id string, jurisdiction string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET jurisdiction = $2 WHERE id = $1`, id, jurisdiction)
	if err != nil {
		return fmt.Errorf("update jurisdiction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update jurisdiction: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete deletes a document; clauses and findings cascade
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns total document count
func (s *DocumentStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

func (s *DocumentStore) exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check document: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var status string
	var processedAt sql.NullTime

	err := row.Scan(&doc.ID, &doc.Title, &doc.Text, &doc.Jurisdiction,
		&status, &doc.UploadedAt, &processedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}

	doc.Status = domain.DocumentStatus(status)
	doc.ProcessedAt = TimePtr(processedAt)
	return &doc, nil
}

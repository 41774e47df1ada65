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
var _ driven.AnalysisResultStore = (*ResultStore)(nil)

// ResultStore implements driven.AnalysisResultStore using PostgreSQL.
// The (document_id, kind) primary key plus ON CONFLICT DO NOTHING gives
// first-committer-wins without explicit locking.
type ResultStore struct {
	db *DB
}

// NewResultStore creates a new PostgreSQL analysis result store
func NewResultStore(db *DB) *ResultStore {
	return &ResultStore{db: db}
}

// Store writes a result. If another writer committed first the insert is
// a no-op and the stored winner is read back with committed=false.
func (s *ResultStore) Store(ctx context.Context, res *domain.AnalysisResult) (*domain.AnalysisResult, bool, error) {
	query := `
		INSERT INTO analysis_results (document_id, kind, payload, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (document_id, kind) DO NOTHING`

	result, err := s.db.ExecContext(ctx, query,
		res.DocumentID, res.Kind, []byte(res.Payload), res.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("store analysis result: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("store analysis result: %w", err)
	}
	if n == 1 {
		return res, true, nil
	}

	winner, err := s.GetCached(ctx, res.DocumentID, res.Kind)
	if err != nil {
		return nil, false, fmt.Errorf("read back winning result: %w", err)
	}
	return winner, false, nil
}

// GetCached retrieves the current result for (document, kind)
func (s *ResultStore) GetCached(ctx context.Context, documentID string, kind domain.AnalysisKind) (*domain.AnalysisResult, error) {
	query := `
		SELECT document_id, kind, payload, created_at
		FROM analysis_results WHERE document_id = $1 AND kind = $2`

	var res domain.AnalysisResult
	var payload []byte
	err := s.db.QueryRowContext(ctx, query, documentID, kind).
		Scan(&res.DocumentID, &res.Kind, &payload, &res.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis result: %w", err)
	}
	res.Payload = payload
	return &res, nil
}

// Supersede removes the current result for (document, kind)
func (s *ResultStore) Supersede(ctx context.Context, documentID string, kind domain.AnalysisKind) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM analysis_results WHERE document_id = $1 AND kind = $2`,
		documentID, kind)
	if err != nil {
		return fmt.Errorf("supersede analysis result: %w", err)
	}
	return nil
}

// DeleteByDocument removes all results for a document
func (s *ResultStore) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM analysis_results WHERE document_id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("delete analysis results: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/lexcore/internal/core/domain"
	"github.com/custodia-labs/lexcore/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.FindingStore = (*FindingStore)(nil)

// FindingStore implements driven.FindingStore using PostgreSQL.
// clause_id is a weak reference; deleting a clause nulls it via
// ON DELETE SET NULL, the finding itself survives.
type FindingStore struct {
	db *DB
}

// NewFindingStore creates a new PostgreSQL finding store
func NewFindingStore(db *DB) *FindingStore {
	return &FindingStore{db: db}
}

// SaveBatch inserts findings in one transaction
func (s *FindingStore) SaveBatch(ctx context.Context, findings []*domain.Finding) error {
	if len(findings) == 0 {
		return nil
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO findings
				(id, document_id, kind, category, level, description,
				 detail, recommendation, clause_ref, clause_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`)
		if err != nil {
			return fmt.Errorf("prepare finding insert: %w", err)
		}
		defer stmt.Close()

		for _, f := range findings {
			_, err := stmt.ExecContext(ctx, f.ID, f.DocumentID, f.Kind,
				f.Category, f.Level, f.Description, f.Detail,
				f.Recommendation, f.ClauseRef, NullString(f.ClauseID), f.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert finding: %w", err)
			}
		}
		return nil
	})
}

// GetByDocument retrieves findings for a document, optionally by kind
func (s *FindingStore) GetByDocument(ctx context.Context, documentID string, kind domain.AnalysisKind) ([]*domain.Finding, error) {
	query := `
		SELECT id, document_id, kind, category, level, description,
		       detail, recommendation, clause_ref, clause_id, created_at
		FROM findings
		WHERE document_id = $1 AND ($2 = '' OR kind = $2)
		ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, documentID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}
	defer rows.Close()

	var findings []*domain.Finding
	for rows.Next() {
		var f domain.Finding
		var clauseID sql.NullString
		err := rows.Scan(&f.ID, &f.DocumentID, &f.Kind, &f.Category,
			&f.Level, &f.Description, &f.Detail, &f.Recommendation,
			&f.ClauseRef, &clauseID, &f.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		f.ClauseID = StringPtr(clauseID)
		findings = append(findings, &f)
	}
	return findings, rows.Err()
}

// DeleteByDocument removes findings for a document, optionally by kind
func (s *FindingStore) DeleteByDocument(ctx context.Context, documentID string, kind domain.AnalysisKind) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM findings WHERE document_id = $1 AND ($2 = '' OR kind = $2)`,
		documentID, string(kind))
	if err != nil {
		return fmt.Errorf("delete findings: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/lexcore/internal/core/domain"
	"github.com/custodia-labs/lexcore/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ClauseStore = (*ClauseStore)(nil)

// ClauseStore implements driven.ClauseStore using PostgreSQL.
// Embeddings are stored inline as JSONB float arrays.
type ClauseStore struct {
	db *DB
}

// NewClauseStore creates a new PostgreSQL clause store
func NewClauseStore(db *DB) *ClauseStore {
	return &ClauseStore{db: db}
}

// SaveBatch inserts all clauses of a document in one transaction.
// Document order is preserved through the position column. Any
// unique-key collision rolls back the batch and surfaces
// domain.ErrDuplicateClause.
func (s *ClauseStore) SaveBatch(ctx context.Context, clauses []*domain.Clause) error {
	if len(clauses) == 0 {
		return nil
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO clauses (id, document_id, position, number, title, text, embedding, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
		if err != nil {
			return fmt.Errorf("prepare clause insert: %w", err)
		}
		defer stmt.Close()

		for i, c := range clauses {
			var embedding any
			if c.Embedding != nil {
				data, err := json.Marshal(c.Embedding)
				if err != nil {
					return fmt.Errorf("marshal embedding: %w", err)
				}
				embedding = data
			}

			_, err := stmt.ExecContext(ctx, c.ID, c.DocumentID, i,
				c.Number, c.Title, c.Text, embedding, c.CreatedAt)
			if err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: clause %s in document %s",
						domain.ErrDuplicateClause, c.ID, c.DocumentID)
				}
				return fmt.Errorf("insert clause: %w", err)
			}
		}
		return nil
	})
}

// GetByDocument retrieves all clauses for a document in document order
func (s *ClauseStore) GetByDocument(ctx context.Context, documentID string) ([]*domain.Clause, error) {
	query := `
		SELECT id, document_id, number, title, text, embedding, created_at
		FROM clauses WHERE document_id = $1 ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list clauses: %w", err)
	}
	defer rows.Close()

	var clauses []*domain.Clause
	for rows.Next() {
		c, err := scanClause(rows)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}
	return clauses, rows.Err()
}

// Get retrieves a single clause by ID
func (s *ClauseStore) Get(ctx context.Context, id string) (*domain.Clause, error) {
	query := `
		SELECT id, document_id, number, title, text, embedding, created_at
		FROM clauses WHERE id = $1`

	return scanClause(s.db.QueryRowContext(ctx, query, id))
}

// DeleteByDocument deletes all clauses for a document
func (s *ClauseStore) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM clauses WHERE document_id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("delete clauses: %w", err)
	}
	return nil
}

func scanClause(row rowScanner) (*domain.Clause, error) {
	var c domain.Clause
	var embedding []byte

	err := row.Scan(&c.ID, &c.DocumentID, &c.Number, &c.Title, &c.Text,
		&embedding, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan clause: %w", err)
	}

	if len(embedding) > 0 {
		if err := json.Unmarshal(embedding, &c.Embedding); err != nil {
			return nil, fmt.Errorf("unmarshal embedding: %w", err)
		}
	}
	return &c, nil
}

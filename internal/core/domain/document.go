package domain

import (
	"strings"
	"time"
)

// Document is a legal contract submitted for analysis. Text is the full
// plain-text body; Jurisdiction is either caller-supplied or detected by
// the jurisdiction analysis.
type Document struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Text         string         `json:"text"`
	Jurisdiction string         `json:"jurisdiction,omitempty"`
	Status       DocumentStatus `json:"status"`
	UploadedAt   time.Time      `json:"uploaded_at"`
	ProcessedAt  *time.Time     `json:"processed_at,omitempty"`
}

// Validate checks that a document is acceptable for processing.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Text) == "" {
		return ErrInvalidInput
	}
	return nil
}

// Clause is one segment of a document produced by the segmenter. Number and
// Title are both empty for the preamble clause and for the whole-text
// fallback clause. Clauses are immutable once stored.
type Clause struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Number     string    `json:"number,omitempty"`
	Title      string    `json:"title,omitempty"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// DocumentWithClauses bundles a document with its clause list in
// document order.
type DocumentWithClauses struct {
	Document *Document `json:"document"`
	Clauses  []*Clause `json:"clauses"`
}

// DocumentFilter selects documents for listing.
type DocumentFilter struct {
	Status DocumentStatus
	Limit  int
	Offset int
}

package domain

import (
	"fmt"
	"strings"
	"time"
)

// KindStatus is the per-kind outcome of one pipeline run.
type KindStatus string

const (
	KindSucceeded KindStatus = "succeeded"
	KindCached    KindStatus = "cached"
	KindFailed    KindStatus = "failed"
)

// KindOutcome records how a single analysis kind fared during a run.
// Reason is set only for failures.
type KindOutcome struct {
	Kind   AnalysisKind `json:"kind"`
	Status KindStatus   `json:"status"`
	Reason string       `json:"reason,omitempty"`
}

// ProcessResult is the synchronous result of a full pipeline run.
type ProcessResult struct {
	DocumentID   string         `json:"document_id"`
	Status       DocumentStatus `json:"status"`
	Jurisdiction string         `json:"jurisdiction,omitempty"`
	Clauses      []*Clause      `json:"clauses"`
	Findings     []*Finding     `json:"findings"`
	Outcomes     []KindOutcome  `json:"outcomes"`
	Message      string         `json:"message"`
	Duration     time.Duration  `json:"duration"`
}

// Succeeded reports whether every kind ran or was served from cache.
func (r *ProcessResult) Succeeded() bool {
	for _, o := range r.Outcomes {
		if o.Status == KindFailed {
			return false
		}
	}
	return true
}

// Summary renders the per-kind outcomes as a single human-readable line.
func (r *ProcessResult) Summary() string {
	parts := make([]string, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		switch o.Status {
		case KindSucceeded:
			parts = append(parts, fmt.Sprintf("%s succeeded", o.Kind))
		case KindCached:
			parts = append(parts, fmt.Sprintf("%s served from cache", o.Kind))
		case KindFailed:
			parts = append(parts, fmt.Sprintf("%s failed: %s", o.Kind, o.Reason))
		}
	}
	return strings.Join(parts, "; ")
}

package domain

// DocumentStatus tracks a document through the analysis pipeline.
//
// Within a single run the status only moves forward:
//
//	pending -> processing -> completed
//	                      -> completed_with_warnings
//	                      -> failed
//
// A later run (explicit re-analysis) restarts from a terminal state by
// moving back to processing; a document that is currently processing can
// never be moved by anyone but the run that owns it.
type DocumentStatus string

const (
	StatusPending               DocumentStatus = "pending"
	StatusProcessing            DocumentStatus = "processing"
	StatusCompleted             DocumentStatus = "completed"
	StatusCompletedWithWarnings DocumentStatus = "completed_with_warnings"
	StatusFailed                DocumentStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted,
		StatusCompletedWithWarnings, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s ends a run.
func (s DocumentStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCompletedWithWarnings, StatusFailed:
		return true
	}
	return false
}

// CanTransition reports whether a status write from s to next is allowed.
// Terminal states absorb everything except the start of a new run.
func (s DocumentStatus) CanTransition(next DocumentStatus) bool {
	if !next.Valid() {
		return false
	}
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next.Terminal()
	case StatusCompleted, StatusCompletedWithWarnings, StatusFailed:
		// Only a fresh run may leave a terminal state.
		return next == StatusProcessing
	}
	return false
}

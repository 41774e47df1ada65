package domain

import "errors"

// Sentinel errors shared across services and adapters. Adapters wrap
// these with %w so callers can test with errors.Is.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates caller-supplied data failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateClause indicates a clause insert collided with an
	// existing (document, clause) pair.
	ErrDuplicateClause = errors.New("duplicate clause")

	// ErrUpstreamService indicates the analysis provider failed or
	// timed out. Always a soft, per-kind failure.
	ErrUpstreamService = errors.New("upstream service error")

	// ErrAnalysisInProgress indicates another run holds the document lock.
	ErrAnalysisInProgress = errors.New("analysis already in progress")

	// ErrInvalidProvider indicates an unsupported AI provider name.
	ErrInvalidProvider = errors.New("invalid AI provider")

	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

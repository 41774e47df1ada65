package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/lexcore/internal/core/domain"
)

// MockAnalysisService is a configurable AnalysisService for testing.
// Each Run function can be overridden per test; unset functions return
// empty successful results. Call counters are safe for concurrent use.
type MockAnalysisService struct {
	mu sync.Mutex

	ExtractionFunc   func(ctx context.Context, text string) ([]*domain.Entity, error)
	JurisdictionFunc func(ctx context.Context, text string) (*domain.JurisdictionAnalysis, error)
	RiskFunc         func(ctx context.Context, text string, clauses []*domain.Clause) ([]*domain.Risk, error)

	ExtractionCalls   int
	JurisdictionCalls int
	RiskCalls         int
}

// NewMockAnalysisService creates a new MockAnalysisService
func NewMockAnalysisService() *MockAnalysisService {
	return &MockAnalysisService{}
}

func (m *MockAnalysisService) RunExtraction(ctx context.Context, text string) ([]*domain.Entity, error) {
	m.mu.Lock()
	m.ExtractionCalls++
	fn := m.ExtractionFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, text)
	}
	return []*domain.Entity{}, nil
}

func (m *MockAnalysisService) RunJurisdictionAnalysis(ctx context.Context, text string) (*domain.JurisdictionAnalysis, error) {
	m.mu.Lock()
	m.JurisdictionCalls++
	fn := m.JurisdictionFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, text)
	}
	return &domain.JurisdictionAnalysis{
		Jurisdiction: "England and Wales",
		Code:         "UK_EW",
		Confidence:   domain.LevelHigh,
		Assessment:   "Enforceable under English law.",
	}, nil
}

func (m *MockAnalysisService) RunRiskAnalysis(ctx context.Context, text string, clauses []*domain.Clause) ([]*domain.Risk, error) {
	m.mu.Lock()
	m.RiskCalls++
	fn := m.RiskFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, text, clauses)
	}
	return []*domain.Risk{}, nil
}

func (m *MockAnalysisService) Model() string { return "mock-model" }

func (m *MockAnalysisService) Ping(ctx context.Context) error { return nil }

func (m *MockAnalysisService) Close() error { return nil }

// Calls returns the per-kind call counts.
func (m *MockAnalysisService) Calls() (extraction, jurisdiction, risk int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ExtractionCalls, m.JurisdictionCalls, m.RiskCalls
}

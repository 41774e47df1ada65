package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/lexcore/internal/core/domain"
)

// MockAnalysisResultStore is an in-memory AnalysisResultStore with
// first-committer-wins semantics for testing
type MockAnalysisResultStore struct {
	mu      sync.RWMutex
	results map[string]*domain.AnalysisResult // key: documentID:kind

	// Error injection
	StoreErr     error
	GetCachedErr error

	// StoreCalls counts Store invocations
	StoreCalls int
}

// NewMockAnalysisResultStore creates a new MockAnalysisResultStore
func NewMockAnalysisResultStore() *MockAnalysisResultStore {
	return &MockAnalysisResultStore{
		results: make(map[string]*domain.AnalysisResult),
	}
}

func key(documentID string, kind domain.AnalysisKind) string {
	return documentID + ":" + string(kind)
}

func (m *MockAnalysisResultStore) Store(ctx context.Context, res *domain.AnalysisResult) (*domain.AnalysisResult, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StoreCalls++
	if m.StoreErr != nil {
		return nil, false, m.StoreErr
	}
	k := key(res.DocumentID, res.Kind)
	if existing, ok := m.results[k]; ok {
		cp := *existing
		return &cp, false, nil
	}
	cp := *res
	m.results[k] = &cp
	out := cp
	return &out, true, nil
}

func (m *MockAnalysisResultStore) GetCached(ctx context.Context, documentID string, kind domain.AnalysisKind) (*domain.AnalysisResult, error) {
	if m.GetCachedErr != nil {
		return nil, m.GetCachedErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	res, ok := m.results[key(documentID, kind)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (m *MockAnalysisResultStore) Supersede(ctx context.Context, documentID string, kind domain.AnalysisKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.results, key(documentID, kind))
	return nil
}

func (m *MockAnalysisResultStore) DeleteByDocument(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, kind := range domain.AllKinds() {
		delete(m.results, key(documentID, kind))
	}
	return nil
}

// Seed stores a result directly, bypassing the race semantics.
func (m *MockAnalysisResultStore) Seed(res *domain.AnalysisResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *res
	m.results[key(res.DocumentID, res.Kind)] = &cp
}

func (m *MockAnalysisResultStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = make(map[string]*domain.AnalysisResult)
	m.StoreCalls = 0
}

// MockFindingStore is an in-memory FindingStore for testing
type MockFindingStore struct {
	mu       sync.RWMutex
	findings map[string][]*domain.Finding // key: documentID

	// Error injection
	SaveBatchErr error
}

// NewMockFindingStore creates a new MockFindingStore
func NewMockFindingStore() *MockFindingStore {
	return &MockFindingStore{
		findings: make(map[string][]*domain.Finding),
	}
}

func (m *MockFindingStore) SaveBatch(ctx context.Context, findings []*domain.Finding) error {
	if m.SaveBatchErr != nil {
		return m.SaveBatchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range findings {
		cp := *f
		m.findings[f.DocumentID] = append(m.findings[f.DocumentID], &cp)
	}
	return nil
}

func (m *MockFindingStore) GetByDocument(ctx context.Context, documentID string, kind domain.AnalysisKind) ([]*domain.Finding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Finding
	for _, f := range m.findings[documentID] {
		if kind != "" && f.Kind != kind {
			continue
		}
		cp := *f
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockFindingStore) DeleteByDocument(ctx context.Context, documentID string, kind domain.AnalysisKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if kind == "" {
		delete(m.findings, documentID)
		return nil
	}
	var kept []*domain.Finding
	for _, f := range m.findings[documentID] {
		if f.Kind != kind {
			kept = append(kept, f)
		}
	}
	m.findings[documentID] = kept
	return nil
}

func (m *MockFindingStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findings = make(map[string][]*domain.Finding)
}

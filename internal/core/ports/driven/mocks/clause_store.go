package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/lexcore/internal/core/domain"
)

// MockClauseStore is an in-memory ClauseStore for testing
type MockClauseStore struct {
	mu       sync.RWMutex
	byDoc    map[string][]*domain.Clause
	byID     map[string]*domain.Clause

	// Error injection
	SaveBatchErr error
}

// NewMockClauseStore creates a new MockClauseStore
func NewMockClauseStore() *MockClauseStore {
	return &MockClauseStore{
		byDoc: make(map[string][]*domain.Clause),
		byID:  make(map[string]*domain.Clause),
	}
}

func (m *MockClauseStore) SaveBatch(ctx context.Context, clauses []*domain.Clause) error {
	if m.SaveBatchErr != nil {
		return m.SaveBatchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	// Reject the whole batch on any duplicate, nothing is written.
	for _, c := range clauses {
		if _, exists := m.byID[c.DocumentID+":"+c.ID]; exists {
			return domain.ErrDuplicateClause
		}
	}
	for _, c := range clauses {
		cp := *c
		m.byID[c.DocumentID+":"+c.ID] = &cp
		m.byDoc[c.DocumentID] = append(m.byDoc[c.DocumentID], &cp)
	}
	return nil
}

func (m *MockClauseStore) GetByDocument(ctx context.Context, documentID string) ([]*domain.Clause, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	clauses := m.byDoc[documentID]
	out := make([]*domain.Clause, len(clauses))
	for i, c := range clauses {
		cp := *c
		out[i] = &cp
	}
	return out, nil
}

func (m *MockClauseStore) Get(ctx context.Context, id string) (*domain.Clause, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.byID {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockClauseStore) DeleteByDocument(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byDoc[documentID] {
		delete(m.byID, documentID+":"+c.ID)
	}
	delete(m.byDoc, documentID)
	return nil
}

// Helper methods for testing

func (m *MockClauseStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byDoc = make(map[string][]*domain.Clause)
	m.byID = make(map[string]*domain.Clause)
}

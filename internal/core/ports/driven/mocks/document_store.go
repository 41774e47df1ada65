package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/lexcore/internal/core/domain"
)

// MockDocumentStore is an in-memory DocumentStore for testing
type MockDocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*domain.Document

	// Error injection
	SaveErr         error
	UpdateStatusErr error

	// StatusLog records every status transition in order
	StatusLog []domain.DocumentStatus
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		documents: make(map[string]*domain.Document),
	}
}

func (m *MockDocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *doc
	m.documents[doc.ID] = &cp
	return nil
}

func (m *MockDocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (m *MockDocumentStore) List(ctx context.Context, filter domain.DocumentFilter) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var docs []*domain.Document
	for _, d := range m.documents {
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		cp := *d
		docs = append(docs, &cp)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
	if filter.Offset >= len(docs) {
		return []*domain.Document{}, nil
	}
	docs = docs[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(docs) {
		docs = docs[:filter.Limit]
	}
	return docs, nil
}

func (m *MockDocumentStore) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	if m.UpdateStatusErr != nil {
		return m.UpdateStatusErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Status = status
	if status.Terminal() {
		now := time.Now()
		doc.ProcessedAt = &now
	}
	m.StatusLog = append(m.StatusLog, status)
	return nil
}

func (m *MockDocumentStore) UpdateJurisdiction(ctx context.Context, id string, jurisdiction string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Jurisdiction = jurisdiction
	return nil
}

func (m *MockDocumentStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.documents, id)
	return nil
}

func (m *MockDocumentStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.documents), nil
}

// Helper methods for testing

func (m *MockDocumentStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents = make(map[string]*domain.Document)
	m.StatusLog = nil
}

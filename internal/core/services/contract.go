package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/custodia-labs/lexcore/internal/core/domain"
	"github.com/custodia-labs/lexcore/internal/core/ports/driven"
	"github.com/custodia-labs/lexcore/internal/core/ports/driving"
)

// Ensure ContractService implements the driving port
var _ driving.ContractService = (*ContractService)(nil)

// ContractServiceConfig holds the dependencies for contract reads and
// maintenance.
type ContractServiceConfig struct {
	Documents driven.DocumentStore
	Clauses   driven.ClauseStore
	Results   driven.AnalysisResultStore
	Findings  driven.FindingStore
	Queue     driven.TaskQueue
	Logger    *slog.Logger
}

// ContractService exposes stored contracts, their clauses, findings and
// raw analysis payloads, plus deletion and async re-analysis.
type ContractService struct {
	documents driven.DocumentStore
	clauses   driven.ClauseStore
	results   driven.AnalysisResultStore
	findings  driven.FindingStore
	queue     driven.TaskQueue
	logger    *slog.Logger
}

// NewContractService creates a new ContractService
func NewContractService(cfg ContractServiceConfig) *ContractService {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &ContractService{
		documents: cfg.Documents,
		clauses:   cfg.Clauses,
		results:   cfg.Results,
		findings:  cfg.Findings,
		queue:     cfg.Queue,
		logger:    cfg.Logger,
	}
}

func (s *ContractService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.documents.Get(ctx, id)
}

func (s *ContractService) GetWithClauses(ctx context.Context, id string) (*domain.DocumentWithClauses, error) {
	doc, err := s.documents.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	clauses, err := s.clauses.GetByDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load clauses: %w", err)
	}
	return &domain.DocumentWithClauses{Document: doc, Clauses: clauses}, nil
}

func (s *ContractService) List(ctx context.Context, filter domain.DocumentFilter) ([]*domain.Document, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.documents.List(ctx, filter)
}

func (s *ContractService) GetFindings(ctx context.Context, documentID string, kind domain.AnalysisKind) ([]*domain.Finding, error) {
	if kind != "" && !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown analysis kind %q", domain.ErrInvalidInput, kind)
	}
	if _, err := s.documents.Get(ctx, documentID); err != nil {
		return nil, err
	}
	return s.findings.GetByDocument(ctx, documentID, kind)
}

func (s *ContractService) GetAnalysis(ctx context.Context, documentID string, kind domain.AnalysisKind) (*domain.AnalysisResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown analysis kind %q", domain.ErrInvalidInput, kind)
	}
	if _, err := s.documents.Get(ctx, documentID); err != nil {
		return nil, err
	}
	return s.results.GetCached(ctx, documentID, kind)
}

// Segment splits contract text into clauses without persisting anything.
func (s *ContractService) Segment(ctx context.Context, text string) ([]*domain.Clause, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrInvalidInput
	}
	return Segment(text), nil
}

// Delete removes the document and all derived data. The schema cascades
// clauses and findings, but stores are cleared explicitly so non-SQL
// backends behave the same.
func (s *ContractService) Delete(ctx context.Context, id string) error {
	if _, err := s.documents.Get(ctx, id); err != nil {
		return err
	}
	if err := s.findings.DeleteByDocument(ctx, id, ""); err != nil {
		return fmt.Errorf("delete findings: %w", err)
	}
	if err := s.results.DeleteByDocument(ctx, id); err != nil {
		return fmt.Errorf("delete analysis results: %w", err)
	}
	if err := s.clauses.DeleteByDocument(ctx, id); err != nil {
		return fmt.Errorf("delete clauses: %w", err)
	}
	if err := s.documents.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	s.logger.Info("document deleted", "document_id", id)
	return nil
}

// EnqueueReanalysis schedules an asynchronous re-analysis task.
func (s *ContractService) EnqueueReanalysis(ctx context.Context, documentID string, supersede bool) (*domain.Task, error) {
	doc, err := s.documents.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status == domain.StatusProcessing {
		return nil, domain.ErrAnalysisInProgress
	}

	task := domain.NewAnalyzeDocumentTask(documentID, supersede)
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return nil, fmt.Errorf("enqueue task: %w", err)
	}
	s.logger.Info("re-analysis queued", "document_id", documentID, "task_id", task.ID, "supersede", supersede)
	return task, nil
}

func (s *ContractService) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	return s.queue.GetTask(ctx, taskID)
}

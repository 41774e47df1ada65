package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/lexcore/internal/core/domain"
	"github.com/custodia-labs/lexcore/internal/core/ports/driven"
	"github.com/custodia-labs/lexcore/internal/core/ports/driving"
	"github.com/custodia-labs/lexcore/internal/runtime"
)

// Ensure AnalysisOrchestrator implements ProcessService
var _ driving.ProcessService = (*AnalysisOrchestrator)(nil)

const (
	defaultCallTimeout = 60 * time.Second
	defaultLockTTL     = 5 * time.Minute
)

// OrchestratorConfig holds the dependencies for the analysis pipeline.
type OrchestratorConfig struct {
	Documents driven.DocumentStore
	Clauses   driven.ClauseStore
	Results   driven.AnalysisResultStore
	Findings  driven.FindingStore
	Lock      driven.DistributedLock
	Services  *runtime.Services
	Logger    *slog.Logger

	// CallTimeout bounds each upstream analysis call (default 60s)
	CallTimeout time.Duration

	// LockTTL is the per-document lock lifetime (default 5m)
	LockTTL time.Duration
}

// AnalysisOrchestrator runs the segmentation and analysis pipeline and
// owns every document status write.
//
// A run holds a per-document distributed lock so only one instance works
// a document at a time; within the process an additional singleflight
// group collapses concurrent calls for the same (document, kind).
type AnalysisOrchestrator struct {
	documents driven.DocumentStore
	clauses   driven.ClauseStore
	results   driven.AnalysisResultStore
	findings  driven.FindingStore
	lock      driven.DistributedLock
	services  *runtime.Services
	logger    *slog.Logger

	callTimeout time.Duration
	lockTTL     time.Duration

	group singleflight.Group
}

// NewAnalysisOrchestrator creates a new AnalysisOrchestrator
func NewAnalysisOrchestrator(cfg OrchestratorConfig) *AnalysisOrchestrator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}
	return &AnalysisOrchestrator{
		documents:   cfg.Documents,
		clauses:     cfg.Clauses,
		results:     cfg.Results,
		findings:    cfg.Findings,
		lock:        cfg.Lock,
		services:    cfg.Services,
		logger:      cfg.Logger,
		callTimeout: cfg.CallTimeout,
		lockTTL:     cfg.LockTTL,
	}
}

// ProcessDocument creates a document and runs the full pipeline synchronously.
func (o *AnalysisOrchestrator) ProcessDocument(ctx context.Context, req driving.ProcessRequest) (*domain.ProcessResult, error) {
	doc := &domain.Document{
		ID:           domain.GenerateID(),
		Title:        req.Title,
		Text:         req.Text,
		Jurisdiction: req.Jurisdiction,
		Status:       domain.StatusPending,
		UploadedAt:   time.Now(),
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	if err := o.documents.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	return o.run(ctx, doc, nil, false)
}

// Reanalyze re-runs the analyses for an existing document using its
// stored clauses. The document is never re-segmented.
func (o *AnalysisOrchestrator) Reanalyze(ctx context.Context, documentID string, supersede bool) (*domain.ProcessResult, error) {
	doc, err := o.documents.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status == domain.StatusProcessing {
		return nil, domain.ErrAnalysisInProgress
	}

	clauses, err := o.clauses.GetByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load clauses: %w", err)
	}

	return o.run(ctx, doc, clauses, supersede)
}

// run executes one pipeline pass. clauses == nil means the document is
// new and must be segmented first.
func (o *AnalysisOrchestrator) run(ctx context.Context, doc *domain.Document, clauses []*domain.Clause, supersede bool) (*domain.ProcessResult, error) {
	start := time.Now()
	lockName := "document:" + doc.ID

	acquired, err := o.lock.Acquire(ctx, lockName, o.lockTTL)
	if err != nil {
		// A broken lock backend degrades to single-instance safety
		// rather than blocking all analysis.
		o.logger.Warn("lock backend unavailable, proceeding without distributed lock",
			"document_id", doc.ID, "error", err)
	} else if !acquired {
		return nil, domain.ErrAnalysisInProgress
	} else {
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := o.lock.Release(releaseCtx, lockName); err != nil {
				o.logger.Warn("failed to release document lock", "document_id", doc.ID, "error", err)
			}
		}()
	}

	if err := o.documents.UpdateStatus(ctx, doc.ID, domain.StatusProcessing); err != nil {
		return nil, fmt.Errorf("mark processing: %w", err)
	}

	if clauses == nil {
		clauses = Segment(doc.Text)
		now := time.Now()
		for _, c := range clauses {
			c.DocumentID = doc.ID
			c.CreatedAt = now
		}
		o.embedClauses(ctx, clauses)

		if err := o.clauses.SaveBatch(ctx, clauses); err != nil {
			o.failRun(ctx, doc.ID, err)
			if errors.Is(err, domain.ErrDuplicateClause) {
				return nil, err
			}
			return nil, fmt.Errorf("save clauses: %w", err)
		}
	}

	if supersede {
		for _, kind := range domain.AllKinds() {
			if err := o.results.Supersede(ctx, doc.ID, kind); err != nil {
				o.failRun(ctx, doc.ID, err)
				return nil, fmt.Errorf("supersede %s: %w", kind, err)
			}
			if err := o.findings.DeleteByDocument(ctx, doc.ID, kind); err != nil {
				o.failRun(ctx, doc.ID, err)
				return nil, fmt.Errorf("clear %s findings: %w", kind, err)
			}
		}
	}

	outcomes := make([]domain.KindOutcome, 0, 3)
	for _, kind := range domain.AllKinds() {
		outcome, err := o.runKind(ctx, doc, clauses, kind)
		if err != nil {
			o.failRun(ctx, doc.ID, err)
			return nil, err
		}
		outcomes = append(outcomes, outcome)
	}

	status := domain.StatusCompleted
	for _, outcome := range outcomes {
		if outcome.Status == domain.KindFailed {
			status = domain.StatusCompletedWithWarnings
			break
		}
	}
	if err := o.documents.UpdateStatus(ctx, doc.ID, status); err != nil {
		return nil, fmt.Errorf("finalize status: %w", err)
	}

	findings, err := o.findings.GetByDocument(ctx, doc.ID, "")
	if err != nil {
		o.logger.Warn("failed to load findings for result", "document_id", doc.ID, "error", err)
	}

	// Re-read for the jurisdiction written during the run.
	if fresh, err := o.documents.Get(ctx, doc.ID); err == nil {
		doc = fresh
	}

	result := &domain.ProcessResult{
		DocumentID:   doc.ID,
		Status:       status,
		Jurisdiction: doc.Jurisdiction,
		Clauses:      clauses,
		Findings:     findings,
		Outcomes:     outcomes,
		Duration:     time.Since(start),
	}
	result.Message = result.Summary()

	o.logger.Info("analysis run finished",
		"document_id", doc.ID,
		"status", status,
		"clauses", len(clauses),
		"findings", len(findings),
		"duration", result.Duration)

	return result, nil
}

// runKind executes a single analysis kind with cache-before-call
// semantics. The returned error is always a hard, run-aborting failure;
// upstream problems become a failed outcome instead.
func (o *AnalysisOrchestrator) runKind(ctx context.Context, doc *domain.Document, clauses []*domain.Clause, kind domain.AnalysisKind) (domain.KindOutcome, error) {
	if _, err := o.results.GetCached(ctx, doc.ID, kind); err == nil {
		o.logger.Debug("analysis served from cache", "document_id", doc.ID, "kind", kind)
		return domain.KindOutcome{Kind: kind, Status: domain.KindCached}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		// A failing cache read is a miss, not a run abort.
		o.logger.Warn("cache read failed", "document_id", doc.ID, "kind", kind, "error", err)
	}

	if len(doc.Text) < kind.MinTextLen() {
		return domain.KindOutcome{
			Kind:   kind,
			Status: domain.KindFailed,
			Reason: fmt.Sprintf("text shorter than %d characters", kind.MinTextLen()),
		}, nil
	}

	svc := o.services.AnalysisService()
	if svc == nil {
		return domain.KindOutcome{
			Kind:   kind,
			Status: domain.KindFailed,
			Reason: "no analysis provider configured",
		}, nil
	}

	out, err := o.invoke(ctx, svc, doc, clauses, kind)
	if err != nil {
		o.logger.Warn("analysis call failed", "document_id", doc.ID, "kind", kind, "error", err)
		return domain.KindOutcome{Kind: kind, Status: domain.KindFailed, Reason: err.Error()}, nil
	}

	stored, committed, err := o.results.Store(ctx, &domain.AnalysisResult{
		DocumentID: doc.ID,
		Kind:       kind,
		Payload:    out.payload,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return domain.KindOutcome{}, fmt.Errorf("store %s result: %w", kind, err)
	}
	if !committed {
		// Another run got there first; its result stands.
		o.logger.Debug("result race lost, using stored winner",
			"document_id", doc.ID, "kind", kind, "winner_created_at", stored.CreatedAt)
		return domain.KindOutcome{Kind: kind, Status: domain.KindCached}, nil
	}

	findings := o.buildFindings(doc.ID, clauses, kind, out)
	if len(findings) > 0 {
		if err := o.findings.SaveBatch(ctx, findings); err != nil {
			return domain.KindOutcome{}, fmt.Errorf("save %s findings: %w", kind, err)
		}
	}

	if kind == domain.KindJurisdiction && out.jurisdiction != nil {
		code := domain.NormalizeJurisdiction(out.jurisdiction.Jurisdiction)
		if err := o.documents.UpdateJurisdiction(ctx, doc.ID, code); err != nil {
			o.logger.Warn("failed to record jurisdiction", "document_id", doc.ID, "error", err)
		}
	}

	return domain.KindOutcome{Kind: kind, Status: domain.KindSucceeded}, nil
}

// kindOutput carries one upstream call's typed results plus the payload
// persisted to the result store.
type kindOutput struct {
	payload      json.RawMessage
	entities     []*domain.Entity
	jurisdiction *domain.JurisdictionAnalysis
	risks        []*domain.Risk
}

// invoke runs the upstream call under singleflight and the per-call
// timeout. All failures come back wrapped in domain.ErrUpstreamService.
func (o *AnalysisOrchestrator) invoke(ctx context.Context, svc driven.AnalysisService, doc *domain.Document, clauses []*domain.Clause, kind domain.AnalysisKind) (*kindOutput, error) {
	key := doc.ID + ":" + string(kind)
	v, err, _ := o.group.Do(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
		defer cancel()

		out := &kindOutput{}
		var callErr error
		switch kind {
		case domain.KindExtraction:
			out.entities, callErr = svc.RunExtraction(callCtx, doc.Text)
			if callErr == nil {
				out.payload, callErr = json.Marshal(struct {
					Entities []*domain.Entity `json:"entities"`
				}{out.entities})
			}
		case domain.KindJurisdiction:
			out.jurisdiction, callErr = svc.RunJurisdictionAnalysis(callCtx, doc.Text)
			if callErr == nil {
				out.payload, callErr = json.Marshal(out.jurisdiction)
			}
		case domain.KindRisk:
			out.risks, callErr = svc.RunRiskAnalysis(callCtx, doc.Text, clauses)
			if callErr == nil {
				out.payload, callErr = json.Marshal(struct {
					Risks []*domain.Risk `json:"risks"`
				}{out.risks})
			}
		default:
			callErr = fmt.Errorf("unknown analysis kind %q", kind)
		}
		if callErr != nil {
			if errors.Is(callErr, domain.ErrUpstreamService) {
				return nil, callErr
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamService, callErr)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*kindOutput), nil
}

// buildFindings converts typed analysis output into persisted findings.
// Risk clause references are resolved against the document's clauses;
// an unresolved reference keeps the finding with a nil clause ID.
func (o *AnalysisOrchestrator) buildFindings(documentID string, clauses []*domain.Clause, kind domain.AnalysisKind, out *kindOutput) []*domain.Finding {
	now := time.Now()
	var findings []*domain.Finding

	switch kind {
	case domain.KindExtraction:
		for _, e := range out.entities {
			findings = append(findings, &domain.Finding{
				ID:          domain.GenerateID(),
				DocumentID:  documentID,
				Kind:        kind,
				Category:    string(e.Type),
				Level:       e.Confidence,
				Description: e.Value,
				Detail:      e.Context,
				CreatedAt:   now,
			})
		}
	case domain.KindRisk:
		for _, r := range out.risks {
			f := &domain.Finding{
				ID:             domain.GenerateID(),
				DocumentID:     documentID,
				Kind:           kind,
				Category:       string(r.Type),
				Level:          r.Level,
				Description:    r.Description,
				Detail:         r.Justification,
				Recommendation: r.Recommendation,
				ClauseRef:      r.ClauseRef,
				CreatedAt:      now,
			}
			if id, ok := ResolveClauseRef(r.ClauseRef, clauses); ok {
				f.ClauseID = &id
			}
			findings = append(findings, f)
		}
	}

	return findings
}

// embedClauses attaches embeddings when a provider is configured.
// Failures are logged and ignored; clauses are stored without vectors.
func (o *AnalysisOrchestrator) embedClauses(ctx context.Context, clauses []*domain.Clause) {
	svc := o.services.EmbeddingService()
	if svc == nil || len(clauses) == 0 {
		return
	}

	texts := make([]string, len(clauses))
	for i, c := range clauses {
		texts[i] = c.Text
	}

	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	vectors, err := svc.Embed(callCtx, texts)
	if err != nil {
		o.logger.Warn("clause embedding failed, storing without vectors", "error", err)
		return
	}
	for i := range clauses {
		if i < len(vectors) {
			clauses[i].Embedding = vectors[i]
		}
	}
}

// failRun marks the document failed. Best effort; the original error is
// what the caller sees.
func (o *AnalysisOrchestrator) failRun(ctx context.Context, documentID string, cause error) {
	o.logger.Error("analysis run failed", "document_id", documentID, "error", cause)
	if err := o.documents.UpdateStatus(ctx, documentID, domain.StatusFailed); err != nil {
		o.logger.Error("failed to mark document failed", "document_id", documentID, "error", err)
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/custodia-labs/lexcore/internal/core/domain"
	"github.com/custodia-labs/lexcore/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/lexcore/internal/core/ports/driving"
	"github.com/custodia-labs/lexcore/internal/runtime"
)

const contractText = "This Agreement is made between Acme Ltd and Beta Ltd on 1 January 2026.\n\n" +
	"1 Term\nThis agreement lasts twelve months from the effective date.\n\n" +
	"2 Payment\nThe client pays 50000 GBP annually within thirty days of invoice.\n\n" +
	"3 Liability\nLiability is capped at 1000 GBP for all claims."

type orchestratorFixture struct {
	documents *mocks.MockDocumentStore
	clauses   *mocks.MockClauseStore
	results   *mocks.MockAnalysisResultStore
	findings  *mocks.MockFindingStore
	lock      *mocks.MockDistributedLock
	analysis  *mocks.MockAnalysisService
	embedding *mocks.MockEmbeddingService
	services  *runtime.Services
	orch      *AnalysisOrchestrator
}

func newOrchestratorFixture() *orchestratorFixture {
	f := &orchestratorFixture{
		documents: mocks.NewMockDocumentStore(),
		clauses:   mocks.NewMockClauseStore(),
		results:   mocks.NewMockAnalysisResultStore(),
		findings:  mocks.NewMockFindingStore(),
		lock:      mocks.NewMockDistributedLock(),
		analysis:  mocks.NewMockAnalysisService(),
		embedding: mocks.NewMockEmbeddingService(),
	}
	f.services = runtime.NewServices(domain.NewRuntimeConfig("mock", "mock", false))
	f.services.SetAnalysisService(f.analysis)
	f.services.SetEmbeddingService(f.embedding)
	f.orch = NewAnalysisOrchestrator(OrchestratorConfig{
		Documents: f.documents,
		Clauses:   f.clauses,
		Results:   f.results,
		Findings:  f.findings,
		Lock:      f.lock,
		Services:  f.services,
	})
	return f
}

func TestProcessDocumentHappyPath(t *testing.T) {
	f := newOrchestratorFixture()
	f.analysis.ExtractionFunc = func(ctx context.Context, text string) ([]*domain.Entity, error) {
		return []*domain.Entity{
			{Type: domain.EntityParty, Value: "Acme Ltd", Confidence: domain.LevelHigh},
		}, nil
	}
	f.analysis.RiskFunc = func(ctx context.Context, text string, clauses []*domain.Clause) ([]*domain.Risk, error) {
		return []*domain.Risk{{
			Type:          domain.RiskLiabilityCap,
			Level:         domain.LevelHigh,
			ClauseRef:     "Clause 3 - Liability",
			Description:   "Liability cap is far below contract value.",
			Justification: "A 1000 GBP cap on a 50000 GBP contract is 2% of the value.",
		}}, nil
	}

	result, err := f.orch.ProcessDocument(context.Background(), driving.ProcessRequest{
		Title: "MSA", Text: contractText,
	})
	if err != nil {
		t.Fatalf("ProcessDocument failed: %v", err)
	}

	if result.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want completed", result.Status)
	}
	if len(result.Outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(result.Outcomes))
	}
	for _, o := range result.Outcomes {
		if o.Status != domain.KindSucceeded {
			t.Errorf("%s outcome = %s (%s), want succeeded", o.Kind, o.Status, o.Reason)
		}
	}
	if len(result.Clauses) != 4 {
		t.Errorf("got %d clauses, want preamble plus three", len(result.Clauses))
	}
	if len(result.Findings) != 2 {
		t.Fatalf("got %d findings, want 2", len(result.Findings))
	}

	var riskFinding *domain.Finding
	for _, fd := range result.Findings {
		if fd.Kind == domain.KindRisk {
			riskFinding = fd
		}
	}
	if riskFinding == nil {
		t.Fatal("risk finding missing")
	}
	if riskFinding.ClauseID == nil {
		t.Fatal("risk clause reference should resolve")
	}
	var liability *domain.Clause
	for _, c := range result.Clauses {
		if c.Number == "3" {
			liability = c
		}
	}
	if liability == nil || *riskFinding.ClauseID != liability.ID {
		t.Errorf("risk finding should point at clause 3")
	}

	if result.Jurisdiction != "UK_EW" {
		t.Errorf("jurisdiction = %q, want UK_EW", result.Jurisdiction)
	}
	if !strings.Contains(result.Message, "extraction succeeded") {
		t.Errorf("message = %q", result.Message)
	}

	// Clause embeddings were requested once for the whole batch.
	if f.embedding.EmbedCalls() != 1 {
		t.Errorf("embed calls = %d, want 1", f.embedding.EmbedCalls())
	}
}

func TestProcessDocumentEmptyTextRejected(t *testing.T) {
	f := newOrchestratorFixture()

	_, err := f.orch.ProcessDocument(context.Background(), driving.ProcessRequest{Text: "   \n "})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}

	count, _ := f.documents.Count(context.Background())
	if count != 0 {
		t.Errorf("nothing should be persisted, got %d documents", count)
	}
}

func TestSoftFailureCompletesWithWarnings(t *testing.T) {
	f := newOrchestratorFixture()
	f.analysis.RiskFunc = func(ctx context.Context, text string, clauses []*domain.Clause) ([]*domain.Risk, error) {
		return nil, fmt.Errorf("%w: rate limited", domain.ErrUpstreamService)
	}

	result, err := f.orch.ProcessDocument(context.Background(), driving.ProcessRequest{Text: contractText})
	if err != nil {
		t.Fatalf("soft failure should not abort the run: %v", err)
	}

	if result.Status != domain.StatusCompletedWithWarnings {
		t.Errorf("status = %s, want completed_with_warnings", result.Status)
	}
	byKind := make(map[domain.AnalysisKind]domain.KindOutcome)
	for _, o := range result.Outcomes {
		byKind[o.Kind] = o
	}
	if byKind[domain.KindExtraction].Status != domain.KindSucceeded {
		t.Error("extraction should be intact")
	}
	if byKind[domain.KindJurisdiction].Status != domain.KindSucceeded {
		t.Error("jurisdiction should be intact")
	}
	if byKind[domain.KindRisk].Status != domain.KindFailed {
		t.Error("risk should fail softly")
	}
	if !strings.Contains(result.Message, "risk failed") {
		t.Errorf("message = %q", result.Message)
	}

	// Sibling results were committed despite the failure.
	if _, err := f.results.GetCached(context.Background(), result.DocumentID, domain.KindExtraction); err != nil {
		t.Errorf("extraction result should be stored: %v", err)
	}
}

func TestCachedKindsSkipUpstream(t *testing.T) {
	f := newOrchestratorFixture()

	first, err := f.orch.ProcessDocument(context.Background(), driving.ProcessRequest{Text: contractText})
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	e1, j1, r1 := f.analysis.Calls()

	second, err := f.orch.Reanalyze(context.Background(), first.DocumentID, false)
	if err != nil {
		t.Fatalf("re-analysis failed: %v", err)
	}
	e2, j2, r2 := f.analysis.Calls()

	if e2 != e1 || j2 != j1 || r2 != r1 {
		t.Errorf("cached re-analysis must not call upstream: first (%d,%d,%d) second (%d,%d,%d)",
			e1, j1, r1, e2, j2, r2)
	}
	for _, o := range second.Outcomes {
		if o.Status != domain.KindCached {
			t.Errorf("%s outcome = %s, want cached", o.Kind, o.Status)
		}
	}
	if second.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want completed", second.Status)
	}
}

func TestReanalyzeSupersedeCallsUpstreamAgain(t *testing.T) {
	f := newOrchestratorFixture()

	first, err := f.orch.ProcessDocument(context.Background(), driving.ProcessRequest{Text: contractText})
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	e1, _, _ := f.analysis.Calls()

	second, err := f.orch.Reanalyze(context.Background(), first.DocumentID, true)
	if err != nil {
		t.Fatalf("supersede run failed: %v", err)
	}
	e2, _, _ := f.analysis.Calls()

	if e2 != e1+1 {
		t.Errorf("supersede should call upstream again: %d -> %d", e1, e2)
	}
	for _, o := range second.Outcomes {
		if o.Status != domain.KindSucceeded {
			t.Errorf("%s outcome = %s, want succeeded", o.Kind, o.Status)
		}
	}
}

func TestShortTextSoftFailsPerKind(t *testing.T) {
	f := newOrchestratorFixture()

	// Long enough for extraction (50) but short of jurisdiction and risk (100).
	text := strings.Repeat("Contract terms apply here. ", 3)[:80]

	result, err := f.orch.ProcessDocument(context.Background(), driving.ProcessRequest{Text: text})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Status != domain.StatusCompletedWithWarnings {
		t.Errorf("status = %s, want completed_with_warnings", result.Status)
	}
	byKind := make(map[domain.AnalysisKind]domain.KindOutcome)
	for _, o := range result.Outcomes {
		byKind[o.Kind] = o
	}
	if byKind[domain.KindExtraction].Status != domain.KindSucceeded {
		t.Error("extraction should run on 80 chars")
	}
	for _, kind := range []domain.AnalysisKind{domain.KindJurisdiction, domain.KindRisk} {
		o := byKind[kind]
		if o.Status != domain.KindFailed || !strings.Contains(o.Reason, "shorter than") {
			t.Errorf("%s outcome = %s (%s), want length failure", kind, o.Status, o.Reason)
		}
	}

	_, j, r := f.analysis.Calls()
	if j != 0 || r != 0 {
		t.Errorf("short text must not reach upstream: jurisdiction=%d risk=%d", j, r)
	}
}

func TestPersistenceFailureIsHard(t *testing.T) {
	f := newOrchestratorFixture()
	f.clauses.SaveBatchErr = errors.New("connection reset")

	_, err := f.orch.ProcessDocument(context.Background(), driving.ProcessRequest{Text: contractText})
	if err == nil {
		t.Fatal("persistence failure should abort the run")
	}

	docs, _ := f.documents.List(context.Background(), domain.DocumentFilter{})
	if len(docs) != 1 || docs[0].Status != domain.StatusFailed {
		t.Errorf("document should be marked failed, got %+v", docs)
	}

	e, j, r := f.analysis.Calls()
	if e+j+r != 0 {
		t.Error("no analysis should run after a persistence failure")
	}
}

func TestDuplicateClauseAbortsRun(t *testing.T) {
	f := newOrchestratorFixture()
	f.clauses.SaveBatchErr = domain.ErrDuplicateClause

	_, err := f.orch.ProcessDocument(context.Background(), driving.ProcessRequest{Text: contractText})
	if !errors.Is(err, domain.ErrDuplicateClause) {
		t.Fatalf("err = %v, want ErrDuplicateClause", err)
	}

	docs, _ := f.documents.List(context.Background(), domain.DocumentFilter{})
	if len(docs) != 1 || docs[0].Status != domain.StatusFailed {
		t.Error("document should be marked failed on duplicate clause")
	}
}

func TestLockContentionRejectsRun(t *testing.T) {
	f := newOrchestratorFixture()
	f.lock.FailAcquire = true

	_, err := f.orch.ProcessDocument(context.Background(), driving.ProcessRequest{Text: contractText})
	if !errors.Is(err, domain.ErrAnalysisInProgress) {
		t.Fatalf("err = %v, want ErrAnalysisInProgress", err)
	}

	e, j, r := f.analysis.Calls()
	if e+j+r != 0 {
		t.Error("contended run must not reach upstream")
	}
}

func TestLockBackendErrorDegradesGracefully(t *testing.T) {
	f := newOrchestratorFixture()
	f.lock.AcquireErr = errors.New("lock backend down")

	result, err := f.orch.ProcessDocument(context.Background(), driving.ProcessRequest{Text: contractText})
	if err != nil {
		t.Fatalf("lock backend error should not abort the run: %v", err)
	}
	if result.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want completed", result.Status)
	}
}

func TestLockReleasedAfterRun(t *testing.T) {
	f := newOrchestratorFixture()

	result, err := f.orch.ProcessDocument(context.Background(), driving.ProcessRequest{Text: contractText})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if f.lock.Held("document:" + result.DocumentID) {
		t.Error("document lock should be released after the run")
	}
}

func TestResultRaceLoserTreatedAsCached(t *testing.T) {
	f := newOrchestratorFixture()
	// The cache read misses, but the store already holds a winner for
	// every kind: the late committer must adopt the stored result.
	f.results.GetCachedErr = errors.New("cache probe failed")

	first, err := f.orch.ProcessDocument(context.Background(), driving.ProcessRequest{Text: contractText})
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	f.results.GetCachedErr = errors.New("cache probe failed")
	second, err := f.orch.Reanalyze(context.Background(), first.DocumentID, false)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	for _, o := range second.Outcomes {
		if o.Status != domain.KindCached {
			t.Errorf("%s outcome = %s, want cached after losing the commit race", o.Kind, o.Status)
		}
	}
}

func TestEmbeddingFailureIsBestEffort(t *testing.T) {
	f := newOrchestratorFixture()
	f.embedding.EmbedErr = errors.New("embedding provider down")

	result, err := f.orch.ProcessDocument(context.Background(), driving.ProcessRequest{Text: contractText})
	if err != nil {
		t.Fatalf("embedding failure should not abort the run: %v", err)
	}
	if result.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want completed", result.Status)
	}

	clauses, _ := f.clauses.GetByDocument(context.Background(), result.DocumentID)
	if len(clauses) == 0 {
		t.Fatal("clauses should be stored without vectors")
	}
	for _, c := range clauses {
		if c.Embedding != nil {
			t.Error("no embedding should be attached after a failure")
		}
	}
}

func TestNoAnalysisProviderSoftFailsAllKinds(t *testing.T) {
	f := newOrchestratorFixture()
	f.services.SetAnalysisService(nil)

	result, err := f.orch.ProcessDocument(context.Background(), driving.ProcessRequest{Text: contractText})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Status != domain.StatusCompletedWithWarnings {
		t.Errorf("status = %s, want completed_with_warnings", result.Status)
	}
	for _, o := range result.Outcomes {
		if o.Status != domain.KindFailed || !strings.Contains(o.Reason, "no analysis provider") {
			t.Errorf("%s outcome = %s (%s)", o.Kind, o.Status, o.Reason)
		}
	}
}

func TestReanalyzeWhileProcessingRejected(t *testing.T) {
	f := newOrchestratorFixture()

	doc := &domain.Document{ID: "doc-1", Text: contractText, Status: domain.StatusProcessing}
	if err := f.documents.Save(context.Background(), doc); err != nil {
		t.Fatal(err)
	}

	_, err := f.orch.Reanalyze(context.Background(), "doc-1", false)
	if !errors.Is(err, domain.ErrAnalysisInProgress) {
		t.Fatalf("err = %v, want ErrAnalysisInProgress", err)
	}
}

func TestStatusTransitionsRecorded(t *testing.T) {
	f := newOrchestratorFixture()

	_, err := f.orch.ProcessDocument(context.Background(), driving.ProcessRequest{Text: contractText})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(f.documents.StatusLog) != 2 {
		t.Fatalf("got %d status writes, want processing then terminal", len(f.documents.StatusLog))
	}
	if f.documents.StatusLog[0] != domain.StatusProcessing {
		t.Errorf("first transition = %s, want processing", f.documents.StatusLog[0])
	}
	if !f.documents.StatusLog[1].Terminal() {
		t.Errorf("second transition = %s, want terminal", f.documents.StatusLog[1])
	}
	if !domain.StatusProcessing.CanTransition(f.documents.StatusLog[1]) {
		t.Errorf("transition processing -> %s should be legal", f.documents.StatusLog[1])
	}
}

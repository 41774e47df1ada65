package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/lexcore/internal/core/domain"
	"github.com/custodia-labs/lexcore/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/lexcore/internal/core/ports/driving"
)

type fakeProcess struct {
	mu        sync.Mutex
	calls     []string
	supersede []bool
	err       error
	status    domain.DocumentStatus
}

func (f *fakeProcess) ProcessDocument(ctx context.Context, req driving.ProcessRequest) (*domain.ProcessResult, error) {
	return nil, errors.New("not used by the worker")
}

func (f *fakeProcess) Reanalyze(ctx context.Context, documentID string, supersede bool) (*domain.ProcessResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, documentID)
	f.supersede = append(f.supersede, supersede)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == "" {
		status = domain.StatusCompleted
	}
	return &domain.ProcessResult{DocumentID: documentID, Status: status}, nil
}

func (f *fakeProcess) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWorkerProcessesTask(t *testing.T) {
	queue := mocks.NewMockTaskQueue()
	process := &fakeProcess{}

	w := NewWorker(Config{
		TaskQueue:      queue,
		Process:        process,
		DequeueTimeout: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	task := domain.NewAnalyzeDocumentTask("doc-1", true)
	if err := queue.Enqueue(ctx, task); err != nil {
		t.Fatal(err)
	}

	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	waitFor(t, func() bool {
		got, err := queue.GetTask(ctx, task.ID)
		return err == nil && got.Status == domain.TaskStatusCompleted
	})

	if process.callCount() != 1 {
		t.Errorf("Reanalyze called %d times, want 1", process.callCount())
	}
	process.mu.Lock()
	defer process.mu.Unlock()
	if process.calls[0] != "doc-1" || !process.supersede[0] {
		t.Errorf("Reanalyze(%s, %v), want (doc-1, true)", process.calls[0], process.supersede[0])
	}
}

func TestWorkerFailedTaskIsNacked(t *testing.T) {
	queue := mocks.NewMockTaskQueue()
	process := &fakeProcess{err: errors.New("pipeline exploded")}

	w := NewWorker(Config{
		TaskQueue:      queue,
		Process:        process,
		DequeueTimeout: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	task := domain.NewAnalyzeDocumentTask("doc-1", false)
	task.MaxAttempts = 1
	if err := queue.Enqueue(ctx, task); err != nil {
		t.Fatal(err)
	}

	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	waitFor(t, func() bool {
		got, err := queue.GetTask(ctx, task.ID)
		return err == nil && got.Status == domain.TaskStatusFailed
	})

	got, _ := queue.GetTask(ctx, task.ID)
	if got.Error != "pipeline exploded" {
		t.Errorf("Error = %q", got.Error)
	}
}

func TestWorkerHardFailureResultIsNacked(t *testing.T) {
	queue := mocks.NewMockTaskQueue()
	process := &fakeProcess{status: domain.StatusFailed}

	w := NewWorker(Config{
		TaskQueue:      queue,
		Process:        process,
		DequeueTimeout: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	task := domain.NewAnalyzeDocumentTask("doc-1", false)
	task.MaxAttempts = 1
	if err := queue.Enqueue(ctx, task); err != nil {
		t.Fatal(err)
	}

	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	waitFor(t, func() bool {
		got, err := queue.GetTask(ctx, task.ID)
		return err == nil && got.Status == domain.TaskStatusFailed
	})
}

func TestWorkerWarningsStillAck(t *testing.T) {
	queue := mocks.NewMockTaskQueue()
	process := &fakeProcess{status: domain.StatusCompletedWithWarnings}

	w := NewWorker(Config{
		TaskQueue:      queue,
		Process:        process,
		DequeueTimeout: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	task := domain.NewAnalyzeDocumentTask("doc-1", false)
	if err := queue.Enqueue(ctx, task); err != nil {
		t.Fatal(err)
	}

	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	waitFor(t, func() bool {
		got, err := queue.GetTask(ctx, task.ID)
		return err == nil && got.Status == domain.TaskStatusCompleted
	})
}

func TestWorkerUnknownTaskTypeFails(t *testing.T) {
	queue := mocks.NewMockTaskQueue()
	process := &fakeProcess{}

	w := NewWorker(Config{
		TaskQueue:      queue,
		Process:        process,
		DequeueTimeout: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	task := domain.NewTask("compile_kernel", nil)
	task.MaxAttempts = 1
	if err := queue.Enqueue(ctx, task); err != nil {
		t.Fatal(err)
	}

	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	waitFor(t, func() bool {
		got, err := queue.GetTask(ctx, task.ID)
		return err == nil && got.Status == domain.TaskStatusFailed
	})

	if process.callCount() != 0 {
		t.Error("unknown task type should not reach the pipeline")
	}
}

func TestWorkerHealth(t *testing.T) {
	queue := mocks.NewMockTaskQueue()

	w := NewWorker(Config{
		TaskQueue:      queue,
		Process:        &fakeProcess{},
		DequeueTimeout: 1,
	})

	health := w.Health(context.Background())
	if health.Running {
		t.Error("worker should not report running before Start")
	}
	if !health.QueueHealth {
		t.Error("queue should be healthy")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	health = w.Health(ctx)
	if !health.Running {
		t.Error("worker should report running after Start")
	}
}

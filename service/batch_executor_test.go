package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ludo-technologies/cukereport/domain"
)

// mockTask implements domain.ExecutableTask for testing
type mockTask struct {
	name     string
	enabled  bool
	execFunc func(ctx context.Context) (interface{}, error)
}

func (t *mockTask) Name() string {
	return t.name
}

func (t *mockTask) Execute(ctx context.Context) (interface{}, error) {
	if t.execFunc != nil {
		return t.execFunc(ctx)
	}
	return t.name, nil
}

func (t *mockTask) IsEnabled() bool {
	return t.enabled
}

func newMockTask(name string, enabled bool) *mockTask {
	return &mockTask{name: name, enabled: enabled}
}

func newMockTaskWithExec(name string, execFunc func(ctx context.Context) (interface{}, error)) *mockTask {
	return &mockTask{name: name, enabled: true, execFunc: execFunc}
}

func TestNewBatchExecutor(t *testing.T) {
	executor := NewBatchExecutor()

	if executor.maxConcurrency <= 0 {
		t.Errorf("maxConcurrency should be > 0, got %d", executor.maxConcurrency)
	}
	if executor.timeout != DefaultTimeout {
		t.Errorf("timeout should be %v, got %v", DefaultTimeout, executor.timeout)
	}
}

func TestNewBatchExecutorWithOptions_Defaults(t *testing.T) {
	pm := QuietProgress{}
	executor := NewBatchExecutorWithOptions(0, 0, pm)

	if executor.maxConcurrency != DefaultMaxConcurrency {
		t.Errorf("maxConcurrency should be %d, got %d", DefaultMaxConcurrency, executor.maxConcurrency)
	}
	if executor.timeout != DefaultTimeout {
		t.Errorf("timeout should be %v, got %v", DefaultTimeout, executor.timeout)
	}
	if executor.progress != pm {
		t.Error("progress manager should be set")
	}
}

func TestBatchExecutor_EmptyTaskList(t *testing.T) {
	results, err := NewBatchExecutor().Execute(context.Background(), nil)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if results != nil {
		t.Errorf("expected no results, got %v", results)
	}
}

func TestBatchExecutor_ResultsInTaskOrder(t *testing.T) {
	executor := NewBatchExecutorWithOptions(3, time.Minute, nil)
	tasks := []domain.ExecutableTask{
		newMockTaskWithExec("slow", func(ctx context.Context) (interface{}, error) {
			time.Sleep(20 * time.Millisecond)
			return "slow", nil
		}),
		newMockTask("disabled", false),
		newMockTask("fast", true),
	}

	results, err := executor.Execute(context.Background(), tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].TaskName != "slow" || results[0].Value != "slow" {
		t.Errorf("unexpected first result %+v", results[0])
	}
	if results[1].TaskName != "fast" || results[1].Value != "fast" {
		t.Errorf("unexpected second result %+v", results[1])
	}
}

func TestBatchExecutor_CollectsAllFailures(t *testing.T) {
	var ran atomic.Int32
	fail := func(msg string) func(context.Context) (interface{}, error) {
		return func(context.Context) (interface{}, error) {
			ran.Add(1)
			return nil, errors.New(msg)
		}
	}
	tasks := []domain.ExecutableTask{
		newMockTaskWithExec("b-job", fail("broken b")),
		newMockTaskWithExec("ok-job", func(context.Context) (interface{}, error) {
			ran.Add(1)
			return nil, nil
		}),
		newMockTaskWithExec("a-job", fail("broken a")),
	}

	results, err := NewBatchExecutorWithOptions(1, time.Minute, nil).Execute(context.Background(), tasks)
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if ran.Load() != 3 {
		t.Errorf("every task should run, ran %d", ran.Load())
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}

	var agg *AggregatedError
	if !errors.As(err, &agg) {
		t.Fatalf("expected *AggregatedError, got %T", err)
	}
	if len(agg.Errors) != 2 {
		t.Fatalf("expected 2 task errors, got %d", len(agg.Errors))
	}
	if agg.Errors[0].TaskName != "a-job" || agg.Errors[1].TaskName != "b-job" {
		t.Errorf("task errors should be sorted by name, got %v", agg.Errors)
	}
	if !strings.Contains(err.Error(), "2 jobs failed") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestBatchExecutor_Timeout(t *testing.T) {
	executor := NewBatchExecutorWithOptions(1, 10*time.Millisecond, nil)
	tasks := []domain.ExecutableTask{
		newMockTaskWithExec("blocking", func(ctx context.Context) (interface{}, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}),
	}

	_, err := executor.Execute(context.Background(), tasks)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestBatchExecutor_Setters(t *testing.T) {
	executor := NewBatchExecutor()
	executor.SetMaxConcurrency(7)
	executor.SetTimeout(time.Second)
	executor.SetMaxConcurrency(-1)
	executor.SetTimeout(0)

	if executor.maxConcurrency != 7 {
		t.Errorf("maxConcurrency should be 7, got %d", executor.maxConcurrency)
	}
	if executor.timeout != time.Second {
		t.Errorf("timeout should be 1s, got %v", executor.timeout)
	}
}

func TestTaskError(t *testing.T) {
	inner := errors.New("inner")
	err := TaskError{TaskName: "job", Err: inner}

	if err.Error() != "[job] inner" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("TaskError should unwrap to its cause")
	}
}

func TestAggregatedError_Empty(t *testing.T) {
	err := &AggregatedError{}
	if err.Error() != "no errors" || err.Unwrap() != nil {
		t.Error("empty AggregatedError should describe no errors")
	}
}

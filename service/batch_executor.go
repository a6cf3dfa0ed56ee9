package service

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ludo-technologies/cukereport/domain"
	"golang.org/x/sync/errgroup"
)

// Default values for the batch executor
const (
	DefaultMaxConcurrency = 4
	DefaultTimeout        = 10 * time.Minute
)

// TaskError represents a single task failure
type TaskError struct {
	TaskName string
	Err      error
}

// Error implements the error interface
func (e TaskError) Error() string {
	return fmt.Sprintf("[%s] %v", e.TaskName, e.Err)
}

// Unwrap returns the underlying error
func (e TaskError) Unwrap() error {
	return e.Err
}

// AggregatedError collects all task failures
type AggregatedError struct {
	Errors []TaskError
}

// Error implements the error interface
func (e *AggregatedError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d jobs failed:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Unwrap returns the first error for errors.Is/As compatibility
func (e *AggregatedError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[0].Err
}

// TaskResult is the outcome of one executed task
type TaskResult struct {
	TaskName string
	Value    interface{}
	Err      error
}

// BatchExecutor runs independent report builds concurrently. Each task owns
// its builder and model; the executor shares nothing between them.
type BatchExecutor struct {
	maxConcurrency int
	timeout        time.Duration
	progress       domain.ProgressManager
	mu             sync.RWMutex
}

// NewBatchExecutor creates a batch executor using one worker per CPU
func NewBatchExecutor() *BatchExecutor {
	return &BatchExecutor{
		maxConcurrency: runtime.NumCPU(),
		timeout:        DefaultTimeout,
	}
}

// NewBatchExecutorWithOptions creates a batch executor; non-positive values
// fall back to the defaults
func NewBatchExecutorWithOptions(maxConcurrency int, timeout time.Duration, pm domain.ProgressManager) *BatchExecutor {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &BatchExecutor{
		maxConcurrency: maxConcurrency,
		timeout:        timeout,
		progress:       pm,
	}
}

// Execute runs every enabled task and returns their results in task order.
// A failing task does not stop the others; all failures are returned
// together as an *AggregatedError.
func (e *BatchExecutor) Execute(ctx context.Context, tasks []domain.ExecutableTask) ([]TaskResult, error) {
	enabled := make([]domain.ExecutableTask, 0, len(tasks))
	for _, t := range tasks {
		if t.IsEnabled() {
			enabled = append(enabled, t)
		}
	}
	if len(enabled) == 0 {
		return nil, nil
	}

	e.mu.RLock()
	maxConcurrency := e.maxConcurrency
	timeout := e.timeout
	e.mu.RUnlock()

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var progress domain.TaskProgress = quietStage{}
	if e.progress != nil {
		progress = e.progress.StartTask("Building reports", len(enabled))
	}
	defer progress.Complete()

	g, gCtx := errgroup.WithContext(timeoutCtx)
	g.SetLimit(maxConcurrency)

	results := make([]TaskResult, len(enabled))
	for i, t := range enabled {
		g.Go(func() error {
			results[i].TaskName = t.Name()

			select {
			case <-gCtx.Done():
				results[i].Err = gCtx.Err()
				return nil
			default:
			}

			results[i].Value, results[i].Err = t.Execute(gCtx)
			progress.Increment(1)

			// Failures are collected per task so every job runs
			return nil
		})
	}
	_ = g.Wait()

	var taskErrors []TaskError
	for _, r := range results {
		if r.Err != nil {
			taskErrors = append(taskErrors, TaskError{TaskName: r.TaskName, Err: r.Err})
		}
	}
	if len(taskErrors) > 0 {
		sort.SliceStable(taskErrors, func(i, j int) bool { return taskErrors[i].TaskName < taskErrors[j].TaskName })
		return results, &AggregatedError{Errors: taskErrors}
	}
	return results, nil
}

// SetMaxConcurrency sets the maximum number of concurrent tasks
func (e *BatchExecutor) SetMaxConcurrency(max int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if max > 0 {
		e.maxConcurrency = max
	}
}

// SetTimeout sets the timeout for the whole batch
func (e *BatchExecutor) SetTimeout(timeout time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if timeout > 0 {
		e.timeout = timeout
	}
}

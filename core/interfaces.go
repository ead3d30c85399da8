package core

import (
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: called when a post-hook panics during execution.
// =============================================================================

// PanicHandler lets a caller observe recovered post-hook panics beyond the
// Logger's log line, e.g. to feed a crash reporter. Task-body and factory
// panics and async future errors are only logged through the Logger
// (task-body and factory panics also set ExecutionRecord.Panicked); they
// do not reach the PanicHandler.
//
// Implementations should be thread-safe as they may be called concurrently.
type PanicHandler interface {
	// HandlePanic is called when a post-hook panic is recovered.
	//
	// identity is the lane that was executing. workerID is always -1:
	// workers carry no IDs in this engine, and the parameter is kept for
	// symmetry with observability tooling that expects it. stackTrace is
	// nil.
	HandlePanic(identity string, workerID int, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler logs to stdout via fmt, matching the teacher's
// default.
type DefaultPanicHandler struct{}

func (h *DefaultPanicHandler) HandlePanic(identity string, workerID int, panicInfo any, stackTrace []byte) {
	fmt.Printf("[lane %s] panic: %v\nstack:\n%s", identity, panicInfo, stackTrace)
}

// =============================================================================
// Metrics: observability hook for accepted/rejected/completed/panicked
// submissions and task duration.
// =============================================================================

// Metrics defines the interface for collecting executor metrics.
// Implementations can send metrics to monitoring systems (Prometheus,
// StatsD, etc.). All methods should be non-blocking and fast.
type Metrics interface {
	// RecordAccepted records a submission that passed the back-pressure
	// check.
	RecordAccepted(identity string)

	// RecordRejected records a rejected submission. reason is "overflow"
	// for back-pressure and "stopped" once Stop has been called.
	RecordRejected(identity string, reason string)

	// RecordCompleted records how long an envelope took from pickup to
	// terminal transition (sync or async).
	RecordCompleted(identity string, duration time.Duration)

	// RecordTaskPanic records a recovered post-hook panic for the given
	// identity. Task-body and factory panics are not reported here.
	RecordTaskPanic(identity string, panicInfo any)

	// RecordInFlight samples the current value of the global counter.
	RecordInFlight(count int64)
}

// NilMetrics is a no-op Metrics implementation; the default when no
// metrics collaborator is configured.
type NilMetrics struct{}

func (m *NilMetrics) RecordAccepted(identity string)                    {}
func (m *NilMetrics) RecordRejected(identity string, reason string)     {}
func (m *NilMetrics) RecordCompleted(identity string, d time.Duration)  {}
func (m *NilMetrics) RecordTaskPanic(identity string, panicInfo any)    {}
func (m *NilMetrics) RecordInFlight(count int64)                        {}

// =============================================================================
// RejectedTaskHandler: called when submit() returns false.
// =============================================================================

// RejectedTaskHandler is called when a submission is rejected, with
// reason "overflow" (back-pressure) or "stopped" (after Stop).
// Implementations should be thread-safe.
type RejectedTaskHandler interface {
	HandleRejectedTask(identity string, reason string)
}

// DefaultRejectedTaskHandler logs rejected submissions via fmt.
type DefaultRejectedTaskHandler struct{}

func (h *DefaultRejectedTaskHandler) HandleRejectedTask(identity string, reason string) {
	fmt.Printf("[lane %s] submission rejected: %s", identity, reason)
}

// =============================================================================
// ExecutorConfig: dependency injection for the Executor facade.
// =============================================================================

// ExecutorConfig holds configuration and collaborators for an Executor.
// All collaborators are optional; NewExecutor supplies no-op/default
// implementations for anything left nil.
type ExecutorConfig struct {
	// Workers is the fixed worker pool size. Must be >= 1.
	Workers int

	// MaxInFlight is PLUGIN_TASK_QUEUE_MAX_SIZE: the maximum number of
	// accepted-but-not-completed submissions.
	MaxInFlight int64

	Logger               Logger
	Metrics              Metrics
	PanicHandler         PanicHandler
	RejectedTaskHandler  RejectedTaskHandler

	// HistoryCapacity bounds the RecentExecutions ring buffer. Zero uses
	// a small built-in default.
	HistoryCapacity int
}

// DefaultExecutorConfig returns a config with 4 workers, a max in-flight
// of 1000, and default/no-op collaborators.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		Workers:             4,
		MaxInFlight:         1000,
		Logger:              NewDefaultLogger(),
		Metrics:             &NilMetrics{},
		PanicHandler:        &DefaultPanicHandler{},
		RejectedTaskHandler: &DefaultRejectedTaskHandler{},
	}
}

func (c ExecutorConfig) withDefaults() ExecutorConfig {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.MaxInFlight < 1 {
		c.MaxInFlight = 1000
	}
	if c.Logger == nil {
		c.Logger = NewDefaultLogger()
	}
	if c.Metrics == nil {
		c.Metrics = &NilMetrics{}
	}
	if c.PanicHandler == nil {
		c.PanicHandler = &DefaultPanicHandler{}
	}
	if c.RejectedTaskHandler == nil {
		c.RejectedTaskHandler = &DefaultRejectedTaskHandler{}
	}
	if c.HistoryCapacity < 1 {
		c.HistoryCapacity = defaultHistoryCapacity
	}
	return c
}

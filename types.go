package keylane

import "github.com/keylane/keylane/core"

// Re-export the core package's public surface so most callers only need
// to import the root package.

type (
	Executor        = core.Executor
	ExecutorConfig  = core.ExecutorConfig
	ExecutorStats   = core.ExecutorStats
	ExecutionRecord = core.ExecutionRecord

	Context        = core.Context
	InOutContext[O core.Output] = core.InOutContext[O]
	OutContext[O core.Output]   = core.OutContext[O]

	Output          = core.Output
	BaseOutput      = core.BaseOutput
	TimeoutFallback = core.TimeoutFallback

	Future[T any] = core.Future[T]

	IsolationHandle = core.IsolationHandle

	InOutTask[I any, O core.Output] = core.InOutTask[I, O]
	OutTask[O core.Output]          = core.OutTask[O]
	InTask[I any]                   = core.InTask[I]

	Logger = core.Logger
	Field  = core.Field

	Metrics              = core.Metrics
	PanicHandler         = core.PanicHandler
	RejectedTaskHandler  = core.RejectedTaskHandler
)

const (
	TimeoutFallbackFailure = core.TimeoutFallbackFailure
	TimeoutFallbackSuccess = core.TimeoutFallbackSuccess
)

var (
	NewExecutor          = core.NewExecutor
	DefaultExecutorConfig = core.DefaultExecutorConfig

	NewContext = core.NewContext

	NewAsyncFuture = core.NewFuture[bool]

	F                = core.F
	NewDefaultLogger = core.NewDefaultLogger
	NewNoOpLogger    = core.NewNoOpLogger

	CurrentIsolationHandle = core.CurrentIsolationHandle
)

// NewInOutContext builds an InOutContext with the given post hook.
func NewInOutContext[O core.Output](identity string, owner any, post func(O)) core.InOutContext[O] {
	return core.NewInOutContext(identity, owner, post)
}

// NewOutContext builds an OutContext with the given post hook.
func NewOutContext[O core.Output](identity string, owner any, post func(O)) core.OutContext[O] {
	return core.NewOutContext(identity, owner, post)
}

// SubmitInOut submits an InOut envelope built from ctx/inputFactory/
// outputFactory/task to ex.
func SubmitInOut[I any, O core.Output](ex *Executor, ctx core.InOutContext[O], inputFactory func() I, outputFactory func() O, task core.InOutTask[I, O]) bool {
	return core.SubmitInOut(ex, ctx, inputFactory, outputFactory, task)
}

// SubmitOut submits an Out envelope built from ctx/outputFactory/task to
// ex.
func SubmitOut[O core.Output](ex *Executor, ctx core.OutContext[O], outputFactory func() O, task core.OutTask[O]) bool {
	return core.SubmitOut(ex, ctx, outputFactory, task)
}

// SubmitIn submits an In envelope built from ctx/inputFactory/task to ex.
func SubmitIn[I any](ex *Executor, ctx core.Context, inputFactory func() I, task core.InTask[I]) bool {
	return core.SubmitIn(ex, ctx, inputFactory, task)
}

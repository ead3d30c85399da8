package core

import "sync/atomic"

// TimeoutFallback is carried on an Output for the benefit of an external
// collaborator implementing timeouts; the engine itself never reads it
// (spec: "the core does not implement timeouts").
type TimeoutFallback int

const (
	// TimeoutFallbackFailure is the oracle's default fallback value.
	TimeoutFallbackFailure TimeoutFallback = iota
	TimeoutFallbackSuccess
)

// Output is the behavioral contract every task output must satisfy so the
// worker and AsyncCompletionBridge can inspect async-completion state
// without knowing the concrete output type.
type Output interface {
	IsAsync() bool
	MarkAsAsync()
	ResetAsyncStatus()
	IsTimedOut() bool
	MarkAsTimedOut()
	AsyncFuture() *Future[bool]
	TimeoutFallback() TimeoutFallback
}

// BaseOutput implements Output and is meant to be embedded by concrete
// output types, the way the oracle's PluginTaskOutput is a base class
// concrete outputs extend. Flags are atomic because a task body can set
// them on one goroutine while an async listener later reads them from
// another.
type BaseOutput struct {
	async      atomic.Bool
	timedOut   atomic.Bool
	fallback   atomic.Int32
	future     atomic.Pointer[Future[bool]]
}

func (o *BaseOutput) IsAsync() bool        { return o.async.Load() }
func (o *BaseOutput) MarkAsAsync()         { o.async.Store(true) }
func (o *BaseOutput) ResetAsyncStatus()    { o.async.Store(false) }
func (o *BaseOutput) IsTimedOut() bool     { return o.timedOut.Load() }
func (o *BaseOutput) MarkAsTimedOut()      { o.timedOut.Store(true) }

func (o *BaseOutput) AsyncFuture() *Future[bool] { return o.future.Load() }

// SetAsyncFuture attaches the future a task marked async must supply
// before returning. Typically called together with MarkAsAsync.
func (o *BaseOutput) SetAsyncFuture(f *Future[bool]) { o.future.Store(f) }

func (o *BaseOutput) TimeoutFallback() TimeoutFallback {
	return TimeoutFallback(o.fallback.Load())
}

// SetTimeoutFallback records the fallback value an external timeout
// collaborator should apply. Defaults to TimeoutFallbackFailure.
func (o *BaseOutput) SetTimeoutFallback(f TimeoutFallback) {
	o.fallback.Store(int32(f))
}

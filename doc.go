// Package keylane provides a per-identity ordered task executor: a
// concurrency engine that accepts heterogeneous task submissions from
// many producers and runs them on a fixed pool of worker goroutines,
// guaranteeing that tasks sharing an identity key execute strictly in
// submission order while tasks on different identities run in parallel.
//
// # Quick Start
//
// Build and start an Executor:
//
//	ex := keylane.NewExecutor(keylane.ExecutorConfig{
//		Workers:     4,
//		MaxInFlight: 1000,
//	})
//	ex.PostConstruct()
//	defer ex.Stop()
//
// Submit an InOut task under an identity:
//
//	ctx := keylane.NewInOutContext(identity, owner, func(out *MyOutput) {
//		// post hook, runs after the task completes (sync or async)
//	})
//	ok := keylane.SubmitInOut(ex, ctx, nil, func() *MyOutput {
//		return &MyOutput{}
//	}, myTask)
//
// # Key Concepts
//
// Identity: an opaque string producers supply to key the per-identity
// ordering domain — typically a client or connection identifier.
//
// Lane: the per-identity FIFO queue and its IDLE/READY/RUNNING/
// WAITING_ASYNC state machine. At most one worker ever holds a given
// lane's RUNNING or WAITING_ASYNC state at a time, which is what makes
// same-identity ordering hold without a per-identity lock on any hot
// path other than the lane's own short critical sections.
//
// Task shapes: InOut (input + mutable output, returns output), Out
// (output only), and In (input only, no result, no post-hook).
//
// Async completion: a task may call output.MarkAsAsync() and attach a
// Future before returning; the lane stays WAITING_ASYNC and the next
// same-identity task does not start until that future settles and the
// post-hook (if any) returns.
//
// # Thread Safety
//
// Submit never blocks: it either accepts (incrementing the global
// in-flight counter and returning true) or rejects under back-pressure
// (returning false with no other side effects). Workers block only on
// the Intake channel or on the task body itself.
//
// For more details, see SPEC_FULL.md and DESIGN.md in the repository root.
package keylane

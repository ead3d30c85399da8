package core

import "context"

// envelope is one atomically-submitted unit: a type-erased run closure
// (factories + task invocation, fully panic-guarded) plus a type-erased
// post-hook, and the identity/handle the engine needs to route and run
// it. SubmitInOut/SubmitOut/SubmitIn (submit.go) build envelopes from the
// caller's typed context/factories/task; the engine from here on only
// ever deals with Output and the envelope's closures, never with I or O
// directly — Go's equivalent of the type erasure the oracle gets for free
// from Java generics at runtime.
type envelope struct {
	identity string
	handle   IsolationHandle

	// run instantiates input/output via their factories and invokes the
	// task, fully recovering from any panic along the way. It reports the
	// resulting Output (nil if a factory fault left nothing to report),
	// whether that Output is async, and whether a factory or the task
	// itself panicked.
	run func(ctx context.Context) (out Output, async bool, panicked bool)

	// post is nil for In envelopes (no post-hook). For InOut/Out envelopes
	// it is always set; the worker skips it when run produced no Output.
	post func(out Output)
}

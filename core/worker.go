package core

import (
	"context"
	"time"
)

// process runs exactly one envelope popped off l, then performs whichever
// terminal transition its completion (sync or async) requires. It never
// processes a second envelope itself — per spec §4.2, republishing
// forces a fair re-queue behind other ready identities instead.
func (ex *Executor) process(l *lane) {
	env, ok := l.beginRun()
	if !ok {
		return
	}

	startedAt := time.Now()
	ctx := withIsolationHandle(context.Background(), env.handle)
	out, async, panicked := env.run(ctx)

	if async {
		l.beginAsyncWait()
		ex.bridgeAsync(l, env, out, ctx, startedAt, panicked)
		return
	}
	ex.completeSync(l, env, out, startedAt, false, panicked)
}

func (ex *Executor) completeSync(l *lane, env *envelope, out Output, startedAt time.Time, wasAsync, panicked bool) {
	ex.runPost(env, out)
	ex.recordCompletion(env, startedAt, wasAsync, panicked)
	ex.finishAndAdvance(l)
}

// bridgeAsync implements the AsyncCompletionBridge (spec §4.3). The
// worker returns to the pool immediately; the terminal transition and
// post-hook run later, on whichever goroutine resolves the future.
func (ex *Executor) bridgeAsync(l *lane, env *envelope, out Output, ctx context.Context, startedAt time.Time, panicked bool) {
	future := out.AsyncFuture()
	if future == nil {
		ex.cfg.Logger.Warn("async output has no future attached; completing immediately",
			F("identity", env.identity))
		ex.completeSync(l, env, out, startedAt, true, panicked)
		return
	}

	future.OnComplete(func(ok bool, err error) {
		if err != nil {
			ex.cfg.Logger.Error("async future completed with error",
				F("identity", env.identity), F("error", err))
		} else if !ok {
			ex.cfg.Logger.Warn("async future resolved false",
				F("identity", env.identity))
		}
		ex.completeSync(l, env, out, startedAt, true, panicked)
	})
}

// runPost invokes the envelope's post-hook, if any, fully guarded against
// a panicking hook (spec §4.5/§7: "a subsequent exception from the
// post-hook is likewise caught and logged").
func (ex *Executor) runPost(env *envelope, out Output) {
	if env.post == nil || out == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			ex.cfg.Logger.Error("post hook panicked", F("identity", env.identity), F("panic", r))
			ex.cfg.Metrics.RecordTaskPanic(env.identity, r)
			ex.cfg.PanicHandler.HandlePanic(env.identity, -1, r, nil)
		}
	}()
	env.post(out)
}

// finishAndAdvance decrements the global counter exactly once per
// accepted submission and performs the lane's terminal transition,
// republishing to Intake if more work is pending.
func (ex *Executor) finishAndAdvance(l *lane) {
	remaining := ex.inflight.Add(-1)
	ex.cfg.Metrics.RecordInFlight(remaining)
	if l.finishSync() {
		ex.publish(l)
	}
}

func (ex *Executor) recordCompletion(env *envelope, startedAt time.Time, async, panicked bool) {
	finishedAt := time.Now()
	ex.cfg.Metrics.RecordCompleted(env.identity, finishedAt.Sub(startedAt))
	ex.history.add(ExecutionRecord{
		Identity:   env.identity,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Duration:   finishedAt.Sub(startedAt),
		Panicked:   panicked,
		Async:      async,
	})
}

// safeCreate invokes factory with panic recovery, reporting ok=false if
// it panicked (spec §7 "Factory fault").
func safeCreate[T any](logger Logger, identity, what string, factory func() T) (result T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(what+" panicked", F("identity", identity), F("panic", r))
			ok = false
		}
	}()
	result = factory()
	ok = true
	return
}

// invokeInOut runs an InOutTask with panic recovery that preserves
// whatever mutations the task made to output before panicking (spec §4.4:
// "the output is treated as completed synchronously with current
// state"). panicked reports whether Apply panicked, so callers can
// surface it on the completion record.
func invokeInOut[I any, O Output](logger Logger, identity string, task InOutTask[I, O], ctx context.Context, input I, output O) (result O, panicked bool) {
	result = output
	defer func() {
		if r := recover(); r != nil {
			logger.Error("task panicked", F("identity", identity), F("panic", r))
			panicked = true
		}
	}()
	result = task.Apply(ctx, input, output)
	return
}

// invokeOut is invokeInOut's Out-shaped twin.
func invokeOut[O Output](logger Logger, identity string, task OutTask[O], ctx context.Context, output O) (result O, panicked bool) {
	result = output
	defer func() {
		if r := recover(); r != nil {
			logger.Error("task panicked", F("identity", identity), F("panic", r))
			panicked = true
		}
	}()
	result = task.Apply(ctx, output)
	return
}

// invokeIn runs an InTask with panic recovery. There is no output to
// preserve and no post-hook to run afterward (spec §4.4).
func invokeIn[I any](logger Logger, identity string, task InTask[I], ctx context.Context, input I) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("task panicked", F("identity", identity), F("panic", r))
			panicked = true
		}
	}()
	task.Accept(ctx, input)
	return
}

package core

import "sync"

// laneState is one of IDLE/READY/RUNNING/WAITING_ASYNC. The zero value is
// laneIdle, matching a freshly created lane.
type laneState int32

const (
	laneIdle laneState = iota
	laneReady
	laneRunning
	laneWaitingAsync
)

// lane is the per-identity TaskQueue: an ordered sequence of pending
// envelopes plus the state field that enforces "at most one worker holds
// this identity at any instant". The FIFO mechanics (slice append/pop with
// nil-clearing to avoid pinning dropped envelopes in memory) follow
// core/queue.go's FIFOTaskQueue; the state machine and its transition
// rules are new, grounded on core/sequenced_task_runner.go's single-
// active-runLoop guard and "process one, repost if more remain" pattern.
type lane struct {
	mu       sync.Mutex
	identity string
	state    laneState
	pending  []*envelope
}

func newLane(identity string) *lane {
	return &lane{identity: identity, state: laneIdle}
}

// enqueue appends env to the lane. It reports whether this enqueue caused
// an IDLE→READY transition — the caller must publish the lane to Intake
// exactly when this returns true, per the single-worker invariant ("a
// queue in RUNNING or WAITING_ASYNC is not enqueued in Intake").
func (l *lane) enqueue(env *envelope) (needsPublish bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pending = append(l.pending, env)
	if l.state == laneIdle {
		l.state = laneReady
		return true
	}
	return false
}

// beginRun transitions READY→RUNNING and pops the head envelope. ok is
// false if the lane was published but raced to empty (e.g. during
// shutdown drain), in which case there is nothing to run.
func (l *lane) beginRun() (env *envelope, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != laneReady {
		return nil, false
	}
	if len(l.pending) == 0 {
		l.state = laneIdle
		return nil, false
	}

	env = l.pending[0]
	l.pending[0] = nil
	l.pending = l.pending[1:]
	l.state = laneRunning
	return env, true
}

// finishSync performs the RUNNING→{IDLE|READY} transition after a
// synchronous completion. It reports whether the caller must republish
// the lane to Intake.
func (l *lane) finishSync() (needsRepublish bool) {
	return l.finishTerminal()
}

// beginAsyncWait performs the RUNNING→WAITING_ASYNC transition.
func (l *lane) beginAsyncWait() {
	l.mu.Lock()
	l.state = laneWaitingAsync
	l.mu.Unlock()
}

// finishAsync performs the WAITING_ASYNC→{IDLE|READY} transition once an
// async future settles. Same republish contract as finishSync.
func (l *lane) finishAsync() (needsRepublish bool) {
	return l.finishTerminal()
}

func (l *lane) finishTerminal() (needsRepublish bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.pending) == 0 {
		l.state = laneIdle
		return false
	}
	l.state = laneReady
	return true
}

// clear discards all pending envelopes without running them, releasing
// their references. Used by Stop() to drop queued-but-unstarted work.
func (l *lane) clear() {
	l.mu.Lock()
	for i := range l.pending {
		l.pending[i] = nil
	}
	l.pending = nil
	l.mu.Unlock()
}

// depth returns the number of envelopes currently waiting (not counting
// one that is RUNNING/WAITING_ASYNC), for observability sampling.
func (l *lane) depth() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

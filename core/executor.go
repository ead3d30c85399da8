package core

import (
	"sync"
	"sync/atomic"
)

// ExecutorStats is a point-in-time snapshot of executor load, used by the
// observability/prometheus SnapshotPoller and by tests.
type ExecutorStats struct {
	Workers     int
	MaxInFlight int64
	InFlight    int64
	Lanes       int
}

// Executor is the TaskExecutor submission facade: the public entry point
// enforcing the global intake bound, dispatching into per-identity lanes,
// and owning the fixed worker pool that drains them. The global counter
// is modeled as the oracle models it — an explicit value owned by the
// executor, incremented on accept and decremented exactly once per
// accepted submission at its terminal transition (see worker.go).
type Executor struct {
	cfg ExecutorConfig

	inflight atomic.Int64
	registry *registry
	intake   chan *lane
	history  *executionHistory

	started  atomic.Bool
	stopping atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewExecutor builds an Executor from cfg. It does not start any worker
// goroutines; call PostConstruct for that.
func NewExecutor(cfg ExecutorConfig) *Executor {
	cfg = cfg.withDefaults()
	return &Executor{
		cfg:      cfg,
		registry: newRegistry(),
		intake:   make(chan *lane, cfg.MaxInFlight),
		history:  newExecutionHistory(cfg.HistoryCapacity),
		stopCh:   make(chan struct{}),
	}
}

// PostConstruct lazily starts the worker pool. Idempotent: a second call
// on an already-started Executor is a no-op.
func (ex *Executor) PostConstruct() {
	if !ex.started.CompareAndSwap(false, true) {
		return
	}
	for i := 0; i < ex.cfg.Workers; i++ {
		ex.wg.Add(1)
		go ex.runWorker()
	}
}

// Stop signals every worker to exit after finishing its current lane
// pickup, waits for them to exit, then discards whatever remains queued
// in every lane and drains any lanes still sitting in Intake. It does not
// cancel async futures already outstanding: their listeners still fire
// and still perform the terminal transition and post-hook when the
// future settles, since that runs on whichever goroutine resolves the
// future, not on a pool worker (DESIGN.md Open Question 2).
func (ex *Executor) Stop() {
	ex.stopOnce.Do(func() {
		ex.stopping.Store(true)
		close(ex.stopCh)
		ex.wg.Wait()

		for {
			select {
			case l := <-ex.intake:
				l.clear()
			default:
				goto drained
			}
		}
	drained:
		ex.registry.forEach(func(_ string, l *lane) { l.clear() })
	})
}

// submit is the low-level facade operation: submit(envelope) -> bool.
// SubmitInOut/SubmitOut/SubmitIn build an envelope and call this.
func (ex *Executor) submit(env *envelope) bool {
	if ex.stopping.Load() {
		ex.cfg.Metrics.RecordRejected(env.identity, "stopped")
		ex.cfg.RejectedTaskHandler.HandleRejectedTask(env.identity, "stopped")
		return false
	}

	for {
		cur := ex.inflight.Load()
		if cur >= ex.cfg.MaxInFlight {
			ex.cfg.Metrics.RecordRejected(env.identity, "overflow")
			ex.cfg.RejectedTaskHandler.HandleRejectedTask(env.identity, "overflow")
			return false
		}
		if ex.inflight.CompareAndSwap(cur, cur+1) {
			break
		}
	}

	ex.cfg.Metrics.RecordAccepted(env.identity)
	l := ex.registry.getOrCreate(env.identity)
	if l.enqueue(env) {
		ex.publish(l)
	}
	return true
}

// publish sends l onto Intake. Sizing Intake's buffer to MaxInFlight is
// sufficient headroom: at most one publish is outstanding per distinct
// ready identity at a time (a RUNNING/WAITING_ASYNC lane is never
// republished), and the number of distinct ready identities can never
// exceed the number of accepted-but-not-completed submissions, which is
// bounded by MaxInFlight by construction. So this send never blocks in a
// correctly functioning system; it is deliberately not a best-effort
// select/default, because dropping a ready lane here would stall that
// identity forever.
func (ex *Executor) publish(l *lane) {
	select {
	case ex.intake <- l:
	case <-ex.stopCh:
		// Stopping: nobody will ever drain Intake further. Leave the lane
		// as READY; Stop's drain sweep clears its pending envelopes.
	}
}

func (ex *Executor) runWorker() {
	defer ex.wg.Done()
	for {
		select {
		case <-ex.stopCh:
			return
		default:
		}

		select {
		case <-ex.stopCh:
			return
		case l, ok := <-ex.intake:
			if !ok {
				return
			}
			ex.process(l)
		}
	}
}

// Stats returns a point-in-time snapshot of load.
func (ex *Executor) Stats() ExecutorStats {
	return ExecutorStats{
		Workers:     ex.cfg.Workers,
		MaxInFlight: ex.cfg.MaxInFlight,
		InFlight:    ex.inflight.Load(),
		Lanes:       ex.registry.count(),
	}
}

// RecentExecutions returns up to limit of the most recently completed
// envelopes, newest first, for debugging without a metrics backend wired
// up.
func (ex *Executor) RecentExecutions(limit int) []ExecutionRecord {
	return ex.history.recent(limit)
}

package core

import "sync"

// registry is the QueueRegistry: a concurrent identity → lane map with
// atomic get-or-create. Grounded on core/job_manager.go's lock-free
// sync.Map usage for tracking live work by key.
//
// Removal policy: never remove (spec §4.6 option (a)). An opportunistic
// remove-on-idle would race a concurrent getOrCreate for the same
// identity — the remover could delete the map entry for a lane a
// producer is about to enqueue into, after which a second producer's
// getOrCreate would mint a brand new lane for the same identity. Two
// lanes for one identity means two workers could run that identity
// concurrently, which is exactly the single-worker invariant this engine
// exists to uphold. See DESIGN.md Open Question 5.
type registry struct {
	lanes sync.Map // string -> *lane
}

func newRegistry() *registry {
	return &registry{}
}

func (r *registry) getOrCreate(identity string) *lane {
	if v, ok := r.lanes.Load(identity); ok {
		return v.(*lane)
	}
	created := newLane(identity)
	actual, _ := r.lanes.LoadOrStore(identity, created)
	return actual.(*lane)
}

// forEach visits every lane currently tracked. Used for Stop()'s drain
// sweep; never removes entries.
func (r *registry) forEach(fn func(identity string, l *lane)) {
	r.lanes.Range(func(key, value any) bool {
		fn(key.(string), value.(*lane))
		return true
	})
}

// count returns the number of distinct identities currently tracked.
func (r *registry) count() int {
	n := 0
	r.lanes.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/keylane/keylane/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// StatsProvider is satisfied by *core.Executor. Kept as an interface so
// tests can poll a fake without standing up a real Executor.
type StatsProvider interface {
	Stats() core.ExecutorStats
}

// SnapshotPoller periodically exports an Executor's Stats() snapshot into
// Prometheus gauges, for load visibility beyond the per-envelope counters
// MetricsExporter already records.
type SnapshotPoller struct {
	interval time.Duration

	providersMu sync.RWMutex
	providers   map[string]StatsProvider

	workers     *prom.GaugeVec
	maxInFlight *prom.GaugeVec
	inFlight    *prom.GaugeVec
	lanes       *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	workers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "keylane",
		Name:      "executor_workers",
		Help:      "Configured worker pool size.",
	}, []string{"executor"})
	maxInFlight := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "keylane",
		Name:      "executor_max_in_flight",
		Help:      "Configured maximum in-flight submissions.",
	}, []string{"executor"})
	inFlight := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "keylane",
		Name:      "executor_in_flight",
		Help:      "Current in-flight submissions.",
	}, []string{"executor"})
	lanes := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "keylane",
		Name:      "executor_lanes",
		Help:      "Current number of known identities in the registry.",
	}, []string{"executor"})

	var err error
	if workers, err = registerCollector(reg, workers); err != nil {
		return nil, err
	}
	if maxInFlight, err = registerCollector(reg, maxInFlight); err != nil {
		return nil, err
	}
	if inFlight, err = registerCollector(reg, inFlight); err != nil {
		return nil, err
	}
	if lanes, err = registerCollector(reg, lanes); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:    interval,
		providers:   make(map[string]StatsProvider),
		workers:     workers,
		maxInFlight: maxInFlight,
		inFlight:    inFlight,
		lanes:       lanes,
	}, nil
}

// AddExecutor adds or replaces a stats provider by name. name is typically
// a deployment-level label distinguishing multiple Executors in one
// process.
func (p *SnapshotPoller) AddExecutor(name string, provider StatsProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "executor")
	p.providersMu.Lock()
	p.providers[name] = provider
	p.providersMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.providersMu.RLock()
	defer p.providersMu.RUnlock()

	for name, provider := range p.providers {
		stats := provider.Stats()
		p.workers.WithLabelValues(name).Set(float64(stats.Workers))
		p.maxInFlight.WithLabelValues(name).Set(float64(stats.MaxInFlight))
		p.inFlight.WithLabelValues(name).Set(float64(stats.InFlight))
		p.lanes.WithLabelValues(name).Set(float64(stats.Lanes))
	}
}

package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/keylane/keylane/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors: accepted,
// rejected, and completed submissions and recovered post-hook panics, plus
// a task-duration histogram, all labeled by identity.
type MetricsExporter struct {
	tasksAcceptedTotal  *prom.CounterVec
	tasksRejectedTotal  *prom.CounterVec
	tasksCompletedTotal *prom.CounterVec
	taskPanicTotal      *prom.CounterVec
	taskDurationSeconds *prom.HistogramVec
	inFlight            prom.Gauge
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors backing
// core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "keylane"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	acceptedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_accepted_total",
		Help:      "Total number of submissions accepted past back-pressure.",
	}, []string{"identity"})
	rejectedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_rejected_total",
		Help:      "Total number of submissions rejected by back-pressure.",
	}, []string{"identity", "reason"})
	completedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_completed_total",
		Help:      "Total number of envelopes that reached their terminal transition.",
	}, []string{"identity"})
	panicVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_panic_total",
		Help:      "Total number of recovered panics.",
	}, []string{"identity"})
	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Envelope duration in seconds, from worker pickup to terminal transition.",
		Buckets:   buckets,
	}, []string{"identity"})
	inFlight := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "in_flight",
		Help:      "Current value of the global accepted-but-not-completed counter.",
	})

	var err error
	if acceptedVec, err = registerCollector(reg, acceptedVec); err != nil {
		return nil, err
	}
	if rejectedVec, err = registerCollector(reg, rejectedVec); err != nil {
		return nil, err
	}
	if completedVec, err = registerCollector(reg, completedVec); err != nil {
		return nil, err
	}
	if panicVec, err = registerCollector(reg, panicVec); err != nil {
		return nil, err
	}
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if inFlight, err = registerCollector(reg, inFlight); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		tasksAcceptedTotal:  acceptedVec,
		tasksRejectedTotal:  rejectedVec,
		tasksCompletedTotal: completedVec,
		taskPanicTotal:      panicVec,
		taskDurationSeconds: durationVec,
		inFlight:            inFlight,
	}, nil
}

// RecordAccepted implements core.Metrics.
func (m *MetricsExporter) RecordAccepted(identity string) {
	if m == nil {
		return
	}
	m.tasksAcceptedTotal.WithLabelValues(normalizeLabel(identity, "unknown")).Inc()
}

// RecordRejected implements core.Metrics.
func (m *MetricsExporter) RecordRejected(identity string, reason string) {
	if m == nil {
		return
	}
	m.tasksRejectedTotal.WithLabelValues(normalizeLabel(identity, "unknown"), normalizeLabel(reason, "unknown")).Inc()
}

// RecordCompleted implements core.Metrics.
func (m *MetricsExporter) RecordCompleted(identity string, duration time.Duration) {
	if m == nil {
		return
	}
	label := normalizeLabel(identity, "unknown")
	m.tasksCompletedTotal.WithLabelValues(label).Inc()
	m.taskDurationSeconds.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordTaskPanic implements core.Metrics.
func (m *MetricsExporter) RecordTaskPanic(identity string, panicInfo any) {
	if m == nil {
		return
	}
	m.taskPanicTotal.WithLabelValues(normalizeLabel(identity, "unknown")).Inc()
}

// RecordInFlight implements core.Metrics.
func (m *MetricsExporter) RecordInFlight(count int64) {
	if m == nil {
		return
	}
	m.inFlight.Set(float64(count))
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}

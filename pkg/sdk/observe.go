package quoterag

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// operation names a public Client call in logs and metric labels.
type operation string

const (
	opAsk          operation = "ask"
	opAddDocuments operation = "add_documents"
	opPreload      operation = "preload"
	opSave         operation = "save"
	opCallTool     operation = "call_tool"
)

// outcome buckets an operation result for the status label. Caller mistakes
// are kept apart from provider and storage failures.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrToolNotFound):
		return "unknown_tool"
	case errors.Is(err, ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// newSDKMetrics registers the client collectors on reg. Several clients may
// share one registry; later ones pick up the collectors already there.
func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quoterag",
		Subsystem: "sdk",
		Name:      "operations_total",
		Help:      "Client calls by operation and outcome.",
	}, []string{"operation", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "quoterag",
		Subsystem: "sdk",
		Name:      "operation_duration_seconds",
		Help:      "Client call latency; ask includes live quote fetch and generation.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"operation"})

	var err error
	m := &sdkMetrics{}
	if m.operations, err = shared(reg, operations); err != nil {
		return nil, err
	}
	if m.duration, err = shared(reg, duration); err != nil {
		return nil, err
	}
	return m, nil
}

// shared registers c, or returns the equal collector registered earlier.
func shared[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return c, fmt.Errorf("quoterag: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return c, fmt.Errorf("quoterag: metric already registered as %T", are.ExistingCollector)
	}
	return existing, nil
}

// observer reports each Client call to the caller's slog logger and registry.
// Both are optional.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg == nil {
		return o, nil
	}
	m, err := newSDKMetrics(reg)
	if err != nil {
		return nil, err
	}
	o.metrics = m
	return o, nil
}

func (o *observer) observe(op operation, start time.Time, err error, attrs ...any) {
	if o == nil {
		return
	}
	took := time.Since(start)
	status := outcome(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(string(op), status).Inc()
		o.metrics.duration.WithLabelValues(string(op)).Observe(took.Seconds())
	}
	if o.logger == nil {
		return
	}

	args := append([]any{"op", string(op), "duration", took}, attrs...)
	if err == nil {
		o.logger.Debug("operation completed", args...)
		return
	}
	o.logger.Warn("operation failed", append(args, "status", status, "error", err)...)
}

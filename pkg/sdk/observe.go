package bookrec

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "bookrec"
	metricsSubsystem = "sdk"
)

// sdkMetrics are the collectors registered on the caller's Registerer.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	fallbacks  *prometheus.CounterVec
	matches    *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "operations_total",
			Help:      "SDK calls by operation and outcome.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "operation_duration_seconds",
			Help:      "SDK call latency in seconds.",
			Buckets:   []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.25, 1},
		}, []string{"operation"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "fallbacks_total",
			Help:      "Answers served by a fallback tier instead of the requested books.",
		}, []string{"operation", "kind"}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "matches_total",
			Help:      "Title resolutions by match kind.",
		}, []string{"kind"}),
	}

	errs := []error{
		registerOrReuse(reg, &m.operations),
		registerOrReuse(reg, &m.duration),
		registerOrReuse(reg, &m.fallbacks),
		registerOrReuse(reg, &m.matches),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or swaps in the collector already registered under its name.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("bookrec: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("bookrec: metric already registered with incompatible type: %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer logs and counts SDK calls. A nil observer, logger or metrics set is a no-op.
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

// begin starts timing op. The returned func records the outcome.
func (o *observer) begin(op string) func(err error) {
	start := time.Now()
	return func(err error) {
		if o == nil {
			return
		}
		o.finish(op, time.Since(start), err)
	}
}

func (o *observer) finish(op string, dur time.Duration, err error) {
	status := statusOf(err)
	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}
	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("bookrec call failed", "op", op, "status", status, "duration", dur, "error", err)
		return
	}
	o.logger.Debug("bookrec call completed", "op", op, "duration", dur)
}

// matched counts a resolution by its kind.
func (o *observer) matched(kind MatchKind) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.matches.WithLabelValues(string(kind)).Inc()
}

// fallback records an answer that did not come from the requested books.
func (o *observer) fallback(op, kind string) {
	if o == nil {
		return
	}
	if o.metrics != nil {
		o.metrics.fallbacks.WithLabelValues(op, kind).Inc()
	}
	if o.logger != nil {
		o.logger.Debug("bookrec fallback used", "op", op, "kind", kind)
	}
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, ErrTitleNotFound), errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDegenerateVector):
		return "degenerate"
	case errors.Is(err, ErrLoad):
		return "load_failed"
	}
	return "error"
}

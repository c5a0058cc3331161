package similar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bookrec/internal/domain"
	"github.com/kailas-cloud/bookrec/internal/domain/neighbor"
	"github.com/kailas-cloud/bookrec/internal/logger"
)

// Instrumented wraps a Finder with duration metrics and logging.
type Instrumented struct {
	inner    Finder
	duration *prometheus.HistogramVec
}

// NewInstrumented wraps inner. duration is a histogram vec with label "status"
// ("ok"/"not_found"/"invalid"/"degenerate"/"error"), passed explicitly; nil disables it.
func NewInstrumented(inner Finder, duration *prometheus.HistogramVec) *Instrumented {
	return &Instrumented{inner: inner, duration: duration}
}

// Nearest delegates to the inner finder and records the outcome.
func (p *Instrumented) Nearest(ctx context.Context, title string, k int) ([]neighbor.Neighbor, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	ns, err := p.inner.Nearest(ctx, title, k)

	elapsed := time.Since(start)
	status := statusOf(err)
	if p.duration != nil {
		p.duration.WithLabelValues(status).Observe(elapsed.Seconds())
	}

	if err != nil {
		fields := []zap.Field{
			zap.String("title", title),
			zap.Int("k", k),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		}
		switch status {
		case "degenerate":
			log.Error("Degenerate embedding encountered", fields...)
		case "error":
			log.Error("Nearest neighbor search failed", fields...)
		default:
			log.Warn("Nearest neighbor search rejected", fields...)
		}
		return nil, fmt.Errorf("nearest: %w", err)
	}

	log.Debug("Nearest neighbor search completed",
		zap.String("title", title),
		zap.Int("k", k),
		zap.Int("returned", len(ns)),
		zap.Duration("duration", elapsed),
	)
	return ns, nil
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrTitleNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, domain.ErrDegenerateVector):
		return "degenerate"
	default:
		return "error"
	}
}

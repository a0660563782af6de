package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	ReconcileFailureDeadlineExceeded     = "deadline_exceeded"
	ReconcileFailureSerializationFailure = "serialization_failure"
	ReconcileFailureDeadlock             = "deadlock"
	ReconcileFailureLockTimeout          = "lock_timeout"
	ReconcileFailureUniqueViolation      = "unique_violation"
	ReconcileFailureUnknown              = "unknown"
)

// ReconcileMetrics tracks webhook reconciliation latency and persistence
// failures. Gateways retry on 5xx, so failures here are redeliveries later.
type ReconcileMetrics struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

func NewReconcileMetrics(cfg Config) (*ReconcileMetrics, error) {
	return newReconcileMetrics(prometheus.DefaultRegisterer, cfg)
}

func newReconcileMetrics(registerer prometheus.Registerer, cfg Config) (*ReconcileMetrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	constLabels := serviceLabels(cfg)

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "charity_reconcile_duration_seconds",
		Help:        "Webhook reconciliation latency by outcome.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		ConstLabels: constLabels,
	}, []string{"outcome"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "charity_reconcile_failures_total",
		Help:        "Webhook reconciliations that failed to persist, by reason.",
		ConstLabels: constLabels,
	}, []string{"reason"})

	var err error
	if duration, err = registerHistogramVec(registerer, duration); err != nil {
		return nil, err
	}
	if failures, err = registerCounterVec(registerer, failures); err != nil {
		return nil, err
	}
	return &ReconcileMetrics{duration: duration, failures: failures}, nil
}

func (m *ReconcileMetrics) ObserveDuration(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *ReconcileMetrics) IncFailure(err error) {
	if m == nil || err == nil {
		return
	}
	m.failures.WithLabelValues(ClassifyReconcileFailure(err)).Inc()
}

// ClassifyReconcileFailure maps persistence errors to a bounded reason label.
func ClassifyReconcileFailure(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return ReconcileFailureDeadlineExceeded
	case errors.Is(err, gorm.ErrDuplicatedKey), hasPGCode(err, "23505"):
		return ReconcileFailureUniqueViolation
	case hasPGCode(err, "40001"):
		return ReconcileFailureSerializationFailure
	case hasPGCode(err, "40P01"):
		return ReconcileFailureDeadlock
	case hasPGCode(err, "55P03"):
		return ReconcileFailureLockTimeout
	default:
		return ReconcileFailureUnknown
	}
}

func hasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Check results reported by RecordCheck.
const (
	CheckResultPassed   = "passed"
	CheckResultExceeded = "exceeded"
	CheckResultOverdue  = "overdue"
	CheckResultBoth     = "exceeded_and_overdue"
)

// CreditMetrics holds the credit governance instruments. A nil *CreditMetrics
// is valid and records nothing, so services work without metrics wired.
type CreditMetrics struct {
	checks            *Counter
	recomputes        *Counter
	recomputeDuration *Histogram
	consistencyErrors *Counter
	overrides         *Counter
	logger            *zap.Logger
}

// CreditMetricsConfig configures NewCreditMetrics.
type CreditMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewCreditMetrics registers all credit instruments on the meter.
func NewCreditMetrics(cfg CreditMetricsConfig) (*CreditMetrics, error) {
	if cfg.Meter == nil {
		return nil, errors.New("NewCreditMetrics: meter cannot be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cm := &CreditMetrics{logger: logger}
	var err error
	if cm.checks, err = NewCounter(cfg.Meter, "credit_checks_total", "Credit checks run on sales orders", "{check}"); err != nil {
		return nil, err
	}
	if cm.recomputes, err = NewCounter(cfg.Meter, "credit_recomputes_total", "Credit usage recomputations", "{recompute}"); err != nil {
		return nil, err
	}
	if cm.recomputeDuration, err = NewHistogram(cfg.Meter, "credit_recompute_duration_seconds",
		"Duration of credit usage recomputation", "s", RecomputeDurationBuckets...); err != nil {
		return nil, err
	}
	if cm.consistencyErrors, err = NewCounter(cfg.Meter, "credit_consistency_errors_total",
		"Concurrent residual modifications detected", "{error}"); err != nil {
		return nil, err
	}
	if cm.overrides, err = NewCounter(cfg.Meter, "credit_override_approvals_total", "Override approvals granted", "{approval}"); err != nil {
		return nil, err
	}
	return cm, nil
}

// CheckResult maps a check outcome to its metric label.
func CheckResult(exceeded, overdue bool) string {
	switch {
	case exceeded && overdue:
		return CheckResultBoth
	case exceeded:
		return CheckResultExceeded
	case overdue:
		return CheckResultOverdue
	default:
		return CheckResultPassed
	}
}

// RecordCheck counts one credit check.
func (m *CreditMetrics) RecordCheck(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.checks.Inc(ctx, AttrResult.String(result))
}

// RecordRecompute counts one usage recomputation and its duration.
func (m *CreditMetrics) RecordRecompute(ctx context.Context, trigger string, took time.Duration) {
	if m == nil {
		return
	}
	m.recomputes.Inc(ctx, AttrTrigger.String(trigger))
	m.recomputeDuration.RecordDuration(ctx, took, AttrTrigger.String(trigger))
}

// RecordConsistencyError counts a detected concurrent residual change.
func (m *CreditMetrics) RecordConsistencyError(ctx context.Context) {
	if m == nil {
		return
	}
	m.consistencyErrors.Inc(ctx)
	m.logger.Warn("credit consistency error recorded")
}

// RecordOverride counts one granted override of the given kind.
func (m *CreditMetrics) RecordOverride(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.overrides.Inc(ctx, AttrKind.String(kind))
}

package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics records point-of-sale activity: orders created, payments
// posted and manual sequence resets.
type BusinessMetrics struct {
	logger *zap.Logger

	orderCreatedTotal   *Counter
	orderAmountTotal    *FloatCounter
	orderLines          *Histogram
	paymentPostedTotal  *Counter
	paymentAmountTotal  *FloatCounter
	sequenceResetsTotal *Counter
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewBusinessMetrics creates the business instruments on cfg.Meter.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{logger: logger}
	var err error

	if bm.orderCreatedTotal, err = NewCounter(cfg.Meter, "pos_order_created_total",
		"Total number of point-of-sale orders created", "{order}"); err != nil {
		return nil, err
	}
	if bm.orderAmountTotal, err = NewFloatCounter(cfg.Meter, "pos_order_amount_total",
		"Sum of order totals at creation", "{currency}"); err != nil {
		return nil, err
	}
	if bm.orderLines, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "pos_order_lines",
		Description: "Number of lines per order at creation",
		Unit:        "{line}",
		Boundaries:  OrderLineBuckets,
	}); err != nil {
		return nil, err
	}
	if bm.paymentPostedTotal, err = NewCounter(cfg.Meter, "pos_payment_posted_total",
		"Total number of payments posted", "{payment}"); err != nil {
		return nil, err
	}
	if bm.paymentAmountTotal, err = NewFloatCounter(cfg.Meter, "pos_payment_amount_total",
		"Sum of posted payment amounts", "{currency}"); err != nil {
		return nil, err
	}
	if bm.sequenceResetsTotal, err = NewCounter(cfg.Meter, "pos_sequence_reset_total",
		"Total number of manual sequence resets", "{reset}"); err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordOrderCreated counts a new order together with its total and line count
func (bm *BusinessMetrics) RecordOrderCreated(ctx context.Context, tenantID uuid.UUID, total decimal.Decimal, lines int) {
	tenant := AttrTenantID.String(tenantID.String())
	bm.orderCreatedTotal.Inc(ctx, tenant)
	if amount := total.InexactFloat64(); amount > 0 {
		bm.orderAmountTotal.Add(ctx, amount, tenant)
	}
	bm.orderLines.Record(ctx, float64(lines), tenant)
}

// RecordPaymentPosted counts a posted payment and adds its amount
func (bm *BusinessMetrics) RecordPaymentPosted(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal, method string) {
	attrs := []attribute.KeyValue{
		AttrTenantID.String(tenantID.String()),
		AttrPaymentMethod.String(method),
	}
	bm.paymentPostedTotal.Inc(ctx, attrs...)
	bm.paymentAmountTotal.Add(ctx, amount.InexactFloat64(), attrs...)
}

// RecordSequenceReset counts a manual reset of the sequence named by code
func (bm *BusinessMetrics) RecordSequenceReset(ctx context.Context, tenantID uuid.UUID, code string) {
	bm.sequenceResetsTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrSequenceCode.String(code),
	)
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

package telemetry_test

import (
	"context"
	"testing"

	"github.com/erp/puntoventa/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{})
	assert.Nil(t, bm)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func newBusinessMetrics(t *testing.T) (*telemetry.BusinessMetrics, func() metricdata.ResourceMetrics) {
	t.Helper()
	mp, reader := setupTestMeter(t)
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{Meter: mp.Meter("pos")})
	require.NoError(t, err)
	return bm, func() metricdata.ResourceMetrics { return collect(t, reader) }
}

func TestBusinessMetrics_RecordOrderCreated(t *testing.T) {
	bm, collectNow := newBusinessMetrics(t)
	tenantID := uuid.New()
	ctx := context.Background()

	bm.RecordOrderCreated(ctx, tenantID, decimal.RequireFromString("116.00"), 2)
	bm.RecordOrderCreated(ctx, tenantID, decimal.Zero, 0)

	rm := collectNow()

	created := int64Sum(t, rm, "pos_order_created_total")
	require.Len(t, created.DataPoints, 1)
	assert.Equal(t, int64(2), created.DataPoints[0].Value)
	v, ok := created.DataPoints[0].Attributes.Value(telemetry.AttrTenantID)
	require.True(t, ok)
	assert.Equal(t, tenantID.String(), v.AsString())

	amount := float64Sum(t, rm, "pos_order_amount_total")
	require.Len(t, amount.DataPoints, 1)
	assert.InDelta(t, 116.0, amount.DataPoints[0].Value, 1e-9)

	m, ok := findMetric(rm, "pos_order_lines")
	require.True(t, ok)
	lines := m.Data.(metricdata.Histogram[float64])
	require.Len(t, lines.DataPoints, 1)
	assert.Equal(t, uint64(2), lines.DataPoints[0].Count)
	assert.InDelta(t, 2.0, lines.DataPoints[0].Sum, 1e-9)
}

func TestBusinessMetrics_RecordPaymentPosted(t *testing.T) {
	bm, collectNow := newBusinessMetrics(t)
	tenantID := uuid.New()
	ctx := context.Background()

	bm.RecordPaymentPosted(ctx, tenantID, decimal.RequireFromString("50.25"), "cash")
	bm.RecordPaymentPosted(ctx, tenantID, decimal.RequireFromString("10"), "card")
	bm.RecordPaymentPosted(ctx, tenantID, decimal.RequireFromString("9.75"), "cash")

	rm := collectNow()

	posted := int64Sum(t, rm, "pos_payment_posted_total")
	byMethod := map[string]int64{}
	for _, dp := range posted.DataPoints {
		v, _ := dp.Attributes.Value(telemetry.AttrPaymentMethod)
		byMethod[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"cash": 2, "card": 1}, byMethod)

	amounts := float64Sum(t, rm, "pos_payment_amount_total")
	total := 0.0
	for _, dp := range amounts.DataPoints {
		total += dp.Value
	}
	assert.InDelta(t, 70.0, total, 1e-9)
}

func TestBusinessMetrics_RecordSequenceReset(t *testing.T) {
	bm, collectNow := newBusinessMetrics(t)

	bm.RecordSequenceReset(context.Background(), uuid.New(), "pos.order")

	resets := int64Sum(t, collectNow(), "pos_sequence_reset_total")
	require.Len(t, resets.DataPoints, 1)
	assert.Equal(t, int64(1), resets.DataPoints[0].Value)
	v, ok := resets.DataPoints[0].Attributes.Value(telemetry.AttrSequenceCode)
	require.True(t, ok)
	assert.Equal(t, "pos.order", v.AsString())
}

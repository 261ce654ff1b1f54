package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newManualMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func sumByAttr(t *testing.T, reader *sdkmetric.ManualReader, name, key string) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					v, _ := dp.Attributes.Value(attribute.Key(key))
					out[v.AsString()] += dp.Value
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					v, _ := dp.Attributes.Value(attribute.Key(key))
					out[v.AsString()] = dp.Value
				}
			}
		}
	}
	return out
}

func TestRegisterDBMetrics_SkipsWhenUnavailable(t *testing.T) {
	db := newSQLiteDB(t)

	m, err := RegisterDBMetrics(db, nil, DBMetricsConfig{Enabled: false}, nil)
	assert.NoError(t, err)
	assert.Nil(t, m)

	m, err = RegisterDBMetrics(db, nil, DefaultDBMetricsConfig(), zap.NewNop())
	assert.NoError(t, err)
	assert.Nil(t, m)

	disabled, err := NewMeterProvider(context.Background(), MetricsConfig{}, nil)
	require.NoError(t, err)
	m, err = RegisterDBMetrics(db, disabled, DefaultDBMetricsConfig(), nil)
	assert.NoError(t, err)
	assert.Nil(t, m)
}

func TestDBMetricsPlugin_RecordsStatements(t *testing.T) {
	db := newSQLiteDB(t)
	mp, reader := newManualMeter(t)

	metrics, err := registerDBMetricsOn(db, mp.Meter("db.client"), DBMetricsConfig{
		Enabled:            true,
		SlowQueryThreshold: time.Nanosecond,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(metrics.Stop)

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&widget{Name: "a"}).Error)

	var ws []widget
	require.NoError(t, db.WithContext(ctx).Find(&ws).Error)

	var w widget
	require.ErrorIs(t, db.WithContext(ctx).First(&w, 999).Error, gorm.ErrRecordNotFound)

	require.NoError(t, db.WithContext(ctx).Exec("UPDATE widgets SET name = ?", "b").Error)
	require.Error(t, db.WithContext(ctx).Table("missing_table").Find(&ws).Error)

	totals := sumByAttr(t, reader, "db_query_total", "db.operation")
	assert.Equal(t, int64(1), totals["INSERT"])
	assert.Equal(t, int64(1), totals["UPDATE"])
	assert.Equal(t, int64(3), totals["SELECT"])

	failures := sumByAttr(t, reader, "db_query_errors_total", "db.operation")
	assert.Equal(t, map[string]int64{"SELECT": 1}, failures)

	slow := sumByAttr(t, reader, "db_slow_query_total", "db.table")
	assert.Equal(t, int64(3), slow["widgets"])
	assert.Equal(t, int64(1), slow["missing_table"])
}

func TestDBMetrics_PoolStats(t *testing.T) {
	db := newSQLiteDB(t)
	mp, reader := newManualMeter(t)

	metrics, err := NewDBMetrics(mp.Meter("db.client"), DBMetricsConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, metrics.config.SlowQueryThreshold)
	assert.Equal(t, 15*time.Second, metrics.config.PoolStatsInterval)

	// no pool yet: nothing to poll
	metrics.StartPoolStatsCollection(context.Background())

	sqlDB, err := db.DB()
	require.NoError(t, err)
	metrics.SetSQLDB(sqlDB)
	metrics.StartPoolStatsCollection(context.Background())

	assert.Eventually(t, func() bool {
		return sumByAttr(t, reader, "db_pool_connections_max", "")[""] == 1
	}, time.Second, 10*time.Millisecond)

	states := sumByAttr(t, reader, "db_pool_connections", "db.pool.state")
	assert.Contains(t, states, "idle")
	assert.Contains(t, states, "in_use")
	assert.Contains(t, states, "open")

	metrics.Stop()
	metrics.Stop()
}

func TestDetectOperationType(t *testing.T) {
	tests := map[string]string{
		"SELECT 1":                             "SELECT",
		"  select * from pos_orders":           "SELECT",
		"WITH x AS (SELECT 1) SELECT * FROM x": "SELECT",
		"INSERT INTO pos_payments":             "INSERT",
		"update sequences set next = 1":        "UPDATE",
		"DELETE FROM pos_order_lines":          "DELETE",
		"PRAGMA foreign_keys = ON":             "OTHER",
		"":                                     "OTHER",
	}
	for sql, want := range tests {
		assert.Equal(t, want, detectOperationType(sql), sql)
	}
}

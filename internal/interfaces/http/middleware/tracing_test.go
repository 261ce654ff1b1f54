package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})
	return tp, sr
}

func tracedRouter(tp *sdktrace.TracerProvider, status int) *gin.Engine {
	cfg := DefaultTracingConfig()
	cfg.TracerProvider = tp

	router := gin.New()
	router.Use(RequestID())
	router.Use(Tracing(cfg))
	router.Use(SpanErrorMarker())
	router.Use(TenantMiddleware(DefaultTenantConfig()))
	router.Use(TracingAttributeInjector())
	router.GET("/api/v1/orders/:id", func(c *gin.Context) {
		c.Status(status)
	})
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func spanNamed(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, s := range sr.Ended() {
		if s.Name() == name {
			return s
		}
	}
	require.FailNow(t, "span not found", name)
	return nil
}

func spanAttr(s sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, kv := range s.Attributes() {
		if string(kv.Key) == key {
			return kv.Value.Emit(), true
		}
	}
	return "", false
}

func TestTracing_Disabled(t *testing.T) {
	router := gin.New()
	router.Use(Tracing(TracingConfig{Enabled: false}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTracing_SpanCarriesRequestAndTenant(t *testing.T) {
	tp, sr := setupTestTracer(t)
	router := tracedRouter(tp, http.StatusOK)
	tenant := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/42", nil)
	req.Header.Set("X-Request-ID", "req-123")
	req.Header.Set(TenantHeaderKey, tenant.String())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	span := spanNamed(t, sr, "GET /api/v1/orders/:id")
	rid, ok := spanAttr(span, "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-123", rid)
	tid, ok := spanAttr(span, "tenant_id")
	require.True(t, ok)
	assert.Equal(t, tenant.String(), tid)
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		status int
		msg    string
	}{
		{http.StatusNotFound, "Not Found"},
		{http.StatusUnprocessableEntity, "Unprocessable Entity"},
		// otelgin sets its own status for 5xx
		{http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			tp, sr := setupTestTracer(t)
			router := tracedRouter(tp, tt.status)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/1", nil)
			req.Header.Set(TenantHeaderKey, uuid.NewString())
			router.ServeHTTP(httptest.NewRecorder(), req)

			span := spanNamed(t, sr, "GET /api/v1/orders/:id")
			assert.Equal(t, codes.Error, span.Status().Code)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, span.Status().Description)
			}
		})
	}
}

func TestTracing_SkipPaths(t *testing.T) {
	tp, sr := setupTestTracer(t)
	router := tracedRouter(tp, http.StatusOK)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, sr.Ended())
}

package cache

import (
	"context"
	"sync"
	"testing"

	"github.com/erp/puntoventa/internal/domain/sequence"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestInMemoryCounter_Next(t *testing.T) {
	ctx := context.Background()
	counter := NewInMemoryCounter(nil)
	tenantID := uuid.New()

	tests := []struct {
		code string
		want []string
	}{
		{sequence.CodeFolio, []string{"F000001", "F000002"}},
		{sequence.CodeOrder, []string{"1", "2"}},
		{sequence.CodePayment, []string{"PAGO/00001", "PAGO/00002"}},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			for _, want := range tt.want {
				got, err := counter.Next(ctx, tenantID, tt.code)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestInMemoryCounter_TenantsAreIndependent(t *testing.T) {
	ctx := context.Background()
	counter := NewInMemoryCounter(nil)

	a, err := counter.Next(ctx, uuid.New(), sequence.CodeOrder)
	require.NoError(t, err)
	b, err := counter.Next(ctx, uuid.New(), sequence.CodeOrder)
	require.NoError(t, err)

	assert.Equal(t, "1", a)
	assert.Equal(t, "1", b)
}

func TestInMemoryCounter_Reset(t *testing.T) {
	ctx := context.Background()
	counter := NewInMemoryCounter(nil)
	tenantID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := counter.Next(ctx, tenantID, sequence.CodeFolio)
		require.NoError(t, err)
	}
	require.NoError(t, counter.Reset(ctx, tenantID, sequence.CodeFolio))

	got, err := counter.Next(ctx, tenantID, sequence.CodeFolio)
	require.NoError(t, err)
	assert.Equal(t, "F000001", got)

	// Resetting a sequence that was never drawn is fine
	require.NoError(t, counter.Reset(ctx, tenantID, sequence.CodePayment))
}

func TestInMemoryCounter_PeekNext(t *testing.T) {
	ctx := context.Background()
	counter := NewInMemoryCounter(nil)
	tenantID := uuid.New()

	next, err := counter.PeekNext(ctx, tenantID, sequence.CodeFolio)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)

	for range 3 {
		_, err := counter.Next(ctx, tenantID, sequence.CodeFolio)
		require.NoError(t, err)
	}
	next, err = counter.PeekNext(ctx, tenantID, sequence.CodeFolio)
	require.NoError(t, err)
	assert.Equal(t, int64(4), next)

	value, err := counter.Next(ctx, tenantID, sequence.CodeFolio)
	require.NoError(t, err)
	assert.Equal(t, "F000004", value, "peeking does not draw")

	require.NoError(t, counter.Reset(ctx, tenantID, sequence.CodeFolio))
	next, err = counter.PeekNext(ctx, tenantID, sequence.CodeFolio)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)

	_, err = counter.PeekNext(ctx, tenantID, "no.such.code")
	assert.ErrorIs(t, err, sequence.ErrSequenceNotFound)
}

func TestInMemoryCounter_UnknownCode(t *testing.T) {
	ctx := context.Background()
	counter := NewInMemoryCounter(nil)

	_, err := counter.Next(ctx, uuid.New(), "no.such.code")
	assert.ErrorIs(t, err, sequence.ErrSequenceNotFound)
	assert.ErrorIs(t, counter.Reset(ctx, uuid.New(), "no.such.code"), sequence.ErrSequenceNotFound)
}

func TestInMemoryCounter_CustomDefinitions(t *testing.T) {
	counter := NewInMemoryCounter(map[string]sequence.Definition{
		"ticket": {Code: "ticket", Prefix: "T-", Padding: 3, Increment: 5},
	})
	tenantID := uuid.New()

	first, err := counter.Next(context.Background(), tenantID, "ticket")
	require.NoError(t, err)
	second, err := counter.Next(context.Background(), tenantID, "ticket")
	require.NoError(t, err)

	assert.Equal(t, "T-001", first)
	assert.Equal(t, "T-006", second)
}

func TestInMemoryCounter_ConcurrentDrawsAreUnique(t *testing.T) {
	ctx := context.Background()
	counter := NewInMemoryCounter(nil)
	tenantID := uuid.New()

	const draws = 100
	values := make(chan string, draws)
	var wg sync.WaitGroup
	for i := 0; i < draws; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := counter.Next(ctx, tenantID, sequence.CodeOrder)
			if err == nil {
				values <- v
			}
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[string]bool, draws)
	for v := range values {
		assert.False(t, seen[v], "duplicate value %s", v)
		seen[v] = true
	}
	assert.Len(t, seen, draws)
}

func TestSequenceKey(t *testing.T) {
	tenantID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	assert.Equal(t,
		"pos:sequence:00000000-0000-0000-0000-000000000001:punto.venta.folio",
		SequenceKey(tenantID, sequence.CodeFolio))
}

// unreachableClient points at a port nothing listens on so commands fail fast
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisCounter_UnknownCodeSkipsRedis(t *testing.T) {
	counter := NewRedisCounter(unreachableClient(t), nil)

	_, err := counter.Next(context.Background(), uuid.New(), "no.such.code")
	assert.ErrorIs(t, err, sequence.ErrSequenceNotFound)
	assert.ErrorIs(t, counter.Reset(context.Background(), uuid.New(), "no.such.code"), sequence.ErrSequenceNotFound)
	_, err = counter.PeekNext(context.Background(), uuid.New(), "no.such.code")
	assert.ErrorIs(t, err, sequence.ErrSequenceNotFound)
}

func TestRedisCounter_ConnectionErrorIsSurfaced(t *testing.T) {
	counter := NewRedisCounter(unreachableClient(t), nil)

	value, err := counter.Next(context.Background(), uuid.New(), sequence.CodeFolio)
	require.Error(t, err)
	assert.Empty(t, value)
	assert.Contains(t, err.Error(), sequence.CodeFolio)

	assert.Error(t, counter.Reset(context.Background(), uuid.New(), sequence.CodeFolio))

	_, err = counter.PeekNext(context.Background(), uuid.New(), sequence.CodeFolio)
	require.Error(t, err)
	assert.Contains(t, err.Error(), sequence.CodeFolio)
}

func TestRedisIdempotencyStore_ConnectionErrorIsSurfaced(t *testing.T) {
	store := NewRedisIdempotencyStore(unreachableClient(t), "")
	assert.Equal(t, "pos:event:idempotency:evt-1", store.key("evt-1"))

	_, err := store.MarkProcessed(context.Background(), "evt-1", 0)
	assert.Error(t, err)
	_, err = store.IsProcessed(context.Background(), "evt-1")
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}

func TestRedisCounter_RecordsClientSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	counter := NewRedisCounter(unreachableClient(t), nil)
	_, err := counter.Next(context.Background(), uuid.New(), sequence.CodeOrder)
	require.Error(t, err)
	_, err = counter.PeekNext(context.Background(), uuid.New(), sequence.CodeOrder)
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "sequence_counter.next", spans[0].Name())
	assert.Equal(t, "sequence_counter.peek", spans[1].Name())
	for _, span := range spans {
		assert.Equal(t, trace.SpanKindClient, span.SpanKind())
		assert.Equal(t, codes.Error, span.Status().Code)
		attrs := map[string]string{}
		for _, kv := range span.Attributes() {
			attrs[string(kv.Key)] = kv.Value.Emit()
		}
		assert.Equal(t, sequence.CodeOrder, attrs["sequence_code"])
	}
}

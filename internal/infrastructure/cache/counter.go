package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/erp/puntoventa/internal/domain/sequence"
	"github.com/erp/puntoventa/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

// InMemoryCounter keeps sequences in process memory. Values are unique within
// the process and restart with it.
type InMemoryCounter struct {
	mu          sync.Mutex
	definitions map[string]sequence.Definition
	sequences   map[string]*sequence.Sequence
}

// NewInMemoryCounter creates a counter for the given definitions, or the
// default ones when nil
func NewInMemoryCounter(definitions map[string]sequence.Definition) *InMemoryCounter {
	if definitions == nil {
		definitions = sequence.DefaultDefinitions()
	}
	return &InMemoryCounter{
		definitions: definitions,
		sequences:   make(map[string]*sequence.Sequence),
	}
}

// Next returns the next formatted value for code
func (c *InMemoryCounter) Next(_ context.Context, tenantID uuid.UUID, code string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seq, err := c.get(tenantID, code)
	if err != nil {
		return "", err
	}
	return seq.Next()
}

// Reset makes the next value for code start at 1
func (c *InMemoryCounter) Reset(_ context.Context, tenantID uuid.UUID, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	seq, err := c.get(tenantID, code)
	if err != nil {
		return err
	}
	seq.Reset()
	return nil
}

// PeekNext reports the number Next would hand out
func (c *InMemoryCounter) PeekNext(_ context.Context, tenantID uuid.UUID, code string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seq, err := c.get(tenantID, code)
	if err != nil {
		return 0, err
	}
	return max(seq.NumberNext, 1), nil
}

func (c *InMemoryCounter) get(tenantID uuid.UUID, code string) (*sequence.Sequence, error) {
	key := tenantID.String() + ":" + code
	if seq, ok := c.sequences[key]; ok {
		return seq, nil
	}
	def, ok := c.definitions[code]
	if !ok {
		return nil, sequence.ErrSequenceNotFound
	}
	seq, err := sequence.NewSequence(tenantID, def)
	if err != nil {
		return nil, err
	}
	c.sequences[key] = seq
	return seq, nil
}

// RedisCounter draws values with INCRBY, so every instance sharing the Redis
// server sees one counter per tenant and code. Draws are not part of any SQL
// transaction: a rolled back order keeps its number consumed.
type RedisCounter struct {
	client      redis.UniversalClient
	definitions map[string]sequence.Definition
}

// NewRedisCounter creates a counter for the given definitions, or the
// default ones when nil
func NewRedisCounter(client redis.UniversalClient, definitions map[string]sequence.Definition) *RedisCounter {
	if definitions == nil {
		definitions = sequence.DefaultDefinitions()
	}
	return &RedisCounter{
		client:      client,
		definitions: definitions,
	}
}

// Next returns the next formatted value for code
func (c *RedisCounter) Next(ctx context.Context, tenantID uuid.UUID, code string) (string, error) {
	seq, err := c.template(tenantID, code)
	if err != nil {
		return "", err
	}
	ctx, span := startCounterSpan(ctx, "next", code)
	defer span.End()

	// INCRBY returns the value after the increment; the drawn number is the one before it
	last, err := c.client.IncrBy(ctx, SequenceKey(tenantID, code), seq.NumberIncrement).Result()
	if err != nil {
		err = fmt.Errorf("failed to draw sequence %s: %w", code, err)
		telemetry.RecordError(span, err)
		return "", err
	}
	telemetry.SetOK(span)
	return seq.Format(last - seq.NumberIncrement + 1), nil
}

// Reset makes the next value for code start at 1
func (c *RedisCounter) Reset(ctx context.Context, tenantID uuid.UUID, code string) error {
	if _, err := c.template(tenantID, code); err != nil {
		return err
	}
	ctx, span := startCounterSpan(ctx, "reset", code)
	defer span.End()

	if err := c.client.Del(ctx, SequenceKey(tenantID, code)).Err(); err != nil {
		err = fmt.Errorf("failed to reset sequence %s: %w", code, err)
		telemetry.RecordError(span, err)
		return err
	}
	telemetry.SetOK(span)
	return nil
}

// PeekNext reports the number Next would hand out. A missing key means
// nothing has been drawn since the last reset.
func (c *RedisCounter) PeekNext(ctx context.Context, tenantID uuid.UUID, code string) (int64, error) {
	if _, err := c.template(tenantID, code); err != nil {
		return 0, err
	}
	ctx, span := startCounterSpan(ctx, "peek", code)
	defer span.End()

	last, err := c.client.Get(ctx, SequenceKey(tenantID, code)).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		last = 0
	case err != nil:
		err = fmt.Errorf("failed to read sequence %s: %w", code, err)
		telemetry.RecordError(span, err)
		return 0, err
	}
	telemetry.SetOK(span)
	return last + 1, nil
}

func startCounterSpan(ctx context.Context, op, code string) (context.Context, trace.Span) {
	return telemetry.StartSpan(ctx, "sequence_counter."+op,
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute(telemetry.SpanAttrSequenceCode, code),
	)
}

func (c *RedisCounter) template(tenantID uuid.UUID, code string) (*sequence.Sequence, error) {
	def, ok := c.definitions[code]
	if !ok {
		return nil, sequence.ErrSequenceNotFound
	}
	return sequence.NewSequence(tenantID, def)
}

// SequenceKey is the Redis key holding the last drawn value of a tenant's sequence
func SequenceKey(tenantID uuid.UUID, code string) string {
	return sequenceKeyPrefix + tenantID.String() + ":" + code
}

// Ensure counters implement Counter
var (
	_ sequence.Counter = (*InMemoryCounter)(nil)
	_ sequence.Counter = (*RedisCounter)(nil)
	_ sequence.Peeker  = (*InMemoryCounter)(nil)
	_ sequence.Peeker  = (*RedisCounter)(nil)
)

package unitofwork

import (
	"context"

	"github.com/erp/puntoventa/internal/domain/finance"
	"github.com/erp/puntoventa/internal/domain/pos"
	"github.com/erp/puntoventa/internal/domain/sequence"
	"github.com/erp/puntoventa/internal/domain/shared"
	"go.uber.org/zap"
)

// Scope runs a function as one unit of work. Every repository and the
// counter handed to fn share the same database transaction, so numbering,
// sequence resets and writes commit or roll back together.
type Scope interface {
	// Execute runs fn within a transaction; an error from fn rolls it back.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides the repositories of a unit of work.
//
// Counter is the sequence counter for the configured backend. The database
// backend participates in the transaction; Redis and in-memory counters do not.
type Repositories interface {
	Orders() pos.OrderRepository
	Payments() finance.PaymentRepository
	Sequences() sequence.Repository
	Counter() sequence.Counter
}

// NoOpScope runs fn against fixed repositories without a transaction.
// Used in tests and for stores with no transaction support.
type NoOpScope struct {
	orders    pos.OrderRepository
	payments  finance.PaymentRepository
	sequences sequence.Repository
	counter   sequence.Counter
}

// NewNoOpScope creates a NoOpScope with the given repositories
func NewNoOpScope(
	orders pos.OrderRepository,
	payments finance.PaymentRepository,
	sequences sequence.Repository,
	counter sequence.Counter,
) *NoOpScope {
	return &NoOpScope{
		orders:    orders,
		payments:  payments,
		sequences: sequences,
		counter:   counter,
	}
}

// Execute runs fn directly
func (s *NoOpScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s)
}

// Orders returns the order repository
func (s *NoOpScope) Orders() pos.OrderRepository { return s.orders }

// Payments returns the payment repository
func (s *NoOpScope) Payments() finance.PaymentRepository { return s.payments }

// Sequences returns the sequence repository
func (s *NoOpScope) Sequences() sequence.Repository { return s.sequences }

// Counter returns the sequence counter
func (s *NoOpScope) Counter() sequence.Counter { return s.counter }

var _ Scope = (*NoOpScope)(nil)
var _ Repositories = (*NoOpScope)(nil)

// EventSource is an aggregate with pending domain events
type EventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// PublishEvents publishes and clears the pending events of each source once
// the unit of work has committed. Publish failures are logged; the write
// already succeeded.
func PublishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, sources ...EventSource) {
	for _, src := range sources {
		events := src.GetDomainEvents()
		src.ClearDomainEvents()
		if publisher == nil || len(events) == 0 {
			continue
		}
		if err := publisher.Publish(ctx, events...); err != nil && logger != nil {
			logger.Warn("failed to publish domain events",
				zap.Int("count", len(events)),
				zap.String("first_event_type", events[0].EventType()),
				zap.Error(err),
			)
		}
	}
}

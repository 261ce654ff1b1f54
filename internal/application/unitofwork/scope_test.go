package unitofwork

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingPublisher struct {
	published []shared.DomainEvent
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.published = append(p.published, events...)
	return p.err
}

type testAggregate struct {
	shared.BaseAggregateRoot
}

func newTestAggregate(eventTypes ...string) *testAggregate {
	a := &testAggregate{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	for _, et := range eventTypes {
		evt := shared.NewBaseDomainEvent(et, "Test", a.ID, uuid.New())
		a.AddDomainEvent(&evt)
	}
	return a
}

func TestNoOpScope_Execute(t *testing.T) {
	scope := NewNoOpScope(nil, nil, nil, nil)

	var got Repositories
	err := scope.Execute(context.Background(), func(repos Repositories) error {
		got = repos
		return nil
	})
	require.NoError(t, err)
	assert.Same(t, scope, got)

	sentinel := errors.New("boom")
	err = scope.Execute(context.Background(), func(Repositories) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}

func TestPublishEvents(t *testing.T) {
	t.Run("publishes and clears", func(t *testing.T) {
		pub := &recordingPublisher{}
		a := newTestAggregate("A", "B")
		b := newTestAggregate("C")

		PublishEvents(context.Background(), pub, zap.NewNop(), a, b)

		require.Len(t, pub.published, 3)
		assert.Equal(t, "C", pub.published[2].EventType())
		assert.Empty(t, a.GetDomainEvents())
		assert.Empty(t, b.GetDomainEvents())
	})

	t.Run("nil publisher still clears", func(t *testing.T) {
		a := newTestAggregate("A")
		PublishEvents(context.Background(), nil, nil, a)
		assert.Empty(t, a.GetDomainEvents())
	})

	t.Run("publish failure is logged", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		pub := &recordingPublisher{err: errors.New("bus stopped")}

		PublishEvents(context.Background(), pub, zap.New(core), newTestAggregate("A"))

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "failed to publish domain events", logs.All()[0].Message)
	})
}

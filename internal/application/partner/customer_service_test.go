package partner

import (
	"context"
	"testing"
	"time"

	"github.com/erp/puntoventa/internal/domain/partner"
	"github.com/erp/puntoventa/internal/domain/pos"
	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCustomerService_Create(t *testing.T) {
	tenantID := uuid.New()
	customers := new(MockCustomerRepository)
	svc := NewCustomerService(customers, new(MockOrderRepository), nil)
	customers.On("Save", mock.Anything, mock.AnythingOfType("*partner.Customer")).Return(nil)

	resp, err := svc.Create(context.Background(), tenantID, CreateCustomerRequest{
		Name:  "  Abarrotes Lupita ",
		Email: "Ventas@Lupita.MX",
		Phone: "+52 55 1234 5678",
		RFC:   "aal010203ab1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Abarrotes Lupita", resp.Name)
	assert.Equal(t, "ventas@lupita.mx", resp.Email)
	assert.Equal(t, "AAL010203AB1", resp.RFC)

	_, err = svc.Create(context.Background(), tenantID, CreateCustomerRequest{Name: "X", RFC: "bogus-rfc-000"})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_RFC", de.Code)
}

func TestCustomerService_Update_RenamePublishes(t *testing.T) {
	tenantID := uuid.New()
	customers := new(MockCustomerRepository)
	publisher := new(MockEventPublisher)
	svc := NewCustomerService(customers, new(MockOrderRepository), nil)
	svc.SetEventPublisher(publisher)

	customer, err := partner.NewCustomer(tenantID, "Ana")
	require.NoError(t, err)
	customer.ClearDomainEvents()
	customers.On("FindByIDForTenant", mock.Anything, tenantID, customer.ID).Return(customer, nil)
	customers.On("Save", mock.Anything, customer).Return(nil)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == partner.EventTypeCustomerUpdated
	})).Return(nil).Once()

	name := "Ana María"
	resp, err := svc.Update(context.Background(), tenantID, customer.ID, UpdateCustomerRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", resp.Name)

	// same name, contact change only
	phone := "555-0101"
	_, err = svc.Update(context.Background(), tenantID, customer.ID, UpdateCustomerRequest{Name: &name, Phone: &phone})
	require.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestCustomerService_Delete(t *testing.T) {
	tenantID := uuid.New()
	customers := new(MockCustomerRepository)
	orders := new(MockOrderRepository)
	svc := NewCustomerService(customers, orders, nil)

	withOrders, err := partner.NewCustomer(tenantID, "Ana")
	require.NoError(t, err)
	order, err := pos.NewOrder(tenantID, withOrders.ID, withOrders.Name, time.Time{})
	require.NoError(t, err)
	customers.On("FindByIDForTenant", mock.Anything, tenantID, withOrders.ID).Return(withOrders, nil)
	orders.On("FindByCustomer", mock.Anything, tenantID, withOrders.ID).Return([]pos.Order{*order}, nil)

	assert.ErrorIs(t, svc.Delete(context.Background(), tenantID, withOrders.ID), shared.ErrInvalidState)
	customers.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)

	missing := uuid.New()
	customers.On("FindByIDForTenant", mock.Anything, tenantID, missing).Return(nil, shared.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), tenantID, missing), shared.ErrNotFound)
}

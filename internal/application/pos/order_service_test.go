package pos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/puntoventa/internal/application/unitofwork"
	"github.com/erp/puntoventa/internal/domain/catalog"
	"github.com/erp/puntoventa/internal/domain/partner"
	"github.com/erp/puntoventa/internal/domain/pos"
	"github.com/erp/puntoventa/internal/domain/sequence"
	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderServiceFixture struct {
	tenantID  uuid.UUID
	orders    *MockOrderRepository
	payments  *MockPaymentRepository
	products  *MockProductRepository
	taxes     *MockTaxRepository
	customers *MockCustomerRepository
	counter   *MockCounter
	service   *OrderService
}

func newOrderServiceFixture() *orderServiceFixture {
	f := &orderServiceFixture{
		tenantID:  uuid.New(),
		orders:    new(MockOrderRepository),
		payments:  new(MockPaymentRepository),
		products:  new(MockProductRepository),
		taxes:     new(MockTaxRepository),
		customers: new(MockCustomerRepository),
		counter:   new(MockCounter),
	}
	scope := unitofwork.NewNoOpScope(f.orders, f.payments, nil, f.counter)
	f.service = NewOrderService(scope, f.orders, f.products, f.taxes, f.customers, time.UTC, nil)
	return f
}

func (f *orderServiceFixture) customer(t *testing.T) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(f.tenantID, "Público en General")
	require.NoError(t, err)
	f.customers.On("FindByIDForTenant", mock.Anything, f.tenantID, c.ID).Return(c, nil)
	return c
}

func (f *orderServiceFixture) product(t *testing.T, price string, taxes ...catalog.Tax) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(f.tenantID, "CAFE-"+uuid.NewString()[:8], "Café", decimal.RequireFromString(price))
	require.NoError(t, err)
	ids := make([]uuid.UUID, len(taxes))
	for i, tx := range taxes {
		ids[i] = tx.ID
	}
	p.SetTaxes(ids)
	f.products.On("FindByIDForTenant", mock.Anything, f.tenantID, p.ID).Return(p, nil)
	if len(ids) > 0 {
		f.taxes.On("FindByIDs", mock.Anything, f.tenantID, ids).Return(taxes, nil)
	}
	return p
}

func (f *orderServiceFixture) tax(t *testing.T, name, amount string) catalog.Tax {
	t.Helper()
	tx, err := catalog.NewTax(f.tenantID, name, decimal.RequireFromString(amount))
	require.NoError(t, err)
	return *tx
}

func (f *orderServiceFixture) existingOrder(t *testing.T, number string) *pos.Order {
	t.Helper()
	o, err := pos.NewOrder(f.tenantID, uuid.New(), "Ana", time.Time{})
	require.NoError(t, err)
	require.NoError(t, o.AssignNumbers("F000001", number))
	o.ClearDomainEvents()
	return o
}

func TestOrderService_Create(t *testing.T) {
	f := newOrderServiceFixture()
	ctx := context.Background()
	customer := f.customer(t)
	iva := f.tax(t, "IVA", "16")
	product := f.product(t, "35.50", iva)

	f.counter.On("Next", mock.Anything, f.tenantID, sequence.CodeFolio).Return("F000001", nil).Once()
	f.counter.On("Next", mock.Anything, f.tenantID, sequence.CodeOrder).Return("1", nil).Once()
	f.orders.On("Save", mock.Anything, mock.AnythingOfType("*pos.Order")).Return(nil).Once()

	qty := decimal.NewFromInt(2)
	resp, err := f.service.Create(ctx, f.tenantID, CreateOrderRequest{
		CustomerID: customer.ID,
		Lines: []OrderLineInput{
			{ProductID: product.ID, Quantity: &qty},
			{ProductID: product.ID},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "F000001", resp.FolioNumber)
	assert.Equal(t, pos.FormatOrderNumber(resp.CreatedAt.In(time.UTC), "1"), resp.OrderNumber)
	assert.Equal(t, customer.Name, resp.CustomerName)
	require.Len(t, resp.Lines, 2)
	assert.True(t, resp.Lines[0].PriceTotal.Equal(decimal.RequireFromString("87")), "2*35.50+16")
	assert.True(t, resp.Lines[1].Quantity.Equal(decimal.NewFromInt(1)), "quantity defaults to 1")
	assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("138.5")))
	assert.True(t, resp.SubtotalAmount.Equal(resp.TotalAmount))

	f.orders.AssertExpectations(t)
	f.counter.AssertExpectations(t)
}

func TestOrderService_Create_ConsecutiveNumbers(t *testing.T) {
	f := newOrderServiceFixture()
	ctx := context.Background()
	customer := f.customer(t)

	f.counter.On("Next", mock.Anything, f.tenantID, sequence.CodeFolio).Return("F000001", nil).Once()
	f.counter.On("Next", mock.Anything, f.tenantID, sequence.CodeOrder).Return("1", nil).Once()
	f.counter.On("Next", mock.Anything, f.tenantID, sequence.CodeFolio).Return("F000002", nil).Once()
	f.counter.On("Next", mock.Anything, f.tenantID, sequence.CodeOrder).Return("2", nil).Once()
	f.orders.On("Save", mock.Anything, mock.Anything).Return(nil)

	first, err := f.service.Create(ctx, f.tenantID, CreateOrderRequest{CustomerID: customer.ID})
	require.NoError(t, err)
	second, err := f.service.Create(ctx, f.tenantID, CreateOrderRequest{CustomerID: customer.ID})
	require.NoError(t, err)

	assert.Regexp(t, `^VENTA/\d{4}/\d{2}/0001$`, first.OrderNumber)
	assert.Regexp(t, `^VENTA/\d{4}/\d{2}/0002$`, second.OrderNumber)
}

func TestOrderService_Create_CounterFailure(t *testing.T) {
	f := newOrderServiceFixture()
	customer := f.customer(t)

	f.counter.On("Next", mock.Anything, f.tenantID, sequence.CodeFolio).Return("", sequence.ErrSequenceUnavailable)

	_, err := f.service.Create(context.Background(), f.tenantID, CreateOrderRequest{CustomerID: customer.ID})
	assert.ErrorIs(t, err, sequence.ErrSequenceUnavailable)
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOrderService_Create_UnknownReferences(t *testing.T) {
	f := newOrderServiceFixture()
	missing := uuid.New()
	f.customers.On("FindByIDForTenant", mock.Anything, f.tenantID, missing).Return(nil, shared.ErrNotFound)

	_, err := f.service.Create(context.Background(), f.tenantID, CreateOrderRequest{CustomerID: missing})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_CUSTOMER", de.Code)

	customer := f.customer(t)
	f.products.On("FindByIDForTenant", mock.Anything, f.tenantID, missing).Return(nil, shared.ErrNotFound)
	_, err = f.service.Create(context.Background(), f.tenantID, CreateOrderRequest{
		CustomerID: customer.ID,
		Lines:      []OrderLineInput{{ProductID: missing}},
	})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_PRODUCT", de.Code)
	f.counter.AssertNotCalled(t, "Next", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_LineOperations(t *testing.T) {
	f := newOrderServiceFixture()
	ctx := context.Background()
	iva := f.tax(t, "IVA", "16")
	ieps := f.tax(t, "IEPS", "3")
	product := f.product(t, "10", iva)

	order := f.existingOrder(t, "VENTA/2024/05/0001")
	f.orders.On("FindByIDForTenant", mock.Anything, f.tenantID, order.ID).Return(order, nil)
	f.orders.On("SaveWithLock", mock.Anything, order).Return(nil)

	resp, err := f.service.AddLine(ctx, f.tenantID, order.ID, AddLineRequest{ProductID: product.ID})
	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	lineID := resp.Lines[0].ID
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(26)))

	resp, err = f.service.UpdateLine(ctx, f.tenantID, order.ID, lineID, UpdateLineRequest{Quantity: decimal.NewFromInt(3)})
	require.NoError(t, err)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(46)))

	f.taxes.On("FindByIDs", mock.Anything, f.tenantID, []uuid.UUID{ieps.ID}).Return([]catalog.Tax{ieps}, nil)
	resp, err = f.service.SetLineTaxes(ctx, f.tenantID, order.ID, lineID, SetLineTaxesRequest{TaxIDs: []uuid.UUID{ieps.ID}})
	require.NoError(t, err)
	assert.True(t, resp.Lines[0].TaxesOverridden)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(33)))

	resp, err = f.service.ResetLineTaxes(ctx, f.tenantID, order.ID, lineID)
	require.NoError(t, err)
	assert.False(t, resp.Lines[0].TaxesOverridden)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(46)))

	resp, err = f.service.Recompute(ctx, f.tenantID, order.ID)
	require.NoError(t, err)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(46)))

	resp, err = f.service.RemoveLine(ctx, f.tenantID, order.ID, lineID)
	require.NoError(t, err)
	assert.Empty(t, resp.Lines)
	assert.True(t, resp.TotalAmount.IsZero())
	assert.Equal(t, "VENTA/2024/05/0001", resp.OrderNumber, "number is kept on update")
}

func TestOrderService_SetLineTaxes_UnknownTax(t *testing.T) {
	f := newOrderServiceFixture()
	product := f.product(t, "10")
	order := f.existingOrder(t, "VENTA/2024/05/0001")
	line, err := order.AddLine(pos.ProductRef{ID: product.ID, Name: product.Name, ListPrice: product.ListPrice}, pos.DefaultQuantity)
	require.NoError(t, err)

	missing := uuid.New()
	f.orders.On("FindByIDForTenant", mock.Anything, f.tenantID, order.ID).Return(order, nil)
	f.taxes.On("FindByIDs", mock.Anything, f.tenantID, []uuid.UUID{missing}).Return([]catalog.Tax{}, nil)

	_, err = f.service.SetLineTaxes(context.Background(), f.tenantID, order.ID, line.ID, SetLineTaxesRequest{TaxIDs: []uuid.UUID{missing}})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_TAX", de.Code)
	f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestOrderService_Update_ConcurrencyConflict(t *testing.T) {
	f := newOrderServiceFixture()
	order := f.existingOrder(t, "VENTA/2024/05/0001")
	f.orders.On("FindByIDForTenant", mock.Anything, f.tenantID, order.ID).Return(order, nil)
	f.orders.On("SaveWithLock", mock.Anything, order).Return(shared.ErrConcurrencyConflict)

	notes := "mesa 3"
	_, err := f.service.Update(context.Background(), f.tenantID, order.ID, UpdateOrderRequest{Notes: &notes})
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestOrderService_Delete(t *testing.T) {
	tests := []struct {
		name        string
		otherOrders int64
		wantReset   bool
	}{
		{"only order resets the counter", 0, true},
		{"other orders keep the counter", 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderServiceFixture()
			order := f.existingOrder(t, "VENTA/2024/05/0001")
			ids := []uuid.UUID{order.ID}

			f.orders.On("FindByIDsForTenant", mock.Anything, f.tenantID, ids).Return([]pos.Order{*order}, nil)
			f.payments.On("CountByOrders", mock.Anything, f.tenantID, ids).Return(int64(0), nil)
			f.orders.On("CountWithOtherOrderNumber", mock.Anything, f.tenantID, order.ID, order.OrderNumber).Return(tt.otherOrders, nil)
			f.orders.On("DeleteForTenant", mock.Anything, f.tenantID, order.ID).Return(nil)
			if tt.wantReset {
				f.counter.On("Reset", mock.Anything, f.tenantID, sequence.CodeOrder).Return(nil).Once()
			}

			publisher := new(MockEventPublisher)
			var published []shared.DomainEvent
			publisher.On("Publish", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
				published = append(published, args.Get(1).([]shared.DomainEvent)...)
			}).Return(nil)
			f.service.SetEventPublisher(publisher)

			require.NoError(t, f.service.Delete(context.Background(), f.tenantID, order.ID))

			f.orders.AssertExpectations(t)
			f.counter.AssertExpectations(t)
			if !tt.wantReset {
				f.counter.AssertNotCalled(t, "Reset", mock.Anything, mock.Anything, mock.Anything)
			}

			var types []string
			for _, e := range published {
				types = append(types, e.EventType())
			}
			assert.Contains(t, types, pos.EventTypeOrderDeleted)
			if tt.wantReset {
				assert.Contains(t, types, pos.EventTypeOrderSequenceReset)
			} else {
				assert.NotContains(t, types, pos.EventTypeOrderSequenceReset)
			}
		})
	}
}

func TestOrderService_Delete_WithPayments(t *testing.T) {
	f := newOrderServiceFixture()
	order := f.existingOrder(t, "VENTA/2024/05/0001")
	ids := []uuid.UUID{order.ID}

	f.orders.On("FindByIDsForTenant", mock.Anything, f.tenantID, ids).Return([]pos.Order{*order}, nil)
	f.payments.On("CountByOrders", mock.Anything, f.tenantID, ids).Return(int64(1), nil)

	err := f.service.Delete(context.Background(), f.tenantID, order.ID)
	assert.ErrorIs(t, err, pos.ErrOrderHasPayments)
	f.orders.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	f.counter.AssertNotCalled(t, "Reset", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_Delete_ResetFailureAborts(t *testing.T) {
	f := newOrderServiceFixture()
	order := f.existingOrder(t, "VENTA/2024/05/0001")
	ids := []uuid.UUID{order.ID}

	f.orders.On("FindByIDsForTenant", mock.Anything, f.tenantID, ids).Return([]pos.Order{*order}, nil)
	f.payments.On("CountByOrders", mock.Anything, f.tenantID, ids).Return(int64(0), nil)
	f.orders.On("CountWithOtherOrderNumber", mock.Anything, f.tenantID, order.ID, order.OrderNumber).Return(int64(0), nil)
	f.counter.On("Reset", mock.Anything, f.tenantID, sequence.CodeOrder).Return(errors.New("lock timeout"))

	err := f.service.Delete(context.Background(), f.tenantID, order.ID)
	assert.EqualError(t, err, "lock timeout")
	f.orders.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_BulkDelete_DistinctOrdersDoNotReset(t *testing.T) {
	f := newOrderServiceFixture()
	first := f.existingOrder(t, "VENTA/2024/05/0001")
	second := f.existingOrder(t, "VENTA/2024/05/0002")
	ids := []uuid.UUID{first.ID, second.ID}

	f.orders.On("FindByIDsForTenant", mock.Anything, f.tenantID, ids).Return([]pos.Order{*first, *second}, nil)
	f.payments.On("CountByOrders", mock.Anything, f.tenantID, ids).Return(int64(0), nil)
	// each sees the other, since nothing is deleted until every record is checked
	f.orders.On("CountWithOtherOrderNumber", mock.Anything, f.tenantID, first.ID, first.OrderNumber).Return(int64(1), nil)
	f.orders.On("CountWithOtherOrderNumber", mock.Anything, f.tenantID, second.ID, second.OrderNumber).Return(int64(1), nil)
	f.orders.On("DeleteForTenant", mock.Anything, f.tenantID, mock.Anything).Return(nil).Twice()

	resp, err := f.service.BulkDelete(context.Background(), f.tenantID, BulkDeleteRequest{IDs: []uuid.UUID{first.ID, second.ID, first.ID}})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Deleted)
	assert.False(t, resp.SequenceReset)
	f.counter.AssertNotCalled(t, "Reset", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_PaymentFormAction(t *testing.T) {
	f := newOrderServiceFixture()
	order := f.existingOrder(t, "VENTA/2024/05/0001")
	f.orders.On("FindByIDForTenant", mock.Anything, f.tenantID, order.ID).Return(order, nil)

	action, err := f.service.PaymentFormAction(context.Background(), f.tenantID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Registrar Pago", action.Name)
	assert.Equal(t, "new", action.Target)
	assert.Equal(t, order.ID, action.Context["default_venta_id"])

	missing := uuid.New()
	f.orders.On("FindByIDForTenant", mock.Anything, f.tenantID, missing).Return(nil, pos.ErrOrderNotFound)
	_, err = f.service.PaymentFormAction(context.Background(), f.tenantID, missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrderService_List(t *testing.T) {
	f := newOrderServiceFixture()
	order := f.existingOrder(t, "VENTA/2024/05/0001")
	customerID := order.CustomerID

	f.orders.On("FindAllForTenant", mock.Anything, f.tenantID, mock.MatchedBy(func(fl shared.Filter) bool {
		return fl.Page == 1 && fl.PageSize == 20 && fl.Search == "VENTA" && fl.Filters["customer_id"] == customerID
	})).Return([]pos.Order{*order}, nil)
	f.orders.On("CountForTenant", mock.Anything, f.tenantID, mock.Anything).Return(int64(1), nil)

	items, total, err := f.service.List(context.Background(), f.tenantID, OrderListFilter{Search: "VENTA", CustomerID: customerID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "VENTA/2024/05/0001", items[0].OrderNumber)
}

func TestOrderService_ListRejectsMalformedCustomerID(t *testing.T) {
	f := newOrderServiceFixture()

	_, _, err := f.service.List(context.Background(), f.tenantID, OrderListFilter{CustomerID: "42"})
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	f.orders.AssertNotCalled(t, "FindAllForTenant", mock.Anything, mock.Anything, mock.Anything)
}

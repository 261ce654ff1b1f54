package pos

import (
	"context"
	"errors"
	"time"

	"github.com/erp/puntoventa/internal/application/unitofwork"
	"github.com/erp/puntoventa/internal/domain/catalog"
	"github.com/erp/puntoventa/internal/domain/partner"
	"github.com/erp/puntoventa/internal/domain/pos"
	"github.com/erp/puntoventa/internal/domain/sequence"
	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/erp/puntoventa/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Metrics records order business metrics
type Metrics interface {
	RecordOrderCreated(ctx context.Context, tenantID uuid.UUID, total decimal.Decimal, lines int)
	RecordSequenceReset(ctx context.Context, tenantID uuid.UUID, code string)
}

// OrderService handles point-of-sale order operations
type OrderService struct {
	scope          unitofwork.Scope
	orderRepo      pos.OrderRepository
	productRepo    catalog.ProductRepository
	taxRepo        catalog.TaxRepository
	customerRepo   partner.CustomerRepository
	location       *time.Location
	eventPublisher shared.EventPublisher
	metrics        Metrics
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService. Order numbers take their
// year and month in location; nil means UTC.
func NewOrderService(
	scope unitofwork.Scope,
	orderRepo pos.OrderRepository,
	productRepo catalog.ProductRepository,
	taxRepo catalog.TaxRepository,
	customerRepo partner.CustomerRepository,
	location *time.Location,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &OrderService{
		scope:        scope,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		taxRepo:      taxRepo,
		customerRepo: customerRepo,
		location:     location,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *OrderService) SetMetrics(metrics Metrics) {
	s.metrics = metrics
}

// Create creates an order, numbers it and stores it in one unit of work
func (s *OrderService) Create(ctx context.Context, tenantID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pos_order", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrCustomerID, req.CustomerID.String(),
		telemetry.SpanAttrLineCount, len(req.Lines),
	)

	resp, err := s.create(ctx, tenantID, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, resp.ID.String(),
		telemetry.SpanAttrOrderNumber, resp.OrderNumber,
		telemetry.SpanAttrFolioNumber, resp.FolioNumber,
	)
	return resp, nil
}

func (s *OrderService) create(ctx context.Context, tenantID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	customer, err := s.findCustomer(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}

	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}
	order, err := pos.NewOrder(tenantID, customer.ID, customer.Name, date)
	if err != nil {
		return nil, err
	}
	if req.Notes != "" {
		order.SetNotes(req.Notes)
	}

	for _, input := range req.Lines {
		if err := s.addLine(ctx, order, input); err != nil {
			return nil, err
		}
	}

	err = s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		if err := pos.NewNumberAssigner(repos.Counter(), s.location).Assign(ctx, order); err != nil {
			return err
		}
		return repos.Orders().Save(ctx, order)
	})
	if err != nil {
		s.logger.Error("failed to create order",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("folio", order.FolioNumber),
		zap.String("total_amount", order.TotalAmount.String()),
	)
	if s.metrics != nil {
		s.metrics.RecordOrderCreated(ctx, tenantID, order.TotalAmount, order.LineCount())
	}
	unitofwork.PublishEvents(ctx, s.eventPublisher, s.logger, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// List retrieves orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, tenantID uuid.UUID, filter OrderListFilter) ([]OrderListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.CustomerID != "" {
		customerID, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			return nil, 0, shared.NewDomainError("VALIDATION_ERROR", "customer_id must be a valid UUID")
		}
		domainFilter.Filters["customer_id"] = customerID
	}
	if filter.DateFrom != nil {
		domainFilter.Filters["date_from"] = *filter.DateFrom
	}
	if filter.DateTo != nil {
		domainFilter.Filters["date_to"] = *filter.DateTo
	}

	orders, err := s.orderRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToOrderListItemResponses(orders), total, nil
}

// Update changes the order header. Numbers are never reassigned.
func (s *OrderService) Update(ctx context.Context, tenantID, orderID uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, func(order *pos.Order) error {
		if req.CustomerID != nil && *req.CustomerID != order.CustomerID {
			customer, err := s.findCustomer(ctx, tenantID, *req.CustomerID)
			if err != nil {
				return err
			}
			if err := order.SetCustomer(customer.ID, customer.Name); err != nil {
				return err
			}
		}
		if req.Date != nil {
			if err := order.SetDate(*req.Date); err != nil {
				return err
			}
		}
		if req.Notes != nil {
			order.SetNotes(*req.Notes)
		}
		return nil
	})
}

// AddLine adds a product line to an order
func (s *OrderService) AddLine(ctx context.Context, tenantID, orderID uuid.UUID, req AddLineRequest) (*OrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, func(order *pos.Order) error {
		return s.addLine(ctx, order, req)
	})
}

// UpdateLine changes the quantity of a line
func (s *OrderService) UpdateLine(ctx context.Context, tenantID, orderID, lineID uuid.UUID, req UpdateLineRequest) (*OrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, func(order *pos.Order) error {
		return order.UpdateLineQuantity(lineID, req.Quantity)
	})
}

// SetLineTaxes overrides the taxes of a line
func (s *OrderService) SetLineTaxes(ctx context.Context, tenantID, orderID, lineID uuid.UUID, req SetLineTaxesRequest) (*OrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, func(order *pos.Order) error {
		if order.GetLine(lineID) == nil {
			return shared.NewDomainError("NOT_FOUND", "Order line not found")
		}
		taxes, err := s.loadTaxes(ctx, tenantID, req.TaxIDs)
		if err != nil {
			return err
		}
		return order.SetLineTaxes(lineID, taxes)
	})
}

// ResetLineTaxes restores the product's default taxes on a line
func (s *OrderService) ResetLineTaxes(ctx context.Context, tenantID, orderID, lineID uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, func(order *pos.Order) error {
		line := order.GetLine(lineID)
		if line == nil {
			return shared.NewDomainError("NOT_FOUND", "Order line not found")
		}
		ref, err := s.productRef(ctx, tenantID, line.ProductID)
		if err != nil {
			return err
		}
		return order.ResetLineTaxes(lineID, ref.Taxes)
	})
}

// RemoveLine removes a line from an order
func (s *OrderService) RemoveLine(ctx context.Context, tenantID, orderID, lineID uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, func(order *pos.Order) error {
		return order.RemoveLine(lineID)
	})
}

// Recompute forces a full recomputation of every derived amount
func (s *OrderService) Recompute(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, func(order *pos.Order) error {
		order.MarkAllDirty()
		order.Recompute()
		return nil
	})
}

// PaymentFormAction returns the action that opens the payment form for an order
func (s *OrderService) PaymentFormAction(ctx context.Context, tenantID, orderID uuid.UUID) (*pos.WindowAction, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	action := order.PaymentFormAction()
	return &action, nil
}

// Delete deletes an order and its lines. When no other order carries a
// different number, the order counter restarts at 1 in the same transaction.
func (s *OrderService) Delete(ctx context.Context, tenantID, orderID uuid.UUID) error {
	_, err := s.deleteOrders(ctx, tenantID, []uuid.UUID{orderID})
	return err
}

// BulkDelete deletes several orders. Every order is checked for the counter
// reset before any is deleted.
func (s *OrderService) BulkDelete(ctx context.Context, tenantID uuid.UUID, req BulkDeleteRequest) (*BulkDeleteResponse, error) {
	ids := uniqueIDs(req.IDs)
	if len(ids) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "No orders to delete")
	}
	reset, err := s.deleteOrders(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	return &BulkDeleteResponse{Deleted: len(ids), SequenceReset: reset}, nil
}

func (s *OrderService) deleteOrders(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (bool, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pos_order", "delete")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrCount, len(ids),
	)

	var (
		orders []pos.Order
		reset  bool
	)

	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		orders, err = repos.Orders().FindByIDsForTenant(ctx, tenantID, ids)
		if err != nil {
			return err
		}

		paid, err := repos.Payments().CountByOrders(ctx, tenantID, ids)
		if err != nil {
			return err
		}
		if paid > 0 {
			return pos.ErrOrderHasPayments
		}

		reset = false
		for i := range orders {
			others, err := repos.Orders().CountWithOtherOrderNumber(ctx, tenantID, orders[i].ID, orders[i].OrderNumber)
			if err != nil {
				return err
			}
			if pos.ShouldResetOrderSequence(others) {
				reset = true
				orders[i].AddDomainEvent(pos.NewOrderSequenceResetEvent(&orders[i]))
			}
		}

		if reset {
			if err := repos.Counter().Reset(ctx, tenantID, sequence.CodeOrder); err != nil {
				return err
			}
		}

		for i := range orders {
			orders[i].MarkDeleted()
			if err := repos.Orders().DeleteForTenant(ctx, tenantID, orders[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return false, err
	}
	if reset {
		telemetry.AddEvent(span, "sequence_reset", telemetry.SpanAttrSequenceCode, sequence.CodeOrder)
	}

	for i := range orders {
		s.logger.Info("order deleted",
			zap.String("order_id", orders[i].ID.String()),
			zap.String("order_number", orders[i].OrderNumber),
		)
		unitofwork.PublishEvents(ctx, s.eventPublisher, s.logger, &orders[i])
	}
	if reset {
		s.logger.Info("order sequence reset",
			zap.String("tenant_id", tenantID.String()),
			zap.String("code", sequence.CodeOrder),
		)
		if s.metrics != nil {
			s.metrics.RecordSequenceReset(ctx, tenantID, sequence.CodeOrder)
		}
	}
	return reset, nil
}

// mutate loads an order, applies fn, and saves it with a version check
func (s *OrderService) mutate(ctx context.Context, tenantID, orderID uuid.UUID, fn func(order *pos.Order) error) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := fn(order); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	unitofwork.PublishEvents(ctx, s.eventPublisher, s.logger, order)

	response := ToOrderResponse(order)
	return &response, nil
}

func (s *OrderService) addLine(ctx context.Context, order *pos.Order, input OrderLineInput) error {
	ref, err := s.productRef(ctx, order.TenantID, input.ProductID)
	if err != nil {
		return err
	}

	quantity := pos.DefaultQuantity
	if input.Quantity != nil {
		quantity = *input.Quantity
	}
	line, err := order.AddLine(*ref, quantity)
	if err != nil {
		return err
	}

	if input.TaxIDs != nil {
		taxes, err := s.loadTaxes(ctx, order.TenantID, *input.TaxIDs)
		if err != nil {
			return err
		}
		return order.SetLineTaxes(line.ID, taxes)
	}
	return nil
}

// productRef loads a product with its default taxes
func (s *OrderService) productRef(ctx context.Context, tenantID, productID uuid.UUID) (*pos.ProductRef, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product not found")
		}
		return nil, err
	}
	return ProductRefFor(ctx, s.taxRepo, product)
}

func (s *OrderService) loadTaxes(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]pos.LineTax, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []pos.LineTax{}, nil
	}
	taxes, err := s.taxRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	if len(taxes) != len(ids) {
		return nil, shared.NewDomainError("INVALID_TAX", "One or more taxes were not found")
	}
	return LineTaxesFor(ids, taxes), nil
}

func (s *OrderService) findCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*partner.Customer, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer not found")
		}
		return nil, err
	}
	return customer, nil
}

// ProductRefFor builds the line view of a product, resolving its taxes
func ProductRefFor(ctx context.Context, taxRepo catalog.TaxRepository, product *catalog.Product) (*pos.ProductRef, error) {
	ref := &pos.ProductRef{
		ID:        product.ID,
		Code:      product.Code,
		Name:      product.Name,
		ListPrice: product.ListPrice,
		Taxes:     []pos.LineTax{},
	}
	if len(product.TaxIDs) == 0 {
		return ref, nil
	}
	taxes, err := taxRepo.FindByIDs(ctx, product.TenantID, product.TaxIDs)
	if err != nil {
		return nil, err
	}
	ref.Taxes = LineTaxesFor(product.TaxIDs, taxes)
	return ref, nil
}

// LineTaxesFor snapshots taxes in the order of ids, skipping missing ones
func LineTaxesFor(ids []uuid.UUID, taxes []catalog.Tax) []pos.LineTax {
	byID := make(map[uuid.UUID]catalog.Tax, len(taxes))
	for _, t := range taxes {
		byID[t.ID] = t
	}
	out := make([]pos.LineTax, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, pos.LineTax{TaxID: t.ID, Name: t.Name, Amount: t.Amount})
	}
	return out
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

package finance

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/puntoventa/internal/application/unitofwork"
	"github.com/erp/puntoventa/internal/domain/finance"
	"github.com/erp/puntoventa/internal/domain/pos"
	"github.com/erp/puntoventa/internal/domain/sequence"
	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/erp/puntoventa/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Metrics records payment business metrics
type Metrics interface {
	RecordPaymentPosted(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal, method string)
}

// PaymentService handles payments against point-of-sale orders
type PaymentService struct {
	scope          unitofwork.Scope
	paymentRepo    finance.PaymentRepository
	orderRepo      pos.OrderRepository
	hooks          finance.PostHooks
	eventPublisher shared.EventPublisher
	metrics        Metrics
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService. Posting runs the
// OrderPaidHook unless other hooks are given.
func NewPaymentService(
	scope unitofwork.Scope,
	paymentRepo finance.PaymentRepository,
	orderRepo pos.OrderRepository,
	logger *zap.Logger,
	hooks ...finance.PostHook,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(hooks) == 0 {
		hooks = []finance.PostHook{NewOrderPaidHook(logger)}
	}
	return &PaymentService{
		scope:       scope,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		hooks:       hooks,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *PaymentService) SetMetrics(metrics Metrics) {
	s.metrics = metrics
}

// Create registers a draft payment for an order
func (s *PaymentService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePaymentRequest) (*PaymentResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, req.OrderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_ORDER", "Order not found")
		}
		return nil, err
	}

	payment, err := finance.NewPayment(tenantID, finance.OrderRef{
		ID:           order.ID,
		Number:       order.OrderNumber,
		CustomerID:   order.CustomerID,
		CustomerName: order.CustomerName,
	}, req.Amount, finance.PaymentMethod(req.Method), req.PaymentDate)
	if err != nil {
		return nil, err
	}
	payment.Reference = strings.TrimSpace(req.Reference)
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Info("payment created",
		zap.String("payment_id", payment.ID.String()),
		zap.String("order_number", payment.OrderNumber),
		zap.String("amount", payment.Amount.String()),
	)

	response := ToPaymentResponse(payment)
	return &response, nil
}

// GetByID retrieves a payment by ID
func (s *PaymentService) GetByID(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(payment)
	return &response, nil
}

// List retrieves payments with filtering and pagination
func (s *PaymentService) List(ctx context.Context, tenantID uuid.UUID, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
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
	if filter.OrderID != "" {
		orderID, err := uuid.Parse(filter.OrderID)
		if err != nil {
			return nil, 0, shared.NewDomainError("VALIDATION_ERROR", "order_id must be a valid UUID")
		}
		domainFilter.Filters["order_id"] = orderID
	}
	if filter.State != "" {
		domainFilter.Filters["state"] = filter.State
	}
	if filter.Method != "" {
		domainFilter.Filters["method"] = filter.Method
	}

	payments, err := s.paymentRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.paymentRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToPaymentResponses(payments), total, nil
}

// ListByOrder returns every payment of an order
func (s *PaymentService) ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindByOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	return ToPaymentResponses(payments), nil
}

// Update changes a draft payment
func (s *PaymentService) Update(ctx context.Context, tenantID, paymentID uuid.UUID, req UpdatePaymentRequest) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	if err := payment.Update(req.Amount, req.PaymentDate, finance.PaymentMethod(req.Method), req.Reference); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.SaveWithLock(ctx, payment); err != nil {
		return nil, err
	}
	response := ToPaymentResponse(payment)
	return &response, nil
}

// Post confirms a draft payment. The payment takes its name from the
// payment sequence, and the post hooks run after the base posting, all in
// one unit of work.
func (s *PaymentService) Post(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "post")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPaymentID, paymentID.String(),
	)

	var payment *finance.Payment

	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		payment, err = repos.Payments().FindByIDForTenant(ctx, tenantID, paymentID)
		if err != nil {
			return err
		}
		// no number is drawn for a payment that cannot post
		if !payment.IsDraft() {
			return shared.NewDomainError("INVALID_STATE", "Cannot post payment in "+payment.State.String()+" state")
		}
		if err := payment.Validate(); err != nil {
			return err
		}

		name, err := repos.Counter().Next(ctx, tenantID, sequence.CodePayment)
		if err != nil {
			return err
		}
		if name == "" {
			return sequence.ErrSequenceUnavailable
		}
		if err := payment.Post(name); err != nil {
			return err
		}
		if err := repos.Payments().SaveWithLock(ctx, payment); err != nil {
			return err
		}
		return s.hooks.AfterPost(ctx, payment)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("failed to post payment",
			zap.String("payment_id", paymentID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderNumber, payment.OrderNumber,
		telemetry.SpanAttrAmount, payment.Amount.String(),
		telemetry.SpanAttrPaymentMethod, payment.Method.String(),
	)
	s.logger.Info("payment posted",
		zap.String("payment_id", payment.ID.String()),
		zap.String("name", payment.Name),
		zap.String("order_number", payment.OrderNumber),
		zap.String("amount", payment.Amount.String()),
	)
	if s.metrics != nil {
		s.metrics.RecordPaymentPosted(ctx, tenantID, payment.Amount, payment.Method.String())
	}
	unitofwork.PublishEvents(ctx, s.eventPublisher, s.logger, payment)

	response := ToPaymentResponse(payment)
	return &response, nil
}

// Cancel cancels a draft or posted payment
func (s *PaymentService) Cancel(ctx context.Context, tenantID, paymentID uuid.UUID, req CancelPaymentRequest) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	if err := payment.Cancel(strings.TrimSpace(req.Reason)); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.SaveWithLock(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Info("payment cancelled",
		zap.String("payment_id", payment.ID.String()),
		zap.String("reason", payment.CancelReason),
	)
	unitofwork.PublishEvents(ctx, s.eventPublisher, s.logger, payment)

	response := ToPaymentResponse(payment)
	return &response, nil
}

// Delete deletes a draft payment
func (s *PaymentService) Delete(ctx context.Context, tenantID, paymentID uuid.UUID) error {
	payment, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return err
	}
	if !payment.CanDelete() {
		return shared.NewDomainError("INVALID_STATE", "Only draft payments can be deleted")
	}
	return s.paymentRepo.DeleteForTenant(ctx, tenantID, paymentID)
}

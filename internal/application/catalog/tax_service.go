package catalog

import (
	"context"

	"github.com/erp/puntoventa/internal/application/unitofwork"
	"github.com/erp/puntoventa/internal/domain/catalog"
	"github.com/erp/puntoventa/internal/domain/pos"
	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaxService handles tax records
type TaxService struct {
	taxRepo        catalog.TaxRepository
	orderRepo      pos.OrderRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewTaxService creates a new TaxService
func NewTaxService(taxRepo catalog.TaxRepository, orderRepo pos.OrderRepository, logger *zap.Logger) *TaxService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaxService{taxRepo: taxRepo, orderRepo: orderRepo, logger: logger}
}

// SetEventPublisher sets the event publisher
func (s *TaxService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a tax
func (s *TaxService) Create(ctx context.Context, tenantID uuid.UUID, req CreateTaxRequest) (*TaxResponse, error) {
	tax, err := catalog.NewTax(tenantID, req.Name, req.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.taxRepo.Save(ctx, tax); err != nil {
		return nil, err
	}
	response := ToTaxResponse(tax)
	return &response, nil
}

// GetByID retrieves a tax by ID
func (s *TaxService) GetByID(ctx context.Context, tenantID, taxID uuid.UUID) (*TaxResponse, error) {
	tax, err := s.taxRepo.FindByIDForTenant(ctx, tenantID, taxID)
	if err != nil {
		return nil, err
	}
	response := ToTaxResponse(tax)
	return &response, nil
}

// List retrieves taxes with filtering and pagination
func (s *TaxService) List(ctx context.Context, tenantID uuid.UUID, filter TaxListFilter) ([]TaxResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "name",
		OrderDir: "asc",
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	taxes, err := s.taxRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.taxRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToTaxResponses(taxes), total, nil
}

// Update changes a tax. An amount change is published so order lines
// carrying the tax are recomputed.
func (s *TaxService) Update(ctx context.Context, tenantID, taxID uuid.UUID, req UpdateTaxRequest) (*TaxResponse, error) {
	tax, err := s.taxRepo.FindByIDForTenant(ctx, tenantID, taxID)
	if err != nil {
		return nil, err
	}

	name, amount := tax.Name, tax.Amount
	if req.Name != nil {
		name = *req.Name
	}
	if req.Amount != nil {
		amount = *req.Amount
	}
	if err := tax.Update(name, amount); err != nil {
		return nil, err
	}
	if req.Active != nil {
		tax.SetActive(*req.Active)
	}

	if err := s.taxRepo.Save(ctx, tax); err != nil {
		return nil, err
	}

	unitofwork.PublishEvents(ctx, s.eventPublisher, s.logger, tax)

	response := ToTaxResponse(tax)
	return &response, nil
}

// Delete deletes a tax no order line carries
func (s *TaxService) Delete(ctx context.Context, tenantID, taxID uuid.UUID) error {
	if _, err := s.taxRepo.FindByIDForTenant(ctx, tenantID, taxID); err != nil {
		return err
	}
	orders, err := s.orderRepo.FindByTax(ctx, tenantID, taxID)
	if err != nil {
		return err
	}
	if len(orders) > 0 {
		return shared.NewDomainError("INVALID_STATE", "Tax is applied to order lines; deactivate it instead")
	}
	return s.taxRepo.DeleteForTenant(ctx, tenantID, taxID)
}

package catalog

import (
	"context"
	"strings"

	"github.com/erp/puntoventa/internal/application/unitofwork"
	"github.com/erp/puntoventa/internal/domain/catalog"
	"github.com/erp/puntoventa/internal/domain/pos"
	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	taxRepo        catalog.TaxRepository
	orderRepo      pos.OrderRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	taxRepo catalog.TaxRepository,
	orderRepo pos.OrderRepository,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		taxRepo:     taxRepo,
		orderRepo:   orderRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher. Pricing changes reach open
// orders through it.
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	// Check if code already exists
	exists, err := s.productRepo.ExistsByCode(ctx, tenantID, strings.ToUpper(strings.TrimSpace(req.Code)))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this code already exists")
	}

	if err := s.checkTaxes(ctx, tenantID, req.TaxIDs); err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(tenantID, req.Code, req.Name, req.ListPrice)
	if err != nil {
		return nil, err
	}
	product.SetTaxes(req.TaxIDs)

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	unitofwork.PublishEvents(ctx, s.eventPublisher, s.logger, product)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// GetByCode retrieves a product by code
func (s *ProductService) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByCode(ctx, tenantID, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves a list of products with filtering and pagination
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	products, err := s.productRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// Update updates a product. A list price or tax change is published so
// order lines mirroring the product follow it.
func (s *ProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := product.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.ListPrice != nil {
		if err := product.SetListPrice(*req.ListPrice); err != nil {
			return nil, err
		}
	}
	if req.TaxIDs != nil {
		if err := s.checkTaxes(ctx, tenantID, *req.TaxIDs); err != nil {
			return nil, err
		}
		product.SetTaxes(*req.TaxIDs)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	unitofwork.PublishEvents(ctx, s.eventPublisher, s.logger, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Activate activates a product
func (s *ProductService) Activate(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	return s.setActive(ctx, tenantID, productID, true)
}

// Deactivate deactivates a product
func (s *ProductService) Deactivate(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	return s.setActive(ctx, tenantID, productID, false)
}

// Delete deletes a product that no order line references
func (s *ProductService) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	if _, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID); err != nil {
		return err
	}

	orders, err := s.orderRepo.FindByProduct(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	if len(orders) > 0 {
		return shared.NewDomainError("INVALID_STATE", "Product is used by order lines; deactivate it instead")
	}

	return s.productRepo.DeleteForTenant(ctx, tenantID, productID)
}

func (s *ProductService) setActive(ctx context.Context, tenantID, productID uuid.UUID, active bool) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if active {
		product.Activate()
	} else {
		product.Deactivate()
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

func (s *ProductService) checkTaxes(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) error {
	unique := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		unique[id] = true
	}
	if len(unique) == 0 {
		return nil
	}
	taxes, err := s.taxRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return err
	}
	if len(taxes) != len(unique) {
		return shared.NewDomainError("INVALID_TAX", "One or more taxes were not found")
	}
	return nil
}

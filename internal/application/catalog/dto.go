package catalog

import (
	"time"

	"github.com/erp/puntoventa/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Code      string          `json:"code" binding:"required,min=1,max=50"`
	Name      string          `json:"name" binding:"required,min=1,max=200"`
	ListPrice decimal.Decimal `json:"list_price"`
	TaxIDs    []uuid.UUID     `json:"tax_ids"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name      *string          `json:"name" binding:"omitempty,min=1,max=200"`
	ListPrice *decimal.Decimal `json:"list_price"`
	TaxIDs    *[]uuid.UUID     `json:"tax_ids"`
}

// ProductListFilter represents filter options for product list
type ProductListFilter struct {
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  uuid.UUID       `json:"tenant_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	ListPrice decimal.Decimal `json:"list_price"`
	TaxIDs    []uuid.UUID     `json:"tax_ids"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Version   int             `json:"version"`
}

// CreateTaxRequest represents a request to create a tax
type CreateTaxRequest struct {
	Name   string          `json:"name" binding:"required,min=1,max=100"`
	Amount decimal.Decimal `json:"amount"`
}

// UpdateTaxRequest represents a request to update a tax
type UpdateTaxRequest struct {
	Name   *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Amount *decimal.Decimal `json:"amount"`
	Active *bool            `json:"active"`
}

// TaxListFilter represents filter options for tax list
type TaxListFilter struct {
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

// TaxResponse represents a tax in API responses
type TaxResponse struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  uuid.UUID       `json:"tenant_id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Version   int             `json:"version"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	taxIDs := make([]uuid.UUID, len(p.TaxIDs))
	copy(taxIDs, p.TaxIDs)
	return ProductResponse{
		ID:        p.ID,
		TenantID:  p.TenantID,
		Code:      p.Code,
		Name:      p.Name,
		ListPrice: p.ListPrice,
		TaxIDs:    taxIDs,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Version:   p.Version,
	}
}

// ToProductResponses converts a slice of domain Products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// ToTaxResponse converts a domain Tax to TaxResponse
func ToTaxResponse(t *catalog.Tax) TaxResponse {
	return TaxResponse{
		ID:        t.ID,
		TenantID:  t.TenantID,
		Name:      t.Name,
		Amount:    t.Amount,
		Active:    t.Active,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		Version:   t.Version,
	}
}

// ToTaxResponses converts a slice of domain Taxes
func ToTaxResponses(taxes []catalog.Tax) []TaxResponse {
	responses := make([]TaxResponse, len(taxes))
	for i := range taxes {
		responses[i] = ToTaxResponse(&taxes[i])
	}
	return responses
}

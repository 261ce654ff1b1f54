package pos

import (
	"time"

	"github.com/erp/puntoventa/internal/domain/pos"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineInput describes a line to add. A nil Quantity means 1; nil
// TaxIDs keeps the product's default taxes.
type OrderLineInput struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  *decimal.Decimal `json:"quantity"`
	TaxIDs    *[]uuid.UUID     `json:"tax_ids"`
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	CustomerID uuid.UUID        `json:"customer_id" binding:"required"`
	Date       *time.Time       `json:"date"`
	Notes      string           `json:"notes" binding:"max=2000"`
	Lines      []OrderLineInput `json:"lines" binding:"omitempty,dive"`
}

// UpdateOrderRequest changes the order header
type UpdateOrderRequest struct {
	CustomerID *uuid.UUID `json:"customer_id"`
	Date       *time.Time `json:"date"`
	Notes      *string    `json:"notes" binding:"omitempty,max=2000"`
}

// AddLineRequest adds one line to an order
type AddLineRequest = OrderLineInput

// UpdateLineRequest changes a line quantity
type UpdateLineRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// SetLineTaxesRequest overrides a line's taxes; an empty list removes them
type SetLineTaxesRequest struct {
	TaxIDs []uuid.UUID `json:"tax_ids"`
}

// BulkDeleteRequest deletes several orders at once
type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1,max=100"`
}

// BulkDeleteResponse reports the result of a bulk delete
type BulkDeleteResponse struct {
	Deleted       int  `json:"deleted"`
	SequenceReset bool `json:"sequence_reset"`
}

// OrderListFilter represents filter options for the order list
type OrderListFilter struct {
	Search     string     `form:"search"`
	CustomerID string     `form:"customer_id" binding:"omitempty,uuid"`
	DateFrom   *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo     *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LineTaxResponse is a tax applied to a line
type LineTaxResponse struct {
	TaxID  uuid.UUID       `json:"tax_id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// OrderLineResponse represents an order line in API responses
type OrderLineResponse struct {
	ID              uuid.UUID         `json:"id"`
	ProductID       uuid.UUID         `json:"product_id"`
	ProductCode     string            `json:"product_code"`
	ProductName     string            `json:"product_name"`
	Quantity        decimal.Decimal   `json:"quantity"`
	UnitPrice       decimal.Decimal   `json:"unit_price"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	PriceTotal      decimal.Decimal   `json:"price_total"`
	Taxes           []LineTaxResponse `json:"taxes"`
	TaxesOverridden bool              `json:"taxes_overridden"`
	Sequence        int               `json:"sequence"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	TenantID       uuid.UUID           `json:"tenant_id"`
	FolioNumber    string              `json:"folio_number"`
	OrderNumber    string              `json:"order_number"`
	Date           time.Time           `json:"date"`
	CustomerID     uuid.UUID           `json:"customer_id"`
	CustomerName   string              `json:"customer_name"`
	Lines          []OrderLineResponse `json:"lines"`
	SubtotalAmount decimal.Decimal     `json:"subtotal_amount"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	Notes          string              `json:"notes"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Version        int                 `json:"version"`
}

// OrderListItemResponse represents an order in list responses
type OrderListItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	FolioNumber  string          `json:"folio_number"`
	OrderNumber  string          `json:"order_number"`
	Date         time.Time       `json:"date"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	LineCount    int             `json:"line_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *pos.Order) OrderResponse {
	lines := make([]OrderLineResponse, len(o.Lines))
	for i := range o.Lines {
		lines[i] = toOrderLineResponse(&o.Lines[i])
	}
	return OrderResponse{
		ID:             o.ID,
		TenantID:       o.TenantID,
		FolioNumber:    o.FolioNumber,
		OrderNumber:    o.OrderNumber,
		Date:           o.Date,
		CustomerID:     o.CustomerID,
		CustomerName:   o.CustomerName,
		Lines:          lines,
		SubtotalAmount: o.SubtotalAmount,
		TotalAmount:    o.TotalAmount,
		Notes:          o.Notes,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		Version:        o.Version,
	}
}

func toOrderLineResponse(l *pos.Line) OrderLineResponse {
	taxes := make([]LineTaxResponse, len(l.Taxes))
	for i, t := range l.Taxes {
		taxes[i] = LineTaxResponse{TaxID: t.TaxID, Name: t.Name, Amount: t.Amount}
	}
	return OrderLineResponse{
		ID:              l.ID,
		ProductID:       l.ProductID,
		ProductCode:     l.ProductCode,
		ProductName:     l.ProductName,
		Quantity:        l.Quantity,
		UnitPrice:       l.UnitPrice,
		Subtotal:        l.Subtotal,
		PriceTotal:      l.PriceTotal,
		Taxes:           taxes,
		TaxesOverridden: l.TaxesOverridden,
		Sequence:        l.Sequence,
	}
}

// ToOrderListItemResponses converts domain orders to list items
func ToOrderListItemResponses(orders []pos.Order) []OrderListItemResponse {
	items := make([]OrderListItemResponse, len(orders))
	for i := range orders {
		o := &orders[i]
		items[i] = OrderListItemResponse{
			ID:           o.ID,
			FolioNumber:  o.FolioNumber,
			OrderNumber:  o.OrderNumber,
			Date:         o.Date,
			CustomerID:   o.CustomerID,
			CustomerName: o.CustomerName,
			LineCount:    o.LineCount(),
			TotalAmount:  o.TotalAmount,
			CreatedAt:    o.CreatedAt,
		}
	}
	return items
}

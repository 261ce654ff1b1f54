package models

import (
	"time"

	"github.com/erp/puntoventa/internal/domain/pos"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the point-of-sale Order aggregate
type OrderModel struct {
	TenantAggregateModel
	FolioNumber    string           `gorm:"type:varchar(50);not null;default:''"`
	OrderNumber    *string          `gorm:"type:varchar(50);index"`
	Date           time.Time        `gorm:"not null;index"`
	CustomerID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	CustomerName   string           `gorm:"type:varchar(200);not null"`
	SubtotalAmount decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount    decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Notes          string           `gorm:"type:text"`
	Lines          []OrderLineModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "pos_orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *pos.Order {
	order := &pos.Order{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		FolioNumber:         m.FolioNumber,
		Date:                m.Date,
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		SubtotalAmount:      m.SubtotalAmount,
		TotalAmount:         m.TotalAmount,
		Notes:               m.Notes,
		Lines:               make([]pos.Line, len(m.Lines)),
	}
	if m.OrderNumber != nil {
		order.OrderNumber = *m.OrderNumber
	}
	for i := range m.Lines {
		order.Lines[i] = m.Lines[i].ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *pos.Order) {
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	m.FolioNumber = o.FolioNumber
	m.OrderNumber = nil
	if o.OrderNumber != "" {
		number := o.OrderNumber
		m.OrderNumber = &number
	}
	m.Date = o.Date
	m.CustomerID = o.CustomerID
	m.CustomerName = o.CustomerName
	m.SubtotalAmount = o.SubtotalAmount
	m.TotalAmount = o.TotalAmount
	m.Notes = o.Notes
	m.Lines = make([]OrderLineModel, len(o.Lines))
	for i := range o.Lines {
		m.Lines[i].FromDomain(&o.Lines[i])
		m.Lines[i].OrderID = o.ID
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o *pos.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderLineModel is the persistence model for an order line
type OrderLineModel struct {
	BaseModel
	OrderID         uuid.UUID           `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	ProductCode     string              `gorm:"type:varchar(50);not null;default:''"`
	ProductName     string              `gorm:"type:varchar(200);not null"`
	Quantity        decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	UnitPrice       decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Subtotal        decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	PriceTotal      decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	TaxesOverridden bool                `gorm:"not null;default:false"`
	Sequence        int                 `gorm:"not null;default:10"`
	Taxes           []OrderLineTaxModel `gorm:"foreignKey:LineID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderLineModel) TableName() string {
	return "pos_order_lines"
}

// ToDomain converts the persistence model to a domain Line
func (m *OrderLineModel) ToDomain() pos.Line {
	line := pos.Line{
		ID:              m.ID,
		OrderID:         m.OrderID,
		ProductID:       m.ProductID,
		ProductCode:     m.ProductCode,
		ProductName:     m.ProductName,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		Subtotal:        m.Subtotal,
		PriceTotal:      m.PriceTotal,
		TaxesOverridden: m.TaxesOverridden,
		Sequence:        m.Sequence,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		Taxes:           make([]pos.LineTax, len(m.Taxes)),
	}
	for i, t := range m.Taxes {
		line.Taxes[i] = pos.LineTax{TaxID: t.TaxID, Name: t.Name, Amount: t.Amount}
	}
	return line
}

// FromDomain populates the persistence model from a domain Line
func (m *OrderLineModel) FromDomain(l *pos.Line) {
	m.ID = l.ID
	m.CreatedAt = l.CreatedAt
	m.UpdatedAt = l.UpdatedAt
	m.OrderID = l.OrderID
	m.ProductID = l.ProductID
	m.ProductCode = l.ProductCode
	m.ProductName = l.ProductName
	m.Quantity = l.Quantity
	m.UnitPrice = l.UnitPrice
	m.Subtotal = l.Subtotal
	m.PriceTotal = l.PriceTotal
	m.TaxesOverridden = l.TaxesOverridden
	m.Sequence = l.Sequence
	m.Taxes = make([]OrderLineTaxModel, len(l.Taxes))
	for i, t := range l.Taxes {
		m.Taxes[i] = OrderLineTaxModel{
			LineID:   l.ID,
			TaxID:    t.TaxID,
			Name:     t.Name,
			Amount:   t.Amount,
			Position: i,
		}
	}
}

// OrderLineTaxModel stores the tax snapshot a line was priced with
type OrderLineTaxModel struct {
	LineID   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TaxID    uuid.UUID       `gorm:"type:uuid;primaryKey;index"`
	Name     string          `gorm:"type:varchar(100);not null"`
	Amount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Position int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderLineTaxModel) TableName() string {
	return "pos_order_line_taxes"
}

package models

import (
	"github.com/erp/puntoventa/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity
type ProductModel struct {
	AggregateModel
	TenantID  uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_product_tenant_code,priority:1"`
	Code      string            `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_tenant_code,priority:2"`
	Name      string            `gorm:"type:varchar(200);not null"`
	ListPrice decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	Active    bool              `gorm:"not null;default:true;index"`
	Taxes     []ProductTaxModel `gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	taxIDs := make([]uuid.UUID, len(m.Taxes))
	for i, t := range m.Taxes {
		taxIDs[i] = t.TaxID
	}
	return &catalog.Product{
		TenantAggregateRoot: m.tenantRoot(m.TenantID),
		Code:                m.Code,
		Name:                m.Name,
		ListPrice:           m.ListPrice,
		TaxIDs:              taxIDs,
		Active:              m.Active,
	}
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.TenantID = p.TenantID
	m.Code = p.Code
	m.Name = p.Name
	m.ListPrice = p.ListPrice
	m.Active = p.Active
	m.Taxes = make([]ProductTaxModel, len(p.TaxIDs))
	for i, id := range p.TaxIDs {
		m.Taxes[i] = ProductTaxModel{ProductID: p.ID, TaxID: id, Position: i}
	}
}

// ProductModelFromDomain creates a new persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// ProductTaxModel links a product to one of its default taxes
type ProductTaxModel struct {
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TaxID     uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Position  int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductTaxModel) TableName() string {
	return "product_taxes"
}

// TaxModel is the persistence model for the Tax domain entity
type TaxModel struct {
	TenantAggregateModel
	Name   string          `gorm:"type:varchar(100);not null"`
	Amount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (TaxModel) TableName() string {
	return "taxes"
}

// ToDomain converts the persistence model to a domain Tax
func (m *TaxModel) ToDomain() *catalog.Tax {
	return &catalog.Tax{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Name:                m.Name,
		Amount:              m.Amount,
		Active:              m.Active,
	}
}

// FromDomain populates the persistence model from a domain Tax
func (m *TaxModel) FromDomain(t *catalog.Tax) {
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	m.Name = t.Name
	m.Amount = t.Amount
	m.Active = t.Active
}

// TaxModelFromDomain creates a new persistence model from a domain Tax
func TaxModelFromDomain(t *catalog.Tax) *TaxModel {
	m := &TaxModel{}
	m.FromDomain(t)
	return m
}

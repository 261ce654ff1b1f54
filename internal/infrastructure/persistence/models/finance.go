package models

import (
	"time"

	"github.com/erp/puntoventa/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for the Payment domain entity
type PaymentModel struct {
	TenantAggregateModel
	Name         string                `gorm:"type:varchar(50);index"`
	OrderID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	OrderNumber  string                `gorm:"type:varchar(50)"`
	CustomerID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	CustomerName string                `gorm:"type:varchar(200);not null"`
	Amount       decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaymentDate  *time.Time            `gorm:"type:date"`
	Method       finance.PaymentMethod `gorm:"type:varchar(20);not null;default:'CASH'"`
	Reference    string                `gorm:"type:varchar(100)"`
	State        finance.PaymentState  `gorm:"type:varchar(20);not null;default:'draft';index"`
	PostedAt     *time.Time
	CancelledAt  *time.Time
	CancelReason string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "pos_payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Name:                m.Name,
		OrderID:             m.OrderID,
		OrderNumber:         m.OrderNumber,
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		Amount:              m.Amount,
		PaymentDate:         m.PaymentDate,
		Method:              m.Method,
		Reference:           m.Reference,
		State:               m.State,
		PostedAt:            m.PostedAt,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
	}
}

// FromDomain populates the persistence model from a domain Payment
func (m *PaymentModel) FromDomain(p *finance.Payment) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Name = p.Name
	m.OrderID = p.OrderID
	m.OrderNumber = p.OrderNumber
	m.CustomerID = p.CustomerID
	m.CustomerName = p.CustomerName
	m.Amount = p.Amount
	m.PaymentDate = p.PaymentDate
	m.Method = p.Method
	m.Reference = p.Reference
	m.State = p.State
	m.PostedAt = p.PostedAt
	m.CancelledAt = p.CancelledAt
	m.CancelReason = p.CancelReason
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

package models

import (
	"github.com/erp/puntoventa/internal/domain/sequence"
	"github.com/google/uuid"
)

// SequenceModel is the persistence model for a tenant's sequence
type SequenceModel struct {
	AggregateModel
	TenantID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sequence_tenant_code,priority:1"`
	Code            string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_sequence_tenant_code,priority:2"`
	Name            string    `gorm:"type:varchar(100);not null"`
	Prefix          string    `gorm:"type:varchar(32);not null;default:''"`
	Padding         int       `gorm:"not null;default:0"`
	NumberNext      int64     `gorm:"not null;default:1"`
	NumberIncrement int64     `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (SequenceModel) TableName() string {
	return "sequences"
}

// ToDomain converts the persistence model to a domain Sequence
func (m *SequenceModel) ToDomain() *sequence.Sequence {
	return &sequence.Sequence{
		TenantAggregateRoot: m.tenantRoot(m.TenantID),
		Code:                m.Code,
		Name:                m.Name,
		Prefix:              m.Prefix,
		Padding:             m.Padding,
		NumberNext:          m.NumberNext,
		NumberIncrement:     m.NumberIncrement,
	}
}

// FromDomain populates the persistence model from a domain Sequence
func (m *SequenceModel) FromDomain(s *sequence.Sequence) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.TenantID = s.TenantID
	m.Code = s.Code
	m.Name = s.Name
	m.Prefix = s.Prefix
	m.Padding = s.Padding
	m.NumberNext = s.NumberNext
	m.NumberIncrement = s.NumberIncrement
}

// SequenceModelFromDomain creates a new persistence model from a domain Sequence
func SequenceModelFromDomain(s *sequence.Sequence) *SequenceModel {
	m := &SequenceModel{}
	m.FromDomain(s)
	return m
}

// AllModels lists every model, in creation order, for AutoMigrate
func AllModels() []any {
	return []any{
		&CustomerModel{},
		&TaxModel{},
		&ProductModel{},
		&ProductTaxModel{},
		&OrderModel{},
		&OrderLineModel{},
		&OrderLineTaxModel{},
		&PaymentModel{},
		&SequenceModel{},
	}
}

// Package models contains GORM persistence models that map to database tables.
// They are kept apart from domain entities so the domain layer stays free of
// ORM tags.
//
// Each model has ToDomain and FromDomain mappers; repositories only read and
// write models.
//
//   - base.go: shared columns (id, timestamps, version, tenant)
//   - pos.go: orders, order lines and line tax snapshots
//   - catalog.go: products, product default taxes and taxes
//   - partner.go: customers
//   - finance.go: payments
//   - sequence.go: sequences
package models

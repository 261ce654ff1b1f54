package persistence

import (
	"context"

	"github.com/erp/puntoventa/internal/application/unitofwork"
	"github.com/erp/puntoventa/internal/domain/finance"
	"github.com/erp/puntoventa/internal/domain/pos"
	"github.com/erp/puntoventa/internal/domain/sequence"
	"gorm.io/gorm"
)

// GormTransactionScope implements unitofwork.Scope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db      *gorm.DB
	counter sequence.Counter
}

// NewGormTransactionScope creates a new GormTransactionScope. A nil counter
// selects the database counter, bound to each transaction; any other counter
// is handed out as is and does not roll back with the transaction.
func NewGormTransactionScope(db *gorm.DB, counter sequence.Counter) *GormTransactionScope {
	return &GormTransactionScope{db: db, counter: counter}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos unitofwork.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx, counter: s.counter}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx      *gorm.DB
	counter sequence.Counter
}

// Orders returns the order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Orders() pos.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// Payments returns the payment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Payments() finance.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// Sequences returns the sequence repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Sequences() sequence.Repository {
	return NewGormSequenceRepository(r.tx)
}

// Counter returns the configured counter, or a database counter on the transaction
func (r *gormTransactionalRepositories) Counter() sequence.Counter {
	if r.counter != nil {
		return r.counter
	}
	return NewGormCounter(r.tx)
}

// Ensure GormTransactionScope implements Scope
var _ unitofwork.Scope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements Repositories
var _ unitofwork.Repositories = (*gormTransactionalRepositories)(nil)

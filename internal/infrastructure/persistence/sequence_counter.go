package persistence

import (
	"context"
	"errors"

	"github.com/erp/puntoventa/internal/domain/sequence"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCounter draws sequence values from the sequences table. Each draw
// locks the row, so two transactions never hand out the same value. Built
// on a transaction handle, the draw commits or rolls back with it.
// Missing rows are created from sequence.DefaultDefinitions on first use.
type GormCounter struct {
	repo        *GormSequenceRepository
	definitions map[string]sequence.Definition
}

// NewGormCounter creates a counter over db
func NewGormCounter(db *gorm.DB) *GormCounter {
	return &GormCounter{
		repo:        NewGormSequenceRepository(db),
		definitions: sequence.DefaultDefinitions(),
	}
}

// Next returns the formatted current value of code and advances it
func (c *GormCounter) Next(ctx context.Context, tenantID uuid.UUID, code string) (string, error) {
	var value string
	err := c.repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewGormSequenceRepository(tx)
		seq, err := c.lock(ctx, repo, tenantID, code)
		if err != nil {
			return err
		}
		if value, err = seq.Next(); err != nil {
			return err
		}
		return repo.Save(ctx, seq)
	})
	if err != nil {
		return "", err
	}
	return value, nil
}

// Reset makes the next value of code 1
func (c *GormCounter) Reset(ctx context.Context, tenantID uuid.UUID, code string) error {
	return c.repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewGormSequenceRepository(tx)
		seq, err := c.lock(ctx, repo, tenantID, code)
		if err != nil {
			return err
		}
		seq.Reset()
		return repo.Save(ctx, seq)
	})
}

// lock loads the row for update, creating it from its definition when absent
func (c *GormCounter) lock(ctx context.Context, repo *GormSequenceRepository, tenantID uuid.UUID, code string) (*sequence.Sequence, error) {
	seq, err := repo.FindByCodeForUpdate(ctx, tenantID, code)
	if err == nil {
		return seq, nil
	}
	if !errors.Is(err, sequence.ErrSequenceNotFound) {
		return nil, err
	}

	def, ok := c.definitions[code]
	if !ok {
		return nil, sequence.ErrSequenceNotFound
	}
	if err := repo.createIfMissing(ctx, tenantID, def); err != nil {
		return nil, err
	}
	return repo.FindByCodeForUpdate(ctx, tenantID, code)
}

// Ensure GormCounter implements Counter
var _ sequence.Counter = (*GormCounter)(nil)

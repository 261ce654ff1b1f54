package persistence

import (
	"context"
	"errors"

	"github.com/erp/puntoventa/internal/domain/sequence"
	"github.com/erp/puntoventa/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceRepository implements sequence.Repository using GORM
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// FindByCode finds a tenant's sequence by code
func (r *GormSequenceRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*sequence.Sequence, error) {
	return r.find(r.db.WithContext(ctx), tenantID, code)
}

// FindByCodeForUpdate locks the sequence row until the surrounding
// transaction ends. SQLite ignores the lock clause.
func (r *GormSequenceRepository) FindByCodeForUpdate(ctx context.Context, tenantID uuid.UUID, code string) (*sequence.Sequence, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, code)
}

func (r *GormSequenceRepository) find(db *gorm.DB, tenantID uuid.UUID, code string) (*sequence.Sequence, error) {
	var model models.SequenceModel
	if err := db.
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sequence.ErrSequenceNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists every sequence of a tenant by code
func (r *GormSequenceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]sequence.Sequence, error) {
	var sequenceModels []models.SequenceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("code ASC").
		Find(&sequenceModels).Error; err != nil {
		return nil, err
	}

	sequences := make([]sequence.Sequence, len(sequenceModels))
	for i := range sequenceModels {
		sequences[i] = *sequenceModels[i].ToDomain()
	}
	return sequences, nil
}

// Save creates or updates a sequence
func (r *GormSequenceRepository) Save(ctx context.Context, seq *sequence.Sequence) error {
	return r.db.WithContext(ctx).Save(models.SequenceModelFromDomain(seq)).Error
}

// createIfMissing inserts the default row for code unless another
// transaction already did
func (r *GormSequenceRepository) createIfMissing(ctx context.Context, tenantID uuid.UUID, def sequence.Definition) error {
	seq, err := sequence.NewSequence(tenantID, def)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "code"}},
			DoNothing: true,
		}).
		Create(models.SequenceModelFromDomain(seq)).Error
}

// Ensure GormSequenceRepository implements Repository
var _ sequence.Repository = (*GormSequenceRepository)(nil)

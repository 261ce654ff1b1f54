package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/puntoventa/internal/domain/pos"
	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/erp/puntoventa/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements pos.OrderRepository using GORM. Lines and
// their tax snapshots are stored in child tables and replaced on every save.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) withLines(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("sequence ASC, created_at ASC") }).
		Preload("Lines.Taxes", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

// FindByIDForTenant finds an order by ID within a tenant
func (r *GormOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*pos.Order, error) {
	var model models.OrderModel
	if err := r.withLines(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pos.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDsForTenant finds orders by IDs; a missing ID is ErrOrderNotFound
func (r *GormOrderRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]pos.Order, error) {
	if len(ids) == 0 {
		return []pos.Order{}, nil
	}

	var orderModels []models.OrderModel
	if err := r.withLines(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Order("created_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	unique := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		unique[id] = true
	}
	if len(orderModels) != len(unique) {
		return nil, pos.ErrOrderNotFound
	}
	return toOrders(orderModels), nil
}

// FindAllForTenant lists orders for a tenant
func (r *GormOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]pos.Order, error) {
	var orderModels []models.OrderModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("tenant_id = ?", tenantID), filter)
	query = paginate(query, filter, OrderSortFields, "created_at")

	if err := r.withLines(query).Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toOrders(orderModels), nil
}

// CountForTenant counts orders matching the filter
func (r *GormOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("tenant_id = ?", tenantID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByProduct finds orders holding at least one line of the product
func (r *GormOrderRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]pos.Order, error) {
	lines := r.db.Model(&models.OrderLineModel{}).Select("order_id").Where("product_id = ?", productID)
	return r.findWhere(ctx, tenantID, "id IN (?)", lines)
}

// FindByTax finds orders holding at least one line carrying the tax
func (r *GormOrderRepository) FindByTax(ctx context.Context, tenantID, taxID uuid.UUID) ([]pos.Order, error) {
	lines := r.db.Model(&models.OrderLineModel{}).
		Select("order_id").
		Where("id IN (?)", r.db.Model(&models.OrderLineTaxModel{}).Select("line_id").Where("tax_id = ?", taxID))
	return r.findWhere(ctx, tenantID, "id IN (?)", lines)
}

// FindByCustomer finds orders sold to the customer
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]pos.Order, error) {
	return r.findWhere(ctx, tenantID, "customer_id = ?", customerID)
}

func (r *GormOrderRepository) findWhere(ctx context.Context, tenantID uuid.UUID, cond string, args ...any) ([]pos.Order, error) {
	var orderModels []models.OrderModel
	if err := r.withLines(r.db.WithContext(ctx)).
		Where("tenant_id = ?", tenantID).
		Where(cond, args...).
		Order("created_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toOrders(orderModels), nil
}

// CountWithOtherOrderNumber counts the tenant's orders, except excludeID,
// whose number differs from orderNumber. Unnumbered orders are counted.
func (r *GormOrderRepository) CountWithOtherOrderNumber(ctx context.Context, tenantID, excludeID uuid.UUID, orderNumber string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("tenant_id = ? AND id <> ?", tenantID, excludeID).
		Where("order_number IS NULL OR order_number <> ?", orderNumber).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates an order with its lines
func (r *GormOrderRepository) Save(ctx context.Context, order *pos.Order) error {
	model := models.OrderModelFromDomain(order)
	lines := model.Lines
	model.Lines = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		return r.insertLines(tx, lines)
	})
}

// SaveWithLock updates an order and replaces its lines. The stored version
// must equal order.Version; on success the version is incremented.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *pos.Order) error {
	model := models.OrderModelFromDomain(order)
	lines := model.Lines

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		nextVersion := order.Version + 1
		updatedAt := time.Now()

		result := tx.Model(&models.OrderModel{}).
			Where("tenant_id = ? AND id = ? AND version = ?", order.TenantID, order.ID, order.Version).
			Updates(map[string]any{
				"folio_number":    model.FolioNumber,
				"order_number":    model.OrderNumber,
				"date":            model.Date,
				"customer_id":     model.CustomerID,
				"customer_name":   model.CustomerName,
				"subtotal_amount": model.SubtotalAmount,
				"total_amount":    model.TotalAmount,
				"notes":           model.Notes,
				"version":         nextVersion,
				"updated_at":      updatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return r.lockFailure(tx, order)
		}

		if err := r.deleteLines(tx, order.ID); err != nil {
			return err
		}
		if err := r.insertLines(tx, lines); err != nil {
			return err
		}

		order.Version = nextVersion
		order.UpdatedAt = updatedAt
		return nil
	})
}

// DeleteForTenant deletes an order and its lines
func (r *GormOrderRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.OrderModel{}).
			Where("tenant_id = ? AND id = ?", tenantID, id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return pos.ErrOrderNotFound
		}

		if err := r.deleteLines(tx, id); err != nil {
			return err
		}
		return tx.Delete(&models.OrderModel{}, "tenant_id = ? AND id = ?", tenantID, id).Error
	})
}

// lockFailure tells a missing order apart from a stale version
func (r *GormOrderRepository) lockFailure(tx *gorm.DB, order *pos.Order) error {
	var count int64
	if err := tx.Model(&models.OrderModel{}).
		Where("tenant_id = ? AND id = ?", order.TenantID, order.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return pos.ErrOrderNotFound
	}
	return shared.NewDomainError("CONCURRENCY_CONFLICT", "The order has been modified by another user")
}

func (r *GormOrderRepository) deleteLines(tx *gorm.DB, orderID uuid.UUID) error {
	lineIDs := tx.Model(&models.OrderLineModel{}).Select("id").Where("order_id = ?", orderID)
	if err := tx.Where("line_id IN (?)", lineIDs).Delete(&models.OrderLineTaxModel{}).Error; err != nil {
		return err
	}
	return tx.Where("order_id = ?", orderID).Delete(&models.OrderLineModel{}).Error
}

func (r *GormOrderRepository) insertLines(tx *gorm.DB, lines []models.OrderLineModel) error {
	if len(lines) == 0 {
		return nil
	}
	var taxes []models.OrderLineTaxModel
	for i := range lines {
		taxes = append(taxes, lines[i].Taxes...)
		lines[i].Taxes = nil
	}
	if err := tx.Create(&lines).Error; err != nil {
		return err
	}
	if len(taxes) == 0 {
		return nil
	}
	return tx.Create(&taxes).Error
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(folio_number) LIKE ? OR LOWER(customer_name) LIKE ?",
			pattern, pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "date_from":
			if t, ok := value.(time.Time); ok {
				query = query.Where("date >= ?", t)
			}
		case "date_to":
			if t, ok := value.(time.Time); ok {
				query = query.Where("date < ?", t.AddDate(0, 0, 1))
			}
		case "numbered":
			if value == true {
				query = query.Where("order_number IS NOT NULL")
			} else {
				query = query.Where("order_number IS NULL")
			}
		}
	}
	return query
}

func toOrders(orderModels []models.OrderModel) []pos.Order {
	orders := make([]pos.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders
}

// Ensure GormOrderRepository implements OrderRepository
var _ pos.OrderRepository = (*GormOrderRepository)(nil)

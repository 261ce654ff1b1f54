package persistence

import (
	"testing"

	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/erp/puntoventa/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "DESC"},
		{"asc", "ASC"},
		{"  Asc ", "ASC"},
		{"desc", "DESC"},
		{"sideways", "DESC"},
		{"ASC; DELETE FROM pos_orders;--", "DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty uses default", "", "date"},
		{"whitelisted", "total_amount", "total_amount"},
		{"trimmed", "  order_number ", "order_number"},
		{"case sensitive", "TOTAL_AMOUNT", "date"},
		{"unknown column", "amount_paid", "date"},
		{"injection", "date; DROP TABLE pos_orders;--", "date"},
		{"subquery", "(SELECT name FROM pos_payments)", "date"},
		{"quote", "order_number'--", "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, OrderSortFields, "date"))
		})
	}
}

func TestSortFieldsIncludeCommonColumns(t *testing.T) {
	for name, whitelist := range map[string]map[string]bool{
		"orders":    OrderSortFields,
		"payments":  PaymentSortFields,
		"products":  ProductSortFields,
		"taxes":     TaxSortFields,
		"customers": CustomerSortFields,
	} {
		for field := range CommonSortFields {
			assert.True(t, whitelist[field], "%s should allow sorting by %s", name, field)
		}
	}
}

func TestPaginate(t *testing.T) {
	db := setupTestDB(t)

	render := func(filter shared.Filter) string {
		return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
			var rows []models.OrderModel
			return paginate(tx.Model(&models.OrderModel{}), filter, OrderSortFields, "date").Find(&rows)
		})
	}

	t.Run("whitelisted field with id tiebreaker and page window", func(t *testing.T) {
		sql := render(shared.Filter{Page: 3, PageSize: 10, OrderBy: "total_amount", OrderDir: "asc"})
		assert.Contains(t, sql, "ORDER BY total_amount ASC,id ASC")
		assert.Contains(t, sql, "LIMIT 10")
		assert.Contains(t, sql, "OFFSET 20")
	})

	t.Run("unknown field falls back to default", func(t *testing.T) {
		sql := render(shared.Filter{OrderBy: "1; DROP TABLE pos_orders"})
		assert.Contains(t, sql, "ORDER BY date DESC,id ASC")
		assert.NotContains(t, sql, "DROP")
		assert.NotContains(t, sql, "LIMIT")
	})

	t.Run("sorting by id needs no tiebreaker", func(t *testing.T) {
		sql := render(shared.Filter{OrderBy: "id"})
		assert.Contains(t, sql, "ORDER BY id DESC")
		assert.NotContains(t, sql, "id DESC,id")
	})
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%venta/2024%", likePattern("  VENTA/2024 "))
	assert.Equal(t, "%%", likePattern(""))
}

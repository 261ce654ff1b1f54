package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/puntoventa/internal/domain/pos"
	"github.com/erp/puntoventa/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with every table migrated.
// One connection keeps the database alive for the whole test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

// newMockGormDB wraps sqlmock in a postgres dialector to assert generated SQL
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testProduct(code string, price string, taxes ...pos.LineTax) pos.ProductRef {
	return pos.ProductRef{
		ID:        uuid.New(),
		Code:      code,
		Name:      "Producto " + code,
		ListPrice: d(price),
		Taxes:     taxes,
	}
}

// newTestOrder builds a numbered order with one line per product
func newTestOrder(t *testing.T, tenantID uuid.UUID, number string, products ...pos.ProductRef) *pos.Order {
	t.Helper()
	order, err := pos.NewOrder(tenantID, uuid.New(), "Cliente Mostrador", time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	for _, p := range products {
		_, err := order.AddLine(p, d("2"))
		require.NoError(t, err)
	}
	if number != "" {
		require.NoError(t, order.AssignNumbers("F"+number, "VENTA/2024/03/"+number))
	}
	return order
}

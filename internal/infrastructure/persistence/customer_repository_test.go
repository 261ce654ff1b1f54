package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/puntoventa/internal/domain/partner"
	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var customerColumns = []string{"id", "tenant_id", "name", "email", "phone", "rfc", "version", "created_at", "updated_at"}

func TestGormCustomerRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds existing customer", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormCustomerRepository(gormDB)

		customerID := uuid.New()
		tenantID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(customerColumns).
			AddRow(customerID, tenantID, "Abarrotes Lupita", "lupita@example.com", "555 123 4567", "LUPA800101AB1", 3, now, now)

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, customerID, 1).
			WillReturnRows(rows)

		customer, err := repo.FindByIDForTenant(context.Background(), tenantID, customerID)

		require.NoError(t, err)
		assert.Equal(t, customerID, customer.ID)
		assert.Equal(t, tenantID, customer.TenantID)
		assert.Equal(t, "Abarrotes Lupita", customer.Name)
		assert.Equal(t, "LUPA800101AB1", customer.RFC)
		assert.Equal(t, 3, customer.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps record not found", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormCustomerRepository(gormDB)

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE tenant_id = \$1 AND id = \$2`).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByIDForTenant(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormCustomerRepository_FindAllForTenant(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormCustomerRepository(gormDB)
	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "customers" WHERE tenant_id = \$1 AND \(LOWER\(name\) LIKE \$2 .*\) ORDER BY name ASC,id ASC LIMIT \$\d+ OFFSET \$\d+`).
		WillReturnRows(sqlmock.NewRows(customerColumns).
			AddRow(uuid.New(), tenantID, "Lupita", "", "", "", 1, time.Now(), time.Now()))

	customers, err := repo.FindAllForTenant(context.Background(), tenantID, shared.Filter{
		Page:     2,
		PageSize: 10,
		OrderBy:  "name",
		OrderDir: "asc",
		Search:   "LUP",
	})

	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Lupita", customers[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCustomerRepository_CountForTenant(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormCustomerRepository(gormDB)
	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "customers" WHERE tenant_id = \$1`).
		WithArgs(tenantID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountForTenant(context.Background(), tenantID, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCustomerRepository_DeleteForTenant(t *testing.T) {
	t.Run("deletes", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormCustomerRepository(gormDB)
		tenantID, id := uuid.New(), uuid.New()

		mock.ExpectExec(`DELETE FROM "customers" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.DeleteForTenant(context.Background(), tenantID, id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is not found", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormCustomerRepository(gormDB)

		mock.ExpectExec(`DELETE FROM "customers"`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteForTenant(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormCustomerRepository_SaveRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	customer, err := partner.NewCustomer(tenantID, "Tortillería La Esperanza")
	require.NoError(t, err)
	require.NoError(t, customer.SetContact("55 1234 5678", "ventas@esperanza.mx"))
	require.NoError(t, repo.Save(ctx, customer))

	found, err := repo.FindByIDForTenant(ctx, tenantID, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "ventas@esperanza.mx", found.Email)

	count, err := repo.CountForTenant(ctx, tenantID, shared.Filter{Search: "esperanza"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

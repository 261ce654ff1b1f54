package persistence

import (
	"context"
	"testing"

	"github.com/erp/puntoventa/internal/domain/catalog"
	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveTax(t *testing.T, repo *GormTaxRepository, tenantID uuid.UUID, name, amount string) *catalog.Tax {
	t.Helper()
	tax, err := catalog.NewTax(tenantID, name, d(amount))
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), tax))
	return tax
}

func TestGormProductRepository_SaveWithTaxes(t *testing.T) {
	db := setupTestDB(t)
	products := NewGormProductRepository(db)
	taxes := NewGormTaxRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	iva := saveTax(t, taxes, tenantID, "IVA", "16")
	ieps := saveTax(t, taxes, tenantID, "IEPS", "8")

	product, err := catalog.NewProduct(tenantID, "cafe", "Café americano", d("35.5"))
	require.NoError(t, err)
	product.SetTaxes([]uuid.UUID{ieps.ID, iva.ID})
	require.NoError(t, products.Save(ctx, product))

	found, err := products.FindByIDForTenant(ctx, tenantID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "CAFE", found.Code)
	assert.True(t, found.ListPrice.Equal(d("35.5")))
	assert.Equal(t, []uuid.UUID{ieps.ID, iva.ID}, found.TaxIDs, "tax order is kept")

	t.Run("save replaces tax links", func(t *testing.T) {
		found.SetTaxes([]uuid.UUID{iva.ID})
		require.NoError(t, products.Save(ctx, found))

		reloaded, err := products.FindByCode(ctx, tenantID, "Cafe")
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{iva.ID}, reloaded.TaxIDs)
	})

	t.Run("code lookups", func(t *testing.T) {
		exists, err := products.ExistsByCode(ctx, tenantID, "cafe")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = products.ExistsByCode(ctx, uuid.New(), "CAFE")
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = products.FindByCode(ctx, tenantID, "TE")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("same code in another tenant is allowed", func(t *testing.T) {
		other, err := catalog.NewProduct(uuid.New(), "CAFE", "Café", d("1"))
		require.NoError(t, err)
		assert.NoError(t, products.Save(ctx, other))
	})

	t.Run("duplicate code in the same tenant is rejected", func(t *testing.T) {
		dup, err := catalog.NewProduct(tenantID, "CAFE", "Otro café", d("1"))
		require.NoError(t, err)
		assert.Error(t, products.Save(ctx, dup))
	})

	t.Run("filters by tax and active", func(t *testing.T) {
		withIVA, err := products.FindAllForTenant(ctx, tenantID, shared.Filter{Filters: map[string]any{"tax_id": iva.ID}})
		require.NoError(t, err)
		assert.Len(t, withIVA, 1)

		inactive, err := products.CountForTenant(ctx, tenantID, shared.Filter{Filters: map[string]any{"active": false}})
		require.NoError(t, err)
		assert.Zero(t, inactive)
	})

	t.Run("delete removes the links", func(t *testing.T) {
		require.NoError(t, products.DeleteForTenant(ctx, tenantID, product.ID))
		var links int64
		require.NoError(t, db.Table("product_taxes").Where("product_id = ?", product.ID).Count(&links).Error)
		assert.Zero(t, links)
		assert.ErrorIs(t, products.DeleteForTenant(ctx, tenantID, product.ID), shared.ErrNotFound)
	})
}

func TestGormTaxRepository(t *testing.T) {
	db := setupTestDB(t)
	taxes := NewGormTaxRepository(db)
	products := NewGormProductRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	iva := saveTax(t, taxes, tenantID, "IVA", "16")
	isr := saveTax(t, taxes, tenantID, "ISR", "10")
	saveTax(t, taxes, uuid.New(), "IVA", "16")

	t.Run("FindByIDs keeps the requested order and skips missing IDs", func(t *testing.T) {
		found, err := taxes.FindByIDs(ctx, tenantID, []uuid.UUID{isr.ID, uuid.New(), iva.ID})
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "ISR", found[0].Name)
		assert.Equal(t, "IVA", found[1].Name)
	})

	t.Run("update", func(t *testing.T) {
		require.NoError(t, iva.Update("IVA 16", d("17")))
		require.NoError(t, taxes.Save(ctx, iva))
		found, err := taxes.FindByIDForTenant(ctx, tenantID, iva.ID)
		require.NoError(t, err)
		assert.Equal(t, "IVA 16", found.Name)
		assert.True(t, found.Amount.Equal(d("17")))
	})

	t.Run("list and count are tenant scoped", func(t *testing.T) {
		all, err := taxes.FindAllForTenant(ctx, tenantID, shared.Filter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)
		count, err := taxes.CountForTenant(ctx, tenantID, shared.Filter{Search: "isr"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("delete unlinks products", func(t *testing.T) {
		product, err := catalog.NewProduct(tenantID, "PAN", "Pan dulce", d("8"))
		require.NoError(t, err)
		product.SetTaxes([]uuid.UUID{isr.ID, iva.ID})
		require.NoError(t, products.Save(ctx, product))

		require.NoError(t, taxes.DeleteForTenant(ctx, tenantID, isr.ID))

		reloaded, err := products.FindByIDForTenant(ctx, tenantID, product.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{iva.ID}, reloaded.TaxIDs)
		assert.ErrorIs(t, taxes.DeleteForTenant(ctx, tenantID, isr.ID), shared.ErrNotFound)
	})
}

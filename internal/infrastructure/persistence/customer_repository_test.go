package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/credit/internal/domain/catalog"
	"github.com/erp/credit/internal/domain/partner"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCustomer(t *testing.T, code string) *partner.Customer {
	t.Helper()
	customer, err := partner.NewCustomer(uuid.New(), code, "Customer "+code)
	require.NoError(t, err)
	return customer
}

// =============================================================================
// Customers
// =============================================================================

func TestGormCustomerRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormCustomerRepository(db)

	customer := newTestCustomer(t, "C-100")
	valid := time.Date(2030, 3, 31, 0, 0, 0, 0, time.UTC)
	customer.SetLicense("LIC-1", &valid)
	customer.SetState("mh")
	require.NoError(t, repo.Save(ctx, customer))

	t.Run("by id", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, customer.TenantID, customer.ID)
		require.NoError(t, err)
		assert.Equal(t, customer.Code, found.Code)
		assert.Equal(t, "LIC-1", found.LicenseNumber)
		require.NotNil(t, found.LicenseValidUpto)
		assert.True(t, valid.Equal(found.LicenseValidUpto.UTC()))
		assert.Equal(t, customer.StateCode, found.StateCode)
	})

	t.Run("by code is case insensitive", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, customer.TenantID, "c-100")
		require.NoError(t, err)
		assert.Equal(t, customer.ID, found.ID)
	})

	t.Run("other tenant sees nothing", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), customer.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("exists by code", func(t *testing.T) {
		exists, err := repo.ExistsByCode(ctx, customer.TenantID, "c-100")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByCode(ctx, customer.TenantID, "C-404")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestGormCustomerRepository_FindAllForTenant(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormCustomerRepository(db)
	tenantID := uuid.New()

	for _, code := range []string{"C-3", "C-1", "C-2"} {
		c, err := partner.NewCustomer(tenantID, code, "Customer "+code)
		require.NoError(t, err)
		if code == "C-2" {
			c.SetState("KA")
		}
		require.NoError(t, repo.Save(ctx, c))
	}

	t.Run("ordered by code with paging", func(t *testing.T) {
		customers, err := repo.FindAllForTenant(ctx, tenantID, shared.Filter{Page: 1, PageSize: 2, OrderDir: "asc"})
		require.NoError(t, err)
		require.Len(t, customers, 2)
		assert.Equal(t, "C-1", customers[0].Code)
		assert.Equal(t, "C-2", customers[1].Code)
	})

	t.Run("filters by state", func(t *testing.T) {
		customers, err := repo.FindAllForTenant(ctx, tenantID, shared.Filter{
			Filters: map[string]interface{}{"state_code": "KA"},
		})
		require.NoError(t, err)
		require.Len(t, customers, 1)
		assert.Equal(t, "C-2", customers[0].Code)
	})

	t.Run("unknown sort field falls back to code", func(t *testing.T) {
		customers, err := repo.FindAllForTenant(ctx, tenantID, shared.Filter{OrderBy: "name; DROP TABLE customers", OrderDir: "desc"})
		require.NoError(t, err)
		require.Len(t, customers, 3)
		assert.Equal(t, "C-3", customers[0].Code)
	})
}

func TestGormCustomerRepository_DeleteForTenant(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormCustomerRepository(db)
	customer := newTestCustomer(t, "C-DEL")
	require.NoError(t, repo.Save(ctx, customer))

	require.NoError(t, repo.DeleteForTenant(ctx, customer.TenantID, customer.ID))
	assert.ErrorIs(t, repo.DeleteForTenant(ctx, customer.TenantID, customer.ID), shared.ErrNotFound)
}

func TestGormCustomerRepository_DuplicateCode(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormCustomerRepository(db)
	first := newTestCustomer(t, "C-DUP")
	require.NoError(t, repo.Save(ctx, first))

	second, err := partner.NewCustomer(first.TenantID, "C-DUP", "Another")
	require.NoError(t, err)

	err = repo.Save(ctx, second)
	assert.True(t, shared.IsDomainError(err, shared.CodeAlreadyExists))
}

func TestGormCustomerRepository_FindByCode_QueryShape(t *testing.T) {
	gormDB, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormCustomerRepository(gormDB)
	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "customers" WHERE tenant_id = \$1 AND code = \$2`).
		WithArgs(tenantID, "C-9", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByCode(context.Background(), tenantID, "c-9")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// =============================================================================
// Categories
// =============================================================================

func TestGormCategoryRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormCategoryRepository(db)
	tenantID := uuid.New()

	fert, err := catalog.NewBusinessUnit(tenantID, "FERT", "FERTILIZER")
	require.NoError(t, err)
	fert.SetOverrideCreditDays(true)
	require.NoError(t, repo.Save(ctx, fert))

	urea, err := catalog.NewProductCategory(tenantID, "UREA", "Fertilizer Urea", fert)
	require.NoError(t, err)
	dap, err := catalog.NewProductCategory(tenantID, "DAP", "Fertilizer DAP", fert)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, urea))
	require.NoError(t, repo.Save(ctx, dap))

	t.Run("business units are the roots", func(t *testing.T) {
		units, err := repo.FindBusinessUnits(ctx, tenantID)
		require.NoError(t, err)
		require.Len(t, units, 1)
		assert.True(t, units[0].OverrideCreditDays)
	})

	t.Run("children ordered by name", func(t *testing.T) {
		children, err := repo.FindChildren(ctx, tenantID, fert.ID)
		require.NoError(t, err)
		require.Len(t, children, 2)
		assert.Equal(t, "Fertilizer DAP", children[0].Name)
		assert.Equal(t, &fert.ID, children[1].ParentID)
	})

	t.Run("find by ids", func(t *testing.T) {
		found, err := repo.FindByIDs(ctx, tenantID, []uuid.UUID{urea.ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, urea.ID, found[0].ID)
	})

	t.Run("exists by code", func(t *testing.T) {
		exists, err := repo.ExistsByCode(ctx, tenantID, "urea")
		require.NoError(t, err)
		assert.True(t, exists)
	})
}

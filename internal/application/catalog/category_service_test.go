package catalog

import (
	"context"
	"testing"

	"github.com/erp/credit/internal/domain/catalog"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Category, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindChildren(ctx context.Context, tenantID, businessUnitID uuid.UUID) ([]catalog.Category, error) {
	args := m.Called(ctx, tenantID, businessUnitID)
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindBusinessUnits(ctx context.Context, tenantID uuid.UUID) ([]catalog.Category, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("business unit", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo, catalog.NewOverdueGate(), nil)
		repo.On("ExistsByCode", ctx, tenantID, "fert").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*catalog.Category")).Return(nil)

		resp, err := svc.Create(ctx, tenantID, CreateCategoryRequest{Code: "fert", Name: "FERTILIZER", OverrideCreditDays: true})

		require.NoError(t, err)
		assert.True(t, resp.IsBusinessUnit)
		assert.True(t, resp.OverrideCreditDays)
		assert.True(t, resp.OverdueGated)
		assert.Equal(t, "FERT", resp.Code)
	})

	t.Run("product category under a unit", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo, catalog.NewOverdueGate(), nil)
		bu, err := catalog.NewBusinessUnit(tenantID, "SND", "SND")
		require.NoError(t, err)
		repo.On("ExistsByCode", ctx, tenantID, "SND-PEST").Return(false, nil)
		repo.On("FindByIDForTenant", ctx, tenantID, bu.ID).Return(bu, nil)
		repo.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := svc.Create(ctx, tenantID, CreateCategoryRequest{Code: "SND-PEST", Name: "SND Pesticides", ParentID: &bu.ID})

		require.NoError(t, err)
		assert.False(t, resp.IsBusinessUnit)
		assert.Equal(t, &bu.ID, resp.ParentID)
		assert.Equal(t, "snd", resp.StashSlot)
	})

	t.Run("nested product categories are rejected", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo, catalog.NewOverdueGate(), nil)
		bu, _ := catalog.NewBusinessUnit(tenantID, "SND", "SND")
		child, _ := catalog.NewProductCategory(tenantID, "SND-1", "SND One", bu)
		repo.On("ExistsByCode", ctx, tenantID, "SND-2").Return(false, nil)
		repo.On("FindByIDForTenant", ctx, tenantID, child.ID).Return(child, nil)

		_, err := svc.Create(ctx, tenantID, CreateCategoryRequest{Code: "SND-2", Name: "SND Two", ParentID: &child.ID})

		assert.True(t, shared.IsDomainError(err, "INVALID_PARENT"))
	})

	t.Run("missing parent", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo, catalog.NewOverdueGate(), nil)
		parentID := uuid.New()
		repo.On("ExistsByCode", ctx, tenantID, "X").Return(false, nil)
		repo.On("FindByIDForTenant", ctx, tenantID, parentID).Return(nil, shared.ErrNotFound)

		_, err := svc.Create(ctx, tenantID, CreateCategoryRequest{Code: "X", Name: "X", ParentID: &parentID})

		require.Error(t, err)
		assert.Equal(t, "Parent category not found", err.(*shared.DomainError).Message)
	})
}

func TestCategoryService_Update(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	bu, _ := catalog.NewBusinessUnit(tenantID, "FERT", "FERTILIZER")
	child, _ := catalog.NewProductCategory(tenantID, "UREA", "Fertilizer Urea", bu)

	repo := new(MockCategoryRepository)
	svc := NewCategoryService(repo, catalog.NewOverdueGate(), nil)
	repo.On("FindByIDForTenant", ctx, tenantID, bu.ID).Return(bu, nil)
	repo.On("FindByIDForTenant", ctx, tenantID, child.ID).Return(child, nil)
	repo.On("Save", ctx, mock.Anything).Return(nil)
	enabled := true

	resp, err := svc.Update(ctx, tenantID, bu.ID, UpdateCategoryRequest{OverrideCreditDays: &enabled})
	require.NoError(t, err)
	assert.True(t, resp.OverrideCreditDays)

	_, err = svc.Update(ctx, tenantID, child.ID, UpdateCategoryRequest{OverrideCreditDays: &enabled})
	assert.True(t, shared.IsDomainError(err, shared.CodeInvalidInput))
}

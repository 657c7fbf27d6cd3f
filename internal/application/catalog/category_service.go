package catalog

import (
	"context"
	"errors"

	"github.com/erp/credit/internal/domain/catalog"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	gate         catalog.OverdueGate
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo catalog.CategoryRepository, gate catalog.OverdueGate, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		gate:         gate,
		logger:       logger,
	}
}

// Create creates a business unit, or a product category when a parent is given
func (s *CategoryService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCategoryRequest) (*CategoryResponse, error) {
	exists, err := s.categoryRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Category with this code already exists")
	}

	var category *catalog.Category
	if req.ParentID != nil {
		parent, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, *req.ParentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_PARENT", "Parent category not found")
			}
			return nil, err
		}
		category, err = catalog.NewProductCategory(tenantID, req.Code, req.Name, parent)
		if err != nil {
			return nil, err
		}
	} else {
		category, err = catalog.NewBusinessUnit(tenantID, req.Code, req.Name)
		if err != nil {
			return nil, err
		}
		category.SetOverrideCreditDays(req.OverrideCreditDays)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	category.ClearDomainEvents()

	s.logger.Info("category created",
		zap.String("category_id", category.ID.String()),
		zap.String("code", category.Code),
		zap.Bool("business_unit", category.IsBusinessUnit()),
	)

	response := ToCategoryResponse(category, s.gate)
	return &response, nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, tenantID, categoryID uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, categoryID)
	if err != nil {
		return nil, err
	}
	response := ToCategoryResponse(category, s.gate)
	return &response, nil
}

// ListBusinessUnits lists the root categories
func (s *CategoryService) ListBusinessUnits(ctx context.Context, tenantID uuid.UUID) ([]CategoryResponse, error) {
	units, err := s.categoryRepo.FindBusinessUnits(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ToCategoryResponses(units, s.gate), nil
}

// ListChildren lists the product categories of a business unit
func (s *CategoryService) ListChildren(ctx context.Context, tenantID, businessUnitID uuid.UUID) ([]CategoryResponse, error) {
	children, err := s.categoryRepo.FindChildren(ctx, tenantID, businessUnitID)
	if err != nil {
		return nil, err
	}
	return ToCategoryResponses(children, s.gate), nil
}

// Update renames a category or toggles override credit days on a business
// unit. Already checked orders keep their flags until they are re-checked.
func (s *CategoryService) Update(ctx context.Context, tenantID, categoryID uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, categoryID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := category.Update(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.OverrideCreditDays != nil {
		if !category.IsBusinessUnit() {
			return nil, shared.NewValidationError("Override credit days can only be set on a business unit.")
		}
		category.SetOverrideCreditDays(*req.OverrideCreditDays)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	response := ToCategoryResponse(category, s.gate)
	return &response, nil
}

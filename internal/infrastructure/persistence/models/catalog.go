package models

import (
	"github.com/erp/credit/internal/domain/catalog"
	"github.com/google/uuid"
)

// CategoryModel is the persistence model for both business units (no
// parent) and product categories
type CategoryModel struct {
	TenantAggregateModel
	Code               string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_category_tenant_code,priority:2"`
	Name               string                 `gorm:"type:varchar(100);not null"`
	ParentID           *uuid.UUID             `gorm:"type:uuid;index"`
	Status             catalog.CategoryStatus `gorm:"type:varchar(20);not null;default:'active'"`
	OverrideCreditDays bool                   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the model to a Category
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		ParentID:            m.ParentID,
		Status:              m.Status,
		OverrideCreditDays:  m.OverrideCreditDays,
	}
}

// CategoryModelFromDomain creates a model from a Category
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{
		Code:               c.Code,
		Name:               c.Name,
		ParentID:           c.ParentID,
		Status:             c.Status,
		OverrideCreditDays: c.OverrideCreditDays,
	}
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	return m
}

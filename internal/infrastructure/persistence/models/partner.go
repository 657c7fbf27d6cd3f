package models

import (
	"time"

	"github.com/erp/credit/internal/domain/partner"
	"github.com/google/uuid"
)

// CustomerModel is the persistence model for the Customer aggregate
type CustomerModel struct {
	TenantAggregateModel
	Code             string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_customer_tenant_code,priority:2"`
	Name             string                 `gorm:"type:varchar(200);not null"`
	CustomerRank     int                    `gorm:"not null;default:1"`
	Status           partner.CustomerStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LicenseNumber    string                 `gorm:"type:varchar(100)"`
	LicenseValidUpto *time.Time             `gorm:"type:date"`
	StateCode        string                 `gorm:"type:varchar(20);index"`
	ParentID         *uuid.UUID             `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the model to a Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		CustomerRank:        m.CustomerRank,
		Status:              m.Status,
		LicenseNumber:       m.LicenseNumber,
		LicenseValidUpto:    m.LicenseValidUpto,
		StateCode:           m.StateCode,
		ParentID:            m.ParentID,
	}
}

// CustomerModelFromDomain creates a model from a Customer
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{
		Code:             c.Code,
		Name:             c.Name,
		CustomerRank:     c.CustomerRank,
		Status:           c.Status,
		LicenseNumber:    c.LicenseNumber,
		LicenseValidUpto: c.LicenseValidUpto,
		StateCode:        c.StateCode,
		ParentID:         c.ParentID,
	}
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	return m
}

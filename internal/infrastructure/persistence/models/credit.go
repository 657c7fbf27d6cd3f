package models

import (
	"time"

	"github.com/erp/credit/internal/domain/credit"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditLineModel is the persistence model for the CreditLine aggregate.
// The unique index enforces one line per (customer, product category).
type CreditLineModel struct {
	TenantAggregateModel
	CustomerID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_credit_line_pair,priority:2"`
	ProductCategoryID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_credit_line_pair,priority:3"`
	CreditLimit       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsInfiniteCredit  bool            `gorm:"not null;default:false"`
	CreditUsed        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ExposureOrders    int             `gorm:"not null;default:0"`
	RecomputedAt      *time.Time
}

// TableName returns the table name for GORM
func (CreditLineModel) TableName() string {
	return "credit_lines"
}

// ToDomain converts the model to a CreditLine
func (m *CreditLineModel) ToDomain() *credit.CreditLine {
	return &credit.CreditLine{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		CustomerID:          m.CustomerID,
		ProductCategoryID:   m.ProductCategoryID,
		CreditLimit:         m.CreditLimit,
		IsInfiniteCredit:    m.IsInfiniteCredit,
		CreditUsed:          m.CreditUsed,
		ExposureOrders:      m.ExposureOrders,
		RecomputedAt:        m.RecomputedAt,
	}
}

// CreditLineModelFromDomain creates a model from a CreditLine
func CreditLineModelFromDomain(l *credit.CreditLine) *CreditLineModel {
	m := &CreditLineModel{
		CustomerID:        l.CustomerID,
		ProductCategoryID: l.ProductCategoryID,
		CreditLimit:       l.CreditLimit,
		IsInfiniteCredit:  l.IsInfiniteCredit,
		CreditUsed:        l.CreditUsed,
		ExposureOrders:    l.ExposureOrders,
		RecomputedAt:      l.RecomputedAt,
	}
	m.FromDomainTenantAggregateRoot(l.TenantAggregateRoot)
	return m
}

// PaymentTermModel is the persistence model for PaymentTerm
type PaymentTermModel struct {
	TenantAggregateModel
	Name    string `gorm:"type:varchar(100);not null"`
	DueDays int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PaymentTermModel) TableName() string {
	return "payment_terms"
}

// ToDomain converts the model to a PaymentTerm
func (m *PaymentTermModel) ToDomain() *credit.PaymentTerm {
	return &credit.PaymentTerm{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Name:                m.Name,
		DueDays:             m.DueDays,
	}
}

// PaymentTermModelFromDomain creates a model from a PaymentTerm
func PaymentTermModelFromDomain(p *credit.PaymentTerm) *PaymentTermModel {
	m := &PaymentTermModel{Name: p.Name, DueDays: p.DueDays}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}

// CreditPeriodModel maps a (category, state) pair to a payment term
type CreditPeriodModel struct {
	TenantAggregateModel
	ProductCategoryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_credit_period_pair,priority:2"`
	StateCode         string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_credit_period_pair,priority:3"`
	PaymentTermID     uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (CreditPeriodModel) TableName() string {
	return "credit_periods"
}

// ToDomain converts the model to a CreditPeriod
func (m *CreditPeriodModel) ToDomain() *credit.CreditPeriod {
	return &credit.CreditPeriod{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		ProductCategoryID:   m.ProductCategoryID,
		StateCode:           m.StateCode,
		PaymentTermID:       m.PaymentTermID,
	}
}

// CreditPeriodModelFromDomain creates a model from a CreditPeriod
func CreditPeriodModelFromDomain(p *credit.CreditPeriod) *CreditPeriodModel {
	m := &CreditPeriodModel{
		ProductCategoryID: p.ProductCategoryID,
		StateCode:         p.StateCode,
		PaymentTermID:     p.PaymentTermID,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}

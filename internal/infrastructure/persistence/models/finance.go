package models

import (
	"time"

	"github.com/erp/credit/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate
type InvoiceModel struct {
	TenantAggregateModel
	Number            string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_tenant_number,priority:2"`
	MoveType          finance.MoveType      `gorm:"type:varchar(20);not null"`
	Status            finance.InvoiceStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index:idx_invoice_open,priority:2"`
	CustomerID        uuid.UUID             `gorm:"type:uuid;not null;index:idx_invoice_open,priority:1"`
	CustomerName      string                `gorm:"type:varchar(200)"`
	SalesOrderID      *uuid.UUID            `gorm:"type:uuid;index"`
	InvoiceOrigin     string                `gorm:"type:varchar(50)"`
	ProductCategoryID *uuid.UUID            `gorm:"type:uuid"`
	AmountTotal       decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	AmountResidual    decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	InvoiceDate       time.Time             `gorm:"type:date;not null"`
	DueDate           *time.Time            `gorm:"type:date"`
	PostedAt          *time.Time
	CancelledAt       *time.Time
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the model to an Invoice
func (m *InvoiceModel) ToDomain() *finance.Invoice {
	return &finance.Invoice{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Number:              m.Number,
		MoveType:            m.MoveType,
		Status:              m.Status,
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		SalesOrderID:        m.SalesOrderID,
		InvoiceOrigin:       m.InvoiceOrigin,
		ProductCategoryID:   m.ProductCategoryID,
		AmountTotal:         m.AmountTotal,
		AmountResidual:      m.AmountResidual,
		InvoiceDate:         m.InvoiceDate,
		DueDate:             m.DueDate,
		PostedAt:            m.PostedAt,
		CancelledAt:         m.CancelledAt,
	}
}

// InvoiceModelFromDomain creates a model from an Invoice
func InvoiceModelFromDomain(i *finance.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		Number:            i.Number,
		MoveType:          i.MoveType,
		Status:            i.Status,
		CustomerID:        i.CustomerID,
		CustomerName:      i.CustomerName,
		SalesOrderID:      i.SalesOrderID,
		InvoiceOrigin:     i.InvoiceOrigin,
		ProductCategoryID: i.ProductCategoryID,
		AmountTotal:       i.AmountTotal,
		AmountResidual:    i.AmountResidual,
		InvoiceDate:       i.InvoiceDate,
		DueDate:           i.DueDate,
		PostedAt:          i.PostedAt,
		CancelledAt:       i.CancelledAt,
	}
	m.FromDomainTenantAggregateRoot(i.TenantAggregateRoot)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate
type PaymentModel struct {
	TenantAggregateModel
	Reference         string                `gorm:"type:varchar(100);not null;uniqueIndex:idx_payment_tenant_reference,priority:2"`
	PartnerType       finance.PartnerType   `gorm:"type:varchar(20);not null"`
	Status            finance.PaymentStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	CustomerID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	ProductCategoryID *uuid.UUID            `gorm:"type:uuid"`
	Amount            decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaymentDate       time.Time             `gorm:"type:date;not null"`
	AppliedInvoiceID  *uuid.UUID            `gorm:"type:uuid"`
	AppliedAmount     decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	PostedAt          *time.Time
	CancelledAt       *time.Time
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the model to a Payment
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Reference:           m.Reference,
		PartnerType:         m.PartnerType,
		Status:              m.Status,
		CustomerID:          m.CustomerID,
		ProductCategoryID:   m.ProductCategoryID,
		Amount:              m.Amount,
		PaymentDate:         m.PaymentDate,
		AppliedInvoiceID:    m.AppliedInvoiceID,
		AppliedAmount:       m.AppliedAmount,
		PostedAt:            m.PostedAt,
		CancelledAt:         m.CancelledAt,
	}
}

// PaymentModelFromDomain creates a model from a Payment
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{
		Reference:         p.Reference,
		PartnerType:       p.PartnerType,
		Status:            p.Status,
		CustomerID:        p.CustomerID,
		ProductCategoryID: p.ProductCategoryID,
		Amount:            p.Amount,
		PaymentDate:       p.PaymentDate,
		AppliedInvoiceID:  p.AppliedInvoiceID,
		AppliedAmount:     p.AppliedAmount,
		PostedAt:          p.PostedAt,
		CancelledAt:       p.CancelledAt,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}

// ReconciliationModel is the persistence model for a partial reconcile link
type ReconciliationModel struct {
	TenantAggregateModel
	DebitInvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	DebitCustomerID  uuid.UUID       `gorm:"type:uuid;not null"`
	CreditInvoiceID  *uuid.UUID      `gorm:"type:uuid"`
	CreditCustomerID *uuid.UUID      `gorm:"type:uuid"`
	CreditReference  string          `gorm:"type:varchar(100)"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AppliedAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Removed          bool            `gorm:"not null;default:false"`
	RemovedAt        *time.Time
}

// TableName returns the table name for GORM
func (ReconciliationModel) TableName() string {
	return "reconciliations"
}

// ToDomain converts the model to a Reconciliation
func (m *ReconciliationModel) ToDomain() *finance.Reconciliation {
	return &finance.Reconciliation{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		DebitInvoiceID:      m.DebitInvoiceID,
		DebitCustomerID:     m.DebitCustomerID,
		CreditInvoiceID:     m.CreditInvoiceID,
		CreditCustomerID:    m.CreditCustomerID,
		CreditReference:     m.CreditReference,
		Amount:              m.Amount,
		AppliedAmount:       m.AppliedAmount,
		Removed:             m.Removed,
		RemovedAt:           m.RemovedAt,
	}
}

// ReconciliationModelFromDomain creates a model from a Reconciliation
func ReconciliationModelFromDomain(r *finance.Reconciliation) *ReconciliationModel {
	m := &ReconciliationModel{
		DebitInvoiceID:   r.DebitInvoiceID,
		DebitCustomerID:  r.DebitCustomerID,
		CreditInvoiceID:  r.CreditInvoiceID,
		CreditCustomerID: r.CreditCustomerID,
		CreditReference:  r.CreditReference,
		Amount:           r.Amount,
		AppliedAmount:    r.AppliedAmount,
		Removed:          r.Removed,
		RemovedAt:        r.RemovedAt,
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	return m
}

package finance

import (
	"context"

	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByIDForTenant finds an invoice by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindByIDForUpdate finds an invoice and takes a row lock on it.
	// Only meaningful inside a transaction.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindByCustomer lists invoices of a customer
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	// FindOpenByCustomer finds posted customer invoices with a positive residual
	FindOpenByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]Invoice, error)

	// FindPostedBySalesOrders finds posted customer invoices originating from
	// the given orders, oldest posting first
	FindPostedBySalesOrders(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID) ([]Invoice, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock updates an invoice only if its stored version still equals
	// the aggregate's, then bumps the version. Returns
	// shared.ErrConcurrencyConflict otherwise.
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// ExistsByNumber checks if an invoice number is taken
	ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error)
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByIDForTenant finds a payment by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)

	// FindByCustomer lists payments of a customer
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]Payment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// SaveWithLock updates a payment with an optimistic version check
	SaveWithLock(ctx context.Context, payment *Payment) error

	// ExistsByReference checks if a payment reference is taken
	ExistsByReference(ctx context.Context, tenantID uuid.UUID, reference string) (bool, error)
}

// ReconciliationRepository defines the interface for reconciliation persistence
type ReconciliationRepository interface {
	// FindByIDForTenant finds a reconciliation by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Reconciliation, error)

	// FindActiveByDebitInvoice lists links on an invoice that are not removed
	FindActiveByDebitInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]Reconciliation, error)

	// Save creates or updates a reconciliation
	Save(ctx context.Context, reconciliation *Reconciliation) error

	// SaveWithLock updates a reconciliation, failing with
	// ErrConcurrencyConflict when the stored version moved on
	SaveWithLock(ctx context.Context, reconciliation *Reconciliation) error
}

package finance

import (
	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants for reconciliations
const (
	EventTypeReconciliationCreated = "ReconciliationCreated"
	EventTypeReconciliationRemoved = "ReconciliationRemoved"
)

// ReconciliationCreatedEvent is raised when a partial reconcile is recorded
type ReconciliationCreatedEvent struct {
	shared.BaseDomainEvent
	ReconciliationID uuid.UUID       `json:"reconciliation_id"`
	DebitInvoiceID   uuid.UUID       `json:"debit_invoice_id"`
	CustomerIDs      []uuid.UUID     `json:"customer_ids"`
	AppliedAmount    decimal.Decimal `json:"applied_amount"`
}

// NewReconciliationCreatedEvent creates a new ReconciliationCreatedEvent
func NewReconciliationCreatedEvent(r *Reconciliation) *ReconciliationCreatedEvent {
	return &ReconciliationCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeReconciliationCreated, AggregateTypeReconciliation, r.ID, r.TenantID),
		ReconciliationID: r.ID,
		DebitInvoiceID:   r.DebitInvoiceID,
		CustomerIDs:      r.AffectedCustomers(),
		AppliedAmount:    r.AppliedAmount,
	}
}

// ReconciliationRemovedEvent is raised when a partial reconcile is undone
type ReconciliationRemovedEvent struct {
	shared.BaseDomainEvent
	ReconciliationID uuid.UUID       `json:"reconciliation_id"`
	DebitInvoiceID   uuid.UUID       `json:"debit_invoice_id"`
	CustomerIDs      []uuid.UUID     `json:"customer_ids"`
	AppliedAmount    decimal.Decimal `json:"applied_amount"`
}

// NewReconciliationRemovedEvent creates a new ReconciliationRemovedEvent
func NewReconciliationRemovedEvent(r *Reconciliation) *ReconciliationRemovedEvent {
	return &ReconciliationRemovedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeReconciliationRemoved, AggregateTypeReconciliation, r.ID, r.TenantID),
		ReconciliationID: r.ID,
		DebitInvoiceID:   r.DebitInvoiceID,
		CustomerIDs:      r.AffectedCustomers(),
		AppliedAmount:    r.AppliedAmount,
	}
}

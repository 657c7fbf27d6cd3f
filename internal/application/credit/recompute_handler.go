package credit

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/credit/internal/domain/finance"
	"github.com/erp/credit/internal/domain/partner"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/erp/credit/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecomputeHandler turns ledger and order events into usage recomputes.
// It runs synchronously on the publisher's goroutine and context, so a
// failing recompute fails the action that raised the event.
type RecomputeHandler struct {
	usage  *UsageService
	lines  *CreditLineService
	logger *zap.Logger
}

// NewRecomputeHandler creates a new RecomputeHandler
func NewRecomputeHandler(usage *UsageService, lines *CreditLineService, logger *zap.Logger) *RecomputeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecomputeHandler{usage: usage, lines: lines, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *RecomputeHandler) EventTypes() []string {
	return []string{
		finance.EventTypeInvoicePosted,
		finance.EventTypeInvoiceResidualChanged,
		finance.EventTypeInvoiceCancelled,
		finance.EventTypePaymentPosted,
		finance.EventTypePaymentCancelled,
		finance.EventTypeReconciliationCreated,
		finance.EventTypeReconciliationRemoved,
		trade.EventTypeSalesOrderConfirmed,
		trade.EventTypeSalesOrderCancelled,
		partner.EventTypeCustomerDeleted,
	}
}

// Handle dispatches one event
func (h *RecomputeHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	tenantID := event.TenantID()

	switch e := event.(type) {
	case *finance.InvoicePostedEvent:
		return h.recomputePair(ctx, tenantID, e.CustomerID, e.ProductCategoryID, TriggerInvoicePosted)
	case *finance.InvoiceResidualChangedEvent:
		return h.usage.RecomputeCustomer(ctx, tenantID, e.CustomerID, TriggerInvoiceResidualChanged)
	case *finance.InvoiceCancelledEvent:
		return h.recomputePair(ctx, tenantID, e.CustomerID, e.ProductCategoryID, TriggerInvoiceCancelled)
	case *finance.PaymentPostedEvent:
		if e.PartnerType != finance.PartnerTypeCustomer {
			return nil
		}
		return h.recomputePair(ctx, tenantID, e.CustomerID, e.ProductCategoryID, TriggerPaymentPosted)
	case *finance.PaymentCancelledEvent:
		if e.PartnerType != finance.PartnerTypeCustomer {
			return nil
		}
		return h.recomputePair(ctx, tenantID, e.CustomerID, e.ProductCategoryID, TriggerPaymentCancelled)
	case *finance.ReconciliationCreatedEvent:
		return h.recomputeCustomers(ctx, tenantID, e.CustomerIDs)
	case *finance.ReconciliationRemovedEvent:
		return h.recomputeCustomers(ctx, tenantID, e.CustomerIDs)
	case *trade.SalesOrderConfirmedEvent:
		return h.recomputePair(ctx, tenantID, e.CustomerID, e.ProductCategoryID, TriggerOrderConfirmed)
	case *trade.SalesOrderCancelledEvent:
		if !e.WasConfirmed {
			return nil
		}
		return h.recomputePair(ctx, tenantID, e.CustomerID, e.ProductCategoryID, TriggerOrderCancelled)
	case *partner.CustomerDeletedEvent:
		_, err := h.lines.DeleteByCustomer(ctx, tenantID, e.CustomerID)
		return err
	}

	h.logger.Error("unexpected event type", zap.String("event_type", event.EventType()))
	return fmt.Errorf("recompute handler: unexpected event type %s", event.EventType())
}

func (h *RecomputeHandler) recomputePair(ctx context.Context, tenantID, customerID uuid.UUID, categoryID *uuid.UUID, trigger string) error {
	if categoryID == nil {
		return nil
	}
	_, err := h.usage.Recompute(ctx, tenantID, customerID, *categoryID, trigger)
	if errors.Is(err, ErrNoCreditLine) {
		return nil
	}
	return err
}

func (h *RecomputeHandler) recomputeCustomers(ctx context.Context, tenantID uuid.UUID, customerIDs []uuid.UUID) error {
	for _, id := range customerIDs {
		if err := h.usage.RecomputeCustomer(ctx, tenantID, id, TriggerReconciliation); err != nil {
			return err
		}
	}
	return nil
}

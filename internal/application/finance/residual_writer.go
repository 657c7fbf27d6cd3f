package finance

import (
	"context"
	"fmt"

	"github.com/erp/credit/internal/domain/finance"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/erp/credit/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceLocker serializes residual writes per invoice within the process.
// Lock blocks until key is free and returns the matching unlock.
type InvoiceLocker interface {
	Lock(key string) (unlock func())
}

// residualWriter is the only path that moves an invoice residual. Callers
// hold the invoice lock around the whole unit of work so the row lock and
// the commit happen under it.
type residualWriter struct {
	invoiceRepo finance.InvoiceRepository
	locker      InvoiceLocker
	logger      *zap.Logger
	metrics     *telemetry.CreditMetrics
}

func invoiceLockKey(tenantID, invoiceID uuid.UUID) string {
	return "invoice:" + tenantID.String() + ":" + invoiceID.String()
}

// lock takes the in-process lock of an invoice. Without a locker configured
// the database row lock is the only guard.
func (w *residualWriter) lock(tenantID, invoiceID uuid.UUID) func() {
	if w.locker == nil {
		return func() {}
	}
	return w.locker.Lock(invoiceLockKey(tenantID, invoiceID))
}

// load re-reads the invoice under a row lock and checks it is the version
// the caller planned against. seenVersion < 0 skips the check.
func (w *residualWriter) load(ctx context.Context, tenantID, invoiceID uuid.UUID, seenVersion int) (*finance.Invoice, error) {
	inv, err := w.invoiceRepo.FindByIDForUpdate(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if seenVersion >= 0 && inv.Version != seenVersion {
		return nil, w.consistencyError(ctx, inv, fmt.Sprintf(
			"Invoice %s changed while the payment was being applied (version %d, expected %d)",
			inv.Number, inv.Version, seenVersion))
	}
	return inv, nil
}

// save persists the invoice and publishes its residual events inside the
// current unit of work
func (w *residualWriter) save(ctx context.Context, inv *finance.Invoice, publisher shared.EventPublisher) error {
	if err := w.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return err
	}
	return shared.PublishPending(ctx, publisher, inv)
}

// observe counts consistency failures coming out of the invoice aggregate
func (w *residualWriter) observe(ctx context.Context, inv *finance.Invoice, err error) error {
	if shared.IsDomainError(err, shared.CodeConsistency) {
		w.metrics.RecordConsistencyError(ctx)
		w.logger.Error("invoice residual consistency check failed",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("invoice_number", inv.Number),
			zap.String("residual", inv.AmountResidual.StringFixed(2)),
			zap.String("total", inv.AmountTotal.StringFixed(2)),
			zap.Error(err),
		)
	}
	return err
}

func (w *residualWriter) consistencyError(ctx context.Context, inv *finance.Invoice, msg string) error {
	return w.observe(ctx, inv, shared.NewDomainError(shared.CodeConsistency, msg))
}

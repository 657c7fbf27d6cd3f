package finance

import (
	"context"

	"github.com/erp/credit/internal/domain/finance"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/erp/credit/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReconciliationService records and removes partial reconcile links. Both
// directions move the debit invoice residual through the locked write path.
type ReconciliationService struct {
	reconRepo      finance.ReconciliationRepository
	invoiceRepo    finance.InvoiceRepository
	writer         *residualWriter
	txScope        shared.TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	reconRepo finance.ReconciliationRepository,
	invoiceRepo finance.InvoiceRepository,
	locker InvoiceLocker,
	txScope shared.TransactionScope,
	logger *zap.Logger,
) *ReconciliationService {
	if txScope == nil {
		txScope = shared.NoOpTransactionScope{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconciliationService{
		reconRepo:   reconRepo,
		invoiceRepo: invoiceRepo,
		writer:      &residualWriter{invoiceRepo: invoiceRepo, locker: locker, logger: logger},
		txScope:     txScope,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher
func (s *ReconciliationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetCreditMetrics sets the metrics recorder
func (s *ReconciliationService) SetCreditMetrics(m *telemetry.CreditMetrics) {
	s.writer.metrics = m
}

// Reconcile links a debit invoice to a credit move and lowers the debit
// residual by at most amount
func (s *ReconciliationService) Reconcile(ctx context.Context, tenantID uuid.UUID, input ReconcileInput) (*ReconciliationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "reconcile")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, input.DebitInvoiceID.String(),
		telemetry.SpanAttrAmount, input.Amount.String(),
	)

	var creditInvoice *finance.Invoice
	if input.CreditInvoiceID != nil {
		var err error
		creditInvoice, err = s.invoiceRepo.FindByIDForTenant(ctx, tenantID, *input.CreditInvoiceID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	unlock := s.writer.lock(tenantID, input.DebitInvoiceID)
	defer unlock()

	var recon *finance.Reconciliation
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		debit, err := s.writer.load(ctx, tenantID, input.DebitInvoiceID, -1)
		if err != nil {
			return err
		}
		recon, err = finance.NewReconciliation(tenantID, debit, creditInvoice, input.CreditReference, input.Amount)
		if err != nil {
			return err
		}

		applied, err := debit.ReduceResidual(input.Amount, finance.ResidualSourceReconciliation)
		if err != nil {
			return s.writer.observe(ctx, debit, err)
		}
		if applied.IsZero() {
			return shared.NewValidationError("Invoice is already fully paid")
		}
		recon.RecordApplied(applied)

		if err := s.writer.save(ctx, debit, s.eventPublisher); err != nil {
			return err
		}
		if err := s.reconRepo.Save(ctx, recon); err != nil {
			return err
		}
		return shared.PublishPending(ctx, s.eventPublisher, recon)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("invoice reconciled",
		zap.String("reconciliation_id", recon.ID.String()),
		zap.String("invoice_id", recon.DebitInvoiceID.String()),
		zap.String("applied_amount", recon.AppliedAmount.StringFixed(2)),
	)

	resp := ToReconciliationResponse(recon)
	return &resp, nil
}

// Unreconcile removes a link and restores what it consumed
func (s *ReconciliationService) Unreconcile(ctx context.Context, tenantID, id uuid.UUID) (*ReconciliationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "unreconcile")
	defer span.End()

	// the debit invoice of a link never changes, so it can pick the lock
	link, err := s.reconRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	unlock := s.writer.lock(tenantID, link.DebitInvoiceID)
	defer unlock()

	var recon *finance.Reconciliation
	err = s.txScope.Execute(ctx, func(ctx context.Context) error {
		debit, err := s.writer.load(ctx, tenantID, link.DebitInvoiceID, -1)
		if err != nil {
			return err
		}
		// re-read under the invoice row lock; a removal committed meanwhile
		// must be seen here
		recon, err = s.reconRepo.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if err := recon.Remove(); err != nil {
			return err
		}
		if recon.AppliedAmount.IsPositive() {
			if err := debit.RestoreResidual(recon.AppliedAmount, finance.ResidualSourceUnreconcile); err != nil {
				return s.writer.observe(ctx, debit, err)
			}
			if err := s.writer.save(ctx, debit, s.eventPublisher); err != nil {
				return err
			}
		}
		if err := s.reconRepo.SaveWithLock(ctx, recon); err != nil {
			return err
		}
		return shared.PublishPending(ctx, s.eventPublisher, recon)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("reconciliation removed",
		zap.String("reconciliation_id", recon.ID.String()),
		zap.String("restored_amount", recon.AppliedAmount.StringFixed(2)),
	)

	resp := ToReconciliationResponse(recon)
	return &resp, nil
}

package finance

import (
	"context"
	"testing"

	"github.com/erp/credit/internal/domain/finance"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type reconFixture struct {
	*ledgerFixture
	recons *MockReconciliationRepository
	rsvc   *ReconciliationService
}

func newReconFixture() *reconFixture {
	base := newLedgerFixture()
	f := &reconFixture{ledgerFixture: base, recons: new(MockReconciliationRepository)}
	f.rsvc = NewReconciliationService(f.recons, base.invoices, base.locker, nil, nil)
	f.rsvc.SetEventPublisher(base.publisher)
	return f
}

// ==================== Reconcile ====================

func TestReconciliationService_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("lowers the debit residual by the applied amount", func(t *testing.T) {
		f := newReconFixture()
		debit := f.invoice(uuid.New(), 1000, 400, 2)
		f.invoices.On("FindByIDForUpdate", mock.Anything, f.tenantID, debit.ID).Return(&debit, nil)
		f.invoices.On("SaveWithLock", mock.Anything, &debit).Return(nil)
		f.recons.On("Save", mock.Anything, mock.AnythingOfType("*finance.Reconciliation")).Return(nil)

		resp, err := f.rsvc.Reconcile(ctx, f.tenantID, ReconcileInput{
			DebitInvoiceID:  debit.ID,
			CreditReference: "BANK/77",
			Amount:          decimal.NewFromInt(650),
		})

		require.NoError(t, err)
		assert.True(t, resp.AppliedAmount.Equal(decimal.NewFromInt(400)))
		assert.True(t, resp.Amount.Equal(decimal.NewFromInt(650)))
		assert.True(t, debit.AmountResidual.IsZero())
		assert.Equal(t, []string{
			finance.EventTypeInvoiceResidualChanged,
			finance.EventTypeReconciliationCreated,
		}, f.publisher.types())
		assert.Equal(t, 1, f.locker.count(invoiceLockKey(f.tenantID, debit.ID)))
	})

	t.Run("fully paid invoice is refused", func(t *testing.T) {
		f := newReconFixture()
		debit := f.invoice(uuid.New(), 1000, 0, 1)
		f.invoices.On("FindByIDForUpdate", mock.Anything, f.tenantID, debit.ID).Return(&debit, nil)

		_, err := f.rsvc.Reconcile(ctx, f.tenantID, ReconcileInput{
			DebitInvoiceID:  debit.ID,
			CreditReference: "BANK/78",
			Amount:          decimal.NewFromInt(10),
		})

		assert.True(t, shared.IsDomainError(err, shared.CodeInvalidInput))
		f.recons.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.events)
	})

	t.Run("credit side is required", func(t *testing.T) {
		f := newReconFixture()
		debit := f.invoice(uuid.New(), 1000, 1000, 1)
		f.invoices.On("FindByIDForUpdate", mock.Anything, f.tenantID, debit.ID).Return(&debit, nil)

		_, err := f.rsvc.Reconcile(ctx, f.tenantID, ReconcileInput{
			DebitInvoiceID: debit.ID,
			Amount:         decimal.NewFromInt(10),
		})

		assert.True(t, shared.IsDomainError(err, "INVALID_CREDIT"))
		assert.True(t, debit.AmountResidual.Equal(decimal.NewFromInt(1000)))
	})
}

// ==================== Unreconcile ====================

func TestReconciliationService_Unreconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("restores what the link consumed", func(t *testing.T) {
		f := newReconFixture()
		debit := f.invoice(uuid.New(), 1000, 300, 3)
		recon, err := finance.NewReconciliation(f.tenantID, &debit, nil, "BANK/79", decimal.NewFromInt(700))
		require.NoError(t, err)
		recon.RecordApplied(decimal.NewFromInt(700))
		recon.ClearDomainEvents()

		f.recons.On("FindByIDForTenant", mock.Anything, f.tenantID, recon.ID).Return(recon, nil)
		f.invoices.On("FindByIDForUpdate", mock.Anything, f.tenantID, debit.ID).Return(&debit, nil)
		f.invoices.On("SaveWithLock", mock.Anything, &debit).Return(nil)
		f.recons.On("SaveWithLock", mock.Anything, recon).Return(nil)

		resp, err := f.rsvc.Unreconcile(ctx, f.tenantID, recon.ID)

		require.NoError(t, err)
		assert.True(t, resp.Removed)
		assert.True(t, debit.AmountResidual.Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, []string{
			finance.EventTypeInvoiceResidualChanged,
			finance.EventTypeReconciliationRemoved,
		}, f.publisher.types())
	})

	t.Run("removing twice fails", func(t *testing.T) {
		f := newReconFixture()
		debit := f.invoice(uuid.New(), 1000, 1000, 3)
		recon, err := finance.NewReconciliation(f.tenantID, &debit, nil, "BANK/80", decimal.NewFromInt(100))
		require.NoError(t, err)
		require.NoError(t, recon.Remove())

		f.recons.On("FindByIDForTenant", mock.Anything, f.tenantID, recon.ID).Return(recon, nil)
		f.invoices.On("FindByIDForUpdate", mock.Anything, f.tenantID, debit.ID).Return(&debit, nil)

		_, err = f.rsvc.Unreconcile(ctx, f.tenantID, recon.ID)

		assert.True(t, shared.IsDomainError(err, shared.CodeInvalidState))
		f.invoices.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("removal committed while waiting for the lock is honoured", func(t *testing.T) {
		f := newReconFixture()
		// 1000 invoice with two 300 links, one of them being removed twice
		debit := f.invoice(uuid.New(), 1000, 400, 3)
		seen, err := finance.NewReconciliation(f.tenantID, &debit, nil, "BANK/81", decimal.NewFromInt(300))
		require.NoError(t, err)
		seen.RecordApplied(decimal.NewFromInt(300))
		seen.ClearDomainEvents()
		current := *seen
		require.NoError(t, current.Remove())
		current.ClearDomainEvents()

		f.recons.On("FindByIDForTenant", mock.Anything, f.tenantID, seen.ID).Return(seen, nil).Once()
		f.recons.On("FindByIDForTenant", mock.Anything, f.tenantID, seen.ID).Return(&current, nil).Once()
		f.invoices.On("FindByIDForUpdate", mock.Anything, f.tenantID, debit.ID).Return(&debit, nil)

		_, err = f.rsvc.Unreconcile(ctx, f.tenantID, seen.ID)

		assert.True(t, shared.IsDomainError(err, shared.CodeInvalidState))
		assert.True(t, debit.AmountResidual.Equal(decimal.NewFromInt(400)))
		f.invoices.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		f.recons.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.events)
	})

	t.Run("stale link version is a concurrency conflict", func(t *testing.T) {
		f := newReconFixture()
		debit := f.invoice(uuid.New(), 1000, 700, 2)
		recon, err := finance.NewReconciliation(f.tenantID, &debit, nil, "BANK/82", decimal.NewFromInt(300))
		require.NoError(t, err)
		recon.RecordApplied(decimal.NewFromInt(300))
		recon.ClearDomainEvents()

		f.recons.On("FindByIDForTenant", mock.Anything, f.tenantID, recon.ID).Return(recon, nil)
		f.invoices.On("FindByIDForUpdate", mock.Anything, f.tenantID, debit.ID).Return(&debit, nil)
		f.invoices.On("SaveWithLock", mock.Anything, &debit).Return(nil)
		f.recons.On("SaveWithLock", mock.Anything, recon).Return(shared.ErrConcurrencyConflict)

		_, err = f.rsvc.Unreconcile(ctx, f.tenantID, recon.ID)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

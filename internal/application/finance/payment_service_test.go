package finance

import (
	"context"
	"testing"
	"time"

	"github.com/erp/credit/internal/domain/finance"
	"github.com/erp/credit/internal/domain/partner"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/erp/credit/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)

type ledgerFixture struct {
	tenantID   uuid.UUID
	customerID uuid.UUID
	categoryID uuid.UUID
	invoices   *MockInvoiceRepository
	payments   *MockPaymentRepository
	orders     *MockSalesOrderRepository
	customers  *MockCustomerRepository
	locker     *countingLocker
	publisher  *recordingPublisher
	svc        *PaymentService
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		tenantID:   uuid.New(),
		customerID: uuid.New(),
		categoryID: uuid.New(),
		invoices:   new(MockInvoiceRepository),
		payments:   new(MockPaymentRepository),
		orders:     new(MockSalesOrderRepository),
		customers:  new(MockCustomerRepository),
		locker:     newCountingLocker(),
		publisher:  &recordingPublisher{},
	}
	f.svc = NewPaymentService(f.payments, f.invoices, f.orders, f.customers, f.locker, nil, nil)
	f.svc.SetEventPublisher(f.publisher)
	f.svc.SetClock(func() time.Time { return testToday })
	return f
}

func (f *ledgerFixture) order() trade.SalesOrder {
	cat := f.categoryID
	return trade.SalesOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(f.tenantID),
		CustomerID:          f.customerID,
		ProductCategoryID:   &cat,
		Status:              trade.OrderStatusConfirmed,
	}
}

func (f *ledgerFixture) invoice(orderID uuid.UUID, total, residual int64, version int) finance.Invoice {
	oid, cat := orderID, f.categoryID
	due := testToday.AddDate(0, 0, 30)
	inv := finance.Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(f.tenantID),
		Number:              "INV/" + orderID.String()[:8],
		MoveType:            finance.MoveTypeCustomerInvoice,
		Status:              finance.InvoiceStatusPosted,
		CustomerID:          f.customerID,
		SalesOrderID:        &oid,
		ProductCategoryID:   &cat,
		AmountTotal:         decimal.NewFromInt(total),
		AmountResidual:      decimal.NewFromInt(residual),
		DueDate:             &due,
	}
	inv.Version = version
	return inv
}

func (f *ledgerFixture) draftPayment(amount int64) *finance.Payment {
	cat := f.categoryID
	p, err := finance.NewPayment(f.tenantID, "PAY/"+uuid.NewString()[:6], finance.PartnerTypeCustomer, f.customerID, &cat, decimal.NewFromInt(amount), testToday)
	if err != nil {
		panic(err)
	}
	return p
}

// ==================== Post ====================

func TestPaymentService_Post(t *testing.T) {
	ctx := context.Background()

	t.Run("applies to the open invoice of the earliest confirmed order", func(t *testing.T) {
		f := newLedgerFixture()
		older, newer := f.order(), f.order()
		target := f.invoice(older.ID, 1000, 500, 2)
		later := f.invoice(newer.ID, 800, 800, 3)
		p := f.draftPayment(300)

		f.payments.On("FindByIDForTenant", mock.Anything, f.tenantID, p.ID).Return(p, nil)
		f.orders.On("FindCreditExposure", mock.Anything, f.tenantID, f.customerID, f.categoryID, trade.CreditExposureStatuses()).
			Return([]trade.SalesOrder{older, newer}, nil)
		// Posting order puts the newer order's invoice first.
		f.invoices.On("FindPostedBySalesOrders", mock.Anything, f.tenantID, []uuid.UUID{older.ID, newer.ID}).
			Return([]finance.Invoice{later, target}, nil)
		locked := target
		f.invoices.On("FindByIDForUpdate", mock.Anything, f.tenantID, target.ID).Return(&locked, nil)
		f.invoices.On("SaveWithLock", mock.Anything, &locked).Return(nil)
		f.payments.On("SaveWithLock", mock.Anything, p).Return(nil)

		resp, err := f.svc.Post(ctx, f.tenantID, p.ID)

		require.NoError(t, err)
		assert.Equal(t, "POSTED", resp.Status)
		assert.Equal(t, target.ID, *resp.AppliedInvoiceID)
		assert.True(t, resp.AppliedAmount.Equal(decimal.NewFromInt(300)))
		assert.True(t, locked.AmountResidual.Equal(decimal.NewFromInt(200)))
		assert.Equal(t, 1, f.locker.count(invoiceLockKey(f.tenantID, target.ID)))
		assert.Equal(t, []string{finance.EventTypeInvoiceResidualChanged, finance.EventTypePaymentPosted}, f.publisher.types())
	})

	t.Run("skips fully paid invoices", func(t *testing.T) {
		f := newLedgerFixture()
		o := f.order()
		paid := f.invoice(o.ID, 1000, 0, 2)
		open := f.invoice(o.ID, 400, 400, 1)
		p := f.draftPayment(100)

		f.payments.On("FindByIDForTenant", mock.Anything, f.tenantID, p.ID).Return(p, nil)
		f.orders.On("FindCreditExposure", mock.Anything, f.tenantID, f.customerID, f.categoryID, mock.Anything).
			Return([]trade.SalesOrder{o}, nil)
		f.invoices.On("FindPostedBySalesOrders", mock.Anything, f.tenantID, mock.Anything).Return([]finance.Invoice{paid, open}, nil)
		locked := open
		f.invoices.On("FindByIDForUpdate", mock.Anything, f.tenantID, open.ID).Return(&locked, nil)
		f.invoices.On("SaveWithLock", mock.Anything, &locked).Return(nil)
		f.payments.On("SaveWithLock", mock.Anything, p).Return(nil)

		resp, err := f.svc.Post(ctx, f.tenantID, p.ID)

		require.NoError(t, err)
		assert.Equal(t, open.ID, *resp.AppliedInvoiceID)
	})

	t.Run("applies at most the residual", func(t *testing.T) {
		f := newLedgerFixture()
		o := f.order()
		open := f.invoice(o.ID, 1000, 250, 1)
		p := f.draftPayment(400)

		f.payments.On("FindByIDForTenant", mock.Anything, f.tenantID, p.ID).Return(p, nil)
		f.orders.On("FindCreditExposure", mock.Anything, f.tenantID, f.customerID, f.categoryID, mock.Anything).
			Return([]trade.SalesOrder{o}, nil)
		f.invoices.On("FindPostedBySalesOrders", mock.Anything, f.tenantID, mock.Anything).Return([]finance.Invoice{open}, nil)
		locked := open
		f.invoices.On("FindByIDForUpdate", mock.Anything, f.tenantID, open.ID).Return(&locked, nil)
		f.invoices.On("SaveWithLock", mock.Anything, &locked).Return(nil)
		f.payments.On("SaveWithLock", mock.Anything, p).Return(nil)

		resp, err := f.svc.Post(ctx, f.tenantID, p.ID)

		require.NoError(t, err)
		assert.True(t, resp.AppliedAmount.Equal(decimal.NewFromInt(250)))
		assert.True(t, locked.AmountResidual.IsZero())
		assert.Equal(t, finance.PaymentStatePaid, locked.PaymentState())
	})

	t.Run("invoice changed after selection is a consistency error", func(t *testing.T) {
		f := newLedgerFixture()
		o := f.order()
		open := f.invoice(o.ID, 1000, 600, 4)
		p := f.draftPayment(100)

		f.payments.On("FindByIDForTenant", mock.Anything, f.tenantID, p.ID).Return(p, nil)
		f.orders.On("FindCreditExposure", mock.Anything, f.tenantID, f.customerID, f.categoryID, mock.Anything).
			Return([]trade.SalesOrder{o}, nil)
		f.invoices.On("FindPostedBySalesOrders", mock.Anything, f.tenantID, mock.Anything).Return([]finance.Invoice{open}, nil)
		moved := open
		moved.Version = 5
		f.invoices.On("FindByIDForUpdate", mock.Anything, f.tenantID, open.ID).Return(&moved, nil)

		_, err := f.svc.Post(ctx, f.tenantID, p.ID)

		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, shared.CodeConsistency))
		f.invoices.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		f.payments.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.events)
	})

	t.Run("corrupt residual is refused", func(t *testing.T) {
		f := newLedgerFixture()
		o := f.order()
		broken := f.invoice(o.ID, 1000, 1200, 1)
		p := f.draftPayment(100)

		f.payments.On("FindByIDForTenant", mock.Anything, f.tenantID, p.ID).Return(p, nil)
		f.orders.On("FindCreditExposure", mock.Anything, f.tenantID, f.customerID, f.categoryID, mock.Anything).
			Return([]trade.SalesOrder{o}, nil)
		f.invoices.On("FindPostedBySalesOrders", mock.Anything, f.tenantID, mock.Anything).Return([]finance.Invoice{broken}, nil)
		locked := broken
		f.invoices.On("FindByIDForUpdate", mock.Anything, f.tenantID, broken.ID).Return(&locked, nil)

		_, err := f.svc.Post(ctx, f.tenantID, p.ID)

		assert.True(t, shared.IsDomainError(err, shared.CodeConsistency))
		f.invoices.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("no open invoice posts without applying", func(t *testing.T) {
		f := newLedgerFixture()
		p := f.draftPayment(100)

		f.payments.On("FindByIDForTenant", mock.Anything, f.tenantID, p.ID).Return(p, nil)
		f.orders.On("FindCreditExposure", mock.Anything, f.tenantID, f.customerID, f.categoryID, mock.Anything).
			Return([]trade.SalesOrder{}, nil)
		f.payments.On("SaveWithLock", mock.Anything, p).Return(nil)

		resp, err := f.svc.Post(ctx, f.tenantID, p.ID)

		require.NoError(t, err)
		assert.Nil(t, resp.AppliedInvoiceID)
		assert.Equal(t, []string{finance.EventTypePaymentPosted}, f.publisher.types())
	})

	t.Run("supplier payment never looks for invoices", func(t *testing.T) {
		f := newLedgerFixture()
		cat := f.categoryID
		p, err := finance.NewPayment(f.tenantID, "OUT/1", finance.PartnerTypeSupplier, f.customerID, &cat, decimal.NewFromInt(100), testToday)
		require.NoError(t, err)

		f.payments.On("FindByIDForTenant", mock.Anything, f.tenantID, p.ID).Return(p, nil)
		f.payments.On("SaveWithLock", mock.Anything, p).Return(nil)

		_, err = f.svc.Post(ctx, f.tenantID, p.ID)

		require.NoError(t, err)
		f.orders.AssertNotCalled(t, "FindCreditExposure", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

// ==================== Cancel ====================

func TestPaymentService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("restores the applied amount on the same invoice", func(t *testing.T) {
		f := newLedgerFixture()
		o := f.order()
		inv := f.invoice(o.ID, 1000, 700, 2)
		p := f.draftPayment(300)
		require.NoError(t, p.Post())
		require.NoError(t, p.RecordApplication(inv.ID, decimal.NewFromInt(300)))
		p.ClearDomainEvents()

		f.payments.On("FindByIDForTenant", mock.Anything, f.tenantID, p.ID).Return(p, nil)
		f.invoices.On("FindByIDForUpdate", mock.Anything, f.tenantID, inv.ID).Return(&inv, nil)
		f.invoices.On("SaveWithLock", mock.Anything, &inv).Return(nil)
		f.payments.On("SaveWithLock", mock.Anything, p).Return(nil)

		resp, err := f.svc.Cancel(ctx, f.tenantID, p.ID)

		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)
		assert.True(t, inv.AmountResidual.Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, 1, f.locker.count(invoiceLockKey(f.tenantID, inv.ID)))
		assert.Equal(t, []string{finance.EventTypeInvoiceResidualChanged, finance.EventTypePaymentCancelled}, f.publisher.types())
	})

	t.Run("restoring past the total is a consistency error", func(t *testing.T) {
		f := newLedgerFixture()
		o := f.order()
		inv := f.invoice(o.ID, 1000, 900, 2)
		p := f.draftPayment(300)
		require.NoError(t, p.Post())
		require.NoError(t, p.RecordApplication(inv.ID, decimal.NewFromInt(300)))

		f.payments.On("FindByIDForTenant", mock.Anything, f.tenantID, p.ID).Return(p, nil)
		f.invoices.On("FindByIDForUpdate", mock.Anything, f.tenantID, inv.ID).Return(&inv, nil)

		_, err := f.svc.Cancel(ctx, f.tenantID, p.ID)

		assert.True(t, shared.IsDomainError(err, shared.CodeConsistency))
		assert.True(t, inv.AmountResidual.Equal(decimal.NewFromInt(900)))
		f.payments.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("draft payment cancels quietly", func(t *testing.T) {
		f := newLedgerFixture()
		p := f.draftPayment(300)
		f.payments.On("FindByIDForTenant", mock.Anything, f.tenantID, p.ID).Return(p, nil)
		f.payments.On("SaveWithLock", mock.Anything, p).Return(nil)

		_, err := f.svc.Cancel(ctx, f.tenantID, p.ID)

		require.NoError(t, err)
		assert.Empty(t, f.publisher.events)
	})
}

// ==================== Create ====================

func TestPaymentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown customer", func(t *testing.T) {
		f := newLedgerFixture()
		f.customers.On("FindByIDForTenant", mock.Anything, f.tenantID, f.customerID).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Create(ctx, f.tenantID, CreatePaymentInput{
			Reference:  "PAY/1",
			CustomerID: f.customerID,
			Amount:     decimal.NewFromInt(10),
		})

		assert.ErrorIs(t, err, shared.ErrNotFound)
		f.payments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("duplicate reference", func(t *testing.T) {
		f := newLedgerFixture()
		f.customers.On("FindByIDForTenant", mock.Anything, f.tenantID, f.customerID).Return(&partner.Customer{}, nil)
		f.payments.On("ExistsByReference", mock.Anything, f.tenantID, "PAY/1").Return(true, nil)

		_, err := f.svc.Create(ctx, f.tenantID, CreatePaymentInput{
			Reference:  "PAY/1",
			CustomerID: f.customerID,
			Amount:     decimal.NewFromInt(10),
		})

		assert.True(t, shared.IsDomainError(err, shared.CodeAlreadyExists))
	})

	t.Run("defaults to a customer payment dated today", func(t *testing.T) {
		f := newLedgerFixture()
		cat := f.categoryID
		f.customers.On("FindByIDForTenant", mock.Anything, f.tenantID, f.customerID).Return(&partner.Customer{}, nil)
		f.payments.On("ExistsByReference", mock.Anything, f.tenantID, "PAY/2").Return(false, nil)
		f.payments.On("Save", mock.Anything, mock.AnythingOfType("*finance.Payment")).Return(nil)

		resp, err := f.svc.Create(ctx, f.tenantID, CreatePaymentInput{
			Reference:         "PAY/2",
			CustomerID:        f.customerID,
			ProductCategoryID: &cat,
			Amount:            decimal.NewFromInt(10),
		})

		require.NoError(t, err)
		assert.Equal(t, "customer", resp.PartnerType)
		assert.Equal(t, "DRAFT", resp.Status)
		assert.Equal(t, testToday, resp.PaymentDate)
	})
}

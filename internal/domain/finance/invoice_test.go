package finance

import (
	"testing"
	"time"

	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a posted invoice for testing
func createPostedInvoice(t *testing.T, amount float64, due time.Time) *Invoice {
	t.Helper()
	inv, err := NewInvoice(uuid.New(), "INV/2024/0001", MoveTypeCustomerInvoice, uuid.New(), "Green Fields Agro",
		decimal.NewFromFloat(amount), due.AddDate(0, 0, -30))
	require.NoError(t, err)
	require.NoError(t, inv.SetDueDate(&due))
	require.NoError(t, inv.Post())
	inv.ClearDomainEvents()
	return inv
}

// ==================== Status Tests ====================

func TestInvoiceStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from   InvoiceStatus
		to     InvoiceStatus
		expect bool
	}{
		{InvoiceStatusDraft, InvoiceStatusPosted, true},
		{InvoiceStatusDraft, InvoiceStatusCancelled, true},
		{InvoiceStatusPosted, InvoiceStatusCancelled, true},
		{InvoiceStatusPosted, InvoiceStatusDraft, false},
		{InvoiceStatusCancelled, InvoiceStatusPosted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// ==================== Creation Tests ====================

func TestNewInvoice(t *testing.T) {
	tenantID := uuid.New()
	customerID := uuid.New()
	today := time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)

	t.Run("creates draft invoice", func(t *testing.T) {
		inv, err := NewInvoice(tenantID, "INV/1", MoveTypeCustomerInvoice, customerID, "Agro", decimal.NewFromInt(1000), today)

		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.True(t, inv.AmountResidual.Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), inv.InvoiceDate)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewInvoice(tenantID, "INV/1", MoveTypeCustomerInvoice, customerID, "Agro", decimal.Zero, today)
		assert.Error(t, err)
	})

	t.Run("rejects unknown move type", func(t *testing.T) {
		_, err := NewInvoice(tenantID, "INV/1", MoveType("entry"), customerID, "Agro", decimal.NewFromInt(1), today)
		assert.Error(t, err)
	})

	t.Run("rejects missing customer", func(t *testing.T) {
		_, err := NewInvoice(tenantID, "INV/1", MoveTypeCustomerInvoice, uuid.Nil, "Agro", decimal.NewFromInt(1), today)
		assert.Error(t, err)
	})
}

func TestInvoice_AttachOrigin(t *testing.T) {
	inv, err := NewInvoice(uuid.New(), "INV/1", MoveTypeCustomerInvoice, uuid.New(), "Agro", decimal.NewFromInt(100), time.Now())
	require.NoError(t, err)

	orderID := uuid.New()
	categoryID := uuid.New()
	require.NoError(t, inv.AttachOrigin(orderID, "SO0001", &categoryID))

	assert.Equal(t, orderID, *inv.SalesOrderID)
	assert.Equal(t, "SO0001", inv.InvoiceOrigin)
	assert.Equal(t, categoryID, *inv.ProductCategoryID)
}

// ==================== Posting Tests ====================

func TestInvoice_Post(t *testing.T) {
	t.Run("emits posted event", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), "INV/1", MoveTypeCustomerInvoice, uuid.New(), "Agro", decimal.NewFromInt(100), time.Now())
		require.NoError(t, err)
		due := time.Now().AddDate(0, 0, 30)
		require.NoError(t, inv.SetDueDate(&due))

		require.NoError(t, inv.Post())

		assert.True(t, inv.IsPosted())
		assert.NotNil(t, inv.PostedAt)
		events := inv.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeInvoicePosted, events[0].EventType())
	})

	t.Run("requires a due date", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), "INV/1", MoveTypeCustomerInvoice, uuid.New(), "Agro", decimal.NewFromInt(100), time.Now())
		require.NoError(t, err)

		err = inv.Post()

		assert.True(t, shared.IsDomainError(err, shared.CodeInvalidInput))
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
	})

	t.Run("cannot post twice", func(t *testing.T) {
		inv := createPostedInvoice(t, 100, time.Now())
		assert.Error(t, inv.Post())
	})
}

func TestInvoice_Cancel(t *testing.T) {
	t.Run("posted invoice emits cancelled event", func(t *testing.T) {
		inv := createPostedInvoice(t, 100, time.Now())

		require.NoError(t, inv.Cancel())

		assert.Equal(t, InvoiceStatusCancelled, inv.Status)
		assert.False(t, inv.IsOpen())
		require.Len(t, inv.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeInvoiceCancelled, inv.GetDomainEvents()[0].EventType())
	})

	t.Run("applied residual blocks the cancel", func(t *testing.T) {
		inv := createPostedInvoice(t, 500, time.Now())
		_, err := inv.ReduceResidual(decimal.NewFromInt(200), ResidualSourcePayment)
		require.NoError(t, err)
		inv.ClearDomainEvents()

		err = inv.Cancel()

		assert.True(t, shared.IsDomainError(err, shared.CodeInvalidState))
		assert.Equal(t, InvoiceStatusPosted, inv.Status)
		assert.Empty(t, inv.GetDomainEvents())

		require.NoError(t, inv.RestoreResidual(decimal.NewFromInt(200), ResidualSourcePaymentCancel))
		assert.NoError(t, inv.Cancel())
	})

	t.Run("draft invoice cancels quietly", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), "INV/1", MoveTypeCustomerInvoice, uuid.New(), "Agro", decimal.NewFromInt(100), time.Now())
		require.NoError(t, err)

		require.NoError(t, inv.Cancel())
		assert.Empty(t, inv.GetDomainEvents())
	})
}

// ==================== Residual Tests ====================

func TestInvoice_ReduceResidual(t *testing.T) {
	t.Run("applies the full amount when it fits", func(t *testing.T) {
		inv := createPostedInvoice(t, 1000, time.Now())

		applied, err := inv.ReduceResidual(decimal.NewFromInt(400), ResidualSourcePayment)

		require.NoError(t, err)
		assert.True(t, applied.Equal(decimal.NewFromInt(400)))
		assert.True(t, inv.AmountResidual.Equal(decimal.NewFromInt(600)))
		assert.Equal(t, PaymentStatePartial, inv.PaymentState())

		events := inv.GetDomainEvents()
		require.Len(t, events, 1)
		changed := events[0].(*InvoiceResidualChangedEvent)
		assert.True(t, changed.OldResidual.Equal(decimal.NewFromInt(1000)))
		assert.True(t, changed.NewResidual.Equal(decimal.NewFromInt(600)))
		assert.Equal(t, ResidualSourcePayment, changed.Source)
	})

	t.Run("caps at the residual", func(t *testing.T) {
		inv := createPostedInvoice(t, 1000, time.Now())

		applied, err := inv.ReduceResidual(decimal.NewFromInt(1500), ResidualSourcePayment)

		require.NoError(t, err)
		assert.True(t, applied.Equal(decimal.NewFromInt(1000)))
		assert.True(t, inv.AmountResidual.IsZero())
		assert.Equal(t, PaymentStatePaid, inv.PaymentState())
		assert.False(t, inv.IsOpen())
	})

	t.Run("no-op on a paid invoice", func(t *testing.T) {
		inv := createPostedInvoice(t, 100, time.Now())
		_, err := inv.ReduceResidual(decimal.NewFromInt(100), ResidualSourcePayment)
		require.NoError(t, err)
		inv.ClearDomainEvents()

		applied, err := inv.ReduceResidual(decimal.NewFromInt(10), ResidualSourcePayment)

		require.NoError(t, err)
		assert.True(t, applied.IsZero())
		assert.Empty(t, inv.GetDomainEvents())
	})

	t.Run("rejects draft invoice", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), "INV/1", MoveTypeCustomerInvoice, uuid.New(), "Agro", decimal.NewFromInt(100), time.Now())
		require.NoError(t, err)

		_, err = inv.ReduceResidual(decimal.NewFromInt(10), ResidualSourcePayment)
		assert.Error(t, err)
	})

	t.Run("reports out of range residual as consistency error", func(t *testing.T) {
		inv := createPostedInvoice(t, 100, time.Now())
		inv.AmountResidual = decimal.NewFromInt(-5)

		_, err := inv.ReduceResidual(decimal.NewFromInt(10), ResidualSourcePayment)
		assert.True(t, shared.IsDomainError(err, shared.CodeConsistency))
	})
}

func TestInvoice_RestoreResidual(t *testing.T) {
	t.Run("apply then restore yields the original residual", func(t *testing.T) {
		inv := createPostedInvoice(t, 1000, time.Now())
		_, err := inv.ReduceResidual(decimal.NewFromInt(300), ResidualSourcePayment)
		require.NoError(t, err)
		before := inv.AmountResidual

		applied, err := inv.ReduceResidual(decimal.NewFromInt(200), ResidualSourcePayment)
		require.NoError(t, err)
		require.NoError(t, inv.RestoreResidual(applied, ResidualSourcePaymentCancel))

		assert.True(t, inv.AmountResidual.Equal(before))
	})

	t.Run("restoring beyond total is a consistency error", func(t *testing.T) {
		inv := createPostedInvoice(t, 1000, time.Now())
		err := inv.RestoreResidual(decimal.NewFromInt(1), ResidualSourcePaymentCancel)

		assert.True(t, shared.IsDomainError(err, shared.CodeConsistency))
		assert.True(t, inv.AmountResidual.Equal(decimal.NewFromInt(1000)))
		assert.Empty(t, inv.GetDomainEvents())
	})
}

func TestInvoice_DaysOverdue(t *testing.T) {
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	inv := createPostedInvoice(t, 100, due)

	assert.Equal(t, 0, inv.DaysOverdue(due.AddDate(0, 0, -3)))
	assert.Equal(t, 0, inv.DaysOverdue(due))
	assert.Equal(t, 10, inv.DaysOverdue(due.AddDate(0, 0, 10).Add(18*time.Hour)))

	inv.DueDate = nil
	assert.Equal(t, 0, inv.DaysOverdue(due.AddDate(0, 0, 10)))
}

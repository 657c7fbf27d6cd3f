package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var agingToday = time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

func overdueInvoice(t *testing.T, residual int64, daysOverdue int) Invoice {
	t.Helper()
	inv := createPostedInvoice(t, float64(residual), agingToday.AddDate(0, 0, -daysOverdue))
	return *inv
}

func TestComputeAging(t *testing.T) {
	t.Run("empty ledger", func(t *testing.T) {
		p := ComputeAging(nil, agingToday)

		assert.True(t, p.TotalOverdue.IsZero())
		assert.False(t, p.HasOverdue())
		assert.False(t, p.BypassEligible)
		assert.Equal(t, 0, p.OldestDaysOverdue)
	})

	t.Run("10 days counts in 1-30, 45 days does not", func(t *testing.T) {
		p := ComputeAging([]Invoice{
			overdueInvoice(t, 100, 10),
			overdueInvoice(t, 500, 45),
		}, agingToday)

		assert.True(t, p.Overdue1To30.Equal(decimal.NewFromInt(100)))
		assert.True(t, p.Overdue1To60.Equal(decimal.NewFromInt(600)))
		assert.True(t, p.TotalOverdue.Equal(decimal.NewFromInt(600)))
		assert.Equal(t, 45, p.OldestDaysOverdue)
		assert.Equal(t, 2, p.OverdueInvoices)
	})

	t.Run("not yet due and due today are ignored", func(t *testing.T) {
		p := ComputeAging([]Invoice{
			overdueInvoice(t, 100, -5),
			overdueInvoice(t, 100, 0),
		}, agingToday)

		assert.False(t, p.HasOverdue())
	})

	t.Run("beyond 60 days counts only in total", func(t *testing.T) {
		p := ComputeAging([]Invoice{overdueInvoice(t, 700, 90)}, agingToday)

		assert.True(t, p.TotalOverdue.Equal(decimal.NewFromInt(700)))
		assert.True(t, p.Overdue1To60.IsZero())
		assert.True(t, p.Overdue1To30.IsZero())
	})

	t.Run("skips closed and unposted invoices", func(t *testing.T) {
		paid := overdueInvoice(t, 100, 5)
		_, err := paid.ReduceResidual(decimal.NewFromInt(100), ResidualSourcePayment)
		require.NoError(t, err)

		draft, err := NewInvoice(uuid.New(), "INV/9", MoveTypeCustomerInvoice, uuid.New(), "Agro", decimal.NewFromInt(50), agingToday)
		require.NoError(t, err)
		due := agingToday.AddDate(0, 0, -5)
		draft.DueDate = &due

		refund := overdueInvoice(t, 80, 5)
		refund.MoveType = MoveTypeCustomerRefund

		p := ComputeAging([]Invoice{paid, *draft, refund}, agingToday)
		assert.False(t, p.HasOverdue())
	})
}

func TestComputeAging_BypassEligible(t *testing.T) {
	tests := []struct {
		name   string
		days   []int
		expect bool
	}{
		{"single invoice at 35 days", []int{35}, false},
		{"single invoice at 31 days", []int{31}, true},
		{"single invoice at 1 day", []int{1}, true},
		{"31 and 32 days", []int{31, 32}, false},
		{"10 and 20 days", []int{10, 20}, true},
		{"nothing overdue", []int{}, false},
		{"only future", []int{-3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoices := make([]Invoice, 0, len(tt.days))
			for _, d := range tt.days {
				invoices = append(invoices, overdueInvoice(t, 100, d))
			}

			assert.Equal(t, tt.expect, ComputeAging(invoices, agingToday).BypassEligible)
		})
	}
}

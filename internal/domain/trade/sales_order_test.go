package trade

import (
	"testing"

	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a draft order with header fields set
func createReadyOrder(t *testing.T) *SalesOrder {
	t.Helper()
	order, err := NewSalesOrder(uuid.New(), "SO0001", uuid.New(), "Green Fields Agro")
	require.NoError(t, err)

	bu := uuid.New()
	require.NoError(t, order.SetBusinessUnit(&bu))
	cat := uuid.New()
	require.NoError(t, order.SetProductCategory(&cat, StashSlotFertilizer))
	term := uuid.New()
	require.NoError(t, order.SetPaymentTerm(&term))
	order.ClearDomainEvents()
	return order
}

// Helper function to create an order with one line
func createOrderWithLine(t *testing.T, qty, price int64) *SalesOrder {
	t.Helper()
	order := createReadyOrder(t)
	_, err := order.AddItem(uuid.New(), "Urea 50kg", decimal.NewFromInt(qty), decimal.NewFromInt(price))
	require.NoError(t, err)
	return order
}

// ==================== Creation Tests ====================

func TestNewSalesOrder(t *testing.T) {
	t.Run("creates draft order", func(t *testing.T) {
		order, err := NewSalesOrder(uuid.New(), "SO0001", uuid.New(), "Agro")

		require.NoError(t, err)
		assert.Equal(t, OrderStatusDraft, order.Status)
		assert.False(t, order.Approval.CreditChecked)
		require.Len(t, order.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeSalesOrderCreated, order.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects missing customer", func(t *testing.T) {
		_, err := NewSalesOrder(uuid.New(), "SO0001", uuid.Nil, "Agro")
		assert.Error(t, err)
	})

	t.Run("rejects empty number", func(t *testing.T) {
		_, err := NewSalesOrder(uuid.New(), "", uuid.New(), "Agro")
		assert.Error(t, err)
	})
}

func TestOrderStatus_Transitions(t *testing.T) {
	assert.True(t, OrderStatusDraft.CanTransitionTo(OrderStatusConfirmed))
	assert.True(t, OrderStatusConfirmed.CanTransitionTo(OrderStatusDone))
	assert.True(t, OrderStatusConfirmed.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatusDone.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatusCancelled.CanTransitionTo(OrderStatusDraft))

	assert.True(t, OrderStatusConfirmed.IsCreditExposure())
	assert.True(t, OrderStatusDone.IsCreditExposure())
	assert.False(t, OrderStatusDraft.IsCreditExposure())
}

// ==================== Line Tests ====================

func TestSalesOrder_AddItem_RequiredFields(t *testing.T) {
	order, err := NewSalesOrder(uuid.New(), "SO0001", uuid.New(), "Agro")
	require.NoError(t, err)

	_, err = order.AddItem(uuid.New(), "Urea", decimal.NewFromInt(1), decimal.NewFromInt(10))

	require.Error(t, err)
	assert.Equal(t,
		"Please fill the following required fields before adding products:\n\n• Business Unit\n• Product Category\n• Payment Terms",
		err.(*shared.DomainError).Message)
}

func TestSalesOrder_AddItem(t *testing.T) {
	order := createReadyOrder(t)

	item, err := order.AddItem(uuid.New(), "Urea", decimal.NewFromInt(10), decimal.NewFromInt(250))

	require.NoError(t, err)
	assert.True(t, item.Amount.Equal(decimal.NewFromInt(2500)))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(2500)))
	assert.NotEmpty(t, order.Stash.Fertilizer, "saving lines refreshes the current stash")

	_, err = order.AddItem(item.ProductID, "Urea", decimal.NewFromInt(1), decimal.NewFromInt(1))
	assert.Error(t, err, "duplicate product")
}

func TestSalesOrder_UpdateAndRemoveItem(t *testing.T) {
	order := createOrderWithLine(t, 10, 100)
	itemID := order.Items[0].ID

	require.NoError(t, order.UpdateItem(itemID, decimal.NewFromInt(5), decimal.NewFromInt(120)))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(600)))

	assert.Error(t, order.UpdateItem(uuid.New(), decimal.NewFromInt(1), decimal.NewFromInt(1)))

	require.NoError(t, order.RemoveItem(itemID))
	assert.True(t, order.TotalAmount.IsZero())
	assert.Error(t, order.RemoveItem(itemID))
}

// ==================== Approval Reset Tests ====================

func TestSalesOrder_ChangesResetApproval(t *testing.T) {
	checked := func(t *testing.T) *SalesOrder {
		order := createOrderWithLine(t, 10, 100)
		require.NoError(t, order.RecordCreditCheck(CreditCheckOutcome{Exceeded: true, HasOverdue: true, OverdueAmount: decimal.NewFromInt(500)}))
		order.Approval.CreditOverrideApproved = true
		order.Approval.OverdueCheckApproved = true
		return order
	}

	tests := []struct {
		name   string
		change func(t *testing.T, o *SalesOrder)
	}{
		{"customer", func(t *testing.T, o *SalesOrder) {
			require.NoError(t, o.SetCustomer(uuid.New(), "Other"))
		}},
		{"business unit", func(t *testing.T, o *SalesOrder) {
			bu := uuid.New()
			require.NoError(t, o.SetBusinessUnit(&bu))
		}},
		{"category", func(t *testing.T, o *SalesOrder) {
			cat := uuid.New()
			require.NoError(t, o.SetProductCategory(&cat, StashSlotSND))
		}},
		{"add line", func(t *testing.T, o *SalesOrder) {
			_, err := o.AddItem(uuid.New(), "DAP", decimal.NewFromInt(1), decimal.NewFromInt(1))
			require.NoError(t, err)
		}},
		{"update line", func(t *testing.T, o *SalesOrder) {
			require.NoError(t, o.UpdateItem(o.Items[0].ID, decimal.NewFromInt(2), decimal.NewFromInt(100)))
		}},
		{"remove line", func(t *testing.T, o *SalesOrder) {
			require.NoError(t, o.RemoveItem(o.Items[0].ID))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := checked(t)

			tt.change(t, order)

			assert.False(t, order.Approval.CreditChecked)
			assert.False(t, order.Approval.CreditExceeded)
			assert.False(t, order.Approval.CreditOverrideApproved)
			assert.False(t, order.Approval.HasOverdue)
			assert.False(t, order.Approval.OverdueCheckApproved)
		})
	}
}

func TestSalesOrder_PaymentTermDoesNotReset(t *testing.T) {
	order := createOrderWithLine(t, 1, 100)
	require.NoError(t, order.RecordCreditCheck(CreditCheckOutcome{}))

	term := uuid.New()
	require.NoError(t, order.SetPaymentTerm(&term))

	assert.True(t, order.Approval.CreditChecked)
}

func TestSalesOrder_SetBusinessUnit_ClearsCategory(t *testing.T) {
	order := createReadyOrder(t)
	bu := uuid.New()

	require.NoError(t, order.SetBusinessUnit(&bu))

	assert.Nil(t, order.ProductCategoryID)
	assert.Empty(t, order.CategorySlot)
}

func TestSalesOrder_SetProductCategory_RequiresBusinessUnit(t *testing.T) {
	order, err := NewSalesOrder(uuid.New(), "SO0001", uuid.New(), "Agro")
	require.NoError(t, err)
	cat := uuid.New()

	assert.Error(t, order.SetProductCategory(&cat, StashSlotSND))
}

// ==================== Line Stash Tests ====================

func TestSalesOrder_CategorySwitchStashesLines(t *testing.T) {
	order := createReadyOrder(t)
	fertCat := *order.ProductCategoryID
	urea := uuid.New()
	_, err := order.AddItem(urea, "Urea", decimal.NewFromInt(10), decimal.NewFromInt(250))
	require.NoError(t, err)

	sndCat := uuid.New()
	require.NoError(t, order.SetProductCategory(&sndCat, StashSlotSND))
	assert.Empty(t, order.Items, "lines are cleared on switch")
	assert.True(t, order.TotalAmount.IsZero())

	_, err = order.AddItem(uuid.New(), "Seeds", decimal.NewFromInt(2), decimal.NewFromInt(50))
	require.NoError(t, err)

	require.NoError(t, order.SetProductCategory(&fertCat, StashSlotFertilizer))
	require.Len(t, order.Items, 1)
	assert.Equal(t, urea, order.Items[0].ProductID)
	assert.Equal(t, "Urea", order.Items[0].ProductName)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(2500)))

	snd, err := order.Stash.Lines(StashSlotSND)
	require.NoError(t, err)
	require.Len(t, snd, 1)
	assert.Equal(t, "Seeds", snd[0].Name)
}

func TestLineStash(t *testing.T) {
	var s LineStash

	require.NoError(t, s.Put("other", []SalesOrderItem{{ProductName: "X"}}))
	assert.Empty(t, s.SND)
	assert.Empty(t, s.Fertilizer)

	lines, err := s.Lines(StashSlotSND)
	require.NoError(t, err)
	assert.Empty(t, lines)

	s.SND = "{not json"
	_, err = s.Lines(StashSlotSND)
	assert.True(t, shared.IsDomainError(err, shared.CodeConsistency))
}

package credit

import (
	"context"
	"testing"

	"github.com/erp/credit/internal/domain/credit"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/erp/credit/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCreditLineFixture() (*usageFixture, *CreditLineService, *recordingPublisher) {
	f := newUsageFixture()
	svc := NewCreditLineService(f.lines, f.svc, nil, nil)
	pub := &recordingPublisher{}
	svc.SetEventPublisher(pub)
	return f, svc, pub
}

func (f *usageFixture) expectEmptyLedger() {
	f.orders.On("FindCreditExposure", mock.Anything, f.tenantID, f.customerID, mock.Anything, mock.Anything).
		Return([]trade.SalesOrder{}, nil)
}

// ==================== Create ====================

func TestCreditLineService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and computes the initial snapshot", func(t *testing.T) {
		f, svc, pub := newCreditLineFixture()
		f.lines.On("ExistsForPair", mock.Anything, f.tenantID, f.customerID, f.categoryID, uuid.Nil).Return(false, nil)
		f.lines.On("Save", mock.Anything, mock.AnythingOfType("*credit.CreditLine")).Return(nil)
		f.lines.On("FindByCustomerAndCategory", mock.Anything, f.tenantID, f.customerID, f.categoryID).
			Return(f.line("25000"), nil)
		f.expectEmptyLedger()
		f.lines.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

		resp, err := svc.Create(ctx, f.tenantID, CreateCreditLineInput{
			CustomerID:        f.customerID,
			ProductCategoryID: f.categoryID,
			CreditLimit:       decimal.NewFromInt(25000),
		})

		require.NoError(t, err)
		assert.True(t, resp.CreditLimit.Equal(decimal.NewFromInt(25000)))
		assert.Equal(t, "25,000.00", resp.CreditRemainingDisplay)
		assert.NotNil(t, resp.ComputedAt)
		require.Len(t, pub.events, 1)
		assert.Equal(t, credit.EventTypeCreditLineCreated, pub.events[0].EventType())
	})

	t.Run("duplicate pair is rejected", func(t *testing.T) {
		f, svc, _ := newCreditLineFixture()
		f.lines.On("ExistsForPair", mock.Anything, f.tenantID, f.customerID, f.categoryID, uuid.Nil).Return(true, nil)

		resp, err := svc.Create(ctx, f.tenantID, CreateCreditLineInput{
			CustomerID:        f.customerID,
			ProductCategoryID: f.categoryID,
			CreditLimit:       decimal.NewFromInt(100),
		})

		assert.Nil(t, resp)
		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, shared.CodeAlreadyExists))
		assert.Equal(t, credit.MsgDuplicateLine, err.Error())
		f.lines.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("negative limit is rejected before touching storage", func(t *testing.T) {
		f, svc, _ := newCreditLineFixture()

		_, err := svc.Create(ctx, f.tenantID, CreateCreditLineInput{
			CustomerID:        f.customerID,
			ProductCategoryID: f.categoryID,
			CreditLimit:       decimal.NewFromInt(-1),
		})

		require.Error(t, err)
		assert.Equal(t, credit.MsgNegativeLimit, err.Error())
		f.lines.AssertNotCalled(t, "ExistsForPair", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("infinite line drops the entered limit", func(t *testing.T) {
		f, svc, _ := newCreditLineFixture()
		infinite, err := credit.NewCreditLine(f.tenantID, f.customerID, f.categoryID, decimal.Zero, true)
		require.NoError(t, err)

		f.lines.On("ExistsForPair", mock.Anything, f.tenantID, f.customerID, f.categoryID, uuid.Nil).Return(false, nil)
		f.lines.On("Save", mock.Anything, mock.MatchedBy(func(l *credit.CreditLine) bool {
			return l.IsInfiniteCredit && l.CreditLimit.IsZero()
		})).Return(nil)
		f.lines.On("FindByCustomerAndCategory", mock.Anything, f.tenantID, f.customerID, f.categoryID).Return(infinite, nil)
		f.expectEmptyLedger()
		f.lines.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

		resp, err := svc.Create(ctx, f.tenantID, CreateCreditLineInput{
			CustomerID:        f.customerID,
			ProductCategoryID: f.categoryID,
			CreditLimit:       decimal.NewFromInt(9999),
			IsInfiniteCredit:  true,
		})

		require.NoError(t, err)
		assert.True(t, resp.CreditLimit.IsZero())
		assert.True(t, resp.CreditRemaining.IsUnbounded())
		assert.Equal(t, credit.InfinitySymbol, resp.CreditRemainingDisplay)
	})
}

// ==================== Update ====================

func TestCreditLineService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("moving to a category that already has a line is rejected", func(t *testing.T) {
		f, svc, _ := newCreditLineFixture()
		line := f.line("100")
		target := uuid.New()
		f.lines.On("FindByIDForTenant", mock.Anything, f.tenantID, line.ID).Return(line, nil)
		f.lines.On("ExistsForPair", mock.Anything, f.tenantID, f.customerID, target, line.ID).Return(true, nil)

		_, err := svc.Update(ctx, f.tenantID, line.ID, UpdateCreditLineInput{
			ProductCategoryID: &target,
			CreditLimit:       decimal.NewFromInt(100),
		})

		require.Error(t, err)
		assert.Equal(t, credit.MsgDuplicateLine, err.Error())
		f.lines.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("raising the limit recomputes and invalidates nothing else", func(t *testing.T) {
		f, svc, pub := newCreditLineFixture()
		line := f.line("100")
		f.lines.On("FindByIDForTenant", mock.Anything, f.tenantID, line.ID).Return(line, nil)
		f.lines.On("SaveWithLock", mock.Anything, line).Return(nil)
		f.lines.On("FindByCustomerAndCategory", mock.Anything, f.tenantID, f.customerID, f.categoryID).Return(line, nil)
		f.expectEmptyLedger()

		resp, err := svc.Update(ctx, f.tenantID, line.ID, UpdateCreditLineInput{
			CreditLimit: decimal.NewFromInt(750),
		})

		require.NoError(t, err)
		assert.True(t, resp.CreditLimit.Equal(decimal.NewFromInt(750)))
		require.Len(t, pub.events, 1)
		assert.Equal(t, credit.EventTypeCreditLineUpdated, pub.events[0].EventType())
	})
}

// ==================== Delete ====================

func TestCreditLineService_Delete(t *testing.T) {
	ctx := context.Background()
	f, svc, pub := newCreditLineFixture()
	line := f.line("100")

	cached := &credit.Snapshot{TenantID: f.tenantID, CustomerID: f.customerID, ProductCategoryID: f.categoryID}
	require.NoError(t, f.cache.Set(ctx, cached))

	f.lines.On("FindByIDForTenant", mock.Anything, f.tenantID, line.ID).Return(line, nil)
	f.lines.On("DeleteForTenant", mock.Anything, f.tenantID, line.ID).Return(nil)

	require.NoError(t, svc.Delete(ctx, f.tenantID, line.ID))

	_, ok, _ := f.cache.Get(ctx, f.tenantID, f.customerID, f.categoryID)
	assert.False(t, ok)
	require.Len(t, pub.events, 1)
	assert.Equal(t, credit.EventTypeCreditLineDeleted, pub.events[0].EventType())
}

func TestCreditLineService_GetByID_ServesCachedSnapshot(t *testing.T) {
	ctx := context.Background()
	f, svc, _ := newCreditLineFixture()
	line := f.line("1000")
	require.NoError(t, f.cache.Set(ctx, credit.NewSnapshot(line, decimal.NewFromInt(1250), 3, fixedNow)))

	f.lines.On("FindByIDForTenant", mock.Anything, f.tenantID, line.ID).Return(line, nil)

	resp, err := svc.GetByID(ctx, f.tenantID, line.ID)

	require.NoError(t, err)
	assert.Equal(t, 3, resp.OrderCount)
	assert.True(t, resp.CreditRemaining.Value().Equal(decimal.NewFromInt(-250)))
	assert.Equal(t, "-250.00", resp.CreditRemainingDisplay)
}

func TestCreditLineService_GetByID_CacheMissDoesNotRecompute(t *testing.T) {
	ctx := context.Background()
	f, svc, pub := newCreditLineFixture()
	line := f.line("1000")
	require.NoError(t, line.RecordUsage(decimal.NewFromInt(400), 1, fixedNow))
	version := line.Version

	f.lines.On("FindByIDForTenant", mock.Anything, f.tenantID, line.ID).Return(line, nil)
	f.lines.On("FindByCustomerAndCategory", mock.Anything, f.tenantID, f.customerID, f.categoryID).Return(line, nil)

	resp, err := svc.GetByID(ctx, f.tenantID, line.ID)

	require.NoError(t, err)
	assert.True(t, resp.CreditUsed.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, "600.00", resp.CreditRemainingDisplay)
	assert.Equal(t, version, line.Version)
	f.lines.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "FindCreditExposure", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, pub.events)
}

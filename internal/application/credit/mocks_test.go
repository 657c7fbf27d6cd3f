package credit

import (
	"context"
	"sync"

	"github.com/erp/credit/internal/domain/credit"
	"github.com/erp/credit/internal/domain/finance"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/erp/credit/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCreditLineRepository is a mock implementation of CreditLineRepository
type MockCreditLineRepository struct {
	mock.Mock
}

func (m *MockCreditLineRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*credit.CreditLine, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credit.CreditLine), args.Error(1)
}

func (m *MockCreditLineRepository) FindByCustomerAndCategory(ctx context.Context, tenantID, customerID, categoryID uuid.UUID) (*credit.CreditLine, error) {
	args := m.Called(ctx, tenantID, customerID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credit.CreditLine), args.Error(1)
}

func (m *MockCreditLineRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]credit.CreditLine, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]credit.CreditLine), args.Error(1)
}

func (m *MockCreditLineRepository) ExistsForPair(ctx context.Context, tenantID, customerID, categoryID, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, customerID, categoryID, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCreditLineRepository) Save(ctx context.Context, line *credit.CreditLine) error {
	return m.Called(ctx, line).Error(0)
}

func (m *MockCreditLineRepository) SaveWithLock(ctx context.Context, line *credit.CreditLine) error {
	return m.Called(ctx, line).Error(0)
}

func (m *MockCreditLineRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockCreditLineRepository) DeleteByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockSalesOrderRepository is a mock implementation of SalesOrderRepository
type MockSalesOrderRepository struct {
	mock.Mock
}

func (m *MockSalesOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.SalesOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]trade.SalesOrder, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*trade.SalesOrder, error) {
	args := m.Called(ctx, tenantID, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]trade.SalesOrder, error) {
	args := m.Called(ctx, tenantID, customerID, filter)
	return args.Get(0).([]trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindCreditExposure(ctx context.Context, tenantID, customerID, categoryID uuid.UUID, statuses []trade.OrderStatus) ([]trade.SalesOrder, error) {
	args := m.Called(ctx, tenantID, customerID, categoryID, statuses)
	return args.Get(0).([]trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) Save(ctx context.Context, order *trade.SalesOrder) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockSalesOrderRepository) SaveWithLock(ctx context.Context, order *trade.SalesOrder) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockSalesOrderRepository) ExistsByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (bool, error) {
	args := m.Called(ctx, tenantID, orderNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockSalesOrderRepository) GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// MockInvoiceRepository is a mock implementation of InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]finance.Invoice, error) {
	args := m.Called(ctx, tenantID, customerID, filter)
	return args.Get(0).([]finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOpenByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]finance.Invoice, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).([]finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindPostedBySalesOrders(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID) ([]finance.Invoice, error) {
	args := m.Called(ctx, tenantID, orderIDs)
	return args.Get(0).([]finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *finance.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *finance.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *MockInvoiceRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	args := m.Called(ctx, tenantID, number)
	return args.Bool(0), args.Error(1)
}

// fakeSnapshotCache is a map backed SnapshotCache that counts writes
type fakeSnapshotCache struct {
	mu      sync.Mutex
	entries map[string]*credit.Snapshot
	sets    int
}

func newFakeSnapshotCache() *fakeSnapshotCache {
	return &fakeSnapshotCache{entries: make(map[string]*credit.Snapshot)}
}

func cacheKey(tenantID, customerID, categoryID uuid.UUID) string {
	return tenantID.String() + customerID.String() + categoryID.String()
}

func (c *fakeSnapshotCache) Get(_ context.Context, tenantID, customerID, categoryID uuid.UUID) (*credit.Snapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[cacheKey(tenantID, customerID, categoryID)]
	return s, ok, nil
}

func (c *fakeSnapshotCache) Set(_ context.Context, s *credit.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(s.TenantID, s.CustomerID, s.ProductCategoryID)] = s
	c.sets++
	return nil
}

func (c *fakeSnapshotCache) Invalidate(_ context.Context, tenantID, customerID, categoryID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey(tenantID, customerID, categoryID))
	return nil
}

func (c *fakeSnapshotCache) InvalidateCustomer(_ context.Context, tenantID, customerID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := tenantID.String() + customerID.String()
	for k := range c.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.entries, k)
		}
	}
	return nil
}

func (c *fakeSnapshotCache) setCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

// recordingPublisher collects published events
type recordingPublisher struct {
	events []shared.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return p.err
}

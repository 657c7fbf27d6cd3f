// Package bootstrap wires repositories, services, the event bus and the HTTP
// handlers of the credit service. The server binary and the integration
// tests build the same graph through it.
package bootstrap

import (
	"context"
	"errors"
	"io"

	catalogapp "github.com/erp/credit/internal/application/catalog"
	creditapp "github.com/erp/credit/internal/application/credit"
	financeapp "github.com/erp/credit/internal/application/finance"
	partnerapp "github.com/erp/credit/internal/application/partner"
	tradeapp "github.com/erp/credit/internal/application/trade"
	"github.com/erp/credit/internal/domain/catalog"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/erp/credit/internal/infrastructure/cache"
	"github.com/erp/credit/internal/infrastructure/config"
	"github.com/erp/credit/internal/infrastructure/event"
	"github.com/erp/credit/internal/infrastructure/lock"
	"github.com/erp/credit/internal/infrastructure/persistence"
	"github.com/erp/credit/internal/infrastructure/telemetry"
	"github.com/erp/credit/internal/interfaces/http/handler"
	"github.com/erp/credit/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the external resources the container is built on
type Deps struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *gorm.DB
	// Redis is required only by the redis snapshot cache backend
	Redis   *redis.Client
	Metrics *telemetry.CreditMetrics
	// Clock overrides the wall clock of every service
	Clock shared.Clock
}

// Container holds the wired services
type Container struct {
	Bus            *event.SyncEventBus
	Usage          *creditapp.UsageService
	CreditLines    *creditapp.CreditLineService
	Terms          *creditapp.TermService
	Customers      *partnerapp.CustomerService
	Categories     *catalogapp.CategoryService
	Invoices       *financeapp.InvoiceService
	Payments       *financeapp.PaymentService
	Reconciliation *financeapp.ReconciliationService
	Overdue        *financeapp.OverdueService
	Orders         *tradeapp.SalesOrderService

	db      *gorm.DB
	redis   *redis.Client
	config  *config.Config
	closers []io.Closer
}

// New builds the service graph and subscribes the recompute handler
func New(deps Deps) (*Container, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cfg := deps.Config
	db := deps.DB

	customerRepo := persistence.NewGormCustomerRepository(db)
	categoryRepo := persistence.NewGormCategoryRepository(db)
	termRepo := persistence.NewGormPaymentTermRepository(db)
	periodRepo := persistence.NewGormCreditPeriodRepository(db)
	lineRepo := persistence.NewGormCreditLineRepository(db)
	orderRepo := persistence.NewGormSalesOrderRepository(db)
	invoiceRepo := persistence.NewGormInvoiceRepository(db)
	paymentRepo := persistence.NewGormPaymentRepository(db)
	reconRepo := persistence.NewGormReconciliationRepository(db)
	txScope := persistence.NewGormTransactionScope(db)

	factoryOpts := []cache.SnapshotCacheFactoryOption{cache.WithLogger(log)}
	if deps.Redis != nil {
		factoryOpts = append(factoryOpts, cache.WithRedisClient(deps.Redis))
	}
	snapshots, err := cache.NewSnapshotCacheFactory(cfg.Credit, factoryOpts...).Create()
	if err != nil {
		return nil, err
	}

	gate := catalog.NewOverdueGate(cfg.Credit.GatedBusinessUnits...)
	invoiceLocks := lock.NewKeyedMutex()
	bus := event.NewSyncEventBus(log)

	c := &Container{Bus: bus, db: db, redis: deps.Redis, config: cfg}
	if closer, ok := snapshots.(io.Closer); ok {
		c.closers = append(c.closers, closer)
	}

	c.Usage = creditapp.NewUsageService(lineRepo, orderRepo, invoiceRepo, snapshots, txScope, log)
	c.Usage.SetCreditMetrics(deps.Metrics)
	c.CreditLines = creditapp.NewCreditLineService(lineRepo, c.Usage, txScope, log)
	c.CreditLines.SetEventPublisher(bus)
	c.Terms = creditapp.NewTermService(termRepo, periodRepo, log)
	bus.Subscribe(creditapp.NewRecomputeHandler(c.Usage, c.CreditLines, log))

	c.Customers = partnerapp.NewCustomerService(customerRepo, txScope, log)
	c.Customers.SetEventPublisher(bus)
	c.Categories = catalogapp.NewCategoryService(categoryRepo, gate, log)

	c.Invoices = financeapp.NewInvoiceService(invoiceRepo, customerRepo, orderRepo, termRepo, txScope, log)
	c.Invoices.SetEventPublisher(bus)
	c.Payments = financeapp.NewPaymentService(paymentRepo, invoiceRepo, orderRepo, customerRepo, invoiceLocks, txScope, log)
	c.Payments.SetEventPublisher(bus)
	c.Payments.SetCreditMetrics(deps.Metrics)
	c.Reconciliation = financeapp.NewReconciliationService(reconRepo, invoiceRepo, invoiceLocks, txScope, log)
	c.Reconciliation.SetEventPublisher(bus)
	c.Reconciliation.SetCreditMetrics(deps.Metrics)
	c.Overdue = financeapp.NewOverdueService(invoiceRepo)

	c.Orders = tradeapp.NewSalesOrderService(tradeapp.SalesOrderServiceConfig{
		OrderRepo:      orderRepo,
		CustomerRepo:   customerRepo,
		CategoryRepo:   categoryRepo,
		PeriodRepo:     periodRepo,
		Usage:          c.Usage,
		Aging:          c.Overdue,
		Gate:           gate,
		TxScope:        txScope,
		Logger:         log,
		CurrencySymbol: cfg.Credit.CurrencySymbol,
	})
	c.Orders.SetEventPublisher(bus)
	c.Orders.SetCreditMetrics(deps.Metrics)

	if deps.Clock != nil {
		c.Usage.SetClock(deps.Clock)
		c.Customers.SetClock(deps.Clock)
		c.Invoices.SetClock(deps.Clock)
		c.Payments.SetClock(deps.Clock)
		c.Orders.SetClock(deps.Clock)
	}

	return c, nil
}

// Close releases what the container started itself, such as the cleanup
// loop of the in-memory snapshot cache. The database and Redis client
// belong to the caller.
func (c *Container) Close() error {
	var errs []error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// HealthChecks probes the database and, when configured, Redis
func (c *Container) HealthChecks() []handler.HealthCheck {
	checks := []handler.HealthCheck{{
		Name: "database",
		Check: func(ctx context.Context) error {
			sqlDB, err := c.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if c.redis != nil {
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return c.redis.Ping(ctx).Err() },
		})
	}
	return checks
}

// Handlers builds the HTTP handlers over the container services
func (c *Container) Handlers() router.Handlers {
	return router.Handlers{
		System:     handler.NewSystemHandler(c.config.App.Name, c.HealthChecks()...),
		Customers:  handler.NewCustomerHandler(c.Customers),
		Categories: handler.NewCategoryHandler(c.Categories),
		Terms:      handler.NewTermHandler(c.Terms),
		Credit:     handler.NewCreditHandler(c.CreditLines, c.Overdue),
		Finance:    handler.NewFinanceHandler(c.Invoices, c.Payments, c.Reconciliation),
		Orders:     handler.NewSalesOrderHandler(c.Orders),
	}
}

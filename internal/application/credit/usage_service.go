package credit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/credit/internal/domain/credit"
	"github.com/erp/credit/internal/domain/finance"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/erp/credit/internal/domain/trade"
	"github.com/erp/credit/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// maxRecomputeAttempts bounds retries when a concurrent recompute bumped the
// line version between our read and write
const maxRecomputeAttempts = 3

// ErrNoCreditLine is returned when a (customer, category) pair has no line
var ErrNoCreditLine = shared.NewDomainError(shared.CodeNotFound, "No credit line configured for this customer and category")

// UsageService owns the credit used figure. Recompute is the only code path
// that writes it and runs only on ledger triggers or an explicit refresh.
// Reads go through the snapshot cache and fall back to the persisted usage.
type UsageService struct {
	lineRepo    credit.CreditLineRepository
	orderRepo   trade.SalesOrderRepository
	invoiceRepo finance.InvoiceRepository
	cache       credit.SnapshotCache
	txScope     shared.TransactionScope
	clock       shared.Clock
	logger      *zap.Logger
	metrics     *telemetry.CreditMetrics
	group       singleflight.Group
}

// NewUsageService creates a new UsageService
func NewUsageService(
	lineRepo credit.CreditLineRepository,
	orderRepo trade.SalesOrderRepository,
	invoiceRepo finance.InvoiceRepository,
	cache credit.SnapshotCache,
	txScope shared.TransactionScope,
	logger *zap.Logger,
) *UsageService {
	if txScope == nil {
		txScope = shared.NoOpTransactionScope{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UsageService{
		lineRepo:    lineRepo,
		orderRepo:   orderRepo,
		invoiceRepo: invoiceRepo,
		cache:       cache,
		txScope:     txScope,
		clock:       shared.SystemClock,
		logger:      logger,
	}
}

// SetCreditMetrics sets the metrics recorder
func (s *UsageService) SetCreditMetrics(m *telemetry.CreditMetrics) {
	s.metrics = m
}

// SetClock overrides the wall clock
func (s *UsageService) SetClock(clock shared.Clock) {
	s.clock = clock
}

// Snapshot returns the cached snapshot of a pair. A miss is filled from the
// usage persisted on the line by the last recompute; reading never writes
// the line.
func (s *UsageService) Snapshot(ctx context.Context, tenantID, customerID, categoryID uuid.UUID) (*credit.Snapshot, error) {
	snap, ok, err := s.cache.Get(ctx, tenantID, customerID, categoryID)
	if err != nil {
		s.logger.Warn("snapshot cache read failed, reading the credit line",
			zap.String("customer_id", customerID.String()),
			zap.String("product_category_id", categoryID.String()),
			zap.Error(err),
		)
	}
	if ok {
		return snap, nil
	}

	line, err := s.lineRepo.FindByCustomerAndCategory(ctx, tenantID, customerID, categoryID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrNoCreditLine
		}
		return nil, err
	}
	snap = credit.SnapshotFromLine(line, s.clock())

	// inside a unit of work the line may still roll back
	cached := snap
	shared.AfterCommit(ctx, func(ctx context.Context) {
		if err := s.cache.Set(ctx, cached); err != nil {
			s.logger.Warn("failed to cache credit snapshot",
				zap.String("credit_line_id", cached.CreditLineID.String()),
				zap.Error(err),
			)
		}
	})
	return snap, nil
}

// Recompute rebuilds the usage of a pair from the ledger, persists it on the
// line and caches the snapshot once the surrounding unit of work commits.
// It returns ErrNoCreditLine when the pair has no line.
func (s *UsageService) Recompute(ctx context.Context, tenantID, customerID, categoryID uuid.UUID, trigger string) (*credit.Snapshot, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "credit_usage", "recompute")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerID, customerID.String(),
		telemetry.SpanAttrCategoryID, categoryID.String(),
		telemetry.SpanAttrTrigger, trigger,
	)

	// A caller inside a transaction must see its own uncommitted writes, so
	// only standalone recomputes are coalesced.
	if shared.InCommitScope(ctx) {
		snap, err := s.recompute(ctx, tenantID, customerID, categoryID, trigger)
		telemetry.RecordError(span, err)
		return snap, err
	}

	key := fmt.Sprintf("%s:%s:%s", tenantID, customerID, categoryID)
	v, err, coalesced := s.group.Do(key, func() (any, error) {
		return s.recompute(ctx, tenantID, customerID, categoryID, trigger)
	})
	if coalesced {
		telemetry.AddEvent(span, "recompute_coalesced")
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return v.(*credit.Snapshot), nil
}

// RecomputeCustomer recomputes every line of a customer
func (s *UsageService) RecomputeCustomer(ctx context.Context, tenantID, customerID uuid.UUID, trigger string) error {
	lines, err := s.lineRepo.FindByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := s.Recompute(ctx, tenantID, customerID, line.ProductCategoryID, trigger); err != nil {
			if errors.Is(err, ErrNoCreditLine) {
				continue
			}
			return err
		}
	}
	return nil
}

// Invalidate drops the cached snapshot of a pair
func (s *UsageService) Invalidate(ctx context.Context, tenantID, customerID, categoryID uuid.UUID) error {
	return s.cache.Invalidate(ctx, tenantID, customerID, categoryID)
}

// InvalidateCustomer drops every cached snapshot of a customer
func (s *UsageService) InvalidateCustomer(ctx context.Context, tenantID, customerID uuid.UUID) error {
	return s.cache.InvalidateCustomer(ctx, tenantID, customerID)
}

func (s *UsageService) recompute(ctx context.Context, tenantID, customerID, categoryID uuid.UUID, trigger string) (*credit.Snapshot, error) {
	start := time.Now()
	var snap *credit.Snapshot

	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		if err := s.cache.Invalidate(ctx, tenantID, customerID, categoryID); err != nil {
			return fmt.Errorf("invalidate credit snapshot: %w", err)
		}

		var lastErr error
		for attempt := 1; attempt <= maxRecomputeAttempts; attempt++ {
			snap, lastErr = s.recomputeOnce(ctx, tenantID, customerID, categoryID)
			if !errors.Is(lastErr, shared.ErrConcurrencyConflict) {
				break
			}
			s.logger.Debug("credit line changed during recompute, retrying",
				zap.String("customer_id", customerID.String()),
				zap.Int("attempt", attempt),
			)
		}
		if lastErr != nil {
			return lastErr
		}

		cached := snap
		shared.AfterCommit(ctx, func(ctx context.Context) {
			if err := s.cache.Set(ctx, cached); err != nil {
				s.logger.Warn("failed to cache credit snapshot",
					zap.String("credit_line_id", cached.CreditLineID.String()),
					zap.Error(err),
				)
			}
		})
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNoCreditLine) {
			s.logger.Error("credit usage recompute failed",
				zap.String("customer_id", customerID.String()),
				zap.String("product_category_id", categoryID.String()),
				zap.String("trigger", trigger),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.metrics.RecordRecompute(ctx, trigger, time.Since(start))
	s.logger.Debug("credit usage recomputed",
		zap.String("customer_id", customerID.String()),
		zap.String("product_category_id", categoryID.String()),
		zap.String("credit_used", snap.CreditUsed.StringFixed(2)),
		zap.String("trigger", trigger),
	)
	return snap, nil
}

func (s *UsageService) recomputeOnce(ctx context.Context, tenantID, customerID, categoryID uuid.UUID) (*credit.Snapshot, error) {
	line, err := s.lineRepo.FindByCustomerAndCategory(ctx, tenantID, customerID, categoryID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrNoCreditLine
		}
		return nil, err
	}

	used, orders, err := s.calculate(ctx, tenantID, customerID, categoryID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	if err := line.RecordUsage(used, orders, now); err != nil {
		return nil, err
	}
	if err := s.lineRepo.SaveWithLock(ctx, line); err != nil {
		return nil, err
	}
	return credit.NewSnapshot(line, used, orders, now), nil
}

// calculate gathers the exposure of every confirmed or done order of the
// pair and runs the usage calculator over it
func (s *UsageService) calculate(ctx context.Context, tenantID, customerID, categoryID uuid.UUID) (decimal.Decimal, int, error) {
	orders, err := s.orderRepo.FindCreditExposure(ctx, tenantID, customerID, categoryID, trade.CreditExposureStatuses())
	if err != nil {
		return decimal.Zero, 0, err
	}
	if len(orders) == 0 {
		return decimal.Zero, 0, nil
	}

	orderIDs := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}
	invoices, err := s.invoiceRepo.FindPostedBySalesOrders(ctx, tenantID, orderIDs)
	if err != nil {
		return decimal.Zero, 0, err
	}

	residuals := make(map[uuid.UUID][]decimal.Decimal, len(orders))
	for i := range invoices {
		inv := &invoices[i]
		if inv.SalesOrderID == nil || !inv.IsCustomerInvoice() || !inv.IsPosted() {
			continue
		}
		residuals[*inv.SalesOrderID] = append(residuals[*inv.SalesOrderID], inv.AmountResidual)
	}

	exposures := make([]credit.Exposure, 0, len(orders))
	for _, o := range orders {
		exposures = append(exposures, credit.Exposure{
			OrderID:          o.ID,
			OrderTotal:       o.TotalAmount,
			InvoiceResiduals: residuals[o.ID],
		})
	}
	return credit.CalculateUsage(exposures), len(orders), nil
}

package credit

import (
	"context"
	"errors"

	"github.com/erp/credit/internal/domain/credit"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreditLineService manages the credit line registry
type CreditLineService struct {
	lineRepo       credit.CreditLineRepository
	usage          *UsageService
	txScope        shared.TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCreditLineService creates a new CreditLineService
func NewCreditLineService(
	lineRepo credit.CreditLineRepository,
	usage *UsageService,
	txScope shared.TransactionScope,
	logger *zap.Logger,
) *CreditLineService {
	if txScope == nil {
		txScope = shared.NoOpTransactionScope{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreditLineService{
		lineRepo: lineRepo,
		usage:    usage,
		txScope:  txScope,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher
func (s *CreditLineService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create registers a credit line for a (customer, category) pair and
// computes its initial usage
func (s *CreditLineService) Create(ctx context.Context, tenantID uuid.UUID, input CreateCreditLineInput) (*CreditLineResponse, error) {
	line, err := credit.NewCreditLine(tenantID, input.CustomerID, input.ProductCategoryID, input.CreditLimit, input.IsInfiniteCredit)
	if err != nil {
		return nil, err
	}

	var snap *credit.Snapshot
	err = s.txScope.Execute(ctx, func(ctx context.Context) error {
		exists, err := s.lineRepo.ExistsForPair(ctx, tenantID, input.CustomerID, input.ProductCategoryID, uuid.Nil)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError(shared.CodeAlreadyExists, credit.MsgDuplicateLine)
		}

		if err := s.lineRepo.Save(ctx, line); err != nil {
			return err
		}
		if err := shared.PublishPending(ctx, s.eventPublisher, line); err != nil {
			return err
		}

		snap, err = s.usage.Recompute(ctx, tenantID, line.CustomerID, line.ProductCategoryID, TriggerLineChanged)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("credit line created",
		zap.String("credit_line_id", line.ID.String()),
		zap.String("customer_id", line.CustomerID.String()),
		zap.String("product_category_id", line.ProductCategoryID.String()),
		zap.Bool("infinite", line.IsInfiniteCredit),
	)

	resp := ToCreditLineResponse(line).withSnapshot(snap)
	return &resp, nil
}

// Update changes the limit, the infinite flag or the category of a line
func (s *CreditLineService) Update(ctx context.Context, tenantID, id uuid.UUID, input UpdateCreditLineInput) (*CreditLineResponse, error) {
	var (
		line *credit.CreditLine
		snap *credit.Snapshot
	)
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		line, err = s.lineRepo.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		oldCategory := line.ProductCategoryID

		if input.ProductCategoryID != nil && *input.ProductCategoryID != oldCategory {
			exists, err := s.lineRepo.ExistsForPair(ctx, tenantID, line.CustomerID, *input.ProductCategoryID, line.ID)
			if err != nil {
				return err
			}
			if exists {
				return shared.NewDomainError(shared.CodeAlreadyExists, credit.MsgDuplicateLine)
			}
			if err := line.MoveToCategory(*input.ProductCategoryID); err != nil {
				return err
			}
		}
		if err := line.SetLimit(input.CreditLimit, input.IsInfiniteCredit); err != nil {
			return err
		}

		if err := s.lineRepo.SaveWithLock(ctx, line); err != nil {
			return err
		}
		if err := shared.PublishPending(ctx, s.eventPublisher, line); err != nil {
			return err
		}

		if oldCategory != line.ProductCategoryID {
			if err := s.usage.Invalidate(ctx, tenantID, line.CustomerID, oldCategory); err != nil {
				return err
			}
		}
		snap, err = s.usage.Recompute(ctx, tenantID, line.CustomerID, line.ProductCategoryID, TriggerLineChanged)
		if err != nil {
			return err
		}
		// Recompute saved the line again; pick up its version.
		line, err = s.lineRepo.FindByIDForTenant(ctx, tenantID, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := ToCreditLineResponse(line).withSnapshot(snap)
	return &resp, nil
}

// Delete removes a credit line
func (s *CreditLineService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.txScope.Execute(ctx, func(ctx context.Context) error {
		line, err := s.lineRepo.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		line.MarkDeleted()
		if err := s.lineRepo.DeleteForTenant(ctx, tenantID, id); err != nil {
			return err
		}
		if err := s.usage.Invalidate(ctx, tenantID, line.CustomerID, line.ProductCategoryID); err != nil {
			return err
		}
		return shared.PublishPending(ctx, s.eventPublisher, line)
	})
}

// DeleteByCustomer removes every line of a customer
func (s *CreditLineService) DeleteByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	var removed int64
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		removed, err = s.lineRepo.DeleteByCustomer(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		return s.usage.InvalidateCustomer(ctx, tenantID, customerID)
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("credit lines removed with customer",
			zap.String("customer_id", customerID.String()),
			zap.Int64("count", removed),
		)
	}
	return removed, nil
}

// GetByID returns a line with its current snapshot
func (s *CreditLineService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CreditLineResponse, error) {
	line, err := s.lineRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	snap, err := s.usage.Snapshot(ctx, tenantID, line.CustomerID, line.ProductCategoryID)
	if err != nil && !errors.Is(err, ErrNoCreditLine) {
		return nil, err
	}
	resp := ToCreditLineResponse(line).withSnapshot(snap)
	return &resp, nil
}

// ListByCustomer returns every line of a customer with its snapshot
func (s *CreditLineService) ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]CreditLineResponse, error) {
	lines, err := s.lineRepo.FindByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	out := make([]CreditLineResponse, 0, len(lines))
	for i := range lines {
		line := &lines[i]
		snap, err := s.usage.Snapshot(ctx, tenantID, line.CustomerID, line.ProductCategoryID)
		if err != nil && !errors.Is(err, ErrNoCreditLine) {
			return nil, err
		}
		out = append(out, ToCreditLineResponse(line).withSnapshot(snap))
	}
	return out, nil
}

// ForceRefresh discards the cached snapshot and recomputes it
func (s *CreditLineService) ForceRefresh(ctx context.Context, tenantID, id uuid.UUID) (*CreditLineResponse, error) {
	line, err := s.lineRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	snap, err := s.usage.Recompute(ctx, tenantID, line.CustomerID, line.ProductCategoryID, TriggerManual)
	if err != nil {
		return nil, err
	}
	line.CreditUsed = snap.CreditUsed
	line.RecomputedAt = &snap.ComputedAt

	resp := ToCreditLineResponse(line).withSnapshot(snap)
	return &resp, nil
}

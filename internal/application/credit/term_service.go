package credit

import (
	"context"
	"errors"

	"github.com/erp/credit/internal/domain/credit"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TermService manages payment terms and the credit periods that pick a
// default term for new orders
type TermService struct {
	termRepo   credit.PaymentTermRepository
	periodRepo credit.CreditPeriodRepository
	logger     *zap.Logger
}

// NewTermService creates a new TermService
func NewTermService(termRepo credit.PaymentTermRepository, periodRepo credit.CreditPeriodRepository, logger *zap.Logger) *TermService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{termRepo: termRepo, periodRepo: periodRepo, logger: logger}
}

// CreateTerm creates a payment term
func (s *TermService) CreateTerm(ctx context.Context, tenantID uuid.UUID, input CreatePaymentTermInput) (*PaymentTermResponse, error) {
	term, err := credit.NewPaymentTerm(tenantID, input.Name, input.DueDays)
	if err != nil {
		return nil, err
	}
	if err := s.termRepo.Save(ctx, term); err != nil {
		return nil, err
	}
	return &PaymentTermResponse{ID: term.ID, Name: term.Name, DueDays: term.DueDays}, nil
}

// ListTerms lists the payment terms of a tenant
func (s *TermService) ListTerms(ctx context.Context, tenantID uuid.UUID) ([]PaymentTermResponse, error) {
	terms, err := s.termRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentTermResponse, len(terms))
	for i, t := range terms {
		out[i] = PaymentTermResponse{ID: t.ID, Name: t.Name, DueDays: t.DueDays}
	}
	return out, nil
}

// SetCreditPeriod maps a (category, state) pair to a payment term,
// replacing an existing mapping of the pair
func (s *TermService) SetCreditPeriod(ctx context.Context, tenantID uuid.UUID, input CreateCreditPeriodInput) (*CreditPeriodResponse, error) {
	if _, err := s.termRepo.FindByIDForTenant(ctx, tenantID, input.PaymentTermID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewValidationError("Payment term not found")
		}
		return nil, err
	}

	period, err := credit.NewCreditPeriod(tenantID, input.ProductCategoryID, input.StateCode, input.PaymentTermID)
	if err != nil {
		return nil, err
	}

	existing, err := s.periodRepo.FindByCategoryAndState(ctx, tenantID, period.ProductCategoryID, period.StateCode)
	switch {
	case err == nil:
		existing.PaymentTermID = period.PaymentTermID
		period = existing
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	if err := s.periodRepo.Save(ctx, period); err != nil {
		return nil, err
	}

	s.logger.Info("credit period set",
		zap.String("category_id", period.ProductCategoryID.String()),
		zap.String("state", period.StateCode),
		zap.String("payment_term_id", period.PaymentTermID.String()),
	)

	return toCreditPeriodResponse(period), nil
}

// ListCreditPeriods lists the mappings of a category
func (s *TermService) ListCreditPeriods(ctx context.Context, tenantID, categoryID uuid.UUID) ([]CreditPeriodResponse, error) {
	periods, err := s.periodRepo.FindByCategory(ctx, tenantID, categoryID)
	if err != nil {
		return nil, err
	}
	out := make([]CreditPeriodResponse, len(periods))
	for i := range periods {
		out[i] = *toCreditPeriodResponse(&periods[i])
	}
	return out, nil
}

func toCreditPeriodResponse(p *credit.CreditPeriod) *CreditPeriodResponse {
	return &CreditPeriodResponse{
		ID:                p.ID,
		ProductCategoryID: p.ProductCategoryID,
		StateCode:         p.StateCode,
		PaymentTermID:     p.PaymentTermID,
	}
}

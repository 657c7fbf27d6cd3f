package finance

import (
	"context"
	"time"

	"github.com/erp/credit/internal/domain/finance"
	"github.com/erp/credit/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// OverdueService computes customer aging. Results are not cached: aging
// depends on the day it is asked, so every call reads the open invoices.
type OverdueService struct {
	invoiceRepo finance.InvoiceRepository
}

// NewOverdueService creates a new OverdueService
func NewOverdueService(invoiceRepo finance.InvoiceRepository) *OverdueService {
	return &OverdueService{invoiceRepo: invoiceRepo}
}

// Profile buckets the customer's open posted invoices by days overdue as of asOf
func (s *OverdueService) Profile(ctx context.Context, tenantID, customerID uuid.UUID, asOf time.Time) (finance.AgingProfile, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "overdue", "profile")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrCustomerID, customerID.String())

	invoices, err := s.invoiceRepo.FindOpenByCustomer(ctx, tenantID, customerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return finance.AgingProfile{}, err
	}
	return finance.ComputeAging(invoices, asOf), nil
}

// Summary wraps Profile for the customer overdue endpoint
func (s *OverdueService) Summary(ctx context.Context, tenantID, customerID uuid.UUID, asOf time.Time) (*OverdueSummaryResponse, error) {
	profile, err := s.Profile(ctx, tenantID, customerID, asOf)
	if err != nil {
		return nil, err
	}
	return &OverdueSummaryResponse{CustomerID: customerID, AgingProfile: profile}, nil
}

package finance

import (
	"context"
	"sort"

	"github.com/erp/credit/internal/domain/finance"
	"github.com/erp/credit/internal/domain/partner"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/erp/credit/internal/domain/trade"
	"github.com/erp/credit/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService posts and cancels payments. Posting a customer payment that
// carries a product category applies it to the oldest open invoice of that
// customer and category.
type PaymentService struct {
	paymentRepo    finance.PaymentRepository
	invoiceRepo    finance.InvoiceRepository
	orderRepo      trade.SalesOrderRepository
	customerRepo   partner.CustomerRepository
	writer         *residualWriter
	txScope        shared.TransactionScope
	eventPublisher shared.EventPublisher
	clock          shared.Clock
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo finance.PaymentRepository,
	invoiceRepo finance.InvoiceRepository,
	orderRepo trade.SalesOrderRepository,
	customerRepo partner.CustomerRepository,
	locker InvoiceLocker,
	txScope shared.TransactionScope,
	logger *zap.Logger,
) *PaymentService {
	if txScope == nil {
		txScope = shared.NoOpTransactionScope{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		paymentRepo:  paymentRepo,
		invoiceRepo:  invoiceRepo,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		writer:       &residualWriter{invoiceRepo: invoiceRepo, locker: locker, logger: logger},
		txScope:      txScope,
		clock:        shared.SystemClock,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetCreditMetrics sets the metrics recorder
func (s *PaymentService) SetCreditMetrics(m *telemetry.CreditMetrics) {
	s.writer.metrics = m
}

// SetClock overrides the wall clock
func (s *PaymentService) SetClock(clock shared.Clock) {
	s.clock = clock
}

// Create records a draft payment
func (s *PaymentService) Create(ctx context.Context, tenantID uuid.UUID, input CreatePaymentInput) (*PaymentResponse, error) {
	partnerType := finance.PartnerType(input.PartnerType)
	if partnerType == "" {
		partnerType = finance.PartnerTypeCustomer
	}
	if partnerType == finance.PartnerTypeCustomer {
		if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, input.CustomerID); err != nil {
			return nil, err
		}
	}

	exists, err := s.paymentRepo.ExistsByReference(ctx, tenantID, input.Reference)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Payment reference already exists")
	}

	paymentDate := s.clock()
	if input.PaymentDate != nil {
		paymentDate = *input.PaymentDate
	}
	p, err := finance.NewPayment(tenantID, input.Reference, partnerType, input.CustomerID, input.ProductCategoryID, input.Amount, paymentDate)
	if err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	resp := ToPaymentResponse(p)
	return &resp, nil
}

// Post posts a payment and applies it to the target invoice, if any
func (s *PaymentService) Post(ctx context.Context, tenantID, id uuid.UUID) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "post")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentID, id.String())

	p, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var target *finance.Invoice
	if p.AffectsCredit() && p.Status == finance.PaymentStatusDraft {
		target, err = s.findTargetInvoice(ctx, tenantID, p.CustomerID, *p.ProductCategoryID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if target == nil {
		err = s.txScope.Execute(ctx, func(ctx context.Context) error {
			if err := p.Post(); err != nil {
				return err
			}
			if err := s.paymentRepo.SaveWithLock(ctx, p); err != nil {
				return err
			}
			return shared.PublishPending(ctx, s.eventPublisher, p)
		})
	} else {
		telemetry.SetAttributes(span, telemetry.SpanAttrInvoiceID, target.ID.String())
		err = s.postApplied(ctx, tenantID, p, target.ID, target.Version)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("payment posted",
		zap.String("payment_id", p.ID.String()),
		zap.String("customer_id", p.CustomerID.String()),
		zap.String("amount", p.Amount.StringFixed(2)),
		zap.String("applied_amount", p.AppliedAmount.StringFixed(2)),
	)

	resp := ToPaymentResponse(p)
	return &resp, nil
}

// postApplied posts the payment and reduces the target residual in one unit
// of work, under the invoice lock
func (s *PaymentService) postApplied(ctx context.Context, tenantID uuid.UUID, p *finance.Payment, invoiceID uuid.UUID, seenVersion int) error {
	unlock := s.writer.lock(tenantID, invoiceID)
	defer unlock()

	return s.txScope.Execute(ctx, func(ctx context.Context) error {
		inv, err := s.writer.load(ctx, tenantID, invoiceID, seenVersion)
		if err != nil {
			return err
		}
		applied, err := inv.ReduceResidual(p.Amount, finance.ResidualSourcePayment)
		if err != nil {
			return s.writer.observe(ctx, inv, err)
		}

		if err := p.Post(); err != nil {
			return err
		}
		if applied.IsPositive() {
			if err := p.RecordApplication(inv.ID, applied); err != nil {
				return err
			}
		}

		if err := s.paymentRepo.SaveWithLock(ctx, p); err != nil {
			return err
		}
		if err := s.writer.save(ctx, inv, s.eventPublisher); err != nil {
			return err
		}
		return shared.PublishPending(ctx, s.eventPublisher, p)
	})
}

// findTargetInvoice returns the first open invoice of the pair, walking
// orders by confirmation time and each order's invoices by posting time
func (s *PaymentService) findTargetInvoice(ctx context.Context, tenantID, customerID, categoryID uuid.UUID) (*finance.Invoice, error) {
	orders, err := s.orderRepo.FindCreditExposure(ctx, tenantID, customerID, categoryID, trade.CreditExposureStatuses())
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}

	rank := make(map[uuid.UUID]int, len(orders))
	ids := make([]uuid.UUID, 0, len(orders))
	for i, o := range orders {
		rank[o.ID] = i
		ids = append(ids, o.ID)
	}

	invoices, err := s.invoiceRepo.FindPostedBySalesOrders(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(invoices, func(i, j int) bool {
		return rank[*invoices[i].SalesOrderID] < rank[*invoices[j].SalesOrderID]
	})

	for i := range invoices {
		if invoices[i].IsOpen() {
			return &invoices[i], nil
		}
	}
	return nil, nil
}

// Cancel cancels a payment and restores whatever it applied
func (s *PaymentService) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "cancel")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentID, id.String())

	p, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if p.IsApplied() {
		err = s.cancelApplied(ctx, tenantID, p)
	} else {
		err = s.txScope.Execute(ctx, func(ctx context.Context) error {
			if err := p.Cancel(); err != nil {
				return err
			}
			if err := s.paymentRepo.SaveWithLock(ctx, p); err != nil {
				return err
			}
			return shared.PublishPending(ctx, s.eventPublisher, p)
		})
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("payment cancelled",
		zap.String("payment_id", p.ID.String()),
		zap.String("restored_amount", p.AppliedAmount.StringFixed(2)),
	)

	resp := ToPaymentResponse(p)
	return &resp, nil
}

func (s *PaymentService) cancelApplied(ctx context.Context, tenantID uuid.UUID, p *finance.Payment) error {
	invoiceID := *p.AppliedInvoiceID
	unlock := s.writer.lock(tenantID, invoiceID)
	defer unlock()

	return s.txScope.Execute(ctx, func(ctx context.Context) error {
		inv, err := s.writer.load(ctx, tenantID, invoiceID, -1)
		if err != nil {
			return err
		}
		if err := p.Cancel(); err != nil {
			return err
		}
		if err := inv.RestoreResidual(p.AppliedAmount, finance.ResidualSourcePaymentCancel); err != nil {
			return s.writer.observe(ctx, inv, err)
		}

		if err := s.paymentRepo.SaveWithLock(ctx, p); err != nil {
			return err
		}
		if err := s.writer.save(ctx, inv, s.eventPublisher); err != nil {
			return err
		}
		return shared.PublishPending(ctx, s.eventPublisher, p)
	})
}

// GetByID returns a payment
func (s *PaymentService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(p)
	return &resp, nil
}

package finance

import (
	"context"
	"errors"
	"time"

	"github.com/erp/credit/internal/domain/credit"
	"github.com/erp/credit/internal/domain/finance"
	"github.com/erp/credit/internal/domain/partner"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/erp/credit/internal/domain/trade"
	"github.com/erp/credit/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceService manages customer invoices
type InvoiceService struct {
	invoiceRepo    finance.InvoiceRepository
	customerRepo   partner.CustomerRepository
	orderRepo      trade.SalesOrderRepository
	termRepo       credit.PaymentTermRepository
	txScope        shared.TransactionScope
	eventPublisher shared.EventPublisher
	clock          shared.Clock
	logger         *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo finance.InvoiceRepository,
	customerRepo partner.CustomerRepository,
	orderRepo trade.SalesOrderRepository,
	termRepo credit.PaymentTermRepository,
	txScope shared.TransactionScope,
	logger *zap.Logger,
) *InvoiceService {
	if txScope == nil {
		txScope = shared.NoOpTransactionScope{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		termRepo:     termRepo,
		txScope:      txScope,
		clock:        shared.SystemClock,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the wall clock
func (s *InvoiceService) SetClock(clock shared.Clock) {
	s.clock = clock
}

// Create creates a draft invoice
func (s *InvoiceService) Create(ctx context.Context, tenantID uuid.UUID, input CreateInvoiceInput) (*InvoiceResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, input.CustomerID)
	if err != nil {
		return nil, err
	}

	exists, err := s.invoiceRepo.ExistsByNumber(ctx, tenantID, input.Number)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Invoice number already exists")
	}

	moveType := finance.MoveType(input.MoveType)
	if moveType == "" {
		moveType = finance.MoveTypeCustomerInvoice
	}
	invoiceDate := s.clock()
	if input.InvoiceDate != nil {
		invoiceDate = *input.InvoiceDate
	}

	inv, err := finance.NewInvoice(tenantID, input.Number, moveType, customer.ID, customer.Name, input.Amount, invoiceDate)
	if err != nil {
		return nil, err
	}

	dueDate := input.DueDate
	if input.SalesOrderID != nil {
		order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, *input.SalesOrderID)
		if err != nil {
			return nil, err
		}
		if order.CustomerID != customer.ID {
			return nil, shared.NewValidationError("Invoice customer must match the sales order customer")
		}
		if err := inv.AttachOrigin(order.ID, order.OrderNumber, order.ProductCategoryID); err != nil {
			return nil, err
		}
		if dueDate == nil && order.PaymentTermID != nil {
			due, err := s.termDueDate(ctx, tenantID, *order.PaymentTermID, inv.InvoiceDate)
			if err != nil {
				return nil, err
			}
			dueDate = due
		}
	}
	if inv.ProductCategoryID == nil && input.ProductCategoryID != nil && *input.ProductCategoryID != uuid.Nil {
		c := *input.ProductCategoryID
		inv.ProductCategoryID = &c
	}
	if dueDate != nil {
		if err := inv.SetDueDate(dueDate); err != nil {
			return nil, err
		}
	}

	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("number", inv.Number),
		zap.String("customer_id", inv.CustomerID.String()),
	)

	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

func (s *InvoiceService) termDueDate(ctx context.Context, tenantID, termID uuid.UUID, invoiceDate time.Time) (*time.Time, error) {
	term, err := s.termRepo.FindByIDForTenant(ctx, tenantID, termID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	due := term.DueDate(invoiceDate)
	return &due, nil
}

// Post posts an invoice. Its residual starts counting toward credit usage
// and aging from here.
func (s *InvoiceService) Post(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "post")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrInvoiceID, id.String())

	var inv *finance.Invoice
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoiceRepo.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if err := inv.Post(); err != nil {
			return err
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			return err
		}
		return shared.PublishPending(ctx, s.eventPublisher, inv)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("invoice posted",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("number", inv.Number),
		zap.String("amount", inv.AmountTotal.StringFixed(2)),
	)

	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Cancel cancels an invoice
func (s *InvoiceService) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	var inv *finance.Invoice
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoiceRepo.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if err := inv.Cancel(); err != nil {
			return err
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			return err
		}
		return shared.PublishPending(ctx, s.eventPublisher, inv)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice cancelled", zap.String("invoice_id", inv.ID.String()))

	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// GetByID returns an invoice
func (s *InvoiceService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// ListByCustomer lists a customer's invoices, newest first
func (s *InvoiceService) ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter InvoiceListFilter) ([]InvoiceResponse, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	f.OrderBy = "invoice_date"
	f.OrderDir = "desc"

	invoices, err := s.invoiceRepo.FindByCustomer(ctx, tenantID, customerID, f)
	if err != nil {
		return nil, err
	}
	out := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		out = append(out, ToInvoiceResponse(&invoices[i]))
	}
	return out, nil
}

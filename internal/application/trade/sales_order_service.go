package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/credit/internal/domain/catalog"
	"github.com/erp/credit/internal/domain/credit"
	"github.com/erp/credit/internal/domain/identity"
	"github.com/erp/credit/internal/domain/partner"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/erp/credit/internal/domain/shared/valueobject"
	"github.com/erp/credit/internal/domain/trade"
	"github.com/erp/credit/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SalesOrderService handles sales order editing and the credit approval
// workflow
type SalesOrderService struct {
	orderRepo      trade.SalesOrderRepository
	customerRepo   partner.CustomerRepository
	categoryRepo   catalog.CategoryRepository
	periodRepo     credit.CreditPeriodRepository
	usage          CreditUsage
	aging          AgingReader
	gate           catalog.OverdueGate
	txScope        shared.TransactionScope
	eventPublisher shared.EventPublisher
	metrics        *telemetry.CreditMetrics
	logger         *zap.Logger
	clock          shared.Clock
	symbol         string
}

// SalesOrderServiceConfig holds the collaborators of SalesOrderService
type SalesOrderServiceConfig struct {
	OrderRepo    trade.SalesOrderRepository
	CustomerRepo partner.CustomerRepository
	CategoryRepo catalog.CategoryRepository
	PeriodRepo   credit.CreditPeriodRepository
	Usage        CreditUsage
	Aging        AgingReader
	Gate         catalog.OverdueGate
	TxScope      shared.TransactionScope
	Logger       *zap.Logger
	// CurrencySymbol prefixes amounts in notifications
	CurrencySymbol string
}

// NewSalesOrderService creates a new SalesOrderService
func NewSalesOrderService(cfg SalesOrderServiceConfig) *SalesOrderService {
	if cfg.TxScope == nil {
		cfg.TxScope = shared.NoOpTransactionScope{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.CurrencySymbol == "" {
		cfg.CurrencySymbol = valueobject.DefaultCurrencySymbol
	}
	return &SalesOrderService{
		orderRepo:    cfg.OrderRepo,
		customerRepo: cfg.CustomerRepo,
		categoryRepo: cfg.CategoryRepo,
		periodRepo:   cfg.PeriodRepo,
		usage:        cfg.Usage,
		aging:        cfg.Aging,
		gate:         cfg.Gate,
		txScope:      cfg.TxScope,
		logger:       cfg.Logger,
		clock:        shared.SystemClock,
		symbol:       cfg.CurrencySymbol,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SalesOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetCreditMetrics sets the metrics recorder
func (s *SalesOrderService) SetCreditMetrics(m *telemetry.CreditMetrics) {
	s.metrics = m
}

// SetClock overrides the wall clock
func (s *SalesOrderService) SetClock(clock shared.Clock) {
	s.clock = clock
}

// ==================== Editing ====================

// Create creates a draft order for a licensed customer
func (s *SalesOrderService) Create(ctx context.Context, tenantID uuid.UUID, req CreateSalesOrderRequest) (*SalesOrderResponse, error) {
	customer, err := s.licensedCustomer(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}

	var order *trade.SalesOrder
	err = s.txScope.Execute(ctx, func(ctx context.Context) error {
		orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx, tenantID)
		if err != nil {
			return err
		}
		order, err = trade.NewSalesOrder(tenantID, orderNumber, customer.ID, customer.Name)
		if err != nil {
			return err
		}

		if req.BusinessUnitID != nil {
			if err := s.applyBusinessUnit(ctx, order, req.BusinessUnitID); err != nil {
				return err
			}
		}
		if req.ProductCategoryID != nil {
			if err := s.applyProductCategory(ctx, order, customer, req.ProductCategoryID); err != nil {
				return err
			}
		}
		if req.PaymentTermID != nil {
			if err := order.SetPaymentTerm(req.PaymentTermID); err != nil {
				return err
			}
		}

		if err := s.orderRepo.Save(ctx, order); err != nil {
			return err
		}
		return shared.PublishPending(ctx, s.eventPublisher, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sales order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("customer_id", order.CustomerID.String()),
	)

	response := ToSalesOrderResponse(order)
	return &response, nil
}

// SetCustomer changes the customer. The new customer must hold a valid license.
func (s *SalesOrderService) SetCustomer(ctx context.Context, tenantID, orderID uuid.UUID, req SetCustomerRequest) (*SalesOrderResponse, error) {
	customer, err := s.licensedCustomer(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, orderID, func(ctx context.Context, order *trade.SalesOrder) error {
		return order.SetCustomer(customer.ID, customer.Name)
	})
}

// SetBusinessUnit changes the business unit and clears the product category
func (s *SalesOrderService) SetBusinessUnit(ctx context.Context, tenantID, orderID uuid.UUID, req SetBusinessUnitRequest) (*SalesOrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, func(ctx context.Context, order *trade.SalesOrder) error {
		return s.applyBusinessUnit(ctx, order, req.BusinessUnitID)
	})
}

// SetProductCategory switches the product category, swapping stashed lines
// and filling the payment term from the matching credit period
func (s *SalesOrderService) SetProductCategory(ctx context.Context, tenantID, orderID uuid.UUID, req SetProductCategoryRequest) (*SalesOrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, func(ctx context.Context, order *trade.SalesOrder) error {
		customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, order.CustomerID)
		if err != nil {
			return err
		}
		return s.applyProductCategory(ctx, order, customer, req.ProductCategoryID)
	})
}

// SetPaymentTerm sets the payment term
func (s *SalesOrderService) SetPaymentTerm(ctx context.Context, tenantID, orderID uuid.UUID, req SetPaymentTermRequest) (*SalesOrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, func(_ context.Context, order *trade.SalesOrder) error {
		return order.SetPaymentTerm(req.PaymentTermID)
	})
}

// AddLine adds a product line. The header must be complete and the customer
// licensed.
func (s *SalesOrderService) AddLine(ctx context.Context, tenantID, orderID uuid.UUID, req AddOrderLineRequest) (*SalesOrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, func(ctx context.Context, order *trade.SalesOrder) error {
		if missing := order.MissingRequiredFields(); len(missing) > 0 {
			return shared.NewValidationError(trade.RequiredFieldsMessage(missing))
		}
		if _, err := s.licensedCustomer(ctx, tenantID, order.CustomerID); err != nil {
			return err
		}
		_, err := order.AddItem(req.ProductID, req.ProductName, req.Quantity, req.UnitPrice)
		return err
	})
}

// UpdateLine changes quantity and price of a line
func (s *SalesOrderService) UpdateLine(ctx context.Context, tenantID, orderID, lineID uuid.UUID, req UpdateOrderLineRequest) (*SalesOrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, func(ctx context.Context, order *trade.SalesOrder) error {
		if _, err := s.licensedCustomer(ctx, tenantID, order.CustomerID); err != nil {
			return err
		}
		return order.UpdateItem(lineID, req.Quantity, req.UnitPrice)
	})
}

// RemoveLine removes a line
func (s *SalesOrderService) RemoveLine(ctx context.Context, tenantID, orderID, lineID uuid.UUID) (*SalesOrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, func(ctx context.Context, order *trade.SalesOrder) error {
		if _, err := s.licensedCustomer(ctx, tenantID, order.CustomerID); err != nil {
			return err
		}
		return order.RemoveItem(lineID)
	})
}

// ==================== Approval ====================

// CheckCredit evaluates the order against its credit line and the
// customer's aging, records the outcome and posts the status notification
func (s *SalesOrderService) CheckCredit(ctx context.Context, tenantID, orderID uuid.UUID, actor identity.Actor) (*CreditCheckResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sales_order", "check_credit")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderID, orderID.String())

	var (
		order *trade.SalesOrder
		ev    *evaluation
		msg   string
	)
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		ev, err = s.evaluate(ctx, order, false)
		if err != nil {
			return err
		}
		if err := order.RecordCreditCheck(ev.outcome); err != nil {
			return err
		}
		msg = s.statusMessage(order, ev)
		order.PostMessage(trade.MessageKindCreditCheck, msg)

		if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
			return err
		}
		return shared.PublishPending(ctx, s.eventPublisher, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := telemetry.CheckResult(ev.outcome.Exceeded, ev.outcome.HasOverdue)
	telemetry.SetAttributes(span, telemetry.SpanAttrCheckOutcome, result)
	s.metrics.RecordCheck(ctx, result)

	s.logger.Info("credit checked",
		zap.String("order_id", order.ID.String()),
		zap.String("outcome", result),
		zap.String("order_amount", order.TotalAmount.StringFixed(2)),
		zap.String("credit_used", ev.snapshot.CreditUsed.StringFixed(2)),
		zap.String("overdue_amount", ev.aging.TotalOverdue.StringFixed(2)),
	)

	return &CreditCheckResult{
		OrderID:           order.ID,
		Limit:             ev.snapshot.AssignedLimit(),
		Used:              ev.snapshot.CreditUsed,
		Remaining:         ev.snapshot.Remaining(),
		OverdueAmount:     ev.aging.TotalOverdue,
		OrderAmount:       order.TotalAmount,
		CreditExceeded:    ev.outcome.Exceeded,
		HasOverdue:        ev.outcome.HasOverdue,
		RequiredApprovals: ev.requiredApprovals(),
		Message:           msg,
		VisibleActions:    order.VisibleActions(actor),
	}, nil
}

// ApproveSalesOverride records a sales person's override of an exceeded limit
func (s *SalesOrderService) ApproveSalesOverride(ctx context.Context, tenantID, orderID uuid.UUID, actor identity.Actor) (*SalesOrderResponse, error) {
	resp, err := s.mutateAs(ctx, tenantID, orderID, actor, func(_ context.Context, order *trade.SalesOrder) error {
		return order.ApproveCreditOverride(actor)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordOverride(ctx, string(trade.OverrideKindCredit))
	s.logger.Info("credit override approved",
		zap.String("order_id", orderID.String()),
		zap.String("approved_by", actor.Name),
	)
	return resp, nil
}

// ApproveAccountingOverride records an accounting person's approval of the
// customer's overdue receivables
func (s *SalesOrderService) ApproveAccountingOverride(ctx context.Context, tenantID, orderID uuid.UUID, actor identity.Actor) (*SalesOrderResponse, error) {
	resp, err := s.mutateAs(ctx, tenantID, orderID, actor, func(_ context.Context, order *trade.SalesOrder) error {
		return order.ApproveOverdue(actor, s.symbol)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordOverride(ctx, string(trade.OverrideKindOverdue))
	s.logger.Info("overdue approved",
		zap.String("order_id", orderID.String()),
		zap.String("approved_by", actor.Name),
	)
	return resp, nil
}

// Confirm confirms the order. Stored flags are checked first, then usage and
// aging are recomputed and the approvals already granted must still cover
// them. The customer license is re-checked as well.
func (s *SalesOrderService) Confirm(ctx context.Context, tenantID, orderID uuid.UUID, actor identity.Actor) (*SalesOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sales_order", "confirm")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderID, orderID.String())

	var order *trade.SalesOrder
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if !order.IsDraft() {
			return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot confirm order in %s status", order.Status))
		}
		if err := order.ValidateConfirmable(); err != nil {
			return err
		}
		if _, err := s.licensedCustomer(ctx, tenantID, order.CustomerID); err != nil {
			return err
		}
		ev, err := s.evaluate(ctx, order, true)
		if err != nil {
			return err
		}
		if err := order.Confirm(ev.outcome); err != nil {
			return err
		}
		if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
			return err
		}
		return shared.PublishPending(ctx, s.eventPublisher, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("sales order confirmed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)),
	)

	return s.respond(ctx, order, actor), nil
}

// Cancel cancels the order. Cancelling a confirmed order releases its
// credit exposure through the recompute it triggers.
func (s *SalesOrderService) Cancel(ctx context.Context, tenantID, orderID uuid.UUID, req CancelOrderRequest, actor identity.Actor) (*SalesOrderResponse, error) {
	resp, err := s.mutateAs(ctx, tenantID, orderID, actor, func(_ context.Context, order *trade.SalesOrder) error {
		return order.Cancel(req.Reason)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sales order cancelled", zap.String("order_id", orderID.String()))
	return resp, nil
}

// ==================== Reads ====================

// GetByID returns the order with its computed credit figures and the actions
// offered to actor
func (s *SalesOrderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID, actor identity.CapabilityChecker) (*SalesOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, order, actor), nil
}

// ApprovalRequirements previews which approvals the order would need
// without changing it. Only gated business units require anything; the
// overdue window is 1 to 60 days past due.
func (s *SalesOrderService) ApprovalRequirements(ctx context.Context, tenantID, orderID uuid.UUID) (*ApprovalRequirementsResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	resp := &ApprovalRequirementsResponse{
		OrderID:           order.ID,
		OrderAmount:       order.TotalAmount,
		Overdue1To60:      decimal.Zero,
		Remaining:         credit.Unbounded(),
		RequiredApprovals: []string{},
		Messages:          []string{},
	}
	if order.BusinessUnitID == nil || order.ProductCategoryID == nil {
		return resp, nil
	}

	bu, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, *order.BusinessUnitID)
	if err != nil {
		return nil, err
	}
	resp.Gated = s.gate.Applies(bu)
	resp.OverrideCreditDays = bu.OverrideCreditDays
	if !resp.Gated {
		return resp, nil
	}

	snap, err := s.usage.Snapshot(ctx, tenantID, order.CustomerID, *order.ProductCategoryID)
	switch {
	case err == nil:
		resp.Remaining = snap.Remaining()
		resp.CreditExceeded = snap.Exceeds(order.TotalAmount)
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	profile, err := s.aging.Profile(ctx, tenantID, order.CustomerID, s.clock())
	if err != nil {
		return nil, err
	}
	resp.Overdue1To60 = profile.Overdue1To60
	resp.OverdueApproval = profile.Overdue1To60.IsPositive() && bu.OverrideCreditDays

	if resp.CreditExceeded {
		resp.RequiredApprovals = append(resp.RequiredApprovals, ApprovalSales)
		resp.Messages = append(resp.Messages, "Credit limit exceeded - Sales approval required")
	}
	if resp.OverdueApproval {
		resp.RequiredApprovals = append(resp.RequiredApprovals, ApprovalAccounting)
		resp.Messages = append(resp.Messages, "Customer has overdue amount - Accounting approval required")
	}
	return resp, nil
}

// ==================== Helpers ====================

// mutate loads an order, applies fn and saves it in one unit of work
func (s *SalesOrderService) mutate(ctx context.Context, tenantID, orderID uuid.UUID, fn func(ctx context.Context, order *trade.SalesOrder) error) (*SalesOrderResponse, error) {
	return s.mutateAs(ctx, tenantID, orderID, nil, fn)
}

func (s *SalesOrderService) mutateAs(ctx context.Context, tenantID, orderID uuid.UUID, actor identity.CapabilityChecker, fn func(ctx context.Context, order *trade.SalesOrder) error) (*SalesOrderResponse, error) {
	var order *trade.SalesOrder
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if err := fn(ctx, order); err != nil {
			return err
		}
		if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
			return err
		}
		return shared.PublishPending(ctx, s.eventPublisher, order)
	})
	if err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(order)
	response.VisibleActions = order.VisibleActions(actor)
	return &response, nil
}

// respond builds the full response with credit figures. Figures that cannot
// be computed are left out rather than failing the read.
func (s *SalesOrderService) respond(ctx context.Context, order *trade.SalesOrder, actor identity.CapabilityChecker) *SalesOrderResponse {
	response := ToSalesOrderResponse(order)
	response.VisibleActions = order.VisibleActions(actor)

	if order.CustomerID == uuid.Nil || order.ProductCategoryID == nil {
		return &response
	}

	info := &CreditInfo{
		AssignedLimit:         credit.Bounded(decimal.Zero),
		LimitUsed:             decimal.Zero,
		LimitRemaining:        credit.Bounded(decimal.Zero),
		CustomerOverdueAmount: decimal.Zero,
		CreditInfoVisible:     order.Approval.CreditChecked,
	}

	snap, err := s.usage.Snapshot(ctx, order.TenantID, order.CustomerID, *order.ProductCategoryID)
	switch {
	case err == nil:
		info.HasCreditLine = true
		info.AssignedLimit = snap.AssignedLimit()
		info.LimitUsed = snap.CreditUsed
		info.LimitRemaining = snap.Remaining()
	case !errors.Is(err, shared.ErrNotFound):
		s.logger.Warn("credit snapshot unavailable",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}

	profile, err := s.aging.Profile(ctx, order.TenantID, order.CustomerID, s.clock())
	if err != nil {
		s.logger.Warn("aging unavailable",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	} else {
		info.CustomerOverdueAmount = profile.TotalOverdue
	}

	response.Credit = info
	return &response
}

// licensedCustomer loads a customer and checks its license as of today
func (s *SalesOrderService) licensedCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*partner.Customer, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	if err := customer.ValidateLicense(s.clock()); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *SalesOrderService) applyBusinessUnit(ctx context.Context, order *trade.SalesOrder, businessUnitID *uuid.UUID) error {
	if businessUnitID != nil && *businessUnitID != uuid.Nil {
		bu, err := s.categoryRepo.FindByIDForTenant(ctx, order.TenantID, *businessUnitID)
		if err != nil {
			return err
		}
		if !bu.IsBusinessUnit() {
			return shared.NewValidationError("Selected category is not a business unit.")
		}
	}
	return order.SetBusinessUnit(businessUnitID)
}

// applyProductCategory validates the category against the business unit,
// switches it on the order and fills the payment term from the credit
// period of the customer's state
func (s *SalesOrderService) applyProductCategory(ctx context.Context, order *trade.SalesOrder, customer *partner.Customer, categoryID *uuid.UUID) error {
	if categoryID == nil || *categoryID == uuid.Nil {
		return order.SetProductCategory(nil, "")
	}
	if order.BusinessUnitID == nil {
		return shared.NewValidationError("Please select a business unit first.")
	}

	category, err := s.categoryRepo.FindByIDForTenant(ctx, order.TenantID, *categoryID)
	if err != nil {
		return err
	}
	if !category.BelongsTo(*order.BusinessUnitID) {
		return shared.NewValidationError("Product category must belong to the selected business unit.")
	}
	if err := order.SetProductCategory(&category.ID, string(category.StashSlot())); err != nil {
		return err
	}

	termID, err := s.creditPeriodTerm(ctx, customer, category.ID)
	if err != nil {
		return err
	}
	if termID != nil {
		return order.SetPaymentTerm(termID)
	}
	return nil
}

// creditPeriodTerm finds the payment term mapped to the category for the
// customer's state, falling back to the parent company's state
func (s *SalesOrderService) creditPeriodTerm(ctx context.Context, customer *partner.Customer, categoryID uuid.UUID) (*uuid.UUID, error) {
	if s.periodRepo == nil || customer == nil {
		return nil, nil
	}

	state := customer.StateCode
	if state == "" && customer.ParentID != nil {
		parent, err := s.customerRepo.FindByIDForTenant(ctx, customer.TenantID, *customer.ParentID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if parent != nil {
			state = parent.StateCode
		}
	}
	if state == "" {
		return nil, nil
	}

	period, err := s.periodRepo.FindByCategoryAndState(ctx, customer.TenantID, categoryID, state)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	termID := period.PaymentTermID
	return &termID, nil
}

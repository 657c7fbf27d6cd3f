package handler

import (
	"context"

	financeapp "github.com/erp/credit/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceService is the invoice use case surface
type InvoiceService interface {
	Create(ctx context.Context, tenantID uuid.UUID, input financeapp.CreateInvoiceInput) (*financeapp.InvoiceResponse, error)
	Post(ctx context.Context, tenantID, id uuid.UUID) (*financeapp.InvoiceResponse, error)
	Cancel(ctx context.Context, tenantID, id uuid.UUID) (*financeapp.InvoiceResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*financeapp.InvoiceResponse, error)
	ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter financeapp.InvoiceListFilter) ([]financeapp.InvoiceResponse, error)
}

// PaymentService is the payment use case surface
type PaymentService interface {
	Create(ctx context.Context, tenantID uuid.UUID, input financeapp.CreatePaymentInput) (*financeapp.PaymentResponse, error)
	Post(ctx context.Context, tenantID, id uuid.UUID) (*financeapp.PaymentResponse, error)
	Cancel(ctx context.Context, tenantID, id uuid.UUID) (*financeapp.PaymentResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*financeapp.PaymentResponse, error)
}

// ReconciliationService links debit invoices to credit moves
type ReconciliationService interface {
	Reconcile(ctx context.Context, tenantID uuid.UUID, input financeapp.ReconcileInput) (*financeapp.ReconciliationResponse, error)
	Unreconcile(ctx context.Context, tenantID, id uuid.UUID) (*financeapp.ReconciliationResponse, error)
}

// FinanceHandler serves the receivable documents that move credit usage
type FinanceHandler struct {
	BaseHandler
	invoices        InvoiceService
	payments        PaymentService
	reconciliations ReconciliationService
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(invoices InvoiceService, payments PaymentService, reconciliations ReconciliationService) *FinanceHandler {
	return &FinanceHandler{
		invoices:        invoices,
		payments:        payments,
		reconciliations: reconciliations,
	}
}

// respond renders the result of a document operation
func (h *FinanceHandler) respond(c *gin.Context, data any, err error, created bool) {
	switch {
	case err != nil:
		h.HandleError(c, err)
	case created:
		h.Created(c, data)
	default:
		h.Success(c, data)
	}
}

// ==================== Invoices ====================

// CreateInvoice stores a draft invoice
func (h *FinanceHandler) CreateInvoice(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var input financeapp.CreateInvoiceInput
	if !h.bindJSON(c, &input) {
		return
	}

	inv, err := h.invoices.Create(c.Request.Context(), tenantID, input)
	h.respond(c, inv, err, true)
}

func (h *FinanceHandler) GetInvoice(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "invoice")
	if !ok {
		return
	}

	inv, err := h.invoices.GetByID(c.Request.Context(), tenantID, id)
	h.respond(c, inv, err, false)
}

// PostInvoice opens the residual of a draft invoice
func (h *FinanceHandler) PostInvoice(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "invoice")
	if !ok {
		return
	}

	inv, err := h.invoices.Post(c.Request.Context(), tenantID, id)
	h.respond(c, inv, err, false)
}

func (h *FinanceHandler) CancelInvoice(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "invoice")
	if !ok {
		return
	}

	inv, err := h.invoices.Cancel(c.Request.Context(), tenantID, id)
	h.respond(c, inv, err, false)
}

// ListCustomerInvoices pages through a customer's invoices
func (h *FinanceHandler) ListCustomerInvoices(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	customerID, ok := h.pathUUID(c, "id", "customer")
	if !ok {
		return
	}
	var filter financeapp.InvoiceListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	invoices, err := h.invoices.ListByCustomer(c.Request.Context(), tenantID, customerID, filter)
	h.respond(c, invoices, err, false)
}

// ==================== Payments ====================

func (h *FinanceHandler) CreatePayment(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var input financeapp.CreatePaymentInput
	if !h.bindJSON(c, &input) {
		return
	}

	payment, err := h.payments.Create(c.Request.Context(), tenantID, input)
	h.respond(c, payment, err, true)
}

func (h *FinanceHandler) GetPayment(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "payment")
	if !ok {
		return
	}

	payment, err := h.payments.GetByID(c.Request.Context(), tenantID, id)
	h.respond(c, payment, err, false)
}

// PostPayment applies the payment to the oldest open invoice
func (h *FinanceHandler) PostPayment(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "payment")
	if !ok {
		return
	}

	payment, err := h.payments.Post(c.Request.Context(), tenantID, id)
	h.respond(c, payment, err, false)
}

// CancelPayment restores the applied amount on the invoice
func (h *FinanceHandler) CancelPayment(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "payment")
	if !ok {
		return
	}

	payment, err := h.payments.Cancel(c.Request.Context(), tenantID, id)
	h.respond(c, payment, err, false)
}

// ==================== Reconciliations ====================

func (h *FinanceHandler) Reconcile(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var input financeapp.ReconcileInput
	if !h.bindJSON(c, &input) {
		return
	}

	rec, err := h.reconciliations.Reconcile(c.Request.Context(), tenantID, input)
	h.respond(c, rec, err, true)
}

func (h *FinanceHandler) Unreconcile(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "reconciliation")
	if !ok {
		return
	}

	rec, err := h.reconciliations.Unreconcile(c.Request.Context(), tenantID, id)
	h.respond(c, rec, err, false)
}

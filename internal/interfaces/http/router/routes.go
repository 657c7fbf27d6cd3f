package router

import (
	"github.com/erp/credit/internal/interfaces/http/handler"
)

// Handlers bundles the HTTP handlers mounted under the API group
type Handlers struct {
	System     *handler.SystemHandler
	Customers  *handler.CustomerHandler
	Categories *handler.CategoryHandler
	Terms      *handler.TermHandler
	Credit     *handler.CreditHandler
	Finance    *handler.FinanceHandler
	Orders     *handler.SalesOrderHandler
}

// SystemInfoPath is served without authentication
const SystemInfoPath = "/system/info"

// DomainGroups returns the route groups of the credit API
func DomainGroups(h Handlers) []*DomainGroup {
	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo)

	customers := NewDomainGroup("customers", "/customers").
		POST("", h.Customers.Create).
		GET("", h.Customers.List).
		GET("/:id", h.Customers.GetByID).
		PUT("/:id", h.Customers.Update).
		PUT("/:id/license", h.Customers.UpdateLicense).
		DELETE("/:id", h.Customers.Delete).
		GET("/:id/credit-lines", h.Credit.ListByCustomer).
		GET("/:id/overdue", h.Credit.Overdue).
		GET("/:id/invoices", h.Finance.ListCustomerInvoices)

	categories := NewDomainGroup("categories", "/categories").
		POST("", h.Categories.Create).
		GET("/business-units", h.Categories.ListBusinessUnits).
		GET("/:id", h.Categories.GetByID).
		PUT("/:id", h.Categories.Update).
		GET("/:id/children", h.Categories.ListChildren)

	terms := NewDomainGroup("payment-terms", "/payment-terms").
		POST("", h.Terms.CreateTerm).
		GET("", h.Terms.ListTerms)

	periods := NewDomainGroup("credit-periods", "/credit-periods").
		PUT("", h.Terms.SetCreditPeriod).
		GET("", h.Terms.ListCreditPeriods)

	lines := NewDomainGroup("credit-lines", "/credit-lines").
		POST("", h.Credit.Create).
		GET("/:id", h.Credit.GetByID).
		PUT("/:id", h.Credit.Update).
		DELETE("/:id", h.Credit.Delete).
		POST("/:id/refresh", h.Credit.Refresh)

	invoices := NewDomainGroup("invoices", "/invoices").
		POST("", h.Finance.CreateInvoice).
		GET("/:id", h.Finance.GetInvoice).
		POST("/:id/post", h.Finance.PostInvoice).
		POST("/:id/cancel", h.Finance.CancelInvoice)

	payments := NewDomainGroup("payments", "/payments").
		POST("", h.Finance.CreatePayment).
		GET("/:id", h.Finance.GetPayment).
		POST("/:id/post", h.Finance.PostPayment).
		POST("/:id/cancel", h.Finance.CancelPayment)

	reconciliations := NewDomainGroup("reconciliations", "/reconciliations").
		POST("", h.Finance.Reconcile).
		DELETE("/:id", h.Finance.Unreconcile)

	orders := NewDomainGroup("sales-orders", "/sales-orders").
		POST("", h.Orders.Create).
		GET("/:id", h.Orders.GetByID).
		PUT("/:id/customer", h.Orders.SetCustomer).
		PUT("/:id/business-unit", h.Orders.SetBusinessUnit).
		PUT("/:id/category", h.Orders.SetProductCategory).
		PUT("/:id/payment-term", h.Orders.SetPaymentTerm).
		POST("/:id/check-credit", h.Orders.CheckCredit).
		POST("/:id/approve-credit-override", h.Orders.ApproveCreditOverride).
		POST("/:id/approve-overdue", h.Orders.ApproveOverdue).
		POST("/:id/confirm", h.Orders.Confirm).
		POST("/:id/cancel", h.Orders.Cancel).
		GET("/:id/approval-requirements", h.Orders.ApprovalRequirements)
	orders.Group("sales-order-lines", "/:id/lines").
		POST("", h.Orders.AddLine).
		PUT("/:line_id", h.Orders.UpdateLine).
		DELETE("/:line_id", h.Orders.RemoveLine)

	return []*DomainGroup{system, customers, categories, terms, periods, lines, invoices, payments, reconciliations, orders}
}

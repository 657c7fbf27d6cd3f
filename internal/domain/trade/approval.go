package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/credit/internal/domain/identity"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/erp/credit/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Messages surfaced verbatim to the user
const (
	MsgSelectCustomerAndCategory = "Please select customer and product category first."
	MsgAddProductLine            = "Please add at least one product line."

	MsgSalesOverrideForbidden   = "Only sales persons with credit rights can override credit limits."
	MsgSalesOverrideUnavailable = "Credit override is only available when credit limit is exceeded."
	MsgOverdueForbidden         = "Only accounting persons can approve overdue checks."
	MsgOverdueUnavailable       = "Overdue check is only available when customer has overdue amount."

	MsgCheckBeforeConfirm    = "Please check credit limit before confirming the order."
	MsgCreditExceededConfirm = "Credit limit exceeded. Sales person approval required before confirmation."
	MsgOverdueConfirm        = "Customer has overdue amount. Accounting person approval required before confirmation."
)

// RequiredFieldsMessage lists missing header fields as bullets
func RequiredFieldsMessage(missing []string) string {
	var b strings.Builder
	b.WriteString("Please fill the following required fields before adding products:\n")
	for _, m := range missing {
		b.WriteString("\n• ")
		b.WriteString(m)
	}
	return b.String()
}

// ApprovalState is the credit gating state carried by a draft order
type ApprovalState struct {
	CreditChecked          bool
	CreditExceeded         bool
	CreditOverrideApproved bool
	HasOverdue             bool
	OverdueCheckApproved   bool
	// OverdueAmount is the past-due total seen by the last check
	OverdueAmount decimal.Decimal
}

// Reset returns the state to not-checked
func (a *ApprovalState) Reset() {
	*a = ApprovalState{OverdueAmount: decimal.Zero}
}

// CreditSatisfied is true when credit is within limit or overridden
func (a ApprovalState) CreditSatisfied() bool {
	return !a.CreditExceeded || a.CreditOverrideApproved
}

// OverdueSatisfied is true when there is nothing overdue to approve or it was approved
func (a ApprovalState) OverdueSatisfied() bool {
	return !a.HasOverdue || a.OverdueCheckApproved
}

// Confirmable is true once checked and both gates are satisfied
func (a ApprovalState) Confirmable() bool {
	return a.CreditChecked && a.CreditSatisfied() && a.OverdueSatisfied()
}

// CreditCheckOutcome is the result of evaluating an order against its credit
// line and the customer's aging
type CreditCheckOutcome struct {
	Exceeded      bool
	HasOverdue    bool
	OverdueAmount decimal.Decimal
}

// ValidateCreditInputs checks that the order can be credit checked
func (o *SalesOrder) ValidateCreditInputs() error {
	if o.CustomerID == uuid.Nil || o.ProductCategoryID == nil {
		return shared.NewValidationError(MsgSelectCustomerAndCategory)
	}
	if len(o.Items) == 0 {
		return shared.NewValidationError(MsgAddProductLine)
	}
	return nil
}

// RecordCreditCheck moves the order to checked. Earlier approvals are
// dropped because they were granted against different figures.
func (o *SalesOrder) RecordCreditCheck(outcome CreditCheckOutcome) error {
	if err := o.requireDraft("Credit can only be checked on draft orders"); err != nil {
		return err
	}
	if err := o.ValidateCreditInputs(); err != nil {
		return err
	}

	o.Approval = ApprovalState{
		CreditChecked:  true,
		CreditExceeded: outcome.Exceeded,
		HasOverdue:     outcome.HasOverdue,
		OverdueAmount:  outcome.OverdueAmount,
	}
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewSalesOrderCreditCheckedEvent(o))

	return nil
}

// ApproveCreditOverride records a sales override of an exceeded limit
func (o *SalesOrder) ApproveCreditOverride(actor identity.Actor) error {
	if err := o.requireDraft("Credit override is only possible on draft orders"); err != nil {
		return err
	}
	if err := identity.RequireCapability(actor, identity.CapabilitySalesCreditOverride, MsgSalesOverrideForbidden); err != nil {
		return err
	}
	if !o.Approval.CreditChecked || !o.Approval.CreditExceeded {
		return shared.NewValidationError(MsgSalesOverrideUnavailable)
	}

	o.Approval.CreditOverrideApproved = true
	o.UpdatedAt = time.Now()

	o.PostMessage(MessageKindApproval, fmt.Sprintf("Credit limit overridden by Sales Person: %s", actor.Name))
	o.AddDomainEvent(NewSalesOrderOverrideApprovedEvent(o, OverrideKindCredit, actor))

	return nil
}

// ApproveOverdue records an accounting approval of overdue receivables.
// symbol prefixes the overdue amount in the posted message.
func (o *SalesOrder) ApproveOverdue(actor identity.Actor, symbol string) error {
	if err := o.requireDraft("Overdue approval is only possible on draft orders"); err != nil {
		return err
	}
	if err := identity.RequireCapability(actor, identity.CapabilityAccountingCreditOverride, MsgOverdueForbidden); err != nil {
		return err
	}
	if !o.Approval.CreditChecked || !o.Approval.HasOverdue {
		return shared.NewValidationError(MsgOverdueUnavailable)
	}

	o.Approval.OverdueCheckApproved = true
	o.UpdatedAt = time.Now()

	o.PostMessage(MessageKindApproval, fmt.Sprintf(
		"Overdue amount approved by Accounting Person: %s. Overdue Amount: %s",
		actor.Name, formatAmount(symbol, o.Approval.OverdueAmount)))
	o.AddDomainEvent(NewSalesOrderOverrideApprovedEvent(o, OverrideKindOverdue, actor))

	return nil
}

// ValidateConfirmable checks the stored gating flags
func (o *SalesOrder) ValidateConfirmable() error {
	if !o.Approval.CreditChecked {
		return shared.NewValidationError(MsgCheckBeforeConfirm)
	}
	if !o.Approval.CreditSatisfied() {
		return shared.NewValidationError(MsgCreditExceededConfirm)
	}
	if !o.Approval.OverdueSatisfied() {
		return shared.NewValidationError(MsgOverdueConfirm)
	}
	return nil
}

// Confirm confirms the order against a freshly computed outcome. The stored
// flags must pass first, then the fresh outcome must pass with the approvals
// already granted.
func (o *SalesOrder) Confirm(fresh CreditCheckOutcome) error {
	if !o.Status.CanTransitionTo(OrderStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm order in %s status", o.Status))
	}
	if err := o.ValidateConfirmable(); err != nil {
		return err
	}
	if fresh.Exceeded && !o.Approval.CreditOverrideApproved {
		return shared.NewValidationError(MsgCreditExceededConfirm)
	}
	if fresh.HasOverdue && !o.Approval.OverdueCheckApproved {
		return shared.NewValidationError(MsgOverdueConfirm)
	}
	if len(o.Items) == 0 {
		return shared.NewValidationError(MsgAddProductLine)
	}

	o.Approval.CreditExceeded = fresh.Exceeded
	o.Approval.HasOverdue = fresh.HasOverdue
	o.Approval.OverdueAmount = fresh.OverdueAmount

	now := time.Now()
	o.Status = OrderStatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now

	o.PostMessage(MessageKindConfirmation, o.confirmationMessage())
	o.AddDomainEvent(NewSalesOrderConfirmedEvent(o))

	return nil
}

func (o *SalesOrder) confirmationMessage() string {
	msg := "Order confirmed"
	if o.Approval.CreditOverrideApproved {
		msg += " with credit override approval"
	}
	if o.Approval.OverdueCheckApproved {
		msg += " with overdue approval"
	}
	return msg + "."
}

// VisibleActions says which approval action the UI should offer
type VisibleActions struct {
	ShowCheckCredit        bool `json:"show_check_credit"`
	ShowSalesOverride      bool `json:"show_sales_override"`
	ShowAccountingOverride bool `json:"show_accounting_override"`
	ShowConfirm            bool `json:"show_confirm"`
}

// Any reports whether an action is offered
func (v VisibleActions) Any() bool {
	return v.ShowCheckCredit || v.ShowSalesOverride || v.ShowAccountingOverride || v.ShowConfirm
}

// VisibleActions derives the single next action for the actor. Nothing is
// offered outside draft, and an override the actor cannot grant is hidden
// rather than replaced by a later step.
func (o *SalesOrder) VisibleActions(actor identity.CapabilityChecker) VisibleActions {
	var v VisibleActions
	if !o.IsDraft() {
		return v
	}

	a := o.Approval
	switch {
	case !a.CreditChecked:
		v.ShowCheckCredit = o.HasCreditInputs()
	case !a.CreditSatisfied():
		v.ShowSalesOverride = actor != nil && actor.HasCapability(identity.CapabilitySalesCreditOverride)
	case !a.OverdueSatisfied():
		v.ShowAccountingOverride = actor != nil && actor.HasCapability(identity.CapabilityAccountingCreditOverride)
	default:
		v.ShowConfirm = true
	}
	return v
}

func formatAmount(symbol string, amount decimal.Decimal) string {
	return valueobject.NewMoney(amount).Format(symbol)
}

package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a sales order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusDone      OrderStatus = "DONE"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusDone, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusDone || target == OrderStatusCancelled
	case OrderStatusDone, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsCreditExposure reports whether orders in this status count against a
// credit line
func (s OrderStatus) IsCreditExposure() bool {
	return s == OrderStatusConfirmed || s == OrderStatusDone
}

// CreditExposureStatuses lists the statuses that consume credit
func CreditExposureStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusConfirmed, OrderStatusDone}
}

// SalesOrderItem represents a line item in a sales order
type SalesOrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal // Quantity * UnitPrice
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewSalesOrderItem creates a new sales order item
func NewSalesOrderItem(orderID, productID uuid.UUID, productName string, quantity, unitPrice decimal.Decimal) (*SalesOrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if strings.TrimSpace(productName) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &SalesOrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      quantity.Mul(unitPrice),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Update changes quantity and price and recalculates the amount
func (i *SalesOrderItem) Update(quantity, unitPrice decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	i.Quantity = quantity
	i.UnitPrice = unitPrice
	i.Amount = quantity.Mul(unitPrice)
	i.UpdatedAt = time.Now()

	return nil
}

// SalesOrder represents a sales order aggregate root. Besides the usual
// lifecycle it carries the credit approval state: any change to customer,
// business unit, category or lines sends that state back to not-checked.
type SalesOrder struct {
	shared.TenantAggregateRoot
	OrderNumber       string
	CustomerID        uuid.UUID
	CustomerName      string
	BusinessUnitID    *uuid.UUID
	ProductCategoryID *uuid.UUID
	CategorySlot      string // stash slot of the current product category
	PaymentTermID     *uuid.UUID
	Items             []SalesOrderItem
	TotalAmount       decimal.Decimal
	Status            OrderStatus
	Approval          ApprovalState
	Stash             LineStash
	Messages          []OrderMessage
	ConfirmedAt       *time.Time
	DoneAt            *time.Time
	CancelledAt       *time.Time
	CancelReason      string
}

// NewSalesOrder creates a new sales order
func NewSalesOrder(tenantID uuid.UUID, orderNumber string, customerID uuid.UUID, customerName string) (*SalesOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}

	order := &SalesOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		CustomerID:          customerID,
		CustomerName:        customerName,
		Items:               make([]SalesOrderItem, 0),
		TotalAmount:         decimal.Zero,
		Status:              OrderStatusDraft,
		Messages:            make([]OrderMessage, 0),
	}

	order.AddDomainEvent(NewSalesOrderCreatedEvent(order))

	return order, nil
}

// SetCustomer changes the customer
func (o *SalesOrder) SetCustomer(customerID uuid.UUID, customerName string) error {
	if err := o.requireDraft("Cannot change customer of a non-draft order"); err != nil {
		return err
	}
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerID == o.CustomerID {
		return nil
	}

	o.CustomerID = customerID
	o.CustomerName = customerName
	o.touchCreditInputs()
	return nil
}

// SetBusinessUnit changes the business unit and clears the product category,
// which must be re-picked under the new unit.
func (o *SalesOrder) SetBusinessUnit(businessUnitID *uuid.UUID) error {
	if err := o.requireDraft("Cannot change business unit of a non-draft order"); err != nil {
		return err
	}
	if sameID(o.BusinessUnitID, businessUnitID) {
		return nil
	}

	o.BusinessUnitID = copyID(businessUnitID)
	o.ProductCategoryID = nil
	o.CategorySlot = ""
	o.touchCreditInputs()
	return nil
}

// SetProductCategory switches the product category. Current lines are
// stashed under the outgoing category's slot and the incoming category's
// stash, if any, is restored.
func (o *SalesOrder) SetProductCategory(categoryID *uuid.UUID, slot string) error {
	if err := o.requireDraft("Cannot change product category of a non-draft order"); err != nil {
		return err
	}
	if categoryID != nil && o.BusinessUnitID == nil {
		return shared.NewValidationError("Please select a business unit first.")
	}
	if sameID(o.ProductCategoryID, categoryID) {
		return nil
	}

	if err := o.Stash.Put(o.CategorySlot, o.Items); err != nil {
		return err
	}

	o.ProductCategoryID = copyID(categoryID)
	o.CategorySlot = slot
	o.Items = make([]SalesOrderItem, 0)

	restored, err := o.Stash.Lines(slot)
	if err != nil {
		return err
	}
	for _, l := range restored {
		item, err := NewSalesOrderItem(o.ID, l.ProductID, l.Name, l.Qty, l.Price)
		if err != nil {
			return err
		}
		o.Items = append(o.Items, *item)
	}

	o.recalculateTotals()
	o.touchCreditInputs()
	return nil
}

// SetPaymentTerm sets the payment term. It does not affect credit approval.
func (o *SalesOrder) SetPaymentTerm(termID *uuid.UUID) error {
	if err := o.requireDraft("Cannot change payment term of a non-draft order"); err != nil {
		return err
	}
	o.PaymentTermID = copyID(termID)
	o.UpdatedAt = time.Now()
	return nil
}

// MissingRequiredFields lists the header fields that must be set before
// lines can be added
func (o *SalesOrder) MissingRequiredFields() []string {
	var missing []string
	if o.CustomerID == uuid.Nil {
		missing = append(missing, "Customer")
	}
	if o.BusinessUnitID == nil {
		missing = append(missing, "Business Unit")
	}
	if o.ProductCategoryID == nil {
		missing = append(missing, "Product Category")
	}
	if o.PaymentTermID == nil {
		missing = append(missing, "Payment Terms")
	}
	return missing
}

// AddItem adds a line. Customer, business unit, product category and
// payment term must all be set first.
func (o *SalesOrder) AddItem(productID uuid.UUID, productName string, quantity, unitPrice decimal.Decimal) (*SalesOrderItem, error) {
	if err := o.requireDraft("Cannot add items to a non-draft order"); err != nil {
		return nil, err
	}
	if missing := o.MissingRequiredFields(); len(missing) > 0 {
		return nil, shared.NewValidationError(RequiredFieldsMessage(missing))
	}

	for _, item := range o.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in order, update quantity instead")
		}
	}

	item, err := NewSalesOrderItem(o.ID, productID, productName, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	if err := o.linesChanged(); err != nil {
		return nil, err
	}

	return item, nil
}

// UpdateItem changes quantity and price of a line
func (o *SalesOrder) UpdateItem(itemID uuid.UUID, quantity, unitPrice decimal.Decimal) error {
	if err := o.requireDraft("Cannot update items in a non-draft order"); err != nil {
		return err
	}

	item := o.GetItem(itemID)
	if item == nil {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
	}
	if err := item.Update(quantity, unitPrice); err != nil {
		return err
	}
	return o.linesChanged()
}

// RemoveItem removes a line
func (o *SalesOrder) RemoveItem(itemID uuid.UUID) error {
	if err := o.requireDraft("Cannot remove items from a non-draft order"); err != nil {
		return err
	}

	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			return o.linesChanged()
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

// MarkDone locks a confirmed order
func (o *SalesOrder) MarkDone() error {
	if !o.Status.CanTransitionTo(OrderStatusDone) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot lock order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = OrderStatusDone
	o.DoneAt = &now
	o.UpdatedAt = now

	return nil
}

// Cancel cancels the order. Cancelling a confirmed order releases its
// credit exposure.
func (o *SalesOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}

	wasConfirmed := o.Status == OrderStatusConfirmed
	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = strings.TrimSpace(reason)
	o.UpdatedAt = now

	o.AddDomainEvent(NewSalesOrderCancelledEvent(o, wasConfirmed))

	return nil
}

// HasCreditInputs reports whether customer, category and lines are present
func (o *SalesOrder) HasCreditInputs() bool {
	return o.CustomerID != uuid.Nil && o.ProductCategoryID != nil && len(o.Items) > 0
}

// GetItem returns an item by its ID
func (o *SalesOrder) GetItem(itemID uuid.UUID) *SalesOrderItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// ItemCount returns the number of items in the order
func (o *SalesOrder) ItemCount() int {
	return len(o.Items)
}

// IsDraft returns true if order is in draft status
func (o *SalesOrder) IsDraft() bool {
	return o.Status == OrderStatusDraft
}

// IsConfirmed returns true if order is confirmed
func (o *SalesOrder) IsConfirmed() bool {
	return o.Status == OrderStatusConfirmed
}

// IsCancelled returns true if order is cancelled
func (o *SalesOrder) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// PostMessage appends a notification to the order log
func (o *SalesOrder) PostMessage(kind MessageKind, body string) {
	o.Messages = append(o.Messages, OrderMessage{
		Kind:     kind,
		Body:     body,
		PostedAt: time.Now(),
	})
}

func (o *SalesOrder) requireDraft(msg string) error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", msg)
	}
	return nil
}

// linesChanged recomputes totals, refreshes the current category's stash and
// resets approval
func (o *SalesOrder) linesChanged() error {
	o.recalculateTotals()
	if o.CategorySlot != "" {
		if err := o.Stash.Put(o.CategorySlot, o.Items); err != nil {
			return err
		}
	}
	o.touchCreditInputs()
	return nil
}

func (o *SalesOrder) touchCreditInputs() {
	o.Approval.Reset()
	o.UpdatedAt = time.Now()
}

func (o *SalesOrder) recalculateTotals() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	o.TotalAmount = total
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	c := *id
	return &c
}

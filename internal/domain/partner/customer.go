package partner

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// licenseDateLayout is the dd/mm/yyyy layout used in license messages
const licenseDateLayout = "02/01/2006"

// Customer represents a contact that can buy from the company.
// CustomerRank > 0 marks the contact as a customer (as opposed to a vendor),
// which is what makes the license requirements apply.
type Customer struct {
	shared.TenantAggregateRoot
	Code             string
	Name             string
	CustomerRank     int
	Status           CustomerStatus
	LicenseNumber    string
	LicenseValidUpto *time.Time
	StateCode        string     // region used for credit period lookup
	ParentID         *uuid.UUID // owning company, if any
}

// NewCustomer creates a new customer with required fields
func NewCustomer(tenantID uuid.UUID, code, name string) (*Customer, error) {
	if err := validateCustomerCode(code); err != nil {
		return nil, err
	}
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}

	customer := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		CustomerRank:        1,
		Status:              CustomerStatusActive,
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

// Update updates the customer's basic information
func (c *Customer) Update(name string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}

	c.Name = strings.TrimSpace(name)
	c.UpdatedAt = time.Now()

	c.AddDomainEvent(NewCustomerUpdatedEvent(c))

	return nil
}

// SetCustomerRank sets the customer rank. Zero means the contact is not a customer.
func (c *Customer) SetCustomerRank(rank int) error {
	if rank < 0 {
		return shared.NewDomainError("INVALID_CUSTOMER_RANK", "Customer rank cannot be negative")
	}
	c.CustomerRank = rank
	c.UpdatedAt = time.Now()
	return nil
}

// SetLicense replaces the license details. Either value may be empty.
func (c *Customer) SetLicense(number string, validUpto *time.Time) {
	c.LicenseNumber = strings.TrimSpace(number)
	if validUpto != nil {
		d := shared.DateOnly(*validUpto)
		c.LicenseValidUpto = &d
	} else {
		c.LicenseValidUpto = nil
	}
	c.UpdatedAt = time.Now()

	c.AddDomainEvent(NewCustomerLicenseChangedEvent(c))
}

// SetState sets the region code used for payment-term lookup
func (c *Customer) SetState(stateCode string) {
	c.StateCode = strings.ToUpper(strings.TrimSpace(stateCode))
	c.UpdatedAt = time.Now()
}

// SetParent links the customer to its parent company
func (c *Customer) SetParent(parentID *uuid.UUID) error {
	if parentID != nil && *parentID == c.ID {
		return shared.NewDomainError("INVALID_PARENT", "Customer cannot be its own parent")
	}
	c.ParentID = parentID
	c.UpdatedAt = time.Now()
	return nil
}

// Activate activates the customer
func (c *Customer) Activate() error {
	if c.Status == CustomerStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Customer is already active")
	}
	c.Status = CustomerStatusActive
	c.UpdatedAt = time.Now()
	return nil
}

// Deactivate deactivates the customer
func (c *Customer) Deactivate() error {
	if c.Status == CustomerStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Customer is already inactive")
	}
	c.Status = CustomerStatusInactive
	c.UpdatedAt = time.Now()
	return nil
}

// MarkDeleted records the deletion so dependents (credit lines) can cascade
func (c *Customer) MarkDeleted() {
	c.AddDomainEvent(NewCustomerDeletedEvent(c))
}

// IsCustomer returns true if the contact has a positive customer rank
func (c *Customer) IsCustomer() bool {
	return c.CustomerRank > 0
}

// IsActive returns true if customer is active
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// LicenseIssues lists the license problems as of today. Contacts that are
// not customers have no license requirements.
func (c *Customer) LicenseIssues(today time.Time) []string {
	if !c.IsCustomer() {
		return nil
	}

	issues := make([]string, 0, 2)
	if c.LicenseNumber == "" {
		issues = append(issues, "License Number field is empty")
	}
	if c.LicenseValidUpto == nil {
		issues = append(issues, "License Valid Date field is empty")
	} else {
		day := shared.DateOnly(today)
		if c.LicenseValidUpto.Before(day) {
			issues = append(issues, fmt.Sprintf("License has expired on %s. Current date is %s",
				c.LicenseValidUpto.Format(licenseDateLayout), day.Format(licenseDateLayout)))
		}
	}
	return issues
}

// ValidateLicense returns a LICENSE_INVALID error listing every issue, or nil
func (c *Customer) ValidateLicense(today time.Time) error {
	issues := c.LicenseIssues(today)
	if len(issues) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Customer '%s' has license issues:\n", c.Name)
	for i, issue := range issues {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("• ")
		b.WriteString(issue)
	}
	b.WriteString("\n\nPlease update the customer's license information before saving the sales order.")

	return shared.NewDomainError(shared.CodeLicenseInvalid, b.String())
}

func validateCustomerCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Customer code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Customer code cannot exceed 50 characters")
	}
	return nil
}

func validateCustomerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}

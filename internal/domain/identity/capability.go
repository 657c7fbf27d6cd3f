package identity

import (
	"sort"
	"strings"

	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
)

// Capability is a named right an actor may hold for credit governance actions
type Capability string

const (
	// CapabilitySalesCreditOverride lets a sales person approve orders that exceed the credit limit
	CapabilitySalesCreditOverride Capability = "is_sales_person_credit"
	// CapabilityAccountingCreditOverride lets an accounting person approve orders of customers with overdue receivables
	CapabilityAccountingCreditOverride Capability = "is_accounting_person_credit"
)

// IsValid checks if the capability is one of the known capabilities
func (c Capability) IsValid() bool {
	switch c {
	case CapabilitySalesCreditOverride, CapabilityAccountingCreditOverride:
		return true
	}
	return false
}

// String returns the string representation
func (c Capability) String() string {
	return string(c)
}

// Capabilities is an immutable set of capabilities
type Capabilities struct {
	set map[Capability]struct{}
}

// NewCapabilities builds a capability set, ignoring unknown values
func NewCapabilities(caps ...Capability) Capabilities {
	set := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		if c.IsValid() {
			set[c] = struct{}{}
		}
	}
	return Capabilities{set: set}
}

// ParseCapabilities parses a comma separated list or a slice of codes
func ParseCapabilities(codes ...string) Capabilities {
	caps := make([]Capability, 0, len(codes))
	for _, code := range codes {
		for _, part := range strings.Split(code, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				caps = append(caps, Capability(part))
			}
		}
	}
	return NewCapabilities(caps...)
}

// Has reports whether the set contains c
func (c Capabilities) Has(capability Capability) bool {
	_, ok := c.set[capability]
	return ok
}

// List returns the capabilities sorted by name
func (c Capabilities) List() []Capability {
	out := make([]Capability, 0, len(c.set))
	for k := range c.set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CapabilityChecker answers capability questions about the current actor
type CapabilityChecker interface {
	HasCapability(capability Capability) bool
}

// Actor is the user performing an action
type Actor struct {
	UserID       uuid.UUID
	Name         string
	Capabilities Capabilities
}

// NewActor creates an actor
func NewActor(userID uuid.UUID, name string, caps ...Capability) Actor {
	return Actor{
		UserID:       userID,
		Name:         name,
		Capabilities: NewCapabilities(caps...),
	}
}

// HasCapability implements CapabilityChecker
func (a Actor) HasCapability(capability Capability) bool {
	return a.Capabilities.Has(capability)
}

// IsSalesCreditPerson reports the sales override capability
func (a Actor) IsSalesCreditPerson() bool {
	return a.HasCapability(CapabilitySalesCreditOverride)
}

// IsAccountingCreditPerson reports the accounting override capability
func (a Actor) IsAccountingCreditPerson() bool {
	return a.HasCapability(CapabilityAccountingCreditOverride)
}

// RequireCapability returns a FORBIDDEN domain error with message when the
// checker lacks the capability
func RequireCapability(checker CapabilityChecker, capability Capability, message string) error {
	if checker == nil || !checker.HasCapability(capability) {
		return shared.NewDomainError(shared.CodeForbidden, message)
	}
	return nil
}

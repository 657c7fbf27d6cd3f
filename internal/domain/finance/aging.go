package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Aging band boundaries, in days past due
const (
	ShortTermBandDays = 30
	BypassBandDays    = 31
	ExtendedBandDays  = 60
)

// AgingProfile buckets a customer's open residuals by days overdue. The
// three windows are read by different callers:
//   - Overdue1To30 and BypassEligible by the customer overdue summary
//   - Overdue1To60 by the approval requirement preview
//   - TotalOverdue by the credit check
type AgingProfile struct {
	AsOf              time.Time       `json:"as_of"`
	TotalOverdue      decimal.Decimal `json:"total_overdue"`
	Overdue1To30      decimal.Decimal `json:"overdue_1_30"`
	Overdue1To60      decimal.Decimal `json:"overdue_1_60"`
	BypassEligible    bool            `json:"bypass_eligible"`
	OldestDaysOverdue int             `json:"oldest_days_overdue"`
	OverdueInvoices   int             `json:"overdue_invoices"`
}

// HasOverdue returns true if any residual is past due
func (p AgingProfile) HasOverdue() bool {
	return p.TotalOverdue.IsPositive()
}

// ComputeAging scans invoices and buckets open, past-due residuals as of
// asOf. Invoices that are not open customer invoices, or that have no due
// date, or are not yet past due, are ignored.
func ComputeAging(invoices []Invoice, asOf time.Time) AgingProfile {
	profile := AgingProfile{
		AsOf:         asOf,
		TotalOverdue: decimal.Zero,
		Overdue1To30: decimal.Zero,
		Overdue1To60: decimal.Zero,
	}

	withinBypass := false
	beyondBypass := false

	for i := range invoices {
		inv := &invoices[i]
		if !inv.IsOpen() || inv.DueDate == nil {
			continue
		}
		days := inv.DaysOverdue(asOf)
		if days < 1 {
			continue
		}

		profile.TotalOverdue = profile.TotalOverdue.Add(inv.AmountResidual)
		profile.OverdueInvoices++
		if days > profile.OldestDaysOverdue {
			profile.OldestDaysOverdue = days
		}

		if days <= ShortTermBandDays {
			profile.Overdue1To30 = profile.Overdue1To30.Add(inv.AmountResidual)
		}
		if days <= ExtendedBandDays {
			profile.Overdue1To60 = profile.Overdue1To60.Add(inv.AmountResidual)
		}
		if days <= BypassBandDays {
			withinBypass = true
		} else {
			beyondBypass = true
		}
	}

	profile.BypassEligible = withinBypass && !beyondBypass
	return profile
}

package catalog

import "strings"

// DefaultGatedBusinessUnits are the name fragments of business units whose
// orders are subject to overdue gating
var DefaultGatedBusinessUnits = []string{"FERTILIZER", "FERTILISER", "SND"}

// OverdueGate decides which business units are subject to overdue gating
type OverdueGate struct {
	keywords []string
}

// NewOverdueGate creates a gate matching any of the keywords, case-insensitively.
// An empty list falls back to DefaultGatedBusinessUnits.
func NewOverdueGate(keywords ...string) OverdueGate {
	if len(keywords) == 0 {
		keywords = DefaultGatedBusinessUnits
	}
	upper := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToUpper(strings.TrimSpace(k))
		if k != "" {
			upper = append(upper, k)
		}
	}
	return OverdueGate{keywords: upper}
}

// Applies reports whether orders of the business unit go through overdue gating
func (g OverdueGate) Applies(businessUnit *Category) bool {
	if businessUnit == nil {
		return false
	}
	name := strings.ToUpper(businessUnit.Name)
	for _, k := range g.keywords {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

// RequiresApproval reports whether an overdue amount under the business
// unit must be approved by accounting
func (g OverdueGate) RequiresApproval(businessUnit *Category) bool {
	return g.Applies(businessUnit) && businessUnit.OverrideCreditDays
}

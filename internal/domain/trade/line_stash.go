package trade

import (
	"encoding/json"
	"fmt"

	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stash slot names
const (
	StashSlotSND        = "snd"
	StashSlotFertilizer = "fertilizer"
)

// StashedLine is the serialized form of an order line parked while another
// category is selected
type StashedLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Qty       decimal.Decimal `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	Name      string          `json:"name"`
}

// LineStash keeps one JSON snapshot of lines per stash slot
type LineStash struct {
	SND        string
	Fertilizer string
}

// Put serializes items into slot. An unknown or empty slot is ignored.
func (s *LineStash) Put(slot string, items []SalesOrderItem) error {
	target := s.slot(slot)
	if target == nil {
		return nil
	}

	lines := make([]StashedLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, StashedLine{
			ProductID: item.ProductID,
			Qty:       item.Quantity,
			Price:     item.UnitPrice,
			Name:      item.ProductName,
		})
	}

	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("stash lines: %w", err)
	}
	*target = string(data)
	return nil
}

// Lines decodes the snapshot held in slot. An empty slot yields no lines.
func (s *LineStash) Lines(slot string) ([]StashedLine, error) {
	target := s.slot(slot)
	if target == nil || *target == "" {
		return nil, nil
	}

	var lines []StashedLine
	if err := json.Unmarshal([]byte(*target), &lines); err != nil {
		return nil, shared.NewDomainError(shared.CodeConsistency, fmt.Sprintf("Stashed %s lines are corrupt", slot))
	}
	return lines, nil
}

func (s *LineStash) slot(name string) *string {
	switch name {
	case StashSlotSND:
		return &s.SND
	case StashSlotFertilizer:
		return &s.Fertilizer
	}
	return nil
}

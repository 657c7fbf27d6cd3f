package models

import (
	"time"

	"github.com/erp/credit/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesOrderModel is the persistence model for the SalesOrder aggregate.
// The approval state is flattened into columns; messages are a JSON array.
type SalesOrderModel struct {
	TenantAggregateModel
	OrderNumber       string            `gorm:"type:varchar(50);not null;uniqueIndex:idx_sales_order_tenant_number,priority:2"`
	CustomerID        uuid.UUID         `gorm:"type:uuid;not null;index:idx_sales_order_exposure,priority:1"`
	CustomerName      string            `gorm:"type:varchar(200);not null"`
	BusinessUnitID    *uuid.UUID        `gorm:"type:uuid"`
	ProductCategoryID *uuid.UUID        `gorm:"type:uuid;index:idx_sales_order_exposure,priority:2"`
	CategorySlot      string            `gorm:"type:varchar(20)"`
	PaymentTermID     *uuid.UUID        `gorm:"type:uuid"`
	TotalAmount       decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	Status            trade.OrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index:idx_sales_order_exposure,priority:3"`

	CreditChecked          bool            `gorm:"not null;default:false"`
	CreditExceeded         bool            `gorm:"not null;default:false"`
	CreditOverrideApproved bool            `gorm:"not null;default:false"`
	HasOverdue             bool            `gorm:"not null;default:false"`
	OverdueCheckApproved   bool            `gorm:"not null;default:false"`
	OverdueAmount          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	StashSND        string               `gorm:"column:stash_snd;type:text"`
	StashFertilizer string               `gorm:"column:stash_fertilizer;type:text"`
	Messages        []trade.OrderMessage `gorm:"serializer:json;type:jsonb"`

	ConfirmedAt  *time.Time
	DoneAt       *time.Time
	CancelledAt  *time.Time
	CancelReason string                `gorm:"type:varchar(500)"`
	Items        []SalesOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesOrderModel) TableName() string {
	return "sales_orders"
}

// ToDomain converts the model to a SalesOrder
func (m *SalesOrderModel) ToDomain() *trade.SalesOrder {
	items := make([]trade.SalesOrderItem, len(m.Items))
	for i := range m.Items {
		items[i] = m.Items[i].ToDomain()
	}
	messages := m.Messages
	if messages == nil {
		messages = make([]trade.OrderMessage, 0)
	}

	return &trade.SalesOrder{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		OrderNumber:         m.OrderNumber,
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		BusinessUnitID:      m.BusinessUnitID,
		ProductCategoryID:   m.ProductCategoryID,
		CategorySlot:        m.CategorySlot,
		PaymentTermID:       m.PaymentTermID,
		Items:               items,
		TotalAmount:         m.TotalAmount,
		Status:              m.Status,
		Approval: trade.ApprovalState{
			CreditChecked:          m.CreditChecked,
			CreditExceeded:         m.CreditExceeded,
			CreditOverrideApproved: m.CreditOverrideApproved,
			HasOverdue:             m.HasOverdue,
			OverdueCheckApproved:   m.OverdueCheckApproved,
			OverdueAmount:          m.OverdueAmount,
		},
		Stash:        trade.LineStash{SND: m.StashSND, Fertilizer: m.StashFertilizer},
		Messages:     messages,
		ConfirmedAt:  m.ConfirmedAt,
		DoneAt:       m.DoneAt,
		CancelledAt:  m.CancelledAt,
		CancelReason: m.CancelReason,
	}
}

// SalesOrderModelFromDomain creates a model from a SalesOrder, items included
func SalesOrderModelFromDomain(o *trade.SalesOrder) *SalesOrderModel {
	m := &SalesOrderModel{
		OrderNumber:            o.OrderNumber,
		CustomerID:             o.CustomerID,
		CustomerName:           o.CustomerName,
		BusinessUnitID:         o.BusinessUnitID,
		ProductCategoryID:      o.ProductCategoryID,
		CategorySlot:           o.CategorySlot,
		PaymentTermID:          o.PaymentTermID,
		TotalAmount:            o.TotalAmount,
		Status:                 o.Status,
		CreditChecked:          o.Approval.CreditChecked,
		CreditExceeded:         o.Approval.CreditExceeded,
		CreditOverrideApproved: o.Approval.CreditOverrideApproved,
		HasOverdue:             o.Approval.HasOverdue,
		OverdueCheckApproved:   o.Approval.OverdueCheckApproved,
		OverdueAmount:          o.Approval.OverdueAmount,
		StashSND:               o.Stash.SND,
		StashFertilizer:        o.Stash.Fertilizer,
		Messages:               o.Messages,
		ConfirmedAt:            o.ConfirmedAt,
		DoneAt:                 o.DoneAt,
		CancelledAt:            o.CancelledAt,
		CancelReason:           o.CancelReason,
	}
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	m.Items = make([]SalesOrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i] = SalesOrderItemModelFromDomain(o.ID, &o.Items[i])
	}
	return m
}

// SalesOrderItemModel is the persistence model for an order line
type SalesOrderItemModel struct {
	BaseModel
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (SalesOrderItemModel) TableName() string {
	return "sales_order_items"
}

// ToDomain converts the model to a SalesOrderItem
func (m *SalesOrderItemModel) ToDomain() trade.SalesOrderItem {
	return trade.SalesOrderItem{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Amount:      m.Amount,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// SalesOrderItemModelFromDomain creates a model from an order line
func SalesOrderItemModelFromDomain(orderID uuid.UUID, item *trade.SalesOrderItem) SalesOrderItemModel {
	return SalesOrderItemModel{
		BaseModel: BaseModel{
			ID:        item.ID,
			CreatedAt: item.CreatedAt,
			UpdatedAt: item.UpdatedAt,
		},
		OrderID:     orderID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Amount:      item.Amount,
	}
}

package models

import (
	"time"

	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides the id and timestamp columns
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// AggregateModel adds the optimistic locking version
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// TenantAggregateModel adds the owning tenant
type TenantAggregateModel struct {
	AggregateModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// FromDomainTenantAggregateRoot copies the aggregate header into the model
func (m *TenantAggregateModel) FromDomainTenantAggregateRoot(t shared.TenantAggregateRoot) {
	m.ID = t.ID
	m.CreatedAt = t.CreatedAt
	m.UpdatedAt = t.UpdatedAt
	m.Version = t.Version
	m.TenantID = t.TenantID
}

// ToDomainTenantAggregateRoot rebuilds the aggregate header. Pending domain
// events are never persisted, so a loaded aggregate starts with none.
func (m *TenantAggregateModel) ToDomainTenantAggregateRoot() shared.TenantAggregateRoot {
	return shared.TenantAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		TenantID: m.TenantID,
	}
}

// All returns every model in migration order, for AutoMigrate in tests
func All() []any {
	return []any{
		&CustomerModel{},
		&CategoryModel{},
		&PaymentTermModel{},
		&CreditPeriodModel{},
		&CreditLineModel{},
		&SalesOrderModel{},
		&SalesOrderItemModel{},
		&InvoiceModel{},
		&PaymentModel{},
		&ReconciliationModel{},
	}
}

package persistence

import (
	"context"

	"github.com/erp/credit/internal/domain/shared"
	"gorm.io/gorm"
)

// versioned is implemented by the aggregates saved with saveWithLock
type versioned interface {
	GetVersion() int
	IncrementVersion()
}

// saveWithLock writes every column of model only if the stored row still has
// the aggregate's version, then bumps the version on both. model must have
// been built from agg.
func saveWithLock(ctx context.Context, db *gorm.DB, agg versioned, model any, setVersion func(int), where string, args ...any) error {
	expected := agg.GetVersion()
	setVersion(expected + 1)

	result := dbFrom(ctx, db).
		Model(model).
		Where(where+" AND version = ?", append(args, expected)...).
		Select("*").
		Omit("id", "tenant_id", "created_at").
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	agg.IncrementVersion()
	return nil
}

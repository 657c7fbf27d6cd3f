package persistence

import (
	"context"

	"github.com/erp/credit/internal/domain/shared"
	"gorm.io/gorm"
)

type txKey struct{}

// GormTransactionScope implements shared.TransactionScope with GORM
// transactions. The open *gorm.DB travels in the context, so every
// repository call made with that context joins the transaction, including
// calls made by event handlers. Commit hooks registered through
// shared.AfterCommit fire only after the transaction commits.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside a transaction. A nested call reuses the outer one.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return shared.RunInCommitScopeWith(ctx, fn, func(inner context.Context, work func(context.Context) error) error {
		return s.db.WithContext(inner).Transaction(func(tx *gorm.DB) error {
			return work(context.WithValue(inner, txKey{}, tx))
		})
	})
}

// dbFrom returns the transaction carried by ctx, or db bound to ctx
func dbFrom(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

var _ shared.TransactionScope = (*GormTransactionScope)(nil)

// Package testutil provides common test utilities for the credit service.
// It contains helpers for deterministic identifiers, actors with credit
// capabilities, polling assertions and in-process API calls.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/erp/credit/internal/domain/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewTestUUID generates a deterministic UUID for testing.
// Uses the provided seed string to create a reproducible UUID.
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// TestTenantID returns a standard tenant ID for tests.
func TestTenantID() uuid.UUID {
	return NewTestUUID("test-tenant")
}

// Clerk is an actor without credit rights
func Clerk() identity.Actor {
	return identity.NewActor(NewTestUUID("clerk"), "Order Clerk")
}

// SalesPerson holds the credit override right
func SalesPerson() identity.Actor {
	return identity.NewActor(NewTestUUID("sales"), "Sales Head", identity.CapabilitySalesCreditOverride)
}

// AccountingPerson holds the overdue approval right
func AccountingPerson() identity.Actor {
	return identity.NewActor(NewTestUUID("accounting"), "Accounts Head", identity.CapabilityAccountingCreditOverride)
}

// Day returns midnight UTC of the given date
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// FixedClock returns a clock stuck at now
func FixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

// RequireDecimal fails unless got equals want numerically
func RequireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}

// ContextWithTimeout creates a context with a timeout for tests.
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// RequireEventually fails when condition does not hold within timeout.
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()

	if !WaitForCondition(t, condition, timeout, interval) {
		require.Fail(t, "Condition not met within timeout", msgAndArgs...)
	}
}

// Package models contains the GORM persistence models of the credit service.
// Domain aggregates stay free of ORM tags; each model converts to and from
// its aggregate with ToDomain / FromDomain.
//
//   - base.go: shared id, timestamp, version and tenant columns
//   - partner.go: customers
//   - catalog.go: business units and product categories
//   - credit.go: credit lines, payment terms, credit periods
//   - trade.go: sales orders and their lines
//   - finance.go: invoices, payments, reconciliations
//
// The SQL files under migrations/ are the schema of record. AutoMigrate is
// used by the sqlite unit tests only; the unique indexes declared in these
// tags do not lead with tenant_id, the migrated ones do.
package models

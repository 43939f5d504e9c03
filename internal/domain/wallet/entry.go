package wallet

import (
	"context"
	"time"
)

type EntryType string

const (
	EntryDebit  EntryType = "debit"
	EntryCredit EntryType = "credit"
)

// LedgerEntry is an immutable record of one balance change. Amount is signed:
// negative for debits.
type LedgerEntry struct {
	ID            string
	TenantID      string
	Type          EntryType
	Amount        int64
	BalanceBefore int64
	BalanceAfter  int64
	Reason        string
	Actor         string
	ExternalRef   string
	CreatedAt     time.Time
}

// Totals summarizes a tenant's ledger.
type Totals struct {
	Sum     int64
	Entries int
}

type EntryRepository interface {
	// Append fails with fault.ErrConcurrentUpdate when the entry id is taken.
	Append(ctx context.Context, entry LedgerEntry) error
	ByID(ctx context.Context, tenantID, id string) (LedgerEntry, error)
	// ListByTenant returns the newest entries first.
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]LedgerEntry, error)
	ByExternalRef(ctx context.Context, tenantID, ref string) (LedgerEntry, error)
	Totals(ctx context.Context, tenantID string) (Totals, error)
}

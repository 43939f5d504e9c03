package dto

import (
	"time"

	domainwallet "staybook/internal/domain/wallet"
)

// LedgerResult is the outcome of a debit or credit. Replayed marks a credit
// answered from an earlier entry with the same external reference.
type LedgerResult struct {
	Success          bool   `json:"success"`
	EntryID          string `json:"entry_id"`
	RemainingBalance int64  `json:"remaining_balance"`
	Replayed         bool   `json:"replayed,omitempty"`
}

func MapLedgerResult(e domainwallet.LedgerEntry, replayed bool) *LedgerResult {
	return &LedgerResult{Success: true, EntryID: e.ID, RemainingBalance: e.BalanceAfter, Replayed: replayed}
}

type Balance struct {
	TenantID  string    `json:"tenant_id"`
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

func MapBalance(w *domainwallet.Wallet) *Balance {
	return &Balance{TenantID: w.TenantID, Balance: w.Balance, UpdatedAt: w.UpdatedAt}
}

type LedgerEntry struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Amount        int64     `json:"amount"`
	BalanceBefore int64     `json:"balance_before"`
	BalanceAfter  int64     `json:"balance_after"`
	Reason        string    `json:"reason"`
	Actor         string    `json:"actor,omitempty"`
	ExternalRef   string    `json:"external_ref,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type LedgerHistory struct {
	TenantID string        `json:"tenant_id"`
	Items    []LedgerEntry `json:"items"`
}

func MapLedgerHistory(tenantID string, entries []domainwallet.LedgerEntry) LedgerHistory {
	items := make([]LedgerEntry, 0, len(entries))
	for _, e := range entries {
		items = append(items, LedgerEntry{
			ID:            e.ID,
			Type:          string(e.Type),
			Amount:        e.Amount,
			BalanceBefore: e.BalanceBefore,
			BalanceAfter:  e.BalanceAfter,
			Reason:        e.Reason,
			Actor:         e.Actor,
			ExternalRef:   e.ExternalRef,
			CreatedAt:     e.CreatedAt,
		})
	}
	return LedgerHistory{TenantID: tenantID, Items: items}
}

type Reconciliation struct {
	TenantID   string `json:"tenant_id"`
	Balance    int64  `json:"balance"`
	LedgerSum  int64  `json:"ledger_sum"`
	Entries    int    `json:"entries"`
	Drift      int64  `json:"drift"`
	Consistent bool   `json:"consistent"`
}

package wallet

import (
	"context"
	"strings"
	"time"

	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/fault"
)

var (
	ErrTenantNotFound      = fault.New(fault.KindNotFound, "wallet: tenant not found")
	ErrWalletExists        = fault.New(fault.KindConflict, "wallet: tenant already has a wallet")
	ErrEntryNotFound       = fault.New(fault.KindNotFound, "wallet: ledger entry not found")
	ErrInvalidAmount       = fault.New(fault.KindValidation, "wallet: amount must be positive")
	ErrReasonRequired      = fault.New(fault.KindValidation, "wallet: reason required")
	ErrTenantRequired      = fault.New(fault.KindValidation, "wallet: tenant id required")
	ErrInsufficientBalance = fault.New(fault.KindInsufficientBalance, "wallet: insufficient balance")
)

// Wallet holds a tenant's prepaid SMS credits. Balance changes only through
// Debit and Credit, each producing exactly one ledger entry.
type Wallet struct {
	TenantID  string
	Balance   int64
	Version   int64
	UpdatedAt time.Time
	events.EventRecorder
}

func Open(tenantID string, now time.Time) (*Wallet, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, ErrTenantRequired
	}
	return &Wallet{TenantID: tenantID, UpdatedAt: now.UTC()}, nil
}

// Mutation carries the caller-supplied part of a ledger entry.
type Mutation struct {
	EntryID     string
	Amount      int64
	Reason      string
	Actor       string
	ExternalRef string
}

func (m Mutation) validate() error {
	if m.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(m.Reason) == "" {
		return ErrReasonRequired
	}
	return nil
}

// Debit removes credits. It never drives the balance below zero and leaves the
// wallet untouched on failure.
func (w *Wallet) Debit(m Mutation, now time.Time) (LedgerEntry, error) {
	if err := m.validate(); err != nil {
		return LedgerEntry{}, err
	}
	if m.Amount > w.Balance {
		return LedgerEntry{}, ErrInsufficientBalance
	}
	entry := w.apply(EntryDebit, -m.Amount, m, now)
	w.Record(Debited{TenantID: w.TenantID, EntryID: entry.ID, Amount: m.Amount, BalanceAfter: entry.BalanceAfter, Reason: m.Reason, At: entry.CreatedAt})
	return entry, nil
}

// Credit adds credits; there is no upper bound.
func (w *Wallet) Credit(m Mutation, now time.Time) (LedgerEntry, error) {
	if err := m.validate(); err != nil {
		return LedgerEntry{}, err
	}
	entry := w.apply(EntryCredit, m.Amount, m, now)
	w.Record(Credited{TenantID: w.TenantID, EntryID: entry.ID, Amount: m.Amount, BalanceAfter: entry.BalanceAfter, ExternalRef: m.ExternalRef, At: entry.CreatedAt})
	return entry, nil
}

func (w *Wallet) apply(kind EntryType, signed int64, m Mutation, now time.Time) LedgerEntry {
	at := now.UTC()
	entry := LedgerEntry{
		ID:            m.EntryID,
		TenantID:      w.TenantID,
		Type:          kind,
		Amount:        signed,
		BalanceBefore: w.Balance,
		BalanceAfter:  w.Balance + signed,
		Reason:        strings.TrimSpace(m.Reason),
		Actor:         m.Actor,
		ExternalRef:   m.ExternalRef,
		CreatedAt:     at,
	}
	w.Balance = entry.BalanceAfter
	w.UpdatedAt = at
	return entry
}

type Repository interface {
	ByTenant(ctx context.Context, tenantID string) (*Wallet, error)
	Create(ctx context.Context, w *Wallet) error
	// Save writes the balance only if the stored version still matches
	// w.Version, failing with fault.ErrConcurrentUpdate otherwise.
	Save(ctx context.Context, w *Wallet) error
}

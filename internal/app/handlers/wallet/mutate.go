package wallet

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainwallet "staybook/internal/domain/wallet"
)

const (
	debitKey  = "wallet.debit"
	creditKey = "wallet.credit"
)

type DebitCommand struct {
	TenantID        string `validate:"required"`
	Amount          int64  `validate:"gt=0"`
	Reason          string `validate:"required"`
	Actor           string
	IdempotencyKeyV string
}

func (c DebitCommand) Key() string            { return debitKey }
func (c DebitCommand) Tenant() string         { return c.TenantID }
func (c DebitCommand) IdempotencyKey() string { return c.IdempotencyKeyV }
func (c DebitCommand) ResultPrototype() any   { return &dto.LedgerResult{} }

type CreditCommand struct {
	TenantID        string `validate:"required"`
	Amount          int64  `validate:"gt=0"`
	Reason          string `validate:"required"`
	Actor           string
	ExternalRef     string
	IdempotencyKeyV string
}

func (c CreditCommand) Key() string            { return creditKey }
func (c CreditCommand) Tenant() string         { return c.TenantID }
func (c CreditCommand) IdempotencyKey() string { return c.IdempotencyKeyV }
func (c CreditCommand) ResultPrototype() any   { return &dto.LedgerResult{} }

// LedgerHandler applies debits and credits. Each one reads the wallet,
// computes the new balance, writes it under a version guard and appends the
// ledger entry in the same unit of work. Two writers on the same tenant
// collide on the version and the loser re-runs against the fresh balance.
type LedgerHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Audit      policies.AuditSink
	Logger     *slog.Logger
	Attempts   int
	Now        func() time.Time
}

func (h *LedgerHandler) Debit(ctx context.Context, cmd DebitCommand) (*dto.LedgerResult, error) {
	m := domainwallet.Mutation{
		EntryID: entryID(cmd.TenantID, debitKey, cmd.IdempotencyKeyV),
		Amount:  cmd.Amount,
		Reason:  cmd.Reason,
		Actor:   cmd.Actor,
	}
	return h.mutate(ctx, cmd.TenantID, m, debitKey, func(w *domainwallet.Wallet, now time.Time) (domainwallet.LedgerEntry, error) {
		return w.Debit(m, now)
	})
}

func (h *LedgerHandler) Credit(ctx context.Context, cmd CreditCommand) (*dto.LedgerResult, error) {
	m := domainwallet.Mutation{
		EntryID:     entryID(cmd.TenantID, creditKey, cmd.IdempotencyKeyV),
		Amount:      cmd.Amount,
		Reason:      cmd.Reason,
		Actor:       cmd.Actor,
		ExternalRef: cmd.ExternalRef,
	}
	return h.mutate(ctx, cmd.TenantID, m, creditKey, func(w *domainwallet.Wallet, now time.Time) (domainwallet.LedgerEntry, error) {
		return w.Credit(m, now)
	})
}

func (h *LedgerHandler) mutate(ctx context.Context, tenantID string, m domainwallet.Mutation, action string, apply func(*domainwallet.Wallet, time.Time) (domainwallet.LedgerEntry, error)) (*dto.LedgerResult, error) {
	var (
		entry    domainwallet.LedgerEntry
		replayed bool
	)
	err := uow.Execute(ctx, h.UoWFactory, h.Attempts, func(ctx context.Context, unit uow.UnitOfWork) error {
		prior, found, err := h.prior(ctx, unit, tenantID, m)
		if err != nil {
			return err
		}
		if found {
			entry, replayed = prior, true
			return nil
		}
		w, err := unit.Wallets().ByTenant(ctx, tenantID)
		if err != nil {
			return err
		}
		entry, err = apply(w, h.now())
		if err != nil {
			return err
		}
		if err := unit.Wallets().Save(ctx, w); err != nil {
			return err
		}
		if err := unit.Ledger().Append(ctx, entry); err != nil {
			return err
		}
		replayed = false
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), w.Drain()); err != nil {
			return err
		}
		committed := entry
		uow.AfterCommit(ctx, func(ctx context.Context) { h.recordCommitted(ctx, action, committed) })
		return nil
	})
	if err != nil {
		if errors.Is(err, domainwallet.ErrInsufficientBalance) {
			h.logger().InfoContext(ctx, "debit rejected", "tenant_id", tenantID, "amount", m.Amount, "reason", m.Reason)
		}
		return nil, err
	}
	return dto.MapLedgerResult(entry, replayed), nil
}

func (h *LedgerHandler) recordCommitted(ctx context.Context, action string, entry domainwallet.LedgerEntry) {
	h.logger().InfoContext(ctx, "ledger entry committed", "tenant_id", entry.TenantID, "entry_id", entry.ID, "amount", entry.Amount, "balance", entry.BalanceAfter)
	policies.Audit(ctx, h.Audit, h.logger(), policies.AuditRecord{
		Action:   action,
		TenantID: entry.TenantID,
		Actor:    entry.Actor,
		Subject:  entry.ID,
		Details: map[string]any{
			"amount":         entry.Amount,
			"balance_before": entry.BalanceBefore,
			"balance_after":  entry.BalanceAfter,
			"reason":         entry.Reason,
			"external_ref":   entry.ExternalRef,
		},
		At: entry.CreatedAt,
	})
}

// prior finds an entry already written for the same request: either the
// deterministic entry id of an idempotency key, or a credit's external ref.
func (h *LedgerHandler) prior(ctx context.Context, unit uow.UnitOfWork, tenantID string, m domainwallet.Mutation) (domainwallet.LedgerEntry, bool, error) {
	lookups := make([]func() (domainwallet.LedgerEntry, error), 0, 2)
	if m.ExternalRef != "" {
		lookups = append(lookups, func() (domainwallet.LedgerEntry, error) {
			return unit.Ledger().ByExternalRef(ctx, tenantID, m.ExternalRef)
		})
	}
	lookups = append(lookups, func() (domainwallet.LedgerEntry, error) {
		return unit.Ledger().ByID(ctx, tenantID, m.EntryID)
	})
	for _, lookup := range lookups {
		entry, err := lookup()
		if err == nil {
			return entry, true, nil
		}
		if !errors.Is(err, domainwallet.ErrEntryNotFound) {
			return domainwallet.LedgerEntry{}, false, err
		}
	}
	return domainwallet.LedgerEntry{}, false, nil
}

func entryID(tenantID, kind, key string) string {
	if key == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("staybook:"+kind+":"+tenantID+":"+key)).String()
}

func (h *LedgerHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *LedgerHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *LedgerHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

// DebitHandler and CreditHandler expose the two operations to the command bus.
func (h *LedgerHandler) DebitHandler() commands.Handler[DebitCommand, *dto.LedgerResult] {
	return commands.HandlerFunc[DebitCommand, *dto.LedgerResult](h.Debit)
}

func (h *LedgerHandler) CreditHandler() commands.Handler[CreditCommand, *dto.LedgerResult] {
	return commands.HandlerFunc[CreditCommand, *dto.LedgerResult](h.Credit)
}

var (
	_ middleware.IdempotentCommand = DebitCommand{}
	_ middleware.IdempotentCommand = CreditCommand{}
)

package wallet

import (
	"context"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	"staybook/internal/domain/shared/fault"
)

const (
	getBalanceKey    = "wallet.balance"
	ledgerHistoryKey = "wallet.history"
	reconcileKey     = "wallet.reconcile"

	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

var ErrInvalidLimit = fault.New(fault.KindValidation, "wallet: history limit must be between 1 and 500")

type GetBalanceQuery struct {
	TenantID string `validate:"required"`
}

func (q GetBalanceQuery) Key() string    { return getBalanceKey }
func (q GetBalanceQuery) Tenant() string { return q.TenantID }

type GetBalanceHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBalanceHandler) Handle(ctx context.Context, q GetBalanceQuery) (*dto.Balance, error) {
	var out *dto.Balance
	err := uow.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		w, err := unit.Wallets().ByTenant(ctx, q.TenantID)
		if err != nil {
			return err
		}
		out = dto.MapBalance(w)
		return nil
	})
	return out, err
}

type LedgerHistoryQuery struct {
	TenantID string `validate:"required"`
	Limit    int    `validate:"gte=0"`
}

func (q LedgerHistoryQuery) Key() string    { return ledgerHistoryKey }
func (q LedgerHistoryQuery) Tenant() string { return q.TenantID }

type LedgerHistoryHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *LedgerHistoryHandler) Handle(ctx context.Context, q LedgerHistoryQuery) (dto.LedgerHistory, error) {
	limit := q.Limit
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	if limit < 0 || limit > MaxHistoryLimit {
		return dto.LedgerHistory{}, ErrInvalidLimit
	}
	var out dto.LedgerHistory
	err := uow.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		if _, err := unit.Wallets().ByTenant(ctx, q.TenantID); err != nil {
			return err
		}
		entries, err := unit.Ledger().ListByTenant(ctx, q.TenantID, limit)
		if err != nil {
			return err
		}
		out = dto.MapLedgerHistory(q.TenantID, entries)
		return nil
	})
	return out, err
}

type ReconcileQuery struct {
	TenantID string `validate:"required"`
}

func (q ReconcileQuery) Key() string    { return reconcileKey }
func (q ReconcileQuery) Tenant() string { return q.TenantID }

// ReconcileHandler compares the stored balance with the sum of the ledger.
// It reports drift and never repairs it.
type ReconcileHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ReconcileHandler) Handle(ctx context.Context, q ReconcileQuery) (dto.Reconciliation, error) {
	var out dto.Reconciliation
	err := uow.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		w, err := unit.Wallets().ByTenant(ctx, q.TenantID)
		if err != nil {
			return err
		}
		totals, err := unit.Ledger().Totals(ctx, q.TenantID)
		if err != nil {
			return err
		}
		out = dto.Reconciliation{
			TenantID:   q.TenantID,
			Balance:    w.Balance,
			LedgerSum:  totals.Sum,
			Entries:    totals.Entries,
			Drift:      w.Balance - totals.Sum,
			Consistent: w.Balance == totals.Sum,
		}
		return nil
	})
	return out, err
}

var (
	_ queries.Handler[GetBalanceQuery, *dto.Balance]         = (*GetBalanceHandler)(nil)
	_ queries.Handler[LedgerHistoryQuery, dto.LedgerHistory] = (*LedgerHistoryHandler)(nil)
	_ queries.Handler[ReconcileQuery, dto.Reconciliation]    = (*ReconcileHandler)(nil)
)

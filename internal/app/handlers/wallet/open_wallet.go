package wallet

import (
	"context"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/uow"
	domainwallet "staybook/internal/domain/wallet"
)

const openWalletKey = "wallet.open"

// OpenWalletCommand provisions an empty wallet. Credits arrive only through
// CreditCommand so that the ledger explains every unit of balance.
type OpenWalletCommand struct {
	TenantID string `validate:"required"`
}

func (c OpenWalletCommand) Key() string    { return openWalletKey }
func (c OpenWalletCommand) Tenant() string { return c.TenantID }

type OpenWalletHandler struct {
	UoWFactory uow.UoWFactory
	Attempts   int
}

func (h *OpenWalletHandler) Handle(ctx context.Context, cmd OpenWalletCommand) (*dto.Balance, error) {
	var out *dto.Balance
	err := uow.Execute(ctx, h.UoWFactory, h.Attempts, func(ctx context.Context, unit uow.UnitOfWork) error {
		w, err := domainwallet.Open(cmd.TenantID, time.Now())
		if err != nil {
			return err
		}
		if err := unit.Wallets().Create(ctx, w); err != nil {
			return err
		}
		out = dto.MapBalance(w)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var _ commands.Handler[OpenWalletCommand, *dto.Balance] = (*OpenWalletHandler)(nil)

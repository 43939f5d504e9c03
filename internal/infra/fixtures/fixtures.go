// Package fixtures seeds a store from a JSON file so a memory-mode process
// starts with sellable inventory and funded wallets.
package fixtures

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"staybook/internal/app/dto"
	walletapp "staybook/internal/app/handlers/wallet"
	"staybook/internal/app/tenancy"
	"staybook/internal/app/uow"
	domaininventory "staybook/internal/domain/inventory"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/fault"
)

type File struct {
	RoomTypes []RoomType `json:"room_types"`
	RoomUnits []RoomUnit `json:"room_units"`
	Wallets   []Wallet   `json:"wallets"`
}

type RoomType struct {
	ID         string         `json:"id"`
	TenantID   string         `json:"tenant_id"`
	Name       string         `json:"name"`
	TotalUnits int            `json:"total_units"`
	Pricing    pricing.Config `json:"pricing"`
}

type RoomUnit struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenant_id"`
	RoomTypeID string `json:"room_type_id"`
	Number     string `json:"number"`
}

type Wallet struct {
	TenantID string `json:"tenant_id"`
	Credits  int64  `json:"credits"`
}

// Wallets is the ledger surface seeding needs.
type Wallets interface {
	OpenWallet(ctx context.Context, cmd walletapp.OpenWalletCommand) (*dto.Balance, error)
	Credit(ctx context.Context, cmd walletapp.CreditCommand) (*dto.LedgerResult, error)
}

func Load(path string) (File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("fixtures: read %s: %w", path, err)
	}
	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return File{}, fmt.Errorf("fixtures: decode %s: %w", path, err)
	}
	return f, nil
}

// Seed writes room types and units, then opens and funds wallets through the
// ledger so every seeded credit has an entry. Re-seeding is a no-op for
// wallets: the opening credit carries a fixed external reference.
func Seed(ctx context.Context, factory uow.UoWFactory, wallets Wallets, f File, defaultCurrency string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now()
	err := uow.Execute(ctx, factory, 1, func(ctx context.Context, unit uow.UnitOfWork) error {
		for _, fx := range f.RoomTypes {
			cfg := fx.Pricing
			if cfg.Currency == "" {
				cfg.Currency = defaultCurrency
			}
			rt, err := domaininventory.NewRoomType(domaininventory.NewRoomTypeParams{
				ID:         domaininventory.RoomTypeID(fx.ID),
				TenantID:   fx.TenantID,
				Name:       fx.Name,
				TotalUnits: fx.TotalUnits,
				Pricing:    cfg,
				Now:        now,
			})
			if err != nil {
				return fmt.Errorf("fixtures: room type %s: %w", fx.ID, err)
			}
			if err := unit.RoomTypes().Save(ctx, rt); err != nil {
				return err
			}
		}
		for _, fx := range f.RoomUnits {
			ru, err := domaininventory.NewRoomUnit(domaininventory.RoomUnitID(fx.ID), fx.TenantID, domaininventory.RoomTypeID(fx.RoomTypeID), fx.Number, now)
			if err != nil {
				return fmt.Errorf("fixtures: room unit %s: %w", fx.ID, err)
			}
			if err := unit.RoomUnits().Save(ctx, ru); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, fx := range f.Wallets {
		tctx := tenancy.WithTenant(ctx, fx.TenantID)
		if _, err := wallets.OpenWallet(tctx, walletapp.OpenWalletCommand{TenantID: fx.TenantID}); err != nil && !fault.Is(err, fault.KindConflict) {
			return fmt.Errorf("fixtures: open wallet %s: %w", fx.TenantID, err)
		}
		if fx.Credits <= 0 {
			continue
		}
		_, err := wallets.Credit(tctx, walletapp.CreditCommand{
			TenantID:    fx.TenantID,
			Amount:      fx.Credits,
			Reason:      "opening balance",
			Actor:       "fixtures",
			ExternalRef: "fixtures:opening:" + fx.TenantID,
		})
		if err != nil {
			return fmt.Errorf("fixtures: fund wallet %s: %w", fx.TenantID, err)
		}
	}
	logger.InfoContext(ctx, "fixtures seeded", "room_types", len(f.RoomTypes), "room_units", len(f.RoomUnits), "wallets", len(f.Wallets))
	return nil
}

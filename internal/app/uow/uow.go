package uow

import (
	"context"

	domainbooking "staybook/internal/domain/booking"
	domaininventory "staybook/internal/domain/inventory"
	domainwallet "staybook/internal/domain/wallet"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	RoomTypes() domaininventory.RoomTypeRepository
	RoomUnits() domaininventory.RoomUnitRepository
	Bookings() domainbooking.Repository
	Wallets() domainwallet.Repository
	Ledger() domainwallet.EntryRepository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}

// ContextInjector is implemented by units that carry driver state (a Mongo
// session) which repositories read back from the context.
type ContextInjector interface {
	InjectContext(ctx context.Context) context.Context
}

// Enter binds unit to ctx so that repositories called with the returned
// context join it.
func Enter(ctx context.Context, unit UnitOfWork) context.Context {
	if injector, ok := unit.(ContextInjector); ok {
		ctx = injector.InjectContext(ctx)
	}
	return ContextWithUnitOfWork(ctx, unit)
}

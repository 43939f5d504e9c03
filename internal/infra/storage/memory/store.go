package memory

import (
	"context"
	"errors"
	"sync"

	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domaininventory "staybook/internal/domain/inventory"
	domainwallet "staybook/internal/domain/wallet"
)

// Store keeps every collection of the engine in process memory. Writes made
// inside a Unit are staged and applied at Commit under one lock, after every
// staged version check passed, so a unit lands entirely or not at all.
type Store struct {
	mu sync.RWMutex

	roomTypes map[string]domaininventory.RoomType
	roomUnits map[string]domaininventory.RoomUnit
	bookings  map[string]domainbooking.Booking
	wallets   map[string]domainwallet.Wallet
	entries   map[string][]domainwallet.LedgerEntry
	outbox    []appoutbox.EventRecord
}

func NewStore() *Store {
	return &Store{
		roomTypes: make(map[string]domaininventory.RoomType),
		roomUnits: make(map[string]domaininventory.RoomUnit),
		bookings:  make(map[string]domainbooking.Booking),
		wallets:   make(map[string]domainwallet.Wallet),
		entries:   make(map[string][]domainwallet.LedgerEntry),
	}
}

func key(tenantID, id string) string {
	return tenantID + "\x00" + id
}

// op is one staged write: check runs against committed state, apply mutates it.
type op struct {
	check func(s *Store) error
	apply func(s *Store)
}

// write runs o inside the unit found in ctx, or immediately when there is none.
func (s *Store) write(ctx context.Context, o op) error {
	if unit := s.unitFrom(ctx); unit != nil {
		return unit.stage(o)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.check != nil {
		if err := o.check(s); err != nil {
			return err
		}
	}
	o.apply(s)
	return nil
}

func (s *Store) unitFrom(ctx context.Context) *Unit {
	found, ok := uow.FromContext(ctx)
	if !ok {
		return nil
	}
	unit, ok := found.(*Unit)
	if !ok || unit.store != s {
		return nil
	}
	return unit
}

var (
	ErrUnitClosed   = errors.New("memory: unit of work already finished")
	ErrUnitReadOnly = errors.New("memory: unit of work is read-only")
)

// Factory starts units over one Store.
type Factory struct {
	Store *Store
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Store == nil {
		return nil, errors.New("memory: unit of work factory misconfigured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Unit{
		store:     f.Store,
		readOnly:  opts.ReadOnly,
		roomTypes: make(map[string]domaininventory.RoomType),
		bookings:  make(map[string]domainbooking.Booking),
		wallets:   make(map[string]domainwallet.Wallet),
	}, nil
}

// Unit collects staged writes and an overlay of the documents they touch, so
// reads inside the unit see its own writes.
type Unit struct {
	store    *Store
	readOnly bool

	mu        sync.Mutex
	ops       []op
	done      bool
	roomTypes map[string]domaininventory.RoomType
	bookings  map[string]domainbooking.Booking
	wallets   map[string]domainwallet.Wallet
	entries   []domainwallet.LedgerEntry
}

func (u *Unit) stage(o op) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return ErrUnitClosed
	}
	if u.readOnly {
		return ErrUnitReadOnly
	}
	u.ops = append(u.ops, o)
	return nil
}

func (u *Unit) RoomTypes() domaininventory.RoomTypeRepository {
	return &RoomTypeRepository{store: u.store}
}

func (u *Unit) RoomUnits() domaininventory.RoomUnitRepository {
	return &RoomUnitRepository{store: u.store}
}

func (u *Unit) Bookings() domainbooking.Repository {
	return &BookingRepository{store: u.store}
}

func (u *Unit) Wallets() domainwallet.Repository {
	return &WalletRepository{store: u.store}
}

func (u *Unit) Ledger() domainwallet.EntryRepository {
	return &LedgerRepository{store: u.store}
}

// Commit checks every staged op against committed state and applies them all
// when none failed.
func (u *Unit) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return ErrUnitClosed
	}
	u.done = true
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(u.ops) == 0 {
		return nil
	}
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range u.ops {
		if o.check == nil {
			continue
		}
		if err := o.check(s); err != nil {
			return err
		}
	}
	for _, o := range u.ops {
		o.apply(s)
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.done = true
	u.ops = nil
	return nil
}

var (
	_ uow.UoWFactory = Factory{}
	_ uow.UnitOfWork = (*Unit)(nil)
)

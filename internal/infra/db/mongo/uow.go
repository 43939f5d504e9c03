package mongo

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domaininventory "staybook/internal/domain/inventory"
	domainwallet "staybook/internal/domain/wallet"
)

// Factory wires Mongo session transactions into the generic UnitOfWork.
type Factory struct {
	DB *mongo.Database

	RoomTypesRepo domaininventory.RoomTypeRepository
	RoomUnitsRepo domaininventory.RoomUnitRepository
	BookingsRepo  domainbooking.Repository
	WalletsRepo   domainwallet.Repository
	LedgerRepo    domainwallet.EntryRepository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// NewFactory builds the repositories over db. It fails when the ledger
// indexes cannot be built, since credit replay depends on them.
func NewFactory(ctx context.Context, db *mongo.Database) (Factory, error) {
	ledger := NewLedgerRepository(db)
	if err := ledger.EnsureIndexes(ctx); err != nil {
		return Factory{}, err
	}
	return Factory{
		DB:            db,
		RoomTypesRepo: NewRoomTypeRepository(db),
		RoomUnitsRepo: NewRoomUnitRepository(db),
		BookingsRepo:  NewBookingRepository(db),
		WalletsRepo:   NewWalletRepository(db),
		LedgerRepo:    ledger,
	}, nil
}

// Begin starts a session and a transaction on it. Read-only units use
// snapshot reads so a query sees one consistent state.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, classify(err)
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadConcern(readconcern.Snapshot())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, classify(err)
	}
	return &Unit{
		session:   session,
		roomTypes: f.RoomTypesRepo,
		roomUnits: f.RoomUnitsRepo,
		bookings:  f.BookingsRepo,
		wallets:   f.WalletsRepo,
		ledger:    f.LedgerRepo,
	}, nil
}

type Unit struct {
	session mongo.Session
	once    sync.Once

	roomTypes domaininventory.RoomTypeRepository
	roomUnits domaininventory.RoomUnitRepository
	bookings  domainbooking.Repository
	wallets   domainwallet.Repository
	ledger    domainwallet.EntryRepository
}

func (u *Unit) RoomTypes() domaininventory.RoomTypeRepository { return u.roomTypes }
func (u *Unit) RoomUnits() domaininventory.RoomUnitRepository { return u.roomUnits }
func (u *Unit) Bookings() domainbooking.Repository            { return u.bookings }
func (u *Unit) Wallets() domainwallet.Repository              { return u.wallets }
func (u *Unit) Ledger() domainwallet.EntryRepository          { return u.ledger }

func (u *Unit) Commit(ctx context.Context) error {
	var err error
	u.once.Do(func() {
		defer u.session.EndSession(ctx)
		err = classify(u.session.CommitTransaction(ctx))
	})
	return err
}

func (u *Unit) Rollback(ctx context.Context) error {
	var err error
	u.once.Do(func() {
		defer u.session.EndSession(ctx)
		err = u.session.AbortTransaction(ctx)
	})
	return err
}

// InjectContext binds the session so repositories called with the returned
// context run inside the transaction.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var (
	_ uow.UoWFactory      = Factory{}
	_ uow.UnitOfWork      = (*Unit)(nil)
	_ uow.ContextInjector = (*Unit)(nil)
)

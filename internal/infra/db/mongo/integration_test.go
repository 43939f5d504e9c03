package mongo_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/engine"
	bookingapp "staybook/internal/app/handlers/booking"
	walletapp "staybook/internal/app/handlers/wallet"
	"staybook/internal/app/uow"
	domaininventory "staybook/internal/domain/inventory"
	domainwallet "staybook/internal/domain/wallet"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/fault"
	mongodb "staybook/internal/infra/db/mongo"
	outboxrelay "staybook/internal/infra/outbox"
	"staybook/internal/infra/validation"
)

// Needs a replica set: session transactions are unavailable on a standalone server.
func newMongoEngine(t *testing.T) (*engine.Engine, mongodb.Factory) {
	t.Helper()
	uri := os.Getenv("STAYBOOK_MONGO_URI")
	if uri == "" {
		t.Skip("STAYBOOK_MONGO_URI not set")
	}
	ctx := context.Background()
	client, err := mongodb.New(ctx, uri, "staybook_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.DB.Drop(context.Background())
		_ = client.Close(context.Background())
	})
	factory, err := mongodb.NewFactory(ctx, client.DB)
	require.NoError(t, err)
	eng := engine.New(engine.Deps{
		UoWFactory:    factory,
		Outbox:        outboxrelay.NewStore(client.DB),
		Idempotency:   mongodb.NewIdempotencyStore(client.DB, time.Hour),
		Validator:     validation.New(),
		WriteAttempts: 20,
	})
	return eng, factory
}

func TestMongoConcurrentDebits(t *testing.T) {
	eng, _ := newMongoEngine(t)
	ctx := context.Background()
	_, err := eng.OpenWallet(ctx, walletapp.OpenWalletCommand{TenantID: "t1"})
	require.NoError(t, err)
	_, err = eng.Credit(ctx, walletapp.CreditCommand{TenantID: "t1", Amount: 100, Reason: "seed", ExternalRef: "seed-1"})
	require.NoError(t, err)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.Debit(ctx, walletapp.DebitCommand{TenantID: "t1", Amount: 30, Reason: "sms"})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
				return
			}
			if !fault.Is(err, fault.KindInsufficientBalance) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, ok)
	balance, err := eng.GetBalance(ctx, "t1")
	require.NoError(t, err)
	assert.EqualValues(t, 10, balance)
	rec, err := eng.Reconcile(ctx, walletapp.ReconcileQuery{TenantID: "t1"})
	require.NoError(t, err)
	assert.True(t, rec.Consistent)

	replay, err := eng.Credit(ctx, walletapp.CreditCommand{TenantID: "t1", Amount: 100, Reason: "seed", ExternalRef: "seed-1"})
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
}

func TestMongoBookingCapacity(t *testing.T) {
	eng, factory := newMongoEngine(t)
	ctx := context.Background()
	err := uow.Execute(ctx, factory, 1, func(ctx context.Context, unit uow.UnitOfWork) error {
		rt, err := domaininventory.NewRoomType(domaininventory.NewRoomTypeParams{
			ID: "twin", TenantID: "t1", Name: "Twin", TotalUnits: 1,
			Pricing: pricing.Config{Currency: "USD", BasePrice: 9000}, Now: time.Now(),
		})
		if err != nil {
			return err
		}
		return unit.RoomTypes().Save(ctx, rt)
	})
	require.NoError(t, err)

	cmd := bookingapp.CreateBookingCommand{
		TenantID: "t1", RoomTypeID: "twin",
		CheckIn: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), CheckOut: time.Date(2025, 8, 3, 0, 0, 0, 0, time.UTC),
		Guest: bookingapp.GuestInput{Name: "Guest"}, Guests: 1, Channel: "admin",
	}
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.CreateBooking(ctx, cmd)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !fault.Is(err, fault.KindConflict) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, succeeded)
}

func TestMongoLedgerRejectsDuplicateExternalRef(t *testing.T) {
	_, factory := newMongoEngine(t)
	ctx := context.Background()
	ledger, ok := factory.LedgerRepo.(*mongodb.LedgerRepository)
	require.True(t, ok)
	require.NoError(t, ledger.EnsureIndexes(ctx), "index creation is repeatable")

	entry := domainwallet.LedgerEntry{
		ID: uuid.NewString(), TenantID: "t1", Type: domainwallet.EntryCredit, Amount: 50,
		BalanceAfter: 50, Reason: "top-up", ExternalRef: "invoice-7", CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, ledger.Append(ctx, entry))

	entry.ID = uuid.NewString()
	err := ledger.Append(ctx, entry)
	require.ErrorIs(t, err, fault.ErrConcurrentUpdate)

	entry.ID, entry.TenantID = uuid.NewString(), "t2"
	assert.NoError(t, ledger.Append(ctx, entry), "external refs are scoped per tenant")
}

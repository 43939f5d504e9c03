package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/middleware"
	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	"staybook/internal/domain/shared/fault"
	domainwallet "staybook/internal/domain/wallet"
)

func openWallet(t *testing.T, store *Store, tenant string, balance int64) {
	t.Helper()
	w, err := domainwallet.Open(tenant, time.Now())
	require.NoError(t, err)
	w.Balance = balance
	require.NoError(t, NewWalletRepository(store).Create(context.Background(), w))
}

func debitInUnit(ctx context.Context, unit uow.UnitOfWork, tenant string, amount int64) error {
	w, err := unit.Wallets().ByTenant(ctx, tenant)
	if err != nil {
		return err
	}
	entry, err := w.Debit(domainwallet.Mutation{EntryID: time.Now().Format(time.RFC3339Nano), Amount: amount, Reason: "test"}, time.Now())
	if err != nil {
		return err
	}
	if err := unit.Wallets().Save(ctx, w); err != nil {
		return err
	}
	return unit.Ledger().Append(ctx, entry)
}

func TestUnitCommitIsAllOrNothing(t *testing.T) {
	store := NewStore()
	openWallet(t, store, "t1", 100)
	factory := Factory{Store: store}
	ctx := context.Background()

	first, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	second, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)

	require.NoError(t, debitInUnit(uow.Enter(ctx, first), first, "t1", 60))
	require.NoError(t, debitInUnit(uow.Enter(ctx, second), second, "t1", 60))

	require.NoError(t, first.Commit(ctx))
	err = second.Commit(ctx)
	require.ErrorIs(t, err, fault.ErrConcurrentUpdate)

	w, err := NewWalletRepository(store).ByTenant(ctx, "t1")
	require.NoError(t, err)
	assert.EqualValues(t, 40, w.Balance)
	totals, err := NewLedgerRepository(store).Totals(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, totals.Entries, "losing unit left no entry behind")
}

func TestUnitReadsItsOwnWrites(t *testing.T) {
	store := NewStore()
	openWallet(t, store, "t1", 100)
	unit, err := Factory{Store: store}.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	ctx := uow.Enter(context.Background(), unit)

	require.NoError(t, debitInUnit(ctx, unit, "t1", 30))
	w, err := unit.Wallets().ByTenant(ctx, "t1")
	require.NoError(t, err)
	assert.EqualValues(t, 70, w.Balance)
	history, err := unit.Ledger().ListByTenant(ctx, "t1", 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	outside, err := NewWalletRepository(store).ByTenant(context.Background(), "t1")
	require.NoError(t, err)
	assert.EqualValues(t, 100, outside.Balance, "staged writes are invisible before commit")

	require.NoError(t, unit.Rollback(ctx))
	assert.ErrorIs(t, unit.Commit(ctx), ErrUnitClosed)
}

func TestReadOnlyUnitRejectsWrites(t *testing.T) {
	store := NewStore()
	openWallet(t, store, "t1", 10)
	unit, err := Factory{Store: store}.Begin(context.Background(), uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	ctx := uow.Enter(context.Background(), unit)
	assert.ErrorIs(t, debitInUnit(ctx, unit, "t1", 5), ErrUnitReadOnly)
}

func TestLedgerRejectsDuplicateExternalRef(t *testing.T) {
	store := NewStore()
	repo := NewLedgerRepository(store)
	ctx := context.Background()
	entry := domainwallet.LedgerEntry{ID: "e1", TenantID: "t1", Amount: 5, ExternalRef: "inv-1"}
	require.NoError(t, repo.Append(ctx, entry))

	dup := entry
	dup.ID = "e2"
	assert.ErrorIs(t, repo.Append(ctx, dup), fault.ErrConcurrentUpdate)
	other := dup
	other.TenantID = "t2"
	assert.NoError(t, repo.Append(ctx, other), "references are unique per tenant")

	got, err := repo.ByExternalRef(ctx, "t1", "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "e1", got.ID)
	_, err = repo.ByID(ctx, "t1", "missing")
	assert.ErrorIs(t, err, domainwallet.ErrEntryNotFound)
}

type flakyPublisher struct {
	fail      bool
	delivered []string
}

func (p *flakyPublisher) Deliver(_ context.Context, rec appoutbox.EventRecord) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.delivered = append(p.delivered, rec.ID)
	return nil
}

func TestOutboxDeliversOnlyCommittedRecords(t *testing.T) {
	store := NewStore()
	pub := &flakyPublisher{fail: true}
	box := NewOutbox(store, pub, nil)
	factory := Factory{Store: store}

	rolled, err := factory.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, box.Add(uow.Enter(context.Background(), rolled), appoutbox.EventRecord{ID: "discarded"}))
	require.NoError(t, rolled.Rollback(context.Background()))

	committed, err := factory.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, box.Add(uow.Enter(context.Background(), committed), appoutbox.EventRecord{ID: "kept"}))
	assert.Empty(t, box.Pending())
	require.NoError(t, committed.Commit(context.Background()))

	require.Error(t, box.Flush(context.Background()))
	require.Len(t, box.Pending(), 1, "failed delivery stays queued")

	pub.fail = false
	require.NoError(t, box.Flush(context.Background()))
	assert.Equal(t, []string{"kept"}, pub.delivered)
	assert.Empty(t, box.Pending())
}

func TestIdempotencyStoreExpires(t *testing.T) {
	s := NewIdempotencyStore(time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	require.NoError(t, s.Save(context.Background(), middleware.IdempotencyRecord{Key: "k", OccurredAt: now}))

	_, found, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, found)

	now = now.Add(2 * time.Minute)
	_, found, err = s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, found)
}

package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/middleware"
)

func TestIdempotencyStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("STAYBOOK_REDIS_ADDR")
	if addr == "" {
		t.Skip("STAYBOOK_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := NewClient(ctx, addr, os.Getenv("STAYBOOK_REDIS_PASSWORD"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewIdempotencyStore(rdb, time.Minute)
	key := "hotel-a/wallet.debit/" + uuid.NewString()

	_, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, found)

	rec := middleware.IdempotencyRecord{
		Key:        key,
		ErrorKind:  "INSUFFICIENT_BALANCE",
		Error:      "wallet: insufficient balance",
		OccurredAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, store.Save(ctx, rec))

	got, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, rec.ErrorKind, got.ErrorKind)
	require.Equal(t, rec.Error, got.Error)
	require.True(t, rec.OccurredAt.Equal(got.OccurredAt))

	ttl, err := rdb.TTL(ctx, keyPrefix+key).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
}

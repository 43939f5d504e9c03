package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"staybook/internal/app/middleware"
)

const keyPrefix = "staybook:idemp:"

// IdempotencyStore keeps command outcomes as JSON strings that expire with
// the configured TTL.
type IdempotencyStore struct {
	rdb goredis.Cmdable
	ttl time.Duration
}

func NewIdempotencyStore(rdb goredis.Cmdable, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

type recordJSON struct {
	Payload    []byte    `json:"payload,omitempty"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return middleware.IdempotencyRecord{}, false, nil
	}
	if err != nil {
		return middleware.IdempotencyRecord{}, false, fmt.Errorf("redis idempotency get: %w", err)
	}
	var doc recordJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return middleware.IdempotencyRecord{}, false, fmt.Errorf("redis idempotency decode %s: %w", key, err)
	}
	return middleware.IdempotencyRecord{
		Key:        key,
		Payload:    doc.Payload,
		ErrorKind:  doc.ErrorKind,
		Error:      doc.Error,
		OccurredAt: doc.OccurredAt,
	}, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	raw, err := json.Marshal(recordJSON{
		Payload:    rec.Payload,
		ErrorKind:  rec.ErrorKind,
		Error:      rec.Error,
		OccurredAt: rec.OccurredAt,
	})
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, keyPrefix+rec.Key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis idempotency save: %w", err)
	}
	return nil
}

// NewClient connects to addr and pings it.
func NewClient(ctx context.Context, addr, password string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)

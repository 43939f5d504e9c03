package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/policies"
)

type publishCall struct {
	topic, key string
	payload    []byte
	headers    map[string]string
}

type fakeProducer struct {
	calls []publishCall
	err   error
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	p.calls = append(p.calls, publishCall{topic, key, payload, headers})
	return p.err
}

type sinkFunc func(context.Context, policies.AuditRecord) error

func (f sinkFunc) Append(ctx context.Context, rec policies.AuditRecord) error { return f(ctx, rec) }

func sampleRecord() policies.AuditRecord {
	return policies.AuditRecord{
		Action:   "wallet.debit",
		TenantID: "hotel-a",
		Actor:    "front-desk",
		Subject:  "wallet:hotel-a",
		Details:  map[string]any{"amount": 20},
		At:       time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestKafkaSinkPublishesJSONKeyedByTenant(t *testing.T) {
	prod := &fakeProducer{}
	sink := KafkaSink{Producer: prod, Topic: "staybook.audit"}

	require.NoError(t, sink.Append(context.Background(), sampleRecord()))
	require.Len(t, prod.calls, 1)
	call := prod.calls[0]
	assert.Equal(t, "staybook.audit", call.topic)
	assert.Equal(t, "hotel-a", call.key)
	assert.Equal(t, "wallet.debit", call.headers["action"])

	var decoded policies.AuditRecord
	require.NoError(t, json.Unmarshal(call.payload, &decoded))
	assert.Equal(t, "wallet:hotel-a", decoded.Subject)
	assert.EqualValues(t, 20, decoded.Details["amount"])
}

func TestKafkaSinkRequiresConfiguration(t *testing.T) {
	err := KafkaSink{}.Append(context.Background(), sampleRecord())
	assert.ErrorIs(t, err, ErrSinkNotConfigured)
}

func TestLogSinkWritesRecord(t *testing.T) {
	var buf bytes.Buffer
	sink := LogSink{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	require.NoError(t, sink.Append(context.Background(), sampleRecord()))
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "audit", line["msg"])
	assert.Equal(t, "hotel-a", line["tenant_id"])
}

func TestFanoutJoinsFailures(t *testing.T) {
	boom := errors.New("boom")
	var delivered int
	ok := sinkFunc(func(context.Context, policies.AuditRecord) error { delivered++; return nil })
	bad := sinkFunc(func(context.Context, policies.AuditRecord) error { return boom })

	err := Fanout{bad, ok}.Append(context.Background(), sampleRecord())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, delivered)
}

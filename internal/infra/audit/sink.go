package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"staybook/internal/app/policies"
)

// LogSink writes audit records to the structured log.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Append(ctx context.Context, rec policies.AuditRecord) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "audit",
		"action", rec.Action,
		"tenant_id", rec.TenantID,
		"actor", rec.Actor,
		"subject", rec.Subject,
		"details", rec.Details,
		"at", rec.At,
	)
	return nil
}

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// KafkaSink publishes audit records as JSON to one topic, keyed by tenant so
// a tenant's trail stays ordered within its partition.
type KafkaSink struct {
	Producer Producer
	Topic    string
}

var ErrSinkNotConfigured = errors.New("audit: kafka sink missing producer or topic")

func (s KafkaSink) Append(ctx context.Context, rec policies.AuditRecord) error {
	if s.Producer == nil || s.Topic == "" {
		return ErrSinkNotConfigured
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("audit: encode %s: %w", rec.Action, err)
	}
	headers := map[string]string{"content-type": "application/json", "action": rec.Action}
	return s.Producer.Publish(ctx, s.Topic, rec.TenantID, payload, headers)
}

// Fanout appends to every sink and joins their failures.
type Fanout []policies.AuditSink

func (f Fanout) Append(ctx context.Context, rec policies.AuditRecord) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Append(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ policies.AuditSink = LogSink{}
	_ policies.AuditSink = KafkaSink{}
	_ policies.AuditSink = Fanout{}
)

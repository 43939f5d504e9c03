package policies

import (
	"context"
	"log/slog"
	"time"
)

// AuditRecord describes one engine action for the external audit log. Only
// the invocation contract is owned here; storage and retention are not.
type AuditRecord struct {
	Action   string         `json:"action"`
	TenantID string         `json:"tenant_id"`
	Actor    string         `json:"actor,omitempty"`
	Subject  string         `json:"subject"`
	Details  map[string]any `json:"details,omitempty"`
	At       time.Time      `json:"at"`
}

type AuditSink interface {
	Append(ctx context.Context, rec AuditRecord) error
}

// Audit delivers rec to sink after the primary operation committed. Failures
// are logged and never reach the caller.
func Audit(ctx context.Context, sink AuditSink, logger *slog.Logger, rec AuditRecord) {
	if sink == nil {
		return
	}
	if rec.At.IsZero() {
		rec.At = time.Now().UTC()
	}
	if err := sink.Append(context.WithoutCancel(ctx), rec); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.WarnContext(ctx, "audit sink append failed", "action", rec.Action, "tenant_id", rec.TenantID, "subject", rec.Subject, "error", err)
	}
}

// Package tenancy carries the resolved tenant identifier through request
// contexts. Resolving it (hostname, header) happens at the edge.
package tenancy

import (
	"context"
	"strings"
)

type ctxKey struct{}

func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, strings.TrimSpace(tenantID))
}

func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// Scoped is implemented by commands and queries that act on one tenant.
type Scoped interface {
	Tenant() string
}

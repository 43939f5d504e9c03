package middleware

import (
	"context"

	"staybook/internal/app/commands"
	"staybook/internal/app/queries"
	"staybook/internal/app/tenancy"
	"staybook/internal/domain/shared/fault"
)

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

var (
	ErrTenantMissing  = fault.New(fault.KindValidation, "middleware: tenant id required")
	ErrTenantMismatch = fault.New(fault.KindValidation, "middleware: message tenant differs from request tenant")
)

// TenantGuard rejects tenant-scoped messages without a tenant, or addressed to
// another tenant than the one resolved for the request.
type TenantGuard struct{}

func (TenantGuard) Authorize(ctx context.Context, message any) error {
	scoped, ok := message.(tenancy.Scoped)
	if !ok {
		return nil
	}
	tenant := scoped.Tenant()
	if tenant == "" {
		return ErrTenantMissing
	}
	if resolved, ok := tenancy.FromContext(ctx); ok && resolved != tenant {
		return ErrTenantMismatch
	}
	return nil
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := a.Authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return nextFn(ctx, cmd)
		})
	}
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := a.Authorize(ctx, q); err != nil {
				return nil, err
			}
			return nextFn(ctx, q)
		})
	}
}

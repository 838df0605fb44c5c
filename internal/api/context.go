package api

import "context"

type ctxKey string

const ctxKeyTenant ctxKey = "tenant"

// Tenant identifies who a request acts for. Resolved by SessionAuth.
type Tenant struct {
	ID    string
	Actor string
}

func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, ctxKeyTenant, t)
}

func TenantFromContext(ctx context.Context) *Tenant {
	v := ctx.Value(ctxKeyTenant)
	if v == nil {
		return nil
	}
	t, _ := v.(*Tenant)
	return t
}

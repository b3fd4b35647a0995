package types

import "context"

// ctxKey is a private type to avoid collisions with context keys defined in other packages.
type ctxKey string

const (
	CtxTenantID   ctxKey = "tenant_id"
	CtxUserID     ctxKey = "user_id"
	CtxRequestID  ctxKey = "request_id"
)

// GetTenantID returns the tenant id stored on the context, or the empty string.
func GetTenantID(ctx context.Context) string {
	v, _ := ctx.Value(CtxTenantID).(string)
	return v
}

// GetUserID returns the user id stored on the context, or the empty string.
func GetUserID(ctx context.Context) string {
	v, _ := ctx.Value(CtxUserID).(string)
	return v
}

// GetRequestID returns the request id stored on the context, or the empty string.
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(CtxRequestID).(string)
	return v
}

// WithTenantID returns a copy of ctx carrying the given tenant id.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, CtxTenantID, tenantID)
}

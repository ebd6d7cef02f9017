// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Context keys and getter/setter functions live here for values that are
// typically set by middleware but consumed by services. Keeping this package
// free of net/http dependencies lets domain code import only what it needs.
//
// Usage in services (read values):
//
//	principal := requestcontext.Principal(ctx)
//	requestID := requestcontext.RequestID(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithPrincipal(ctx, p)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
package requestcontext

import (
	"context"

	"openid-gateway/internal/identity"
)

// Context key types (unexported for encapsulation).
type (
	principalKey struct{}
	requestIDKey struct{}
	nonceKey     struct{}
	deviceKey    struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyPrincipal = principalKey{}
	ContextKeyRequestID = requestIDKey{}
	ContextKeyNonce     = nonceKey{}
	ContextKeyDevice    = deviceKey{}
)

// Device describes the calling user agent, as parsed by middleware. Audit
// events carry it for forensic context.
type Device struct {
	Browser string
	OS      string
	Mobile  bool
	Bot     bool
}

// Principal retrieves the authenticated principal from the context, or nil
// when the caller has no established identity.
func Principal(ctx context.Context) *identity.Principal {
	if p, ok := ctx.Value(ContextKeyPrincipal).(*identity.Principal); ok {
		return p
	}
	return nil
}

// WithPrincipal injects an authenticated principal into the context.
func WithPrincipal(ctx context.Context, p *identity.Principal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, p)
}

// RequestID retrieves the correlation ID assigned by middleware. Returns ""
// when unset.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, id)
}

// Nonce retrieves the inbound request's nonce parameter. The claims resolver
// copies it into issued claims when present. Returns "" when unset.
func Nonce(ctx context.Context) string {
	if n, ok := ctx.Value(ContextKeyNonce).(string); ok {
		return n
	}
	return ""
}

// WithNonce injects the inbound nonce parameter into the context.
func WithNonce(ctx context.Context, nonce string) context.Context {
	return context.WithValue(ctx, ContextKeyNonce, nonce)
}

// DeviceMeta retrieves parsed user-agent metadata. Returns the zero Device
// when middleware did not run.
func DeviceMeta(ctx context.Context) Device {
	if d, ok := ctx.Value(ContextKeyDevice).(Device); ok {
		return d
	}
	return Device{}
}

// WithDeviceMeta injects parsed user-agent metadata into the context.
func WithDeviceMeta(ctx context.Context, d Device) context.Context {
	return context.WithValue(ctx, ContextKeyDevice, d)
}

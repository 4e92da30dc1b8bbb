package middleware

import (
	"context"

	"github.com/angelmondragon/bookverse-backend/internal/auth"
)

type contextKey string

const (
	ctxIdentity    contextKey = "identity"
	ctxCartSession contextKey = "cart_session"
)

// IdentityFromContext returns the authenticated caller, or nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *auth.Identity {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxIdentity).(*auth.Identity); ok {
		return v
	}
	return nil
}

func UserIDFromContext(ctx context.Context) string {
	if identity := IdentityFromContext(ctx); identity != nil {
		return identity.UserID
	}
	return ""
}

// CartSessionFromContext returns the guest cart session id for the request.
func CartSessionFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCartSession).(string); ok {
		return v
	}
	return ""
}

// WithIdentity injects the authenticated caller into the context.
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity)
}

// WithCartSession injects the guest cart session id into the context.
func WithCartSession(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCartSession, sessionID)
}

package events

import (
	"context"
	"strings"
)

const unknownClient = "unknown"

// ClientInfo is the request origin stamped on every event.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

type clientInfoKey struct{}

type sessionIDKey struct{}

// WithClientInfo stores the caller's address and user agent on ctx.
func WithClientInfo(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, info)
}

// WithSessionID stores the browser cart session so anonymous events can be
// attributed.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, strings.TrimSpace(sessionID))
}

// SessionIDFrom returns the stored session id, or "" when none is set.
func SessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}

// ClientInfoFrom returns the stored client info, defaulting both fields to "unknown".
func ClientInfoFrom(ctx context.Context) ClientInfo {
	info, _ := ctx.Value(clientInfoKey{}).(ClientInfo)
	if strings.TrimSpace(info.IPAddress) == "" {
		info.IPAddress = unknownClient
	}
	if strings.TrimSpace(info.UserAgent) == "" {
		info.UserAgent = unknownClient
	}
	return info
}

// Package http provides HTTP middleware and utilities for caller identity.
package http

import (
	"context"
)

// identityKey is a context key type for storing the resolved caller identity.
type identityKey struct{}

// WithIdentity stores the resolved caller identity in the context.
// This is typically called by IdentityMiddleware once a certificate fingerprint is known.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity retrieves the caller identity from the context.
// Returns ("", false) when no identity was set.
func GetIdentity(ctx context.Context) (string, bool) {
	identity, ok := ctx.Value(identityKey{}).(string)
	if !ok || identity == "" {
		return "", false
	}
	return identity, true
}

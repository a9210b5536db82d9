// Package auth provides session verification and caller identity plumbing.
package auth

import (
	"context"

	"github.com/pathwise/pathwise/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// identityContextKey is the context key for storing the caller Identity.
	identityContextKey contextKey = "identity_context"
)

// ContextWithIdentity adds the caller Identity to the context.
func ContextWithIdentity(ctx context.Context, ident *model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, ident)
}

// IdentityFromContext retrieves the caller Identity from the context.
// Returns nil if not present.
func IdentityFromContext(ctx context.Context) *model.Identity {
	ident, ok := ctx.Value(identityContextKey).(*model.Identity)
	if !ok {
		return nil
	}
	return ident
}

// ExternalIDFromContext is a convenience function to get the external id
// from context. Returns empty string if not authenticated.
func ExternalIDFromContext(ctx context.Context) string {
	ident := IdentityFromContext(ctx)
	if ident == nil {
		return ""
	}
	return ident.ExternalID
}

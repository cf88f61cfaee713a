package auth

import (
	"context"

	"github.com/wolfeidau/leadcrm/internal/access"
)

type contextKey int

const (
	principalContextKey contextKey = iota
)

// WithPrincipal returns a context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, principal access.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from the request context.
// Returns false if no principal is present (unauthenticated request).
func PrincipalFromContext(ctx context.Context) (access.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(access.Principal)
	return principal, ok
}

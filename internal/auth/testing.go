package auth

import "context"

// SetClaimsForTesting injects verified claims into a context.
// Only for tests that exercise handlers behind the guard.
func SetClaimsForTesting(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

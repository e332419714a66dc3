package shared

import "context"

// Principal identifies the authenticated operator. It is supplied by the
// external session layer and treated as read-only input.
type Principal struct {
	UserID      string
	DisplayName string
}

type principalKey struct{}

// ContextWithPrincipal stores the principal on the context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

package http

import (
	"context"

	"github.com/example/internship-exchange/internal/workflow"
)

type contextKey string

const principalContextKey contextKey = "principal"

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal workflow.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (workflow.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(workflow.Principal)
	return principal, ok
}

package services

import (
	"context"

	"github.com/google/uuid"
)

// Principal is the authenticated caller attached to a request context.
// Email is set for admins only; anonymous participants carry none.
type Principal struct {
	ID    uuid.UUID
	Role  string
	Email string
}

type ctxKey string

const principalKey ctxKey = "principal"

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/pabloleguizamon/dragon-challenge/internal/domain"
)

type ctxKey string

const identityCtxKey = ctxKey("identity")

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   domain.Role
}

func (i Identity) IsAdmin() bool { return i.Role == domain.RoleAdmin }

// WithIdentity stores the caller in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, id)
}

// IdentityFromContext extracts the caller.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey).(Identity)
	return id, ok
}

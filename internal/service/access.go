package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pabloleguizamon/dragon-challenge/internal/auth"
)

// Access answers the per-operation authorization questions shared by every
// transport. With EnforceRoles off any authenticated caller may run admin
// operations.
type Access struct {
	EnforceRoles bool
}

// Authenticated returns the caller or ErrUnauthenticated.
func (a Access) Authenticated(ctx context.Context) (auth.Identity, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return auth.Identity{}, ErrUnauthenticated
	}
	return id, nil
}

// Admin requires an authenticated caller and, when roles are enforced, the
// admin role.
func (a Access) Admin(ctx context.Context) (auth.Identity, error) {
	id, err := a.Authenticated(ctx)
	if err != nil {
		return id, err
	}
	if a.EnforceRoles && !id.IsAdmin() {
		return id, ErrForbidden
	}
	return id, nil
}

// OwnerOrAdmin lets the owner through, and anyone else only when Admin would.
func (a Access) OwnerOrAdmin(ctx context.Context, owner uuid.UUID) error {
	id, err := a.Authenticated(ctx)
	if err != nil {
		return err
	}
	if id.UserID == owner {
		return nil
	}
	_, err = a.Admin(ctx)
	return err
}

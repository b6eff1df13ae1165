package gqlapi

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pabloleguizamon/dragon-challenge/internal/service"
)

// Resolver is the root for both Query and Mutation.
type Resolver struct {
	svc service.Services
	log *slog.Logger
}

func (r *Resolver) id(ctx context.Context, field, raw string) (uuid.UUID, error) {
	id, err := service.ParseID(field, raw)
	if err != nil {
		return uuid.Nil, r.fail(ctx, err)
	}
	return id, nil
}

// Queries

func (r *Resolver) Products(ctx context.Context) ([]*productResolver, error) {
	out, err := r.svc.Products.List(ctx, true)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return products(out), nil
}

func (r *Resolver) Product(ctx context.Context, args struct{ ID string }) (*productResolver, error) {
	id, err := r.id(ctx, "id", args.ID)
	if err != nil {
		return nil, err
	}
	p, err := r.svc.Products.Get(ctx, id)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &productResolver{p: p}, nil
}

func (r *Resolver) SearchProducts(ctx context.Context, args struct{ SearchTerm string }) ([]*productResolver, error) {
	out, err := r.svc.Products.Search(ctx, args.SearchTerm)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return products(out), nil
}

func (r *Resolver) MyOrders(ctx context.Context) ([]*orderResolver, error) {
	who, err := r.svc.Access.Authenticated(ctx)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	out, err := r.svc.Orders.ListForUser(ctx, who.UserID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return orders(out), nil
}

func (r *Resolver) Orders(ctx context.Context) ([]*orderResolver, error) {
	if _, err := r.svc.Access.Admin(ctx); err != nil {
		return nil, r.fail(ctx, err)
	}
	out, err := r.svc.Orders.ListAll(ctx)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return orders(out), nil
}

func (r *Resolver) OrdersByUser(ctx context.Context, args struct{ UserID string }) ([]*orderResolver, error) {
	if _, err := r.svc.Access.Admin(ctx); err != nil {
		return nil, r.fail(ctx, err)
	}
	uid, err := r.id(ctx, "userId", args.UserID)
	if err != nil {
		return nil, err
	}
	out, err := r.svc.Orders.ListForUser(ctx, uid)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return orders(out), nil
}

func (r *Resolver) Order(ctx context.Context, args struct{ ID string }) (*orderResolver, error) {
	if _, err := r.svc.Access.Authenticated(ctx); err != nil {
		return nil, r.fail(ctx, err)
	}
	id, err := r.id(ctx, "id", args.ID)
	if err != nil {
		return nil, err
	}
	o, err := r.svc.Orders.Get(ctx, id)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	if err := r.svc.Access.OwnerOrAdmin(ctx, o.UserID); err != nil {
		return nil, r.fail(ctx, err)
	}
	return &orderResolver{o: o}, nil
}

func (r *Resolver) Users(ctx context.Context) ([]*userResolver, error) {
	if _, err := r.svc.Access.Admin(ctx); err != nil {
		return nil, r.fail(ctx, err)
	}
	out, err := r.svc.Users.List(ctx)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return users(out), nil
}

func (r *Resolver) User(ctx context.Context, args struct{ ID string }) (*userResolver, error) {
	if _, err := r.svc.Access.Admin(ctx); err != nil {
		return nil, r.fail(ctx, err)
	}
	id, err := r.id(ctx, "id", args.ID)
	if err != nil {
		return nil, err
	}
	u, err := r.svc.Users.Get(ctx, id)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &userResolver{u: u}, nil
}

func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	who, err := r.svc.Access.Authenticated(ctx)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	u, err := r.svc.Users.Get(ctx, who.UserID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &userResolver{u: u}, nil
}

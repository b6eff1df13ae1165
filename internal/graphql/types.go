package gqlapi

import (
	"github.com/graph-gophers/graphql-go"
	"github.com/shopspring/decimal"

	"github.com/pabloleguizamon/dragon-challenge/internal/domain"
	"github.com/pabloleguizamon/dragon-challenge/internal/service"
)

func money(d decimal.Decimal) float64 { return d.InexactFloat64() }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type userResolver struct{ u *domain.User }

func (r *userResolver) ID() graphql.ID          { return graphql.ID(r.u.ID.String()) }
func (r *userResolver) Email() string           { return r.u.Email }
func (r *userResolver) FirstName() *string      { return optional(r.u.FirstName) }
func (r *userResolver) LastName() *string       { return optional(r.u.LastName) }
func (r *userResolver) Role() string            { return string(r.u.Role) }
func (r *userResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.u.CreatedAt} }
func (r *userResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: r.u.UpdatedAt} }

func users(in []domain.User) []*userResolver {
	out := make([]*userResolver, len(in))
	for i := range in {
		out[i] = &userResolver{u: &in[i]}
	}
	return out
}

type productResolver struct{ p *domain.Product }

func (r *productResolver) ID() graphql.ID          { return graphql.ID(r.p.ID.String()) }
func (r *productResolver) Name() string            { return r.p.Name }
func (r *productResolver) Description() string     { return r.p.Description }
func (r *productResolver) Price() float64          { return money(r.p.Price) }
func (r *productResolver) Stock() int32            { return int32(r.p.Stock) }
func (r *productResolver) ImageURL() *string       { return r.p.ImageURL }
func (r *productResolver) IsActive() bool          { return r.p.IsActive() }
func (r *productResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.p.CreatedAt} }
func (r *productResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: r.p.UpdatedAt} }

func products(in []domain.Product) []*productResolver {
	out := make([]*productResolver, len(in))
	for i := range in {
		out[i] = &productResolver{p: &in[i]}
	}
	return out
}

type orderItemResolver struct{ it *domain.OrderItem }

func (r *orderItemResolver) ID() graphql.ID        { return graphql.ID(r.it.ID.String()) }
func (r *orderItemResolver) ProductID() graphql.ID { return graphql.ID(r.it.ProductID.String()) }
func (r *orderItemResolver) Quantity() int32       { return int32(r.it.Quantity) }
func (r *orderItemResolver) Price() float64        { return money(r.it.Price) }
func (r *orderItemResolver) Subtotal() float64     { return money(r.it.Subtotal) }

// Product falls back to a stub carrying only the id when the row was not
// loaded with the order.
func (r *orderItemResolver) Product() *productResolver {
	if r.it.Product == nil {
		return &productResolver{p: &domain.Product{ID: r.it.ProductID}}
	}
	return &productResolver{p: r.it.Product}
}

type orderResolver struct{ o *domain.Order }

func (r *orderResolver) ID() graphql.ID          { return graphql.ID(r.o.ID.String()) }
func (r *orderResolver) UserID() graphql.ID      { return graphql.ID(r.o.UserID.String()) }
func (r *orderResolver) Total() float64          { return money(r.o.Total) }
func (r *orderResolver) Status() string          { return string(r.o.Status) }
func (r *orderResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.o.CreatedAt} }
func (r *orderResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: r.o.UpdatedAt} }

func (r *orderResolver) User() *userResolver {
	if r.o.User == nil {
		return &userResolver{u: &domain.User{ID: r.o.UserID}}
	}
	return &userResolver{u: r.o.User}
}

func (r *orderResolver) Items() []*orderItemResolver {
	out := make([]*orderItemResolver, len(r.o.Items))
	for i := range r.o.Items {
		out[i] = &orderItemResolver{it: &r.o.Items[i]}
	}
	return out
}

func orders(in []domain.Order) []*orderResolver {
	out := make([]*orderResolver, len(in))
	for i := range in {
		out[i] = &orderResolver{o: &in[i]}
	}
	return out
}

type authPayloadResolver struct{ p *service.AuthPayload }

func (r *authPayloadResolver) AccessToken() string { return r.p.AccessToken }
func (r *authPayloadResolver) User() *userResolver { return &userResolver{u: r.p.User} }

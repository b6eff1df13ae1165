package gqlapi

import (
	"context"

	"github.com/pabloleguizamon/dragon-challenge/internal/service"
)

type loginArgs struct {
	LoginInput struct {
		Email    string
		Password string
	}
}

func (r *Resolver) Login(ctx context.Context, args loginArgs) (*authPayloadResolver, error) {
	in := service.LoginInput{Email: args.LoginInput.Email, Password: args.LoginInput.Password}
	if err := in.Validate(); err != nil {
		return nil, r.fail(ctx, err)
	}
	p, err := r.svc.Auth.Login(ctx, in)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &authPayloadResolver{p: p}, nil
}

type registerArgs struct {
	RegisterInput struct {
		Email     string
		Password  string
		FirstName *string
		LastName  *string
	}
}

func (r *Resolver) Register(ctx context.Context, args registerArgs) (*authPayloadResolver, error) {
	a := args.RegisterInput
	in := service.RegisterInput{Email: a.Email, Password: a.Password, FirstName: a.FirstName, LastName: a.LastName}
	if err := in.Validate(); err != nil {
		return nil, r.fail(ctx, err)
	}
	p, err := r.svc.Auth.Register(ctx, in)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &authPayloadResolver{p: p}, nil
}

type createProductArgs struct {
	CreateProductInput struct {
		Name        string
		Description string
		Price       float64
		Stock       *int32
		ImageURL    *string
	}
}

func (r *Resolver) CreateProduct(ctx context.Context, args createProductArgs) (*productResolver, error) {
	if _, err := r.svc.Access.Admin(ctx); err != nil {
		return nil, r.fail(ctx, err)
	}
	a := args.CreateProductInput
	in := service.CreateProductInput{
		Name:        a.Name,
		Description: a.Description,
		Price:       service.Money(a.Price),
		Stock:       intPtr(a.Stock),
		ImageURL:    a.ImageURL,
	}
	if err := in.Validate(); err != nil {
		return nil, r.fail(ctx, err)
	}
	p, err := r.svc.Products.Create(ctx, in)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &productResolver{p: p}, nil
}

type updateProductArgs struct {
	ID                 string
	UpdateProductInput struct {
		Name        *string
		Description *string
		Price       *float64
		Stock       *int32
		ImageURL    *string
		IsActive    *bool
	}
}

func (r *Resolver) UpdateProduct(ctx context.Context, args updateProductArgs) (*productResolver, error) {
	if _, err := r.svc.Access.Admin(ctx); err != nil {
		return nil, r.fail(ctx, err)
	}
	id, err := r.id(ctx, "id", args.ID)
	if err != nil {
		return nil, err
	}
	a := args.UpdateProductInput
	in := service.UpdateProductInput{
		Name:        a.Name,
		Description: a.Description,
		Stock:       intPtr(a.Stock),
		ImageURL:    a.ImageURL,
		IsActive:    a.IsActive,
	}
	if a.Price != nil {
		price := service.Money(*a.Price)
		in.Price = &price
	}
	if err := in.Validate(); err != nil {
		return nil, r.fail(ctx, err)
	}
	p, err := r.svc.Products.Update(ctx, id, in)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &productResolver{p: p}, nil
}

func (r *Resolver) DeleteProduct(ctx context.Context, args struct{ ID string }) (*productResolver, error) {
	if _, err := r.svc.Access.Admin(ctx); err != nil {
		return nil, r.fail(ctx, err)
	}
	id, err := r.id(ctx, "id", args.ID)
	if err != nil {
		return nil, err
	}
	p, err := r.svc.Products.Deactivate(ctx, id)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &productResolver{p: p}, nil
}

type createOrderArgs struct {
	CreateOrderInput struct {
		Items []struct {
			ProductID string
			Quantity  int32
		}
	}
}

func (r *Resolver) CreateOrder(ctx context.Context, args createOrderArgs) (*orderResolver, error) {
	who, err := r.svc.Access.Authenticated(ctx)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	in := service.PlaceOrderInput{Items: make([]service.OrderItemInput, 0, len(args.CreateOrderInput.Items))}
	for _, it := range args.CreateOrderInput.Items {
		in.Items = append(in.Items, service.OrderItemInput{ProductID: it.ProductID, Quantity: int(it.Quantity)})
	}
	if err := in.Validate(); err != nil {
		return nil, r.fail(ctx, err)
	}
	o, err := r.svc.Orders.PlaceOrder(ctx, who.UserID, in)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &orderResolver{o: o}, nil
}

type updateOrderStatusArgs struct {
	ID                     string
	UpdateOrderStatusInput struct {
		Status string
	}
}

func (r *Resolver) UpdateOrderStatus(ctx context.Context, args updateOrderStatusArgs) (*orderResolver, error) {
	if _, err := r.svc.Access.Admin(ctx); err != nil {
		return nil, r.fail(ctx, err)
	}
	id, err := r.id(ctx, "id", args.ID)
	if err != nil {
		return nil, err
	}
	in := service.UpdateStatusInput{Status: args.UpdateOrderStatusInput.Status}
	if err := in.Validate(); err != nil {
		return nil, r.fail(ctx, err)
	}
	o, err := r.svc.Orders.UpdateStatus(ctx, id, in)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &orderResolver{o: o}, nil
}

func (r *Resolver) CancelOrder(ctx context.Context, args struct{ ID string }) (*orderResolver, error) {
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
	if o, err = r.svc.Orders.Cancel(ctx, id); err != nil {
		return nil, r.fail(ctx, err)
	}
	return &orderResolver{o: o}, nil
}

func intPtr(v *int32) *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pabloleguizamon/dragon-challenge/internal/domain"
	"github.com/pabloleguizamon/dragon-challenge/internal/repository"
)

// OrderService places orders against live stock and moves them through
// their statuses.
type OrderService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	tx       repository.TxManager
	policy   StatusPolicy
	log      *slog.Logger
}

type OrderOption func(*OrderService)

func WithStatusPolicy(p StatusPolicy) OrderOption {
	return func(s *OrderService) { s.policy = p }
}

func WithOrderLogger(l *slog.Logger) OrderOption {
	return func(s *OrderService) { s.log = l }
}

func NewOrderService(products repository.ProductRepository, orders repository.OrderRepository, tx repository.TxManager, opts ...OrderOption) *OrderService {
	s := &OrderService{
		products: products,
		orders:   orders,
		tx:       tx,
		policy:   PermissivePolicy{},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type orderLine struct {
	productID uuid.UUID
	quantity  int
}

// PlaceOrder creates a PENDING order for userID. Each item is priced from the
// current product and its stock is taken with a conditional decrement. The
// whole order runs in one transaction, so any failing item leaves stock and
// orders untouched.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, in PlaceOrderInput) (*domain.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	lines := make([]orderLine, 0, len(in.Items))
	for i, it := range in.Items {
		id, err := ParseID(fmt.Sprintf("items[%d].productId", i), it.ProductID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, orderLine{productID: id, quantity: it.Quantity})
	}

	var orderID uuid.UUID
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o := domain.Order{UserID: userID, Status: domain.OrderStatusPending, Total: decimal.Zero}
		if err := s.orders.Create(ctx, &o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		total := decimal.Zero
		for i, ln := range lines {
			subtotal, err := s.takeLine(ctx, o.ID, i, ln)
			if err != nil {
				return err
			}
			total = total.Add(subtotal)
		}
		if total.GreaterThanOrEqual(MaxAmount) {
			return invalidField("items", "max")
		}
		o.Total = total
		if err := s.orders.Update(ctx, &o); err != nil {
			return fmt.Errorf("update order total: %w", err)
		}
		orderID = o.ID
		return nil
	})
	if err != nil {
		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			s.log.WarnContext(ctx, "order rejected",
				"user_id", userID, "product_id", stockErr.ProductID,
				"available", stockErr.Available, "requested", stockErr.Requested)
		}
		return nil, err
	}
	s.log.InfoContext(ctx, "order placed", "order_id", orderID, "user_id", userID, "items", len(lines))
	return s.Get(ctx, orderID)
}

// takeLine records one item and decrements its product. It returns the line
// subtotal.
func (s *OrderService) takeLine(ctx context.Context, orderID uuid.UUID, pos int, ln orderLine) (decimal.Decimal, error) {
	p, err := s.products.GetByID(ctx, ln.productID)
	if errors.Is(err, repository.ErrNotFound) {
		return decimal.Zero, &NotFoundError{Entity: "Product", ID: ln.productID}
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("load product: %w", err)
	}
	if !p.IsActive() {
		return decimal.Zero, &NotFoundError{Entity: "Product", ID: ln.productID}
	}
	short := &InsufficientStockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Available:   p.Stock,
		Requested:   ln.quantity,
	}
	if p.Stock < ln.quantity {
		return decimal.Zero, short
	}
	item := domain.OrderItem{
		OrderID:   orderID,
		ProductID: p.ID,
		Quantity:  ln.quantity,
		Price:     p.Price,
		Subtotal:  p.Price.Mul(decimal.NewFromInt(int64(ln.quantity))),
		Position:  pos,
	}
	if item.Subtotal.GreaterThanOrEqual(MaxAmount) {
		return decimal.Zero, invalidField(fmt.Sprintf("items[%d].quantity", pos), "max")
	}
	if err := s.orders.AddItem(ctx, &item); err != nil {
		return decimal.Zero, fmt.Errorf("add order item: %w", err)
	}
	switch err := s.products.DecrementStock(ctx, p.ID, ln.quantity); {
	case errors.Is(err, repository.ErrStockConflict):
		return decimal.Zero, short
	case err != nil:
		return decimal.Zero, fmt.Errorf("decrement stock: %w", err)
	}
	return item.Subtotal, nil
}

func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Entity: "Order", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// ListAll returns every order, newest first.
func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx, repository.OrderFilter{})
}

// ListForUser returns the orders of one user, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	return s.orders.List(ctx, repository.OrderFilter{UserID: &userID})
}

// UpdateStatus sets the status as far as the configured policy allows. Stock
// is not touched; use Cancel to give units back.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, in UpdateStatusInput) (*domain.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	to := in.OrderStatus()
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.policy.Allow(o.Status, to); err != nil {
			return err
		}
		from := o.Status
		o.Status = to
		if err := s.orders.Update(ctx, o); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		s.log.InfoContext(ctx, "order status changed", "order_id", id, "from", from, "to", to)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Cancel moves a PENDING or PROCESSING order to CANCELLED and returns its
// units to stock.
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if o.Status != domain.OrderStatusPending && o.Status != domain.OrderStatusProcessing {
			return &InvalidTransitionError{From: o.Status, To: domain.OrderStatusCancelled}
		}
		for _, it := range o.Items {
			if err := s.products.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
		}
		o.Status = domain.OrderStatusCancelled
		if err := s.orders.Update(ctx, o); err != nil {
			return fmt.Errorf("cancel order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "order cancelled", "order_id", id)
	return s.Get(ctx, id)
}

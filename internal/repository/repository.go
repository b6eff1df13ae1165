package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/pabloleguizamon/dragon-challenge/internal/domain"
)

var (
	// ErrNotFound is returned when an entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate key")
	// ErrStockConflict is returned by DecrementStock when the product holds
	// fewer units than requested at the moment of the write.
	ErrStockConflict = errors.New("stock conflict")
)

// ProductFilter narrows product listings. Term matches name or description,
// case-insensitively.
type ProductFilter struct {
	ActiveOnly bool
	Term       string
}

// OrderFilter narrows order listings. A nil UserID lists every order.
type OrderFilter struct {
	UserID *uuid.UUID
}

// ProductRepository stores catalog entries. List returns newest first.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) error
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
}

// OrderRepository stores orders and their items. GetByID and List load items
// with their products and the owning user.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	AddItem(ctx context.Context, it *domain.OrderItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	List(ctx context.Context, f OrderFilter) ([]domain.Order, error)
}

// UserRepository stores accounts. Create fails with ErrDuplicate on a taken email.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// TxManager runs fn as one all-or-nothing unit. Repositories called with the
// ctx passed to fn take part in the transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Pinger reports store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

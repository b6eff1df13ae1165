package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role of a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a registered customer or administrator.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FirstName    string    `gorm:"size:100" json:"firstName,omitempty"`
	LastName     string    `gorm:"size:100" json:"lastName,omitempty"`
	PasswordHash string    `gorm:"column:password;size:255;not null" json:"-"`
	Role         Role      `gorm:"size:20;not null;default:'user'" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// ProductState is the catalog lifecycle of a product. Retired products stay
// in storage so historical order items keep their reference.
type ProductState string

const (
	ProductActive  ProductState = "active"
	ProductRetired ProductState = "retired"
)

// Product is a catalog entry.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	ImageURL    *string         `gorm:"size:500" json:"imageUrl,omitempty"`
	State       ProductState    `gorm:"size:20;index;not null;default:'active'" json:"state"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (p *Product) IsActive() bool { return p.State == ProductActive }

// OrderStatus of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// OrderStatuses lists every valid status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// OrderItem is one line of an order. Price and Subtotal are copied from the
// product when the order is placed and never follow later product edits.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"orderId"`
	ProductID uuid.UUID       `gorm:"type:uuid;index;not null" json:"productId"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	// Position keeps the caller-supplied item order.
	Position int `gorm:"not null;default:0" json:"-"`
}

// Order belongs to exactly one user and owns its items.
type Order struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"userId"`
	User      *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items     []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Total     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Status    OrderStatus     `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	CreatedAt time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ItemsTotal sums the item subtotals.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal)
	}
	return total
}

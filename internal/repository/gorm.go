package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pabloleguizamon/dragon-challenge/internal/domain"
)

// GormStore persists the domain through GORM. It expects a *gorm.DB opened
// with TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

type gormTxKey struct{}

// conn returns the transaction bound to ctx, or the root handle.
func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// likeEscaper makes a search term match literally inside LIKE ... ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

var _ ProductRepository = (*GormStore)(nil)
var _ Pinger = (*GormStore)(nil)

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.State == "" {
		p.State = domain.ProductActive
	}
	return translate(s.conn(ctx).Create(p).Error)
}

func (s *GormStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	if err := s.conn(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) Update(ctx context.Context, p *domain.Product) error {
	res := s.conn(ctx).Model(p).
		Select("Name", "Description", "Price", "Stock", "ImageURL", "State").
		Updates(p)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock writes stock = stock - qty only while stock >= qty, so two
// concurrent orders cannot both take the last units.
func (s *GormStore) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	db := s.conn(ctx)
	res := db.Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}
	var n int64
	if err := db.Model(&domain.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return translate(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrStockConflict
}

func (s *GormStore) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	res := s.conn(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", qty),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	q := s.conn(ctx).Model(&domain.Product{})
	if f.ActiveOnly {
		q = q.Where("state = ?", domain.ProductActive)
	}
	if f.Term != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(f.Term)) + "%"
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, like, like)
	}
	out := make([]domain.Product, 0)
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

// GormOrders implements OrderRepository on the shared store.
type GormOrders struct{ store *GormStore }

func NewGormOrders(store *GormStore) *GormOrders { return &GormOrders{store: store} }

var _ OrderRepository = (*GormOrders)(nil)

func withOrderRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Items.Product").
		Preload("User")
}

func (g *GormOrders) Create(ctx context.Context, o *domain.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return translate(g.store.conn(ctx).Omit(clause.Associations).Create(o).Error)
}

func (g *GormOrders) AddItem(ctx context.Context, it *domain.OrderItem) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return translate(g.store.conn(ctx).Omit(clause.Associations).Create(it).Error)
}

func (g *GormOrders) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var o domain.Order
	if err := withOrderRelations(g.store.conn(ctx)).First(&o, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (g *GormOrders) Update(ctx context.Context, o *domain.Order) error {
	now := time.Now().UTC()
	res := g.store.conn(ctx).Model(&domain.Order{}).
		Where("id = ?", o.ID).
		Updates(map[string]any{
			"total":      o.Total,
			"status":     o.Status,
			"updated_at": now,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	o.UpdatedAt = now
	return nil
}

func (g *GormOrders) List(ctx context.Context, f OrderFilter) ([]domain.Order, error) {
	q := withOrderRelations(g.store.conn(ctx))
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	out := make([]domain.Order, 0)
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

// GormUsers implements UserRepository on the shared store.
type GormUsers struct{ store *GormStore }

func NewGormUsers(store *GormStore) *GormUsers { return &GormUsers{store: store} }

var _ UserRepository = (*GormUsers)(nil)

func (g *GormUsers) Create(ctx context.Context, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return translate(g.store.conn(ctx).Create(u).Error)
}

func (g *GormUsers) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := g.store.conn(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (g *GormUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := g.store.conn(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (g *GormUsers) List(ctx context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0)
	if err := g.store.conn(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// GormTx runs a unit of work in a database transaction. Nested calls join the
// outer transaction.
type GormTx struct{ store *GormStore }

func NewGormTx(store *GormStore) *GormTx { return &GormTx{store: store} }

var _ TxManager = (*GormTx)(nil)

func (t *GormTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, gormTxKey{}, tx))
	})
}

package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pabloleguizamon/dragon-challenge/internal/domain"
)

type memoryState struct {
	seq          int64
	rank         map[uuid.UUID]int64
	productsByID map[uuid.UUID]domain.Product
	ordersByID   map[uuid.UUID]domain.Order
	itemsByOrder map[uuid.UUID][]domain.OrderItem
	usersByID    map[uuid.UUID]domain.User
}

func newMemoryState() memoryState {
	return memoryState{
		rank:         make(map[uuid.UUID]int64),
		productsByID: make(map[uuid.UUID]domain.Product),
		ordersByID:   make(map[uuid.UUID]domain.Order),
		itemsByOrder: make(map[uuid.UUID][]domain.OrderItem),
		usersByID:    make(map[uuid.UUID]domain.User),
	}
}

func (s memoryState) clone() memoryState {
	c := newMemoryState()
	c.seq = s.seq
	for k, v := range s.rank {
		c.rank[k] = v
	}
	for k, v := range s.productsByID {
		c.productsByID[k] = v
	}
	for k, v := range s.ordersByID {
		c.ordersByID[k] = v
	}
	for k, v := range s.itemsByOrder {
		c.itemsByOrder[k] = append([]domain.OrderItem(nil), v...)
	}
	for k, v := range s.usersByID {
		c.usersByID[k] = v
	}
	return c
}

// MemoryStore is a process-local store used for development and tests. The
// insertion rank breaks ties between equal creation timestamps.
type MemoryStore struct {
	mu sync.RWMutex
	memoryState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{memoryState: newMemoryState()}
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

func (m *MemoryStore) track(id uuid.UUID) {
	m.seq++
	m.rank[id] = m.seq
}

// newer orders by creation time, then by insertion rank, newest first.
func (m *MemoryStore) newer(a, b uuid.UUID, ta, tb time.Time) bool {
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return m.rank[a] > m.rank[b]
}

func stamp(id *uuid.UUID, created, updated *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

var _ ProductRepository = (*MemoryStore)(nil)
var _ Pinger = (*MemoryStore)(nil)

func (m *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

// ProductRepository implementation
func (m *MemoryStore) Create(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if p.State == "" {
		p.State = domain.ProductActive
	}
	m.productsByID[p.ID] = *p
	m.track(p.ID)
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	p, ok := m.productsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy
	cp := p
	return &cp, nil
}

func (m *MemoryStore) Update(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	cur, ok := m.productsByID[p.ID]
	if !ok {
		return ErrNotFound
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	m.productsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	p, ok := m.productsByID[id]
	if !ok {
		return ErrNotFound
	}
	if p.Stock < qty {
		return ErrStockConflict
	}
	p.Stock -= qty
	p.UpdatedAt = time.Now().UTC()
	m.productsByID[id] = p
	return nil
}

func (m *MemoryStore) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	p, ok := m.productsByID[id]
	if !ok {
		return ErrNotFound
	}
	p.Stock += qty
	p.UpdatedAt = time.Now().UTC()
	m.productsByID[id] = p
	return nil
}

func (m *MemoryStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]domain.Product, 0)
	for _, p := range m.productsByID {
		if f.ActiveOnly && !p.IsActive() {
			continue
		}
		if !containsIgnoreCase(p.Name, f.Term) && !containsIgnoreCase(p.Description, f.Term) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return m.newer(out[i].ID, out[j].ID, out[i].CreatedAt, out[j].CreatedAt)
	})
	return out, nil
}

// OrderRepository implementation on wrapper type
type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

var _ OrderRepository = (*MemoryOrders)(nil)

func (mo *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	stamp(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	shell := *o
	shell.Items = nil
	shell.User = nil
	mo.store.ordersByID[o.ID] = shell
	mo.store.track(o.ID)
	return nil
}

func (mo *MemoryOrders) AddItem(ctx context.Context, it *domain.OrderItem) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.ordersByID[it.OrderID]; !ok {
		return ErrNotFound
	}
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	row := *it
	row.Product = nil
	mo.store.itemsByOrder[it.OrderID] = append(mo.store.itemsByOrder[it.OrderID], row)
	return nil
}

// load attaches items, their products and the owner. Caller holds the lock.
func (mo *MemoryOrders) load(o domain.Order) domain.Order {
	rows := mo.store.itemsByOrder[o.ID]
	o.Items = make([]domain.OrderItem, 0, len(rows))
	for _, it := range rows {
		if p, ok := mo.store.productsByID[it.ProductID]; ok {
			cp := p
			it.Product = &cp
		}
		o.Items = append(o.Items, it)
	}
	if u, ok := mo.store.usersByID[o.UserID]; ok {
		cp := u
		o.User = &cp
	}
	return o
}

func (mo *MemoryOrders) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	o, ok := mo.store.ordersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := mo.load(o)
	return &cp, nil
}

func (mo *MemoryOrders) Update(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	cur, ok := mo.store.ordersByID[o.ID]
	if !ok {
		return ErrNotFound
	}
	cur.Total = o.Total
	cur.Status = o.Status
	cur.UpdatedAt = time.Now().UTC()
	o.UpdatedAt = cur.UpdatedAt
	mo.store.ordersByID[o.ID] = cur
	return nil
}

func (mo *MemoryOrders) List(ctx context.Context, f OrderFilter) ([]domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	out := make([]domain.Order, 0)
	for _, o := range mo.store.ordersByID {
		if f.UserID != nil && o.UserID != *f.UserID {
			continue
		}
		out = append(out, mo.load(o))
	}
	sort.Slice(out, func(i, j int) bool {
		return mo.store.newer(out[i].ID, out[j].ID, out[i].CreatedAt, out[j].CreatedAt)
	})
	return out, nil
}

// UserRepository implementation on wrapper type
type MemoryUsers struct{ store *MemoryStore }

func NewMemoryUsers(store *MemoryStore) *MemoryUsers { return &MemoryUsers{store: store} }

var _ UserRepository = (*MemoryUsers)(nil)

func (mu *MemoryUsers) Create(ctx context.Context, u *domain.User) error {
	mu.store.wlock(ctx)
	defer mu.store.wunlock(ctx)
	for _, existing := range mu.store.usersByID {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	stamp(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	mu.store.usersByID[u.ID] = *u
	mu.store.track(u.ID)
	return nil
}

func (mu *MemoryUsers) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	u, ok := mu.store.usersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (mu *MemoryUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	for _, u := range mu.store.usersByID {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (mu *MemoryUsers) List(ctx context.Context) ([]domain.User, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	out := make([]domain.User, 0, len(mu.store.usersByID))
	for _, u := range mu.store.usersByID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		return mu.store.newer(out[i].ID, out[j].ID, out[i].CreatedAt, out[j].CreatedAt)
	})
	return out, nil
}

// Tx manager using write lock to emulate transaction boundary
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if isTx(ctx) {
		return fn(ctx)
	}
	// Hold the write lock for the whole unit and mark ctx so repositories skip
	// their own locks. On error the state captured at entry is restored.
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	saved := tx.store.memoryState.clone()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		tx.store.memoryState = saved
		return err
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pabloleguizamon/dragon-challenge/internal/domain"
)

func TestMemoryStore_CopiesOnRead(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	p := domain.Product{Name: "A", Description: "a", Price: decimal.NewFromInt(10), Stock: 5}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == uuid.Nil || p.State != domain.ProductActive {
		t.Fatalf("create did not stamp: %+v", p)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Stock = 0
	again, _ := store.GetByID(ctx, p.ID)
	if again.Stock != 5 {
		t.Fatalf("mutation leaked into store: stock %d", again.Stock)
	}
}

func TestMemoryStore_ListTieBreak(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for _, n := range []string{"first", "second", "third"} {
		p := domain.Product{Name: n, Description: n, CreatedAt: at}
		if err := store.Create(ctx, &p); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, p.ID)
	}

	list, err := store.List(ctx, ProductFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].ID != ids[2] || list[2].ID != ids[0] {
		t.Fatalf("equal timestamps must list newest insert first, got %v", list)
	}
}

func TestMemoryTx_RollbackRestoresState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tx := NewMemoryTx(store)
	orders := NewMemoryOrders(store)

	p := domain.Product{Name: "A", Description: "a", Price: decimal.NewFromInt(10), Stock: 5}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := store.DecrementStock(ctx, p.ID, 3); err != nil {
			return err
		}
		o := domain.Order{UserID: uuid.New(), Status: domain.OrderStatusPending}
		if err := orders.Create(ctx, &o); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	pp, _ := store.GetByID(ctx, p.ID)
	if pp.Stock != 5 {
		t.Fatalf("stock expected 5 after rollback, got %d", pp.Stock)
	}
	list, _ := orders.List(ctx, OrderFilter{})
	if len(list) != 0 {
		t.Fatalf("order survived rollback: %v", list)
	}
}

func TestMemoryTx_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tx := NewMemoryTx(store)

	p := domain.Product{Name: "A", Description: "a", Stock: 2}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatal(err)
	}
	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		return tx.WithTransaction(ctx, func(ctx context.Context) error {
			return store.DecrementStock(ctx, p.ID, 1)
		})
	})
	if err != nil {
		t.Fatalf("nested tx: %v", err)
	}
	pp, _ := store.GetByID(ctx, p.ID)
	if pp.Stock != 1 {
		t.Fatalf("stock expected 1, got %d", pp.Stock)
	}
}

func TestContainsIgnoreCase(t *testing.T) {
	cases := []struct {
		s, sub string
		want   bool
	}{
		{"Wireless Mouse", "mouse", true},
		{"Wireless Mouse", "", true},
		{"Keyboard", "MOUSE", false},
	}
	for _, c := range cases {
		if got := containsIgnoreCase(c.s, c.sub); got != c.want {
			t.Fatalf("containsIgnoreCase(%q, %q) = %v", c.s, c.sub, got)
		}
	}
}

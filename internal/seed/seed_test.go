package seed

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pabloleguizamon/dragon-challenge/internal/auth"
	"github.com/pabloleguizamon/dragon-challenge/internal/config"
	"github.com/pabloleguizamon/dragon-challenge/internal/db"
	"github.com/pabloleguizamon/dragon-challenge/internal/domain"
	"github.com/pabloleguizamon/dragon-challenge/internal/repository"
	"github.com/pabloleguizamon/dragon-challenge/internal/service"
)

func services() service.Services {
	stores := db.NewMemoryStores()
	return service.Services{
		Auth:     service.NewAuthService(stores.Users, &auth.Hasher{Cost: bcrypt.MinCost}, auth.NewTokenIssuer("k", time.Hour)),
		Products: service.NewProductService(stores.Products),
		Orders:   service.NewOrderService(stores.Products, stores.Orders, stores.Tx),
		Users:    service.NewUserService(stores.Users),
	}
}

func TestDefaultCatalog(t *testing.T) {
	entries, err := DefaultCatalog()
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "Dragon Ball Figure", entries[0].Name)
	assert.True(t, entries[0].Price.Equal(decimal.RequireFromString("29.90")))
	require.NotNil(t, entries[0].ImageURL)
	assert.Nil(t, entries[1].ImageURL)
}

func TestParseCatalog_Rejects(t *testing.T) {
	_, err := ParseCatalog([]byte("products:\n  - name: ''\n    description: x\n    price: '1'\n"))
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = ParseCatalog([]byte("products:\n  - name: a\n    description: b\n    price: '-1'\n"))
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = ParseCatalog([]byte("products: ["))
	assert.Error(t, err)
}

func TestCatalog_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc := services()
	entries, err := DefaultCatalog()
	require.NoError(t, err)

	n, err := Catalog(ctx, svc.Products, entries)
	require.NoError(t, err)
	assert.Equal(t, len(entries), n)

	n, err = Catalog(ctx, svc.Products, entries)
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := svc.Products.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, len(entries))
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	svc := services()
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	cfg := config.SeedConfig{DefaultUser: true, DefaultEmail: "admin@dragon.local", DefaultPassword: "dragon123", Catalog: true}

	Run(ctx, svc, cfg, log)
	Run(ctx, svc, cfg, log)

	users, err := svc.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.True(t, users[0].IsAdmin())
	_, err = svc.Auth.Authenticate(ctx, "admin@dragon.local", "dragon123")
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "default user created")
	assert.NotContains(t, buf.String(), "level=WARN")
}

type brokenUsers struct{ repository.UserRepository }

func (brokenUsers) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, errors.New("db down")
}

func TestRun_FailureOnlyWarns(t *testing.T) {
	svc := services()
	svc.Auth = service.NewAuthService(brokenUsers{}, &auth.Hasher{Cost: bcrypt.MinCost}, auth.NewTokenIssuer("k", time.Hour))
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	Run(context.Background(), svc, config.SeedConfig{DefaultUser: true, DefaultEmail: "a@b.c", DefaultPassword: "x"}, log)
	assert.Contains(t, buf.String(), "could not seed default user")
	assert.Contains(t, buf.String(), "db down")
}

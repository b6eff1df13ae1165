// Package db opens the configured store and keeps its schema current.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pabloleguizamon/dragon-challenge/internal/config"
	"github.com/pabloleguizamon/dragon-challenge/internal/domain"
	"github.com/pabloleguizamon/dragon-challenge/internal/repository"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// Models lists every persisted type in dependency order.
var Models = []any{
	&domain.User{},
	&domain.Product{},
	&domain.Order{},
	&domain.OrderItem{},
}

// Stores bundles the repositories the services need.
type Stores struct {
	Products repository.ProductRepository
	Orders   repository.OrderRepository
	Users    repository.UserRepository
	Tx       repository.TxManager
	Health   repository.Pinger

	closeFn func() error
}

// Close releases the underlying connection, if any.
func (s *Stores) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// NewMemoryStores wires the in-memory implementation.
func NewMemoryStores() *Stores {
	store := repository.NewMemoryStore()
	return &Stores{
		Products: store,
		Orders:   repository.NewMemoryOrders(store),
		Users:    repository.NewMemoryUsers(store),
		Tx:       repository.NewMemoryTx(store),
		Health:   store,
	}
}

// NewGormStores wires the GORM implementation over an open handle.
func NewGormStores(gdb *gorm.DB) *Stores {
	store := repository.NewGormStore(gdb)
	return &Stores{
		Products: store,
		Orders:   repository.NewGormOrders(store),
		Users:    repository.NewGormUsers(store),
		Tx:       repository.NewGormTx(store),
		Health:   store,
		closeFn: func() error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// Open connects to the configured driver and brings the schema up to date.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*Stores, error) {
	if cfg.Driver == "memory" {
		log.Warn("using in-memory store; data is lost on exit")
		return NewMemoryStores(), nil
	}
	gdb, err := Connect(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if err := Migrate(gdb, cfg, log); err != nil {
		return nil, err
	}
	return NewGormStores(gdb), nil
}

// Connect opens a GORM handle, retrying postgres while it starts up.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	level := logger.Silent
	if cfg.Debug {
		level = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(level), TranslateError: true}

	switch cfg.Driver {
	case "sqlite":
		log.Info("opening sqlite database", "path", cfg.SQLitePath)
		return gorm.Open(sqlite.Open(sqliteDSN(cfg.SQLitePath)), gcfg)
	case "postgres":
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}

	log.Info("connecting to database",
		"host", cfg.Host, "port", cfg.Port, "dbname", cfg.DBName, "user", cfg.User)
	var gdb *gorm.DB
	var err error
	for i := 1; i <= connectAttempts; i++ {
		gdb, err = gorm.Open(postgres.Open(cfg.DSN()), gcfg)
		if err == nil {
			break
		}
		log.Warn("database connection failed, retrying", "attempt", i, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after %d attempts: %w", connectAttempts, err)
	}
	if err := gdb.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	return gdb, nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=on"
	}
	return path + "?_foreign_keys=on"
}

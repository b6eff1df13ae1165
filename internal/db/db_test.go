package db

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pabloleguizamon/dragon-challenge/internal/config"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestOpen_Memory(t *testing.T) {
	stores, err := Open(context.Background(), config.DatabaseConfig{Driver: "memory"}, discard())
	require.NoError(t, err)
	assert.NoError(t, stores.Health.Ping(context.Background()))
	assert.NoError(t, stores.Close())
}

func TestOpen_SQLiteMigrates(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "dragon.db")}
	stores, err := Open(context.Background(), cfg, discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	gdb, err := Connect(context.Background(), cfg, discard())
	require.NoError(t, err)
	for _, table := range []string{"users", "products", "orders", "order_items"} {
		assert.True(t, gdb.Migrator().HasTable(table), table)
	}
	// AutoMigrate is idempotent.
	assert.NoError(t, AutoMigrate(gdb))
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(context.Background(), config.DatabaseConfig{Driver: "oracle"}, discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "dragon.db?_foreign_keys=on", sqliteDSN("dragon.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on", sqliteDSN("file:x?mode=memory"))
}

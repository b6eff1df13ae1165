package db

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres database driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"github.com/pabloleguizamon/dragon-challenge/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the versioned SQL migrations when MIGRATIONS is enabled on
// postgres, and falls back to GORM AutoMigrate otherwise.
func Migrate(gdb *gorm.DB, cfg config.DatabaseConfig, log *slog.Logger) error {
	if cfg.Migrations && cfg.Driver == "postgres" {
		log.Info("running sql migrations")
		if err := runSQLMigrations(cfg.URL()); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		return nil
	}
	if err := AutoMigrate(gdb); err != nil {
		return err
	}
	log.Info("schema synchronized", "driver", cfg.Driver)
	return nil
}

// AutoMigrate creates or alters tables to match the domain models.
func AutoMigrate(gdb *gorm.DB) error {
	for _, m := range Models {
		if err := gdb.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	for _, table := range []string{"users", "products", "orders", "order_items"} {
		if !gdb.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// runSQLMigrations executes the embedded migrations with golang-migrate.
func runSQLMigrations(url string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

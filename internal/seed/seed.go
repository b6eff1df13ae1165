// Package seed fills a fresh store with the development account and an
// optional demo catalog.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/pabloleguizamon/dragon-challenge/internal/config"
	"github.com/pabloleguizamon/dragon-challenge/internal/domain"
	"github.com/pabloleguizamon/dragon-challenge/internal/service"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Products []catalogEntry `yaml:"products"`
}

type catalogEntry struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Price       decimal.Decimal `yaml:"price"`
	Stock       int             `yaml:"stock"`
	ImageURL    string          `yaml:"imageUrl"`
}

// ParseCatalog decodes a catalog document into product inputs. Every entry
// is validated.
func ParseCatalog(data []byte) ([]service.CreateProductInput, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	out := make([]service.CreateProductInput, 0, len(f.Products))
	for i, e := range f.Products {
		stock := e.Stock
		in := service.CreateProductInput{
			Name:        e.Name,
			Description: e.Description,
			Price:       e.Price,
			Stock:       &stock,
		}
		if e.ImageURL != "" {
			url := e.ImageURL
			in.ImageURL = &url
		}
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d (%q): %w", i, e.Name, err)
		}
		out = append(out, in)
	}
	return out, nil
}

// DefaultCatalog returns the embedded demo catalog.
func DefaultCatalog() ([]service.CreateProductInput, error) {
	return ParseCatalog(defaultCatalog)
}

// DefaultUser creates the development admin account unless it exists.
func DefaultUser(ctx context.Context, svc *service.AuthService, cfg config.SeedConfig, log *slog.Logger) error {
	u, created, err := svc.EnsureUser(ctx, cfg.DefaultEmail, cfg.DefaultPassword, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("seed default user: %w", err)
	}
	if created {
		log.InfoContext(ctx, "default user created", "email", u.Email)
	}
	return nil
}

// Catalog creates every entry whose name is not in the catalog yet, so it can
// run against a store that was seeded before. It returns how many products it
// created.
func Catalog(ctx context.Context, products *service.ProductService, entries []service.CreateProductInput) (int, error) {
	existing, err := products.List(ctx, false)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p.Name] = true
	}
	n := 0
	for _, in := range entries {
		if seen[in.Name] {
			continue
		}
		if _, err := products.Create(ctx, in); err != nil {
			return n, fmt.Errorf("seed product %q: %w", in.Name, err)
		}
		seen[in.Name] = true
		n++
	}
	return n, nil
}

// Run applies the seeding the config asks for. Failures are logged and never
// stop startup.
func Run(ctx context.Context, svc service.Services, cfg config.SeedConfig, log *slog.Logger) {
	if cfg.DefaultUser {
		if err := DefaultUser(ctx, svc.Auth, cfg, log); err != nil {
			log.WarnContext(ctx, "could not seed default user", "err", err)
		}
	}
	if !cfg.Catalog {
		return
	}
	entries, err := DefaultCatalog()
	if err != nil {
		log.WarnContext(ctx, "could not load demo catalog", "err", err)
		return
	}
	n, err := Catalog(ctx, svc.Products, entries)
	if err != nil {
		log.WarnContext(ctx, "could not seed demo catalog", "err", err)
	}
	if n > 0 {
		log.InfoContext(ctx, "demo catalog seeded", "products", n)
	}
}

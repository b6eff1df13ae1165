package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pabloleguizamon/dragon-challenge/internal/domain"
	"github.com/pabloleguizamon/dragon-challenge/internal/repository"
)

// ProductService owns the catalog: creation, partial updates, retirement and search.
type ProductService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p := domain.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price.Round(2),
		ImageURL:    in.ImageURL,
		State:       domain.ProductActive,
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &p, nil
}

// Get returns the product whatever its state; retired products stay
// reachable by id so order history can resolve them.
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Entity: "Product", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update applies only the fields present in the input.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, in UpdateProductInput) (*domain.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = in.Price.Round(2)
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.ImageURL != nil {
		p.ImageURL = in.ImageURL
	}
	if in.IsActive != nil {
		p.State = stateOf(*in.IsActive)
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, s.wrap(err, id, "update product")
	}
	return s.Get(ctx, id)
}

// Deactivate retires the product and returns it. Retiring twice is a no-op.
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.State == domain.ProductRetired {
		return p, nil
	}
	p.State = domain.ProductRetired
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, s.wrap(err, id, "deactivate product")
	}
	return p, nil
}

// List returns products newest first.
func (s *ProductService) List(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	out, err := s.repo.List(ctx, repository.ProductFilter{ActiveOnly: activeOnly})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Search matches term against name or description, case-insensitively, over
// active products only. An empty term behaves like List(ctx, true).
func (s *ProductService) Search(ctx context.Context, term string) ([]domain.Product, error) {
	return s.repo.List(ctx, repository.ProductFilter{ActiveOnly: true, Term: strings.TrimSpace(term)})
}

func (s *ProductService) wrap(err error, id uuid.UUID, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Entity: "Product", ID: id}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func stateOf(active bool) domain.ProductState {
	if active {
		return domain.ProductActive
	}
	return domain.ProductRetired
}

// Money rounds a float received from a client to cents.
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	CreateProduct(ctx context.Context, p *Product) (*Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validate(p *Product) error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.SKU == "" {
		return errors.New("sku is required")
	}
	if p.Price.IsNegative() {
		return errors.New("price cannot be negative")
	}
	if p.Stock < 0 {
		return errors.New("stock cannot be negative")
	}
	return nil
}

func (s *service) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	if err := validate(p); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, ErrSKUExists) {
			return nil, ErrSKUExists
		}
		log.Error().Err(err).Msg("service: failed to create product in repository")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("product_id", p.ID).Str("sku", p.SKU).Msg("service: product created")
	return p, nil
}

func (s *service) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Msg("service: failed to fetch product by id in repository")
		return nil, fmt.Errorf("service: failed to fetch product by id: %w", err)
	}

	return p, nil
}

func (s *service) ListProducts(ctx context.Context, filter ListFilter) ([]Product, error) {
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list products in repository")
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}

	return products, nil
}

func (s *service) UpdateProduct(ctx context.Context, p *Product) error {
	if err := validate(p); err != nil {
		return err
	}

	err := s.repo.Update(ctx, p)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrSKUExists) {
			return err
		}
		log.Error().Err(err).Stringer("product_id", p.ID).Msg("service: failed to update product")
		return fmt.Errorf("service: failed to update product: %w", err)
	}

	return nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrProductInUse) {
			return err
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to delete product")
		return fmt.Errorf("service: failed to delete product: %w", err)
	}

	log.Info().Stringer("product_id", id).Msg("service: product deleted")
	return nil
}

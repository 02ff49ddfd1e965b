package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	CreateCustomer(ctx context.Context, c *Customer) (*Customer, error)
	GetCustomerByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	ListCustomers(ctx context.Context, filter ListFilter) ([]Customer, error)
	UpdateCustomer(ctx context.Context, c *Customer) error
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validate(c *Customer) error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	if c.Email == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(c.Email, "@") {
		return fmt.Errorf("email %q is not valid", c.Email)
	}
	return nil
}

func (s *service) CreateCustomer(ctx context.Context, c *Customer) (*Customer, error) {
	if err := validate(c); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		log.Error().Err(err).Msg("service: failed to create customer in repository")
		return nil, fmt.Errorf("service: failed to create customer: %w", err)
	}

	log.Info().Stringer("customer_id", c.ID).Msg("service: customer created")
	return c, nil
}

func (s *service) GetCustomerByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Msg("service: failed to fetch customer by id in repository")
		return nil, fmt.Errorf("service: failed to fetch customer by id: %w", err)
	}

	return c, nil
}

func (s *service) ListCustomers(ctx context.Context, filter ListFilter) ([]Customer, error) {
	customers, err := s.repo.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list customers in repository")
		return nil, fmt.Errorf("service: failed to list customers: %w", err)
	}

	return customers, nil
}

func (s *service) UpdateCustomer(ctx context.Context, c *Customer) error {
	if err := validate(c); err != nil {
		return err
	}

	err := s.repo.Update(ctx, c)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrEmailExists) {
			return err
		}
		log.Error().Err(err).Stringer("customer_id", c.ID).Msg("service: failed to update customer")
		return fmt.Errorf("service: failed to update customer: %w", err)
	}

	return nil
}

func (s *service) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCustomerInUse) {
			return err
		}
		log.Error().Err(err).Stringer("customer_id", id).Msg("service: failed to delete customer")
		return fmt.Errorf("service: failed to delete customer: %w", err)
	}

	log.Info().Stringer("customer_id", id).Msg("service: customer deleted")
	return nil
}

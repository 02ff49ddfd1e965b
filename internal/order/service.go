package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// orderNumberAttempts bounds the retry loop when a generated order number
// collides with an existing one.
const orderNumberAttempts = 5

type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, newStatus Status) (*Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	RecalculateTotals(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	orderRepo Repository
}

func NewService(orderRepo Repository) Service {
	return &service{orderRepo: orderRepo}
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error) {
	if input.CustomerID == uuid.Nil {
		return nil, validationErrorf("customer id is required")
	}
	if len(input.Items) == 0 {
		log.Warn().Msg("service: attempt to place order with no items")
		return nil, validationErrorf("order must contain at least one item")
	}
	for _, line := range input.Items {
		if line.ProductID == uuid.Nil {
			return nil, validationErrorf("product id in order item cannot be nil")
		}
		if line.Quantity < 1 {
			return nil, validationErrorf("order item quantity for product %s must be at least 1", line.ProductID)
		}
	}
	if input.Shipping.IsNegative() {
		return nil, validationErrorf("shipping cost cannot be negative")
	}

	items := make([]OrderItem, len(input.Items))
	for i, line := range input.Items {
		items[i] = OrderItem{ProductID: line.ProductID, Quantity: line.Quantity}
	}

	ord := &Order{
		CustomerID: input.CustomerID,
		Items:      items,
		Shipping:   input.Shipping,
	}

	var err error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		ord.OrderNumber, err = newOrderNumber(time.Now().UTC())
		if err != nil {
			return nil, fmt.Errorf("service: %w", err)
		}

		err = s.orderRepo.PlaceOrder(ctx, ord)
		if errors.Is(err, ErrOrderNumberConflict) {
			log.Warn().Str("order_number", ord.OrderNumber).Msg("service: order number collision, retrying")
			ord.ID = uuid.Nil
			continue
		}
		break
	}
	if err != nil {
		var stockErr *InsufficientStockError
		switch {
		case errors.Is(err, ErrCustomerNotFound), errors.Is(err, ErrProductNotFound),
			errors.Is(err, ErrOrderNumberConflict), errors.As(err, &stockErr):
			return nil, err
		}
		log.Error().Err(err).Msg("service: failed to place order in repository")
		return nil, fmt.Errorf("service: failed to place order: %w", err)
	}

	log.Info().
		Stringer("order_id", ord.ID).
		Str("order_number", ord.OrderNumber).
		Stringer("customer_id", ord.CustomerID).
		Str("total", ord.Total.StringFixed(2)).
		Msg("service: order placed successfully")

	return ord, nil
}

func (s *service) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	ord, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", id).Msg("service: order not found by id")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	return ord, nil
}

func (s *service) ListOrders(ctx context.Context, filter ListFilter) ([]Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, filter.Status)
	}

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders in repository")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}

	return orders, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus Status) (*Order, error) {
	if !newStatus.Valid() {
		log.Warn().Stringer("order_id", id).Str("new_status", string(newStatus)).Msg("service: unknown status requested")
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, newStatus)
	}

	ord, err := s.orderRepo.UpdateStatus(ctx, id, newStatus)
	if err != nil {
		var stockErr *InsufficientStockError
		switch {
		case errors.Is(err, ErrOrderNotFound):
			log.Warn().Stringer("order_id", id).Stringer("new_status", newStatus).Msg("service: order not found, cannot update status")
			return nil, ErrOrderNotFound
		case errors.Is(err, ErrInvalidStatusTransition), errors.As(err, &stockErr):
			log.Warn().Err(err).Stringer("order_id", id).Stringer("new_status", newStatus).Msg("service: status transition rejected")
			return nil, err
		}
		log.Error().Err(err).Stringer("order_id", id).Stringer("new_status", newStatus).Msg("service: failed to update order status in repository")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Stringer("order_id", id).Stringer("new_status", newStatus).Msg("service: order status updated successfully")
	return ord, nil
}

func (s *service) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	err := s.orderRepo.Delete(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrMustCancelFirst), errors.Is(err, ErrOrderNotDeletable):
			log.Warn().Err(err).Stringer("order_id", id).Msg("service: order deletion rejected")
			return err
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to delete order in repository")
		return fmt.Errorf("service: failed to delete order: %w", err)
	}

	log.Info().Stringer("order_id", id).Msg("service: order deleted")
	return nil
}

func (s *service) RecalculateTotals(ctx context.Context, id uuid.UUID) (bool, error) {
	updated, err := s.orderRepo.RecalculateTotals(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return false, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to recalculate order totals in repository")
		return false, fmt.Errorf("service: failed to recalculate order totals: %w", err)
	}

	if updated {
		log.Info().Stringer("order_id", id).Msg("service: order totals repaired")
	}
	return updated, nil
}

package order_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopadmin/backoffice/internal/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOrderRepository struct {
	placeOrderFunc        func(ctx context.Context, ord *order.Order) error
	getByIDFunc           func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	listFunc              func(ctx context.Context, filter order.ListFilter) ([]order.Order, error)
	updateStatusFunc      func(ctx context.Context, id uuid.UUID, newStatus order.Status) (*order.Order, error)
	deleteFunc            func(ctx context.Context, id uuid.UUID) error
	recalculateTotalsFunc func(ctx context.Context, id uuid.UUID) (bool, error)
}

func (m *mockOrderRepository) PlaceOrder(ctx context.Context, ord *order.Order) error {
	return m.placeOrderFunc(ctx, ord)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockOrderRepository) List(ctx context.Context, filter order.ListFilter) ([]order.Order, error) {
	return m.listFunc(ctx, filter)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus order.Status) (*order.Order, error) {
	return m.updateStatusFunc(ctx, id, newStatus)
}

func (m *mockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockOrderRepository) RecalculateTotals(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.recalculateTotalsFunc(ctx, id)
}

var (
	testCustomerID = uuid.Must(uuid.FromString("123e4567-e89b-12d3-a456-426614174000"))
	testProductID  = uuid.Must(uuid.FromString("550e8400-e29b-41d4-a716-446655440000"))
	testOrderID    = uuid.Must(uuid.FromString("999e8400-e29b-41d4-a716-446655440000"))
)

func TestOrderService_PlaceOrder_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input order.PlaceOrderInput
	}{
		{
			name: "nil_customer",
			input: order.PlaceOrderInput{
				Items: []order.LineInput{{ProductID: testProductID, Quantity: 1}},
			},
		},
		{
			name:  "empty_items",
			input: order.PlaceOrderInput{CustomerID: testCustomerID},
		},
		{
			name: "zero_quantity",
			input: order.PlaceOrderInput{
				CustomerID: testCustomerID,
				Items:      []order.LineInput{{ProductID: testProductID, Quantity: 0}},
			},
		},
		{
			name: "nil_product",
			input: order.PlaceOrderInput{
				CustomerID: testCustomerID,
				Items:      []order.LineInput{{Quantity: 1}},
			},
		},
		{
			name: "negative_shipping",
			input: order.PlaceOrderInput{
				CustomerID: testCustomerID,
				Items:      []order.LineInput{{ProductID: testProductID, Quantity: 1}},
				Shipping:   decimal.NewFromInt(-1),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repoCalled := false
			mockRepo := &mockOrderRepository{
				placeOrderFunc: func(ctx context.Context, ord *order.Order) error {
					repoCalled = true
					return nil
				},
			}
			svc := order.NewService(mockRepo)

			_, err := svc.PlaceOrder(context.Background(), tt.input)

			var validationErr *order.ValidationError
			assert.ErrorAs(t, err, &validationErr)
			assert.False(t, repoCalled, "repository must not be reached on invalid input")
		})
	}
}

func TestOrderService_PlaceOrder_Success(t *testing.T) {
	mockRepo := &mockOrderRepository{
		placeOrderFunc: func(ctx context.Context, ord *order.Order) error {
			ord.ID = testOrderID
			ord.Status = order.StatusPending
			ord.Total = decimal.RequireFromString("60.50")
			return nil
		},
	}
	svc := order.NewService(mockRepo)

	ord, err := svc.PlaceOrder(context.Background(), order.PlaceOrderInput{
		CustomerID: testCustomerID,
		Items:      []order.LineInput{{ProductID: testProductID, Quantity: 5}},
		Shipping:   decimal.Zero,
	})

	require.NoError(t, err)
	assert.Equal(t, testOrderID, ord.ID)
	assert.Equal(t, order.StatusPending, ord.Status)
	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{6}$`, ord.OrderNumber)
	require.Len(t, ord.Items, 1)
	assert.Equal(t, testProductID, ord.Items[0].ProductID)
	assert.Equal(t, 5, ord.Items[0].Quantity)
}

func TestOrderService_PlaceOrder_RetriesOrderNumberConflict(t *testing.T) {
	var numbers []string
	mockRepo := &mockOrderRepository{
		placeOrderFunc: func(ctx context.Context, ord *order.Order) error {
			numbers = append(numbers, ord.OrderNumber)
			if len(numbers) < 3 {
				return order.ErrOrderNumberConflict
			}
			return nil
		},
	}
	svc := order.NewService(mockRepo)

	_, err := svc.PlaceOrder(context.Background(), order.PlaceOrderInput{
		CustomerID: testCustomerID,
		Items:      []order.LineInput{{ProductID: testProductID, Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Len(t, numbers, 3)
	assert.NotEqual(t, numbers[0], numbers[1])
}

func TestOrderService_PlaceOrder_ConflictExhaustion(t *testing.T) {
	calls := 0
	mockRepo := &mockOrderRepository{
		placeOrderFunc: func(ctx context.Context, ord *order.Order) error {
			calls++
			return order.ErrOrderNumberConflict
		},
	}
	svc := order.NewService(mockRepo)

	_, err := svc.PlaceOrder(context.Background(), order.PlaceOrderInput{
		CustomerID: testCustomerID,
		Items:      []order.LineInput{{ProductID: testProductID, Quantity: 1}},
	})

	assert.ErrorIs(t, err, order.ErrOrderNumberConflict)
	assert.Equal(t, 5, calls)
}

func TestOrderService_PlaceOrder_RepositoryErrors(t *testing.T) {
	stockErr := &order.InsufficientStockError{ProductID: testProductID, Requested: 2, Available: 1}

	tests := []struct {
		name      string
		repoErr   error
		wantErrIs error
	}{
		{name: "insufficient_stock", repoErr: stockErr},
		{name: "customer_not_found", repoErr: order.ErrCustomerNotFound, wantErrIs: order.ErrCustomerNotFound},
		{name: "product_not_found", repoErr: order.ErrProductNotFound, wantErrIs: order.ErrProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockOrderRepository{
				placeOrderFunc: func(ctx context.Context, ord *order.Order) error { return tt.repoErr },
			}
			svc := order.NewService(mockRepo)

			_, err := svc.PlaceOrder(context.Background(), order.PlaceOrderInput{
				CustomerID: testCustomerID,
				Items:      []order.LineInput{{ProductID: testProductID, Quantity: 2}},
			})

			require.Error(t, err)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
			} else {
				var got *order.InsufficientStockError
				require.ErrorAs(t, err, &got)
				assert.Equal(t, 2, got.Requested)
				assert.Equal(t, 1, got.Available)
			}
		})
	}
}

func TestOrderService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name             string
		newStatus        order.Status
		updateStatusFunc func(ctx context.Context, id uuid.UUID, newStatus order.Status) (*order.Order, error)
		wantErrIs        error
	}{
		{
			name:      "unknown_status_rejected_before_repo",
			newStatus: order.Status("paid"),
			updateStatusFunc: func(ctx context.Context, id uuid.UUID, newStatus order.Status) (*order.Order, error) {
				t.Fatal("repository must not be called for an unknown status")
				return nil, nil
			},
			wantErrIs: order.ErrInvalidStatus,
		},
		{
			name:      "not_found",
			newStatus: order.StatusShipped,
			updateStatusFunc: func(ctx context.Context, id uuid.UUID, newStatus order.Status) (*order.Order, error) {
				return nil, order.ErrOrderNotFound
			},
			wantErrIs: order.ErrOrderNotFound,
		},
		{
			name:      "terminal_transition_rejected",
			newStatus: order.StatusPending,
			updateStatusFunc: func(ctx context.Context, id uuid.UUID, newStatus order.Status) (*order.Order, error) {
				return nil, order.ErrInvalidStatusTransition
			},
			wantErrIs: order.ErrInvalidStatusTransition,
		},
		{
			name:      "success",
			newStatus: order.StatusShipped,
			updateStatusFunc: func(ctx context.Context, id uuid.UUID, newStatus order.Status) (*order.Order, error) {
				return &order.Order{ID: id, Status: newStatus}, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockOrderRepository{updateStatusFunc: tt.updateStatusFunc}
			svc := order.NewService(mockRepo)

			ord, err := svc.UpdateStatus(context.Background(), testOrderID, tt.newStatus)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.newStatus, ord.Status)
		})
	}
}

func TestOrderService_UpdateStatus_ReactivationStockFailure(t *testing.T) {
	stockErr := &order.InsufficientStockError{ProductID: testProductID, Requested: 3, Available: 0}
	mockRepo := &mockOrderRepository{
		updateStatusFunc: func(ctx context.Context, id uuid.UUID, newStatus order.Status) (*order.Order, error) {
			return nil, stockErr
		},
	}
	svc := order.NewService(mockRepo)

	_, err := svc.UpdateStatus(context.Background(), testOrderID, order.StatusPending)

	var got *order.InsufficientStockError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, testProductID, got.ProductID)
}

func TestOrderService_DeleteOrder(t *testing.T) {
	tests := []struct {
		name       string
		deleteFunc func(ctx context.Context, id uuid.UUID) error
		wantErrIs  error
	}{
		{
			name:       "success",
			deleteFunc: func(ctx context.Context, id uuid.UUID) error { return nil },
		},
		{
			name:       "pending_requires_cancellation",
			deleteFunc: func(ctx context.Context, id uuid.UUID) error { return order.ErrMustCancelFirst },
			wantErrIs:  order.ErrMustCancelFirst,
		},
		{
			name:       "shipped_not_deletable",
			deleteFunc: func(ctx context.Context, id uuid.UUID) error { return order.ErrOrderNotDeletable },
			wantErrIs:  order.ErrOrderNotDeletable,
		},
		{
			name:       "not_found",
			deleteFunc: func(ctx context.Context, id uuid.UUID) error { return order.ErrOrderNotFound },
			wantErrIs:  order.ErrOrderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockOrderRepository{deleteFunc: tt.deleteFunc}
			svc := order.NewService(mockRepo)

			err := svc.DeleteOrder(context.Background(), testOrderID)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOrderService_RecalculateTotals(t *testing.T) {
	calls := 0
	mockRepo := &mockOrderRepository{
		recalculateTotalsFunc: func(ctx context.Context, id uuid.UUID) (bool, error) {
			calls++
			// First run repairs, second finds nothing to change.
			return calls == 1, nil
		},
	}
	svc := order.NewService(mockRepo)

	updated, err := svc.RecalculateTotals(context.Background(), testOrderID)
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = svc.RecalculateTotals(context.Background(), testOrderID)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestOrderService_ListOrders_InvalidStatusFilter(t *testing.T) {
	mockRepo := &mockOrderRepository{
		listFunc: func(ctx context.Context, filter order.ListFilter) ([]order.Order, error) {
			t.Fatal("repository must not be called for an unknown status filter")
			return nil, nil
		},
	}
	svc := order.NewService(mockRepo)

	_, err := svc.ListOrders(context.Background(), order.ListFilter{Status: order.Status("archived")})
	assert.ErrorIs(t, err, order.ErrInvalidStatus)
}

func TestInsufficientStockError_Message(t *testing.T) {
	err := &order.InsufficientStockError{ProductID: testProductID, Requested: 6, Available: 5}
	assert.Equal(t,
		"insufficient stock for product 550e8400-e29b-41d4-a716-446655440000: requested 6, available 5",
		err.Error())
	assert.False(t, errors.Is(err, order.ErrOrderNotFound))
}

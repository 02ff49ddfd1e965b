package customer_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopadmin/backoffice/internal/customer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCustomerRepository struct {
	createFunc  func(ctx context.Context, c *customer.Customer) error
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*customer.Customer, error)
	listFunc    func(ctx context.Context, filter customer.ListFilter) ([]customer.Customer, error)
	updateFunc  func(ctx context.Context, c *customer.Customer) error
	deleteFunc  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	return m.createFunc(ctx, c)
}

func (m *mockCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockCustomerRepository) List(ctx context.Context, filter customer.ListFilter) ([]customer.Customer, error) {
	return m.listFunc(ctx, filter)
}

func (m *mockCustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	return m.updateFunc(ctx, c)
}

func (m *mockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

func TestCustomerService_CreateCustomer(t *testing.T) {
	tests := []struct {
		name       string
		customer   *customer.Customer
		createFunc func(ctx context.Context, c *customer.Customer) error
		wantErr    bool
		wantErrIs  error
		wantErrMsg string
	}{
		{
			name:       "missing_name",
			customer:   &customer.Customer{Email: "ana@example.com"},
			createFunc: func(ctx context.Context, c *customer.Customer) error { return nil },
			wantErr:    true,
			wantErrMsg: "name is required",
		},
		{
			name:       "missing_email",
			customer:   &customer.Customer{Name: "Ana"},
			createFunc: func(ctx context.Context, c *customer.Customer) error { return nil },
			wantErr:    true,
			wantErrMsg: "email is required",
		},
		{
			name:       "malformed_email",
			customer:   &customer.Customer{Name: "Ana", Email: "not-an-email"},
			createFunc: func(ctx context.Context, c *customer.Customer) error { return nil },
			wantErr:    true,
			wantErrMsg: `email "not-an-email" is not valid`,
		},
		{
			name:       "duplicate_email",
			customer:   &customer.Customer{Name: "Ana", Email: "ana@example.com"},
			createFunc: func(ctx context.Context, c *customer.Customer) error { return customer.ErrEmailExists },
			wantErr:    true,
			wantErrIs:  customer.ErrEmailExists,
		},
		{
			name:       "successful_creation",
			customer:   &customer.Customer{Name: "Ana", Email: "ana@example.com"},
			createFunc: func(ctx context.Context, c *customer.Customer) error { return nil },
			wantErr:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockCustomerRepository{createFunc: tt.createFunc}
			svc := customer.NewService(mockRepo)

			_, err := svc.CreateCustomer(context.Background(), tt.customer)
			if tt.wantErr {
				require.Error(t, err)
				if tt.wantErrIs != nil {
					assert.ErrorIs(t, err, tt.wantErrIs)
				}
				if tt.wantErrMsg != "" {
					assert.Equal(t, tt.wantErrMsg, err.Error())
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCustomerService_DeleteCustomer_InUse(t *testing.T) {
	id := uuid.Must(uuid.NewV4())

	mockRepo := &mockCustomerRepository{
		deleteFunc: func(ctx context.Context, got uuid.UUID) error {
			assert.Equal(t, id, got)
			return customer.ErrCustomerInUse
		},
	}
	svc := customer.NewService(mockRepo)

	err := svc.DeleteCustomer(context.Background(), id)
	assert.ErrorIs(t, err, customer.ErrCustomerInUse)
}

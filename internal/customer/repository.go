package customer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound    = errors.New("customer not found")
	ErrEmailExists = errors.New("customer with this email already exists")

	// ErrCustomerInUse means orders still reference the customer.
	ErrCustomerInUse = errors.New("customer is referenced by existing orders")
)

type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	List(ctx context.Context, filter ListFilter) ([]Customer, error)
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, c *Customer) error {
	if c.ID == uuid.Nil {
		genID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate customer ID: %w", err)
		}
		c.ID = genID
	}
	if c.Country == "" {
		c.Country = "Spain"
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO customers (id, name, email, phone, address, city, country, notes, total_spent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.City, c.Country, c.Notes, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrEmailExists
		}
		return fmt.Errorf("repository: failed to insert customer: %w", err)
	}

	return nil
}

const customerColumns = `id, name, email, phone, address, city, country, notes, total_spent, last_order_at, created_at, updated_at`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.City, &c.Country, &c.Notes,
		&c.TotalSpent, &c.LastOrderAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select customer by id %s: %w", id, err)
	}

	return c, nil
}

func (r *postgresRepository) List(ctx context.Context, filter ListFilter) ([]Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE 1=1`
	var args []any

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}
	if filter.VIP {
		args = append(args, vipThreshold)
		query += fmt.Sprintf(" AND total_spent > $%d", len(args))
	}
	if filter.RecentOnly {
		args = append(args, time.Now().UTC().Add(-recentActivityWindow))
		query += fmt.Sprintf(" AND last_order_at >= $%d", len(args))
	}

	query += " ORDER BY total_spent DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query customers: %w", err)
	}
	defer rows.Close()

	customers := make([]Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating customers: %w", err)
	}

	return customers, nil
}

// Update writes the contact fields only. total_spent and last_order_at are
// owned by order transactions.
func (r *postgresRepository) Update(ctx context.Context, c *Customer) error {
	query := `
		UPDATE customers
		SET name = $1, email = $2, phone = $3, address = $4, city = $5, country = $6, notes = $7, updated_at = $8
		WHERE id = $9
	`
	c.UpdatedAt = time.Now().UTC()

	cmdTag, err := r.db.Exec(ctx, query,
		c.Name, c.Email, c.Phone, c.Address, c.City, c.Country, c.Notes, c.UpdatedAt, c.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrEmailExists
		}
		return fmt.Errorf("repository: failed to update customer %s: %w", c.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrCustomerInUse
		}
		return fmt.Errorf("repository: failed to delete customer %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

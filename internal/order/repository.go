package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Repository interface {
	PlaceOrder(ctx context.Context, ord *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, newStatus Status) (*Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RecalculateTotals(ctx context.Context, id uuid.UUID) (bool, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// lockedProduct is a product row read under FOR UPDATE.
type lockedProduct struct {
	id    uuid.UUID
	price decimal.Decimal
	stock int
}

// lockProducts reads the given product rows with row-level locks, sorted by
// id so concurrent transactions acquire locks in the same order.
func lockProducts(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) (map[uuid.UUID]*lockedProduct, error) {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	query := `
		SELECT id, price, stock
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`
	rows, err := tx.Query(ctx, query, sorted)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to lock product rows: %w", err)
	}
	defer rows.Close()

	products := make(map[uuid.UUID]*lockedProduct, len(sorted))
	for rows.Next() {
		var p lockedProduct
		if err := rows.Scan(&p.id, &p.price, &p.stock); err != nil {
			return nil, fmt.Errorf("repository: failed to scan locked product: %w", err)
		}
		products[p.id] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating locked products: %w", err)
	}

	return products, nil
}

// productQuantities folds an order's items into one quantity per product.
func productQuantities(items []OrderItem) ([]uuid.UUID, map[uuid.UUID]int) {
	quantities := make(map[uuid.UUID]int, len(items))
	var ids []uuid.UUID
	for i := range items {
		if _, seen := quantities[items[i].ProductID]; !seen {
			ids = append(ids, items[i].ProductID)
		}
		quantities[items[i].ProductID] += items[i].Quantity
	}
	return ids, quantities
}

// reserveStock decrements product stock for every item, failing the whole
// transaction if any product cannot cover its quantity. Product rows must
// already be locked.
func reserveStock(ctx context.Context, tx pgx.Tx, products map[uuid.UUID]*lockedProduct, ids []uuid.UUID, quantities map[uuid.UUID]int, now time.Time) error {
	for _, id := range ids {
		p, ok := products[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		if p.stock < quantities[id] {
			return &InsufficientStockError{ProductID: id, Requested: quantities[id], Available: p.stock}
		}
	}

	query := `UPDATE products SET stock = stock - $1, updated_at = $2 WHERE id = $3`
	for _, id := range ids {
		if _, err := tx.Exec(ctx, query, quantities[id], now, id); err != nil {
			return fmt.Errorf("repository: failed to decrement stock for product %s: %w", id, err)
		}
	}
	return nil
}

// releaseStock returns each item's quantity to its product.
func releaseStock(ctx context.Context, tx pgx.Tx, ids []uuid.UUID, quantities map[uuid.UUID]int, now time.Time) error {
	query := `UPDATE products SET stock = stock + $1, updated_at = $2 WHERE id = $3`
	for _, id := range ids {
		if _, err := tx.Exec(ctx, query, quantities[id], now, id); err != nil {
			return fmt.Errorf("repository: failed to return stock for product %s: %w", id, err)
		}
	}
	return nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == constraint
}

func (r *postgresRepository) PlaceOrder(ctx context.Context, ord *Order) (err error) {
	if ord.ID == uuid.Nil {
		genID, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate order ID: %w", genErr)
		}
		ord.ID = genID
	}

	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic_value", p).Stringer("order_id_attempted", ord.ID).Msg("Panic recovered during PlaceOrder, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id_attempted", ord.ID).Msg("Failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id_attempted", ord.ID).Msg("Failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				log.Error().Err(commitErr).Stringer("order_id", ord.ID).Msg("Failed to commit transaction")
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	var customerExists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, ord.CustomerID).Scan(&customerExists)
	if err != nil {
		return fmt.Errorf("repository: failed to check customer %s: %w", ord.CustomerID, err)
	}
	if !customerExists {
		return fmt.Errorf("%w: %s", ErrCustomerNotFound, ord.CustomerID)
	}

	productIDs, quantities := productQuantities(ord.Items)
	products, err := lockProducts(ctx, tx, productIDs)
	if err != nil {
		return err
	}

	// Snapshot unit prices before any writes so a failed stock check leaves
	// nothing behind.
	for i := range ord.Items {
		item := &ord.Items[i]
		p, ok := products[item.ProductID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}
		item.UnitPrice = p.price
	}
	ord.computeTotals()

	now := time.Now().UTC()
	if err = reserveStock(ctx, tx, products, productIDs, quantities, now); err != nil {
		return err
	}

	ord.Status = StatusPending
	ord.CreatedAt = now
	ord.UpdatedAt = now

	queryOrder := `
		INSERT INTO orders (id, order_number, customer_id, status, subtotal, tax, shipping, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.Exec(ctx, queryOrder,
		ord.ID,
		ord.OrderNumber,
		ord.CustomerID,
		string(ord.Status),
		ord.Subtotal,
		ord.Tax,
		ord.Shipping,
		ord.Total,
		ord.CreatedAt,
		ord.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "orders_order_number_key") {
			return ErrOrderNumberConflict
		}
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	queryItem := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i := range ord.Items {
		item := &ord.Items[i]

		itemID, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate order item ID: %w", genErr)
		}
		item.ID = itemID
		item.OrderID = ord.ID
		item.CreatedAt = now

		_, err = tx.Exec(ctx, queryItem,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Quantity,
			item.UnitPrice,
			item.TotalPrice,
			item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order item for order %s: %w", ord.ID, err)
		}
	}

	queryCustomer := `
		UPDATE customers
		SET total_spent = total_spent + $1, last_order_at = $2, updated_at = $2
		WHERE id = $3
	`
	cmdTag, err := tx.Exec(ctx, queryCustomer, ord.Total, now, ord.CustomerID)
	if err != nil {
		return fmt.Errorf("repository: failed to update customer %s totals: %w", ord.CustomerID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrCustomerNotFound, ord.CustomerID)
	}

	return nil
}

const orderColumns = `
	o.id, o.order_number, o.customer_id, c.name, o.status,
	o.subtotal, o.tax, o.shipping, o.total,
	o.shipped_at, o.delivered_at, o.created_at, o.updated_at
`

func scanOrder(row pgx.Row) (*Order, error) {
	var ord Order
	err := row.Scan(
		&ord.ID,
		&ord.OrderNumber,
		&ord.CustomerID,
		&ord.CustomerName,
		&ord.Status,
		&ord.Subtotal,
		&ord.Tax,
		&ord.Shipping,
		&ord.Total,
		&ord.ShippedAt,
		&ord.DeliveredAt,
		&ord.CreatedAt,
		&ord.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ord, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	queryOrder := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1
	`

	ord, err := scanOrder(r.db.QueryRow(ctx, queryOrder, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", orderID, err)
	}

	items, err := r.loadItems(ctx, r.db, orderID)
	if err != nil {
		return nil, err
	}
	ord.Items = items

	return ord, nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *postgresRepository) loadItems(ctx context.Context, q queryer, orderID uuid.UUID) ([]OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price, total_price, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items for order id %s: %w", orderID, err)
	}
	defer rows.Close()

	items := make([]OrderItem, 0)
	for rows.Next() {
		var item OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item for order id %s: %w", orderID, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items for order id %s: %w", orderID, err)
	}

	return items, nil
}

func (r *postgresRepository) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE 1=1
	`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND o.status = $%d", len(args))
	}
	if filter.CustomerID != uuid.Nil {
		args = append(args, filter.CustomerID)
		query += fmt.Sprintf(" AND o.customer_id = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (o.order_number ILIKE $%d OR c.name ILIKE $%d)", len(args), len(args))
	}

	query += " ORDER BY o.created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	orderRows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer orderRows.Close()

	ordersMap := make(map[uuid.UUID]*Order)
	var orderIDs []uuid.UUID

	for orderRows.Next() {
		ord, err := scanOrder(orderRows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		ord.Items = make([]OrderItem, 0)
		ordersMap[ord.ID] = ord
		orderIDs = append(orderIDs, ord.ID)
	}
	if err := orderRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	itemsQuery := `
		SELECT id, order_id, product_id, quantity, unit_price, total_price, created_at
		FROM order_items
		WHERE order_id = ANY($1)
	`
	itemRows, err := r.db.Query(ctx, itemsQuery, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item OrderItem
		err := itemRows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		if ord, ok := ordersMap[item.OrderID]; ok {
			ord.Items = append(ord.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}

	result := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		result = append(result, *ordersMap[id])
	}

	return result, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) (ord *Order, err error) {
	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return nil, fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", orderID).Msg("Failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				log.Error().Err(commitErr).Stringer("order_id", orderID).Msg("Failed to commit transaction")
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
				ord = nil
			}
		}
	}()

	queryOrder := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1
		FOR UPDATE OF o
	`
	ord, err = scanOrder(tx.QueryRow(ctx, queryOrder, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrOrderNotFound
			return nil, err
		}
		return nil, fmt.Errorf("repository: failed to select order %s for status update: %w", orderID, err)
	}

	ord.Items, err = r.loadItems(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	plan, planErr := planTransition(ord, newStatus)
	if planErr != nil {
		err = fmt.Errorf("%w: %s -> %s", planErr, ord.Status, newStatus)
		return nil, err
	}

	if ord.Status == newStatus {
		return ord, nil
	}

	now := time.Now().UTC()

	if plan.reserveStock || plan.releaseStock {
		productIDs, quantities := productQuantities(ord.Items)
		if plan.reserveStock {
			var products map[uuid.UUID]*lockedProduct
			products, err = lockProducts(ctx, tx, productIDs)
			if err != nil {
				return nil, err
			}
			if err = reserveStock(ctx, tx, products, productIDs, quantities, now); err != nil {
				return nil, err
			}
		} else {
			if err = releaseStock(ctx, tx, productIDs, quantities, now); err != nil {
				return nil, err
			}
		}
	}

	if plan.addSpend || plan.subtractSpend {
		delta := ord.Total
		if plan.subtractSpend {
			delta = delta.Neg()
		}
		query := `UPDATE customers SET total_spent = total_spent + $1, updated_at = $2 WHERE id = $3`
		if _, err = tx.Exec(ctx, query, delta, now, ord.CustomerID); err != nil {
			return nil, fmt.Errorf("repository: failed to adjust customer %s spend: %w", ord.CustomerID, err)
		}
	}

	if plan.setShippedAt {
		ord.ShippedAt = &now
	}
	if plan.setDeliveredAt {
		ord.DeliveredAt = &now

		query := `UPDATE customers SET last_order_at = $1, updated_at = $1 WHERE id = $2`
		if _, err = tx.Exec(ctx, query, now, ord.CustomerID); err != nil {
			return nil, fmt.Errorf("repository: failed to update customer %s last order: %w", ord.CustomerID, err)
		}
	}

	ord.Status = newStatus
	ord.UpdatedAt = now

	queryUpdate := `
		UPDATE orders
		SET status = $1, shipped_at = $2, delivered_at = $3, updated_at = $4
		WHERE id = $5
	`
	if _, err = tx.Exec(ctx, queryUpdate, string(ord.Status), ord.ShippedAt, ord.DeliveredAt, ord.UpdatedAt, orderID); err != nil {
		return nil, fmt.Errorf("repository: failed to update order status %s: %w", orderID, err)
	}

	return ord, nil
}

func (r *postgresRepository) Delete(ctx context.Context, orderID uuid.UUID) (err error) {
	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", orderID).Msg("Failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				log.Error().Err(commitErr).Stringer("order_id", orderID).Msg("Failed to commit transaction")
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	var status Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrOrderNotFound
			return err
		}
		return fmt.Errorf("repository: failed to select order %s for deletion: %w", orderID, err)
	}

	switch status {
	case StatusCancelled:
		// Deletable: cancellation already returned stock and reversed spend.
	case StatusPending:
		err = ErrMustCancelFirst
		return err
	default:
		err = ErrOrderNotDeletable
		return err
	}

	// Items go with the order via ON DELETE CASCADE.
	if _, err = tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID); err != nil {
		return fmt.Errorf("repository: failed to delete order %s: %w", orderID, err)
	}

	return nil
}

func (r *postgresRepository) RecalculateTotals(ctx context.Context, orderID uuid.UUID) (updated bool, err error) {
	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return false, fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", orderID).Msg("Failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				log.Error().Err(commitErr).Stringer("order_id", orderID).Msg("Failed to commit transaction")
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
				updated = false
			}
		}
	}()

	var subtotal, tax, shipping, total decimal.Decimal
	err = tx.QueryRow(ctx, `SELECT subtotal, tax, shipping, total FROM orders WHERE id = $1 FOR UPDATE`, orderID).
		Scan(&subtotal, &tax, &shipping, &total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrOrderNotFound
			return false, err
		}
		return false, fmt.Errorf("repository: failed to select order %s for recalculation: %w", orderID, err)
	}

	items, loadErr := r.loadItems(ctx, tx, orderID)
	if loadErr != nil {
		err = loadErr
		return false, err
	}

	newSubtotal := decimal.Zero
	for i := range items {
		newSubtotal = newSubtotal.Add(items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity))))
	}
	// Tax and shipping stay as stored: this repairs drift between the items
	// and the order row, not the tax policy.
	newTotal := newSubtotal.Add(tax).Add(shipping)

	if newSubtotal.Equal(subtotal) && newTotal.Equal(total) {
		return false, nil
	}

	query := `UPDATE orders SET subtotal = $1, total = $2, updated_at = $3 WHERE id = $4`
	if _, err = tx.Exec(ctx, query, newSubtotal, newTotal, time.Now().UTC(), orderID); err != nil {
		return false, fmt.Errorf("repository: failed to update order %s totals: %w", orderID, err)
	}

	return true, nil
}

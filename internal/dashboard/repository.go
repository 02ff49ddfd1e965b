package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repository interface {
	MonthTotals(ctx context.Context, year int, month time.Month) (decimal.Decimal, int, error)
	CustomerCount(ctx context.Context) (int, error)
	LowStockCount(ctx context.Context, threshold int) (int, error)
	DailySales(ctx context.Context, since time.Time) (map[string]SalesPoint, error)
	TopProducts(ctx context.Context, limit int) ([]TopProduct, error)
	RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// MonthTotals sums revenue and counts orders for one calendar month,
// cancelled orders excluded.
func (r *postgresRepository) MonthTotals(ctx context.Context, year int, month time.Month) (decimal.Decimal, int, error) {
	query := `
		SELECT COALESCE(SUM(total), 0), COUNT(*)
		FROM orders
		WHERE status <> 'cancelled'
		  AND created_at >= make_date($1, $2, 1)
		  AND created_at < make_date($1, $2, 1) + interval '1 month'
	`

	var revenue decimal.Decimal
	var count int
	err := r.db.QueryRow(ctx, query, year, int(month)).Scan(&revenue, &count)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("repository: failed to aggregate month totals: %w", err)
	}

	return revenue, count, nil
}

func (r *postgresRepository) CustomerCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("repository: failed to count customers: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) LowStockCount(ctx context.Context, threshold int) (int, error) {
	query := `SELECT COUNT(*) FROM products WHERE stock <= $1 AND active`

	var count int
	if err := r.db.QueryRow(ctx, query, threshold).Scan(&count); err != nil {
		return 0, fmt.Errorf("repository: failed to count low stock products: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) DailySales(ctx context.Context, since time.Time) (map[string]SalesPoint, error) {
	query := `
		SELECT to_char(created_at, 'YYYY-MM-DD') AS day, COUNT(*), COALESCE(SUM(total), 0)
		FROM orders
		WHERE status <> 'cancelled' AND created_at >= $1
		GROUP BY day
		ORDER BY day
	`

	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query daily sales: %w", err)
	}
	defer rows.Close()

	sales := make(map[string]SalesPoint)
	for rows.Next() {
		var p SalesPoint
		if err := rows.Scan(&p.Date, &p.Orders, &p.Revenue); err != nil {
			return nil, fmt.Errorf("repository: failed to scan daily sales row: %w", err)
		}
		sales[p.Date] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating daily sales: %w", err)
	}

	return sales, nil
}

func (r *postgresRepository) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	query := `
		SELECT p.id, p.name, p.category, p.image_url,
			COALESCE((SELECT SUM(oi.quantity) FROM order_items oi WHERE oi.product_id = p.id), 0) AS total_sold,
			COALESCE((
				SELECT SUM(oi.total_price)
				FROM order_items oi
				JOIN orders o ON o.id = oi.order_id
				WHERE oi.product_id = p.id AND o.status <> 'cancelled'
			), 0) AS revenue
		FROM products p
		WHERE p.active
		ORDER BY total_sold DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query top products: %w", err)
	}
	defer rows.Close()

	products := make([]TopProduct, 0, limit)
	for rows.Next() {
		var p TopProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.ImageURL, &p.TotalSold, &p.Revenue); err != nil {
			return nil, fmt.Errorf("repository: failed to scan top product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating top products: %w", err)
	}

	return products, nil
}

func (r *postgresRepository) RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error) {
	query := `
		SELECT o.id, o.order_number, c.name, o.status, o.total,
			(SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id) AS items_count,
			o.created_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		ORDER BY o.created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query recent orders: %w", err)
	}
	defer rows.Close()

	orders := make([]RecentOrder, 0, limit)
	for rows.Next() {
		var o RecentOrder
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.Status, &o.Total, &o.ItemsCount, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan recent order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating recent orders: %w", err)
	}

	return orders, nil
}

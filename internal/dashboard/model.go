package dashboard

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// lowStockThreshold marks products that need restocking on the dashboard.
const lowStockThreshold = 10

type RevenueStat struct {
	Current  decimal.Decimal `json:"current"`
	Previous decimal.Decimal `json:"previous"`
	Growth   float64         `json:"growth"`
}

type OrderCountStat struct {
	Current  int `json:"current"`
	Previous int `json:"previous"`
}

type Stats struct {
	TotalRevenue     RevenueStat    `json:"total_revenue"`
	TotalOrders      OrderCountStat `json:"total_orders"`
	TotalCustomers   int            `json:"total_customers"`
	LowStockProducts int            `json:"low_stock_products"`
}

type SalesPoint struct {
	Date    string          `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type TopProduct struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category,omitempty"`
	ImageURL  string          `json:"image_url,omitempty"`
	TotalSold int             `json:"total_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type RecentOrder struct {
	ID           uuid.UUID       `json:"id"`
	OrderNumber  string          `json:"order_number"`
	CustomerName string          `json:"customer_name"`
	Status       string          `json:"status"`
	Total        decimal.Decimal `json:"total"`
	ItemsCount   int             `json:"items_count"`
	CreatedAt    time.Time       `json:"created_at"`
}

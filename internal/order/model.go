package order

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// taxRate is the VAT rate applied to an order's subtotal.
var taxRate = decimal.NewFromFloat(0.21)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type OrderItem struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	OrderID    uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID  uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity   int             `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price" db:"total_price"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

type Order struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	OrderNumber  string          `json:"order_number" db:"order_number"`
	CustomerID   uuid.UUID       `json:"customer_id" db:"customer_id"`
	CustomerName string          `json:"customer_name,omitempty" db:"-"`
	Status       Status          `json:"status" db:"status"`
	Items        []OrderItem     `json:"items" db:"-"`
	Subtotal     decimal.Decimal `json:"subtotal" db:"subtotal"`
	Tax          decimal.Decimal `json:"tax" db:"tax"`
	Shipping     decimal.Decimal `json:"shipping" db:"shipping"`
	Total        decimal.Decimal `json:"total" db:"total"`
	ShippedAt    *time.Time      `json:"shipped_at,omitempty" db:"shipped_at"`
	DeliveredAt  *time.Time      `json:"delivered_at,omitempty" db:"delivered_at"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// LineInput is one (product, quantity) pair of a cart being placed.
type LineInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type PlaceOrderInput struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Items      []LineInput     `json:"items"`
	Shipping   decimal.Decimal `json:"shipping"`
}

type ListFilter struct {
	Status     Status
	CustomerID uuid.UUID
	Search     string
	Limit      int
	Offset     int
}

// computeTotals derives subtotal, tax and total from the order's items and
// shipping cost. Item prices must already be snapshotted. Tax is rounded to
// two decimal places before it enters the total, so total == subtotal + tax
// + shipping holds exactly on stored values.
func (o *Order) computeTotals() {
	subtotal := decimal.Zero
	for i := range o.Items {
		item := &o.Items[i]
		item.TotalPrice = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(item.TotalPrice)
	}
	o.Subtotal = subtotal
	o.Tax = subtotal.Mul(taxRate).Round(2)
	o.Total = subtotal.Add(o.Tax).Add(o.Shipping)
}

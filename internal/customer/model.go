package customer

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// vipThreshold is the lifetime spend above which a customer counts as VIP.
var vipThreshold = decimal.NewFromInt(2000)

// recentActivityWindow bounds the "recent" filter on last_order_at.
const recentActivityWindow = 7 * 24 * time.Hour

type Customer struct {
	ID      uuid.UUID `json:"id" db:"id"`
	Name    string    `json:"name" db:"name"`
	Email   string    `json:"email" db:"email"`
	Phone   string    `json:"phone,omitempty" db:"phone"`
	Address string    `json:"address,omitempty" db:"address"`
	City    string    `json:"city,omitempty" db:"city"`
	Country string    `json:"country" db:"country"`
	Notes   string    `json:"notes,omitempty" db:"notes"`

	// TotalSpent and LastOrderAt are maintained by order transactions, never
	// by customer writes.
	TotalSpent  decimal.Decimal `json:"total_spent" db:"total_spent"`
	LastOrderAt *time.Time      `json:"last_order_at,omitempty" db:"last_order_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type ListFilter struct {
	Search     string
	VIP        bool
	RecentOnly bool
	Limit      int
	Offset     int
}

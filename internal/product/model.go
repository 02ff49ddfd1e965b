package product

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description,omitempty" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	SKU         string          `json:"sku" db:"sku"`
	Category    string          `json:"category,omitempty" db:"category"`
	ImageURL    string          `json:"image_url,omitempty" db:"image_url"`
	Active      bool            `json:"active" db:"active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

type ListFilter struct {
	Search   string
	Category string
	Active   *bool
	Limit    int
	Offset   int
}

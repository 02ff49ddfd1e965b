package order

import (
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestOrder_ComputeTotals(t *testing.T) {
	tests := []struct {
		name         string
		items        []OrderItem
		shipping     string
		wantSubtotal string
		wantTax      string
		wantTotal    string
	}{
		{
			name: "five_units_of_ten",
			items: []OrderItem{
				{Quantity: 5, UnitPrice: dec("10.00")},
			},
			shipping:     "0",
			wantSubtotal: "50.00",
			wantTax:      "10.50",
			wantTotal:    "60.50",
		},
		{
			name: "multiple_lines_with_shipping",
			items: []OrderItem{
				{Quantity: 2, UnitPrice: dec("19.99")},
				{Quantity: 1, UnitPrice: dec("5.50")},
			},
			shipping:     "4.95",
			wantSubtotal: "45.48",
			wantTax:      "9.55",
			wantTotal:    "59.98",
		},
		{
			name: "tax_rounds_to_two_decimals",
			items: []OrderItem{
				{Quantity: 1, UnitPrice: dec("0.10")},
			},
			shipping:     "0",
			wantSubtotal: "0.10",
			wantTax:      "0.02",
			wantTotal:    "0.12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ord := &Order{Items: tt.items, Shipping: dec(tt.shipping)}
			ord.computeTotals()

			assert.True(t, ord.Subtotal.Equal(dec(tt.wantSubtotal)), "subtotal: got %s", ord.Subtotal)
			assert.True(t, ord.Tax.Equal(dec(tt.wantTax)), "tax: got %s", ord.Tax)
			assert.True(t, ord.Total.Equal(dec(tt.wantTotal)), "total: got %s", ord.Total)

			// total == subtotal + tax + shipping must hold exactly.
			assert.True(t, ord.Total.Equal(ord.Subtotal.Add(ord.Tax).Add(ord.Shipping)))

			lineSum := decimal.Zero
			for _, item := range ord.Items {
				lineSum = lineSum.Add(item.TotalPrice)
			}
			assert.True(t, ord.Subtotal.Equal(lineSum), "subtotal must equal sum of line totals")
		})
	}
}

func TestTaxRate(t *testing.T) {
	assert.True(t, taxRate.Equal(dec("0.21")), "VAT rate is fixed at 21 percent")
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		assert.True(t, s.Valid(), "%s should be valid", s)
	}
	assert.False(t, Status("paid").Valid())
	assert.False(t, Status("").Valid())
}

func TestNewOrderNumber(t *testing.T) {
	now := time.Date(2025, 9, 1, 10, 30, 0, 0, time.UTC)

	n, err := newOrderNumber(now)
	require.NoError(t, err)
	assert.Regexp(t, `^ORD-20250901-[0-9A-F]{6}$`, n)

	m, err := newOrderNumber(now)
	require.NoError(t, err)
	// Not a uniqueness guarantee (the unique index is), but two draws
	// colliding here would be a broken generator.
	assert.NotEqual(t, n, m)
}

func TestProductQuantities_MergesDuplicateLines(t *testing.T) {
	p1 := uuid.Must(uuid.NewV4())
	p2 := uuid.Must(uuid.NewV4())

	ids, quantities := productQuantities([]OrderItem{
		{ProductID: p1, Quantity: 2},
		{ProductID: p2, Quantity: 1},
		{ProductID: p1, Quantity: 3},
	})

	assert.Equal(t, []uuid.UUID{p1, p2}, ids)
	assert.Equal(t, 5, quantities[p1])
	assert.Equal(t, 1, quantities[p2])
}

package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDashboardRepository struct {
	monthTotalsFunc   func(ctx context.Context, year int, month time.Month) (decimal.Decimal, int, error)
	customerCountFunc func(ctx context.Context) (int, error)
	lowStockCountFunc func(ctx context.Context, threshold int) (int, error)
	dailySalesFunc    func(ctx context.Context, since time.Time) (map[string]SalesPoint, error)
	topProductsFunc   func(ctx context.Context, limit int) ([]TopProduct, error)
	recentOrdersFunc  func(ctx context.Context, limit int) ([]RecentOrder, error)
}

func (m *mockDashboardRepository) MonthTotals(ctx context.Context, year int, month time.Month) (decimal.Decimal, int, error) {
	return m.monthTotalsFunc(ctx, year, month)
}

func (m *mockDashboardRepository) CustomerCount(ctx context.Context) (int, error) {
	return m.customerCountFunc(ctx)
}

func (m *mockDashboardRepository) LowStockCount(ctx context.Context, threshold int) (int, error) {
	return m.lowStockCountFunc(ctx, threshold)
}

func (m *mockDashboardRepository) DailySales(ctx context.Context, since time.Time) (map[string]SalesPoint, error) {
	return m.dailySalesFunc(ctx, since)
}

func (m *mockDashboardRepository) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	return m.topProductsFunc(ctx, limit)
}

func (m *mockDashboardRepository) RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error) {
	return m.recentOrdersFunc(ctx, limit)
}

func TestGrowth(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		previous string
		want     float64
	}{
		{name: "fifty_percent_up", current: "150", previous: "100", want: 50},
		{name: "down", current: "75", previous: "100", want: -25},
		{name: "zero_previous", current: "150", previous: "0", want: 0},
		{name: "rounded_to_one_decimal", current: "110", previous: "300", want: -63.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := growth(decimal.RequireFromString(tt.current), decimal.RequireFromString(tt.previous))
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestService_Stats(t *testing.T) {
	now := time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)

	repo := &mockDashboardRepository{
		monthTotalsFunc: func(ctx context.Context, year int, month time.Month) (decimal.Decimal, int, error) {
			if year == 2025 && month == time.September {
				return decimal.RequireFromString("1200.00"), 12, nil
			}
			require.Equal(t, 2025, year)
			require.Equal(t, time.August, month)
			return decimal.RequireFromString("1000.00"), 10, nil
		},
		customerCountFunc: func(ctx context.Context) (int, error) { return 42, nil },
		lowStockCountFunc: func(ctx context.Context, threshold int) (int, error) {
			assert.Equal(t, lowStockThreshold, threshold)
			return 3, nil
		},
	}
	svc := &service{repo: repo, now: func() time.Time { return now }}

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.True(t, stats.TotalRevenue.Current.Equal(decimal.RequireFromString("1200.00")))
	assert.InDelta(t, 20.0, stats.TotalRevenue.Growth, 0.001)
	assert.Equal(t, 12, stats.TotalOrders.Current)
	assert.Equal(t, 10, stats.TotalOrders.Previous)
	assert.Equal(t, 42, stats.TotalCustomers)
	assert.Equal(t, 3, stats.LowStockProducts)
}

func TestService_SalesChart_FillsEmptyDays(t *testing.T) {
	now := time.Date(2025, 9, 5, 8, 0, 0, 0, time.UTC)

	repo := &mockDashboardRepository{
		dailySalesFunc: func(ctx context.Context, since time.Time) (map[string]SalesPoint, error) {
			return map[string]SalesPoint{
				"2025-09-03": {Date: "2025-09-03", Orders: 2, Revenue: decimal.RequireFromString("50.00")},
			}, nil
		},
	}
	svc := &service{repo: repo, now: func() time.Time { return now }}

	chart, err := svc.SalesChart(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, chart, 5)

	assert.Equal(t, "2025-09-01", chart[0].Date)
	assert.Equal(t, "2025-09-05", chart[4].Date)

	for _, p := range chart {
		if p.Date == "2025-09-03" {
			assert.Equal(t, 2, p.Orders)
			assert.True(t, p.Revenue.Equal(decimal.RequireFromString("50.00")))
		} else {
			assert.Equal(t, 0, p.Orders)
			assert.True(t, p.Revenue.IsZero())
		}
	}
}

func TestService_SalesChart_DefaultsDays(t *testing.T) {
	repo := &mockDashboardRepository{
		dailySalesFunc: func(ctx context.Context, since time.Time) (map[string]SalesPoint, error) {
			return map[string]SalesPoint{}, nil
		},
	}
	svc := &service{repo: repo, now: time.Now}

	chart, err := svc.SalesChart(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, chart, defaultChartDays)
}

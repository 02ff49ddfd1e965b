package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	defaultChartDays     = 30
	topProductsLimit     = 5
	recentOrdersLimit    = 10
	percentDecimalPlaces = 1
)

type Service interface {
	Stats(ctx context.Context) (*Stats, error)
	SalesChart(ctx context.Context, days int) ([]SalesPoint, error)
	TopProducts(ctx context.Context) ([]TopProduct, error)
	RecentOrders(ctx context.Context) ([]RecentOrder, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	now := s.now().UTC()
	prev := now.AddDate(0, -1, 0)

	currentRevenue, currentOrders, err := s.repo.MonthTotals(ctx, now.Year(), now.Month())
	if err != nil {
		log.Error().Err(err).Msg("service: failed to aggregate current month totals")
		return nil, fmt.Errorf("service: failed to build dashboard stats: %w", err)
	}
	previousRevenue, previousOrders, err := s.repo.MonthTotals(ctx, prev.Year(), prev.Month())
	if err != nil {
		log.Error().Err(err).Msg("service: failed to aggregate previous month totals")
		return nil, fmt.Errorf("service: failed to build dashboard stats: %w", err)
	}

	customers, err := s.repo.CustomerCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to build dashboard stats: %w", err)
	}
	lowStock, err := s.repo.LowStockCount(ctx, lowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("service: failed to build dashboard stats: %w", err)
	}

	return &Stats{
		TotalRevenue: RevenueStat{
			Current:  currentRevenue.Round(2),
			Previous: previousRevenue.Round(2),
			Growth:   growth(currentRevenue, previousRevenue),
		},
		TotalOrders: OrderCountStat{
			Current:  currentOrders,
			Previous: previousOrders,
		},
		TotalCustomers:   customers,
		LowStockProducts: lowStock,
	}, nil
}

// growth is the month-over-month revenue change in percent, rounded to one
// decimal place. Zero previous revenue yields zero growth rather than a
// division blowup.
func growth(current, previous decimal.Decimal) float64 {
	if !previous.IsPositive() {
		return 0
	}
	pct := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100))
	f, _ := pct.Round(percentDecimalPlaces).Float64()
	return f
}

func (s *service) SalesChart(ctx context.Context, days int) ([]SalesPoint, error) {
	if days <= 0 {
		days = defaultChartDays
	}

	now := s.now().UTC()
	since := now.AddDate(0, 0, -(days - 1)).Truncate(24 * time.Hour)

	sales, err := s.repo.DailySales(ctx, since)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to query daily sales")
		return nil, fmt.Errorf("service: failed to build sales chart: %w", err)
	}

	// Every day appears in the chart, including days without sales.
	chart := make([]SalesPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		if p, ok := sales[date]; ok {
			p.Revenue = p.Revenue.Round(2)
			chart = append(chart, p)
		} else {
			chart = append(chart, SalesPoint{Date: date, Orders: 0, Revenue: decimal.Zero})
		}
	}

	return chart, nil
}

func (s *service) TopProducts(ctx context.Context) ([]TopProduct, error) {
	products, err := s.repo.TopProducts(ctx, topProductsLimit)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to query top products")
		return nil, fmt.Errorf("service: failed to fetch top products: %w", err)
	}
	return products, nil
}

func (s *service) RecentOrders(ctx context.Context) ([]RecentOrder, error) {
	orders, err := s.repo.RecentOrders(ctx, recentOrdersLimit)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to query recent orders")
		return nil, fmt.Errorf("service: failed to fetch recent orders: %w", err)
	}
	return orders, nil
}

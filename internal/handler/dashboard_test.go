package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopadmin/backoffice/internal/dashboard"
	"github.com/stretchr/testify/assert"
)

type mockDashboardService struct {
	statsFunc        func(ctx context.Context) (*dashboard.Stats, error)
	salesChartFunc   func(ctx context.Context, days int) ([]dashboard.SalesPoint, error)
	topProductsFunc  func(ctx context.Context) ([]dashboard.TopProduct, error)
	recentOrdersFunc func(ctx context.Context) ([]dashboard.RecentOrder, error)
}

func (m *mockDashboardService) Stats(ctx context.Context) (*dashboard.Stats, error) {
	return m.statsFunc(ctx)
}

func (m *mockDashboardService) SalesChart(ctx context.Context, days int) ([]dashboard.SalesPoint, error) {
	return m.salesChartFunc(ctx, days)
}

func (m *mockDashboardService) TopProducts(ctx context.Context) ([]dashboard.TopProduct, error) {
	return m.topProductsFunc(ctx)
}

func (m *mockDashboardService) RecentOrders(ctx context.Context) ([]dashboard.RecentOrder, error) {
	return m.recentOrdersFunc(ctx)
}

func TestDashboardHandler_SalesChart(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		wantDays       int
		expectedStatus int
	}{
		{name: "default_days", query: "", wantDays: 0, expectedStatus: http.StatusOK},
		{name: "explicit_days", query: "?days=7", wantDays: 7, expectedStatus: http.StatusOK},
		{name: "malformed_days", query: "?days=abc", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			mockSvc := &mockDashboardService{
				salesChartFunc: func(ctx context.Context, days int) ([]dashboard.SalesPoint, error) {
					called = true
					assert.Equal(t, tt.wantDays, days)
					return []dashboard.SalesPoint{}, nil
				},
			}
			h := NewDashboardHandler(mockSvc)

			req := httptest.NewRequest(http.MethodGet, "/dashboard/sales-chart"+tt.query, nil)
			w := httptest.NewRecorder()

			h.SalesChart(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusBadRequest {
				assert.False(t, called, "service must not be called for malformed days")
			}
		})
	}
}

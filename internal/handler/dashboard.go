package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/shopadmin/backoffice/internal/dashboard"
)

// DashboardHandler serves the admin dashboard aggregations.
type DashboardHandler struct {
	svc dashboard.Service
}

func NewDashboardHandler(svc dashboard.Service) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		log.Info().Msgf("Failed to build dashboard stats: %v", err)
		http.Error(w, "failed to build dashboard stats", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *DashboardHandler) SalesChart(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days")
	if err != nil {
		http.Error(w, "invalid days", http.StatusBadRequest)
		return
	}

	chart, err := h.svc.SalesChart(r.Context(), days)
	if err != nil {
		log.Info().Msgf("Failed to build sales chart: %v", err)
		http.Error(w, "failed to build sales chart", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, chart)
}

func (h *DashboardHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.TopProducts(r.Context())
	if err != nil {
		log.Info().Msgf("Failed to fetch top products: %v", err)
		http.Error(w, "failed to fetch top products", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

func (h *DashboardHandler) RecentOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.RecentOrders(r.Context())
	if err != nil {
		log.Info().Msgf("Failed to fetch recent orders: %v", err)
		http.Error(w, "failed to fetch recent orders", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

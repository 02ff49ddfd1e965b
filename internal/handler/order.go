package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopadmin/backoffice/internal/order"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	svc order.Service
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func orderIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.FromString(chi.URLParam(r, "id"))
}

// queryInt parses an optional integer query parameter. A missing parameter
// yields zero; a malformed one is an error.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Info().Msgf("Failed to encode response: %v", err)
	}
}

// PlaceOrder handles the creation of a new order from a cart of line items.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var input order.PlaceOrderInput

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ord, err := h.svc.PlaceOrder(r.Context(), input)
	if err != nil {
		var validationErr *order.ValidationError
		var stockErr *order.InsufficientStockError
		switch {
		case errors.As(err, &validationErr):
			http.Error(w, validationErr.Msg, http.StatusBadRequest)
		case errors.Is(err, order.ErrCustomerNotFound), errors.Is(err, order.ErrProductNotFound):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.As(err, &stockErr):
			http.Error(w, stockErr.Error(), http.StatusConflict)
		default:
			log.Info().Msgf("Failed to place order: %v", err)
			http.Error(w, "failed to place order", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, ord)
}

// GetOrderByID handles retrieving an order with its items.
func (h *OrderHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	id, err := orderIDParam(r)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	ord, err := h.svc.GetOrderByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		log.Info().Msgf("Failed to get order by id: %v", err)
		http.Error(w, "failed to get order", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ord)
}

// ListOrders handles listing orders with optional filters.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filter := order.ListFilter{
		Status: order.Status(r.URL.Query().Get("status")),
		Search: r.URL.Query().Get("search"),
	}

	if raw := r.URL.Query().Get("customer_id"); raw != "" {
		customerID, err := uuid.FromString(raw)
		if err != nil {
			http.Error(w, "invalid customer id", http.StatusBadRequest)
			return
		}
		filter.CustomerID = customerID
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		http.Error(w, "invalid limit", http.StatusBadRequest)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		http.Error(w, "invalid offset", http.StatusBadRequest)
		return
	}
	filter.Limit, filter.Offset = limit, offset

	orders, err := h.svc.ListOrders(r.Context(), filter)
	if err != nil {
		if errors.Is(err, order.ErrInvalidStatus) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Info().Msgf("Failed to list orders: %v", err)
		http.Error(w, "failed to list orders", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status order.Status `json:"status"`
}

// UpdateStatus handles order status transitions.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := orderIDParam(r)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ord, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		var stockErr *order.InsufficientStockError
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			http.Error(w, "order not found", http.StatusNotFound)
		case errors.Is(err, order.ErrInvalidStatus):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, order.ErrInvalidStatusTransition):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.As(err, &stockErr):
			http.Error(w, stockErr.Error(), http.StatusConflict)
		default:
			log.Info().Msgf("Failed to update order status: %v", err)
			http.Error(w, "failed to update order status", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, ord)
}

// DeleteOrder handles removing a cancelled order.
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderIDParam(r)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteOrder(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			http.Error(w, "order not found", http.StatusNotFound)
		case errors.Is(err, order.ErrMustCancelFirst), errors.Is(err, order.ErrOrderNotDeletable):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			log.Info().Msgf("Failed to delete order: %v", err)
			http.Error(w, "failed to delete order", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecalculateTotals repairs an order whose stored totals drifted from its
// items.
func (h *OrderHandler) RecalculateTotals(w http.ResponseWriter, r *http.Request) {
	id, err := orderIDParam(r)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	updated, err := h.svc.RecalculateTotals(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		log.Info().Msgf("Failed to recalculate order totals: %v", err)
		http.Error(w, "failed to recalculate order totals", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"updated": updated})
}

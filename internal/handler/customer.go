package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopadmin/backoffice/internal/customer"
)

// CustomerHandler handles HTTP requests for the customer directory.
type CustomerHandler struct {
	svc customer.Service
}

func NewCustomerHandler(svc customer.Service) *CustomerHandler {
	return &CustomerHandler{svc: svc}
}

func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var c customer.Customer

	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.svc.CreateCustomer(r.Context(), &c)
	if err != nil {
		if errors.Is(err, customer.ErrEmailExists) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *CustomerHandler) GetCustomerByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid customer id", http.StatusBadRequest)
		return
	}

	c, err := h.svc.GetCustomerByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			http.Error(w, "customer not found", http.StatusNotFound)
			return
		}
		log.Info().Msgf("Failed to get customer by id: %v", err)
		http.Error(w, "failed to get customer", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	filter := customer.ListFilter{
		Search:     r.URL.Query().Get("search"),
		VIP:        r.URL.Query().Get("vip") == "true",
		RecentOnly: r.URL.Query().Get("recent") == "true",
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

	customers, err := h.svc.ListCustomers(r.Context(), filter)
	if err != nil {
		log.Info().Msgf("Failed to list customers: %v", err)
		http.Error(w, "failed to list customers", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid customer id", http.StatusBadRequest)
		return
	}

	var c customer.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	c.ID = id

	if err := h.svc.UpdateCustomer(r.Context(), &c); err != nil {
		switch {
		case errors.Is(err, customer.ErrNotFound):
			http.Error(w, "customer not found", http.StatusNotFound)
		case errors.Is(err, customer.ErrEmailExists):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	writeJSON(w, http.StatusOK, &c)
}

func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid customer id", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteCustomer(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, customer.ErrNotFound):
			http.Error(w, "customer not found", http.StatusNotFound)
		case errors.Is(err, customer.ErrCustomerInUse):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			log.Info().Msgf("Failed to delete customer: %v", err)
			http.Error(w, "failed to delete customer", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

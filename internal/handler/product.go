package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopadmin/backoffice/internal/product"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	svc product.Service
}

func NewProductHandler(svc product.Service) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p product.Product

	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.svc.CreateProduct(r.Context(), &p)
	if err != nil {
		if errors.Is(err, product.ErrSKUExists) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	p, err := h.svc.GetProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		log.Info().Msgf("Failed to get product by id: %v", err)
		http.Error(w, "failed to get product", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := product.ListFilter{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
	}
	if raw := r.URL.Query().Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "invalid active filter", http.StatusBadRequest)
			return
		}
		filter.Active = &active
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

	products, err := h.svc.ListProducts(r.Context(), filter)
	if err != nil {
		log.Info().Msgf("Failed to list products: %v", err)
		http.Error(w, "failed to list products", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	var p product.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p.ID = id

	if err := h.svc.UpdateProduct(r.Context(), &p); err != nil {
		switch {
		case errors.Is(err, product.ErrNotFound):
			http.Error(w, "product not found", http.StatusNotFound)
		case errors.Is(err, product.ErrSKUExists):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	writeJSON(w, http.StatusOK, &p)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, product.ErrNotFound):
			http.Error(w, "product not found", http.StatusNotFound)
		case errors.Is(err, product.ErrProductInUse):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			log.Info().Msgf("Failed to delete product: %v", err)
			http.Error(w, "failed to delete product", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/srujanab94/acp-commerce/internal/catalog"
)

type ProductHandler struct {
	catalog catalog.Catalog
}

func NewProductHandler(cat catalog.Catalog) *ProductHandler {
	return &ProductHandler{catalog: cat}
}

type ProductsResponse struct {
	Products []catalog.Product `json:"products"`
}

// GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ProductsResponse{Products: h.catalog.List()})
}

// GET /api/v1/products/{product_id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "product_id")
	p, ok := h.catalog.Lookup(id)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

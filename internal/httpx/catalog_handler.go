package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/marketcat/storefront-api/internal/catalog"
)

type CatalogHandler struct {
	Catalog *catalog.Service
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/vendors", h.listVendors)
	r.Get("/categories", h.listCategories)
	r.Get("/products", h.listProducts)
	r.Get("/vendors/{id}/product-count", h.vendorProductCount)
	r.Get("/categories/{id}/product-count", h.categoryProductCount)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Provider failures degrade to empty collections; the storefront renders an
// empty shelf instead of an error page.
func (h *CatalogHandler) listVendors(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	vs, err := h.Catalog.ListActiveVendors(ctx)
	if err != nil {
		logrus.WithError(err).Warn("list vendors failed")
	}
	if vs == nil {
		vs = []catalog.Vendor{}
	}
	writeJSON(w, http.StatusOK, vs)
}

func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cs, err := h.Catalog.ListActiveCategories(ctx)
	if err != nil {
		logrus.WithError(err).Warn("list categories failed")
	}
	if cs == nil {
		cs = []catalog.Category{}
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	f := catalog.Filter{
		VendorID:   r.URL.Query().Get("vendor_id"),
		CategoryID: r.URL.Query().Get("category_id"),
	}
	ps, err := h.Catalog.ListProducts(ctx, f)
	if err != nil {
		logrus.WithError(err).Warn("list products failed")
	}
	if ps == nil {
		ps = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *CatalogHandler) vendorProductCount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	n, err := h.Catalog.VendorProductCount(ctx, chi.URLParam(r, "id"))
	if err != nil {
		logrus.WithError(err).Warn("vendor product count failed")
		n = 0
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (h *CatalogHandler) categoryProductCount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	n, err := h.Catalog.CategoryProductCount(ctx, chi.URLParam(r, "id"))
	if err != nil {
		logrus.WithError(err).Warn("category product count failed")
		n = 0
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marketcat/storefront-api/internal/cart"
	"github.com/marketcat/storefront-api/internal/catalog"
)

// ProductSource supplies the product being snapshotted into a cart line.
type ProductSource interface {
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
}

type CartHandler struct {
	Store    cart.Store
	Products ProductSource
}

type AddItemReq struct {
	ProductID string `json:"product_id"`
}

type SetQuantityReq struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clearCart)
		r.Post("/items", h.addItem)
		r.Put("/items/{productID}", h.setQuantity)
		r.Delete("/items/{productID}", h.removeItem)
	})
}

func (h *CartHandler) manager(w http.ResponseWriter, r *http.Request) (*cart.Manager, context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	m := cart.NewManager(h.Store, session(w, r))
	m.Hydrate(ctx)
	return m, ctx, cancel
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	m, _, cancel := h.manager(w, r)
	defer cancel()
	writeJSON(w, http.StatusOK, m.State())
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing product_id"})
		return
	}

	m, ctx, cancel := h.manager(w, r)
	defer cancel()

	p, err := h.Products.GetProduct(ctx, req.ProductID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	m.AddProduct(ctx, p)
	writeJSON(w, http.StatusCreated, m.State())
}

func (h *CartHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req SetQuantityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	m, ctx, cancel := h.manager(w, r)
	defer cancel()

	m.SetQuantity(ctx, chi.URLParam(r, "productID"), req.Quantity)
	writeJSON(w, http.StatusOK, m.State())
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	m, ctx, cancel := h.manager(w, r)
	defer cancel()

	m.RemoveProduct(ctx, chi.URLParam(r, "productID"))
	writeJSON(w, http.StatusOK, m.State())
}

func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	m, ctx, cancel := h.manager(w, r)
	defer cancel()

	m.Clear(ctx)
	writeJSON(w, http.StatusOK, m.State())
}

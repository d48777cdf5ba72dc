package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marketcat/storefront-api/internal/cart"
	"github.com/marketcat/storefront-api/internal/order"
)

type CheckoutHandler struct {
	Store    cart.Store
	Checkout *order.CheckoutService
}

func (h *CheckoutHandler) Register(r *chi.Mux) {
	r.Get("/checkout/preview", h.preview)
	r.Post("/checkout", h.dispatch)
}

func (h *CheckoutHandler) preview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	m := cart.NewManager(h.Store, session(w, r))
	m.Hydrate(ctx)

	res, err := h.Checkout.Preview(m.State())
	if errors.Is(err, order.ErrEmptyOrder) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cart is empty"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// dispatch checks out the first vendor group only; remaining groups stay in
// the cart until the deferred clear fires.
func (h *CheckoutHandler) dispatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sid := session(w, r)
	m := cart.NewManager(h.Store, sid)
	m.Hydrate(ctx)

	res, err := h.Checkout.Dispatch(ctx, sid, m.State(), r.Header.Get("X-Request-Id"))
	if errors.Is(err, order.ErrEmptyOrder) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cart is empty"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

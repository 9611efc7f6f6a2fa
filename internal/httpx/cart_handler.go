package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harshsindhu0408/beauty-storefront/internal/backend"
	"github.com/harshsindhu0408/beauty-storefront/internal/cart"
	"github.com/harshsindhu0408/beauty-storefront/internal/session"
)

type CartBackend interface {
	FetchCart(ctx context.Context, token string) (cart.Cart, error)
	AddCartItem(ctx context.Context, token, productID, variant string, quantity int) (cart.Cart, error)
	UpdateCartItem(ctx context.Context, token, itemID string, quantity int) (cart.Cart, error)
	RemoveCartItem(ctx context.Context, token, itemID string) (cart.Cart, error)
}

// CartHandler drives the optimistic cart flow: apply locally, commit the
// server's answer, roll back on failure.
type CartHandler struct {
	Backend  CartBackend
	Carts    *cart.Registry
	Sessions session.Store
}

func (h *CartHandler) Register(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Post("/items", h.addItem)
		r.Patch("/items/{itemID}", h.updateQuantity)
		r.Delete("/items/{itemID}", h.removeItem)
	})
}

// Current returns the user's current local cart view, loading it from the
// session cache or the remote API on first touch. A 404 from the API is an
// empty cart, not an error.
func (h *CartHandler) Current(ctx context.Context, token string) (cart.Cart, error) {
	if m, ok := h.Carts.Lookup(token); ok {
		return m.Cart(), nil
	}
	m, err := h.manager(ctx, token)
	if err != nil {
		return cart.Cart{}, err
	}
	return m.Cart(), nil
}

func (h *CartHandler) manager(ctx context.Context, token string) (*cart.Manager, error) {
	if m, ok := h.Carts.Lookup(token); ok {
		return m, nil
	}
	if c, err := h.Sessions.CachedCart(ctx, token); err == nil {
		return h.Carts.Attach(token, c), nil
	} else if !errors.Is(err, session.ErrNotFound) {
		log.Printf("warn: cart cache read: %v", err)
	}

	c, err := h.Backend.FetchCart(ctx, token)
	if errors.Is(err, backend.ErrNotFound) {
		c = cart.Cart{Currency: "INR"}
	} else if err != nil {
		return nil, err
	}
	return h.Carts.Attach(token, c), nil
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	token := Token(r.Context())
	m, err := h.manager(r.Context(), token)
	if err != nil {
		handleBackendError(w, err)
		return
	}
	// Empty cart is a valid terminal state: 200 with zero items.
	respondJSON(w, http.StatusOK, m.Cart())
}

type addItemDTO struct {
	ProductID string `json:"product_id"`
	Variant   string `json:"variant,omitempty"`
	Quantity  int    `json:"quantity"`
}

// addItem is server-authoritative with no optimistic step: a new line needs
// server-side pricing before the local formula can track it.
func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	token := Token(r.Context())

	var req addItemDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be positive")
		return
	}

	server, err := h.Backend.AddCartItem(r.Context(), token, req.ProductID, req.Variant, req.Quantity)
	if err != nil {
		handleBackendError(w, err)
		return
	}

	m := h.Carts.Attach(token, server)
	h.cache(r.Context(), token, server)
	respondJSON(w, http.StatusCreated, m.Cart())
}

type updateQuantityDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	token := Token(r.Context())
	itemID := chi.URLParam(r, "itemID")

	var req updateQuantityDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	h.mutate(w, r, cart.SetQuantity(itemID, req.Quantity), func(ctx context.Context) (cart.Cart, error) {
		return h.Backend.UpdateCartItem(ctx, token, itemID, req.Quantity)
	})
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	token := Token(r.Context())
	itemID := chi.URLParam(r, "itemID")

	h.mutate(w, r, cart.RemoveItem(itemID), func(ctx context.Context) (cart.Cart, error) {
		return h.Backend.RemoveCartItem(ctx, token, itemID)
	})
}

// mutate runs one optimistic cart transaction against the remote API.
func (h *CartHandler) mutate(w http.ResponseWriter, r *http.Request, ch cart.Change, commit func(context.Context) (cart.Cart, error)) {
	token := Token(r.Context())

	m, err := h.manager(r.Context(), token)
	if err != nil {
		handleBackendError(w, err)
		return
	}

	txn, _, err := m.Begin(ch)
	switch {
	case errors.Is(err, cart.ErrNegativeQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
		return
	case errors.Is(err, cart.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "item_not_found", err.Error())
		return
	case errors.Is(err, cart.ErrMutationInFlight):
		respondError(w, http.StatusConflict, "mutation_in_flight", err.Error())
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	server, err := commit(r.Context())
	if err != nil {
		txn.Rollback()
		handleBackendError(w, err)
		return
	}

	// A discarded stale commit must not push older state into the cache.
	if txn.Commit(server) {
		h.cache(r.Context(), token, server)
	}
	respondJSON(w, http.StatusOK, m.Cart())
}

func (h *CartHandler) cache(ctx context.Context, token string, c cart.Cart) {
	if err := h.Sessions.CacheCart(ctx, token, c); err != nil {
		log.Printf("warn: cart cache write: %v", err)
	}
}

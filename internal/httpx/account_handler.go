package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harshsindhu0408/beauty-storefront/internal/audit"
	"github.com/harshsindhu0408/beauty-storefront/internal/backend"
)

type AccountBackend interface {
	Profile(ctx context.Context, token string) (json.RawMessage, error)
	MyOrders(ctx context.Context, token string) ([]backend.Order, error)
	Order(ctx context.Context, token, orderID string) (backend.Order, error)
}

type VerificationLog interface {
	Recent(ctx context.Context, limit int) ([]audit.Attempt, error)
}

type AccountHandler struct {
	Backend AccountBackend
	Audit   VerificationLog
}

func (h *AccountHandler) Register(r chi.Router) {
	r.Get("/account", h.profile)
	r.Get("/account/orders", h.orders)
	r.Get("/order/{orderID}", h.order)
	r.Get("/admin/verifications", h.verifications)
}

func (h *AccountHandler) profile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Backend.Profile(r.Context(), Token(r.Context()))
	if err != nil {
		handleBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *AccountHandler) orders(w http.ResponseWriter, r *http.Request) {
	list, err := h.Backend.MyOrders(r.Context(), Token(r.Context()))
	if err != nil {
		handleBackendError(w, err)
		return
	}
	if list == nil {
		list = []backend.Order{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *AccountHandler) order(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	o, err := h.Backend.Order(r.Context(), Token(r.Context()), orderID)
	if errors.Is(err, backend.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	if err != nil {
		handleBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *AccountHandler) verifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.Audit.Recent(r.Context(), 50)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	if list == nil {
		list = []audit.Attempt{}
	}
	respondJSON(w, http.StatusOK, list)
}

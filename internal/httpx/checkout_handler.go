package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harshsindhu0408/beauty-storefront/internal/backend"
	"github.com/harshsindhu0408/beauty-storefront/internal/cart"
	"github.com/harshsindhu0408/beauty-storefront/internal/checkout"
)

// CartSource yields the current local cart; satisfied by CartHandler.
type CartSource interface {
	Current(ctx context.Context, token string) (cart.Cart, error)
}

type CheckoutHandler struct {
	Orch *checkout.Orchestrator
	Cart CartSource
}

func (h *CheckoutHandler) Register(r chi.Router) {
	r.Post("/checkout", h.create)
	r.Post("/checkout/buy-now", h.buyNow)
	r.Get("/checkout", h.load)
	r.Get("/checkout/error", h.errorView)
	r.Route("/checkout/{sessionID}", func(r chi.Router) {
		r.Post("/next", h.next)
		r.Post("/prev", h.prev)
		r.Post("/submit", h.submit)
	})
}

func (h *CheckoutHandler) create(w http.ResponseWriter, r *http.Request) {
	token := Token(r.Context())

	c, err := h.Cart.Current(r.Context(), token)
	if err != nil {
		handleBackendError(w, err)
		return
	}

	sess, err := h.Orch.StartFromCart(r.Context(), token, c)
	if errors.Is(err, checkout.ErrEmptyCart) {
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
		return
	}
	if err != nil {
		// Abort with a visible error; no navigation happens.
		handleBackendError(w, err)
		return
	}
	http.Redirect(w, r, "/checkout?sessionId="+sess.SessionID, http.StatusSeeOther)
}

type buyNowDTO struct {
	ProductID string        `json:"product_id"`
	Name      string        `json:"name"`
	Images    []string      `json:"images,omitempty"`
	UnitPrice int64         `json:"unit_price"`
	Variant   *cart.Variant `json:"variant,omitempty"`
	Quantity  int           `json:"quantity"`
}

func (h *CheckoutHandler) buyNow(w http.ResponseWriter, r *http.Request) {
	token := Token(r.Context())

	var req buyNowDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	item := cart.Item{
		Product: cart.Product{
			ID:        req.ProductID,
			Name:      req.Name,
			Images:    req.Images,
			UnitPrice: req.UnitPrice,
		},
		Variant:  req.Variant,
		Quantity: req.Quantity,
	}

	sess, err := h.Orch.StartBuyNow(r.Context(), token, item)
	if err != nil {
		handleBackendError(w, err)
		return
	}
	http.Redirect(w, r, "/checkout?sessionId="+sess.SessionID, http.StatusSeeOther)
}

type checkoutViewDTO struct {
	Session   backend.CheckoutSession `json:"session"`
	Addresses []backend.Address       `json:"addresses"`
	Form      *checkout.Form          `json:"form"`
}

func (h *CheckoutHandler) load(w http.ResponseWriter, r *http.Request) {
	token := Token(r.Context())
	sessionID := r.URL.Query().Get("sessionId")

	sess, addrs, err := h.Orch.Load(r.Context(), token, sessionID)
	if errors.Is(err, checkout.ErrInvalidSession) {
		http.Redirect(w, r, "/checkout/error", http.StatusSeeOther)
		return
	}
	if err != nil {
		handleBackendError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, checkoutViewDTO{
		Session:   sess,
		Addresses: addrs,
		Form:      h.Orch.Form(sess.SessionID),
	})
}

// errorView is the dedicated terminal view for a broken checkout session; the
// only way forward is a manual restart.
func (h *CheckoutHandler) errorView(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"error":  "This checkout session is no longer valid.",
		"action": "/cart",
	})
}

type formUpdateDTO struct {
	Shipping              *backend.Address `json:"shipping_address,omitempty"`
	Billing               *backend.Address `json:"billing_address,omitempty"`
	BillingSameAsShipping *bool            `json:"billing_same_as_shipping,omitempty"`
	PaymentMethod         *string          `json:"payment_method,omitempty"`
	ShippingMethod        *string          `json:"shipping_method,omitempty"`
	Notes                 *string          `json:"notes,omitempty"`
}

func (dto formUpdateDTO) apply(f *checkout.Form) {
	if dto.Shipping != nil {
		f.Shipping = *dto.Shipping
	}
	if dto.Billing != nil {
		f.Billing = *dto.Billing
	}
	if dto.BillingSameAsShipping != nil {
		f.BillingSameAsShipping = *dto.BillingSameAsShipping
	}
	if dto.PaymentMethod != nil {
		f.PaymentMethod = *dto.PaymentMethod
	}
	if dto.ShippingMethod != nil {
		f.ShippingMethod = *dto.ShippingMethod
	}
	if dto.Notes != nil {
		f.Notes = *dto.Notes
	}
}

func (h *CheckoutHandler) next(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	f := h.Orch.Form(sessionID)

	var dto formUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	dto.apply(f)

	if !f.Next() {
		// Blocked by step validation; the error rides on the form.
		respondJSON(w, http.StatusUnprocessableEntity, f)
		return
	}
	respondJSON(w, http.StatusOK, f)
}

func (h *CheckoutHandler) prev(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	f := h.Orch.Form(sessionID)
	f.Prev()
	respondJSON(w, http.StatusOK, f)
}

func (h *CheckoutHandler) submit(w http.ResponseWriter, r *http.Request) {
	token := Token(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	sess, _, err := h.Orch.Load(r.Context(), token, sessionID)
	if errors.Is(err, checkout.ErrInvalidSession) {
		http.Redirect(w, r, "/checkout/error", http.StatusSeeOther)
		return
	}
	if err != nil {
		handleBackendError(w, err)
		return
	}

	f := h.Orch.Form(sess.SessionID)
	redirect, err := h.Orch.Submit(r.Context(), token, sess, f)
	if errors.Is(err, checkout.ErrFormIncomplete) {
		respondJSON(w, http.StatusUnprocessableEntity, f)
		return
	}
	if errors.Is(err, checkout.ErrSubmitInFlight) {
		respondError(w, http.StatusConflict, "submit_in_flight", err.Error())
		return
	}
	if err != nil {
		// Stay on the current step; the message is on the form.
		respondJSON(w, http.StatusBadGateway, f)
		return
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

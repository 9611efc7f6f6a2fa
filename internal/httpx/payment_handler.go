package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harshsindhu0408/beauty-storefront/internal/payment"
)

type PaymentHandler struct {
	Verifier *payment.Verifier
}

func (h *PaymentHandler) Register(r chi.Router) {
	r.Get("/payment/callback", h.callback)
}

// callback is the gateway return route. The verifier's outcome is terminal:
// success carries the order-detail redirect (the client shows the success
// state briefly, then navigates), error carries a manual path back to
// checkout.
func (h *PaymentHandler) callback(w http.ResponseWriter, r *http.Request) {
	token := Token(r.Context())
	params := payment.ParseCallback(r.URL.Query())

	res := h.Verifier.Verify(r.Context(), token, params)
	if res.Status == payment.StatusError && res.Redirect == "" {
		res.Redirect = "/checkout"
	}
	respondJSON(w, http.StatusOK, res)
}

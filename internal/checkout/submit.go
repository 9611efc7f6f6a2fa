package checkout

import (
	"context"
	"fmt"
	"log"

	"github.com/harshsindhu0408/beauty-storefront/internal/backend"
	"github.com/harshsindhu0408/beauty-storefront/internal/events"
)

// Submit posts the order built from the session items and the finished form.
//
// On success the created order id is stored in the session store so it
// survives the gateway redirect, the form is discarded, and the returned
// redirect is either the gateway payment link (online) or the order detail
// page (cod). On failure the error message lands on the form and the caller
// stays on the current step; nothing is retried.
func (o *Orchestrator) Submit(ctx context.Context, token string, sess backend.CheckoutSession, f *Form) (string, error) {
	if msg := f.incomplete(); msg != "" {
		f.Err = msg
		return "", ErrFormIncomplete
	}

	o.mu.Lock()
	if f.submitting {
		o.mu.Unlock()
		return "", ErrSubmitInFlight
	}
	f.submitting = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		f.submitting = false
		o.mu.Unlock()
	}()

	req := backend.OrderCreateRequest{
		SessionID:       sess.SessionID,
		Items:           sess.Items,
		ShippingAddress: f.Shipping,
		BillingAddress:  f.BillingAddress(),
		ShippingMethod:  f.ShippingMethod,
		PaymentMethod:   f.PaymentMethod,
		Notes:           f.Notes,
		IdempotencyKey:  f.IdempotencyKey,
	}

	res, err := o.backend.CreateOrder(ctx, token, req)
	if err != nil {
		f.Err = err.Error()
		return "", err
	}

	// The correlation must be durable before we send the shopper to the
	// gateway; without it the callback cannot be matched to an order.
	if err := o.sessions.SetOrderID(ctx, token, res.OrderID); err != nil {
		f.Err = "could not prepare payment, please try again"
		return "", fmt.Errorf("store order correlation: %w", err)
	}

	events.Emit(o.producer, o.service, events.EventOrderPlaced, "", res.OrderID, events.OrderPlacedPayload{
		OrderID:       res.OrderID,
		SessionID:     sess.SessionID,
		PaymentMethod: f.PaymentMethod,
		GrandTotal:    res.GrandTotal,
	})

	o.Discard(sess.SessionID)

	if f.PaymentMethod == PaymentOnline {
		if res.PaymentLink == "" {
			log.Printf("warn: order %s: online payment without payment link", res.OrderID)
			return "/order/" + res.OrderID, nil
		}
		return res.PaymentLink, nil
	}
	return "/order/" + res.OrderID, nil
}

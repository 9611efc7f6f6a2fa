package payment

import (
	"context"
	"errors"
	"log"
	"net/url"

	"github.com/harshsindhu0408/beauty-storefront/internal/audit"
	"github.com/harshsindhu0408/beauty-storefront/internal/backend"
	"github.com/harshsindhu0408/beauty-storefront/internal/events"
	"github.com/harshsindhu0408/beauty-storefront/internal/session"
)

type Status string

const (
	StatusVerifying Status = "verifying"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

const (
	msgMissingParams  = "Invalid payment response: missing payment parameters"
	msgNoOrderID      = "Order ID not found. Please contact support."
	msgGenericFailure = "Payment verification failed. Please contact support."
)

// CallbackParams are the query parameters razorpay appends to the return URL.
type CallbackParams struct {
	PaymentID         string
	PaymentLinkID     string
	PaymentLinkStatus string
	Signature         string
}

func ParseCallback(q url.Values) CallbackParams {
	return CallbackParams{
		PaymentID:         q.Get("razorpay_payment_id"),
		PaymentLinkID:     q.Get("razorpay_payment_link_id"),
		PaymentLinkStatus: q.Get("razorpay_payment_link_status"),
		Signature:         q.Get("razorpay_signature"),
	}
}

// Result is the terminal outcome of one callback: verifying never escapes
// Verify, the machine lands on success or error and stays there.
type Result struct {
	Status   Status `json:"status"`
	Message  string `json:"message,omitempty"`
	OrderID  string `json:"order_id,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

type Backend interface {
	VerifyPayment(ctx context.Context, token string, req backend.PaymentVerifyRequest) (backend.PaymentVerifyResult, error)
}

type Auditor interface {
	Record(ctx context.Context, a audit.Attempt) error
}

// Verifier runs the one-shot post-redirect verification flow. There is no
// retry path; the error state offers a manual route back to checkout.
type Verifier struct {
	backend  Backend
	sessions session.Store
	auditor  Auditor
	producer events.Publisher
	service  string
}

func NewVerifier(b Backend, sessions session.Store, auditor Auditor, producer events.Publisher, service string) *Verifier {
	return &Verifier{
		backend:  b,
		sessions: sessions,
		auditor:  auditor,
		producer: producer,
		service:  service,
	}
}

// Verify correlates the callback with the stored order id and asks the remote
// API for the verdict. Missing parameters or a missing correlation
// short-circuit to error without any network call, which also makes a second
// callback for an already-verified order land on error instead of a
// duplicate success.
func (v *Verifier) Verify(ctx context.Context, token string, p CallbackParams) Result {
	if p.PaymentID == "" || p.Signature == "" {
		return Result{Status: StatusError, Message: msgMissingParams}
	}

	orderID, err := v.sessions.OrderID(ctx, token)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			log.Printf("warn: read order correlation: %v", err)
		}
		return Result{Status: StatusError, Message: msgNoOrderID}
	}

	res, err := v.backend.VerifyPayment(ctx, token, backend.PaymentVerifyRequest{
		OrderID:           orderID,
		PaymentID:         p.PaymentID,
		PaymentLinkID:     p.PaymentLinkID,
		PaymentLinkStatus: p.PaymentLinkStatus,
		Signature:         p.Signature,
	})
	if err != nil {
		v.record(ctx, orderID, p.PaymentID, StatusError, err.Error())
		return Result{Status: StatusError, Message: msgGenericFailure, OrderID: orderID}
	}

	if !res.Verified {
		msg := res.Message
		if msg == "" {
			msg = msgGenericFailure
		}
		v.record(ctx, orderID, p.PaymentID, StatusError, msg)
		return Result{Status: StatusError, Message: msg, OrderID: orderID}
	}

	if err := v.sessions.ClearOrderID(ctx, token); err != nil {
		log.Printf("warn: clear order correlation: %v", err)
	}
	v.record(ctx, orderID, p.PaymentID, StatusSuccess, "")

	return Result{
		Status:   StatusSuccess,
		OrderID:  orderID,
		Redirect: "/order/" + orderID,
	}
}

// record writes the audit row and emits the activity event; neither outcome
// ever changes the user-facing result.
func (v *Verifier) record(ctx context.Context, orderID, paymentID string, outcome Status, msg string) {
	if v.auditor != nil {
		if err := v.auditor.Record(ctx, audit.Attempt{
			OrderID:   orderID,
			PaymentID: paymentID,
			Outcome:   string(outcome),
			Message:   msg,
		}); err != nil {
			log.Printf("warn: record verification attempt: %v", err)
		}
	}
	events.Emit(v.producer, v.service, events.EventPaymentVerified, "", orderID, events.PaymentVerifiedPayload{
		OrderID:   orderID,
		PaymentID: paymentID,
		Outcome:   string(outcome),
	})
}

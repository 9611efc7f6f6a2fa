package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/harshsindhu0408/beauty-storefront/internal/backend"
	"github.com/harshsindhu0408/beauty-storefront/internal/session"
)

func reviewForm() *Form {
	f := NewForm()
	f.Shipping = validShipping()
	f.PaymentMethod = PaymentCOD
	f.Step = StepReview
	return f
}

func TestSubmit_CODRedirectsToOrderPage(t *testing.T) {
	mb := &mockBackend{orderRes: backend.OrderCreateResult{OrderID: "ord-1", GrandTotal: 2500}}
	store := session.NewMemoryStore()
	o := NewOrchestrator(mb, store, nil, "test")

	sess := backend.CheckoutSession{SessionID: "cs-1", Status: "verified"}
	f := o.Form(sess.SessionID)
	*f = *reviewForm()

	redirect, err := o.Submit(context.Background(), "tok", sess, f)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if redirect != "/order/ord-1" {
		t.Errorf("Expected redirect /order/ord-1, got %q", redirect)
	}

	// The order correlation is stored for the payment callback.
	orderID, err := store.OrderID(context.Background(), "tok")
	if err != nil {
		t.Fatalf("OrderID lookup failed: %v", err)
	}
	if orderID != "ord-1" {
		t.Errorf("Expected stored order id ord-1, got %q", orderID)
	}

	// The form is discarded on success.
	if o.Form(sess.SessionID) == f {
		t.Error("Expected form discarded after successful submit")
	}
}

func TestSubmit_OnlineRedirectsToPaymentLink(t *testing.T) {
	mb := &mockBackend{orderRes: backend.OrderCreateResult{
		OrderID:     "ord-2",
		PaymentLink: "https://rzp.io/l/abc123",
	}}
	store := session.NewMemoryStore()
	o := NewOrchestrator(mb, store, nil, "test")

	f := reviewForm()
	f.PaymentMethod = PaymentOnline
	sess := backend.CheckoutSession{SessionID: "cs-2", Status: "verified"}

	redirect, err := o.Submit(context.Background(), "tok", sess, f)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if redirect != "https://rzp.io/l/abc123" {
		t.Errorf("Expected payment link redirect, got %q", redirect)
	}
}

func TestSubmit_OnlineWithoutLinkFallsBack(t *testing.T) {
	mb := &mockBackend{orderRes: backend.OrderCreateResult{OrderID: "ord-3"}}
	o := NewOrchestrator(mb, session.NewMemoryStore(), nil, "test")

	f := reviewForm()
	f.PaymentMethod = PaymentOnline
	sess := backend.CheckoutSession{SessionID: "cs-3", Status: "verified"}

	redirect, err := o.Submit(context.Background(), "tok", sess, f)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if redirect != "/order/ord-3" {
		t.Errorf("Expected order page fallback, got %q", redirect)
	}
}

func TestSubmit_FailureLandsOnForm(t *testing.T) {
	mb := &mockBackend{orderErr: errors.New("payment provider unavailable")}
	store := session.NewMemoryStore()
	o := NewOrchestrator(mb, store, nil, "test")

	sess := backend.CheckoutSession{SessionID: "cs-4", Status: "verified"}
	f := o.Form(sess.SessionID)
	*f = *reviewForm()

	_, err := o.Submit(context.Background(), "tok", sess, f)
	if err == nil {
		t.Fatal("Expected Submit to fail")
	}
	if f.Err == "" {
		t.Error("Expected error message on the form")
	}
	if f.Step != StepReview {
		t.Errorf("Expected to stay on the review step, got %d", f.Step)
	}

	// No correlation stored, no form discarded.
	if _, err := store.OrderID(context.Background(), "tok"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Expected no stored order id, got %v", err)
	}
	if o.Form(sess.SessionID) != f {
		t.Error("Expected form kept after failed submit")
	}
}

func TestSubmit_PassesFormFieldsToOrder(t *testing.T) {
	mb := &mockBackend{orderRes: backend.OrderCreateResult{OrderID: "ord-5"}}
	o := NewOrchestrator(mb, session.NewMemoryStore(), nil, "test")

	f := reviewForm()
	f.BillingSameAsShipping = false
	f.Billing = backend.Address{FirstName: "Billing", LastName: "Only", Email: "b@example.com", Address: "1 St", City: "Pune", State: "MH", PostalCode: "411001"}
	f.Notes = "leave at door"
	sess := backend.CheckoutSession{
		SessionID: "cs-5",
		Status:    "verified",
		Items:     []backend.CheckoutItem{{ProductID: "p1", Quantity: 2, Price: 500, ItemTotal: 1000}},
	}

	if _, err := o.Submit(context.Background(), "tok", sess, f); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	req := mb.orderReq
	if req == nil {
		t.Fatal("Expected CreateOrder to be called")
	}
	if req.SessionID != "cs-5" {
		t.Errorf("Expected session id cs-5, got %q", req.SessionID)
	}
	if len(req.Items) != 1 {
		t.Errorf("Expected session items forwarded, got %d", len(req.Items))
	}
	if req.BillingAddress.FirstName != "Billing" {
		t.Errorf("Expected separate billing address, got %q", req.BillingAddress.FirstName)
	}
	if req.Notes != "leave at door" {
		t.Errorf("Expected notes forwarded, got %q", req.Notes)
	}
	if req.IdempotencyKey == "" {
		t.Error("Expected an idempotency key on the order request")
	}
}

func TestSubmit_RejectsIncompleteForm(t *testing.T) {
	mb := &mockBackend{orderRes: backend.OrderCreateResult{OrderID: "ord-7"}}
	store := session.NewMemoryStore()
	o := NewOrchestrator(mb, store, nil, "test")

	sess := backend.CheckoutSession{SessionID: "cs-7", Status: "verified"}
	f := o.Form(sess.SessionID)

	// A fresh step-1 form must never produce an order.
	redirect, err := o.Submit(context.Background(), "tok", sess, f)
	if !errors.Is(err, ErrFormIncomplete) {
		t.Fatalf("Expected ErrFormIncomplete, got %v", err)
	}
	if redirect != "" {
		t.Errorf("Expected no redirect, got %q", redirect)
	}
	if f.Err == "" {
		t.Error("Expected error message on the form")
	}
	if mb.orderCalls != 0 {
		t.Errorf("Expected no order call, got %d", mb.orderCalls)
	}
	if _, err := store.OrderID(context.Background(), "tok"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Expected no stored order id, got %v", err)
	}
}

func TestSubmit_RevalidatesEarlierSteps(t *testing.T) {
	mb := &mockBackend{}
	o := NewOrchestrator(mb, session.NewMemoryStore(), nil, "test")

	// Reached review, then the payment method was cleared out from under it.
	f := reviewForm()
	f.PaymentMethod = ""

	sess := backend.CheckoutSession{SessionID: "cs-8", Status: "verified"}
	_, err := o.Submit(context.Background(), "tok", sess, f)
	if !errors.Is(err, ErrFormIncomplete) {
		t.Fatalf("Expected ErrFormIncomplete, got %v", err)
	}
	if mb.orderCalls != 0 {
		t.Errorf("Expected no order call, got %d", mb.orderCalls)
	}
}

func TestSubmit_RejectsConcurrentAttempt(t *testing.T) {
	mb := &mockBackend{orderRes: backend.OrderCreateResult{OrderID: "ord-6"}}
	o := NewOrchestrator(mb, session.NewMemoryStore(), nil, "test")

	f := reviewForm()
	f.submitting = true
	sess := backend.CheckoutSession{SessionID: "cs-6", Status: "verified"}

	_, err := o.Submit(context.Background(), "tok", sess, f)
	if !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("Expected ErrSubmitInFlight, got %v", err)
	}
	if mb.orderCalls != 0 {
		t.Errorf("Expected no order call while another is in flight, got %d", mb.orderCalls)
	}
}

package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/harshsindhu0408/beauty-storefront/internal/backend"
	"github.com/harshsindhu0408/beauty-storefront/internal/cart"
)

type mockBackend struct {
	createReq  *backend.CheckoutCreateRequest
	createRes  backend.CheckoutSession
	createErr  error
	verifyRes  backend.CheckoutSession
	verifyErr  error
	addrs      []backend.Address
	addrErr    error
	orderReq   *backend.OrderCreateRequest
	orderRes   backend.OrderCreateResult
	orderErr   error
	orderCalls int
}

func (m *mockBackend) CreateCheckout(_ context.Context, _ string, req backend.CheckoutCreateRequest) (backend.CheckoutSession, error) {
	m.createReq = &req
	return m.createRes, m.createErr
}

func (m *mockBackend) VerifyCheckout(_ context.Context, _, _ string) (backend.CheckoutSession, error) {
	return m.verifyRes, m.verifyErr
}

func (m *mockBackend) ListAddresses(_ context.Context, _ string) ([]backend.Address, error) {
	return m.addrs, m.addrErr
}

func (m *mockBackend) CreateOrder(_ context.Context, _ string, req backend.OrderCreateRequest) (backend.OrderCreateResult, error) {
	m.orderCalls++
	m.orderReq = &req
	return m.orderRes, m.orderErr
}

func threeItemCart() cart.Cart {
	c := cart.Cart{
		Currency: "INR",
		Items: []cart.Item{
			{ItemID: "i1", Product: cart.Product{ID: "p1", Name: "Lip Balm", UnitPrice: 500}, Quantity: 2},
			{ItemID: "i2", Product: cart.Product{ID: "p2", Name: "Serum", UnitPrice: 1200}, Variant: &cart.Variant{Name: "Size", Option: "30ml", PriceAdjustment: 300}, Quantity: 1},
			{ItemID: "i3", Product: cart.Product{ID: "p3", Name: "Face Wash", UnitPrice: 250}, Quantity: 3},
		},
	}
	c.Recalculate()
	return c
}

func TestStartFromCart_ProjectsAllItems(t *testing.T) {
	mb := &mockBackend{createRes: backend.CheckoutSession{SessionID: "cs-1", Status: "created"}}
	o := NewOrchestrator(mb, nil, nil, "test")

	sess, err := o.StartFromCart(context.Background(), "tok", threeItemCart())
	if err != nil {
		t.Fatalf("StartFromCart failed: %v", err)
	}
	if sess.SessionID != "cs-1" {
		t.Errorf("Expected session cs-1, got %q", sess.SessionID)
	}

	req := mb.createReq
	if req == nil {
		t.Fatal("Expected CreateCheckout to be called")
	}
	if req.Source != "cart" {
		t.Errorf("Expected source cart, got %q", req.Source)
	}
	if len(req.Items) != 3 {
		t.Fatalf("Expected 3 projected items, got %d", len(req.Items))
	}
	if req.Items[1].Variant != "30ml" {
		t.Errorf("Expected variant option 30ml, got %q", req.Items[1].Variant)
	}
	if req.Items[1].Price != 1500 {
		t.Errorf("Expected variant-adjusted price 1500, got %d", req.Items[1].Price)
	}
	if req.Items[2].ItemTotal != 750 {
		t.Errorf("Expected item total 750, got %d", req.Items[2].ItemTotal)
	}
}

func TestStartFromCart_EmptyCart(t *testing.T) {
	mb := &mockBackend{}
	o := NewOrchestrator(mb, nil, nil, "test")

	_, err := o.StartFromCart(context.Background(), "tok", cart.Cart{Currency: "INR"})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("Expected ErrEmptyCart, got %v", err)
	}
	if mb.createReq != nil {
		t.Error("Expected no network call for an empty cart")
	}
}

func TestStartBuyNow_SingleItemDefaults(t *testing.T) {
	mb := &mockBackend{createRes: backend.CheckoutSession{SessionID: "cs-2", Status: "created"}}
	o := NewOrchestrator(mb, nil, nil, "test")

	it := cart.Item{Product: cart.Product{ID: "p9", Name: "Mask", UnitPrice: 400}}
	if _, err := o.StartBuyNow(context.Background(), "tok", it); err != nil {
		t.Fatalf("StartBuyNow failed: %v", err)
	}

	req := mb.createReq
	if req.Source != "buy_now" {
		t.Errorf("Expected source buy_now, got %q", req.Source)
	}
	if len(req.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(req.Items))
	}
	if req.Items[0].Quantity != 1 {
		t.Errorf("Expected quantity defaulted to 1, got %d", req.Items[0].Quantity)
	}
}

func TestLoad_VerifiesAndFetchesAddresses(t *testing.T) {
	mb := &mockBackend{
		verifyRes: backend.CheckoutSession{SessionID: "cs-1", Status: "verified"},
		addrs:     []backend.Address{{ID: "addr-1"}},
	}
	o := NewOrchestrator(mb, nil, nil, "test")

	sess, addrs, err := o.Load(context.Background(), "tok", "cs-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sess.SessionID != "cs-1" {
		t.Errorf("Expected session cs-1, got %q", sess.SessionID)
	}
	if len(addrs) != 1 {
		t.Errorf("Expected 1 address, got %d", len(addrs))
	}
}

func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		name      string
		sessionID string
		backend   *mockBackend
	}{
		{"missing session id", "", &mockBackend{}},
		{"verification error", "cs-1", &mockBackend{verifyErr: errors.New("boom")}},
		{"expired session", "cs-1", &mockBackend{verifyRes: backend.CheckoutSession{SessionID: "cs-1", Status: "expired"}}},
		{"errored session", "cs-1", &mockBackend{verifyRes: backend.CheckoutSession{SessionID: "cs-1", Status: "error"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOrchestrator(tt.backend, nil, nil, "test")
			_, _, err := o.Load(context.Background(), "tok", tt.sessionID)
			if !errors.Is(err, ErrInvalidSession) {
				t.Errorf("Expected ErrInvalidSession, got %v", err)
			}
		})
	}
}

func TestLoad_AddressFailureIsNotFatal(t *testing.T) {
	mb := &mockBackend{
		verifyRes: backend.CheckoutSession{SessionID: "cs-1", Status: "created"},
		addrErr:   errors.New("address service down"),
	}
	o := NewOrchestrator(mb, nil, nil, "test")

	sess, addrs, err := o.Load(context.Background(), "tok", "cs-1")
	if err != nil {
		t.Fatalf("Expected Load to succeed without addresses, got %v", err)
	}
	if sess.SessionID != "cs-1" {
		t.Errorf("Expected session cs-1, got %q", sess.SessionID)
	}
	if addrs != nil {
		t.Errorf("Expected nil addresses, got %v", addrs)
	}
}

func TestForm_BoundToSession(t *testing.T) {
	o := NewOrchestrator(&mockBackend{}, nil, nil, "test")

	f1 := o.Form("cs-1")
	f2 := o.Form("cs-1")
	if f1 != f2 {
		t.Error("Expected the same form for the same session")
	}
	if f1 == o.Form("cs-2") {
		t.Error("Expected a distinct form per session")
	}

	o.Discard("cs-1")
	if f1 == o.Form("cs-1") {
		t.Error("Expected a fresh form after Discard")
	}
}

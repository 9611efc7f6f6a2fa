package payment

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/harshsindhu0408/beauty-storefront/internal/audit"
	"github.com/harshsindhu0408/beauty-storefront/internal/backend"
	"github.com/harshsindhu0408/beauty-storefront/internal/session"
)

type mockVerifyBackend struct {
	calls int
	req   backend.PaymentVerifyRequest
	res   backend.PaymentVerifyResult
	err   error
}

func (m *mockVerifyBackend) VerifyPayment(_ context.Context, _ string, req backend.PaymentVerifyRequest) (backend.PaymentVerifyResult, error) {
	m.calls++
	m.req = req
	return m.res, m.err
}

type mockAuditor struct {
	attempts []audit.Attempt
}

func (m *mockAuditor) Record(_ context.Context, a audit.Attempt) error {
	m.attempts = append(m.attempts, a)
	return nil
}

func goodParams() CallbackParams {
	return CallbackParams{
		PaymentID:         "pay_123",
		PaymentLinkID:     "plink_456",
		PaymentLinkStatus: "paid",
		Signature:         "sig_789",
	}
}

func TestParseCallback(t *testing.T) {
	q := url.Values{}
	q.Set("razorpay_payment_id", "pay_123")
	q.Set("razorpay_payment_link_id", "plink_456")
	q.Set("razorpay_payment_link_status", "paid")
	q.Set("razorpay_signature", "sig_789")

	p := ParseCallback(q)
	if p != goodParams() {
		t.Errorf("Expected %+v, got %+v", goodParams(), p)
	}
}

func TestVerify_MissingParamsShortCircuits(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CallbackParams)
	}{
		{"missing payment id", func(p *CallbackParams) { p.PaymentID = "" }},
		{"missing signature", func(p *CallbackParams) { p.Signature = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mb := &mockVerifyBackend{}
			store := session.NewMemoryStore()
			_ = store.SetOrderID(context.Background(), "tok", "ord-1")
			v := NewVerifier(mb, store, nil, nil, "test")

			p := goodParams()
			tt.mutate(&p)
			res := v.Verify(context.Background(), "tok", p)

			if res.Status != StatusError {
				t.Errorf("Expected error status, got %q", res.Status)
			}
			if !strings.Contains(res.Message, "Invalid payment response") {
				t.Errorf("Expected missing-params message, got %q", res.Message)
			}
			if mb.calls != 0 {
				t.Errorf("Expected no network call, got %d", mb.calls)
			}
		})
	}
}

func TestVerify_MissingCorrelation(t *testing.T) {
	mb := &mockVerifyBackend{}
	v := NewVerifier(mb, session.NewMemoryStore(), nil, nil, "test")

	res := v.Verify(context.Background(), "tok", goodParams())
	if res.Status != StatusError {
		t.Errorf("Expected error status, got %q", res.Status)
	}
	if !strings.Contains(res.Message, "Order ID not found") {
		t.Errorf("Expected missing-order message, got %q", res.Message)
	}
	if mb.calls != 0 {
		t.Errorf("Expected no network call, got %d", mb.calls)
	}
}

func TestVerify_Success(t *testing.T) {
	mb := &mockVerifyBackend{res: backend.PaymentVerifyResult{Verified: true}}
	store := session.NewMemoryStore()
	_ = store.SetOrderID(context.Background(), "tok", "ord-1")
	aud := &mockAuditor{}
	v := NewVerifier(mb, store, aud, nil, "test")

	res := v.Verify(context.Background(), "tok", goodParams())
	if res.Status != StatusSuccess {
		t.Fatalf("Expected success, got %q (%s)", res.Status, res.Message)
	}
	if res.OrderID != "ord-1" {
		t.Errorf("Expected order id ord-1, got %q", res.OrderID)
	}
	if res.Redirect != "/order/ord-1" {
		t.Errorf("Expected order redirect, got %q", res.Redirect)
	}
	if mb.req.OrderID != "ord-1" || mb.req.PaymentID != "pay_123" || mb.req.Signature != "sig_789" {
		t.Errorf("Expected correlated verify request, got %+v", mb.req)
	}

	// The correlation is consumed on success.
	if _, err := store.OrderID(context.Background(), "tok"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Expected correlation cleared, got %v", err)
	}
	if len(aud.attempts) != 1 || aud.attempts[0].Outcome != string(StatusSuccess) {
		t.Errorf("Expected one success audit row, got %+v", aud.attempts)
	}
}

func TestVerify_ReplayAfterSuccessFails(t *testing.T) {
	mb := &mockVerifyBackend{res: backend.PaymentVerifyResult{Verified: true}}
	store := session.NewMemoryStore()
	_ = store.SetOrderID(context.Background(), "tok", "ord-1")
	v := NewVerifier(mb, store, nil, nil, "test")

	first := v.Verify(context.Background(), "tok", goodParams())
	if first.Status != StatusSuccess {
		t.Fatalf("Expected first callback to succeed, got %q", first.Status)
	}

	// The gateway retries the redirect; the consumed correlation makes the
	// replay land on error instead of a duplicate success.
	second := v.Verify(context.Background(), "tok", goodParams())
	if second.Status != StatusError {
		t.Errorf("Expected replay to fail, got %q", second.Status)
	}
	if mb.calls != 1 {
		t.Errorf("Expected one network call total, got %d", mb.calls)
	}
}

func TestVerify_BackendRejection(t *testing.T) {
	mb := &mockVerifyBackend{res: backend.PaymentVerifyResult{Verified: false, Message: "signature mismatch"}}
	store := session.NewMemoryStore()
	_ = store.SetOrderID(context.Background(), "tok", "ord-1")
	aud := &mockAuditor{}
	v := NewVerifier(mb, store, aud, nil, "test")

	res := v.Verify(context.Background(), "tok", goodParams())
	if res.Status != StatusError {
		t.Errorf("Expected error status, got %q", res.Status)
	}
	if res.Message != "signature mismatch" {
		t.Errorf("Expected server message passed through, got %q", res.Message)
	}
	if len(aud.attempts) != 1 || aud.attempts[0].Outcome != string(StatusError) {
		t.Errorf("Expected one error audit row, got %+v", aud.attempts)
	}
}

func TestVerify_NetworkErrorIsGeneric(t *testing.T) {
	mb := &mockVerifyBackend{err: errors.New("connection refused")}
	store := session.NewMemoryStore()
	_ = store.SetOrderID(context.Background(), "tok", "ord-1")
	v := NewVerifier(mb, store, nil, nil, "test")

	res := v.Verify(context.Background(), "tok", goodParams())
	if res.Status != StatusError {
		t.Errorf("Expected error status, got %q", res.Status)
	}
	if !strings.Contains(res.Message, "Payment verification failed") {
		t.Errorf("Expected generic failure message, got %q", res.Message)
	}
	// Raw transport errors never leak to the shopper.
	if strings.Contains(res.Message, "connection refused") {
		t.Errorf("Expected transport error hidden, got %q", res.Message)
	}
}

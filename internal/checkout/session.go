package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/harshsindhu0408/beauty-storefront/internal/backend"
	"github.com/harshsindhu0408/beauty-storefront/internal/cart"
	"github.com/harshsindhu0408/beauty-storefront/internal/events"
	"github.com/harshsindhu0408/beauty-storefront/internal/session"
)

var (
	ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

	// ErrInvalidSession is the hard-fail: missing id, server rejection or a
	// session already expired/errored. The caller routes to the checkout
	// error view, there is no retry.
	ErrInvalidSession = errors.New("invalid checkout session")

	ErrSubmitInFlight = errors.New("order submission already in progress")

	// ErrFormIncomplete rejects a submission from a form that has not
	// cleared every step.
	ErrFormIncomplete = errors.New("checkout form is incomplete")
)

// Backend is the slice of the remote API the orchestrator needs.
type Backend interface {
	CreateCheckout(ctx context.Context, token string, req backend.CheckoutCreateRequest) (backend.CheckoutSession, error)
	VerifyCheckout(ctx context.Context, token, sessionID string) (backend.CheckoutSession, error)
	ListAddresses(ctx context.Context, token string) ([]backend.Address, error)
	CreateOrder(ctx context.Context, token string, req backend.OrderCreateRequest) (backend.OrderCreateResult, error)
}

// Orchestrator drives one checkout attempt: session creation, page-load
// verification, the form machine, and final submission. It owns each form for
// the life of its session and discards it on success.
type Orchestrator struct {
	backend  Backend
	sessions session.Store
	producer events.Publisher
	service  string

	mu    sync.Mutex
	forms map[string]*Form
}

func NewOrchestrator(b Backend, sessions session.Store, producer events.Publisher, service string) *Orchestrator {
	return &Orchestrator{
		backend:  b,
		sessions: sessions,
		producer: producer,
		service:  service,
		forms:    make(map[string]*Form),
	}
}

// ProjectCart builds the minimal item projection sent at session creation.
func ProjectCart(c cart.Cart) []backend.CheckoutItem {
	out := make([]backend.CheckoutItem, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, ProjectItem(it))
	}
	return out
}

func ProjectItem(it cart.Item) backend.CheckoutItem {
	p := backend.CheckoutItem{
		ProductID: it.Product.ID,
		Name:      it.Product.Name,
		Images:    it.Product.Images,
		Quantity:  it.Quantity,
		Price:     it.UnitTotal(),
		ItemTotal: it.ItemTotal,
	}
	if it.Variant != nil {
		p.Variant = it.Variant.Option
	}
	return p
}

// StartFromCart opens a checkout session over the whole cart.
func (o *Orchestrator) StartFromCart(ctx context.Context, token string, c cart.Cart) (backend.CheckoutSession, error) {
	if c.IsEmpty() {
		return backend.CheckoutSession{}, ErrEmptyCart
	}
	return o.start(ctx, token, backend.CheckoutCreateRequest{
		Items:  ProjectCart(c),
		Source: "cart",
	}, c.Subtotal)
}

// StartBuyNow opens a checkout session over a single product.
func (o *Orchestrator) StartBuyNow(ctx context.Context, token string, it cart.Item) (backend.CheckoutSession, error) {
	if it.Quantity <= 0 {
		it.Quantity = 1
	}
	it.ItemTotal = int64(it.Quantity) * it.UnitTotal()
	return o.start(ctx, token, backend.CheckoutCreateRequest{
		Items:  []backend.CheckoutItem{ProjectItem(it)},
		Source: "buy_now",
	}, it.ItemTotal)
}

func (o *Orchestrator) start(ctx context.Context, token string, req backend.CheckoutCreateRequest, subtotal int64) (backend.CheckoutSession, error) {
	sess, err := o.backend.CreateCheckout(ctx, token, req)
	if err != nil {
		return backend.CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}
	events.Emit(o.producer, o.service, events.EventCheckoutCreated, "", sess.SessionID, events.CheckoutCreatedPayload{
		SessionID: sess.SessionID,
		Source:    req.Source,
		ItemCount: len(req.Items),
		Subtotal:  subtotal,
	})
	return sess, nil
}

// Load verifies the session server-side and fetches saved addresses in
// parallel. Verification failure is terminal (ErrInvalidSession); an address
// fetch failure only costs the saved-address list.
func (o *Orchestrator) Load(ctx context.Context, token, sessionID string) (backend.CheckoutSession, []backend.Address, error) {
	if sessionID == "" {
		return backend.CheckoutSession{}, nil, ErrInvalidSession
	}

	type verifyRes struct {
		sess backend.CheckoutSession
		err  error
	}
	type addrRes struct {
		addrs []backend.Address
		err   error
	}
	vCh := make(chan verifyRes, 1)
	aCh := make(chan addrRes, 1)
	go func() {
		sess, err := o.backend.VerifyCheckout(ctx, token, sessionID)
		vCh <- verifyRes{sess, err}
	}()
	go func() {
		addrs, err := o.backend.ListAddresses(ctx, token)
		aCh <- addrRes{addrs, err}
	}()
	v := <-vCh
	a := <-aCh

	if v.err != nil {
		return backend.CheckoutSession{}, nil, fmt.Errorf("%w: %v", ErrInvalidSession, v.err)
	}
	if !Status(v.sess.Status).Usable() {
		return backend.CheckoutSession{}, nil, fmt.Errorf("%w: session status %q", ErrInvalidSession, v.sess.Status)
	}
	if a.err != nil {
		log.Printf("warn: list addresses: %v", a.err)
		a.addrs = nil
	}
	return v.sess, a.addrs, nil
}

// Form returns the form bound to the session, creating it on first use.
func (o *Orchestrator) Form(sessionID string) *Form {
	o.mu.Lock()
	defer o.mu.Unlock()
	f, ok := o.forms[sessionID]
	if !ok {
		f = NewForm()
		o.forms[sessionID] = f
	}
	return f
}

// Discard drops the form; called on successful submission or abandonment.
func (o *Orchestrator) Discard(sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.forms, sessionID)
}

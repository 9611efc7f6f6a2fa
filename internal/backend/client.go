package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/harshsindhu0408/beauty-storefront/internal/cart"
)

var (
	// ErrSessionExpired signals a 401: the session has been torn down and the
	// caller should route the user to the auth entry point.
	ErrSessionExpired = errors.New("backend: session expired")

	// ErrNotFound signals a 404: the resource is absent, not broken.
	ErrNotFound = errors.New("backend: not found")
)

// TeardownFunc is invoked once when the remote API answers 401, before
// ErrSessionExpired is returned. It clears everything the session persisted.
type TeardownFunc func(ctx context.Context, token string)

// Client is the single adapter through which every remote API call goes.
// It attaches the bearer token, decodes the {success,message,data} envelope
// and maps HTTP failures onto the small error taxonomy above. Calls are never
// retried here; retrying is the caller's decision (no caller does).
type Client struct {
	http     *http.Client
	baseURL  string
	teardown TeardownFunc
}

func NewClient(baseURL string, teardown TeardownFunc) *Client {
	return &Client{
		http:     &http.Client{},
		baseURL:  baseURL,
		teardown: teardown,
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, body any) (*Envelope, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("warn: %s %s: %v", method, path, err)
		return nil, fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		log.Printf("warn: %s %s: 401, tearing down session", method, path)
		if c.teardown != nil {
			c.teardown(ctx, token)
		}
		return nil, ErrSessionExpired
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 400:
		var env Envelope
		_ = json.NewDecoder(resp.Body).Decode(&env)
		msg := env.Message
		if msg == "" {
			msg = "status " + strconv.Itoa(resp.StatusCode)
		}
		log.Printf("warn: %s %s: %s", method, path, msg)
		return nil, fmt.Errorf("backend: %s", msg)
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		log.Printf("warn: %s %s: bad response body: %v", method, path, err)
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &env, nil
}

// call runs the request and decodes env.Data into out, treating an
// unsuccessful envelope as an error. Endpoints where success=false is a
// domain answer rather than a failure (payment verification) use do directly.
func (c *Client) call(ctx context.Context, method, path, token string, body, out any) error {
	env, err := c.do(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request rejected"
		}
		return fmt.Errorf("backend: %s", msg)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode %s payload: %w", path, err)
		}
	}
	return nil
}

// --- cart ---

func (c *Client) FetchCart(ctx context.Context, token string) (cart.Cart, error) {
	var out cart.Cart
	if err := c.call(ctx, http.MethodGet, "/cart", token, nil, &out); err != nil {
		return cart.Cart{}, err
	}
	return out, nil
}

func (c *Client) AddCartItem(ctx context.Context, token, productID, variant string, quantity int) (cart.Cart, error) {
	body := map[string]any{"product_id": productID, "quantity": quantity}
	if variant != "" {
		body["variant"] = variant
	}
	var out cart.Cart
	if err := c.call(ctx, http.MethodPost, "/cart", token, body, &out); err != nil {
		return cart.Cart{}, err
	}
	return out, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, token, itemID string, quantity int) (cart.Cart, error) {
	body := map[string]int{"quantity": quantity}
	var out cart.Cart
	if err := c.call(ctx, http.MethodPatch, "/cart/"+itemID, token, body, &out); err != nil {
		return cart.Cart{}, err
	}
	return out, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, token, itemID string) (cart.Cart, error) {
	var out cart.Cart
	if err := c.call(ctx, http.MethodDelete, "/cart/"+itemID, token, nil, &out); err != nil {
		return cart.Cart{}, err
	}
	return out, nil
}

// --- checkout / orders ---

func (c *Client) CreateCheckout(ctx context.Context, token string, req CheckoutCreateRequest) (CheckoutSession, error) {
	var out CheckoutSession
	if err := c.call(ctx, http.MethodPost, "/checkout", token, req, &out); err != nil {
		return CheckoutSession{}, err
	}
	return out, nil
}

// VerifyCheckout validates a session id server-side. A response without the
// success and data markers counts as a verification failure.
func (c *Client) VerifyCheckout(ctx context.Context, token, sessionID string) (CheckoutSession, error) {
	body := map[string]string{"session_id": sessionID}
	env, err := c.do(ctx, http.MethodPost, "/checkout/verify", token, body)
	if err != nil {
		return CheckoutSession{}, err
	}
	if !env.Success || len(env.Data) == 0 {
		msg := env.Message
		if msg == "" {
			msg = "invalid checkout session"
		}
		return CheckoutSession{}, fmt.Errorf("backend: %s", msg)
	}
	var out CheckoutSession
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return CheckoutSession{}, fmt.Errorf("decode checkout session: %w", err)
	}
	return out, nil
}

func (c *Client) ListAddresses(ctx context.Context, token string) ([]Address, error) {
	var out []Address
	err := c.call(ctx, http.MethodGet, "/address", token, nil, &out)
	if errors.Is(err, ErrNotFound) {
		return nil, nil // no saved addresses yet
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateOrder(ctx context.Context, token string, req OrderCreateRequest) (OrderCreateResult, error) {
	var out OrderCreateResult
	if err := c.call(ctx, http.MethodPost, "/order/create", token, req, &out); err != nil {
		return OrderCreateResult{}, err
	}
	return out, nil
}

func (c *Client) Order(ctx context.Context, token, orderID string) (Order, error) {
	var out Order
	if err := c.call(ctx, http.MethodGet, "/order/"+orderID, token, nil, &out); err != nil {
		return Order{}, err
	}
	return out, nil
}

func (c *Client) MyOrders(ctx context.Context, token string) ([]Order, error) {
	var out []Order
	err := c.call(ctx, http.MethodGet, "/order/my-orders", token, nil, &out)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// --- payment ---

// VerifyPayment reports the gateway's verdict. success=false in the envelope
// is a failed verification, not a transport error.
func (c *Client) VerifyPayment(ctx context.Context, token string, req PaymentVerifyRequest) (PaymentVerifyResult, error) {
	env, err := c.do(ctx, http.MethodPost, "/payment/verify", token, req)
	if err != nil {
		return PaymentVerifyResult{}, err
	}
	return PaymentVerifyResult{Verified: env.Success, Message: env.Message}, nil
}

// --- account / auth ---

func (c *Client) Profile(ctx context.Context, token string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.call(ctx, http.MethodGet, "/profile", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	var out AuthResult
	if err := c.call(ctx, http.MethodPost, "/auth/login", "", creds, &out); err != nil {
		return AuthResult{}, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResult, error) {
	var out AuthResult
	if err := c.call(ctx, http.MethodPost, "/auth/register", "", req, &out); err != nil {
		return AuthResult{}, err
	}
	return out, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.call(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

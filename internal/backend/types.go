package backend

import "encoding/json"

// Envelope is the response frame every remote API endpoint uses.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// CheckoutItem is the minimal item projection sent when a checkout session is
// created and echoed back inside the session payload.
type CheckoutItem struct {
	ProductID string   `json:"product_id"`
	Name      string   `json:"name"`
	Images    []string `json:"images,omitempty"`
	Quantity  int      `json:"quantity"`
	Price     int64    `json:"price"`
	Variant   string   `json:"variant,omitempty"`
	ItemTotal int64    `json:"item_total"`
}

type CheckoutCreateRequest struct {
	Items  []CheckoutItem `json:"items"`
	Source string         `json:"source"` // "cart" | "buy_now"
}

type CheckoutSession struct {
	SessionID string         `json:"session_id"`
	Status    string         `json:"status"`
	Items     []CheckoutItem `json:"items"`
}

type Address struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country,omitempty"`
}

type OrderCreateRequest struct {
	SessionID       string         `json:"session_id"`
	Items           []CheckoutItem `json:"items"`
	ShippingAddress Address        `json:"shipping_address"`
	BillingAddress  Address        `json:"billing_address"`
	ShippingMethod  string         `json:"shipping_method"`
	PaymentMethod   string         `json:"payment_method"` // "online" | "cod"
	Notes           string         `json:"notes,omitempty"`
	IdempotencyKey  string         `json:"idempotency_key"`
}

type OrderCreateResult struct {
	OrderID     string `json:"order_id"`
	GrandTotal  int64  `json:"grand_total"`
	PaymentLink string `json:"payment_link,omitempty"`
}

// Order is read-only from this service's perspective.
type Order struct {
	ID         string         `json:"id"`
	Status     string         `json:"status"`
	GrandTotal int64          `json:"grand_total"`
	Items      []CheckoutItem `json:"items"`
	CreatedAt  string         `json:"created_at"`
}

type PaymentVerifyRequest struct {
	OrderID           string `json:"order_id"`
	PaymentID         string `json:"razorpay_payment_id"`
	PaymentLinkID     string `json:"razorpay_payment_link_id"`
	PaymentLinkStatus string `json:"razorpay_payment_link_status"`
	Signature         string `json:"razorpay_signature"`
}

type PaymentVerifyResult struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type AuthResult struct {
	AccessToken string `json:"accessToken"`
}

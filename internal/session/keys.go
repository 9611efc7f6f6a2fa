package session

import "time"

const (
	// Order-id correlation across the payment redirect: session:{token}:order -> order_id
	keyOrderCorrelation = "session:%s:order"

	// Last server-confirmed cart: session:%s:cart -> JSON cart
	keyCartCache = "session:%s:cart"
)

var (
	// The correlation normally lives only from order submission to callback
	// verification; the TTL is a guard against abandoned checkouts.
	TTLOrderCorrelation = 24 * time.Hour

	TTLCartCache = 15 * time.Minute
)

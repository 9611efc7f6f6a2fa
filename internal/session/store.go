package session

import (
	"context"
	"errors"

	"github.com/harshsindhu0408/beauty-storefront/internal/cart"
)

// ErrNotFound is returned when a key holds nothing for this session.
var ErrNotFound = errors.New("session: not found")

// Store is the per-session state this service owns: the order-id correlation
// that bridges the payment gateway redirect, and a cache of the last
// server-confirmed cart. Keyed by the bearer token the session carries.
//
// Clear wipes everything for the session and is invoked on logout and on a
// 401 from the remote API.
type Store interface {
	SetOrderID(ctx context.Context, token, orderID string) error
	OrderID(ctx context.Context, token string) (string, error)
	ClearOrderID(ctx context.Context, token string) error

	CacheCart(ctx context.Context, token string, c cart.Cart) error
	CachedCart(ctx context.Context, token string) (cart.Cart, error)

	Clear(ctx context.Context, token string) error
}

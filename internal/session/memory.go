package session

import (
	"context"
	"sync"

	"github.com/harshsindhu0408/beauty-storefront/internal/cart"
)

// MemoryStore is an in-process Store for tests and local development.
type MemoryStore struct {
	mu     sync.Mutex
	orders map[string]string
	carts  map[string]cart.Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[string]string),
		carts:  make(map[string]cart.Cart),
	}
}

func (s *MemoryStore) SetOrderID(_ context.Context, token, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[token] = orderID
	return nil
}

func (s *MemoryStore) OrderID(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.orders[token]
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

func (s *MemoryStore) ClearOrderID(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, token)
	return nil
}

func (s *MemoryStore) CacheCart(_ context.Context, token string, c cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[token] = c.Clone()
	return nil
}

func (s *MemoryStore) CachedCart(_ context.Context, token string) (cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[token]
	if !ok {
		return cart.Cart{}, ErrNotFound
	}
	return c.Clone(), nil
}

func (s *MemoryStore) Clear(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, token)
	delete(s.carts, token)
	return nil
}

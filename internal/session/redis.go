package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harshsindhu0408/beauty-storefront/internal/cart"
)

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) SetOrderID(ctx context.Context, token, orderID string) error {
	key := fmt.Sprintf(keyOrderCorrelation, token)
	if err := s.client.Set(ctx, key, orderID, TTLOrderCorrelation).Err(); err != nil {
		return fmt.Errorf("redis set order correlation: %w", err)
	}
	return nil
}

func (s *RedisStore) OrderID(ctx context.Context, token string) (string, error) {
	key := fmt.Sprintf(keyOrderCorrelation, token)
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get order correlation: %w", err)
	}
	return v, nil
}

func (s *RedisStore) ClearOrderID(ctx context.Context, token string) error {
	key := fmt.Sprintf(keyOrderCorrelation, token)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del order correlation: %w", err)
	}
	return nil
}

func (s *RedisStore) CacheCart(ctx context.Context, token string, c cart.Cart) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	key := fmt.Sprintf(keyCartCache, token)
	if err := s.client.Set(ctx, key, b, TTLCartCache).Err(); err != nil {
		return fmt.Errorf("redis set cart cache: %w", err)
	}
	return nil
}

func (s *RedisStore) CachedCart(ctx context.Context, token string) (cart.Cart, error) {
	key := fmt.Sprintf(keyCartCache, token)
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.Cart{}, ErrNotFound
	}
	if err != nil {
		return cart.Cart{}, fmt.Errorf("redis get cart cache: %w", err)
	}
	var c cart.Cart
	if err := json.Unmarshal(b, &c); err != nil {
		return cart.Cart{}, fmt.Errorf("unmarshal cart: %w", err)
	}
	return c, nil
}

func (s *RedisStore) Clear(ctx context.Context, token string) error {
	keys := []string{
		fmt.Sprintf(keyOrderCorrelation, token),
		fmt.Sprintf(keyCartCache, token),
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis clear session: %w", err)
	}
	return nil
}

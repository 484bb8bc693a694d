package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Store keeps opaque values for a bounded time.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Nop never stores anything; every Get misses.
type Nop struct{}

// Get implements Store.
func (Nop) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

// Set implements Store.
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete implements Store.
func (Nop) Delete(context.Context, string) error { return nil }

package cache

import (
	"context"
	"time"
)

// Store is a string key/value store with per-entry expiry.
type Store interface {
	// Get returns the value stored under key. A missing or expired key returns ok=false.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key for ttl. A non-positive ttl keeps the entry until Close.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}

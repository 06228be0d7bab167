// Package cache is the response cache. Values are stored as JSON so the
// memory and Redis drivers behave the same for callers.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shashiranjanraj/catalog/config"
	"github.com/shashiranjanraj/catalog/pkg/metrics"
)

// Store is implemented by every cache driver.
type Store interface {
	// Get decodes the value under key into dest and reports a hit.
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

// New builds the driver named by CACHE_DRIVER. "none" returns a Store that
// never hits.
func New() (Store, error) {
	switch driver := config.CacheDriver(); driver {
	case "memory":
		return NewMemory(time.Minute), nil
	case "redis":
		return NewRedis(config.RedisAddr(), config.RedisPassword())
	case "none", "":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("cache: unsupported CACHE_DRIVER %q (supported: memory, redis, none)", driver)
	}
}

// Nop is a Store that stores nothing.
type Nop struct{}

func (Nop) Get(context.Context, string, any) bool                 { return false }
func (Nop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Nop) DeletePrefix(context.Context, string) error            { return nil }
func (Nop) Close() error                                          { return nil }

// decode keeps numbers as json.Number so a cached value re-encodes to the
// same JSON it was stored from.
func decode(data []byte, dest any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(dest)
}

func record(driver string, hit bool) bool {
	metrics.RecordCache(driver, hit)
	return hit
}

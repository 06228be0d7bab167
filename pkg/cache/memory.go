package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

type item struct {
	data    []byte
	expires time.Time
}

// Memory is an in-process Store with per-key expiry. A janitor goroutine
// drops expired keys until Close is called.
type Memory struct {
	mu    sync.RWMutex
	items map[string]item
	stop  chan struct{}
	once  sync.Once
}

// NewMemory starts a Memory store that sweeps expired keys every interval.
func NewMemory(interval time.Duration) *Memory {
	m := &Memory{items: make(map[string]item), stop: make(chan struct{})}
	go m.janitor(interval)
	return m
}

func (m *Memory) Get(_ context.Context, key string, dest any) bool {
	m.mu.RLock()
	it, ok := m.items[key]
	m.mu.RUnlock()

	if !ok || time.Now().After(it.expires) {
		return record("memory", false)
	}
	if err := decode(it.data, dest); err != nil {
		return record("memory", false)
	}
	return record("memory", true)
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.items[key] = item{data: data, expires: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

// Len returns the number of stored keys, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Memory) Close() error {
	m.once.Do(func() { close(m.stop) })
	return nil
}

func (m *Memory) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

func (m *Memory) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, it := range m.items {
		if now.After(it.expires) {
			delete(m.items, key)
		}
	}
}

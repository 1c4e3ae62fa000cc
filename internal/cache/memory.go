package cache

import (
	"context"
	"sync"
	"time"
)

const defaultJanitorInterval = time.Minute

// entry stores one cached payload with its expiry instant.
type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Store. Reads and writes for unrelated keys
// do not block one another beyond the map lock; a read racing a write
// for the same key observes either the old or the new value.
type Memory struct {
	mu      sync.RWMutex
	items   map[string]entry
	stop    chan struct{}
	stopped sync.Once
}

// NewMemory creates a Memory store and starts a janitor goroutine that
// evicts expired entries in the background. Call Close to stop it.
func NewMemory() *Memory {
	m := &Memory{
		items: make(map[string]entry),
		stop:  make(chan struct{}),
	}
	go m.janitor(defaultJanitorInterval)
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	m.items[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
}

func (m *Memory) Delete(_ context.Context, key string) {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
}

// Len returns the number of entries, including not-yet-evicted expired
// ones.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Close stops the janitor goroutine.
func (m *Memory) Close() {
	m.stopped.Do(func() { close(m.stop) })
}

func (m *Memory) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for k, e := range m.items {
				if now.After(e.expiresAt) {
					delete(m.items, k)
				}
			}
			m.mu.Unlock()
		}
	}
}

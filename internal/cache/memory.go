package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// DefaultMaxEntries bounds a MemoryCache built with a non-positive size.
const DefaultMaxEntries = 10000

// MemoryCache is the in-process fallback used when REDIS_ADDR is unset, and in tests.
// It holds at most maxEntries values; expired entries are swept from the oldest
// end on every Set, and the oldest live entry is evicted when the cache is full.
type MemoryCache struct {
	mu         sync.RWMutex
	data       map[string]*list.Element
	order      *list.List
	maxEntries int
	now        func() time.Time
}

type memoryEntry struct {
	key       string
	value     string
	expiresAt time.Time
}

func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryCache{
		data:       make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	el, ok := m.data[key]
	var e memoryEntry
	if ok {
		e = *el.Value.(*memoryEntry)
	}
	m.mu.RUnlock()
	if !ok {
		return "", false
	}
	if e.expired(m.now()) {
		m.mu.Lock()
		if el, ok := m.data[key]; ok && el.Value.(*memoryEntry).expired(m.now()) {
			m.remove(el)
		}
		m.mu.Unlock()
		return "", false
	}
	return e.value, true
}

func (m *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	now := m.now()
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.data[key]; ok {
		e := el.Value.(*memoryEntry)
		e.value = value
		e.expiresAt = expiresAt
		m.order.MoveToBack(el)
		return nil
	}

	for front := m.order.Front(); front != nil && front.Value.(*memoryEntry).expired(now); front = m.order.Front() {
		m.remove(front)
	}
	for m.order.Len() >= m.maxEntries {
		m.remove(m.order.Front())
	}

	m.data[key] = m.order.PushBack(&memoryEntry{key: key, value: value, expiresAt: expiresAt})
	return nil
}

// Len reports the number of stored entries, expired or not.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.order.Len()
}

func (m *MemoryCache) remove(el *list.Element) {
	m.order.Remove(el)
	delete(m.data, el.Value.(*memoryEntry).key)
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryEntry struct {
	value    []byte
	storedAt time.Time
	expires  time.Time // zero: never
}

// MemoryStore is an in-process Store with per-entry expiry and an optional
// entry cap. When full, expired entries go first, then the oldest writes.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMaxEntries caps the number of stored keys; 0 means unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(m *MemoryStore) {
		m.maxEntries = n
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) {
		m.now = now
	}
}

// NewMemoryStore creates an empty in-process cache.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a copy of the stored value.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if m.expired(e) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e := memoryEntry{value: append([]byte(nil), value...), storedAt: now}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	m.entries[key] = e
	m.evictIfNeeded()
	return nil
}

func (m *MemoryStore) Forget(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// ForgetPattern deletes every key matching pattern.
func (m *MemoryStore) ForgetPattern(_ context.Context, pattern string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for key := range m.entries {
		if MatchPattern(pattern, key) {
			delete(m.entries, key)
			n++
		}
	}
	return n, nil
}

// Flush drops every entry.
func (m *MemoryStore) Flush(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Keys returns the sorted keys of unexpired entries.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.entries))
	for k, e := range m.entries {
		if !m.expired(e) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (m *MemoryStore) expired(e memoryEntry) bool {
	return !e.expires.IsZero() && !m.now().Before(e.expires)
}

// evictIfNeeded must be called with mu held.
func (m *MemoryStore) evictIfNeeded() {
	if m.maxEntries <= 0 || len(m.entries) <= m.maxEntries {
		return
	}
	for k, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, k)
		}
	}
	if len(m.entries) <= m.maxEntries {
		return
	}

	type aged struct {
		key      string
		storedAt time.Time
	}
	infos := make([]aged, 0, len(m.entries))
	for k, e := range m.entries {
		infos = append(infos, aged{key: k, storedAt: e.storedAt})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].storedAt.Equal(infos[j].storedAt) {
			return infos[i].key < infos[j].key
		}
		return infos[i].storedAt.Before(infos[j].storedAt)
	})
	for len(infos) > m.maxEntries {
		delete(m.entries, infos[0].key)
		infos = infos[1:]
	}
}

var (
	_ Store            = (*MemoryStore)(nil)
	_ PatternForgetter = (*MemoryStore)(nil)
	_ Flusher          = (*MemoryStore)(nil)
)

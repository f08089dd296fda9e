package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestMemoryStoreGetPutForget(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte("v1")
	require.NoError(t, m.Put(ctx, "k", value, 0))
	value[0] = 'x'

	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), got, "stored value must not alias the caller's slice")

	got[0] = 'y'
	again, _, _ := m.Get(ctx, "k")
	assert.Equal(t, []byte("v1"), again, "returned value must not alias the stored slice")

	require.NoError(t, m.Forget(ctx, "k"))
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	m := NewMemoryStore(WithClock(clock.now))

	require.NoError(t, m.Put(ctx, "short", []byte("1"), time.Minute))
	require.NoError(t, m.Put(ctx, "forever", []byte("2"), 0))

	clock.advance(59 * time.Second)
	_, ok, _ := m.Get(ctx, "short")
	assert.True(t, ok)

	clock.advance(time.Second)
	_, ok, _ = m.Get(ctx, "short")
	assert.False(t, ok, "entry expires exactly at its ttl")

	clock.advance(24 * 365 * time.Hour)
	_, ok, _ = m.Get(ctx, "forever")
	assert.True(t, ok)
}

func TestMemoryStoreMaxEntriesEvictsOldest(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	m := NewMemoryStore(WithMaxEntries(3), WithClock(clock.now))

	for i := 0; i < 5; i++ {
		require.NoError(t, m.Put(ctx, fmt.Sprintf("k%d", i), []byte("v"), 0))
		clock.advance(time.Second)
	}

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []string{"k2", "k3", "k4"}, m.Keys())
}

func TestMemoryStoreMaxEntriesDropsExpiredFirst(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	m := NewMemoryStore(WithMaxEntries(2), WithClock(clock.now))

	require.NoError(t, m.Put(ctx, "old", []byte("v"), 0))
	clock.advance(time.Second)
	require.NoError(t, m.Put(ctx, "brief", []byte("v"), time.Second))
	clock.advance(2 * time.Second)
	require.NoError(t, m.Put(ctx, "new", []byte("v"), 0))

	assert.Equal(t, []string{"new", "old"}, m.Keys())
}

func TestMemoryStoreForgetPatternAndFlush(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	for _, k := range []string{"resolve:invoice:1", "resolve:invoice:2", "resolve:ticket:1", "learn:patterns:5"} {
		require.NoError(t, m.Put(ctx, k, []byte("v"), 0))
	}

	n, err := m.ForgetPattern(ctx, "resolve:invoice:*")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"learn:patterns:5", "resolve:ticket:1"}, m.Keys())

	require.NoError(t, m.Flush(ctx))
	assert.Equal(t, 0, m.Len())
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern, key string
		want         bool
	}{
		{"resolve:*", "resolve:ticket:1", true},
		{"resolve:*", "learn:resolve:1", false},
		{"*:patterns:*", "learn:patterns:7", true},
		{"learn:global", "learn:global", true},
		{"learn:global", "learn:global2", false},
		{"a.b*", "axb", false},
		{"*", "", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchPattern(tt.pattern, tt.key), "%s ~ %s", tt.pattern, tt.key)
	}
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	var s NullStore
	require.NoError(t, s.Put(ctx, "k", []byte("v"), time.Minute))
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, s.Forget(ctx, "k"))
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/palette/errors"
)

// brokenStore fails every call, like an unreachable backend
type brokenStore struct{}

var errBackendDown = errors.New("backend down")

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errBackendDown
}
func (brokenStore) Put(context.Context, string, []byte, time.Duration) error { return errBackendDown }
func (brokenStore) Forget(context.Context, string) error                     { return errBackendDown }

// flushOnlyStore supports Flush but not pattern eviction
type flushOnlyStore struct {
	NullStore
	flushed bool
}

func (f *flushOnlyStore) Flush(context.Context) error {
	f.flushed = true
	return nil
}

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, PutJSON(ctx, m, "r", record{Name: "acme", Count: 3}, time.Minute))

	got, ok, err := GetJSON[record](ctx, m, "r")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, record{Name: "acme", Count: 3}, got)

	_, ok, err = GetJSON[record](ctx, m, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetJSONMarksFailures(t *testing.T) {
	ctx := context.Background()

	_, _, err := GetJSON[record](ctx, brokenStore{}, "r")
	assert.True(t, errors.IsCacheUnavailable(err))
	assert.True(t, errors.Is(err, errBackendDown))

	m := NewMemoryStore()
	require.NoError(t, m.Put(ctx, "garbage", []byte("{not json"), 0))
	_, ok, err := GetJSON[record](ctx, m, "garbage")
	assert.False(t, ok)
	assert.True(t, errors.IsCacheUnavailable(err), "undecodable entries count as cache failures")

	err = PutJSON(ctx, brokenStore{}, "r", record{}, time.Minute)
	assert.True(t, errors.IsCacheUnavailable(err))
}

func TestRememberComputesOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	calls := 0
	compute := func(context.Context) (*record, error) {
		calls++
		return &record{Name: "acme"}, nil
	}

	first, err := Remember(ctx, m, "k", time.Minute, compute)
	require.NoError(t, err)
	second, err := Remember(ctx, m, "k", time.Minute, compute)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestRememberCachesNil(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	calls := 0
	compute := func(context.Context) (*record, error) {
		calls++
		return nil, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Remember(ctx, m, "absent", time.Minute, compute)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	assert.Equal(t, 1, calls)
}

func TestRememberDegradesWithBrokenCache(t *testing.T) {
	ctx := context.Background()
	calls := 0
	compute := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 2; i++ {
		got, err := Remember(ctx, brokenStore{}, "k", time.Minute, compute)
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	}
	assert.Equal(t, 2, calls)
}

func TestRememberDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	boom := errors.New("store failed")

	_, err := Remember(ctx, m, "k", time.Minute, func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, m.Len())
}

func TestForgetMatching(t *testing.T) {
	ctx := context.Background()

	m := NewMemoryStore()
	require.NoError(t, m.Put(ctx, "resolve:ticket:1", []byte("v"), 0))
	require.NoError(t, m.Put(ctx, "learn:global", []byte("v"), 0))
	n, err := ForgetMatching(ctx, m, "resolve:*", false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"learn:global"}, m.Keys())

	f := &flushOnlyStore{}
	_, err = ForgetMatching(ctx, f, "resolve:*", false)
	assert.True(t, errors.IsCacheUnavailable(err))
	assert.False(t, f.flushed, "ordinary invalidation never flushes")

	n, err = ForgetMatching(ctx, f, "resolve:*", true)
	require.NoError(t, err)
	assert.Equal(t, -1, n)
	assert.True(t, f.flushed)

	_, err = ForgetMatching(ctx, NullStore{}, "resolve:*", true)
	assert.True(t, errors.IsCacheUnavailable(err))
}

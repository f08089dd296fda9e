package cache

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	palettetest "github.com/teranos/palette/internal/testing"
)

func TestSQLStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	s := NewSQLStore(palettetest.CreateTestDB(t), WithSQLClock(clock.now))

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "k", []byte("v1"), time.Minute))
	require.NoError(t, s.Put(ctx, "k", []byte("v2"), time.Minute))

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), got)

	clock.advance(time.Minute)
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.Put(ctx, "k2", []byte("v"), 0))
	require.NoError(t, s.Forget(ctx, "k2"))
	_, ok, _ = s.Get(ctx, "k2")
	assert.False(t, ok)
}

func TestSQLStoreForgetPattern(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(palettetest.CreateTestDB(t))

	for _, k := range []string{"resolve:invoice:1", "resolve:invoice:2", "resolve:ticket:1", "resolve_invoice_x"} {
		require.NoError(t, s.Put(ctx, k, []byte("v"), 0))
	}

	n, err := s.ForgetPattern(ctx, "resolve:invoice:*")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, ok, _ := s.Get(ctx, "resolve_invoice_x")
	assert.True(t, ok, "underscores in keys are literal, not LIKE wildcards")

	require.NoError(t, s.Flush(ctx))
	_, ok, _ = s.Get(ctx, "resolve:ticket:1")
	assert.False(t, ok)
}

func TestSQLStoreWrapsErrors(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	mock.ExpectQuery("SELECT value, expires_at FROM cache_entries").
		WithArgs("k").
		WillReturnError(assert.AnError)

	s := NewSQLStore(database)
	_, _, err = s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read cache entry k")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "resolve:%", likePattern("resolve:*"))
	assert.Equal(t, `learn\_x:%:100\%`, likePattern("learn_x:*:100%"))
}

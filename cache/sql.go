package cache

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/palette/errors"
	"github.com/teranos/palette/logger"
)

const (
	cacheGetQuery = `SELECT value, expires_at FROM cache_entries WHERE key = ?`

	cachePutQuery = `
		INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`

	cacheForgetQuery = `DELETE FROM cache_entries WHERE key = ?`

	cacheForgetPatternQuery = `DELETE FROM cache_entries WHERE key LIKE ? ESCAPE '\'`

	cacheFlushQuery = `DELETE FROM cache_entries`

	cacheDeleteExpiredQuery = `DELETE FROM cache_entries WHERE expires_at > 0 AND expires_at <= ?`
)

// SQLStore keeps cache entries in the cache_entries table so several
// processes sharing one database see the same learning state.
type SQLStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
	now    func() time.Time
}

// SQLOption configures a SQLStore.
type SQLOption func(*SQLStore)

// WithSQLLogger sets the store logger.
func WithSQLLogger(l *zap.SugaredLogger) SQLOption {
	return func(s *SQLStore) {
		s.logger = l
	}
}

// WithSQLClock replaces time.Now, for tests.
func WithSQLClock(now func() time.Time) SQLOption {
	return func(s *SQLStore) {
		s.now = now
	}
}

// NewSQLStore wraps a migrated database.
func NewSQLStore(db *sql.DB, opts ...SQLOption) *SQLStore {
	s := &SQLStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logger.Or(s.logger)
	return s
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value   []byte
		expires int64
	)
	err := s.db.QueryRowContext(ctx, cacheGetQuery, key).Scan(&value, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "read cache entry %s", key)
	}
	if expires > 0 && s.now().UnixNano() >= expires {
		return nil, false, nil
	}
	return value, true, nil
}

func (s *SQLStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expires int64
	if ttl > 0 {
		expires = s.now().Add(ttl).UnixNano()
	}
	if _, err := s.db.ExecContext(ctx, cachePutQuery, key, value, expires); err != nil {
		return errors.Wrapf(err, "write cache entry %s", key)
	}
	return nil
}

func (s *SQLStore) Forget(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, cacheForgetQuery, key); err != nil {
		return errors.Wrapf(err, "delete cache entry %s", key)
	}
	return nil
}

// ForgetPattern deletes keys matching a '*' wildcard pattern.
func (s *SQLStore) ForgetPattern(ctx context.Context, pattern string) (int, error) {
	res, err := s.db.ExecContext(ctx, cacheForgetPatternQuery, likePattern(pattern))
	if err != nil {
		return 0, errors.Wrapf(err, "delete cache entries matching %s", pattern)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "count deleted cache entries")
	}
	s.logger.Debugw("forgot cache entries", "pattern", pattern, logger.FieldCount, n)
	return int(n), nil
}

func (s *SQLStore) Flush(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, cacheFlushQuery); err != nil {
		return errors.Wrap(err, "flush cache")
	}
	s.logger.Infow("cache flushed")
	return nil
}

// DeleteExpired removes entries past their expiry and returns how many.
func (s *SQLStore) DeleteExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, cacheDeleteExpiredQuery, s.now().UnixNano())
	if err != nil {
		return 0, errors.Wrap(err, "delete expired cache entries")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "count expired cache entries")
	}
	return int(n), nil
}

// likePattern converts a '*' wildcard pattern into an escaped LIKE pattern.
func likePattern(pattern string) string {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = escapeLikePattern(p)
	}
	return strings.Join(parts, "%")
}

// escapeLikePattern escapes special characters in LIKE patterns for SQL ESCAPE clause
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

var (
	_ Store            = (*SQLStore)(nil)
	_ PatternForgetter = (*SQLStore)(nil)
	_ Flusher          = (*SQLStore)(nil)
)

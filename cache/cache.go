// Package cache is the advisory key/value layer shared by the resolver and
// the learning engine. Every caller must stay correct with an empty or
// failing cache: backend errors are marked errors.ErrCacheUnavailable and
// degrade to direct computation.
package cache

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/teranos/palette/errors"
	"github.com/teranos/palette/logger"
)

// Store is the minimal cache contract.
type Store interface {
	// Get returns the value and whether it was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put stores value; ttl <= 0 keeps it until forgotten.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Forget(ctx context.Context, key string) error
}

// PatternForgetter is implemented by backends that can evict by key pattern.
// Patterns use '*' as a wildcard for any run of characters.
type PatternForgetter interface {
	ForgetPattern(ctx context.Context, pattern string) (int, error)
}

// Flusher is implemented by backends that can drop everything.
type Flusher interface {
	Flush(ctx context.Context) error
}

// GetJSON reads and decodes a JSON value.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var v T
	data, ok, err := s.Get(ctx, key)
	if err != nil {
		return v, false, errors.WrapCacheUnavailable(err, "cache get "+key)
	}
	if !ok {
		return v, false, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, errors.WrapCacheUnavailable(err, "decode cached "+key)
	}
	return v, true, nil
}

// PutJSON encodes and stores a JSON value.
func PutJSON[T any](ctx context.Context, s Store, key string, v T, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	if err := s.Put(ctx, key, data, ttl); err != nil {
		return errors.WrapCacheUnavailable(err, "cache put "+key)
	}
	return nil
}

// Remember returns the cached value for key, or computes, stores and returns
// it. Cache failures are logged at debug level and never returned; only
// compute errors are, and those results are not cached.
func Remember[T any](ctx context.Context, s Store, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	log := logger.FromContext(ctx, nil)

	v, ok, err := GetJSON[T](ctx, s, key)
	if err != nil {
		log.Debugw("cache read failed, computing directly", logger.FieldCacheKey, key, logger.FieldError, err)
	} else if ok {
		return v, nil
	}

	v, err = compute(ctx)
	if err != nil {
		return v, err
	}
	if err := PutJSON(ctx, s, key, v, ttl); err != nil {
		log.Debugw("cache write failed", logger.FieldCacheKey, key, logger.FieldError, err)
	}
	return v, nil
}

// ForgetMatching evicts every key matching pattern. Backends without pattern
// support are flushed only when destructive is set; otherwise nothing is
// evicted and ErrCacheUnavailable is returned. A flush reports -1 keys.
func ForgetMatching(ctx context.Context, s Store, pattern string, destructive bool) (int, error) {
	if pf, ok := s.(PatternForgetter); ok {
		n, err := pf.ForgetPattern(ctx, pattern)
		return n, errors.WrapCacheUnavailable(err, "forget pattern "+pattern)
	}
	if f, ok := s.(Flusher); ok && destructive {
		return -1, errors.WrapCacheUnavailable(f.Flush(ctx), "flush")
	}
	return 0, errors.WithHint(
		errors.Mark(errors.Newf("backend %T cannot evict by pattern", s), errors.ErrCacheUnavailable),
		"use a cache backend with pattern eviction or run a destructive clear",
	)
}

// MatchPattern reports whether key matches a '*' wildcard pattern.
func MatchPattern(pattern, key string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == key
	}
	return patternRegexp(pattern).MatchString(key)
}

func patternRegexp(pattern string) *regexp.Regexp {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
}

// Package learn records command outcomes in the cache layer and turns them
// into ranked command suggestions. All state is advisory: a missing or
// failing cache means no suggestions, never a failed command.
package learn

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/palette/cache"
	"github.com/teranos/palette/logger"
)

// Config holds learning caps, retention windows and ranking thresholds.
type Config struct {
	PatternCapacity      int           // patterns kept per user
	GlobalCapacity       int           // commands kept in the global table
	ContextRetention     time.Duration // context entries unused longer are dropped
	FailureRetention     time.Duration // failure records unseen longer are dropped
	RecentWindow         time.Duration // use within this window earns RecencyBonus
	RecencyBonus         float64       // eviction bonus for recently used patterns
	MinPersonalSuccesses int
	PersonalMinRate      float64 // personal suggestions need a rate above this
	GlobalMinRate        float64 // global suggestions need a rate above this
	SuggestionLimit      int
	StateTTL             time.Duration // lifetime of stored learning state
}

// DefaultConfig returns the standard learning parameters.
func DefaultConfig() Config {
	return Config{
		PatternCapacity:      100,
		GlobalCapacity:       50,
		ContextRetention:     30 * 24 * time.Hour,
		FailureRetention:     7 * 24 * time.Hour,
		RecentWindow:         24 * time.Hour,
		RecencyBonus:         5,
		MinPersonalSuccesses: 3,
		PersonalMinRate:      0.5,
		GlobalMinRate:        0.6,
		SuggestionLimit:      10,
		StateTTL:             90 * 24 * time.Hour,
	}
}

// Engine is the usage recorder and suggestion ranker. Updates are
// unlocked read-modify-write on cache entries: concurrent writers for the
// same user may lose increments.
type Engine struct {
	cache  cache.Store
	cfg    Config
	logger *zap.SugaredLogger
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an engine over c. A nil cache disables learning.
func New(c cache.Store, cfg Config, opts ...Option) *Engine {
	if c == nil {
		c = cache.NullStore{}
	}
	e := &Engine{cache: c, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) log(ctx context.Context) *zap.SugaredLogger {
	return logger.FromContext(ctx, e.logger).Named("learn")
}

// Cache keys
const (
	keyPrefix     = "learn:"
	patternsKey   = keyPrefix + "patterns:"
	contextKey    = keyPrefix + "context:"
	globalKey     = keyPrefix + "global"
	failuresKey   = keyPrefix + "failures"
	entityAccess  = keyPrefix + "access:"
	globalPattern = keyPrefix + "*"
)

func userPatternsKey(userID int64) string { return patternsKey + strconv.FormatInt(userID, 10) }
func userContextKey(userID int64) string  { return contextKey + strconv.FormatInt(userID, 10) }
func accessKey(tenantID int64) string     { return entityAccess + strconv.FormatInt(tenantID, 10) }

// CommandHash identifies a command regardless of case and padding.
func CommandHash(command string) string {
	sum := sha256.Sum256([]byte(normalizeCommand(command)))
	return hex.EncodeToString(sum[:16])
}

func failureHash(command, reason string) string {
	sum := sha256.Sum256([]byte(normalizeCommand(command) + "\x00" + strings.TrimSpace(reason)))
	return hex.EncodeToString(sum[:16])
}

func normalizeCommand(command string) string {
	return strings.ToLower(strings.Join(strings.Fields(command), " "))
}

// load reads a JSON map state entry; ok is false when the read failed and
// the caller must not overwrite the entry.
func load[T any](ctx context.Context, e *Engine, key string) (map[string]T, bool) {
	m, _, err := cache.GetJSON[map[string]T](ctx, e.cache, key)
	if err != nil {
		e.log(ctx).Debugw("learning state unavailable", logger.FieldCacheKey, key, logger.FieldError, err)
		return nil, false
	}
	if m == nil {
		m = make(map[string]T)
	}
	return m, true
}

func save[T any](ctx context.Context, e *Engine, key string, m map[string]T) {
	if err := cache.PutJSON(ctx, e.cache, key, m, e.cfg.StateTTL); err != nil {
		e.log(ctx).Debugw("learning state not saved", logger.FieldCacheKey, key, logger.FieldError, err)
	}
}

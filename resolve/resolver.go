// Package resolve turns an entity type and a free-form identifier into a
// stored record: numeric id, then canonical code, then fuzzy name search
// ranked by similarity, caller context and recency.
package resolve

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/teranos/palette/cache"
	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/errors"
	"github.com/teranos/palette/logger"
	"github.com/teranos/palette/store"
)

const cacheKeyPrefix = "resolve:"

// Config bounds resolver work and cache lifetimes.
type Config struct {
	CacheTTL       time.Duration // lifetime of a resolved record
	NegativeTTL    time.Duration // lifetime of a "not found"; 0 disables
	CandidateLimit int           // fuzzy candidates fetched per resolution
	PerTypeLimit   int           // raw matches per type in global search
	ResultLimit    int           // merged global search results
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		CacheTTL:       10 * time.Minute,
		NegativeTTL:    time.Minute,
		CandidateLimit: 10,
		PerTypeLimit:   5,
		ResultLimit:    20,
	}
}

// Resolver resolves identifiers against a store, caching outcomes.
type Resolver struct {
	store  store.Store
	cache  cache.Store
	cfg    Config
	logger *zap.SugaredLogger
	now    func() time.Time
	flight singleflight.Group // collapses concurrent misses on one key
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// WithClock replaces time.Now for recency scoring, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// New creates a resolver. A nil cache disables caching; zero config fields
// take their defaults.
func New(st store.Store, c cache.Store, cfg Config, opts ...Option) *Resolver {
	def := DefaultConfig()
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = def.CandidateLimit
	}
	if cfg.PerTypeLimit <= 0 {
		cfg.PerTypeLimit = def.PerTypeLimit
	}
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = def.ResultLimit
	}
	if c == nil {
		c = cache.NullStore{}
	}

	r := &Resolver{store: st, cache: c, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) log(ctx context.Context) *zap.SugaredLogger {
	return logger.FromContext(ctx, r.logger).Named("resolve")
}

// CacheKey identifies one resolution: type, identifier and caller context.
func CacheKey(t entity.Type, identifier string, rctx entity.Context) string {
	return cacheKeyPrefix + string(t) + ":" + strings.ToLower(strings.TrimSpace(identifier)) + ":" + rctx.Key()
}

// Resolve returns the record tag/identifier refers to, or nil when nothing
// matches, the tag is not an entity type, or the caller has no tenant.
// Only data store failures are returned as errors.
func (r *Resolver) Resolve(ctx context.Context, tag, identifier string, rctx entity.Context) (*entity.Entity, error) {
	log := r.log(ctx)

	t, ok := entity.ParseType(tag)
	if !ok {
		log.Debugw("unsupported entity type", logger.FieldEntityType, tag)
		return nil, nil
	}
	id := strings.TrimSpace(identifier)
	if id == "" {
		return nil, nil
	}
	if !rctx.HasTenant() {
		log.Debugw("resolve without tenant", logger.FieldEntityType, t, logger.FieldIdentifier, id)
		return nil, nil
	}

	key := CacheKey(t, id, rctx)
	cached, hit, err := cache.GetJSON[*entity.Entity](ctx, r.cache, key)
	if err != nil {
		log.Debugw("resolver cache unavailable", logger.FieldCacheKey, key, logger.FieldError, err)
	}
	if hit {
		log.Debugw("resolved from cache", logger.FieldCacheKey, key, logger.FieldCacheHit, true, "found", cached != nil)
		return cached, nil
	}

	v, err, shared := r.flight.Do(key, func() (interface{}, error) {
		return r.resolveMiss(ctx, key, t, id, rctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debugw("joined in-flight resolution", logger.FieldCacheKey, key)
	}
	return v.(*entity.Entity), nil
}

// resolveMiss runs the lookup stages and caches the outcome.
func (r *Resolver) resolveMiss(ctx context.Context, key string, t entity.Type, id string, rctx entity.Context) (*entity.Entity, error) {
	log := r.log(ctx)
	start := time.Now()
	e, stage, err := r.lookup(ctx, t, id, rctx)
	if err != nil {
		return nil, err
	}

	ttl := r.cfg.CacheTTL
	if e == nil {
		ttl = r.cfg.NegativeTTL
	}
	if ttl > 0 {
		if err := cache.PutJSON(ctx, r.cache, key, e, ttl); err != nil {
			log.Debugw("resolver cache write failed", logger.FieldCacheKey, key, logger.FieldError, err)
		}
	}

	log.Debugw("resolved entity",
		logger.FieldEntityType, t,
		logger.FieldIdentifier, id,
		logger.FieldStage, stage,
		"found", e != nil,
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return e, nil
}

// lookup runs the resolution stages in order; the first hit wins.
func (r *Resolver) lookup(ctx context.Context, t entity.Type, id string, rctx entity.Context) (*entity.Entity, string, error) {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		e, err := r.store.FindByID(ctx, t, rctx.TenantID, n)
		if err != nil {
			return nil, "id", errors.Wrapf(err, "resolve %s %s", t, id)
		}
		if e != nil {
			return e, "id", nil
		}
	}

	if codes := CanonicalCodes(t, id); len(codes) > 0 {
		e, err := r.store.FindByCode(ctx, t, rctx.TenantID, codes)
		if err != nil {
			return nil, "code", errors.Wrapf(err, "resolve %s %s", t, id)
		}
		if e != nil {
			return e, "code", nil
		}
	}

	cands, err := r.Candidates(ctx, t, id, rctx)
	if err != nil {
		return nil, "fuzzy", err
	}
	if len(cands) == 0 {
		return nil, "fuzzy", nil
	}
	top := cands[0].Entity
	return &top, "fuzzy", nil
}

// Candidates fetches up to CandidateLimit substring matches of term and
// returns them ranked, best first.
func (r *Resolver) Candidates(ctx context.Context, t entity.Type, term string, rctx entity.Context) ([]Candidate, error) {
	if !t.Valid() || !rctx.HasTenant() || strings.TrimSpace(term) == "" {
		return nil, nil
	}
	hits, err := r.store.Search(ctx, store.Query{
		Type:     t,
		TenantID: rctx.TenantID,
		Term:     term,
		Limit:    r.cfg.CandidateLimit,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fuzzy search %s for %q", t, term)
	}

	now := r.now()
	cands := make([]Candidate, 0, len(hits))
	for _, e := range hits {
		cands = append(cands, score(term, e, rctx, now, 1))
	}
	rank(cands)
	if logger.ShouldLogTrace(logger.Verbosity) {
		log := r.log(ctx)
		for _, c := range cands {
			log.Debugw("candidate",
				logger.FieldEntityType, t,
				logger.FieldEntityID, c.Entity.ID,
				logger.FieldSimilarity, c.Similarity,
				logger.FieldScore, c.Score)
		}
	}
	return cands, nil
}

// Invalidate drops cached resolutions of one entity type, typically after
// its records change. Returns the number of evicted entries.
func (r *Resolver) Invalidate(ctx context.Context, t entity.Type) int {
	return r.forget(ctx, cacheKeyPrefix+string(t)+":*")
}

// InvalidateAll drops every cached resolution.
func (r *Resolver) InvalidateAll(ctx context.Context) int {
	return r.forget(ctx, cacheKeyPrefix+"*")
}

func (r *Resolver) forget(ctx context.Context, pattern string) int {
	n, err := cache.ForgetMatching(ctx, r.cache, pattern, false)
	if err != nil {
		r.log(ctx).Debugw("resolver invalidation skipped", logger.FieldPattern, pattern, logger.FieldError, err)
		return 0
	}
	return n
}

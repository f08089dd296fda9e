package palette

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/palette/am"
	"github.com/teranos/palette/cache"
	"github.com/teranos/palette/db"
	"github.com/teranos/palette/errors"
	"github.com/teranos/palette/events"
	"github.com/teranos/palette/learn"
	"github.com/teranos/palette/logger"
	"github.com/teranos/palette/resolve"
	"github.com/teranos/palette/store"
)

// Open builds a service from configuration: it opens and migrates the
// database, then wires the configured cache backend and event sink.
func Open(cfg *am.Config, log *zap.SugaredLogger) (*Service, error) {
	database, err := db.OpenWithMigrations(cfg.GetDatabasePath(), log)
	if err != nil {
		return nil, err
	}
	svc, err := NewFromDB(database, cfg, log)
	if err != nil {
		database.Close()
		return nil, err
	}
	svc.closers = append(svc.closers, database.Close)
	return svc, nil
}

// NewFromDB builds a service over an already migrated database. The caller
// keeps ownership of database.
func NewFromDB(database *sql.DB, cfg *am.Config, log *zap.SugaredLogger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	entities := store.NewSQLStore(database, log)
	opts := []Option{
		WithLogger(log),
		WithResolverConfig(ResolverConfig(cfg)),
		func(o *options) { o.seeder = entities },
	}

	if cfg.Learning.Enabled {
		opts = append(opts, WithLearning(LearningConfig(cfg)))
	} else {
		opts = append(opts, WithoutLearning())
	}

	if cfg.Events.Enabled {
		switch cfg.Events.Sink {
		case am.EventsSQLite:
			tracker := events.NewTracker(database,
				events.WithRateLimit(cfg.Events.MaxPerSecond, cfg.Events.Burst),
				events.WithTrackerLogger(log))
			opts = append(opts, WithSink(tracker), func(o *options) { o.tracker = tracker })
		default:
			opts = append(opts, WithSink(events.NewLogSink(log)))
		}
	}

	c := CacheStore(database, cfg, log)
	if sc, ok := c.(*cache.SQLStore); ok {
		if n, err := sc.DeleteExpired(context.Background()); err != nil {
			logger.Or(log).Debugw("expired cache sweep failed", logger.FieldError, err)
		} else if n > 0 {
			logger.Or(log).Debugw("swept expired cache entries", logger.FieldCount, n)
		}
	}
	return New(entities, c, opts...), nil
}

// CacheStore builds the configured cache backend.
func CacheStore(database *sql.DB, cfg *am.Config, log *zap.SugaredLogger) cache.Store {
	switch cfg.Cache.Backend {
	case am.CacheSQLite:
		return cache.NewSQLStore(database, cache.WithSQLLogger(log))
	case am.CacheNone:
		return cache.NullStore{}
	default:
		return cache.NewMemoryStore(cache.WithMaxEntries(cfg.Cache.MaxEntries))
	}
}

// ResolverConfig maps configuration onto resolver limits.
func ResolverConfig(cfg *am.Config) resolve.Config {
	return resolve.Config{
		CacheTTL:       cfg.Resolver.CacheTTL(),
		NegativeTTL:    cfg.Resolver.NegativeCacheTTL(),
		CandidateLimit: cfg.Resolver.CandidateLimit,
		PerTypeLimit:   cfg.Search.PerTypeLimit,
		ResultLimit:    cfg.Search.ResultLimit,
	}
}

// LearningConfig maps configuration onto learning parameters.
func LearningConfig(cfg *am.Config) learn.Config {
	lc := learn.DefaultConfig()
	l := cfg.Learning
	lc.PatternCapacity = l.PatternCapacity
	lc.GlobalCapacity = l.GlobalCapacity
	lc.ContextRetention = l.ContextRetention()
	lc.FailureRetention = l.FailureRetention()
	lc.MinPersonalSuccesses = l.MinPersonalSuccesses
	lc.PersonalMinRate = l.PersonalMinRate
	lc.GlobalMinRate = l.GlobalMinRate
	lc.SuggestionLimit = l.SuggestionLimit
	lc.StateTTL = l.StateTTL()
	return lc
}

// Seed inserts the demo records for a tenant and drops stale resolutions.
func (s *Service) Seed(ctx context.Context, tenantID int64) (int, error) {
	if s.seeder == nil {
		return 0, errors.New("service has no SQL entity store to seed")
	}
	n, err := store.Seed(ctx, s.seeder, tenantID, s.now())
	if err != nil {
		return n, err
	}
	s.resolver.InvalidateAll(ctx)
	return n, nil
}

// Stats reports analytics from the SQLite event sink.
func (s *Service) Stats(ctx context.Context, since time.Time) (*events.Stats, error) {
	if s.tracker == nil {
		return nil, errors.WithHint(errors.New("event statistics need the sqlite sink"),
			"set events.sink = \"sqlite\" in am.toml")
	}
	return s.tracker.Stats(ctx, since)
}

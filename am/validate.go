package am

import "github.com/teranos/palette/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Cache backend: empty means the default memory backend
	switch c.Cache.Backend {
	case "", CacheMemory, CacheSQLite, CacheNone:
	default:
		return errors.Newf("cache.backend must be one of memory, sqlite, none, got %q", c.Cache.Backend)
	}
	if c.Cache.MaxEntries < 0 {
		return errors.Newf("cache.max_entries must be >= 0, got %d", c.Cache.MaxEntries)
	}

	// Resolver TTLs: 0 cache ttl takes the default, 0 negative ttl disables miss caching
	if c.Resolver.CacheTTLSeconds < 0 {
		return errors.Newf("resolver.cache_ttl_seconds must be >= 0, got %d", c.Resolver.CacheTTLSeconds)
	}
	if c.Resolver.NegativeCacheTTLSeconds < 0 {
		return errors.Newf("resolver.negative_cache_ttl_seconds must be >= 0, got %d", c.Resolver.NegativeCacheTTLSeconds)
	}
	if c.Resolver.CandidateLimit < 0 {
		return errors.Newf("resolver.candidate_limit must be >= 0, got %d", c.Resolver.CandidateLimit)
	}

	if c.Search.PerTypeLimit < 0 {
		return errors.Newf("search.per_type_limit must be >= 0, got %d", c.Search.PerTypeLimit)
	}
	if c.Search.ResultLimit < 0 {
		return errors.Newf("search.result_limit must be >= 0, got %d", c.Search.ResultLimit)
	}

	// Learning caps and windows: 0 = unbounded, negative = invalid
	learningInts := map[string]int{
		"learning.pattern_capacity":       c.Learning.PatternCapacity,
		"learning.global_capacity":        c.Learning.GlobalCapacity,
		"learning.context_retention_days": c.Learning.ContextRetentionDays,
		"learning.failure_retention_days": c.Learning.FailureRetentionDays,
		"learning.min_personal_successes": c.Learning.MinPersonalSuccesses,
		"learning.suggestion_limit":       c.Learning.SuggestionLimit,
		"learning.state_ttl_days":         c.Learning.StateTTLDays,
	}
	for _, key := range sortedKeys(learningInts) {
		if learningInts[key] < 0 {
			return errors.Newf("%s must be >= 0, got %d", key, learningInts[key])
		}
	}
	if c.Learning.PersonalMinRate < 0 || c.Learning.PersonalMinRate > 1 {
		return errors.Newf("learning.personal_min_rate must be within [0, 1], got %f", c.Learning.PersonalMinRate)
	}
	if c.Learning.GlobalMinRate < 0 || c.Learning.GlobalMinRate > 1 {
		return errors.Newf("learning.global_min_rate must be within [0, 1], got %f", c.Learning.GlobalMinRate)
	}

	switch c.Events.Sink {
	case "", EventsLog, EventsSQLite:
	default:
		return errors.Newf("events.sink must be log or sqlite, got %q", c.Events.Sink)
	}
	if c.Events.MaxPerSecond < 0 {
		return errors.Newf("events.max_per_second must be >= 0, got %f", c.Events.MaxPerSecond)
	}
	if c.Events.Burst < 0 {
		return errors.Newf("events.burst must be >= 0, got %d", c.Events.Burst)
	}

	return nil
}

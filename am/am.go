package am

import "time"

// Config represents the palette configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Search   SearchConfig   `mapstructure:"search"`
	Learning LearningConfig `mapstructure:"learning"`
	Events   EventsConfig   `mapstructure:"events"`
}

// DatabaseConfig configures the SQLite database holding entities, the
// shared cache table and command events
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// Cache backends
const (
	CacheMemory = "memory" // in-process, lost on exit
	CacheSQLite = "sqlite" // cache_entries table in the palette database
	CacheNone   = "none"   // no caching, every lookup hits the store
)

// CacheConfig selects the cache backend
type CacheConfig struct {
	Backend    string `mapstructure:"backend"`     // memory, sqlite or none (default: memory)
	MaxEntries int    `mapstructure:"max_entries"` // memory backend cap, 0 = unbounded
}

// ResolverConfig configures entity resolution
type ResolverConfig struct {
	CacheTTLSeconds         int `mapstructure:"cache_ttl_seconds"`          // found records, 0 = default (default: 600)
	NegativeCacheTTLSeconds int `mapstructure:"negative_cache_ttl_seconds"` // misses, 0 = not cached (default: 60)
	CandidateLimit          int `mapstructure:"candidate_limit"`            // fuzzy candidates fetched per lookup (default: 10)
}

// SearchConfig configures global search
type SearchConfig struct {
	PerTypeLimit int `mapstructure:"per_type_limit"` // raw matches per entity type (default: 5)
	ResultLimit  int `mapstructure:"result_limit"`   // merged results returned (default: 20)
}

// LearningConfig configures usage recording and suggestions
type LearningConfig struct {
	Enabled              bool    `mapstructure:"enabled"`
	PatternCapacity      int     `mapstructure:"pattern_capacity"`       // patterns kept per user (default: 100)
	GlobalCapacity       int     `mapstructure:"global_capacity"`        // shared command table size (default: 50)
	ContextRetentionDays int     `mapstructure:"context_retention_days"` // default: 30
	FailureRetentionDays int     `mapstructure:"failure_retention_days"` // default: 7
	MinPersonalSuccesses int     `mapstructure:"min_personal_successes"` // default: 3
	PersonalMinRate      float64 `mapstructure:"personal_min_rate"`      // default: 0.5
	GlobalMinRate        float64 `mapstructure:"global_min_rate"`        // default: 0.6
	SuggestionLimit      int     `mapstructure:"suggestion_limit"`       // default: 10
	StateTTLDays         int     `mapstructure:"state_ttl_days"`         // default: 90
}

// Event sinks
const (
	EventsLog    = "log"
	EventsSQLite = "sqlite"
)

// EventsConfig configures the analytics sink
type EventsConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Sink         string  `mapstructure:"sink"`           // log or sqlite (default: log)
	MaxPerSecond float64 `mapstructure:"max_per_second"` // sqlite write cap, 0 = unthrottled (default: 50)
	Burst        int     `mapstructure:"burst"`          // default: 100
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)

// CacheTTL returns the positive resolver cache lifetime
func (r ResolverConfig) CacheTTL() time.Duration {
	return time.Duration(r.CacheTTLSeconds) * time.Second
}

// NegativeCacheTTL returns how long resolver misses are remembered
func (r ResolverConfig) NegativeCacheTTL() time.Duration {
	return time.Duration(r.NegativeCacheTTLSeconds) * time.Second
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

// ContextRetention returns the context entry retention window
func (l LearningConfig) ContextRetention() time.Duration { return days(l.ContextRetentionDays) }

// FailureRetention returns the failure record retention window
func (l LearningConfig) FailureRetention() time.Duration { return days(l.FailureRetentionDays) }

// StateTTL returns the lifetime of stored learning state
func (l LearningConfig) StateTTL() time.Duration { return days(l.StateTTLDays) }

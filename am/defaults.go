package am

import (
	"fmt"

	"github.com/spf13/viper"
)

// DefaultDatabasePath is used when database.path is empty
const DefaultDatabasePath = "palette.db"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", DefaultDatabasePath)

	// Cache defaults
	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("cache.max_entries", 10000)

	// Resolver defaults
	v.SetDefault("resolver.cache_ttl_seconds", 600)         // 10 minutes
	v.SetDefault("resolver.negative_cache_ttl_seconds", 60) // 1 minute
	v.SetDefault("resolver.candidate_limit", 10)

	// Global search defaults
	v.SetDefault("search.per_type_limit", 5)
	v.SetDefault("search.result_limit", 20)

	// Learning defaults
	v.SetDefault("learning.enabled", true)
	v.SetDefault("learning.pattern_capacity", 100)
	v.SetDefault("learning.global_capacity", 50)
	v.SetDefault("learning.context_retention_days", 30)
	v.SetDefault("learning.failure_retention_days", 7)
	v.SetDefault("learning.min_personal_successes", 3)
	v.SetDefault("learning.personal_min_rate", 0.5)
	v.SetDefault("learning.global_min_rate", 0.6)
	v.SetDefault("learning.suggestion_limit", 10)
	v.SetDefault("learning.state_ttl_days", 90)

	// Events defaults
	v.SetDefault("events.enabled", true)
	v.SetDefault("events.sink", EventsLog)
	v.SetDefault("events.max_per_second", 50.0)
	v.SetDefault("events.burst", 100)
}

// BindEnvVars binds settings commonly overridden per deployment
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("database.path", "PALETTE_DATABASE_PATH")
	v.BindEnv("cache.backend", "PALETTE_CACHE_BACKEND")
	v.BindEnv("events.sink", "PALETTE_EVENTS_SINK")
}

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return DefaultDatabasePath
	}
	return c.Database.Path
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Database: %s, Cache: %s, Learning: %t, Events: %s}",
		c.Database.Path, c.Cache.Backend, c.Learning.Enabled, c.Events.Sink)
}

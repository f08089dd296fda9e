package am

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/teranos/palette/errors"
	"github.com/teranos/palette/logger"
)

// fileConfig mirrors Config with the on-disk key names
type fileConfig struct {
	Database struct {
		Path string `toml:"path" json:"path" yaml:"path"`
	} `toml:"database" json:"database" yaml:"database"`
	Cache struct {
		Backend    string `toml:"backend" json:"backend" yaml:"backend"`
		MaxEntries int    `toml:"max_entries" json:"max_entries" yaml:"max_entries"`
	} `toml:"cache" json:"cache" yaml:"cache"`
	Resolver struct {
		CacheTTLSeconds         int `toml:"cache_ttl_seconds" json:"cache_ttl_seconds" yaml:"cache_ttl_seconds"`
		NegativeCacheTTLSeconds int `toml:"negative_cache_ttl_seconds" json:"negative_cache_ttl_seconds" yaml:"negative_cache_ttl_seconds"`
		CandidateLimit          int `toml:"candidate_limit" json:"candidate_limit" yaml:"candidate_limit"`
	} `toml:"resolver" json:"resolver" yaml:"resolver"`
	Search struct {
		PerTypeLimit int `toml:"per_type_limit" json:"per_type_limit" yaml:"per_type_limit"`
		ResultLimit  int `toml:"result_limit" json:"result_limit" yaml:"result_limit"`
	} `toml:"search" json:"search" yaml:"search"`
	Learning struct {
		Enabled              bool    `toml:"enabled" json:"enabled" yaml:"enabled"`
		PatternCapacity      int     `toml:"pattern_capacity" json:"pattern_capacity" yaml:"pattern_capacity"`
		GlobalCapacity       int     `toml:"global_capacity" json:"global_capacity" yaml:"global_capacity"`
		ContextRetentionDays int     `toml:"context_retention_days" json:"context_retention_days" yaml:"context_retention_days"`
		FailureRetentionDays int     `toml:"failure_retention_days" json:"failure_retention_days" yaml:"failure_retention_days"`
		MinPersonalSuccesses int     `toml:"min_personal_successes" json:"min_personal_successes" yaml:"min_personal_successes"`
		PersonalMinRate      float64 `toml:"personal_min_rate" json:"personal_min_rate" yaml:"personal_min_rate"`
		GlobalMinRate        float64 `toml:"global_min_rate" json:"global_min_rate" yaml:"global_min_rate"`
		SuggestionLimit      int     `toml:"suggestion_limit" json:"suggestion_limit" yaml:"suggestion_limit"`
		StateTTLDays         int     `toml:"state_ttl_days" json:"state_ttl_days" yaml:"state_ttl_days"`
	} `toml:"learning" json:"learning" yaml:"learning"`
	Events struct {
		Enabled      bool    `toml:"enabled" json:"enabled" yaml:"enabled"`
		Sink         string  `toml:"sink" json:"sink" yaml:"sink"`
		MaxPerSecond float64 `toml:"max_per_second" json:"max_per_second" yaml:"max_per_second"`
		Burst        int     `toml:"burst" json:"burst" yaml:"burst"`
	} `toml:"events" json:"events" yaml:"events"`
}

func toFileConfig(c *Config) fileConfig {
	var f fileConfig
	f.Database.Path = c.Database.Path
	f.Cache.Backend = c.Cache.Backend
	f.Cache.MaxEntries = c.Cache.MaxEntries
	f.Resolver.CacheTTLSeconds = c.Resolver.CacheTTLSeconds
	f.Resolver.NegativeCacheTTLSeconds = c.Resolver.NegativeCacheTTLSeconds
	f.Resolver.CandidateLimit = c.Resolver.CandidateLimit
	f.Search.PerTypeLimit = c.Search.PerTypeLimit
	f.Search.ResultLimit = c.Search.ResultLimit
	f.Learning.Enabled = c.Learning.Enabled
	f.Learning.PatternCapacity = c.Learning.PatternCapacity
	f.Learning.GlobalCapacity = c.Learning.GlobalCapacity
	f.Learning.ContextRetentionDays = c.Learning.ContextRetentionDays
	f.Learning.FailureRetentionDays = c.Learning.FailureRetentionDays
	f.Learning.MinPersonalSuccesses = c.Learning.MinPersonalSuccesses
	f.Learning.PersonalMinRate = c.Learning.PersonalMinRate
	f.Learning.GlobalMinRate = c.Learning.GlobalMinRate
	f.Learning.SuggestionLimit = c.Learning.SuggestionLimit
	f.Learning.StateTTLDays = c.Learning.StateTTLDays
	f.Events.Enabled = c.Events.Enabled
	f.Events.Sink = c.Events.Sink
	f.Events.MaxPerSecond = c.Events.MaxPerSecond
	f.Events.Burst = c.Events.Burst
	return f
}

// Supported Encode formats
const (
	FormatTOML = "toml"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Encode renders cfg using the am.toml key names in the given format.
func Encode(cfg *Config, format string) ([]byte, error) {
	f := toFileConfig(cfg)
	switch strings.ToLower(format) {
	case FormatTOML, "":
		return toml.Marshal(f)
	case FormatJSON:
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(f)
	default:
		return nil, errors.Newf("unsupported format: %s (supported: toml, json, yaml)", format)
	}
}

// Save validates cfg and writes it to configPath as TOML, keeping up to
// three rotated backups of the previous file
func Save(configPath string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "refusing to save invalid configuration")
	}

	data, err := toml.Marshal(toFileConfig(cfg))
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.MkdirAll(filepath.Dir(configPath), DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", configPath)
	}
	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}
	if err := os.WriteFile(configPath, data, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", configPath)
	}
	return nil
}

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	// Rotate backups: .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		// Don't fail the save over a stale backup
		logger.Warnw("Failed to delete old config backup", logger.FieldPath, back3, logger.FieldError, err)
	}

	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}

	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}
	if err := os.WriteFile(back1, content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}

	return nil
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/palette/am"
	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/errors"
	"github.com/teranos/palette/logger"
	"github.com/teranos/palette/palette"
)

// Flags shared by every command
var (
	configPath string
	dbPath     string
	jsonOutput bool
	tenantID   int64
	userID     int64
	clientID   int64
	workflow   string
)

// BindGlobalFlags registers the persistent flags on the root command.
func BindGlobalFlags(root *cobra.Command) {
	f := root.PersistentFlags()
	f.CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	f.StringVar(&configPath, "config", "", "Read configuration from this file instead of the am.toml cascade")
	f.StringVar(&dbPath, "db", "", "Database path (overrides database.path)")
	f.BoolVarP(&jsonOutput, "json", "j", false, "Print machine-readable JSON")
	f.Int64Var(&tenantID, "tenant", 1, "Tenant id of the caller")
	f.Int64Var(&userID, "user", 0, "User id of the caller (0 = anonymous)")
	f.Int64Var(&clientID, "client", 0, "Selected client id")
	f.StringVar(&workflow, "workflow", "", "Current workflow hint (e.g. billing, support)")
}

// callerContext builds the identity context from flags.
func callerContext() entity.Context {
	return entity.Context{
		TenantID:         tenantID,
		UserID:           userID,
		SelectedClientID: clientID,
		Workflow:         workflow,
	}
}

// loadConfig reads --config when given, otherwise the am.toml cascade.
func loadConfig() (*am.Config, error) {
	var (
		cfg *am.Config
		err error
	)
	if configPath != "" {
		cfg, err = am.LoadFromFile(configPath)
	} else {
		cfg, err = am.Load()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	return withFlagOverrides(cfg), nil
}

// withFlagOverrides applies command line flags on top of cfg.
func withFlagOverrides(cfg *am.Config) *am.Config {
	if dbPath == "" {
		return cfg
	}
	copied := *cfg
	copied.Database.Path = dbPath
	return &copied
}

// openService loads configuration and opens the palette service.
func openService() (*palette.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openServiceWith(cfg)
}

func openServiceWith(cfg *am.Config) (*palette.Service, error) {
	svc, err := palette.Open(cfg, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open palette database at %s", cfg.GetDatabasePath())
	}
	return svc, nil
}

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/palette/am"
	"github.com/teranos/palette/display"
	"github.com/teranos/palette/errors"
	"github.com/teranos/palette/internal/util"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage palette configuration",
	Long: `am - Manage palette configuration ("I am")

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (PALETTE_* prefix)
3. Project config (./am.toml, searched up directories)
4. User config (~/.palette/am.toml)
5. System config (/etc/palette/am.toml)
6. Default values

Examples:
  palette am show                    # Show current configuration
  palette am show --format json      # Show configuration in JSON format
  palette am get resolver.cache_ttl_seconds
  palette am validate                # Validate current configuration
  palette am init                    # Write defaults to ./am.toml`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., database.path, cache.backend)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where each setting is loaded from",
	RunE:  runAmWhere,
}

var amInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the effective configuration to a file",
	Long:  "Write the effective configuration as TOML, to ./am.toml unless a path is given. Existing files are rotated to .back1..3.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAmInit,
}

var configFormat string

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", am.FormatTOML, "Output format: toml, json, yaml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
	AmCmd.AddCommand(amInitCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := am.Encode(cfg, configFormat)
	if err != nil {
		return errors.Wrapf(err, "failed to render config as %s", configFormat)
	}
	if configFormat != am.FormatJSON {
		fmt.Fprintln(cmd.OutOrStdout(), "# palette configuration")
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if _, err := loadConfig(); err != nil {
		return err
	}

	if !am.GetViper().IsSet(key) {
		return errors.Newf("configuration key %q not found", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), am.Get(key))
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(w, am.Introspect())
	}

	fmt.Fprintln(w, "Configuration cascade (later overrides earlier):")
	fmt.Fprintln(w, "  1. [DEFAULT]  Built-in defaults")
	fmt.Fprintln(w, "  2. [SYSTEM]   /etc/palette/am.toml")
	fmt.Fprintln(w, "  3. [USER]     ~/.palette/am.toml")
	fmt.Fprintln(w, "  4. [PROJECT]  ./am.toml (searches up directories)")
	fmt.Fprintln(w, "  5. [ENV]      PALETTE_* environment variables")
	fmt.Fprintln(w)

	data := pterm.TableData{{"Key", "Value", "Source", "From"}}
	for _, s := range am.Introspect() {
		value := util.Truncate(fmt.Sprintf("%v", s.Value), 50)
		data = append(data, []string{s.Key, value, string(s.Source), s.SourcePath})
	}
	return display.Table(w, data)
}

func runAmInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := "am.toml"
	if len(args) == 1 {
		path = args[0]
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	_, statErr := os.Stat(path)
	existed := statErr == nil

	if err := am.Save(path, cfg); err != nil {
		return err
	}
	if existed {
		fmt.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprintf("Updated %s (previous version kept as %s.back1)", path, path))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprintf("Wrote %s", path))
	}
	return nil
}

package commands

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/palette/db"
	"github.com/teranos/palette/display"
	"github.com/teranos/palette/errors"
	"github.com/teranos/palette/intent"
	"github.com/teranos/palette/logger"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the palette database",
	Long: `Manage the palette database: apply migrations, load demo records and
report command analytics.

Examples:
  palette db migrate
  palette db seed --tenant 1
  palette db stats --since 168h`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE:  runDbMigrate,
}

var dbSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo records for --tenant",
	RunE:  runDbSeed,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show command analytics from the event log",
	RunE:  runDbStats,
}

var statsSince time.Duration

func init() {
	dbStatsCmd.Flags().DurationVar(&statsSince, "since", 24*time.Hour, "Window of events to summarize")

	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbSeedCmd)
	DbCmd.AddCommand(dbStatsCmd)
}

func runDbMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := cfg.GetDatabasePath()

	database, err := db.OpenWithMigrations(path, logger.Logger)
	if err != nil {
		return errors.Wrapf(err, "failed to migrate %s", path)
	}
	defer database.Close()

	fmt.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprintf("Database %s is up to date", path))
	return nil
}

func runDbSeed(cmd *cobra.Command, args []string) error {
	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	n, err := svc.Seed(cmd.Context(), tenantID)
	if err != nil {
		return errors.Wrap(err, "failed to seed demo records")
	}
	fmt.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprintf("Seeded %d records for tenant %d", n, tenantID))
	return nil
}

func runDbStats(cmd *cobra.Command, args []string) error {
	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	st, err := svc.Stats(cmd.Context(), time.Now().Add(-statsSince))
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(w, st)
	}

	fmt.Fprintf(w, "Command analytics since %s\n", st.Since.Format(time.RFC3339))
	fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Fprintf(w, "Parsed:          %d\n", st.Parsed)
	fmt.Fprintf(w, "Succeeded:       %d\n", st.Succeeded)
	fmt.Fprintf(w, "Failed:          %d\n", st.Failed)
	fmt.Fprintf(w, "Success rate:    %.0f%%\n", st.SuccessRate*100)
	fmt.Fprintf(w, "Avg confidence:  %.2f\n", st.AvgConfidence)
	fmt.Fprintf(w, "Shortcuts:       %d\n", st.Shortcuts)
	fmt.Fprintln(w)

	if len(st.Intents) == 0 {
		return nil
	}
	intents := make([]intent.Intent, 0, len(st.Intents))
	for in := range st.Intents {
		intents = append(intents, in)
	}
	sort.Slice(intents, func(i, j int) bool {
		if st.Intents[intents[i]] != st.Intents[intents[j]] {
			return st.Intents[intents[i]] > st.Intents[intents[j]]
		}
		return intents[i] < intents[j]
	})
	data := pterm.TableData{{"Intent", "Parsed"}}
	for _, in := range intents {
		data = append(data, []string{string(in), strconv.Itoa(st.Intents[in])})
	}
	return display.Table(w, data)
}

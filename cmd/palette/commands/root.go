package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/palette/errors"
	"github.com/teranos/palette/logger"
)

// NewRootCmd assembles the palette command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "palette",
		Short: "palette - natural language command palette for business records",
		Long: `palette - natural language command palette for business records.

Type what you want ("show my urgent tickets", "create invoice for this
client", "#123", "$INV-1001") and palette works out the intent, the entity
types involved and the record you meant, learning from what you use.

Available commands:
  run      - Handle one palette input
  repl     - Interactive palette session
  parse    - Show how an input is understood
  resolve  - Resolve an identifier to a record
  search   - Search records across entity types
  suggest  - Suggest commands from learned usage
  record   - Record command outcomes for learning
  learn    - Inspect or reset learned usage
  db       - Migrate, seed and report on the database
  am       - Manage palette configuration ("I am")

Examples:
  palette db seed                     # Load demo records for tenant 1
  palette run '#1' --user 7           # Jump to ticket 1
  palette suggest --user 7            # What does user 7 usually do?
  palette am show                     # Show current configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbosity, _ := cmd.Flags().GetCount("verbose")
			if err := logger.Initialize(jsonOutput, verbosity); err != nil {
				return errors.Wrap(err, "failed to initialize logger")
			}
			cmd.SetContext(logger.WithComponent(cmd.Context(), "cli."+cmd.Name()))
			return nil
		},
	}

	BindGlobalFlags(root)

	root.AddCommand(RunCmd)
	root.AddCommand(ReplCmd)
	root.AddCommand(ParseCmd)
	root.AddCommand(ResolveCmd)
	root.AddCommand(SearchCmd)
	root.AddCommand(SuggestCmd)
	root.AddCommand(RecordCmd)
	root.AddCommand(LearnCmd)
	root.AddCommand(DbCmd)
	root.AddCommand(AmCmd)
	root.AddCommand(VersionCmd)
	return root
}

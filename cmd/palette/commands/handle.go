package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/palette/display"
)

// RunCmd handles one palette input the way the interactive palette does
var RunCmd = &cobra.Command{
	Use:   "run <input...>",
	Short: "Handle one palette input",
	Long: `Parse an input, resolve the record it points at and search when asked.

Examples:
  palette run '$INV-1001'
  palette run "go to client Acme" --user 7
  palette run "find printer" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()

		res := svc.Handle(cmd.Context(), strings.Join(args, " "), callerContext())
		if display.ShouldOutputJSON(cmd) {
			return display.WriteJSON(cmd.OutOrStdout(), res)
		}
		return printResult(cmd.OutOrStdout(), res)
	},
}

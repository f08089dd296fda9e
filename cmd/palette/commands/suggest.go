package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/palette/display"
)

// SuggestCmd lists learned command suggestions for a partial input
var SuggestCmd = &cobra.Command{
	Use:   "suggest [partial...]",
	Short: "Suggest commands from learned usage",
	Long: `Suggest commands ranked from the caller's own history, what worked in
the current workflow and what works for everyone.

Examples:
  palette suggest --user 7
  palette suggest "create inv" --user 7 --workflow billing`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()

		items := svc.Suggest(cmd.Context(), strings.Join(args, " "), callerContext())
		if display.ShouldOutputJSON(cmd) {
			return display.WriteJSON(cmd.OutOrStdout(), items)
		}
		return printSuggestions(cmd.OutOrStdout(), items)
	},
}
